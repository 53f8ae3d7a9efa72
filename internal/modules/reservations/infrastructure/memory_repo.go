package infrastructure

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

// MemoryRepository keeps reservations in process. Used for local runs and tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Reservation
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]domain.Reservation)}
}

func (m *MemoryRepository) Create(_ context.Context, r *domain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.items[r.ID]; exists {
		return port.ErrConflict
	}
	if err := m.tableHeldLocked(r); err != nil {
		return err
	}
	m.items[r.ID] = *r
	return nil
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*domain.Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.items[id]
	if !ok {
		return nil, port.ErrNotFound
	}
	return &r, nil
}

func (m *MemoryRepository) Update(_ context.Context, r *domain.Reservation, expected domain.ReservationStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.items[r.ID]
	if !ok {
		return port.ErrNotFound
	}
	if stored.Status != expected {
		return port.ErrConflict
	}
	if err := m.tableHeldLocked(r); err != nil {
		return err
	}
	m.items[r.ID] = *r
	return nil
}

// tableHeldLocked reports an active reservation overlapping r on its table. Callers hold mu.
func (m *MemoryRepository) tableHeldLocked(r *domain.Reservation) error {
	if r.TableID == "" || !r.Status.IsActive() {
		return nil
	}
	for id, other := range m.items {
		if other.RestaurantID == r.RestaurantID && r.Overlaps(&other) {
			return fmt.Errorf("%w: table %s held by reservation %s", port.ErrTableConflict, r.TableID, id)
		}
	}
	return nil
}

func (m *MemoryRepository) List(_ context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int, error) {
	m.mu.RLock()
	matches := make([]domain.Reservation, 0, len(m.items))
	for _, r := range m.items {
		if matchesFilter(r, filter) {
			matches = append(matches, r)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].ReservationTime.Equal(matches[j].ReservationTime) {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].ReservationTime.Before(matches[j].ReservationTime)
	})

	total := len(matches)
	if filter.Limit < 1 {
		return matches, total, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.Limit
	if start >= total {
		return []domain.Reservation{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matches[start:end], total, nil
}

func matchesFilter(r domain.Reservation, filter domain.ReservationFilter) bool {
	if filter.RestaurantID != "" && r.RestaurantID != filter.RestaurantID {
		return false
	}
	if filter.Status != domain.ReservationStatusUnknown && r.Status != filter.Status {
		return false
	}
	if filter.TableID != "" && r.TableID != filter.TableID {
		return false
	}
	if filter.From != nil && r.ReservationTime.Before(*filter.From) {
		return false
	}
	if filter.To != nil && r.ReservationTime.After(*filter.To) {
		return false
	}
	return true
}

var _ port.ReservationRepository = (*MemoryRepository)(nil)
