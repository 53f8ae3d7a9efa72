package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

func seedRepo(t *testing.T) (*MemoryRepository, time.Time) {
	t.Helper()
	repo := NewMemoryRepository()
	base := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	fixtures := []domain.Reservation{
		{ID: "r1", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base},
		{ID: "r2", RestaurantID: "rest-a", TableID: "t2", Status: domain.ReservationStatusConfirmed, ReservationTime: base.Add(time.Hour)},
		{ID: "r3", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base.Add(2 * time.Hour)},
		{ID: "r4", RestaurantID: "rest-b", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base},
	}
	for i := range fixtures {
		if err := repo.Create(context.Background(), &fixtures[i]); err != nil {
			t.Fatalf("seed %s: %v", fixtures[i].ID, err)
		}
	}
	return repo, base
}

func TestMemoryRepositoryCreateDuplicate(t *testing.T) {
	repo, _ := seedRepo(t)
	err := repo.Create(context.Background(), &domain.Reservation{ID: "r1"})
	if !errors.Is(err, port.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestMemoryRepositoryGetMissing(t *testing.T) {
	repo, _ := seedRepo(t)
	if _, err := repo.Get(context.Background(), "nope"); !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryUpdateGuardsStatus(t *testing.T) {
	repo, _ := seedRepo(t)
	ctx := context.Background()

	r, err := repo.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	r.Status = domain.ReservationStatusConfirmed
	if err := repo.Update(ctx, r, domain.ReservationStatusConfirmed); !errors.Is(err, port.ErrConflict) {
		t.Fatalf("expected ErrConflict for stale expectation, got %v", err)
	}
	if err := repo.Update(ctx, r, domain.ReservationStatusPending); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := repo.Get(ctx, "r1")
	if stored.Status != domain.ReservationStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", stored.Status)
	}
	if err := repo.Update(ctx, &domain.Reservation{ID: "ghost"}, domain.ReservationStatusPending); !errors.Is(err, port.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryRejectsOverlappingTable(t *testing.T) {
	repo, base := seedRepo(t)
	ctx := context.Background()

	cases := []struct {
		name    string
		r       domain.Reservation
		blocked bool
	}{
		{name: "inside r1 window", r: domain.Reservation{ID: "n1", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base.Add(30 * time.Minute)}, blocked: true},
		{name: "runs into r3", r: domain.Reservation{ID: "n2", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base.Add(90 * time.Minute)}, blocked: true},
		{name: "other table", r: domain.Reservation{ID: "n3", RestaurantID: "rest-a", TableID: "t3", Status: domain.ReservationStatusPending, ReservationTime: base}},
		{name: "other restaurant", r: domain.Reservation{ID: "n4", RestaurantID: "rest-c", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base}},
		{name: "cancelled", r: domain.Reservation{ID: "n5", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusCancelled, ReservationTime: base}},
		{name: "no table", r: domain.Reservation{ID: "n6", RestaurantID: "rest-a", Status: domain.ReservationStatusPending, ReservationTime: base}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.r
			err := repo.Create(ctx, &r)
			if tc.blocked && !errors.Is(err, port.ErrTableConflict) {
				t.Fatalf("expected ErrTableConflict, got %v", err)
			}
			if !tc.blocked && err != nil {
				t.Fatalf("create: %v", err)
			}
		})
	}
}

func TestMemoryRepositoryLongWindowStillConflicts(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	base := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

	first := domain.Reservation{ID: "long", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusConfirmed, ReservationTime: base}
	first.SetDuration(24 * 60)
	if err := repo.Create(ctx, &first); err != nil {
		t.Fatalf("create: %v", err)
	}

	later := domain.Reservation{ID: "later", RestaurantID: "rest-a", TableID: "t1", Status: domain.ReservationStatusPending, ReservationTime: base.Add(13 * time.Hour)}
	later.SetDuration(90)
	if err := repo.Create(ctx, &later); !errors.Is(err, port.ErrTableConflict) {
		t.Fatalf("expected ErrTableConflict, got %v", err)
	}
}

func TestMemoryRepositoryUpdateRejectsOverlappingTable(t *testing.T) {
	repo, base := seedRepo(t)
	ctx := context.Background()

	r3, err := repo.Get(ctx, "r3")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	r3.ReservationTime = base.Add(time.Hour)
	if err := repo.Update(ctx, r3, domain.ReservationStatusPending); !errors.Is(err, port.ErrTableConflict) {
		t.Fatalf("expected ErrTableConflict, got %v", err)
	}

	r1, _ := repo.Get(ctx, "r1")
	r1.Status = domain.ReservationStatusConfirmed
	if err := repo.Update(ctx, r1, domain.ReservationStatusPending); err != nil {
		t.Fatalf("reservation must not conflict with itself: %v", err)
	}
}

func TestMemoryRepositoryConcurrentCreatesKeepOneTableHolder(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2026, 6, 1, 19, 0, 0, 0, time.UTC)

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			r := domain.Reservation{
				ID:              fmt.Sprintf("c%d", n),
				RestaurantID:    "rest-a",
				TableID:         "t1",
				Status:          domain.ReservationStatusPending,
				ReservationTime: base.Add(time.Duration(n) * time.Minute),
			}
			errs <- repo.Create(context.Background(), &r)
		}(i)
	}
	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		switch {
		case err == nil:
			created++
		case !errors.Is(err, port.ErrTableConflict):
			t.Fatalf("unexpected error %v", err)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one holder of t1, got %d", created)
	}
}

func TestMemoryRepositoryList(t *testing.T) {
	repo, base := seedRepo(t)
	ctx := context.Background()
	to := base.Add(90 * time.Minute)

	cases := []struct {
		name     string
		filter   domain.ReservationFilter
		expected []string
		total    int
	}{
		{name: "restaurant", filter: domain.ReservationFilter{RestaurantID: "rest-a"}, expected: []string{"r1", "r2", "r3"}, total: 3},
		{name: "status", filter: domain.ReservationFilter{RestaurantID: "rest-a", Status: domain.ReservationStatusPending}, expected: []string{"r1", "r3"}, total: 2},
		{name: "table", filter: domain.ReservationFilter{RestaurantID: "rest-a", TableID: "t1"}, expected: []string{"r1", "r3"}, total: 2},
		{name: "window", filter: domain.ReservationFilter{RestaurantID: "rest-a", To: &to}, expected: []string{"r1", "r2"}, total: 2},
		{name: "all restaurants", filter: domain.ReservationFilter{Status: domain.ReservationStatusPending}, expected: []string{"r1", "r4", "r3"}, total: 3},
		{name: "second page", filter: domain.ReservationFilter{RestaurantID: "rest-a", Page: 2, Limit: 2}, expected: []string{"r3"}, total: 3},
		{name: "past last page", filter: domain.ReservationFilter{RestaurantID: "rest-a", Page: 5, Limit: 2}, expected: []string{}, total: 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items, total, err := repo.List(ctx, tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if total != tc.total {
				t.Fatalf("expected total %d, got %d", tc.total, total)
			}
			if len(items) != len(tc.expected) {
				t.Fatalf("expected %d items, got %d", len(tc.expected), len(items))
			}
			for i, id := range tc.expected {
				if items[i].ID != id {
					t.Fatalf("item %d: expected %s, got %s", i, id, items[i].ID)
				}
			}
		})
	}
}
