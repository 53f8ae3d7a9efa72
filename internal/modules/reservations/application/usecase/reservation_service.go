package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

var (
	ErrValidation        = errors.New("invalid reservation request")
	ErrForbidden         = errors.New("reservation belongs to another restaurant")
	ErrTableConflict     = port.ErrTableConflict
	ErrReservationClosed = errors.New("reservation is no longer active")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var validate = validator.New()

// Actor identifies who is calling the service.
type Actor struct {
	UserID       string
	RestaurantID string
	Admin        bool
}

// SystemActor is used by background jobs.
var SystemActor = Actor{UserID: "system", Admin: true}

// ServiceOptions tunes the reservation service.
type ServiceOptions struct {
	DefaultDuration time.Duration
	PendingGrace    time.Duration
	Now             func() time.Time
}

// ReservationService implements the reservation lifecycle on top of the data store.
type ReservationService struct {
	repo            port.ReservationRepository
	cache           port.ReservationCache
	publisher       port.EventPublisher
	now             func() time.Time
	defaultDuration time.Duration
	pendingGrace    time.Duration
}

func NewReservationService(repo port.ReservationRepository, cache port.ReservationCache, publisher port.EventPublisher, opts ServiceOptions) *ReservationService {
	if cache == nil {
		cache = noopCache{}
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = domain.DefaultDuration
	}
	if opts.PendingGrace <= 0 {
		opts.PendingGrace = 30 * time.Minute
	}
	return &ReservationService{
		repo:            repo,
		cache:           cache,
		publisher:       publisher,
		now:             opts.Now,
		defaultDuration: opts.DefaultDuration,
		pendingGrace:    opts.PendingGrace,
	}
}

// Create books a new pending reservation for restaurantID.
func (s *ReservationService) Create(ctx context.Context, actor Actor, restaurantID string, cmd domain.CreateReservationCommand) (*domain.Reservation, error) {
	restaurantID = strings.TrimSpace(restaurantID)
	if restaurantID == "" {
		return nil, fmt.Errorf("%w: missing restaurant", ErrValidation)
	}
	if err := authorize(actor, restaurantID); err != nil {
		return nil, err
	}
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	party := cmd.Party.Composition()
	if party.Guests() < 1 {
		return nil, fmt.Errorf("%w: party must include at least one guest", ErrValidation)
	}

	now := s.now().UTC()
	r := &domain.Reservation{
		ID:              uuid.NewString(),
		RestaurantID:    restaurantID,
		TableID:         strings.TrimSpace(cmd.TableID),
		CustomerName:    strings.TrimSpace(cmd.CustomerName),
		CustomerPhone:   strings.TrimSpace(cmd.CustomerPhone),
		CustomerEmail:   strings.TrimSpace(cmd.CustomerEmail),
		ReservationTime: cmd.ReservationTime.UTC(),
		Status:          domain.ReservationStatusPending,
		DepositCents:    cmd.DepositCents,
		PaymentMethod:   strings.TrimSpace(cmd.PaymentMethod),
		CreatedBy:       actor.UserID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.SetPartyComposition(party)
	if cmd.DurationMinutes != nil {
		r.SetDuration(*cmd.DurationMinutes)
	} else {
		r.SetDuration(int(s.defaultDuration / time.Minute))
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	slog.Info("reservation created", slog.String("reservationId", r.ID), slog.String("restaurantId", r.RestaurantID), slog.String("tableId", r.TableID), slog.Int("guests", party.Guests()))

	s.cache.Set(ctx, r)
	s.publish(ctx, domain.EventActionCreated, r, domain.ReservationStatusUnknown)
	return r, nil
}

// Get returns a reservation the actor is allowed to see.
func (s *ReservationService) Get(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrValidation)
	}
	if cached, ok := s.cache.Get(ctx, id); ok {
		if err := authorize(actor, cached.RestaurantID); err != nil {
			return nil, err
		}
		return cached, nil
	}
	r, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, r)
	return r, nil
}

// List returns a page of reservations for one restaurant.
func (s *ReservationService) List(ctx context.Context, actor Actor, filter domain.ReservationFilter) (*domain.ReservationList, error) {
	filter.RestaurantID = strings.TrimSpace(filter.RestaurantID)
	if filter.RestaurantID == "" {
		return nil, fmt.Errorf("%w: missing restaurant", ErrValidation)
	}
	if err := authorize(actor, filter.RestaurantID); err != nil {
		return nil, err
	}
	if filter.Status != domain.ReservationStatusUnknown && !filter.Status.IsKnown() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, filter.Status)
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = DefaultPageSize
	}
	if filter.Limit > MaxPageSize {
		filter.Limit = MaxPageSize
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	if items == nil {
		items = []domain.Reservation{}
	}
	return &domain.ReservationList{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Confirm moves a pending reservation to confirmed.
func (s *ReservationService) Confirm(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	return s.transition(ctx, actor, id, domain.ReservationStatusConfirmed)
}

// Seat records that the party arrived.
func (s *ReservationService) Seat(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	return s.transition(ctx, actor, id, domain.ReservationStatusSeated)
}

// Complete closes a seated reservation.
func (s *ReservationService) Complete(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	return s.transition(ctx, actor, id, domain.ReservationStatusCompleted)
}

// Cancel cancels a non-terminal reservation.
func (s *ReservationService) Cancel(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	return s.transition(ctx, actor, id, domain.ReservationStatusCancelled)
}

// Transition applies next to the reservation; used by callers holding a status value.
func (s *ReservationService) Transition(ctx context.Context, actor Actor, id string, next domain.ReservationStatus) (*domain.Reservation, error) {
	if !next.IsKnown() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, next)
	}
	return s.transition(ctx, actor, id, next)
}

// AssignTable moves an active reservation to tableID.
func (s *ReservationService) AssignTable(ctx context.Context, actor Actor, id string, cmd domain.AssignTableCommand) (*domain.Reservation, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	r, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !r.Status.IsActive() {
		return nil, fmt.Errorf("%w: status %s", ErrReservationClosed, r.Status)
	}

	r.TableID = strings.TrimSpace(cmd.TableID)
	r.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, r, r.Status); err != nil {
		return nil, fmt.Errorf("assign table: %w", err)
	}
	slog.Info("reservation table assigned", slog.String("reservationId", r.ID), slog.String("tableId", r.TableID))

	s.cache.Set(ctx, r)
	s.publish(ctx, domain.EventActionUpdated, r, r.Status)
	return r, nil
}

// SweepStale cancels pending reservations whose requested time passed more than the grace period ago.
func (s *ReservationService) SweepStale(ctx context.Context) (int, error) {
	now := s.now().UTC()
	cutoff := now.Add(-s.pendingGrace)
	stale, _, err := s.repo.List(ctx, domain.ReservationFilter{Status: domain.ReservationStatusPending, To: &cutoff})
	if err != nil {
		return 0, fmt.Errorf("list stale reservations: %w", err)
	}

	cancelled := 0
	for i := range stale {
		r := &stale[i]
		if err := r.Cancel(now); err != nil {
			continue
		}
		if err := s.repo.Update(ctx, r, domain.ReservationStatusPending); err != nil {
			if errors.Is(err, port.ErrConflict) {
				slog.Debug("stale reservation changed during sweep", slog.String("reservationId", r.ID))
				continue
			}
			return cancelled, fmt.Errorf("cancel stale reservation %s: %w", r.ID, err)
		}
		cancelled++
		s.cache.Set(ctx, r)
		s.publish(ctx, domain.EventActionUpdated, r, domain.ReservationStatusPending)
	}
	if cancelled > 0 {
		slog.Info("stale pending reservations cancelled", slog.Int("count", cancelled), slog.Time("cutoff", cutoff))
	}
	return cancelled, nil
}

func (s *ReservationService) transition(ctx context.Context, actor Actor, id string, next domain.ReservationStatus) (*domain.Reservation, error) {
	r, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	previous := r.Status
	if err := r.TransitionTo(next, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, r, previous); err != nil {
		if errors.Is(err, port.ErrConflict) {
			s.cache.Invalidate(ctx, r.ID)
		}
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	slog.Info("reservation status changed", slog.String("reservationId", r.ID), slog.String("from", string(previous)), slog.String("to", string(next)))

	s.cache.Set(ctx, r)
	s.publish(ctx, domain.EventActionUpdated, r, previous)
	return r, nil
}

// load reads from the repository, never the cache, so writes see the stored status.
func (s *ReservationService) load(ctx context.Context, actor Actor, id string) (*domain.Reservation, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", ErrValidation)
	}
	r, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, r.RestaurantID); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *ReservationService) publish(ctx context.Context, action string, r *domain.Reservation, previous domain.ReservationStatus) {
	event := domain.NewReservationEvent(action, *r, previous, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.Warn("reservation event publish failed", slog.String("reservationId", r.ID), slog.String("action", action), slog.Any("error", err))
	}
}

func authorize(actor Actor, restaurantID string) error {
	if actor.Admin {
		return nil
	}
	if actor.RestaurantID == "" || actor.RestaurantID != restaurantID {
		return ErrForbidden
	}
	return nil
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*domain.Reservation, bool) { return nil, false }
func (noopCache) Set(context.Context, *domain.Reservation) {}
func (noopCache) Invalidate(context.Context, string) {}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, domain.ReservationEvent) error { return nil }
