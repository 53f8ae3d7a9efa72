package port

import (
	"context"

	"mesaYaPos/internal/modules/reservations/domain"
)

// EventPublisher announces persisted reservation changes to other services.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ReservationEvent) error
}

// ReservationCache keeps hot reservations close to the API.
type ReservationCache interface {
	Get(ctx context.Context, id string) (*domain.Reservation, bool)
	// Set keeps an already cached copy whose UpdatedAt is later than r's.
	Set(ctx context.Context, r *domain.Reservation)
	Invalidate(ctx context.Context, id string)
}
