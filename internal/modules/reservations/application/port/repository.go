package port

import (
	"context"
	"errors"

	"mesaYaPos/internal/modules/reservations/domain"
)

var (
	// ErrNotFound indicates the reservation does not exist for the caller's restaurant.
	ErrNotFound = errors.New("reservation not found")
	// ErrConflict indicates the stored status changed since it was read.
	ErrConflict = errors.New("reservation changed concurrently")
	// ErrTableConflict indicates another active reservation holds the table for an overlapping window.
	ErrTableConflict = errors.New("table already reserved for that time")
)

// ReservationRepository persists reservations in the remote data store.
//
// Create and Update refuse with ErrTableConflict when r is active, holds a table and
// overlaps another active reservation on that table. The check and the write are atomic.
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) error
	Get(ctx context.Context, id string) (*domain.Reservation, error)
	// Update writes r only when the stored status still equals expected.
	Update(ctx context.Context, r *domain.Reservation, expected domain.ReservationStatus) error
	List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int, error)
}
