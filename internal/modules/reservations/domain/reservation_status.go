package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ReservationStatus represents the lifecycle of a reservation as stored in the data store.
type ReservationStatus string

const (
	ReservationStatusUnknown   ReservationStatus = ""
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusSeated    ReservationStatus = "seated"
	ReservationStatusCompleted ReservationStatus = "completed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// ErrInvalidTransition is returned when a status change is not part of the lifecycle.
var ErrInvalidTransition = errors.New("invalid reservation status transition")

var allowedReservationStatuses = map[string]ReservationStatus{
	string(ReservationStatusPending):   ReservationStatusPending,
	string(ReservationStatusConfirmed): ReservationStatusConfirmed,
	string(ReservationStatusSeated):    ReservationStatusSeated,
	string(ReservationStatusCompleted): ReservationStatusCompleted,
	string(ReservationStatusCancelled): ReservationStatusCancelled,
}

var allowedTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusSeated, ReservationStatusCancelled},
	ReservationStatusSeated:    {ReservationStatusCompleted, ReservationStatusCancelled},
}

// NormalizeReservationStatus returns the canonical ReservationStatus for the given input.
// Unknown statuses are lowercased and returned as-is to avoid data loss.
func NormalizeReservationStatus(value any) ReservationStatus {
	s, ok := value.(string)
	if !ok {
		return ReservationStatusUnknown
	}
	trimmed := strings.ToLower(strings.TrimSpace(s))
	if trimmed == "" {
		return ReservationStatusUnknown
	}
	if status, ok := allowedReservationStatuses[trimmed]; ok {
		return status
	}
	return ReservationStatus(trimmed)
}

// IsKnown reports whether the status is one of the lifecycle states.
func (s ReservationStatus) IsKnown() bool {
	_, ok := allowedReservationStatuses[string(s)]
	return ok
}

// IsTerminal reports whether no further transition is possible.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusCompleted || s == ReservationStatusCancelled
}

// IsActive reports whether the reservation still holds its table.
func (s ReservationStatus) IsActive() bool {
	return s.IsKnown() && !s.IsTerminal()
}

// CanTransitionTo reports whether moving from s to next follows the lifecycle.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidateTransition returns ErrInvalidTransition wrapped with both states when the move is not allowed.
func ValidateTransition(from, to ReservationStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %q -> %q", ErrInvalidTransition, from, to)
	}
	return nil
}
