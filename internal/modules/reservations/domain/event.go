package domain

import "time"

const (
	EventActionCreated = "created"
	EventActionUpdated = "updated"
)

// ReservationEvent is emitted after a reservation is persisted.
type ReservationEvent struct {
	Entity         string            `json:"entity"`
	Action         string            `json:"action"`
	ResourceID     string            `json:"resourceId"`
	RestaurantID   string            `json:"restaurantId"`
	Status         ReservationStatus `json:"status"`
	PreviousStatus ReservationStatus `json:"previousStatus,omitempty"`
	Data           Reservation       `json:"data"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

// EntityName is the entity label used on topics and events.
const EntityName = "reservations"

// NewReservationEvent builds an event for r.
func NewReservationEvent(action string, r Reservation, previous ReservationStatus, now time.Time) ReservationEvent {
	return ReservationEvent{
		Entity:         EntityName,
		Action:         action,
		ResourceID:     r.ID,
		RestaurantID:   r.RestaurantID,
		Status:         r.Status,
		PreviousStatus: previous,
		Data:           r,
		OccurredAt:     now.UTC(),
	}
}

// Topic returns the "<entity>.<action>" topic for the event.
func (e ReservationEvent) Topic() string {
	return e.Entity + "." + e.Action
}
