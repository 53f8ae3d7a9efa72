package domain

import (
	"strconv"
	"time"

	reservations "mesaYaPos/internal/modules/reservations/domain"
)

// ReservationTopics lists the topics a reservation stream client receives.
func ReservationTopics() []string {
	return []string{
		CreatedTopic(reservations.EntityName),
		UpdatedTopic(reservations.EntityName),
		ErrorTopic(reservations.EntityName),
	}
}

// BuildReservationMessage converts a reservation event into a websocket message
// scoped to the owning restaurant.
func BuildReservationMessage(event reservations.ReservationEvent) *Message {
	at := event.OccurredAt
	if at.IsZero() {
		at = time.Now()
	}
	msg := &Message{
		Topic:      CustomTopic(event.Entity, event.Action),
		Entity:     event.Entity,
		Action:     event.Action,
		ResourceID: event.ResourceID,
		Data:       event.Data,
		Timestamp:  at.UTC(),
	}
	ApplyReservationMetadata(msg, &event.Data)
	msg.SetMetadata(MetadataRestaurantID, event.RestaurantID)
	msg.SetMetadata(MetadataStatus, string(event.Status))
	msg.SetMetadata(MetadataPreviousStatus, string(event.PreviousStatus))
	return msg
}

// EnrichReservationMessage fills routing metadata from the payload of a message that
// arrived without it, for example from another producer on the same topic.
func EnrichReservationMessage(msg *Message) {
	if msg == nil || msg.MetadataValue(MetadataRestaurantID) != "" {
		return
	}
	detail, ok := reservations.BuildReservationDetail(msg.Data)
	if !ok {
		return
	}
	if msg.ResourceID == "" {
		msg.ResourceID = detail.ID
	}
	ApplyReservationMetadata(msg, detail)
}

// ApplyReservationMetadata copies the routing fields of r into msg without overwriting existing keys.
func ApplyReservationMetadata(msg *Message, r *reservations.Reservation) {
	if msg == nil || r == nil {
		return
	}
	setIfMissing(msg, MetadataRestaurantID, r.RestaurantID)
	setIfMissing(msg, MetadataTableID, r.TableID)
	setIfMissing(msg, MetadataStatus, string(r.Status))
	if guests := r.Guests(); guests > 0 {
		setIfMissing(msg, MetadataGuests, strconv.Itoa(guests))
	}
}

func setIfMissing(msg *Message, key, value string) {
	if msg.MetadataValue(key) != "" {
		return
	}
	msg.SetMetadata(key, value)
}
