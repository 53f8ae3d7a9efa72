package domain

import (
	"time"

	"mesaYaPos/internal/shared/normalization"
)

// DefaultDuration is the table occupancy assumed when a reservation carries no duration.
const DefaultDuration = 90 * time.Minute

// Reservation represents a booking request associated with a restaurant table.
type Reservation struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurantId"`
	TableID      string `json:"tableId,omitempty"`

	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail,omitempty"`
	Notes         string `json:"notes,omitempty"`

	ReservationTime time.Time  `json:"reservationTime"`
	DurationMinutes *int       `json:"durationMinutes,omitempty"`
	EndTime         *time.Time `json:"endTime,omitempty"`

	Status ReservationStatus `json:"status"`

	DepositCents  *int64 `json:"depositCents,omitempty"`
	Paid          bool   `json:"paid"`
	PaymentMethod string `json:"paymentMethod,omitempty"`

	CreatedBy   string     `json:"createdBy,omitempty"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	SeatedAt    *time.Time `json:"seatedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ReservationList aggregates reservations with pagination metadata.
type ReservationList struct {
	Items []Reservation `json:"items"`
	Total int           `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

// ReservationFilter narrows a listing. From and To bound the reservation time inclusively.
// An empty RestaurantID spans every restaurant and a Limit below 1 returns every match;
// both are reserved for background jobs.
type ReservationFilter struct {
	RestaurantID string
	Status       ReservationStatus
	TableID      string
	From         *time.Time
	To           *time.Time
	Page         int
	Limit        int
}

// PartyComposition decodes the notes field. The bool is false when the notes
// are empty or do not hold a party composition.
func (r *Reservation) PartyComposition() (PartyComposition, bool) {
	return DecodeCustomerData(r.Notes)
}

// SetPartyComposition stores the party composition in the notes field.
func (r *Reservation) SetPartyComposition(data PartyComposition) {
	r.Notes = EncodeCustomerData(data)
}

// Guests returns the party size, or 0 when the notes carry no party composition.
func (r *Reservation) Guests() int {
	data, ok := r.PartyComposition()
	if !ok {
		return 0
	}
	return data.Guests()
}

// SetDuration records the duration and recomputes the end time.
func (r *Reservation) SetDuration(minutes int) {
	r.DurationMinutes = &minutes
	end := r.ReservationTime.Add(time.Duration(minutes) * time.Minute)
	r.EndTime = &end
}

// Window returns the interval the reservation occupies its table.
func (r *Reservation) Window() (time.Time, time.Time) {
	start := r.ReservationTime
	if r.EndTime != nil && r.EndTime.After(start) {
		return start, *r.EndTime
	}
	if r.DurationMinutes != nil && *r.DurationMinutes > 0 {
		return start, start.Add(time.Duration(*r.DurationMinutes) * time.Minute)
	}
	return start, start.Add(DefaultDuration)
}

// Overlaps reports whether both reservations are active on the same table with intersecting windows.
func (r *Reservation) Overlaps(other *Reservation) bool {
	if other == nil || r.ID == other.ID {
		return false
	}
	if r.TableID == "" || r.TableID != other.TableID {
		return false
	}
	if !r.Status.IsActive() || !other.Status.IsActive() {
		return false
	}
	aStart, aEnd := r.Window()
	bStart, bEnd := other.Window()
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// TransitionTo moves the reservation to next, stamping the matching audit timestamp.
func (r *Reservation) TransitionTo(next ReservationStatus, now time.Time) error {
	if err := ValidateTransition(r.Status, next); err != nil {
		return err
	}
	at := now.UTC()
	switch next {
	case ReservationStatusConfirmed:
		r.ConfirmedAt = &at
	case ReservationStatusSeated:
		r.SeatedAt = &at
	case ReservationStatusCompleted:
		r.CompletedAt = &at
	}
	r.Status = next
	r.UpdatedAt = at
	return nil
}

// Confirm moves a pending reservation to confirmed.
func (r *Reservation) Confirm(now time.Time) error {
	return r.TransitionTo(ReservationStatusConfirmed, now)
}

// Seat records the party's arrival.
func (r *Reservation) Seat(now time.Time) error {
	return r.TransitionTo(ReservationStatusSeated, now)
}

// Complete closes the reservation after service.
func (r *Reservation) Complete(now time.Time) error {
	return r.TransitionTo(ReservationStatusCompleted, now)
}

// Cancel cancels any non-terminal reservation.
func (r *Reservation) Cancel(now time.Time) error {
	return r.TransitionTo(ReservationStatusCancelled, now)
}

// NormalizeReservation constructs a Reservation from a loosely typed map such as a
// change-feed row. Timestamps are accepted as RFC 3339 strings.
func NormalizeReservation(raw map[string]any) (Reservation, bool) {
	id := normalization.AsString(raw["id"])
	if id == "" {
		return Reservation{}, false
	}

	reservation := Reservation{
		ID:            id,
		RestaurantID:  firstString(raw, "restaurantId", "restaurant_id"),
		TableID:       firstString(raw, "tableId", "table_id"),
		CustomerName:  firstString(raw, "customerName", "customer_name"),
		CustomerPhone: firstString(raw, "customerPhone", "customer_phone"),
		CustomerEmail: firstString(raw, "customerEmail", "customer_email"),
		Notes:         normalization.AsString(raw["notes"]),
		CreatedBy:     firstString(raw, "createdBy", "created_by"),
		PaymentMethod: firstString(raw, "paymentMethod", "payment_method"),
		Paid:          normalization.AsBool(raw["paid"]),
	}
	if t, ok := normalization.AsTime(firstValue(raw, "reservationTime", "reservation_time")); ok {
		reservation.ReservationTime = t
	}
	if minutes := normalization.AsInt(firstValue(raw, "durationMinutes", "duration_minutes")); minutes > 0 {
		reservation.SetDuration(minutes)
	}
	if t, ok := normalization.AsTime(firstValue(raw, "endTime", "end_time")); ok {
		reservation.EndTime = &t
	}
	if t, ok := normalization.AsTime(firstValue(raw, "createdAt", "created_at")); ok {
		reservation.CreatedAt = t
	}
	if t, ok := normalization.AsTime(firstValue(raw, "updatedAt", "updated_at")); ok {
		reservation.UpdatedAt = t
	}

	status := NormalizeReservationStatus(raw["status"])
	if status == ReservationStatusUnknown {
		status = NormalizeReservationStatus(raw["state"])
	}
	reservation.Status = status

	return reservation, true
}

// BuildReservationDetail extracts a single reservation from an event or API payload.
func BuildReservationDetail(payload any) (*Reservation, bool) {
	container := normalization.MapFromPayload(payload)
	if len(container) == 0 {
		return nil, false
	}

	if nested, ok := container["reservation"].(map[string]any); ok {
		container = nested
	}

	reservation, ok := NormalizeReservation(container)
	if !ok {
		return nil, false
	}
	return &reservation, true
}

func firstValue(raw map[string]any, keys ...string) any {
	for _, key := range keys {
		if value, ok := raw[key]; ok && value != nil {
			return value
		}
	}
	return nil
}

func firstString(raw map[string]any, keys ...string) string {
	return normalization.AsString(firstValue(raw, keys...))
}
