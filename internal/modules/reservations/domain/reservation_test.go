package domain

import (
	"testing"
	"time"
)

func TestReservationPartyCompositionFromNotes(t *testing.T) {
	r := &Reservation{}
	if _, ok := r.PartyComposition(); ok {
		t.Fatal("empty notes must not yield a party composition")
	}
	if r.Guests() != 0 {
		t.Fatalf("expected 0 guests, got %d", r.Guests())
	}

	r.SetPartyComposition(PartyComposition{Adults: 3, Children: 2, ReservationType: ReservationTypeCelebration, Occasion: "graduation"})
	data, ok := r.PartyComposition()
	if !ok {
		t.Fatal("expected party composition after SetPartyComposition")
	}
	if data.Occasion != "graduation" || r.Guests() != 5 {
		t.Fatalf("unexpected decoded data %+v guests=%d", data, r.Guests())
	}

	r.Notes = "allergic to peanuts"
	if _, ok := r.PartyComposition(); ok {
		t.Fatal("free-text notes must yield the absent result")
	}
}

func TestSetDurationComputesEndTime(t *testing.T) {
	start := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	r := &Reservation{ReservationTime: start}
	r.SetDuration(120)

	if r.EndTime == nil || !r.EndTime.Equal(start.Add(2*time.Hour)) {
		t.Fatalf("unexpected end time %v", r.EndTime)
	}
	from, to := r.Window()
	if !from.Equal(start) || !to.Equal(start.Add(2*time.Hour)) {
		t.Fatalf("unexpected window %v - %v", from, to)
	}
}

func TestWindowFallsBackToDefaultDuration(t *testing.T) {
	start := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	r := &Reservation{ReservationTime: start}
	_, to := r.Window()
	if !to.Equal(start.Add(DefaultDuration)) {
		t.Fatalf("expected default window end, got %v", to)
	}
}

func TestOverlaps(t *testing.T) {
	start := time.Date(2026, 5, 1, 19, 0, 0, 0, time.UTC)
	newRes := func(id, table string, offset time.Duration, status ReservationStatus) *Reservation {
		r := &Reservation{ID: id, TableID: table, ReservationTime: start.Add(offset), Status: status}
		r.SetDuration(60)
		return r
	}

	base := newRes("a", "t1", 0, ReservationStatusConfirmed)
	cases := []struct {
		name     string
		other    *Reservation
		expected bool
	}{
		{name: "same slot", other: newRes("b", "t1", 0, ReservationStatusPending), expected: true},
		{name: "partial overlap", other: newRes("b", "t1", 30*time.Minute, ReservationStatusSeated), expected: true},
		{name: "back to back", other: newRes("b", "t1", time.Hour, ReservationStatusPending), expected: false},
		{name: "other table", other: newRes("b", "t2", 0, ReservationStatusPending), expected: false},
		{name: "cancelled", other: newRes("b", "t1", 0, ReservationStatusCancelled), expected: false},
		{name: "completed", other: newRes("b", "t1", 0, ReservationStatusCompleted), expected: false},
		{name: "itself", other: newRes("a", "t1", 0, ReservationStatusConfirmed), expected: false},
		{name: "nil", other: nil, expected: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestBuildReservationDetail(t *testing.T) {
	payload := map[string]any{
		"data": map[string]any{
			"reservation": map[string]any{
				"id":               "res-1",
				"restaurant_id":    "rest-9",
				"table_id":         "table-1",
				"status":           "CONFIRMED",
				"reservation_time": "2026-05-01T19:00:00Z",
				"duration_minutes": float64(90),
				"paid":             true,
				"notes":            `{"adults":2,"children":0,"childChairNeeded":false,"reservationType":"romantic"}`,
			},
		},
	}

	r, ok := BuildReservationDetail(payload)
	if !ok {
		t.Fatal("expected reservation detail")
	}
	if r.RestaurantID != "rest-9" || r.TableID != "table-1" {
		t.Fatalf("unexpected identity %+v", r)
	}
	if r.Status != ReservationStatusConfirmed {
		t.Fatalf("unexpected status %s", r.Status)
	}
	if !r.Paid {
		t.Fatal("expected paid flag")
	}
	if r.EndTime == nil || r.EndTime.Sub(r.ReservationTime) != 90*time.Minute {
		t.Fatalf("unexpected end time %v", r.EndTime)
	}
	if r.Guests() != 2 {
		t.Fatalf("expected 2 guests, got %d", r.Guests())
	}
}

func TestBuildReservationDetailRequiresID(t *testing.T) {
	if _, ok := BuildReservationDetail(map[string]any{"status": "pending"}); ok {
		t.Fatal("payload without id must be rejected")
	}
	if _, ok := BuildReservationDetail(nil); ok {
		t.Fatal("nil payload must be rejected")
	}
}
