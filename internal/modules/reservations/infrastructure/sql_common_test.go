package infrastructure

import (
	"testing"
	"time"

	"mesaYaPos/internal/modules/reservations/domain"
)

func TestFilterClausePlaceholders(t *testing.T) {
	to := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	filter := domain.ReservationFilter{RestaurantID: "r1", Status: domain.ReservationStatusPending, To: &to}

	where, args := filterClause(filter, dollarPlaceholder)
	expected := " WHERE restaurant_id = $1 AND status = $2 AND reservation_time <= $3"
	if where != expected {
		t.Fatalf("expected %q got %q", expected, where)
	}
	if len(args) != 3 || args[1] != "pending" {
		t.Fatalf("unexpected args %v", args)
	}

	where, _ = filterClause(filter, questionPlaceholder)
	if where != " WHERE restaurant_id = ? AND status = ? AND reservation_time <= ?" {
		t.Fatalf("unexpected mysql clause %q", where)
	}
}

func TestFilterClauseEmpty(t *testing.T) {
	where, args := filterClause(domain.ReservationFilter{}, dollarPlaceholder)
	if where != "" || args != nil {
		t.Fatalf("expected empty clause, got %q %v", where, args)
	}
}

func TestPageClause(t *testing.T) {
	if got := pageClause(domain.ReservationFilter{}); got != "" {
		t.Fatalf("expected no paging, got %q", got)
	}
	if got := pageClause(domain.ReservationFilter{Page: 3, Limit: 20}); got != " LIMIT 20 OFFSET 40" {
		t.Fatalf("unexpected page clause %q", got)
	}
}

func TestTableClaimHelpers(t *testing.T) {
	if activeStatusList != "'pending','confirmed','seated'" {
		t.Fatalf("unexpected active status list %q", activeStatusList)
	}
	if defaultDurationMinutes != 90 {
		t.Fatalf("expected 90 default minutes, got %d", defaultDurationMinutes)
	}

	cases := []struct {
		name  string
		r     domain.Reservation
		claim bool
	}{
		{name: "pending with table", r: domain.Reservation{TableID: "t1", Status: domain.ReservationStatusPending}, claim: true},
		{name: "seated with table", r: domain.Reservation{TableID: "t1", Status: domain.ReservationStatusSeated}, claim: true},
		{name: "no table", r: domain.Reservation{Status: domain.ReservationStatusPending}},
		{name: "cancelled", r: domain.Reservation{TableID: "t1", Status: domain.ReservationStatusCancelled}},
		{name: "completed", r: domain.Reservation{TableID: "t1", Status: domain.ReservationStatusCompleted}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := needsTableClaim(&tc.r); got != tc.claim {
				t.Fatalf("expected claim %v, got %v", tc.claim, got)
			}
		})
	}

	key := tableLockKey(&domain.Reservation{RestaurantID: "rest-a", TableID: "t1"})
	if key != "reservations:rest-a:t1" {
		t.Fatalf("unexpected lock key %q", key)
	}
}
