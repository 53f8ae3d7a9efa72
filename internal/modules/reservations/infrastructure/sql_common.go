package infrastructure

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

const reservationColumns = `id, restaurant_id, table_id, customer_name, customer_phone, customer_email, notes,
	reservation_time, duration_minutes, end_time, status, deposit_cents, paid, payment_method,
	created_by, confirmed_at, seated_at, completed_at, created_at, updated_at`

// activeStatusList is the SQL IN list of statuses that hold a table.
var activeStatusList = quoteStatuses(domain.ReservationStatusPending, domain.ReservationStatusConfirmed, domain.ReservationStatusSeated)

// defaultDurationMinutes sizes the window of rows stored without end_time or duration_minutes.
var defaultDurationMinutes = int(domain.DefaultDuration / time.Minute)

func quoteStatuses(statuses ...domain.ReservationStatus) string {
	quoted := make([]string, 0, len(statuses))
	for _, status := range statuses {
		quoted = append(quoted, "'"+string(status)+"'")
	}
	return strings.Join(quoted, ",")
}

// needsTableClaim reports whether writing r must first check its table for overlaps.
func needsTableClaim(r *domain.Reservation) bool {
	return r.TableID != "" && r.Status.IsActive()
}

// tableLockKey names the lock serialising writers of one restaurant table.
func tableLockKey(r *domain.Reservation) string {
	return "reservations:" + r.RestaurantID + ":" + r.TableID
}

func tableConflict(r *domain.Reservation, holder string) error {
	return fmt.Errorf("%w: table %s held by reservation %s", port.ErrTableConflict, r.TableID, holder)
}

type placeholderFunc func(n int) string

func dollarPlaceholder(n int) string { return "$" + strconv.Itoa(n) }

func questionPlaceholder(int) string { return "?" }

// filterClause renders the WHERE clause for filter, numbering placeholders from 1.
func filterClause(filter domain.ReservationFilter, ph placeholderFunc) (string, []any) {
	var conds []string
	var args []any
	add := func(expr string, value any) {
		args = append(args, value)
		conds = append(conds, strings.Replace(expr, "?", ph(len(args)), 1))
	}

	if filter.RestaurantID != "" {
		add("restaurant_id = ?", filter.RestaurantID)
	}
	if filter.Status != domain.ReservationStatusUnknown {
		add("status = ?", string(filter.Status))
	}
	if filter.TableID != "" {
		add("table_id = ?", filter.TableID)
	}
	if filter.From != nil {
		add("reservation_time >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		add("reservation_time <= ?", filter.To.UTC())
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// pageClause renders LIMIT/OFFSET; an empty string means no paging.
func pageClause(filter domain.ReservationFilter) string {
	if filter.Limit < 1 {
		return ""
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return " LIMIT " + strconv.Itoa(filter.Limit) + " OFFSET " + strconv.Itoa((page-1)*filter.Limit)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
