package infrastructure

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

// MySQLRepository stores reservations in MySQL. All DATETIME columns hold UTC.
type MySQLRepository struct {
	db *sql.DB
}

// NewMySQLRepository returns a repository bound to db, which must be opened with parseTime=true.
func NewMySQLRepository(db *sql.DB) *MySQLRepository { return &MySQLRepository{db: db} }

func (r *MySQLRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.inTx(ctx, res, func(tx *sql.Tx) error {
		if err := claimTableMySQL(ctx, tx, res); err != nil {
			return err
		}
		const q = `INSERT INTO reservations (` + reservationColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, q,
			res.ID, res.RestaurantID, nullableString(res.TableID), res.CustomerName, res.CustomerPhone,
			nullableString(res.CustomerEmail), res.Notes, res.ReservationTime.UTC(), res.DurationMinutes, utcPtr(res.EndTime),
			string(res.Status), res.DepositCents, res.Paid, nullableString(res.PaymentMethod),
			nullableString(res.CreatedBy), utcPtr(res.ConfirmedAt), utcPtr(res.SeatedAt), utcPtr(res.CompletedAt),
			res.CreatedAt.UTC(), res.UpdatedAt.UTC(),
		)
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == 1062 {
			return fmt.Errorf("%w: duplicate id %s", port.ErrConflict, res.ID)
		}
		return err
	})
}

func (r *MySQLRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	res, err := scanMySQLReservation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *MySQLRepository) Update(ctx context.Context, res *domain.Reservation, expected domain.ReservationStatus) error {
	return r.inTx(ctx, res, func(tx *sql.Tx) error {
		if err := claimTableMySQL(ctx, tx, res); err != nil {
			return err
		}
		const q = `UPDATE reservations
			SET table_id = ?, status = ?, duration_minutes = ?, end_time = ?, deposit_cents = ?, paid = ?,
				payment_method = ?, confirmed_at = ?, seated_at = ?, completed_at = ?, updated_at = ?
			WHERE id = ? AND status = ?`
		result, err := tx.ExecContext(ctx, q,
			nullableString(res.TableID), string(res.Status), res.DurationMinutes, utcPtr(res.EndTime),
			res.DepositCents, res.Paid, nullableString(res.PaymentMethod), utcPtr(res.ConfirmedAt),
			utcPtr(res.SeatedAt), utcPtr(res.CompletedAt), res.UpdatedAt.UTC(), res.ID, string(expected),
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			var exists bool
			if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, res.ID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return port.ErrNotFound
			}
			return port.ErrConflict
		}
		return nil
	})
}

func (r *MySQLRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int, error) {
	where, args := filterClause(filter, questionPlaceholder)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations`+where+
		` ORDER BY reservation_time, id`+pageClause(filter), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanMySQLReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *res)
	}
	return items, total, rows.Err()
}

var mysqlTableHeldSQL = `SELECT id FROM reservations
	WHERE restaurant_id = ? AND table_id = ? AND id <> ?
		AND status IN (` + activeStatusList + `)
		AND reservation_time < ?
		AND COALESCE(end_time, DATE_ADD(reservation_time, INTERVAL COALESCE(duration_minutes, ?) MINUTE)) > ?
	LIMIT 1 FOR UPDATE`

// inTx runs fn in a transaction. Two writers racing for the same table gap can deadlock
// on their locking reads; InnoDB rolls one back and that one reports the table as taken.
func (r *MySQLRepository) inTx(ctx context.Context, res *domain.Reservation, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		var myErr *mysql.MySQLError
		if needsTableClaim(res) && errors.As(err, &myErr) && myErr.Number == 1213 {
			return tableConflict(res, "concurrent writer")
		}
		return err
	}
	return tx.Commit()
}

// claimTableMySQL locks the index range of res's table up to its end, which blocks
// concurrent inserts into that range until tx ends, and fails on an overlapping holder.
func claimTableMySQL(ctx context.Context, tx *sql.Tx, res *domain.Reservation) error {
	if !needsTableClaim(res) {
		return nil
	}
	start, end := res.Window()
	var holder string
	err := tx.QueryRowContext(ctx, mysqlTableHeldSQL,
		res.RestaurantID, res.TableID, res.ID, end.UTC(), defaultDurationMinutes, start.UTC(),
	).Scan(&holder)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return tableConflict(res, holder)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMySQLReservation(row rowScanner) (*domain.Reservation, error) {
	var res domain.Reservation
	var tableID, email, paymentMethod, createdBy sql.NullString
	var duration, deposit sql.NullInt64
	var endTime, confirmedAt, seatedAt, completedAt sql.NullTime
	var status string
	if err := row.Scan(
		&res.ID, &res.RestaurantID, &tableID, &res.CustomerName, &res.CustomerPhone, &email, &res.Notes,
		&res.ReservationTime, &duration, &endTime, &status, &deposit, &res.Paid,
		&paymentMethod, &createdBy, &confirmedAt, &seatedAt, &completedAt, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	res.TableID = tableID.String
	res.CustomerEmail = email.String
	res.PaymentMethod = paymentMethod.String
	res.CreatedBy = createdBy.String
	res.Status = domain.NormalizeReservationStatus(status)
	if duration.Valid {
		minutes := int(duration.Int64)
		res.DurationMinutes = &minutes
	}
	if deposit.Valid {
		cents := deposit.Int64
		res.DepositCents = &cents
	}
	res.EndTime = nullTimePtr(endTime)
	res.ConfirmedAt = nullTimePtr(confirmedAt)
	res.SeatedAt = nullTimePtr(seatedAt)
	res.CompletedAt = nullTimePtr(completedAt)
	return &res, nil
}

func nullTimePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

var _ port.ReservationRepository = (*MySQLRepository)(nil)
