package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

// PostgresRepository stores reservations in PostgreSQL through a pgx pool.
type PostgresRepository struct{ pool *pgxpool.Pool }

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := claimTablePostgres(ctx, tx, res); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO reservations (`+reservationColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20)
		`,
			res.ID, res.RestaurantID, nullableString(res.TableID), res.CustomerName, res.CustomerPhone,
			nullableString(res.CustomerEmail), res.Notes, res.ReservationTime, res.DurationMinutes, res.EndTime,
			string(res.Status), res.DepositCents, res.Paid, nullableString(res.PaymentMethod),
			nullableString(res.CreatedBy), res.ConfirmedAt, res.SeatedAt, res.CompletedAt, res.CreatedAt, res.UpdatedAt,
		)
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w: duplicate id %s", port.ErrConflict, res.ID)
		}
		return err
	})
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE id=$1`, id)
	res, err := scanPostgresReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, port.ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *PostgresRepository) Update(ctx context.Context, res *domain.Reservation, expected domain.ReservationStatus) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if err := claimTablePostgres(ctx, tx, res); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE reservations
			SET table_id=$2, status=$3, duration_minutes=$4, end_time=$5, deposit_cents=$6, paid=$7,
				payment_method=$8, confirmed_at=$9, seated_at=$10, completed_at=$11, updated_at=$12
			WHERE id=$1 AND status=$13
		`,
			res.ID, nullableString(res.TableID), string(res.Status), res.DurationMinutes, res.EndTime,
			res.DepositCents, res.Paid, nullableString(res.PaymentMethod), res.ConfirmedAt, res.SeatedAt,
			res.CompletedAt, res.UpdatedAt, string(expected),
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id=$1)`, res.ID).Scan(&exists); err != nil {
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

func (r *PostgresRepository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, int, error) {
	where, args := filterClause(filter, dollarPlaceholder)

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reservations`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT `+reservationColumns+` FROM reservations`+where+
		` ORDER BY reservation_time, id`+pageClause(filter), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := scanPostgresReservation(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *res)
	}
	return items, total, rows.Err()
}

var postgresTableHeldSQL = `
	SELECT id FROM reservations
	WHERE restaurant_id = $1 AND table_id = $2 AND id <> $3
		AND status IN (` + activeStatusList + `)
		AND reservation_time < $5
		AND COALESCE(end_time, reservation_time + make_interval(mins => COALESCE(duration_minutes, $6))) > $4
	LIMIT 1`

// claimTablePostgres takes a transaction-scoped advisory lock on the table, so concurrent
// writers of the same table queue up, then fails when an active reservation overlaps res.
func claimTablePostgres(ctx context.Context, tx pgx.Tx, res *domain.Reservation) error {
	if !needsTableClaim(res) {
		return nil
	}
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, tableLockKey(res)); err != nil {
		return fmt.Errorf("lock table %s: %w", res.TableID, err)
	}
	start, end := res.Window()
	var holder string
	err := tx.QueryRow(ctx, postgresTableHeldSQL, res.RestaurantID, res.TableID, res.ID, start, end, defaultDurationMinutes).Scan(&holder)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	return tableConflict(res, holder)
}

func scanPostgresReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	var tableID, email, paymentMethod, createdBy *string
	var status string
	if err := row.Scan(
		&res.ID, &res.RestaurantID, &tableID, &res.CustomerName, &res.CustomerPhone, &email, &res.Notes,
		&res.ReservationTime, &res.DurationMinutes, &res.EndTime, &status, &res.DepositCents, &res.Paid,
		&paymentMethod, &createdBy, &res.ConfirmedAt, &res.SeatedAt, &res.CompletedAt, &res.CreatedAt, &res.UpdatedAt,
	); err != nil {
		return nil, err
	}
	res.TableID = deref(tableID)
	res.CustomerEmail = deref(email)
	res.PaymentMethod = deref(paymentMethod)
	res.CreatedBy = deref(createdBy)
	res.Status = domain.NormalizeReservationStatus(status)
	return &res, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ port.ReservationRepository = (*PostgresRepository)(nil)
