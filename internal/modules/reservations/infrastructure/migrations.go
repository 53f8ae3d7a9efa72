package infrastructure

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchemaSQL = `
CREATE TABLE IF NOT EXISTS reservations (
	id TEXT PRIMARY KEY,
	restaurant_id TEXT NOT NULL,
	table_id TEXT,
	customer_name TEXT NOT NULL,
	customer_phone TEXT NOT NULL,
	customer_email TEXT,
	notes TEXT NOT NULL DEFAULT '',
	reservation_time TIMESTAMPTZ NOT NULL,
	duration_minutes INTEGER,
	end_time TIMESTAMPTZ,
	status TEXT NOT NULL DEFAULT 'pending'
		CHECK (status IN ('pending','confirmed','seated','completed','cancelled')),
	deposit_cents BIGINT,
	paid BOOLEAN NOT NULL DEFAULT FALSE,
	payment_method TEXT,
	created_by TEXT,
	confirmed_at TIMESTAMPTZ,
	seated_at TIMESTAMPTZ,
	completed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_reservations_restaurant_time ON reservations(restaurant_id, reservation_time);
CREATE INDEX IF NOT EXISTS idx_reservations_table_time ON reservations(table_id, reservation_time);
CREATE INDEX IF NOT EXISTS idx_reservations_status_time ON reservations(status, reservation_time);
`

// MySQL DDL runs one statement per Exec since the driver rejects multi-statements by default.
var mysqlSchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS reservations (
		id VARCHAR(64) PRIMARY KEY,
		restaurant_id VARCHAR(64) NOT NULL,
		table_id VARCHAR(64) NULL,
		customer_name VARCHAR(120) NOT NULL,
		customer_phone VARCHAR(32) NOT NULL,
		customer_email VARCHAR(255) NULL,
		notes TEXT NOT NULL,
		reservation_time DATETIME(6) NOT NULL,
		duration_minutes INT NULL,
		end_time DATETIME(6) NULL,
		status ENUM('pending','confirmed','seated','completed','cancelled') NOT NULL DEFAULT 'pending',
		deposit_cents BIGINT NULL,
		paid BOOLEAN NOT NULL DEFAULT FALSE,
		payment_method VARCHAR(32) NULL,
		created_by VARCHAR(64) NULL,
		confirmed_at DATETIME(6) NULL,
		seated_at DATETIME(6) NULL,
		completed_at DATETIME(6) NULL,
		created_at DATETIME(6) NOT NULL,
		updated_at DATETIME(6) NOT NULL,
		INDEX idx_reservations_restaurant_time (restaurant_id, reservation_time),
		INDEX idx_reservations_table_time (table_id, reservation_time),
		INDEX idx_reservations_status_time (status, reservation_time)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// MigratePostgres creates the reservations schema when missing.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, postgresSchemaSQL)
	return err
}

// MigrateMySQL creates the reservations schema when missing.
func MigrateMySQL(ctx context.Context, db *sql.DB) error {
	for _, stmt := range mysqlSchemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
