package infrastructure

import (
	"context"
	"fmt"
	"log/slog"

	"mesaYaPos/internal/config"
	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/platform/database"
)

// Store is an opened reservation repository plus the function releasing its connections.
type Store struct {
	Repository port.ReservationRepository
	Driver     string
	close      func()
}

func (s *Store) Close() {
	if s != nil && s.close != nil {
		s.close()
	}
}

// OpenStore connects the repository selected by cfg.Driver. When migrate is true the
// reservations schema is created first.
func OpenStore(ctx context.Context, cfg config.StoreConfig, migrate bool) (*Store, error) {
	switch cfg.Driver {
	case "", config.StoreMemory:
		return &Store{Repository: NewMemoryRepository(), Driver: config.StoreMemory}, nil
	case config.StorePostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := MigratePostgres(ctx, pool); err != nil {
				pool.Close()
				return nil, err
			}
		}
		slog.Info("reservation store ready", slog.String("driver", cfg.Driver), slog.Bool("migrated", migrate))
		return &Store{Repository: NewPostgresRepository(pool), Driver: cfg.Driver, close: pool.Close}, nil
	case config.StoreMySQL:
		db, err := database.OpenMySQL(ctx, database.MySQLOptions{
			User:     cfg.MySQL.User,
			Password: cfg.MySQL.Password,
			Host:     cfg.MySQL.Host,
			Port:     cfg.MySQL.Port,
			Name:     cfg.MySQL.Name,
		})
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := MigrateMySQL(ctx, db); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		slog.Info("reservation store ready", slog.String("driver", cfg.Driver), slog.Bool("migrated", migrate))
		return &Store{Repository: NewMySQLRepository(db), Driver: cfg.Driver, close: func() { _ = db.Close() }}, nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
