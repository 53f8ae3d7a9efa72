package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

type Config struct {
	Server       ServerConfig
	Logging      LoggingConfig
	Security     SecurityConfig
	Store        StoreConfig
	Redis        RedisConfig
	Kafka        KafkaConfig
	RabbitMQ     RabbitMQConfig
	Reservations ReservationsConfig
}

type ServerConfig struct {
	Port string
}

type LoggingConfig struct {
	Level     string
	Format    string
	Directory string
}

type SecurityConfig struct {
	JWTSecret    string
	JWTPublicKey string
}

// StoreConfig selects the reservation repository. MySQL settings are only read for the mysql driver.
type StoreConfig struct {
	Driver      string
	DatabaseURL string
	MySQL       MySQLConfig
}

type MySQLConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
}

// RedisConfig is optional: an empty Addr disables the reservation cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// KafkaConfig is optional: no brokers means events go straight to the websocket hub.
type KafkaConfig struct {
	Brokers           []string
	GroupID           string
	ReservationsTopic string
}

func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

func (r RabbitMQConfig) Enabled() bool {
	return r.URL != ""
}

type ReservationsConfig struct {
	DefaultDuration time.Duration
	PendingGrace    time.Duration
	SweepSchedule   string
}

// Load reads the configuration from the environment, applying defaults for local runs.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{Port: getenv("PORT", "8080")},
		Logging: LoggingConfig{
			Level:     getenv("LOG_LEVEL", "info"),
			Format:    getenv("LOG_FORMAT", "text"),
			Directory: strings.TrimSpace(os.Getenv("LOG_DIR")),
		},
		Security: SecurityConfig{
			JWTSecret:    strings.TrimSpace(os.Getenv("JWT_SECRET")),
			JWTPublicKey: strings.TrimSpace(strings.ReplaceAll(os.Getenv("JWT_PUBLIC_KEY"), `\n`, "\n")),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getenv("STORE_DRIVER", StoreMemory)),
			DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
			MySQL: MySQLConfig{
				User:     getenv("MYSQL_USER", "root"),
				Password: os.Getenv("MYSQL_PASS"),
				Host:     getenv("MYSQL_HOST", "127.0.0.1"),
				Port:     getenv("MYSQL_PORT", "3306"),
				Name:     getenv("MYSQL_NAME", "mesaya"),
			},
		},
		Redis: RedisConfig{
			Addr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
			Password: os.Getenv("REDIS_PASSWORD"),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(os.Getenv("KAFKA_BROKERS")),
			GroupID:           getenv("KAFKA_GROUP_ID", "mesaya-pos"),
			ReservationsTopic: getenv("KAFKA_RESERVATIONS_TOPIC", "mesa-ya.reservations.events"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   strings.TrimSpace(os.Getenv("RABBITMQ_URL")),
			Queue: getenv("RABBITMQ_QUEUE", "reservation.events"),
		},
		Reservations: ReservationsConfig{
			SweepSchedule: getenv("SWEEP_SCHEDULE", "*/5 * * * *"),
		},
	}

	switch cfg.Store.Driver {
	case StoreMemory:
	case StorePostgres:
		if cfg.Store.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", StorePostgres)
		}
	case StoreMySQL:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", cfg.Store.Driver)
	}

	var err error
	if cfg.Redis.DB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.Redis.TTL, err = getDuration("CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Reservations.DefaultDuration, err = getDuration("RESERVATION_DEFAULT_DURATION", 90*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Reservations.DefaultDuration > MaxReservationDuration {
		return nil, fmt.Errorf("RESERVATION_DEFAULT_DURATION %s exceeds %s", cfg.Reservations.DefaultDuration, MaxReservationDuration)
	}
	if cfg.Reservations.PendingGrace, err = getDuration("RESERVATION_PENDING_GRACE", 30*time.Minute); err != nil {
		return nil, err
	}

	return cfg, nil
}

// MaxReservationDuration matches the longest duration a booking request may ask for.
const MaxReservationDuration = 12 * time.Hour

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getInt(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return n, nil
}

// getDuration accepts Go durations ("90m") or a bare number of minutes.
func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	if minutes, err := strconv.Atoi(raw); err == nil {
		if minutes <= 0 {
			return 0, fmt.Errorf("invalid %s: must be positive", key)
		}
		return time.Duration(minutes) * time.Minute, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
