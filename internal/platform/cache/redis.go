package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects to Redis. It returns nil when no address is configured or the
// server does not answer a ping, and callers then run without a cache.
func NewRedisClient(ctx context.Context, opts Options) *redis.Client {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis unavailable, cache disabled", slog.String("addr", addr), slog.Any("error", err))
		_ = client.Close()
		return nil
	}
	return client
}
