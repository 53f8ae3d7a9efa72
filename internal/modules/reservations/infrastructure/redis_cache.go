package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/domain"
)

var errNewerCached = errors.New("cached reservation is newer")

// RedisCache stores reservation JSON under "<prefix>:reservation:<id>".
// Cache failures are logged and treated as misses.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(client *redis.Client, ttl time.Duration, prefix string) *RedisCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if prefix == "" {
		prefix = "pos"
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *RedisCache) key(id string) string {
	return c.prefix + ":reservation:" + id
}

func (c *RedisCache) Get(ctx context.Context, id string) (*domain.Reservation, bool) {
	raw, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("reservation cache read failed", slog.String("reservationId", id), slog.Any("error", err))
		}
		return nil, false
	}
	var r domain.Reservation
	if err := json.Unmarshal(raw, &r); err != nil {
		slog.Warn("reservation cache entry corrupt", slog.String("reservationId", id), slog.Any("error", err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &r, true
}

// Set stores r unless the cached copy is newer, so a read racing a write cannot put
// back the state the write replaced.
func (c *RedisCache) Set(ctx context.Context, r *domain.Reservation) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	key := c.key(r.ID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var cached domain.Reservation
			if json.Unmarshal(current, &cached) == nil && cached.UpdatedAt.After(r.UpdatedAt) {
				return errNewerCached
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, c.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
	case errors.Is(err, errNewerCached):
		slog.Debug("reservation cache kept newer entry", slog.String("reservationId", r.ID))
	case errors.Is(err, redis.TxFailedErr):
		// Another writer touched the key first; let the next read reload it.
		c.Invalidate(ctx, r.ID)
	default:
		slog.Warn("reservation cache write failed", slog.String("reservationId", r.ID), slog.Any("error", err))
	}
}

func (c *RedisCache) Invalidate(ctx context.Context, id string) {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		slog.Warn("reservation cache invalidate failed", slog.String("reservationId", id), slog.Any("error", err))
	}
}

var _ port.ReservationCache = (*RedisCache)(nil)
