package infrastructure

import (
	"context"
	"log/slog"

	"mesaYaPos/internal/config"
	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/platform/cache"
)

// CachePrefix namespaces reservation keys in Redis.
const CachePrefix = "mesaya"

// Outbound is the reservation cache and the event publishers a process writes through.
type Outbound struct {
	Cache      port.ReservationCache
	Publisher  port.EventPublisher
	Publishers int
	closers    []func()
}

// Close releases the Redis client and broker connections in reverse order of opening.
func (o *Outbound) Close() {
	if o == nil {
		return
	}
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
}

// OpenOutbound connects the Redis cache and the Kafka and RabbitMQ publishers that cfg
// configures. local receives events when Kafka is off; with Kafka on, every server
// reads the events back from the topic instead. Processes without a websocket hub
// pass nil.
func OpenOutbound(ctx context.Context, cfg *config.Config, local port.EventPublisher) *Outbound {
	out := &Outbound{}

	if client := cache.NewRedisClient(ctx, cache.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}); client != nil {
		out.closers = append(out.closers, func() { _ = client.Close() })
		out.Cache = NewRedisCache(client, cfg.Redis.TTL, CachePrefix)
		slog.Info("reservation cache enabled", slog.String("addr", cfg.Redis.Addr), slog.Duration("ttl", cfg.Redis.TTL))
	}

	var publishers []port.EventPublisher
	if cfg.Kafka.Enabled() {
		kafkaPublisher := NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.ReservationsTopic)
		out.closers = append(out.closers, func() { _ = kafkaPublisher.Close() })
		publishers = append(publishers, kafkaPublisher)
	} else if local != nil {
		publishers = append(publishers, local)
	}
	if cfg.RabbitMQ.Enabled() {
		rabbitPublisher := NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		out.closers = append(out.closers, func() { _ = rabbitPublisher.Close() })
		publishers = append(publishers, rabbitPublisher)
	}
	if len(publishers) == 0 {
		slog.Warn("no reservation event publisher configured; changes reach no listener")
	}

	out.Publisher = NewFanoutPublisher(publishers...)
	out.Publishers = len(publishers)
	return out
}
