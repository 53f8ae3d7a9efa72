package broker

import (
	"context"
	"log/slog"
	"sync"

	"mesaYaPos/internal/modules/realtime/domain"
	"mesaYaPos/internal/modules/realtime/infrastructure"
)

// StartKafkaConsumers starts one consumer per registered topic in a group derived from
// groupID by InstanceGroupID. The returned WaitGroup completes once every consumer has
// stopped after ctx is cancelled.
func StartKafkaConsumers(
	ctx context.Context,
	registry *infrastructure.HandlerRegistry,
	brokers []string,
	groupID string,
) *sync.WaitGroup {
	var wg sync.WaitGroup
	if len(brokers) == 0 {
		return &wg
	}
	group := InstanceGroupID(groupID)
	for _, topic := range registry.Topics() {
		wg.Add(1)
		go func(tp string) {
			defer wg.Done()
			slog.Info("kafka consumer starting", slog.String("topic", tp), slog.String("group", group), slog.Any("brokers", brokers))
			consumer := NewKafkaConsumer(brokers, group, tp)
			_ = consumer.Consume(ctx, func(msg *domain.Message) error {
				return registry.Dispatch(ctx, tp, msg)
			})
		}(topic)
	}
	return &wg
}
