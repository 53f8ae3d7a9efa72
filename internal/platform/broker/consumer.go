package broker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"mesaYaPos/internal/modules/realtime/domain"
)

var hostname = os.Hostname

// InstanceGroupID derives a consumer group private to this process. Kafka splits a
// group's partitions between its members, so replicas sharing one group would each
// see only part of the events their websocket clients wait for.
func InstanceGroupID(groupID string) string {
	host, err := hostname()
	host = strings.TrimSpace(host)
	if err != nil || host == "" {
		host = uuid.NewString()
	}
	return groupID + "-" + host
}

type KafkaConsumer struct {
	reader *kafka.Reader
	topic  string
}

// NewKafkaConsumer reads topic as groupID. A group without committed offsets starts at
// the newest message; clients only care about changes from the moment they connect.
func NewKafkaConsumer(brokers []string, groupID string, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafka.LastOffset,
		}),
		topic: topic,
	}
}

// Consume reads until ctx is cancelled, handing every decoded message to handler.
func (c *KafkaConsumer) Consume(ctx context.Context, handler func(*domain.Message) error) error {
	defer c.reader.Close()
	for {
		m, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				slog.Info("kafka consumer stopped", slog.String("topic", c.topic))
				return nil
			}
			slog.Warn("kafka read error", slog.String("topic", c.topic), slog.Any("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}
		msg := decodeMessage(m)
		slog.Debug("kafka message consumed",
			slog.String("topic", m.Topic),
			slog.Int("partition", m.Partition),
			slog.Int64("offset", m.Offset),
			slog.String("entity", msg.Entity),
			slog.String("action", msg.Action),
			slog.String("resourceId", msg.ResourceID),
		)
		if err := handler(msg); err != nil {
			slog.Warn("kafka handler error", slog.String("topic", m.Topic), slog.Any("error", err))
		}
	}
}

type rawEvent struct {
	Entity         string            `json:"entity"`
	Action         string            `json:"action"`
	ResourceID     string            `json:"resourceId"`
	RestaurantID   string            `json:"restaurantId"`
	Status         string            `json:"status"`
	PreviousStatus string            `json:"previousStatus"`
	Topic          string            `json:"topic"`
	Metadata       map[string]string `json:"metadata"`
	Data           any               `json:"data"`
	OccurredAt     time.Time         `json:"occurredAt"`
}

func decodeMessage(m kafka.Message) *domain.Message {
	msg := &domain.Message{Timestamp: m.Time.UTC()}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	headerTopic := headerValue(m.Headers, "topic")

	var event rawEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		msg.Entity, msg.Action = domain.SplitTopic(firstNonEmpty(headerTopic, m.Topic))
		msg.Action = firstNonEmpty(msg.Action, "unknown")
		msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)
		msg.Data = string(m.Value)
		return msg
	}

	topicEntity, topicAction := domain.SplitTopic(firstNonEmpty(event.Topic, headerTopic))
	msg.Entity = firstNonEmpty(event.Entity, topicEntity)
	msg.Action = strings.ToLower(firstNonEmpty(event.Action, topicAction, "unknown"))
	msg.ResourceID = strings.TrimSpace(event.ResourceID)
	msg.Data = event.Data
	msg.Topic = firstNonEmpty(event.Topic, domain.CustomTopic(msg.Entity, msg.Action))
	if !event.OccurredAt.IsZero() {
		msg.Timestamp = event.OccurredAt.UTC()
	}

	for key, value := range event.Metadata {
		msg.SetMetadata(key, value)
	}
	msg.SetMetadata(domain.MetadataRestaurantID, event.RestaurantID)
	msg.SetMetadata(domain.MetadataStatus, event.Status)
	msg.SetMetadata(domain.MetadataPreviousStatus, event.PreviousStatus)
	return msg
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Key, key) {
			return strings.TrimSpace(string(h.Value))
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
