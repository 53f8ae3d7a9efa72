package port

import (
	"context"

	"mesaYaPos/internal/modules/realtime/domain"
)

// Broadcaster delivers messages to connected websocket clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler handles messages consumed from one broker topic.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}
