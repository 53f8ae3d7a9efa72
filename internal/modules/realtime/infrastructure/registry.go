package infrastructure

import (
	"context"
	"sync"

	"mesaYaPos/internal/modules/realtime/application/port"
	"mesaYaPos/internal/modules/realtime/domain"
)

// HandlerRegistry routes consumed broker messages to the handler registered for their source topic.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Topic()] = h
}

// Topics returns the broker topics that have a handler.
func (r *HandlerRegistry) Topics() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	topics := make([]string, 0, len(r.handlers))
	for topic := range r.handlers {
		topics = append(topics, topic)
	}
	return topics
}

// Dispatch hands msg to the handler of sourceTopic. Messages without a handler are ignored.
func (r *HandlerRegistry) Dispatch(ctx context.Context, sourceTopic string, msg *domain.Message) error {
	r.mu.RLock()
	handler, ok := r.handlers[sourceTopic]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	return handler.Handle(ctx, msg)
}
