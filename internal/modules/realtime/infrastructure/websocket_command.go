package infrastructure

import (
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"mesaYaPos/internal/modules/realtime/domain"
)

// Command is a client-to-server frame.
type Command struct {
	Action  string          `json:"action"`
	Topic   string          `json:"topic,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CommandHandler func(client *Client, cmd Command)

type CommandProcessor struct {
	hub           *Hub
	handlers      map[string]CommandHandler
	allowedTopics map[string]struct{}
}

func NewCommandProcessor(hub *Hub, allowedTopics []string) *CommandProcessor {
	allowed := make(map[string]struct{}, len(allowedTopics))
	for _, topic := range allowedTopics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			allowed[trimmed] = struct{}{}
		}
	}
	processor := &CommandProcessor{
		hub:           hub,
		handlers:      make(map[string]CommandHandler),
		allowedTopics: allowed,
	}
	processor.Register("subscribe", processor.handleSubscribe)
	processor.Register("unsubscribe", processor.handleUnsubscribe)
	processor.Register("ping", processor.handlePing)
	return processor
}

func (p *CommandProcessor) Register(action string, handler CommandHandler) {
	key := normalizeAction(action)
	if handler == nil || key == "" {
		return
	}
	p.handlers[key] = handler
}

func (p *CommandProcessor) Process(client *Client, cmd Command) {
	if client == nil {
		return
	}
	action := normalizeAction(cmd.Action)
	handler, ok := p.handlers[action]
	if !ok {
		slog.Debug("ws command ignored", slog.String("userId", client.userID), slog.String("restaurantId", client.restaurantID), slog.String("action", action))
		sendError(client, action, "unsupported action")
		return
	}
	handler(client, cmd)
}

func (p *CommandProcessor) handleSubscribe(client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if _, ok := p.allowedTopics[topic]; !ok {
		sendError(client, "subscribe", "topic not available")
		return
	}
	p.hub.subscribe(client, topic)
	slog.Debug("ws subscribe", slog.String("userId", client.userID), slog.String("restaurantId", client.restaurantID), slog.String("topic", topic))
}

func (p *CommandProcessor) handleUnsubscribe(client *Client, cmd Command) {
	topic := strings.TrimSpace(cmd.Topic)
	if topic == "" {
		return
	}
	p.hub.unsubscribe(client, topic)
}

func (p *CommandProcessor) handlePing(client *Client, _ Command) {
	client.SendDomainMessage(&domain.Message{
		Topic:     domain.TopicSystemPong,
		Entity:    domain.SystemEntity,
		Action:    domain.ActionPong,
		Timestamp: time.Now().UTC(),
	})
}

func sendError(client *Client, action, reason string) {
	client.SendDomainMessage(&domain.Message{
		Topic:     domain.TopicSystemError,
		Entity:    domain.SystemEntity,
		Action:    domain.ActionError,
		Metadata:  map[string]string{"action": action},
		Data:      map[string]string{"error": reason},
		Timestamp: time.Now().UTC(),
	})
}

func normalizeAction(action string) string {
	return strings.ToLower(strings.TrimSpace(action))
}
