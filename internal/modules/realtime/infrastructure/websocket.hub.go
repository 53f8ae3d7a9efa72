package infrastructure

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"mesaYaPos/internal/modules/realtime/domain"
)

// Hub tracks websocket clients per restaurant. A message reaches a client only when
// its restaurantId metadata matches the client's restaurant and the client subscribes
// to the message topic.
type Hub struct {
	restaurants map[string]map[*Client]struct{}
	mu          sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{restaurants: make(map[string]map[*Client]struct{})}
}

func (h *Hub) subscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.subscribed[topic] = struct{}{}
}

func (h *Hub) unsubscribe(c *Client, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(c.subscribed, topic)
	slog.Debug("ws client unsubscribed", slog.String("userId", c.userID), slog.String("restaurantId", c.restaurantID), slog.String("topic", topic))
}

func (h *Hub) detachClient(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detachLocked(c)
}

func (h *Hub) detachLocked(c *Client) {
	if c == nil {
		return
	}
	clients := h.restaurants[c.restaurantID]
	if _, attached := clients[c]; !attached {
		return
	}
	delete(clients, c)
	if len(clients) == 0 {
		delete(h.restaurants, c.restaurantID)
	}
	c.close()
	slog.Info("ws client detached", slog.String("userId", c.userID), slog.String("restaurantId", c.restaurantID))
}

func (h *Hub) Broadcast(_ context.Context, msg *domain.Message) {
	if msg == nil {
		return
	}
	restaurantID := msg.MetadataValue(domain.MetadataRestaurantID)
	if restaurantID == "" {
		slog.Warn("broadcast dropped without restaurant", slog.String("topic", msg.Topic), slog.String("resourceId", msg.ResourceID))
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("broadcast marshal error", slog.Any("error", err))
		return
	}

	// Sends happen under the read lock so detach cannot close a channel mid-send.
	delivered := 0
	h.mu.RLock()
	for c := range h.restaurants[restaurantID] {
		if _, ok := c.subscribed[msg.Topic]; !ok {
			continue
		}
		select {
		case c.send <- data:
			delivered++
		default:
			slog.Warn("ws client too slow, detaching", slog.String("userId", c.userID), slog.String("restaurantId", c.restaurantID))
			go h.detachClient(c)
		}
	}
	h.mu.RUnlock()
	slog.Debug("broadcast delivered", slog.String("topic", msg.Topic), slog.String("restaurantId", restaurantID), slog.Int("clients", delivered))
}

// AttachClient registers the client under its restaurant and subscribes it to topics.
func (h *Hub) AttachClient(c *Client, topics []string) {
	h.mu.Lock()
	if h.restaurants[c.restaurantID] == nil {
		h.restaurants[c.restaurantID] = make(map[*Client]struct{})
	}
	h.restaurants[c.restaurantID][c] = struct{}{}
	for _, topic := range topics {
		if trimmed := strings.TrimSpace(topic); trimmed != "" {
			c.subscribed[trimmed] = struct{}{}
		}
	}
	h.mu.Unlock()
	slog.Info("ws client attached", slog.String("userId", c.userID), slog.String("restaurantId", c.restaurantID), slog.Any("topics", topics))
}

// ClientCount returns how many clients are attached for restaurantID.
func (h *Hub) ClientCount(restaurantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.restaurants[restaurantID])
}
