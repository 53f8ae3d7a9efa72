package handler

import (
	"context"
	"log/slog"
	"strings"

	"mesaYaPos/internal/modules/realtime/application/port"
	"mesaYaPos/internal/modules/realtime/application/usecase"
	"mesaYaPos/internal/modules/realtime/domain"
	reservations "mesaYaPos/internal/modules/reservations/domain"
)

// ReservationStreamHandler forwards reservation events consumed from a broker topic to
// websocket clients of the owning restaurant. Actions outside allowedActions are dropped.
type ReservationStreamHandler struct {
	kafkaTopic     string
	allowedActions map[string]struct{}
	broadcastUC    *usecase.BroadcastUseCase
}

func NewReservationStreamHandler(kafkaTopic string, allowedActions []string, broadcastUC *usecase.BroadcastUseCase) *ReservationStreamHandler {
	if len(allowedActions) == 0 {
		allowedActions = []string{reservations.EventActionCreated, reservations.EventActionUpdated}
	}
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &ReservationStreamHandler{
		kafkaTopic:     strings.TrimSpace(kafkaTopic),
		allowedActions: actionSet,
		broadcastUC:    broadcastUC,
	}
}

func (h *ReservationStreamHandler) Topic() string { return h.kafkaTopic }

func (h *ReservationStreamHandler) Handle(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	if _, ok := h.allowedActions[strings.ToLower(msg.Action)]; !ok {
		slog.Debug("reservation stream action skipped", slog.String("topic", h.kafkaTopic), slog.String("action", msg.Action))
		return nil
	}
	if msg.Entity == "" {
		msg.Entity = reservations.EntityName
	}
	msg.Topic = domain.CustomTopic(msg.Entity, msg.Action)

	domain.EnrichReservationMessage(msg)
	if msg.MetadataValue(domain.MetadataRestaurantID) == "" {
		slog.Warn("reservation stream message without restaurant", slog.String("topic", msg.Topic), slog.String("resourceId", msg.ResourceID))
		return nil
	}

	h.broadcastUC.Execute(ctx, msg)
	return nil
}

var _ port.TopicHandler = (*ReservationStreamHandler)(nil)
