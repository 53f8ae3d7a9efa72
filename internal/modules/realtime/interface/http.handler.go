package transport

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"mesaYaPos/internal/modules/realtime/domain"
	"mesaYaPos/internal/modules/realtime/infrastructure"
	"mesaYaPos/internal/shared/auth"
)

const clientSendBuffer = 16

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewReservationStreamHandler serves /ws/restaurants/:restaurantId/reservations[/:token].
// The token may come from the path, the "token" query parameter or the Authorization header.
func NewReservationStreamHandler(hub *infrastructure.Hub, validator auth.TokenValidator) echo.HandlerFunc {
	return func(c echo.Context) error {
		restaurantID := strings.TrimSpace(c.Param("restaurantId"))
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			token = auth.ExtractToken(c.Request(), "token")
		}
		logger := c.Logger()
		peerIP := c.RealIP()

		if restaurantID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "missing restaurant")
		}

		claims, err := validator.Validate(token)
		if err != nil {
			status := http.StatusUnauthorized
			message := "invalid token"
			if errors.Is(err, auth.ErrMissingToken) {
				status = http.StatusBadRequest
				message = "missing token"
			}
			slog.Warn("ws handler token rejected", slog.String("restaurantId", restaurantID), slog.Int("tokenLen", len(token)), slog.Any("error", err))
			logger.Warnf("ws rejected restaurant=%s ip=%s: %v", restaurantID, peerIP, err)
			return echo.NewHTTPError(status, message)
		}
		if !claims.CanAccessRestaurant(restaurantID) {
			slog.Warn("ws handler restaurant forbidden", slog.String("restaurantId", restaurantID), slog.String("userId", claims.Subject), slog.String("tokenRestaurantId", claims.RestaurantID))
			return echo.NewHTTPError(http.StatusForbidden, "forbidden")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws handler upgrade failed", slog.String("restaurantId", restaurantID), slog.Any("error", err))
			return err
		}

		userID := claims.Subject
		topics := domain.ReservationTopics()
		client := infrastructure.NewClient(hub, conn, userID, restaurantID, clientSendBuffer, topics)
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(&domain.Message{
			Topic:  domain.TopicSystemConnected,
			Entity: domain.SystemEntity,
			Action: domain.ActionConnected,
			Metadata: map[string]string{
				domain.MetadataUserID:       userID,
				domain.MetadataRestaurantID: restaurantID,
			},
			Data: map[string]any{
				"restaurantId":  restaurantID,
				"allowedTopics": topics,
				"roles":         claims.Roles,
			},
			Timestamp: time.Now().UTC(),
		})

		logger.Infof("ws connected restaurant=%s user=%s roles=%v ip=%s", restaurantID, userID, claims.Roles, peerIP)
		return nil
	}
}

// RegisterRoutes mounts the reservation stream endpoints.
func RegisterRoutes(e *echo.Echo, hub *infrastructure.Hub, validator auth.TokenValidator) {
	h := NewReservationStreamHandler(hub, validator)
	e.GET("/ws/restaurants/:restaurantId/reservations", h)
	e.GET("/ws/restaurants/:restaurantId/reservations/:token", h)
}
