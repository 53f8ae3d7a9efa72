package transport

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"mesaYaPos/internal/modules/reservations/application/port"
	"mesaYaPos/internal/modules/reservations/application/usecase"
	"mesaYaPos/internal/modules/reservations/domain"
	"mesaYaPos/internal/shared/auth"
	"mesaYaPos/internal/shared/httputil"
)

// Handler exposes the reservation use cases over REST.
type Handler struct {
	svc    *usecase.ReservationService
	errors *httputil.ErrorMapper
}

func NewHandler(svc *usecase.ReservationService) *Handler {
	return &Handler{svc: svc, errors: NewErrorMapper()}
}

// NewErrorMapper maps reservation errors to HTTP statuses. An empty message forwards the error text.
func NewErrorMapper() *httputil.ErrorMapper {
	return httputil.NewErrorMapper().
		WithMapping(domain.ErrInvalidTransition, http.StatusConflict, "").
		WithMapping(port.ErrConflict, http.StatusConflict, "reservation was modified by another request").
		WithMapping(usecase.ErrTableConflict, http.StatusConflict, "").
		WithMapping(usecase.ErrReservationClosed, http.StatusConflict, "").
		WithMapping(port.ErrNotFound, http.StatusNotFound, "reservation not found").
		WithMapping(usecase.ErrValidation, http.StatusBadRequest, "").
		WithMapping(usecase.ErrForbidden, http.StatusForbidden, "forbidden").
		WithMapping(auth.ErrMissingToken, http.StatusUnauthorized, "missing token").
		WithMapping(auth.ErrInvalidToken, http.StatusUnauthorized, "invalid token")
}

// RegisterRoutes mounts the reservation API under /api behind token authentication.
func RegisterRoutes(e *echo.Echo, h *Handler, validator auth.TokenValidator) {
	api := e.Group("/api", RequireAuth(validator))
	api.POST("/restaurants/:restaurantId/reservations", h.Create)
	api.GET("/restaurants/:restaurantId/reservations", h.List)
	api.GET("/reservations/:id", h.Get)
	api.GET("/reservations/:id/party", h.Party)
	api.PUT("/reservations/:id/table", h.AssignTable)
	api.POST("/reservations/:id/:action", h.Transition)
}

func (h *Handler) Create(c echo.Context) error {
	var cmd domain.CreateReservationCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.Create(c.Request().Context(), actorFrom(c), c.Param("restaurantId"), cmd)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) List(c echo.Context) error {
	var query domain.ListReservationsCommand
	if err := c.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}
	filter, err := buildFilter(c.Param("restaurantId"), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	list, err := h.svc.List(c.Request().Context(), actorFrom(c), filter)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (h *Handler) Get(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

// Party returns the decoded party composition, or 404 when the notes do not hold one.
func (h *Handler) Party(c echo.Context) error {
	r, err := h.svc.Get(c.Request().Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	party, ok := r.PartyComposition()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "party composition not available")
	}
	return c.JSON(http.StatusOK, map[string]any{
		"reservationId": r.ID,
		"guests":        party.Guests(),
		"party":         party,
	})
}

func (h *Handler) AssignTable(c echo.Context) error {
	var cmd domain.AssignTableCommand
	if err := c.Bind(&cmd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	r, err := h.svc.AssignTable(c.Request().Context(), actorFrom(c), c.Param("id"), cmd)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

var transitionActions = map[string]domain.ReservationStatus{
	"confirm":  domain.ReservationStatusConfirmed,
	"seat":     domain.ReservationStatusSeated,
	"complete": domain.ReservationStatusCompleted,
	"cancel":   domain.ReservationStatusCancelled,
}

// Transition handles POST /reservations/:id/{confirm|seat|complete|cancel}.
func (h *Handler) Transition(c echo.Context) error {
	next, ok := transitionActions[strings.ToLower(c.Param("action"))]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown reservation action")
	}
	r, err := h.svc.Transition(c.Request().Context(), actorFrom(c), c.Param("id"), next)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) fail(c echo.Context, err error) error {
	info := h.errors.Map(err)
	if info.Status >= http.StatusInternalServerError {
		slog.Error("reservation request failed", slog.String("method", c.Request().Method), slog.String("path", c.Path()), slog.Any("error", err))
	} else {
		slog.Debug("reservation request rejected", slog.String("path", c.Path()), slog.Int("status", info.Status), slog.Any("error", err))
	}
	return echo.NewHTTPError(info.Status, info.Message)
}

func buildFilter(restaurantID string, query domain.ListReservationsCommand) (domain.ReservationFilter, error) {
	filter := domain.ReservationFilter{
		RestaurantID: restaurantID,
		Status:       domain.NormalizeReservationStatus(query.Status),
		TableID:      strings.TrimSpace(query.TableID),
		Page:         query.Page,
		Limit:        query.Limit,
	}
	var err error
	if filter.From, err = parseTimeParam("from", query.From); err != nil {
		return filter, err
	}
	if filter.To, err = parseTimeParam("to", query.To); err != nil {
		return filter, err
	}
	return filter, nil
}

func parseTimeParam(name, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: expected RFC 3339 time", name)
	}
	t = t.UTC()
	return &t, nil
}
