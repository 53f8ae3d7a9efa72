package transport

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"mesaYaPos/internal/modules/reservations/application/usecase"
	"mesaYaPos/internal/shared/auth"
)

const claimsContextKey = "auth.claims"

// RequireAuth validates the bearer token and stores the claims on the echo context.
func RequireAuth(validator auth.TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, err := validator.Validate(auth.ExtractBearerToken(c.Request()))
			if err != nil {
				message := "invalid token"
				if errors.Is(err, auth.ErrMissingToken) {
					message = "missing token"
				}
				slog.Debug("rest request unauthenticated", slog.String("path", c.Path()), slog.Any("error", err))
				return echo.NewHTTPError(http.StatusUnauthorized, message)
			}
			c.Set(claimsContextKey, claims)
			return next(c)
		}
	}
}

func actorFrom(c echo.Context) usecase.Actor {
	claims, ok := c.Get(claimsContextKey).(*auth.Claims)
	if !ok || claims == nil {
		return usecase.Actor{}
	}
	return usecase.Actor{
		UserID:       claims.Subject,
		RestaurantID: claims.RestaurantID,
		Admin:        claims.IsAdmin(),
	}
}
