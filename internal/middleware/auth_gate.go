package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	apperrors "userauth/internal/errors"
	"userauth/internal/logger"
	"userauth/internal/model"
)

// Authenticator resolves the user behind an Authorization header value.
type Authenticator interface {
	Authenticate(ctx context.Context, authHeader string) (*model.User, error)
}

// RequireAuth rejects requests without a valid bearer token before the
// handler runs, and binds the resolved user to the request context.
func RequireAuth(gate Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := req.Context()

			user, err := gate.Authenticate(ctx, req.Header.Get(echo.HeaderAuthorization))
			if err != nil {
				httpErr := apperrors.MapErrorToHTTP(err)
				log := logger.FromContext(ctx)
				if httpErr.StatusCode >= http.StatusInternalServerError {
					log.Error().Err(err).Msg("auth gate failed")
				} else {
					log.Debug().Str("reason", httpErr.Message).Msg("request rejected")
				}
				return echo.NewHTTPError(httpErr.StatusCode, httpErr.Body())
			}

			c.SetRequest(req.WithContext(auth.WithIdentity(ctx, user)))
			return next(c)
		}
	}
}
