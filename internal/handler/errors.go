package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "userauth/internal/errors"
	"userauth/internal/logger"
)

// respondError translates a service error into an echo HTTP error.
func respondError(c echo.Context, err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		logger.FromContext(c.Request().Context()).Error().Err(err).Msg("request failed")
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.Body())
}
