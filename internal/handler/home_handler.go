package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HomeHandler serves the placeholder home listing.
type HomeHandler struct{}

// NewHomeHandler creates a home handler.
func NewHomeHandler() *HomeHandler {
	return &HomeHandler{}
}

// HomeResponse is the home listing.
type HomeResponse struct {
	Home []interface{} `json:"home"`
}

// Index godoc
// @Summary Home listing
// @Tags home
// @Produce json
// @Security BearerAuth
// @Success 200 {object} HomeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /v2/home [get]
func (h *HomeHandler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, HomeResponse{Home: []interface{}{}})
}
