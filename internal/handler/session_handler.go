package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"userauth/internal/auth"
	"userauth/internal/errors"
	"userauth/internal/model"
	"userauth/internal/service"
)

const msgLoggedOut = "Logged Out!"

// SessionHandler handles login and logout.
type SessionHandler struct {
	sessions service.SessionService
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(sessions service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Token   string      `json:"token"`
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// Login godoc
// @Summary Login user
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /v2/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}

	token, user, err := h.sessions.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:   token,
		Message: fmt.Sprintf("Welcome %s 👍", user.Name),
		User:    user,
	})
}

// Logout godoc
// @Summary Logout user
// @Tags sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /v2/logout [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	user, ok := auth.IdentityFrom(c.Request().Context())
	if !ok {
		return respondError(c, errors.ErrTokenNotFound)
	}

	if err := h.sessions.Logout(c.Request().Context(), user); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: msgLoggedOut})
}
