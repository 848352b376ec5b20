package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"userauth/internal/errors"
	"userauth/internal/logger"
	"userauth/internal/model"
	"userauth/internal/service"
)

const (
	msgUserCreated = "User created successfully 👍"
	msgUserUpdated = "User updated successfully 👍"
	msgUserDeleted = "User deleted successfully ❌"
)

// UserHandler serves the user resource for every API version.
type UserHandler struct {
	svc      service.UserService
	sessions service.SessionService
}

// NewUserHandler creates a user handler. sessions is only needed by
// CreateWithToken.
func NewUserHandler(svc service.UserService, sessions service.SessionService) *UserHandler {
	return &UserHandler{svc: svc, sessions: sessions}
}

// UserRequest carries user attributes. Absent fields stay nil so updates
// touch only what was sent.
type UserRequest struct {
	Name                 *string `json:"name" form:"name"`
	Email                *string `json:"email" form:"email"`
	Password             *string `json:"password" form:"password"`
	PasswordConfirmation *string `json:"password_confirmation" form:"password_confirmation"`
}

func (r UserRequest) input() service.UserInput {
	return service.UserInput{
		Name:                 r.Name,
		Email:                r.Email,
		Password:             r.Password,
		PasswordConfirmation: r.PasswordConfirmation,
	}
}

// UserResponse wraps a single user.
type UserResponse struct {
	Message string      `json:"message,omitempty"`
	Token   string      `json:"token,omitempty"`
	User    *model.User `json:"user"`
}

// UsersResponse wraps a user listing.
type UsersResponse struct {
	Users []model.User `json:"users"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UsersResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /v2/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	if users == nil {
		users = []model.User{}
	}
	return c.JSON(http.StatusOK, UsersResponse{Users: users})
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /v2/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetUser(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{User: user})
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body UserRequest true "User payload"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ValidationResponse
// @Router /v1/users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	user, err := h.create(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, UserResponse{Message: msgUserCreated, User: user})
}

// CreateWithToken godoc
// @Summary Sign up and receive a token
// @Tags users
// @Accept json
// @Produce json
// @Param user body UserRequest true "User payload"
// @Success 201 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ValidationResponse
// @Router /v2/users [post]
func (h *UserHandler) CreateWithToken(c echo.Context) error {
	user, err := h.create(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	token, err := h.sessions.IssueToken(ctx, user)
	if err != nil {
		// Drop the new account so the client can retry with the same email.
		if derr := h.svc.DeleteUser(ctx, user.ID); derr != nil {
			logger.FromContext(ctx).Error().Err(derr).Uint("user_id", user.ID).Msg("rollback user after token failure")
		}
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, UserResponse{Message: msgUserCreated, Token: token, User: user})
}

func (h *UserHandler) create(c echo.Context) (*model.User, error) {
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	user, err := h.svc.CreateUser(c.Request().Context(), req.input())
	if err != nil {
		return nil, respondError(c, err)
	}
	return user, nil
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param user body UserRequest true "Attributes to change"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ValidationResponse
// @Router /v2/users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req UserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_BODY",
		})
	}
	user, err := h.svc.UpdateUser(c.Request().Context(), id, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, UserResponse{Message: msgUserUpdated, User: user})
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /v2/users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.svc.DeleteUser(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: msgUserDeleted})
}

func userID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid id",
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}
