package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"userauth/internal/handler"
	"userauth/internal/logger"
	"userauth/internal/middleware"
)

// Handlers bundles the HTTP handlers shared by every API version.
type Handlers struct {
	Users    *handler.UserHandler
	Sessions *handler.SessionHandler
	Home     *handler.HomeHandler
}

// Register wires routes and middleware. v1 exposes the user resource
// without authentication; v2 guards everything except sign-up and login.
func Register(e *echo.Echo, log *logger.Logger, h Handlers, gate middleware.Authenticator) {
	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	v1 := api.Group("/v1")
	registerUsers(v1, h.Users, h.Users.CreateUser)

	requireAuth := middleware.RequireAuth(gate)
	v2 := api.Group("/v2")
	registerUsers(v2, h.Users, h.Users.CreateWithToken, requireAuth)
	v2.POST("/login", h.Sessions.Login)
	v2.DELETE("/logout", h.Sessions.Logout, requireAuth)
	v2.GET("/home", h.Home.Index, requireAuth)
}

// registerUsers mounts the user resource. Creation is always public; guard
// applies to the remaining routes.
func registerUsers(g *echo.Group, users *handler.UserHandler, create echo.HandlerFunc, guard ...echo.MiddlewareFunc) {
	g.POST("/users", create)
	g.GET("/users", users.ListUsers, guard...)
	g.GET("/users/:id", users.GetUser, guard...)
	g.PUT("/users/:id", users.UpdateUser, guard...)
	g.PATCH("/users/:id", users.UpdateUser, guard...)
	g.DELETE("/users/:id", users.DeleteUser, guard...)
}
