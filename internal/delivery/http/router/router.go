// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"evault/internal/delivery/http/middleware"
	"evault/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	UserHandler      *handler.UserHandler
	DashboardHandler *handler.DashboardHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	userHandler      *handler.UserHandler
	dashboardHandler *handler.DashboardHandler
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		userHandler:      params.UserHandler,
		dashboardHandler: params.DashboardHandler,
		authMiddleware:   params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	api.GET("/healthcheck", handler.HealthCheck)

	// Broker routes: no session yet, the handshake record is the state
	authGroup := api.Group("/auth")
	{
		authGroup.GET("", r.authHandler.Start)
		authGroup.GET("/url", r.authHandler.LoginURL)
		authGroup.GET("/token", r.authHandler.Callback)
		authGroup.GET("/poll", r.authHandler.Poll)
		authGroup.GET("/refresh", r.authHandler.Refresh)
	}

	// Everything under /github requires a live session
	githubGroup := api.Group("/github")
	githubGroup.Use(r.authMiddleware.Authenticate)
	{
		githubGroup.GET("/user", r.userHandler.Profile)

		dashboardGroup := githubGroup.Group("/dashboard")
		dashboardGroup.GET("/repositories", r.dashboardHandler.ListRepositories)
		dashboardGroup.GET("/repository/:id", r.dashboardHandler.GetVault)
		dashboardGroup.POST("/repository/new", r.dashboardHandler.CreateVault, r.authMiddleware.RequireCSRF)
	}
}
