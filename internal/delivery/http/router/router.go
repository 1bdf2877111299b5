// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"credsvc/config"
	"credsvc/internal/delivery/http/middleware"
	"credsvc/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	Config            *config.Config
	CredentialHandler *handler.CredentialHandler
	AuthMiddleware    *middleware.AuthMiddleware
	MetricsMiddleware *middleware.MetricsMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	credentialHandler *handler.CredentialHandler
	authMiddleware    *middleware.AuthMiddleware
	metrics           *middleware.MetricsMiddleware
	maxBodySize       string
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		credentialHandler: params.CredentialHandler,
		authMiddleware:    params.AuthMiddleware,
		metrics:           params.MetricsMiddleware,
		maxBodySize:       params.Config.HTTP.MaxRequestBodySize,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)

	// Body limits sit inside FailureMessage so 413s carry the endpoint's message.
	bodyLimit := echomiddleware.BodyLimit(r.maxBodySize)
	e.POST("/register", r.credentialHandler.Register, middleware.FailureMessage(handler.RegisterErrorMessage), bodyLimit)
	e.POST("/login", r.credentialHandler.Login, middleware.FailureMessage(handler.LoginErrorMessage), bodyLimit)
	e.GET("/users", r.credentialHandler.ListUsers)

	e.GET("/me", r.credentialHandler.Me, r.authMiddleware.Authenticate)

	if r.metrics != nil && r.metrics.Enabled() {
		e.GET("/metrics", r.metrics.Handler())
	}
}
