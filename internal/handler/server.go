package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/travelmate/flightproxy/internal/logging"
)

type ServerConfig struct {
	ServiceName string
	CORSOrigin  string
}

// NewEcho builds the echo instance with the middleware chain every route
// shares.
func NewEcho(cfg ServerConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.Middleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	}))
	if cfg.ServiceName != "" {
		e.Use(otelecho.Middleware(cfg.ServiceName))
	}

	return e
}

// Register mounts the proxy routes. metricsHandler may be nil.
func Register(e *echo.Echo, search *SearchHandler, metricsHandler http.Handler) {
	api := e.Group("/api")
	api.GET("/flights/search", search.Search)
	api.GET("/health", HealthHandler)

	if metricsHandler != nil {
		e.GET("/metrics", echo.WrapHandler(metricsHandler))
	}
}
