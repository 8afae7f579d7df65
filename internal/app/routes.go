package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/kontakt/internal/metrics"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules []Module
	// Store backs the health check.
	Store Pinger
	// MetricsPath mounts the Prometheus handler; empty disables it.
	MetricsPath string
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}

	r.GET("/health", healthHandler(deps.Store))

	if deps.MetricsPath != "" {
		r.GET(deps.MetricsPath, metrics.Handler())
	}

	api := r.Group("/api/v1")
	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(api)
	}

	r.NoRoute(noRouteHandler())
	r.NoMethod(noMethodHandler())

	return nil
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// healthHandler pings the store with a one-second budget. Any failure turns
// the answer into 503 "degraded" and is logged with its cause.
func healthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := errors.New("no store configured")
		if store != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			err = store.Ping(ctx)
			cancel()
		}

		if err != nil {
			slog.WarnContext(c.Request.Context(), "health check failed", slog.Any("error", err))
			c.JSON(http.StatusServiceUnavailable, healthResponse{
				Status:     "degraded",
				Components: map[string]string{"database": "error"},
			})
			return
		}
		c.JSON(http.StatusOK, healthResponse{
			Status:     "ok",
			Components: map[string]string{"database": "ok"},
		})
	}
}
