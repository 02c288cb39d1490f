package rest

import (
	"context"
	"net/http"
	"time"

	"spiceMarket/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Pinger is any dependency that can report whether it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			logger.Error("Health check failed", err, "dependency", name)
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":     "unavailable",
				"dependency": name,
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
