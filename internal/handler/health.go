package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is the health-check endpoint used by load balancers and
// monitoring.  When ping is set the store is checked as well and an
// unreachable store answers 503.
type Health struct {
	ping func(ctx context.Context) error
}

// NewHealth returns the health handler.  ping may be nil.
func NewHealth(ping func(ctx context.Context) error) *Health {
	return &Health{ping: ping}
}

// Check handles GET /healthz.
func (h *Health) Check(c echo.Context) error {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
