package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// HealthHandler reports whether the service and its backing stores are
// reachable. Redis is optional: when it is down the service still works
// without caching, so only the database decides the status code.
type HealthHandler struct {
	DB    *sql.DB
	Redis *redis.Client // nil when Redis was unavailable at startup
}

// Health handles GET /healthz.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	body := echo.Map{"status": "ok", "db": "up", "redis": "disabled"}
	status := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		body["status"], body["db"] = "degraded", "down"
		status = http.StatusServiceUnavailable
	}
	if h.Redis != nil {
		body["redis"] = "up"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			body["redis"] = "down"
		}
	}
	return c.JSON(status, body)
}
