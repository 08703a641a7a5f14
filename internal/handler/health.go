package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports liveness plus a database ping so the orchestrator can
// tell a dead pod from a dead database.
type Health struct {
	DB *sql.DB
}

func NewHealth(db *sql.DB) *Health { return &Health{DB: db} }

func (h *Health) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	status := http.StatusOK
	if err := h.DB.PingContext(ctx); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, echo.Map{
		"status": "ok",
		"db":     dbStatus,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
