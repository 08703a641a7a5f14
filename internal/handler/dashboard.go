package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/service"
)

// DashboardHandler serves the admin statistics endpoints. The heavy
// aggregation endpoint gets a longer timeout than regular queries.
type DashboardHandler struct {
	Svc *service.StatsService
}

func NewDashboardHandler(svc *service.StatsService) *DashboardHandler {
	return &DashboardHandler{Svc: svc}
}

func (h *DashboardHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Quick(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.Svc.Quick(ctx)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *DashboardHandler) Activity(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	feed, err := h.Svc.Activity(ctx)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"activity": feed})
}
