package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/service"
)

// CheckinHandler serves the door staff endpoint that redeems QR codes.
type CheckinHandler struct {
	Svc *service.CheckinService
}

func NewCheckinHandler(svc *service.CheckinService) *CheckinHandler {
	return &CheckinHandler{Svc: svc}
}

type checkinReq struct {
	Code   string `json:"code"`
	Method string `json:"method"` // "scanned" or "manual"
}

// Redeem checks a guest in by their reservation code. Scanning an
// already redeemed code returns 200 with already_checked_in so the
// door flow keeps moving.
func (h *CheckinHandler) Redeem(c echo.Context) error {
	var req checkinReq
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	out, err := h.Svc.Redeem(ctx, req.Code, req.Method)
	if err != nil {
		return httpError(c, err)
	}

	resp := echo.Map{
		"already_checked_in": out.AlreadyCheckedIn,
		"reservation": echo.Map{
			"id":            out.Reservation.ID,
			"status":        out.Reservation.Status,
			"checked_in_at": out.Reservation.CheckedInAt,
		},
	}
	if out.User != nil {
		resp["guest"] = echo.Map{"id": out.User.ID, "name": out.User.Name, "email": out.User.Email}
	}
	if out.Event != nil {
		resp["event"] = echo.Map{"id": out.Event.ID, "title": out.Event.Title, "date": out.Event.Date, "time": out.Event.Time}
	}
	return c.JSON(http.StatusOK, resp)
}
