package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/middleware"
	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/service"
)

// ReservationHandler exposes member booking endpoints.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

type createReservationReq struct {
	EventID uint64 `json:"event_id"`
}

type reservationResp struct {
	ID          uint64 `json:"id"`
	EventID     uint64 `json:"event_id"`
	Status      string `json:"status"`
	CheckinCode string `json:"checkin_code"`
	CreatedAt   string `json:"created_at"`
}

// Create books a spot for the caller. The store rejects full events
// and duplicates atomically, so the response is authoritative.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	var req createReservationReq
	if err := c.Bind(&req); err != nil || req.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	res, err := h.Svc.Book(ctx, uid, req.EventID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, reservationResp{
		ID:          res.ID,
		EventID:     res.EventID,
		Status:      res.Status,
		CheckinCode: res.CheckinCode,
		CreatedAt:   res.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	})
}

// ListMine returns the caller's reservations with event details.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	list, err := h.Svc.ListMine(ctx, uid)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"reservations": list})
}

// Cancel cancels one of the caller's active reservations. Admins may
// cancel any reservation.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid := middleware.CurrentUserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	// Admins bypass the ownership check.
	owner := uid
	if middleware.CurrentRole(c) == model.RoleAdmin {
		owner = 0
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Svc.Cancel(ctx, id, owner); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "reservation cancelled"})
}
