package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
	"github.com/jrosariodev/cultural-center-api/internal/service"
	"github.com/jrosariodev/cultural-center-api/pkg/validator"
)

// AdminEventHandler covers event management: CRUD, publishing and the
// per-event attendance views.
type AdminEventHandler struct {
	Events       *repository.EventRepo
	Reservations *repository.ReservationRepo
	StatsSvc     *service.StatsService
}

func NewAdminEventHandler(e *repository.EventRepo, r *repository.ReservationRepo, s *service.StatsService) *AdminEventHandler {
	return &AdminEventHandler{Events: e, Reservations: r, StatsSvc: s}
}

type eventReq struct {
	Title       string  `json:"title" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Category    string  `json:"category" validate:"required,category"`
	Date        string  `json:"date" validate:"required,eventdate"`
	Time        string  `json:"time" validate:"required,eventtime"`
	Capacity    int     `json:"capacity" validate:"required,gte=1,lte=10000"`
	Location    string  `json:"location" validate:"required,max=200"`
	Price       float64 `json:"price" validate:"gte=0"`
	Published   bool    `json:"published"`
}

func (r *eventReq) toModel() *model.Event {
	return &model.Event{
		Title:       strings.TrimSpace(r.Title),
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		Time:        r.Time,
		Capacity:    r.Capacity,
		Location:    r.Location,
		Price:       r.Price,
		Published:   r.Published,
	}
}

// Create adds an event, draft by default unless published is set.
func (h *AdminEventHandler) Create(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validator.Validate(c.Request().Context(), req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e := req.toModel()
	id, err := h.Events.Create(ctx, e)
	if err != nil {
		return httpError(c, err)
	}
	e.ID = id
	return c.JSON(http.StatusCreated, toEventResp(e, 0))
}

// List returns every event including drafts.
func (h *AdminEventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	events, err := h.Events.List(ctx, false)
	if err != nil {
		return httpError(c, err)
	}
	resp := make([]eventResp, 0, len(events))
	for i := range events {
		taken, err := h.Events.CountActiveReservations(ctx, events[i].ID)
		if err != nil {
			return httpError(c, err)
		}
		resp = append(resp, toEventResp(&events[i], taken))
	}
	return c.JSON(http.StatusOK, resp)
}

// Get returns one event, draft or published.
func (h *AdminEventHandler) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	taken, err := h.Events.CountActiveReservations(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(e, taken))
}

// Update replaces the mutable fields of an event. Shrinking capacity
// below the active reservation count is rejected.
func (h *AdminEventHandler) Update(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := validator.Validate(c.Request().Context(), req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e := req.toModel()
	e.ID = id
	if err := h.Events.Update(ctx, e); err != nil {
		return httpError(c, err)
	}
	taken, err := h.Events.CountActiveReservations(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(e, taken))
}

// TogglePublish flips event visibility between draft and published.
func (h *AdminEventHandler) TogglePublish(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	if err := h.Events.SetPublished(ctx, id, !e.Published); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "published": !e.Published})
}

// Delete removes the event and cancels its reservations in one
// transaction. Audit check-in rows stay.
func (h *AdminEventHandler) Delete(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Events.Delete(ctx, id); err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event deleted"})
}

// Overview reports catalog-wide aggregates: publication split, monthly
// volume, revenue and the most booked events.
func (h *AdminEventHandler) Overview(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	stats, err := h.StatsSvc.Events(ctx)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Stats reports per-event occupancy and attendance.
func (h *AdminEventHandler) Stats(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	e, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	reservations, total, err := h.Reservations.ListByEvent(ctx, id, 0, 10000)
	if err != nil {
		return httpError(c, err)
	}

	active, checkedIn := 0, 0
	for _, r := range reservations {
		switch r.Status {
		case model.StatusActive:
			active++
		case model.StatusCheckedIn:
			checkedIn++
		}
	}
	occupancy := 0.0
	if e.Capacity > 0 {
		occupancy = float64(active+checkedIn) / float64(e.Capacity) * 100
	}
	attendance := 0.0
	if active+checkedIn > 0 {
		attendance = float64(checkedIn) / float64(active+checkedIn) * 100
	}

	return c.JSON(http.StatusOK, echo.Map{
		"event":              toEventResp(e, active+checkedIn),
		"total_reservations": total,
		"active":             active,
		"checked_in":         checkedIn,
		"occupancy_rate":     occupancy,
		"attendance_rate":    attendance,
	})
}

// ListReservations pages through an event's reservations with guest
// details, for the door list.
func (h *AdminEventHandler) ListReservations(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	offset, limit := pagination(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Events.GetByID(ctx, id); err != nil {
		return httpError(c, err)
	}
	reservations, total, err := h.Reservations.ListByEvent(ctx, id, offset, limit)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total":        total,
		"reservations": reservations,
	})
}
