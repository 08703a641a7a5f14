package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// EventHandler serves the public event catalog.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(e *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: e}
}

type eventResp struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	Category       string  `json:"category"`
	Date           string  `json:"date"`
	Time           string  `json:"time"`
	Capacity       int     `json:"capacity"`
	AvailableSpots int     `json:"available_spots"`
	Location       string  `json:"location"`
	Price          float64 `json:"price"`
	Published      bool    `json:"published"`
}

func toEventResp(e *model.Event, taken int) eventResp {
	spots := e.Capacity - taken
	if spots < 0 {
		spots = 0
	}
	return eventResp{
		ID:             e.ID,
		Title:          e.Title,
		Description:    e.Description,
		Category:       e.Category,
		Date:           e.Date,
		Time:           e.Time,
		Capacity:       e.Capacity,
		AvailableSpots: spots,
		Location:       e.Location,
		Price:          e.Price,
		Published:      e.Published,
	}
}

// List returns all published events with live availability.
func (h *EventHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	events, err := h.Events.List(ctx, true)
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

// Get returns one published event. Drafts stay invisible here.
func (h *EventHandler) Get(c echo.Context) error {
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
	if !e.Published {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	}
	taken, err := h.Events.CountActiveReservations(ctx, id)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(e, taken))
}

// Categories returns the fixed category list the center programs.
func (h *EventHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"categories": model.Categories})
}
