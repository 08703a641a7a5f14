package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// dbTimeout bounds every handler-issued database call.
const dbTimeout = 5 * time.Second

// httpError maps a repository error to the HTTP response for it.
// Unknown errors become 500 without leaking internals; transient store
// failures become 503 so clients know to retry.
func httpError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	case errors.Is(err, repository.ErrEventNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
	case errors.Is(err, repository.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrDuplicateReservation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already reserved for this event"})
	case errors.Is(err, repository.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is full"})
	case errors.Is(err, repository.ErrEventNotPublished):
		return c.JSON(http.StatusConflict, echo.Map{"error": "event is not open for reservations"})
	case errors.Is(err, repository.ErrAlreadyCheckedIn):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already checked in"})
	case errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation is not active"})
	case errors.Is(err, repository.ErrCapacityBelowReserved):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity below active reservations"})
	case errors.Is(err, repository.ErrStoreUnavailable):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage temporarily unavailable"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// pagination reads ?page and ?per_page with sane bounds.
func pagination(c echo.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	per, _ := strconv.Atoi(c.QueryParam("per_page"))
	if per < 1 || per > 100 {
		per = 20
	}
	return (page - 1) * per, per
}
