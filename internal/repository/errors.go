// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios: routine,
// expected conditions (a full event, a duplicate booking) versus real
// infrastructure faults. Handlers translate each into a distinct HTTP
// status and message.
package repository

import (
	"errors"
	"fmt"
)

// Not-found variants. Each maps to an HTTP 404.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ErrEmailExists is returned when registration hits the unique email
// index. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicateReservation is returned when a user already holds a
// non-cancelled reservation for the event. Expected and routine.
var ErrDuplicateReservation = errors.New("duplicate reservation")

// ErrCapacityExceeded is returned when the event has no free spots
// left. Expected and routine, never an incident.
var ErrCapacityExceeded = errors.New("event capacity exceeded")

// ErrEventNotPublished is returned when booking is attempted against a
// draft event.
var ErrEventNotPublished = errors.New("event not published")

// ErrAlreadyCheckedIn is returned when a check-in code was already
// redeemed. The stored check-in timestamp is left untouched; callers
// must treat this as non-fatal.
var ErrAlreadyCheckedIn = errors.New("reservation already checked in")

// ErrInvalidState is returned for a state transition the reservation
// does not allow, e.g. checking in a cancelled reservation.
var ErrInvalidState = errors.New("invalid reservation state")

// ErrCapacityBelowReserved is returned when an event update would set
// capacity below the current count of non-cancelled reservations.
// Handlers should translate this into an HTTP 409 response.
var ErrCapacityBelowReserved = errors.New("capacity below reserved count")

// ErrStoreUnavailable wraps transient database failures. Only
// idempotent reads may be retried on it; mutations surface it to the
// caller so a retry decision stays with whoever can judge idempotency.
var ErrStoreUnavailable = errors.New("store unavailable")

// storeErr tags err as a transient store failure while preserving the
// original message for logs.
func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrStoreUnavailable, op, err)
}
