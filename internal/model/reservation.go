package model

import "time"

// Reservation statuses. A reservation is born active, may be cancelled
// by its owner or an admin, and transitions to checked_in exactly once
// at the door. Cancelled reservations never count toward capacity.
const (
	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusCheckedIn = "checked_in"
)

// Check-in methods recorded in the audit log.
const (
	MethodManual  = "manual"
	MethodScanned = "scanned"
)

// Reservation links one user to one event. CheckinCode is the unique
// token printed in the confirmation QR; it is set on creation and kept
// through cancellation so the audit trail stays intact.
type Reservation struct {
	ID          uint64     // reservations.id
	EventID     uint64     // reservations.event_id
	UserID      uint64     // reservations.user_id
	Status      string     // reservations.status
	CheckinCode string     // reservations.checkin_code
	CheckedInAt *time.Time // reservations.checked_in_at (nullable)
	CreatedAt   time.Time  // reservations.created_at
	UpdatedAt   time.Time  // reservations.updated_at
}

// Checkin is one row of the append-only attendance audit log, written
// once per successful check-in.
type Checkin struct {
	ID            uint64    // checkins.id
	ReservationID uint64    // checkins.reservation_id
	UserID        uint64    // checkins.user_id
	EventID       uint64    // checkins.event_id
	Method        string    // checkins.method
	CreatedAt     time.Time // checkins.created_at
}
