// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a reservation is created.
// It carries enough for downstream consumers to email the guest or feed
// analytics without querying the primary database.
type ReservationConfirmedEvent struct {
	ReservationID uint64  `json:"reservation_id"`
	CheckinCode   string  `json:"checkin_code"`
	UserID        uint64  `json:"user_id"`
	UserName      string  `json:"user_name"`
	UserEmail     string  `json:"user_email"`
	EventID       uint64  `json:"event_id"`
	EventTitle    string  `json:"event_title"`
	EventDate     string  `json:"event_date"`
	EventTime     string  `json:"event_time"`
	Location      string  `json:"location"`
	Price         float64 `json:"price"`
	ReservedAt    string  `json:"reserved_at"`
}
