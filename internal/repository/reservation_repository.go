package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/utils"
)

// ReservationRepo provides booking, cancellation and check-in over the
// reservations table, plus the append-only checkins audit log. Every
// invariant-bearing operation runs inside a single transaction: the
// naive read-then-write capacity check would let two concurrent
// requests both win the last spot.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationCols = "id, event_id, user_id, status, checkin_code, checked_in_at, created_at, updated_at"

func scanReservation(sc interface{ Scan(...any) error }) (model.Reservation, error) {
	var (
		res       model.Reservation
		code      sql.NullString
		checkedIn sql.NullTime
	)
	err := sc.Scan(&res.ID, &res.EventID, &res.UserID, &res.Status, &code, &checkedIn,
		&res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return res, err
	}
	if code.Valid {
		res.CheckinCode = code.String
	}
	if checkedIn.Valid {
		t := checkedIn.Time
		res.CheckedInAt = &t
	}
	return res, nil
}

// Book creates an active reservation for the user on the event. The
// whole sequence runs in one transaction with the event row locked:
//
//  1. lock event, verify it exists and is published
//  2. reject a second non-cancelled reservation by the same user
//  3. reject when non-cancelled reservations have reached capacity
//  4. insert the reservation with a fresh check-in code
//
// The checkin_code column carries a unique index; on the (vanishingly
// rare) collision the insert is retried with a new code.
func (r *ReservationRepo) Book(ctx context.Context, userID, eventID uint64) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var (
		capacity  int
		published bool
	)
	err = tx.QueryRowContext(ctx,
		"SELECT capacity, published FROM events WHERE id=? FOR UPDATE", eventID).
		Scan(&capacity, &published)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, storeErr("lock event", err)
	}
	if !published {
		return nil, ErrEventNotPublished
	}

	var mine int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE event_id=? AND user_id=? AND status<>?",
		eventID, userID, model.StatusCancelled).Scan(&mine)
	if err != nil {
		return nil, storeErr("count user reservations", err)
	}
	if mine > 0 {
		return nil, ErrDuplicateReservation
	}

	var taken int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE event_id=? AND status<>?",
		eventID, model.StatusCancelled).Scan(&taken)
	if err != nil {
		return nil, storeErr("count reservations", err)
	}
	if taken >= capacity {
		return nil, ErrCapacityExceeded
	}

	var id int64
	var code string
	for attempt := 0; ; attempt++ {
		code, err = utils.RandomHex(16) // 32 hex chars in the QR
		if err != nil {
			return nil, err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO reservations (event_id, user_id, status, checkin_code) VALUES (?,?,?,?)",
			eventID, userID, model.StatusActive, code)
		if err == nil {
			id, err = res.LastInsertId()
			if err != nil {
				return nil, err
			}
			break
		}
		if strings.Contains(strings.ToLower(err.Error()), "1062") && attempt < 4 {
			continue // checkin_code collision, roll a new one
		}
		return nil, storeErr("insert reservation", err)
	}

	reservation, err := scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationCols+" FROM reservations WHERE id=?", id))
	if err != nil {
		return nil, storeErr("load reservation", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", err)
	}
	committed = true
	return &reservation, nil
}

// CheckInByCode flips active -> checked_in with a single conditional
// UPDATE so two stations scanning the same code cannot both succeed,
// then writes the audit row in the same transaction. When the update
// matches nothing the current status decides the error: unknown code,
// already redeemed, or cancelled.
func (r *ReservationRepo) CheckInByCode(ctx context.Context, code, method string) (*model.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		"UPDATE reservations SET status=?, checked_in_at=UTC_TIMESTAMP(), updated_at=UTC_TIMESTAMP() WHERE checkin_code=? AND status=?",
		model.StatusCheckedIn, code, model.StatusActive)
	if err != nil {
		return nil, storeErr("check in", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		var status string
		err := tx.QueryRowContext(ctx,
			"SELECT status FROM reservations WHERE checkin_code=?", code).Scan(&status)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		if err != nil {
			return nil, storeErr("load status", err)
		}
		switch status {
		case model.StatusCheckedIn:
			// Idempotent repeat. Return the row untouched so the
			// caller can still display who was admitted.
			reservation, rerr := scanReservation(tx.QueryRowContext(ctx,
				"SELECT "+reservationCols+" FROM reservations WHERE checkin_code=?", code))
			if rerr != nil {
				return nil, ErrAlreadyCheckedIn
			}
			return &reservation, ErrAlreadyCheckedIn
		default:
			return nil, ErrInvalidState
		}
	}

	reservation, err := scanReservation(tx.QueryRowContext(ctx,
		"SELECT "+reservationCols+" FROM reservations WHERE checkin_code=?", code))
	if err != nil {
		return nil, storeErr("load reservation", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO checkins (reservation_id, user_id, event_id, method) VALUES (?,?,?,?)",
		reservation.ID, reservation.UserID, reservation.EventID, method)
	if err != nil {
		return nil, storeErr("insert checkin", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, storeErr("commit", err)
	}
	committed = true
	return &reservation, nil
}

// CancelForUser cancels a reservation owned by userID. Pass userID 0 to
// skip the ownership restriction (admin path). The status move is a
// single conditional update; already cancelled or checked-in rows
// report ErrInvalidState.
func (r *ReservationRepo) CancelForUser(ctx context.Context, reservationID, userID uint64) error {
	q := "UPDATE reservations SET status=?, updated_at=NOW() WHERE id=? AND status=?"
	args := []any{model.StatusCancelled, reservationID, model.StatusActive}
	if userID != 0 {
		q += " AND user_id=?"
		args = append(args, userID)
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return storeErr("cancel reservation", err)
	}
	n, _ := res.RowsAffected()
	if n == 1 {
		return nil
	}
	// Nothing moved: distinguish missing/foreign from wrong state.
	var status string
	var owner uint64
	err = r.db.QueryRowContext(ctx,
		"SELECT status, user_id FROM reservations WHERE id=?", reservationID).
		Scan(&status, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrReservationNotFound
	}
	if err != nil {
		return storeErr("load status", err)
	}
	if userID != 0 && owner != userID {
		return ErrReservationNotFound // do not leak other users' bookings
	}
	return ErrInvalidState
}

// GetByID returns a single reservation row.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := scanReservation(r.db.QueryRowContext(ctx,
		"SELECT "+reservationCols+" FROM reservations WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// UserReservationDetail is a reservation joined with its event, the
// shape customers see in "my reservations".
type UserReservationDetail struct {
	ID            uint64     `json:"id"`
	EventID       uint64     `json:"event_id"`
	Status        string     `json:"status"`
	CheckinCode   string     `json:"checkin_code,omitempty"`
	CheckedInAt   *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	EventTitle    string     `json:"event_title"`
	EventCategory string     `json:"event_category"`
	EventDate     string     `json:"event_date"`
	EventTime     string     `json:"event_time"`
	EventLocation string     `json:"event_location"`
	EventPrice    float64    `json:"event_price"`
}

// ListByUser returns all reservations for the given user with event
// details, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]UserReservationDetail, error) {
	const q = `SELECT r.id, r.event_id, r.status, r.checkin_code, r.checked_in_at, r.created_at,
			e.title, e.category, DATE_FORMAT(e.date,'%Y-%m-%d'), e.time, e.location, e.price
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, storeErr("list reservations", err)
	}
	defer rows.Close()
	details := make([]UserReservationDetail, 0)
	for rows.Next() {
		var (
			d         UserReservationDetail
			code      sql.NullString
			checkedIn sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.EventID, &d.Status, &code, &checkedIn, &d.CreatedAt,
			&d.EventTitle, &d.EventCategory, &d.EventDate, &d.EventTime, &d.EventLocation, &d.EventPrice); err != nil {
			return nil, err
		}
		if code.Valid {
			d.CheckinCode = code.String
		}
		if checkedIn.Valid {
			t := checkedIn.Time
			d.CheckedInAt = &t
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// EventReservationDetail is a reservation joined with its user, the
// shape admins see on the attendee list of an event.
type EventReservationDetail struct {
	ID          uint64     `json:"id"`
	Status      string     `json:"status"`
	CheckinCode string     `json:"checkin_code,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UserID      uint64     `json:"user_id"`
	UserName    string     `json:"user_name"`
	UserEmail   string     `json:"user_email"`
	UserPhone   string     `json:"user_phone"`
}

// ListByEvent returns a page of reservations for an event with user
// details, newest first, plus the total count.
func (r *ReservationRepo) ListByEvent(ctx context.Context, eventID uint64, offset, limit int) ([]EventReservationDetail, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE event_id=?", eventID).Scan(&total); err != nil {
		return nil, 0, storeErr("count reservations", err)
	}
	const q = `SELECT r.id, r.status, r.checkin_code, r.checked_in_at, r.created_at,
			u.id, u.name, u.email, u.phone
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.event_id = ?
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, eventID, limit, offset)
	if err != nil {
		return nil, 0, storeErr("list reservations", err)
	}
	defer rows.Close()
	details := make([]EventReservationDetail, 0)
	for rows.Next() {
		var (
			d         EventReservationDetail
			code      sql.NullString
			checkedIn sql.NullTime
		)
		if err := rows.Scan(&d.ID, &d.Status, &code, &checkedIn, &d.CreatedAt,
			&d.UserID, &d.UserName, &d.UserEmail, &d.UserPhone); err != nil {
			return nil, 0, err
		}
		if code.Valid {
			d.CheckinCode = code.String
		}
		if checkedIn.Valid {
			t := checkedIn.Time
			d.CheckedInAt = &t
		}
		details = append(details, d)
	}
	return details, total, rows.Err()
}
