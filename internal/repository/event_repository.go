package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jrosariodev/cultural-center-api/internal/model"
)

// EventRepo provides CRUD operations for events. Capacity-sensitive
// mutations (update, delete) run in transactions so the reservation
// count they act on cannot move underneath them.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their
// own transactions spanning several repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventCols = `id, title, description, category, DATE_FORMAT(date,'%Y-%m-%d'), time,
	capacity, location, price, published, created_at, updated_at`

func scanEvent(sc interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := sc.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &e.Date, &e.Time,
		&e.Capacity, &e.Location, &e.Price, &e.Published, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create inserts a new event and returns its ID.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) (uint64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO events (title, description, category, date, time, capacity, location, price, published)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		e.Title, e.Description, e.Category, e.Date, e.Time, e.Capacity, e.Location, e.Price, e.Published)
	if err != nil {
		return 0, storeErr("insert event", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID returns the event regardless of publication state.
func (r *EventRepo) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx,
		"SELECT "+eventCols+" FROM events WHERE id=?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List returns events ordered by date. When publishedOnly is true,
// draft events are excluded (the public catalog view).
func (r *EventRepo) List(ctx context.Context, publishedOnly bool) ([]model.Event, error) {
	q := "SELECT " + eventCols + " FROM events"
	if publishedOnly {
		q += " WHERE published=1"
	}
	q += " ORDER BY date ASC, time ASC"
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	defer rows.Close()
	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountActiveReservations counts non-cancelled reservations for an
// event. available_spots = max(0, capacity - this).
func (r *EventRepo) CountActiveReservations(ctx context.Context, eventID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reservations WHERE event_id=? AND status<>?",
		eventID, model.StatusCancelled).Scan(&n)
	if err != nil {
		return 0, storeErr("count reservations", err)
	}
	return n, nil
}

// Update rewrites all editable fields. It refuses to lower capacity
// below the current non-cancelled reservation count; the check and the
// write happen in one transaction with the event row locked so a
// concurrent booking cannot slip between them.
func (r *EventRepo) Update(ctx context.Context, e *model.Event) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current int
	err = tx.QueryRowContext(ctx, "SELECT capacity FROM events WHERE id=? FOR UPDATE", e.ID).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrEventNotFound
	}
	if err != nil {
		return storeErr("lock event", err)
	}
	if e.Capacity < current {
		var reserved int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM reservations WHERE event_id=? AND status<>?",
			e.ID, model.StatusCancelled).Scan(&reserved); err != nil {
			return storeErr("count reservations", err)
		}
		if e.Capacity < reserved {
			return ErrCapacityBelowReserved
		}
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE events SET title=?, description=?, category=?, date=?, time=?,
			capacity=?, location=?, price=?, published=?, updated_at=NOW()
		WHERE id=?`,
		e.Title, e.Description, e.Category, e.Date, e.Time,
		e.Capacity, e.Location, e.Price, e.Published, e.ID)
	if err != nil {
		return storeErr("update event", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	committed = true
	return nil
}

// SetPublished sets the published flag.
func (r *EventRepo) SetPublished(ctx context.Context, id uint64, published bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE events SET published=?, updated_at=NOW() WHERE id=?", published, id)
	if err != nil {
		return storeErr("publish event", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes the event and cancels its non-cancelled reservations
// in the same transaction. Check-in audit rows are append-only and are
// deliberately left in place.
func (r *EventRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, "DELETE FROM events WHERE id=?", id)
	if err != nil {
		return storeErr("delete event", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrEventNotFound
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE reservations SET status=?, updated_at=NOW() WHERE event_id=? AND status<>?",
		model.StatusCancelled, id, model.StatusCancelled)
	if err != nil {
		return storeErr("cancel reservations", err)
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit", err)
	}
	committed = true
	return nil
}
