package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jrosariodev/cultural-center-api/internal/model"
)

// StatsRepo runs the read-only aggregation queries behind the admin
// dashboard. None of these touch state, so they are the only queries
// allowed to retry on a transient failure.
type StatsRepo struct {
	db *sql.DB
}

func NewStatsRepo(db *sql.DB) *StatsRepo { return &StatsRepo{db: db} }

// readRetry runs fn and retries once after a short pause when it
// fails. Mutations must never go through this path.
func readRetry(ctx context.Context, fn func() error) error {
	err := fn()
	if err == nil {
		return nil
	}
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err = fn(); err != nil {
		return storeErr("stats query", err)
	}
	return nil
}

func (r *StatsRepo) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	err := readRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, q, args...).Scan(&n)
	})
	return n, err
}

// Totals holds the headline counters of the dashboard.
type Totals struct {
	Users        int `json:"total_users"`
	Events       int `json:"total_events"`
	Reservations int `json:"total_reservations"`
	Checkins     int `json:"total_checkins"`
}

// Totals counts non-deleted users, all events, non-cancelled
// reservations and all audit check-ins.
func (r *StatsRepo) Totals(ctx context.Context) (Totals, error) {
	var t Totals
	var err error
	if t.Users, err = r.count(ctx, "SELECT COUNT(*) FROM users WHERE deleted=0"); err != nil {
		return t, err
	}
	if t.Events, err = r.count(ctx, "SELECT COUNT(*) FROM events"); err != nil {
		return t, err
	}
	if t.Reservations, err = r.count(ctx,
		"SELECT COUNT(*) FROM reservations WHERE status<>?", model.StatusCancelled); err != nil {
		return t, err
	}
	t.Checkins, err = r.count(ctx, "SELECT COUNT(*) FROM checkins")
	return t, err
}

// UsersToday counts registrations since UTC midnight.
func (r *StatsRepo) UsersToday(ctx context.Context) (int, error) {
	return r.count(ctx,
		"SELECT COUNT(*) FROM users WHERE deleted=0 AND DATE(created_at)=UTC_DATE()")
}

// ReservationsToday counts non-cancelled reservations made today.
func (r *StatsRepo) ReservationsToday(ctx context.Context) (int, error) {
	return r.count(ctx,
		"SELECT COUNT(*) FROM reservations WHERE status<>? AND DATE(created_at)=UTC_DATE()",
		model.StatusCancelled)
}

// CheckinsToday counts audit rows written today.
func (r *StatsRepo) CheckinsToday(ctx context.Context) (int, error) {
	return r.count(ctx,
		"SELECT COUNT(*) FROM checkins WHERE DATE(created_at)=UTC_DATE()")
}

// EventsThisMonth counts events created since the first of the month.
func (r *StatsRepo) EventsThisMonth(ctx context.Context) (int, error) {
	return r.count(ctx,
		"SELECT COUNT(*) FROM events WHERE created_at >= DATE_FORMAT(UTC_DATE(), '%Y-%m-01')")
}

// CheckedInReservations counts reservations currently in checked_in
// state, the numerator of the check-in rate.
func (r *StatsRepo) CheckedInReservations(ctx context.Context) (int, error) {
	return r.count(ctx,
		"SELECT COUNT(*) FROM reservations WHERE status=?", model.StatusCheckedIn)
}

// PublishedCounts returns published and draft event counts.
func (r *StatsRepo) PublishedCounts(ctx context.Context) (published, draft int, err error) {
	if published, err = r.count(ctx, "SELECT COUNT(*) FROM events WHERE published=1"); err != nil {
		return 0, 0, err
	}
	draft, err = r.count(ctx, "SELECT COUNT(*) FROM events WHERE published=0")
	return published, draft, err
}

// revenueQ joins reservations to their events and sums the ticket
// price of every non-cancelled reservation. extra narrows the window.
func (r *StatsRepo) revenue(ctx context.Context, extra string) (float64, error) {
	q := `SELECT COALESCE(SUM(e.price), 0)
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.status <> ?` + extra
	var total float64
	err := readRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, q, model.StatusCancelled).Scan(&total)
	})
	return total, err
}

// RevenueTotal sums ticket prices over all non-cancelled reservations.
func (r *StatsRepo) RevenueTotal(ctx context.Context) (float64, error) {
	return r.revenue(ctx, "")
}

// RevenueToday restricts the revenue sum to reservations made today.
func (r *StatsRepo) RevenueToday(ctx context.Context) (float64, error) {
	return r.revenue(ctx, " AND DATE(r.created_at)=UTC_DATE()")
}

// RevenueThisMonth restricts the revenue sum to the current month.
func (r *StatsRepo) RevenueThisMonth(ctx context.Context) (float64, error) {
	return r.revenue(ctx, " AND r.created_at >= DATE_FORMAT(UTC_DATE(), '%Y-%m-01')")
}

// PopularEvent is one row of the top-events ranking.
type PopularEvent struct {
	EventID          uint64 `json:"event_id"`
	Title            string `json:"event_title"`
	Category         string `json:"event_category"`
	Date             string `json:"event_date"`
	Capacity         int    `json:"capacity"`
	ReservationCount int    `json:"reservation_count"`
}

// PopularEvents ranks events by non-cancelled reservation count.
func (r *StatsRepo) PopularEvents(ctx context.Context, limit int) ([]PopularEvent, error) {
	const q = `SELECT e.id, e.title, e.category, DATE_FORMAT(e.date,'%Y-%m-%d'), e.capacity, COUNT(*) AS cnt
		FROM reservations r
		JOIN events e ON e.id = r.event_id
		WHERE r.status <> ?
		GROUP BY e.id, e.title, e.category, e.date, e.capacity
		ORDER BY cnt DESC
		LIMIT ?`
	var out []PopularEvent
	err := readRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, q, model.StatusCancelled, limit)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var p PopularEvent
			if err := rows.Scan(&p.EventID, &p.Title, &p.Category, &p.Date, &p.Capacity, &p.ReservationCount); err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	if out == nil {
		out = []PopularEvent{}
	}
	return out, err
}

// EventsByCategory counts events per category.
func (r *StatsRepo) EventsByCategory(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	err := readRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx,
			"SELECT category, COUNT(*) FROM events GROUP BY category ORDER BY COUNT(*) DESC")
		if err != nil {
			return err
		}
		defer rows.Close()
		clear(counts)
		for rows.Next() {
			var cat string
			var n int
			if err := rows.Scan(&cat, &n); err != nil {
				return err
			}
			counts[cat] = n
		}
		return rows.Err()
	})
	return counts, err
}

// Activity is a single item of the recent-activity feeds. Message is
// pre-rendered so the frontend only sorts and displays.
type Activity struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Icon      string    `json:"icon,omitempty"`
}

// ActivityRow is a raw feed row before rendering. Extra carries the
// second column of each query (email, event title or category).
type ActivityRow struct {
	Name      string
	Extra     string
	Status    string
	CreatedAt time.Time
}

func (r *StatsRepo) activityRows(ctx context.Context, q string, limit int, args ...any) ([]ActivityRow, error) {
	var out []ActivityRow
	err := readRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, q, append(args, limit)...)
		if err != nil {
			return err
		}
		defer rows.Close()
		out = out[:0]
		for rows.Next() {
			var n ActivityRow
			if err := rows.Scan(&n.Name, &n.Extra, &n.Status, &n.CreatedAt); err != nil {
				return err
			}
			out = append(out, n)
		}
		return rows.Err()
	})
	return out, err
}

// RecentUsers returns the newest registrations (name, email).
func (r *StatsRepo) RecentUsers(ctx context.Context, limit int) ([]ActivityRow, error) {
	return r.activityRows(ctx,
		"SELECT name, email, '', created_at FROM users WHERE deleted=0 ORDER BY created_at DESC LIMIT ?",
		limit)
}

// RecentReservations returns the newest non-cancelled reservations
// (user name, event title, status).
func (r *StatsRepo) RecentReservations(ctx context.Context, limit int) ([]ActivityRow, error) {
	return r.activityRows(ctx, `SELECT u.name, e.title, r.status, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		JOIN events e ON e.id = r.event_id
		WHERE r.status <> ?
		ORDER BY r.created_at DESC LIMIT ?`,
		limit, model.StatusCancelled)
}

// RecentEvents returns the newest events (title, category).
func (r *StatsRepo) RecentEvents(ctx context.Context, limit int) ([]ActivityRow, error) {
	return r.activityRows(ctx,
		"SELECT title, category, '', created_at FROM events ORDER BY created_at DESC LIMIT ?",
		limit)
}

// RecentCheckins returns the newest audit rows (user name, event
// title, method) for the live activity feed.
func (r *StatsRepo) RecentCheckins(ctx context.Context, limit int) ([]ActivityRow, error) {
	return r.activityRows(ctx, `SELECT u.name, e.title, c.method, c.created_at
		FROM checkins c
		JOIN users u ON u.id = c.user_id
		JOIN events e ON e.id = c.event_id
		ORDER BY c.created_at DESC LIMIT ?`,
		limit)
}
