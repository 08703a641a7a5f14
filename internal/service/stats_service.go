package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// StatsStore is the aggregation surface of the dashboard. The SQL
// implementation retries reads once on transient failures.
type StatsStore interface {
	Totals(ctx context.Context) (repository.Totals, error)
	UsersToday(ctx context.Context) (int, error)
	ReservationsToday(ctx context.Context) (int, error)
	CheckinsToday(ctx context.Context) (int, error)
	EventsThisMonth(ctx context.Context) (int, error)
	CheckedInReservations(ctx context.Context) (int, error)
	PublishedCounts(ctx context.Context) (published, draft int, err error)
	RevenueTotal(ctx context.Context) (float64, error)
	RevenueToday(ctx context.Context) (float64, error)
	RevenueThisMonth(ctx context.Context) (float64, error)
	PopularEvents(ctx context.Context, limit int) ([]repository.PopularEvent, error)
	EventsByCategory(ctx context.Context) (map[string]int, error)
	RecentUsers(ctx context.Context, limit int) ([]repository.ActivityRow, error)
	RecentReservations(ctx context.Context, limit int) ([]repository.ActivityRow, error)
	RecentEvents(ctx context.Context, limit int) ([]repository.ActivityRow, error)
	RecentCheckins(ctx context.Context, limit int) ([]repository.ActivityRow, error)
}

// DashboardStats is the full admin dashboard payload.
type DashboardStats struct {
	TotalUsers        int     `json:"total_users"`
	TotalEvents       int     `json:"total_events"`
	TotalReservations int     `json:"total_reservations"`
	TotalCheckins     int     `json:"total_checkins"`
	UsersToday        int     `json:"users_today"`
	ReservationsToday int     `json:"reservations_today"`
	CheckinsToday     int     `json:"checkins_today"`
	EventsThisMonth   int     `json:"events_this_month"`
	PublishedEvents   int     `json:"published_events"`
	DraftEvents       int     `json:"draft_events"`
	CheckinRate       float64 `json:"checkin_rate"`
	RevenueTotal      float64 `json:"revenue_total"`
	RevenueToday      float64 `json:"revenue_today"`
	RevenueThisMonth  float64 `json:"revenue_this_month"`

	PopularEvents    []repository.PopularEvent `json:"popular_events"`
	EventsByCategory map[string]int            `json:"events_by_category"`
}

// QuickStats is the lightweight header widget payload.
type QuickStats struct {
	TotalUsers        int `json:"total_users"`
	TotalEvents       int `json:"total_events"`
	TotalReservations int `json:"total_reservations"`
	CheckinsToday     int `json:"checkins_today"`
}

// EventStats is the catalog-wide figure set behind the admin event screen.
type EventStats struct {
	TotalEvents      int     `json:"total_events"`
	PublishedEvents  int     `json:"published_events"`
	DraftEvents      int     `json:"draft_events"`
	EventsThisMonth  int     `json:"events_this_month"`
	RevenueTotal     float64 `json:"revenue_total"`
	RevenueThisMonth float64 `json:"revenue_this_month"`

	PopularEvents    []repository.PopularEvent `json:"popular_events"`
	EventsByCategory map[string]int            `json:"events_by_category"`
}

const (
	statsCacheKey = "dashboard:stats"
	statsCacheTTL = 30 * time.Second
	popularLimit  = 5
	activityLimit = 10
)

// StatsService assembles dashboard figures. A Redis client, when
// present, caches the heavy payload briefly so dashboard polling does
// not hammer the database.
type StatsService struct {
	store StatsStore
	cache *redis.Client
	log   zerolog.Logger
}

func NewStatsService(store StatsStore, cache *redis.Client, log zerolog.Logger) *StatsService {
	return &StatsService{store: store, cache: cache, log: log}
}

// Dashboard returns the full aggregated dashboard payload.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, err
	}

	out := &DashboardStats{
		TotalUsers:        totals.Users,
		TotalEvents:       totals.Events,
		TotalReservations: totals.Reservations,
		TotalCheckins:     totals.Checkins,
	}
	if out.UsersToday, err = s.store.UsersToday(ctx); err != nil {
		return nil, err
	}
	if out.ReservationsToday, err = s.store.ReservationsToday(ctx); err != nil {
		return nil, err
	}
	if out.CheckinsToday, err = s.store.CheckinsToday(ctx); err != nil {
		return nil, err
	}
	if out.EventsThisMonth, err = s.store.EventsThisMonth(ctx); err != nil {
		return nil, err
	}
	if out.PublishedEvents, out.DraftEvents, err = s.store.PublishedCounts(ctx); err != nil {
		return nil, err
	}
	checkedIn, err := s.store.CheckedInReservations(ctx)
	if err != nil {
		return nil, err
	}
	if totals.Reservations > 0 {
		out.CheckinRate = float64(checkedIn) / float64(totals.Reservations) * 100
	}
	if out.RevenueTotal, err = s.store.RevenueTotal(ctx); err != nil {
		return nil, err
	}
	if out.RevenueToday, err = s.store.RevenueToday(ctx); err != nil {
		return nil, err
	}
	if out.RevenueThisMonth, err = s.store.RevenueThisMonth(ctx); err != nil {
		return nil, err
	}
	if out.PopularEvents, err = s.store.PopularEvents(ctx, popularLimit); err != nil {
		return nil, err
	}
	if out.EventsByCategory, err = s.store.EventsByCategory(ctx); err != nil {
		return nil, err
	}

	s.toCache(ctx, out)
	return out, nil
}

// Events returns catalog-wide event aggregates: publication split,
// monthly volume, revenue and the top events by bookings.
func (s *StatsService) Events(ctx context.Context) (*EventStats, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, err
	}
	out := &EventStats{TotalEvents: totals.Events}

	if out.PublishedEvents, out.DraftEvents, err = s.store.PublishedCounts(ctx); err != nil {
		return nil, err
	}
	if out.EventsThisMonth, err = s.store.EventsThisMonth(ctx); err != nil {
		return nil, err
	}
	if out.RevenueTotal, err = s.store.RevenueTotal(ctx); err != nil {
		return nil, err
	}
	if out.RevenueThisMonth, err = s.store.RevenueThisMonth(ctx); err != nil {
		return nil, err
	}
	if out.PopularEvents, err = s.store.PopularEvents(ctx, popularLimit); err != nil {
		return nil, err
	}
	if out.EventsByCategory, err = s.store.EventsByCategory(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// Quick returns the header counters without touching the cache.
func (s *StatsService) Quick(ctx context.Context) (*QuickStats, error) {
	totals, err := s.store.Totals(ctx)
	if err != nil {
		return nil, err
	}
	today, err := s.store.CheckinsToday(ctx)
	if err != nil {
		return nil, err
	}
	return &QuickStats{
		TotalUsers:        totals.Users,
		TotalEvents:       totals.Events,
		TotalReservations: totals.Reservations,
		CheckinsToday:     today,
	}, nil
}

// Activity merges the recent users, reservations, events and check-ins
// into one feed sorted newest first.
func (s *StatsService) Activity(ctx context.Context) ([]repository.Activity, error) {
	var feed []repository.Activity

	users, err := s.store.RecentUsers(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		feed = append(feed, repository.Activity{
			Type:      "user_registered",
			Message:   fmt.Sprintf("%s registered (%s)", u.Name, u.Extra),
			Timestamp: u.CreatedAt,
			Icon:      "user",
		})
	}

	reservations, err := s.store.RecentReservations(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	for _, r := range reservations {
		feed = append(feed, repository.Activity{
			Type:      "reservation_created",
			Message:   fmt.Sprintf("%s reserved a spot for %s", r.Name, r.Extra),
			Timestamp: r.CreatedAt,
			Icon:      "ticket",
		})
	}

	events, err := s.store.RecentEvents(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		feed = append(feed, repository.Activity{
			Type:      "event_created",
			Message:   fmt.Sprintf("New event: %s (%s)", e.Name, e.Extra),
			Timestamp: e.CreatedAt,
			Icon:      "calendar",
		})
	}

	checkins, err := s.store.RecentCheckins(ctx, activityLimit)
	if err != nil {
		return nil, err
	}
	for _, c := range checkins {
		feed = append(feed, repository.Activity{
			Type:      "checkin",
			Message:   fmt.Sprintf("%s checked in to %s", c.Name, c.Extra),
			Timestamp: c.CreatedAt,
			Icon:      "check",
		})
	}

	sort.Slice(feed, func(i, j int) bool { return feed[i].Timestamp.After(feed[j].Timestamp) })
	if len(feed) > 2*activityLimit {
		feed = feed[:2*activityLimit]
	}
	if feed == nil {
		feed = []repository.Activity{}
	}
	return feed, nil
}

func (s *StatsService) fromCache(ctx context.Context) *DashboardStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var out DashboardStats
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return &out
}

func (s *StatsService) toCache(ctx context.Context, stats *DashboardStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil {
		s.log.Debug().Err(err).Msg("stats cache write failed")
	}
}
