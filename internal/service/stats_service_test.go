package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// fakeStats serves canned aggregation results.
type fakeStats struct {
	totals       repository.Totals
	checkedIn    int
	users        []repository.ActivityRow
	reservations []repository.ActivityRow
	events       []repository.ActivityRow
	checkins     []repository.ActivityRow
}

func (f *fakeStats) Totals(ctx context.Context) (repository.Totals, error) { return f.totals, nil }
func (f *fakeStats) UsersToday(ctx context.Context) (int, error)           { return 2, nil }
func (f *fakeStats) ReservationsToday(ctx context.Context) (int, error)    { return 3, nil }
func (f *fakeStats) CheckinsToday(ctx context.Context) (int, error)        { return 4, nil }
func (f *fakeStats) EventsThisMonth(ctx context.Context) (int, error)      { return 5, nil }
func (f *fakeStats) CheckedInReservations(ctx context.Context) (int, error) {
	return f.checkedIn, nil
}
func (f *fakeStats) PublishedCounts(ctx context.Context) (int, int, error) { return 7, 1, nil }
func (f *fakeStats) RevenueTotal(ctx context.Context) (float64, error)     { return 1200.50, nil }
func (f *fakeStats) RevenueToday(ctx context.Context) (float64, error)     { return 75, nil }
func (f *fakeStats) RevenueThisMonth(ctx context.Context) (float64, error) { return 400, nil }
func (f *fakeStats) PopularEvents(ctx context.Context, limit int) ([]repository.PopularEvent, error) {
	return []repository.PopularEvent{{EventID: 1, Title: "Cine Club", ReservationCount: 42}}, nil
}
func (f *fakeStats) EventsByCategory(ctx context.Context) (map[string]int, error) {
	return map[string]int{"Concerts": 3}, nil
}
func (f *fakeStats) RecentUsers(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return f.users, nil
}
func (f *fakeStats) RecentReservations(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return f.reservations, nil
}
func (f *fakeStats) RecentEvents(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return f.events, nil
}
func (f *fakeStats) RecentCheckins(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return f.checkins, nil
}

func TestDashboardComputesCheckinRate(t *testing.T) {
	f := &fakeStats{
		totals:    repository.Totals{Users: 10, Events: 8, Reservations: 50, Checkins: 20},
		checkedIn: 20,
	}
	svc := NewStatsService(f, nil, zerolog.Nop())

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.CheckinRate != 40 {
		t.Fatalf("checkin rate = %v, want 40", stats.CheckinRate)
	}
	if stats.TotalUsers != 10 || stats.TotalReservations != 50 {
		t.Fatalf("totals mismatch: %+v", stats)
	}
	if len(stats.PopularEvents) != 1 || stats.PopularEvents[0].Title != "Cine Club" {
		t.Fatalf("popular events: %+v", stats.PopularEvents)
	}
	if stats.EventsByCategory["Concerts"] != 3 {
		t.Fatalf("events by category: %+v", stats.EventsByCategory)
	}
}

func TestDashboardZeroReservationsNoDivide(t *testing.T) {
	svc := NewStatsService(&fakeStats{}, nil, zerolog.Nop())

	stats, err := svc.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.CheckinRate != 0 {
		t.Fatalf("checkin rate = %v, want 0", stats.CheckinRate)
	}
}

func TestQuickStats(t *testing.T) {
	f := &fakeStats{totals: repository.Totals{Users: 9, Events: 4, Reservations: 11}}
	svc := NewStatsService(f, nil, zerolog.Nop())

	q, err := svc.Quick(context.Background())
	if err != nil {
		t.Fatalf("quick: %v", err)
	}
	if q.TotalUsers != 9 || q.TotalEvents != 4 || q.TotalReservations != 11 || q.CheckinsToday != 4 {
		t.Fatalf("quick stats: %+v", q)
	}
}

func TestEventStatsAggregates(t *testing.T) {
	f := &fakeStats{totals: repository.Totals{Events: 8}}
	svc := NewStatsService(f, nil, zerolog.Nop())

	stats, err := svc.Events(context.Background())
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if stats.TotalEvents != 8 || stats.PublishedEvents != 7 || stats.DraftEvents != 1 {
		t.Fatalf("event counts: %+v", stats)
	}
	if stats.RevenueTotal != 1200.50 || stats.RevenueThisMonth != 400 {
		t.Fatalf("revenue: %+v", stats)
	}
	if len(stats.PopularEvents) != 1 || stats.PopularEvents[0].ReservationCount != 42 {
		t.Fatalf("popular events: %+v", stats.PopularEvents)
	}
}

func TestActivitySortsNewestFirst(t *testing.T) {
	now := time.Now().UTC()
	f := &fakeStats{
		users: []repository.ActivityRow{
			{Name: "Ana", Extra: "ana@example.com", CreatedAt: now.Add(-3 * time.Minute)},
		},
		reservations: []repository.ActivityRow{
			{Name: "Luis", Extra: "Cine Club", CreatedAt: now.Add(-1 * time.Minute)},
		},
		events: []repository.ActivityRow{
			{Name: "Jazz Night", Extra: "Concerts", CreatedAt: now.Add(-2 * time.Minute)},
		},
		checkins: []repository.ActivityRow{
			{Name: "Luis", Extra: "Cine Club", CreatedAt: now},
		},
	}
	svc := NewStatsService(f, nil, zerolog.Nop())

	feed, err := svc.Activity(context.Background())
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if len(feed) != 4 {
		t.Fatalf("feed length = %d, want 4", len(feed))
	}
	want := []string{"checkin", "reservation_created", "event_created", "user_registered"}
	for i, typ := range want {
		if feed[i].Type != typ {
			t.Fatalf("feed[%d].Type = %q, want %q (feed: %+v)", i, feed[i].Type, typ, feed)
		}
	}
}

func TestActivityEmptyFeed(t *testing.T) {
	svc := NewStatsService(&fakeStats{}, nil, zerolog.Nop())

	feed, err := svc.Activity(context.Background())
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	if feed == nil || len(feed) != 0 {
		t.Fatalf("feed = %#v, want empty non-nil slice", feed)
	}
}
