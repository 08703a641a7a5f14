package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/repository"
	"github.com/jrosariodev/cultural-center-api/internal/service"
)

// stubStats serves fixed aggregation results for the overview endpoint.
type stubStats struct{}

func (stubStats) Totals(ctx context.Context) (repository.Totals, error) {
	return repository.Totals{Users: 12, Events: 6, Reservations: 30, Checkins: 9}, nil
}
func (stubStats) UsersToday(ctx context.Context) (int, error)            { return 1, nil }
func (stubStats) ReservationsToday(ctx context.Context) (int, error)     { return 2, nil }
func (stubStats) CheckinsToday(ctx context.Context) (int, error)         { return 3, nil }
func (stubStats) EventsThisMonth(ctx context.Context) (int, error)       { return 4, nil }
func (stubStats) CheckedInReservations(ctx context.Context) (int, error) { return 9, nil }
func (stubStats) PublishedCounts(ctx context.Context) (int, int, error)  { return 5, 1, nil }
func (stubStats) RevenueTotal(ctx context.Context) (float64, error)      { return 300, nil }
func (stubStats) RevenueToday(ctx context.Context) (float64, error)      { return 20, nil }
func (stubStats) RevenueThisMonth(ctx context.Context) (float64, error)  { return 120, nil }
func (stubStats) PopularEvents(ctx context.Context, limit int) ([]repository.PopularEvent, error) {
	return []repository.PopularEvent{{EventID: 2, Title: "Jazz Night", ReservationCount: 18}}, nil
}
func (stubStats) EventsByCategory(ctx context.Context) (map[string]int, error) {
	return map[string]int{"Concerts": 4, "Workshops": 2}, nil
}
func (stubStats) RecentUsers(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return nil, nil
}
func (stubStats) RecentReservations(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return nil, nil
}
func (stubStats) RecentEvents(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return nil, nil
}
func (stubStats) RecentCheckins(ctx context.Context, limit int) ([]repository.ActivityRow, error) {
	return []repository.ActivityRow{{Name: "Luis", Extra: "Jazz Night", CreatedAt: time.Now()}}, nil
}

func TestOverviewServesCatalogStats(t *testing.T) {
	h := NewAdminEventHandler(nil, nil, service.NewStatsService(stubStats{}, nil, zerolog.Nop()))

	// Both the per-event handler method and the catalog service must
	// stay addressable on the same receiver.
	var _ echo.HandlerFunc = h.Stats
	var _ *service.StatsService = h.StatsSvc

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/admin/events/stats", nil)
	rec := httptest.NewRecorder()

	if err := h.Overview(e.NewContext(req, rec)); err != nil {
		t.Fatalf("overview: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body struct {
		TotalEvents     int            `json:"total_events"`
		PublishedEvents int            `json:"published_events"`
		DraftEvents     int            `json:"draft_events"`
		RevenueTotal    float64        `json:"revenue_total"`
		ByCategory      map[string]int `json:"events_by_category"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.TotalEvents != 6 || body.PublishedEvents != 5 || body.DraftEvents != 1 {
		t.Fatalf("event counts: %+v", body)
	}
	if body.RevenueTotal != 300 || body.ByCategory["Concerts"] != 4 {
		t.Fatalf("aggregates: %+v", body)
	}
}
