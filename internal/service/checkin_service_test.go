package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

func newCheckinFixture(t *testing.T) (*memStore, *CheckinService, *model.Reservation) {
	t.Helper()
	m := newMemStore()
	event := m.addEvent(5, true)
	user := m.addUser("guest")

	res, err := m.Book(context.Background(), user.ID, event.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	svc := NewCheckinService(m, m, eventStore{m}, zerolog.Nop())
	return m, svc, res
}

func TestRedeemMarksReservationCheckedIn(t *testing.T) {
	_, svc, res := newCheckinFixture(t)

	out, err := svc.Redeem(context.Background(), res.CheckinCode, model.MethodScanned)
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if out.AlreadyCheckedIn {
		t.Fatal("first redeem reported as repeat")
	}
	if out.Reservation.Status != model.StatusCheckedIn {
		t.Fatalf("status = %q, want checked_in", out.Reservation.Status)
	}
	if out.Reservation.CheckedInAt == nil {
		t.Fatal("checked_in_at not set")
	}
	if out.User == nil || out.Event == nil {
		t.Fatal("missing user or event details")
	}
}

func TestRedeemIsIdempotent(t *testing.T) {
	_, svc, res := newCheckinFixture(t)
	ctx := context.Background()

	first, err := svc.Redeem(ctx, res.CheckinCode, model.MethodScanned)
	if err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	second, err := svc.Redeem(ctx, res.CheckinCode, model.MethodScanned)
	if err != nil {
		t.Fatalf("second redeem: %v", err)
	}
	if !second.AlreadyCheckedIn {
		t.Fatal("second redeem not flagged as repeat")
	}
	// The original timestamp must survive the repeat.
	if !second.Reservation.CheckedInAt.Equal(*first.Reservation.CheckedInAt) {
		t.Fatalf("checked_in_at changed: %v -> %v",
			first.Reservation.CheckedInAt, second.Reservation.CheckedInAt)
	}
}

func TestRedeemUnknownCode(t *testing.T) {
	_, svc, _ := newCheckinFixture(t)

	_, err := svc.Redeem(context.Background(), "nope", model.MethodScanned)
	if !errors.Is(err, repository.ErrReservationNotFound) {
		t.Fatalf("err = %v, want ErrReservationNotFound", err)
	}
}

func TestRedeemEmptyCode(t *testing.T) {
	_, svc, _ := newCheckinFixture(t)

	_, err := svc.Redeem(context.Background(), "   ", model.MethodScanned)
	if !errors.Is(err, repository.ErrReservationNotFound) {
		t.Fatalf("err = %v, want ErrReservationNotFound", err)
	}
}

func TestRedeemCancelledReservation(t *testing.T) {
	m, svc, res := newCheckinFixture(t)
	ctx := context.Background()

	if err := m.CancelForUser(ctx, res.ID, res.UserID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err := svc.Redeem(ctx, res.CheckinCode, model.MethodScanned)
	if !errors.Is(err, repository.ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestRedeemDefaultsToManualMethod(t *testing.T) {
	_, svc, res := newCheckinFixture(t)

	out, err := svc.Redeem(context.Background(), res.CheckinCode, "telepathy")
	if err != nil {
		t.Fatalf("redeem: %v", err)
	}
	if out.Reservation.Status != model.StatusCheckedIn {
		t.Fatalf("status = %q, want checked_in", out.Reservation.Status)
	}
}
