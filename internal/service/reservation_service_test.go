package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

func newReservationService(m *memStore, n Notifier) *ReservationService {
	return NewReservationService(reservationStore{m}, m, eventStore{m}, n, zerolog.Nop())
}

func TestBookFillsEventExactlyToCapacity(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(10, true)

	const attempts = 25
	users := make([]*model.User, attempts)
	for i := range users {
		users[i] = m.addUser("u")
	}

	svc := newReservationService(m, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	booked, full := 0, 0
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(userID uint64) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), userID, event.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, repository.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(users[i].ID)
	}
	wg.Wait()

	if booked != 10 {
		t.Fatalf("booked = %d, want 10", booked)
	}
	if full != attempts-10 {
		t.Fatalf("rejected = %d, want %d", full, attempts-10)
	}
	spots, err := svc.AvailableSpots(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("AvailableSpots: %v", err)
	}
	if spots != 0 {
		t.Fatalf("available spots = %d, want 0", spots)
	}
}

func TestBookSingleSpotRace(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(1, true)
	a := m.addUser("a")
	b := m.addUser("b")

	svc := newReservationService(m, nil)

	results := make(chan error, 2)
	var wg sync.WaitGroup
	for _, id := range []uint64{a.ID, b.ID} {
		wg.Add(1)
		go func(uid uint64) {
			defer wg.Done()
			_, err := svc.Book(context.Background(), uid, event.ID)
			results <- err
		}(id)
	}
	wg.Wait()
	close(results)

	wins, losses := 0, 0
	for err := range results {
		if err == nil {
			wins++
		} else if errors.Is(err, repository.ErrCapacityExceeded) {
			losses++
		} else {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins=%d losses=%d, want exactly one of each", wins, losses)
	}
}

func TestBookRejectsDuplicate(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(5, true)
	user := m.addUser("dup")

	svc := newReservationService(m, nil)

	if _, err := svc.Book(context.Background(), user.ID, event.ID); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	_, err := svc.Book(context.Background(), user.ID, event.ID)
	if !errors.Is(err, repository.ErrDuplicateReservation) {
		t.Fatalf("second booking err = %v, want ErrDuplicateReservation", err)
	}
}

func TestBookRejectsUnpublishedEvent(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(5, false)
	user := m.addUser("early")

	svc := newReservationService(m, nil)

	_, err := svc.Book(context.Background(), user.ID, event.ID)
	if !errors.Is(err, repository.ErrEventNotPublished) {
		t.Fatalf("err = %v, want ErrEventNotPublished", err)
	}
}

func TestBookRejectsDeletedUser(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(5, true)
	user := m.addUser("gone")
	m.users[user.ID].Deleted = true

	svc := newReservationService(m, nil)

	_, err := svc.Book(context.Background(), user.ID, event.ID)
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestCancelFreesSpot(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(1, true)
	a := m.addUser("a")
	b := m.addUser("b")

	svc := newReservationService(m, nil)
	ctx := context.Background()

	res, err := svc.Book(ctx, a.ID, event.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := svc.Book(ctx, b.ID, event.ID); !errors.Is(err, repository.ErrCapacityExceeded) {
		t.Fatalf("expected full event, got %v", err)
	}

	if err := svc.Cancel(ctx, res.ID, a.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := svc.Book(ctx, b.ID, event.ID); err != nil {
		t.Fatalf("booking after cancel: %v", err)
	}
}

func TestCancelForeignReservation(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(2, true)
	owner := m.addUser("owner")
	other := m.addUser("other")

	svc := newReservationService(m, nil)
	ctx := context.Background()

	res, err := svc.Book(ctx, owner.ID, event.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if err := svc.Cancel(ctx, res.ID, other.ID); !errors.Is(err, repository.ErrReservationNotFound) {
		t.Fatalf("err = %v, want ErrReservationNotFound", err)
	}
	// Admin path ignores ownership.
	if err := svc.Cancel(ctx, res.ID, 0); err != nil {
		t.Fatalf("admin cancel: %v", err)
	}
}

func TestBookSurvivesNotifierFailure(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(3, true)
	user := m.addUser("x")

	n := &failNotifier{}
	svc := newReservationService(m, n)

	res, err := svc.Book(context.Background(), user.ID, event.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if res.Status != model.StatusActive {
		t.Fatalf("status = %q, want active", res.Status)
	}
	if n.calls != 1 {
		t.Fatalf("notifier calls = %d, want 1", n.calls)
	}
}

func TestBookPublishesConfirmation(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(3, true)
	user := m.addUser("x")

	n := &okNotifier{}
	svc := newReservationService(m, n)

	res, err := svc.Book(context.Background(), user.ID, event.ID)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if n.last == nil || n.last.ID != res.ID {
		t.Fatalf("notifier got %+v, want reservation %d", n.last, res.ID)
	}
	if res.CheckinCode == "" {
		t.Fatal("reservation missing check-in code")
	}
}

func TestListMineIncludesEventDetails(t *testing.T) {
	m := newMemStore()
	event := m.addEvent(3, true)
	m.events[event.ID].Title = "Cine Club"
	user := m.addUser("x")

	svc := newReservationService(m, nil)
	ctx := context.Background()

	if _, err := svc.Book(ctx, user.ID, event.ID); err != nil {
		t.Fatalf("book: %v", err)
	}
	list, err := svc.ListMine(ctx, user.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d, want 1", len(list))
	}
	if list[0].EventTitle != "Cine Club" {
		t.Fatalf("event title = %q", list[0].EventTitle)
	}
}
