package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// memStore is an in-memory stand-in for the SQL repositories. Every
// method takes the one lock, which mirrors the row lock the real Book
// transaction holds on the event.
type memStore struct {
	mu           sync.Mutex
	users        map[uint64]*model.User
	events       map[uint64]*model.Event
	reservations map[uint64]*model.Reservation
	nextID       uint64
}

func newMemStore() *memStore {
	return &memStore{
		users:        make(map[uint64]*model.User),
		events:       make(map[uint64]*model.Event),
		reservations: make(map[uint64]*model.Reservation),
		nextID:       1,
	}
}

func (m *memStore) addUser(name string) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{ID: m.nextID, Name: name, Email: fmt.Sprintf("%s@example.com", name)}
	m.nextID++
	m.users[u.ID] = u
	return u
}

func (m *memStore) addEvent(capacity int, published bool) *model.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := &model.Event{ID: m.nextID, Title: "event", Capacity: capacity, Published: published}
	m.nextID++
	m.events[e.ID] = e
	return e
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.Deleted {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

type eventStore struct{ *memStore }

func (m eventStore) GetByID(ctx context.Context, id uint64) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (m eventStore) CountActiveReservations(ctx context.Context, eventID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(eventID), nil
}

func (m *memStore) countLocked(eventID uint64) int {
	n := 0
	for _, r := range m.reservations {
		if r.EventID == eventID && r.Status != model.StatusCancelled {
			n++
		}
	}
	return n
}

func (m *memStore) Book(ctx context.Context, userID, eventID uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.events[eventID]
	if !ok {
		return nil, repository.ErrEventNotFound
	}
	if !e.Published {
		return nil, repository.ErrEventNotPublished
	}
	for _, r := range m.reservations {
		if r.EventID == eventID && r.UserID == userID && r.Status != model.StatusCancelled {
			return nil, repository.ErrDuplicateReservation
		}
	}
	if m.countLocked(eventID) >= e.Capacity {
		return nil, repository.ErrCapacityExceeded
	}

	res := &model.Reservation{
		ID:          m.nextID,
		UserID:      userID,
		EventID:     eventID,
		Status:      model.StatusActive,
		CheckinCode: fmt.Sprintf("code-%d", m.nextID),
		CreatedAt:   time.Now().UTC(),
	}
	m.nextID++
	m.reservations[res.ID] = res
	cp := *res
	return &cp, nil
}

func (m *memStore) CancelForUser(ctx context.Context, reservationID, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[reservationID]
	if !ok {
		return repository.ErrReservationNotFound
	}
	if userID != 0 && r.UserID != userID {
		return repository.ErrReservationNotFound
	}
	if r.Status != model.StatusActive {
		return repository.ErrInvalidState
	}
	r.Status = model.StatusCancelled
	return nil
}

func (m *memStore) GetReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrReservationNotFound
	}
	cp := *r
	return &cp, nil
}

// reservationStore adapts memStore to the ReservationStore interface,
// whose GetByID collides with the user lookup.
type reservationStore struct{ *memStore }

func (m reservationStore) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return m.GetReservation(ctx, id)
}

func (m reservationStore) ListByUser(ctx context.Context, userID uint64) ([]repository.UserReservationDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []repository.UserReservationDetail
	for _, r := range m.reservations {
		if r.UserID != userID {
			continue
		}
		d := repository.UserReservationDetail{
			ID:          r.ID,
			EventID:     r.EventID,
			Status:      r.Status,
			CheckinCode: r.CheckinCode,
			CheckedInAt: r.CheckedInAt,
			CreatedAt:   r.CreatedAt,
		}
		if e, ok := m.events[r.EventID]; ok {
			d.EventTitle = e.Title
			d.EventCategory = e.Category
			d.EventDate = e.Date
			d.EventTime = e.Time
			d.EventLocation = e.Location
			d.EventPrice = e.Price
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *memStore) CheckInByCode(ctx context.Context, code, method string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.reservations {
		if r.CheckinCode != code {
			continue
		}
		switch r.Status {
		case model.StatusActive:
			now := time.Now().UTC()
			r.Status = model.StatusCheckedIn
			r.CheckedInAt = &now
			cp := *r
			return &cp, nil
		case model.StatusCheckedIn:
			cp := *r
			return &cp, repository.ErrAlreadyCheckedIn
		default:
			return nil, repository.ErrInvalidState
		}
	}
	return nil, repository.ErrReservationNotFound
}

// failNotifier counts publishes and always errors.
type failNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *failNotifier) ReservationConfirmed(ctx context.Context, res *model.Reservation, user *model.User, event *model.Event) error {
	n.mu.Lock()
	n.calls++
	n.mu.Unlock()
	return fmt.Errorf("broker down")
}

// okNotifier records the last publish.
type okNotifier struct {
	mu   sync.Mutex
	last *model.Reservation
}

func (n *okNotifier) ReservationConfirmed(ctx context.Context, res *model.Reservation, user *model.User, event *model.Event) error {
	n.mu.Lock()
	n.last = res
	n.mu.Unlock()
	return nil
}
