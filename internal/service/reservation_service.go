package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// ReservationStore is the slice of the reservation repository the
// service needs. The SQL implementation guarantees that Book runs the
// capacity check and the insert in one transaction.
type ReservationStore interface {
	Book(ctx context.Context, userID, eventID uint64) (*model.Reservation, error)
	CancelForUser(ctx context.Context, reservationID, userID uint64) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.UserReservationDetail, error)
}

// UserStore is the user lookup surface needed by the services.
type UserStore interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// EventStore is the event lookup surface needed by the services.
type EventStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
	CountActiveReservations(ctx context.Context, eventID uint64) (int, error)
}

// Notifier publishes a confirmation after a successful booking. A
// failed publish never fails the booking.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, res *model.Reservation, user *model.User, event *model.Event) error
}

// ReservationService books, cancels and lists reservations on behalf
// of authenticated members.
type ReservationService struct {
	reservations ReservationStore
	users        UserStore
	events       EventStore
	notifier     Notifier
	log          zerolog.Logger
}

func NewReservationService(rs ReservationStore, us UserStore, es EventStore, n Notifier, log zerolog.Logger) *ReservationService {
	return &ReservationService{reservations: rs, users: us, events: es, notifier: n, log: log}
}

// Book creates an active reservation for the user on the event. The
// capacity and duplicate checks happen inside the store transaction,
// so concurrent calls can never oversell an event.
func (s *ReservationService) Book(ctx context.Context, userID, eventID uint64) (*model.Reservation, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	res, err := s.reservations.Book(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Uint64("reservation_id", res.ID).
		Uint64("user_id", userID).
		Uint64("event_id", eventID).
		Msg("reservation created")

	if s.notifier != nil {
		event, eerr := s.events.GetByID(ctx, eventID)
		if eerr != nil {
			s.log.Warn().Err(eerr).Uint64("event_id", eventID).Msg("skipping confirmation publish")
			return res, nil
		}
		if nerr := s.notifier.ReservationConfirmed(ctx, res, user, event); nerr != nil {
			s.log.Warn().Err(nerr).Uint64("reservation_id", res.ID).Msg("failed to publish confirmation")
		}
	}
	return res, nil
}

// Cancel cancels one of the caller's active reservations. Admins pass
// userID 0 and may cancel anyone's.
func (s *ReservationService) Cancel(ctx context.Context, reservationID, userID uint64) error {
	if err := s.reservations.CancelForUser(ctx, reservationID, userID); err != nil {
		return err
	}
	s.log.Info().Uint64("reservation_id", reservationID).Msg("reservation cancelled")
	return nil
}

// ListMine returns the caller's reservations with event details.
func (s *ReservationService) ListMine(ctx context.Context, userID uint64) ([]repository.UserReservationDetail, error) {
	return s.reservations.ListByUser(ctx, userID)
}

// AvailableSpots reports how many seats remain on an event. Never
// negative even if data drifted.
func (s *ReservationService) AvailableSpots(ctx context.Context, eventID uint64) (int, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return 0, err
	}
	taken, err := s.events.CountActiveReservations(ctx, eventID)
	if err != nil {
		return 0, err
	}
	if taken >= event.Capacity {
		return 0, nil
	}
	return event.Capacity - taken, nil
}

// IsTransient reports whether err is worth surfacing as a retryable
// backend failure rather than a caller mistake.
func IsTransient(err error) bool {
	return errors.Is(err, repository.ErrStoreUnavailable)
}
