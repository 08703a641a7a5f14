package service

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/model"
	"github.com/jrosariodev/cultural-center-api/internal/repository"
)

// CheckinStore redeems a reservation code. The SQL implementation
// performs the active -> checked_in transition as a single conditional
// update, so two staff devices scanning the same code race safely.
type CheckinStore interface {
	CheckInByCode(ctx context.Context, code, method string) (*model.Reservation, error)
}

// CheckinResult is what the staff device displays after a scan.
type CheckinResult struct {
	Reservation *model.Reservation
	User        *model.User
	Event       *model.Event
	// AlreadyCheckedIn marks an idempotent repeat of an earlier scan.
	AlreadyCheckedIn bool
}

// CheckinService redeems QR codes at the door.
type CheckinService struct {
	checkins CheckinStore
	users    UserStore
	events   EventStore
	log      zerolog.Logger
}

func NewCheckinService(cs CheckinStore, us UserStore, es EventStore, log zerolog.Logger) *CheckinService {
	return &CheckinService{checkins: cs, users: us, events: es, log: log}
}

// Redeem marks the reservation behind code as checked in. A second
// scan of the same code succeeds without changing state and reports
// AlreadyCheckedIn, so the door flow never blocks on a double scan.
func (s *CheckinService) Redeem(ctx context.Context, code, method string) (*CheckinResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, repository.ErrReservationNotFound
	}
	if method != model.MethodScanned {
		method = model.MethodManual
	}

	res, err := s.checkins.CheckInByCode(ctx, code, method)
	already := errors.Is(err, repository.ErrAlreadyCheckedIn)
	if err != nil && !already {
		return nil, err
	}

	out := &CheckinResult{Reservation: res, AlreadyCheckedIn: already}
	if res != nil {
		if u, uerr := s.users.GetByID(ctx, res.UserID); uerr == nil {
			out.User = u
		}
		if e, eerr := s.events.GetByID(ctx, res.EventID); eerr == nil {
			out.Event = e
		}
	}

	s.log.Info().
		Str("method", method).
		Bool("already_checked_in", already).
		Msg("check-in redeemed")
	return out, nil
}
