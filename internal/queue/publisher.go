package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/model"
)

const reservationQueueName = "reservation.confirmed"

// Publisher pushes ReservationConfirmedEvent messages to RabbitMQ. It
// dials per publish so a broker restart between requests never leaves
// the API holding a dead connection. Errors are returned so the caller
// can log and move on; a failed publish must never fail the booking.
type Publisher struct {
	url string
	log zerolog.Logger
}

func NewPublisher(url string, log zerolog.Logger) *Publisher {
	return &Publisher{url: url, log: log}
}

// ReservationConfirmed publishes the confirmation message for a fresh
// reservation. Messages are persistent and carry a uuid message id for
// consumer-side dedup.
func (p *Publisher) ReservationConfirmed(ctx context.Context, res *model.Reservation, user *model.User, event *model.Event) error {
	ev := ReservationConfirmedEvent{
		ReservationID: res.ID,
		CheckinCode:   res.CheckinCode,
		UserID:        user.ID,
		UserName:      user.Name,
		UserEmail:     user.Email,
		EventID:       event.ID,
		EventTitle:    event.Title,
		EventDate:     event.Date,
		EventTime:     event.Time,
		Location:      event.Location,
		Price:         event.Price,
		ReservedAt:    res.CreatedAt.UTC().Format(time.RFC3339),
	}
	return p.publish(ctx, ev)
}

func (p *Publisher) publish(ctx context.Context, ev ReservationConfirmedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Idempotent declare, durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(reservationQueueName, true, false, false, false, nil); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq queue declare failed")
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", reservationQueueName, false, false, pub); err != nil {
		p.log.Warn().Err(err).Msg("rabbitmq publish failed")
		return err
	}
	p.log.Debug().Uint64("reservation_id", ev.ReservationID).Msg("confirmation published")
	return nil
}
