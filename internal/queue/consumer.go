package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"github.com/jrosariodev/cultural-center-api/internal/mailer"
	"github.com/jrosariodev/cultural-center-api/internal/qr"
)

// Consumer drains reservation.confirmed and emails each guest their
// confirmation with the check-in QR. It runs a reconnect loop with
// exponential backoff and never returns under normal operation, so
// start it in its own goroutine.
type Consumer struct {
	url    string
	mailer *mailer.Mailer
	log    zerolog.Logger
}

func NewConsumer(url string, m *mailer.Mailer, log zerolog.Logger) *Consumer {
	return &Consumer{url: url, mailer: m, log: log}
}

// Run connects, declares the durable queue and consumes until the
// connection drops, then reconnects.
func (c *Consumer) Run() {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("consumer dial failed")
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := c.consumeLoop(conn); err != nil {
			c.log.Warn().Err(err).Msg("consume loop ended, reconnecting")
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func (c *Consumer) consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}

	if _, err := ch.QueueDeclare(reservationQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(reservationQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := c.handle(d.Body); err != nil {
			c.log.Error().Err(err).Str("message_id", d.MessageId).Msg("handle message failed")
			// Reject without requeue to avoid a tight redelivery loop.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func (c *Consumer) handle(body []byte) error {
	var ev ReservationConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}

	if c.mailer == nil || !c.mailer.Enabled() {
		c.log.Info().
			Uint64("reservation_id", ev.ReservationID).
			Str("email", ev.UserEmail).
			Msg("mail disabled, confirmation logged only")
		return nil
	}

	png, err := qr.Encode(ev.CheckinCode)
	if err != nil {
		return err
	}
	return c.mailer.SendConfirmation(
		ev.UserEmail, ev.UserName, ev.EventTitle, ev.EventDate, ev.EventTime, ev.Location, png)
}
