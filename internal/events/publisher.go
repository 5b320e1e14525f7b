package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/skawashin1122/bento-app-project/internal/order"
)

var ErrInvalidAttempt = errors.New("attempt has no id or lines")

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher announces finished submission attempts on the events exchange.
type Publisher struct {
	ch       publishChannel
	producer string
	now      func() time.Time
}

func NewPublisher(conn *amqp.Connection, producer string) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	if err := declareEventsExchange(ch); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare events exchange: %w", err)
	}

	return newPublisher(ch, producer), nil
}

func newPublisher(ch publishChannel, producer string) *Publisher {
	if producer == "" {
		producer = defaultProducer
	}
	return &Publisher{ch: ch, producer: producer, now: time.Now}
}

func (p *Publisher) Close() error {
	return p.ch.Close()
}

// RecordAttempt implements session.Recorder.
func (p *Publisher) RecordAttempt(ctx context.Context, a order.Attempt) error {
	if a.ID == "" || len(a.Lines) == 0 {
		return ErrInvalidAttempt
	}

	env := newSubmissionCompletedEvent(a, p.producer, p.now().UTC())
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal SubmissionCompleted envelope: %w", err)
	}

	return p.publishJSON(ctx, SubmissionCompletedRoutingKey, env.EventID, a.CorrelationID, body)
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey, messageID, correlationID string, body []byte) error {
	pubCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	return p.ch.PublishWithContext(
		pubCtx,
		EventsExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			MessageId:     messageID,
			CorrelationId: correlationID,
			Timestamp:     p.now().UTC(),
			Body:          body,
		},
	)
}
