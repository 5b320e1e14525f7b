package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventEnvelope wraps every event payload published by this client. The
// partition key is the submission attempt id.
type EventEnvelope[T any] struct {
	EventID       string    `json:"eventId"`
	EventName     string    `json:"eventName"`
	EventVersion  int       `json:"eventVersion"`
	Schema        string    `json:"schema"`
	Producer      string    `json:"producer"`
	PartitionKey  string    `json:"partitionKey"`
	CorrelationID string    `json:"correlationId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
	Payload       T         `json:"payload"`
}

type eventMeta struct {
	name          string
	version       int
	schema        string
	producer      string
	partitionKey  string
	correlationID string
}

func newEnvelope[T any](m eventMeta, payload T, occurredAt time.Time) EventEnvelope[T] {
	return EventEnvelope[T]{
		EventID:       uuid.NewString(),
		EventName:     m.name,
		EventVersion:  m.version,
		Schema:        m.schema,
		Producer:      m.producer,
		PartitionKey:  m.partitionKey,
		CorrelationID: m.correlationID,
		OccurredAt:    occurredAt,
		Payload:       payload,
	}
}

// Validate checks the envelope identity against what a consumer expects.
func (e EventEnvelope[T]) Validate(name string, version int) error {
	switch {
	case e.EventName != name:
		return fmt.Errorf("eventName %q, want %q", e.EventName, name)
	case e.EventVersion != version:
		return fmt.Errorf("eventVersion %d, want %d", e.EventVersion, version)
	case e.EventID == "":
		return errors.New("eventId is empty")
	case e.PartitionKey == "":
		return errors.New("partitionKey is empty")
	case e.Producer == "":
		return errors.New("producer is empty")
	}
	return nil
}
