package events

import (
	"time"

	"github.com/skawashin1122/bento-app-project/internal/order"
)

const (
	EventTypeSubmissionCompleted = "SubmissionCompleted"
	submissionCompletedSchema    = "bento.order.submission.completed.v1"
)

type SubmissionLine struct {
	MenuID     int    `json:"menuId"`
	Quantity   int    `json:"quantity"`
	OrderID    *int   `json:"orderId,omitempty"`
	TotalPrice *int64 `json:"totalPrice,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SubmissionCompletedPayload summarises one submission attempt. Accepted
// lines carry the backend order id, rejected lines the backend message.
type SubmissionCompletedPayload struct {
	AttemptID   string           `json:"attemptId"`
	UserName    string           `json:"userName"`
	Status      order.Status     `json:"status"`
	Accepted    int              `json:"accepted"`
	TotalPrice  int64            `json:"totalPrice"`
	Lines       []SubmissionLine `json:"lines"`
	SubmittedAt time.Time        `json:"submittedAt"`
}

type SubmissionCompletedEvent = EventEnvelope[SubmissionCompletedPayload]

func newSubmissionCompletedPayload(a order.Attempt) SubmissionCompletedPayload {
	p := SubmissionCompletedPayload{
		AttemptID:   a.ID,
		UserName:    a.UserName,
		Status:      a.Status(),
		Lines:       make([]SubmissionLine, 0, len(a.Lines)),
		SubmittedAt: a.SubmittedAt.UTC(),
	}
	for _, l := range a.Lines {
		line := SubmissionLine{MenuID: l.MenuID, Quantity: l.Quantity, Error: l.Err}
		if l.Result != nil {
			id, price := l.Result.ID, l.Result.TotalPrice
			line.OrderID = &id
			line.TotalPrice = &price
			p.Accepted++
			p.TotalPrice += price
		}
		p.Lines = append(p.Lines, line)
	}
	return p
}

func newSubmissionCompletedEvent(a order.Attempt, producer string, occurredAt time.Time) SubmissionCompletedEvent {
	return newEnvelope(eventMeta{
		name:          EventTypeSubmissionCompleted,
		version:       1,
		schema:        submissionCompletedSchema,
		producer:      producer,
		partitionKey:  a.ID,
		correlationID: a.CorrelationID,
	}, newSubmissionCompletedPayload(a), occurredAt)
}
