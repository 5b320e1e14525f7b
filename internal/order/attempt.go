package order

import "time"

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusPartial   Status = "partial"
	StatusFailed    Status = "failed"
)

// LineOutcome is the result of one line of a submission. Exactly one of
// Result and Err is set.
type LineOutcome struct {
	MenuID   int     `json:"menuId"`
	Quantity int     `json:"quantity"`
	Result   *Result `json:"result,omitempty"`
	Err      string  `json:"error,omitempty"`
}

func (l LineOutcome) OK() bool { return l.Result != nil }

// Attempt records one submission: who submitted, what was sent and what the
// backend answered for each line.
type Attempt struct {
	ID            string        `json:"id"`
	CorrelationID string        `json:"correlationId,omitempty"`
	UserName      string        `json:"userName"`
	Lines         []LineOutcome `json:"lines"`
	SubmittedAt   time.Time     `json:"submittedAt"`
}

func (a Attempt) Status() Status {
	ok := 0
	for _, l := range a.Lines {
		if l.OK() {
			ok++
		}
	}
	switch {
	case ok == len(a.Lines):
		return StatusSucceeded
	case ok == 0:
		return StatusFailed
	default:
		return StatusPartial
	}
}

// Results returns the accepted orders in line order.
func (a Attempt) Results() []Result {
	out := make([]Result, 0, len(a.Lines))
	for _, l := range a.Lines {
		if l.Result != nil {
			out = append(out, *l.Result)
		}
	}
	return out
}
