package order

import "fmt"

type Reason string

const (
	EmptyName Reason = "EmptyName"
	EmptyCart Reason = "EmptyCart"
)

// ValidationError is returned before any request is sent.
type ValidationError struct {
	Reason Reason
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case EmptyName:
		return "validation failed: user name is required"
	case EmptyCart:
		return "validation failed: cart is empty"
	default:
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
}

// SubmissionError reports that at least one line of a submission was rejected.
// Message is the first failure in cart order. Lines carries every line's
// outcome; lines with a Result were accepted by the backend and are not
// rolled back.
type SubmissionError struct {
	Message string
	Lines   []LineOutcome
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// Accepted returns the orders the backend created despite the failure.
func (e *SubmissionError) Accepted() []Result {
	var out []Result
	for _, l := range e.Lines {
		if l.Result != nil {
			out = append(out, *l.Result)
		}
	}
	return out
}

// Failed returns the number of rejected lines.
func (e *SubmissionError) Failed() int {
	n := 0
	for _, l := range e.Lines {
		if l.Err != "" {
			n++
		}
	}
	return n
}
