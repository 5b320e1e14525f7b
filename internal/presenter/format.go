package presenter

import (
	"errors"
	"strconv"

	"github.com/skawashin1122/bento-app-project/internal/order"
	"github.com/skawashin1122/bento-app-project/internal/session"
)

const timeLayout = "2006-01-02 15:04"

// FormatYen renders an amount as ¥1,234.
func FormatYen(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := strconv.FormatInt(v, 10)

	out := make([]byte, 0, len(digits)+len(digits)/3+1)
	for i := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, digits[i])
	}
	if neg {
		return "-¥" + string(out)
	}
	return "¥" + string(out)
}

// FormatTime renders a timestamp in local time, or "-" when unknown.
func FormatTime(ts order.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format(timeLayout)
}

// SubmissionMessage turns a submission error into the text shown to the user.
func SubmissionMessage(err error) string {
	var (
		verr *order.ValidationError
		serr *order.SubmissionError
	)
	switch {
	case errors.As(err, &verr) && verr.Reason == order.EmptyName:
		return "Please enter your name."
	case errors.As(err, &verr) && verr.Reason == order.EmptyCart:
		return "Your cart is empty. Add at least one item."
	case errors.Is(err, session.ErrSubmissionInFlight):
		return "Your previous order is still being sent. Please wait."
	case errors.As(err, &serr):
		return "Failed to submit order: " + serr.Message
	default:
		return "Failed to submit order: " + err.Error()
	}
}

// Reason classifies an error for machine-readable views.
func Reason(err error) string {
	var (
		verr *order.ValidationError
		serr *order.SubmissionError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return string(verr.Reason)
	case errors.As(err, &serr):
		return "SubmissionFailed"
	case errors.Is(err, session.ErrSubmissionInFlight):
		return "SubmissionInFlight"
	default:
		return "Error"
	}
}
