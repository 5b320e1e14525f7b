package clients

import "fmt"

// FallbackSubmitMessage is used when a rejected order carries no usable detail.
const FallbackSubmitMessage = "failed to submit order"

// FetchError is returned by the list endpoints when the backend is
// unreachable, answers with a non-200 status, or sends something that is not
// a JSON list of the expected shape.
type FetchError struct {
	Resource   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Resource, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Resource, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// APIError is a non-2xx answer to an order submission. Message is the
// backend's detail, or FallbackSubmitMessage.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }
