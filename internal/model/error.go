package model

// ErrorResponse is the JSON body of every error returned by the HTTP adapter.
type ErrorResponse struct {
	Error         string `json:"error"`
	Reason        string `json:"reason,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}
