package clients

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var errNotAList = errors.New("response is not a JSON list")

// maxBody bounds how much of a backend response is read.
const maxBody = 4 << 20

// decodeList reads a 200 response holding a JSON array into out. An empty
// array is fine; null, objects and scalars are shape errors.
func decodeList(resource string, resp *http.Response, out any) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &FetchError{Resource: resource, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return &FetchError{Resource: resource, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return &FetchError{Resource: resource, StatusCode: resp.StatusCode, Err: errNotAList}
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return &FetchError{Resource: resource, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// errorDetail extracts {"detail": "..."} from an error body. FastAPI sends a
// list of validation problems under detail for 422s; those fall back.
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err != nil {
		return ""
	}
	return s
}
