package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Request is the body of POST /api/orders.
type Request struct {
	UserName string `json:"user_name"`
	MenuID   int    `json:"menu_id"`
	Quantity int    `json:"quantity"`
}

// Result is an order as the backend persisted it. TotalPrice is the backend's
// figure and may differ from the client-side estimate.
type Result struct {
	ID         int       `json:"id"`
	UserName   string    `json:"user_name"`
	MenuID     int       `json:"menu_id"`
	MenuName   string    `json:"menu_name"`
	Quantity   int       `json:"quantity"`
	TotalPrice int64     `json:"total_price"`
	OrderedAt  Timestamp `json:"ordered_at"`
}

// Timestamp accepts the ISO-8601 variants the backend emits, including naive
// values without a zone offset, which are read as local time.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []struct {
	layout string
	naive  bool
}{
	{time.RFC3339Nano, false},
	{"2006-01-02 15:04:05.999999999Z07:00", false},
	{"2006-01-02T15:04:05.999999999", true},
	{"2006-01-02 15:04:05.999999999", true},
	{"2006-01-02T15:04", true},
}

func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	for _, l := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if l.naive {
			t, err = time.ParseInLocation(l.layout, s, time.Local)
		} else {
			t, err = time.Parse(l.layout, s)
		}
		if err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("ordered_at: %w", err)
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
