package order

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultDecodesBackendPayload(t *testing.T) {
	body := `{"id":12,"user_name":"山田","menu_id":1,"menu_name":"から揚げ弁当","quantity":2,"total_price":1000,"ordered_at":"2024-03-05T12:34:56.789012"}`

	var r Result
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	assert.Equal(t, 12, r.ID)
	assert.Equal(t, "から揚げ弁当", r.MenuName)
	assert.Equal(t, int64(1000), r.TotalPrice)
	want := time.Date(2024, 3, 5, 12, 34, 56, 789012000, time.Local)
	assert.True(t, want.Equal(r.OrderedAt.Time), "got %v", r.OrderedAt)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-03-05T12:34:56Z", want: time.Date(2024, 3, 5, 12, 34, 56, 0, time.UTC)},
		{in: "2024-03-05T21:34:56+09:00", want: time.Date(2024, 3, 5, 12, 34, 56, 0, time.UTC)},
		{in: "2024-03-05 12:34:56", want: time.Date(2024, 3, 5, 12, 34, 56, 0, time.Local)},
		{in: "2024-03-05T12:34", want: time.Date(2024, 3, 5, 12, 34, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %v want %v", got.Time, tt.want)
		})
	}

	_, err := ParseTimestamp("yesterday")
	require.Error(t, err)
}

func TestTimestampNullAndRoundTrip(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"ordered_at":null}`), &r))
	assert.True(t, r.OrderedAt.IsZero())

	out, err := json.Marshal(Timestamp{Time: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)})
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-01-02T03:04:05Z"`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"ordered_at":42}`), &r))
}

type fakeLister struct {
	orders []Result
	err    error
}

func (f fakeLister) ListOrders(context.Context) ([]Result, error) { return f.orders, f.err }

func TestHistoryFetch(t *testing.T) {
	t.Run("keeps backend order", func(t *testing.T) {
		h := NewHistory(fakeLister{orders: []Result{{ID: 3}, {ID: 1}, {ID: 2}}})
		got, err := h.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []int{3, 1, 2}, []int{got[0].ID, got[1].ID, got[2].ID})
	})

	t.Run("empty is not an error", func(t *testing.T) {
		got, err := NewHistory(fakeLister{}).Fetch(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("failure", func(t *testing.T) {
		boom := errors.New("boom")
		got, err := NewHistory(fakeLister{err: boom}).Fetch(context.Background())
		require.ErrorIs(t, err, boom)
		assert.Nil(t, got)
	})
}

func TestValidationErrorMessages(t *testing.T) {
	assert.Contains(t, (&ValidationError{Reason: EmptyName}).Error(), "user name")
	assert.Contains(t, (&ValidationError{Reason: EmptyCart}).Error(), "cart is empty")
}
