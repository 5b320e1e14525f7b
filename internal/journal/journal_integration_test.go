//go:build integration

package journal

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/skawashin1122/bento-app-project/internal/order"
	"github.com/skawashin1122/bento-app-project/internal/testutil"
)

func TestJournal_RecordAndListRecent(t *testing.T) {
	dsn := testutil.StartPostgres(t)
	logger := log.New(io.Discard, "", 0)

	require.Eventually(t, func() bool {
		return RunMigrations(dsn, logger) == nil
	}, 30*time.Second, 500*time.Millisecond)

	// a second run is a no-op
	require.NoError(t, RunMigrations(dsn, logger))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewRepository(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)
	orderedAt := order.Timestamp{Time: now}

	older := order.Attempt{
		ID:          uuid.NewString(),
		UserName:    "山田",
		SubmittedAt: now.Add(-time.Minute),
		Lines: []order.LineOutcome{
			{MenuID: 2, Quantity: 1, Err: "sold out"},
		},
	}
	newer := order.Attempt{
		ID:            uuid.NewString(),
		CorrelationID: "cid-int",
		UserName:      "佐藤",
		SubmittedAt:   now,
		Lines: []order.LineOutcome{
			{MenuID: 1, Quantity: 2, Result: &order.Result{ID: 7, UserName: "佐藤", MenuID: 1, MenuName: "のり弁", Quantity: 2, TotalPrice: 800, OrderedAt: orderedAt}},
			{MenuID: 3, Quantity: 1, Err: "not found"},
		},
	}

	require.NoError(t, repo.RecordAttempt(ctx, older))
	require.NoError(t, repo.RecordAttempt(ctx, newer))

	got, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, newer.ID, got[0].ID)
	require.Equal(t, "cid-int", got[0].CorrelationID)
	require.Equal(t, order.StatusPartial, got[0].Status())
	require.Len(t, got[0].Lines, 2)
	require.NotNil(t, got[0].Lines[0].Result)
	require.Equal(t, 7, got[0].Lines[0].Result.ID)
	require.WithinDuration(t, now, got[0].Lines[0].Result.OrderedAt.Time, time.Millisecond)
	require.Equal(t, "not found", got[0].Lines[1].Err)

	require.Equal(t, older.ID, got[1].ID)
	require.Equal(t, order.StatusFailed, got[1].Status())
	require.WithinDuration(t, older.SubmittedAt, got[1].SubmittedAt, time.Millisecond)
}
