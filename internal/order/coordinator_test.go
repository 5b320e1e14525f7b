package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skawashin1122/bento-app-project/internal/cart"
)

type fakeCreator struct {
	calls      atomic.Int32
	mu         sync.Mutex
	requests   []Request
	createFunc func(ctx context.Context, req Request) (Result, error)
}

func (f *fakeCreator) CreateOrder(ctx context.Context, req Request) (Result, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if f.createFunc != nil {
		return f.createFunc(ctx, req)
	}
	return Result{ID: req.MenuID * 100, UserName: req.UserName, MenuID: req.MenuID, Quantity: req.Quantity}, nil
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name     string
		userName string
		snap     cart.Snapshot
		want     Reason
	}{
		{name: "empty name", userName: "", snap: cart.NewSnapshot(cart.Line{MenuID: 1, Quantity: 1}), want: EmptyName},
		{name: "blank name", userName: "  \t ", snap: cart.NewSnapshot(cart.Line{MenuID: 1, Quantity: 1}), want: EmptyName},
		{name: "empty cart", userName: "Taro", snap: cart.NewSnapshot(), want: EmptyCart},
		{name: "name checked first", userName: " ", snap: cart.NewSnapshot(), want: EmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeCreator{}
			c := NewCoordinator(creator)

			results, err := c.Submit(context.Background(), tt.userName, tt.snap)
			require.Error(t, err)
			assert.Nil(t, results)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.want, verr.Reason)
			assert.Zero(t, creator.calls.Load(), "no request may be sent")
		})
	}
}

func TestSubmitAllAcceptedKeepsSnapshotOrder(t *testing.T) {
	creator := &fakeCreator{
		createFunc: func(_ context.Context, req Request) (Result, error) {
			// make the first line answer last
			if req.MenuID == 2 {
				time.Sleep(30 * time.Millisecond)
			}
			return Result{ID: req.MenuID, MenuID: req.MenuID, Quantity: req.Quantity, UserName: req.UserName}, nil
		},
	}
	c := NewCoordinator(creator)
	snap := cart.NewSnapshot(cart.Line{MenuID: 2, Quantity: 1}, cart.Line{MenuID: 1, Quantity: 3})

	results, err := c.Submit(context.Background(), "  Taro  ", snap)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, 2, results[0].MenuID)
	assert.Equal(t, 1, results[1].MenuID)
	assert.Equal(t, 3, results[1].Quantity)
	assert.Equal(t, "Taro", results[0].UserName, "user name is sent trimmed")
}

func TestSubmitDispatchesAllBeforeAwaiting(t *testing.T) {
	const n = 3
	var started sync.WaitGroup
	started.Add(n)
	allStarted := make(chan struct{})
	go func() {
		started.Wait()
		close(allStarted)
	}()

	creator := &fakeCreator{
		createFunc: func(_ context.Context, req Request) (Result, error) {
			started.Done()
			select {
			case <-allStarted:
				return Result{ID: req.MenuID, MenuID: req.MenuID}, nil
			case <-time.After(2 * time.Second):
				return Result{}, errors.New("requests were not in flight together")
			}
		},
	}

	snap := cart.NewSnapshot(
		cart.Line{MenuID: 1, Quantity: 1},
		cart.Line{MenuID: 2, Quantity: 1},
		cart.Line{MenuID: 3, Quantity: 1},
	)
	results, err := NewCoordinator(creator).Submit(context.Background(), "Taro", snap)
	require.NoError(t, err)
	assert.Len(t, results, n)
}

func TestSubmitSingleLine(t *testing.T) {
	creator := &fakeCreator{}
	results, err := NewCoordinator(creator).Submit(context.Background(), "Taro", cart.NewSnapshot(cart.Line{MenuID: 5, Quantity: 2}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, Request{UserName: "Taro", MenuID: 5, Quantity: 2}, creator.requests[0])
}

func TestSubmitPartialFailure(t *testing.T) {
	creator := &fakeCreator{
		createFunc: func(_ context.Context, req Request) (Result, error) {
			if req.MenuID == 2 {
				return Result{}, errors.New("メニューが見つかりません")
			}
			return Result{ID: req.MenuID, MenuID: req.MenuID, Quantity: req.Quantity}, nil
		},
	}
	snap := cart.NewSnapshot(
		cart.Line{MenuID: 1, Quantity: 2},
		cart.Line{MenuID: 2, Quantity: 1},
		cart.Line{MenuID: 3, Quantity: 4},
	)
	before := snap.Lines()

	results, err := NewCoordinator(creator).Submit(context.Background(), "Taro", snap)
	require.Error(t, err)
	assert.Nil(t, results)

	var serr *SubmissionError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "メニューが見つかりません", serr.Message)
	assert.Equal(t, 1, serr.Failed())
	require.Len(t, serr.Accepted(), 2)
	assert.Equal(t, 1, serr.Accepted()[0].MenuID)
	assert.Equal(t, 3, serr.Accepted()[1].MenuID)

	assert.EqualValues(t, 3, creator.calls.Load(), "every line is still sent")
	assert.Equal(t, before, snap.Lines(), "snapshot must not change")
}

func TestSubmitFirstErrorFollowsSnapshotOrder(t *testing.T) {
	creator := &fakeCreator{
		createFunc: func(_ context.Context, req Request) (Result, error) {
			switch req.MenuID {
			case 2:
				time.Sleep(30 * time.Millisecond)
				return Result{}, fmt.Errorf("line %d rejected", req.MenuID)
			case 3:
				return Result{}, fmt.Errorf("line %d rejected", req.MenuID)
			}
			return Result{ID: req.MenuID}, nil
		},
	}
	snap := cart.NewSnapshot(
		cart.Line{MenuID: 1, Quantity: 1},
		cart.Line{MenuID: 2, Quantity: 1},
		cart.Line{MenuID: 3, Quantity: 1},
	)

	a, err := NewCoordinator(creator).SubmitAttempt(context.Background(), "Taro", snap)
	require.Error(t, err)
	assert.EqualError(t, err, "line 2 rejected")
	assert.Equal(t, StatusPartial, a.Status())
	require.Len(t, a.Lines, 3)
	assert.True(t, a.Lines[0].OK())
	assert.Equal(t, "line 3 rejected", a.Lines[2].Err)
}

func TestSubmitAttemptRecord(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewCoordinator(&fakeCreator{})
	c.now = func() time.Time { return fixed }

	a, err := c.SubmitAttempt(context.Background(), "Hanako", cart.NewSnapshot(cart.Line{MenuID: 1, Quantity: 1}))
	require.NoError(t, err)
	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "Hanako", a.UserName)
	assert.Equal(t, fixed, a.SubmittedAt)
	assert.Equal(t, StatusSucceeded, a.Status())
	assert.Len(t, a.Results(), 1)
}

func TestAttemptStatusAllFailed(t *testing.T) {
	a := Attempt{Lines: []LineOutcome{{MenuID: 1, Err: "x"}, {MenuID: 2, Err: "y"}}}
	assert.Equal(t, StatusFailed, a.Status())
	assert.Empty(t, a.Results())
}
