package order

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skawashin1122/bento-app-project/internal/cart"
)

// Creator places a single order with the backend.
type Creator interface {
	CreateOrder(ctx context.Context, req Request) (Result, error)
}

// Coordinator turns a cart snapshot into one order per line. It never touches
// the cart itself; clearing after success is the caller's job. It does not
// guard against concurrent submissions either.
type Coordinator struct {
	creator Creator
	now     func() time.Time
}

func NewCoordinator(creator Creator) *Coordinator {
	return &Coordinator{creator: creator, now: time.Now}
}

// Submit validates, sends every line concurrently and waits for all of them.
// On full success the results come back in snapshot order. If any line failed
// the error is a *SubmissionError; lines that were accepted stay accepted.
func (c *Coordinator) Submit(ctx context.Context, userName string, snap cart.Snapshot) ([]Result, error) {
	a, err := c.SubmitAttempt(ctx, userName, snap)
	if err != nil {
		return nil, err
	}
	return a.Results(), nil
}

// SubmitAttempt is Submit that also returns the per-line record. The attempt
// is zero when validation failed, since nothing was sent.
func (c *Coordinator) SubmitAttempt(ctx context.Context, userName string, snap cart.Snapshot) (Attempt, error) {
	name := strings.TrimSpace(userName)
	if name == "" {
		return Attempt{}, &ValidationError{Reason: EmptyName}
	}
	if snap.Empty() {
		return Attempt{}, &ValidationError{Reason: EmptyCart}
	}

	lines := snap.Lines()
	attempt := Attempt{
		ID:          uuid.NewString(),
		UserName:    name,
		Lines:       make([]LineOutcome, len(lines)),
		SubmittedAt: c.now().UTC(),
	}

	results := make([]Result, len(lines))
	errs := make([]error, len(lines))

	var wg sync.WaitGroup
	wg.Add(len(lines))
	for i := range lines {
		req := Request{UserName: name, MenuID: lines[i].MenuID, Quantity: lines[i].Quantity}
		go func(i int, req Request) {
			defer wg.Done()
			results[i], errs[i] = c.creator.CreateOrder(ctx, req)
		}(i, req)
	}
	wg.Wait()

	var first error
	for i, l := range lines {
		out := LineOutcome{MenuID: l.MenuID, Quantity: l.Quantity}
		if errs[i] != nil {
			out.Err = errs[i].Error()
			if first == nil {
				first = errs[i]
			}
		} else {
			r := results[i]
			out.Result = &r
		}
		attempt.Lines[i] = out
	}

	if first != nil {
		return attempt, &SubmissionError{Message: first.Error(), Lines: attempt.Lines}
	}
	return attempt, nil
}
