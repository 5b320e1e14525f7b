package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/skawashin1122/bento-app-project/internal/cart"
	"github.com/skawashin1122/bento-app-project/internal/menu"
	"github.com/skawashin1122/bento-app-project/internal/middleware"
	"github.com/skawashin1122/bento-app-project/internal/order"
)

var (
	// ErrSubmissionInFlight is returned when Submit is called while a previous
	// submission of the same session has not finished.
	ErrSubmissionInFlight = errors.New("a submission is already in progress")

	// ErrUnknownMenuItem is returned when adding an item the loaded menu does
	// not contain.
	ErrUnknownMenuItem = errors.New("unknown menu item")
)

// Presenter receives every state change of a session. Errors arrive as data.
type Presenter interface {
	CatalogLoaded(items []menu.Item, err error)
	CartChanged(lines []cart.Line, totals cart.Totals)
	SubmissionResult(results []order.Result, err error)
	HistoryLoaded(orders []order.Result, err error)
}

// Recorder is told about every submission attempt that reached the backend.
type Recorder interface {
	RecordAttempt(ctx context.Context, a order.Attempt) error
}

// Backend is the REST surface a session needs.
type Backend interface {
	menu.Lister
	order.Creator
	order.Lister
}

type Deps struct {
	Backend   Backend
	Presenter Presenter
	Recorders []Recorder
	Logger    *log.Logger
}

// Session owns one user's catalog cache and cart and routes their changes to
// the presenter.
type Session struct {
	id        string
	logger    *log.Logger
	catalog   *menu.Catalog
	cart      *cart.Store
	coord     *order.Coordinator
	history   *order.History
	presenter Presenter
	recorders []Recorder

	submitting atomic.Bool
	lastUsed   atomic.Int64
}

func New(d Deps) *Session {
	logger := d.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	presenter := d.Presenter
	if presenter == nil {
		presenter = nopPresenter{}
	}

	s := &Session{
		id:        uuid.NewString(),
		logger:    logger,
		catalog:   menu.NewCatalog(d.Backend),
		cart:      cart.NewStore(),
		coord:     order.NewCoordinator(d.Backend),
		history:   order.NewHistory(d.Backend),
		presenter: presenter,
		recorders: d.Recorders,
	}
	s.touch()

	s.cart.OnChange(func(snap cart.Snapshot) {
		s.presenter.CartChanged(snap.Lines(), snap.Totals(s.catalog))
	})
	return s
}

func (s *Session) ID() string { return s.id }

// LastUsed is the time of the last call that changed or read backend state.
func (s *Session) LastUsed() time.Time { return time.Unix(0, s.lastUsed.Load()) }

func (s *Session) Catalog() *menu.Catalog { return s.catalog }

func (s *Session) Cart() cart.Snapshot { return s.cart.Snapshot() }

func (s *Session) Totals() cart.Totals { return s.cart.ComputeTotals(s.catalog) }

func (s *Session) Submitting() bool { return s.submitting.Load() }

// LoadCatalog refreshes the menu. On failure the previous menu stays cached.
// A successful refresh re-prices the cart.
func (s *Session) LoadCatalog(ctx context.Context) ([]menu.Item, error) {
	s.touch()
	items, err := s.catalog.Refresh(ctx)
	if err != nil {
		s.logger.Printf("session %s: load menu: %v", s.id, err)
		s.presenter.CatalogLoaded(nil, err)
		return nil, err
	}
	s.presenter.CatalogLoaded(items, nil)

	snap := s.cart.Snapshot()
	if !snap.Empty() {
		s.presenter.CartChanged(snap.Lines(), snap.Totals(s.catalog))
	}
	return items, nil
}

// ChangeQuantity applies delta to a cart line. Increasing an item that the
// loaded menu does not contain fails with ErrUnknownMenuItem; decreasing is
// always allowed so stale lines can be removed.
func (s *Session) ChangeQuantity(menuID, delta int) (int, error) {
	s.touch()
	if delta > 0 && s.catalog.Loaded() {
		if _, ok := s.catalog.Lookup(menuID); !ok {
			return s.cart.Snapshot().Quantity(menuID), fmt.Errorf("%w: %d", ErrUnknownMenuItem, menuID)
		}
	}
	return s.cart.ApplyDelta(menuID, delta), nil
}

// ClearCart empties the cart without submitting.
func (s *Session) ClearCart() {
	s.touch()
	s.cart.Clear()
}

// Submit sends the current cart. The cart is cleared only when every line
// was accepted; otherwise it is left as it was so the user can retry.
func (s *Session) Submit(ctx context.Context, userName string) ([]order.Result, error) {
	s.touch()
	if !s.submitting.CompareAndSwap(false, true) {
		s.presenter.SubmissionResult(nil, ErrSubmissionInFlight)
		return nil, ErrSubmissionInFlight
	}
	defer s.submitting.Store(false)

	cid := middleware.GetCorrelationID(ctx)
	if cid == "" {
		cid = uuid.NewString()
		ctx = middleware.WithCorrelationID(ctx, cid)
	}

	// Requests already sent run to completion even if the caller goes away;
	// only the transport timeout bounds them.
	ctx = context.WithoutCancel(ctx)

	snap := s.cart.Snapshot()
	attempt, err := s.coord.SubmitAttempt(ctx, userName, snap)
	if attempt.ID != "" {
		attempt.CorrelationID = cid
		s.logger.Printf("session %s: submission %s %s (%d lines) cid=%s", s.id, attempt.ID, attempt.Status(), len(attempt.Lines), cid)
		s.record(ctx, attempt)
	}

	var results []order.Result
	if err == nil {
		results = attempt.Results()
		s.cart.Clear()
	}
	s.presenter.SubmissionResult(results, err)
	return results, err
}

// LoadHistory fetches past orders from the backend.
func (s *Session) LoadHistory(ctx context.Context) ([]order.Result, error) {
	s.touch()
	orders, err := s.history.Fetch(ctx)
	if err != nil {
		s.logger.Printf("session %s: load history: %v", s.id, err)
	}
	s.presenter.HistoryLoaded(orders, err)
	return orders, err
}

func (s *Session) record(ctx context.Context, a order.Attempt) {
	if len(s.recorders) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, r := range s.recorders {
		if err := r.RecordAttempt(ctx, a); err != nil {
			s.logger.Printf("session %s: record attempt %s: %v", s.id, a.ID, err)
		}
	}
}

func (s *Session) touch() { s.lastUsed.Store(time.Now().UnixNano()) }

type nopPresenter struct{}

func (nopPresenter) CatalogLoaded([]menu.Item, error) {}
func (nopPresenter) CartChanged([]cart.Line, cart.Totals) {}
func (nopPresenter) SubmissionResult([]order.Result, error) {}
func (nopPresenter) HistoryLoaded([]order.Result, error) {}
