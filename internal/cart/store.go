package cart

import (
	"math"
	"sync"
)

// Store holds the quantities the user intends to order. It is only mutated by
// ApplyDelta and Clear; every mutation call notifies the change listener with
// the resulting snapshot.
type Store struct {
	mu       sync.Mutex
	qty      map[int]int
	order    []int
	listener func(Snapshot)
}

func NewStore() *Store {
	return &Store{qty: map[int]int{}}
}

// OnChange registers the listener called after every ApplyDelta and Clear.
// It replaces any previous listener. The listener runs outside the store lock.
func (s *Store) OnChange(fn func(Snapshot)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// ApplyDelta adds delta to the quantity of menuID, clamping at zero. A line
// that reaches zero is removed. Growth saturates at math.MaxInt. It returns
// the new quantity.
func (s *Store) ApplyDelta(menuID, delta int) int {
	s.mu.Lock()
	cur := s.qty[menuID]
	next := cur + delta
	switch {
	case delta > 0 && cur > math.MaxInt-delta:
		next = math.MaxInt
	case next < 0:
		next = 0
	}

	switch {
	case next == 0 && cur > 0:
		delete(s.qty, menuID)
		s.removeOrder(menuID)
	case next > 0 && cur == 0:
		s.qty[menuID] = next
		s.order = append(s.order, menuID)
	case next > 0:
		s.qty[menuID] = next
	}

	snap := s.snapshotLocked()
	fn := s.listener
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
	return next
}

// Snapshot returns an immutable copy of the current cart.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// ComputeTotals prices the current cart using the cached catalog prices.
func (s *Store) ComputeTotals(prices PriceLookup) Totals {
	return s.Snapshot().Totals(prices)
}

// Clear empties the cart unconditionally.
func (s *Store) Clear() {
	s.mu.Lock()
	s.qty = map[int]int{}
	s.order = nil
	snap := s.snapshotLocked()
	fn := s.listener
	s.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	lines := make([]Line, 0, len(s.order))
	for _, id := range s.order {
		lines = append(lines, Line{MenuID: id, Quantity: s.qty[id]})
	}
	return Snapshot{lines: lines}
}

func (s *Store) removeOrder(menuID int) {
	for i, id := range s.order {
		if id == menuID {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			return
		}
	}
}
