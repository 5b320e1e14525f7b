package cart

// Line is a (menu item, quantity) pair. Quantity is always positive; an item
// that is not in the cart has no line at all.
type Line struct {
	MenuID   int `json:"menuId"`
	Quantity int `json:"quantity"`
}

// Totals is the client-side estimate of a cart's size and price. Missing
// lists menu ids in the cart that the catalog no longer knows; they count
// towards Items but contribute nothing to Price.
type Totals struct {
	Items   int   `json:"items"`
	Price   int64 `json:"price"`
	Missing []int `json:"missing,omitempty"`
}

// Stale reports whether any line could not be priced.
func (t Totals) Stale() bool { return len(t.Missing) > 0 }

// PriceLookup resolves the cached unit price of a menu item.
type PriceLookup interface {
	Price(menuID int) (int64, bool)
}

// Snapshot is an immutable copy of the cart taken at one point in time.
type Snapshot struct {
	lines []Line
}

// NewSnapshot builds a snapshot from explicit lines. Lines with a
// non-positive quantity are dropped and repeated ids are merged, so the
// result obeys the same rules as a snapshot taken from a Store.
func NewSnapshot(lines ...Line) Snapshot {
	idx := map[int]int{}
	out := make([]Line, 0, len(lines))
	for _, l := range lines {
		if l.Quantity <= 0 {
			continue
		}
		if i, ok := idx[l.MenuID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.MenuID] = len(out)
		out = append(out, l)
	}
	return Snapshot{lines: out}
}

// Lines returns the lines in iteration order (oldest first). The slice is a
// copy.
func (s Snapshot) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s Snapshot) Len() int { return len(s.lines) }

func (s Snapshot) Empty() bool { return len(s.lines) == 0 }

func (s Snapshot) Quantity(menuID int) int {
	for _, l := range s.lines {
		if l.MenuID == menuID {
			return l.Quantity
		}
	}
	return 0
}

// Totals prices the snapshot against prices.
func (s Snapshot) Totals(prices PriceLookup) Totals {
	var t Totals
	for _, l := range s.lines {
		t.Items += l.Quantity
		price, ok := prices.Price(l.MenuID)
		if !ok {
			t.Missing = append(t.Missing, l.MenuID)
			continue
		}
		t.Price += price * int64(l.Quantity)
	}
	return t
}
