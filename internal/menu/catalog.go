package menu

import (
	"context"
	"sync"
)

// Lister fetches the full menu from the backend.
type Lister interface {
	ListMenus(ctx context.Context) ([]Item, error)
}

// Catalog caches the last successfully fetched menu. Lookups never touch the
// network; only Refresh does.
type Catalog struct {
	src Lister

	mu     sync.RWMutex
	items  []Item
	byID   map[int]Item
	loaded bool
}

func NewCatalog(src Lister) *Catalog {
	return &Catalog{src: src, byID: map[int]Item{}}
}

// Refresh replaces the cached menu wholesale. On error the previous contents
// are kept and the error is returned unchanged.
func (c *Catalog) Refresh(ctx context.Context) ([]Item, error) {
	items, err := c.src.ListMenus(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]Item, len(items))
	copy(fresh, items)
	byID := make(map[int]Item, len(fresh))
	for _, it := range fresh {
		byID[it.ID] = it
	}

	c.mu.Lock()
	c.items = fresh
	c.byID = byID
	c.loaded = true
	c.mu.Unlock()

	return c.Items(), nil
}

func (c *Catalog) Lookup(id int) (Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.byID[id]
	return it, ok
}

// Price implements cart.PriceLookup.
func (c *Catalog) Price(id int) (int64, bool) {
	it, ok := c.Lookup(id)
	return it.Price, ok
}

// Items returns a copy of the cached menu in backend order.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Loaded reports whether at least one Refresh has succeeded.
func (c *Catalog) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}
