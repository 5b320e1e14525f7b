package order

import "context"

type Lister interface {
	ListOrders(ctx context.Context) ([]Result, error)
}

// History reads past orders. It keeps no state; every Fetch goes to the
// backend and the order of the response is preserved.
type History struct {
	src Lister
}

func NewHistory(src Lister) *History {
	return &History{src: src}
}

// Fetch returns an empty, non-nil slice when there are no orders so callers
// can tell "nothing yet" from a failure.
func (h *History) Fetch(ctx context.Context) ([]Result, error) {
	orders, err := h.src.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []Result{}
	}
	return orders, nil
}
