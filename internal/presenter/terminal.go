package presenter

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"text/tabwriter"

	"github.com/skawashin1122/bento-app-project/internal/cart"
	"github.com/skawashin1122/bento-app-project/internal/menu"
	"github.com/skawashin1122/bento-app-project/internal/order"
)

// Terminal renders session notifications as plain text for the interactive
// shell.
type Terminal struct {
	mu    sync.Mutex
	w     io.Writer
	names map[int]string
}

func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, names: map[int]string{}}
}

func (t *Terminal) CatalogLoaded(items []menu.Item, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		fmt.Fprintf(t.w, "Failed to load the menu: %v\n", err)
		return
	}

	t.names = make(map[int]string, len(items))
	for _, it := range items {
		t.names[it.ID] = it.Name
	}

	if len(items) == 0 {
		fmt.Fprintln(t.w, "No menu items are available right now.")
		return
	}

	fmt.Fprintln(t.w, "Menu:")
	for _, it := range items {
		desc := it.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Fprintf(t.w, "  [%d] %s  %s\n      %s\n", it.ID, it.Name, FormatYen(it.Price), desc)
	}
}

func (t *Terminal) CartChanged(lines []cart.Line, totals cart.Totals) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(lines) == 0 {
		fmt.Fprintln(t.w, "Cart is empty.")
		return
	}

	fmt.Fprintln(t.w, "Cart:")
	for _, l := range lines {
		fmt.Fprintf(t.w, "  %s x%d\n", t.nameLocked(l.MenuID), l.Quantity)
	}
	fmt.Fprintf(t.w, "Total: %d item(s) %s\n", totals.Items, FormatYen(totals.Price))
	if totals.Stale() {
		fmt.Fprintf(t.w, "Warning: %d line(s) are no longer on the menu and are not priced.\n", len(totals.Missing))
	}
}

func (t *Terminal) SubmissionResult(results []order.Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		fmt.Fprintln(t.w, SubmissionMessage(err))
		var serr *order.SubmissionError
		if errors.As(err, &serr) {
			if accepted := serr.Accepted(); len(accepted) > 0 {
				fmt.Fprintf(t.w, "%d of %d line(s) were accepted before the failure and remain ordered:\n", len(accepted), len(serr.Lines))
				for _, r := range accepted {
					t.writeOrderLocked(r)
				}
				fmt.Fprintln(t.w, "Your cart was kept as is. Remove the accepted lines before retrying to avoid duplicates.")
			}
		}
		return
	}

	fmt.Fprintf(t.w, "Order complete! %d order(s) placed:\n", len(results))
	for _, r := range results {
		t.writeOrderLocked(r)
	}
}

func (t *Terminal) HistoryLoaded(orders []order.Result, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err != nil {
		fmt.Fprintf(t.w, "Failed to load order history: %v\n", err)
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(t.w, "No orders yet.")
		return
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tMENU\tQTY\tTOTAL\tORDERED AT")
	for _, o := range orders {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\n", o.ID, o.UserName, o.MenuName, o.Quantity, FormatYen(o.TotalPrice), FormatTime(o.OrderedAt))
	}
	_ = tw.Flush()
}

// Println writes a free-form line, serialised with notifications.
func (t *Terminal) Println(a ...any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, a...)
}

func (t *Terminal) writeOrderLocked(r order.Result) {
	fmt.Fprintf(t.w, "  Order #%d  %s x%d  %s  %s\n", r.ID, r.MenuName, r.Quantity, FormatYen(r.TotalPrice), FormatTime(r.OrderedAt))
}

func (t *Terminal) nameLocked(id int) string {
	if name, ok := t.names[id]; ok {
		return name
	}
	return "#" + strconv.Itoa(id) + " (no longer on the menu)"
}
