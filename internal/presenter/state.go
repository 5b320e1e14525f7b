package presenter

import (
	"errors"
	"sync"

	"github.com/skawashin1122/bento-app-project/internal/cart"
	"github.com/skawashin1122/bento-app-project/internal/menu"
	"github.com/skawashin1122/bento-app-project/internal/order"
)

type CartLineView struct {
	MenuID    int    `json:"menuId"`
	Name      string `json:"name,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unitPrice"`
	Subtotal  int64  `json:"subtotal"`
	Missing   bool   `json:"missing,omitempty"`
}

type SubmissionView struct {
	OK       bool                `json:"ok"`
	Results  []order.Result      `json:"results,omitempty"`
	Error    string              `json:"error,omitempty"`
	Reason   string              `json:"reason,omitempty"`
	Lines    []order.LineOutcome `json:"lines,omitempty"`
	Accepted []order.Result      `json:"accepted,omitempty"`
}

// View is the JSON-ready state of one session.
type View struct {
	Menu      []menu.Item    `json:"menu"`
	MenuError string         `json:"menuError,omitempty"`
	Cart      []CartLineView `json:"cart"`
	Totals    cart.Totals    `json:"totals"`

	Submitting bool            `json:"submitting"`
	Submission *SubmissionView `json:"lastSubmission,omitempty"`

	History       []order.Result `json:"history,omitempty"`
	HistoryError  string         `json:"historyError,omitempty"`
	HistoryLoaded bool           `json:"historyLoaded"`
}

// State keeps the latest notification of each kind so it can be served as a
// View. The menu survives a failed reload; history is replaced by the error.
type State struct {
	mu   sync.RWMutex
	view View
	byID map[int]menu.Item
}

func NewState() *State {
	return &State{
		view: View{Menu: []menu.Item{}, Cart: []CartLineView{}},
		byID: map[int]menu.Item{},
	}
}

func (s *State) CatalogLoaded(items []menu.Item, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.view.MenuError = err.Error()
		return
	}
	s.view.MenuError = ""
	s.view.Menu = append([]menu.Item{}, items...)
	s.byID = make(map[int]menu.Item, len(items))
	for _, it := range items {
		s.byID[it.ID] = it
	}
}

func (s *State) CartChanged(lines []cart.Line, totals cart.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()

	missing := make(map[int]bool, len(totals.Missing))
	for _, id := range totals.Missing {
		missing[id] = true
	}

	out := make([]CartLineView, 0, len(lines))
	for _, l := range lines {
		v := CartLineView{MenuID: l.MenuID, Quantity: l.Quantity, Missing: missing[l.MenuID]}
		if it, ok := s.byID[l.MenuID]; ok && !v.Missing {
			v.Name = it.Name
			v.UnitPrice = it.Price
			v.Subtotal = it.Price * int64(l.Quantity)
		}
		out = append(out, v)
	}
	s.view.Cart = out
	s.view.Totals = totals
}

func (s *State) SubmissionResult(results []order.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		s.view.Submission = &SubmissionView{OK: true, Results: results}
		return
	}

	sv := &SubmissionView{Error: SubmissionMessage(err), Reason: Reason(err)}
	var serr *order.SubmissionError
	if errors.As(err, &serr) {
		sv.Lines = serr.Lines
		sv.Accepted = serr.Accepted()
	}
	s.view.Submission = sv
}

func (s *State) HistoryLoaded(orders []order.Result, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.view.HistoryLoaded = true
	if err != nil {
		s.view.History = nil
		s.view.HistoryError = err.Error()
		return
	}
	s.view.HistoryError = ""
	s.view.History = append([]order.Result{}, orders...)
}

// View returns a copy of the current state.
func (s *State) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v := s.view
	v.Menu = append([]menu.Item{}, s.view.Menu...)
	v.Cart = append([]CartLineView{}, s.view.Cart...)
	if s.view.History != nil {
		v.History = append([]order.Result{}, s.view.History...)
	}
	if s.view.Submission != nil {
		sub := *s.view.Submission
		v.Submission = &sub
	}
	return v
}
