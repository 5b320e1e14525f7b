package httpapi

import (
	"sync"
	"time"

	"github.com/skawashin1122/bento-app-project/internal/presenter"
	"github.com/skawashin1122/bento-app-project/internal/session"
)

// SessionFactory builds a session that reports to p.
type SessionFactory func(p session.Presenter) *session.Session

type entry struct {
	sess  *session.Session
	state *presenter.State
}

// Registry holds the sessions of the HTTP adapter, one per browser tab.
type Registry struct {
	factory SessionFactory

	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry(factory SessionFactory) *Registry {
	return &Registry{factory: factory, entries: map[string]entry{}}
}

func (r *Registry) Create() (*session.Session, *presenter.State) {
	state := presenter.NewState()
	sess := r.factory(state)

	r.mu.Lock()
	r.entries[sess.ID()] = entry{sess: sess, state: state}
	r.mu.Unlock()

	return sess, state
}

func (r *Registry) Get(id string) (*session.Session, *presenter.State, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	return e.sess, e.state, ok
}

func (r *Registry) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	delete(r.entries, id)
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Sweep drops sessions idle for longer than maxIdle. Sessions with a
// submission in flight are kept.
func (r *Registry) Sweep(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for id, e := range r.entries {
		if e.sess.Submitting() {
			continue
		}
		if now.Sub(e.sess.LastUsed()) > maxIdle {
			delete(r.entries, id)
			n++
		}
	}
	return n
}
