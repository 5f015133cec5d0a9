// If you are AI: Engine owns the currently active config tree and
// drives the diff/commit/notify cycle on SIGHUP-triggered reloads over
// an ordered subscriber list.
package reload

import (
	"sync"

	"github.com/srsgo/srs/internal/directive"
)

// Engine holds the active directive tree and the subscribers registered
// for reload notifications.
type Engine struct {
	mu      sync.RWMutex
	current *directive.Directive
	subs    []Subscriber
}

// New creates an engine with the given initial tree already active — no
// notifications fire for it.
func New(initial *directive.Directive) *Engine {
	return &Engine{current: initial}
}

// Current returns the currently active tree.
func (e *Engine) Current() *directive.Directive {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.current
}

// Subscribe registers s to receive future reload notifications, in
// registration order.
func (e *Engine) Subscribe(s Subscriber) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.subs = append(e.subs, s)
}

// Reload diffs newRoot against the currently active tree. If the diff
// errors (an edge/origin mode flip, a non-reloadable directive), the
// active tree is left unchanged and the error is returned — the caller's
// existing process keeps running against the old config. Otherwise
// newRoot becomes the active tree and every notification is dispatched
// to subscribers, in Diff's order. The first subscriber error aborts the
// remaining notifications and rolls the active tree back to the old one,
// so a half-applied reload never becomes the config readers see.
func (e *Engine) Reload(newRoot *directive.Directive) error {
	e.mu.RLock()
	old := e.current
	e.mu.RUnlock()

	notes, err := Diff(old, newRoot)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.current = newRoot
	subs := append([]Subscriber(nil), e.subs...)
	e.mu.Unlock()

	for _, n := range notes {
		for _, s := range subs {
			if err := s.OnReload(n); err != nil {
				e.mu.Lock()
				e.current = old
				e.mu.Unlock()
				return err
			}
		}
	}
	return nil
}
