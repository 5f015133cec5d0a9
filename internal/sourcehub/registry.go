// If you are AI: Registry is the process-wide table of Sources keyed by
// (vhost, app, stream). Idle sources stay cached so a reconnecting
// publisher finds its prior slot quickly; Sweep evicts those idle past
// the configured dispose window.
package sourcehub

import (
	"sync"
	"time"
)

// VhostConfig supplies the per-vhost settings a newly created Source
// needs, resolved by the caller from the directive tree.
type VhostConfig struct {
	GopCacheEnabled   bool
	GopCacheMaxFrames int
	MixCorrect        bool
	ATC               bool
	IsEdge            bool
	Puller            EdgePuller
}

// Registry is the process-wide table of all known Sources, keyed by
// (vhost, app, stream).
type Registry struct {
	mu      sync.RWMutex
	sources map[StreamKey]*Source
}

// NewRegistry creates an empty source table.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[StreamKey]*Source)}
}

// FetchOrCreate returns the existing Source for key, or creates one using
// cfg if none exists yet.
func (r *Registry) FetchOrCreate(key StreamKey, cfg VhostConfig) *Source {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[key]; ok {
		return s
	}
	s := New(key, cfg)
	r.sources[key] = s
	return s
}

// Get returns the Source for key, or nil if none exists.
func (r *Registry) Get(key StreamKey) *Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sources[key]
}

// RemoveIfEmpty evicts key's Source if it has no publisher and no
// consumers, returning true if it was removed.
func (r *Registry) RemoveIfEmpty(key StreamKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sources[key]
	if !ok || !s.IsEmpty() {
		return false
	}
	delete(r.sources, key)
	return true
}

// Sweep evicts every Source that has been idle longer than ttl, returning
// how many were removed. Callers run this on a timer; between sweeps an
// idle source keeps its cached history for fast publisher reconnects.
func (r *Registry) Sweep(now time.Time, ttl time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k, s := range r.sources {
		if d := s.IdleFor(now); d > 0 && d >= ttl {
			delete(r.sources, k)
			n++
		}
	}
	return n
}

// Count returns the number of cached sources.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// List returns a snapshot of all known stream keys.
func (r *Registry) List() []StreamKey {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]StreamKey, 0, len(r.sources))
	for k := range r.sources {
		keys = append(keys, k)
	}
	return keys
}
