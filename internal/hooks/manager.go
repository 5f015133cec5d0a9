// If you are AI: hook registry + dispatch. Notify is synchronous and
// stops at the first error: on_connect/on_publish/on_play hooks gate
// the action (a non-2xx response rejects the publish/play), so the
// caller needs a definitive answer
// before proceeding. on_close/on_unpublish/on_stop are notifications
// only — callers should ignore a returned error for those event types
// beyond logging it.
package hooks

import (
	"context"
	"log/slog"
	"sync"
)

// Manager holds the hooks registered per event type and dispatches
// events to them in registration order.
type Manager struct {
	mu     sync.RWMutex
	hooks  map[EventType][]Hook
	logger *slog.Logger
}

// NewManager creates an empty hook registry.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{hooks: make(map[EventType][]Hook), logger: logger}
}

// Register adds hook to the list invoked for eventType.
func (m *Manager) Register(eventType EventType, hook Hook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[eventType] = append(m.hooks[eventType], hook)
}

// Unregister removes the hook with the given ID from eventType. Reports
// whether a hook was found and removed.
func (m *Manager) Unregister(eventType EventType, id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := m.hooks[eventType]
	for i, h := range list {
		if h.ID() == id {
			m.hooks[eventType] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// Notify runs every hook registered for event.Type, in registration
// order, stopping at the first error.
func (m *Manager) Notify(ctx context.Context, event Event) error {
	m.mu.RLock()
	list := append([]Hook(nil), m.hooks[event.Type]...)
	m.mu.RUnlock()

	for _, h := range list {
		if err := h.Execute(ctx, event); err != nil {
			m.logger.Warn("hook execution failed",
				"hook_id", h.ID(), "event_type", event.Type, "stream", event.Stream, "error", err)
			return err
		}
	}
	return nil
}

// NotifyBestEffort behaves like Notify but runs every hook regardless of
// prior failures, returning only the last error seen — for the
// after-the-fact notification events (on_close/on_unpublish/on_stop)
// where no hook gets veto power.
func (m *Manager) NotifyBestEffort(ctx context.Context, event Event) error {
	m.mu.RLock()
	list := append([]Hook(nil), m.hooks[event.Type]...)
	m.mu.RUnlock()

	var lastErr error
	for _, h := range list {
		if err := h.Execute(ctx, event); err != nil {
			m.logger.Warn("hook execution failed",
				"hook_id", h.ID(), "event_type", event.Type, "stream", event.Stream, "error", err)
			lastErr = err
		}
	}
	return lastErr
}
