// If you are AI: Manager fans a single source out to every "forward
// destination" URL configured for its vhost, one ForwardTask goroutine
// per destination so each gets its own reconnect loop.
package relayforward

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/srsgo/srs/internal/sourcehub"
)

// Manager owns every active ForwardTask for one process.
type Manager struct {
	mu      sync.Mutex
	tasks   map[string]*ForwardTask // keyed by streamKey + "|" + url
	wg      sync.WaitGroup
	factory PublisherFactory
	logger  *slog.Logger
}

// NewManager creates an empty forward-task table using factory for
// outgoing connections.
func NewManager(factory PublisherFactory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{tasks: make(map[string]*ForwardTask), factory: factory, logger: logger}
}

// StartForwards launches one ForwardTask per destination URL for source,
// skipping any URL already forwarding for that source.
func (m *Manager) StartForwards(ctx context.Context, source *sourcehub.Source, urls []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	streamKey := source.Key().String()
	for _, u := range urls {
		taskKey := streamKey + "|" + u
		if _, exists := m.tasks[taskKey]; exists {
			continue
		}

		dest, err := NewDestination(u, m.logger, m.factory)
		if err != nil {
			return fmt.Errorf("forward destination %s: %w", u, err)
		}
		task := NewForwardTask(source, dest, m.logger)
		m.tasks[taskKey] = task

		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			if err := task.Run(ctx); err != nil {
				m.logger.Warn("forward task exited", "error", err)
			}
		}()
	}
	return nil
}

// StopStream stops every forward task for streamKey.
func (m *Manager) StopStream(streamKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := streamKey + "|"
	for k, task := range m.tasks {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			task.Stop()
			delete(m.tasks, k)
		}
	}
}

// Stop stops every forward task and waits for all goroutines to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	for _, task := range m.tasks {
		task.Stop()
	}
	m.tasks = make(map[string]*ForwardTask)
	m.mu.Unlock()
	m.wg.Wait()
}

// TaskCount returns the number of active forward tasks.
func (m *Manager) TaskCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
