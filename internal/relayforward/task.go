// If you are AI: ForwardTask is one source-to-destination relay loop: a
// stop channel, reconnect with a fixed delay, and a drain loop over a
// consumer attached to the source, selecting against ctx.Done and the
// stop channel at every step.
package relayforward

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
	"github.com/srsgo/srs/internal/sourcehub"
)

const (
	reconnectDelay = 5 * time.Second
	drainBatch     = 64
)

// ForwardTask relays one source's packets to one outgoing destination,
// reconnecting with a fixed backoff when the destination drops.
type ForwardTask struct {
	source *sourcehub.Source
	dest   *Destination
	logger *slog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	running  atomicBool
}

type atomicBool struct {
	mu sync.Mutex
	v  bool
}

// set stores the flag.
func (b *atomicBool) set(v bool) { b.mu.Lock(); b.v = v; b.mu.Unlock() }
// get loads the flag.
func (b *atomicBool) get() bool  { b.mu.Lock(); defer b.mu.Unlock(); return b.v }

// NewForwardTask pairs one source with one destination.
func NewForwardTask(source *sourcehub.Source, dest *Destination, logger *slog.Logger) *ForwardTask {
	return &ForwardTask{
		source:   source,
		dest:     dest,
		logger:   logger.With("stream", source.Key().String(), "forward_url", dest.URL),
		stopChan: make(chan struct{}),
	}
}

// Run attaches a consumer to the source and relays packets to the
// destination until ctx is cancelled or Stop is called, reconnecting on
// destination failure.
func (t *ForwardTask) Run(ctx context.Context) error {
	t.running.set(true)
	defer t.running.set(false)

	cons := t.source.NewConsumer(4096, 0, queue.PolicyDropVideoNonGOP, consumer.JitterFull)
	defer t.source.DetachConsumer(cons.ID())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.stopChan:
			return nil
		default:
		}

		if err := t.dest.Connect(ctx); err != nil {
			t.logger.Warn("forward connect failed, retrying", "error", err)
			if !t.wait(ctx) {
				return nil
			}
			continue
		}

		if err := t.relayLoop(ctx, cons); err != nil {
			t.logger.Warn("forward relay loop ended, reconnecting", "error", err)
			t.dest.Close()
			if !t.wait(ctx) {
				return nil
			}
			continue
		}
		return nil
	}
}

// relayLoop drains the consumer into the destination until an error or
// stop.
func (t *ForwardTask) relayLoop(ctx context.Context, cons *consumer.Consumer) error {
	var sendErr error
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.stopChan:
			return nil
		default:
		}

		n := cons.Drain(drainBatch, func(p *packet.Packet) {
			if sendErr != nil {
				return
			}
			sendErr = t.dest.Send(p)
		})
		if sendErr != nil {
			return sendErr
		}
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// wait blocks for the reconnect delay, returning false if the task should
// stop instead.
func (t *ForwardTask) wait(ctx context.Context) bool {
	select {
	case <-time.After(reconnectDelay):
		return true
	case <-ctx.Done():
		return false
	case <-t.stopChan:
		return false
	}
}

// Stop ends the task and closes its destination.
func (t *ForwardTask) Stop() {
	t.stopOnce.Do(func() { close(t.stopChan) })
	t.dest.Close()
}

// IsRunning reports whether Run is active.
func (t *ForwardTask) IsRunning() bool { return t.running.get() }
