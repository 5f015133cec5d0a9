// If you are AI: Consumer is one subscriber's view of a source: a
// bounded queue (internal/media/queue), timestamp jitter correction,
// merge-read batching, and pause/resume.
package consumer

import (
	"sync/atomic"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
)

// JitterAlgorithm selects how outgoing packet timestamps are smoothed.
// Values and thresholds mirror SRS's SrsRtmpJitterAlgorithm.
type JitterAlgorithm uint8

const (
	JitterFull JitterAlgorithm = iota
	JitterZero
	JitterOff
)

const (
	maxJitterMs    = 250
	maxJitterMsNeg = -250
	defaultFrameMs = 10
)

// jitterState tracks the running correction for one consumer's stream of
// outgoing timestamps. Not safe for concurrent use; owned by the
// consumer's single drain goroutine.
type jitterState struct {
	algo            JitterAlgorithm
	lastPktTime     int64
	lastCorrectTime int64
}

// correct rewrites ts according to the algorithm: Off passes through
// unchanged, Zero forces a constant per-packet step (removing jitter
// entirely at the cost of true timing), Full accepts small deltas as-is
// and clamps large encoder-clock jumps to a nominal frame step.
func (j *jitterState) correct(ts uint32) uint32 {
	switch j.algo {
	case JitterOff:
		return ts
	case JitterZero:
		j.lastCorrectTime += defaultFrameMs
		return uint32(j.lastCorrectTime)
	default: // JitterFull
		t := int64(ts)
		delta := t - j.lastPktTime
		j.lastPktTime = t
		if delta < maxJitterMsNeg || delta > maxJitterMs {
			delta = defaultFrameMs
		}
		if delta < 0 {
			delta = 0
		}
		j.lastCorrectTime += delta
		return uint32(j.lastCorrectTime)
	}
}

// Consumer is one fan-out destination attached to a source: an output
// bridger, a relay forwarder, or a directly-connected player. The
// source-hub's fan-out goroutine is the sole writer into q; exactly one
// drain goroutine (owned by the consumer's caller) reads from it.
type Consumer struct {
	id     uint64
	q      *queue.Queue
	jitter jitterState
	paused atomic.Bool
}

// New creates a consumer with the given id, queue bounds/policy, and
// jitter algorithm.
func New(id uint64, maxCount int, maxSpanMs uint32, policy queue.Policy, algo JitterAlgorithm) *Consumer {
	return &Consumer{
		id:     id,
		q:      queue.New(maxCount, maxSpanMs, policy),
		jitter: jitterState{algo: algo},
	}
}

// ID returns the consumer's source-local identity.
func (c *Consumer) ID() uint64 { return c.id }

// Enqueue is called by the source-hub fan-out path. The queue keeps
// receiving while the consumer is paused — only Drain stops — so the
// drop policy still governs a paused subscriber's backlog. Returns
// false if the queue policy is Disable and it has overflowed: the
// caller must then detach this consumer as SlowConsumer.
func (c *Consumer) Enqueue(p *packet.Packet) bool {
	return c.q.Push(p)
}

// Pause stops delivery without detaching; queued packets keep
// accumulating (and are still subject to the drop policy) until Resume.
func (c *Consumer) Pause()  { c.paused.Store(true) }
// Resume re-enables delivery after Pause.
func (c *Consumer) Resume() { c.paused.Store(false) }
// Paused reports whether delivery is suspended.
func (c *Consumer) Paused() bool { return c.paused.Load() }

// Drain pops up to maxBatch packets (merge-read batching), applying
// jitter correction to each, invoking handler for each, and returns the
// count processed. Packet ownership transfers to handler, which must
// call packet.ReleasePacket when done.
func (c *Consumer) Drain(maxBatch int, handler func(*packet.Packet)) int {
	if c.paused.Load() {
		return 0
	}
	n := 0
	for n < maxBatch {
		p, ok := c.q.Pop()
		if !ok {
			break
		}
		p.Timestamp = c.jitter.correct(p.Timestamp)
		handler(p)
		n++
	}
	return n
}

// QueueLen returns the queued packet count.
func (c *Consumer) QueueLen() int       { return c.q.Len() }
// Dropped returns how many packets the queue policy discarded.
func (c *Consumer) Dropped() uint64     { return c.q.Dropped() }
// Overflowed reports a tripped PolicyDisable queue.
func (c *Consumer) Overflowed() bool    { return c.q.Overflowed() }
