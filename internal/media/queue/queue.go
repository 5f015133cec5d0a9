// If you are AI: the per-consumer message queue, bounded by BOTH a
// maximum packet count and a maximum media-time span, with three named
// drop policies. A mutex-guarded slice deque rather than a lock-free
// ring, because drop-audio and drop-video-non-gop need to walk and
// remove from the middle of the buffer, which a single-producer/
// single-consumer ring cannot do.
package queue

import (
	"sync"

	"github.com/srsgo/srs/internal/media/packet"
)

// Policy names the action taken when a queue exceeds its bounds.
type Policy uint8

const (
	// PolicyDropAudio discards the oldest audio packets first, keeping
	// video (and especially keyframes) as long as possible.
	PolicyDropAudio Policy = iota
	// PolicyDropVideoNonGOP discards the oldest non-keyframe video and
	// audio packets, never a keyframe, so a consumer that catches up
	// still has a GOP to start decoding from.
	PolicyDropVideoNonGOP
	// PolicyDisable never drops; once over bound, Push reports
	// overflow so the caller can detach the consumer as SlowConsumer.
	PolicyDisable
)

// DefaultMaxAVDelta bounds how far (media time) an audio packet may lag
// the newest queued video before it is dropped outright rather than
// enqueued: audio that stale can no longer be lip-synced.
const DefaultMaxAVDelta uint32 = 5000

// Queue is a bounded, ordered FIFO of packets belonging to one consumer.
// The source-hub fan-out goroutine is the sole writer; the consumer's
// drain goroutine is the sole reader, but both take the mutex because
// drop policies mutate arbitrary positions, not just the head.
type Queue struct {
	mu         sync.Mutex
	items      []*packet.Packet
	maxCount   int
	maxSpan    uint32 // media-timestamp span, same units as Packet.Timestamp
	maxAVDelta uint32
	policy     Policy
	dropped    uint64
	overflow   bool // set once under PolicyDisable; never cleared

	newestVideoTs uint32
	hasVideo      bool
}

// New creates a queue bounded by maxCount packets and maxSpan milliseconds
// of media time between the oldest and newest queued packet, whichever is
// reached first. maxCount<=0 or maxSpan==0 disables that bound.
func New(maxCount int, maxSpan uint32, policy Policy) *Queue {
	return &Queue{maxCount: maxCount, maxSpan: maxSpan, maxAVDelta: DefaultMaxAVDelta, policy: policy}
}

// SetMaxAVDelta overrides the lagging-audio bound; 0 disables the check.
func (q *Queue) SetMaxAVDelta(delta uint32) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maxAVDelta = delta
}

// Push appends p to the tail, applying the drop policy if bounds are
// exceeded. An audio packet lagging more than maxAVDelta behind the
// newest queued video is dropped outright instead of enqueued. Returns
// false only under PolicyDisable once the queue is over bound; the
// caller should treat that as SlowConsumer and detach.
func (q *Queue) Push(p *packet.Packet) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if p.Kind == packet.KindVideo {
		q.hasVideo = true
		if p.Timestamp > q.newestVideoTs {
			q.newestVideoTs = p.Timestamp
		}
	}
	if p.Kind == packet.KindAudio && !p.IsSequenceHeader() &&
		q.maxAVDelta > 0 && q.hasVideo &&
		q.newestVideoTs > p.Timestamp && q.newestVideoTs-p.Timestamp > q.maxAVDelta {
		q.dropped++
		packet.ReleasePacket(p)
		return true
	}

	q.items = append(q.items, p)
	if !q.overBoundLocked() {
		return true
	}
	if q.policy == PolicyDisable {
		q.overflow = true
		return false
	}
	if q.policy == PolicyDropVideoNonGOP && p.Kind == packet.KindVideo && p.IsVideoKeyframe {
		// The arriving keyframe opens a fresh GOP: everything queued
		// before it belongs to a GOP the consumer will never finish
		// draining in time, so drop it all and make the new keyframe the
		// queue's base.
		q.dropBeforeTailLocked()
		return true
	}
	q.evictLocked()
	return true
}

// dropBeforeTailLocked discards every packet except the just-pushed tail.
// Sequence headers are retained: the consumer still needs them to decode
// the new GOP if it attached before they were latched upstream.
func (q *Queue) dropBeforeTailLocked() {
	tail := q.items[len(q.items)-1]
	kept := q.items[:0]
	for _, it := range q.items[:len(q.items)-1] {
		if it.IsSequenceHeader() {
			kept = append(kept, it)
			continue
		}
		q.dropped++
		packet.ReleasePacket(it)
	}
	q.items = append(kept, tail)
}

// Pop removes and returns the oldest packet, or nil, false if empty.
func (q *Queue) Pop() (*packet.Packet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	p := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return p, true
}

// Len returns the queued packet count.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many packets the policy discarded.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Overflowed reports whether PolicyDisable has ever tripped on this
// queue; draining the queue does not clear it.
func (q *Queue) Overflowed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.overflow
}

// overBoundLocked reports whether either bound is exceeded.
func (q *Queue) overBoundLocked() bool {
	if q.maxCount > 0 && len(q.items) > q.maxCount {
		return true
	}
	if q.maxSpan > 0 && len(q.items) >= 2 {
		span := q.items[len(q.items)-1].Timestamp - q.items[0].Timestamp
		if span > q.maxSpan {
			return true
		}
	}
	return false
}

// evictLocked drops from the head according to policy until back within
// bound, or until no further eligible victim remains.
func (q *Queue) evictLocked() {
	for q.overBoundLocked() {
		idx := q.victimIndexLocked()
		if idx < 0 {
			return
		}
		q.dropped++
		packet.ReleasePacket(q.items[idx])
		q.items = append(q.items[:idx], q.items[idx+1:]...)
	}
}

// victimIndexLocked picks the position to evict next, or -1 if the
// policy has no eligible victim left (e.g. drop-video-non-gop with
// nothing but keyframes queued). Sequence headers are never victims:
// the consumer cannot decode anything that follows without them.
func (q *Queue) victimIndexLocked() int {
	switch q.policy {
	case PolicyDropAudio:
		for i, p := range q.items {
			if p.Kind == packet.KindAudio && !p.IsSequenceHeader() {
				return i
			}
		}
		for i, p := range q.items {
			if !p.IsSequenceHeader() {
				return i
			}
		}
		return -1
	case PolicyDropVideoNonGOP:
		for i, p := range q.items {
			if p.IsSequenceHeader() {
				continue
			}
			if p.Kind == packet.KindAudio {
				return i
			}
			if p.Kind == packet.KindVideo && !p.IsVideoKeyframe {
				return i
			}
		}
		return -1
	default:
		for i, p := range q.items {
			if !p.IsSequenceHeader() {
				return i
			}
		}
		return -1
	}
}
