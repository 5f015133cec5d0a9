// If you are AI: Source is the per-stream hub. It admits at most one
// publisher, fans packets out to any number of consumers, latches the
// newest sequence headers and metadata for prologue replay, keeps the
// GOP cache for instant startup, runs the optional mix-correct reorder
// stage, and spawns an upstream pull for edge vhosts when the first
// consumer arrives with no local publisher.
package sourcehub

import (
	"sync"
	"time"

	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/gopcache"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/srserr"
)

// State is a Source's publisher/consumer lifecycle state.
type State uint8

const (
	StateIdle State = iota
	StateIdleWithConsumers
	StatePublishing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateIdleWithConsumers:
		return "idle_with_consumers"
	case StatePublishing:
		return "publishing"
	default:
		return "unknown"
	}
}

// EdgePuller is implemented by the edge ingest adapter: when an edge
// vhost's Source gains its first consumer with no local publisher, the
// Source asks the puller to establish an upstream pull session.
type EdgePuller interface {
	PullStream(key StreamKey)
	// StopPull is called after the last consumer detaches; the puller may
	// apply a grace window before actually tearing the pull down.
	StopPull(key StreamKey)
}

// Source is the per-stream hub: exactly one publisher, many consumers.
// One goroutine (the publisher's ingest loop) calls Publish; any number
// of goroutines may call AttachConsumer/DetachConsumer concurrently, so
// the mutable state is guarded by mu.
type Source struct {
	key StreamKey
	cfg VhostConfig

	mu             sync.RWMutex
	state          State
	publisherID    uint64
	consumers      map[uint64]*consumer.Consumer
	nextConsumerID uint64
	idleSince      time.Time

	videoSeqHeader *packet.Packet
	audioSeqHeader *packet.Packet
	metadata       *packet.Packet
	videoConfig    *packet.VideoConfig
	audioConfig    *packet.AudioConfig
	gop            *gopcache.Cache

	mix            mixQueue
	headerMissDrop uint64
}

// New creates a Source configured for its vhost: GOP cache bounds,
// edge/origin role, mix-correct, and absolute-timestamp mode.
func New(key StreamKey, cfg VhostConfig) *Source {
	return &Source{
		key:       key,
		cfg:       cfg,
		consumers: make(map[uint64]*consumer.Consumer),
		gop:       gopcache.New(cfg.GopCacheEnabled, cfg.GopCacheMaxFrames),
		idleSince: time.Now(),
	}
}

// Key returns the source's stream identity.
func (s *Source) Key() StreamKey { return s.key }

// State returns the current lifecycle state.
func (s *Source) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// CanPublish reports whether a new publisher would be admitted right now:
// false exactly while one is admitted.
func (s *Source) CanPublish() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state != StatePublishing
}

// AttachPublisher admits a publisher. Returns StreamBusy if one is
// already attached; a source never has two publishers.
func (s *Source) AttachPublisher(id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePublishing {
		return srserr.NewStreamBusy(s.key.String())
	}
	s.publisherID = id
	s.state = StatePublishing
	s.idleSince = time.Time{}
	return nil
}

// DetachPublisher clears the publisher. Latched sequence headers,
// metadata, and the GOP cache are dropped so a reconnecting publisher is
// treated as a fresh publish — except in absolute-timestamp mode, where
// the cache is retained across reconnects within the dispose window.
// Consumers that stayed attached through the gap never see a second GOP
// replay; only newly attaching ones get the new publisher's prologue.
func (s *Source) DetachPublisher() {
	s.mu.Lock()
	flushed := s.mix.flush()
	s.mu.Unlock()
	for _, p := range flushed {
		s.deliver(p)
	}

	s.mu.Lock()
	s.publisherID = 0
	if !s.cfg.ATC {
		s.videoSeqHeader = nil
		s.audioSeqHeader = nil
		s.metadata = nil
		s.videoConfig = nil
		s.audioConfig = nil
		s.gop.Clear()
	}
	if len(s.consumers) > 0 {
		s.state = StateIdleWithConsumers
	} else {
		s.state = StateIdle
		s.idleSince = time.Now()
	}
	s.mu.Unlock()
}

// IsEmpty reports whether the source has neither a publisher nor any
// consumer, making it eligible for registry eviction.
func (s *Source) IsEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateIdle
}

// IdleFor returns how long the source has been without publisher and
// consumers, or zero if it is active.
func (s *Source) IdleFor(now time.Time) time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateIdle || s.idleSince.IsZero() {
		return 0
	}
	return now.Sub(s.idleSince)
}

// fanout delivers p to every attached consumer (cloning per-destination
// since Packet ownership cannot be shared across independently-draining
// goroutines) and detaches any consumer whose PolicyDisable queue has
// overflowed.
func (s *Source) fanout(p *packet.Packet) {
	s.mu.RLock()
	dest := make([]*consumer.Consumer, 0, len(s.consumers))
	for _, c := range s.consumers {
		dest = append(dest, c)
	}
	s.mu.RUnlock()

	var slow []uint64
	for _, c := range dest {
		if !c.Enqueue(p.Clone()) {
			slow = append(slow, c.ID())
		}
	}
	packet.ReleasePacket(p)

	for _, id := range slow {
		s.DetachConsumer(id)
	}
}
