// If you are AI: the consumer-facing half of Source: attach with
// selectable prologue replay, detach with edge-pull teardown, and the
// fan-out that clones one packet into every attached queue.
package sourcehub

import (
	"time"

	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/queue"
)

// NewConsumer allocates a consumer ID, builds a Consumer with the given
// queue bounds/policy and jitter algorithm, attaches it with the full
// prologue, and returns it.
func (s *Source) NewConsumer(maxCount int, maxSpanMs uint32, policy queue.Policy, algo consumer.JitterAlgorithm) *consumer.Consumer {
	s.mu.Lock()
	s.nextConsumerID++
	id := s.nextConsumerID
	s.mu.Unlock()
	cons := consumer.New(id, maxCount, maxSpanMs, policy, algo)
	s.AttachConsumer(cons)
	return cons
}

// AttachConsumer registers cons and replays the full prologue: sequence
// headers, metadata, then the cached GOP.
func (s *Source) AttachConsumer(cons *consumer.Consumer) {
	s.AttachConsumerDumps(cons, true, true, true)
}

// AttachConsumerDumps registers cons, replaying only the selected parts
// of the prologue. Order on replay: video sequence header, audio
// sequence header, metadata, then GOP frames — so headers always precede
// any frame that depends on them.
func (s *Source) AttachConsumerDumps(cons *consumer.Consumer, withSH, withMeta, withGop bool) {
	s.mu.Lock()
	if withSH {
		if s.videoSeqHeader != nil {
			cons.Enqueue(s.videoSeqHeader.Clone())
		}
		if s.audioSeqHeader != nil {
			cons.Enqueue(s.audioSeqHeader.Clone())
		}
	}
	if withMeta && s.metadata != nil {
		cons.Enqueue(s.metadata.Clone())
	}
	if withGop {
		for _, f := range s.gop.Frames() {
			cons.Enqueue(f.Clone())
		}
	}
	s.consumers[cons.ID()] = cons
	if s.state == StateIdle {
		s.state = StateIdleWithConsumers
		s.idleSince = time.Time{}
	}
	needsPull := s.cfg.IsEdge && s.cfg.Puller != nil && s.publisherID == 0 && len(s.consumers) == 1
	s.mu.Unlock()

	if needsPull {
		go s.cfg.Puller.PullStream(s.key)
	}
}

// DetachConsumer removes a consumer, e.g. on disconnect or SlowConsumer.
func (s *Source) DetachConsumer(id uint64) {
	s.mu.Lock()
	delete(s.consumers, id)
	lastGone := len(s.consumers) == 0
	if s.state == StateIdleWithConsumers && lastGone {
		s.state = StateIdle
		s.idleSince = time.Now()
	}
	stopPull := s.cfg.IsEdge && s.cfg.Puller != nil && lastGone
	s.mu.Unlock()

	if stopPull {
		s.cfg.Puller.StopPull(s.key)
	}
}

// ConsumerCount returns the number of attached consumers.
func (s *Source) ConsumerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.consumers)
}
