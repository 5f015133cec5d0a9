// If you are AI: the shared segment-cutting stage behind the HLS and
// DASH output bridgers. It attaches to a Source as a consumer, groups
// the stream into keyframe-aligned fragments of at least the configured
// duration, and keeps a sliding window of finished segments in memory
// for the playlist handlers to serve. The byte format inside a segment
// is delegated to an Encoder so the packaging container stays pluggable.
package segmenter

import (
	"context"
	"sync"
	"time"

	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
	"github.com/srsgo/srs/internal/sourcehub"
)

const drainBatch = 64

// Encoder turns packets into segment bytes. OnConfig latches sequence
// headers and metadata; Init is emitted at the head of every segment
// (container header plus latched config) so each one is independently
// playable; Append returns the encoding of one media packet.
type Encoder interface {
	OnConfig(p *packet.Packet)
	Init() []byte
	Append(p *packet.Packet) []byte
}

// Segment is one finished keyframe-aligned fragment.
type Segment struct {
	Seq        uint64
	DurationMs uint32
	Data       []byte
}

// Config bounds the segmenter's cutting and retention behavior.
type Config struct {
	FragmentMs uint32 // minimum media time per segment before a keyframe may cut
	WindowSize int    // finished segments retained for playback
}

// Segmenter cuts one source's stream into segments. Safe for one writer
// (its Run goroutine) and many readers (playlist/segment handlers).
type Segmenter struct {
	cfg Config
	enc Encoder

	mu       sync.RWMutex
	segments []Segment
	nextSeq  uint64

	cur      []byte
	curStart uint32
	curLast  uint32
	curOpen  bool
}

// New builds an empty segmenter, applying config defaults.
func New(cfg Config, enc Encoder) *Segmenter {
	if cfg.FragmentMs == 0 {
		cfg.FragmentMs = 10000
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 6
	}
	return &Segmenter{cfg: cfg, enc: enc}
}

// Run attaches to source and segments its stream until ctx is cancelled
// or the source stops publishing.
func (s *Segmenter) Run(ctx context.Context, source *sourcehub.Source) error {
	// Segment boundaries and EXTINF durations follow the publisher's own
	// timeline, so no jitter rewrite here.
	cons := source.NewConsumer(4096, 0, queue.PolicyDropVideoNonGOP, consumer.JitterOff)
	defer source.DetachConsumer(cons.ID())

	for {
		select {
		case <-ctx.Done():
			s.finishSegment()
			return ctx.Err()
		default:
		}

		n := cons.Drain(drainBatch, func(p *packet.Packet) {
			s.push(p)
			packet.ReleasePacket(p)
		})
		if n == 0 {
			if source.State() != sourcehub.StatePublishing {
				s.finishSegment()
				return nil
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// push appends one packet, cutting a segment boundary when a video
// keyframe arrives and the open segment has reached the fragment length.
func (s *Segmenter) push(p *packet.Packet) {
	if p.IsSequenceHeader() || p.Kind == packet.KindMetadata {
		// Config packets live in every segment's init, not the timeline.
		s.enc.OnConfig(p)
		return
	}

	cut := p.Kind == packet.KindVideo && p.IsVideoKeyframe &&
		s.curOpen && p.Timestamp-s.curStart >= s.cfg.FragmentMs
	if cut {
		s.finishSegment()
	}

	if !s.curOpen {
		s.cur = append([]byte(nil), s.enc.Init()...)
		s.curStart = p.Timestamp
		s.curOpen = true
	}
	s.cur = append(s.cur, s.enc.Append(p)...)
	s.curLast = p.Timestamp
}

// finishSegment seals the open segment into the window.
func (s *Segmenter) finishSegment() {
	if !s.curOpen || len(s.cur) == 0 {
		return
	}
	seg := Segment{
		Seq:        s.nextSeq,
		DurationMs: s.curLast - s.curStart,
		Data:       s.cur,
	}
	s.nextSeq++
	s.cur = nil
	s.curOpen = false

	s.mu.Lock()
	s.segments = append(s.segments, seg)
	if len(s.segments) > s.cfg.WindowSize {
		s.segments = s.segments[len(s.segments)-s.cfg.WindowSize:]
	}
	s.mu.Unlock()
}

// Window returns the finished segments currently retained, oldest first.
func (s *Segmenter) Window() []Segment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Segment(nil), s.segments...)
}

// Segment returns the retained segment with the given sequence number.
func (s *Segmenter) Segment(seq uint64) (Segment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, seg := range s.segments {
		if seg.Seq == seq {
			return seg, true
		}
	}
	return Segment{}, false
}

// MediaSequence returns the sequence number of the oldest retained
// segment, the playlist's EXT-X-MEDIA-SEQUENCE value.
func (s *Segmenter) MediaSequence() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.segments) == 0 {
		return 0
	}
	return s.segments[0].Seq
}

// TargetDurationMs returns the longest retained segment duration, never
// less than the configured fragment length, for the playlist's
// EXT-X-TARGETDURATION.
func (s *Segmenter) TargetDurationMs() uint32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := s.cfg.FragmentMs
	for _, seg := range s.segments {
		if seg.DurationMs > max {
			max = seg.DurationMs
		}
	}
	return max
}
