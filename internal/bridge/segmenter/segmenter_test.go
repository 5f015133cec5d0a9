package segmenter

import (
	"testing"

	"github.com/srsgo/srs/internal/media/packet"
)

// countingEncoder records config packets and emits one marker byte per
// appended packet so segment sizes are easy to assert.
type countingEncoder struct {
	configs int
}

func (e *countingEncoder) OnConfig(*packet.Packet)         { e.configs++ }
func (e *countingEncoder) Init() []byte                    { return []byte{0xFF} }
func (e *countingEncoder) Append(*packet.Packet) []byte    { return []byte{0x01} }

func video(ts uint32, key bool) *packet.Packet {
	return &packet.Packet{Kind: packet.KindVideo, Timestamp: ts, IsVideoKeyframe: key}
}

func TestSegmenterCutsOnKeyframeAfterFragmentLength(t *testing.T) {
	enc := &countingEncoder{}
	s := New(Config{FragmentMs: 1000, WindowSize: 4}, enc)

	s.push(video(0, true))
	s.push(video(500, false))
	s.push(video(900, false))
	// keyframe before the fragment boundary: no cut
	s.push(video(990, true))
	if len(s.Window()) != 0 {
		t.Fatal("no segment may finish before the fragment length elapses")
	}
	// keyframe past the boundary: cut
	s.push(video(1200, true))
	window := s.Window()
	if len(window) != 1 {
		t.Fatalf("segments = %d, want 1", len(window))
	}
	if window[0].DurationMs != 990 {
		t.Fatalf("segment duration = %d, want 990", window[0].DurationMs)
	}
	// init marker + 4 packets
	if len(window[0].Data) != 5 {
		t.Fatalf("segment bytes = %d, want init + 4 packets", len(window[0].Data))
	}
}

func TestSegmenterNeverCutsMidGOP(t *testing.T) {
	s := New(Config{FragmentMs: 100, WindowSize: 4}, &countingEncoder{})
	s.push(video(0, true))
	for ts := uint32(33); ts < 5000; ts += 33 {
		s.push(video(ts, false))
	}
	if len(s.Window()) != 0 {
		t.Fatal("a segment may only end where the next one can start on a keyframe")
	}
}

func TestSegmenterWindowSlides(t *testing.T) {
	s := New(Config{FragmentMs: 100, WindowSize: 2}, &countingEncoder{})
	for i := uint32(0); i < 5; i++ {
		s.push(video(i*200, true))
	}
	window := s.Window()
	if len(window) != 2 {
		t.Fatalf("window = %d segments, want 2", len(window))
	}
	if window[0].Seq != 2 || window[1].Seq != 3 {
		t.Fatalf("window seqs = %d,%d, want 2,3", window[0].Seq, window[1].Seq)
	}
	if s.MediaSequence() != 2 {
		t.Fatalf("media sequence = %d, want 2", s.MediaSequence())
	}
}

func TestSegmenterRoutesConfigPacketsToEncoder(t *testing.T) {
	enc := &countingEncoder{}
	s := New(Config{FragmentMs: 100, WindowSize: 2}, enc)
	s.push(&packet.Packet{Kind: packet.KindVideo, IsVideoSequenceHeader: true, IsVideoKeyframe: true})
	s.push(&packet.Packet{Kind: packet.KindMetadata})
	if enc.configs != 2 {
		t.Fatalf("configs = %d, want 2", enc.configs)
	}
	if len(s.Window()) != 0 {
		t.Fatal("config packets must not open a segment")
	}
}
