package gopcache

import (
	"testing"

	"github.com/srsgo/srs/internal/media/packet"
)

func TestAppendStartsNewGOPOnKeyframe(t *testing.T) {
	c := New(true, 0)
	c.Append(&packet.Packet{Kind: packet.KindVideo, IsVideoKeyframe: true, Payload: []byte{1}})
	c.Append(&packet.Packet{Kind: packet.KindVideo, Payload: []byte{2}})
	if c.Len() != 2 {
		t.Fatalf("len = %d, want 2", c.Len())
	}
	c.Append(&packet.Packet{Kind: packet.KindVideo, IsVideoKeyframe: true, Payload: []byte{3}})
	if c.Len() != 1 {
		t.Fatalf("new keyframe should reset the GOP: len = %d, want 1", c.Len())
	}
}

func TestAppendSkipsSequenceHeadersAndMetadata(t *testing.T) {
	c := New(true, 0)
	c.Append(&packet.Packet{Kind: packet.KindVideo, IsVideoSequenceHeader: true})
	c.Append(&packet.Packet{Kind: packet.KindAudio, IsAudioSequenceHeader: true})
	c.Append(&packet.Packet{Kind: packet.KindMetadata})
	if c.Len() != 0 {
		t.Fatalf("sequence headers/metadata must not enter the GOP cache: len = %d", c.Len())
	}
}

func TestAppendDisabledIsNoOp(t *testing.T) {
	c := New(false, 0)
	c.Append(&packet.Packet{Kind: packet.KindVideo, IsVideoKeyframe: true})
	if c.Len() != 0 {
		t.Fatal("disabled cache must stay empty")
	}
}

func TestAppendRejectsDeltaFrameOnEmptyCache(t *testing.T) {
	c := New(true, 0)
	c.Append(&packet.Packet{Kind: packet.KindVideo}) // delta frame, nothing to decode from
	if c.Len() != 0 {
		t.Fatalf("a non-keyframe must not seed an empty cache: len = %d", c.Len())
	}
	c.Append(&packet.Packet{Kind: packet.KindVideo, IsVideoKeyframe: true})
	c.Append(&packet.Packet{Kind: packet.KindVideo})
	if c.Len() != 2 {
		t.Fatalf("delta frames append once a keyframe is the base: len = %d", c.Len())
	}
}

func TestAppendAudioOnlyKeepsRecentWindow(t *testing.T) {
	c := New(true, 0)
	for ts := uint32(0); ts <= 3*audioOnlyWindowMs; ts += 20 {
		c.Append(&packet.Packet{Kind: packet.KindAudio, Timestamp: ts})
	}
	frames := c.Frames()
	if len(frames) == 0 {
		t.Fatal("audio must seed and stay in the cache")
	}
	newest := frames[len(frames)-1].Timestamp
	if span := newest - frames[0].Timestamp; span > audioOnlyWindowMs {
		t.Fatalf("audio-only cache span = %dms, want <= %dms", span, audioOnlyWindowMs)
	}
}

func TestAppendMaxFramesDropsWholeGOP(t *testing.T) {
	c := New(true, 2)
	c.Append(&packet.Packet{Kind: packet.KindVideo, IsVideoKeyframe: true})
	c.Append(&packet.Packet{Kind: packet.KindVideo})
	c.Append(&packet.Packet{Kind: packet.KindVideo}) // exceeds cap, clears
	if c.Len() != 0 {
		t.Fatalf("exceeding maxFrames before next keyframe should clear the GOP: len = %d", c.Len())
	}
}
