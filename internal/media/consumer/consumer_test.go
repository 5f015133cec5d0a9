package consumer

import (
	"testing"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
)

func TestDrainAppliesJitterOffPassThrough(t *testing.T) {
	c := New(1, 100, 0, queue.PolicyDropAudio, JitterOff)
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 12345})
	var got uint32
	c.Drain(1, func(p *packet.Packet) { got = p.Timestamp; packet.ReleasePacket(p) })
	if got != 12345 {
		t.Fatalf("JitterOff must pass timestamps through unchanged, got %d", got)
	}
}

func TestDrainJitterZeroForcesConstantStep(t *testing.T) {
	c := New(1, 100, 0, queue.PolicyDropAudio, JitterZero)
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 0})
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 9000})
	var outs []uint32
	c.Drain(2, func(p *packet.Packet) { outs = append(outs, p.Timestamp); packet.ReleasePacket(p) })
	if len(outs) != 2 || outs[1]-outs[0] != defaultFrameMs {
		t.Fatalf("JitterZero must step by a constant %dms, got %v", defaultFrameMs, outs)
	}
}

func TestDrainJitterFullClampsLargeJump(t *testing.T) {
	c := New(1, 100, 0, queue.PolicyDropAudio, JitterFull)
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 0})
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 100000}) // huge encoder clock jump
	var outs []uint32
	c.Drain(2, func(p *packet.Packet) { outs = append(outs, p.Timestamp); packet.ReleasePacket(p) })
	if outs[1]-outs[0] != defaultFrameMs {
		t.Fatalf("JitterFull must clamp an out-of-range delta to the nominal frame step, got delta=%d", outs[1]-outs[0])
	}
}

func TestPauseBuffersWithoutDelivering(t *testing.T) {
	c := New(1, 100, 0, queue.PolicyDropAudio, JitterOff)
	c.Pause()
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 1})
	if c.QueueLen() != 1 {
		t.Fatalf("paused consumer must keep receiving into its queue, len = %d", c.QueueLen())
	}
	if n := c.Drain(10, func(p *packet.Packet) { packet.ReleasePacket(p) }); n != 0 {
		t.Fatalf("paused consumer must not deliver, drained %d", n)
	}

	c.Resume()
	var got []uint32
	c.Enqueue(&packet.Packet{Kind: packet.KindVideo, Timestamp: 2})
	c.Drain(10, func(p *packet.Packet) { got = append(got, p.Timestamp); packet.ReleasePacket(p) })
	if len(got) != 2 {
		t.Fatalf("resume must deliver the buffered backlog too, got %v", got)
	}
}

func TestPausedQueueStillAppliesDropPolicy(t *testing.T) {
	c := New(1, 2, 0, queue.PolicyDropAudio, JitterOff)
	c.Pause()
	for ts := uint32(1); ts <= 4; ts++ {
		c.Enqueue(&packet.Packet{Kind: packet.KindAudio, Timestamp: ts})
	}
	if c.QueueLen() != 2 {
		t.Fatalf("drop policy must bound a paused queue, len = %d", c.QueueLen())
	}
	if c.Dropped() != 2 {
		t.Fatalf("dropped = %d, want 2", c.Dropped())
	}
}
