// If you are AI: the input (ingest) direction of the RTMP<->WebRTC
// bridger. Depacketizes incoming H264 RTP into access units using pion's
// own samplebuilder/codecs tooling — NALU reassembly across RTP
// boundaries and video jitter buffering are exactly what
// pkg/media/samplebuilder plus codecs.H264Packet provide, so no
// hand-rolled reorder buffer — then republishes each access unit as an
// FLV-shaped packet.Packet the way internal/bridge/rtmpio's publisher
// does.
package webrtc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pion/rtp/codecs"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/samplebuilder"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/sourcehub"
)

// maxLateRTPPackets bounds the samplebuilder's internal reorder window:
// packets arriving more than this many sequence numbers late are given up
// on rather than held indefinitely.
const maxLateRTPPackets = 50

var errNoIncomingTrack = errors.New("webrtc: no incoming video track within negotiation window")

// InputBridger admits an incoming WebRTC H264 video track as the
// source's publisher, under the same admission rules as any other
// publisher.
type InputBridger struct {
	pc          *webrtc.PeerConnection
	dropBFrames bool
	logger      *slog.Logger

	trackCh chan *webrtc.TrackRemote

	haveParams bool
	sps, pps   []byte
	clockMs    time.Duration
}

// NewInputBridger wires pc's OnTrack callback to capture the first video
// track it receives; callers must call this before completing SDP
// negotiation so the callback is armed in time.
func NewInputBridger(pc *webrtc.PeerConnection, dropBFrames bool, logger *slog.Logger) *InputBridger {
	if logger == nil {
		logger = slog.Default()
	}
	b := &InputBridger{pc: pc, dropBFrames: dropBFrames, logger: logger, trackCh: make(chan *webrtc.TrackRemote, 1)}
	pc.OnTrack(func(tr *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if tr.Kind() != webrtc.RTPCodecTypeVideo {
			return
		}
		select {
		case b.trackCh <- tr:
		default:
		}
	})
	return b
}

// Run waits for the negotiated video track, then depacketizes and
// publishes its access units onto source until ctx is cancelled, the
// track ends, or the PeerConnection closes.
func (b *InputBridger) Run(ctx context.Context, source *sourcehub.Source) error {
	var track *webrtc.TrackRemote
	select {
	case track = <-b.trackCh:
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(30 * time.Second):
		return errNoIncomingTrack
	}

	if err := source.AttachPublisher(1); err != nil {
		return err
	}
	defer source.DetachPublisher()

	sb := samplebuilder.New(maxLateRTPPackets, &codecs.H264Packet{}, track.Codec().ClockRate)

	go func() {
		<-ctx.Done()
		_ = b.pc.Close()
	}()

	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			return nil
		}
		sb.Push(pkt)
		for {
			sample := sb.Pop()
			if sample == nil {
				break
			}
			b.clockMs += sample.Duration
			b.publishAccessUnit(source, sample.Data)
		}
	}
}

// publishAccessUnit splits one depacketized access unit into parameter
// sets and slices and republishes them.
func (b *InputBridger) publishAccessUnit(source *sourcehub.Source, annexB []byte) {
	nalus := splitAnnexB(annexB)
	if len(nalus) == 0 {
		return
	}
	if b.dropBFrames {
		filtered := nalus[:0:0]
		for _, n := range nalus {
			if isReferenceNALU(n) || nalUnitType(n) == nalTypeIDR {
				filtered = append(filtered, n)
			}
		}
		nalus = filtered
	}

	sps, pps, rest := extractParameterSets(nalus)
	if len(sps) > 0 && len(pps) > 0 && (string(sps[0]) != string(b.sps) || string(pps[0]) != string(b.pps) || !b.haveParams) {
		b.sps, b.pps = sps[0], pps[0]
		b.haveParams = true
		b.publishPacket(source, packet.KindVideo, buildVideoSequenceHeaderPayload(b.sps, b.pps))
	}
	if len(rest) == 0 {
		return
	}
	b.publishPacket(source, packet.KindVideo, buildVideoNALUPayload(rest, isKeyframeNALUs(rest)))
}

// publishPacket wraps payload as a pooled packet on the running clock.
func (b *InputBridger) publishPacket(source *sourcehub.Source, kind packet.Kind, payload []byte) {
	pk := packet.AcquirePacket()
	pk.Kind = kind
	pk.Timestamp = uint32(b.clockMs / time.Millisecond)
	pk.Payload = append(pk.Payload, payload...)
	_ = source.Publish(pk)
}

// Close tears down the PeerConnection.
func (b *InputBridger) Close() error {
	return b.pc.Close()
}
