// If you are AI: the output (play) direction of the RTMP<->WebRTC
// bridger. Attaches as a bridge.OutputBridger consumer exactly like
// internal/bridge/httpflv and internal/bridge/wsflv do, but instead of
// muxing FLV tags it repackages video access units as Annex-B samples on
// a pion TrackLocalStaticSample, letting pion's own RTP packetizer
// handle the wire format.
package webrtc

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pion/rtcp"
	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media"

	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
	"github.com/srsgo/srs/internal/sourcehub"
)

const drainBatch = 64

// OutputBridger streams one Source's video as WebRTC RTP to a single
// negotiated PeerConnection. Audio is not forwarded: Opus<->AAC
// transcoding belongs to an external transcoder, and RTMP sources carry
// AAC, not Opus, so there is nothing to relay losslessly without it.
type OutputBridger struct {
	pc          *webrtc.PeerConnection
	sender      *webrtc.RTPSender
	videoTrack  *webrtc.TrackLocalStaticSample
	dropBFrames bool
	logger      *slog.Logger

	sps, pps []byte
	lastTsMs uint32
	haveLast bool

	// Set by the RTCP reader on PLI; the send path then skips frames
	// until the next keyframe so the decoder recovers quickly.
	awaitKeyframe atomic.Bool
}

// NewOutputBridger adds a send-only video transceiver to pc and returns
// a bridger ready to Run against a Source. dropBFrames configures
// whether non-reference NALUs (nal_ref_idc==0) are dropped before
// sending, trading smoothness for latency.
func NewOutputBridger(pc *webrtc.PeerConnection, dropBFrames bool, logger *slog.Logger) (*OutputBridger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	track, err := webrtc.NewTrackLocalStaticSample(webrtc.RTPCodecCapability{
		MimeType:    webrtc.MimeTypeH264,
		ClockRate:   90000,
		SDPFmtpLine: "level-asymmetry-allowed=1;packetization-mode=1;profile-level-id=42e01f",
	}, "video", "srs")
	if err != nil {
		return nil, err
	}
	sender, err := pc.AddTrack(track)
	if err != nil {
		return nil, err
	}
	return &OutputBridger{pc: pc, sender: sender, videoTrack: track, dropBFrames: dropBFrames, logger: logger}, nil
}

// readRTCP watches the subscriber's feedback stream for picture-loss
// indications.
func (b *OutputBridger) readRTCP() {
	buf := make([]byte, 1500)
	for {
		n, _, err := b.sender.Read(buf)
		if err != nil {
			return
		}
		pkts, err := rtcp.Unmarshal(buf[:n])
		if err != nil {
			continue
		}
		for _, p := range pkts {
			if _, ok := p.(*rtcp.PictureLossIndication); ok {
				b.awaitKeyframe.Store(true)
			}
		}
	}
}

// Run attaches as a consumer and forwards video access units until ctx is
// cancelled or the PeerConnection's track write fails.
func (b *OutputBridger) Run(ctx context.Context, source *sourcehub.Source) error {
	cons := source.NewConsumer(1000, 0, queue.PolicyDropVideoNonGOP, consumer.JitterFull)
	defer source.DetachConsumer(cons.ID())

	go b.readRTCP()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var writeErr error
		n := cons.Drain(drainBatch, func(p *packet.Packet) {
			if writeErr != nil || p.Kind != packet.KindVideo {
				return
			}
			if err := b.forwardVideo(p); err != nil {
				writeErr = err
			}
		})
		if writeErr != nil {
			return writeErr
		}
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// forwardVideo repackages one video packet as an Annex-B sample,
// prepending SPS/PPS on keyframes.
func (b *OutputBridger) forwardVideo(p *packet.Packet) error {
	if len(p.Payload) < 5 {
		return nil
	}
	if p.IsVideoSequenceHeader {
		if sps, pps, ok := parseAVCDecoderConfigurationRecord(p.Payload[5:]); ok {
			b.sps, b.pps = sps, pps
		}
		return nil
	}
	if p.IsVideoSequenceEOF {
		return nil
	}

	if b.awaitKeyframe.Load() {
		if !p.IsVideoKeyframe {
			return nil
		}
		b.awaitKeyframe.Store(false)
	}

	nalus := splitAVCC(p.Payload[5:])
	if b.dropBFrames {
		filtered := nalus[:0:0]
		for _, n := range nalus {
			if isReferenceNALU(n) || nalUnitType(n) == nalTypeIDR {
				filtered = append(filtered, n)
			}
		}
		nalus = filtered
	}
	if len(nalus) == 0 {
		return nil
	}

	if p.IsVideoKeyframe && b.sps != nil && b.pps != nil {
		withParams := make([][]byte, 0, len(nalus)+2)
		withParams = append(withParams, b.sps, b.pps)
		withParams = append(withParams, nalus...)
		nalus = withParams
	}

	var buf []byte
	for _, n := range nalus {
		buf = append(buf, 0, 0, 0, 1)
		buf = append(buf, n...)
	}

	dur := 33 * time.Millisecond
	if b.haveLast {
		if d := p.Timestamp - b.lastTsMs; d > 0 && d < 1000 {
			dur = time.Duration(d) * time.Millisecond
		}
	}
	b.lastTsMs = p.Timestamp
	b.haveLast = true

	return b.videoTrack.WriteSample(media.Sample{Data: buf, Duration: dur})
}

// Close tears down the PeerConnection.
func (b *OutputBridger) Close() error {
	return b.pc.Close()
}
