// If you are AI: publisher feeds one RTMP publish session's audio,
// video, and metadata messages into its Source as pooled packets.
package rtmpio

import (
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/sourcehub"
)

// publisher feeds one RTMP publish session's audio/video/metadata
// messages into a sourcehub.Source.
type publisher struct {
	source *sourcehub.Source
}

// newPublisher binds a publish session to its source.
func newPublisher(source *sourcehub.Source) *publisher {
	return &publisher{source: source}
}

// publishAudio forwards one audio message.
func (p *publisher) publishAudio(timestamp uint32, payload []byte) {
	p.publish(packet.KindAudio, timestamp, payload)
}

// publishVideo forwards one video message.
func (p *publisher) publishVideo(timestamp uint32, payload []byte) {
	p.publish(packet.KindVideo, timestamp, payload)
}

// publishMetadata forwards one script/data message.
func (p *publisher) publishMetadata(timestamp uint32, payload []byte) {
	p.publish(packet.KindMetadata, timestamp, payload)
}

// publish wraps the payload as a pooled packet and hands it to the
// source.
func (p *publisher) publish(kind packet.Kind, timestamp uint32, payload []byte) {
	pk := packet.AcquirePacket()
	pk.Kind = kind
	pk.Timestamp = timestamp
	pk.Payload = append(pk.Payload, payload...)
	// A decode/classification error is non-fatal to the session: the
	// Source already dropped the malformed frame and logs nothing here
	// to avoid per-frame log spam on a noisy client.
	_ = p.source.Publish(pk)
}

// detach flushes held packets and releases the publisher slot.
func (p *publisher) detach() {
	p.source.Flush()
	p.source.DetachPublisher()
}
