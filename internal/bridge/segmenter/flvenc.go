// If you are AI: FLVEncoder packages segments as self-contained FLV
// fragments: file header, latched metadata and sequence headers, then
// one tag per media packet. Real TS/fMP4 packaging belongs to an
// external muxer collaborator; this encoder keeps the segment pipeline
// exercised end to end with the container the rest of the repo already
// muxes.
package segmenter

import (
	"github.com/srsgo/srs/internal/core/protocol/flv"
	"github.com/srsgo/srs/internal/media/packet"
)

// FLVEncoder is the default segment Encoder.
type FLVEncoder struct {
	meta     *packet.Packet
	audioSH  *packet.Packet
	videoSH  *packet.Packet
}

// NewFLVEncoder creates an encoder with nothing latched yet.
func NewFLVEncoder() *FLVEncoder { return &FLVEncoder{} }

// OnConfig latches the newest metadata and sequence headers for replay
// at every segment start.
func (e *FLVEncoder) OnConfig(p *packet.Packet) {
	switch {
	case p.IsVideoSequenceHeader:
		e.videoSH = p.Clone()
	case p.IsAudioSequenceHeader:
		e.audioSH = p.Clone()
	case p.Kind == packet.KindMetadata:
		e.meta = p.Clone()
	}
}

// Init emits the FLV file header, a zero previous-tag-size, and the
// latched config tags.
func (e *FLVEncoder) Init() []byte {
	out := append([]byte(nil), flv.NewHeader(true, true).Bytes()...)
	out = append(out, 0, 0, 0, 0)
	for _, p := range []*packet.Packet{e.meta, e.videoSH, e.audioSH} {
		if p == nil {
			continue
		}
		if tag := flv.MuxPacket(p); tag != nil {
			out = append(out, tag.Bytes()...)
		}
	}
	return out
}

// Append encodes one media packet as an FLV tag.
func (e *FLVEncoder) Append(p *packet.Packet) []byte {
	tag := flv.MuxPacket(p)
	if tag == nil {
		return nil
	}
	return tag.Bytes()
}
