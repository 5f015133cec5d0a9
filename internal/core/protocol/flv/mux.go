// If you are AI: This file provides FLV muxing helpers for converting a
// sourcehub-delivered packet.Packet to FLV tags, so the same output
// bridger logic (internal/bridge) can drive HTTP-FLV and WebSocket-FLV
// clients. Muxing preserves original payloads without transcoding.

package flv

import (
	"github.com/srsgo/srs/internal/media/packet"
)

// MuxAudio converts an audio packet to an FLV audio tag.
// The payload is used directly without modification.
// Allocation: Creates tag structure, reuses payload slice.
func MuxAudio(p *packet.Packet) *Tag {
	if p == nil || p.Kind != packet.KindAudio {
		return nil
	}
	return NewTag(TagTypeAudio, p.Timestamp, p.Payload)
}

// MuxVideo converts a video packet to an FLV video tag.
// The payload is used directly without modification.
// Allocation: Creates tag structure, reuses payload slice.
func MuxVideo(p *packet.Packet) *Tag {
	if p == nil || p.Kind != packet.KindVideo {
		return nil
	}
	return NewTag(TagTypeVideo, p.Timestamp, p.Payload)
}

// MuxScript converts a metadata packet to an FLV script tag.
// The payload is used directly without modification.
// Allocation: Creates tag structure, reuses payload slice.
func MuxScript(p *packet.Packet) *Tag {
	if p == nil || p.Kind != packet.KindMetadata {
		return nil
	}
	return NewTag(TagTypeScript, p.Timestamp, p.Payload)
}

// MuxPacket converts a packet to an FLV tag based on its kind. Returns nil
// if the kind is not supported.
func MuxPacket(p *packet.Packet) *Tag {
	if p == nil {
		return nil
	}

	switch p.Kind {
	case packet.KindAudio:
		return MuxAudio(p)
	case packet.KindVideo:
		return MuxVideo(p)
	case packet.KindMetadata:
		return MuxScript(p)
	default:
		return nil
	}
}
