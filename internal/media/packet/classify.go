// If you are AI: this file classifies raw FLV-tag-shaped payloads into
// the Packet flags consumers and the GOP cache depend on. The constants
// follow the FLV tag header layout: codec-id and frame-type nibbles in
// the first byte, then the AVC/AAC packet-type byte.
package packet

import "github.com/srsgo/srs/internal/srserr"

// VideoCodec identifies the video codec carried in a VIDEODATA tag's
// CodecID nibble.
type VideoCodec uint8

const (
	VideoCodecUnknown        VideoCodec = 0
	VideoCodecSorensonH263   VideoCodec = 2
	VideoCodecScreenVideo    VideoCodec = 3
	VideoCodecOn2VP6         VideoCodec = 4
	VideoCodecOn2VP6Alpha    VideoCodec = 5
	VideoCodecScreenVideoV2  VideoCodec = 6
	VideoCodecAVC            VideoCodec = 7
	VideoCodecDisabled       VideoCodec = 8
	VideoCodecHEVC           VideoCodec = 12
	VideoCodecAV1            VideoCodec = 13
)

// videoFrameType is the high nibble of VIDEODATA's first byte.
type videoFrameType uint8

const (
	videoFrameKey               videoFrameType = 1
	videoFrameInter             videoFrameType = 2
	videoFrameDisposableInter   videoFrameType = 3
	videoFrameGeneratedKey      videoFrameType = 4
	videoFrameInfoCommand       videoFrameType = 5
)

// avcPacketType is VIDEODATA's second byte when CodecID is AVC or HEVC.
type avcPacketType uint8

const (
	avcPacketSequenceHeader avcPacketType = 0
	avcPacketNALU           avcPacketType = 1
	avcPacketSequenceEOF    avcPacketType = 2
)

// AudioCodec identifies the audio codec carried in an AUDIODATA tag's
// SoundFormat nibble.
type AudioCodec uint8

const (
	AudioCodecUnknown     AudioCodec = 0xFF
	AudioCodecLinearPCM   AudioCodec = 0
	AudioCodecADPCM       AudioCodec = 1
	AudioCodecMP3         AudioCodec = 2
	AudioCodecNellymoser  AudioCodec = 6
	AudioCodecG711A       AudioCodec = 7
	AudioCodecG711Mu      AudioCodec = 8
	AudioCodecAAC         AudioCodec = 10
	AudioCodecSpeex       AudioCodec = 11
	AudioCodecMP38kHz     AudioCodec = 14
	AudioCodecDisabled    AudioCodec = 17
)

// aacPacketType is AUDIODATA's second byte when SoundFormat is AAC.
type aacPacketType uint8

const (
	aacPacketSequenceHeader aacPacketType = 0
	aacPacketRaw            aacPacketType = 1
)

// ClassifyVideo inspects an FLV-style VIDEODATA payload and sets the
// packet's video classification fields. A video-info/command frame
// (frame type 5) is flagged neither keyframe nor sequence header: callers
// must drop it silently rather than feed it to decoders.
func ClassifyVideo(p *Packet) error {
	if len(p.Payload) < 1 {
		return srserr.NewDecodeError("classify_video", errShortPayload)
	}
	b0 := p.Payload[0]
	frameType := videoFrameType(b0 >> 4)
	codec := VideoCodec(b0 & 0x0F)
	p.VideoCodec = codec

	if frameType == videoFrameInfoCommand {
		return nil
	}
	p.IsVideoKeyframe = frameType == videoFrameKey || frameType == videoFrameGeneratedKey

	if codec != VideoCodecAVC && codec != VideoCodecHEVC && codec != VideoCodecAV1 {
		return nil
	}
	if len(p.Payload) < 2 {
		return srserr.NewDecodeError("classify_video", errShortPayload)
	}
	switch avcPacketType(p.Payload[1]) {
	case avcPacketSequenceHeader:
		p.IsVideoSequenceHeader = true
	case avcPacketSequenceEOF:
		p.IsVideoSequenceEOF = true
	}
	if len(p.Payload) >= 5 {
		p.CTS = uint32(p.Payload[2])<<16 | uint32(p.Payload[3])<<8 | uint32(p.Payload[4])
	}
	return nil
}

// ClassifyAudio inspects an FLV-style AUDIODATA payload and sets the
// packet's audio classification fields.
func ClassifyAudio(p *Packet) error {
	if len(p.Payload) < 1 {
		return srserr.NewDecodeError("classify_audio", errShortPayload)
	}
	b0 := p.Payload[0]
	codec := AudioCodec(b0 >> 4)
	p.AudioCodec = codec

	if codec != AudioCodecAAC {
		return nil
	}
	if len(p.Payload) < 2 {
		return srserr.NewDecodeError("classify_audio", errShortPayload)
	}
	if aacPacketType(p.Payload[1]) == aacPacketSequenceHeader {
		p.IsAudioSequenceHeader = true
	}
	return nil
}

// Classify dispatches to ClassifyVideo/ClassifyAudio by Kind; metadata
// packets carry no wire-level classification.
func Classify(p *Packet) error {
	switch p.Kind {
	case KindVideo:
		return ClassifyVideo(p)
	case KindAudio:
		return ClassifyAudio(p)
	default:
		return nil
	}
}

type classifyErr string

// Error implements the error interface.
func (e classifyErr) Error() string { return string(e) }

const errShortPayload = classifyErr("payload too short to classify")
