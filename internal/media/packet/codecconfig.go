// If you are AI: parsed codec configuration, carried once per publisher
// rather than per packet. Sequence headers are both packets and config:
// on arrival the source re-parses them with these helpers and latches
// the result next to the raw bytes. Parsing is best-effort — a failure
// never rejects the packet, since real encoders emit imperfect headers.
package packet

// AudioConfig is the decoded audio codec configuration, parsed from an
// audio sequence header (for AAC, the AudioSpecificConfig).
type AudioConfig struct {
	Codec      AudioCodec
	SampleRate int
	Channels   int
	Extra      []byte // raw codec-specific bytes (AAC ASC)
}

// VideoConfig is the decoded video codec configuration, parsed from a
// video sequence header (for AVC, the AVCDecoderConfigurationRecord).
type VideoConfig struct {
	Codec   VideoCodec
	Profile uint8
	Level   uint8
	Extra   []byte // raw config record bytes
	SPS     [][]byte
	PPS     [][]byte
}

var aacSampleRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000, 24000, 22050,
	16000, 12000, 11025, 8000, 7350, 0, 0, 0,
}

// ParseAudioConfig decodes an audio sequence-header payload. Only AAC
// carries a config record; other codecs yield just the codec id.
func ParseAudioConfig(payload []byte) (*AudioConfig, error) {
	if len(payload) < 1 {
		return nil, errShortPayload
	}
	cfg := &AudioConfig{Codec: AudioCodec(payload[0] >> 4)}
	if cfg.Codec != AudioCodecAAC {
		return cfg, nil
	}
	if len(payload) < 4 {
		return cfg, errShortPayload
	}
	asc := payload[2:]
	cfg.Extra = append([]byte(nil), asc...)
	// AudioSpecificConfig: 5 bits object type, 4 bits frequency index,
	// 4 bits channel configuration.
	freqIndex := (asc[0]&0x07)<<1 | asc[1]>>7
	cfg.SampleRate = aacSampleRates[freqIndex&0x0F]
	cfg.Channels = int((asc[1] >> 3) & 0x0F)
	return cfg, nil
}

// ParseVideoConfig decodes a video sequence-header payload. Only the
// AVC record layout is parsed in full; HEVC/AV1 keep the raw bytes.
func ParseVideoConfig(payload []byte) (*VideoConfig, error) {
	if len(payload) < 5 {
		return nil, errShortPayload
	}
	cfg := &VideoConfig{Codec: VideoCodec(payload[0] & 0x0F)}
	record := payload[5:]
	cfg.Extra = append([]byte(nil), record...)
	if cfg.Codec != VideoCodecAVC {
		return cfg, nil
	}
	if len(record) < 6 {
		return cfg, errShortPayload
	}
	cfg.Profile = record[1]
	cfg.Level = record[3]

	// SPS list: 5 bits count, then length-prefixed sets; PPS list follows.
	pos := 5
	numSPS := int(record[pos] & 0x1F)
	pos++
	for i := 0; i < numSPS; i++ {
		if pos+2 > len(record) {
			return cfg, errShortPayload
		}
		n := int(record[pos])<<8 | int(record[pos+1])
		pos += 2
		if pos+n > len(record) {
			return cfg, errShortPayload
		}
		cfg.SPS = append(cfg.SPS, append([]byte(nil), record[pos:pos+n]...))
		pos += n
	}
	if pos >= len(record) {
		return cfg, errShortPayload
	}
	numPPS := int(record[pos])
	pos++
	for i := 0; i < numPPS; i++ {
		if pos+2 > len(record) {
			return cfg, errShortPayload
		}
		n := int(record[pos])<<8 | int(record[pos+1])
		pos += 2
		if pos+n > len(record) {
			return cfg, errShortPayload
		}
		cfg.PPS = append(cfg.PPS, append([]byte(nil), record[pos:pos+n]...))
		pos += n
	}
	return cfg, nil
}
