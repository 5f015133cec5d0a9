package packet

import "testing"

func TestParseAudioConfigAAC(t *testing.T) {
	// AAC-LC, 44100 Hz, stereo: sound header 0xAF, packet type 0, ASC 0x12 0x10.
	cfg, err := ParseAudioConfig([]byte{0xAF, 0x00, 0x12, 0x10})
	if err != nil {
		t.Fatalf("ParseAudioConfig: %v", err)
	}
	if cfg.Codec != AudioCodecAAC {
		t.Fatalf("codec = %d", cfg.Codec)
	}
	if cfg.SampleRate != 44100 || cfg.Channels != 2 {
		t.Fatalf("rate/channels = %d/%d, want 44100/2", cfg.SampleRate, cfg.Channels)
	}
	if len(cfg.Extra) != 2 {
		t.Fatalf("extra = % x", cfg.Extra)
	}
}

func TestParseAudioConfigNonAAC(t *testing.T) {
	cfg, err := ParseAudioConfig([]byte{0x2F})
	if err != nil {
		t.Fatalf("ParseAudioConfig: %v", err)
	}
	if cfg.Codec != AudioCodecMP3 || cfg.Extra != nil {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestParseVideoConfigAVC(t *testing.T) {
	record := []byte{
		0x01, 0x64, 0x00, 0x1F, 0xFF, // version, profile, compat, level, lengthSize
		0xE1, 0x00, 0x04, 0x67, 0x64, 0x00, 0x1F, // 1 SPS, len 4
		0x01, 0x00, 0x04, 0x68, 0xEE, 0x3C, 0x80, // 1 PPS, len 4
	}
	payload := append([]byte{0x17, 0x00, 0x00, 0x00, 0x00}, record...)

	cfg, err := ParseVideoConfig(payload)
	if err != nil {
		t.Fatalf("ParseVideoConfig: %v", err)
	}
	if cfg.Codec != VideoCodecAVC || cfg.Profile != 0x64 || cfg.Level != 0x1F {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.SPS) != 1 || len(cfg.PPS) != 1 {
		t.Fatalf("SPS/PPS counts = %d/%d", len(cfg.SPS), len(cfg.PPS))
	}
	if cfg.SPS[0][0] != 0x67 || cfg.PPS[0][0] != 0x68 {
		t.Fatalf("SPS/PPS heads = %x/%x", cfg.SPS[0][0], cfg.PPS[0][0])
	}
}

func TestParseVideoConfigTruncatedRecord(t *testing.T) {
	if _, err := ParseVideoConfig([]byte{0x17, 0x00, 0x00, 0x00, 0x00, 0x01}); err == nil {
		t.Fatal("expected error for truncated record")
	}
}
