// If you are AI: the publish-side pipeline of Source: classification,
// the header-missing gate, sequence-header/metadata latching ahead of
// the mix-correct stage, and final delivery into the GOP cache and the
// consumer fan-out.
package sourcehub

import (
	"log/slog"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/srserr"
)

// Publish delivers one packet from the publisher. The packet is
// classified, then either fanned out immediately or routed through the
// mix-correct reorder stage, which holds audio and video briefly in
// per-type FIFOs and drains them in strict DTS order, audio first when
// timestamps tie.
func (s *Source) Publish(p *packet.Packet) error {
	if err := packet.Classify(p); err != nil {
		// A malformed frame latches nothing and is not fanned out, but is
		// not fatal to the source: drop it and keep the session alive,
		// since real encoders emit the occasional bad frame.
		packet.ReleasePacket(p)
		return err
	}

	// Latch sequence headers and metadata before the mix stage so the
	// header-missing check and the prologue replay never trail packets
	// still held in the reorder FIFOs.
	s.mu.Lock()
	err := s.checkHeaderLatchedLocked(p)
	if err == nil {
		s.latchLocked(p)
	}
	s.mu.Unlock()
	if err != nil {
		packet.ReleasePacket(p)
		return err
	}

	if !s.cfg.MixCorrect || p.Kind == packet.KindMetadata {
		s.deliver(p)
		return nil
	}

	s.mu.Lock()
	s.mix.push(p)
	ready := s.mix.popReady()
	s.mu.Unlock()

	for _, q := range ready {
		s.deliver(q)
	}
	return nil
}

// Flush drains the mix-correct stage, called when the publisher session
// ends so held packets are not lost.
func (s *Source) Flush() {
	s.mu.Lock()
	flushed := s.mix.flush()
	s.mu.Unlock()

	for _, p := range flushed {
		s.deliver(p)
	}
}

// headerMissLogEvery rate-limits the warning for frames arriving before
// their codec config: the first drop logs, then every 200th.
const headerMissLogEvery = 200

// checkHeaderLatchedLocked rejects a frame whose codec config has not
// been latched yet: an AVC/HEVC/AV1 slice before the video sequence
// header, or an AAC raw frame before the AudioSpecificConfig. Such
// frames are undecodable for every consumer, so they are dropped with a
// rate-limited warning instead of fanned out. Must be called with mu
// held.
func (s *Source) checkHeaderLatchedLocked(p *packet.Packet) error {
	var missing string
	switch p.Kind {
	case packet.KindVideo:
		needsConfig := p.VideoCodec == packet.VideoCodecAVC ||
			p.VideoCodec == packet.VideoCodecHEVC || p.VideoCodec == packet.VideoCodecAV1
		if needsConfig && !p.IsVideoSequenceHeader && !p.IsVideoSequenceEOF && s.videoSeqHeader == nil {
			missing = "video"
		}
	case packet.KindAudio:
		if p.AudioCodec == packet.AudioCodecAAC && !p.IsAudioSequenceHeader && s.audioSeqHeader == nil {
			missing = "audio"
		}
	}
	if missing == "" {
		return nil
	}

	s.headerMissDrop++
	if s.headerMissDrop == 1 || s.headerMissDrop%headerMissLogEvery == 0 {
		slog.Warn("dropping frame before sequence header",
			"stream", s.key.String(), "kind", missing, "dropped", s.headerMissDrop)
	}
	return srserr.NewHeaderMissing(s.key.String(), missing)
}

// deliver caches and fans out one packet in final order; latching
// already happened at publish time.
func (s *Source) deliver(p *packet.Packet) {
	s.gop.Append(p)
	s.fanout(p)
}

// AudioConfig returns the codec configuration parsed from the latest
// audio sequence header, or nil before one arrives.
func (s *Source) AudioConfig() *packet.AudioConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.audioConfig
}

// VideoConfig returns the codec configuration parsed from the latest
// video sequence header, or nil before one arrives.
func (s *Source) VideoConfig() *packet.VideoConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.videoConfig
}

// latchLocked caches sequence headers and metadata for later replay. It
// must be called with mu held.
func (s *Source) latchLocked(p *packet.Packet) {
	switch {
	case p.IsVideoSequenceHeader:
		s.videoSeqHeader = p.Clone()
		// Re-parse best-effort: a malformed record keeps the previous
		// config while the raw bytes still replay to consumers.
		if cfg, err := packet.ParseVideoConfig(p.Payload); err == nil {
			s.videoConfig = cfg
		}
	case p.IsAudioSequenceHeader:
		s.audioSeqHeader = p.Clone()
		if cfg, err := packet.ParseAudioConfig(p.Payload); err == nil {
			s.audioConfig = cfg
		}
	case p.Kind == packet.KindMetadata:
		s.metadata = p.Clone()
	}
}
