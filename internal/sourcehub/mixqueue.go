// If you are AI: mixQueue is the per-source audio/video reorder stage
// used when mix_correct is enabled: both media types are held briefly in
// per-type FIFOs and drained in strict DTS order, so interleaving errors
// from encoders that batch one type ahead of the other are corrected
// before fan-out.
package sourcehub

import "github.com/srsgo/srs/internal/media/packet"

// mixMaxHeld bounds how many packets of a single type may be held while
// waiting for the other type to appear. Pure-audio or pure-video streams
// hit this bound and drain directly, so mix-correct never stalls them.
const mixMaxHeld = 10

// mixQueue holds one FIFO per media type. Not safe for concurrent use;
// the owning Source serializes access under its own lock.
type mixQueue struct {
	audio []*packet.Packet
	video []*packet.Packet
}

// push appends p to its type's FIFO.
func (m *mixQueue) push(p *packet.Packet) {
	if p.Kind == packet.KindAudio {
		m.audio = append(m.audio, p)
	} else {
		m.video = append(m.video, p)
	}
}

// popReady drains every packet whose order is already decided: while both
// FIFOs are non-empty the smaller DTS wins, audio first on a tie; a
// lopsided FIFO over mixMaxHeld drains from its head so a single-type
// stream flows without waiting for the other type.
func (m *mixQueue) popReady() []*packet.Packet {
	var out []*packet.Packet
	for {
		switch {
		case len(m.audio) > 0 && len(m.video) > 0:
			if m.audio[0].Timestamp <= m.video[0].Timestamp {
				out = append(out, m.popAudio())
			} else {
				out = append(out, m.popVideo())
			}
		case len(m.audio) > mixMaxHeld:
			out = append(out, m.popAudio())
		case len(m.video) > mixMaxHeld:
			out = append(out, m.popVideo())
		default:
			return out
		}
	}
}

// flush drains everything still held, in DTS order with the audio-first
// tie-break, for publisher teardown.
func (m *mixQueue) flush() []*packet.Packet {
	var out []*packet.Packet
	for len(m.audio) > 0 || len(m.video) > 0 {
		switch {
		case len(m.audio) == 0:
			out = append(out, m.popVideo())
		case len(m.video) == 0:
			out = append(out, m.popAudio())
		case m.audio[0].Timestamp <= m.video[0].Timestamp:
			out = append(out, m.popAudio())
		default:
			out = append(out, m.popVideo())
		}
	}
	return out
}

// popAudio removes and returns the audio head.
func (m *mixQueue) popAudio() *packet.Packet {
	p := m.audio[0]
	m.audio[0] = nil
	m.audio = m.audio[1:]
	return p
}

// popVideo removes and returns the video head.
func (m *mixQueue) popVideo() *packet.Packet {
	p := m.video[0]
	m.video[0] = nil
	m.video = m.video[1:]
	return p
}
