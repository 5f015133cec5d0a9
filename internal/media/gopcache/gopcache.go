// If you are AI: the GOP replay cache holds every packet since the most
// recent video keyframe so a late-joining consumer can start decoding
// immediately instead of waiting for the next keyframe.
package gopcache

import "github.com/srsgo/srs/internal/media/packet"

// audioOnlyWindowMs bounds a pure-audio cache by media time: with no
// keyframes to reset it, only a recent window is worth replaying.
const audioOnlyWindowMs = 5000

// Cache holds packets since the most recent video keyframe for one
// source. It is owned by the source's single fan-out goroutine; no
// internal locking.
type Cache struct {
	enabled   bool
	maxFrames int
	frames    []*packet.Packet
	hasVideo  bool
}

// New creates a GOP cache. maxFrames<=0 means unbounded (bounded only by
// the next keyframe arriving).
func New(enabled bool, maxFrames int) *Cache {
	return &Cache{enabled: enabled, maxFrames: maxFrames}
}

// Append adds p to the current GOP. A video keyframe starts a new GOP
// and discards the previous one; a source holds at most one GOP at a
// time, never a history. A non-keyframe video packet cannot seed an
// empty cache — a late joiner could not decode from it. Audio can seed
// the cache (an audio-only stream keeps a recent window, capped by
// media time). Metadata and sequence headers are not stored here;
// callers latch those separately since they replay before the GOP
// regardless of cache state.
func (c *Cache) Append(p *packet.Packet) {
	if !c.enabled {
		return
	}
	if p.IsVideoSequenceHeader || p.IsAudioSequenceHeader || p.Kind == packet.KindMetadata {
		return
	}
	if p.Kind == packet.KindVideo {
		if p.IsVideoKeyframe {
			c.clear()
			c.hasVideo = true
		} else if len(c.frames) == 0 {
			return
		}
	}
	if c.maxFrames > 0 && len(c.frames) >= c.maxFrames {
		// Cap exceeded before the next keyframe arrived: drop the GOP
		// rather than let memory grow unbounded on a keyframe-starved
		// encoder; a late joiner just waits for the next keyframe.
		c.clear()
		if p.Kind == packet.KindVideo && !p.IsVideoKeyframe {
			return
		}
	}
	c.frames = append(c.frames, p.Clone())
	if !c.hasVideo {
		c.trimAudioWindow()
	}
}

// trimAudioWindow drops the oldest packets of a pure-audio cache until
// the retained span fits the recent window.
func (c *Cache) trimAudioWindow() {
	newest := c.frames[len(c.frames)-1].Timestamp
	for len(c.frames) > 1 && newest-c.frames[0].Timestamp > audioOnlyWindowMs {
		packet.ReleasePacket(c.frames[0])
		c.frames[0] = nil
		c.frames = c.frames[1:]
	}
}

// Clear drops the cached GOP, called when the source loses its publisher.
func (c *Cache) Clear() { c.clear() }

// clear releases every cached frame.
func (c *Cache) clear() {
	for _, p := range c.frames {
		packet.ReleasePacket(p)
	}
	c.frames = c.frames[:0]
	c.hasVideo = false
}

// Frames returns the cached GOP in arrival order. Callers must not
// mutate the returned packets; Replay via a fan-out helper that clones
// per-destination instead.
func (c *Cache) Frames() []*packet.Packet { return c.frames }

// Len returns the cached frame count.
func (c *Cache) Len() int { return len(c.frames) }
