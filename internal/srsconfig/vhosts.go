// If you are AI: the vhost lookup and per-vhost scalar/raw-block
// accessors: enabled/edge state, chunk size with global fallback, the
// play-queue bounds, and the raw sub-trees the bridgers and writers
// consume whole.
package srsconfig

import (
	"strconv"
	"time"

	"github.com/srsgo/srs/internal/directive"
)

// VhostNames returns every configured vhost name, in document order.
func (c *Config) VhostNames() []string {
	var names []string
	for _, v := range c.root.GetAll("vhost") {
		names = append(names, v.Arg0())
	}
	return names
}

// Vhost returns the raw vhost directive named name, or nil.
func (c *Config) Vhost(name string) *directive.Directive {
	return c.root.GetArg("vhost", name)
}

// VhostEnabled reports whether the named vhost is on; a present vhost
// defaults to enabled.
func (c *Config) VhostEnabled(name string) bool {
	v := c.Vhost(name)
	if v == nil {
		return false
	}
	e := v.Get("enabled")
	return e == nil || e.Arg0() == "on"
}

// VhostIsEdge reports whether the vhost runs in edge (remote) cluster
// mode.
func (c *Config) VhostIsEdge(name string) bool {
	v := c.Vhost(name)
	if v == nil {
		return false
	}
	cluster := v.Get("cluster")
	if cluster == nil {
		return false
	}
	mode := cluster.Get("mode")
	return mode != nil && mode.Arg0() == "remote"
}

// ChunkSize returns the vhost chunk size, falling back to the global
// value.
func (c *Config) ChunkSize(vhost string) int {
	v := c.Vhost(vhost)
	if v == nil {
		return c.GlobalChunkSize()
	}
	cs := v.Get("chunk_size")
	if cs == nil || cs.Arg0() == "" {
		return c.GlobalChunkSize()
	}
	n, err := strconv.Atoi(cs.Arg0())
	if err != nil {
		return c.GlobalChunkSize()
	}
	return n
}

// TCPNoDelay reports whether the vhost sets TCP_NODELAY on sessions.
func (c *Config) TCPNoDelay(vhost string) bool {
	v := c.Vhost(vhost)
	if v == nil {
		return false
	}
	d := v.Get("tcp_nodelay")
	return d != nil && d.Arg0() != "" && preferFalse(d.Arg0())
}

// Realtime reports the vhost's min_latency setting (low-latency mode:
// disables merged-write batching and queue smoothing).
func (c *Config) Realtime(vhost string) bool {
	v := c.Vhost(vhost)
	if v == nil {
		return false
	}
	d := v.Get("min_latency")
	return d != nil && d.Arg0() != "" && preferFalse(d.Arg0())
}

// GopCache reports whether the vhost replays a GOP to new consumers.
// Default on.
func (c *Config) GopCache(vhost string) bool {
	v := c.Vhost(vhost)
	if v == nil {
		return true
	}
	play := v.Get("play")
	if play == nil {
		return true
	}
	d := play.Get("gop_cache")
	if d == nil || d.Arg0() == "" {
		return true
	}
	return preferTrue(d.Arg0())
}

// QueueLength returns the play queue bound as a duration (play.queue_length
// is specified in whole seconds).
func (c *Config) QueueLength(vhost string) time.Duration {
	v := c.Vhost(vhost)
	if v == nil {
		return DefaultQueueSeconds * time.Second
	}
	play := v.Get("play")
	if play == nil {
		return DefaultQueueSeconds * time.Second
	}
	d := play.Get("queue_length")
	if d == nil || d.Arg0() == "" {
		return DefaultQueueSeconds * time.Second
	}
	n, err := strconv.Atoi(d.Arg0())
	if err != nil {
		return DefaultQueueSeconds * time.Second
	}
	return time.Duration(n) * time.Second
}

// ParseSPS reports whether sequence headers are parsed for SPS info.
// Default on.
func (c *Config) ParseSPS(vhost string) bool {
	v := c.Vhost(vhost)
	if v == nil {
		return true
	}
	publish := v.Get("publish")
	if publish == nil {
		return true
	}
	d := publish.Get("parse_sps")
	if d == nil || d.Arg0() == "" {
		return true
	}
	return preferTrue(d.Arg0())
}

// ReferEnabled reports whether referer checking is on for the vhost.
func (c *Config) ReferEnabled(vhost string) bool {
	v := c.Vhost(vhost)
	if v == nil {
		return false
	}
	refer := v.Get("refer")
	if refer == nil {
		return false
	}
	d := refer.Get("enabled")
	if d == nil || d.Arg0() == "" {
		return false
	}
	return preferFalse(d.Arg0())
}

// ForwardEnabled reports whether the vhost forwards to any upstream.
func (c *Config) ForwardEnabled(vhost string) bool {
	return c.ForwardDestinations(vhost) != nil
}

// Forwards returns the raw forward block, or nil.
func (c *Config) Forwards(vhost string) *directive.Directive {
	v := c.Vhost(vhost)
	if v == nil {
		return nil
	}
	return v.Get("forward")
}

// Raw per-block accessors, used by bridgers/writers that need the whole
// sub-tree (dvr, hls, dash, hds, http_static, http_remux, exec).
func (c *Config) DVR(vhost string) *directive.Directive        { return c.block(vhost, "dvr") }
// HLS returns the vhost's hls block, or nil.
func (c *Config) HLS(vhost string) *directive.Directive        { return c.block(vhost, "hls") }
// DASH returns the vhost's dash block, or nil.
func (c *Config) DASH(vhost string) *directive.Directive       { return c.block(vhost, "dash") }
// HDS returns the vhost's hds block, or nil.
func (c *Config) HDS(vhost string) *directive.Directive        { return c.block(vhost, "hds") }
// HTTPStatic returns the vhost's http_static block, or nil.
func (c *Config) HTTPStatic(vhost string) *directive.Directive { return c.block(vhost, "http_static") }
// HTTPRemux returns the vhost's http_remux block, or nil.
func (c *Config) HTTPRemux(vhost string) *directive.Directive  { return c.block(vhost, "http_remux") }
// Exec returns the vhost's exec block, or nil.
func (c *Config) Exec(vhost string) *directive.Directive       { return c.block(vhost, "exec") }

// block fetches one named child block of a vhost.
func (c *Config) block(vhost, name string) *directive.Directive {
	v := c.Vhost(vhost)
	if v == nil {
		return nil
	}
	return v.Get(name)
}

// Transcoders returns every transcode{} instance of vhost, keyed by arg0.
func (c *Config) Transcoders(vhost string) []*directive.Directive {
	v := c.Vhost(vhost)
	if v == nil {
		return nil
	}
	return v.GetAll("transcode")
}

// Ingesters returns every ingest{} instance of vhost, keyed by arg0.
func (c *Config) Ingesters(vhost string) []*directive.Directive {
	v := c.Vhost(vhost)
	if v == nil {
		return nil
	}
	return v.GetAll("ingest")
}

// IngestEnabled reports whether one ingest block is on; present
// defaults to enabled.
func (c *Config) IngestEnabled(ingest *directive.Directive) bool {
	if ingest == nil {
		return false
	}
	e := ingest.Get("enabled")
	return e == nil || e.Arg0() == "on"
}
