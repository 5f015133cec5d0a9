// If you are AI: the per-vhost play/publish/cluster/forward/hls/dash
// accessors split out of config.go. Same default-on-missing rules: a
// vhost inherits the compiled-in default whenever the directive (or any
// ancestor block) is absent or malformed.
package srsconfig

import (
	"strconv"

	"github.com/srsgo/srs/internal/directive"
)

const (
	DefaultGopCacheMaxFrames = 2500
	DefaultHLSFragmentSec    = 10
	DefaultHLSWindowSegments = 6
	DefaultDashFragmentMs    = 10000
	DefaultDashWindowSize    = 6
)

// playChild fetches one directive under the vhost's play block.
func (c *Config) playChild(vhost, name string) *directive.Directive {
	v := c.Vhost(vhost)
	if v == nil {
		return nil
	}
	play := v.Get("play")
	if play == nil {
		return nil
	}
	return play.Get(name)
}

// MixCorrect reports play.mix_correct: hold audio/video briefly and
// deliver in strict timestamp order. Default off.
func (c *Config) MixCorrect(vhost string) bool {
	d := c.playChild(vhost, "mix_correct")
	return d != nil && preferFalse(d.Arg0())
}

// ATC reports play.atc: pass absolute timestamps through untouched and
// keep cached stream state across publisher reconnects. Default off.
func (c *Config) ATC(vhost string) bool {
	d := c.playChild(vhost, "atc")
	return d != nil && preferFalse(d.Arg0())
}

// TimeJitter returns play.time_jitter: "full", "zero", or "off".
func (c *Config) TimeJitter(vhost string) string {
	d := c.playChild(vhost, "time_jitter")
	if d == nil || d.Arg0() == "" {
		return "full"
	}
	return d.Arg0()
}

// GopCacheMaxFrames returns play.gop_cache_max_frames.
func (c *Config) GopCacheMaxFrames(vhost string) int {
	d := c.playChild(vhost, "gop_cache_max_frames")
	if d == nil || d.Arg0() == "" {
		return DefaultGopCacheMaxFrames
	}
	n, err := strconv.Atoi(d.Arg0())
	if err != nil || n <= 0 {
		return DefaultGopCacheMaxFrames
	}
	return n
}

// ForwardDestinations returns every forward.destination URL of vhost, or
// nil when forwarding is off.
func (c *Config) ForwardDestinations(vhost string) []string {
	fwd := c.Forwards(vhost)
	if fwd == nil {
		return nil
	}
	if e := fwd.Get("enabled"); e != nil && e.Arg0() == "off" {
		return nil
	}
	var urls []string
	for _, d := range fwd.GetAll("destination") {
		urls = append(urls, d.Args...)
	}
	return urls
}

// ClusterOrigins returns cluster.origin's upstream addresses for an edge
// vhost.
func (c *Config) ClusterOrigins(vhost string) []string {
	v := c.Vhost(vhost)
	if v == nil {
		return nil
	}
	cluster := v.Get("cluster")
	if cluster == nil {
		return nil
	}
	origin := cluster.Get("origin")
	if origin == nil {
		return nil
	}
	return origin.Args
}

// HLSEnabled reports whether the vhost's hls block is on. Default off.
func (c *Config) HLSEnabled(vhost string) bool {
	hls := c.HLS(vhost)
	if hls == nil {
		return false
	}
	e := hls.Get("enabled")
	return e != nil && e.Arg0() == "on"
}

// HLSFragmentMs returns hls.hls_fragment converted to milliseconds.
func (c *Config) HLSFragmentMs(vhost string) uint32 {
	hls := c.HLS(vhost)
	if hls == nil {
		return DefaultHLSFragmentSec * 1000
	}
	d := hls.Get("hls_fragment")
	if d == nil || d.Arg0() == "" {
		return DefaultHLSFragmentSec * 1000
	}
	sec, err := strconv.ParseFloat(d.Arg0(), 64)
	if err != nil || sec <= 0 {
		return DefaultHLSFragmentSec * 1000
	}
	return uint32(sec * 1000)
}

// HLSWindowSegments derives the retained segment count from
// hls.hls_window (seconds of playlist) over the fragment length.
func (c *Config) HLSWindowSegments(vhost string) int {
	hls := c.HLS(vhost)
	if hls == nil {
		return DefaultHLSWindowSegments
	}
	d := hls.Get("hls_window")
	if d == nil || d.Arg0() == "" {
		return DefaultHLSWindowSegments
	}
	winSec, err := strconv.ParseFloat(d.Arg0(), 64)
	if err != nil || winSec <= 0 {
		return DefaultHLSWindowSegments
	}
	fragMs := c.HLSFragmentMs(vhost)
	n := int(winSec * 1000 / float64(fragMs))
	if n < 1 {
		n = 1
	}
	return n
}

// DashEnabled reports whether the vhost's dash block is on. Default off.
func (c *Config) DashEnabled(vhost string) bool {
	dash := c.DASH(vhost)
	if dash == nil {
		return false
	}
	e := dash.Get("enabled")
	return e != nil && e.Arg0() == "on"
}

// DashFragmentMs returns dash.dash_fragment (already milliseconds).
func (c *Config) DashFragmentMs(vhost string) uint32 {
	dash := c.DASH(vhost)
	if dash == nil {
		return DefaultDashFragmentMs
	}
	d := dash.Get("dash_fragment")
	if d == nil || d.Arg0() == "" {
		return DefaultDashFragmentMs
	}
	n, err := strconv.Atoi(d.Arg0())
	if err != nil || n <= 0 {
		return DefaultDashFragmentMs
	}
	return uint32(n)
}

// DashWindowSize returns dash.dash_window_size.
func (c *Config) DashWindowSize(vhost string) int {
	dash := c.DASH(vhost)
	if dash == nil {
		return DefaultDashWindowSize
	}
	d := dash.Get("dash_window_size")
	if d == nil || d.Arg0() == "" {
		return DefaultDashWindowSize
	}
	n, err := strconv.Atoi(d.Arg0())
	if err != nil || n <= 0 {
		return DefaultDashWindowSize
	}
	return n
}

// HTTPAPIListen returns http_api.listen, default 1985.
func (c *Config) HTTPAPIListen() string {
	if api := c.HTTPAPI(); api != nil {
		if d := api.Get("listen"); d != nil && d.Arg0() != "" {
			return d.Arg0()
		}
	}
	return "1985"
}

// HTTPServerListen returns http_server.listen, default 8080.
func (c *Config) HTTPServerListen() string {
	if srv := c.HTTPServer(); srv != nil {
		if d := srv.Get("listen"); d != nil && d.Arg0() != "" {
			return d.Arg0()
		}
	}
	return "8080"
}
