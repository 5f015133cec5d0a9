// If you are AI: typed accessor layer over internal/directive's tree.
// Every getter applies the same rule: return the directive's value when
// present and well-formed, else the compiled-in default, with per-vhost
// settings falling back to the global scope where one exists. This
// package never mutates the tree it wraps — internal/reload owns tree
// replacement on SIGHUP.
package srsconfig

import (
	"strconv"

	"github.com/srsgo/srs/internal/directive"
)

// Compiled-in defaults used when the matching directive is absent.
const (
	DefaultChunkSize    = 60000
	DefaultQueueSeconds = 30
	DefaultListen       = "1935"
	DefaultPithyPrintMs = 10000
)

// Config wraps a parsed, compat-transformed directive tree with typed
// accessors. It holds no mutable state of its own — Reload produces a new
// tree and a new Config wrapping it.
type Config struct {
	root *directive.Directive
}

// New wraps an already-parsed, already-transformed root directive.
func New(root *directive.Directive) *Config { return &Config{root: root} }

// Root returns the wrapped tree, for callers (the reload engine, the
// config-test CLI path) that need the raw directive.
func (c *Config) Root() *directive.Directive { return c.root }

// preferTrue treats anything but an explicit "off" as enabled.
func preferTrue(arg string) bool  { return arg != "off" }
// preferFalse treats only an explicit "on" as enabled.
func preferFalse(arg string) bool { return arg == "on" }

// --- global ---

// Listen returns the RTMP listen port.
func (c *Config) Listen() string {
	if d := c.root.Get("listen"); d != nil && d.Arg0() != "" {
		return d.Arg0()
	}
	return DefaultListen
}

// PID returns the pid file path, empty when unset.
func (c *Config) PID() string {
	if d := c.root.Get("pid"); d != nil {
		return d.Arg0()
	}
	return ""
}

// LogTank returns the log sink selector, console or file.
func (c *Config) LogTank() string {
	if d := c.root.Get("srs_log_tank"); d != nil && d.Arg0() != "" {
		return d.Arg0()
	}
	return "console"
}

// LogLevel returns the configured log level.
func (c *Config) LogLevel() string {
	if d := c.root.Get("srs_log_level"); d != nil && d.Arg0() != "" {
		return d.Arg0()
	}
	return "trace"
}

// LogFile returns the log file path used when the tank is file.
func (c *Config) LogFile() string {
	if d := c.root.Get("srs_log_file"); d != nil {
		return d.Arg0()
	}
	return "./srs.log"
}

// MaxConnections returns the connection cap.
func (c *Config) MaxConnections() int {
	if d := c.root.Get("max_connections"); d != nil && d.Arg0() != "" {
		if n, err := strconv.Atoi(d.Arg0()); err == nil {
			return n
		}
	}
	return 1000
}

// UTCTime reports whether log timestamps use UTC.
func (c *Config) UTCTime() bool {
	if d := c.root.Get("utc_time"); d != nil && d.Arg0() != "" {
		return preferFalse(d.Arg0())
	}
	return false
}

// PithyPrintMs returns the periodic status-log interval.
func (c *Config) PithyPrintMs() int {
	if d := c.root.Get("pithy_print_ms"); d != nil && d.Arg0() != "" {
		if n, err := strconv.Atoi(d.Arg0()); err == nil {
			return n
		}
	}
	return DefaultPithyPrintMs
}

// GlobalChunkSize returns the top-level chunk_size.
func (c *Config) GlobalChunkSize() int {
	if d := c.root.Get("chunk_size"); d != nil && d.Arg0() != "" {
		if n, err := strconv.Atoi(d.Arg0()); err == nil {
			return n
		}
	}
	return DefaultChunkSize
}

// --- http_api / http_server / rtc_server enabled + raw access ---

// HTTPAPI returns the raw http_api block, or nil.
func (c *Config) HTTPAPI() *directive.Directive    { return c.root.Get("http_api") }
// HTTPServer returns the raw http_server block, or nil.
func (c *Config) HTTPServer() *directive.Directive { return c.root.Get("http_server") }
// RTCServer returns the raw rtc_server block, or nil.
func (c *Config) RTCServer() *directive.Directive  { return c.root.Get("rtc_server") }

// HTTPAPIEnabled reports whether the HTTP API listener is on.
func (c *Config) HTTPAPIEnabled() bool {
	d := c.HTTPAPI()
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e != nil && e.Arg0() == "on"
}

// HTTPServerEnabled reports whether the HTTP stream listener is on;
// present-but-unspecified means on.
func (c *Config) HTTPServerEnabled() bool {
	d := c.HTTPServer()
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e == nil || e.Arg0() == "on"
}

// RTCServerEnabled reports whether the WebRTC listener is on.
func (c *Config) RTCServerEnabled() bool {
	d := c.RTCServer()
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e != nil && e.Arg0() == "on"
}
