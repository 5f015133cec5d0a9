// If you are AI: the transcoder is an external collaborator; this
// package is its interface plus a stub manager with no-op bodies. No
// payload transcoding happens in this server — the stub exists so the
// transcode config blocks and their reload notifications have somewhere
// to land until a real encoder process is wired in.
package transcoder

import (
	"fmt"

	"github.com/srsgo/srs/internal/directive"
)

// Profile is one transcode{} engine block's codec/bitrate settings,
// collected from a vhost's transcode directive.
type Profile struct {
	Name   string // transcode directive's arg0, e.g. "all"
	VCodec string
	ACodec string
	VBitrateKbps int
	ABitrateKbps int
	Output string // output URL template, e.g. rtmp://127.0.0.1/[app]/[stream]_low
}

// ProfileFromDirective reads a transcode{} engine{} block into a Profile.
// Missing fields default to "copy" (pass-through, no re-encode). Only
// vcodec, acodec and output are read; the bitrate fields stay zero.
func ProfileFromDirective(name string, engine *directive.Directive) Profile {
	p := Profile{Name: name, VCodec: "copy", ACodec: "copy"}
	if engine == nil {
		return p
	}
	if vcodec := engine.Get("vcodec"); vcodec != nil && len(vcodec.Args) > 0 {
		p.VCodec = vcodec.Args[0]
	}
	if acodec := engine.Get("acodec"); acodec != nil && len(acodec.Args) > 0 {
		p.ACodec = acodec.Args[0]
	}
	if output := engine.Get("output"); output != nil && len(output.Args) > 0 {
		p.Output = output.Args[0]
	}
	return p
}

// Task is one running transcode job for one (stream, profile) pair.
type Task interface {
	Start() error
	Stop() error
}

// Manager starts and stops transcode Tasks for a vhost's configured
// profiles. The stub implementation does nothing: no real subprocess or
// in-process transcoding is performed here.
type Manager interface {
	StartProfile(streamKey string, profile Profile) (Task, error)
	TaskCount() int
}

// ErrTranscodingNotAvailable is returned by the stub Manager for every
// start request; a real collaborator would dial out to ffmpeg or a
// hardware encoder instead.
var ErrTranscodingNotAvailable = fmt.Errorf("transcoding not available: this server relays formats without re-encoding; wire a real transcoder")

type stubManager struct {
	tasks int
}

// NewStubManager returns the default Manager: it records no calls and
// performs no actual transcoding.
func NewStubManager() Manager {
	return &stubManager{}
}

// StartProfile always refuses: the stub performs no transcoding.
func (m *stubManager) StartProfile(streamKey string, profile Profile) (Task, error) {
	return nil, ErrTranscodingNotAvailable
}

// TaskCount returns the number of running tasks, always zero here.
func (m *stubManager) TaskCount() int {
	return m.tasks
}
