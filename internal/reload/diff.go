// If you are AI: the reload diff over two directive trees. Diff is pure
// (takes both trees, returns the ordered notification list) so the
// caller decides whether to commit the new tree; an EdgeModeChanged or
// not-reloadable error therefore always leaves the previously active
// tree in place.
package reload

import (
	"github.com/srsgo/srs/internal/directive"
	"github.com/srsgo/srs/internal/srserr"
)

// Diff compares oldRoot against newRoot and returns the notifications that
// a reload from old to new would fire, in a deterministic, stable
// order: global scalars, then the server blocks, then per-vhost
// notifications. It returns an error
// without partial notifications if any vhost's cluster.mode (edge/origin)
// changed, since that transition is never reloadable.
func Diff(oldRoot, newRoot *directive.Directive) ([]Notification, error) {
	var notes []Notification

	root := func(name string) *directive.Directive { return newRoot.Get(name) }
	old := func(name string) *directive.Directive { return oldRoot.Get(name) }

	// daemon and stream_caster are not reloadable: any change is rejected
	// before a single notification fires.
	if !root("daemon").Equals(old("daemon")) {
		return nil, srserr.NewConfigInvalid("reload", "daemon", directiveLine(root("daemon"), old("daemon")),
			errNotReloadable("daemon"))
	}
	if !sameStreamCasters(oldRoot, newRoot) {
		return nil, srserr.NewConfigInvalid("reload", "stream_caster", directiveLine(root("stream_caster"), old("stream_caster")),
			errNotReloadable("stream_caster"))
	}

	simple := []struct {
		name string
		kind Kind
	}{
		{"listen", KindListen},
		{"pid", KindPID},
		{"srs_log_tank", KindLogTank},
		{"srs_log_level", KindLogLevel},
		{"srs_log_file", KindLogFile},
		{"max_connections", KindMaxConnections},
		{"utc_time", KindUTCTime},
		{"pithy_print_ms", KindPithyPrintMs},
	}
	for _, s := range simple {
		if !root(s.name).Equals(old(s.name)) {
			notes = append(notes, Notification{Kind: s.kind})
		}
	}

	notes = append(notes, diffHTTPAPI(old("http_api"), root("http_api"))...)
	notes = append(notes, diffHTTPStream(old("http_server"), root("http_server"))...)
	notes = append(notes, diffRTCServer(old("rtc_server"), root("rtc_server"))...)

	vhostNotes, err := diffVhosts(oldRoot, newRoot)
	if err != nil {
		return nil, err
	}
	notes = append(notes, vhostNotes...)

	return notes, nil
}

type errNotReloadable string

// Error implements the error interface.
func (e errNotReloadable) Error() string { return "directive " + string(e) + " is not reloadable" }

// directiveLine picks a line number for diagnostics from whichever
// side exists.
func directiveLine(a, b *directive.Directive) int {
	if a != nil {
		return a.Line
	}
	if b != nil {
		return b.Line
	}
	return 0
}

// sameStreamCasters compares every stream_caster block pairwise in
// document order; count or content differences both make the reload
// non-applicable.
func sameStreamCasters(oldRoot, newRoot *directive.Directive) bool {
	olds := oldRoot.GetAll("stream_caster")
	news := newRoot.GetAll("stream_caster")
	if len(olds) != len(news) {
		return false
	}
	for i := range olds {
		if !olds[i].Equals(news[i]) {
			return false
		}
	}
	return true
}

// httpAPIEnabled reports an http_api block explicitly turned on.
func httpAPIEnabled(d *directive.Directive) bool {
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e != nil && e.Arg0() == "on"
}

// diffHTTPAPI computes the http_api state transition.
func diffHTTPAPI(oldAPI, newAPI *directive.Directive) []Notification {
	oldEnabled, newEnabled := httpAPIEnabled(oldAPI), httpAPIEnabled(newAPI)

	if !oldEnabled && newEnabled {
		return []Notification{{Kind: KindHTTPAPIEnabled}}
	}
	if oldEnabled && !newEnabled {
		return []Notification{{Kind: KindHTTPAPIDisabled}}
	}
	if oldEnabled && newEnabled && !oldAPI.Equals(newAPI) {
		notes := []Notification{{Kind: KindHTTPAPIEnabled}}
		if !oldAPI.Get("crossdomain").Equals(newAPI.Get("crossdomain")) {
			notes = append(notes, Notification{Kind: KindHTTPAPICrossdomain})
		}
		return notes
	}
	return nil
}

// httpStreamEnabled mirrors get_http_stream_enabled: the http_server block
// is enabled unless explicitly turned off.
func httpStreamEnabled(d *directive.Directive) bool {
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e == nil || e.Arg0() == "on"
}

// diffHTTPStream computes the http_server state transition.
func diffHTTPStream(oldStream, newStream *directive.Directive) []Notification {
	oldEnabled, newEnabled := httpStreamEnabled(oldStream), httpStreamEnabled(newStream)

	if !oldEnabled && newEnabled {
		return []Notification{{Kind: KindHTTPStreamEnabled}}
	}
	if oldEnabled && !newEnabled {
		return []Notification{{Kind: KindHTTPStreamDisabled}}
	}
	if oldEnabled && newEnabled && !oldStream.Equals(newStream) {
		return []Notification{{Kind: KindHTTPStreamUpdated}}
	}
	return nil
}

// rtcServerEnabled reports an rtc_server block explicitly turned on.
func rtcServerEnabled(d *directive.Directive) bool {
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e != nil && e.Arg0() == "on"
}

// diffRTCServer fires when an enabled rtc_server block changed.
func diffRTCServer(oldRTC, newRTC *directive.Directive) []Notification {
	if rtcServerEnabled(oldRTC) && rtcServerEnabled(newRTC) && !oldRTC.Equals(newRTC) {
		return []Notification{{Kind: KindRTCServer}}
	}
	return nil
}
