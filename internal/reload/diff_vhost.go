// If you are AI: the per-vhost half of the reload diff: added/removed
// vhosts, the edge-mode guard, the per-child-block notifications, and
// the keyed transcode/ingest instance diffs.
package reload

import (
	"github.com/srsgo/srs/internal/directive"
	"github.com/srsgo/srs/internal/srserr"
)

// vhostEnabled reports whether a vhost is on; present defaults to on.
func vhostEnabled(d *directive.Directive) bool {
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e == nil || e.Arg0() == "on"
}

// vhostIsEdge reports cluster.mode remote.
func vhostIsEdge(d *directive.Directive) bool {
	if d == nil {
		return false
	}
	cluster := d.Get("cluster")
	if cluster == nil {
		return false
	}
	mode := cluster.Get("mode")
	return mode != nil && mode.Arg0() == "remote"
}

// diffVhosts collects vhost names new-root-first then old-root leftovers,
// and diffs each in that order, matching reload_vhost exactly.
func diffVhosts(oldRoot, newRoot *directive.Directive) ([]Notification, error) {
	var names []string
	seen := make(map[string]bool)
	for _, v := range newRoot.GetAll("vhost") {
		n := v.Arg0()
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, v := range oldRoot.GetAll("vhost") {
		n := v.Arg0()
		if seen[n] {
			continue
		}
		if newRoot.GetArg("vhost", n) != nil {
			continue
		}
		seen[n] = true
		names = append(names, n)
	}

	var notes []Notification
	for _, name := range names {
		oldVhost := oldRoot.GetArg("vhost", name)
		newVhost := newRoot.GetArg("vhost", name)

		oldEnabled, newEnabled := vhostEnabled(oldVhost), vhostEnabled(newVhost)

		if !oldEnabled && newEnabled {
			notes = append(notes, Notification{Kind: KindVhostAdded, Vhost: name})
			continue
		}
		if oldEnabled && !newEnabled {
			notes = append(notes, Notification{Kind: KindVhostRemoved, Vhost: name})
			continue
		}

		if vhostIsEdge(oldVhost) != vhostIsEdge(newVhost) {
			return nil, srserr.NewEdgeModeChanged(name)
		}

		if newEnabled && oldEnabled {
			notes = append(notes, diffVhostDetail(name, oldVhost, newVhost)...)
		}
	}
	return notes, nil
}

// diffVhostDetail fires one notification per changed child block of an
// enabled vhost.
func diffVhostDetail(vhost string, oldVhost, newVhost *directive.Directive) []Notification {
	var notes []Notification

	block := func(name string, kind Kind) {
		if !newVhost.Get(name).Equals(oldVhost.Get(name)) {
			notes = append(notes, Notification{Kind: kind, Vhost: vhost})
		}
	}

	block("chunk_size", KindVhostChunkSize)
	block("tcp_nodelay", KindVhostTCPNoDelay)
	block("min_latency", KindVhostRealtime)
	block("play", KindVhostPlay)
	block("forward", KindVhostForward)
	block("dash", KindVhostDash)
	block("hls", KindVhostHLS)
	block("hds", KindVhostHDS)

	// dvr, except its dvr_apply child — a per-reload runtime selector.
	if !newVhost.Get("dvr").EqualsExcept(oldVhost.Get("dvr"), "dvr_apply") {
		notes = append(notes, Notification{Kind: KindVhostDVR, Vhost: vhost})
	}

	block("exec", KindVhostExec)
	block("publish", KindVhostPublish)
	block("http_static", KindVhostHTTPStatic)
	block("http_remux", KindVhostHTTPRemux)

	notes = append(notes, diffTranscode(vhost, oldVhost, newVhost)...)
	notes = append(notes, diffIngest(vhost, oldVhost, newVhost)...)

	return notes
}

// ingestEnabled reports whether one ingest block is on.
func ingestEnabled(d *directive.Directive) bool {
	if d == nil {
		return false
	}
	e := d.Get("enabled")
	return e == nil || e.Arg0() == "on"
}

// diffTranscode fires at most one notification: any tiny change to any
// transcoder of the vhost restarts all of them.
func diffTranscode(vhost string, oldVhost, newVhost *directive.Directive) []Notification {
	changed := false

	for _, o := range oldVhost.GetAll("transcode") {
		if newVhost.GetArg("transcode", o.Arg0()) == nil {
			changed = true
			break
		}
	}
	if !changed {
		for _, n := range newVhost.GetAll("transcode") {
			if oldVhost.GetArg("transcode", n.Arg0()) == nil {
				changed = true
				break
			}
		}
	}
	if !changed {
		for _, n := range newVhost.GetAll("transcode") {
			o := oldVhost.GetArg("transcode", n.Arg0())
			if o != nil && !n.Equals(o) {
				changed = true
				break
			}
		}
	}

	if changed {
		return []Notification{{Kind: KindVhostTranscode, Vhost: vhost}}
	}
	return nil
}

// diffIngest fires one notification per ingester that was removed, added,
// or updated — each keyed by its first argument (the ingest id).
func diffIngest(vhost string, oldVhost, newVhost *directive.Directive) []Notification {
	var notes []Notification

	for _, o := range oldVhost.GetAll("ingest") {
		id := o.Arg0()
		n := newVhost.GetArg("ingest", id)
		if ingestEnabled(o) && !ingestEnabled(n) {
			notes = append(notes, Notification{Kind: KindVhostIngest, Vhost: vhost, Arg: "removed:" + id})
		}
	}
	for _, n := range newVhost.GetAll("ingest") {
		id := n.Arg0()
		o := oldVhost.GetArg("ingest", id)
		if !ingestEnabled(o) && ingestEnabled(n) {
			notes = append(notes, Notification{Kind: KindVhostIngest, Vhost: vhost, Arg: "added:" + id})
		}
	}
	for _, n := range newVhost.GetAll("ingest") {
		id := n.Arg0()
		o := oldVhost.GetArg("ingest", id)
		if o != nil && ingestEnabled(o) && ingestEnabled(n) && !n.Equals(o) {
			notes = append(notes, Notification{Kind: KindVhostIngest, Vhost: vhost, Arg: "updated:" + id})
		}
	}

	return notes
}
