// If you are AI: StreamKey is the (vhost, app, stream) triple that
// identifies a Source.
package sourcehub

import "strings"

// StreamKey identifies a Source. Comparable, usable as a map key.
type StreamKey struct {
	Vhost  string
	App    string
	Stream string
}

// NewStreamKey builds a key, defaulting an empty vhost to "__defaultVhost__"
// the way SRS treats an unqualified tcUrl.
func NewStreamKey(vhost, app, stream string) StreamKey {
	if vhost == "" {
		vhost = DefaultVhost
	}
	return StreamKey{Vhost: vhost, App: app, Stream: stream}
}

// DefaultVhost is used when a publisher's connection names no vhost.
const DefaultVhost = "__defaultVhost__"

// String renders vhost/app/stream.
func (k StreamKey) String() string {
	return strings.Join([]string{k.Vhost, k.App, k.Stream}, "/")
}
