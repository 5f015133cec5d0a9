// If you are AI: Package bridge defines the two shapes a format bridger
// presents to a Source: an OutputBridger behaves as a consumer (source
// -> other format), an InputBridger behaves as a publisher (other format
// -> source). internal/sourcehub already speaks consumer.Consumer and
// the (*Source).AttachPublisher/Publish contract directly, so these
// interfaces exist for the bridgers themselves to implement and for
// callers (internal/app's wiring) to hold a bridger without caring which
// concrete format it is.
package bridge

import (
	"context"

	"github.com/srsgo/srs/internal/sourcehub"
)

// OutputBridger attaches to a Source as a pseudo-consumer and mux that
// source's packets into another format (HLS segments, HTTP-FLV chunks,
// WebRTC RTP, DASH segments). Run blocks until ctx is cancelled, the
// bridger's transport closes, or an unrecoverable error occurs.
type OutputBridger interface {
	Run(ctx context.Context, source *sourcehub.Source) error
	Close() error
}

// InputBridger attaches to a Source as a pseudo-publisher, translating
// another format into packets and Publish-ing them. Run blocks for the
// lifetime of the ingest session.
type InputBridger interface {
	Run(ctx context.Context, source *sourcehub.Source) error
	Close() error
}
