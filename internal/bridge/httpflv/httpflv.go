// If you are AI: the HTTP-FLV output bridger: attaches to a Source as a
// consumer and muxes its packets as FLV tags over a chunked HTTP
// response, sharing internal/core/protocol/flv with the WebSocket-FLV
// bridger.
package httpflv

import (
	"bufio"
	"context"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/srsgo/srs/internal/core/protocol/flv"
	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
	"github.com/srsgo/srs/internal/sourcehub"
)

const drainBatch = 64

// Bridger is a bridge.OutputBridger that writes FLV tags over a
// chunked HTTP response body, one per client.
type Bridger struct {
	w      *bufio.Writer
	logger *slog.Logger
}

// NewBridger wraps one HTTP response as an FLV sink.
func NewBridger(w http.ResponseWriter, logger *slog.Logger) *Bridger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridger{w: bufio.NewWriter(w), logger: logger}
}

// Run writes the FLV header as the first bytes, then mux-and-writes every
// packet off source's consumer queue until ctx is cancelled or a write
// fails (client disconnected).
func (b *Bridger) Run(ctx context.Context, source *sourcehub.Source) error {
	if err := b.writeHeader(); err != nil {
		return err
	}

	cons := source.NewConsumer(1000, 0, queue.PolicyDropVideoNonGOP, consumer.JitterFull)
	defer source.DetachConsumer(cons.ID())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var writeErr error
		n := cons.Drain(drainBatch, func(p *packet.Packet) {
			if writeErr != nil {
				return
			}
			tag := flv.MuxPacket(p)
			if tag == nil {
				return
			}
			if _, err := b.w.Write(tag.Bytes()); err != nil {
				writeErr = err
				return
			}
			writeErr = b.w.Flush()
		})
		if writeErr != nil {
			return writeErr
		}
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// writeHeader emits the FLV file header and zero previous-tag-size.
func (b *Bridger) writeHeader() error {
	header := flv.NewHeader(true, true)
	if _, err := b.w.Write(header.Bytes()); err != nil {
		return err
	}
	if _, err := b.w.Write([]byte{0, 0, 0, 0}); err != nil {
		return err
	}
	return b.w.Flush()
}

// Close flushes buffered tags.
func (b *Bridger) Close() error { return b.w.Flush() }

// Handler serves GET /{vhost}/{app}/{stream}.flv by attaching an
// HTTP-FLV output bridger to the matching Source.
type Handler struct {
	registry *sourcehub.Registry
	logger   *slog.Logger
}

// NewHandler builds the HTTP-FLV surface over the registry.
func NewHandler(registry *sourcehub.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{registry: registry, logger: logger}
}

// ServeHTTP handles GET /{vhost}/{app}/{stream}.flv.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet || path.Ext(r.URL.Path) != ".flv" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	trimmed := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/"), ".flv")
	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) != 3 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	key := sourcehub.NewStreamKey(parts[0], parts[1], parts[2])

	source := h.registry.Get(key)
	if source == nil || source.State() != sourcehub.StatePublishing {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "video/x-flv")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	bridger := NewBridger(w, h.logger.With("stream", key.String()))
	if err := bridger.Run(r.Context(), source); err != nil {
		h.logger.Debug("httpflv bridger stopped", "stream", key.String(), "error", err)
	}
}

// RegisterRoutes registers the HTTP-FLV output bridger's route. Any
// other caller (e.g. internal/svc/api) registering "/" must be mounted
// after this one, since non-.flv requests fall through to 404 here.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if path.Ext(r.URL.Path) == ".flv" {
			h.ServeHTTP(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
}
