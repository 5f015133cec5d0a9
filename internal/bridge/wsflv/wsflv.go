// If you are AI: the WebSocket-FLV output bridger: attaches to a Source
// as a consumer and muxes its packets as FLV tags over binary WebSocket
// frames, gorilla/websocket underneath.
package wsflv

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/srsgo/srs/internal/core/protocol/flv"
	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/media/queue"
	"github.com/srsgo/srs/internal/sourcehub"
)

const drainBatch = 64

// Bridger is a bridge.OutputBridger that writes FLV tags over a
// WebSocket binary connection, one per client.
type Bridger struct {
	conn   *websocket.Conn
	logger *slog.Logger
}

// NewBridger wraps one WebSocket connection as an FLV sink.
func NewBridger(conn *websocket.Conn, logger *slog.Logger) *Bridger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridger{conn: conn, logger: logger}
}

// Run writes the FLV header as the first frame, attaches a consumer to
// source, then mux-and-writes every packet until ctx is cancelled or a
// write on the connection fails.
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
			writeErr = b.conn.WriteMessage(websocket.BinaryMessage, tag.Bytes())
		})
		if writeErr != nil {
			return writeErr
		}
		if n == 0 {
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// writeHeader sends the FLV file header as the first binary frame.
func (b *Bridger) writeHeader() error {
	header := flv.NewHeader(true, true)
	frame := append(append([]byte{}, header.Bytes()...), 0, 0, 0, 0)
	return b.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// Close closes the WebSocket connection.
func (b *Bridger) Close() error {
	return b.conn.Close()
}

// Handler upgrades GET /ws/{vhost}/{app}/{stream} requests to a
// WebSocket-FLV output bridger attached to the matching Source.
type Handler struct {
	registry *sourcehub.Registry
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler builds the WebSocket-FLV surface over the registry.
func NewHandler(registry *sourcehub.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		registry: registry,
		logger:   logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP handles GET /ws/{vhost}/{app}/{stream}.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/ws/")
	if path == r.URL.Path {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	parts := strings.SplitN(path, "/", 3)
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

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	bridger := NewBridger(conn, h.logger.With("stream", key.String()))
	defer bridger.Close()

	if err := bridger.Run(r.Context(), source); err != nil {
		h.logger.Debug("wsflv bridger stopped", "stream", key.String(), "error", err)
	}
}

// RegisterRoutes registers the WebSocket-FLV output bridger's route.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws/", h.ServeHTTP)
}
