// If you are AI: the RTMP ingest server. Each accepted connection is an
// input bridger: it behaves as a publisher toward its Source, and
// admission follows the normal rules ("at most one publisher" per
// source).
package rtmpio

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	rtmpprotocol "github.com/srsgo/srs/internal/core/protocol/rtmp"
	"github.com/srsgo/srs/internal/sourcehub"
)

// VhostResolver supplies the per-vhost Source configuration a newly
// admitted publisher needs, resolved from the live directive tree.
type VhostResolver func(vhost string) sourcehub.VhostConfig

// SessionEvents receives publish lifecycle callbacks, used by the app
// wiring to start forwards and fire operator hooks. Callbacks run on the
// session goroutine and must not block.
type SessionEvents interface {
	OnPublish(key sourcehub.StreamKey)
	OnUnpublish(key sourcehub.StreamKey)
}

// Server accepts RTMP publisher connections and admits them onto
// sourcehub.Source objects by (vhost, app, stream).
type Server struct {
	registry *sourcehub.Registry
	resolve  VhostResolver
	events   SessionEvents
	logger   *slog.Logger
	listener net.Listener
}

// NewServer builds an RTMP ingest server over the registry.
func NewServer(registry *sourcehub.Registry, resolve VhostResolver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if resolve == nil {
		resolve = func(string) sourcehub.VhostConfig { return sourcehub.VhostConfig{} }
	}
	return &Server{registry: registry, resolve: resolve, logger: logger}
}

// SetEvents installs the publish lifecycle listener; call before Serve.
func (s *Server) SetEvents(events SessionEvents) { s.events = events }

// Listen starts listening on addr (e.g. the directive tree's top-level
// "listen" value).
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	return nil
}

// Serve accepts connections until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return err
		}
		go s.handleConnection(conn)
	}
}

// Close stops the listener; active sessions drain on their own.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

// handleConnection drives one connection's handshake and message loop.
func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	sess := newSession(conn, s.registry, s.resolve, s.logger)
	sess.events = s.events
	defer sess.close()

	if err := sess.rtmp.PerformHandshake(); err != nil {
		s.logger.Debug("rtmp handshake failed", "remote", conn.RemoteAddr(), "error", err)
		return
	}

	for {
		csID, err := sess.rtmp.ReadChunk()
		if err != nil {
			if err != io.EOF {
				s.logger.Debug("rtmp read chunk failed", "error", err)
			}
			return
		}

		body, msgType, timestamp, complete := sess.rtmp.GetCompleteMessage(csID)
		if !complete {
			continue
		}

		switch msgType {
		case rtmpprotocol.MessageTypeSetChunkSize:
			if size, err := rtmpprotocol.ParseSetChunkSize(body); err == nil {
				sess.rtmp.SetChunkSize(size)
			}
		case rtmpprotocol.MessageTypeUserCtrl:
			// Ping/StreamBegin acks need no response for a publish-only session.
		case rtmpprotocol.MessageTypeCommandAMF0:
			if err := sess.handleCommand(body); err != nil {
				s.logger.Debug("rtmp command failed", "error", err)
				return
			}
		case rtmpprotocol.MessageTypeAudio, rtmpprotocol.MessageTypeVideo, rtmpprotocol.MessageTypeDataAMF0:
			sess.handleMedia(msgType, timestamp, body)
		}
	}
}

// resolveVhostApp extracts vhost/app from an RTMP app string using SRS's
// "app?vhost=xxx" query convention. With no vhost given it returns an
// empty vhost, which sourcehub.NewStreamKey maps to DefaultVhost.
func resolveVhostApp(app string) (vhost, base string) {
	idx := strings.IndexByte(app, '?')
	if idx < 0 {
		return "", app
	}
	base = app[:idx]
	for _, kv := range strings.Split(app[idx+1:], "&") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 && parts[0] == "vhost" {
			vhost = parts[1]
		}
	}
	return vhost, base
}

var errAppNotSet = fmt.Errorf("rtmp publish: connect command never set an app name")
