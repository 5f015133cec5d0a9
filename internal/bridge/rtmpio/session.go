// If you are AI: session pairs one RTMP protocol session with publish
// admission state and media forwarding into a Source.
package rtmpio

import (
	"io"
	"log/slog"

	rtmpprotocol "github.com/srsgo/srs/internal/core/protocol/rtmp"
	"github.com/srsgo/srs/internal/sourcehub"
)

// session wraps one RTMP connection's protocol session with publish
// admission and media forwarding into a sourcehub.Source.
type session struct {
	rtmp     *rtmpprotocol.Session
	registry *sourcehub.Registry
	resolve  VhostResolver
	logger   *slog.Logger

	app          string
	nextStreamID uint32
	pub          *publisher
	events       SessionEvents
}

// newSession wraps one accepted connection.
func newSession(conn io.ReadWriter, registry *sourcehub.Registry, resolve VhostResolver, logger *slog.Logger) *session {
	return &session{
		rtmp:         rtmpprotocol.NewSession(conn),
		registry:     registry,
		resolve:      resolve,
		logger:       logger,
		nextStreamID: 1,
	}
}

// handleMedia forwards one audio/video/data message to the publisher.
func (s *session) handleMedia(msgType byte, timestamp uint32, body []byte) {
	if s.pub == nil {
		return
	}
	switch msgType {
	case rtmpprotocol.MessageTypeAudio:
		s.pub.publishAudio(timestamp, body)
	case rtmpprotocol.MessageTypeVideo:
		s.pub.publishVideo(timestamp, body)
	case rtmpprotocol.MessageTypeDataAMF0:
		s.pub.publishMetadata(timestamp, body)
	}
}

// close ends the session, detaching any active publisher.
func (s *session) close() {
	if s.pub != nil {
		s.endPublish()
	}
	s.rtmp.Close()
}

// endPublish detaches the active publisher and fires the unpublish event.
func (s *session) endPublish() {
	key := s.pub.source.Key()
	s.pub.detach()
	s.registry.RemoveIfEmpty(key)
	s.pub = nil
	if s.events != nil {
		s.events.OnUnpublish(key)
	}
}
