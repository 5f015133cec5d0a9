// If you are AI: the edge-cluster ingest adapter. An edge vhost never
// accepts local publishers; when a Source on an edge vhost gains its
// first consumer, the Puller dials the configured upstream origin, plays
// the stream over RTMP, and republishes it locally as the Source's
// publisher. When the last consumer detaches, the pull is torn down
// after a grace window so channel-zapping viewers don't thrash the
// origin.
package edge

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/srsgo/srs/internal/core/protocol/amf0"
	rtmpprotocol "github.com/srsgo/srs/internal/core/protocol/rtmp"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/sourcehub"
)

const (
	graceWindow    = 10 * time.Second
	dialTimeout    = 5 * time.Second
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	pullStreamID   = 1
)

// OriginResolver maps a vhost to its configured upstream origin addresses
// (cluster.origin), resolved from the live directive tree.
type OriginResolver func(vhost string) []string

// Puller implements sourcehub.EdgePuller: one upstream pull session per
// stream key, started on first consumer and stopped a grace window after
// the last one leaves.
type Puller struct {
	registry *sourcehub.Registry
	origins  OriginResolver
	logger   *slog.Logger

	mu    sync.Mutex
	pulls map[sourcehub.StreamKey]*pullSession
}

// NewPuller builds an idle puller over the registry.
func NewPuller(registry *sourcehub.Registry, origins OriginResolver, logger *slog.Logger) *Puller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Puller{
		registry: registry,
		origins:  origins,
		logger:   logger,
		pulls:    make(map[sourcehub.StreamKey]*pullSession),
	}
}

// PullStream starts (or revives) the upstream pull for key. Called by the
// Source when its first consumer attaches with no publisher present.
func (p *Puller) PullStream(key sourcehub.StreamKey) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if s, ok := p.pulls[key]; ok {
		s.cancelTeardown()
		return
	}

	origins := p.origins(key.Vhost)
	if len(origins) == 0 {
		p.logger.Warn("edge pull has no origin configured", "vhost", key.Vhost)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &pullSession{
		key:     key,
		origins: origins,
		source:  p.registry.Get(key),
		cancel:  cancel,
		logger:  p.logger.With("stream", key.String()),
	}
	p.pulls[key] = s
	go func() {
		s.run(ctx)
		p.mu.Lock()
		delete(p.pulls, key)
		p.mu.Unlock()
	}()
}

// StopPull schedules teardown of key's pull after the grace window. A
// consumer attaching inside the window cancels it.
func (p *Puller) StopPull(key sourcehub.StreamKey) {
	p.mu.Lock()
	s, ok := p.pulls[key]
	p.mu.Unlock()
	if ok {
		s.scheduleTeardown()
	}
}

// Shutdown cancels every active pull immediately.
func (p *Puller) Shutdown() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.pulls {
		s.cancel()
	}
}

// ActivePulls returns how many upstream pull sessions are running.
func (p *Puller) ActivePulls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pulls)
}

// pullSession is one reconnecting upstream play loop.
type pullSession struct {
	key     sourcehub.StreamKey
	origins []string
	source  *sourcehub.Source
	cancel  context.CancelFunc
	logger  *slog.Logger

	mu       sync.Mutex
	teardown *time.Timer
}

// scheduleTeardown arms the grace-window timer once.
func (s *pullSession) scheduleTeardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teardown != nil {
		return
	}
	s.teardown = time.AfterFunc(graceWindow, s.cancel)
}

// cancelTeardown disarms a pending teardown.
func (s *pullSession) cancelTeardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.teardown != nil {
		s.teardown.Stop()
		s.teardown = nil
	}
}

// run pulls from the origin list round-robin, reconnecting with
// exponential backoff up to a ceiling, until ctx is cancelled.
func (s *pullSession) run(ctx context.Context) {
	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		select {
		case <-ctx.Done():
			return
		default:
		}

		origin := s.origins[attempt%len(s.origins)]
		err := s.pullOnce(ctx, origin)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			s.logger.Warn("edge pull failed, retrying", "origin", origin, "backoff", backoff, "error", err)
		}

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// pullOnce runs a single play session against one origin: handshake,
// connect/createStream/play, then republish every media message locally
// until the connection drops or ctx is cancelled.
func (s *pullSession) pullOnce(ctx context.Context, origin string) error {
	host := origin
	if !strings.Contains(host, ":") {
		host += ":1935"
	}
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", host)
	if err != nil {
		return fmt.Errorf("dial origin %s: %w", host, err)
	}
	defer conn.Close()

	if err := rtmpprotocol.PerformClientHandshake(conn); err != nil {
		return fmt.Errorf("origin handshake: %w", err)
	}

	sess := rtmpprotocol.NewSession(conn)
	if err := s.sendPlayCommands(sess); err != nil {
		return err
	}

	if err := s.source.AttachPublisher(pullStreamID); err != nil {
		return err
	}
	defer func() {
		s.source.Flush()
		s.source.DetachPublisher()
	}()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		csID, err := sess.ReadChunk()
		if err != nil {
			return err
		}
		body, msgType, timestamp, complete := sess.GetCompleteMessage(csID)
		if !complete {
			continue
		}
		switch msgType {
		case rtmpprotocol.MessageTypeSetChunkSize:
			if size, err := rtmpprotocol.ParseSetChunkSize(body); err == nil {
				sess.SetChunkSize(size)
			}
		case rtmpprotocol.MessageTypeAudio:
			s.republish(packet.KindAudio, timestamp, body)
		case rtmpprotocol.MessageTypeVideo:
			s.republish(packet.KindVideo, timestamp, body)
		case rtmpprotocol.MessageTypeDataAMF0:
			s.republish(packet.KindMetadata, timestamp, body)
		}
	}
}

// sendPlayCommands walks the connect/createStream/play sequence.
func (s *pullSession) sendPlayCommands(sess *rtmpprotocol.Session) error {
	app := s.key.App
	if s.key.Vhost != "" && s.key.Vhost != sourcehub.DefaultVhost {
		app += "?vhost=" + s.key.Vhost
	}
	commands := []struct {
		streamID uint32
		cmd      amf0.Array
	}{
		{0, amf0.Array{"connect", float64(1), amf0.Object{
			"app":      app,
			"tcUrl":    "rtmp://" + s.origins[0] + "/" + app,
			"flashVer": "FMLE/3.0",
		}}},
		{0, amf0.Array{"createStream", float64(2), nil}},
		{pullStreamID, amf0.Array{"play", float64(3), nil, s.key.Stream}},
	}
	for _, c := range commands {
		body, err := amf0.EncodeCommand(c.cmd)
		if err != nil {
			return fmt.Errorf("encode %v: %w", c.cmd[0], err)
		}
		if err := sess.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, c.streamID, body); err != nil {
			return fmt.Errorf("send %v: %w", c.cmd[0], err)
		}
	}
	return nil
}

// republish wraps one upstream message as a local packet.
func (s *pullSession) republish(kind packet.Kind, timestamp uint32, body []byte) {
	pk := packet.AcquirePacket()
	pk.Kind = kind
	pk.Timestamp = timestamp
	pk.Payload = append(pk.Payload, body...)
	_ = s.source.Publish(pk)
}
