// If you are AI: RTMPPublisher is the concrete outgoing-RTMP publish
// client behind a forward Destination: dial, client handshake, the
// connect/releaseStream/FCPublish/createStream/publish command sequence,
// then audio/video/metadata messages on the publish stream. A reader
// goroutine drains the peer's control traffic so its responses never
// back-pressure the media path.
package relayforward

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/srsgo/srs/internal/core/protocol/amf0"
	rtmpprotocol "github.com/srsgo/srs/internal/core/protocol/rtmp"
	"github.com/srsgo/srs/internal/media/packet"
)

const (
	dialTimeout      = 5 * time.Second
	publishStreamID  = 1
	outAudioChunkCS  = 4
	outVideoChunkCS  = 6
	outScriptChunkCS = 5
	outCommandCS     = 3
)

// RTMPPublisher implements Publisher over a single rtmp:// destination.
type RTMPPublisher struct {
	rawURL string
	host   string
	app    string
	stream string

	conn net.Conn
	sess *rtmpprotocol.Session
}

// NewRTMPPublisher parses rtmp://host[:port]/app/stream into a publisher
// ready to Connect. It is the default PublisherFactory for forward
// destinations.
func NewRTMPPublisher(rawURL string) (Publisher, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse forward url: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		host += ":1935"
	}
	parts := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("forward url %q must carry /app/stream", rawURL)
	}
	return &RTMPPublisher{rawURL: rawURL, host: host, app: parts[0], stream: parts[1]}, nil
}

// Connect dials the destination and walks the publish command sequence.
func (c *RTMPPublisher) Connect(ctx context.Context) error {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", c.host)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.host, err)
	}

	if err := rtmpprotocol.PerformClientHandshake(conn); err != nil {
		conn.Close()
		return fmt.Errorf("client handshake: %w", err)
	}

	sess := rtmpprotocol.NewSession(conn)
	if err := c.sendCommands(sess); err != nil {
		conn.Close()
		return err
	}

	c.conn = conn
	c.sess = sess

	// Drain whatever the peer sends (results, acks, pings) so the
	// connection's receive window never closes; errors here surface on
	// the next SendPacket write instead.
	go func() {
		for {
			if _, err := sess.ReadChunk(); err != nil {
				return
			}
		}
	}()
	return nil
}

// sendCommands walks the publish handshake command sequence.
func (c *RTMPPublisher) sendCommands(sess *rtmpprotocol.Session) error {
	commands := []amf0.Array{
		{"connect", float64(1), amf0.Object{
			"app":      c.app,
			"type":     "nonprivate",
			"tcUrl":    "rtmp://" + c.host + "/" + c.app,
			"flashVer": "FMLE/3.0",
		}},
		{"releaseStream", float64(2), nil, c.stream},
		{"FCPublish", float64(3), nil, c.stream},
		{"createStream", float64(4), nil},
	}
	for _, cmd := range commands {
		body, err := amf0.EncodeCommand(cmd)
		if err != nil {
			return fmt.Errorf("encode %v: %w", cmd[0], err)
		}
		if err := sess.WriteMessage(outCommandCS, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body); err != nil {
			return fmt.Errorf("send %v: %w", cmd[0], err)
		}
	}

	body, err := amf0.EncodeCommand(amf0.Array{"publish", float64(5), nil, c.stream, "live"})
	if err != nil {
		return fmt.Errorf("encode publish: %w", err)
	}
	if err := sess.WriteMessage(outCommandCS, rtmpprotocol.MessageTypeCommandAMF0, 0, publishStreamID, body); err != nil {
		return fmt.Errorf("send publish: %w", err)
	}
	return nil
}

// SendPacket writes one media packet as an RTMP message on the publish
// stream.
func (c *RTMPPublisher) SendPacket(p *packet.Packet) error {
	if c.sess == nil {
		return fmt.Errorf("forward publisher %s not connected", c.rawURL)
	}
	var csID uint32
	var msgType byte
	switch p.Kind {
	case packet.KindAudio:
		csID, msgType = outAudioChunkCS, rtmpprotocol.MessageTypeAudio
	case packet.KindVideo:
		csID, msgType = outVideoChunkCS, rtmpprotocol.MessageTypeVideo
	default:
		csID, msgType = outScriptChunkCS, rtmpprotocol.MessageTypeDataAMF0
	}
	return c.sess.WriteMessage(csID, msgType, p.Timestamp, publishStreamID, p.Payload)
}

// Close drops the outgoing connection.
func (c *RTMPPublisher) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.sess = nil
	return err
}
