// If you are AI: the AMF0 command handlers for one publish session:
// connect, releaseStream, FCPublish, createStream, publish, and the
// unpublish family, admitting the publisher onto its Source.
package rtmpio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/srsgo/srs/internal/core/protocol/amf0"
	rtmpprotocol "github.com/srsgo/srs/internal/core/protocol/rtmp"
	"github.com/srsgo/srs/internal/sourcehub"
)

// handleCommand dispatches one AMF0 command message.
func (s *session) handleCommand(body []byte) error {
	command, err := amf0.DecodeCommand(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("decode command: %w", err)
	}
	if len(command) == 0 {
		return nil
	}
	cmdName, _ := command[0].(string)

	switch cmdName {
	case "connect":
		return s.handleConnect(command)
	case "releaseStream":
		return s.handleReleaseStream(command)
	case "FCPublish":
		return s.handleFCPublish(command)
	case "createStream":
		return s.handleCreateStream(command)
	case "publish":
		return s.handlePublish(command)
	case "deleteStream", "closeStream", "FCUnpublish":
		if s.pub != nil {
			s.endPublish()
		}
		return nil
	default:
		return nil
	}
}

// handleConnect records the app name and answers the window/bandwidth
// and connect-result sequence.
func (s *session) handleConnect(command amf0.Array) error {
	if len(command) < 2 {
		return fmt.Errorf("invalid connect command")
	}

	app := "live"
	objectEncoding := float64(0)
	if len(command) >= 3 {
		if cmdObj, ok := toObject(command[2]); ok {
			if v, ok := cmdObj["app"].(string); ok {
				app = v
			}
			if v, ok := cmdObj["objectEncoding"].(float64); ok {
				objectEncoding = v
			}
		}
	}
	s.app = app

	if err := s.rtmp.WriteMessage(2, rtmpprotocol.MessageTypeWinAckSize, 0, 0, fourByteBody(5000000)); err != nil {
		return fmt.Errorf("send window ack size: %w", err)
	}
	peerBW := append(fourByteBody(5000000), 2)
	if err := s.rtmp.WriteMessage(2, rtmpprotocol.MessageTypeSetPeerBandwidth, 0, 0, peerBW); err != nil {
		return fmt.Errorf("send peer bandwidth: %w", err)
	}

	return s.sendConnectResult(command[1], objectEncoding)
}

// sendConnectResult answers connect with NetConnection.Connect.Success.
func (s *session) sendConnectResult(transID interface{}, objectEncoding float64) error {
	response := amf0.Array{
		"_result",
		toFloat64(transID),
		amf0.Object{"fmsVer": "FMS/3,0,1,123", "capabilities": float64(31)},
		amf0.Object{
			"level":          "status",
			"code":           "NetConnection.Connect.Success",
			"description":    "Connection succeeded.",
			"objectEncoding": objectEncoding,
		},
	}
	body, err := amf0.EncodeCommand(response)
	if err != nil {
		return err
	}
	return s.rtmp.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// handleReleaseStream acks FFmpeg's pre-createStream releaseStream command.
func (s *session) handleReleaseStream(command amf0.Array) error {
	if len(command) < 2 {
		return nil
	}
	return s.sendSimpleResult(command[1])
}

// handleFCPublish acks FFmpeg's pre-createStream FCPublish command.
func (s *session) handleFCPublish(command amf0.Array) error {
	if len(command) < 2 {
		return nil
	}
	return s.sendSimpleResult(command[1])
}

// sendSimpleResult acks a command with a bare _result.
func (s *session) sendSimpleResult(transID interface{}) error {
	body, err := amf0.EncodeCommand(amf0.Array{"_result", toFloat64(transID), nil})
	if err != nil {
		return err
	}
	return s.rtmp.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// handleCreateStream allocates a message stream id.
func (s *session) handleCreateStream(command amf0.Array) error {
	if len(command) < 2 {
		return fmt.Errorf("invalid createStream command")
	}
	streamID := s.nextStreamID
	s.nextStreamID++

	body, err := amf0.EncodeCommand(amf0.Array{"_result", toFloat64(command[1]), nil, float64(streamID)})
	if err != nil {
		return err
	}
	return s.rtmp.WriteMessage(3, rtmpprotocol.MessageTypeCommandAMF0, 0, 0, body)
}

// handlePublish admits a publisher onto the target Source under the
// normal admission rules: one publisher per source, never on an edge
// vhost.
func (s *session) handlePublish(command amf0.Array) error {
	streamName := extractStreamName(command)
	if streamName == "" {
		return fmt.Errorf("stream name not found in publish command")
	}
	if s.app == "" {
		return errAppNotSet
	}

	vhost, app := resolveVhostApp(s.app)
	key := sourcehub.NewStreamKey(vhost, app, streamName)
	cfg := s.resolve(key.Vhost)
	if cfg.IsEdge {
		// Edge vhosts only ingest by pulling from their origin.
		return fmt.Errorf("vhost %s is an edge, local publish rejected", key.Vhost)
	}
	source := s.registry.FetchOrCreate(key, cfg)

	if err := source.AttachPublisher(1); err != nil {
		return err
	}
	s.pub = newPublisher(source)
	if s.events != nil {
		s.events.OnPublish(key)
	}

	streamID := s.nextStreamID - 1
	if streamID == 0 {
		streamID = 1
	}
	_ = s.rtmp.WriteMessage(2, rtmpprotocol.MessageTypeUserCtrl, 0, 0, rtmpprotocol.CreateStreamBegin(streamID))

	return s.sendOnStatus(streamID, "status", "NetStream.Publish.Start", "Start publishing")
}

// sendOnStatus emits an onStatus event on the publish stream.
func (s *session) sendOnStatus(streamID uint32, level, code, description string) error {
	status := amf0.Object{"level": level, "code": code, "description": description}
	body, err := amf0.EncodeCommand(amf0.Array{"onStatus", float64(0), nil, status})
	if err != nil {
		return err
	}
	return s.rtmp.WriteMessage(5, rtmpprotocol.MessageTypeCommandAMF0, 0, streamID, body)
}

// extractStreamName reads the stream name out of a publish command:
// ["publish", txnID, null, streamName, publishType].
func extractStreamName(command amf0.Array) string {
	if len(command) >= 4 {
		if name, ok := command[3].(string); ok {
			return name
		}
	}
	if len(command) >= 3 {
		if name, ok := command[2].(string); ok {
			return name
		}
	}
	return ""
}

// toObject coerces a decoded AMF0 value into an Object.
func toObject(v interface{}) (amf0.Object, bool) {
	switch o := v.(type) {
	case amf0.Object:
		return o, true
	case map[string]interface{}:
		out := make(amf0.Object, len(o))
		for k, val := range o {
			out[k] = val
		}
		return out, true
	default:
		return nil, false
	}
}

// toFloat64 coerces a decoded AMF0 number, defaulting to 1.
func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 1.0
	}
}

// fourByteBody renders v as a 4-byte big-endian body.
func fourByteBody(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
