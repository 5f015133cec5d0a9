// If you are AI: This file contains integration tests for RTMP publish
// admission, driven end to end through the outgoing RTMP client.

package itest

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	rtmpprotocol "github.com/srsgo/srs/internal/core/protocol/rtmp"
	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/relayforward"
)

// publishTestStream connects an RTMP publisher for live/cam and pushes a
// short keyframe-led GOP. The returned publisher stays connected until
// the test ends.
func publishTestStream(t *testing.T, ports Ports) relayforward.Publisher {
	t.Helper()
	pub, err := relayforward.NewRTMPPublisher(fmt.Sprintf("rtmp://127.0.0.1:%d/live/cam", ports.RTMP))
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pub.Connect(ctx); err != nil {
		t.Fatalf("connect publisher: %v", err)
	}
	t.Cleanup(func() { pub.Close() })

	// Sequence header first so the AVC frames below are admitted.
	vsh := &packet.Packet{Kind: packet.KindVideo, Timestamp: 0, Payload: []byte{
		0x17, 0x00, 0, 0, 0,
		0x01, 0x64, 0x00, 0x1F, 0xFF, 0xE1, 0x00, 0x02, 0x67, 0x64, 0x01, 0x00, 0x02, 0x68, 0xEE,
	}}
	if err := pub.SendPacket(vsh); err != nil {
		t.Fatalf("send sequence header: %v", err)
	}

	frames := []struct {
		ts  uint32
		key bool
	}{{0, true}, {33, false}, {66, false}, {99, false}}
	for _, f := range frames {
		head := byte(0x27)
		if f.key {
			head = 0x17
		}
		p := &packet.Packet{Kind: packet.KindVideo, Timestamp: f.ts, Payload: []byte{head, 0x01, 0, 0, 0, 0xAA}}
		if err := pub.SendPacket(p); err != nil {
			t.Fatalf("send packet: %v", err)
		}
	}
	return pub
}

// sendGOP pushes one keyframe-led GOP starting at base.
func sendGOP(t *testing.T, pub relayforward.Publisher, base uint32) {
	t.Helper()
	for i, off := range []uint32{0, 33, 66, 99} {
		head := byte(0x27)
		if i == 0 {
			head = 0x17
		}
		p := &packet.Packet{Kind: packet.KindVideo, Timestamp: base + off, Payload: []byte{head, 0x01, 0, 0, 0, 0xAA}}
		if err := pub.SendPacket(p); err != nil {
			t.Fatalf("send packet: %v", err)
		}
	}
}

// waitForStream polls the API until live/cam shows a publisher.
func waitForStream(t *testing.T, ports Ports) {
	t.Helper()
	url := fmt.Sprintf("http://127.0.0.1:%d/api/v1/streams", ports.API)
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			var body struct {
				Streams []struct {
					Stream       string `json:"stream"`
					HasPublisher bool   `json:"has_publisher"`
				} `json:"streams"`
			}
			_ = json.NewDecoder(resp.Body).Decode(&body)
			resp.Body.Close()
			for _, s := range body.Streams {
				if s.Stream == "cam" && s.HasPublisher {
					return
				}
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatal("published stream never appeared in the API")
}

func TestRTMPHandshakeSucceeds(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "")
	StartServer(t, configPath, ports)

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("127.0.0.1:%d", ports.RTMP), 3*time.Second)
	if err != nil {
		t.Fatalf("dial rtmp: %v", err)
	}
	defer conn.Close()

	if err := rtmpprotocol.PerformClientHandshake(conn); err != nil {
		t.Fatalf("client handshake: %v", err)
	}
}

func TestRTMPPublishIsAdmitted(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "    play { gop_cache on; }")
	StartServer(t, configPath, ports)

	publishTestStream(t, ports)
	waitForStream(t, ports)
}

func TestSecondPublisherIsRejected(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "")
	StartServer(t, configPath, ports)

	publishTestStream(t, ports)
	waitForStream(t, ports)

	// The second publisher's command sequence is rejected server-side;
	// its connection is torn down and the first stream stays intact.
	second, err := relayforward.NewRTMPPublisher(fmt.Sprintf("rtmp://127.0.0.1:%d/live/cam", ports.RTMP))
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = second.Connect(ctx)
	defer second.Close()

	deadline := time.Now().Add(3 * time.Second)
	rejected := false
	for time.Now().Before(deadline) {
		p := &packet.Packet{Kind: packet.KindVideo, Timestamp: 0, Payload: []byte{0x27, 0x01, 0, 0, 0}}
		if err := second.SendPacket(p); err != nil {
			rejected = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if !rejected {
		t.Fatal("second publisher's connection should have been closed")
	}

	// First stream must be unaffected.
	waitForStream(t, ports)
}
