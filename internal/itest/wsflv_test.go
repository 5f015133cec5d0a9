// If you are AI: This file contains integration tests for the
// WebSocket-FLV playback path.

package itest

import (
	"fmt"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWSFLVStreamsPublishedPackets(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "    play { gop_cache on; }")
	StartServer(t, configPath, ports)

	publishTestStream(t, ports)
	waitForStream(t, ports)

	url := fmt.Sprintf("ws://127.0.0.1:%d/ws/__defaultVhost__/live/cam", ports.HTTP)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, frame, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read first frame: %v", err)
	}
	if len(frame) < 3 || frame[0] != 'F' || frame[1] != 'L' || frame[2] != 'V' {
		t.Fatalf("first frame is not the FLV header: % x", frame[:minInt(len(frame), 3)])
	}
}

func TestWSFLVUnknownStreamRejected(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "")
	StartServer(t, configPath, ports)

	url := fmt.Sprintf("ws://127.0.0.1:%d/ws/__defaultVhost__/live/absent", ports.HTTP)
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial must fail for an unknown stream")
	}
	if resp != nil && resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
