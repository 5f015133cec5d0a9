package wsflv

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/sourcehub"
)

func TestHandlerRejectsNonWSPath(t *testing.T) {
	h := NewHandler(sourcehub.NewRegistry(), nil)
	req := httptest.NewRequest(http.MethodGet, "/live/test", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlerReturnsNotFoundWithoutPublisher(t *testing.T) {
	registry := sourcehub.NewRegistry()
	h := NewHandler(registry, nil)

	key := sourcehub.NewStreamKey("v.com", "live", "test")
	registry.FetchOrCreate(key, sourcehub.VhostConfig{})

	req := httptest.NewRequest(http.MethodGet, "/ws/v.com/live/test", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandlerUpgradesAndStreamsFLVHeader(t *testing.T) {
	registry := sourcehub.NewRegistry()
	h := NewHandler(registry, nil)

	key := sourcehub.NewStreamKey("v.com", "live", "test")
	source := registry.FetchOrCreate(key, sourcehub.VhostConfig{})
	if err := source.AttachPublisher(1); err != nil {
		t.Fatalf("AttachPublisher: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(h.ServeHTTP))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/v.com/live/test"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusSwitchingProtocols {
		t.Fatalf("status = %d, want 101", resp.StatusCode)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if len(data) < 3 || string(data[:3]) != "FLV" {
		t.Fatalf("first frame = %v, want FLV signature", data)
	}
}

func TestBridgerRunWritesMuxedPacket(t *testing.T) {
	key := sourcehub.NewStreamKey("v.com", "live", "test")
	registry := sourcehub.NewRegistry()
	source := registry.FetchOrCreate(key, sourcehub.VhostConfig{})
	if err := source.AttachPublisher(1); err != nil {
		t.Fatalf("AttachPublisher: %v", err)
	}

	var wsConn *websocket.Conn
	h := NewHandler(registry, nil)
	server := httptest.NewServer(http.HandlerFunc(h.ServeHTTP))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/v.com/live/test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	wsConn = conn
	defer wsConn.Close()

	wsConn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := wsConn.ReadMessage(); err != nil {
		t.Fatalf("read FLV header: %v", err)
	}

	// Sequence header first so the AVC frame below is admitted.
	if err := source.Publish(&packet.Packet{Kind: packet.KindVideo, Payload: []byte{0x17, 0x00, 0, 0, 0}}); err != nil {
		t.Fatalf("Publish sequence header: %v", err)
	}
	p := packet.AcquirePacket()
	p.Kind = packet.KindVideo
	p.Payload = append(p.Payload, 0x17, 0x01, 0, 0, 0)
	if err := source.Publish(p); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	source.Flush()

	wsConn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := wsConn.ReadMessage()
	if err != nil {
		t.Fatalf("read tag: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty FLV tag frame")
	}
}
