package dash

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/srsgo/srs/internal/media/packet"
	"github.com/srsgo/srs/internal/sourcehub"
)

func publishTwoGOPs(t *testing.T, h *Handler, s *sourcehub.Source, url string) {
	t.Helper()
	if err := s.AttachPublisher(1); err != nil {
		t.Fatalf("attach publisher: %v", err)
	}
	// The muxer starts on the first manifest request and only sees the
	// cached GOP onward, so start it and wait for its consumer first.
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", url, nil))
	for deadline := time.Now().Add(time.Second); s.ConsumerCount() == 0 && time.Now().Before(deadline); {
		time.Sleep(5 * time.Millisecond)
	}
	// Sequence header first so the AVC frames below are admitted.
	_ = s.Publish(&packet.Packet{Kind: packet.KindVideo, Timestamp: 0, Payload: []byte{0x17, 0x00, 0, 0, 0, 0x01, 0x64, 0x00, 0x1F, 0xFF, 0xE1, 0x00, 0x02, 0x67, 0x64, 0x01, 0x00, 0x02, 0x68, 0xEE}})
	for _, f := range []struct {
		ts  uint32
		key bool
	}{{0, true}, {33, false}, {66, false}, {99, true}, {132, false}} {
		frame := byte(0x27)
		if f.key {
			frame = 0x17
		}
		_ = s.Publish(&packet.Packet{Kind: packet.KindVideo, Timestamp: f.ts, Payload: []byte{frame, 0x01, 0, 0, 0}})
	}
}

func TestHandlerServesManifestForPublishingStream(t *testing.T) {
	registry := sourcehub.NewRegistry()
	key := sourcehub.NewStreamKey("", "live", "cam")
	source := registry.FetchOrCreate(key, sourcehub.VhostConfig{GopCacheEnabled: true})

	h := NewHandler(registry, func(string) (uint32, int) { return 50, 4 }, nil)
	defer h.Shutdown()
	publishTwoGOPs(t, h, source, "/dash/live/cam.mpd")

	var manifest string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/dash/live/cam.mpd", nil))
		if rec.Code == 200 && strings.Contains(rec.Body.String(), "SegmentURL") {
			manifest = rec.Body.String()
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if manifest == "" {
		t.Fatal("manifest never gained a segment")
	}
	for _, want := range []string{`type="dynamic"`, "<SegmentList", `media="cam-0.seg"`} {
		if !strings.Contains(manifest, want) {
			t.Fatalf("manifest missing %q:\n%s", want, manifest)
		}
	}
}

func TestHandlerRejectsUnknownStream(t *testing.T) {
	h := NewHandler(sourcehub.NewRegistry(), nil, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/dash/live/absent.mpd", nil))
	if rec.Code != 404 {
		t.Fatalf("status = %d, want 404 for unknown stream", rec.Code)
	}
}
