// If you are AI: This file contains integration tests for the HLS
// playlist/segment surface.

package itest

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestHLSPlaylistForPublishedStream(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, `    play { gop_cache on; }
    hls { enabled on; hls_fragment 1; hls_window 6; }`)
	StartServer(t, configPath, ports)

	pub := publishTestStream(t, ports)
	waitForStream(t, ports)

	// Push a second GOP past the fragment length so a segment can cut.
	sendGOP(t, pub, 1100)
	sendGOP(t, pub, 2200)

	url := fmt.Sprintf("http://127.0.0.1:%d/hls/live/cam.m3u8", ports.HTTP)
	deadline := time.Now().Add(5 * time.Second)
	var playlist string
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == 200 && strings.Contains(string(body), "#EXTINF") {
				playlist = string(body)
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	if playlist == "" {
		t.Fatal("playlist never gained a segment")
	}
	if !strings.Contains(playlist, "#EXTM3U") || !strings.Contains(playlist, "#EXT-X-MEDIA-SEQUENCE") {
		t.Fatalf("malformed playlist:\n%s", playlist)
	}
}

func TestHLSUnknownStreamIs404(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "    hls { enabled on; }")
	StartServer(t, configPath, ports)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/hls/live/absent.m3u8", ports.HTTP))
	if err != nil {
		t.Fatalf("get playlist: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
