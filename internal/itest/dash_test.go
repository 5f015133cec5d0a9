// If you are AI: This file contains integration tests for the DASH
// manifest surface.

package itest

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestDASHManifestForPublishedStream(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, `    play { gop_cache on; }
    dash { enabled on; dash_fragment 1000; }`)
	StartServer(t, configPath, ports)

	pub := publishTestStream(t, ports)
	waitForStream(t, ports)
	sendGOP(t, pub, 1100)
	sendGOP(t, pub, 2200)

	url := fmt.Sprintf("http://127.0.0.1:%d/dash/live/cam.mpd", ports.HTTP)
	deadline := time.Now().Add(5 * time.Second)
	var manifest string
	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			if resp.StatusCode == 200 && strings.Contains(string(body), "SegmentURL") {
				manifest = string(body)
				break
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	if manifest == "" {
		t.Fatal("manifest never gained a segment")
	}
	if !strings.Contains(manifest, `type="dynamic"`) {
		t.Fatalf("malformed manifest:\n%s", manifest)
	}
}

func TestDASHUnknownStreamIs404(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "    dash { enabled on; }")
	StartServer(t, configPath, ports)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/dash/live/absent.mpd", ports.HTTP))
	if err != nil {
		t.Fatalf("get manifest: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
