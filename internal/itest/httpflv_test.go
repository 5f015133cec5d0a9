// If you are AI: This file contains integration tests for the HTTP-FLV
// playback path.

package itest

import (
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"
)

func TestHTTPFLVUnknownStreamIs404(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "")
	StartServer(t, configPath, ports)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/__defaultVhost__/live/absent.flv", ports.HTTP))
	if err != nil {
		t.Fatalf("get flv: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHTTPFLVStreamsPublishedPackets(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "    play { gop_cache on; }")
	StartServer(t, configPath, ports)

	publishTestStream(t, ports)
	waitForStream(t, ports)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%d/__defaultVhost__/live/cam.flv", ports.HTTP))
	if err != nil {
		t.Fatalf("get flv: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "video/x-flv" {
		t.Fatalf("content type = %q", ct)
	}

	// The body must start with the FLV file header, then carry tags from
	// the GOP cache replay.
	head := make([]byte, 13)
	if _, err := io.ReadFull(resp.Body, head); err != nil {
		t.Fatalf("read flv header: %v", err)
	}
	if head[0] != 'F' || head[1] != 'L' || head[2] != 'V' {
		t.Fatalf("body does not start with FLV signature: % x", head[:3])
	}
}
