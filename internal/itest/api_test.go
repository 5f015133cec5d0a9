// If you are AI: This file contains integration tests for the HTTP API
// surface.

package itest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
)

func TestAPISummaries(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "")
	StartServer(t, configPath, ports)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/summaries", ports.API))
	if err != nil {
		t.Fatalf("get summaries: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	var body struct {
		Version   string `json:"version"`
		GoVersion string `json:"go_version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Version == "" || body.GoVersion == "" {
		t.Fatalf("summaries = %+v", body)
	}
}

func TestAPIStreamsEmptyWithoutPublishers(t *testing.T) {
	ports := FreePorts(t)
	configPath := WriteConfig(t, ports, "")
	StartServer(t, configPath, ports)

	resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/api/v1/streams", ports.API))
	if err != nil {
		t.Fatalf("get streams: %v", err)
	}
	defer resp.Body.Close()

	var body struct {
		Streams []any `json:"streams"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Streams) != 0 {
		t.Fatalf("streams = %d, want 0", len(body.Streams))
	}
}
