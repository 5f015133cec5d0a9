// If you are AI: This file contains unit tests for API handlers.
// Tests verify JSON responses and error handling.

package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/srsgo/srs/internal/sourcehub"
)

func newTestService() (*Service, *sourcehub.Registry) {
	registry := sourcehub.NewRegistry()
	return NewService(registry, nil, "test"), registry
}

func TestSummariesReportsVersionAndCounts(t *testing.T) {
	svc, registry := newTestService()
	registry.FetchOrCreate(sourcehub.NewStreamKey("", "live", "a"), sourcehub.VhostConfig{})

	rec := httptest.NewRecorder()
	svc.handleSummaries(rec, httptest.NewRequest("GET", "/api/v1/summaries", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp SummariesResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Version != "test" || resp.Streams != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestStreamsListsRegistryState(t *testing.T) {
	svc, registry := newTestService()
	key := sourcehub.NewStreamKey("v.com", "live", "cam")
	source := registry.FetchOrCreate(key, sourcehub.VhostConfig{})
	_ = source.AttachPublisher(1)

	rec := httptest.NewRecorder()
	svc.handleStreams(rec, httptest.NewRequest("GET", "/api/v1/streams", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp StreamsResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Streams) != 1 {
		t.Fatalf("streams = %d, want 1", len(resp.Streams))
	}
	got := resp.Streams[0]
	if got.Vhost != "v.com" || got.App != "live" || got.Stream != "cam" {
		t.Fatalf("stream identity = %+v", got)
	}
	if !got.HasPublisher || got.State != "publishing" {
		t.Fatalf("stream state = %+v", got)
	}
}

func TestStreamsRejectsNonGET(t *testing.T) {
	svc, _ := newTestService()
	rec := httptest.NewRecorder()
	svc.handleStreams(rec, httptest.NewRequest("POST", "/api/v1/streams", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
