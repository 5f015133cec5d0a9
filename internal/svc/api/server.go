// If you are AI: This file provides HTTP API service integration.
// The API exposes server and stream state without blocking media paths.

package api

import (
	"net/http"
	"time"

	"github.com/srsgo/srs/internal/relayforward"
	"github.com/srsgo/srs/internal/sourcehub"
)

// Service provides the read-only HTTP API over the stream registry and
// the forward manager.
type Service struct {
	registry  *sourcehub.Registry
	forwards  *relayforward.Manager
	version   string
	startTime int64
}

// NewService creates a new API service. forwards may be nil when
// forwarding is disabled.
func NewService(registry *sourcehub.Registry, forwards *relayforward.Manager, version string) *Service {
	return &Service{
		registry:  registry,
		forwards:  forwards,
		version:   version,
		startTime: getCurrentTime(),
	}
}

// RegisterRoutes registers API routes on the provided mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/summaries", s.handleSummaries)
	mux.HandleFunc("/api/v1/streams", s.handleStreams)
}

// getCurrentTime returns current Unix timestamp.
// Extracted for testability.
func getCurrentTime() int64 {
	return time.Now().Unix()
}
