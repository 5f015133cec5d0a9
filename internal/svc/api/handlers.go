// If you are AI: This file implements HTTP API handlers.
// All handlers are fast, allocation-light, and never block media paths.

package api

import (
	"encoding/json"
	"net/http"
	"runtime"
)

// SummariesResponse represents the /api/v1/summaries response.
type SummariesResponse struct {
	Version      string `json:"version"`
	Uptime       int64  `json:"uptime"` // seconds
	GoVersion    string `json:"go_version"`
	Streams      int    `json:"streams"`
	ForwardTasks int    `json:"forward_tasks"`
}

// StreamInfo represents one stream in the /api/v1/streams response.
type StreamInfo struct {
	Vhost         string `json:"vhost"`
	App           string `json:"app"`
	Stream        string `json:"stream"`
	State         string `json:"state"`
	HasPublisher  bool   `json:"has_publisher"`
	ConsumerCount int    `json:"consumer_count"`
}

// StreamsResponse represents the /api/v1/streams response.
type StreamsResponse struct {
	Streams []StreamInfo `json:"streams"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleSummaries handles GET /api/v1/summaries.
func (s *Service) handleSummaries(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	forwardTasks := 0
	if s.forwards != nil {
		forwardTasks = s.forwards.TaskCount()
	}
	response := SummariesResponse{
		Version:      s.version,
		Uptime:       getCurrentTime() - s.startTime,
		GoVersion:    runtime.Version(),
		Streams:      s.registry.Count(),
		ForwardTasks: forwardTasks,
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleStreams handles GET /api/v1/streams.
// Returns the list of known streams with publisher/consumer state.
func (s *Service) handleStreams(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	keys := s.registry.List()
	streams := make([]StreamInfo, 0, len(keys))
	for _, key := range keys {
		source := s.registry.Get(key)
		if source == nil {
			continue
		}
		streams = append(streams, StreamInfo{
			Vhost:         key.Vhost,
			App:           key.App,
			Stream:        key.Stream,
			State:         source.State().String(),
			HasPublisher:  !source.CanPublish(),
			ConsumerCount: source.ConsumerCount(),
		})
	}

	s.writeJSON(w, http.StatusOK, StreamsResponse{Streams: streams})
}

// writeJSON writes a JSON response.
func (s *Service) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (s *Service) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
