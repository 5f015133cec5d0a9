// If you are AI: the DASH output bridger. Shares the HLS bridger's
// segmenter window but renders it as a dynamic-profile MPD with an
// explicit SegmentList, the simplest manifest shape a live window can
// carry. Started lazily by the Handler like the HLS one.
package dash

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"sync"

	"github.com/srsgo/srs/internal/bridge/segmenter"
	"github.com/srsgo/srs/internal/sourcehub"
)

// Muxer is one stream's DASH pipeline.
type Muxer struct {
	key    sourcehub.StreamKey
	seg    *segmenter.Segmenter
	cancel context.CancelFunc
	done   chan struct{}
}

// NewMuxer builds a muxer cutting fragmentMs segments with a window of
// windowSize, fed from source until source stops publishing.
func NewMuxer(source *sourcehub.Source, fragmentMs uint32, windowSize int) *Muxer {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Muxer{
		key:    source.Key(),
		seg:    segmenter.New(segmenter.Config{FragmentMs: fragmentMs, WindowSize: windowSize}, segmenter.NewFLVEncoder()),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(m.done)
		_ = m.seg.Run(ctx, source)
	}()
	return m
}

// Manifest renders the current window as a dynamic MPD. uriBase is the
// path prefix segment URLs are emitted under.
func (m *Muxer) Manifest(uriBase string) string {
	window := m.seg.Window()
	maxSegMs := m.seg.TargetDurationMs()

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?>` + "\n")
	fmt.Fprintf(&b, `<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" profiles="urn:mpeg:dash:profile:isoff-live:2011" type="dynamic" minBufferTime="PT%dS" maxSegmentDuration="PT%.3fS">`+"\n",
		1, float64(maxSegMs)/1000)
	b.WriteString("  <Period start=\"PT0S\">\n")
	b.WriteString("    <AdaptationSet mimeType=\"video/x-flv\" contentType=\"video\">\n")
	b.WriteString("      <Representation id=\"0\" bandwidth=\"0\">\n")
	fmt.Fprintf(&b, "        <SegmentList timescale=\"1000\" duration=\"%d\" startNumber=\"%d\">\n", maxSegMs, m.seg.MediaSequence())
	for _, seg := range window {
		fmt.Fprintf(&b, "          <SegmentURL media=\"%s-%d.seg\"/>\n", uriBase, seg.Seq)
	}
	b.WriteString("        </SegmentList>\n")
	b.WriteString("      </Representation>\n")
	b.WriteString("    </AdaptationSet>\n")
	b.WriteString("  </Period>\n")
	b.WriteString("</MPD>\n")
	return b.String()
}

// Segment returns the bytes of the retained segment seq.
func (m *Muxer) Segment(seq uint64) ([]byte, bool) {
	seg, ok := m.seg.Segment(seq)
	if !ok {
		return nil, false
	}
	return seg.Data, true
}

// Stop cancels the muxer and waits for its segmenter to detach.
func (m *Muxer) Stop() {
	m.cancel()
	<-m.done
}

// Stopped reports whether the muxer's segmenter loop has exited.
func (m *Muxer) Stopped() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// FragmentResolver supplies the per-vhost dash_fragment (milliseconds)
// and window size from the live directive tree.
type FragmentResolver func(vhost string) (fragmentMs uint32, windowSize int)

// Handler serves GET /dash/{app}/{stream}.mpd and segment requests,
// starting a Muxer per publishing stream on demand.
type Handler struct {
	registry *sourcehub.Registry
	resolve  FragmentResolver
	logger   *slog.Logger

	mu     sync.Mutex
	muxers map[sourcehub.StreamKey]*Muxer
}

// NewHandler builds the DASH surface over the registry.
func NewHandler(registry *sourcehub.Registry, resolve FragmentResolver, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if resolve == nil {
		resolve = func(string) (uint32, int) { return 10000, 6 }
	}
	return &Handler{
		registry: registry,
		resolve:  resolve,
		logger:   logger,
		muxers:   make(map[sourcehub.StreamKey]*Muxer),
	}
}

// ServeHTTP routes manifest and segment requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch path.Ext(r.URL.Path) {
	case ".mpd":
		h.serveManifest(w, r)
	case ".seg":
		h.serveSegment(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// RegisterRoutes mounts the DASH routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/dash/", h.ServeHTTP)
}

// Shutdown stops every running muxer.
func (h *Handler) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for k, m := range h.muxers {
		m.Stop()
		delete(h.muxers, k)
	}
}

// serveManifest answers one .mpd request.
func (h *Handler) serveManifest(w http.ResponseWriter, r *http.Request) {
	key, ok := streamKeyFromPath(r.URL.Path, ".mpd")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m := h.muxerFor(key)
	if m == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/dash+xml")
	w.Header().Set("Cache-Control", "no-cache")
	base := strings.TrimSuffix(r.URL.Path, ".mpd")
	fmt.Fprint(w, m.Manifest(path.Base(base)))
}

// serveSegment answers one segment request from the window.
func (h *Handler) serveSegment(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimSuffix(r.URL.Path, ".seg")
	idx := strings.LastIndexByte(trimmed, '-')
	if idx < 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	seq, err := strconv.ParseUint(trimmed[idx+1:], 10, 64)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	key, ok := streamKeyFromPath(trimmed[:idx], "")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	m := h.muxers[key]
	h.mu.Unlock()
	if m == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	data, ok := m.Segment(seq)
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "video/x-flv")
	w.Write(data)
}

// muxerFor returns the running muxer for key, starting one if the source
// is publishing, reaping a stopped one first.
func (h *Handler) muxerFor(key sourcehub.StreamKey) *Muxer {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.muxers[key]; ok {
		if !m.Stopped() {
			return m
		}
		delete(h.muxers, key)
	}

	source := h.registry.Get(key)
	if source == nil || source.State() != sourcehub.StatePublishing {
		return nil
	}
	fragMs, window := h.resolve(key.Vhost)
	m := NewMuxer(source, fragMs, window)
	h.muxers[key] = m
	h.logger.Info("dash muxer started", "stream", key.String())
	return m
}

// streamKeyFromPath parses /dash/{app}/{stream}{suffix} (two segments)
// or /dash/{vhost}/{app}/{stream}{suffix} (three).
func streamKeyFromPath(p, suffix string) (sourcehub.StreamKey, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(p, "/dash/"), suffix)
	parts := strings.Split(trimmed, "/")
	switch len(parts) {
	case 2:
		return sourcehub.NewStreamKey("", parts[0], parts[1]), true
	case 3:
		return sourcehub.NewStreamKey(parts[0], parts[1], parts[2]), true
	default:
		return sourcehub.StreamKey{}, false
	}
}
