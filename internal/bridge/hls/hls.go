// If you are AI: the HLS output bridger. A Muxer wraps one stream's
// segmenter and renders its window as a live (EVENT-less) m3u8 playlist;
// the Handler starts Muxers lazily on first playlist request and serves
// segments from the in-memory window. Segment packaging is delegated to
// the segmenter's Encoder, per the external-muxer split.
package hls

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

// Muxer is one stream's HLS pipeline: a segmenter plus playlist state.
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

// Playlist renders the current window as an m3u8 media playlist. uriBase
// is the path prefix segment URIs are emitted under.
func (m *Muxer) Playlist(uriBase string) string {
	window := m.seg.Window()
	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:3\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", (m.seg.TargetDurationMs()+999)/1000)
	fmt.Fprintf(&b, "#EXT-X-MEDIA-SEQUENCE:%d\n", m.seg.MediaSequence())
	for _, seg := range window {
		fmt.Fprintf(&b, "#EXTINF:%.3f,\n", float64(seg.DurationMs)/1000)
		fmt.Fprintf(&b, "%s-%d.seg\n", uriBase, seg.Seq)
	}
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

// FragmentResolver supplies the per-vhost hls_fragment (in milliseconds)
// and window size, read from the live directive tree.
type FragmentResolver func(vhost string) (fragmentMs uint32, windowSize int)

// Handler serves GET /hls/{app}/{stream}.m3u8 and /hls/{app}/{stream}-{seq}.seg,
// starting a Muxer per publishing stream on demand.
type Handler struct {
	registry *sourcehub.Registry
	resolve  FragmentResolver
	logger   *slog.Logger

	mu     sync.Mutex
	muxers map[sourcehub.StreamKey]*Muxer
}

// NewHandler builds the HLS surface over the registry.
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

// ServeHTTP routes playlist and segment requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch path.Ext(r.URL.Path) {
	case ".m3u8":
		h.servePlaylist(w, r)
	case ".seg":
		h.serveSegment(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// RegisterRoutes mounts the HLS routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/hls/", h.ServeHTTP)
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

// servePlaylist answers one .m3u8 request.
func (h *Handler) servePlaylist(w http.ResponseWriter, r *http.Request) {
	key, ok := streamKeyFromPath(r.URL.Path, ".m3u8")
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m := h.muxerFor(key)
	if m == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	w.Header().Set("Cache-Control", "no-cache")
	base := strings.TrimSuffix(r.URL.Path, ".m3u8")
	fmt.Fprint(w, m.Playlist(path.Base(base)))
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
// is publishing, and reaping one whose stream has ended.
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
	h.logger.Info("hls muxer started", "stream", key.String())
	return m
}

// streamKeyFromPath parses /hls/{app}/{stream}{suffix} (two segments) or
// /hls/{vhost}/{app}/{stream}{suffix} (three).
func streamKeyFromPath(p, suffix string) (sourcehub.StreamKey, bool) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(p, "/hls/"), suffix)
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
