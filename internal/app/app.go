// If you are AI: This file wires the whole server together: directive
// config, the stream registry, the RTMP ingest listener, the HTTP
// streaming surface (HTTP-FLV, WebSocket-FLV, HLS, DASH), the HTTP API,
// forwarding, edge pulls, operator hooks, and the reload engine.

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"log/slog"

	"github.com/srsgo/srs/internal/bridge/dash"
	"github.com/srsgo/srs/internal/bridge/edge"
	"github.com/srsgo/srs/internal/bridge/hls"
	"github.com/srsgo/srs/internal/bridge/httpflv"
	"github.com/srsgo/srs/internal/bridge/rtmpio"
	"github.com/srsgo/srs/internal/bridge/wsflv"
	"github.com/srsgo/srs/internal/directive"
	"github.com/srsgo/srs/internal/hooks"
	"github.com/srsgo/srs/internal/media/consumer"
	"github.com/srsgo/srs/internal/relayforward"
	"github.com/srsgo/srs/internal/reload"
	"github.com/srsgo/srs/internal/sourcehub"
	"github.com/srsgo/srs/internal/srsconfig"
	"github.com/srsgo/srs/internal/svc/api"
	"github.com/srsgo/srs/internal/svc/health"
)

// Version is stamped into the API and the CLI banner.
const Version = "1.0.0"

const (
	sourceDisposeTTL    = 5 * time.Minute
	sourceSweepInterval = 30 * time.Second
)

// LoadTree parses, compat-transforms, and validates the config file at
// path, returning the directive tree ready for use.
func LoadTree(path string, warn func(string)) (*directive.Directive, error) {
	root, err := directive.ParseFile(path)
	if err != nil {
		return nil, err
	}
	directive.Transform(root, warn)
	if err := directive.Validate(root, path, warn); err != nil {
		return nil, err
	}
	return root, nil
}

// App owns every long-lived subsystem of one server process.
type App struct {
	configPath string
	logger     *slog.Logger

	cfg      atomic.Pointer[srsconfig.Config]
	engine   *reload.Engine
	registry *sourcehub.Registry

	rtmpServer  *rtmpio.Server
	httpServer  *http.Server
	apiServer   *http.Server
	hlsHandler  *hls.Handler
	dashHandler *dash.Handler

	forwards *relayforward.Manager
	puller   *edge.Puller
	hooks    *hooks.Manager

	sweepStop chan struct{}
}

// New builds an App from the config file at path. Nothing listens until
// Run.
func New(path string, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	warn := func(msg string) { logger.Warn(msg) }
	root, err := LoadTree(path, warn)
	if err != nil {
		return nil, err
	}

	a := &App{
		configPath: path,
		logger:     logger,
		engine:     reload.New(root),
		registry:   sourcehub.NewRegistry(),
		forwards:   relayforward.NewManager(relayforward.NewRTMPPublisher, logger),
		hooks:      hooks.NewManager(logger),
		sweepStop:  make(chan struct{}),
	}
	a.cfg.Store(srsconfig.New(root))
	a.puller = edge.NewPuller(a.registry, func(vhost string) []string {
		return a.config().ClusterOrigins(vhost)
	}, logger)

	a.rtmpServer = rtmpio.NewServer(a.registry, a.vhostConfig, logger)
	a.rtmpServer.SetEvents(a)

	a.hlsHandler = hls.NewHandler(a.registry, func(vhost string) (uint32, int) {
		cfg := a.config()
		return cfg.HLSFragmentMs(vhost), cfg.HLSWindowSegments(vhost)
	}, logger)
	a.dashHandler = dash.NewHandler(a.registry, func(vhost string) (uint32, int) {
		cfg := a.config()
		return cfg.DashFragmentMs(vhost), cfg.DashWindowSize(vhost)
	}, logger)

	streamMux := http.NewServeMux()
	wsflv.NewHandler(a.registry, logger).RegisterRoutes(streamMux)
	a.hlsHandler.RegisterRoutes(streamMux)
	a.dashHandler.RegisterRoutes(streamMux)
	httpflv.NewHandler(a.registry, logger).RegisterRoutes(streamMux)
	a.httpServer = &http.Server{Handler: streamMux}

	apiMux := http.NewServeMux()
	health.New().RegisterRoutes(apiMux)
	api.NewService(a.registry, a.forwards, Version).RegisterRoutes(apiMux)
	a.apiServer = &http.Server{Handler: apiMux}

	a.engine.Subscribe(a)
	return a, nil
}

// Hooks exposes the operator hook manager so the CLI can apply a
// descriptor file.
func (a *App) Hooks() *hooks.Manager { return a.hooks }

// config returns the live config snapshot.
func (a *App) config() *srsconfig.Config { return a.cfg.Load() }

// vhostConfig resolves the Source settings for one vhost from the live
// config.
func (a *App) vhostConfig(vhost string) sourcehub.VhostConfig {
	cfg := a.config()
	return sourcehub.VhostConfig{
		GopCacheEnabled:   cfg.GopCache(vhost),
		GopCacheMaxFrames: cfg.GopCacheMaxFrames(vhost),
		MixCorrect:        cfg.MixCorrect(vhost),
		ATC:               cfg.ATC(vhost),
		IsEdge:            cfg.VhostIsEdge(vhost),
		Puller:            a.puller,
	}
}

// JitterFor maps a vhost's time_jitter/atc settings to the consumer
// jitter algorithm its subscribers should use.
func (a *App) JitterFor(vhost string) consumer.JitterAlgorithm {
	cfg := a.config()
	if cfg.ATC(vhost) {
		return consumer.JitterOff
	}
	switch cfg.TimeJitter(vhost) {
	case "off":
		return consumer.JitterOff
	case "zero":
		return consumer.JitterZero
	default:
		return consumer.JitterFull
	}
}

// Run starts every listener and blocks until ctx is cancelled or a
// listener fails.
func (a *App) Run(ctx context.Context) error {
	cfg := a.config()

	if err := a.rtmpServer.Listen(":" + cfg.Listen()); err != nil {
		return fmt.Errorf("rtmp listen :%s: %w", cfg.Listen(), err)
	}
	a.logger.Info("rtmp server listening", "port", cfg.Listen())

	errCh := make(chan error, 3)
	go func() {
		// A rebind (listen reload) or shutdown closes the listener;
		// that accept error is not a server failure.
		if err := a.rtmpServer.Serve(); err != nil && !errors.Is(err, net.ErrClosed) {
			errCh <- err
		}
	}()

	if cfg.HTTPServerEnabled() {
		a.httpServer.Addr = ":" + cfg.HTTPServerListen()
		a.logger.Info("http stream server listening", "port", cfg.HTTPServerListen())
		go func() { errCh <- a.httpServer.ListenAndServe() }()
	}
	if cfg.HTTPAPIEnabled() {
		a.apiServer.Addr = ":" + cfg.HTTPAPIListen()
		a.logger.Info("http api listening", "port", cfg.HTTPAPIListen())
		go func() { errCh <- a.apiServer.ListenAndServe() }()
	}

	go a.sweepLoop()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

// sweepLoop evicts sources idle past the dispose window.
func (a *App) sweepLoop() {
	ticker := time.NewTicker(sourceSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.sweepStop:
			return
		case now := <-ticker.C:
			if n := a.registry.Sweep(now, sourceDisposeTTL); n > 0 {
				a.logger.Debug("disposed idle sources", "count", n)
			}
		}
	}
}

// Shutdown stops the app. graceful drains HTTP connections within
// budget; otherwise listeners are torn down immediately.
func (a *App) Shutdown(graceful bool, budget time.Duration) {
	close(a.sweepStop)
	a.rtmpServer.Close()
	a.puller.Shutdown()
	a.forwards.Stop()
	a.hlsHandler.Shutdown()
	a.dashHandler.Shutdown()

	if graceful {
		ctx, cancel := context.WithTimeout(context.Background(), budget)
		defer cancel()
		_ = a.httpServer.Shutdown(ctx)
		_ = a.apiServer.Shutdown(ctx)
		return
	}
	_ = a.httpServer.Close()
	_ = a.apiServer.Close()
}

// OnPublish starts the vhost's configured forwards and fires operator
// hooks. Implements rtmpio.SessionEvents.
func (a *App) OnPublish(key sourcehub.StreamKey) {
	cfg := a.config()
	if urls := cfg.ForwardDestinations(key.Vhost); len(urls) > 0 {
		source := a.registry.Get(key)
		if source != nil {
			if err := a.forwards.StartForwards(context.Background(), source, urls); err != nil {
				a.logger.Warn("start forwards failed", "stream", key.String(), "error", err)
			}
		}
	}
	event := hooks.NewEvent(hooks.EventOnPublish, key.Vhost, key.App, key.Stream)
	_ = a.hooks.NotifyBestEffort(context.Background(), event)
}

// OnUnpublish stops the stream's forwards and fires operator hooks.
func (a *App) OnUnpublish(key sourcehub.StreamKey) {
	a.forwards.StopStream(key.String())
	event := hooks.NewEvent(hooks.EventOnUnpublish, key.Vhost, key.App, key.Stream)
	_ = a.hooks.NotifyBestEffort(context.Background(), event)
}
