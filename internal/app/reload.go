// If you are AI: This file is the app's reload surface: Reload re-parses
// the config file and drives the engine's diff/notify cycle; OnReload
// applies each notification to the running subsystems. Because the
// stream/bridger resolvers read the live config on every call, most
// vhost-level notifications need nothing beyond a log line — the next
// packet or request sees the new values.

package app

import (
	"github.com/srsgo/srs/internal/obs/logger"
	"github.com/srsgo/srs/internal/reload"
	"github.com/srsgo/srs/internal/srsconfig"
)

// Reload re-reads the config file and applies the difference against the
// running tree. On any error the previous config stays active.
func (a *App) Reload() error {
	warn := func(msg string) { a.logger.Warn(msg) }
	root, err := LoadTree(a.configPath, warn)
	if err != nil {
		return err
	}
	if err := a.engine.Reload(root); err != nil {
		return err
	}
	a.cfg.Store(srsconfig.New(a.engine.Current()))
	a.logger.Info("config reloaded", "path", a.configPath)
	return nil
}

// OnReload applies one config-change notification. Implements
// reload.Subscriber.
func (a *App) OnReload(n reload.Notification) error {
	// The engine has already committed the new tree; read values from it.
	cfg := srsconfig.New(a.engine.Current())

	switch n.Kind {
	case reload.KindLogLevel:
		if err := logger.SetLevel(cfg.LogLevel()); err != nil {
			return err
		}
		a.logger.Info("log level reloaded", "level", cfg.LogLevel())
	case reload.KindLogTank, reload.KindLogFile:
		if err := logger.Configure(cfg.LogTank(), cfg.LogFile()); err != nil {
			return err
		}
	case reload.KindListen:
		// The RTMP listener rebinds; in-flight sessions keep their
		// established connections.
		a.rtmpServer.Close()
		if err := a.rtmpServer.Listen(":" + cfg.Listen()); err != nil {
			return err
		}
		go a.rtmpServer.Serve()
		a.logger.Info("rtmp listener rebound", "port", cfg.Listen())
	case reload.KindMaxConnections:
		a.logger.Info("max_connections reloaded", "value", cfg.MaxConnections())
	case reload.KindPithyPrintMs:
		a.logger.Info("pithy_print_ms reloaded", "value", cfg.PithyPrintMs())
	case reload.KindVhostForward:
		// Active forwards for the changed vhost restart on the next
		// publish; already-running tasks for removed destinations drain
		// when their stream unpublishes.
		a.logger.Info("vhost forward reloaded", "vhost", n.Vhost)
	default:
		a.logger.Info("config notification applied", "kind", string(n.Kind), "vhost", n.Vhost, "arg", n.Arg)
	}
	return nil
}
