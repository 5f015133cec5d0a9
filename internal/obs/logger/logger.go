// If you are AI: this file owns the server-wide structured logger: a
// dynamic level settable from flag/env/directive, and a console-or-file
// sink that can be reopened in place on SIGUSR1 without restarting.
package logger

import (
	"errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// envLogLevel is checked when no -log.level flag is present.
const envLogLevel = "SRS_LOG_LEVEL"

var (
	atomicLevel = &dynamicLevel{v: int64(slog.LevelInfo)}

	mu       sync.Mutex
	global   *slog.Logger
	sinkFile *os.File // non-nil only when tank == "file"
	tank     = "console"
	filePath string

	initOnce sync.Once

	flagLevel = flag.String("log.level", "", "log level (trace, verbose, info, warn, error)")
)

// dynamicLevel is an atomic slog.Leveler, adjustable at runtime via
// SetLevel (wired to the srs_log_level directive on reload).
type dynamicLevel struct{ v int64 }

// Level implements slog.Leveler.
func (d *dynamicLevel) Level() slog.Level { return slog.Level(atomic.LoadInt64(&d.v)) }
// set stores a new level atomically.
func (d *dynamicLevel) set(l slog.Level)  { atomic.StoreInt64(&d.v, int64(l)) }

// Init builds the global logger from the initial level precedence:
// -log.level flag, then SRS_LOG_LEVEL env var, then info.
func Init() {
	initOnce.Do(func() {
		atomicLevel.set(detectLevel())
		mu.Lock()
		defer mu.Unlock()
		global = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: atomicLevel}))
	})
}

// detectLevel resolves the startup level from flag then env.
func detectLevel() slog.Level {
	if *flagLevel == "" {
		for _, arg := range os.Args[1:] {
			if strings.HasPrefix(arg, "-log.level=") {
				parts := strings.SplitN(arg, "=", 2)
				if len(parts) == 2 {
					*flagLevel = parts[1]
				}
			}
		}
	}
	if s := strings.TrimSpace(*flagLevel); s != "" {
		if lvl, ok := parseLevel(s); ok {
			return lvl
		}
	}
	if env := os.Getenv(envLogLevel); env != "" {
		if lvl, ok := parseLevel(env); ok {
			return lvl
		}
	}
	return slog.LevelInfo
}

// parseLevel accepts both Go-style and SRS-style (srs_log_level) spellings:
// trace/verbose collapse onto Debug, there being no finer slog level.
func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace", "verbose":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error", "err":
		return slog.LevelError, true
	}
	return 0, false
}

// SetLevel changes the runtime level. Driven by the srs_log_level
// directive's reload notification.
func SetLevel(level string) error {
	Init()
	lvl, ok := parseLevel(level)
	if !ok {
		return errors.New("invalid log level: " + level)
	}
	atomicLevel.set(lvl)
	return nil
}

// Level returns the active level name.
func Level() string { Init(); return atomicLevel.Level().String() }

// Configure wires the srs_log_tank / srs_log_file directives: tank is
// "console" or "file"; path is ignored when tank is "console".
func Configure(tankArg, path string) error {
	Init()
	mu.Lock()
	defer mu.Unlock()
	tank = tankArg
	filePath = path
	return configureLocked()
}

// Reopen closes and reopens the active log file by path (created if
// missing, appended to otherwise), the response to SIGUSR1, matching log
// rotation tools that move the old file aside before signaling the server.
func Reopen() error {
	mu.Lock()
	defer mu.Unlock()
	if tank != "file" {
		return nil
	}
	return configureLocked()
}

// configureLocked rebuilds the handler for the current tank/path.
func configureLocked() error {
	if sinkFile != nil {
		_ = sinkFile.Close()
		sinkFile = nil
	}
	var w io.Writer = os.Stdout
	if tank == "file" {
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		sinkFile = f
		w = f
	}
	global = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: atomicLevel}))
	return nil
}

// UseWriter swaps the output writer directly, for tests.
func UseWriter(w io.Writer) {
	Init()
	mu.Lock()
	defer mu.Unlock()
	global = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: atomicLevel}))
}

// Logger returns the process-wide logger.
func Logger() *slog.Logger {
	Init()
	mu.Lock()
	defer mu.Unlock()
	return global
}

// Debug logs at debug level on the global logger.
func Debug(msg string, args ...any) { Logger().Debug(msg, args...) }
// Info logs at info level on the global logger.
func Info(msg string, args ...any)  { Logger().Info(msg, args...) }
// Warn logs at warn level on the global logger.
func Warn(msg string, args ...any)  { Logger().Warn(msg, args...) }
// Error logs at error level on the global logger.
func Error(msg string, args ...any) { Logger().Error(msg, args...) }

// WithConn attaches connection identity fields.
func WithConn(l *slog.Logger, connID, peerAddr string) *slog.Logger {
	return l.With("conn_id", connID, "peer_addr", peerAddr)
}

// WithStream attaches the (vhost, app, stream) key as a single field.
func WithStream(l *slog.Logger, streamKey string) *slog.Logger {
	return l.With("stream_key", streamKey)
}

// WithSource attaches the source's current role (idle, publishing, edge).
func WithSource(l *slog.Logger, streamKey, role string) *slog.Logger {
	return l.With("stream_key", streamKey, "role", role)
}
