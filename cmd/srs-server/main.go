// If you are AI: This is the main entrypoint for the srs-server binary.
// It parses the CLI surface, loads and validates the directive config,
// wires the app, and drives the signal loop: SIGHUP reloads the config,
// SIGUSR1 reopens the log file, SIGTERM quits fast, SIGQUIT drains
// gracefully.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srsgo/srs/internal/app"
	"github.com/srsgo/srs/internal/hooks"
	"github.com/srsgo/srs/internal/obs/logger"
	"github.com/srsgo/srs/internal/srsconfig"
)

const signature = "SRSGO/" + app.Version

const gracefulQuitBudget = 15 * time.Second

// main delegates to run so tests and the process share one path.
func main() {
	os.Exit(run(os.Args))
}

// run executes the CLI: immediate flags first, then server mode under
// the signal loop.
func run(argv []string) int {
	opts, err := parseArgs(argv[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	switch {
	case opts.showHelp:
		fmt.Print(usage(argv[0]))
		return 0
	case opts.showVersion:
		fmt.Println(app.Version)
		return 0
	case opts.showSignature:
		fmt.Println(signature)
		return 0
	}

	configPath, err := resolveConfig(opts.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	logger.Init()
	log := logger.Logger()

	if opts.testConfig {
		if _, err := app.LoadTree(configPath, func(msg string) { fmt.Fprintln(os.Stderr, msg) }); err != nil {
			fmt.Fprintf(os.Stderr, "config test failed: %v\n", err)
			return 1
		}
		fmt.Printf("config file %s test is successful\n", configPath)
		return 0
	}

	a, err := app.New(configPath, log)
	if err != nil {
		log.Error("startup failed", "error", err)
		return 1
	}

	// The log sink follows the directive tree from the first moment.
	if root, err := app.LoadTree(configPath, nil); err == nil {
		cfg := srsconfig.New(root)
		if err := logger.SetLevel(cfg.LogLevel()); err != nil {
			log.Warn("invalid srs_log_level, keeping default", "error", err)
		}
		if err := logger.Configure(cfg.LogTank(), cfg.LogFile()); err != nil {
			log.Error("log sink setup failed", "error", err)
			return 1
		}
		log = logger.Logger()
	}

	if opts.hooksPath != "" {
		desc, err := hooks.LoadDescriptor(opts.hooksPath)
		if err != nil {
			log.Error("hooks descriptor failed", "error", err)
			return 1
		}
		if err := desc.ApplyTo(a.Hooks()); err != nil {
			log.Error("hooks descriptor failed", "error", err)
			return 1
		}
		log.Info("operator hooks loaded", "path", opts.hooksPath)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run(ctx) }()

	sigCh := make(chan os.Signal, 4)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGUSR1, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)

	for {
		select {
		case err := <-errCh:
			if err != nil {
				log.Error("server failed", "error", err)
				a.Shutdown(false, 0)
				return 1
			}
			return 0
		case sig := <-sigCh:
			switch sig {
			case syscall.SIGHUP:
				if err := a.Reload(); err != nil {
					log.Warn("reload rejected, keeping active config", "error", err)
				}
			case syscall.SIGUSR1:
				if err := logger.Reopen(); err != nil {
					log.Warn("log reopen failed", "error", err)
				}
			case syscall.SIGTERM, os.Interrupt:
				log.Info("fast quit", "signal", sig.String())
				cancel()
				a.Shutdown(false, 0)
				return 0
			case syscall.SIGQUIT:
				log.Info("graceful quit", "signal", sig.String())
				cancel()
				a.Shutdown(true, gracefulQuitBudget)
				return 0
			}
		}
	}
}
