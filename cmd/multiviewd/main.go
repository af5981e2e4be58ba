package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmcdole/multiview/internal/adapter"
	"github.com/mmcdole/multiview/internal/app"
	"github.com/mmcdole/multiview/internal/web"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var configFile, addr string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configFile, "config", "", "config file (default: user config dir)")
	flag.StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	flag.Parse()

	if showVersion {
		fmt.Printf("multiviewd %s\n", Version)
		return
	}

	if err := run(configFile, addr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configFile, addr string) error {
	cfg, err := adapter.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer a.Close()

	if !cfg.HasAPIKey() {
		logger.Warn("no YouTube API key configured; refresh and live search are disabled")
	}

	srv := web.NewServer(a.Streams, a.Credentials, web.Options{GridSize: cfg.UI.GridSize}, logger)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting multiviewd", "version", Version, "addr", cfg.Server.Addr)
		fmt.Fprintf(os.Stderr, "multiviewd listening on %s\n", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
