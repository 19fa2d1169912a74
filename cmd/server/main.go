package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/hperssn/quickshower/internal/config"
	httpapi "github.com/hperssn/quickshower/internal/http"
	"github.com/hperssn/quickshower/internal/logging"
	"github.com/hperssn/quickshower/internal/runner"
	"github.com/hperssn/quickshower/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	repo, err := storage.Open(cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return err
	}
	defer repo.Close()

	recorder := storage.NewRecorder(repo)
	defer recorder.Close()

	clock := clockwork.NewRealClock()
	manager := runner.NewSessionManager(runner.Config{
		Clock:         clock,
		FrameInterval: cfg.FrameInterval,
		ResetDuration: cfg.ResetDuration,
		IdleTTL:       cfg.SessionIdleTTL,
		Recorder:      recorder,
	})
	// sessions must stop emitting before the recorder closes
	defer manager.Close()

	srv := httpapi.NewServer(manager, repo, clock, httpapi.SessionDefaults{
		Direction:   cfg.DefaultDirection(),
		AutoAdvance: cfg.AutoAdvance,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// unmount first so open SSE and WebSocket streams end
	manager.Close()
	return httpServer.Shutdown(shutdownCtx)
}
