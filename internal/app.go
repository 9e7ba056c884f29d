// Package internal provides the main application initialization and
// runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/nicheknack/lifespeed/internal/api"
	"github.com/nicheknack/lifespeed/internal/dialog"
	"github.com/nicheknack/lifespeed/internal/index"
	"github.com/nicheknack/lifespeed/internal/paths"
	"github.com/nicheknack/lifespeed/internal/sse"
)

// indexFile is the default search database name inside the data dir.
const indexFile = "index.db"

// resolveDirs applies config overrides on top of the platform defaults
// and returns (dataDir, entriesDir, sqlitePath).
func resolveDirs(cfg *Config) (string, string, string, error) {
	dataDir := cfg.Journal.DataDir
	if dataDir == "" {
		var err error
		dataDir, err = paths.UserDataDir()
		if err != nil {
			return "", "", "", err
		}
	} else if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("create data dir: %w", err)
	}

	entriesDir := cfg.Journal.EntriesDir
	if entriesDir == "" {
		var err error
		entriesDir, err = paths.EntriesDir(dataDir)
		if err != nil {
			return "", "", "", err
		}
	} else if err := os.MkdirAll(entriesDir, 0o755); err != nil {
		return "", "", "", fmt.Errorf("create entries dir: %w", err)
	}

	sqlitePath := cfg.SQLite.Path
	if sqlitePath == "" {
		sqlitePath = filepath.Join(dataDir, indexFile)
	}
	return dataDir, entriesDir, sqlitePath, nil
}

// Run starts the HTTP backend with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	dataDir, entriesDir, sqlitePath, err := resolveDirs(cfg)
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", dataDir),
		slog.String("entries_dir", entriesDir),
		slog.String("sqlite_path", sqlitePath),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize search index.
	db, err := index.Open(sqlitePath)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Run initial sync.
	if err := index.Sync(db, entriesDir, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	// SSE broker for the webview event stream.
	broker := sse.NewBroker()
	defer broker.Close()

	// Dialog bridge: pending pickers are announced over SSE.
	dialogs := dialog.NewBroker(func(req dialog.Request) {
		broker.Publish(sse.Event{Type: "dialog.requested", Data: req})
	}, cfg.Dialog.Timeout())
	defer dialogs.Close()

	// Build API handler and router.
	apiHandler := api.NewHandler(entriesDir, dialogs, db)
	apiRouter := api.NewRouter(apiHandler, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the entries dir and forward changes to the webview.
	g.Go(func() error {
		if err := index.Watch(gCtx, db, entriesDir, logger, func(kind, dir string) {
			broker.PublishEntryEvent(kind, dir)
		}); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
