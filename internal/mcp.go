package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nicheknack/lifespeed/internal/index"
	"github.com/nicheknack/lifespeed/internal/mcpserver"
)

// RunMCP starts the stdio MCP server with the given options. Logs go
// to stderr: stdout belongs to the MCP transport.
func RunMCP(_ context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	_, entriesDir, sqlitePath, err := resolveDirs(cfg)
	if err != nil {
		return err
	}

	db, err := index.Open(sqlitePath)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	if err := index.Sync(db, entriesDir, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP server starting", slog.String("entries_dir", entriesDir))

	srv := mcpserver.New(entriesDir, db)
	return srv.ServeStdio()
}
