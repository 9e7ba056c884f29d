// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes journal tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nicheknack/lifespeed/internal/index"
	"github.com/nicheknack/lifespeed/internal/journal"
)

// Server wraps the MCP server with journal tools.
type Server struct {
	mcp        *server.MCPServer
	entriesDir string
	db         *index.DB
}

// New creates a new MCP server with all journal tools registered.
func New(entriesDir string, db *index.DB) *Server {
	s := &Server{entriesDir: entriesDir, db: db}

	s.mcp = server.NewMCPServer(
		"Lifespeed",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_entries",
		mcp.WithDescription("List journal entries with their frontmatter metadata, newest first."),
	), s.listEntries)

	s.mcp.AddTool(mcp.NewTool("read_entry",
		mcp.WithDescription("Read the full text of a journal entry."),
		mcp.WithString("dir", mcp.Required(), mcp.Description("Entry directory name (e.g. 2025-06-01)")),
	), s.readEntry)

	s.mcp.AddTool(mcp.NewTool("write_entry",
		mcp.WithDescription("Create or replace a journal entry. Content should start with a "+
			"frontmatter block (--- delimited) carrying title, date, and tags."),
		mcp.WithString("dir", mcp.Required(), mcp.Description("Entry directory name")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Entry document content")),
	), s.writeEntry)

	s.mcp.AddTool(mcp.NewTool("search_entries",
		mcp.WithDescription("Full-text search through entry titles, tags, and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchEntries)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// entryPath resolves an entry directory name to its index document,
// rejecting anything that is not a plain directory name.
func (s *Server) entryPath(dir string) (string, error) {
	cleaned := filepath.Clean(dir)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") || cleaned == "." {
		return "", fmt.Errorf("invalid entry name: %s", dir)
	}
	return filepath.Join(s.entriesDir, cleaned, journal.IndexDocument), nil
}

func (s *Server) listEntries(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := journal.ListEntries(s.entriesDir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.entryPath(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := journal.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", dir)), nil
	}
	return mcp.NewToolResultText(content), nil
}

func (s *Server) writeEntry(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	dir, err := req.RequireString("dir")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	path, err := s.entryPath(dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := journal.WriteFile(path, content); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	// Keep search current; the HTTP watcher is not running in stdio mode.
	if err := index.Sync(s.db, s.entriesDir, slog.Default()); err != nil {
		slog.Warn("mcp: index sync failed", slog.String("error", err.Error()))
	}
	return mcp.NewToolResultText(fmt.Sprintf("wrote %s", dir)), nil
}

func (s *Server) searchEntries(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.db.Search(query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(results, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
