package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth
// group.
func NewRouter(h *Handler, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Settings.
	r.Get("/settings/data-path", h.DataPath)

	// Entries.
	r.Get("/entries", h.ListEntries)
	r.Get("/entries/default-dir", h.DefaultEntriesDir)

	// File-system pass-through.
	r.Get("/fs/list", h.ListDirectory)
	r.Post("/fs/read", h.ReadFile)
	r.Post("/fs/write", h.WriteFile)
	r.Post("/fs/exists", h.FileExists)
	r.Post("/fs/copy", h.CopyFile)
	r.Post("/fs/rename", h.RenamePath)
	r.Post("/fs/delete-dir", h.DeleteDirectory)
	r.Post("/fs/write-base64", h.WriteFileBase64)

	// Search.
	r.Get("/search", h.Search)

	// Dialog bridge.
	r.Post("/dialogs/open", h.OpenDialog)
	r.Post("/dialogs/save", h.SaveDialog)
	r.Post("/dialogs/folder", h.FolderDialog)
	r.Post("/dialogs/{id}/result", h.ResolveDialog)

	// SSE endpoint (same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
