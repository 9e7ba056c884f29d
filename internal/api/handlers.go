package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nicheknack/lifespeed/internal/apperr"
	"github.com/nicheknack/lifespeed/internal/dialog"
	"github.com/nicheknack/lifespeed/internal/index"
	"github.com/nicheknack/lifespeed/internal/journal"
	"github.com/nicheknack/lifespeed/internal/paths"
)

const maxBodyBytes = 50 << 20 // base64 payloads carry attachments

// Handler holds API route handlers.
type Handler struct {
	entriesDir string
	broker     *dialog.Broker
	db         index.EntryIndex
}

// NewHandler creates a new Handler. broker and db may be nil in tests
// that do not exercise dialogs or search.
func NewHandler(entriesDir string, broker *dialog.Broker, db index.EntryIndex) *Handler {
	return &Handler{entriesDir: entriesDir, broker: broker, db: db}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	return true
}

// DataPath handles GET /api/settings/data-path.
func (h *Handler) DataPath(w http.ResponseWriter, _ *http.Request) {
	dir, err := paths.UserDataDir()
	if err != nil {
		slog.Error("data path failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to resolve user data path"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": dir})
}

// DefaultEntriesDir handles GET /api/entries/default-dir.
func (h *Handler) DefaultEntriesDir(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"path": h.entriesDir})
}

// ListEntries handles GET /api/entries. The optional dir query
// parameter overrides the configured entries directory.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	dir := r.URL.Query().Get("dir")
	if dir == "" {
		dir = h.entriesDir
	}
	entries, err := journal.ListEntries(dir)
	if err != nil {
		slog.Error("list entries failed", slog.String("dir", dir), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to list entries"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ListDirectory handles GET /api/fs/list.
func (h *Handler) ListDirectory(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	entries, err := journal.ListDirectory(path)
	if err != nil {
		slog.Error("list directory failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read directory"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// ReadFile handles POST /api/fs/read.
func (h *Handler) ReadFile(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	content, err := journal.ReadFile(req.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		slog.Error("read file failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to read file"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"content": content})
}

// WriteFile handles POST /api/fs/write.
func (h *Handler) WriteFile(w http.ResponseWriter, r *http.Request) {
	var req WriteFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := journal.WriteFile(req.Path, req.Content); err != nil {
		slog.Error("write file failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to write file"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// FileExists handles POST /api/fs/exists.
func (h *Handler) FileExists(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"exists": journal.FileExists(req.Path)})
}

// CopyFile handles POST /api/fs/copy.
func (h *Handler) CopyFile(w http.ResponseWriter, r *http.Request) {
	var req CopyFileRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Source == "" || req.Destination == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("source and destination are required"))
		return
	}
	if err := journal.CopyFile(req.Source, req.Destination); err != nil {
		slog.Error("copy file failed", slog.String("source", req.Source), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to copy file"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenamePath handles POST /api/fs/rename.
func (h *Handler) RenamePath(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.OldPath == "" || req.NewPath == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("old_path and new_path are required"))
		return
	}
	if err := journal.RenamePath(req.OldPath, req.NewPath); err != nil {
		slog.Error("rename failed", slog.String("old_path", req.OldPath), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to rename"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteDirectory handles POST /api/fs/delete-dir.
func (h *Handler) DeleteDirectory(w http.ResponseWriter, r *http.Request) {
	var req PathRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := journal.DeleteDirectory(req.Path); err != nil {
		slog.Error("delete directory failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("failed to delete directory"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// WriteFileBase64 handles POST /api/fs/write-base64.
func (h *Handler) WriteFileBase64(w http.ResponseWriter, r *http.Request) {
	var req WriteBase64Request
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Path == "" || req.Data == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and data are required"))
		return
	}
	if err := journal.WriteFileBase64(req.Path, req.Data); err != nil {
		slog.Error("write base64 failed", slog.String("path", req.Path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, errorBody("failed to decode or write data"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.db.Search(q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if results == nil {
		results = []index.SearchResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// OpenDialog handles POST /api/dialogs/open. The call blocks until the
// presenter resolves the request.
func (h *Handler) OpenDialog(w http.ResponseWriter, r *http.Request) {
	var req OpenDialogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.presentDialog(w, r, dialog.Request{
		Kind:     dialog.KindOpen,
		Title:    req.Title,
		Filters:  req.Filters,
		Multiple: req.Multiple,
	})
}

// SaveDialog handles POST /api/dialogs/save.
func (h *Handler) SaveDialog(w http.ResponseWriter, r *http.Request) {
	var req SaveDialogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.presentDialog(w, r, dialog.Request{
		Kind:        dialog.KindSave,
		Title:       req.Title,
		DefaultName: req.DefaultName,
		Filters:     req.Filters,
	})
}

// FolderDialog handles POST /api/dialogs/folder.
func (h *Handler) FolderDialog(w http.ResponseWriter, r *http.Request) {
	var req FolderDialogRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.presentDialog(w, r, dialog.Request{
		Kind:  dialog.KindFolder,
		Title: req.Title,
	})
}

func (h *Handler) presentDialog(w http.ResponseWriter, r *http.Request, req dialog.Request) {
	res, err := h.broker.Present(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrTimeout):
			writeJSON(w, http.StatusGatewayTimeout, errorBody("dialog timed out"))
		case errors.Is(err, apperr.ErrCancelled):
			// Caller went away; nothing useful to write.
			writeJSON(w, http.StatusRequestTimeout, errorBody("request cancelled"))
		default:
			slog.Error("dialog failed", slog.String("kind", req.Kind), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ResolveDialog handles POST /api/dialogs/{id}/result, the presenter's
// side of the hand-off.
func (h *Handler) ResolveDialog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var res dialog.Result
	if !decodeBody(w, r, &res) {
		return
	}
	if err := h.broker.Resolve(id, res); err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("no pending dialog with that id"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
