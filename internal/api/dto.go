package api

import "github.com/nicheknack/lifespeed/internal/dialog"

// PathRequest carries a single absolute path.
type PathRequest struct {
	Path string `json:"path"`
}

// WriteFileRequest is the body for POST /api/fs/write.
type WriteFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// CopyFileRequest is the body for POST /api/fs/copy.
type CopyFileRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// RenameRequest is the body for POST /api/fs/rename.
type RenameRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// WriteBase64Request is the body for POST /api/fs/write-base64. Data
// may carry a data-URL prefix.
type WriteBase64Request struct {
	Path string `json:"path"`
	Data string `json:"data"`
}

// OpenDialogRequest is the body for POST /api/dialogs/open.
type OpenDialogRequest struct {
	Title    string          `json:"title,omitempty"`
	Filters  []dialog.Filter `json:"filters,omitempty"`
	Multiple bool            `json:"multiple,omitempty"`
}

// SaveDialogRequest is the body for POST /api/dialogs/save.
type SaveDialogRequest struct {
	Title       string          `json:"title,omitempty"`
	DefaultName string          `json:"default_name,omitempty"`
	Filters     []dialog.Filter `json:"filters,omitempty"`
}

// FolderDialogRequest is the body for POST /api/dialogs/folder.
type FolderDialogRequest struct {
	Title string `json:"title,omitempty"`
}
