// Package journal implements the file-system operations the webview
// front end invokes: plain file access plus entry listing with
// frontmatter metadata. Paths are absolute and supplied by the caller;
// every operation is a stateless projection of on-disk state.
package journal

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DirEntry is one row of a directory listing.
type DirEntry struct {
	Name    string `json:"name"`
	IsDir   bool   `json:"is_dir"`
	MtimeMs int64  `json:"mtime_ms"`
}

// ReadFile returns the text content of the file at path.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("journal: read file: %w", err)
	}
	return string(data), nil
}

// WriteFile writes content to path, creating parent directories first.
func WriteFile(path, content string) error {
	return writeAtomic(path, []byte(content))
}

// FileExists reports whether path exists. It never errors; an
// unreadable path counts as absent.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ListDirectory returns the entries of the directory at path. A missing
// directory is created and an empty listing returned.
func ListDirectory(path string) ([]DirEntry, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("journal: create directory: %w", err)
		}
		return []DirEntry{}, nil
	}

	dirents, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("journal: read directory: %w", err)
	}
	out := make([]DirEntry, 0, len(dirents))
	for _, d := range dirents {
		var mtime int64
		if info, err := d.Info(); err == nil {
			mtime = info.ModTime().UnixMilli()
		}
		out = append(out, DirEntry{
			Name:    d.Name(),
			IsDir:   d.IsDir(),
			MtimeMs: mtime,
		})
	}
	return out, nil
}

// DeleteDirectory removes the directory at path and everything under it.
func DeleteDirectory(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("journal: delete directory: %w", err)
	}
	return nil
}

// RenamePath renames a file or directory.
func RenamePath(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("journal: rename: %w", err)
	}
	return nil
}

// CopyFile copies source to destination, creating destination parent
// directories first.
func CopyFile(source, destination string) error {
	data, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("journal: copy read: %w", err)
	}
	return writeAtomic(destination, data)
}

// WriteFileBase64 decodes base64 data and writes the bytes to path.
// A data-URL prefix ("data:image/png;base64,") is stripped if present.
func WriteFileBase64(path, data string) error {
	if i := strings.IndexByte(data, ','); i >= 0 {
		data = data[i+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return fmt.Errorf("journal: decode base64: %w", err)
	}
	return writeAtomic(path, raw)
}

// writeAtomic writes data via tmp file, fsync, and rename so a crash
// never leaves a half-written document behind.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("journal: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".lifespeed-tmp-*")
	if err != nil {
		return fmt.Errorf("journal: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("journal: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("journal: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("journal: close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("journal: rename temp: %w", err)
	}
	success = true
	return nil
}
