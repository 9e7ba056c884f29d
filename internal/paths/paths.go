// Package paths resolves the per-user application directories.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

// appDirName is the directory created under the platform config root.
const appDirName = "lifespeed"

// UserDataDir returns the per-user application data directory, creating
// it if needed.
func UserDataDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("paths: resolve user config dir: %w", err)
	}
	dir := filepath.Join(base, appDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("paths: create data dir: %w", err)
	}
	return dir, nil
}

// EntriesDir returns the default journal entries directory under dataDir,
// creating it if needed.
func EntriesDir(dataDir string) (string, error) {
	dir := filepath.Join(dataDir, "journal")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("paths: create entries dir: %w", err)
	}
	return dir, nil
}
