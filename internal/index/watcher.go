package index

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nicheknack/lifespeed/internal/checksum"
	"github.com/nicheknack/lifespeed/internal/journal"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted"; dir names the entry.
type EventCallback func(kind string, dir string)

// Watch starts an fsnotify watcher on entriesDir and processes change
// events until ctx is cancelled. It calls cb (if non-nil) after each
// successful index mutation.
//
// Entry directories created at runtime are added to the watch list so
// writes to their index document are seen. Rename events trigger a
// debounced reconciliation pass that repairs any divergence between
// disk and index.
func Watch(ctx context.Context, db *DB, entriesDir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(entriesDir); err != nil {
		return err
	}
	dirents, err := os.ReadDir(entriesDir)
	if err != nil {
		return err
	}
	for _, d := range dirents {
		if d.IsDir() {
			_ = w.Add(filepath.Join(entriesDir, d.Name()))
		}
	}

	logger.Info("watcher: started", slog.String("root", entriesDir))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			reconcile(db, entriesDir, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(entriesDir, ev.Name)
			if relErr != nil || strings.HasPrefix(rel, "..") {
				continue
			}
			parts := strings.Split(filepath.ToSlash(rel), "/")

			switch len(parts) {
			case 1:
				entryDir := parts[0]

				if ev.Op&fsnotify.Create != 0 {
					if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
						if addErr := w.Add(ev.Name); addErr != nil {
							logger.Warn("watcher: add new dir failed",
								slog.String("dir", entryDir),
								slog.String("error", addErr.Error()))
						}
						// Index an index document that arrived with the directory.
						if data, readErr := os.ReadFile(filepath.Join(ev.Name, journal.IndexDocument)); readErr == nil {
							if idxErr := indexEntry(db, entryDir, data); idxErr == nil {
								logger.Debug("watcher: indexed new entry", slog.String("dir", entryDir))
								if cb != nil {
									cb("created", entryDir)
								}
							}
						}
					}
					continue
				}

				if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					// The whole entry directory went away (or moved).
					if cs, _ := db.GetChecksum(entryDir); cs != "" {
						if delErr := db.DeleteEntry(entryDir); delErr == nil {
							logger.Debug("watcher: entry removed", slog.String("dir", entryDir))
							if cb != nil {
								cb("deleted", entryDir)
							}
						}
					}
					if ev.Op&fsnotify.Rename != 0 {
						scheduleReconcile()
					}
				}

			case 2:
				if parts[1] != journal.IndexDocument {
					continue
				}
				entryDir := parts[0]

				switch {
				case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
					data, readErr := os.ReadFile(ev.Name)
					if readErr != nil {
						logger.Warn("watcher: read failed", slog.String("dir", entryDir), slog.String("error", readErr.Error()))
						continue
					}
					known, _ := db.GetChecksum(entryDir)
					if known == checksum.Sum(data) {
						continue
					}
					if idxErr := indexEntry(db, entryDir, data); idxErr != nil {
						logger.Warn("watcher: index failed", slog.String("dir", entryDir), slog.String("error", idxErr.Error()))
						continue
					}
					kind := "updated"
					if known == "" {
						kind = "created"
					}
					logger.Debug("watcher: indexed", slog.String("dir", entryDir), slog.String("op", kind))
					if cb != nil {
						cb(kind, entryDir)
					}

				case ev.Op&fsnotify.Remove != 0:
					if delErr := db.DeleteEntry(entryDir); delErr == nil {
						logger.Debug("watcher: deleted", slog.String("dir", entryDir))
						if cb != nil {
							cb("deleted", entryDir)
						}
					}

				case ev.Op&fsnotify.Rename != 0:
					// fsnotify fires Rename on the old path only; the new
					// location arrives as a separate Create. Drop the old
					// entry now and reconcile shortly after.
					if delErr := db.DeleteEntry(entryDir); delErr == nil {
						if cb != nil {
							cb("deleted", entryDir)
						}
					}
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// reconcile repairs index/disk divergence after renames: stale index
// rows are removed and unseen or changed documents indexed.
func reconcile(db *DB, entriesDir string, logger *slog.Logger, cb EventCallback) {
	checksums, err := db.AllChecksums()
	if err != nil {
		logger.Warn("reconcile: all checksums failed", slog.String("error", err.Error()))
		return
	}

	dirents, err := os.ReadDir(entriesDir)
	if err != nil {
		logger.Warn("reconcile: read dir failed", slog.String("error", err.Error()))
		return
	}

	disk := make(map[string][]byte, len(dirents))
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		data, readErr := os.ReadFile(filepath.Join(entriesDir, d.Name(), journal.IndexDocument))
		if readErr != nil {
			continue
		}
		disk[d.Name()] = data
	}

	for dir := range checksums {
		if _, ok := disk[dir]; !ok {
			if delErr := db.DeleteEntry(dir); delErr == nil {
				logger.Debug("reconcile: removed stale", slog.String("dir", dir))
				if cb != nil {
					cb("deleted", dir)
				}
			}
		}
	}

	for dir, data := range disk {
		if checksums[dir] == checksum.Sum(data) {
			continue
		}
		if idxErr := indexEntry(db, dir, data); idxErr == nil {
			logger.Debug("reconcile: indexed", slog.String("dir", dir))
			if cb != nil {
				cb("created", dir)
			}
		}
	}
}
