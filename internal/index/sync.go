package index

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nicheknack/lifespeed/internal/checksum"
	"github.com/nicheknack/lifespeed/internal/frontmatter"
	"github.com/nicheknack/lifespeed/internal/journal"
)

// Sync scans entriesDir and brings the index up to date:
//   - new/changed entry documents are parsed and upserted
//   - entries removed from disk are deleted from the index
func Sync(db *DB, entriesDir string, logger *slog.Logger) error {
	dirents, err := os.ReadDir(entriesDir)
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(dirents))
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(entriesDir, d.Name(), journal.IndexDocument))
		if err != nil {
			// Not an entry (no index document); leave it out of the index.
			continue
		}
		disk[d.Name()] = struct{}{}

		if checksums[d.Name()] == checksum.Sum(data) {
			continue
		}
		if err := indexEntry(db, d.Name(), data); err != nil {
			logger.Warn("sync: index failed", slog.String("dir", d.Name()), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("dir", d.Name()))
		}
	}

	// Remove stale entries.
	for dir := range checksums {
		if _, ok := disk[dir]; !ok {
			if err := db.DeleteEntry(dir); err != nil {
				logger.Warn("sync: delete failed", slog.String("dir", dir), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("dir", dir))
			}
		}
	}

	return nil
}

// indexEntry parses an entry document and upserts it.
func indexEntry(db *DB, dir string, data []byte) error {
	meta, body := frontmatter.Parse(data)
	title := meta.Title
	if title == "" {
		title = dir
	}
	row := EntryRow{
		Dir:       dir,
		Title:     title,
		Date:      meta.Date,
		Tags:      meta.Tags,
		Checksum:  checksum.Sum(data),
		UpdatedAt: time.Now(),
	}
	return db.UpsertEntry(row, body)
}
