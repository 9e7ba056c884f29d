// Package testutil provides shared test helpers for setting up entry
// directories and databases.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nicheknack/lifespeed/internal/index"
)

// TestDB creates a temporary SQLite database that is automatically
// cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := index.Open(dbFile)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// WriteEntry creates an entry directory with an index document under
// entriesDir and returns the document path.
func WriteEntry(t *testing.T, entriesDir, name, content string) string {
	t.Helper()
	dir := filepath.Join(entriesDir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "index.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
