package index

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(dbFile)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUpsertAndChecksum(t *testing.T) {
	db := testDB(t)

	row := EntryRow{Dir: "2025-03-14", Title: "Pi day", Date: "2025-03-14", Tags: []string{"math"}, Checksum: "abc", UpdatedAt: time.Now()}
	if err := db.UpsertEntry(row, "Baked a pie."); err != nil {
		t.Fatalf("UpsertEntry: %v", err)
	}

	cs, err := db.GetChecksum("2025-03-14")
	if err != nil || cs != "abc" {
		t.Errorf("checksum = %q, err %v", cs, err)
	}

	row.Checksum = "def"
	if err := db.UpsertEntry(row, "Updated."); err != nil {
		t.Fatalf("UpsertEntry again: %v", err)
	}
	cs, _ = db.GetChecksum("2025-03-14")
	if cs != "def" {
		t.Errorf("checksum after upsert = %q", cs)
	}
}

func TestDeleteEntry(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Dir: "gone", Checksum: "x", UpdatedAt: time.Now()}, "body")
	if err := db.DeleteEntry("gone"); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if cs, _ := db.GetChecksum("gone"); cs != "" {
		t.Errorf("checksum = %q after delete", cs)
	}
}

func TestAllChecksums(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Dir: "a", Checksum: "1", UpdatedAt: time.Now()}, "")
	_ = db.UpsertEntry(EntryRow{Dir: "b", Checksum: "2", UpdatedAt: time.Now()}, "")

	all, err := db.AllChecksums()
	if err != nil {
		t.Fatalf("AllChecksums: %v", err)
	}
	if len(all) != 2 || all["a"] != "1" || all["b"] != "2" {
		t.Errorf("all = %v", all)
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertEntry(EntryRow{Dir: "hike", Title: "Mountain hike", Checksum: "1", UpdatedAt: time.Now()}, "Walked up the ridge before sunrise.")
	_ = db.UpsertEntry(EntryRow{Dir: "cook", Title: "Dinner", Checksum: "2", UpdatedAt: time.Now()}, "Made soup.")

	results, err := db.Search("ridge", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Dir != "hike" {
		t.Errorf("results = %v", results)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()

	write := func(dir, content string) {
		t.Helper()
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(root, dir, "index.md"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("one", "---\ntitle: One\n---\nfirst entry\n")
	write("two", "---\ntitle: Two\n---\nsecond entry\n")

	if err := Sync(db, root, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 2 {
		t.Fatalf("indexed = %d, want 2", len(all))
	}

	// Remove one entry, change the other, re-sync.
	if err := os.RemoveAll(filepath.Join(root, "two")); err != nil {
		t.Fatal(err)
	}
	write("one", "---\ntitle: One updated\n---\nchanged\n")

	if err := Sync(db, root, discardLogger()); err != nil {
		t.Fatalf("Sync again: %v", err)
	}
	all, _ = db.AllChecksums()
	if len(all) != 1 {
		t.Errorf("indexed = %d, want 1", len(all))
	}

	results, err := db.Search("changed", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Title != "One updated" {
		t.Errorf("results = %v", results)
	}
}

func TestSync_SkipsDirsWithoutIndexDocument(t *testing.T) {
	db := testDB(t)
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "not-an-entry"), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := Sync(db, root, discardLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	all, _ := db.AllChecksums()
	if len(all) != 0 {
		t.Errorf("indexed = %d, want 0", len(all))
	}
}
