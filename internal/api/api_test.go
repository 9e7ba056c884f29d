package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nicheknack/lifespeed/internal/dialog"
	"github.com/nicheknack/lifespeed/internal/index"
	"github.com/nicheknack/lifespeed/internal/journal"
	"github.com/nicheknack/lifespeed/internal/testutil"
)

// testEnv sets up a temp entries dir, SQLite DB, dialog broker, and
// router. A non-empty authToken enables Bearer auth.
func testEnv(t *testing.T, authToken string) (string, *dialog.Broker, *index.DB, http.Handler) {
	t.Helper()

	entriesDir := t.TempDir()
	db := testutil.TestDB(t)

	broker := dialog.NewBroker(nil, 5*time.Second)
	h := NewHandler(entriesDir, broker, db)
	router := NewRouter(h, authToken != "", authToken, nil)
	return entriesDir, broker, db, router
}

func doJSON(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func TestFileWriteReadExists(t *testing.T) {
	_, _, _, router := testEnv(t, "")
	path := filepath.Join(t.TempDir(), "note.md")

	w := doJSON(t, router, http.MethodPost, "/fs/write", WriteFileRequest{Path: path, Content: "hello"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("write status = %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/fs/read", PathRequest{Path: path})
	if w.Code != http.StatusOK {
		t.Fatalf("read status = %d", w.Code)
	}
	resp := decode[map[string]string](t, w)
	if resp["content"] != "hello" {
		t.Errorf("content = %q", resp["content"])
	}

	w = doJSON(t, router, http.MethodPost, "/fs/exists", PathRequest{Path: path})
	if got := decode[map[string]bool](t, w); !got["exists"] {
		t.Error("exists = false, want true")
	}
}

func TestReadMissingFile(t *testing.T) {
	_, _, _, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/fs/read", PathRequest{Path: filepath.Join(t.TempDir(), "no.md")})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestListDirectoryCreatesMissing(t *testing.T) {
	_, _, _, router := testEnv(t, "")
	dir := filepath.Join(t.TempDir(), "fresh")

	req := httptest.NewRequest(http.MethodGet, "/fs/list?path="+dir, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[map[string][]journal.DirEntry](t, w)
	if len(resp["entries"]) != 0 {
		t.Errorf("entries = %v, want empty", resp["entries"])
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}

func TestCopyRenameDelete(t *testing.T) {
	_, _, _, router := testEnv(t, "")
	root := t.TempDir()
	src := filepath.Join(root, "src.md")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	dst := filepath.Join(root, "copy", "dst.md")
	if w := doJSON(t, router, http.MethodPost, "/fs/copy", CopyFileRequest{Source: src, Destination: dst}); w.Code != http.StatusNoContent {
		t.Fatalf("copy status = %d", w.Code)
	}

	moved := filepath.Join(root, "moved.md")
	if w := doJSON(t, router, http.MethodPost, "/fs/rename", RenameRequest{OldPath: dst, NewPath: moved}); w.Code != http.StatusNoContent {
		t.Fatalf("rename status = %d", w.Code)
	}
	if _, err := os.Stat(moved); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}

	victim := filepath.Join(root, "copy")
	if w := doJSON(t, router, http.MethodPost, "/fs/delete-dir", PathRequest{Path: victim}); w.Code != http.StatusNoContent {
		t.Fatalf("delete-dir status = %d", w.Code)
	}
	if _, err := os.Stat(victim); !os.IsNotExist(err) {
		t.Error("directory still exists")
	}
}

func TestWriteBase64(t *testing.T) {
	_, _, _, router := testEnv(t, "")
	path := filepath.Join(t.TempDir(), "pic.png")
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte{1, 2, 3})

	if w := doJSON(t, router, http.MethodPost, "/fs/write-base64", WriteBase64Request{Path: path, Data: data}); w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	got, err := os.ReadFile(path)
	if err != nil || !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("bytes = %v, err %v", got, err)
	}

	if w := doJSON(t, router, http.MethodPost, "/fs/write-base64", WriteBase64Request{Path: path, Data: "%%%"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid data status = %d, want 400", w.Code)
	}
}

func TestListEntriesEndpoint(t *testing.T) {
	entriesDir, _, _, router := testEnv(t, "")
	testutil.WriteEntry(t, entriesDir, "2025-06-01",
		"---\ntitle: June\ndate: 2025-06-01\ntags: [summer]\n---\nWarm day.\n")

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[map[string][]journal.EntryMeta](t, w)
	entries := resp["entries"]
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Title != "June" || entries[0].Excerpt != "Warm day." {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestDefaultEntriesDirAndDataPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	entriesDir, _, _, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodGet, "/entries/default-dir", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if got := decode[map[string]string](t, w); got["path"] != entriesDir {
		t.Errorf("default dir = %q, want %q", got["path"], entriesDir)
	}

	req = httptest.NewRequest(http.MethodGet, "/settings/data-path", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("data-path status = %d", w.Code)
	}
	if got := decode[map[string]string](t, w); got["path"] == "" {
		t.Error("data path empty")
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, _, db, router := testEnv(t, "")
	_ = db.UpsertEntry(index.EntryRow{Dir: "hike", Title: "Hike", Checksum: "1", UpdatedAt: time.Now()}, "Walked the ridge.")

	req := httptest.NewRequest(http.MethodGet, "/search?q=ridge", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[map[string][]index.SearchResult](t, w)
	if len(resp["results"]) != 1 || resp["results"][0].Dir != "hike" {
		t.Errorf("results = %v", resp["results"])
	}

	req = httptest.NewRequest(http.MethodGet, "/search", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q status = %d, want 400", w.Code)
	}
}

func TestDialogRoundTrip(t *testing.T) {
	entriesDir := t.TempDir()
	db := testutil.TestDB(t)

	var mu sync.Mutex
	var pending dialog.Request
	announced := make(chan struct{}, 1)
	broker := dialog.NewBroker(func(r dialog.Request) {
		mu.Lock()
		pending = r
		mu.Unlock()
		announced <- struct{}{}
	}, 5*time.Second)

	h := NewHandler(entriesDir, broker, db)
	router := NewRouter(h, false, "", nil)

	type result struct {
		code int
		body dialog.Result
	}
	done := make(chan result, 1)
	go func() {
		w := doJSON(t, router, http.MethodPost, "/dialogs/open", OpenDialogRequest{Title: "Pick", Multiple: true})
		var res dialog.Result
		_ = json.Unmarshal(w.Body.Bytes(), &res)
		done <- result{code: w.Code, body: res}
	}()

	select {
	case <-announced:
	case <-time.After(2 * time.Second):
		t.Fatal("dialog never announced")
	}

	mu.Lock()
	id := pending.ID
	mu.Unlock()

	w := doJSON(t, router, http.MethodPost, "/dialogs/"+id+"/result",
		dialog.Result{Paths: []string{"/tmp/a.md", "/tmp/b.md"}})
	if w.Code != http.StatusNoContent {
		t.Fatalf("resolve status = %d: %s", w.Code, w.Body.String())
	}

	select {
	case r := <-done:
		if r.code != http.StatusOK {
			t.Fatalf("dialog status = %d", r.code)
		}
		if r.body.Cancelled || len(r.body.Paths) != 2 {
			t.Errorf("result = %+v", r.body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("dialog call did not return")
	}
}

func TestResolveUnknownDialog(t *testing.T) {
	_, _, _, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/dialogs/bogus/result", dialog.Result{Cancelled: true})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, _, _, router := testEnv(t, "secret")

	req := httptest.NewRequest(http.MethodGet, "/entries", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/entries", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token status = %d, want 200", w.Code)
	}
}
