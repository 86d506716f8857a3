package persistence

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// failingSource simulates a storage backend that is down.
type failingSource struct{ err error }

func (f failingSource) Name() string               { return "failing" }
func (f failingSource) ReadAll() ([]byte, error)   { return nil, f.err }
func (f failingSource) WriteAll(data []byte) error { return f.err }

func TestLoadOrEmptyMissingSource(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "graph.json"))

	s, err := LoadOrEmpty(src)
	if err != nil {
		t.Fatalf("LoadOrEmpty on missing file should not fail: %v", err)
	}
	if !s.Snapshot().IsEmpty() {
		t.Errorf("expected empty store, got %+v", s.Snapshot())
	}

	// Memory source behaves the same way
	s, err = LoadOrEmpty(NewMemorySource("mem"))
	if err != nil || s.Len() != 0 {
		t.Errorf("LoadOrEmpty(memory) = %v, %v", s, err)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	src := NewFileSource(path)
	orig := buildScenario(t)

	if err := Save(src, orig.Snapshot()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadOrEmpty(NewFileSource(path))
	if err != nil {
		t.Fatalf("LoadOrEmpty failed: %v", err)
	}
	if !loaded.Snapshot().Equal(orig.Snapshot()) {
		t.Errorf("loaded %+v, want %+v", loaded.Snapshot(), orig.Snapshot())
	}
}

func TestLoadOrEmptyMalformed(t *testing.T) {
	dir := t.TempDir()

	cases := map[string]string{
		"garbage.json":  "not json at all",
		"dangling.json": `{"nodes":["A"],"edges":[["A","B"]],"colors":[]}`,
		"orphan.json":   `{"nodes":["A"],"edges":[],"colors":[["Z","red"]]}`,
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadOrEmpty(NewFileSource(path))
			if !errors.Is(err, ErrMalformedRecord) {
				t.Errorf("LoadOrEmpty error = %v, want ErrMalformedRecord", err)
			}
		})
	}
}

func TestLoadOrEmptyStorageFailure(t *testing.T) {
	// A directory cannot be read as a file
	_, err := LoadOrEmpty(NewFileSource(t.TempDir()))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("LoadOrEmpty(dir) error = %v, want ErrStorageUnavailable", err)
	}

	_, err = LoadOrEmpty(failingSource{err: fs.ErrPermission})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("LoadOrEmpty(failing) error = %v, want ErrStorageUnavailable", err)
	}
}

func TestSaveStorageFailure(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing-dir", "graph.json"))
	err := Save(src, buildScenario(t).Snapshot())
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("Save error = %v, want ErrStorageUnavailable", err)
	}
}

func TestFileSourceAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	src := NewFileSource(path)

	if err := src.WriteAll([]byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := src.WriteAll([]byte("second")); err != nil {
		t.Fatal(err)
	}

	data, err := src.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("content = %q, want %q", data, "second")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in %s, got %d", dir, len(entries))
	}
}

func TestReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	src := NewFileSource(path)
	s := buildScenario(t)
	if err := Save(src, s.Snapshot()); err != nil {
		t.Fatal(err)
	}

	if err := Reset(src, s); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	// 1. File holds the empty record
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rec, err := Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Nodes) != 0 || len(rec.Edges) != 0 || len(rec.Colors) != 0 {
		t.Errorf("expected empty record, got %+v", rec)
	}

	// 2. In-memory colors are gone
	if len(s.Snapshot().Colors) != 0 {
		t.Errorf("colors should be cleared, got %v", s.Snapshot().Colors)
	}

	// 3. Loading now yields an empty store, not a missing-file fallback
	loaded, err := LoadOrEmpty(src)
	if err != nil || !loaded.Snapshot().IsEmpty() {
		t.Errorf("LoadOrEmpty after Reset = %+v, %v", loaded, err)
	}
}

func TestResetFailureKeepsColors(t *testing.T) {
	s := buildScenario(t)
	err := Reset(failingSource{err: fs.ErrPermission}, s)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("Reset error = %v, want ErrStorageUnavailable", err)
	}
	if c, ok := s.Color("A"); !ok || c != "#ff0000" {
		t.Error("failed Reset must not touch in-memory colors")
	}
}

func TestLoadMissingSource(t *testing.T) {
	_, err := Load(NewFileSource(filepath.Join(t.TempDir(), "nope.json")))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load error = %v, want fs.ErrNotExist", err)
	}
}

func TestSyncDir(t *testing.T) {
	if err := syncDir(t.TempDir()); err != nil {
		t.Fatalf("sync existing dir: %v", err)
	}
	if err := syncDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	// WriteAll into a missing directory fails before any rename.
	src := NewFileSource(filepath.Join(t.TempDir(), "missing", "graph.json"))
	if err := src.WriteAll([]byte("x")); err == nil {
		t.Error("expected error writing into a missing directory")
	}
}
