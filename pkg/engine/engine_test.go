package engine

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
	"github.com/Pmariak1013/GraphVisualizer/pkg/layout"
	"github.com/Pmariak1013/GraphVisualizer/pkg/persistence"
)

func openTestEngine(t *testing.T, dir string) *Engine {
	t.Helper()
	opts := DefaultOptions(dir)
	opts.AutoSaveInterval = 0
	opts.Layout = layout.Circular{}
	eng, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func populate(t *testing.T, eng *Engine) {
	t.Helper()
	for _, n := range []string{"A", "B", "C"} {
		if err := eng.AddNode(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := eng.AddEdge("A", "B"); err != nil {
		t.Fatal(err)
	}
	if err := eng.AddEdge("B", "C"); err != nil {
		t.Fatal(err)
	}
	if err := eng.SetColor("A", "#ff0000"); err != nil {
		t.Fatal(err)
	}
}

func TestOpenEmpty(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	eng := openTestEngine(t, dir)

	if !eng.Snapshot().IsEmpty() {
		t.Errorf("expected empty graph, got %+v", eng.Snapshot())
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("data dir should have been created: %v", err)
	}
	if eng.SourceName() != filepath.Join(dir, "graph.json") {
		t.Errorf("unexpected source %q", eng.SourceName())
	}
}

func TestSaveAndReopen(t *testing.T) {
	dir := t.TempDir()

	// 1. Build and save
	eng := openTestEngine(t, dir)
	populate(t, eng)
	if eng.Dirty() == 0 {
		t.Error("mutations should mark the engine dirty")
	}
	if err := eng.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if eng.Dirty() != 0 {
		t.Error("Save should reset the dirty counter")
	}
	want := eng.Snapshot()
	eng.Close()

	// 2. Reopen
	again := openTestEngine(t, dir)
	if got := again.Snapshot(); !got.Equal(want) {
		t.Errorf("reopened graph %+v, want %+v", got, want)
	}
}

func TestOpenMalformedFile(t *testing.T) {
	dir := t.TempDir()
	bad := `{"nodes":["A"],"edges":[["A","Z"]]}`
	if err := os.WriteFile(filepath.Join(dir, "graph.json"), []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}

	opts := DefaultOptions(dir)
	opts.AutoSaveInterval = 0
	_, err := Open(opts)
	if !errors.Is(err, persistence.ErrMalformedRecord) {
		t.Errorf("Open error = %v, want ErrMalformedRecord", err)
	}
}

func TestRejectedMutations(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())
	_ = eng.AddNode("A")
	before := eng.Snapshot()
	dirty := eng.Dirty()

	calls := 0
	cancel := eng.Subscribe(func(graph.Snapshot) { calls++ })
	defer cancel()

	if err := eng.AddEdge("A", "missing"); !errors.Is(err, graph.ErrInvalidEndpoint) {
		t.Errorf("AddEdge error = %v, want ErrInvalidEndpoint", err)
	}
	if err := eng.AddEdge("A", "A"); !errors.Is(err, graph.ErrInvalidEndpoint) {
		t.Errorf("self edge error = %v, want ErrInvalidEndpoint", err)
	}
	if err := eng.SetColor("missing", "red"); !errors.Is(err, graph.ErrInvalidEndpoint) {
		t.Errorf("SetColor error = %v, want ErrInvalidEndpoint", err)
	}

	if !eng.Snapshot().Equal(before) {
		t.Error("rejected operations changed the graph")
	}
	if eng.Dirty() != dirty {
		t.Error("rejected operations should not mark the engine dirty")
	}
	if calls != 0 {
		t.Errorf("subscribers notified %d times for rejected operations", calls)
	}
}

func TestSubscribe(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())

	var got []graph.Snapshot
	cancel := eng.Subscribe(func(s graph.Snapshot) { got = append(got, s) })

	_ = eng.AddNode("A")
	_ = eng.AddNode("B")
	_ = eng.AddEdge("A", "B")
	_ = eng.RemoveNode("A")

	if len(got) != 4 {
		t.Fatalf("expected 4 notifications, got %d", len(got))
	}
	if len(got[2].Edges) != 1 {
		t.Errorf("third snapshot should contain the edge, got %+v", got[2])
	}
	last := got[3]
	if len(last.Nodes) != 1 || len(last.Edges) != 0 {
		t.Errorf("last snapshot should only hold B, got %+v", last)
	}

	cancel()
	_ = eng.AddNode("C")
	if len(got) != 4 {
		t.Error("cancelled subscriber was still called")
	}
}

func TestSaveAsAndLoad(t *testing.T) {
	dir := t.TempDir()
	eng := openTestEngine(t, dir)
	populate(t, eng)
	want := eng.Snapshot()

	// 1. Save a copy under another name
	path, err := eng.SaveAs("copy.json")
	if err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	if path != filepath.Join(dir, "copy.json") {
		t.Errorf("SaveAs path = %q", path)
	}
	if _, err := os.Stat(filepath.Join(dir, "graph.json")); !os.IsNotExist(err) {
		t.Error("SaveAs must not write the default graph file")
	}

	// 2. Wipe memory, then load the copy back
	_ = eng.Clear()
	if err := eng.Load("copy.json"); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := eng.Snapshot(); !got.Equal(want) {
		t.Errorf("loaded %+v, want %+v", got, want)
	}

	// 3. Absolute paths are used as-is
	abs := filepath.Join(t.TempDir(), "elsewhere.json")
	if p, err := eng.SaveAs(abs); err != nil || p != abs {
		t.Errorf("SaveAs(abs) = %q, %v", p, err)
	}

	if _, err := eng.SaveAs(""); err == nil {
		t.Error("SaveAs with empty name should fail")
	}
}

func TestLoadFailuresKeepGraph(t *testing.T) {
	dir := t.TempDir()
	eng := openTestEngine(t, dir)
	populate(t, eng)
	want := eng.Snapshot()

	if err := eng.Load("missing.json"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrNotFound", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"nodes":["A"],"edges":[],"colors":[["Q","red"]]}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := eng.Load("bad.json"); !errors.Is(err, persistence.ErrMalformedRecord) {
		t.Errorf("Load(bad) error = %v, want ErrMalformedRecord", err)
	}

	if !eng.Snapshot().Equal(want) {
		t.Error("failed loads must leave the graph untouched")
	}
}

func TestDeleteGraph(t *testing.T) {
	dir := t.TempDir()
	eng := openTestEngine(t, dir)
	populate(t, eng)
	if err := eng.Save(); err != nil {
		t.Fatal(err)
	}

	if err := eng.DeleteGraph(); err != nil {
		t.Fatalf("DeleteGraph failed: %v", err)
	}
	if !eng.Snapshot().IsEmpty() {
		t.Errorf("graph should be empty, got %+v", eng.Snapshot())
	}

	// File still exists and holds the empty record
	data, err := os.ReadFile(filepath.Join(dir, "graph.json"))
	if err != nil {
		t.Fatalf("graph file should still exist: %v", err)
	}
	rec, err := persistence.Unmarshal(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.Nodes) != 0 || len(rec.Edges) != 0 || len(rec.Colors) != 0 {
		t.Errorf("expected empty record, got %+v", rec)
	}
}

func TestAutoSave(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)
	opts.AutoSaveInterval = 20 * time.Millisecond
	opts.AutoSaveThreshold = 1
	eng, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	defer eng.Close()

	_ = eng.AddNode("A")

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if eng.Dirty() == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if eng.Dirty() != 0 {
		t.Fatal("auto-save did not run")
	}

	loaded, err := persistence.LoadOrEmpty(persistence.NewFileSource(filepath.Join(dir, "graph.json")))
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.HasNode("A") {
		t.Error("auto-saved file should contain A")
	}
}

func TestCloseSavesPendingChanges(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions(dir)
	opts.AutoSaveInterval = time.Hour
	eng, err := Open(opts)
	if err != nil {
		t.Fatal(err)
	}
	_ = eng.AddNode("A")
	if err := eng.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Second close is a no-op
	if err := eng.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	loaded, err := persistence.LoadOrEmpty(persistence.NewFileSource(filepath.Join(dir, "graph.json")))
	if err != nil || !loaded.HasNode("A") {
		t.Errorf("Close should have saved pending changes: %v", err)
	}
}

func TestLayout(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())
	populate(t, eng)

	snap, pos := eng.Layout()
	if len(pos) != len(snap.Nodes) {
		t.Fatalf("expected %d positions, got %d", len(snap.Nodes), len(pos))
	}
	for _, n := range snap.Nodes {
		if _, ok := pos[n]; !ok {
			t.Errorf("missing position for %q", n)
		}
	}
}

func TestConcurrentMutations(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())
	_ = eng.AddNode("hub")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = eng.AddNode(key)
			_ = eng.AddEdge("hub", key)
			_ = eng.SetColor(key, "red")
			_ = eng.Snapshot()
		}(i)
	}
	wg.Wait()

	snap := eng.Snapshot()
	if len(snap.Nodes) != 9 || len(snap.Edges) != 8 || len(snap.Colors) != 8 {
		t.Errorf("unexpected final state: %d nodes, %d edges, %d colors", len(snap.Nodes), len(snap.Edges), len(snap.Colors))
	}
}

func TestCheckLocalName(t *testing.T) {
	tests := []struct {
		name string
		ok   bool
	}{
		{"graph.json", true},
		{"sub/graph.json", true},
		{"", false},
		{"../graph.json", false},
		{"sub/../../graph.json", false},
		{"/etc/passwd", false},
	}
	for _, tt := range tests {
		err := CheckLocalName(tt.name)
		if tt.ok && err != nil {
			t.Errorf("CheckLocalName(%q) = %v, want nil", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidName) {
			t.Errorf("CheckLocalName(%q) = %v, want ErrInvalidName", tt.name, err)
		}
	}
}

func TestNoOpMutationsStayClean(t *testing.T) {
	eng := openTestEngine(t, t.TempDir())
	if err := eng.Clear(); err != nil {
		t.Fatal(err)
	}
	populate(t, eng)
	if err := eng.Save(); err != nil {
		t.Fatal(err)
	}

	calls := 0
	cancel := eng.Subscribe(func(graph.Snapshot) { calls++ })
	defer cancel()

	noops := []func() error{
		func() error { return eng.AddNode("A") },
		func() error { return eng.RemoveNode("missing") },
		func() error { return eng.AddEdge("B", "A") },
		func() error { return eng.RemoveEdge("A", "C") },
		func() error { return eng.SetColor("A", "#ff0000") },
	}
	for i, op := range noops {
		if err := op(); err != nil {
			t.Fatalf("no-op %d failed: %v", i, err)
		}
	}
	if eng.Dirty() != 0 {
		t.Errorf("no-op mutations marked the engine dirty (%d)", eng.Dirty())
	}
	if calls != 0 {
		t.Errorf("subscribers notified %d times for no-op mutations", calls)
	}

	// A real change still counts
	if err := eng.SetColor("A", "blue"); err != nil {
		t.Fatal(err)
	}
	if eng.Dirty() != 1 || calls != 1 {
		t.Errorf("dirty = %d, calls = %d after a real change", eng.Dirty(), calls)
	}
}
