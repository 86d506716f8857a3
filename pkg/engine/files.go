package engine

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Pmariak1013/GraphVisualizer/pkg/metrics"
	"github.com/Pmariak1013/GraphVisualizer/pkg/persistence"
)

var (
	// ErrNotFound is returned by Load when the requested graph file does not exist.
	ErrNotFound = errors.New("graph file not found")
	// ErrInvalidName is returned by CheckLocalName for names that leave DataDir.
	ErrInvalidName = errors.New("invalid graph file name")
)

// CheckLocalName accepts only non-empty names that stay inside DataDir, as
// defined by filepath.IsLocal. Network surfaces call it before SaveAs and
// Load; library callers may still pass absolute paths.
func CheckLocalName(name string) error {
	if !filepath.IsLocal(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return nil
}

// Save writes the current graph to the default graph file.
func (e *Engine) Save() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := persistence.Save(e.source, e.store.Snapshot())
	metrics.PersistenceOpsTotal.WithLabelValues("save", metrics.Result(err)).Inc()
	if err != nil {
		return err
	}

	atomic.StoreInt64(&e.dirtyCounter, 0)
	e.lastSaveTime = time.Now()
	slog.Info("Graph saved", "source", e.source.Name())
	return nil
}

// SaveAs writes the current graph to name and returns the resolved path.
// Relative names are placed inside DataDir. The default graph file stays the
// target of Save.
func (e *Engine) SaveAs(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("save as: no filename provided")
	}
	path := e.resolve(name)

	e.mu.Lock()
	defer e.mu.Unlock()

	err := persistence.Save(persistence.NewFileSource(path), e.store.Snapshot())
	metrics.PersistenceOpsTotal.WithLabelValues("save_as", metrics.Result(err)).Inc()
	if err != nil {
		return "", err
	}
	slog.Info("Graph saved as", "path", path)
	return path, nil
}

// Load replaces the in-memory graph with the content of name. On any failure,
// including a missing file, the current graph is kept.
func (e *Engine) Load(name string) error {
	if name == "" {
		return fmt.Errorf("load: no filename provided")
	}
	path := e.resolve(name)

	store, err := persistence.Load(persistence.NewFileSource(path))
	metrics.PersistenceOpsTotal.WithLabelValues("load", metrics.Result(err)).Inc()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", path, ErrNotFound)
		}
		return err
	}

	e.mu.Lock()
	e.store = store
	atomic.AddInt64(&e.dirtyCounter, 1)
	e.updateGauges()
	snap := e.store.Snapshot()
	e.mu.Unlock()

	e.notify(snap)
	return nil
}

// DeleteGraph overwrites the default graph file with an empty record and
// empties the in-memory graph. The file itself is kept.
func (e *Engine) DeleteGraph() error {
	e.mu.Lock()
	err := persistence.Reset(e.source, e.store)
	metrics.PersistenceOpsTotal.WithLabelValues("reset", metrics.Result(err)).Inc()
	if err != nil {
		e.mu.Unlock()
		return err
	}
	e.store.Clear()
	atomic.StoreInt64(&e.dirtyCounter, 0)
	e.lastSaveTime = time.Now()
	e.updateGauges()
	snap := e.store.Snapshot()
	e.mu.Unlock()

	e.notify(snap)
	return nil
}

func (e *Engine) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(e.opts.DataDir, name)
}
