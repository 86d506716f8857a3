// Package engine provides the session-level interface of the graph visualizer.
//
// It owns one graph.Store and the durable source it is persisted to, and adds
// the operations of an interactive session on top of the raw store: save,
// save-as, load, delete, automatic saving and change notification.
//
// Basic usage:
//
//	opts := engine.DefaultOptions("./data")
//	eng, err := engine.Open(opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
package engine

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
	"github.com/Pmariak1013/GraphVisualizer/pkg/layout"
	"github.com/Pmariak1013/GraphVisualizer/pkg/metrics"
	"github.com/Pmariak1013/GraphVisualizer/pkg/persistence"
)

// Options configures the behavior of the Engine.
type Options struct {
	// DataDir is the directory holding graph files. Relative names passed to
	// SaveAs and Load are resolved against it. It is created if missing.
	DataDir string

	// Filename is the default graph file (default: "graph.json").
	Filename string

	// AutoSaveInterval defines how much time must pass since the last save
	// before the graph is written automatically (if AutoSaveThreshold is also met).
	// Set to 0 to disable auto-saving.
	AutoSaveInterval time.Duration

	// AutoSaveThreshold defines how many mutations must occur before the graph
	// is written automatically (if AutoSaveInterval is also met).
	// Set to 0 to disable auto-saving.
	AutoSaveThreshold int64

	// Layout computes node positions for Layout(). Defaults to a spring layout.
	Layout layout.Provider
}

// DefaultOptions returns a standard configuration.
//
// Defaults:
//   - DataDir: provided path
//   - Filename: "graph.json"
//   - AutoSave: every 30s if at least 1 change occurred
//   - Layout: spring
func DefaultOptions(dataDir string) Options {
	return Options{
		DataDir:           dataDir,
		Filename:          "graph.json",
		AutoSaveInterval:  30 * time.Second,
		AutoSaveThreshold: 1,
		Layout:            layout.DefaultSpring(),
	}
}

// Engine is the single owner of a graph for one session.
//
// Use Open() to initialize an Engine and Close() to shut it down.
type Engine struct {
	// mu serializes mutations, saves and store replacement.
	mu     sync.Mutex
	store  *graph.Store
	source persistence.Source
	opts   Options

	// dirtyCounter tracks the number of mutations since the last save.
	dirtyCounter int64
	lastSaveTime time.Time

	subsMu  sync.Mutex
	subs    map[int]func(graph.Snapshot)
	nextSub int

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Open initializes a new Engine using the provided options.
//
// It performs the following actions:
// 1. Creates DataDir if missing.
// 2. Loads the default graph file, or starts empty if it does not exist.
// 3. Starts the auto-save goroutine when both auto-save policies are set.
func Open(opts Options) (*Engine, error) {
	if opts.Filename == "" {
		opts.Filename = "graph.json"
	}
	if opts.Layout == nil {
		opts.Layout = layout.DefaultSpring()
	}
	if opts.DataDir != "" {
		if err := os.MkdirAll(opts.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	src := persistence.NewFileSource(filepath.Join(opts.DataDir, opts.Filename))
	store, err := persistence.LoadOrEmpty(src)
	metrics.PersistenceOpsTotal.WithLabelValues("load", metrics.Result(err)).Inc()
	if err != nil {
		return nil, fmt.Errorf("failed to load graph: %w", err)
	}

	e := &Engine{
		store:        store,
		source:       src,
		opts:         opts,
		lastSaveTime: time.Now(),
		subs:         make(map[int]func(graph.Snapshot)),
		closed:       make(chan struct{}),
	}
	e.updateGauges()

	if e.autoSaveEnabled() {
		e.wg.Add(1)
		go e.backgroundTasks()
	}

	return e, nil
}

// Close stops background work. With auto-save enabled, pending changes are
// written before returning.
func (e *Engine) Close() error {
	var err error

	e.closeOnce.Do(func() {
		close(e.closed)
		e.wg.Wait()

		if e.autoSaveEnabled() && atomic.LoadInt64(&e.dirtyCounter) > 0 {
			err = e.Save()
		}
	})

	return err
}

// SourceName returns the location of the default graph file.
func (e *Engine) SourceName() string {
	return e.source.Name()
}

// Dirty returns the number of mutations since the last save.
func (e *Engine) Dirty() int64 {
	return atomic.LoadInt64(&e.dirtyCounter)
}

func (e *Engine) autoSaveEnabled() bool {
	return e.opts.AutoSaveInterval > 0 && e.opts.AutoSaveThreshold > 0
}

// backgroundTasks handles automatic saving.
func (e *Engine) backgroundTasks() {
	defer e.wg.Done()

	tick := time.Second
	if e.opts.AutoSaveInterval < tick {
		tick = e.opts.AutoSaveInterval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-e.closed:
			return
		case <-ticker.C:
			e.checkAutoSave()
		}
	}
}

// checkAutoSave writes the graph when both auto-save policies are met.
func (e *Engine) checkAutoSave() {
	dirty := atomic.LoadInt64(&e.dirtyCounter)
	if dirty < e.opts.AutoSaveThreshold {
		return
	}

	e.mu.Lock()
	due := time.Since(e.lastSaveTime) >= e.opts.AutoSaveInterval
	e.mu.Unlock()
	if !due {
		return
	}

	if err := e.Save(); err != nil {
		// Log error but continue (background task)
		slog.Error("Background save failed", "error", err)
	}
}

func (e *Engine) updateGauges() {
	metrics.GraphNodes.Set(float64(e.store.Len()))
	metrics.GraphEdges.Set(float64(e.store.EdgeCount()))
}
