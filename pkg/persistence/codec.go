package persistence

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
)

// Load reads and decodes the record stored in src. When src holds nothing yet
// the returned error matches fs.ErrNotExist.
func Load(src Source) (*graph.Store, error) {
	data, err := src.ReadAll()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", src.Name(), err)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, src.Name(), err)
	}

	rec, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	store, err := Decode(rec)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}

	slog.Info("Graph loaded", "source", src.Name(), "nodes", store.Len(), "edges", store.EdgeCount())
	return store, nil
}

// LoadOrEmpty is Load, except that a source that does not exist yet yields a
// fresh empty store and no error.
func LoadOrEmpty(src Source) (*graph.Store, error) {
	store, err := Load(src)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No graph file found, starting empty", "source", src.Name())
		return graph.New(), nil
	}
	return store, err
}

// Save writes the record for snap to src, replacing any previous content.
func Save(src Source, snap graph.Snapshot) error {
	data, err := Marshal(Encode(snap))
	if err != nil {
		return err
	}
	if err := src.WriteAll(data); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, src.Name(), err)
	}
	return nil
}

// Reset overwrites src with the empty record and drops the color annotations
// held by store. The storage object itself is kept. If the write fails the
// store is not touched.
func Reset(src Source, store *graph.Store) error {
	data, err := Marshal(EmptyRecord())
	if err != nil {
		return err
	}
	if err := src.WriteAll(data); err != nil {
		return fmt.Errorf("%w: reset %s: %v", ErrStorageUnavailable, src.Name(), err)
	}
	if store != nil {
		store.ClearColors()
	}
	slog.Info("Graph file reset", "source", src.Name())
	return nil
}
