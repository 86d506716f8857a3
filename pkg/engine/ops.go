package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
	"github.com/Pmariak1013/GraphVisualizer/pkg/layout"
	"github.com/Pmariak1013/GraphVisualizer/pkg/metrics"
)

// --- Graph Mutations ---

// AddNode inserts a node. Adding an existing node is a no-op.
func (e *Engine) AddNode(key string) error {
	return e.mutate("add_node", func(s *graph.Store) (bool, error) {
		if s.HasNode(key) {
			return false, nil
		}
		return true, s.AddNode(key)
	})
}

// RemoveNode deletes a node with its edges and color. Absent nodes are ignored.
func (e *Engine) RemoveNode(key string) error {
	return e.mutate("remove_node", func(s *graph.Store) (bool, error) {
		if !s.HasNode(key) {
			return false, nil
		}
		s.RemoveNode(key)
		return true, nil
	})
}

// AddEdge connects two present, distinct nodes.
func (e *Engine) AddEdge(a, b string) error {
	return e.mutate("add_edge", func(s *graph.Store) (bool, error) {
		if a != b && s.HasEdge(a, b) {
			return false, nil
		}
		return true, s.AddEdge(a, b)
	})
}

// RemoveEdge deletes the edge between a and b if it exists.
func (e *Engine) RemoveEdge(a, b string) error {
	return e.mutate("remove_edge", func(s *graph.Store) (bool, error) {
		if !s.HasEdge(a, b) {
			return false, nil
		}
		s.RemoveEdge(a, b)
		return true, nil
	})
}

// SetColor annotates a present node with color.
func (e *Engine) SetColor(key, color string) error {
	return e.mutate("set_color", func(s *graph.Store) (bool, error) {
		if old, ok := s.Color(key); ok && old == color {
			return false, nil
		}
		return true, s.SetColor(key, color)
	})
}

// Clear empties the in-memory graph. The graph file is not touched.
func (e *Engine) Clear() error {
	return e.mutate("clear", func(s *graph.Store) (bool, error) {
		if s.Len() == 0 {
			return false, nil
		}
		s.Clear()
		return true, nil
	})
}

// mutate runs fn against the store under the engine lock. fn reports whether
// the graph changed; only changes are counted and sent to subscribers.
func (e *Engine) mutate(op string, fn func(s *graph.Store) (bool, error)) error {
	e.mu.Lock()
	changed, err := fn(e.store)
	if err != nil {
		e.mu.Unlock()
		metrics.GraphMutationsTotal.WithLabelValues(op, metrics.Result(err)).Inc()
		slog.Debug("Graph mutation rejected", "op", op, "error", err)
		return err
	}
	if !changed {
		e.mu.Unlock()
		metrics.GraphMutationsTotal.WithLabelValues(op, "unchanged").Inc()
		return nil
	}
	atomic.AddInt64(&e.dirtyCounter, 1)
	e.updateGauges()
	snap := e.store.Snapshot()
	e.mu.Unlock()

	metrics.GraphMutationsTotal.WithLabelValues(op, "ok").Inc()
	slog.Debug("Graph mutated", "op", op, "nodes", len(snap.Nodes), "edges", len(snap.Edges))
	e.notify(snap)
	return nil
}

// --- Read Surface ---

// Snapshot returns an immutable view of the current graph.
func (e *Engine) Snapshot() graph.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// Layout returns the current snapshot together with a position for each of
// its nodes.
func (e *Engine) Layout() (graph.Snapshot, map[string]layout.Point) {
	snap := e.Snapshot()
	return snap, e.opts.Layout.Layout(snap)
}

// --- Change Notification ---

// Subscribe registers fn to be called with a fresh snapshot after every
// successful mutation or load. Calls happen synchronously on the mutating
// goroutine; the order between subscribers is unspecified. The returned
// function unregisters fn.
func (e *Engine) Subscribe(fn func(graph.Snapshot)) (cancel func()) {
	e.subsMu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.subsMu.Unlock()

	return func() {
		e.subsMu.Lock()
		delete(e.subs, id)
		e.subsMu.Unlock()
	}
}

func (e *Engine) notify(snap graph.Snapshot) {
	e.subsMu.Lock()
	fns := make([]func(graph.Snapshot), 0, len(e.subs))
	for _, fn := range e.subs {
		fns = append(fns, fn)
	}
	e.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
