// Package graph provides the in-memory store for a simple undirected graph with
// one optional color annotation per node.
//
// The store enforces four invariants after every operation, including rejected
// ones:
//   - every edge endpoint is a node currently present in the store;
//   - there is at most one edge between any pair of nodes;
//   - every color annotation belongs to a present node;
//   - node keys are unique.
//
// Basic usage:
//
//	s := graph.New()
//	_ = s.AddNode("A")
//	_ = s.AddNode("B")
//	if err := s.AddEdge("A", "B"); err != nil {
//	    // errors.Is(err, graph.ErrInvalidEndpoint)
//	}
//	snap := s.Snapshot()
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tidwall/btree"
)

// DefaultColor is the color a renderer should use for a node without an
// annotation. It is never stored.
const DefaultColor = "lightblue"

// ErrInvalidEndpoint is returned when an edge or color operation references an
// absent node, an empty key, or when an edge would be a self-loop.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Store is the authoritative in-memory graph.
// It is safe for concurrent use, although a single owner is the expected model.
type Store struct {
	mu     sync.RWMutex
	nodes  *btree.BTreeG[string]
	edges  *btree.BTreeG[Edge]
	adj    map[string]map[string]struct{}
	colors map[string]string
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		nodes:  btree.NewBTreeG[string](func(a, b string) bool { return a < b }),
		edges:  btree.NewBTreeG[Edge](edgeLess),
		adj:    make(map[string]map[string]struct{}),
		colors: make(map[string]string),
	}
}

// AddNode inserts key if it is absent. Adding an existing node is a no-op.
func (s *Store) AddNode(key string) error {
	if key == "" {
		return fmt.Errorf("add node: empty key: %w", ErrInvalidEndpoint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.adj[key]; exists {
		return nil
	}
	s.nodes.Set(key)
	s.adj[key] = make(map[string]struct{})
	return nil
}

// RemoveNode deletes the node together with every incident edge and its color.
// Removing an absent node is a no-op.
func (s *Store) RemoveNode(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	neighbors, exists := s.adj[key]
	if !exists {
		return
	}
	for other := range neighbors {
		s.edges.Delete(NewEdge(key, other))
		delete(s.adj[other], key)
	}
	delete(s.adj, key)
	delete(s.colors, key)
	s.nodes.Delete(key)
}

// AddEdge connects a and b. Both must be present and distinct, otherwise the
// store is left untouched and ErrInvalidEndpoint is returned. Adding an
// existing edge, in either orientation, is a no-op.
func (s *Store) AddEdge(a, b string) error {
	if a == b {
		return fmt.Errorf("add edge %q-%q: self-loop: %w", a, b, ErrInvalidEndpoint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.adj[a]; !ok {
		return fmt.Errorf("add edge %q-%q: node %q not found: %w", a, b, a, ErrInvalidEndpoint)
	}
	if _, ok := s.adj[b]; !ok {
		return fmt.Errorf("add edge %q-%q: node %q not found: %w", a, b, b, ErrInvalidEndpoint)
	}

	s.edges.Set(NewEdge(a, b))
	s.adj[a][b] = struct{}{}
	s.adj[b][a] = struct{}{}
	return nil
}

// RemoveEdge deletes the edge between a and b if it exists.
func (s *Store) RemoveEdge(a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, removed := s.edges.Delete(NewEdge(a, b)); !removed {
		return
	}
	delete(s.adj[a], b)
	delete(s.adj[b], a)
}

// SetColor annotates a present node, replacing any previous color.
func (s *Store) SetColor(key, color string) error {
	if color == "" {
		return fmt.Errorf("set color on %q: empty color: %w", key, ErrInvalidEndpoint)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.adj[key]; !ok {
		return fmt.Errorf("set color on %q: node not found: %w", key, ErrInvalidEndpoint)
	}
	s.colors[key] = color
	return nil
}

// ClearColors drops every color annotation and keeps the topology.
func (s *Store) ClearColors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.colors)
}

// Clear empties nodes, edges and colors together.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes.Clear()
	s.edges.Clear()
	clear(s.adj)
	clear(s.colors)
}

// HasNode reports whether key is present.
func (s *Store) HasNode(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.adj[key]
	return ok
}

// HasEdge reports whether a and b are connected, in either orientation.
func (s *Store) HasEdge(a, b string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.adj[a][b]
	return ok
}

// Color returns the annotation for key, if any.
func (s *Store) Color(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colors[key]
	return c, ok
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes.Len()
}

// EdgeCount returns the number of edges.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edges.Len()
}

// Snapshot returns an immutable copy of the current state. Nodes and edges are
// sorted, so two snapshots of the same state are identical.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Nodes:  make([]string, 0, s.nodes.Len()),
		Edges:  make([]Edge, 0, s.edges.Len()),
		Colors: make(map[string]string, len(s.colors)),
	}
	s.nodes.Scan(func(k string) bool {
		snap.Nodes = append(snap.Nodes, k)
		return true
	})
	s.edges.Scan(func(e Edge) bool {
		snap.Edges = append(snap.Edges, e)
		return true
	})
	for k, c := range s.colors {
		snap.Colors[k] = c
	}
	return snap
}
