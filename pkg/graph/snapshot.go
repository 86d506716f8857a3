package graph

import "maps"

// Edge is an undirected connection. Values built with NewEdge are canonical:
// A sorts before B, so (a,b) and (b,a) compare equal.
type Edge struct {
	A string
	B string
}

// NewEdge returns the canonical edge between a and b.
func NewEdge(a, b string) Edge {
	if b < a {
		a, b = b, a
	}
	return Edge{A: a, B: b}
}

// Has reports whether key is one of the endpoints.
func (e Edge) Has(key string) bool {
	return e.A == key || e.B == key
}

func edgeLess(x, y Edge) bool {
	if x.A != y.A {
		return x.A < y.A
	}
	return x.B < y.B
}

// Snapshot is a read-only view of a Store at one point in time. It shares no
// memory with the store it came from.
type Snapshot struct {
	Nodes  []string
	Edges  []Edge
	Colors map[string]string
}

// ColorOf returns the annotation for key or DefaultColor.
func (s Snapshot) ColorOf(key string) string {
	if c, ok := s.Colors[key]; ok {
		return c
	}
	return DefaultColor
}

// IsEmpty reports whether the snapshot holds no nodes, edges or colors.
func (s Snapshot) IsEmpty() bool {
	return len(s.Nodes) == 0 && len(s.Edges) == 0 && len(s.Colors) == 0
}

// Equal reports set equality of nodes, edges and colors. Order is ignored and
// edges are compared in canonical form.
func (s Snapshot) Equal(other Snapshot) bool {
	if !sameSet(s.Nodes, other.Nodes) {
		return false
	}
	canon := func(edges []Edge) []Edge {
		out := make([]Edge, len(edges))
		for i, e := range edges {
			out[i] = NewEdge(e.A, e.B)
		}
		return out
	}
	if !sameSet(canon(s.Edges), canon(other.Edges)) {
		return false
	}
	return maps.Equal(s.Colors, other.Colors)
}

func sameSet[T comparable](a, b []T) bool {
	setA := make(map[T]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[T]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}
	return maps.Equal(setA, setB)
}
