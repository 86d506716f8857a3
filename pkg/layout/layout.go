// Package layout computes 2D node positions for rendering a graph snapshot.
//
// Positions are not part of the graph store; a Provider derives them from a
// snapshot on demand. Coordinates are normalized to the [-1, 1] square.
package layout

import (
	"math"

	glayout "gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/Pmariak1013/GraphVisualizer/pkg/graph"
)

// Point is a position in the plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Provider returns a position for every node of a snapshot.
type Provider interface {
	Layout(snap graph.Snapshot) map[string]Point
}

// Spring is a force-directed layout based on the Eades spring embedder.
type Spring struct {
	// Iterations is the number of optimizer updates (default 50).
	Iterations int
	// Repulsion is the node repulsion strength (default 1).
	Repulsion float64
	// Rate is the gradient step size (default 0.05).
	Rate float64
}

// DefaultSpring returns a Spring layout with sensible parameters.
func DefaultSpring() *Spring {
	return &Spring{Iterations: 50, Repulsion: 1, Rate: 0.05}
}

// Layout implements Provider.
func (s *Spring) Layout(snap graph.Snapshot) map[string]Point {
	switch len(snap.Nodes) {
	case 0:
		return map[string]Point{}
	case 1:
		return map[string]Point{snap.Nodes[0]: {}}
	}

	// 1. Map string keys to gonum int64 IDs
	ids := make(map[string]int64, len(snap.Nodes))
	g := simple.NewUndirectedGraph()
	for i, key := range snap.Nodes {
		ids[key] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, e := range snap.Edges {
		from, okF := ids[e.A]
		to, okT := ids[e.B]
		if !okF || !okT || from == to {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	// 2. Optimize
	iterations, repulsion, rate := s.Iterations, s.Repulsion, s.Rate
	if iterations <= 0 {
		iterations = 50
	}
	if repulsion <= 0 {
		repulsion = 1
	}
	if rate <= 0 {
		rate = 0.05
	}
	eades := &glayout.EadesR2{
		Repulsion: repulsion,
		Rate:      rate,
		Updates:   iterations,
		Theta:     0.2,
	}
	opt := glayout.NewOptimizerR2(g, eades.Update)
	for opt.Update() {
	}

	// 3. Collect
	out := make(map[string]Point, len(snap.Nodes))
	for key, id := range ids {
		v := opt.Coord2(id)
		out[key] = Point{X: v.X, Y: v.Y}
	}
	return normalize(out)
}

// Circular places the nodes evenly on the unit circle in snapshot order.
type Circular struct{}

// Layout implements Provider.
func (Circular) Layout(snap graph.Snapshot) map[string]Point {
	out := make(map[string]Point, len(snap.Nodes))
	n := len(snap.Nodes)
	if n == 1 {
		out[snap.Nodes[0]] = Point{}
		return out
	}
	for i, key := range snap.Nodes {
		theta := 2 * math.Pi * float64(i) / float64(n)
		out[key] = Point{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return out
}

// New returns the provider registered under name ("spring" or "circular").
// Unknown names fall back to spring.
func New(name string) Provider {
	if name == "circular" {
		return Circular{}
	}
	return DefaultSpring()
}

// normalize centers the points on the origin and scales them so the largest
// absolute coordinate is 1. Non-finite coordinates are pinned to the origin.
func normalize(points map[string]Point) map[string]Point {
	var cx, cy float64
	for k, p := range points {
		if !finite(p.X) || !finite(p.Y) {
			p = Point{}
			points[k] = p
		}
		cx += p.X
		cy += p.Y
	}
	n := float64(len(points))
	cx, cy = cx/n, cy/n

	var scale float64
	for k, p := range points {
		p = Point{X: p.X - cx, Y: p.Y - cy}
		points[k] = p
		scale = math.Max(scale, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	if scale == 0 {
		return points
	}
	for k, p := range points {
		points[k] = Point{X: p.X / scale, Y: p.Y / scale}
	}
	return points
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
