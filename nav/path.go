package nav

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/milk9111/levelforge/common"
)

var (
	ErrNoPath     = errors.New("nav: no path")
	ErrUnwalkable = errors.New("nav: target is not walkable")
)

// FindPath runs A* between the nodes under from and to. Diagonal steps cost
// sqrt(2), entering a node adds its penalty, and diagonals may not cut past
// an unwalkable corner. The returned path starts at the from node.
func (g *Grid) FindPath(from, to common.Vec3) ([]*Node, error) {
	start := g.NodeFromWorldPoint(from)
	goal := g.NodeFromWorldPoint(to)
	if !goal.Walkable {
		return nil, fmt.Errorf("nav: path to %s: %w", to, ErrUnwalkable)
	}
	if start == goal {
		return []*Node{start}, nil
	}

	wg := walkGraph{g: g}
	sid, gid := g.index(start), g.index(goal)
	shortest, _ := path.AStar(simple.Node(sid), simple.Node(gid), wg, wg.heuristic)
	nodes, _ := shortest.To(gid)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("nav: path %s -> %s: %w", from, to, ErrNoPath)
	}
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, g.nodeByID(n.ID()))
	}
	return out, nil
}

// PathCost sums the step weights along a path returned by FindPath.
func (g *Grid) PathCost(p []*Node) float64 {
	wg := walkGraph{g: g}
	total := 0.0
	for i := 1; i < len(p); i++ {
		w, ok := wg.Weight(g.index(p[i-1]), g.index(p[i]))
		if !ok {
			return math.Inf(1)
		}
		total += w
	}
	return total
}

// walkGraph exposes the walkable nodes as a weighted gonum graph.
type walkGraph struct {
	g *Grid
}

func (w walkGraph) Node(id int64) graph.Node {
	if w.g.nodeByID(id) == nil {
		return nil
	}
	return simple.Node(id)
}

func (w walkGraph) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(w.g.nodes))
	for i := range w.g.nodes {
		nodes[i] = simple.Node(int64(i))
	}
	return iterator.NewOrderedNodes(nodes)
}

func (w walkGraph) From(id int64) graph.Nodes {
	n := w.g.nodeByID(id)
	if n == nil {
		return graph.Empty
	}
	var out []graph.Node
	for _, nb := range w.g.Neighbors(n) {
		if w.step(n, nb) {
			out = append(out, simple.Node(w.g.index(nb)))
		}
	}
	if len(out) == 0 {
		return graph.Empty
	}
	return iterator.NewOrderedNodes(out)
}

func (w walkGraph) HasEdgeBetween(xid, yid int64) bool {
	a, b := w.g.nodeByID(xid), w.g.nodeByID(yid)
	if a == nil || b == nil {
		return false
	}
	return w.step(a, b) || w.step(b, a)
}

func (w walkGraph) Edge(uid, vid int64) graph.Edge {
	a, b := w.g.nodeByID(uid), w.g.nodeByID(vid)
	if a == nil || b == nil || !w.step(a, b) {
		return nil
	}
	return simple.Edge{F: simple.Node(uid), T: simple.Node(vid)}
}

// Weight implements path.Weighted.
func (w walkGraph) Weight(xid, yid int64) (float64, bool) {
	if xid == yid {
		return 0, true
	}
	a, b := w.g.nodeByID(xid), w.g.nodeByID(yid)
	if a == nil || b == nil || !w.step(a, b) {
		return math.Inf(1), false
	}
	cost := 1.0
	if a.GridX != b.GridX && a.GridZ != b.GridZ {
		cost = math.Sqrt2
	}
	return cost + float64(b.Penalty), true
}

// step reports whether a walker may move from a to the adjacent node b.
func (w walkGraph) step(a, b *Node) bool {
	dx, dz := b.GridX-a.GridX, b.GridZ-a.GridZ
	if dx < -1 || dx > 1 || dz < -1 || dz > 1 || (dx == 0 && dz == 0) {
		return false
	}
	if !b.Walkable {
		return false
	}
	if dx != 0 && dz != 0 {
		side1 := w.g.Node(a.GridX+dx, a.GridZ)
		side2 := w.g.Node(a.GridX, a.GridZ+dz)
		if side1 == nil || side2 == nil || !side1.Walkable || !side2.Walkable {
			return false
		}
	}
	return true
}

// heuristic is the octile distance in node steps.
func (w walkGraph) heuristic(x, y graph.Node) float64 {
	a, b := w.g.nodeByID(x.ID()), w.g.nodeByID(y.ID())
	dx := math.Abs(float64(a.GridX - b.GridX))
	dz := math.Abs(float64(a.GridZ - b.GridZ))
	return dx + dz + (math.Sqrt2-2)*math.Min(dx, dz)
}
