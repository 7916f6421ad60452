package nav

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
)

// ErrInvalidConfig is returned by NewGrid for unusable dimensions.
var ErrInvalidConfig = errors.New("nav: invalid grid config")

// TerrainRegion adds a movement penalty to nodes over a terrain layer.
type TerrainRegion struct {
	Name    string `yaml:"name"`
	Layer   uint   `yaml:"layer"`
	Penalty int    `yaml:"penalty"`
}

// Config sizes the walkability grid in world units.
type Config struct {
	Center     common.Vec3     `yaml:"center"`
	WorldSizeX float64         `yaml:"worldSizeX"`
	WorldSizeZ float64         `yaml:"worldSizeZ"`
	NodeRadius float64         `yaml:"nodeRadius"`
	Regions    []TerrainRegion `yaml:"regions"`
}

// Node is one walkability sample.
type Node struct {
	World    common.Vec3
	GridX    int
	GridZ    int
	Walkable bool
	Penalty  int
}

// Sampler answers geometry questions about the world at build time.
type Sampler interface {
	Blocked(p common.Vec3, r float64) bool
	HasFloor(p common.Vec3, r float64) bool
	Terrain(p common.Vec3) (layer uint, ok bool)
}

// Grid is a fixed-resolution walkability grid over the XZ plane. Nodes are
// created by NewGrid and Rebuild and flipped in place by the mark calls.
type Grid struct {
	cfg       Config
	sampler   Sampler
	diameter  float64
	sizeX     int
	sizeZ     int
	nodes     []Node
	penalties map[uint]int
}

// NewGrid samples the world and builds every node. A nil sampler starts
// every node unwalkable.
func NewGrid(cfg Config, sampler Sampler) (*Grid, error) {
	if cfg.NodeRadius <= 0 || cfg.WorldSizeX <= 0 || cfg.WorldSizeZ <= 0 {
		return nil, fmt.Errorf("nav: radius %.2f size %.2fx%.2f: %w", cfg.NodeRadius, cfg.WorldSizeX, cfg.WorldSizeZ, ErrInvalidConfig)
	}
	g := &Grid{
		cfg:       cfg,
		sampler:   sampler,
		diameter:  cfg.NodeRadius * 2,
		penalties: make(map[uint]int, len(cfg.Regions)),
	}
	g.sizeX = common.RoundToInt(cfg.WorldSizeX / g.diameter)
	g.sizeZ = common.RoundToInt(cfg.WorldSizeZ / g.diameter)
	if g.sizeX < 1 || g.sizeZ < 1 {
		return nil, fmt.Errorf("nav: %dx%d nodes: %w", g.sizeX, g.sizeZ, ErrInvalidConfig)
	}
	for _, r := range cfg.Regions {
		if r.Penalty < 0 {
			return nil, fmt.Errorf("nav: region %q penalty %d: %w", r.Name, r.Penalty, ErrInvalidConfig)
		}
		g.penalties[r.Layer] = r.Penalty
	}
	g.Rebuild()
	return g, nil
}

// Rebuild resamples every node, discarding earlier marks.
func (g *Grid) Rebuild() {
	g.nodes = make([]Node, g.sizeX*g.sizeZ)
	bottomLeft := g.bottomLeft()
	r := g.cfg.NodeRadius
	for z := 0; z < g.sizeZ; z++ {
		for x := 0; x < g.sizeX; x++ {
			world := bottomLeft.Add(common.V(float64(x)*g.diameter+r, 0, float64(z)*g.diameter+r))
			n := Node{World: world, GridX: x, GridZ: z}
			if g.sampler != nil {
				n.Walkable = g.sampler.HasFloor(world, r) && !g.sampler.Blocked(world, r)
				if layer, ok := g.sampler.Terrain(world); ok {
					n.Penalty = g.penalties[layer]
				}
			}
			g.nodes[z*g.sizeX+x] = n
		}
	}
}

func (g *Grid) SizeX() int {
	return g.sizeX
}

func (g *Grid) SizeZ() int {
	return g.sizeZ
}

// MaxSize is the node count, the upper bound of any open set.
func (g *Grid) MaxSize() int {
	return g.sizeX * g.sizeZ
}

// Node returns the node at grid indices, or nil when out of range.
func (g *Grid) Node(x, z int) *Node {
	if x < 0 || z < 0 || x >= g.sizeX || z >= g.sizeZ {
		return nil
	}
	return &g.nodes[z*g.sizeX+x]
}

// Contains reports whether p lies inside the grid's world rectangle.
func (g *Grid) Contains(p common.Vec3) bool {
	bl := g.bottomLeft()
	return p.X >= bl.X && p.Z >= bl.Z && p.X < bl.X+g.cfg.WorldSizeX && p.Z < bl.Z+g.cfg.WorldSizeZ
}

// NodeFromWorldPoint maps a world position to its node. Points outside the
// grid clamp to the nearest edge node.
func (g *Grid) NodeFromWorldPoint(p common.Vec3) *Node {
	pctX := common.Clamp01((p.X - g.cfg.Center.X + g.cfg.WorldSizeX/2) / g.cfg.WorldSizeX)
	pctZ := common.Clamp01((p.Z - g.cfg.Center.Z + g.cfg.WorldSizeZ/2) / g.cfg.WorldSizeZ)
	x := common.RoundToInt(float64(g.sizeX-1) * pctX)
	z := common.RoundToInt(float64(g.sizeZ-1) * pctZ)
	return g.Node(x, z)
}

// Neighbors returns the up to eight in-bounds nodes around n.
func (g *Grid) Neighbors(n *Node) []*Node {
	out := make([]*Node, 0, 8)
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if nb := g.Node(n.GridX+dx, n.GridZ+dz); nb != nil {
				out = append(out, nb)
			}
		}
	}
	return out
}

// MarkWalkable flips every node under a placed footprint to walkable.
// anchor is the footprint anchor after the rotation offset was removed.
// Footprint cells outside the grid are ignored, not clamped to edge nodes.
func (g *Grid) MarkWalkable(anchor grid.Cell, size grid.Size, angle float64) int {
	return g.mark(anchor, size, angle, true)
}

// MarkUnwalkable flips every node under a placed footprint to unwalkable.
func (g *Grid) MarkUnwalkable(anchor grid.Cell, size grid.Size, angle float64) int {
	return g.mark(anchor, size, angle, false)
}

// mark samples each footprint cell at node spacing. Samples outside the grid
// are ignored rather than clamped onto edge nodes.
func (g *Grid) mark(anchor grid.Cell, size grid.Size, angle float64, walkable bool) int {
	cs := common.CellSize
	step := math.Min(g.diameter, cs)
	half := step / 2
	changed := 0
	for _, cell := range grid.Footprint(anchor, size, grid.DirectionFromAngle(angle)) {
		origin := common.CellToWorld(cell, cs)
		for ox := half; ox < cs; ox += step {
			for oz := half; oz < cs; oz += step {
				p := origin.Add(common.V(ox, 0, oz))
				if !g.Contains(p) {
					continue
				}
				n := g.NodeFromWorldPoint(p)
				if n.Walkable != walkable {
					n.Walkable = walkable
					changed++
				}
			}
		}
	}
	return changed
}

// Walkable reports whether the node under p can be walked on. Points outside
// the grid are not walkable.
func (g *Grid) Walkable(p common.Vec3) bool {
	if !g.Contains(p) {
		return false
	}
	return g.NodeFromWorldPoint(p).Walkable
}

// WalkableCount counts walkable nodes.
func (g *Grid) WalkableCount() int {
	n := 0
	for i := range g.nodes {
		if g.nodes[i].Walkable {
			n++
		}
	}
	return n
}

func (g *Grid) bottomLeft() common.Vec3 {
	return g.cfg.Center.Sub(common.V(g.cfg.WorldSizeX/2, 0, g.cfg.WorldSizeZ/2))
}

func (g *Grid) index(n *Node) int64 {
	return int64(n.GridZ*g.sizeX + n.GridX)
}

func (g *Grid) nodeByID(id int64) *Node {
	if id < 0 || id >= int64(len(g.nodes)) {
		return nil
	}
	return &g.nodes[id]
}
