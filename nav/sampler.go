package nav

import (
	"github.com/jakecoffman/cp"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
)

// Shape categories used to tell world geometry apart in point queries.
const (
	CategoryFloor uint = 1 << iota
	CategoryObstacle
	CategoryTerrain
)

// shapeInset keeps boxes of neighbouring cells from touching a node's query
// radius.
const shapeInset = 0.01

// SpaceSampler answers Sampler queries against static boxes in a chipmunk
// space. The XZ ground plane maps onto the space's XY plane.
type SpaceSampler struct {
	space    *cp.Space
	cellSize float64
	terrain  map[*cp.Shape]uint
}

func NewSpaceSampler(cellSize float64) *SpaceSampler {
	if cellSize <= 0 {
		cellSize = common.CellSize
	}
	return &SpaceSampler{
		space:    cp.NewSpace(),
		cellSize: cellSize,
		terrain:  make(map[*cp.Shape]uint),
	}
}

// Space returns the underlying Chipmunk space.
func (s *SpaceSampler) Space() *cp.Space {
	return s.space
}

// AddBox adds a static box spanning min..max on the ground plane.
func (s *SpaceSampler) AddBox(min, max common.Vec3, category uint) *cp.Shape {
	bb := cp.BB{
		L: min.X + shapeInset,
		B: min.Z + shapeInset,
		R: max.X - shapeInset,
		T: max.Z - shapeInset,
	}
	shape := cp.NewBox2(s.space.StaticBody, bb, 0)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, category, cp.ALL_CATEGORIES))
	s.space.AddShape(shape)
	return shape
}

// AddFloor adds one floor box per cell.
func (s *SpaceSampler) AddFloor(cells ...grid.Cell) []*cp.Shape {
	return s.addCells(cells, CategoryFloor)
}

// AddObstacle adds one blocking box per cell.
func (s *SpaceSampler) AddObstacle(cells ...grid.Cell) []*cp.Shape {
	return s.addCells(cells, CategoryObstacle)
}

// AddTerrain tags cells with a terrain layer for movement penalties.
func (s *SpaceSampler) AddTerrain(layer uint, cells ...grid.Cell) []*cp.Shape {
	shapes := s.addCells(cells, CategoryTerrain)
	for _, sh := range shapes {
		s.terrain[sh] = layer
	}
	return shapes
}

// Remove takes shapes back out of the space.
func (s *SpaceSampler) Remove(shapes ...*cp.Shape) {
	for _, sh := range shapes {
		delete(s.terrain, sh)
		s.space.RemoveShape(sh)
	}
}

func (s *SpaceSampler) Blocked(p common.Vec3, r float64) bool {
	return s.nearest(p, r, CategoryObstacle) != nil
}

func (s *SpaceSampler) HasFloor(p common.Vec3, r float64) bool {
	return s.nearest(p, r, CategoryFloor) != nil
}

func (s *SpaceSampler) Terrain(p common.Vec3) (uint, bool) {
	sh := s.nearest(p, 0, CategoryTerrain)
	if sh == nil {
		return 0, false
	}
	layer, ok := s.terrain[sh]
	return layer, ok
}

func (s *SpaceSampler) addCells(cells []grid.Cell, category uint) []*cp.Shape {
	out := make([]*cp.Shape, 0, len(cells))
	for _, c := range cells {
		min := common.CellToWorld(c, s.cellSize)
		max := min.Add(common.V(s.cellSize, 0, s.cellSize))
		out = append(out, s.AddBox(min, max, category))
	}
	return out
}

func (s *SpaceSampler) nearest(p common.Vec3, r float64, category uint) *cp.Shape {
	filter := cp.NewShapeFilter(cp.NO_GROUP, cp.ALL_CATEGORIES, category)
	info := s.space.PointQueryNearest(cp.Vector{X: p.X, Y: p.Z}, r, filter)
	if info == nil {
		return nil
	}
	return info.Shape
}
