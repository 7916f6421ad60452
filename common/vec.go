package common

import (
	"fmt"
	"math"

	"github.com/milk9111/levelforge/grid"
)

// Vec3 is a world-space position. The ground plane is XZ; Y is up.
type Vec3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vec3) Len() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

func (v Vec3) IsZero() bool {
	return v == Vec3{}
}

// MoveTowards steps from v to target by at most maxStep.
func (v Vec3) MoveTowards(target Vec3, maxStep float64) Vec3 {
	d := target.Sub(v)
	dist := d.Len()
	if dist <= maxStep || dist == 0 {
		return target
	}
	t := maxStep / dist
	return Vec3{X: Lerp(v.X, target.X, t), Y: Lerp(v.Y, target.Y, t), Z: Lerp(v.Z, target.Z, t)}
}

// Cell rounds a world position to the nearest grid cell.
func (v Vec3) Cell() grid.Cell {
	return grid.Cell{X: RoundToInt(v.X), Y: RoundToInt(v.Y), Z: RoundToInt(v.Z)}
}

// FloorCell maps a world position to the cell containing it.
func (v Vec3) FloorCell(cellSize float64) grid.Cell {
	if cellSize <= 0 {
		cellSize = 1
	}
	return grid.Cell{
		X: int(math.Floor(v.X / cellSize)),
		Z: int(math.Floor(v.Z / cellSize)),
	}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.2f,%.2f,%.2f)", v.X, v.Y, v.Z)
}

// CellToWorld returns the world position of a cell's corner.
func CellToWorld(c grid.Cell, cellSize float64) Vec3 {
	if cellSize <= 0 {
		cellSize = 1
	}
	return Vec3{X: float64(c.X) * cellSize, Y: float64(c.Y) * cellSize, Z: float64(c.Z) * cellSize}
}
