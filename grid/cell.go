package grid

import (
	"fmt"
	"math"
)

// Cell is a discrete grid coordinate. Placement grids always use Y == 0.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// C is shorthand for a placement cell on the ground plane.
func C(x, z int) Cell {
	return Cell{X: x, Z: z}
}

func (c Cell) Add(o Cell) Cell {
	return Cell{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

func (c Cell) Sub(o Cell) Cell {
	return Cell{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Size is an unrotated object size: W along x, D along z.
type Size struct {
	W int `yaml:"w" json:"w"`
	D int `yaml:"d" json:"d"`
}

// Normalize clamps both dimensions to at least 1.
func (s Size) Normalize() Size {
	if s.W < 1 {
		s.W = 1
	}
	if s.D < 1 {
		s.D = 1
	}
	return s
}

// Swap returns the size with W and D exchanged.
func (s Size) Swap() Size {
	return Size{W: s.D, D: s.W}
}

// Area is the number of cells covered by the size.
func (s Size) Area() int {
	n := s.Normalize()
	return n.W * n.D
}

// Direction is one of the four cardinal rotations about the vertical axis.
type Direction int

const (
	Down Direction = iota
	Left
	Up
	Right
)

// Next returns the direction a rotate request moves to.
func (d Direction) Next() Direction {
	switch d {
	case Down:
		return Left
	case Left:
		return Up
	case Up:
		return Right
	default:
		return Down
	}
}

// Angle returns the yaw in degrees.
func (d Direction) Angle() float64 {
	switch d {
	case Left:
		return 90
	case Up:
		return 180
	case Right:
		return 270
	default:
		return 0
	}
}

// Odd reports whether the direction is an odd multiple of 90 degrees.
func (d Direction) Odd() bool {
	return d == Left || d == Right
}

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// DirectionFromAngle maps any yaw in degrees to the nearest cardinal direction.
func DirectionFromAngle(deg float64) Direction {
	q := int(math.Round(deg/90)) % 4
	if q < 0 {
		q += 4
	}
	return Direction(q)
}
