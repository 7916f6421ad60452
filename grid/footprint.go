package grid

// Rotated returns the size a footprint covers after rotation. Odd rotations
// swap width and depth.
func Rotated(size Size, dir Direction) Size {
	size = size.Normalize()
	if dir.Odd() {
		return size.Swap()
	}
	return size
}

// Footprint enumerates the cells an object of the given size covers when its
// anchor sits on anchor and it faces dir. The result is ordered x-major.
func Footprint(anchor Cell, size Size, dir Direction) []Cell {
	r := Rotated(size, dir)
	cells := make([]Cell, 0, r.W*r.D)
	for x := 0; x < r.W; x++ {
		for z := 0; z < r.D; z++ {
			cells = append(cells, anchor.Add(Cell{X: x, Z: z}))
		}
	}
	return cells
}

// RotationOffset is the model offset applied to a representation so that a
// model pivoting on its corner still covers its footprint after rotating.
// size is the unrotated size.
func RotationOffset(dir Direction, size Size) Cell {
	size = size.Normalize()
	switch dir {
	case Left:
		return Cell{Z: size.W}
	case Up:
		return Cell{X: size.W, Z: size.D}
	case Right:
		return Cell{X: size.D}
	default:
		return Cell{}
	}
}

// LoadOffset is the correction subtracted from a saved world position to get
// back the footprint anchor. rotated is the size after Rotated.
func LoadOffset(dir Direction, rotated Size) Cell {
	rotated = rotated.Normalize()
	switch dir {
	case Left:
		return Cell{Z: rotated.D}
	case Up:
		return Cell{X: rotated.W, Z: rotated.D}
	case Right:
		return Cell{X: rotated.W}
	default:
		return Cell{}
	}
}
