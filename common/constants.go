package common

const (
	// CellSize is the world size of one placement cell.
	CellSize = 1.0

	BaseWidth  = 1280
	BaseHeight = 736

	// PixelsPerCell is how large a cell is drawn by the tools.
	PixelsPerCell = 32
)
