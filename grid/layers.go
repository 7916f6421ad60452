package grid

// Layer selects one of the independent occupancy stores.
type Layer int

const (
	LayerFloor Layer = iota
	LayerFurniture
)

func (l Layer) String() string {
	if l == LayerFloor {
		return "floor"
	}
	return "furniture"
}

// Layers pairs the floor and furniture stores. Objects only conflict with
// objects on the same layer.
type Layers struct {
	Floor     *Store
	Furniture *Store
}

func NewLayers() *Layers {
	return &Layers{
		Floor:     NewStore("floor"),
		Furniture: NewStore("furniture"),
	}
}

// For returns the store backing l.
func (ls *Layers) For(l Layer) *Store {
	if l == LayerFloor {
		return ls.Floor
	}
	return ls.Furniture
}

func (ls *Layers) Clear() {
	ls.Floor.Clear()
	ls.Furniture.Clear()
}
