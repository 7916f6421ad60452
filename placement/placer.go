package placement

import (
	"sort"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/prefabs"
)

// Placed is a visual representation of a placed object.
type Placed struct {
	Handle   grid.Handle
	Spec     prefabs.ObjectSpec
	Anchor   grid.Cell
	Dir      grid.Direction
	Position common.Vec3
	order    int
}

// Rotation returns the euler rotation stored in level files.
func (p Placed) Rotation() common.Vec3 {
	return common.V(0, p.Dir.Angle(), 0)
}

// Footprint returns the cells the representation covers.
func (p Placed) Footprint() []grid.Cell {
	return grid.Footprint(p.Anchor, p.Spec.Footprint(), p.Dir)
}

// Spawner is implemented by hosts that draw or simulate placed objects.
type Spawner interface {
	Spawn(p Placed)
	Despawn(h grid.Handle)
}

type placerSlot struct {
	gen   uint32
	alive bool
	obj   Placed
}

// ObjectPlacer owns the placed representations. Handles are generational so
// a handle kept past Remove never resolves to a later object in the same slot.
type ObjectPlacer struct {
	slots   []placerSlot
	free    []int
	spawner Spawner
	seq     int
	alive   int
}

func NewObjectPlacer(spawner Spawner) *ObjectPlacer {
	return &ObjectPlacer{spawner: spawner}
}

// SetSpawner swaps the host hook. Existing objects are not re-spawned.
func (p *ObjectPlacer) SetSpawner(s Spawner) {
	p.spawner = s
}

// Place creates a representation with its model offset so a rotated model
// still covers its footprint.
func (p *ObjectPlacer) Place(spec prefabs.ObjectSpec, anchor grid.Cell, dir grid.Direction) grid.Handle {
	var slot int
	if n := len(p.free); n > 0 {
		slot = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		p.slots = append(p.slots, placerSlot{})
		slot = len(p.slots)
	}
	s := &p.slots[slot-1]
	h := grid.MakeHandle(slot, s.gen)
	p.seq++
	offset := grid.RotationOffset(dir, spec.Footprint())
	s.alive = true
	s.obj = Placed{
		Handle:   h,
		Spec:     spec,
		Anchor:   anchor,
		Dir:      dir,
		Position: common.CellToWorld(anchor.Add(offset), common.CellSize),
		order:    p.seq,
	}
	p.alive++
	if p.spawner != nil {
		p.spawner.Spawn(s.obj)
	}
	return h
}

// Remove destroys the representation. Stale or zero handles report false.
func (p *ObjectPlacer) Remove(h grid.Handle) bool {
	s, ok := p.slot(h)
	if !ok {
		return false
	}
	s.alive = false
	s.gen++
	s.obj = Placed{}
	p.free = append(p.free, h.Slot())
	p.alive--
	if p.spawner != nil {
		p.spawner.Despawn(h)
	}
	return true
}

// SetDirection rotates a live representation in place.
func (p *ObjectPlacer) SetDirection(h grid.Handle, dir grid.Direction) bool {
	s, ok := p.slot(h)
	if !ok {
		return false
	}
	s.obj.Dir = dir
	offset := grid.RotationOffset(dir, s.obj.Spec.Footprint())
	s.obj.Position = common.CellToWorld(s.obj.Anchor.Add(offset), common.CellSize)
	return true
}

func (p *ObjectPlacer) Get(h grid.Handle) (Placed, bool) {
	s, ok := p.slot(h)
	if !ok {
		return Placed{}, false
	}
	return s.obj, true
}

// All returns live representations in placement order.
func (p *ObjectPlacer) All() []Placed {
	out := make([]Placed, 0, p.alive)
	for i := range p.slots {
		if p.slots[i].alive {
			out = append(out, p.slots[i].obj)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].order < out[j].order })
	return out
}

func (p *ObjectPlacer) Len() int {
	return p.alive
}

// CountKind counts live representations of a kind.
func (p *ObjectPlacer) CountKind(kind prefabs.Kind) int {
	n := 0
	for i := range p.slots {
		if p.slots[i].alive && p.slots[i].obj.Spec.Kind == kind {
			n++
		}
	}
	return n
}

// Clear removes every representation.
func (p *ObjectPlacer) Clear() {
	for _, obj := range p.All() {
		p.Remove(obj.Handle)
	}
}

func (p *ObjectPlacer) slot(h grid.Handle) (*placerSlot, bool) {
	idx := h.Slot()
	if idx <= 0 || idx > len(p.slots) {
		return nil, false
	}
	s := &p.slots[idx-1]
	if !s.alive || s.gen != h.Generation() {
		return nil, false
	}
	return s, true
}
