package placement

import (
	"errors"
	"fmt"
	"log"
	"math/rand"

	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/prefabs"
)

// Feedback errors reported to the host for its validity indicator.
var (
	ErrNoFloor            = errors.New("placement: marker needs floor below")
	ErrSpawnExists        = errors.New("placement: level already has a spawn point")
	ErrPatrolFull         = errors.New("placement: level already has two patrol points")
	ErrNoRandomCandidates = errors.New("placement: no objects enabled for random placement")
	ErrUnknownObject      = errors.New("placement: unknown object")
	ErrNotFillable        = errors.New("placement: fill needs a 1x1 floor object")
)

// MaxPatrolPoints is how many enemy spawn markers a level may hold.
const MaxPatrolPoints = 2

// Mode names the active editor state.
type Mode int

const (
	ModeIdle Mode = iota
	ModePlacing
	ModeFilling
	ModeRemoving
	ModeRandom
)

func (m Mode) String() string {
	switch m {
	case ModePlacing:
		return "placing"
	case ModeFilling:
		return "filling"
	case ModeRemoving:
		return "removing"
	case ModeRandom:
		return "random"
	}
	return "idle"
}

// Preview is what the host needs to draw the cursor indicator.
type Preview struct {
	Active    bool
	Cell      grid.Cell
	Footprint []grid.Cell
	Valid     bool
	Err       error
	Dir       grid.Direction
	Spec      prefabs.ObjectSpec
}

// Controller is the editor state machine. It owns no rendering; hosts feed it
// events and read Preview and Feedback back.
type Controller struct {
	catalog *prefabs.Catalog
	layers  *grid.Layers
	placer  *ObjectPlacer
	rng     *rand.Rand

	state    editorState
	cursor   grid.Cell
	feedback error
	levelID  string
}

func NewController(catalog *prefabs.Catalog, layers *grid.Layers, placer *ObjectPlacer, seed int64) *Controller {
	if layers == nil {
		layers = grid.NewLayers()
	}
	if placer == nil {
		placer = NewObjectPlacer(nil)
	}
	return &Controller{
		catalog: catalog,
		layers:  layers,
		placer:  placer,
		rng:     rand.New(rand.NewSource(seed)),
		state:   idleState{},
	}
}

func (c *Controller) Layers() *grid.Layers {
	return c.layers
}

func (c *Controller) Placer() *ObjectPlacer {
	return c.placer
}

func (c *Controller) Catalog() *prefabs.Catalog {
	return c.catalog
}

func (c *Controller) Cursor() grid.Cell {
	return c.cursor
}

func (c *Controller) Mode() Mode {
	return c.state.mode()
}

// Feedback returns the result of the last confirm or release.
func (c *Controller) Feedback() error {
	return c.feedback
}

// StartPlacement selects a catalog object for single placement.
func (c *Controller) StartPlacement(id int) error {
	spec, ok := c.catalog.ByID(id)
	if !ok {
		return fmt.Errorf("placement: start placing %d: %w", id, ErrUnknownObject)
	}
	c.enter(&placingState{spec: spec})
	return nil
}

// StartFilling selects a floor tile for rectangle fill.
func (c *Controller) StartFilling(id int) error {
	spec, ok := c.catalog.ByID(id)
	if !ok {
		return fmt.Errorf("placement: start filling %d: %w", id, ErrUnknownObject)
	}
	if spec.Kind != prefabs.KindFloor || spec.Footprint().Area() != 1 {
		return fmt.Errorf("placement: start filling %s: %w", spec.Name, ErrNotFillable)
	}
	c.enter(&fillingState{spec: spec})
	return nil
}

func (c *Controller) StartRemoving() {
	c.enter(removingState{})
}

// StartRandom enters random placement with a freshly rolled object.
func (c *Controller) StartRandom() error {
	st := &randomState{}
	if err := c.roll(st); err != nil {
		return err
	}
	c.enter(st)
	return nil
}

// Stop returns to idle.
func (c *Controller) Stop() {
	c.enter(idleState{})
}

// Reroll picks another random object when in random mode.
func (c *Controller) Reroll() error {
	st, ok := c.state.(*randomState)
	if !ok {
		return nil
	}
	return c.roll(st)
}

// RefreshCatalog swaps in a reloaded catalog. A selected object that no
// longer exists drops the editor back to idle.
func (c *Controller) RefreshCatalog(cat *prefabs.Catalog) {
	c.catalog = cat
	switch st := c.state.(type) {
	case *placingState:
		spec, ok := cat.ByID(st.spec.ID)
		if !ok {
			log.Printf("placement: object %d removed from catalog, stopping", st.spec.ID)
			c.Stop()
			return
		}
		st.spec = spec
	case *fillingState:
		spec, ok := cat.ByID(st.spec.ID)
		if !ok || spec.Kind != prefabs.KindFloor {
			c.Stop()
			return
		}
		st.spec = spec
	case *randomState:
		if err := c.roll(st); err != nil {
			log.Printf("placement: random pool after reload: %v", err)
			c.Stop()
		}
	}
}

// Dispatch applies one event and returns the feedback for it.
func (c *Controller) Dispatch(evt Event) error {
	var err error
	switch evt.Kind {
	case EventPointerMove:
		c.cursor = evt.Cell
		c.state.onPointerMove(c, evt.Cell)
		return nil
	case EventConfirm:
		c.cursor = evt.Cell
		err = c.state.onConfirm(c, evt.Cell)
	case EventRelease:
		c.cursor = evt.Cell
		err = c.state.onRelease(c, evt.Cell)
	case EventCancel:
		c.state.onCancel(c)
		return nil
	case EventRotate:
		c.rotate()
		return nil
	case EventRemove:
		if c.state.mode() == ModeRemoving {
			c.Stop()
		} else {
			c.StartRemoving()
		}
		return nil
	}
	c.feedback = err
	return err
}

// Pump drains the queue and returns every feedback error joined.
func (c *Controller) Pump(q *EventQueue) error {
	var errs []error
	for _, evt := range q.Drain() {
		if err := c.Dispatch(evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Preview describes the current cursor indicator.
func (c *Controller) Preview() Preview {
	switch st := c.state.(type) {
	case *placingState:
		return c.previewFor(st.spec, st.dir)
	case *randomState:
		return c.previewFor(st.spec, st.dir)
	case *fillingState:
		p := Preview{Active: true, Cell: c.cursor, Spec: st.spec, Valid: true}
		if st.dragging {
			p.Footprint = rect(st.start, c.cursor)
		} else {
			p.Footprint = []grid.Cell{c.cursor}
		}
		return p
	case removingState:
		_, ok := c.removable(c.cursor)
		return Preview{Active: true, Cell: c.cursor, Footprint: []grid.Cell{c.cursor}, Valid: ok}
	}
	return Preview{Cell: c.cursor}
}

func (c *Controller) previewFor(spec prefabs.ObjectSpec, dir grid.Direction) Preview {
	err := c.validate(spec, c.cursor, dir)
	return Preview{
		Active:    true,
		Cell:      c.cursor,
		Footprint: grid.Footprint(c.cursor, spec.Footprint(), dir),
		Valid:     err == nil,
		Err:       err,
		Dir:       dir,
		Spec:      spec,
	}
}

func (c *Controller) enter(next editorState) {
	prev := c.state.mode()
	c.state = next
	c.feedback = nil
	if prev != next.mode() {
		log.Printf("placement: mode %s -> %s", prev, next.mode())
	}
}

func (c *Controller) rotate() {
	switch st := c.state.(type) {
	case *placingState:
		st.dir = st.dir.Next()
	case *randomState:
		st.dir = st.dir.Next()
	}
}

func (c *Controller) roll(st *randomState) error {
	pool := c.catalog.RandomPool()
	if len(pool) == 0 {
		return ErrNoRandomCandidates
	}
	st.spec = pool[c.rng.Intn(len(pool))]
	st.dir = grid.Direction(c.rng.Intn(4))
	return nil
}

// validate runs every placement rule for spec at anchor.
func (c *Controller) validate(spec prefabs.ObjectSpec, anchor grid.Cell, dir grid.Direction) error {
	size := spec.Footprint()
	store := c.layers.For(spec.Kind.Layer())
	if !store.CanPlace(anchor, size, dir) {
		return fmt.Errorf("%s: place %s at %s: %w", store.Name(), spec.Name, anchor, grid.ErrAlreadyOccupied)
	}
	if !spec.Kind.Marker() {
		return nil
	}
	for _, cell := range grid.Footprint(anchor, size, dir) {
		if !c.layers.Floor.HasObjectAt(cell) {
			return ErrNoFloor
		}
	}
	switch spec.Kind {
	case prefabs.KindSpawnPoint:
		if c.placer.CountKind(prefabs.KindSpawnPoint) > 0 {
			return ErrSpawnExists
		}
	case prefabs.KindEnemySpawnPoint:
		if c.placer.CountKind(prefabs.KindEnemySpawnPoint) >= MaxPatrolPoints {
			return ErrPatrolFull
		}
	}
	return nil
}

// place validates and then writes to both the store and the placer.
func (c *Controller) place(spec prefabs.ObjectSpec, anchor grid.Cell, dir grid.Direction) (grid.Handle, error) {
	if err := c.validate(spec, anchor, dir); err != nil {
		return 0, err
	}
	return placeUnchecked(c.layers, c.placer, spec, anchor, dir)
}

func placeUnchecked(layers *grid.Layers, placer *ObjectPlacer, spec prefabs.ObjectSpec, anchor grid.Cell, dir grid.Direction) (grid.Handle, error) {
	store := layers.For(spec.Kind.Layer())
	if !store.CanPlace(anchor, spec.Footprint(), dir) {
		return 0, fmt.Errorf("%s: place %s at %s: %w", store.Name(), spec.Name, anchor, grid.ErrAlreadyOccupied)
	}
	h := placer.Place(spec, anchor, dir)
	if _, err := store.Place(anchor, spec.Footprint(), dir, spec.ID, h); err != nil {
		placer.Remove(h)
		return 0, err
	}
	return h, nil
}

// removable finds the store holding the topmost object at cell.
func (c *Controller) removable(cell grid.Cell) (*grid.Store, bool) {
	if c.layers.Furniture.HasObjectAt(cell) {
		return c.layers.Furniture, true
	}
	if c.layers.Floor.HasObjectAt(cell) {
		return c.layers.Floor, true
	}
	return nil, false
}

func (c *Controller) removeAt(cell grid.Cell) bool {
	store, ok := c.removable(cell)
	if !ok {
		return false
	}
	h, ok := store.RemoveAt(cell)
	if ok {
		c.placer.Remove(h)
	}
	return ok
}

func rect(a, b grid.Cell) []grid.Cell {
	minX, maxX := min(a.X, b.X), max(a.X, b.X)
	minZ, maxZ := min(a.Z, b.Z), max(a.Z, b.Z)
	out := make([]grid.Cell, 0, (maxX-minX+1)*(maxZ-minZ+1))
	for x := minX; x <= maxX; x++ {
		for z := minZ; z <= maxZ; z++ {
			out = append(out, grid.Cell{X: x, Z: z})
		}
	}
	return out
}
