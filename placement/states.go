package placement

import (
	"errors"
	"log"

	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/prefabs"
)

// editorState is one variant of the editor state machine. The set of
// implementations is closed: idleState, placingState, fillingState,
// removingState and randomState.
type editorState interface {
	mode() Mode
	onPointerMove(c *Controller, cell grid.Cell)
	onConfirm(c *Controller, cell grid.Cell) error
	onRelease(c *Controller, cell grid.Cell) error
	onCancel(c *Controller)
}

type idleState struct{}

func (idleState) mode() Mode { return ModeIdle }
func (idleState) onPointerMove(*Controller, grid.Cell) {}
func (idleState) onConfirm(*Controller, grid.Cell) error { return nil }
func (idleState) onRelease(*Controller, grid.Cell) error { return nil }
func (idleState) onCancel(*Controller) {}

// placingState places one selected object per confirm and stays active.
type placingState struct {
	spec prefabs.ObjectSpec
	dir  grid.Direction
}

func (*placingState) mode() Mode { return ModePlacing }

func (*placingState) onPointerMove(*Controller, grid.Cell) {}

func (s *placingState) onConfirm(c *Controller, cell grid.Cell) error {
	if _, err := c.place(s.spec, cell, s.dir); err != nil {
		return err
	}
	log.Printf("placement: placed %s at %s facing %s", s.spec.Name, cell, s.dir)
	return nil
}

func (*placingState) onRelease(*Controller, grid.Cell) error { return nil }

func (*placingState) onCancel(c *Controller) {
	c.Stop()
}

// fillingState drags a rectangle and covers it with one floor tile per cell
// on release. Existing floor under the rectangle is replaced.
type fillingState struct {
	spec     prefabs.ObjectSpec
	start    grid.Cell
	dragging bool
}

func (*fillingState) mode() Mode { return ModeFilling }

func (*fillingState) onPointerMove(*Controller, grid.Cell) {}

func (s *fillingState) onConfirm(_ *Controller, cell grid.Cell) error {
	s.start = cell
	s.dragging = true
	return nil
}

func (s *fillingState) onRelease(c *Controller, cell grid.Cell) error {
	if !s.dragging {
		return nil
	}
	s.dragging = false
	cells := rect(s.start, cell)
	var errs []error
	for _, target := range cells {
		if h, ok := c.layers.Floor.RemoveAt(target); ok {
			c.placer.Remove(h)
		}
		if _, err := placeUnchecked(c.layers, c.placer, s.spec, target, grid.Down); err != nil {
			errs = append(errs, err)
		}
	}
	log.Printf("placement: filled %d cells from %s to %s with %s", len(cells), s.start, cell, s.spec.Name)
	return errors.Join(errs...)
}

// onCancel drops an in-progress drag first, then leaves fill mode.
func (s *fillingState) onCancel(c *Controller) {
	if s.dragging {
		s.dragging = false
		return
	}
	c.Stop()
}

// removingState deletes the topmost object under the cursor on confirm.
type removingState struct{}

func (removingState) mode() Mode { return ModeRemoving }

func (removingState) onPointerMove(*Controller, grid.Cell) {}

func (removingState) onConfirm(c *Controller, cell grid.Cell) error {
	if c.removeAt(cell) {
		log.Printf("placement: removed object at %s", cell)
	}
	return nil
}

func (removingState) onRelease(*Controller, grid.Cell) error { return nil }

func (removingState) onCancel(c *Controller) {
	c.Stop()
}

// randomState places a randomly rolled object and rolls again after every
// successful placement.
type randomState struct {
	spec prefabs.ObjectSpec
	dir  grid.Direction
}

func (*randomState) mode() Mode { return ModeRandom }

func (*randomState) onPointerMove(*Controller, grid.Cell) {}

func (s *randomState) onConfirm(c *Controller, cell grid.Cell) error {
	if _, err := c.place(s.spec, cell, s.dir); err != nil {
		return err
	}
	log.Printf("placement: randomly placed %s at %s facing %s", s.spec.Name, cell, s.dir)
	return c.roll(s)
}

func (*randomState) onRelease(*Controller, grid.Cell) error { return nil }

func (*randomState) onCancel(c *Controller) {
	c.Stop()
}
