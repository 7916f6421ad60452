package placement

import (
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/prefabs"
)

// ErrInvalidReference marks a saved object whose id is not in the catalog.
var ErrInvalidReference = errors.New("placement: invalid object reference")

// RestoreHook is called after every object Restore places.
type RestoreHook func(p Placed)

// Snapshot converts the placed representations into a level. Markers are
// written both as objects and as the spawn and patrol fields; patrol points
// are A then B in placement order.
func Snapshot(placer *ObjectPlacer) *levels.Level {
	lvl := &levels.Level{
		Objects:    []levels.PlacedObject{},
		SpawnPoint: levels.DefaultSpawnPoint,
	}
	patrols := 0
	for _, p := range placer.All() {
		lvl.Objects = append(lvl.Objects, levels.PlacedObject{
			PrefabID: p.Spec.ID,
			Position: p.Position,
			Rotation: p.Rotation(),
		})
		marker := common.CellToWorld(p.Anchor, common.CellSize)
		switch p.Spec.Kind {
		case prefabs.KindSpawnPoint:
			lvl.SpawnPoint = marker
		case prefabs.KindEnemySpawnPoint:
			switch patrols {
			case 0:
				lvl.PatrolPointA, lvl.HasPatrolPointA = marker, true
			case 1:
				lvl.PatrolPointB, lvl.HasPatrolPointB = marker, true
			}
			patrols++
		}
	}
	return lvl
}

// Restore places every object of level into layers and placer. Unknown ids
// and overlapping entries are skipped; the returned error joins every
// skipped entry and is nil when the whole level loaded.
func Restore(level *levels.Level, catalog *prefabs.Catalog, layers *grid.Layers, placer *ObjectPlacer, hook RestoreHook) error {
	if level == nil {
		return nil
	}
	var errs []error
	for i, obj := range level.Objects {
		spec, ok := catalog.ByID(obj.PrefabID)
		if !ok {
			err := fmt.Errorf("placement: object %d (#%d) at %s: %w", obj.PrefabID, i, obj.Position, ErrInvalidReference)
			log.Printf("level: skipping %v", err)
			errs = append(errs, err)
			continue
		}
		dir := grid.DirectionFromAngle(obj.Rotation.Y)
		anchor := AnchorFromPosition(obj.Position, spec.Footprint(), dir)
		h, err := placeUnchecked(layers, placer, spec, anchor, dir)
		if err != nil {
			log.Printf("level: skipping %s: %v", spec.Name, err)
			errs = append(errs, err)
			continue
		}
		if hook != nil {
			if p, ok := placer.Get(h); ok {
				hook(p)
			}
		}
	}
	log.Printf("level: restored %d of %d objects", len(level.Objects)-len(errs), len(level.Objects))
	return errors.Join(errs...)
}

// AnchorFromPosition undoes the model rotation offset of a saved position.
func AnchorFromPosition(pos common.Vec3, size grid.Size, dir grid.Direction) grid.Cell {
	cell := pos.Scale(1 / common.CellSize).Cell()
	cell.Y = 0
	return cell.Sub(grid.LoadOffset(dir, grid.Rotated(size, dir)))
}

// ClearScene empties both stores and destroys every representation.
func ClearScene(layers *grid.Layers, placer *ObjectPlacer) {
	layers.Clear()
	placer.Clear()
}

// Snapshot returns the controller's scene as a level carrying the id of the
// level being edited.
func (c *Controller) Snapshot() *levels.Level {
	lvl := Snapshot(c.placer)
	lvl.ID = c.levelID
	return lvl
}

// LevelID is the id of the level being edited, empty until loaded or saved.
func (c *Controller) LevelID() string {
	return c.levelID
}

// SetLevelID records the id a save assigned.
func (c *Controller) SetLevelID(id string) {
	c.levelID = id
}

// Load replaces the scene with level. The editor returns to idle.
func (c *Controller) Load(level *levels.Level) error {
	c.Stop()
	ClearScene(c.layers, c.placer)
	if level != nil {
		c.levelID = level.ID
	}
	return Restore(level, c.catalog, c.layers, c.placer, nil)
}

// Clear empties the scene.
func (c *Controller) Clear() {
	ClearScene(c.layers, c.placer)
}
