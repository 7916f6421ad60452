package placement

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/prefabs"
)

const (
	idGrass  = 0
	idDeck   = 2
	idBench  = 20
	idCrate  = 21
	idSpawn  = 100
	idPatrol = 101
)

func testCatalog(t *testing.T) *prefabs.Catalog {
	t.Helper()
	cat, err := prefabs.NewCatalog(
		prefabs.ObjectSpec{Name: "grass", ID: idGrass, Size: grid.Size{W: 1, D: 1}, Kind: prefabs.KindFloor},
		prefabs.ObjectSpec{Name: "deck", ID: idDeck, Size: grid.Size{W: 2, D: 2}, Kind: prefabs.KindFloor},
		prefabs.ObjectSpec{Name: "bench", ID: idBench, Size: grid.Size{W: 2, D: 1}, Kind: prefabs.KindFurniture, Random: true},
		prefabs.ObjectSpec{Name: "crate", ID: idCrate, Size: grid.Size{W: 2, D: 2}, Kind: prefabs.KindFurniture},
		prefabs.ObjectSpec{Name: "spawn", ID: idSpawn, Size: grid.Size{W: 1, D: 1}, Kind: prefabs.KindSpawnPoint},
		prefabs.ObjectSpec{Name: "patrol", ID: idPatrol, Size: grid.Size{W: 1, D: 1}, Kind: prefabs.KindEnemySpawnPoint},
	)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat
}

type recordingSpawner struct {
	spawned   int
	despawned []grid.Handle
}

func (r *recordingSpawner) Spawn(Placed) { r.spawned++ }
func (r *recordingSpawner) Despawn(h grid.Handle) { r.despawned = append(r.despawned, h) }

func newTestController(t *testing.T) (*Controller, *recordingSpawner) {
	t.Helper()
	sp := &recordingSpawner{}
	return NewController(testCatalog(t), grid.NewLayers(), NewObjectPlacer(sp), 1), sp
}

func fill(t *testing.T, c *Controller, from, to grid.Cell) {
	t.Helper()
	if err := c.StartFilling(idGrass); err != nil {
		t.Fatalf("StartFilling: %v", err)
	}
	c.Dispatch(Event{Kind: EventConfirm, Cell: from})
	c.Dispatch(Event{Kind: EventPointerMove, Cell: to})
	if err := c.Dispatch(Event{Kind: EventRelease, Cell: to}); err != nil {
		t.Fatalf("fill release: %v", err)
	}
}

func TestPlacerStaleHandles(t *testing.T) {
	sp := &recordingSpawner{}
	p := NewObjectPlacer(sp)
	spec := prefabs.ObjectSpec{Name: "bench", ID: idBench, Size: grid.Size{W: 2, D: 1}, Kind: prefabs.KindFurniture}

	h1 := p.Place(spec, grid.C(0, 0), grid.Down)
	if !p.Remove(h1) {
		t.Fatalf("Remove(h1) failed")
	}
	h2 := p.Place(spec, grid.C(3, 3), grid.Left)
	if h1.Slot() != h2.Slot() {
		t.Fatalf("expected slot reuse, got %s and %s", h1, h2)
	}
	if p.Remove(h1) {
		t.Fatalf("stale handle removed a live object")
	}
	if _, ok := p.Get(h1); ok {
		t.Fatalf("stale handle resolved")
	}
	got, ok := p.Get(h2)
	if !ok {
		t.Fatalf("Get(h2) failed")
	}
	// Left rotation offsets the model by the unrotated width along z.
	if want := common.V(3, 0, 5); got.Position != want {
		t.Fatalf("position = %v, want %v", got.Position, want)
	}
	if sp.spawned != 2 || len(sp.despawned) != 1 {
		t.Fatalf("spawner saw %d spawns %d despawns", sp.spawned, len(sp.despawned))
	}
}

func TestEventQueueFIFO(t *testing.T) {
	var q EventQueue
	q.Push(Event{Kind: EventPointerMove, Cell: grid.C(1, 1)})
	q.Push(Event{Kind: EventConfirm, Cell: grid.C(1, 1)})
	got := q.Drain()
	want := []Event{{Kind: EventPointerMove, Cell: grid.C(1, 1)}, {Kind: EventConfirm, Cell: grid.C(1, 1)}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Drain mismatch:\n%s", diff)
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatalf("queue not empty after drain")
	}
}

func TestPlacingRules(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T, c *Controller)
		id    int
		cell  grid.Cell
		want  error
	}{
		{
			name: "furniture_on_empty_ground",
			id:   idBench,
			cell: grid.C(0, 0),
		},
		{
			name: "overlap_rejected",
			setup: func(t *testing.T, c *Controller) {
				c.StartPlacement(idCrate)
				if err := c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(0, 0)}); err != nil {
					t.Fatalf("setup place: %v", err)
				}
			},
			id:   idBench,
			cell: grid.C(1, 1),
			want: grid.ErrAlreadyOccupied,
		},
		{
			name: "spawn_needs_floor",
			id:   idSpawn,
			cell: grid.C(0, 0),
			want: ErrNoFloor,
		},
		{
			name: "spawn_on_floor",
			setup: func(t *testing.T, c *Controller) {
				fill(t, c, grid.C(0, 0), grid.C(2, 2))
			},
			id:   idSpawn,
			cell: grid.C(1, 1),
		},
		{
			name: "second_spawn_rejected",
			setup: func(t *testing.T, c *Controller) {
				fill(t, c, grid.C(0, 0), grid.C(2, 2))
				c.StartPlacement(idSpawn)
				if err := c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(0, 0)}); err != nil {
					t.Fatalf("setup spawn: %v", err)
				}
			},
			id:   idSpawn,
			cell: grid.C(2, 2),
			want: ErrSpawnExists,
		},
		{
			name: "third_patrol_rejected",
			setup: func(t *testing.T, c *Controller) {
				fill(t, c, grid.C(0, 0), grid.C(2, 2))
				c.StartPlacement(idPatrol)
				for _, cell := range []grid.Cell{grid.C(0, 0), grid.C(1, 0)} {
					if err := c.Dispatch(Event{Kind: EventConfirm, Cell: cell}); err != nil {
						t.Fatalf("setup patrol: %v", err)
					}
				}
			},
			id:   idPatrol,
			cell: grid.C(2, 2),
			want: ErrPatrolFull,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestController(t)
			if tc.setup != nil {
				tc.setup(t, c)
			}
			if err := c.StartPlacement(tc.id); err != nil {
				t.Fatalf("StartPlacement: %v", err)
			}
			c.Dispatch(Event{Kind: EventPointerMove, Cell: tc.cell})
			before := c.Placer().Len()
			if pv := c.Preview(); pv.Valid != (tc.want == nil) {
				t.Fatalf("preview valid = %v, err %v", pv.Valid, pv.Err)
			}
			err := c.Dispatch(Event{Kind: EventConfirm, Cell: tc.cell})
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if c.Placer().Len() != before+1 {
					t.Fatalf("object not placed")
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if c.Placer().Len() != before {
				t.Fatalf("rejected placement changed the scene")
			}
			if !errors.Is(c.Feedback(), tc.want) {
				t.Fatalf("feedback = %v", c.Feedback())
			}
		})
	}
}

func TestRotateSwapsFootprint(t *testing.T) {
	c, _ := newTestController(t)
	c.StartPlacement(idBench)
	c.Dispatch(Event{Kind: EventPointerMove, Cell: grid.C(5, 5)})
	c.Dispatch(Event{Kind: EventRotate})
	pv := c.Preview()
	want := []grid.Cell{grid.C(5, 5), grid.C(5, 6)}
	if diff := cmp.Diff(want, pv.Footprint); diff != "" || pv.Dir != grid.Left {
		t.Fatalf("rotated preview mismatch dir=%s:\n%s", pv.Dir, diff)
	}
}

func TestFillReplacesFloor(t *testing.T) {
	c, sp := newTestController(t)
	c.StartPlacement(idDeck)
	if err := c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(0, 0)}); err != nil {
		t.Fatalf("place deck: %v", err)
	}
	fill(t, c, grid.C(2, 2), grid.C(0, 0))

	floor := c.Layers().Floor
	if floor.Len() != 9 || floor.Cells() != 9 {
		t.Fatalf("floor has %d records over %d cells, want 9/9", floor.Len(), floor.Cells())
	}
	for _, r := range floor.Records() {
		if r.ObjectID != idGrass {
			t.Fatalf("deck survived fill: %+v", r)
		}
	}
	if len(sp.despawned) != 1 {
		t.Fatalf("deck representation not despawned")
	}

	if err := c.Dispatch(Event{Kind: EventCancel}); err != nil || c.Mode() != ModeIdle {
		t.Fatalf("cancel should leave fill mode, mode=%s", c.Mode())
	}
	if err := c.StartFilling(idDeck); !errors.Is(err, ErrNotFillable) {
		t.Fatalf("filling with a 2x2 tile should fail, got %v", err)
	}
}

func TestRemovingTakesFurnitureFirst(t *testing.T) {
	c, _ := newTestController(t)
	fill(t, c, grid.C(0, 0), grid.C(1, 1))
	c.StartPlacement(idCrate)
	if err := c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(0, 0)}); err != nil {
		t.Fatalf("place crate: %v", err)
	}

	c.Dispatch(Event{Kind: EventRemove})
	if c.Mode() != ModeRemoving {
		t.Fatalf("mode = %s", c.Mode())
	}
	c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(1, 1)})
	if c.Layers().Furniture.Len() != 0 {
		t.Fatalf("crate should be removed from every cell")
	}
	if c.Layers().Floor.Len() != 4 {
		t.Fatalf("floor should be untouched")
	}
	c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(1, 1)})
	if c.Layers().Floor.HasObjectAt(grid.C(1, 1)) {
		t.Fatalf("second remove should take the floor tile")
	}
	if err := c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(9, 9)}); err != nil {
		t.Fatalf("removing an empty cell is a no-op, got %v", err)
	}
}

func TestRandomPlacing(t *testing.T) {
	c, _ := newTestController(t)
	if err := c.StartRandom(); err != nil {
		t.Fatalf("StartRandom: %v", err)
	}
	pv := c.Preview()
	if pv.Spec.ID != idBench {
		t.Fatalf("random pool has only the bench, got %q", pv.Spec.Name)
	}
	var q EventQueue
	q.Push(Event{Kind: EventPointerMove, Cell: grid.C(4, 4)})
	q.Push(Event{Kind: EventConfirm, Cell: grid.C(4, 4)})
	if err := c.Pump(&q); err != nil {
		t.Fatalf("Pump: %v", err)
	}
	if c.Layers().Furniture.Len() != 1 || c.Mode() != ModeRandom {
		t.Fatalf("random placement failed, mode=%s", c.Mode())
	}

	empty, err := prefabs.NewCatalog(prefabs.ObjectSpec{Name: "grass", ID: idGrass, Kind: prefabs.KindFloor})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	c.RefreshCatalog(empty)
	if c.Mode() != ModeIdle {
		t.Fatalf("empty pool after reload should stop random mode")
	}
	if err := c.StartRandom(); !errors.Is(err, ErrNoRandomCandidates) {
		t.Fatalf("err = %v, want ErrNoRandomCandidates", err)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c, _ := newTestController(t)
	fill(t, c, grid.C(0, 0), grid.C(4, 4))
	steps := []struct {
		id      int
		cell    grid.Cell
		rotates int
	}{
		{idBench, grid.C(0, 0), 1},
		{idCrate, grid.C(2, 2), 2},
		{idSpawn, grid.C(4, 0), 0},
		{idPatrol, grid.C(4, 1), 0},
		{idPatrol, grid.C(0, 4), 0},
	}
	for _, s := range steps {
		c.StartPlacement(s.id)
		for i := 0; i < s.rotates; i++ {
			c.Dispatch(Event{Kind: EventRotate})
		}
		if err := c.Dispatch(Event{Kind: EventConfirm, Cell: s.cell}); err != nil {
			t.Fatalf("place %d: %v", s.id, err)
		}
	}

	lvl := c.Snapshot()
	if lvl.SpawnPoint != common.V(4, 0, 0) {
		t.Fatalf("spawn = %v", lvl.SpawnPoint)
	}
	if !lvl.HasPatrolPointA || lvl.PatrolPointA != common.V(4, 0, 1) || lvl.PatrolPointB != common.V(0, 0, 4) {
		t.Fatalf("patrol points = %v %v", lvl.PatrolPointA, lvl.PatrolPointB)
	}

	data, err := levels.Encode(lvl)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := levels.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	other, _ := newTestController(t)
	hooked := 0
	if err := Restore(decoded, other.Catalog(), other.Layers(), other.Placer(), func(Placed) { hooked++ }); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if hooked != len(decoded.Objects) {
		t.Fatalf("hook ran %d times for %d objects", hooked, len(decoded.Objects))
	}
	for _, layer := range []grid.Layer{grid.LayerFloor, grid.LayerFurniture} {
		want := cellsOf(c.Layers().For(layer))
		got := cellsOf(other.Layers().For(layer))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s occupancy differs after restore:\n%s", layer, diff)
		}
	}
}

func TestRestoreSkipsInvalidReferences(t *testing.T) {
	c, _ := newTestController(t)
	lvl := &levels.Level{Objects: []levels.PlacedObject{
		{PrefabID: idGrass, Position: common.V(0, 0, 0)},
		{PrefabID: 999, Position: common.V(1, 0, 0)},
		{PrefabID: idGrass, Position: common.V(1, 0, 0)},
		{PrefabID: idGrass, Position: common.V(1, 0, 0)},
	}}
	err := c.Load(lvl)
	if !errors.Is(err, ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	if !errors.Is(err, grid.ErrAlreadyOccupied) {
		t.Fatalf("expected the duplicate tile to be reported, got %v", err)
	}
	if c.Layers().Floor.Len() != 2 {
		t.Fatalf("valid entries should still load, got %d", c.Layers().Floor.Len())
	}
}

func TestSnapshotKeepsLevelID(t *testing.T) {
	dir := t.TempDir()
	c, _ := newTestController(t)
	c.StartPlacement(idGrass)
	if err := c.Dispatch(Event{Kind: EventConfirm, Cell: grid.C(0, 0)}); err != nil {
		t.Fatalf("place: %v", err)
	}

	first := c.Snapshot()
	if _, err := levels.Save(dir, "yard", first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	c.SetLevelID(first.ID)
	second := c.Snapshot()
	if _, err := levels.Save(dir, "yard", second); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if first.ID == "" || second.ID != first.ID {
		t.Fatalf("ids differ across saves: %q then %q", first.ID, second.ID)
	}

	loaded, err := levels.Load(dir, "yard")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	other, _ := newTestController(t)
	if err := other.Load(loaded); err != nil {
		t.Fatalf("Controller.Load: %v", err)
	}
	if got := other.Snapshot().ID; got != first.ID {
		t.Fatalf("reloaded level id = %q, want %q", got, first.ID)
	}
}

func TestAnchorFromPosition(t *testing.T) {
	size := grid.Size{W: 3, D: 2}
	anchor := grid.C(4, 7)
	for _, dir := range []grid.Direction{grid.Down, grid.Left, grid.Up, grid.Right} {
		pos := common.CellToWorld(anchor.Add(grid.RotationOffset(dir, size)), common.CellSize)
		if got := AnchorFromPosition(pos, size, dir); got != anchor {
			t.Fatalf("%s: anchor = %s, want %s", dir, got, anchor)
		}
	}
}

func cellsOf(s *grid.Store) map[grid.Cell]int {
	out := map[grid.Cell]int{}
	for _, r := range s.Records() {
		for _, cell := range r.Cells {
			out[cell] = r.ObjectID
		}
	}
	return out
}
