package playtest

import (
	"errors"
	"testing"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/placement"
	"github.com/milk9111/levelforge/prefabs"
)

func loadCatalog(t *testing.T) *prefabs.Catalog {
	t.Helper()
	cat, err := prefabs.LoadCatalog(prefabs.DefaultCatalog)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	return cat
}

func corridorLevel() *levels.Level {
	lvl := &levels.Level{Name: "corridor"}
	for x := 0; x < 8; x++ {
		for z := 0; z < 3; z++ {
			lvl.Objects = append(lvl.Objects, levels.PlacedObject{PrefabID: 0, Position: common.V(float64(x), 0, float64(z))})
		}
	}
	// Oak in the middle row forces a detour.
	lvl.Objects = append(lvl.Objects, levels.PlacedObject{PrefabID: 10, Position: common.V(4, 0, 1)})
	lvl.SpawnPoint = common.V(0, 0, 0)
	lvl.PatrolPointA, lvl.HasPatrolPointA = common.V(0, 0, 1), true
	lvl.PatrolPointB, lvl.HasPatrolPointB = common.V(7, 0, 1), true
	return lvl
}

func TestSceneFromCourtyard(t *testing.T) {
	lvl, err := levels.LoadLevelFromFS("courtyard")
	if err != nil {
		t.Fatalf("LoadLevelFromFS: %v", err)
	}
	s, err := NewScene(lvl, loadCatalog(t), Options{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if s.Warnings() != nil {
		t.Fatalf("courtyard should load cleanly: %v", s.Warnings())
	}
	if got := s.Player().Position; got != common.V(1.5, 0, 1.5) {
		t.Fatalf("player spawn = %v", got)
	}
	if !s.Grid().Walkable(s.Player().Position) {
		t.Fatalf("player spawned on an unwalkable node")
	}
	// The shed covers x 4..6, z 4..5.
	if s.Grid().Walkable(common.V(5.5, 0, 4.5)) {
		t.Fatalf("shed footprint should be unwalkable")
	}
	for _, p := range s.Objects() {
		if p.Spec.Kind.Marker() {
			t.Fatalf("marker %q should be hidden", p.Spec.Name)
		}
	}
	if len(s.Enemies()) != 1 {
		t.Fatalf("enemies = %d, want 1", len(s.Enemies()))
	}
}

func TestEnemyPatrolsBetweenPoints(t *testing.T) {
	s, err := NewScene(corridorLevel(), loadCatalog(t), Options{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	e := s.Enemies()[0]
	if e.Position != common.V(0.5, 0, 1.5) {
		t.Fatalf("enemy start = %v", e.Position)
	}

	reachedB, backToA := false, false
	for i := 0; i < 600 && !backToA; i++ {
		s.Update(1.0 / 60)
		if !s.Grid().Walkable(e.Position) {
			t.Fatalf("enemy stepped onto an unwalkable node at %v", e.Position)
		}
		if e.Position.Dist(*e.PointB) < 1e-6 {
			reachedB = true
		}
		if reachedB && e.State == "to_a" && e.AtTarget() {
			backToA = true
		}
	}
	if !reachedB {
		t.Fatalf("enemy never reached B, state=%s pos=%v", e.State, e.Position)
	}
	if !backToA {
		t.Fatalf("enemy never returned to A, state=%s pos=%v", e.State, e.Position)
	}
}

func TestEnemyIdlesWithoutSecondPoint(t *testing.T) {
	lvl := corridorLevel()
	lvl.HasPatrolPointB = false
	s, err := NewScene(lvl, loadCatalog(t), Options{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	e := s.Enemies()[0]
	start := e.Position
	for i := 0; i < 120; i++ {
		s.Update(1.0 / 60)
	}
	if e.State != "idle" || e.Position != start {
		t.Fatalf("enemy should idle in place, state=%s pos=%v", e.State, e.Position)
	}
}

func TestEnemyIdlesWhenPathBlocked(t *testing.T) {
	lvl := corridorLevel()
	// Wall the corridor off completely.
	lvl.Objects = append(lvl.Objects,
		levels.PlacedObject{PrefabID: 10, Position: common.V(4, 0, 0)},
		levels.PlacedObject{PrefabID: 10, Position: common.V(4, 0, 2)},
	)
	s, err := NewScene(lvl, loadCatalog(t), Options{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	e := s.Enemies()[0]
	s.Update(1.0 / 60)
	s.Update(1.0 / 60)
	if e.State != "idle" {
		t.Fatalf("state = %s, want idle", e.State)
	}
}

func TestSceneSkipsUnknownObjects(t *testing.T) {
	lvl := corridorLevel()
	lvl.Objects = append(lvl.Objects, levels.PlacedObject{PrefabID: 9999, Position: common.V(2, 0, 2)})
	s, err := NewScene(lvl, loadCatalog(t), Options{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if !errors.Is(s.Warnings(), placement.ErrInvalidReference) {
		t.Fatalf("warnings = %v", s.Warnings())
	}
}

func TestPlayerMovement(t *testing.T) {
	lvl := corridorLevel()
	lvl.HasPatrolPointA = false
	s, err := NewScene(lvl, loadCatalog(t), Options{})
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	if len(s.Enemies()) != 0 {
		t.Fatalf("no patrol point A means no enemy")
	}
	if got := s.Player().Position; got != common.V(0.5, 0, 0.5) {
		t.Fatalf("spawn = %v", got)
	}
	if s.MovePlayer(common.V(-1, 0, 0), 0.5) {
		t.Fatalf("moving off the floor should be refused")
	}
	if !s.MovePlayer(common.V(1, 0, 0), 0.25) {
		t.Fatalf("moving along the floor should succeed")
	}
	if got := s.Player().Position; got != common.V(1.5, 0, 0.5) {
		t.Fatalf("position = %v", got)
	}
}

// editedLevel fills (0,0)..(3,3) with grass through the editor and places
// the player spawn at spawn when it is non-nil.
func editedLevel(t *testing.T, cat *prefabs.Catalog, spawn *grid.Cell) *levels.Level {
	t.Helper()
	ctrl := placement.NewController(cat, nil, nil, 1)
	if err := ctrl.StartFilling(0); err != nil {
		t.Fatalf("StartFilling: %v", err)
	}
	ctrl.Dispatch(placement.Event{Kind: placement.EventConfirm, Cell: grid.C(0, 0)})
	if err := ctrl.Dispatch(placement.Event{Kind: placement.EventRelease, Cell: grid.C(3, 3)}); err != nil {
		t.Fatalf("fill: %v", err)
	}
	if spawn != nil {
		if err := ctrl.StartPlacement(100); err != nil {
			t.Fatalf("StartPlacement: %v", err)
		}
		if err := ctrl.Dispatch(placement.Event{Kind: placement.EventConfirm, Cell: *spawn}); err != nil {
			t.Fatalf("place spawn: %v", err)
		}
	}
	return ctrl.Snapshot()
}

func TestSpawnPosition(t *testing.T) {
	cat := loadCatalog(t)
	origin, inner := grid.C(0, 0), grid.C(2, 1)
	cases := []struct {
		name  string
		spawn *grid.Cell
		want  common.Vec3
	}{
		{name: "origin_cell", spawn: &origin, want: common.V(0.5, 0, 0.5)},
		{name: "inner_cell", spawn: &inner, want: common.V(2.5, 0, 1.5)},
		{name: "no_marker", want: levels.DefaultSpawnPoint.Add(common.V(0.5, 0, 0.5))},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lvl := editedLevel(t, cat, tc.spawn)
			s, err := NewScene(lvl, cat, Options{})
			if err != nil {
				t.Fatalf("NewScene: %v", err)
			}
			if got := s.Player().Position; got != tc.want {
				t.Fatalf("spawn = %v, want %v (saved %v)", got, tc.want, lvl.SpawnPoint)
			}
		})
	}
}

func TestScriptInitialState(t *testing.T) {
	rt, err := compileScriptRuntime("inline", []byte(`
initial_state := "wander"
onEnter := func(engine, state, current) {}
update := func(engine, state, current) { engine.transition("done") }
onExit := func(engine, state, current) {}
`))
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if rt.initial != "wander" {
		t.Fatalf("initial = %q", rt.initial)
	}
	e := &Enemy{rt: rt}
	next, err := rt.step("", e.engine(nil))
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if next != "done" {
		t.Fatalf("next = %q, want done", next)
	}
}
