package levels

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/milk9111/levelforge/common"
)

func TestSaveLoadList(t *testing.T) {
	dir := t.TempDir()
	lvl := &Level{
		Objects: []PlacedObject{
			{PrefabID: 1, Position: common.V(2, 0, 3)},
			{PrefabID: 20, Position: common.V(1, 0, 9), Rotation: common.V(0, 90, 0)},
		},
		SpawnPoint:      common.V(1, 0, 1),
		PatrolPointA:    common.V(4, 0, 4),
		HasPatrolPointA: true,
	}

	path, err := Save(dir, "yard.json", lvl)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if path == "" || lvl.ID == "" || lvl.Name != "yard" {
		t.Fatalf("Save should assign id and name: path=%q level=%+v", path, lvl)
	}

	got, err := Load(dir, "yard")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(lvl, got); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := Save(dir, "another", &Level{}); err != nil {
		t.Fatalf("Save another: %v", err)
	}
	names, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if diff := cmp.Diff([]string{"another", "yard"}, names); diff != "" {
		t.Fatalf("List mismatch:\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir(), "nope")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	names, err := List(t.TempDir() + "/missing")
	if err != nil || len(names) != 0 {
		t.Fatalf("List of missing dir = %v, %v", names, err)
	}
}

func TestSaveRejectsEmptyName(t *testing.T) {
	if _, err := Save(t.TempDir(), "  ", &Level{}); err == nil {
		t.Fatalf("expected error for empty name")
	}
	if _, err := Save(t.TempDir(), "x", nil); err == nil {
		t.Fatalf("expected error for nil level")
	}
}

func TestEmbeddedCourtyard(t *testing.T) {
	lvl, err := LoadLevelFromFS("courtyard")
	if err != nil {
		t.Fatalf("LoadLevelFromFS: %v", err)
	}
	if len(lvl.Objects) == 0 || !lvl.HasPatrolPointA || !lvl.HasPatrolPointB {
		t.Fatalf("courtyard sample looks incomplete: %d objects", len(lvl.Objects))
	}
	opened, err := Open(t.TempDir(), "courtyard")
	if err != nil {
		t.Fatalf("Open should fall back to embedded: %v", err)
	}
	if opened.ID != lvl.ID {
		t.Fatalf("Open returned a different level")
	}
}
