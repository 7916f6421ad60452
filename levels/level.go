package levels

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/milk9111/levelforge/common"
)

// DefaultSpawnPoint is used when a level has no player spawn marker.
var DefaultSpawnPoint = common.V(-15, 0, -15)

// DefaultDir is where the editor saves levels.
const DefaultDir = "levels"

// Level is the persisted form of an edited level.
type Level struct {
	ID              string         `json:"id,omitempty"`
	Name            string         `json:"name,omitempty"`
	Objects         []PlacedObject `json:"objects"`
	SpawnPoint      common.Vec3    `json:"spawn_point"`
	PatrolPointA    common.Vec3    `json:"patrol_point_a"`
	PatrolPointB    common.Vec3    `json:"patrol_point_b"`
	HasPatrolPointA bool           `json:"has_patrol_point_a"`
	HasPatrolPointB bool           `json:"has_patrol_point_b"`
}

// PlacedObject is one placed representation: catalog id, world position of
// the model and its euler rotation in degrees.
type PlacedObject struct {
	PrefabID int         `json:"prefab_id"`
	Position common.Vec3 `json:"position"`
	Rotation common.Vec3 `json:"rotation"`
}

// Save writes level to dir/name.json and returns the path.
func Save(dir, name string, level *Level) (string, error) {
	if level == nil {
		return "", errors.New("levels: save: nil level")
	}
	name = cleanName(name)
	if name == "" {
		return "", errors.New("levels: save: empty level name")
	}
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("levels: save %s: %w", name, err)
	}
	if level.ID == "" {
		level.ID = uuid.New().String()
	}
	if level.Name == "" {
		level.Name = name
	}
	if level.Objects == nil {
		level.Objects = []PlacedObject{}
	}

	data, err := json.MarshalIndent(level, "", "  ")
	if err != nil {
		return "", fmt.Errorf("levels: marshal %s: %w", name, err)
	}
	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("levels: write %s: %w", path, err)
	}
	return path, nil
}

// Load reads dir/name(.json). A missing file wraps fs.ErrNotExist.
func Load(dir, name string) (*Level, error) {
	name = cleanName(name)
	if dir == "" {
		dir = DefaultDir
	}
	path := filepath.Join(dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("levels: read %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses level JSON.
func Decode(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("levels: unmarshal level: %w", err)
	}
	return &lvl, nil
}

// Encode renders level JSON the way Save writes it.
func Encode(level *Level) ([]byte, error) {
	return json.MarshalIndent(level, "", "  ")
}

// List returns the sorted level names saved in dir. A missing directory is
// an empty list.
func List(dir string) ([]string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("levels: list %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

func cleanName(name string) string {
	name = strings.TrimSpace(filepath.Base(filepath.ToSlash(name)))
	if name == "." || name == "/" {
		return ""
	}
	if strings.EqualFold(filepath.Ext(name), ".json") {
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return name
}
