package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/levelforge/grid"
)

// Kind decides which occupancy layer an object lives on and which placement
// rules apply to it.
type Kind string

const (
	KindFloor           Kind = "floor"
	KindFurniture       Kind = "furniture"
	KindSpawnPoint      Kind = "spawn_point"
	KindEnemySpawnPoint Kind = "enemy_spawn_point"
)

func (k Kind) valid() bool {
	switch k {
	case KindFloor, KindFurniture, KindSpawnPoint, KindEnemySpawnPoint:
		return true
	}
	return false
}

// Layer returns the occupancy layer for the kind. Spawn and patrol markers
// share the furniture layer.
func (k Kind) Layer() grid.Layer {
	if k == KindFloor {
		return grid.LayerFloor
	}
	return grid.LayerFurniture
}

// Marker reports whether the kind is a spawn or patrol marker.
func (k Kind) Marker() bool {
	return k == KindSpawnPoint || k == KindEnemySpawnPoint
}

// Purpose groups objects in the item panel filter.
type Purpose string

const (
	PurposeNone       Purpose = "none"
	PurposeTree       Purpose = "tree"
	PurposeGround     Purpose = "ground"
	PurposeBuilding   Purpose = "building"
	PurposeDecoration Purpose = "decoration"
	PurposeGame       Purpose = "game"
)

// ObjectSpec describes one placeable object.
type ObjectSpec struct {
	Name    string     `yaml:"name"`
	ID      int        `yaml:"id"`
	Size    grid.Size  `yaml:"size"`
	Kind    Kind       `yaml:"kind"`
	Purpose Purpose    `yaml:"purpose"`
	Random  bool       `yaml:"random"`
	Color   *YAMLColor `yaml:"color"`
}

// Footprint is the normalized unrotated size.
func (s ObjectSpec) Footprint() grid.Size {
	return s.Size.Normalize()
}

// RGBA returns the spec colour or a grey fallback.
func (s ObjectSpec) RGBA() color.RGBA {
	if s.Color == nil || s.Color.Color == nil {
		return color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	}
	r, g, b, a := s.Color.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

// LoadSpec reads and decodes a YAML file from the prefabs directory.
func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}
	a := uint8(0xff)
	if len(s) == 8 {
		if a, err = parse(6); err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.Color == nil {
		return "", nil
	}
	n := color.NRGBAModel.Convert(c.Color).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x%02x", n.R, n.G, n.B, n.A), nil
}
