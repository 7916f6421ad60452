package prefabs

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultCatalog is the catalog file the tools load when none is given.
const DefaultCatalog = "catalog.yaml"

type catalogFile struct {
	Objects []ObjectSpec `yaml:"objects"`
}

// Catalog is the object database the editor places from. It is immutable
// once built; a reload produces a new Catalog.
type Catalog struct {
	specs []ObjectSpec
	byID  map[int]int
}

// LoadCatalog loads and validates a catalog from the prefabs directory,
// preferring a copy on disk over the embedded one.
func LoadCatalog(name string) (*Catalog, error) {
	if name == "" {
		name = DefaultCatalog
	}
	file, err := LoadSpec[catalogFile](name)
	if err != nil {
		return nil, err
	}
	cat, err := newCatalog(file.Objects)
	if err != nil {
		return nil, fmt.Errorf("prefabs: catalog %s: %w", name, err)
	}
	return cat, nil
}

// ParseCatalog decodes a catalog from raw YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal catalog: %w", err)
	}
	cat, err := newCatalog(file.Objects)
	if err != nil {
		return nil, fmt.Errorf("prefabs: catalog: %w", err)
	}
	return cat, nil
}

// NewCatalog builds a catalog from specs, validating them the same way a
// loaded file is validated.
func NewCatalog(specs ...ObjectSpec) (*Catalog, error) {
	return newCatalog(specs)
}

func newCatalog(specs []ObjectSpec) (*Catalog, error) {
	cat := &Catalog{
		specs: make([]ObjectSpec, 0, len(specs)),
		byID:  make(map[int]int, len(specs)),
	}
	for _, s := range specs {
		if s.Kind == "" {
			s.Kind = KindFurniture
		}
		if !s.Kind.valid() {
			return nil, fmt.Errorf("object %q: unknown kind %q", s.Name, s.Kind)
		}
		if s.Size.W < 0 || s.Size.D < 0 {
			return nil, fmt.Errorf("object %q: negative size %dx%d", s.Name, s.Size.W, s.Size.D)
		}
		s.Size = s.Size.Normalize()
		if s.Purpose == "" {
			s.Purpose = PurposeNone
		}
		if _, dup := cat.byID[s.ID]; dup {
			return nil, fmt.Errorf("object %q: duplicate id %d", s.Name, s.ID)
		}
		cat.byID[s.ID] = len(cat.specs)
		cat.specs = append(cat.specs, s)
	}
	return cat, nil
}

// Specs returns all object specs in catalog order.
func (c *Catalog) Specs() []ObjectSpec {
	if c == nil {
		return nil
	}
	return append([]ObjectSpec(nil), c.specs...)
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.specs)
}

// ByID looks up an object spec.
func (c *Catalog) ByID(id int) (ObjectSpec, bool) {
	if c == nil {
		return ObjectSpec{}, false
	}
	idx, ok := c.byID[id]
	if !ok {
		return ObjectSpec{}, false
	}
	return c.specs[idx], true
}

// FirstOfKind returns the first spec of the given kind.
func (c *Catalog) FirstOfKind(kind Kind) (ObjectSpec, bool) {
	if c == nil {
		return ObjectSpec{}, false
	}
	for _, s := range c.specs {
		if s.Kind == kind {
			return s, true
		}
	}
	return ObjectSpec{}, false
}

// ByPurpose filters specs for the item panel. PurposeNone returns everything.
func (c *Catalog) ByPurpose(p Purpose) []ObjectSpec {
	if c == nil {
		return nil
	}
	if p == "" || p == PurposeNone {
		return c.Specs()
	}
	out := make([]ObjectSpec, 0, len(c.specs))
	for _, s := range c.specs {
		if s.Purpose == p {
			out = append(out, s)
		}
	}
	return out
}

// Purposes lists the distinct purposes present, sorted.
func (c *Catalog) Purposes() []Purpose {
	if c == nil {
		return nil
	}
	seen := map[Purpose]bool{}
	out := []Purpose{}
	for _, s := range c.specs {
		if !seen[s.Purpose] {
			seen[s.Purpose] = true
			out = append(out, s.Purpose)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RandomPool returns the specs enabled for random placement.
func (c *Catalog) RandomPool() []ObjectSpec {
	if c == nil {
		return nil
	}
	out := make([]ObjectSpec, 0, len(c.specs))
	for _, s := range c.specs {
		if s.Random {
			out = append(out, s)
		}
	}
	return out
}
