package playtest

import (
	"fmt"
	"log"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/grid"
	"github.com/milk9111/levelforge/levels"
	"github.com/milk9111/levelforge/nav"
	"github.com/milk9111/levelforge/placement"
	"github.com/milk9111/levelforge/prefabs"
)

// DefaultPlayerSpeed is in world units per second.
const DefaultPlayerSpeed = 4.0

// DefaultNavConfig covers a 40x40 world centred on the origin with one node
// per cell, which includes the default spawn point.
func DefaultNavConfig() nav.Config {
	return nav.Config{
		Center:     common.V(0, 0, 0),
		WorldSizeX: 40,
		WorldSizeZ: 40,
		NodeRadius: common.CellSize / 2,
	}
}

// Player is the play-test avatar.
type Player struct {
	Position common.Vec3
	Speed    float64
}

// Scene is a loaded level ready to play: occupancy, walkability, the player
// and the patrolling enemies.
type Scene struct {
	level    *levels.Level
	catalog  *prefabs.Catalog
	layers   *grid.Layers
	placer   *placement.ObjectPlacer
	sampler  *nav.SpaceSampler
	grid     *nav.Grid
	player   Player
	enemies  []*Enemy
	visible  map[grid.Handle]placement.Placed
	warnings error
}

// Options tweak scene construction.
type Options struct {
	Nav    nav.Config
	Script string
}

// NewScene loads level into fresh stores and builds the walkability grid.
// Objects with unknown ids are skipped and reported by Warnings.
func NewScene(level *levels.Level, catalog *prefabs.Catalog, opts Options) (*Scene, error) {
	if level == nil {
		return nil, fmt.Errorf("playtest: nil level")
	}
	if opts.Nav.NodeRadius == 0 {
		regions := opts.Nav.Regions
		opts.Nav = DefaultNavConfig()
		opts.Nav.Regions = regions
	}
	if opts.Script == "" {
		opts.Script = PatrolScript
	}

	s := &Scene{
		level:   level,
		catalog: catalog,
		layers:  grid.NewLayers(),
		sampler: nav.NewSpaceSampler(common.CellSize),
		visible: make(map[grid.Handle]placement.Placed),
	}
	s.placer = placement.NewObjectPlacer(s)

	var floors, furniture []placement.Placed
	s.warnings = placement.Restore(level, catalog, s.layers, s.placer, func(p placement.Placed) {
		switch p.Spec.Kind {
		case prefabs.KindFloor:
			s.sampler.AddFloor(p.Footprint()...)
			floors = append(floors, p)
		case prefabs.KindFurniture:
			s.sampler.AddObstacle(p.Footprint()...)
			furniture = append(furniture, p)
		}
	})
	if s.warnings != nil {
		log.Printf("playtest: level %q loaded with problems: %v", level.Name, s.warnings)
	}

	g, err := nav.NewGrid(opts.Nav, s.sampler)
	if err != nil {
		return nil, err
	}
	s.grid = g
	// Floor first so furniture always wins where both cover a node.
	for _, p := range floors {
		g.MarkWalkable(p.Anchor, p.Spec.Footprint(), p.Dir.Angle())
	}
	for _, p := range furniture {
		g.MarkUnwalkable(p.Anchor, p.Spec.Footprint(), p.Dir.Angle())
	}

	s.player = Player{Position: s.spawnPosition(), Speed: DefaultPlayerSpeed}

	if level.HasPatrolPointA {
		a, b := s.patrolPoints()
		e, err := newEnemy(1, a, b, opts.Script)
		if err != nil {
			return nil, err
		}
		s.enemies = append(s.enemies, e)
	}
	log.Printf("playtest: scene ready objects=%d walkable=%d enemies=%d", s.placer.Len(), g.WalkableCount(), len(s.enemies))
	return s, nil
}

// Spawn implements placement.Spawner. Spawn and patrol markers stay hidden.
func (s *Scene) Spawn(p placement.Placed) {
	if p.Spec.Kind.Marker() {
		return
	}
	s.visible[p.Handle] = p
}

func (s *Scene) Despawn(h grid.Handle) {
	delete(s.visible, h)
}

// markerOffset centres a marker world position on its footprint.
func (s *Scene) markerOffset(kind prefabs.Kind) common.Vec3 {
	size := grid.Size{W: 1, D: 1}
	if spec, ok := s.catalog.FirstOfKind(kind); ok {
		size = spec.Footprint()
	}
	return common.V(float64(size.W)*common.CellSize/2, 0, float64(size.D)*common.CellSize/2)
}

func (s *Scene) spawnPosition() common.Vec3 {
	spawn := s.level.SpawnPoint
	off := s.markerOffset(prefabs.KindSpawnPoint)
	// The spawn marker is square, so both axes use its width.
	return spawn.Add(common.V(off.X, 0, off.X))
}

func (s *Scene) patrolPoints() (*common.Vec3, *common.Vec3) {
	off := s.markerOffset(prefabs.KindEnemySpawnPoint)
	var a, b *common.Vec3
	if s.level.HasPatrolPointA {
		p := s.level.PatrolPointA.Add(off)
		a = &p
	}
	if s.level.HasPatrolPointB {
		p := s.level.PatrolPointB.Add(off)
		b = &p
	}
	return a, b
}

// Update advances every enemy by dt seconds.
func (s *Scene) Update(dt float64) {
	for _, e := range s.enemies {
		e.update(s.grid, dt)
	}
}

// MovePlayer moves the player by dir*speed*dt, sliding along blocked axes.
// Moves onto unwalkable nodes are refused.
func (s *Scene) MovePlayer(dir common.Vec3, dt float64) bool {
	dir.Y = 0
	if dir.IsZero() {
		return false
	}
	if l := dir.Len(); l > 1 {
		dir = dir.Scale(1 / l)
	}
	step := dir.Scale(s.player.Speed * dt)
	from := s.player.Position
	for _, cand := range []common.Vec3{
		from.Add(step),
		from.Add(common.V(step.X, 0, 0)),
		from.Add(common.V(0, 0, step.Z)),
	} {
		if cand != from && s.grid.Walkable(cand) {
			s.player.Position = cand
			return true
		}
	}
	return false
}

func (s *Scene) Player() Player {
	return s.player
}

func (s *Scene) Enemies() []*Enemy {
	return s.enemies
}

func (s *Scene) Grid() *nav.Grid {
	return s.grid
}

func (s *Scene) Layers() *grid.Layers {
	return s.layers
}

func (s *Scene) Level() *levels.Level {
	return s.level
}

// Objects returns the visible placed objects in placement order.
func (s *Scene) Objects() []placement.Placed {
	out := make([]placement.Placed, 0, len(s.visible))
	for _, p := range s.placer.All() {
		if _, ok := s.visible[p.Handle]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Warnings returns the joined problems found while loading the level.
func (s *Scene) Warnings() error {
	return s.warnings
}
