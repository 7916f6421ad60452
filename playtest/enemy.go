package playtest

import (
	"log"
	"strings"

	"github.com/d5/tengo/v2"

	"github.com/milk9111/levelforge/common"
	"github.com/milk9111/levelforge/nav"
)

// PatrolScript is the behaviour script enemies run by default.
const PatrolScript = "patrol.tengo"

// DefaultEnemySpeed is in world units per second.
const DefaultEnemySpeed = 3.0

// Enemy patrols between its points along walkability paths. Its state
// machine lives in a tengo script; Go only follows the chosen target.
type Enemy struct {
	ID       int
	Position common.Vec3
	PointA   *common.Vec3
	PointB   *common.Vec3
	Speed    float64
	State    string
	Target   string

	path       []*nav.Node
	pathIdx    int
	pathFailed bool
	rt         *scriptRuntime
}

func newEnemy(id int, a, b *common.Vec3, script string) (*Enemy, error) {
	rt, err := loadScriptRuntime(script)
	if err != nil {
		return nil, err
	}
	e := &Enemy{
		ID:     id,
		PointA: a,
		PointB: b,
		Speed:  DefaultEnemySpeed,
		rt:     rt,
	}
	if a != nil {
		e.Position = *a
	}
	return e, nil
}

// Path returns the remaining waypoints.
func (e *Enemy) Path() []*nav.Node {
	if e.pathIdx >= len(e.path) {
		return nil
	}
	return e.path[e.pathIdx:]
}

// AtTarget reports whether the enemy finished the path to its target.
func (e *Enemy) AtTarget() bool {
	return e.Target != "" && !e.pathFailed && e.pathIdx >= len(e.path)
}

func (e *Enemy) update(g *nav.Grid, dt float64) {
	next, err := e.rt.step(e.State, e.engine(g))
	if err != nil {
		log.Printf("playtest: enemy=%d script %s: %v", e.ID, e.rt.scriptPath, err)
		return
	}
	if next != e.State {
		if e.State != "" {
			log.Printf("playtest: enemy=%d %s -> %s", e.ID, e.State, next)
		}
		e.State = next
	}
	e.follow(dt)
}

func (e *Enemy) engine(g *nav.Grid) *tengo.ImmutableMap {
	values := map[string]tengo.Object{}
	values["has_a"] = boolObject(e.PointA != nil)
	values["has_b"] = boolObject(e.PointB != nil)
	values["at_target"] = boolObject(e.AtTarget())
	values["path_failed"] = boolObject(e.pathFailed)
	values["state_name"] = &tengo.String{Value: e.State}

	values["transition"] = &tengo.UserFunction{Name: "transition", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.FalseValue, nil
		}
		name := strings.TrimSpace(objectAsString(args[0]))
		if name == "" {
			return tengo.FalseValue, nil
		}
		e.rt.pending = name
		return tengo.TrueValue, nil
	}}

	values["set_target"] = &tengo.UserFunction{Name: "set_target", Value: func(args ...tengo.Object) (tengo.Object, error) {
		name := ""
		if len(args) > 0 {
			name = strings.TrimSpace(objectAsString(args[0]))
		}
		return boolObject(e.setTarget(g, name)), nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// setTarget plans a path to point "a" or "b". An empty name stops moving.
func (e *Enemy) setTarget(g *nav.Grid, name string) bool {
	e.Target = name
	e.path, e.pathIdx, e.pathFailed = nil, 0, false
	var dest *common.Vec3
	switch name {
	case "a":
		dest = e.PointA
	case "b":
		dest = e.PointB
	default:
		e.Target = ""
		return false
	}
	if dest == nil {
		e.pathFailed = true
		return false
	}
	path, err := g.FindPath(e.Position, *dest)
	if err != nil {
		log.Printf("playtest: enemy=%d no path to %s: %v", e.ID, name, err)
		e.pathFailed = true
		return false
	}
	// The first node is the one the enemy already stands on.
	e.path, e.pathIdx = path, 1
	if len(path) > 0 && e.Position.Dist(path[0].World) > 1e-6 {
		e.pathIdx = 0
	}
	return true
}

func (e *Enemy) follow(dt float64) {
	budget := e.Speed * dt
	for budget > 0 && e.pathIdx < len(e.path) {
		wp := e.path[e.pathIdx].World
		wp.Y = e.Position.Y
		d := e.Position.Dist(wp)
		if d <= budget {
			e.Position = wp
			e.pathIdx++
			budget -= d
			continue
		}
		e.Position = e.Position.MoveTowards(wp, budget)
		budget = 0
	}
}
