package playtest

import (
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"

	"github.com/milk9111/levelforge/prefabs"
)

// scriptRuntime runs one compiled behaviour script. Scripts define
// onEnter, update and onExit taking (engine, state, current) and may set a
// global initial_state.
type scriptRuntime struct {
	scriptPath  string
	compiled    *tengo.Compiled
	stateData   *tengo.Map
	initial     string
	initialized bool
	pending     string
}

const lifecycleDispatchScript = `
if __phase == "enter" {
	onEnter(__engine, __state, __current_state)
} else if __phase == "update" {
	update(__engine, __state, __current_state)
} else if __phase == "exit" {
	onExit(__engine, __state, __current_state)
}
`

func loadScriptRuntime(path string) (*scriptRuntime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("playtest: empty script path")
	}
	scriptBytes, err := prefabs.LoadScript(path)
	if err != nil {
		return nil, err
	}
	return compileScriptRuntime(path, scriptBytes)
}

// scriptGlobals are the variables the dispatch block reads on every run.
var scriptGlobals = []string{"__phase", "__engine", "__state", "__current_state"}

func compileScriptRuntime(path string, scriptBytes []byte) (*scriptRuntime, error) {
	script := tengo.NewScript(append(append([]byte{}, scriptBytes...), "\n"+lifecycleDispatchScript...))
	for _, name := range scriptGlobals {
		var v any = ""
		if name == "__engine" || name == "__state" {
			v = map[string]any{}
		}
		if err := script.Add(name, v); err != nil {
			return nil, fmt.Errorf("playtest: declare %s in %s: %w", name, path, err)
		}
	}
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("playtest: compile %s: %w", path, err)
	}
	rt := &scriptRuntime{
		scriptPath: path,
		compiled:   compiled,
		stateData:  &tengo.Map{Value: map[string]tengo.Object{}},
		initial:    "idle",
	}
	if err := rt.resolveInitial(); err != nil {
		return nil, fmt.Errorf("playtest: run %s: %w", path, err)
	}
	return rt, nil
}

// resolveInitial runs the top level once so globals exist, then adopts
// initial_state when the script sets one. Scripts without it start idle.
func (rt *scriptRuntime) resolveInitial() error {
	if err := rt.runPhase("noop", rt.initial, nil); err != nil {
		return err
	}
	if !rt.compiled.IsDefined("initial_state") {
		return nil
	}
	if s := strings.TrimSpace(rt.compiled.Get("initial_state").String()); s != "" {
		rt.initial = s
	}
	return nil
}

func (rt *scriptRuntime) runPhase(phase, current string, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
	}
	if engine == nil {
		engine = &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	}
	if err := rt.compiled.Set("__phase", phase); err != nil {
		return err
	}
	if err := rt.compiled.Set("__engine", engine); err != nil {
		return err
	}
	if err := rt.compiled.Set("__state", rt.stateData); err != nil {
		return err
	}
	if err := rt.compiled.Set("__current_state", current); err != nil {
		return err
	}
	return rt.compiled.Run()
}

// step runs enter on first use, then update, then the exit/enter pair for a
// transition requested during update. It returns the state after the step.
func (rt *scriptRuntime) step(current string, engine *tengo.ImmutableMap) (string, error) {
	if current == "" {
		current = rt.initial
	}
	if !rt.initialized {
		if err := rt.runPhase("enter", current, engine); err != nil {
			return current, fmt.Errorf("onEnter: %w", err)
		}
		rt.initialized = true
	}
	if err := rt.runPhase("update", current, engine); err != nil {
		return current, fmt.Errorf("update: %w", err)
	}
	if rt.pending == "" || rt.pending == current {
		rt.pending = ""
		return current, nil
	}
	if err := rt.runPhase("exit", current, engine); err != nil {
		return current, fmt.Errorf("onExit: %w", err)
	}
	next := rt.pending
	rt.pending = ""
	if err := rt.runPhase("enter", next, engine); err != nil {
		return next, fmt.Errorf("onEnter: %w", err)
	}
	return next, nil
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	if s, ok := obj.(*tengo.String); ok {
		return s.Value
	}
	return obj.String()
}

func boolObject(v bool) tengo.Object {
	if v {
		return tengo.TrueValue
	}
	return tengo.FalseValue
}
