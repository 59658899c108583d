package system

import (
	"fmt"
	"log"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
	"github.com/milk9111/waterball/prefabs"
)

const forceScriptDispatch = `
if __phase == "update" {
	update(__engine, __state)
}
`

type forceScriptRuntime struct {
	path      string
	compiled  *tengo.Compiled
	stateData *tengo.Map
}

// ScriptForceSystem runs every ForceScript's update(engine, state) once per
// tick. A script that fails to load or run is logged and disabled.
type ScriptForceSystem struct {
	// LoadScript resolves a script path to source. Defaults to
	// prefabs.LoadScript.
	LoadScript func(path string) ([]byte, error)

	cache map[ecs.Entity]*forceScriptRuntime
}

func NewScriptForceSystem() *ScriptForceSystem {
	return &ScriptForceSystem{
		LoadScript: prefabs.LoadScript,
		cache:      make(map[ecs.Entity]*forceScriptRuntime),
	}
}

// Invalidate drops compiled scripts so the next tick reloads them.
func (s *ScriptForceSystem) Invalidate() {
	if s == nil {
		return
	}
	clear(s.cache)
}

func (s *ScriptForceSystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.cache == nil {
		s.cache = make(map[ecs.Entity]*forceScriptRuntime)
	}
	for e := range s.cache {
		if !w.IsAlive(e) || !ecs.Has(w, e, component.ForceScriptComponent.Kind()) {
			delete(s.cache, e)
		}
	}

	ecs.ForEach2(w, component.ForceScriptComponent.Kind(), component.BallBodyComponent.Kind(), func(e ecs.Entity, fs *component.ForceScript, body *component.BallBody) {
		if fs.Disabled || body.Ball == nil {
			return
		}

		rt, err := s.runtime(e, fs.Path)
		if err != nil {
			log.Printf("script: entity=%v load %q: %v", e, fs.Path, err)
			fs.Disabled = true
			return
		}

		if err := rt.run("update", buildForceScriptEngine(w, body)); err != nil {
			log.Printf("script: entity=%v update %q: %v", e, fs.Path, err)
			fs.Disabled = true
		}
	})
}

func (s *ScriptForceSystem) runtime(e ecs.Entity, path string) (*forceScriptRuntime, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty script path")
	}
	if rt, ok := s.cache[e]; ok && rt != nil && rt.path == path {
		return rt, nil
	}

	load := s.LoadScript
	if load == nil {
		load = prefabs.LoadScript
	}
	src, err := load(path)
	if err != nil {
		return nil, err
	}

	script := tengo.NewScript([]byte(string(src) + "\n" + forceScriptDispatch))
	_ = script.Add("__phase", "")
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, err
	}

	rt := &forceScriptRuntime{
		path:      path,
		compiled:  compiled,
		stateData: &tengo.Map{Value: map[string]tengo.Object{}},
	}
	// the load run surfaces runtime errors early. Top-level statements
	// rerun on every tick; values that must persist belong in state.
	noop := &tengo.ImmutableMap{Value: map[string]tengo.Object{}}
	if err := rt.run("noop", noop); err != nil {
		return nil, err
	}

	s.cache[e] = rt
	return rt, nil
}

func (rt *forceScriptRuntime) run(phase string, engine *tengo.ImmutableMap) error {
	if rt == nil || rt.compiled == nil {
		return fmt.Errorf("nil script runtime")
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
	return rt.compiled.Run()
}

func buildForceScriptEngine(w *ecs.World, body *component.BallBody) *tengo.ImmutableMap {
	b := body.Ball
	values := map[string]tengo.Object{}

	values["position"] = &tengo.UserFunction{Name: "position", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(b.Position()), nil
	}}

	values["velocity"] = &tengo.UserFunction{Name: "velocity", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return vecObject(b.Velocity()), nil
	}}

	values["tick"] = &tengo.UserFunction{Name: "tick", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(w.Tick())}, nil
	}}

	values["in_water"] = &tengo.UserFunction{Name: "in_water", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if b.InWater() {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	}}

	values["apply_force"] = &tengo.UserFunction{Name: "apply_force", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		var f mgl64.Vec3
		for i, arg := range args {
			v, ok := tengo.ToFloat64(arg)
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{
					Name:     fmt.Sprintf("arg%d", i),
					Expected: "float(compatible)",
					Found:    arg.TypeName(),
				}
			}
			f[i] = v
		}
		b.ApplyForce(f)
		return tengo.TrueValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func vecObject(v mgl64.Vec3) *tengo.Array {
	return &tengo.Array{Value: []tengo.Object{
		&tengo.Float{Value: v.X()},
		&tengo.Float{Value: v.Y()},
		&tengo.Float{Value: v.Z()},
	}}
}
