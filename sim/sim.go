// Package sim wires a scene into an ECS world with the fixed system order
// scripted forces, integrator, trigger detection, trigger response and
// telemetry.
package sim

import (
	"fmt"
	"log"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/waterball/ball"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
	"github.com/milk9111/waterball/ecs/entity"
	"github.com/milk9111/waterball/ecs/system"
	"github.com/milk9111/waterball/prefabs"
)

type Options struct {
	// Debug logs trigger proxies and region changes.
	Debug bool
	// LogEvery overrides the scene's telemetry interval when non-zero. A
	// negative value silences telemetry logging.
	LogEvery int
}

type Simulation struct {
	scene prefabs.SceneSpec
	opts  Options

	world     *ecs.World
	scripts   *system.ScriptForceSystem
	triggers  *system.TriggerSystem
	telemetry *system.TelemetrySystem
	entities  []ecs.Entity
}

// BallState is what a viewer needs to draw one ball.
type BallState struct {
	Entity   ecs.Entity
	Name     string
	Radius   float64
	Snapshot ball.Snapshot
}

// Load reads scenes/<name>.yaml and builds a simulation from it.
func Load(name string, opts Options) (*Simulation, error) {
	scene, err := prefabs.LoadScene(name)
	if err != nil {
		return nil, err
	}
	return New(scene, opts)
}

func New(scene prefabs.SceneSpec, opts Options) (*Simulation, error) {
	if scene.Simulation.TickRate <= 0 {
		scene.Simulation.TickRate = prefabs.DefaultTickRate
	}
	s := &Simulation{scene: scene, opts: opts}
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulation) build() error {
	w := ecs.NewWorld()

	logEvery := s.scene.Simulation.LogEvery
	if s.opts.LogEvery != 0 {
		logEvery = s.opts.LogEvery
	}

	scripts := system.NewScriptForceSystem()
	triggers := system.NewTriggerSystem()
	triggers.Debug = s.opts.Debug
	telemetry := system.NewTelemetrySystem(logEvery)

	w.AddSystem(ecs.NewScheduler(
		scripts,
		system.NewBallSystem(),
		triggers,
		&system.BuoyancySystem{Verbose: s.opts.Debug},
		telemetry,
	))

	entities, err := entity.BuildScene(w, s.scene)
	if err != nil {
		return err
	}

	s.world = w
	s.scripts = scripts
	s.triggers = triggers
	s.telemetry = telemetry
	s.entities = entities
	return nil
}

// Reset rebuilds the world from the scene, discarding all state.
func (s *Simulation) Reset() error {
	if err := s.build(); err != nil {
		return fmt.Errorf("reset scene %q: %w", s.scene.Name, err)
	}
	log.Printf("sim: scene %q reset", s.scene.Name)
	return nil
}

// Reload re-reads the scene by name and rebuilds. On failure the running
// simulation is left untouched.
func (s *Simulation) Reload(name string) error {
	scene, err := prefabs.LoadScene(name)
	if err != nil {
		return err
	}
	next := &Simulation{scene: scene, opts: s.opts}
	if err := next.build(); err != nil {
		return err
	}
	*s = *next
	log.Printf("sim: scene %q reloaded", scene.Name)
	return nil
}

// Step advances one fixed tick.
func (s *Simulation) Step() {
	s.world.Update(s.DeltaTime())
}

// Run advances n ticks.
func (s *Simulation) Run(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

func (s *Simulation) World() *ecs.World         { return s.world }
func (s *Simulation) Scene() prefabs.SceneSpec { return s.scene }
func (s *Simulation) Tick() uint64              { return s.world.Tick() }
func (s *Simulation) TickRate() int             { return s.scene.Simulation.TickRate }

func (s *Simulation) DeltaTime() float64 {
	return 1 / float64(s.scene.Simulation.TickRate)
}

// Samples returns the telemetry recorded so far.
func (s *Simulation) Samples() []system.Sample {
	return s.telemetry.Samples()
}

// Balls returns the current state of every ball in entity order.
func (s *Simulation) Balls() []BallState {
	var out []BallState
	for _, e := range s.world.Query(component.BallBodyComponent.Kind()) {
		body, _ := ecs.Get(s.world, e, component.BallBodyComponent.Kind())
		if body.Ball == nil {
			continue
		}
		st := BallState{Entity: e, Radius: body.Radius, Snapshot: body.Ball.Snapshot()}
		if name, ok := ecs.Get(s.world, e, component.NameComponent.Kind()); ok {
			st.Name = name.Value
		}
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Entity < out[j].Entity })
	return out
}

// Ball returns the first ball whose prefab instance is called name.
func (s *Simulation) Ball(name string) (*ball.Ball, bool) {
	for _, e := range s.world.Query(component.BallBodyComponent.Kind(), component.NameComponent.Kind()) {
		n, _ := ecs.Get(s.world, e, component.NameComponent.Kind())
		if n.Value != name {
			continue
		}
		body, _ := ecs.Get(s.world, e, component.BallBodyComponent.Kind())
		return body.Ball, body.Ball != nil
	}
	return nil, false
}

// TriggerSpace exposes the Chipmunk space used for overlap tests, for debug
// drawing.
func (s *Simulation) TriggerSpace() *cp.Space {
	return s.triggers.Space()
}

// InvalidateScripts forces force scripts to be recompiled on the next tick.
func (s *Simulation) InvalidateScripts() {
	s.scripts.Invalidate()
}
