package system

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/waterball/ball"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
)

// recorder keeps a copy of every event that was queued during an update.
type recorder struct {
	events []ecs.TriggerEvent
	ticks  []uint64
}

func (r *recorder) Update(w *ecs.World) {
	for _, evt := range w.Events().Peek() {
		if te, ok := evt.Data.(ecs.TriggerEvent); ok {
			r.events = append(r.events, te)
			r.ticks = append(r.ticks, w.Tick())
		}
	}
}

func (r *recorder) kindsAt(tick uint64) []ecs.TriggerEventKind {
	var out []ecs.TriggerEventKind
	for i, t := range r.ticks {
		if t == tick {
			out = append(out, r.events[i].Kind)
		}
	}
	return out
}

// driftConfig is a ball with no gravity moving one unit down per tick.
func driftConfig() ball.Config {
	cfg := ball.DefaultConfig()
	cfg.Mass = 10
	cfg.GravitationalConstant = 0
	cfg.ImpactForce = mgl64.Vec3{}
	cfg.WaterDragCoefficient = 0
	cfg.Velocity = mgl64.Vec3{0, -1, 0}
	return cfg
}

func addBall(t *testing.T, w *ecs.World, pos mgl64.Vec3, cfg ball.Config, radius float64) ecs.Entity {
	t.Helper()
	cfg.Position = pos
	b, err := ball.New(cfg)
	if err != nil {
		t.Fatalf("ball.New: %v", err)
	}
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: pos, Scale: mgl64.Vec3{1, 1, 1}}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(w, e, component.BallBodyComponent.Kind(), &component.BallBody{Ball: b, Config: cfg, Radius: radius}); err != nil {
		t.Fatalf("add ball: %v", err)
	}
	return e
}

func addVolume(t *testing.T, w *ecs.World, center, half mgl64.Vec3, tag string) ecs.Entity {
	t.Helper()
	e := ecs.CreateEntity(w)
	if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Position: center, Scale: mgl64.Vec3{1, 1, 1}}); err != nil {
		t.Fatalf("add transform: %v", err)
	}
	if err := ecs.Add(w, e, component.TriggerVolumeComponent.Kind(), &component.TriggerVolume{HalfExtents: half}); err != nil {
		t.Fatalf("add volume: %v", err)
	}
	if tag != "" {
		if err := ecs.Add(w, e, component.TagComponent.Kind(), &component.Tag{Name: tag}); err != nil {
			t.Fatalf("add tag: %v", err)
		}
	}
	return e
}

func ballOf(t *testing.T, w *ecs.World, e ecs.Entity) *ball.Ball {
	t.Helper()
	body, ok := ecs.Get(w, e, component.BallBodyComponent.Kind())
	if !ok || body.Ball == nil {
		t.Fatalf("entity %v has no ball", e)
	}
	return body.Ball
}
