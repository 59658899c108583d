package sim

import (
	"math"
	"testing"

	"github.com/milk9111/waterball/prefabs"
)

const maxFallTicks = 2000

func stepUntilInWater(t *testing.T, s *Simulation, name string) {
	t.Helper()
	b, ok := s.Ball(name)
	if !ok {
		t.Fatalf("no ball named %q", name)
	}
	for i := 0; i < maxFallTicks; i++ {
		s.Step()
		if b.InWater() {
			return
		}
	}
	t.Fatalf("ball %q never reached the water (y=%v)", name, b.Position().Y())
}

func TestDefaultSceneImpactBounces(t *testing.T) {
	s, err := Load("default", Options{LogEvery: -1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s.TickRate() != 60 || math.Abs(s.DeltaTime()-1.0/60.0) > 1e-15 {
		t.Fatalf("tick rate %d dt %v", s.TickRate(), s.DeltaTime())
	}

	stepUntilInWater(t, s, "ball")
	b, _ := s.Ball("ball")
	if b.Velocity().Y() >= 0 {
		t.Fatalf("ball should enter the water falling, vy=%v", b.Velocity().Y())
	}

	s.Step()
	if b.Velocity().Y() <= 0 {
		t.Fatalf("impact should throw the ball back up, vy=%v", b.Velocity().Y())
	}

	samples := s.Samples()
	if len(samples) != 1 || samples[0].Entries != 1 {
		t.Fatalf("samples = %+v", samples)
	}
}

func TestDragApproachesTerminalVelocity(t *testing.T) {
	scene, err := prefabs.LoadScene("default")
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	scene.Instances[1].Ball = map[string]any{"impact_force": []any{0, 0, 0}}

	s, err := New(scene, Options{LogEvery: -1})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	stepUntilInWater(t, s, "ball")
	b, _ := s.Ball("ball")
	entry := math.Abs(b.Velocity().Y())

	s.Run(150)

	if !b.InWater() {
		t.Fatalf("ball left the water at y=%v", b.Position().Y())
	}
	// drag balances gravity when coefficient*v^2 == G*mass
	cfgMass, g, drag := 5.0, 0.0001, 15.0
	terminal := math.Sqrt(g * cfgMass / drag)
	vy := -b.Velocity().Y()
	if vy >= entry {
		t.Fatalf("drag did not slow the ball: %v -> %v", entry, vy)
	}
	if math.Abs(vy-terminal) > 0.05*terminal {
		t.Fatalf("speed %v, want close to terminal %v", vy, terminal)
	}
}

func TestResetRestoresInitialState(t *testing.T) {
	s, err := Load("default", Options{LogEvery: -1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	start := s.Balls()
	s.Run(50)
	if s.Tick() != 50 {
		t.Fatalf("tick = %d", s.Tick())
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if s.Tick() != 0 {
		t.Fatalf("tick after reset = %d", s.Tick())
	}
	after := s.Balls()
	if len(after) != len(start) || after[0].Snapshot != start[0].Snapshot {
		t.Fatalf("reset state %+v, want %+v", after, start)
	}
}

func TestReloadKeepsRunningSceneOnError(t *testing.T) {
	s, err := Load("default", Options{LogEvery: -1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	s.Run(3)
	if err := s.Reload("does-not-exist"); err == nil {
		t.Fatalf("expected reload error")
	}
	if s.Tick() != 3 || s.Scene().Name != "default" {
		t.Fatalf("failed reload changed the simulation: tick %d scene %q", s.Tick(), s.Scene().Name)
	}
	if err := s.Reload("current"); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Scene().Name != "current" || len(s.Balls()) != 2 {
		t.Fatalf("reloaded scene %q with %d balls", s.Scene().Name, len(s.Balls()))
	}
}

func TestCurrentScriptPushesHeavyBall(t *testing.T) {
	s, err := Load("current", Options{LogEvery: -1})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	heavy, ok := s.Ball("heavy")
	if !ok {
		t.Fatalf("no heavy ball")
	}
	light, _ := s.Ball("light")

	startX := heavy.Position().X()
	stepUntilInWater(t, s, "heavy")
	s.Run(5)

	if heavy.Position().X() <= startX {
		t.Fatalf("current did not push the heavy ball: x %v -> %v", startX, heavy.Position().X())
	}
	if light.Velocity().X() != 0 {
		t.Fatalf("light ball has no script but moved sideways: %v", light.Velocity())
	}
}
