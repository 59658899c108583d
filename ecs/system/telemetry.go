package system

import (
	"log"

	"github.com/milk9111/waterball/ball"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
)

// Sample is the latest recorded state of one ball.
type Sample struct {
	Entity   ecs.Entity
	Name     string
	Snapshot ball.Snapshot
	Entries  int
	Exits    int
}

// TelemetrySystem records ball snapshots and trigger transitions, logging a
// line per ball every Every ticks. Every <= 0 disables logging only. It
// consumes the tick's trigger events, so it runs last.
type TelemetrySystem struct {
	Every int

	samples map[ecs.Entity]*Sample
	order   []ecs.Entity
}

func NewTelemetrySystem(every int) *TelemetrySystem {
	return &TelemetrySystem{Every: every, samples: make(map[ecs.Entity]*Sample)}
}

func (s *TelemetrySystem) Update(w *ecs.World) {
	if s == nil || w == nil {
		return
	}
	if s.samples == nil {
		s.samples = make(map[ecs.Entity]*Sample)
	}

	for _, evt := range w.Events().DrainType(ecs.EventTypeTrigger) {
		te, ok := evt.Data.(ecs.TriggerEvent)
		if !ok || te.Tag != ball.WaterTag {
			continue
		}
		sample := s.sample(w, te.Entity)
		switch te.Kind {
		case ecs.TriggerEnter:
			sample.Entries++
		case ecs.TriggerExit:
			sample.Exits++
		}
	}

	logNow := s.Every > 0 && w.Tick()%uint64(s.Every) == 0
	ecs.ForEach(w, component.BallBodyComponent.Kind(), func(e ecs.Entity, body *component.BallBody) {
		if body.Ball == nil {
			return
		}
		sample := s.sample(w, e)
		sample.Snapshot = body.Ball.Snapshot()
		if logNow {
			snap := sample.Snapshot
			log.Printf("telemetry: tick=%d entity=%v name=%s pos=(%.4f, %.4f, %.4f) vel=(%.5f, %.5f, %.5f) region=%s",
				w.Tick(), e, sample.Name,
				snap.Position.X(), snap.Position.Y(), snap.Position.Z(),
				snap.Velocity.X(), snap.Velocity.Y(), snap.Velocity.Z(),
				snap.Region)
		}
	})
}

func (s *TelemetrySystem) sample(w *ecs.World, e ecs.Entity) *Sample {
	if sample, ok := s.samples[e]; ok {
		return sample
	}
	sample := &Sample{Entity: e}
	if name, ok := ecs.Get(w, e, component.NameComponent.Kind()); ok {
		sample.Name = name.Value
	}
	s.samples[e] = sample
	s.order = append(s.order, e)
	return sample
}

// Samples returns copies of the recorded samples in first-seen order.
func (s *TelemetrySystem) Samples() []Sample {
	if s == nil {
		return nil
	}
	out := make([]Sample, 0, len(s.order))
	for _, e := range s.order {
		out = append(out, *s.samples[e])
	}
	return out
}
