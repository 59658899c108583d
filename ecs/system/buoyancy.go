package system

import (
	"log"

	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
)

// BuoyancySystem turns trigger events into ball region callbacks. It must run
// after TriggerSystem in the same update.
type BuoyancySystem struct {
	Verbose bool
}

func NewBuoyancySystem() *BuoyancySystem {
	return &BuoyancySystem{}
}

func (s *BuoyancySystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	for _, evt := range w.Events().Peek() {
		if evt.Type != ecs.EventTypeTrigger {
			continue
		}
		te, ok := evt.Data.(ecs.TriggerEvent)
		if !ok {
			continue
		}
		body, ok := ecs.Get(w, te.Entity, component.BallBodyComponent.Kind())
		if !ok || body.Ball == nil {
			continue
		}

		switch te.Kind {
		case ecs.TriggerEnter:
			body.Ball.OnRegionEnter(te.Tag)
			if s.Verbose {
				log.Printf("buoyancy: entity=%v entered %q tick=%d", te.Entity, te.Tag, w.Tick())
			}
		case ecs.TriggerStay:
			body.Ball.OnRegionStay(te.Tag)
		case ecs.TriggerExit:
			body.Ball.OnRegionExit(te.Tag)
			if s.Verbose {
				log.Printf("buoyancy: entity=%v left %q tick=%d", te.Entity, te.Tag, w.Tick())
			}
		}
	}
}
