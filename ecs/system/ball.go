package system

import (
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
)

// BallSystem integrates every ball by one tick and mirrors its position into
// the entity transform.
type BallSystem struct{}

func NewBallSystem() *BallSystem {
	return &BallSystem{}
}

func (s *BallSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach(w, component.BallBodyComponent.Kind(), func(e ecs.Entity, body *component.BallBody) {
		if body == nil || body.Ball == nil {
			return
		}
		body.Ball.Step(dt)

		t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
		if !ok {
			return
		}
		t.Position = body.Ball.Position()
	})
}
