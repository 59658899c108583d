package system

import (
	"log"
	"math"
	"sort"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
)

const (
	collisionTypeBody cp.CollisionType = iota + 1
	collisionTypeTrigger
)

const (
	fallbackStep   = 1.0 / 60.0
	fallbackRadius = 0.5
)

type proxyInfo struct {
	body    *cp.Body
	shape   *cp.Shape
	static  bool
	center  cp.Vector
	trigger bool
}

type overlapPair struct {
	body    ecs.Entity
	trigger ecs.Entity
}

// TriggerSystem detects overlaps between balls and trigger volumes and emits
// enter, stay and exit events. Chipmunk sensors cover the XY plane; the Z
// extent is checked by hand.
type TriggerSystem struct {
	space         *cp.Space
	handlersReady bool

	proxies      map[ecs.Entity]*proxyInfo
	shapeToOwner map[*cp.Shape]ecs.Entity

	// filled by the collision handler during Space.Step
	touching map[overlapPair]struct{}
	// pair -> trigger tag, remembered so exits can still be tagged after the
	// trigger is gone
	contacts map[overlapPair]string

	world *ecs.World
	Debug bool
}

func NewTriggerSystem() *TriggerSystem {
	return &TriggerSystem{
		space:        newTriggerSpace(),
		proxies:      make(map[ecs.Entity]*proxyInfo),
		shapeToOwner: make(map[*cp.Shape]ecs.Entity),
		touching:     make(map[overlapPair]struct{}),
		contacts:     make(map[overlapPair]string),
	}
}

func newTriggerSpace() *cp.Space {
	space := cp.NewSpace()
	space.Iterations = 1
	space.SetGravity(cp.Vector{})
	return space
}

// Space returns the underlying Chipmunk space.
func (ts *TriggerSystem) Space() *cp.Space {
	if ts == nil {
		return nil
	}
	return ts.space
}

// Overlapping reports whether body currently overlaps trigger.
func (ts *TriggerSystem) Overlapping(body, trigger ecs.Entity) bool {
	if ts == nil {
		return false
	}
	_, ok := ts.contacts[overlapPair{body: body, trigger: trigger}]
	return ok
}

func (ts *TriggerSystem) Update(w *ecs.World) {
	if ts == nil || w == nil {
		return
	}
	if ts.space == nil {
		ts.space = newTriggerSpace()
		ts.handlersReady = false
	}

	ts.ensureHandlers()
	ts.cleanupEntities(w)
	ts.syncTriggers(w)
	ts.syncBodies(w)

	dt := w.DeltaTime()
	if dt <= 0 {
		dt = fallbackStep
	}

	ts.world = w
	clear(ts.touching)
	ts.space.Step(dt)
	ts.world = nil

	ts.flushContacts(w)
}

func (ts *TriggerSystem) ensureHandlers() {
	if ts.handlersReady || ts.space == nil {
		return
	}

	handler := ts.space.NewCollisionHandler(collisionTypeBody, collisionTypeTrigger)
	handler.UserData = ts
	mark := func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		sys, ok := userData.(*TriggerSystem)
		if !ok || sys == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		sys.markTouching(shapeA, shapeB)
		return true
	}
	handler.BeginFunc = mark
	handler.PreSolveFunc = mark

	ts.handlersReady = true
}

func (ts *TriggerSystem) markTouching(shapeA, shapeB *cp.Shape) {
	ownerA, okA := ts.shapeToOwner[shapeA]
	ownerB, okB := ts.shapeToOwner[shapeB]
	if !okA || !okB {
		return
	}
	infoA, infoB := ts.proxies[ownerA], ts.proxies[ownerB]
	if infoA == nil || infoB == nil {
		return
	}
	if infoA.trigger {
		ownerA, ownerB = ownerB, ownerA
	}
	if !ts.overlapsInZ(ownerA, ownerB) {
		return
	}
	ts.touching[overlapPair{body: ownerA, trigger: ownerB}] = struct{}{}
}

// overlapsInZ checks the axis Chipmunk cannot see.
func (ts *TriggerSystem) overlapsInZ(bodyEnt, triggerEnt ecs.Entity) bool {
	w := ts.world
	if w == nil {
		return true
	}
	bt, ok := ecs.Get(w, bodyEnt, component.TransformComponent.Kind())
	if !ok {
		return false
	}
	bb, ok := ecs.Get(w, bodyEnt, component.BallBodyComponent.Kind())
	if !ok {
		return false
	}
	tt, ok := ecs.Get(w, triggerEnt, component.TransformComponent.Kind())
	if !ok {
		return false
	}
	vol, ok := ecs.Get(w, triggerEnt, component.TriggerVolumeComponent.Kind())
	if !ok {
		return false
	}
	lo, hi := vol.Bounds(tt.Position)
	z, r := bt.Position.Z(), proxyRadius(bb)
	return z+r >= lo.Z() && z-r <= hi.Z()
}

func (ts *TriggerSystem) syncTriggers(w *ecs.World) {
	for _, e := range w.Query(component.TriggerVolumeComponent.Kind(), component.TransformComponent.Kind()) {
		vol, _ := ecs.Get(w, e, component.TriggerVolumeComponent.Kind())
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		center := cp.Vector{X: t.Position.X() + vol.Offset.X(), Y: t.Position.Y() + vol.Offset.Y()}

		if info := ts.proxies[e]; info != nil {
			if info.center != center {
				// static shapes are only reindexed when reinserted
				ts.space.RemoveShape(info.shape)
				info.body.SetPosition(center)
				ts.space.AddShape(info.shape)
				info.center = center
			}
			continue
		}

		body := cp.NewStaticBody()
		body.SetPosition(center)
		shape := cp.NewBox(body, 2*vol.HalfExtents.X(), 2*vol.HalfExtents.Y(), 0)
		shape.SetSensor(true)
		shape.SetCollisionType(collisionTypeTrigger)
		shape.SetFilter(layerFilter(w, e))
		ts.space.AddBody(body)
		ts.space.AddShape(shape)

		ts.register(w, e, &proxyInfo{body: body, shape: shape, static: true, center: center, trigger: true})
		if ts.Debug {
			log.Printf("trigger: entity=%v volume at (%.3f, %.3f) size %.3fx%.3f", e, center.X, center.Y, 2*vol.HalfExtents.X(), 2*vol.HalfExtents.Y())
		}
	}
}

func (ts *TriggerSystem) syncBodies(w *ecs.World) {
	for _, e := range w.Query(component.BallBodyComponent.Kind(), component.TransformComponent.Kind()) {
		bb, _ := ecs.Get(w, e, component.BallBodyComponent.Kind())
		t, _ := ecs.Get(w, e, component.TransformComponent.Kind())
		pos := cp.Vector{X: t.Position.X(), Y: t.Position.Y()}

		info := ts.proxies[e]
		if info == nil {
			radius := proxyRadius(bb)
			body := cp.NewBody(1, math.Inf(1))
			body.SetVelocityUpdateFunc(func(body *cp.Body, gravity cp.Vector, damping float64, dt float64) {
				body.SetVelocityVector(cp.Vector{})
			})
			shape := cp.NewCircle(body, radius, cp.Vector{})
			shape.SetSensor(true)
			shape.SetCollisionType(collisionTypeBody)
			shape.SetFilter(layerFilter(w, e))
			ts.space.AddBody(body)
			ts.space.AddShape(shape)

			info = &proxyInfo{body: body, shape: shape}
			ts.register(w, e, info)
			if ts.Debug {
				log.Printf("trigger: entity=%v body proxy radius=%.3f", e, radius)
			}
		}
		info.body.SetPosition(pos)
		info.center = pos
	}
}

// proxyRadius is the radius used on every axis for a ball's overlap tests.
func proxyRadius(bb *component.BallBody) float64 {
	if bb.Radius <= 0 {
		return fallbackRadius
	}
	return bb.Radius
}

func (ts *TriggerSystem) register(w *ecs.World, e ecs.Entity, info *proxyInfo) {
	ts.proxies[e] = info
	ts.shapeToOwner[info.shape] = e
	_ = ecs.Add(w, e, component.ProxyBodyComponent.Kind(), &component.ProxyBody{
		Body:   info.body,
		Shape:  info.shape,
		Static: info.static,
	})
}

func layerFilter(w *ecs.World, e ecs.Entity) cp.ShapeFilter {
	filter := cp.ShapeFilter{Group: cp.NO_GROUP, Categories: 1, Mask: cp.ALL_CATEGORIES}
	layer, ok := ecs.Get(w, e, component.CollisionLayerComponent.Kind())
	if !ok {
		return filter
	}
	if layer.Category != 0 {
		filter.Categories = uint(layer.Category)
	}
	if layer.Mask != 0 {
		filter.Mask = uint(layer.Mask)
	}
	return filter
}

// flushContacts diffs this step's overlaps against the previous step and
// queues events ordered by body then trigger.
func (ts *TriggerSystem) flushContacts(w *ecs.World) {
	var events []ecs.TriggerEvent
	current := make(map[overlapPair]string, len(ts.touching))
	for pair := range ts.touching {
		tag := ""
		if t, ok := ecs.Get(w, pair.trigger, component.TagComponent.Kind()); ok {
			tag = t.Name
		}
		current[pair] = tag

		kind := ecs.TriggerEnter
		if _, ok := ts.contacts[pair]; ok {
			kind = ecs.TriggerStay
		}
		events = append(events, ecs.TriggerEvent{Kind: kind, Entity: pair.body, Other: pair.trigger, Tag: tag})
	}
	for pair, tag := range ts.contacts {
		if _, ok := current[pair]; ok {
			continue
		}
		events = append(events, ecs.TriggerEvent{Kind: ecs.TriggerExit, Entity: pair.body, Other: pair.trigger, Tag: tag})
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Entity != events[j].Entity {
			return events[i].Entity < events[j].Entity
		}
		return events[i].Other < events[j].Other
	})

	for _, evt := range events {
		w.Events().Push(ecs.Event{Type: ecs.EventTypeTrigger, Data: evt})
	}

	ts.contacts = current
}

func (ts *TriggerSystem) cleanupEntities(w *ecs.World) {
	for e, info := range ts.proxies {
		keep := false
		if w.IsAlive(e) {
			if info.trigger {
				keep = ecs.Has(w, e, component.TriggerVolumeComponent.Kind())
			} else {
				keep = ecs.Has(w, e, component.BallBodyComponent.Kind())
			}
		}
		if keep {
			continue
		}

		if info.shape != nil {
			ts.space.RemoveShape(info.shape)
			delete(ts.shapeToOwner, info.shape)
		}
		if info.body != nil {
			ts.space.RemoveBody(info.body)
		}
		delete(ts.proxies, e)

		// a destroyed entity cannot receive events; a trigger that vanished
		// still reports exit for its bodies
		for pair := range ts.contacts {
			if pair.body == e {
				delete(ts.contacts, pair)
			}
		}
	}
}
