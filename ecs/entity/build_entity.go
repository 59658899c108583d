package entity

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/waterball/ball"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
	"github.com/milk9111/waterball/prefabs"
)

type entityPrefabSpec = prefabs.EntityBuildSpec

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"transform":       addTransform,
	"ball":            addBall,
	"tag":             addTag,
	"trigger_volume":  addTriggerVolume,
	"collision_layer": addCollisionLayer,
	"force_script":    addForceScript,
	"appearance":      addAppearance,
}

// ball reads its starting position from the transform, so transform goes
// first.
var componentBuildOrder = []string{
	"transform",
	"tag",
	"ball",
	"trigger_volume",
	"collision_layer",
	"force_script",
	"appearance",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	return BuildEntityFromSpec(w, prefabPath, spec)
}

// BuildEntityFromSpec creates an entity from an already loaded spec. label
// only appears in errors. On failure the half built entity is destroyed.
func BuildEntityFromSpec(w *ecs.World, label string, spec entityPrefabSpec) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", label)
	}

	e := ecs.CreateEntity(w)
	ctx := &buildContext{PrefabPath: label}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := componentRegistry[name](w, e, raw, ctx); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add %q: %w", label, name, err)
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: no builder for component %q", label, names[0])
	}

	if spec.Name != "" {
		if err := ecs.Add(w, e, component.NameComponent.Kind(), &component.Name{Value: spec.Name}); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, fmt.Errorf("build entity: %q: add name: %w", label, err)
		}
	}

	return e, nil
}

func SetEntityPosition(w *ecs.World, e ecs.Entity, pos mgl64.Vec3) error {
	t, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || t == nil {
		t = &component.Transform{Scale: mgl64.Vec3{1, 1, 1}}
	}
	t.Position = pos
	if body, ok := ecs.Get(w, e, component.BallBodyComponent.Kind()); ok && body.Ball != nil {
		body.Ball.SetPosition(pos)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), t)
}

type transformSpec = prefabs.TransformComponentSpec

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[transformSpec](raw)
	if err != nil {
		return fmt.Errorf("decode transform spec: %w", err)
	}
	pos, err := prefabs.Vec3(spec.Position, mgl64.Vec3{})
	if err != nil {
		return fmt.Errorf("transform position: %w", err)
	}
	scale, err := prefabs.Vec3(spec.Scale, mgl64.Vec3{1, 1, 1})
	if err != nil {
		return fmt.Errorf("transform scale: %w", err)
	}
	return ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{
		Position: pos,
		Scale:    scale,
	})
}

type ballSpec = prefabs.BallComponentSpec

const defaultBallRadius = 0.25

func addBall(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[ballSpec](raw)
	if err != nil {
		return fmt.Errorf("decode ball spec: %w", err)
	}

	cfg, err := ballConfig(spec)
	if err != nil {
		return err
	}
	if t, ok := ecs.Get(w, e, component.TransformComponent.Kind()); ok {
		cfg.Position = t.Position
	} else {
		if err := ecs.Add(w, e, component.TransformComponent.Kind(), &component.Transform{Scale: mgl64.Vec3{1, 1, 1}}); err != nil {
			return err
		}
	}

	b, err := ball.New(cfg)
	if err != nil {
		return err
	}

	radius := spec.Radius
	if radius <= 0 {
		radius = defaultBallRadius
	}
	return ecs.Add(w, e, component.BallBodyComponent.Kind(), &component.BallBody{
		Ball:   b,
		Config: cfg,
		Radius: radius,
	})
}

func ballConfig(spec ballSpec) (ball.Config, error) {
	cfg := ball.DefaultConfig()
	if spec.Mass != nil {
		cfg.Mass = *spec.Mass
	}
	if spec.GravitationalConstant != nil {
		cfg.GravitationalConstant = *spec.GravitationalConstant
	}
	if spec.WaterDragCoefficient != nil {
		cfg.WaterDragCoefficient = *spec.WaterDragCoefficient
	}
	if spec.ImpactTime != nil {
		cfg.ImpactTime = *spec.ImpactTime
	}
	if spec.Integration != "" {
		cfg.Integration = ball.Integration(strings.TrimSpace(spec.Integration))
	}

	var err error
	if cfg.ImpactForce, err = prefabs.Vec3(spec.ImpactForce, cfg.ImpactForce); err != nil {
		return ball.Config{}, fmt.Errorf("ball impact_force: %w", err)
	}
	if cfg.Velocity, err = prefabs.Vec3(spec.Velocity, cfg.Velocity); err != nil {
		return ball.Config{}, fmt.Errorf("ball velocity: %w", err)
	}
	return cfg, nil
}

type tagSpec = prefabs.TagComponentSpec

func addTag(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[tagSpec](raw)
	if err != nil {
		return fmt.Errorf("decode tag spec: %w", err)
	}
	if strings.TrimSpace(spec.Name) == "" {
		return fmt.Errorf("tag name is empty")
	}
	return ecs.Add(w, e, component.TagComponent.Kind(), &component.Tag{Name: spec.Name})
}

type triggerVolumeSpec = prefabs.TriggerVolumeComponentSpec

func addTriggerVolume(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[triggerVolumeSpec](raw)
	if err != nil {
		return fmt.Errorf("decode trigger volume spec: %w", err)
	}
	half, err := prefabs.Vec3(spec.HalfExtents, mgl64.Vec3{})
	if err != nil {
		return fmt.Errorf("trigger volume half_extents: %w", err)
	}
	if half.X() <= 0 || half.Y() <= 0 || half.Z() <= 0 {
		return fmt.Errorf("trigger volume half_extents must be positive, got %v", half)
	}
	offset, err := prefabs.Vec3(spec.Offset, mgl64.Vec3{})
	if err != nil {
		return fmt.Errorf("trigger volume offset: %w", err)
	}
	return ecs.Add(w, e, component.TriggerVolumeComponent.Kind(), &component.TriggerVolume{
		HalfExtents: half,
		Offset:      offset,
	})
}

type collisionLayerSpec = prefabs.CollisionLayerComponentSpec

func addCollisionLayer(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[collisionLayerSpec](raw)
	if err != nil {
		return fmt.Errorf("decode collision layer spec: %w", err)
	}
	cat := spec.Category
	mask := spec.Mask
	if cat == 0 {
		cat = 1
	}
	if mask == 0 {
		mask = ^uint32(0)
	}
	return ecs.Add(w, e, component.CollisionLayerComponent.Kind(), &component.CollisionLayer{Category: cat, Mask: mask})
}

type forceScriptSpec = prefabs.ForceScriptComponentSpec

func addForceScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[forceScriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode force script spec: %w", err)
	}
	if strings.TrimSpace(spec.Path) == "" {
		return fmt.Errorf("force script path is empty")
	}
	return ecs.Add(w, e, component.ForceScriptComponent.Kind(), &component.ForceScript{Path: spec.Path})
}

type appearanceSpec = prefabs.AppearanceComponentSpec

func addAppearance(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[appearanceSpec](raw)
	if err != nil {
		return fmt.Errorf("decode appearance spec: %w", err)
	}
	c := color.Color(color.White)
	if spec.Color != nil && spec.Color.Color != nil {
		c = spec.Color.Color
	}
	return ecs.Add(w, e, component.AppearanceComponent.Kind(), &component.Appearance{Color: c, Layer: spec.Layer})
}
