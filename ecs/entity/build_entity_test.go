package entity

import (
	"errors"
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/waterball/ball"
	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/ecs/component"
	"github.com/milk9111/waterball/prefabs"
)

func TestBuildBallPrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "ball.yaml")
	if err != nil {
		t.Fatalf("BuildEntity: %v", err)
	}

	body, ok := ecs.Get(w, e, component.BallBodyComponent.Kind())
	if !ok || body.Ball == nil {
		t.Fatalf("ball component missing")
	}
	if body.Ball.Mass() != 5 || body.Radius != 0.25 {
		t.Fatalf("mass/radius = %v/%v", body.Ball.Mass(), body.Radius)
	}
	if body.Ball.Position() != (mgl64.Vec3{0, 3, 0}) {
		t.Fatalf("ball position = %v, want transform position", body.Ball.Position())
	}
	if !body.Ball.Gravity().ApproxEqualThreshold(mgl64.Vec3{0, -0.0005, 0}, 1e-12) {
		t.Fatalf("gravity = %v", body.Ball.Gravity())
	}
	layer, ok := ecs.Get(w, e, component.CollisionLayerComponent.Kind())
	if !ok || layer.Category != 1 || layer.Mask != 2 {
		t.Fatalf("collision layer = %+v", layer)
	}
	look, ok := ecs.Get(w, e, component.AppearanceComponent.Kind())
	if !ok || look.Color != (color.NRGBA{R: 0xe8, G: 0x55, B: 0x3a, A: 0xff}) {
		t.Fatalf("appearance = %+v", look)
	}
	name, ok := ecs.Get(w, e, component.NameComponent.Kind())
	if !ok || name.Value != "ball" {
		t.Fatalf("name = %+v", name)
	}
}

func TestBuildWaterPrefab(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "water.yaml")
	if err != nil {
		t.Fatalf("BuildEntity: %v", err)
	}
	tag, ok := ecs.Get(w, e, component.TagComponent.Kind())
	if !ok || tag.Name != ball.WaterTag {
		t.Fatalf("tag = %+v", tag)
	}
	vol, ok := ecs.Get(w, e, component.TriggerVolumeComponent.Kind())
	if !ok || vol.HalfExtents != (mgl64.Vec3{6, 2, 4}) {
		t.Fatalf("volume = %+v", vol)
	}
	if ecs.Has(w, e, component.BallBodyComponent.Kind()) {
		t.Fatalf("water should not carry a ball")
	}
}

func TestBuildEntityFromSpecErrors(t *testing.T) {
	cases := []struct {
		name       string
		components map[string]any
		wantErr    error
	}{
		{"empty", map[string]any{}, nil},
		{"unknown_component", map[string]any{"transform": map[string]any{}, "sprite": map[string]any{}}, nil},
		{"mass_out_of_range", map[string]any{"ball": map[string]any{"mass": 4}}, ball.ErrInvalidMass},
		{"bad_integration", map[string]any{"ball": map[string]any{"integration": "rk4"}}, ball.ErrInvalidIntegration},
		{"short_vector", map[string]any{"transform": map[string]any{"position": []any{1, 2}}}, nil},
		{"empty_tag", map[string]any{"tag": map[string]any{"name": " "}}, nil},
		{"flat_volume", map[string]any{"trigger_volume": map[string]any{"half_extents": []any{1, 0, 1}}}, nil},
		{"bad_color", map[string]any{"appearance": map[string]any{"color": "blue"}}, nil},
		{"no_script_path", map[string]any{"force_script": map[string]any{}}, nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := ecs.NewWorld()
			_, err := BuildEntityFromSpec(w, c.name, prefabs.EntityBuildSpec{Name: c.name, Components: c.components})
			if err == nil {
				t.Fatalf("expected error")
			}
			if c.wantErr != nil && !errors.Is(err, c.wantErr) {
				t.Fatalf("error = %v, want %v", err, c.wantErr)
			}
			if n := len(ecs.Entities(w)); n != 0 {
				t.Fatalf("%d entities left after failed build", n)
			}
		})
	}
}

func TestBallWithoutTransformGetsOne(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntityFromSpec(w, "bare", prefabs.EntityBuildSpec{Components: map[string]any{
		"ball": map[string]any{"mass": 20, "velocity": []any{1, 0, 0}},
	}})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	tr, ok := ecs.Get(w, e, component.TransformComponent.Kind())
	if !ok || tr.Scale != (mgl64.Vec3{1, 1, 1}) {
		t.Fatalf("transform = %+v", tr)
	}
	body, _ := ecs.Get(w, e, component.BallBodyComponent.Kind())
	if body.Config.Mass != 20 || body.Ball.Velocity() != (mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("config not applied: %+v", body.Config)
	}
	if body.Radius != defaultBallRadius {
		t.Fatalf("radius = %v", body.Radius)
	}
	if ecs.Has(w, e, component.NameComponent.Kind()) {
		t.Fatalf("unnamed spec should not get a name")
	}
}

func TestSetEntityPositionMovesBall(t *testing.T) {
	w := ecs.NewWorld()
	e, err := BuildEntity(w, "ball.yaml")
	if err != nil {
		t.Fatalf("BuildEntity: %v", err)
	}
	pos := mgl64.Vec3{4, 5, 6}
	if err := SetEntityPosition(w, e, pos); err != nil {
		t.Fatalf("SetEntityPosition: %v", err)
	}
	tr, _ := ecs.Get(w, e, component.TransformComponent.Kind())
	body, _ := ecs.Get(w, e, component.BallBodyComponent.Kind())
	if tr.Position != pos || body.Ball.Position() != pos {
		t.Fatalf("transform %v, ball %v, want %v", tr.Position, body.Ball.Position(), pos)
	}
}

func TestBuildScene(t *testing.T) {
	scene, err := prefabs.LoadScene("current")
	if err != nil {
		t.Fatalf("LoadScene: %v", err)
	}
	w := ecs.NewWorld()
	entities, err := BuildScene(w, scene)
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}
	if len(entities) != 3 {
		t.Fatalf("entities = %d, want 3", len(entities))
	}

	heavy := entities[1]
	name, _ := ecs.Get(w, heavy, component.NameComponent.Kind())
	body, _ := ecs.Get(w, heavy, component.BallBodyComponent.Kind())
	if name.Value != "heavy" || body.Ball.Mass() != 40 {
		t.Fatalf("heavy instance = %q mass %v", name.Value, body.Ball.Mass())
	}
	if body.Ball.Position() != (mgl64.Vec3{-3, 3, 0}) {
		t.Fatalf("heavy position = %v", body.Ball.Position())
	}
	if fs, ok := ecs.Get(w, heavy, component.ForceScriptComponent.Kind()); !ok || fs.Path != "current.tengo" {
		t.Fatalf("force script = %+v", fs)
	}
	if ecs.Has(w, entities[2], component.ForceScriptComponent.Kind()) {
		t.Fatalf("override leaked into the light ball")
	}
}

func TestBuildSceneRollsBack(t *testing.T) {
	scene := prefabs.SceneSpec{
		Name: "broken",
		Instances: []prefabs.InstanceSpec{
			{Prefab: "water.yaml"},
			{Prefab: "ball.yaml", Ball: map[string]any{"mass": 1000}},
		},
	}
	w := ecs.NewWorld()
	if _, err := BuildScene(w, scene); !errors.Is(err, ball.ErrInvalidMass) {
		t.Fatalf("error = %v, want ErrInvalidMass", err)
	}
	if n := len(ecs.Entities(w)); n != 0 {
		t.Fatalf("%d entities left after failed scene", n)
	}
}
