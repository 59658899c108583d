package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

type EntityBuildSpec struct {
	Name       string         `yaml:"name"`
	Components map[string]any `yaml:"components"`
}

func LoadEntityBuildSpec(filename string) (EntityBuildSpec, error) {
	return LoadSpec[EntityBuildSpec](filename)
}

func DecodeComponentSpec[T any](raw any) (T, error) {
	var zero T
	if raw == nil {
		return zero, nil
	}
	b, err := yaml.Marshal(raw)
	if err != nil {
		return zero, err
	}
	var out T
	if err := yaml.Unmarshal(b, &out); err != nil {
		return zero, err
	}
	return out, nil
}

// Vec3 converts a YAML sequence of three numbers. An empty sequence yields
// def.
func Vec3(raw []float64, def mgl64.Vec3) (mgl64.Vec3, error) {
	switch len(raw) {
	case 0:
		return def, nil
	case 3:
		return mgl64.Vec3{raw[0], raw[1], raw[2]}, nil
	default:
		return mgl64.Vec3{}, fmt.Errorf("want 3 components, got %d", len(raw))
	}
}

type TransformComponentSpec struct {
	Position []float64 `yaml:"position,flow"`
	Scale    []float64 `yaml:"scale,flow"`
}

// BallComponentSpec mirrors ball.Config. Pointer fields distinguish "unset"
// from an explicit zero so defaults only fill what the prefab leaves out.
type BallComponentSpec struct {
	Mass                  *float64  `yaml:"mass"`
	GravitationalConstant *float64  `yaml:"gravitational_constant"`
	WaterDragCoefficient  *float64  `yaml:"water_drag_coefficient"`
	ImpactForce           []float64 `yaml:"impact_force,flow"`
	ImpactTime            *float64  `yaml:"impact_time"`
	Integration           string    `yaml:"integration"`
	Velocity              []float64 `yaml:"velocity,flow"`
	Radius                float64   `yaml:"radius"`
}

type TagComponentSpec struct {
	Name string `yaml:"name"`
}

type TriggerVolumeComponentSpec struct {
	HalfExtents []float64 `yaml:"half_extents,flow"`
	Offset      []float64 `yaml:"offset,flow"`
}

type CollisionLayerComponentSpec struct {
	Category uint32 `yaml:"category"`
	Mask     uint32 `yaml:"mask"`
}

type ForceScriptComponentSpec struct {
	Path string `yaml:"path"`
}

type AppearanceComponentSpec struct {
	Color *YAMLColor `yaml:"color"`
	Layer int        `yaml:"layer"`
}
