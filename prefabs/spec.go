package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTickRate = 60
	DefaultLogEvery = 60
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// SceneSpec is a list of prefab instances plus the settings of the run.
type SceneSpec struct {
	Name       string         `yaml:"name"`
	Simulation SimulationSpec `yaml:"simulation"`
	Instances  []InstanceSpec `yaml:"instances"`
}

type SimulationSpec struct {
	TickRate int `yaml:"tick_rate"`
	LogEvery int `yaml:"log_every"`
	// Ticks is the default length of a headless run.
	Ticks int `yaml:"ticks"`
}

// InstanceSpec places one prefab. Position replaces the prefab's transform
// position; Ball and Components are merged key by key over the prefab's
// component specs.
type InstanceSpec struct {
	Prefab     string         `yaml:"prefab"`
	Name       string         `yaml:"name"`
	Position   []float64      `yaml:"position,flow"`
	Ball       map[string]any `yaml:"ball"`
	Components map[string]any `yaml:"components"`
}

// LoadScene reads scenes/<name>.yaml and fills in default settings.
func LoadScene(name string) (SceneSpec, error) {
	spec, err := LoadSpec[SceneSpec](cleanScenePath(name))
	if err != nil {
		return SceneSpec{}, err
	}
	if spec.Simulation.TickRate <= 0 {
		spec.Simulation.TickRate = DefaultTickRate
	}
	if spec.Simulation.LogEvery == 0 {
		spec.Simulation.LogEvery = DefaultLogEvery
	}
	if len(spec.Instances) == 0 {
		return SceneSpec{}, fmt.Errorf("prefabs: scene %s has no instances", name)
	}
	return spec, nil
}

// Apply returns a copy of base with the instance overrides merged in. base is
// not modified.
func (i InstanceSpec) Apply(base EntityBuildSpec) EntityBuildSpec {
	out := EntityBuildSpec{Name: base.Name, Components: make(map[string]any, len(base.Components))}
	for k, v := range base.Components {
		out.Components[k] = v
	}
	if i.Name != "" {
		out.Name = i.Name
	}

	for k, v := range i.Components {
		out.Components[k] = mergeComponent(out.Components[k], v)
	}
	if len(i.Ball) > 0 {
		out.Components["ball"] = mergeComponent(out.Components["ball"], i.Ball)
	}
	if len(i.Position) > 0 {
		out.Components["transform"] = mergeComponent(out.Components["transform"], map[string]any{
			"position": i.Position,
		})
	}
	return out
}

func mergeComponent(base, override any) any {
	bm, ok := base.(map[string]any)
	if !ok {
		return override
	}
	om, ok := override.(map[string]any)
	if !ok {
		return override
	}
	merged := make(map[string]any, len(bm)+len(om))
	for k, v := range bm {
		merged[k] = v
	}
	for k, v := range om {
		merged[k] = v
	}
	return merged
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return err
	}
	g, err := parse(2)
	if err != nil {
		return err
	}
	b, err := parse(4)
	if err != nil {
		return err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return err
		}
	}

	c.Color = color.NRGBA{R: r, G: g, B: b, A: a}
	return nil
}
