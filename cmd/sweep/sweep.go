package main

import (
	"fmt"

	"github.com/milk9111/waterball/prefabs"
	"github.com/milk9111/waterball/sim"
)

type sweepResult struct {
	Mass        float64 `yaml:"mass"`
	FirstEntry  uint64  `yaml:"first_entry_tick"`
	Entries     int     `yaml:"water_entries"`
	LowestY     float64 `yaml:"lowest_y"`
	FinalY      float64 `yaml:"final_y"`
	FinalRegion string  `yaml:"final_region"`
}

// runSweep replays scene once per mass with the named instance's ball mass
// overridden, tracking how deep and how often it enters the water.
func runSweep(scene prefabs.SceneSpec, instance string, masses []float64, ticks int) ([]sweepResult, error) {
	idx := -1
	for i, inst := range scene.Instances {
		if inst.Name == instance {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("scene %q has no instance named %q", scene.Name, instance)
	}
	if ticks <= 0 {
		ticks = scene.Simulation.Ticks
	}
	if ticks <= 0 {
		return nil, fmt.Errorf("no tick count for scene %q", scene.Name)
	}

	results := make([]sweepResult, 0, len(masses))
	for _, mass := range masses {
		variant := scene
		variant.Instances = append([]prefabs.InstanceSpec(nil), scene.Instances...)
		override := map[string]any{}
		for k, v := range variant.Instances[idx].Ball {
			override[k] = v
		}
		override["mass"] = mass
		variant.Instances[idx].Ball = override

		s, err := sim.New(variant, sim.Options{LogEvery: -1})
		if err != nil {
			return nil, fmt.Errorf("mass %v: %w", mass, err)
		}
		b, ok := s.Ball(instance)
		if !ok {
			return nil, fmt.Errorf("mass %v: instance %q has no ball", mass, instance)
		}

		res := sweepResult{Mass: mass, LowestY: b.Position().Y()}
		for i := 0; i < ticks; i++ {
			wasIn := b.InWater()
			s.Step()
			if b.InWater() && !wasIn {
				res.Entries++
				if res.FirstEntry == 0 {
					res.FirstEntry = s.Tick()
				}
			}
			if y := b.Position().Y(); y < res.LowestY {
				res.LowestY = y
			}
		}
		res.FinalY = b.Position().Y()
		res.FinalRegion = b.Region().String()
		results = append(results, res)
	}
	return results, nil
}
