package entity

import (
	"fmt"

	"github.com/milk9111/waterball/ecs"
	"github.com/milk9111/waterball/prefabs"
)

// BuildScene instantiates every prefab instance of scene in order. If any
// instance fails, the entities already built for the scene are destroyed.
func BuildScene(w *ecs.World, scene prefabs.SceneSpec) ([]ecs.Entity, error) {
	if w == nil {
		return nil, fmt.Errorf("build scene: world is nil")
	}

	built := make([]ecs.Entity, 0, len(scene.Instances))
	fail := func(err error) ([]ecs.Entity, error) {
		for _, e := range built {
			ecs.DestroyEntity(w, e)
		}
		return nil, err
	}

	for i, inst := range scene.Instances {
		if inst.Prefab == "" {
			return fail(fmt.Errorf("build scene %q: instance %d has no prefab", scene.Name, i))
		}
		base, err := prefabs.LoadEntityBuildSpec(inst.Prefab)
		if err != nil {
			return fail(fmt.Errorf("build scene %q: %w", scene.Name, err))
		}
		label := inst.Prefab
		if inst.Name != "" {
			label = fmt.Sprintf("%s (%s)", inst.Prefab, inst.Name)
		}
		e, err := BuildEntityFromSpec(w, label, inst.Apply(base))
		if err != nil {
			return fail(fmt.Errorf("build scene %q: %w", scene.Name, err))
		}
		built = append(built, e)
	}
	return built, nil
}
