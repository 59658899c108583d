package component

import "github.com/go-gl/mathgl/mgl64"

// Transform places an entity in world space. Y is up.
type Transform struct {
	Position mgl64.Vec3
	Scale    mgl64.Vec3
}

var TransformComponent = NewComponent[Transform]()
