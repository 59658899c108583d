package component

import "github.com/go-gl/mathgl/mgl64"

// TriggerVolume is a non-solid axis-aligned box centred on the transform
// position plus Offset. It only reports overlaps.
type TriggerVolume struct {
	HalfExtents mgl64.Vec3
	Offset      mgl64.Vec3
}

// Bounds returns the min and max corners for a centre position.
func (v TriggerVolume) Bounds(center mgl64.Vec3) (mgl64.Vec3, mgl64.Vec3) {
	c := center.Add(v.Offset)
	return c.Sub(v.HalfExtents), c.Add(v.HalfExtents)
}

var TriggerVolumeComponent = NewComponent[TriggerVolume]()
