package component

// CollisionLayer allows entities to declare a collision category and mask
// so the trigger system can skip overlaps between unrelated groups.
type CollisionLayer struct {
	// Category is a bitmask of this entity's collision category. If zero,
	// the trigger system will treat it as category 1.
	Category uint32
	// Mask is a bitmask of categories this entity should overlap with. If
	// zero, the trigger system will treat it as all-bits set.
	Mask uint32
}

var CollisionLayerComponent = NewComponent[CollisionLayer]()
