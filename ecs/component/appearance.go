package component

import "image/color"

// Appearance is how the viewer draws an entity. Higher layers draw on top.
type Appearance struct {
	Color color.Color
	Layer int
}

var AppearanceComponent = NewComponent[Appearance]()
