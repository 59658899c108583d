package component

// Tag is the label trigger volumes report to overlapping bodies, e.g. "Water".
type Tag struct {
	Name string
}

var TagComponent = NewComponent[Tag]()

// Name is the prefab name an entity was built from.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
