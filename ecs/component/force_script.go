package component

// ForceScript runs a tengo script every tick that may push extra forces onto
// the entity's ball.
type ForceScript struct {
	Path     string
	Disabled bool
}

var ForceScriptComponent = NewComponent[ForceScript]()
