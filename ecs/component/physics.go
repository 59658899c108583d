package component

import "github.com/jakecoffman/cp"

// ProxyBody stores the Chipmunk2D body and sensor shape that stand in for an
// entity during overlap detection. Owned by the trigger system.
type ProxyBody struct {
	Body   *cp.Body
	Shape  *cp.Shape
	Static bool
}

var ProxyBodyComponent = NewComponent[ProxyBody]()
