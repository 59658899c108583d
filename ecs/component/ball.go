package component

import "github.com/milk9111/waterball/ball"

// BallBody attaches a simulated ball. Config is the configuration the ball
// was built from, with the prefab overrides applied.
type BallBody struct {
	Ball   *ball.Ball
	Config ball.Config
	Radius float64
}

var BallBodyComponent = NewComponent[BallBody]()
