// Package ball simulates a ball that falls under gravity and is slowed by
// water. The caller drives it: Initialize once, Step every fixed tick, and the
// region callbacks whenever the ball overlaps a tagged trigger volume.
package ball

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// initialImpactTimer starts above the default ImpactTime, so the timer only
// advances when ImpactTime is configured above it.
const initialImpactTimer = 2.0

// Region is the state of the water state machine.
type Region uint8

const (
	Airborne Region = iota
	InWater
)

func (r Region) String() string {
	switch r {
	case InWater:
		return "in_water"
	default:
		return "airborne"
	}
}

// Ball owns velocity, acceleration and position of a single ball.
type Ball struct {
	mass                  float64
	gravitationalConstant float64
	waterDragCoefficient  float64
	impactForce           mgl64.Vec3
	integration           Integration

	position     mgl64.Vec3
	velocity     mgl64.Vec3
	acceleration mgl64.Vec3
	gravity      mgl64.Vec3

	impactTime  float64
	impactTimer float64

	region Region
	ticks  uint64
}

// Snapshot is a copy of the observable ball state.
type Snapshot struct {
	Tick         uint64     `yaml:"tick"`
	Mass         float64    `yaml:"mass"`
	Position     mgl64.Vec3 `yaml:"position,flow"`
	Velocity     mgl64.Vec3 `yaml:"velocity,flow"`
	Acceleration mgl64.Vec3 `yaml:"acceleration,flow"`
	Gravity      mgl64.Vec3 `yaml:"gravity,flow"`
	ImpactTimer  float64    `yaml:"impact_timer"`
	Region       string     `yaml:"region"`
}

// New validates cfg and returns an initialized ball.
func New(cfg Config) (*Ball, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new ball: %w", err)
	}
	b := FromConfig(cfg)
	b.Initialize()
	return b, nil
}

// FromConfig builds a ball without validating cfg. Initialize has not run yet,
// so gravity is zero until it does. A non-positive mass is healed on the first
// ApplyForce.
func FromConfig(cfg Config) *Ball {
	integration := cfg.Integration
	if integration == "" {
		integration = IntegratePerTick
	}
	return &Ball{
		mass:                  cfg.Mass,
		gravitationalConstant: cfg.GravitationalConstant,
		waterDragCoefficient:  cfg.WaterDragCoefficient,
		impactForce:           cfg.ImpactForce,
		integration:           integration,
		position:              cfg.Position,
		velocity:              cfg.Velocity,
		impactTime:            cfg.ImpactTime,
		impactTimer:           initialImpactTimer,
	}
}

// Initialize computes the gravity force from the configured mass.
func (b *Ball) Initialize() {
	if b == nil {
		return
	}
	b.gravity = mgl64.Vec3{0, -b.gravitationalConstant * b.mass, 0}
}

// Step advances the ball by one fixed tick of dt seconds.
func (b *Ball) Step(dt float64) {
	if b == nil {
		return
	}
	if b.impactTimer < b.impactTime {
		b.impactTimer += dt
	}

	b.ApplyForce(b.gravity)
	b.velocity = b.velocity.Add(b.acceleration)
	if b.integration == IntegrateTimeScaled {
		b.position = b.position.Add(b.velocity.Mul(dt))
	} else {
		b.position = b.position.Add(b.velocity)
	}
	b.acceleration = mgl64.Vec3{}
	b.ticks++
}

// ApplyForce accumulates force/mass into this tick's acceleration.
func (b *Ball) ApplyForce(force mgl64.Vec3) {
	if b == nil {
		return
	}
	if b.mass <= 0 {
		b.mass = 1
	}
	b.acceleration = b.acceleration.Add(force.Mul(1 / b.mass))
}

// Drag returns the quadratic drag force for the current velocity.
func (b *Ball) Drag(coefficient float64) mgl64.Vec3 {
	if b == nil {
		return mgl64.Vec3{}
	}
	return Drag(b.velocity, coefficient)
}

// Drag returns coefficient*|v|^2 directed against v. A zero velocity has no
// direction and yields no force.
func Drag(velocity mgl64.Vec3, coefficient float64) mgl64.Vec3 {
	speedSq := velocity.Dot(velocity)
	if speedSq == 0 {
		return mgl64.Vec3{}
	}
	direction := velocity.Mul(-1 / velocity.Len())
	return direction.Mul(coefficient * speedSq)
}

// OnRegionEnter applies the impact force when the ball enters water.
func (b *Ball) OnRegionEnter(tag string) {
	if b == nil || tag != WaterTag {
		return
	}
	b.region = InWater
	b.ApplyForce(b.impactForce.Mul(b.mass))
}

// OnRegionStay applies water drag for another overlapping tick.
func (b *Ball) OnRegionStay(tag string) {
	if b == nil || tag != WaterTag {
		return
	}
	b.region = InWater
	b.ApplyForce(b.Drag(b.waterDragCoefficient))
}

// OnRegionExit marks the ball airborne. Leaving water applies no force.
func (b *Ball) OnRegionExit(tag string) {
	if b == nil || tag != WaterTag {
		return
	}
	b.region = Airborne
}

func (b *Ball) Position() mgl64.Vec3     { return b.position }
func (b *Ball) Velocity() mgl64.Vec3     { return b.velocity }
func (b *Ball) Acceleration() mgl64.Vec3 { return b.acceleration }
func (b *Ball) Gravity() mgl64.Vec3      { return b.gravity }
func (b *Ball) Mass() float64            { return b.mass }
func (b *Ball) ImpactTimer() float64     { return b.impactTimer }
func (b *Ball) Region() Region           { return b.region }
func (b *Ball) InWater() bool            { return b.region == InWater }
func (b *Ball) Ticks() uint64            { return b.ticks }

// SetPosition moves the ball without touching its velocity.
func (b *Ball) SetPosition(p mgl64.Vec3) {
	if b == nil {
		return
	}
	b.position = p
}

// Snapshot copies the current state.
func (b *Ball) Snapshot() Snapshot {
	if b == nil {
		return Snapshot{}
	}
	return Snapshot{
		Tick:         b.ticks,
		Mass:         b.mass,
		Position:     b.position,
		Velocity:     b.velocity,
		Acceleration: b.acceleration,
		Gravity:      b.gravity,
		ImpactTimer:  b.impactTimer,
		Region:       b.region.String(),
	}
}
