package ball

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	MinMass = 5.0
	MaxMass = 100.0

	// WaterTag is the only region tag that produces forces.
	WaterTag = "Water"
)

var (
	ErrInvalidMass        = errors.New("ball: mass out of range")
	ErrInvalidValue       = errors.New("ball: value is not finite")
	ErrInvalidIntegration = errors.New("ball: unknown integration mode")
)

// Integration selects how velocity becomes displacement.
type Integration string

const (
	// IntegratePerTick adds velocity to position once per tick. The tick
	// duration is baked into the velocity units.
	IntegratePerTick Integration = "per_tick"
	// IntegrateTimeScaled adds velocity*dt to position.
	IntegrateTimeScaled Integration = "time_scaled"
)

// Config holds the tunables of a ball.
type Config struct {
	Mass                  float64
	GravitationalConstant float64
	WaterDragCoefficient  float64
	ImpactForce           mgl64.Vec3
	ImpactTime            float64
	Integration           Integration

	Position mgl64.Vec3
	Velocity mgl64.Vec3
}

// DefaultConfig returns the stock tuning of a floating ball.
func DefaultConfig() Config {
	return Config{
		Mass:                  MinMass,
		GravitationalConstant: 0.0001,
		WaterDragCoefficient:  15,
		ImpactForce:           mgl64.Vec3{0, 0.08, 0},
		ImpactTime:            1,
		Integration:           IntegratePerTick,
	}
}

// Validate checks the documented ranges.
func (c Config) Validate() error {
	if math.IsNaN(c.Mass) || c.Mass < MinMass || c.Mass > MaxMass {
		return fmt.Errorf("%w: %v not in [%v, %v]", ErrInvalidMass, c.Mass, MinMass, MaxMass)
	}
	scalars := map[string]float64{
		"gravitational constant": c.GravitationalConstant,
		"water drag coefficient": c.WaterDragCoefficient,
		"impact time":            c.ImpactTime,
	}
	for name, v := range scalars {
		if !finite(v) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidValue, name, v)
		}
	}
	vectors := map[string]mgl64.Vec3{
		"impact force": c.ImpactForce,
		"position":     c.Position,
		"velocity":     c.Velocity,
	}
	for name, v := range vectors {
		if !finite(v[0]) || !finite(v[1]) || !finite(v[2]) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidValue, name, v)
		}
	}
	switch c.Integration {
	case "", IntegratePerTick, IntegrateTimeScaled:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidIntegration, c.Integration)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
