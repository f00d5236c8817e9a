package escape

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrInvalidParams = errors.New("invalid iteration parameters")
	ErrUnknownMode   = errors.New("unknown iteration mode")
)

const (
	// DefaultMaxIter is the iteration bound used by the presets.
	DefaultMaxIter = 100
	// DefaultBailout is the squared escape radius for plain escape-time rendering.
	DefaultBailout = 4.0
	// DistanceBailout is the squared escape radius used with distance estimation.
	// A larger radius keeps the logarithm in the estimate accurate.
	DistanceBailout = 256.0
)

// Params are the read-only inputs of one evaluation.
type Params struct {
	// Seed is the starting z for Mandelbrot-style iteration, normally 0.
	Seed complex128
	// C is the constant for Julia-style iteration.
	C complex128
	// Julia selects Julia-style seeding for BurningShip, Cubic, Distance
	// and OrbitTrap. Mandelbrot and Julia modes ignore it.
	Julia bool

	MaxIter int
	// Bailout is the squared escape radius; it must be greater than 1.
	Bailout float64

	// Trap is used by OrbitTrap mode. Nil means the unit circle.
	Trap Trap
}

// DefaultParams returns the preset bound and bailout for m.
func DefaultParams(m Mode) Params {
	p := Params{
		MaxIter: DefaultMaxIter,
		Bailout: DefaultBailout,
	}
	switch m {
	case Julia:
		p.C = complex(-0.8, 0.156)
	case Distance:
		p.Bailout = DistanceBailout
	case OrbitTrap:
		p.Trap = CircleTrap{Radius: 1}
	}
	return p
}

func (p Params) Validate() error {
	switch {
	case p.MaxIter <= 0:
		return fmt.Errorf("%w: max iterations %d must be positive", ErrInvalidParams, p.MaxIter)
	case math.IsNaN(p.Bailout) || math.IsInf(p.Bailout, 0) || p.Bailout <= 1:
		return fmt.Errorf("%w: bailout %v must be finite and greater than 1", ErrInvalidParams, p.Bailout)
	case !Finite(p.Seed):
		return fmt.Errorf("%w: seed %v is not finite", ErrInvalidParams, p.Seed)
	case !Finite(p.C):
		return fmt.Errorf("%w: constant %v is not finite", ErrInvalidParams, p.C)
	}
	return nil
}

func (p Params) juliaStyle(m Mode) bool {
	switch m {
	case Mandelbrot:
		return false
	case Julia:
		return true
	}
	return p.Julia
}

func (p Params) trap() Trap {
	if p.Trap == nil {
		return CircleTrap{Radius: 1}
	}
	return p.Trap
}
