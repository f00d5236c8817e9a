package escape

import (
	"fmt"
	"strings"
)

// Mode selects the recurrence evaluated by Evaluate.
type Mode uint8

const (
	// Mandelbrot iterates z² + c with z starting at Params.Seed and c the coordinate.
	Mandelbrot Mode = iota
	// Julia iterates z² + c with z starting at the coordinate and c = Params.C.
	Julia
	// BurningShip folds both components of z to be positive before squaring.
	BurningShip
	// Cubic iterates z³ + c.
	Cubic
	// Distance is the quadratic map with derivative tracking for distance estimation.
	Distance
	// OrbitTrap is the quadratic map recording the closest approach to Params.Trap.
	OrbitTrap
)

var modeNames = [...]string{
	Mandelbrot:  "mandelbrot",
	Julia:       "julia",
	BurningShip: "burning-ship",
	Cubic:       "cubic",
	Distance:    "distance",
	OrbitTrap:   "orbit-trap",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// Degree is the polynomial degree of the mode's step function.
func (m Mode) Degree() int {
	if m == Cubic {
		return 3
	}
	return 2
}

// ParseMode returns the mode with the given name.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return Mode(m), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
