package viewport

import (
	"fmt"
	"math"
	"strings"
)

// AnimationKind selects how the Julia constant changes between frames.
type AnimationKind uint8

const (
	// Fixed keeps Animation.C.
	Fixed AnimationKind = iota
	// Orbit moves the constant around a circle as time advances.
	Orbit
	// Pointer takes the constant from the mouse position.
	Pointer
)

var animationNames = [...]string{
	Fixed:   "fixed",
	Orbit:   "orbit",
	Pointer: "pointer",
}

func (k AnimationKind) String() string {
	if int(k) < len(animationNames) {
		return animationNames[k]
	}
	return fmt.Sprintf("AnimationKind(%d)", k)
}

func ParseAnimationKind(s string) (AnimationKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Fixed, nil
	}
	for k, name := range animationNames {
		if name == s {
			return AnimationKind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown julia animation %q", s)
}

// Animation drives the Julia constant from the frame uniforms.
type Animation struct {
	Kind AnimationKind
	// C is the constant for Fixed, and the fallback for Pointer when
	// there is no pointer input.
	C complex128
	// Radius and Speed (radians per second) of the Orbit path.
	Radius, Speed float64
}

// DefaultOrbitRadius traces the well known 0.7885·e^{it} family.
const DefaultOrbitRadius = 0.7885

// Constant returns the Julia constant for frame u.
func (a Animation) Constant(u Uniforms) complex128 {
	switch a.Kind {
	case Orbit:
		r := a.Radius
		if r == 0 {
			r = DefaultOrbitRadius
		}
		s, c := math.Sincos(u.Time * a.Speed)
		return complex(r*c, r*s)
	case Pointer:
		if u.Mouse[0] == 0 && u.Mouse[1] == 0 {
			return a.C
		}
		return View{Zoom: 1}.At(u.Resolution, u.Mouse[0], u.Mouse[1])
	}
	return a.C
}
