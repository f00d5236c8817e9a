// Package escape evaluates escape-time fractals for a single point of the
// complex plane.
//
// Evaluate is a pure function: it reads its arguments, runs a single
// bounded loop and returns a Result. It is safe to call from any number of
// goroutines at once.
package escape

import "math"

// IndeterminateDistance is reported in Result.Distance when no distance
// estimate exists for the sample.
const IndeterminateDistance = -1.0

// minDerivative is the smallest |dz| accepted by the distance estimate.
const minDerivative = 1e-12

// Status is the terminal state of an evaluation.
type Status uint8

const (
	// StatusBounded means the orbit stayed within the bailout for MaxIter steps.
	StatusBounded Status = iota
	// StatusEscaped means the orbit crossed the bailout and every metric is valid.
	StatusEscaped
	// StatusNonFinite means an intermediate value overflowed. The sample
	// diverged but its smooth count and distance are sentinels.
	StatusNonFinite
	// StatusIndeterminate means the orbit escaped but the derivative vanished,
	// so Distance is IndeterminateDistance.
	StatusIndeterminate
)

func (s Status) String() string {
	switch s {
	case StatusBounded:
		return "bounded"
	case StatusEscaped:
		return "escaped"
	case StatusNonFinite:
		return "non-finite"
	case StatusIndeterminate:
		return "indeterminate"
	}
	return "unknown"
}

// Result is the outcome of one evaluation.
type Result struct {
	Escaped bool
	// Iter is the index of the escaping iteration, or MaxIter when bounded.
	Iter int
	// Smooth is the fractional iteration count, in [Iter, Iter+1] on escape
	// and equal to MaxIter when bounded.
	Smooth float64
	// Distance is the estimated distance to the set boundary in Distance
	// mode, IndeterminateDistance otherwise.
	Distance float64

	// TrapDist and TrapPoint are the closest approach to the trap and the
	// orbit point realizing it. Only set in OrbitTrap mode.
	TrapDist  float64
	TrapPoint complex128

	// Angle is the argument of the last orbit point, or of TrapPoint in
	// OrbitTrap mode.
	Angle float64

	Status Status
}

// Evaluate iterates the recurrence selected by m for the point coord.
//
// Mandelbrot-style modes start at z = p.Seed with c = coord, Julia-style
// modes start at z = coord with c = p.C. The loop runs at most p.MaxIter
// steps and stops at the first z with |z|² > p.Bailout. A starting point
// that is already outside the bailout escapes at iteration 0.
func Evaluate(coord complex128, m Mode, p Params) Result {
	z, c := p.Seed, coord
	julia := p.juliaStyle(m)
	if julia {
		z, c = coord, p.C
	}

	res := Result{
		Iter:     p.MaxIter,
		Smooth:   float64(p.MaxIter),
		Distance: IndeterminateDistance,
		Status:   StatusBounded,
	}

	var trap Trap
	if m == OrbitTrap {
		trap = p.trap()
		res.TrapDist = trap.Distance(z)
		res.TrapPoint = z
	}

	// dz is the derivative of z. For Julia-style seeding it is taken with
	// respect to the starting point, so it starts at 1. For Mandelbrot-style
	// it is taken with respect to c, and the seed does not depend on c.
	dz := complex(0, 0)
	if julia {
		dz = 1
	}

	sq := SqMag(z)
	if !finite(sq) {
		return res.nonFinite(0)
	}
	if sq > p.Bailout {
		return res.escape(0, z, sq, dz, m)
	}

	for i := 0; i < p.MaxIter; i++ {
		if m == Distance {
			// chain rule on the pre-step z
			dz = 2 * z * dz
			if !julia {
				dz++
			}
		}

		z = step(m, z) + c
		sq = SqMag(z)

		if trap != nil {
			if d := trap.Distance(z); d < res.TrapDist {
				res.TrapDist = d
				res.TrapPoint = z
			}
		}

		if !finite(sq) {
			return res.nonFinite(i)
		}
		if sq > p.Bailout {
			return res.escape(i, z, sq, dz, m)
		}
	}

	res.Angle = res.angle(z, m)
	return res
}

func step(m Mode, z complex128) complex128 {
	switch m {
	case Cubic:
		return Cube(z)
	case BurningShip:
		a := AbsComponents(z)
		return a * a
	}
	return z * z
}

func (r Result) escape(i int, z complex128, sq float64, dz complex128, m Mode) Result {
	r.Escaped = true
	r.Iter = i
	r.Status = StatusEscaped
	r.Smooth = smoothCount(i, sq, m.Degree())
	r.Angle = r.angle(z, m)
	if m == Distance {
		r.Distance, r.Status = estimateDistance(sq, dz)
	}
	return r
}

func (r Result) nonFinite(i int) Result {
	r.Escaped = true
	r.Iter = i
	r.Smooth = float64(i)
	r.Distance = IndeterminateDistance
	r.Angle = 0
	r.Status = StatusNonFinite
	return r
}

func (r Result) angle(z complex128, m Mode) float64 {
	if m == OrbitTrap {
		z = r.TrapPoint
	}
	return math.Atan2(imag(z), real(z))
}

// smoothCount returns i + 1 - log_d(log2|z|) clamped to [i, i+1], where
// |z| is recovered from the same squared magnitude used by the escape test.
func smoothCount(i int, sq float64, degree int) float64 {
	lo := float64(i)
	logMag := 0.5 * math.Log2(sq)
	if !(logMag > 0) || !finite(logMag) {
		return lo
	}
	nu := math.Log(logMag) / math.Log(float64(degree))
	s := lo + 1 - nu
	switch {
	case math.IsNaN(s), s < lo:
		return lo
	case s > lo+1:
		return lo + 1
	}
	return s
}

// estimateDistance returns 0.5·|z|·ln|z| / |dz|.
func estimateDistance(sq float64, dz complex128) (float64, Status) {
	if !Finite(dz) {
		if math.IsNaN(real(dz)) || math.IsNaN(imag(dz)) {
			return IndeterminateDistance, StatusIndeterminate
		}
		// the derivative overflowed: the point is on the boundary to
		// within float precision
		return 0, StatusEscaped
	}
	dmag := Mag(dz)
	if !finite(dmag) {
		return 0, StatusEscaped
	}
	if dmag < minDerivative {
		return IndeterminateDistance, StatusIndeterminate
	}
	mag := math.Sqrt(sq)
	d := 0.5 * mag * math.Log(mag) / dmag
	if !finite(d) || d < 0 {
		return IndeterminateDistance, StatusIndeterminate
	}
	return d, StatusEscaped
}
