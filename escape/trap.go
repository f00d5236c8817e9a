package escape

import "math"

// Trap is the reference shape of an orbit trap.
type Trap interface {
	// Distance returns the non-negative distance from z to the shape.
	Distance(z complex128) float64
}

// CircleTrap is a circle outline.
type CircleTrap struct {
	Center complex128
	Radius float64
}

func (t CircleTrap) Distance(z complex128) float64 {
	return math.Abs(Mag(z-t.Center) - t.Radius)
}

// PointTrap is a single point.
type PointTrap struct {
	Point complex128
}

func (t PointTrap) Distance(z complex128) float64 {
	return Mag(z - t.Point)
}

// CrossTrap is the union of the real and imaginary axes.
type CrossTrap struct{}

func (CrossTrap) Distance(z complex128) float64 {
	return math.Min(math.Abs(real(z)), math.Abs(imag(z)))
}

// LineTrap is the horizontal line Im(z) = Y.
type LineTrap struct {
	Y float64
}

func (t LineTrap) Distance(z complex128) float64 {
	return math.Abs(imag(z) - t.Y)
}
