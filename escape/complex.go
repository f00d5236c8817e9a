package escape

import "math"

// SqMag returns |z|². Every escape test and smoothing formula in this
// package is derived from this value.
func SqMag(z complex128) float64 {
	r, i := real(z), imag(z)
	return r*r + i*i
}

// Mag returns |z| as the square root of SqMag.
func Mag(z complex128) float64 {
	return math.Sqrt(SqMag(z))
}

// Cube returns z³.
func Cube(z complex128) complex128 {
	return z * z * z
}

// AbsComponents takes the absolute value of both components of z.
func AbsComponents(z complex128) complex128 {
	return complex(math.Abs(real(z)), math.Abs(imag(z)))
}

// Rotate rotates z around the origin by theta radians.
func Rotate(z complex128, theta float64) complex128 {
	s, c := math.Sincos(theta)
	return z * complex(c, s)
}

// Finite reports whether both components of z are finite.
func Finite(z complex128) bool {
	return finite(real(z)) && finite(imag(z))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
