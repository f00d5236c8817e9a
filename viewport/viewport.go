// Package viewport maps pixels to points of the complex plane.
package viewport

import (
	"image"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Uniforms are the per-frame inputs shared by every pixel of a frame.
// They are passed by value and never modified while a frame renders.
type Uniforms struct {
	Resolution image.Point
	// Time is the elapsed animation time in seconds.
	Time float64
	// Mouse is the pointer position in pixels, with the origin at the top
	// left. The zero value means no pointer input.
	Mouse mgl64.Vec2
}

// WithMouse returns u with the pointer at pixel position (x, y).
func (u Uniforms) WithMouse(x, y float64) Uniforms {
	u.Mouse = mgl64.Vec2{x, y}
	return u
}

// View is the visible window of the complex plane.
type View struct {
	Center complex128
	// Zoom of 1 shows [-1, 1] along the shorter image side.
	Zoom float64
}

// At returns the complex coordinate of pixel position (x, y) in an image
// of size res. Positions are continuous: pixel centers sit at +0.5.
func (v View) At(res image.Point, x, y float64) complex128 {
	m := float64(min(res.X, res.Y))
	if m <= 0 {
		return v.Center
	}
	zoom := v.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	u := (2*x - float64(res.X)) / m
	w := (float64(res.Y) - 2*y) / m
	return v.Center + complex(u/zoom, w/zoom)
}

// PixelSize is the width of one pixel in complex-plane units.
func (v View) PixelSize(res image.Point) float64 {
	m := float64(min(res.X, res.Y))
	if m <= 0 || v.Zoom <= 0 {
		return 2
	}
	return 2 / (m * v.Zoom)
}

// Region is a bounding box of the complex plane.
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// View returns the view centered on r that fits its larger side.
func (r Region) View() View {
	span := math.Max(r.Xmax-r.Xmin, r.Ymax-r.Ymin)
	if span <= 0 {
		return View{Center: complex((r.Xmin+r.Xmax)/2, (r.Ymin+r.Ymax)/2), Zoom: 1}
	}
	return View{
		Center: complex((r.Xmin+r.Xmax)/2, (r.Ymin+r.Ymax)/2),
		Zoom:   2 / span,
	}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Triple Spiral – threefold symmetric spiral structure
	TripleSpiral = Region{
		Xmin: -0.7480,
		Xmax: -0.7450,
		Ymin: 0.0950,
		Ymax: 0.0980,
	}
)

// Regions by name, for configuration files.
var Regions = map[string]Region{
	"seahorse-valley": SeahorseValley,
	"elephant-valley": ElephantValley,
	"spiral-minibrot": SpiralMinibrot,
	"triple-spiral":   TripleSpiral,
}
