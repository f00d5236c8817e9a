// Package palette maps evaluation results to colors.
package palette

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/marben/escape_fractals/escape"
)

var (
	// Interior is painted for samples that never escaped.
	Interior = color.RGBA{A: 255}
	// Sentinel is painted for non-finite or indeterminate samples.
	Sentinel = color.RGBA{R: 255, B: 255, A: 255}
)

// Colorizer is a pure function from an evaluation result to a color.
type Colorizer interface {
	Color(r escape.Result) color.RGBA
}

// Cosine is the palette 0.5 + 0.5·cos(Base + metric·Freq + Phase), applied
// per channel. The metric is the smooth iteration count times Scale.
type Cosine struct {
	Base, Freq, Phase mgl64.Vec3
	Scale             float64
}

// Rainbow is the cosine palette used by the escape-time presets.
var Rainbow = Cosine{
	Base:  mgl64.Vec3{3.0, 3.0, 3.0},
	Freq:  mgl64.Vec3{1, 1, 1},
	Phase: mgl64.Vec3{0.0, 0.6, 1.0},
	Scale: 0.15,
}

func (p Cosine) Color(r escape.Result) color.RGBA {
	switch r.Status {
	case escape.StatusBounded:
		return Interior
	case escape.StatusNonFinite:
		return Sentinel
	}
	return p.At(r.Smooth * p.Scale)
}

// At evaluates the palette for metric t.
func (p Cosine) At(t float64) color.RGBA {
	var c mgl64.Vec3
	for i := range c {
		c[i] = 0.5 + 0.5*math.Cos(p.Base[i]+t*p.Freq[i]+p.Phase[i])
	}
	return RGBA(c)
}

// Contour colors distance estimates with a smoothstep edge of the given
// Width in complex-plane units.
type Contour struct {
	Width                 float64
	Inside, Edge, Outside mgl64.Vec3
}

// Ink is the contour palette used by the distance preset.
var Ink = Contour{
	Width:   0.01,
	Inside:  mgl64.Vec3{0, 0, 0},
	Edge:    mgl64.Vec3{0.05, 0.05, 0.1},
	Outside: mgl64.Vec3{0.95, 0.9, 0.8},
}

func (p Contour) Color(r escape.Result) color.RGBA {
	switch r.Status {
	case escape.StatusBounded:
		return RGBA(p.Inside)
	case escape.StatusNonFinite, escape.StatusIndeterminate:
		return Sentinel
	}
	if r.Distance < 0 {
		return Sentinel
	}
	t := math.Pow(Smoothstep(0, p.Width, r.Distance), 0.25)
	return RGBA(Mix(p.Edge, p.Outside, t))
}

// Trap blends the escape hue with the orbit trap distance.
type Trap struct {
	// Falloff controls how fast the trap glow fades with distance.
	Falloff float64
	// HueScale converts the smooth count to a hue offset.
	HueScale float64
}

// Glow is the trap palette used by the orbit-trap preset.
var Glow = Trap{Falloff: 5, HueScale: 0.02}

func (p Trap) Color(r escape.Result) color.RGBA {
	tnorm := math.Exp(-p.Falloff * r.TrapDist)
	switch r.Status {
	case escape.StatusNonFinite:
		return Sentinel
	case escape.StatusBounded:
		v := mgl64.Clamp(tnorm, 0, 1)
		return HSV(0.5*r.Angle/math.Pi, 0.6, v)
	}
	hue := math.Mod(r.Smooth*p.HueScale+tnorm*0.3, 1.0)
	return HSV(hue, 1, 1)
}

// Bands cycles through a fixed list of colors by raw iteration count.
type Bands []color.RGBA

func (p Bands) Color(r escape.Result) color.RGBA {
	switch {
	case r.Status == escape.StatusBounded:
		return Interior
	case r.Status == escape.StatusNonFinite:
		return Sentinel
	case len(p) == 0:
		return Interior
	}
	return p[r.Iter%len(p)]
}

// Smoothstep is the Hermite interpolation between edge0 and edge1.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := mgl64.Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Mix linearly interpolates between a and b.
func Mix(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Mul(1 - t).Add(b.Mul(t))
}

// RGBA converts a color with channels in [0, 1] to color.RGBA.
func RGBA(c mgl64.Vec3) color.RGBA {
	return color.RGBA{
		R: channel(c[0]),
		G: channel(c[1]),
		B: channel(c[2]),
		A: 255,
	}
}

func channel(v float64) uint8 {
	if math.IsNaN(v) {
		return 0
	}
	return uint8(math.Round(mgl64.Clamp(v, 0, 1) * 255))
}

// HSV converts hue, saturation and value in [0, 1] to color.RGBA.
func HSV(h, s, v float64) color.RGBA {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}
	return RGBA(mgl64.Vec3{r, g, b})
}
