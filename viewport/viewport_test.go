package viewport

import (
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewAt(t *testing.T) {
	res := image.Pt(400, 200)
	v := View{Zoom: 1}

	assert.Equal(t, complex(0, 0), v.At(res, 200, 100))
	// shorter side spans [-1, 1]
	assert.Equal(t, complex(0, 1), v.At(res, 200, 0))
	assert.Equal(t, complex(0, -1), v.At(res, 200, 200))
	// longer side is aspect corrected
	assert.Equal(t, complex(-2, 0), v.At(res, 0, 100))

	v = View{Center: complex(-0.5, 0.25), Zoom: 4}
	assert.Equal(t, complex(-0.5+0.5, 0.25), v.At(res, 400, 100))
	assert.Equal(t, 2/(200*4.0), v.PixelSize(res))

	assert.Equal(t, v.Center, v.At(image.Point{}, 1, 1))
}

func TestRegionView(t *testing.T) {
	v := SeahorseValley.View()
	assert.InDelta(t, -0.75, real(v.Center), 1e-12)
	assert.InDelta(t, 0.1, imag(v.Center), 1e-12)
	assert.InDelta(t, 20, v.Zoom, 1e-9)

	// the region fits the shorter side of a square image
	res := image.Pt(100, 100)
	tl := v.At(res, 0, 0)
	assert.InDelta(t, SeahorseValley.Xmin, real(tl), 1e-9)
	assert.InDelta(t, SeahorseValley.Ymax, imag(tl), 1e-9)
}

func TestAnimationConstant(t *testing.T) {
	fixed := Animation{C: complex(-0.8, 0.156)}
	assert.Equal(t, complex(-0.8, 0.156), fixed.Constant(Uniforms{Time: 12}))

	orbit := Animation{Kind: Orbit, Speed: 1}
	c := orbit.Constant(Uniforms{Time: math.Pi / 2})
	assert.InDelta(t, 0, real(c), 1e-12)
	assert.InDelta(t, DefaultOrbitRadius, imag(c), 1e-12)

	pointer := Animation{Kind: Pointer, C: 1}
	u := Uniforms{Resolution: image.Pt(200, 200)}
	assert.Equal(t, complex(1, 0), pointer.Constant(u))
	u.Mouse = mgl64.Vec2{200, 0}
	assert.Equal(t, complex(1, 1), pointer.Constant(u))
	assert.Equal(t, complex(-1, -1), pointer.Constant(u.WithMouse(0, 200)))
}

func TestParseAnimationKind(t *testing.T) {
	for _, k := range []AnimationKind{Fixed, Orbit, Pointer} {
		got, err := ParseAnimationKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	got, err := ParseAnimationKind("")
	require.NoError(t, err)
	assert.Equal(t, Fixed, got)

	_, err = ParseAnimationKind("spin")
	assert.Error(t, err)
}
