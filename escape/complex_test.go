package escape

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplexHelpers(t *testing.T) {
	z := complex(3, -4)
	assert.Equal(t, 25.0, SqMag(z))
	assert.Equal(t, 5.0, Mag(z))
	assert.Equal(t, complex(3, 4), AbsComponents(z))
	assert.Equal(t, z*z*z, Cube(z))

	r := Rotate(complex(1, 0), math.Pi/2)
	assert.InDelta(t, 0, real(r), 1e-15)
	assert.InDelta(t, 1, imag(r), 1e-15)

	assert.True(t, Finite(z))
	assert.False(t, Finite(complex(math.NaN(), 0)))
	assert.False(t, Finite(complex(0, math.Inf(-1))))
}

func TestParseMode(t *testing.T) {
	for _, m := range allModes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMode("  Burning-Ship ")
	require.NoError(t, err)
	assert.Equal(t, BurningShip, got)

	_, err = ParseMode("newton")
	assert.ErrorIs(t, err, ErrUnknownMode)

	assert.Equal(t, "Mode(42)", Mode(42).String())
}

func TestParamsValidate(t *testing.T) {
	for _, m := range allModes {
		assert.NoError(t, DefaultParams(m).Validate(), m.String())
	}

	tests := []struct {
		name string
		edit func(p *Params)
	}{
		{"zero iterations", func(p *Params) { p.MaxIter = 0 }},
		{"bailout one", func(p *Params) { p.Bailout = 1 }},
		{"bailout inf", func(p *Params) { p.Bailout = math.Inf(1) }},
		{"nan constant", func(p *Params) { p.C = complex(math.NaN(), 0) }},
		{"inf seed", func(p *Params) { p.Seed = complex(0, math.Inf(1)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams(Mandelbrot)
			tt.edit(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}
}

func TestTrapDistances(t *testing.T) {
	assert.Equal(t, 0.0, CircleTrap{Radius: 5}.Distance(complex(3, 4)))
	assert.Equal(t, 1.0, CircleTrap{Center: 1, Radius: 1}.Distance(complex(3, 0)))
	assert.Equal(t, 5.0, PointTrap{Point: complex(3, 4)}.Distance(0))
	assert.Equal(t, 0.5, CrossTrap{}.Distance(complex(0.5, -2)))
	assert.Equal(t, 1.5, LineTrap{Y: -1}.Distance(complex(7, 0.5)))
}
