package scene

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marben/escape_fractals/escape"
	"github.com/marben/escape_fractals/palette"
	"github.com/marben/escape_fractals/viewport"
)

func TestPresetsValidate(t *testing.T) {
	names := PresetNames()
	require.Contains(t, names, "mandelbrot")
	require.Contains(t, names, ModeBranches)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			s, err := Preset(name)
			require.NoError(t, err)
			assert.Equal(t, name, s.Name)
			require.NoError(t, s.Validate())

			sh, err := s.Shader(s.Uniforms(1))
			require.NoError(t, err)
			r, g, b := sh.Shade(s.View().At(image.Pt(s.Width, s.Height), 10.5, 10.5))
			for _, v := range []float64{r, g, b} {
				assert.GreaterOrEqual(t, v, 0.0)
				assert.LessOrEqual(t, v, 1.0)
			}
		})
	}

	_, err := Preset("nope")
	assert.ErrorIs(t, err, ErrInvalidScene)
}

func TestLoadTOML(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "seahorse.toml"))
	require.NoError(t, err)

	assert.Equal(t, "seahorse", s.Name)
	assert.Equal(t, 320, s.Width)
	assert.Equal(t, 240, s.Height)
	assert.Equal(t, 800, s.MaxIter)
	// inherited from the preset
	assert.Equal(t, "seahorse-valley", s.Region)
	assert.Equal(t, 2, s.Supersample)
	assert.Equal(t, viewport.SeahorseValley.View(), s.View())

	col, err := s.Colorizer()
	require.NoError(t, err)
	cos, ok := col.(palette.Cosine)
	require.True(t, ok)
	assert.Equal(t, 0.05, cos.Scale)
	assert.Equal(t, 0.5, cos.Base[1])
}

func TestLoadYAML(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "julia.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "dendrite", s.Name)
	assert.Equal(t, "julia", s.Mode)
	assert.Equal(t, [2]float64{0, 1}, s.C)
	assert.Equal(t, 3, s.Supersample)

	m, p, err := s.Params()
	require.NoError(t, err)
	assert.Equal(t, escape.Julia, m)
	assert.Equal(t, complex(0, 1), p.C)

	col, err := s.Colorizer()
	require.NoError(t, err)
	assert.IsType(t, palette.Bands{}, col)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unknown preset", `preset = "newton"`},
		{"unknown mode", `mode = "newton"`},
		{"bad size", "width = -1"},
		{"huge size", "width = 2000000000\nheight = 2000000000"},
		{"too tall", "height = 8193"},
		{"bad supersample", "supersample = 9"},
		{"unknown region", `region = "atlantis"`},
		{"unknown palette", "[palette]\nkind = \"plaid\""},
		{"unknown trap", "mode = \"orbit-trap\"\n[trap]\nkind = \"star\""},
		{"bad bailout", "bailout = 0.5"},
		{"bad branch", "mode = \"branches\"\n[branch]\ndepth = 99"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), TOML)
			assert.ErrorIs(t, err, ErrInvalidScene)
		})
	}

	_, err := Parse([]byte("width = [1"), TOML)
	assert.Error(t, err)

	_, err = FormatOf("scene.json")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Load(filepath.Join("testdata", "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshalRoundTrip(t *testing.T) {
	for _, f := range []Format{TOML, YAML} {
		s, err := Preset("distance")
		require.NoError(t, err)

		data, err := Marshal(s, f)
		require.NoError(t, err)
		got, err := Parse(data, f)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestShaderAnimatesJuliaConstant(t *testing.T) {
	s, err := Preset("julia-orbit")
	require.NoError(t, err)

	a, err := s.Shader(s.Uniforms(0))
	require.NoError(t, err)
	b, err := s.Shader(s.Uniforms(5))
	require.NoError(t, err)

	ca := a.(escapeShader).params.C
	cb := b.(escapeShader).params.C
	assert.NotEqual(t, ca, cb)
	assert.InDelta(t, viewport.DefaultOrbitRadius, escape.Mag(ca), 1e-12)
	assert.InDelta(t, viewport.DefaultOrbitRadius, escape.Mag(cb), 1e-12)
}

func TestShaderFollowsPointer(t *testing.T) {
	s, err := Preset("julia-pointer")
	require.NoError(t, err)
	require.True(t, s.FollowsPointer())

	constant := func(u viewport.Uniforms) complex128 {
		sh, err := s.Shader(u)
		require.NoError(t, err)
		return sh.(escapeShader).params.C
	}

	// no pointer input yet
	assert.Equal(t, complex(s.C[0], s.C[1]), constant(s.Uniforms(0)))

	left := constant(s.Uniforms(0).WithMouse(10, 20))
	right := constant(s.Uniforms(0).WithMouse(float64(s.Width)-10, 20))
	assert.NotEqual(t, left, right)
	assert.Less(t, real(left), real(right))
	assert.Equal(t, left, constant(s.Uniforms(3).WithMouse(10, 20)))

	a, err := s.Shader(s.Uniforms(0).WithMouse(10, 20))
	require.NoError(t, err)
	b, err := s.Shader(s.Uniforms(0).WithMouse(float64(s.Width)-10, 20))
	require.NoError(t, err)
	differs := false
	view := s.View()
	for x := 0.5; x < float64(s.Width); x += 17 {
		z := view.At(image.Pt(s.Width, s.Height), x, float64(s.Height)/2)
		ar, ag, ab := a.Shade(z)
		br, bg, bb := b.Shade(z)
		if ar != br || ag != bg || ab != bb {
			differs = true
			break
		}
	}
	assert.True(t, differs, "pixels do not depend on the pointer")

	plain, err := Preset("julia")
	require.NoError(t, err)
	assert.False(t, plain.FollowsPointer())
}

func TestContourWidthFollowsPixelSize(t *testing.T) {
	s, err := Preset("distance")
	require.NoError(t, err)
	col, err := s.Colorizer()
	require.NoError(t, err)

	px := s.View().PixelSize(image.Pt(s.Width, s.Height))
	assert.InDelta(t, 4*px, col.(palette.Contour).Width, 1e-15)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 10\nheight = 10"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Scene, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(s Scene, err error) {
			if err != nil {
				return
			}
			select {
			case got <- s:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case s := <-got:
			if s.Width == 20 {
				cancel()
				assert.ErrorIs(t, <-done, context.Canceled)
				return
			}
		case <-tick.C:
			require.NoError(t, os.WriteFile(path, []byte("width = 20\nheight = 10"), 0o644))
		case <-deadline:
			t.Fatal("no reload after rewriting the scene file")
		}
	}
}
