// Package scene describes what to render: the iteration, the view, the
// palette and the image size.
package scene

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/marben/escape_fractals/branch"
	"github.com/marben/escape_fractals/escape"
	"github.com/marben/escape_fractals/palette"
	"github.com/marben/escape_fractals/viewport"
)

// ModeBranches renders a branch tree instead of an escape-time fractal.
const ModeBranches = "branches"

// MaxImageSide bounds the image width and height.
const MaxImageSide = 8192

var ErrInvalidScene = errors.New("invalid scene")

// Scene is a complete, serializable render description.
type Scene struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	// Preset names the scene this one starts from when loaded from a file.
	Preset string `toml:"preset" yaml:"preset" json:"preset,omitempty"`
	// Mode is an escape.Mode name or ModeBranches.
	Mode string `toml:"mode" yaml:"mode" json:"mode"`

	Width    int `toml:"width" yaml:"width" json:"width"`
	Height   int `toml:"height" yaml:"height" json:"height"`
	TileSize int `toml:"tile_size" yaml:"tile_size" json:"tile_size"`
	// Supersample is the number of samples per pixel along each axis.
	Supersample int `toml:"supersample" yaml:"supersample" json:"supersample"`

	MaxIter int        `toml:"max_iter" yaml:"max_iter" json:"max_iter"`
	Bailout float64    `toml:"bailout" yaml:"bailout" json:"bailout"`
	Seed    [2]float64 `toml:"seed" yaml:"seed" json:"seed"`
	Julia   bool       `toml:"julia" yaml:"julia" json:"julia"`
	C       [2]float64 `toml:"c" yaml:"c" json:"c"`

	Center [2]float64 `toml:"center" yaml:"center" json:"center"`
	Zoom   float64    `toml:"zoom" yaml:"zoom" json:"zoom"`
	// Region names a viewport landmark and replaces Center and Zoom.
	Region string `toml:"region" yaml:"region" json:"region,omitempty"`

	Animation Animation `toml:"animation" yaml:"animation" json:"animation"`
	Trap      Trap      `toml:"trap" yaml:"trap" json:"trap"`
	Palette   Palette   `toml:"palette" yaml:"palette" json:"palette"`
	Branch    Branch    `toml:"branch" yaml:"branch" json:"branch"`
}

// Animation configures how the Julia constant moves.
type Animation struct {
	Kind   string  `toml:"kind" yaml:"kind" json:"kind"`
	Radius float64 `toml:"radius" yaml:"radius" json:"radius"`
	Speed  float64 `toml:"speed" yaml:"speed" json:"speed"`
}

// Trap configures the orbit trap shape.
type Trap struct {
	Kind   string     `toml:"kind" yaml:"kind" json:"kind"`
	Center [2]float64 `toml:"center" yaml:"center" json:"center"`
	Radius float64    `toml:"radius" yaml:"radius" json:"radius"`
}

// Palette configures the colorizer.
type Palette struct {
	// Kind is one of cosine, contour, trap or bands.
	Kind  string     `toml:"kind" yaml:"kind" json:"kind"`
	Base  [3]float64 `toml:"base" yaml:"base" json:"base"`
	Freq  [3]float64 `toml:"freq" yaml:"freq" json:"freq"`
	Phase [3]float64 `toml:"phase" yaml:"phase" json:"phase"`
	Scale float64    `toml:"scale" yaml:"scale" json:"scale"`
	// Width is the contour edge width in pixels.
	Width   float64 `toml:"width" yaml:"width" json:"width"`
	Falloff float64 `toml:"falloff" yaml:"falloff" json:"falloff"`
}

// Branch configures the branches mode.
type Branch struct {
	Depth  int     `toml:"depth" yaml:"depth" json:"depth"`
	Angle  float64 `toml:"angle" yaml:"angle" json:"angle"`
	Shrink float64 `toml:"shrink" yaml:"shrink" json:"shrink"`
	Length float64 `toml:"length" yaml:"length" json:"length"`
	Sway   float64 `toml:"sway" yaml:"sway" json:"sway"`
	// Width is the line width in pixels.
	Width float64 `toml:"width" yaml:"width" json:"width"`
}

// Bounds is the full image rectangle.
func (s Scene) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// Uniforms returns the frame inputs for time t.
func (s Scene) Uniforms(t float64) viewport.Uniforms {
	return viewport.Uniforms{Resolution: image.Pt(s.Width, s.Height), Time: t}
}

// FollowsPointer reports whether the Julia constant is taken from the
// mouse position, so a new pointer position needs a new frame.
func (s Scene) FollowsPointer() bool {
	if s.IsBranches() {
		return false
	}
	kind, _ := viewport.ParseAnimationKind(s.Animation.Kind)
	return kind == viewport.Pointer
}

// View returns the visible window of the complex plane.
func (s Scene) View() viewport.View {
	if r, ok := viewport.Regions[s.Region]; ok {
		return r.View()
	}
	return viewport.View{Center: complex(s.Center[0], s.Center[1]), Zoom: s.Zoom}
}

// IsBranches reports whether the scene renders a branch tree.
func (s Scene) IsBranches() bool {
	return strings.EqualFold(s.Mode, ModeBranches)
}

func (s Scene) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d", ErrInvalidScene, s.Width, s.Height)
	case s.Width > MaxImageSide || s.Height > MaxImageSide:
		return fmt.Errorf("%w: image size %dx%d exceeds %d", ErrInvalidScene, s.Width, s.Height, MaxImageSide)
	case s.TileSize <= 0:
		return fmt.Errorf("%w: tile size %d", ErrInvalidScene, s.TileSize)
	case s.Supersample < 1 || s.Supersample > 8:
		return fmt.Errorf("%w: supersample %d outside [1, 8]", ErrInvalidScene, s.Supersample)
	case s.Zoom <= 0 && s.Region == "":
		return fmt.Errorf("%w: zoom %v must be positive", ErrInvalidScene, s.Zoom)
	}
	if s.Region != "" {
		if _, ok := viewport.Regions[s.Region]; !ok {
			return fmt.Errorf("%w: unknown region %q", ErrInvalidScene, s.Region)
		}
	}
	if _, err := viewport.ParseAnimationKind(s.Animation.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}

	if s.IsBranches() {
		if err := s.branchConfig().Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidScene, err)
		}
		return nil
	}

	_, p, err := s.Params()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	if _, err := s.Colorizer(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScene, err)
	}
	return nil
}

// Params returns the iteration mode and parameters of an escape-time scene.
// The Julia constant is the configured C; Shader replaces it per frame
// when the scene is animated.
func (s Scene) Params() (escape.Mode, escape.Params, error) {
	m, err := escape.ParseMode(s.Mode)
	if err != nil {
		return 0, escape.Params{}, err
	}
	p := escape.DefaultParams(m)
	p.Seed = complex(s.Seed[0], s.Seed[1])
	p.C = complex(s.C[0], s.C[1])
	p.Julia = s.Julia
	if s.MaxIter != 0 {
		p.MaxIter = s.MaxIter
	}
	if s.Bailout != 0 {
		p.Bailout = s.Bailout
	}
	if m == escape.OrbitTrap {
		p.Trap, err = s.trap()
		if err != nil {
			return 0, escape.Params{}, err
		}
	}
	return m, p, nil
}

func (s Scene) trap() (escape.Trap, error) {
	center := complex(s.Trap.Center[0], s.Trap.Center[1])
	switch strings.ToLower(s.Trap.Kind) {
	case "", "circle":
		r := s.Trap.Radius
		if r == 0 {
			r = 1
		}
		return escape.CircleTrap{Center: center, Radius: r}, nil
	case "point":
		return escape.PointTrap{Point: center}, nil
	case "cross":
		return escape.CrossTrap{}, nil
	case "line":
		return escape.LineTrap{Y: s.Trap.Center[1]}, nil
	}
	return nil, fmt.Errorf("unknown trap %q", s.Trap.Kind)
}

func (s Scene) animation() viewport.Animation {
	kind, _ := viewport.ParseAnimationKind(s.Animation.Kind)
	return viewport.Animation{
		Kind:   kind,
		C:      complex(s.C[0], s.C[1]),
		Radius: s.Animation.Radius,
		Speed:  s.Animation.Speed,
	}
}

// Colorizer returns the palette of an escape-time scene.
func (s Scene) Colorizer() (palette.Colorizer, error) {
	p := s.Palette
	switch strings.ToLower(p.Kind) {
	case "", "cosine":
		c := palette.Rainbow
		if p.Base != [3]float64{} || p.Freq != [3]float64{} || p.Phase != [3]float64{} {
			c.Base, c.Freq, c.Phase = p.Base, p.Freq, p.Phase
		}
		if p.Scale != 0 {
			c.Scale = p.Scale
		}
		return c, nil
	case "contour":
		c := palette.Ink
		w := p.Width
		if w == 0 {
			w = 4
		}
		c.Width = w * s.View().PixelSize(image.Pt(s.Width, s.Height))
		return c, nil
	case "trap":
		c := palette.Glow
		if p.Falloff != 0 {
			c.Falloff = p.Falloff
		}
		if p.Scale != 0 {
			c.HueScale = p.Scale
		}
		return c, nil
	case "bands":
		b := make(palette.Bands, 16)
		for i := range b {
			b[i] = palette.HSV(float64(i)/float64(len(b)), 0.8, 1)
		}
		return b, nil
	}
	return nil, fmt.Errorf("unknown palette %q", p.Kind)
}

func (s Scene) branchConfig() branch.Config {
	c := branch.Default
	b := s.Branch
	if b.Depth != 0 {
		c.Depth = b.Depth
	}
	if b.Angle != 0 {
		c.Angle = b.Angle
	}
	if b.Shrink != 0 {
		c.Shrink = b.Shrink
	}
	if b.Length != 0 {
		c.Length = b.Length
	}
	if b.Sway != 0 {
		c.Sway = b.Sway
	}
	return c
}

// Shader is the per-pixel program of one frame.
type Shader interface {
	Shade(z complex128) (r, g, b float64)
}

// Shader builds the program for frame u. The result holds no mutable
// state and may be shared by any number of goroutines.
func (s Scene) Shader(u viewport.Uniforms) (Shader, error) {
	if s.IsBranches() {
		tree, err := branch.Grow(s.branchConfig().At(u.Time))
		if err != nil {
			return nil, err
		}
		w := s.Branch.Width
		if w == 0 {
			w = 2
		}
		return branchShader{
			tree:  tree,
			width: w * s.View().PixelSize(u.Resolution),
		}, nil
	}

	m, p, err := s.Params()
	if err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if m == escape.Julia || p.Julia {
		p.C = s.animation().Constant(u)
	}
	col, err := s.Colorizer()
	if err != nil {
		return nil, err
	}
	return escapeShader{mode: m, params: p, colorizer: col}, nil
}

type escapeShader struct {
	mode      escape.Mode
	params    escape.Params
	colorizer palette.Colorizer
}

func (e escapeShader) Shade(z complex128) (r, g, b float64) {
	c := e.colorizer.Color(escape.Evaluate(z, e.mode, e.params))
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255
}

var (
	branchBackground = mgl64.Vec3{0.05, 0.07, 0.1}
	branchTrunk      = mgl64.Vec3{0.55, 0.35, 0.2}
	branchLeaf       = mgl64.Vec3{0.45, 0.85, 0.4}
)

type branchShader struct {
	tree  *branch.Tree
	width float64
}

func (bs branchShader) Shade(z complex128) (r, g, b float64) {
	d, level := bs.tree.Distance(mgl64.Vec2{real(z), imag(z)})
	depth := float64(bs.tree.Depth())
	// lines thin out towards the leaves
	w := bs.width * (1 - 0.5*float64(level)/depth)
	ink := palette.Mix(branchTrunk, branchLeaf, float64(level)/depth)
	c := palette.Mix(ink, branchBackground, palette.Smoothstep(0, w, d))
	return c[0], c[1], c[2]
}
