package scene

import (
	"fmt"
	"maps"
	"slices"
)

// Default is the scene every preset and file starts from.
var Default = Scene{
	Name:        "mandelbrot",
	Mode:        "mandelbrot",
	Width:       800,
	Height:      600,
	TileSize:    64,
	Supersample: 1,
	MaxIter:     100,
	Center:      [2]float64{-0.5, 0},
	Zoom:        0.8,
	Palette:     Palette{Kind: "cosine"},
}

var presets = map[string]func(s *Scene){
	"mandelbrot": func(s *Scene) {},
	"julia": func(s *Scene) {
		s.Mode = "julia"
		s.C = [2]float64{-0.8, 0.156}
		s.Center = [2]float64{0, 0}
		s.Zoom = 0.7
	},
	"julia-orbit": func(s *Scene) {
		s.Mode = "julia"
		s.Center = [2]float64{0, 0}
		s.Zoom = 0.7
		s.Animation = Animation{Kind: "orbit", Speed: 0.3}
	},
	"julia-pointer": func(s *Scene) {
		s.Mode = "julia"
		s.C = [2]float64{-0.4, 0.6}
		s.Center = [2]float64{0, 0}
		s.Zoom = 0.7
		s.Animation = Animation{Kind: "pointer"}
	},
	"burning-ship": func(s *Scene) {
		s.Mode = "burning-ship"
		s.Center = [2]float64{-0.4, -0.5}
		s.Zoom = 0.6
		s.MaxIter = 150
	},
	"cubic": func(s *Scene) {
		s.Mode = "cubic"
		s.Center = [2]float64{0, 0}
		s.Zoom = 0.75
	},
	"distance": func(s *Scene) {
		s.Mode = "distance"
		s.Bailout = 256
		s.MaxIter = 150
		s.Palette = Palette{Kind: "contour", Width: 4}
	},
	"orbit-trap": func(s *Scene) {
		s.Mode = "orbit-trap"
		s.Trap = Trap{Kind: "circle", Radius: 0.5}
		s.Palette = Palette{Kind: "trap", Falloff: 5}
	},
	"seahorse-valley": func(s *Scene) {
		s.Region = "seahorse-valley"
		s.MaxIter = 500
		s.Supersample = 2
	},
	ModeBranches: func(s *Scene) {
		s.Mode = ModeBranches
		s.Center = [2]float64{0, 0}
		s.Zoom = 0.9
		s.Branch = Branch{Depth: 8, Width: 2}
	},
}

// Preset returns the named preset scene.
func Preset(name string) (Scene, error) {
	apply, ok := presets[name]
	if !ok {
		return Scene{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidScene, name)
	}
	s := Default
	apply(&s)
	s.Name = name
	return s, nil
}

// PresetNames lists the presets in sorted order.
func PresetNames() []string {
	return slices.Sorted(maps.Keys(presets))
}
