// Package render evaluates scenes on the CPU.
package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

// CPU renders tiles on the calling goroutine.
type CPU struct {
	// OnTileRender, if set, is called before a tile is rendered.
	OnTileRender func(tile image.Rectangle)
}

var _ fractal.Renderer = CPU{}

// RenderTile implements fractal.Renderer. The returned image has the
// global coordinates of tile. Rendering stops between rows once ctx is done.
func (imp CPU) RenderTile(ctx context.Context, s scene.Scene, tile image.Rectangle, u viewport.Uniforms) (*image.RGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if tile.Empty() || !tile.In(s.Bounds()) {
		return nil, fmt.Errorf("tile %v outside image %v", tile, s.Bounds())
	}
	if imp.OnTileRender != nil {
		imp.OnTileRender(tile)
	}

	shader, err := s.Shader(u)
	if err != nil {
		return nil, err
	}
	view := s.View()

	n := max(s.Supersample, 1)
	inv := 1 / float64(n*n)

	img := image.NewRGBA(tile)
	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for px := tile.Min.X; px < tile.Max.X; px++ {
			var r, g, b float64
			for sy := range n {
				y := float64(py) + (float64(sy)+0.5)/float64(n)
				for sx := range n {
					x := float64(px) + (float64(sx)+0.5)/float64(n)
					sr, sg, sb := shader.Shade(view.At(u.Resolution, x, y))
					r += sr
					g += sg
					b += sb
				}
			}
			img.SetRGBA(px, py, color.RGBA{
				R: to8(r * inv),
				G: to8(g * inv),
				B: to8(b * inv),
				A: 255,
			})
		}
	}
	return img, nil
}

func to8(v float64) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
