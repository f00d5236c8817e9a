package render

import (
	"context"
	"fmt"
	"image"
	"runtime"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

// Image renders the full frame of s by fanning tiles out to at most
// workers goroutines. workers <= 0 means one per CPU. onTile, if set, is
// called once per finished tile, never concurrently.
//
// When ctx is canceled the partial frame is discarded.
func Image(ctx context.Context, r fractal.Renderer, s scene.Scene, u viewport.Uniforms, workers int, onTile func(tile *image.RGBA)) (*image.RGBA, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	img := image.NewRGBA(s.Bounds())
	tiles := SplitRect(img.Bounds(), s.TileSize, s.TileSize)
	log := fractal.Logger()
	log.Info("rendering frame", "scene", s.Name, "size", img.Bounds().Size(), "tiles", len(tiles), "workers", workers)

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, tile := range tiles {
		g.Go(func() error {
			tileImg, err := r.RenderTile(ctx, s, tile, u)
			if err != nil {
				return fmt.Errorf("render tile %v: %w", tile, err)
			}

			mu.Lock()
			defer mu.Unlock()
			draw.Draw(img, tileImg.Bounds(), tileImg, tileImg.Bounds().Min, draw.Src)
			if onTile != nil {
				onTile(tileImg)
			}
			log.Debug("tile finished", "tile", tile)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

// SplitRect splits r into tiles of size tileW × tileH.
// Tiles at the right and bottom edges are smaller if r is not divisible.
func SplitRect(r image.Rectangle, tileW, tileH int) []image.Rectangle {
	if tileW <= 0 || tileH <= 0 {
		panic("tile dimensions must be positive")
	}

	w := r.Dx()
	h := r.Dy()

	var tiles []image.Rectangle

	for oy := 0; oy < h; oy += tileH {
		th := min(tileH, h-oy)
		for ox := 0; ox < w; ox += tileW {
			tw := min(tileW, w-ox)
			tiles = append(tiles, image.Rect(
				r.Min.X+ox,
				r.Min.Y+oy,
				r.Min.X+ox+tw,
				r.Min.Y+oy+th,
			))
		}
	}

	return tiles
}

// Thumbnail scales img down to fit within maxSide pixels.
func Thumbnail(img image.Image, maxSide int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxSide || h > maxSide {
		if w >= h {
			w, h = maxSide, max(1, h*maxSide/w)
		} else {
			w, h = max(1, w*maxSide/h), maxSide
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
