package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/render"
	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

// maxUpdateTiles bounds the tiles sent to a viewer in one update.
const maxUpdateTiles = 64

var errFrameAbandoned = errors.New("frame replaced by a newer one")

// imgWorkScheduler hands out the tiles of one frame to workers and
// collects the results.
type imgWorkScheduler struct {
	id       uint32
	scene    scene.Scene
	uniforms viewport.Uniforms
	img      *image.RGBA

	// ctx is canceled once every tile is finished
	ctx       context.Context
	ctxCancel context.CancelFunc
	// abandoned is canceled when a newer frame replaces this one
	abandoned context.Context
	abandon   context.CancelFunc

	workers        int
	totalPixels    int
	finishedPixels int

	unstarted map[image.Rectangle]struct{}
	inProcess map[image.Rectangle]struct{}
	finished  []image.Rectangle
	// changed is closed and replaced every time a tile finishes
	changed chan struct{}
	m       sync.Mutex
}

func newImgWorkScheduler(id uint32, s scene.Scene, u viewport.Uniforms) *imgWorkScheduler {
	img := image.NewRGBA(s.Bounds())
	allTilesSlice := render.SplitRect(img.Bounds(), s.TileSize, s.TileSize)
	allTiles := make(map[image.Rectangle]struct{}, len(allTilesSlice))
	for _, t := range allTilesSlice {
		allTiles[t] = struct{}{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	abandoned, abandon := context.WithCancel(context.Background())
	return &imgWorkScheduler{
		id:          id,
		scene:       s,
		uniforms:    u,
		img:         img,
		unstarted:   allTiles,
		inProcess:   make(map[image.Rectangle]struct{}),
		changed:     make(chan struct{}),
		totalPixels: s.Width * s.Height,
		ctx:         ctx,
		ctxCancel:   cancel,
		abandoned:   abandoned,
		abandon:     abandon,
	}
}

func (iws *imgWorkScheduler) popTile() (tile image.Rectangle, found bool) {
	iws.m.Lock()
	defer iws.m.Unlock()

	// Get unstarted tile
	if len(iws.unstarted) > 0 {
		for tile = range iws.unstarted {
			break
		}
		delete(iws.unstarted, tile)

		// Move popped tile to currently processed tiles
		iws.inProcess[tile] = struct{}{}
		return tile, true
	}

	// If there is no unstarted tile, we work again on a started one
	if len(iws.inProcess) > 0 {
		for tile = range iws.inProcess {
			break
		}

		return tile, true
	}

	return image.Rectangle{}, false
}

// GetImage implements fractal.ImgProvider. It fails with
// errFrameAbandoned if the frame is replaced before it completes.
func (iws *imgWorkScheduler) GetImage(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-iws.ctx.Done():
	case <-iws.abandoned.Done():
		// completion and replacement can race
		if iws.ctx.Err() == nil {
			return nil, errFrameAbandoned
		}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	// the image is not written to after completion
	return iws.img, nil
}

var _ fractal.ImgProvider = (*imgWorkScheduler)(nil)

func (iws *imgWorkScheduler) progress() float32 {
	iws.m.Lock()
	defer iws.m.Unlock()
	return float32(iws.finishedPixels) / float32(iws.totalPixels)
}

func (iws *imgWorkScheduler) tileFinished(tileImg *image.RGBA) {
	rect := tileImg.Bounds()
	iws.m.Lock()
	defer iws.m.Unlock()

	_, found := iws.inProcess[rect]
	if !found {
		// a duplicate render of a tile that is already done
		return
	}

	draw.Draw(
		iws.img,
		rect,     // destination rectangle (global coords)
		tileImg,  // source image
		rect.Min, // source start
		draw.Src,
	)

	iws.finishedPixels += rect.Dx() * rect.Dy()
	iws.finished = append(iws.finished, rect)
	delete(iws.inProcess, rect)

	close(iws.changed)
	iws.changed = make(chan struct{})

	if len(iws.unstarted) == 0 && len(iws.inProcess) == 0 {
		iws.ctxCancel()
	}
}

// tilesSince returns the finished tiles after the first n, in finishing
// order, and a channel closed when the next tile finishes.
func (iws *imgWorkScheduler) tilesSince(n int) ([]image.Rectangle, <-chan struct{}) {
	iws.m.Lock()
	defer iws.m.Unlock()
	if n >= len(iws.finished) {
		return nil, iws.changed
	}
	return append([]image.Rectangle(nil), iws.finished[n:]...), iws.changed
}

// tileImg copies the pixels of a finished tile.
func (iws *imgWorkScheduler) tileImg(r image.Rectangle) *image.RGBA {
	out := image.NewRGBA(r)
	iws.m.Lock()
	draw.Draw(out, r, iws.img, r.Min, draw.Src)
	iws.m.Unlock()
	return out
}

// update packs finished tiles, starting at finishing index first, for
// viewers.
func (iws *imgWorkScheduler) update(first int, tiles []image.Rectangle) fractal.TileUpdate {
	_, total := iws.tileCount()
	u := fractal.TileUpdate{
		Frame:  iws.id,
		Bounds: iws.img.Bounds(),
		Total:  total,
		First:  first,
	}
	for _, r := range tiles[:min(len(tiles), maxUpdateTiles)] {
		u.Tiles = append(u.Tiles, iws.tileImg(r))
	}
	return u
}

func (iws *imgWorkScheduler) tileCount() (finished, total int) {
	iws.m.Lock()
	defer iws.m.Unlock()
	return len(iws.finished), len(iws.finished) + len(iws.inProcess) + len(iws.unstarted)
}

func (iws *imgWorkScheduler) activeWorkers() int {
	iws.m.Lock()
	defer iws.m.Unlock()
	return iws.workers
}

func (iws *imgWorkScheduler) incActiveWorker() {
	iws.m.Lock()
	iws.workers++
	w := iws.workers
	iws.m.Unlock()

	fractal.Logger().Debug("worker started", "frame", iws.id, "workers", w)
}

func (iws *imgWorkScheduler) decActiveWorkers() {
	iws.m.Lock()
	iws.workers--
	w := iws.workers
	iws.m.Unlock()

	fractal.Logger().Debug("worker stopped", "frame", iws.id, "workers", w)
}

// render renders unfinished tiles on the provided Renderer until the frame
// is complete, abandoned or ctx is done.
// can be called from multiple goroutines in parallel
func (iws *imgWorkScheduler) render(ctx context.Context, renderer fractal.Renderer) error {
	iws.incActiveWorker()
	defer iws.decActiveWorkers()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(iws.abandoned, cancel)
	defer stop()

	log := fractal.Logger()
	for {
		if iws.abandoned.Err() != nil {
			return errFrameAbandoned
		}
		tile, found := iws.popTile()
		if !found {
			return nil
		}
		tileImg, err := renderer.RenderTile(ctx, iws.scene, tile, iws.uniforms)
		if err != nil {
			if iws.abandoned.Err() != nil {
				return errFrameAbandoned
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Warn("tile render failed", "frame", iws.id, "tile", tile, "err", err)
			return err
		}
		if tileImg == nil || tileImg.Rect != tile {
			return fmt.Errorf("renderer returned the wrong pixels for tile %v", tile)
		}
		iws.tileFinished(tileImg)
		log.Debug("tile finished", "frame", iws.id, "tile", tile, "progress", iws.progress())
	}
}
