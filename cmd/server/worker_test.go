package main

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

// fillRenderer paints every tile with one color.
type fillRenderer struct {
	c color.RGBA
}

func (f fillRenderer) RenderTile(ctx context.Context, s scene.Scene, tile image.Rectangle, u viewport.Uniforms) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(tile)
	draw.Draw(img, tile, image.NewUniform(f.c), image.Point{}, draw.Src)
	return img, nil
}

// stallRenderer blocks on scenes named stall until ctx is done and fills
// every other scene.
type stallRenderer struct {
	fillRenderer
	stall string
}

func (r stallRenderer) RenderTile(ctx context.Context, s scene.Scene, tile image.Rectangle, u viewport.Uniforms) (*image.RGBA, error) {
	if s.Name == r.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.fillRenderer.RenderTile(ctx, s, tile, u)
}

// shiftRenderer returns pixels of the wrong rectangle.
type shiftRenderer struct{}

func (shiftRenderer) RenderTile(ctx context.Context, s scene.Scene, tile image.Rectangle, u viewport.Uniforms) (*image.RGBA, error) {
	return image.NewRGBA(tile.Add(image.Pt(1, 0))), nil
}

func testScene(t *testing.T, w, h, tile int) scene.Scene {
	t.Helper()
	s, err := scene.Preset("mandelbrot")
	require.NoError(t, err)
	s.Width, s.Height, s.TileSize = w, h, tile
	return s
}

func TestSchedulerCompletes(t *testing.T) {
	s := testScene(t, 100, 70, 32)
	sched := newImgWorkScheduler(1, s, s.Uniforms(0))

	red := color.RGBA{R: 255, A: 255}
	var g errgroup.Group
	for range 3 {
		g.Go(func() error { return sched.render(context.Background(), fillRenderer{red}) })
	}
	require.NoError(t, g.Wait())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	img, err := sched.GetImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Bounds(), img.Bounds())
	assert.Equal(t, red, img.RGBAAt(99, 69))

	finished, total := sched.tileCount()
	assert.Equal(t, 4*3, total)
	assert.Equal(t, total, finished)
	assert.Equal(t, float32(1), sched.progress())
	assert.Zero(t, sched.activeWorkers())

	tiles, _ := sched.tilesSince(0)
	seen := map[image.Rectangle]bool{}
	for _, r := range tiles {
		assert.False(t, seen[r], "tile %v finished twice", r)
		seen[r] = true
	}
	assert.Len(t, seen, total)

	rest, _ := sched.tilesSince(total)
	assert.Empty(t, rest)
}

func TestPopTileReissuesUnfinished(t *testing.T) {
	s := testScene(t, 64, 32, 32)
	sched := newImgWorkScheduler(1, s, s.Uniforms(0))

	a, ok := sched.popTile()
	require.True(t, ok)
	b, ok := sched.popTile()
	require.True(t, ok)
	assert.NotEqual(t, a, b)

	// nothing unstarted, an in-process tile is handed out again
	c, ok := sched.popTile()
	require.True(t, ok)
	assert.Contains(t, []image.Rectangle{a, b}, c)

	tile, _ := fillRenderer{}.RenderTile(context.Background(), s, a, s.Uniforms(0))
	sched.tileFinished(tile)
	sched.tileFinished(tile)
	finished, _ := sched.tileCount()
	assert.Equal(t, 1, finished)
	assert.Equal(t, float32(0.5), sched.progress())

	c, ok = sched.popTile()
	require.True(t, ok)
	assert.Equal(t, b, c)
}

func TestGetImageCanceled(t *testing.T) {
	s := testScene(t, 64, 32, 32)
	sched := newImgWorkScheduler(1, s, s.Uniforms(0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sched.GetImage(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetSceneStartsNewFrame(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fs := newFrameServer(ctx, fillRenderer{color.RGBA{A: 255}}, 2)

	sched, _ := fs.frame()
	assert.Nil(t, sched)

	require.NoError(t, fs.setScene(testScene(t, 40, 30, 16)))
	first, changed := fs.frame()
	require.NotNil(t, first)

	require.NoError(t, fs.rerender())
	select {
	case <-changed:
	default:
		t.Fatal("frameChanged not closed")
	}
	second, _ := fs.frame()
	assert.Equal(t, first.id+1, second.id)
	assert.Equal(t, first.scene, second.scene)

	img, err := fs.GetImage(ctx)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 30), img.Bounds())

	bad := testScene(t, 0, 30, 16)
	assert.ErrorIs(t, fs.setScene(bad), scene.ErrInvalidScene)
	third, _ := fs.frame()
	assert.Equal(t, second, third)
}

func TestAbandonedFrame(t *testing.T) {
	s := testScene(t, 64, 32, 32)
	s.Name = "stuck"
	sched := newImgWorkScheduler(1, s, s.Uniforms(0))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rendered := make(chan error, 1)
	go func() { rendered <- sched.render(ctx, stallRenderer{stall: "stuck"}) }()
	waited := make(chan error, 1)
	go func() {
		_, err := sched.GetImage(ctx)
		waited <- err
	}()

	sched.abandon()
	assert.ErrorIs(t, <-rendered, errFrameAbandoned)
	assert.ErrorIs(t, <-waited, errFrameAbandoned)
	assert.ErrorIs(t, sched.render(ctx, fillRenderer{}), errFrameAbandoned)
}

func TestCompletedFrameSurvivesAbandon(t *testing.T) {
	s := testScene(t, 16, 16, 16)
	sched := newImgWorkScheduler(1, s, s.Uniforms(0))
	require.NoError(t, sched.render(context.Background(), fillRenderer{}))
	sched.abandon()

	img, err := sched.GetImage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, s.Bounds(), img.Bounds())
}

func TestRenderRejectsWrongTile(t *testing.T) {
	s := testScene(t, 64, 32, 32)
	sched := newImgWorkScheduler(1, s, s.Uniforms(0))

	assert.Error(t, sched.render(context.Background(), shiftRenderer{}))
	finished, total := sched.tileCount()
	assert.Zero(t, finished)
	assert.Equal(t, 2, total)
}

func TestGetImageFollowsReplacedFrame(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	fs := newFrameServer(ctx, stallRenderer{fillRenderer: fillRenderer{color.RGBA{B: 255, A: 255}}, stall: "stuck"}, 2)

	stuck := testScene(t, 40, 30, 16)
	stuck.Name = "stuck"
	require.NoError(t, fs.setScene(stuck))

	type result struct {
		img *image.RGBA
		err error
	}
	got := make(chan result, 1)
	go func() {
		img, err := fs.GetImage(ctx)
		got <- result{img, err}
	}()

	// give GetImage time to start waiting on the stuck frame
	time.Sleep(50 * time.Millisecond)
	quick := testScene(t, 20, 10, 16)
	require.NoError(t, fs.setScene(quick))

	select {
	case r := <-got:
		require.NoError(t, r.err)
		assert.Equal(t, quick.Bounds(), r.img.Bounds())
		assert.Equal(t, color.RGBA{B: 255, A: 255}, r.img.RGBAAt(19, 9))
	case <-time.After(2 * time.Second):
		t.Fatal("GetImage still waits on the replaced frame")
	}
}

func TestUpdates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	green := color.RGBA{G: 255, A: 255}
	fs := newFrameServer(ctx, fillRenderer{green}, 2)
	require.NoError(t, fs.setScene(testScene(t, 40, 30, 16)))

	// an unknown frame gets the current one from its first tile
	u, err := fs.Updates(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), u.Frame)
	assert.Equal(t, image.Rect(0, 0, 40, 30), u.Bounds)
	assert.Equal(t, 6, u.Total)
	assert.Zero(t, u.First)

	seen := map[image.Rectangle]bool{}
	for _, tile := range u.Tiles {
		seen[tile.Rect] = true
	}
	next := len(u.Tiles)
	for next < u.Total {
		u, err = fs.Updates(ctx, 1, next)
		require.NoError(t, err)
		require.Equal(t, uint32(1), u.Frame)
		assert.Equal(t, next, u.First)
		require.NotEmpty(t, u.Tiles)
		for _, tile := range u.Tiles {
			assert.False(t, seen[tile.Rect], "tile %v sent twice", tile.Rect)
			seen[tile.Rect] = true
			assert.Equal(t, green, tile.RGBAAt(tile.Rect.Min.X, tile.Rect.Min.Y))
		}
		next += len(u.Tiles)
	}
	assert.Len(t, seen, 6)

	// waiting past the last tile returns once the frame is replaced
	go func() {
		time.Sleep(20 * time.Millisecond)
		assert.NoError(t, fs.rerender())
	}()
	u, err = fs.Updates(ctx, 1, next)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), u.Frame)
	assert.Zero(t, u.First)

	canceled, cancelWait := context.WithCancel(ctx)
	cancelWait()
	_, err = fs.Updates(canceled, 2, 100)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetPointer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fs := newFrameServer(ctx, fillRenderer{}, 1)

	plain := testScene(t, 40, 30, 16)
	require.NoError(t, fs.setScene(plain))
	require.NoError(t, fs.setPointer(5, 6))
	sched, _ := fs.frame()
	assert.Equal(t, uint32(1), sched.id, "a scene that ignores the pointer is not rendered again")

	follow, err := scene.Preset("julia-pointer")
	require.NoError(t, err)
	follow.Width, follow.Height, follow.TileSize = 40, 30, 16
	require.NoError(t, fs.setScene(follow))
	sched, _ = fs.frame()
	assert.Equal(t, mgl64.Vec2{5, 6}, sched.uniforms.Mouse)

	require.NoError(t, fs.setPointer(30, 2))
	sched, _ = fs.frame()
	assert.Equal(t, uint32(3), sched.id)
	assert.Equal(t, mgl64.Vec2{30, 2}, sched.uniforms.Mouse)
}
