package main

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/scene"
)

var errNoFrame = errors.New("no frame yet")

// frameServer owns the frame currently being rendered, hands its tiles to
// local and remote renderers and serves it to connected clients.
type frameServer struct {
	// ctx bounds the lifetime of the local workers
	ctx   context.Context
	start time.Time

	m            sync.Mutex
	current      *imgWorkScheduler
	frameChanged chan struct{} // closed and replaced on every new frame
	nextID       uint32
	mouse        mgl64.Vec2
	clients      int
}

// newFrameServer starts workers local goroutines rendering on r.
func newFrameServer(ctx context.Context, r fractal.Renderer, workers int) *frameServer {
	fs := &frameServer{
		ctx:          ctx,
		start:        time.Now(),
		frameChanged: make(chan struct{}),
	}
	for range workers {
		go fs.serveRenderer(ctx, r)
	}
	return fs
}

// setScene abandons the current frame and starts rendering s.
func (fs *frameServer) setScene(s scene.Scene) error {
	if err := s.Validate(); err != nil {
		return err
	}

	fs.m.Lock()
	if fs.current != nil {
		fs.current.abandon()
	}
	fs.nextID++
	u := s.Uniforms(time.Since(fs.start).Seconds())
	u.Mouse = fs.mouse
	sched := newImgWorkScheduler(fs.nextID, s, u)
	fs.current = sched
	close(fs.frameChanged)
	fs.frameChanged = make(chan struct{})
	fs.m.Unlock()

	log := fractal.Logger()
	log.Info("new frame", "frame", sched.id, "scene", s.Name, "mode", s.Mode, "size", s.Bounds().Size())
	go func() {
		select {
		case <-sched.ctx.Done():
			log.Info("frame complete", "frame", sched.id)
		case <-sched.abandoned.Done():
		case <-fs.ctx.Done():
		}
	}()
	return nil
}

// rerender restarts the current scene at the current time.
func (fs *frameServer) rerender() error {
	sched, _ := fs.frame()
	if sched == nil {
		return nil
	}
	return fs.setScene(sched.scene)
}

// setPointer records the mouse position, in pixels of the current frame.
// A scene whose Julia constant follows the pointer is rendered again.
func (fs *frameServer) setPointer(x, y float64) error {
	fs.m.Lock()
	fs.mouse = mgl64.Vec2{x, y}
	sched := fs.current
	fs.m.Unlock()

	if sched == nil || !sched.scene.FollowsPointer() {
		return nil
	}
	return fs.setScene(sched.scene)
}

func (fs *frameServer) frame() (*imgWorkScheduler, <-chan struct{}) {
	fs.m.Lock()
	defer fs.m.Unlock()
	return fs.current, fs.frameChanged
}

// serveRenderer renders every frame on r until ctx is done. A renderer
// that fails is given the next frame again.
func (fs *frameServer) serveRenderer(ctx context.Context, r fractal.Renderer) {
	for {
		sched, changed := fs.frame()
		if sched != nil {
			err := sched.render(ctx, r)
			if err != nil && ctx.Err() == nil && !errors.Is(err, errFrameAbandoned) {
				fractal.Logger().Warn("renderer dropped frame", "frame", sched.id, "err", err)
			}
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return
		}
	}
}

// clientConnected counts a connected client until the returned func is
// called.
func (fs *frameServer) clientConnected() func() {
	fs.m.Lock()
	fs.clients++
	fs.m.Unlock()
	return func() {
		fs.m.Lock()
		fs.clients--
		fs.m.Unlock()
	}
}

// GetImage implements fractal.ImgProvider. It returns the first frame to
// complete, following replacements of the frame current at the time of
// the call.
func (fs *frameServer) GetImage(ctx context.Context) (*image.RGBA, error) {
	for {
		sched, changed := fs.frame()
		if sched != nil {
			img, err := sched.GetImage(ctx)
			if !errors.Is(err, errFrameAbandoned) {
				return img, err
			}
			continue
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

var _ fractal.ImgProvider = (*frameServer)(nil)

// Updates implements fractal.TileProvider.
func (fs *frameServer) Updates(ctx context.Context, frame uint32, seen int) (fractal.TileUpdate, error) {
	seen = max(seen, 0)
	for {
		sched, frameChanged := fs.frame()
		if sched == nil {
			select {
			case <-frameChanged:
				continue
			case <-ctx.Done():
				return fractal.TileUpdate{}, ctx.Err()
			}
		}

		// a new frame is reported before its first tile finishes
		if sched.id != frame {
			tiles, _ := sched.tilesSince(0)
			return sched.update(0, tiles), nil
		}

		tiles, changed := sched.tilesSince(seen)
		if len(tiles) > 0 {
			return sched.update(seen, tiles), nil
		}
		select {
		case <-changed:
		case <-frameChanged:
		case <-ctx.Done():
			return fractal.TileUpdate{}, ctx.Err()
		}
	}
}

// Status implements fractal.TileProvider.
func (fs *frameServer) Status(ctx context.Context) (fractal.Status, error) {
	st, ok := fs.status()
	if !ok {
		return fractal.Status{}, errNoFrame
	}
	return st, nil
}

var _ fractal.TileProvider = (*frameServer)(nil)

func (fs *frameServer) status() (fractal.Status, bool) {
	sched, _ := fs.frame()
	if sched == nil {
		return fractal.Status{}, false
	}
	fs.m.Lock()
	clients := fs.clients
	fs.m.Unlock()

	finished, total := sched.tileCount()
	return fractal.Status{
		Frame:    sched.id,
		Scene:    sched.scene,
		Tiles:    total,
		Finished: finished,
		Progress: sched.progress(),
		Workers:  sched.activeWorkers(),
		Clients:  clients,
	}, true
}
