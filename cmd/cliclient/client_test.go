package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/draw"
	"image/png"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marben/irpc"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/render"
	"github.com/marben/escape_fractals/scene"
)

func TestRunRendersPNG(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.png")
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-preset", "julia", "-w", "32", "-h", "24", "-o", out, "-no-color"}, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stderr.String(), "saved")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(32, 24), img.Bounds().Size())
}

func TestRunUnknownPreset(t *testing.T) {
	var stderr bytes.Buffer
	err := run(context.Background(), []string{"-preset", "nope", "-o", filepath.Join(t.TempDir(), "x.png")}, &stderr)
	assert.Error(t, err)
}

type imgFunc func(ctx context.Context) (*image.RGBA, error)

func (f imgFunc) GetImage(ctx context.Context) (*image.RGBA, error) { return f(ctx) }

// serveIrpc serves an irpc server on a local tcp port and returns its
// address.
func serveIrpc(t *testing.T, srv *irpc.Server) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })
	return l.Addr().String()
}

func TestFetch(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s, err := scene.Preset("mandelbrot")
	require.NoError(t, err)
	s.Width, s.Height = 8, 4
	left, right := image.Rect(0, 0, 4, 4), image.Rect(4, 0, 8, 4)

	// the server has its connected client render both halves of the frame
	frame := make(chan *image.RGBA, 1)
	srv := irpc.NewServer(
		irpc.WithServices(fractal.NewImgProviderIrpcService(imgFunc(func(ctx context.Context) (*image.RGBA, error) {
			select {
			case img := <-frame:
				return img, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}))),
		irpc.WithOnConnect(func(ep *irpc.Endpoint) {
			renderer, err := fractal.NewRendererIrpcClient(ep)
			if err != nil {
				return
			}
			img := image.NewRGBA(s.Bounds())
			for _, tile := range []image.Rectangle{left, right} {
				part, err := renderer.RenderTile(ep.Context(), s, tile, s.Uniforms(0))
				if err != nil {
					return
				}
				draw.Draw(img, tile, part, tile.Min, draw.Src)
			}
			frame <- img
		}),
	)
	addr := serveIrpc(t, srv)

	var stderr bytes.Buffer
	p := newProgress(termenv.NewOutput(&stderr, termenv.WithProfile(termenv.Ascii)))
	img, err := fetch(ctx, addr, p)
	require.NoError(t, err)

	want, err := render.Image(ctx, render.CPU{}, s, s.Uniforms(0), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, want.Pix, img.Pix)
	assert.Contains(t, stderr.String(), "rendering for "+addr)
	assert.Contains(t, stderr.String(), "2 tiles")
}

func TestFetchServerError(t *testing.T) {
	srv := irpc.NewServer(irpc.WithServices(fractal.NewImgProviderIrpcService(imgFunc(func(context.Context) (*image.RGBA, error) {
		return nil, errors.New("no frame yet")
	}))))
	addr := serveIrpc(t, srv)

	var stderr bytes.Buffer
	_, err := fetch(context.Background(), addr, newProgress(termenv.NewOutput(&stderr)))
	assert.ErrorContains(t, err, "no frame yet")
}

func TestFetchCanceled(t *testing.T) {
	srv := irpc.NewServer(irpc.WithServices(fractal.NewImgProviderIrpcService(imgFunc(func(ctx context.Context) (*image.RGBA, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}))))
	addr := serveIrpc(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var stderr bytes.Buffer
	_, err := fetch(ctx, addr, newProgress(termenv.NewOutput(&stderr)))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
