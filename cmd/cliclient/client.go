package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/marben/irpc"
	"github.com/muesli/termenv"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/render"
	"github.com/marben/escape_fractals/scene"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

type config struct {
	scene    string
	preset   string
	out      string
	width    int
	height   int
	workers  int
	time     float64
	thumb    int
	server   string
	list     bool
	verbose  bool
	noColors bool
}

func parseFlags(args []string, stderr io.Writer) (config, error) {
	var c config
	fl := flag.NewFlagSet("cliclient", flag.ContinueOnError)
	fl.SetOutput(stderr)
	fl.StringVar(&c.scene, "scene", "", "scene file (.toml or .yaml)")
	fl.StringVar(&c.preset, "preset", "mandelbrot", "preset scene used when no scene file is given")
	fl.StringVar(&c.out, "o", "mandel.png", "output png file")
	fl.IntVar(&c.width, "w", 0, "override image width")
	fl.IntVar(&c.height, "h", 0, "override image height")
	fl.IntVar(&c.workers, "workers", 0, "render goroutines, 0 means one per CPU")
	fl.Float64Var(&c.time, "time", 0, "animation time in seconds")
	fl.IntVar(&c.thumb, "thumb", 0, "scale the output to fit this many pixels")
	fl.StringVar(&c.server, "server", "", "help the irpc server at this tcp address render its current frame and save it, instead of rendering locally")
	fl.BoolVar(&c.list, "list", false, "list presets and exit")
	fl.BoolVar(&c.verbose, "v", false, "debug logging")
	fl.BoolVar(&c.noColors, "no-color", false, "plain progress output")
	if err := fl.Parse(args); err != nil {
		return config{}, err
	}
	return c, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if cfg.verbose {
		level = slog.LevelDebug
	}
	fractal.SetLogger(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))

	out := termenv.NewOutput(stderr)
	if cfg.noColors {
		out = termenv.NewOutput(stderr, termenv.WithProfile(termenv.Ascii))
	}

	if cfg.list {
		for _, name := range scene.PresetNames() {
			fmt.Fprintln(stderr, name)
		}
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	var img *image.RGBA
	if cfg.server != "" {
		img, err = fetch(ctx, cfg.server, newProgress(out))
	} else {
		img, err = renderLocal(ctx, cfg, newProgress(out))
	}
	if err != nil {
		return err
	}

	var final image.Image = img
	if cfg.thumb > 0 {
		final = render.Thumbnail(img, cfg.thumb)
	}

	// Save rendered file
	f, err := os.Create(cfg.out)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, final); err != nil {
		return err
	}

	fmt.Fprintln(stderr, out.String("saved").Foreground(out.Color("2")).Bold(), cfg.out)
	return f.Close()
}

func loadScene(cfg config) (scene.Scene, error) {
	var (
		s   scene.Scene
		err error
	)
	if cfg.scene != "" {
		s, err = scene.Load(cfg.scene)
	} else {
		s, err = scene.Preset(cfg.preset)
	}
	if err != nil {
		return scene.Scene{}, err
	}
	if cfg.width > 0 {
		s.Width = cfg.width
	}
	if cfg.height > 0 {
		s.Height = cfg.height
	}
	return s, s.Validate()
}

func renderLocal(ctx context.Context, cfg config, p *progress) (*image.RGBA, error) {
	s, err := loadScene(cfg)
	if err != nil {
		return nil, err
	}
	p.start(s.Name, len(render.SplitRect(s.Bounds(), s.TileSize, s.TileSize)))
	img, err := render.Image(ctx, render.CPU{}, s, s.Uniforms(cfg.time), cfg.workers, func(*image.RGBA) { p.tile() })
	p.done()
	return img, err
}

// fetch asks the server at addr for the frame it is rendering. While
// waiting, this client renders tiles of that frame for the server.
func fetch(ctx context.Context, addr string, p *progress) (*image.RGBA, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	p.start("rendering for "+addr, 0)
	renderer := render.CPU{OnTileRender: func(tile image.Rectangle) {
		fractal.Logger().Debug("rendering tile", "tile", tile)
		p.tile()
	}}
	ep := irpc.NewEndpoint(conn, irpc.WithEndpointServices(fractal.NewRendererIrpcService(renderer)))
	defer ep.Close()

	client, err := fractal.NewImgProviderIrpcClient(ep)
	if err != nil {
		return nil, err
	}
	img, err := client.GetImage(ctx)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("client.GetImage: %w", err)
	}
	p.done()
	return img, nil
}

// progress prints a single updating status line.
type progress struct {
	m        sync.Mutex
	out      *termenv.Output
	name     string
	finished int
	total    int
}

func newProgress(out *termenv.Output) *progress {
	return &progress{out: out}
}

func (p *progress) start(name string, total int) {
	p.m.Lock()
	defer p.m.Unlock()
	p.name, p.finished, p.total = name, 0, total
	p.print()
}

func (p *progress) tile() {
	p.m.Lock()
	defer p.m.Unlock()
	p.finished++
	p.print()
}

func (p *progress) done() {
	fmt.Fprintln(p.out)
}

func (p *progress) print() {
	count := fmt.Sprintf("%d", p.finished)
	if p.total > 0 {
		count = fmt.Sprintf("%d/%d", p.finished, p.total)
		const width = 30
		bar := strings.Repeat("#", width*p.finished/p.total) + strings.Repeat(".", width-width*p.finished/p.total)
		count = p.out.String(bar).Foreground(p.out.Color("6")).String() + " " + count
	}
	fmt.Fprintf(p.out, "\r%s %s tiles", p.out.String(p.name).Bold(), count)
}
