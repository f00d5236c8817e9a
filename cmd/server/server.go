package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/marben/irpc"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/render"
	"github.com/marben/escape_fractals/scene"
)

// main is the entry point for the fractal server.
// Frames are rendered by the server's own workers together with every
// connected web and cli client; web clients watch the tiles arrive.
func main() {
	if err := run(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

type config struct {
	addr    string
	tcpAddr string
	scene   string
	preset  string
	workers int
	static  string
	animate time.Duration
	verbose bool
}

func parseFlags(args []string) (config, error) {
	var c config
	fl := flag.NewFlagSet("server", flag.ContinueOnError)
	fl.StringVar(&c.addr, "addr", ":8080", "http and websocket listen address")
	fl.StringVar(&c.tcpAddr, "tcp", ":8081", "tcp irpc listen address, empty to disable")
	fl.StringVar(&c.scene, "scene", "", "scene file (.toml or .yaml), reloaded on change")
	fl.StringVar(&c.preset, "preset", "seahorse-valley", "preset scene used when no scene file is given")
	fl.IntVar(&c.workers, "workers", runtime.NumCPU(), "local render goroutines, 0 leaves rendering to clients")
	fl.StringVar(&c.static, "static", "static", "directory with index.html and main.wasm")
	fl.DurationVar(&c.animate, "animate", 0, "re-render the scene at this interval, 0 disables")
	fl.BoolVar(&c.verbose, "v", false, "debug logging")
	if err := fl.Parse(args); err != nil {
		return config{}, err
	}
	if c.workers < 0 {
		return config{}, fmt.Errorf("workers must not be negative, got %d", c.workers)
	}
	return c, nil
}

func run() error {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	fractal.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fs := newFrameServer(ctx, render.CPU{}, cfg.workers)

	// initial scene
	var s scene.Scene
	if cfg.scene != "" {
		s, err = scene.Load(cfg.scene)
	} else {
		s, err = scene.Preset(cfg.preset)
	}
	if err != nil {
		return err
	}
	if err := fs.setScene(s); err != nil {
		return fmt.Errorf("setScene: %w", err)
	}

	if cfg.scene != "" {
		go func() {
			err := scene.Watch(ctx, cfg.scene, func(s scene.Scene, err error) {
				if err != nil {
					logger.Warn("scene reload", "path", cfg.scene, "err", err)
					return
				}
				if err := fs.setScene(s); err != nil {
					logger.Warn("scene reload", "path", cfg.scene, "err", err)
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("scene watch", "err", err)
			}
		}()
	}

	if cfg.animate > 0 {
		go animate(ctx, fs, cfg.animate)
	}

	// irpc server with onConnect hook to plug clients into rendering
	irpcServer := newIrpcServer(fs)
	go func() {
		<-ctx.Done()
		irpcServer.Close()
	}()

	// TCP
	if cfg.tcpAddr != "" {
		tcpListener, err := net.Listen("tcp", cfg.tcpAddr)
		if err != nil {
			return fmt.Errorf("net.Listen: %w", err)
		}
		logger.Info("tcp listening", "addr", cfg.tcpAddr)
		go serveIrpc(irpcServer, tcpListener)
	}

	// WEBSOCKET
	websocketListener, httpServer := webServer(ctx, cfg.addr, cfg.static, fs)
	go serveIrpc(irpcServer, websocketListener)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	// httpServer provides index.html, main.wasm along with websocket endpoint
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("httpServer: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// animate restarts the current scene every interval so animated scenes
// advance in time.
func animate(ctx context.Context, fs *frameServer, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := fs.rerender(); err != nil {
				fractal.Logger().Warn("rerender", "err", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

// newIrpcServer serves fs as fractal.ImgProvider and fractal.TileProvider.
// Every client that connects is used as a renderer while it stays connected.
func newIrpcServer(fs *frameServer) *irpc.Server {
	s := irpc.NewServer(irpc.WithOnConnect(func(ep *irpc.Endpoint) {
		go serveClient(fs, ep)
	}))
	s.AddService(fractal.NewImgProviderIrpcService(fs), fractal.NewTileProviderIrpcService(fs))
	return s
}

// serveClient renders frames on the client behind ep until it disconnects.
func serveClient(fs *frameServer, ep *irpc.Endpoint) {
	log := fractal.Logger()
	log.Info("client connected", "remote", ep.RemoteAddr())
	defer fs.clientConnected()()

	// Each client needs to provide us with fractal.Renderer so we can use it to render tiles of full image
	renderer, err := fractal.NewRendererIrpcClient(ep)
	if err != nil {
		log.Warn("new renderer client", "remote", ep.RemoteAddr(), "err", err)
		return
	}
	fs.serveRenderer(ep.Context(), renderer)
	log.Info("client disconnected", "remote", ep.RemoteAddr(), "cause", context.Cause(ep.Context()))
}

// serveIrpc serves l until the server is closed.
func serveIrpc(s *irpc.Server, l net.Listener) {
	if err := s.Serve(l); err != nil && !errors.Is(err, irpc.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
		fractal.Logger().Error("irpc serve", "listener", l.Addr(), "err", err)
	}
}
