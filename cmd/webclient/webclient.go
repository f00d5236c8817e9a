//go:build js && wasm

// webclient is a WASM client for the fractal server.
// It connects to the server websocket, renders tiles the server hands it
// and draws tiles of the current frame as they are finished. With a
// "preset" query parameter it renders that preset in the browser instead.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"net/http"
	"sync/atomic"
	"syscall/js"

	"github.com/marben/irpc"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/render"
	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

const backgroundColor = "#3a3a6e"

func main() {
	logScreenf("Starting WASM web client...")

	loc := js.Global().Get("window").Get("location")
	params := js.Global().Get("URLSearchParams").New(loc.Get("search"))
	if preset := params.Call("get", "preset"); !preset.IsNull() {
		if err := renderPreset(preset.String()); err != nil {
			logFatalf("render %s: %v", preset.String(), err)
		}
		select {}
	}

	// Step 1: Determine server address for WebSocket connection
	host := loc.Get("host").String()
	proto := "ws"
	if loc.Get("protocol").String() == "https:" {
		proto = "wss"
	}
	websocketUrl := proto + "://" + host + "/ws"

	// Step 2: Connect to server via WebSocket
	logScreenf("Connecting to fractal server at %s...", websocketUrl)
	websocket := js.Global().Get("WebSocket").New(websocketUrl)
	conn := NewWSReadWriteCloser(websocket)

	// Step 3: Serve tile rendering to the server over irpc
	renderer := render.CPU{OnTileRender: func(tile image.Rectangle) { logScreenf("Rendering tile: %s", tile) }}
	endpoint := irpc.NewEndpoint(conn, irpc.WithEndpointServices(fractal.NewRendererIrpcService(renderer)))
	defer endpoint.Close()

	tiles, err := fractal.NewTileProviderIrpcClient(endpoint)
	if err != nil {
		logFatalf("Failed to create TileProvider client: %v", err)
	}

	// Step 4: Report the pointer to the server while its scene follows it
	var follows atomic.Bool
	pointers := make(chan [2]float64, 1)
	onPointerMove(func(x, y float64) {
		if follows.Load() {
			offer(pointers, [2]float64{x, y})
		}
	})
	go postPointers(loc.Get("origin").String()+"/pointer", pointers)

	// Step 5: Draw frames until the server goes away
	if err := tilesLoadLoop(endpoint.Context(), tiles, &follows); err != nil && endpoint.Context().Err() == nil {
		logFatalf("tilesLoadLoop: %v", err)
	}
	logScreenf("Server closed the connection.")
	select {}
}

// tilesLoadLoop draws the finished tiles of the current frame, starting
// over whenever the server moves on to a new frame.
func tilesLoadLoop(ctx context.Context, tiles fractal.TileProvider, follows *atomic.Bool) error {
	var (
		frame uint32
		seen  int
	)
	for {
		u, err := tiles.Updates(ctx, frame, seen)
		if err != nil {
			return err
		}
		if u.Frame != frame {
			frame, seen = u.Frame, 0
			initCanvas(u.Bounds.Dx(), u.Bounds.Dy(), backgroundColor)
			logScreenf("Frame %d: %dx%d", frame, u.Bounds.Dx(), u.Bounds.Dy())
			hudSetFrame(frame)
		}
		for _, tile := range u.Tiles {
			drawTileToCanvas(tile)
		}
		seen = u.First + len(u.Tiles)

		hudSetFinishedTiles(seen)
		if u.Total > 0 {
			hudSetProgress(float64(seen) / float64(u.Total))
		}
		st, err := tiles.Status(ctx)
		if err != nil {
			return fmt.Errorf("status: %w", err)
		}
		follows.Store(st.Scene.FollowsPointer())
		hudSetPeers(st.Workers, st.Clients)
	}
}

// postPointers sends the latest pointer position to the server, one
// request at a time.
func postPointers(url string, pointers <-chan [2]float64) {
	for p := range pointers {
		body, err := json.Marshal(map[string]float64{"x": p[0], "y": p[1]})
		if err != nil {
			continue
		}
		resp, err := http.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			logScreenf("post pointer: %v", err)
			continue
		}
		resp.Body.Close()
	}
}

// offer replaces any pending value of ch with v.
func offer(ch chan [2]float64, v [2]float64) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// onPointerMove calls f with mouse positions over the canvas, in canvas
// pixels.
func onPointerMove(f func(x, y float64)) {
	canvas := js.Global().Get("document").Call("getElementById", "fractalCanvas")
	canvas.Call("addEventListener", "mousemove", js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		clientW, clientH := canvas.Get("clientWidth").Float(), canvas.Get("clientHeight").Float()
		if clientW <= 0 || clientH <= 0 {
			return nil
		}
		x := ev.Get("offsetX").Float() * canvas.Get("width").Float() / clientW
		y := ev.Get("offsetY").Float() * canvas.Get("height").Float() / clientH
		f(x, y)
		return nil
	}))
}

// renderPreset renders a preset in the browser. A preset whose Julia
// constant follows the pointer is rendered again as the mouse moves,
// dropping the render in progress.
func renderPreset(preset string) error {
	s, err := scene.Preset(preset)
	if err != nil {
		return err
	}
	initCanvas(s.Width, s.Height, backgroundColor)
	logScreenf("Rendering %s locally, %d tiles", s.Name, len(render.SplitRect(s.Bounds(), s.TileSize, s.TileSize)))

	pointers := make(chan [2]float64, 1)
	if s.FollowsPointer() {
		onPointerMove(func(x, y float64) { offer(pointers, [2]float64{x, y}) })
	}

	cancel := func() {}
	done := make(chan error, 1)
	start := func(u viewport.Uniforms) {
		ctx, c := context.WithCancel(context.Background())
		cancel = c
		go func() { done <- renderLocal(ctx, s, u) }()
	}
	start(s.Uniforms(0))
	go func() {
		for p := range pointers {
			cancel()
			if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
				logScreenf("render: %v", err)
			}
			start(s.Uniforms(0).WithMouse(p[0], p[1]))
		}
	}()
	return nil
}

// renderLocal renders s on the browser thread, drawing tiles as they finish.
func renderLocal(ctx context.Context, s scene.Scene, u viewport.Uniforms) error {
	total := len(render.SplitRect(s.Bounds(), s.TileSize, s.TileSize))
	finished := 0
	_, err := render.Image(ctx, render.CPU{}, s, u, 1, func(tile *image.RGBA) {
		drawTileToCanvas(tile)
		finished++
		hudSetFinishedTiles(finished)
		hudSetProgress(float64(finished) / float64(total))
	})
	return err
}

// logScreenf appends a formatted message to the log element in the DOM,
func logScreenf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	doc := js.Global().Get("document")
	logElem := doc.Call("getElementById", "log")
	logElem.Set("textContent", logElem.Get("textContent").String()+msg+"\n")
}

// logFatalf logs a fatal error to the log window and terminates the program.
func logFatalf(format string, a ...any) {
	logScreenf("FATAL: "+format, a...)
	log.Fatalf(format, a...)
}

func hudSetFrame(frame uint32) {
	js.Global().Get("document").Call("getElementById", "frame").Set("textContent", frame)
}

func hudSetFinishedTiles(finished int) {
	js.Global().Get("document").Call("getElementById", "tilesDone").Set("textContent", finished)
}

func hudSetProgress(p float64) {
	js.Global().Get("document").Call("getElementById", "progress").Set("textContent", fmt.Sprintf("%.0f%%", p*100))
}

func hudSetPeers(workers, clients int) {
	doc := js.Global().Get("document")
	doc.Call("getElementById", "workers").Set("textContent", workers)
	doc.Call("getElementById", "clients").Set("textContent", clients)
}
