package main

import (
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"

	fractal "github.com/marben/escape_fractals"
	"github.com/marben/escape_fractals/render"
	"github.com/marben/escape_fractals/scene"
)

// maxSceneBody bounds POST /scene bodies.
const maxSceneBody = 1 << 16

// webServer creates a server serving files in the static folder, the
// current frame and scene, and a websocket endpoint.
// It returns a net.Listener accepting the websocket connections.
func webServer(ctx context.Context, addr, static string, fs *frameServer) (*WebsocketListener, *http.Server) {
	l := NewWSListener(ctx, addr+"/ws")
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(l, fs, static),
		ReadHeaderTimeout: 5 * time.Second,
	}
	fractal.Logger().Info("listening", "addr", addr)
	return l, srv
}

func newMux(l *WebsocketListener, fs *frameServer, static string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", websocketHandler(l))
	mux.HandleFunc("GET /status", statusHandler(fs))
	mux.HandleFunc("POST /scene", sceneHandler(fs))
	mux.HandleFunc("GET /image.png", imageHandler(fs))
	mux.HandleFunc("POST /pointer", pointerHandler(fs))
	if static != "" {
		mux.Handle("/", http.FileServer(http.Dir(static)))
	}
	return mux
}

// websocketHandler handles the http ws endpoint
// if websocket is successfully initialized it is passed to WebsocketListener so it can be accepted
func websocketHandler(l *WebsocketListener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			fractal.Logger().Warn("websocket accept", "err", err)
			return
		}

		select {
		case l.ch <- c:
		case <-l.ctx.Done():
			c.Close(websocket.StatusGoingAway, "server shutting down")
		}
	}
}

func statusHandler(fs *frameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := fs.status()
		if !ok {
			http.Error(w, "no frame", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			fractal.Logger().Warn("encode status", "err", err)
		}
	}
}

// sceneHandler replaces the scene. The body is TOML unless the content
// type says YAML.
func sceneHandler(fs *frameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxSceneBody))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format := scene.TOML
		if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
			format = scene.YAML
		}
		s, err := scene.Parse(data, format)
		if err == nil {
			err = fs.setScene(s)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// pointer is the body of POST /pointer, a position in frame pixels.
type pointer struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// pointerHandler moves the mouse position pointer-driven scenes follow.
func pointerHandler(fs *frameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p pointer
		if err := json.NewDecoder(io.LimitReader(r.Body, 1<<10)).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := fs.setPointer(p.X, p.Y); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// imageHandler waits for the current frame and encodes it as PNG. The
// optional "thumb" query parameter scales it down to fit that many pixels.
func imageHandler(fs *frameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		img, err := fs.GetImage(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		var out = img
		if v := r.URL.Query().Get("thumb"); v != "" {
			side, err := strconv.Atoi(v)
			if err != nil || side <= 0 {
				http.Error(w, "bad thumb size", http.StatusBadRequest)
				return
			}
			out = render.Thumbnail(img, side)
		}

		w.Header().Set("Content-Type", "image/png")
		if err := png.Encode(w, out); err != nil {
			fractal.Logger().Warn("encode png", "err", err)
		}
	}
}

// WebsocketListener implements net.Listener
// it's a wrapper around websocket.Conn
type WebsocketListener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr
}

func NewWSListener(ctx context.Context, addr string) *WebsocketListener {
	ctx, cancel := context.WithCancel(ctx)
	return &WebsocketListener{
		ch:     make(chan *websocket.Conn),
		ctx:    ctx,
		cancel: cancel,
		addr:   wsAddr{addr: addr},
	}
}

func (l *WebsocketListener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		if err := context.Cause(l.ctx); !errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, net.ErrClosed
	}
}

func (l *WebsocketListener) Addr() net.Addr {
	return l.addr
}

func (l *WebsocketListener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}
