//go:build js && wasm

package main

import (
	"io"
	"sync"
	"syscall/js"
)

// WSReadWriteCloser adapts a browser WebSocket to io.ReadWriteCloser.
// Binary messages are queued in arrival order and read as one byte stream.
type WSReadWriteCloser struct {
	ws js.Value

	mu     sync.Mutex // needed because js onClose event can preempt Write() call
	closed bool
	queue  [][]byte
	// ready has room for one wakeup, js callbacks must never block
	ready chan struct{}

	openCh chan struct{} // closed when connected
	err    error

	// read buffer for partial reads, owned by Read
	buf []byte
}

func NewWSReadWriteCloser(ws js.Value) *WSReadWriteCloser {
	c := &WSReadWriteCloser{
		ws:     ws,
		ready:  make(chan struct{}, 1),
		openCh: make(chan struct{}),
	}

	ws.Set("binaryType", "arraybuffer")

	ws.Set("onopen", js.FuncOf(func(js.Value, []js.Value) any {
		c.markOpen()
		return nil
	}))

	ws.Set("onerror", js.FuncOf(func(js.Value, []js.Value) any {
		c.mu.Lock()
		c.err = io.ErrUnexpectedEOF
		c.mu.Unlock()
		c.markOpen()
		return nil
	}))

	ws.Set("onmessage", js.FuncOf(func(this js.Value, args []js.Value) any {
		jsDataToBytes(args[0].Get("data"), c.deliver)
		return nil
	}))

	ws.Set("onclose", js.FuncOf(func(js.Value, []js.Value) any {
		logScreenf("websocket closed")
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.markOpen()
		c.wake()
		return nil
	}))

	return c
}

func (c *WSReadWriteCloser) deliver(b []byte) {
	c.mu.Lock()
	if !c.closed {
		c.queue = append(c.queue, b)
	}
	c.mu.Unlock()
	c.wake()
}

func (c *WSReadWriteCloser) wake() {
	select {
	case c.ready <- struct{}{}:
	default:
	}
}

func (c *WSReadWriteCloser) markOpen() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.openCh:
	default:
		close(c.openCh)
	}
}

func (c *WSReadWriteCloser) Read(p []byte) (int, error) {
	// First, drain existing buffer
	for len(c.buf) == 0 {
		c.mu.Lock()
		switch {
		case len(c.queue) > 0:
			c.buf = c.queue[0]
			c.queue = c.queue[1:]
		case c.closed:
			c.mu.Unlock()
			return 0, io.EOF
		}
		c.mu.Unlock()

		if len(c.buf) == 0 {
			// No buffered data -> wait for next message
			<-c.ready
		}
	}

	n := copy(p, c.buf)
	c.buf = c.buf[n:]

	return n, nil
}

func (c *WSReadWriteCloser) Write(p []byte) (int, error) {
	if err := c.waitOpen(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, io.ErrClosedPipe
	}

	u8 := js.Global().Get("Uint8Array").New(len(p))
	js.CopyBytesToJS(u8, p)

	c.ws.Call("send", u8)
	return len(p), nil
}

func (c *WSReadWriteCloser) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.markOpen()
	c.wake()
	c.ws.Call("close")
	return nil
}

func (c *WSReadWriteCloser) waitOpen() error {
	<-c.openCh

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	if c.closed {
		return io.ErrClosedPipe
	}
	return nil
}

func jsDataToBytes(data js.Value, deliver func([]byte)) {
	// Uint8Array / Uint8ClampedArray
	if data.InstanceOf(js.Global().Get("Uint8Array")) ||
		data.InstanceOf(js.Global().Get("Uint8ClampedArray")) {

		b := make([]byte, data.Get("byteLength").Int())
		js.CopyBytesToGo(b, data)
		deliver(b)
		return
	}

	// ArrayBuffer
	if data.InstanceOf(js.Global().Get("ArrayBuffer")) {
		u8 := js.Global().Get("Uint8Array").New(data)
		b := make([]byte, u8.Get("byteLength").Int())
		js.CopyBytesToGo(b, u8)
		deliver(b)
		return
	}

	// Blob is read asynchronously
	if data.InstanceOf(js.Global().Get("Blob")) {
		promise := data.Call("arrayBuffer")
		var then js.Func
		then = js.FuncOf(func(this js.Value, args []js.Value) any {
			defer then.Release()
			u8 := js.Global().Get("Uint8Array").New(args[0])
			b := make([]byte, u8.Get("byteLength").Int())
			js.CopyBytesToGo(b, u8)
			deliver(b)
			return nil
		})
		promise.Call("then", then)
		return
	}

	logScreenf("dropping websocket message of unsupported type %s", data.Type())
}
