//go:build js && wasm

package main

import (
	"image"
	"syscall/js"
)

func canvasContext() js.Value {
	canvas := js.Global().Get("document").Call("getElementById", "fractalCanvas")
	return canvas.Call("getContext", "2d")
}

// initCanvas resizes the canvas to the frame and fills it with color.
func initCanvas(width, height int, color string) {
	doc := js.Global().Get("document")
	canvas := doc.Call("getElementById", "fractalCanvas")

	canvas.Set("width", width)
	canvas.Set("height", height)

	ctx := canvas.Call("getContext", "2d")

	ctx.Set("fillStyle", color)
	ctx.Call("fillRect", 0, 0, width, height)
}

// drawTileToCanvas puts tile at its own coordinates. The tile must have
// tight rows, as decoded by the irpc bindings and returned by render.CPU.
func drawTileToCanvas(tile *image.RGBA) {
	jsData := js.Global().Get("Uint8ClampedArray").New(len(tile.Pix))
	js.CopyBytesToJS(jsData, tile.Pix)

	// ImageData always expects width/height of the buffer provided
	imageData := js.Global().Get("ImageData").New(jsData, tile.Rect.Dx(), tile.Rect.Dy())

	canvasContext().Call("putImageData", imageData, tile.Rect.Min.X, tile.Rect.Min.Y)
}
