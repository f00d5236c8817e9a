// Package fractal renders escape-time fractals tile by tile.
//
// The per-pixel evaluator lives in package escape; this package holds the
// interfaces the server and its clients call each other through, their
// irpc bindings and the package logger.
package fractal

import (
	"context"
	"image"

	"github.com/marben/escape_fractals/scene"
	"github.com/marben/escape_fractals/viewport"
)

type ImgProvider interface {
	// GetImage blocks until the full frame is rendered.
	GetImage(ctx context.Context) (*image.RGBA, error)
}

type Renderer interface {
	// RenderTile renders the pixels of tile, given in full image coordinates.
	RenderTile(ctx context.Context, s scene.Scene, tile image.Rectangle, u viewport.Uniforms) (*image.RGBA, error)
}

// TileProvider lets viewers follow the progressive rendering of frames.
type TileProvider interface {
	// Updates returns the finished tiles of frame past the first seen ones.
	// It blocks until there is at least one. Once frame is no longer the
	// current frame it returns the current frame from its first tile.
	Updates(ctx context.Context, frame uint32, seen int) (TileUpdate, error)
	Status(ctx context.Context) (Status, error)
}

// TileUpdate is a batch of finished tiles of one frame.
type TileUpdate struct {
	Frame  uint32
	Bounds image.Rectangle
	// Total is the number of tiles in the frame.
	Total int
	// First is the finishing index of Tiles[0] within the frame.
	First int
	Tiles []*image.RGBA
}

// Status describes the frame being rendered.
type Status struct {
	Frame    uint32      `json:"frame"`
	Scene    scene.Scene `json:"scene"`
	Tiles    int         `json:"tiles"`
	Finished int         `json:"finished"`
	Progress float32     `json:"progress"`
	Workers  int         `json:"workers"`
	Clients  int         `json:"clients"`
}
