// Package branch grows binary branching patterns without recursion.
//
// Every level of the tree is stored in one pre-sized arena. Segment b of
// level d lives at index 2^d - 1 + b and its parent is segment b/2 of level
// d-1, so growing the tree is a pair of bounded loops.
package branch

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxDepth bounds the number of levels, and with it the arena size.
const MaxDepth = 10

var ErrInvalidConfig = errors.New("invalid branch config")

// Config describes the shape of a tree.
type Config struct {
	// Depth is the number of levels, including the trunk.
	Depth int
	// Angle between a branch and each of its two children, in radians.
	Angle float64
	// Shrink scales the length of each level relative to its parent.
	Shrink float64
	// Length of the trunk.
	Length float64
	// Root is where the trunk starts. The trunk grows straight up.
	Root mgl64.Vec2
	// Sway is the amplitude, in radians, of the time-driven angle change.
	Sway float64
}

// Default is the tree used by the branches preset.
var Default = Config{
	Depth:  8,
	Angle:  0.45,
	Shrink: 0.72,
	Length: 0.55,
	Root:   mgl64.Vec2{0, -1},
	Sway:   0.15,
}

func (c Config) Validate() error {
	switch {
	case c.Depth < 1 || c.Depth > MaxDepth:
		return fmt.Errorf("%w: depth %d outside [1, %d]", ErrInvalidConfig, c.Depth, MaxDepth)
	case c.Shrink <= 0 || c.Shrink >= 1:
		return fmt.Errorf("%w: shrink %v outside (0, 1)", ErrInvalidConfig, c.Shrink)
	case c.Length <= 0:
		return fmt.Errorf("%w: length %v must be positive", ErrInvalidConfig, c.Length)
	}
	return nil
}

// At returns the config with the branch angle modulated for time t.
func (c Config) At(t float64) Config {
	c.Angle += c.Sway * math.Sin(t)
	return c
}

// Segment is one branch of the tree.
type Segment struct {
	From, To mgl64.Vec2
	Level    int
	heading  float64
}

// Tree is a grown set of segments.
type Tree struct {
	Segments []Segment
	depth    int
}

// Index returns the arena index of branch b on level d.
func Index(d, b int) int {
	return 1<<d - 1 + b
}

// Grow builds the tree described by c.
func Grow(c Config) (*Tree, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	segs := make([]Segment, 1<<c.Depth-1)
	segs[0] = Segment{
		From:    c.Root,
		To:      c.Root.Add(mgl64.Vec2{0, c.Length}),
		heading: math.Pi / 2,
	}

	length := c.Length
	for d := 1; d < c.Depth; d++ {
		length *= c.Shrink
		for b := 0; b < 1<<d; b++ {
			parent := segs[Index(d-1, b/2)]
			heading := parent.heading + c.Angle
			if b%2 == 1 {
				heading = parent.heading - c.Angle
			}
			s, co := math.Sincos(heading)
			segs[Index(d, b)] = Segment{
				From:    parent.To,
				To:      parent.To.Add(mgl64.Vec2{co, s}.Mul(length)),
				Level:   d,
				heading: heading,
			}
		}
	}
	return &Tree{Segments: segs, depth: c.Depth}, nil
}

// Depth is the number of levels in the tree.
func (t *Tree) Depth() int {
	return t.depth
}

// Distance returns the distance from p to the nearest segment and that
// segment's level.
func (t *Tree) Distance(p mgl64.Vec2) (float64, int) {
	best, level := math.Inf(1), 0
	for _, s := range t.Segments {
		if d := segmentDistance(p, s.From, s.To); d < best {
			best, level = d, s.Level
		}
	}
	return best, level
}

func segmentDistance(p, a, b mgl64.Vec2) float64 {
	pa, ba := p.Sub(a), b.Sub(a)
	l := ba.Dot(ba)
	if l == 0 {
		return pa.Len()
	}
	h := mgl64.Clamp(pa.Dot(ba)/l, 0, 1)
	return pa.Sub(ba.Mul(h)).Len()
}
