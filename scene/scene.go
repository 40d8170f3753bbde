// seehuhn.de/go/pagerender - a tiled page renderer
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package scene converts a stream of drawing operations into an immutable
// list of device-space primitives.
//
// Curves are flattened to line edges with a tolerance measured in device
// pixels, strokes are expanded to fill geometry, and the graphics state
// (transform, clip, paint) in effect for each operation is resolved into
// self-contained values stored on the primitive. Nothing in a [Scene]
// refers back to the builder, so the scene can be read concurrently by any
// number of rasterization workers.
package scene

import (
	"errors"
	"fmt"
	"math"

	"seehuhn.de/go/geom/rect"
)

var (
	// ErrDegenerateTransform indicates a transform which is not invertible
	// or contains non-finite values.
	ErrDegenerateTransform = errors.New("degenerate transform")

	// ErrEmptyPath indicates a path which encloses no area in device space.
	ErrEmptyPath = errors.New("empty path")

	// ErrInvalidStroke indicates unusable stroke parameters.
	ErrInvalidStroke = errors.New("invalid stroke parameters")
)

// FillRule determines which points are inside a path.
type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

func (r FillRule) String() string {
	if r == EvenOdd {
		return "evenodd"
	}
	return "nonzero"
}

// Kind records which drawing operation produced a primitive.
type Kind uint8

const (
	KindFill Kind = iota
	KindStroke
	KindGlyph
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindFill:
		return "fill"
	case KindStroke:
		return "stroke"
	case KindGlyph:
		return "glyph"
	case KindImage:
		return "image"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Edge is a line segment in device coordinates.  The direction of the edge
// matters for the nonzero winding rule.
type Edge struct {
	X0, Y0 float64
	X1, Y1 float64
}

// ClipID refers to an entry in the clip table of a [Scene].
// The zero value means "not clipped".
type ClipID uint32

// Primitive is one drawable unit: fill geometry with a resolved paint.
type Primitive struct {
	Kind  Kind
	Z     int // painter's order, unique within a scene
	Rule  FillRule
	Edges []Edge
	BBox  rect.Rect // device space, may extend beyond the canvas
	Brush Brush
	Clip  ClipID

	// Rect is set when Edges describe an axis-aligned rectangle which
	// coincides with BBox.
	Rect bool
}

// Clip is one level of a clip chain.  The effective clip region of a
// primitive is the intersection of all clips from its ClipID up to the
// root.
type Clip struct {
	Parent ClipID
	Rule   FillRule
	Edges  []Edge
	BBox   rect.Rect // device space; empty if the clip region is empty
}

// Diagnostic records a drawing operation which was dropped.
type Diagnostic struct {
	Op  int // index into the operation list
	Err error
}

// Scene is the immutable result of building a list of drawing operations.
type Scene struct {
	Width, Height int
	Prims         []Primitive // in ascending Z order
	Clips         []Clip      // Clips[i-1] is the clip with ClipID i
	Diagnostics   []Diagnostic
}

// Clip returns the clip with the given id, or nil for id 0.
func (s *Scene) Clip(id ClipID) *Clip {
	if id == 0 || int(id) > len(s.Clips) {
		return nil
	}
	return &s.Clips[id-1]
}

// ClipChain returns the clip ids from the root of the chain down to id.
// The result is empty for id 0.
func (s *Scene) ClipChain(id ClipID) []ClipID {
	var chain []ClipID
	for id != 0 {
		chain = append(chain, id)
		id = s.Clips[id-1].Parent
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Bounds returns the device rectangle covered by the canvas.
func (s *Scene) Bounds() rect.Rect {
	return rect.Rect{URx: float64(s.Width), URy: float64(s.Height)}
}

// Intersect returns the intersection of two rectangles.  If the
// rectangles do not overlap, the result has URx <= LLx or URy <= LLy.
func Intersect(a, b rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: max(a.LLx, b.LLx),
		LLy: max(a.LLy, b.LLy),
		URx: min(a.URx, b.URx),
		URy: min(a.URy, b.URy),
	}
}

// IsEmpty reports whether r contains no area.
func IsEmpty(r rect.Rect) bool {
	return !(r.URx > r.LLx && r.URy > r.LLy)
}

// edgeBounds returns the bounding box of a list of edges.
func edgeBounds(edges []Edge) rect.Rect {
	if len(edges) == 0 {
		return rect.Rect{}
	}
	b := rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
	for _, e := range edges {
		b.LLx = min(b.LLx, e.X0, e.X1)
		b.URx = max(b.URx, e.X0, e.X1)
		b.LLy = min(b.LLy, e.Y0, e.Y1)
		b.URy = max(b.URy, e.Y0, e.Y1)
	}
	return b
}

// isAxisRect reports whether the edges trace exactly the boundary of
// their bounding box: every edge vertical and lying on the left or right
// side, and the net winding inside the box equal to ±1.
func isAxisRect(edges []Edge, b rect.Rect) bool {
	if len(edges) != 2 {
		return false
	}
	var left, right int
	for _, e := range edges {
		if e.X0 != e.X1 || min(e.Y0, e.Y1) != b.LLy || max(e.Y0, e.Y1) != b.URy {
			return false
		}
		dir := 1
		if e.Y1 < e.Y0 {
			dir = -1
		}
		switch e.X0 {
		case b.LLx:
			left += dir
		case b.URx:
			right += dir
		default:
			return false
		}
	}
	return left == -right && (left == 1 || left == -1)
}
