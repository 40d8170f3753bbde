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

package scene

import (
	"image"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
)

// Op is a drawing operation, as produced by a content stream interpreter.
// Coordinates are given in page space, with the y axis pointing down.
type Op interface {
	isOp()
}

// SetTransform replaces the current transformation: M maps user space to
// page space.
type SetTransform struct {
	M matrix.Matrix
}

// Transform modifies the current transformation: M maps the new user
// space to the previous one.
type Transform struct {
	M matrix.Matrix
}

// Save pushes a copy of the graphics state.
type Save struct{}

// Restore pops the graphics state pushed by the matching [Save].
type Restore struct{}

// SetClip intersects the clip region with the inside of Path.
// The clip region is part of the graphics state.
type SetClip struct {
	Path path.Path
	Rule FillRule
}

// SetPaint sets the paint used by [Fill], [DrawGlyph] and the fill part of
// [FillStroke].
type SetPaint struct {
	Paint Paint
}

// SetStrokePaint sets the paint used by [Stroke] and the stroke part of
// [FillStroke].
type SetStrokePaint struct {
	Paint Paint
}

// Fill fills the inside of Path.
type Fill struct {
	Path path.Path
	Rule FillRule
}

// Stroke draws the outline of Path.
type Stroke struct {
	Path  path.Path
	Style StrokeStyle
}

// FillStroke fills Path and then strokes it.
type FillStroke struct {
	Path  path.Path
	Rule  FillRule
	Style StrokeStyle
}

// DrawGlyph fills a glyph outline with the nonzero rule.  M maps glyph
// space to user space; the zero matrix is treated as the identity.
type DrawGlyph struct {
	Outline path.Path
	M       matrix.Matrix
}

// DrawImage paints an image into Rect.  The top-left corner of the image
// is placed at (Rect.LLx, Rect.LLy) and the bottom-right corner at
// (Rect.URx, Rect.URy).
type DrawImage struct {
	Image image.Image
	Rect  rect.Rect
}

func (SetTransform) isOp()   {}
func (Transform) isOp()      {}
func (Save) isOp()           {}
func (Restore) isOp()        {}
func (SetClip) isOp()        {}
func (SetPaint) isOp()       {}
func (SetStrokePaint) isOp() {}
func (Fill) isOp()           {}
func (Stroke) isOp()         {}
func (FillStroke) isOp()     {}
func (DrawGlyph) isOp()      {}
func (DrawImage) isOp()      {}
