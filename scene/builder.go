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
	"context"
	"fmt"
	"image"
	"log/slog"

	"golang.org/x/image/draw"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// Options configures a [Builder].
type Options struct {
	// Flatness is the curve tolerance in device pixels.
	// Zero selects DefaultFlatness.
	Flatness float64

	// Logger receives diagnostics for dropped operations.
	// Nil discards them.
	Logger *slog.Logger
}

// Builder converts drawing operations into scenes.
// A Builder holds no per-scene state and is safe for concurrent use.
type Builder struct {
	flatness float64
	log      *slog.Logger
}

// NewBuilder returns a Builder using the given options.
// A nil opt selects the defaults.
func NewBuilder(opt *Options) *Builder {
	b := &Builder{
		flatness: DefaultFlatness,
		log:      slog.New(slog.DiscardHandler),
	}
	if opt != nil {
		if opt.Flatness > 0 {
			b.flatness = opt.Flatness
		}
		if opt.Logger != nil {
			b.log = opt.Logger
		}
	}
	return b
}

// gstate is the graphics state.  It is copied by value on Save, so that no
// primitive ever observes a later modification.
type gstate struct {
	ctm    matrix.Matrix
	clip   ClipID
	fill   Paint
	stroke Paint
}

// build holds the state of one Build call.
type build struct {
	*Builder
	base  matrix.Matrix
	scene *Scene
	op    int
}

// Build converts ops into a scene for a canvas of the given size.  The
// base transform maps page space to device space.
//
// Operations which cannot be rendered are dropped and reported in
// Scene.Diagnostics; Build itself never fails.
func (b *Builder) Build(ops []Op, base matrix.Matrix, width, height int) *Scene {
	bb := &build{
		Builder: b,
		base:    base,
		scene:   &Scene{Width: width, Height: height},
	}

	st := gstate{ctm: base, fill: Black, stroke: Black}
	var stack []gstate
	for i, op := range ops {
		bb.op = i
		switch op := op.(type) {
		case SetTransform:
			st.ctm = Concat(op.M, base)
		case Transform:
			st.ctm = Concat(op.M, st.ctm)
		case Save:
			stack = append(stack, st)
		case Restore:
			if len(stack) == 0 {
				b.log.Warn("unbalanced restore", "op", i)
				continue
			}
			st = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		case SetClip:
			st.clip = bb.addClip(op.Path, op.Rule, st)
		case SetPaint:
			st.fill = op.Paint
		case SetStrokePaint:
			st.stroke = op.Paint
		case Fill:
			bb.addFill(op.Path, op.Rule, st)
		case Stroke:
			bb.addStroke(op.Path, op.Style, st)
		case FillStroke:
			bb.addFill(op.Path, op.Rule, st)
			bb.addStroke(op.Path, op.Style, st)
		case DrawGlyph:
			bb.addGlyph(op.Outline, op.M, st)
		case DrawImage:
			bb.addImage(op.Image, op.Rect, st)
		}
	}

	if b.log.Enabled(context.Background(), slog.LevelDebug) {
		b.log.Debug("scene built",
			"ops", len(ops),
			"primitives", len(bb.scene.Prims),
			"clips", len(bb.scene.Clips),
			"dropped", len(bb.scene.Diagnostics))
	}
	return bb.scene
}

// drop records a dropped operation.
func (bb *build) drop(kind Kind, err error) {
	bb.scene.Diagnostics = append(bb.scene.Diagnostics, Diagnostic{Op: bb.op, Err: err})
	bb.log.Warn("dropped drawing operation", "op", bb.op, "kind", kind, "error", err)
}

func (bb *build) addClip(p path.Path, rule FillRule, st gstate) ClipID {
	c := Clip{Parent: st.clip, Rule: rule}
	if err := checkTransform(st.ctm); err != nil {
		// nothing is visible through a degenerate clip
		bb.drop(KindFill, fmt.Errorf("clip path: %w", err))
	} else {
		c.Edges = fillEdges(p, st.ctm, bb.flatness)
		if len(c.Edges) > 0 {
			c.BBox = edgeBounds(c.Edges)
		}
	}
	if parent := bb.scene.Clip(st.clip); parent != nil {
		c.BBox = Intersect(c.BBox, parent.BBox)
	}
	if IsEmpty(c.BBox) {
		c.BBox = rect.Rect{}
	}
	bb.scene.Clips = append(bb.scene.Clips, c)
	return ClipID(len(bb.scene.Clips))
}

func (bb *build) addFill(p path.Path, rule FillRule, st gstate) {
	if err := checkTransform(st.ctm); err != nil {
		bb.drop(KindFill, err)
		return
	}
	brush, err := resolveBrush(st.fill, st.ctm)
	if err != nil {
		bb.drop(KindFill, err)
		return
	}
	bb.addPrimitive(KindFill, fillEdges(p, st.ctm, bb.flatness), rule, brush, st.clip)
}

func (bb *build) addStroke(p path.Path, style StrokeStyle, st gstate) {
	if err := checkTransform(st.ctm); err != nil {
		bb.drop(KindStroke, err)
		return
	}
	brush, err := resolveBrush(st.stroke, st.ctm)
	if err != nil {
		bb.drop(KindStroke, err)
		return
	}
	edges, err := strokeEdges(p, style, st.ctm, bb.flatness)
	if err != nil {
		bb.drop(KindStroke, err)
		return
	}
	bb.addPrimitive(KindStroke, edges, NonZero, brush, st.clip)
}

func (bb *build) addGlyph(outline path.Path, m matrix.Matrix, st gstate) {
	if m == (matrix.Matrix{}) {
		m = matrix.Identity
	}
	ctm := Concat(m, st.ctm)
	if err := checkTransform(ctm); err != nil {
		bb.drop(KindGlyph, err)
		return
	}
	brush, err := resolveBrush(st.fill, st.ctm)
	if err != nil {
		bb.drop(KindGlyph, err)
		return
	}
	bb.addPrimitive(KindGlyph, fillEdges(outline, ctm, bb.flatness), NonZero, brush, st.clip)
}

func (bb *build) addImage(img image.Image, r rect.Rect, st gstate) {
	if img == nil || img.Bounds().Empty() {
		bb.drop(KindImage, ErrEmptyPath)
		return
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())

	// pixel space → user space → device space
	pixToUser := matrix.Matrix{
		(r.URx - r.LLx) / w, 0,
		0, (r.URy - r.LLy) / h,
		r.LLx, r.LLy,
	}
	toDevice := Concat(pixToUser, st.ctm)
	if err := checkTransform(toDevice); err != nil {
		bb.drop(KindImage, err)
		return
	}

	rgba := toRGBA(img)
	brush, err := imageBrush(rgba, toDevice)
	if err != nil {
		bb.drop(KindImage, err)
		return
	}

	var l edgeList
	l.addPolygon([]vec.Vec2{
		{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h},
	}, toDevice)
	bb.addPrimitive(KindImage, l.edges, NonZero, brush, st.clip)
}

// toRGBA returns the image as premultiplied RGBA with origin (0, 0).
func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	res := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(res, res.Rect, img, b.Min, draw.Src)
	return res
}

func (bb *build) addPrimitive(kind Kind, edges []Edge, rule FillRule, brush Brush, clip ClipID) {
	if len(edges) == 0 {
		bb.drop(kind, ErrEmptyPath)
		return
	}
	if brush.IsTransparent() {
		return
	}
	bbox := edgeBounds(edges)
	bb.scene.Prims = append(bb.scene.Prims, Primitive{
		Kind:  kind,
		Z:     len(bb.scene.Prims),
		Rule:  rule,
		Edges: edges,
		BBox:  bbox,
		Brush: brush,
		Clip:  clip,
		Rect:  isAxisRect(edges, bbox),
	})
}
