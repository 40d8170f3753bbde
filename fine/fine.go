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

// Package fine computes the pixels of one tile from its command list.
//
// Coverage is either computed analytically, as the exact area of each
// pixel covered by the shape, or by point sampling on a regular grid of
// n×n samples per pixel.  In both modes a pixel fully inside a shape gets
// coverage exactly 1.  Colors are composited with the "over" operator, in
// premultiplied float32 RGBA, in the order of the command list.
package fine

import (
	"image"
	"slices"

	"seehuhn.de/go/pagerender/binner"
	"seehuhn.de/go/pagerender/scene"
)

// Options configures a [Rasterizer].
type Options struct {
	// Supersample selects the antialiasing method.  Values of 0 and 1 use
	// exact area coverage, larger values n use n×n point samples per
	// pixel.
	Supersample int

	// Background is the color of the canvas before anything is drawn.
	Background scene.Color
}

// Rasterizer renders tiles.  Internal buffers grow as needed but never
// shrink, so that a Rasterizer reaches a steady state without
// allocations.
//
// A Rasterizer is not safe for concurrent use.  Use one Rasterizer per
// goroutine.
type Rasterizer struct {
	supersample int
	background  [4]float32

	acc       []float32   // premultiplied RGBA accumulator for the tile
	cov       []float32   // coverage of the current primitive
	masks     [][]float32 // clip mask stack
	depth     int         // number of active masks
	cover     []int64
	area      []int64
	hits      []int32
	crossings []crossing
}

// NewRasterizer allocates a new Rasterizer.
// A nil opt selects analytic coverage on a transparent background.
func NewRasterizer(opt *Options) *Rasterizer {
	r := &Rasterizer{}
	r.Configure(opt)
	return r
}

// Configure changes the options of r, keeping the internal buffers.
func (r *Rasterizer) Configure(opt *Options) {
	r.supersample = 0
	r.background = [4]float32{}
	if opt != nil {
		r.supersample = opt.Supersample
		r.background = opt.Background.Premultiplied()
	}
}

// RasterizeTile renders the pixels of tile t into dst.  The commands are
// the tile's command list from [binner.Bins], with primitive and clip
// references into s.  Pixels of dst outside t are not touched, so that
// different tiles of the same image can be rendered concurrently.
func (r *Rasterizer) RasterizeTile(dst *image.RGBA, t image.Rectangle, cmds []binner.Command, s *scene.Scene) {
	t = t.Intersect(dst.Rect)
	if t.Empty() {
		return
	}
	w, h := t.Dx(), t.Dy()
	n := w * h

	r.acc = slices.Grow(r.acc[:0], 4*n)[:4*n]
	bg := r.background
	for i := 0; i < len(r.acc); i += 4 {
		copy(r.acc[i:i+4], bg[:])
	}
	r.cov = slices.Grow(r.cov[:0], n)[:n]
	r.depth = 0

	for _, cmd := range cmds {
		switch cmd.Kind {
		case binner.CmdPushClip:
			r.pushClip(s.Clip(cmd.Clip), t)
		case binner.CmdPopClip:
			if r.depth > 0 {
				r.depth--
			}
		case binner.CmdFill:
			r.fill(&s.Prims[cmd.Prim], cmd.Hint, t)
		}
	}

	r.store(dst, t)
}

// coverage computes the coverage of the given geometry for tile t.
func (r *Rasterizer) coverage(edges []scene.Edge, rule scene.FillRule, t image.Rectangle, out []float32) {
	if r.supersample > 1 {
		r.sampledCoverage(edges, rule, t, r.supersample, out)
	} else {
		r.analyticCoverage(edges, rule, t, out)
	}
}

// pushClip computes a new clip mask: the coverage of c, multiplied by the
// currently active mask.
func (r *Rasterizer) pushClip(c *scene.Clip, t image.Rectangle) {
	n := t.Dx() * t.Dy()
	if r.depth == len(r.masks) {
		r.masks = append(r.masks, nil)
	}
	mask := slices.Grow(r.masks[r.depth][:0], n)[:n]
	r.masks[r.depth] = mask

	if c == nil || len(c.Edges) == 0 {
		clear(mask)
	} else {
		r.coverage(c.Edges, c.Rule, t, mask)
	}
	if r.depth > 0 {
		parent := r.masks[r.depth-1]
		for i := range mask {
			mask[i] *= parent[i]
		}
	}
	r.depth++
}

// fill composites primitive p over the accumulator.
func (r *Rasterizer) fill(p *scene.Primitive, hint binner.Coverage, t image.Rectangle) {
	cov := r.cov
	if hint == binner.Full {
		for i := range cov {
			cov[i] = 1
		}
	} else {
		r.coverage(p.Edges, p.Rule, t, cov)
	}
	if r.depth > 0 {
		mask := r.masks[r.depth-1]
		for i := range cov {
			cov[i] *= mask[i]
		}
	}

	w := t.Dx()
	brush := &p.Brush
	solid := brush.Kind == scene.BrushSolid
	src := brush.Color
	for i, a := range cov {
		if a <= 0 {
			continue
		}
		if !solid {
			src = brush.At(t.Min.X+i%w, t.Min.Y+i/w)
		}
		over(r.acc[4*i:4*i+4:4*i+4], src, a)
	}
}

// over composites the premultiplied color src, scaled by coverage a, over
// dst.
func over(dst []float32, src [4]float32, a float32) {
	sa := src[3] * a
	if sa >= 1 {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[1], src[2], 1
		return
	}
	t := 1 - sa
	dst[0] = src[0]*a + dst[0]*t
	dst[1] = src[1]*a + dst[1]*t
	dst[2] = src[2]*a + dst[2]*t
	dst[3] = sa + dst[3]*t
}

// store converts the accumulator to 8-bit values in dst.
func (r *Rasterizer) store(dst *image.RGBA, t image.Rectangle) {
	w := t.Dx()
	for y := t.Min.Y; y < t.Max.Y; y++ {
		row := dst.Pix[dst.PixOffset(t.Min.X, y):]
		acc := r.acc[(y-t.Min.Y)*4*w:]
		for i := range 4 * w {
			row[i] = toByte(acc[i])
		}
	}
}

func toByte(v float32) uint8 {
	if !(v > 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
