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
	"math"
	"slices"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Paint describes how the inside of a shape is colored.
// The implementations are [Color], [*LinearGradient] and [*RadialGradient].
type Paint interface {
	isPaint()
}

// Color is a solid color.  The components are not premultiplied and
// range from 0 to 1.
type Color struct {
	R, G, B, A float64
}

func (Color) isPaint() {}

// Some frequently used colors.
var (
	Black       = Color{0, 0, 0, 1}
	White       = Color{1, 1, 1, 1}
	Transparent = Color{}
)

// Premultiplied returns the color as premultiplied float32 components,
// clamped to [0, 1].
func (c Color) Premultiplied() [4]float32 {
	a := clamp01(c.A)
	return [4]float32{
		float32(clamp01(c.R) * a),
		float32(clamp01(c.G) * a),
		float32(clamp01(c.B) * a),
		float32(a),
	}
}

// Stop is a color stop of a gradient.
type Stop struct {
	Offset float64 // in [0, 1]
	Color  Color
}

// LinearGradient varies the color along the line from P0 to P1, given in
// the user space of the operation which uses the paint.  Beyond the end
// points the end colors are extended.
type LinearGradient struct {
	P0, P1 vec.Vec2
	Stops  []Stop
}

func (*LinearGradient) isPaint() {}

// RadialGradient varies the color with the distance from Center.
type RadialGradient struct {
	Center vec.Vec2
	Radius float64
	Stops  []Stop
}

func (*RadialGradient) isPaint() {}

// BrushKind selects the evaluation method of a [Brush].
type BrushKind uint8

const (
	BrushSolid BrushKind = iota
	BrushLinear
	BrushRadial
	BrushImage
)

// Brush is a paint resolved for one primitive.  All information needed to
// color a device pixel is contained in the brush itself.
type Brush struct {
	Kind BrushKind

	// Color is the premultiplied color of a solid brush.
	Color [4]float32

	// Inverse maps device coordinates to the paint's own coordinate
	// system: user space for gradients, pixel space for images.
	Inverse matrix.Matrix

	// gradient geometry, in the coordinates selected by Inverse
	p0, d   vec.Vec2 // linear: start point and direction
	dd      float64  // linear: d·d
	center  vec.Vec2 // radial
	radius  float64  // radial
	stops   []Stop   // sorted by offset
	image   *image.RGBA
	opaque  bool
	isEmpty bool
}

// IsOpaque reports whether every pixel painted by the brush has alpha 1.
func (b *Brush) IsOpaque() bool {
	return b.opaque
}

// IsTransparent reports whether the brush never changes the destination.
func (b *Brush) IsTransparent() bool {
	return b.isEmpty
}

// resolveBrush converts a paint into a self-contained brush for a
// primitive drawn with user-to-device transform ctm.
func resolveBrush(p Paint, ctm matrix.Matrix) (Brush, error) {
	switch p := p.(type) {
	case nil:
		return solidBrush(Black), nil
	case Color:
		return solidBrush(p), nil
	case *LinearGradient:
		inv, err := invert(ctm)
		if err != nil {
			return Brush{}, err
		}
		d := p.P1.Sub(p.P0)
		stops := sortedStops(p.Stops)
		b := Brush{
			Kind:    BrushLinear,
			Inverse: inv,
			p0:      p.P0,
			d:       d,
			dd:      d.Dot(d),
			stops:   stops,
		}
		b.opaque, b.isEmpty = stopAlpha(stops)
		if b.dd == 0 && len(stops) > 0 {
			return solidBrush(stops[len(stops)-1].Color), nil
		}
		return b, nil
	case *RadialGradient:
		inv, err := invert(ctm)
		if err != nil {
			return Brush{}, err
		}
		stops := sortedStops(p.Stops)
		b := Brush{
			Kind:    BrushRadial,
			Inverse: inv,
			center:  p.Center,
			radius:  p.Radius,
			stops:   stops,
		}
		b.opaque, b.isEmpty = stopAlpha(stops)
		if !(p.Radius > 0) && len(stops) > 0 {
			return solidBrush(stops[len(stops)-1].Color), nil
		}
		return b, nil
	}
	return solidBrush(Black), nil
}

func solidBrush(c Color) Brush {
	col := c.Premultiplied()
	return Brush{
		Kind:    BrushSolid,
		Color:   col,
		opaque:  col[3] >= 1,
		isEmpty: col[3] <= 0,
	}
}

// imageBrush returns a brush which samples img, where toDevice maps image
// pixel coordinates to device coordinates.
func imageBrush(img *image.RGBA, toDevice matrix.Matrix) (Brush, error) {
	inv, err := invert(toDevice)
	if err != nil {
		return Brush{}, err
	}
	return Brush{
		Kind:    BrushImage,
		Inverse: inv,
		image:   img,
		opaque:  img.Opaque(),
	}, nil
}

func sortedStops(stops []Stop) []Stop {
	res := slices.Clone(stops)
	slices.SortStableFunc(res, func(a, b Stop) int {
		switch {
		case a.Offset < b.Offset:
			return -1
		case a.Offset > b.Offset:
			return 1
		}
		return 0
	})
	return res
}

func stopAlpha(stops []Stop) (opaque, empty bool) {
	if len(stops) == 0 {
		return false, true
	}
	opaque, empty = true, true
	for _, s := range stops {
		a := clamp01(s.Color.A)
		if a < 1 {
			opaque = false
		}
		if a > 0 {
			empty = false
		}
	}
	return opaque, empty
}

// At returns the premultiplied color of the brush at the center of device
// pixel (x, y).
func (b *Brush) At(x, y int) [4]float32 {
	if b.Kind == BrushSolid {
		return b.Color
	}

	px := float64(x) + 0.5
	py := float64(y) + 0.5
	m := b.Inverse
	u := vec.Vec2{
		X: m[0]*px + m[2]*py + m[4],
		Y: m[1]*px + m[3]*py + m[5],
	}

	switch b.Kind {
	case BrushLinear:
		return evalStops(b.stops, u.Sub(b.p0).Dot(b.d)/b.dd)
	case BrushRadial:
		return evalStops(b.stops, u.Sub(b.center).Length()/b.radius)
	case BrushImage:
		ix := int(math.Floor(u.X))
		iy := int(math.Floor(u.Y))
		r := b.image.Rect
		if ix < r.Min.X || ix >= r.Max.X || iy < r.Min.Y || iy >= r.Max.Y {
			return [4]float32{}
		}
		i := b.image.PixOffset(ix, iy)
		pix := b.image.Pix[i : i+4 : i+4]
		return [4]float32{
			float32(pix[0]) / 255,
			float32(pix[1]) / 255,
			float32(pix[2]) / 255,
			float32(pix[3]) / 255,
		}
	}
	return [4]float32{}
}

// evalStops interpolates the (non-premultiplied) stop colors at t, with
// pad extension outside [0, 1].
func evalStops(stops []Stop, t float64) [4]float32 {
	if len(stops) == 0 {
		return [4]float32{}
	}
	if math.IsNaN(t) || t <= stops[0].Offset {
		return stops[0].Color.Premultiplied()
	}
	last := stops[len(stops)-1]
	if t >= last.Offset {
		return last.Color.Premultiplied()
	}
	for i := 1; i < len(stops); i++ {
		s1 := stops[i]
		if t > s1.Offset {
			continue
		}
		s0 := stops[i-1]
		span := s1.Offset - s0.Offset
		if span <= 0 {
			return s1.Color.Premultiplied()
		}
		f := (t - s0.Offset) / span
		c := Color{
			R: s0.Color.R + f*(s1.Color.R-s0.Color.R),
			G: s0.Color.G + f*(s1.Color.G-s0.Color.G),
			B: s0.Color.B + f*(s1.Color.B-s0.Color.B),
			A: s0.Color.A + f*(s1.Color.A-s0.Color.A),
		}
		return c.Premultiplied()
	}
	return last.Color.Premultiplied()
}

func clamp01(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
