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
	"image/color"
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

func near(a, b [4]float32) bool {
	for i := range a {
		if math.Abs(float64(a[i]-b[i])) > 1e-5 {
			return false
		}
	}
	return true
}

func TestPremultiplied(t *testing.T) {
	got := Color{R: 1, G: 0.5, B: 0, A: 0.5}.Premultiplied()
	if !near(got, [4]float32{0.5, 0.25, 0, 0.5}) {
		t.Errorf("got %v", got)
	}
	if got := (Color{R: 2, A: -1}).Premultiplied(); got != ([4]float32{}) {
		t.Errorf("out of range color: got %v", got)
	}
}

func TestLinearGradient(t *testing.T) {
	g := &LinearGradient{
		P0: vec.Vec2{X: 0, Y: 0},
		P1: vec.Vec2{X: 50, Y: 0},
		Stops: []Stop{
			{Offset: 1, Color: Color{B: 1, A: 1}},
			{Offset: 0, Color: Color{R: 1, A: 1}},
		},
	}
	// the gradient is defined in user space, the page is drawn at scale 2
	ops := []Op{SetPaint{Paint: g}, Fill{Path: Rectangle(0, 0, 50, 50)}}
	s := NewBuilder(nil).Build(ops, matrix.Matrix{2, 0, 0, 2, 0, 0}, 100, 100)
	if len(s.Prims) != 1 {
		t.Fatalf("got %d primitives", len(s.Prims))
	}
	b := &s.Prims[0].Brush
	if b.Kind != BrushLinear || !b.IsOpaque() {
		t.Fatalf("unexpected brush kind %d", b.Kind)
	}

	cases := []struct {
		x    int
		want [4]float32
	}{
		{-10, [4]float32{1, 0, 0, 1}},        // padded
		{49, [4]float32{0.505, 0, 0.495, 1}}, // pixel centre at t = 0.495
		{150, [4]float32{0, 0, 1, 1}},        // padded
	}
	for _, c := range cases {
		if got := b.At(c.x, 10); !near(got, c.want) {
			t.Errorf("x=%d: got %v, want %v", c.x, got, c.want)
		}
	}
}

func TestRadialGradient(t *testing.T) {
	g := &RadialGradient{
		Center: vec.Vec2{X: 50, Y: 50},
		Radius: 40,
		Stops: []Stop{
			{Offset: 0, Color: White},
			{Offset: 1, Color: Color{R: 1, G: 1, B: 1}},
		},
	}
	s := buildOps(SetPaint{Paint: g}, Fill{Path: Rectangle(0, 0, 100, 100)})
	if len(s.Prims) != 1 {
		t.Fatalf("got %d primitives", len(s.Prims))
	}
	b := &s.Prims[0].Brush
	if b.IsOpaque() || b.IsTransparent() {
		t.Error("wrong alpha classification")
	}
	if got := b.At(0, 0); got != ([4]float32{}) {
		t.Errorf("corner: got %v", got)
	}
	// pixel centre (70.5, 50.5) has distance ~20.5
	got := b.At(70, 50)
	if got[3] < 0.45 || got[3] > 0.52 || got[0] != got[3] {
		t.Errorf("half way: got %v", got)
	}
}

func TestDegenerateGradient(t *testing.T) {
	g := &LinearGradient{
		P0:    vec.Vec2{X: 10, Y: 10},
		P1:    vec.Vec2{X: 10, Y: 10},
		Stops: []Stop{{Offset: 0, Color: White}, {Offset: 1, Color: Black}},
	}
	s := buildOps(SetPaint{Paint: g}, Fill{Path: Rectangle(0, 0, 10, 10)})
	if len(s.Prims) != 1 || s.Prims[0].Brush.Kind != BrushSolid {
		t.Fatal("degenerate gradient should become a solid brush")
	}

	empty := &LinearGradient{P1: vec.Vec2{X: 1}}
	s = buildOps(SetPaint{Paint: empty}, Fill{Path: Rectangle(0, 0, 10, 10)})
	if len(s.Prims) != 0 {
		t.Error("gradient without stops should paint nothing")
	}
}

func TestImageBrush(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 255, G: 255, B: 255, A: 128})

	s := buildOps(DrawImage{Image: img, Rect: rect.Rect{LLx: 10, LLy: 10, URx: 30, URy: 30}})
	if len(s.Prims) != 1 || s.Prims[0].Kind != KindImage {
		t.Fatalf("image not drawn")
	}
	p := &s.Prims[0]
	if p.BBox.LLx != 10 || p.BBox.URy != 30 {
		t.Errorf("unexpected bbox %v", p.BBox)
	}
	if p.Brush.IsOpaque() {
		t.Error("image with transparent pixel reported as opaque")
	}

	cases := []struct {
		x, y int
		want [4]float32
	}{
		{12, 12, [4]float32{1, 0, 0, 1}},
		{25, 12, [4]float32{0, 1, 0, 1}},
		{12, 25, [4]float32{0, 0, 1, 1}},
		{5, 5, [4]float32{}},
	}
	for _, c := range cases {
		if got := p.Brush.At(c.x, c.y); !near(got, c.want) {
			t.Errorf("(%d, %d): got %v, want %v", c.x, c.y, got, c.want)
		}
	}
	if got := p.Brush.At(25, 25); math.Abs(float64(got[3])-128.0/255) > 1e-5 || got[0] != got[3] {
		t.Errorf("premultiplied pixel: got %v", got)
	}

	s = buildOps(DrawImage{Image: image.NewRGBA(image.Rectangle{}), Rect: rect.Rect{URx: 1, URy: 1}})
	if len(s.Diagnostics) != 1 {
		t.Error("empty image not reported")
	}
}
