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
	"errors"
	"math"
	"testing"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// winding returns the winding number of the edges around (x, y).
func winding(edges []Edge, x, y float64) int {
	w := 0
	for _, e := range edges {
		if (e.Y0 <= y) == (e.Y1 <= y) {
			continue
		}
		t := (y - e.Y0) / (e.Y1 - e.Y0)
		if e.X0+t*(e.X1-e.X0) > x {
			if e.Y1 > e.Y0 {
				w++
			} else {
				w--
			}
		}
	}
	return w
}

func buildOps(ops ...Op) *Scene {
	return NewBuilder(nil).Build(ops, matrix.Identity, 100, 100)
}

func TestZoomBucket(t *testing.T) {
	cases := []struct {
		zoom float64
		want int
	}{
		{1, 0},
		{1.2, 0},
		{1.25, 1},
		{1.5, 1},
		{2, 2},
		{2.25, 2},
		{0.5, -2},
		{0, 0},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := ZoomBucket(c.zoom, 1.5); got != c.want {
			t.Errorf("ZoomBucket(%g): got %d, want %d", c.zoom, got, c.want)
		}
	}

	if z := BucketZoom(2, 1.5); math.Abs(z-2.25) > 1e-12 {
		t.Errorf("BucketZoom(2): got %g", z)
	}
	for k := -5; k <= 5; k++ {
		if got := ZoomBucket(BucketZoom(k, 1.5), 1.5); got != k {
			t.Errorf("bucket %d does not contain its own zoom, got %d", k, got)
		}
	}

	if NeedsReflatten(1, 1.2, 1.5) {
		t.Error("1 -> 1.2 should not need reflattening")
	}
	if !NeedsReflatten(1, 1.3, 1.5) {
		t.Error("1 -> 1.3 should need reflattening")
	}
}

func TestFillRules(t *testing.T) {
	// pentagram, the centre has winding number 2
	var pts []vec.Vec2
	for i := range 5 {
		phi := float64(2*i)*2*math.Pi/5 - math.Pi/2
		pts = append(pts, vec.Vec2{X: 50 + 40*math.Cos(phi), Y: 50 + 40*math.Sin(phi)})
	}
	star := Polygon(pts...)

	for _, rule := range []FillRule{NonZero, EvenOdd} {
		s := buildOps(Fill{Path: star, Rule: rule})
		if len(s.Prims) != 1 {
			t.Fatalf("%s: got %d primitives", rule, len(s.Prims))
		}
		p := s.Prims[0]
		if p.Rule != rule {
			t.Errorf("rule not recorded")
		}
		if w := winding(p.Edges, 50, 50); w != 2 && w != -2 {
			t.Errorf("%s: centre winding %d", rule, w)
		}
		if w := winding(p.Edges, 5, 5); w != 0 {
			t.Errorf("%s: corner winding %d", rule, w)
		}
	}
}

func TestTransformStack(t *testing.T) {
	s := buildOps(
		Save{},
		Transform{M: matrix.Matrix{1, 0, 0, 1, 30, 0}},
		Fill{Path: Rectangle(0, 0, 10, 10)},
		Restore{},
		Fill{Path: Rectangle(0, 0, 10, 10)},
		Transform{M: matrix.Matrix{2, 0, 0, 2, 0, 0}},
		SetTransform{M: matrix.Matrix{1, 0, 0, 1, 0, 50}},
		Fill{Path: Rectangle(0, 0, 10, 10)},
	)
	if len(s.Prims) != 3 {
		t.Fatalf("got %d primitives", len(s.Prims))
	}
	wantLLx := []float64{30, 0, 0}
	wantLLy := []float64{0, 0, 50}
	for i, p := range s.Prims {
		if p.Z != i {
			t.Errorf("primitive %d has Z=%d", i, p.Z)
		}
		if p.BBox.LLx != wantLLx[i] || p.BBox.LLy != wantLLy[i] || p.BBox.URx-p.BBox.LLx != 10 {
			t.Errorf("primitive %d: unexpected bbox %v", i, p.BBox)
		}
		if !p.Rect {
			t.Errorf("primitive %d: not recognised as a rectangle", i)
		}
	}
}

func TestBaseTransform(t *testing.T) {
	ops := []Op{
		SetTransform{M: matrix.Matrix{1, 0, 0, 1, 10, 10}},
		Fill{Path: Rectangle(0, 0, 10, 10)},
	}
	s := NewBuilder(nil).Build(ops, matrix.Matrix{2, 0, 0, 2, 0, 0}, 100, 100)
	if len(s.Prims) != 1 {
		t.Fatalf("got %d primitives", len(s.Prims))
	}
	b := s.Prims[0].BBox
	if b.LLx != 20 || b.LLy != 20 || b.URx != 40 || b.URy != 40 {
		t.Errorf("got bbox %v, want [20,40]x[20,40]", b)
	}
}

func TestDroppedOps(t *testing.T) {
	line := Polygon(vec.Vec2{X: 0, Y: 5}, vec.Vec2{X: 10, Y: 5}, vec.Vec2{X: 20, Y: 5})
	s := buildOps(
		Fill{Path: Rectangle(0, 0, 10, 10)},
		Save{},
		Transform{M: matrix.Matrix{0, 0, 0, 1, 0, 0}},
		Fill{Path: Rectangle(0, 0, 10, 10)},
		Restore{},
		Fill{Path: line},
		Stroke{Path: line, Style: StrokeStyle{Width: -1}},
		Fill{Path: Rectangle(20, 20, 30, 30)},
	)
	if len(s.Prims) != 2 {
		t.Errorf("got %d primitives, want 2", len(s.Prims))
	}
	want := []struct {
		op  int
		err error
	}{
		{3, ErrDegenerateTransform},
		{5, ErrEmptyPath},
		{6, ErrInvalidStroke},
	}
	if len(s.Diagnostics) != len(want) {
		t.Fatalf("got %d diagnostics, want %d", len(s.Diagnostics), len(want))
	}
	for i, w := range want {
		d := s.Diagnostics[i]
		if d.Op != w.op || !errors.Is(d.Err, w.err) {
			t.Errorf("diagnostic %d: got op %d %v, want op %d %v", i, d.Op, d.Err, w.op, w.err)
		}
	}
}

func TestTransparentSkipped(t *testing.T) {
	s := buildOps(
		SetPaint{Paint: Transparent},
		Fill{Path: Rectangle(0, 0, 10, 10)},
		SetPaint{Paint: Color{R: 1, A: 0.5}},
		Fill{Path: Rectangle(0, 0, 10, 10)},
	)
	if len(s.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics %v", s.Diagnostics)
	}
	if len(s.Prims) != 1 || s.Prims[0].Z != 0 {
		t.Fatalf("got %d primitives, want 1", len(s.Prims))
	}
	if s.Prims[0].Brush.IsOpaque() {
		t.Error("half transparent brush reported as opaque")
	}
}

func TestClipChain(t *testing.T) {
	s := buildOps(
		SetClip{Path: Rectangle(10, 10, 60, 60)},
		Save{},
		SetClip{Path: Rectangle(40, 40, 90, 90)},
		Fill{Path: Rectangle(0, 0, 100, 100)},
		Restore{},
		Fill{Path: Rectangle(0, 0, 100, 100)},
		SetClip{Path: Rectangle(70, 70, 80, 80)},
		Fill{Path: Rectangle(0, 0, 100, 100)},
	)
	if len(s.Clips) != 3 || len(s.Prims) != 3 {
		t.Fatalf("got %d clips and %d primitives", len(s.Clips), len(s.Prims))
	}

	if got := s.ClipChain(s.Prims[0].Clip); len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("nested clip chain %v", got)
	}
	b := s.Clip(2).BBox
	if b.LLx != 40 || b.URx != 60 {
		t.Errorf("nested clip bbox %v", b)
	}
	if s.Prims[1].Clip != 1 {
		t.Errorf("clip not restored: %d", s.Prims[1].Clip)
	}
	if c := s.Clip(s.Prims[2].Clip); !IsEmpty(c.BBox) {
		t.Errorf("disjoint clips give bbox %v", c.BBox)
	}
	if s.Clip(0) != nil {
		t.Error("clip 0 should be nil")
	}
}

func TestCircleFlatness(t *testing.T) {
	for _, flatness := range []float64{1, 0.25, 0.05} {
		b := NewBuilder(&Options{Flatness: flatness})
		s := b.Build([]Op{Fill{Path: Circle(50, 50, 40)}}, matrix.Identity, 100, 100)
		if len(s.Prims) != 1 {
			t.Fatalf("got %d primitives", len(s.Prims))
		}
		for _, e := range s.Prims[0].Edges {
			mx, my := (e.X0+e.X1)/2-50, (e.Y0+e.Y1)/2-50
			// the Bézier approximation itself is off by up to 0.03%
			if d := 40 - math.Hypot(mx, my); d > flatness+0.02 || d < -0.02 {
				t.Errorf("flatness %g: edge midpoint off by %g", flatness, d)
				break
			}
		}
	}
}

func TestGlyph(t *testing.T) {
	f, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		t.Fatal(err)
	}
	g, err := LoadGlyph(f, nil, 'H', 20)
	if err != nil {
		t.Fatal(err)
	}
	if g.Advance <= 0 || g.Advance > 20 {
		t.Errorf("unexpected advance %g", g.Advance)
	}

	s := buildOps(DrawGlyph{Outline: g.Outline, M: matrix.Matrix{1, 0, 0, 1, 10, 50}})
	if len(s.Prims) != 1 || s.Prims[0].Kind != KindGlyph {
		t.Fatalf("glyph not drawn")
	}
	b := s.Prims[0].BBox
	// the glyph sits on the baseline at y=50, with the cap height above it
	if b.URy > 50.5 || b.LLy > 40 || b.LLy < 30 || b.LLx < 10 || b.URx > 10+g.Advance {
		t.Errorf("unexpected glyph bbox %v", b)
	}
}
