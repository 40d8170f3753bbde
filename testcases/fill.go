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

package testcases

import (
	"math"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pagerender/scene"
)

var fillCases = []Case{
	{
		Name:   "triangle_nonzero",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Polygon(pt(10, 50), pt(32, 10), pt(54, 50)), scene.NonZero),
	},
	{
		Name:   "star_nonzero",
		Width:  64,
		Height: 64,
		Ops:    fill(star(32, 32, 25), scene.NonZero),
	},
	{
		Name:   "star_evenodd",
		Width:  64,
		Height: 64,
		Ops:    fill(star(32, 32, 25), scene.EvenOdd),
	},
	{
		Name:   "rectangle",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Rectangle(10, 10, 54, 54), scene.NonZero),
	},
	{
		// same orientation: the inner square is filled with nonzero
		Name:   "nested_nonzero",
		Width:  64,
		Height: 64,
		Ops: fill(scene.Compound(
			scene.Rectangle(8, 8, 56, 56),
			scene.Rectangle(20, 20, 44, 44),
		), scene.NonZero),
	},
	{
		Name:   "nested_evenodd",
		Width:  64,
		Height: 64,
		Ops: fill(scene.Compound(
			scene.Rectangle(8, 8, 56, 56),
			scene.Rectangle(20, 20, 44, 44),
		), scene.EvenOdd),
	},
	{
		// opposite orientation: a hole for both fill rules
		Name:   "hole_nonzero",
		Width:  64,
		Height: 64,
		Ops: fill(scene.Compound(
			scene.Rectangle(8, 8, 56, 56),
			scene.Polygon(pt(20, 20), pt(20, 44), pt(44, 44), pt(44, 20)),
		), scene.NonZero),
	},
	{
		// the fill closes open subpaths implicitly
		Name:   "open_subpath",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Polyline(pt(10, 10), pt(54, 10), pt(32, 54)), scene.NonZero),
	},
	{
		Name:   "disjoint_subpaths",
		Width:  64,
		Height: 64,
		Ops: fill(scene.Compound(
			scene.Polygon(pt(4, 4), pt(28, 4), pt(16, 28)),
			scene.Polygon(pt(36, 36), pt(60, 36), pt(48, 60)),
			scene.Rectangle(40, 8, 56, 24),
		), scene.NonZero),
	},
	{
		Name:   "bowtie",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Polygon(pt(8, 8), pt(56, 56), pt(56, 8), pt(8, 56)), scene.NonZero),
	},
	{
		Name:   "spiral_winding",
		Width:  64,
		Height: 64,
		Ops:    fill(windings(32, 32, 26, 3), scene.NonZero),
	},
	{
		Name:   "spiral_evenodd",
		Width:  64,
		Height: 64,
		Ops:    fill(windings(32, 32, 26, 3), scene.EvenOdd),
	},
}

// star returns a self-intersecting five-pointed star, drawn by
// connecting every second vertex of a regular pentagon.
func star(cx, cy, r float64) path.Path {
	pts := make([]vec.Vec2, 5)
	for i := range pts {
		k := (2 * i) % 5
		phi := float64(k)*2*math.Pi/5 - math.Pi/2
		pts[i] = pt(cx+r*math.Cos(phi), cy+r*math.Sin(phi))
	}
	return scene.Polygon(pts...)
}

// windings returns a polygon which circles the centre n times, with the
// radius shrinking on every turn.
func windings(cx, cy, r float64, n int) path.Path {
	const steps = 24
	pts := make([]vec.Vec2, 0, n*steps)
	for i := range n * steps {
		phi := float64(i) * 2 * math.Pi / steps
		rr := r * (1 - 0.25*float64(i/steps))
		pts = append(pts, pt(cx+rr*math.Cos(phi), cy+rr*math.Sin(phi)))
	}
	return scene.Polygon(pts...)
}
