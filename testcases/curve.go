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
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
)

var curveCases = []Case{
	{
		Name:   "quadratic",
		Width:  64,
		Height: 64,
		Ops:    fill(quad(true, pt(8, 52), pt(32, -4), pt(56, 52)), scene.NonZero),
	},
	{
		Name:   "quadratic_s_shape",
		Width:  64,
		Height: 64,
		Ops: stroke(quad(false, pt(8, 32), pt(20, 4), pt(32, 32), pt(44, 60), pt(56, 32)),
			line(3, graphics.LineCapRound, graphics.LineJoinRound)),
	},
	{
		Name:   "cubic",
		Width:  64,
		Height: 64,
		Ops:    fill(cubic(true, pt(8, 52), pt(8, 4), pt(56, 4), pt(56, 52)), scene.NonZero),
	},
	{
		Name:   "cubic_scurve",
		Width:  64,
		Height: 64,
		Ops: stroke(cubic(false, pt(8, 52), pt(60, 52), pt(4, 12), pt(56, 12)),
			line(4, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "cubic_loop",
		Width:  64,
		Height: 64,
		Ops:    fill(cubic(true, pt(10, 40), pt(70, 0), pt(-6, 0), pt(54, 40)), scene.EvenOdd),
	},
	{
		Name:   "cubic_cusp",
		Width:  64,
		Height: 64,
		Ops: stroke(cubic(false, pt(8, 52), pt(56, 8), pt(8, 8), pt(56, 52)),
			line(3, graphics.LineCapButt, graphics.LineJoinRound)),
	},
	{
		// all control points on one line
		Name:   "cubic_degenerate",
		Width:  64,
		Height: 64,
		Ops: stroke(cubic(false, pt(8, 32), pt(24, 32), pt(40, 32), pt(56, 32)),
			line(4, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "circle",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Circle(32, 32, 24), scene.NonZero),
	},
	{
		Name:   "circle_stroked",
		Width:  64,
		Height: 64,
		Ops:    stroke(scene.Circle(32, 32, 22), line(4, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "circle_small",
		Width:  16,
		Height: 16,
		Ops:    fill(scene.Circle(8, 8, 2.5), scene.NonZero),
	},
	{
		Name:   "circle_large",
		Width:  512,
		Height: 512,
		Ops:    fill(scene.Circle(256, 256, 240), scene.NonZero),
	},
	{
		Name:   "ellipse",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Ellipse(32, 32, 28, 14), scene.NonZero),
	},
	{
		Name:   "ring",
		Width:  64,
		Height: 64,
		Ops: fill(scene.Compound(
			scene.Circle(32, 32, 28),
			scene.Circle(32, 32, 18),
		), scene.EvenOdd),
	},
	{
		Name:   "arc",
		Width:  64,
		Height: 64,
		Ops:    stroke(arc(32, 40, 22, math.Pi, 2*math.Pi), line(5, graphics.LineCapRound, graphics.LineJoinMiter)),
	},
}

// quad returns a path of quadratic Bézier segments.  The points are the
// start point followed by (control, end) pairs.
func quad(closed bool, pts ...vec.Vec2) path.Path {
	return curve(path.CmdQuadTo, 2, closed, pts)
}

// cubic returns a path of cubic Bézier segments.  The points are the start
// point followed by (control, control, end) triples.
func cubic(closed bool, pts ...vec.Vec2) path.Path {
	return curve(path.CmdCubeTo, 3, closed, pts)
}

func curve(cmd path.Command, n int, closed bool, pts []vec.Vec2) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if len(pts) == 0 || !yield(path.CmdMoveTo, pts[:1]) {
			return
		}
		for i := 1; i+n <= len(pts); i += n {
			if !yield(cmd, pts[i:i+n]) {
				return
			}
		}
		if closed {
			yield(path.CmdClose, nil)
		}
	}
}

// arc returns a circular arc from angle phi0 to phi1, approximated by
// cubic segments of at most 90 degrees each.
func arc(cx, cy, r, phi0, phi1 float64) path.Path {
	n := int(math.Ceil(math.Abs(phi1-phi0) / (math.Pi / 2)))
	n = max(n, 1)
	step := (phi1 - phi0) / float64(n)
	k := 4.0 / 3 * math.Tan(step/4) * r

	at := func(phi float64) vec.Vec2 {
		return pt(cx+r*math.Cos(phi), cy+r*math.Sin(phi))
	}
	tangent := func(phi float64) vec.Vec2 {
		return pt(-math.Sin(phi), math.Cos(phi))
	}

	pts := []vec.Vec2{at(phi0)}
	for i := range n {
		a := phi0 + float64(i)*step
		b := a + step
		pts = append(pts,
			at(a).Add(tangent(a).Mul(k)),
			at(b).Sub(tangent(b).Mul(k)),
			at(b))
	}
	return cubic(false, pts...)
}
