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
	"slices"

	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Rectangle returns a closed path around the rectangle with corners
// (x0, y0) and (x1, y1).
func Rectangle(x0, y0, x1, y1 float64) path.Path {
	return Polygon(
		vec.Vec2{X: x0, Y: y0},
		vec.Vec2{X: x1, Y: y0},
		vec.Vec2{X: x1, Y: y1},
		vec.Vec2{X: x0, Y: y1},
	)
}

// Polygon returns a closed path through the given points.
func Polygon(pts ...vec.Vec2) path.Path {
	return polyPath(slices.Clone(pts), true)
}

// Polyline returns an open path through the given points.
func Polyline(pts ...vec.Vec2) path.Path {
	return polyPath(slices.Clone(pts), false)
}

func polyPath(pts []vec.Vec2, closed bool) path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		if len(pts) == 0 {
			return
		}
		if !yield(path.CmdMoveTo, pts[:1]) {
			return
		}
		for i := 1; i < len(pts); i++ {
			if !yield(path.CmdLineTo, pts[i:i+1]) {
				return
			}
		}
		if closed {
			yield(path.CmdClose, nil)
		}
	}
}

// circleK is the control point distance for a quarter circle of radius 1.
const circleK = 0.5522847498307936

// Circle returns a closed path which approximates a circle by four cubic
// Bézier arcs.  The path runs clockwise on a y-down page.
func Circle(cx, cy, r float64) path.Path {
	return Ellipse(cx, cy, r, r)
}

// Ellipse returns a closed path which approximates an axis-aligned ellipse.
func Ellipse(cx, cy, rx, ry float64) path.Path {
	kx, ky := circleK*rx, circleK*ry
	return func(yield func(path.Command, []vec.Vec2) bool) {
		segs := [][]vec.Vec2{
			{{X: cx + rx, Y: cy}},
			{{X: cx + rx, Y: cy + ky}, {X: cx + kx, Y: cy + ry}, {X: cx, Y: cy + ry}},
			{{X: cx - kx, Y: cy + ry}, {X: cx - rx, Y: cy + ky}, {X: cx - rx, Y: cy}},
			{{X: cx - rx, Y: cy - ky}, {X: cx - kx, Y: cy - ry}, {X: cx, Y: cy - ry}},
			{{X: cx + kx, Y: cy - ry}, {X: cx + rx, Y: cy - ky}, {X: cx + rx, Y: cy}},
		}
		if !yield(path.CmdMoveTo, segs[0]) {
			return
		}
		for _, pts := range segs[1:] {
			if !yield(path.CmdCubeTo, pts) {
				return
			}
		}
		yield(path.CmdClose, nil)
	}
}

// Compound returns a path consisting of the subpaths of all given paths.
func Compound(paths ...path.Path) path.Path {
	paths = slices.Clone(paths)
	return func(yield func(path.Command, []vec.Vec2) bool) {
		for _, p := range paths {
			for cmd, pts := range p {
				if !yield(cmd, pts) {
					return
				}
			}
		}
	}
}
