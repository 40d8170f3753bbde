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
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
)

// largeCases span many tiles, so that every primitive is binned into a
// large number of tiles and most tiles are either fully covered or empty.
var largeCases = []Case{
	{
		Name:   "large_rectangle",
		Width:  512,
		Height: 512,
		Ops:    fill(scene.Rectangle(50, 50, 462, 462), scene.NonZero),
	},
	{
		Name:   "large_concentric_nonzero",
		Width:  512,
		Height: 512,
		Ops: fill(scene.Compound(
			scene.Rectangle(56, 56, 456, 456),
			scene.Rectangle(156, 156, 356, 356),
		), scene.NonZero),
	},
	{
		Name:   "large_concentric_evenodd",
		Width:  512,
		Height: 512,
		Ops: fill(scene.Compound(
			scene.Rectangle(56, 56, 456, 456),
			scene.Rectangle(156, 156, 356, 356),
		), scene.EvenOdd),
	},
	{
		Name:   "large_diamond",
		Width:  512,
		Height: 512,
		Ops:    fill(scene.Polygon(pt(256, 76), pt(436, 256), pt(256, 436), pt(76, 256)), scene.NonZero),
	},
	{
		Name:   "large_grid",
		Width:  512,
		Height: 512,
		Ops:    fill(grid(8, 8, 512, 512, 4), scene.NonZero),
	},
	{
		// extends beyond the page on both sides
		Name:   "large_overhang",
		Width:  512,
		Height: 512,
		Ops:    fill(scene.Rectangle(-100, 100, 612, 400), scene.NonZero),
	},
	{
		Name:   "large_many_strokes",
		Width:  512,
		Height: 512,
		Ops:    stroke(sunburst(256, 256, 20, 240, 180), line(1.5, graphics.LineCapRound, graphics.LineJoinRound)),
	},
	{
		// one page at A4 size in PDF units, as seen by a document viewer
		Name:   "large_page",
		Width:  595,
		Height: 842,
		Ops: append(
			fill(scene.Rectangle(72, 72, 523, 120), scene.NonZero),
			stroke(grid(20, 12, 451, 600, 2), line(0.5, graphics.LineCapButt, graphics.LineJoinMiter))...,
		),
	},
}

// grid returns a rows×cols grid of rectangles covering width×height,
// separated by the given gap.
func grid(rows, cols int, width, height, gap float64) path.Path {
	cw := width / float64(cols)
	ch := height / float64(rows)
	var cells []path.Path
	for row := range rows {
		for col := range cols {
			x := float64(col) * cw
			y := float64(row) * ch
			cells = append(cells, scene.Rectangle(x+gap, y+gap, x+cw-gap, y+ch-gap))
		}
	}
	return scene.Compound(cells...)
}

// sunburst returns n rays from radius r0 to radius r1 around (cx, cy).
func sunburst(cx, cy, r0, r1 float64, n int) path.Path {
	rays := make([]path.Path, n)
	for i := range rays {
		phi := float64(i) * 2 * math.Pi / float64(n)
		c, s := math.Cos(phi), math.Sin(phi)
		rays[i] = scene.Polyline(pt(cx+r0*c, cy+r0*s), pt(cx+r1*c, cy+r1*s))
	}
	return scene.Compound(rays...)
}
