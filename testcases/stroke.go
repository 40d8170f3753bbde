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
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
)

var (
	hline  = scene.Polyline(pt(10, 32), pt(54, 32))
	corner = scene.Polyline(pt(10, 50), pt(32, 14), pt(54, 50))
	sharp  = scene.Polyline(pt(8, 50), pt(32, 40), pt(56, 50))
	zigzag = scene.Polyline(pt(6, 48), pt(18, 16), pt(30, 48), pt(42, 16), pt(58, 48))
)

var strokeCases = []Case{
	{
		Name:   "line_butt",
		Width:  64,
		Height: 64,
		Ops:    stroke(hline, line(8, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "line_round",
		Width:  64,
		Height: 64,
		Ops:    stroke(hline, line(8, graphics.LineCapRound, graphics.LineJoinMiter)),
	},
	{
		Name:   "line_square",
		Width:  64,
		Height: 64,
		Ops:    stroke(hline, line(8, graphics.LineCapSquare, graphics.LineJoinMiter)),
	},
	{
		Name:   "corner_miter",
		Width:  64,
		Height: 64,
		Ops:    stroke(corner, line(6, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		Name:   "corner_round",
		Width:  64,
		Height: 64,
		Ops:    stroke(corner, line(6, graphics.LineCapButt, graphics.LineJoinRound)),
	},
	{
		Name:   "corner_bevel",
		Width:  64,
		Height: 64,
		Ops:    stroke(corner, line(6, graphics.LineCapButt, graphics.LineJoinBevel)),
	},
	{
		// the obtuse angle stays below the miter limit
		Name:   "miter_obtuse",
		Width:  64,
		Height: 64,
		Ops:    stroke(sharp, line(6, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		// the acute angles exceed a miter limit of 1.5 and become bevels
		Name:   "miter_limit",
		Width:  64,
		Height: 64,
		Ops: stroke(zigzag, scene.StrokeStyle{
			Width:      4,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: 1.5,
		}),
	},
	{
		Name:   "closed_square",
		Width:  64,
		Height: 64,
		Ops:    stroke(scene.Rectangle(14, 14, 50, 50), line(6, graphics.LineCapRound, graphics.LineJoinMiter)),
	},
	{
		Name:   "hairline",
		Width:  64,
		Height: 64,
		Ops:    stroke(zigzag, line(0, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		// a zero-length subpath with round caps draws a dot
		Name:   "dot_round",
		Width:  64,
		Height: 64,
		Ops:    stroke(scene.Polyline(pt(32, 32), pt(32, 32)), line(12, graphics.LineCapRound, graphics.LineJoinRound)),
	},
	{
		Name:   "fill_and_stroke",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Color{R: 0.6, G: 0.8, B: 1, A: 1}},
			scene.SetStrokePaint{Paint: scene.Black},
			scene.FillStroke{
				Path:  star(32, 32, 24),
				Rule:  scene.EvenOdd,
				Style: line(2, graphics.LineCapButt, graphics.LineJoinRound),
			},
		},
	},
}
