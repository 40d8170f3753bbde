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

// Package testcases provides example pages which exercise the features of
// the renderer.  The cases are used by the tests, by the benchmarks, and
// by the pagerender command, which renders them to PNG and PDF files for
// visual comparison with other renderers.
package testcases

import (
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
	"seehuhn.de/go/pagerender/schedule"
)

// Case is a single test page.
type Case struct {
	Name   string // lowercase a-z, digits and _ only
	Width  int    // page width, in pixels at zoom 1
	Height int    // page height, in pixels at zoom 1
	Ops    []scene.Op
}

// Page returns the page described by the test case.
func (c Case) Page() *schedule.Page {
	return &schedule.Page{
		Width:  float64(c.Width),
		Height: float64(c.Height),
		Ops:    c.Ops,
	}
}

// Pages returns a document containing the given cases, one per page.
func Pages(cases []Case) schedule.Pages {
	res := make(schedule.Pages, len(cases))
	for i, c := range cases {
		res[i] = c.Page()
	}
	return res
}

// fill returns the operations to fill p in black.
func fill(p path.Path, rule scene.FillRule) []scene.Op {
	return []scene.Op{
		scene.SetPaint{Paint: scene.Black},
		scene.Fill{Path: p, Rule: rule},
	}
}

// stroke returns the operations to stroke p in black.
func stroke(p path.Path, style scene.StrokeStyle) []scene.Op {
	return []scene.Op{
		scene.SetStrokePaint{Paint: scene.Black},
		scene.Stroke{Path: p, Style: style},
	}
}

// line returns a stroke style with the given width, cap and join, and the
// default miter limit.
func line(width float64, cp graphics.LineCapStyle, join graphics.LineJoinStyle) scene.StrokeStyle {
	return scene.StrokeStyle{
		Width:      width,
		Cap:        cp,
		Join:       join,
		MiterLimit: scene.DefaultMiterLimit,
	}
}

func pt(x, y float64) vec.Vec2 {
	return vec.Vec2{X: x, Y: y}
}
