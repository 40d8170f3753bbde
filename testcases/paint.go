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
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pagerender/scene"
)

var (
	red  = scene.Color{R: 1, A: 1}
	blue = scene.Color{B: 1, A: 1}
)

// Overlap is an opaque red square partly covered by a half-transparent
// blue square, on a page of 800x600 pixels.
var Overlap = Case{
	Name:   "overlap",
	Width:  800,
	Height: 600,
	Ops: []scene.Op{
		scene.SetPaint{Paint: red},
		scene.Fill{Path: scene.Rectangle(100, 100, 200, 200)},
		scene.SetPaint{Paint: scene.Color{B: 1, A: 0.5}},
		scene.Fill{Path: scene.Rectangle(150, 150, 250, 250)},
	},
}

var paintCases = []Case{
	Overlap,
	{
		Name:   "alpha_stack",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Color{R: 1, A: 0.5}},
			scene.Fill{Path: scene.Circle(24, 24, 18)},
			scene.SetPaint{Paint: scene.Color{G: 1, A: 0.5}},
			scene.Fill{Path: scene.Circle(40, 24, 18)},
			scene.SetPaint{Paint: scene.Color{B: 1, A: 0.5}},
			scene.Fill{Path: scene.Circle(32, 40, 18)},
		},
	},
	{
		Name:   "linear_gradient",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: &scene.LinearGradient{
				P0:    pt(8, 0),
				P1:    pt(56, 0),
				Stops: []scene.Stop{{Offset: 0, Color: red}, {Offset: 1, Color: blue}},
			}},
			scene.Fill{Path: scene.Rectangle(4, 4, 60, 60)},
		},
	},
	{
		Name:   "linear_gradient_stops",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: &scene.LinearGradient{
				P0: pt(0, 8),
				P1: pt(0, 56),
				Stops: []scene.Stop{
					{Offset: 0, Color: scene.White},
					{Offset: 0.5, Color: scene.Color{R: 1, G: 0.8, A: 1}},
					{Offset: 1, Color: scene.Color{A: 0}},
				},
			}},
			scene.Fill{Path: scene.Circle(32, 32, 28)},
		},
	},
	{
		// gradient coordinates are in user space
		Name:   "linear_gradient_rotated",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.Transform{M: matrix.Translate(-24, -24).RotateDeg(30).Translate(32, 32)},
			scene.SetPaint{Paint: &scene.LinearGradient{
				P0:    pt(0, 0),
				P1:    pt(48, 0),
				Stops: []scene.Stop{{Offset: 0, Color: scene.Black}, {Offset: 1, Color: scene.White}},
			}},
			scene.Fill{Path: scene.Rectangle(0, 0, 48, 48)},
		},
	},
	{
		Name:   "radial_gradient",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: &scene.RadialGradient{
				Center: pt(32, 32),
				Radius: 28,
				Stops: []scene.Stop{
					{Offset: 0, Color: scene.Color{R: 1, G: 1, A: 1}},
					{Offset: 1, Color: scene.Color{R: 1, A: 0.2}},
				},
			}},
			scene.Fill{Path: scene.Rectangle(0, 0, 64, 64)},
		},
	},
	{
		Name:   "stroke_paint",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Color{G: 0.6, A: 1}},
			scene.SetStrokePaint{Paint: scene.Color{R: 0.8, G: 0.1, B: 0.1, A: 0.75}},
			scene.FillStroke{
				Path:  scene.Circle(32, 32, 20),
				Style: scene.StrokeStyle{Width: 8, MiterLimit: scene.DefaultMiterLimit},
			},
		},
	},
}
