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
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
)

var ctmCases = []Case{
	transformed("scale_2x", 128, matrix.Scale(2, 2).Translate(24, 24),
		fill(scene.Rectangle(0, 0, 20, 20), scene.NonZero)),
	transformed("scale_half", 64, matrix.Scale(0.5, 0.5).Translate(12, 12),
		fill(scene.Rectangle(0, 0, 80, 80), scene.NonZero)),
	transformed("scale_10x", 128, matrix.Scale(10, 10).Translate(44, 44),
		fill(scene.Rectangle(0, 0, 4, 4), scene.NonZero)),
	transformed("rotate_45deg", 64, matrix.Translate(-12, -12).RotateDeg(45).Translate(32, 32),
		fill(scene.Rectangle(0, 0, 24, 24), scene.NonZero)),
	transformed("rotate_5deg", 64, matrix.Translate(-20, -10).RotateDeg(5).Translate(32, 32),
		fill(scene.Rectangle(0, 0, 40, 20), scene.NonZero)),
	transformed("scale_2x_1y", 64, matrix.Scale(2, 1).Translate(8, 16),
		fill(scene.Rectangle(0, 0, 24, 32), scene.NonZero)),
	transformed("circle_to_ellipse", 64, matrix.Scale(1.5, 0.75).Translate(32, 32),
		fill(scene.Circle(0, 0, 18), scene.NonZero)),
	transformed("shear_horizontal", 64, matrix.Matrix{1, 0, 0.5, 1, 8, 12},
		fill(scene.Rectangle(0, 0, 30, 40), scene.NonZero)),
	transformed("shear_and_rotate", 64, matrix.Matrix{1, 0.3, 0.3, 1, 0, 0}.RotateDeg(-20).Translate(14, 24),
		fill(scene.Rectangle(0, 0, 30, 30), scene.NonZero)),

	// stroke widths are measured in user space, so non-uniform scaling
	// changes the line width with the direction
	transformed("round_cap_nonuniform", 64, matrix.Scale(3, 1).Translate(8, 32),
		stroke(scene.Polyline(pt(4, 0), pt(12, 0)), line(8, graphics.LineCapRound, graphics.LineJoinMiter))),
	transformed("round_join_rotated", 64, matrix.RotateDeg(30).Translate(20, 8),
		stroke(scene.Polyline(pt(0, 0), pt(32, 0), pt(32, 32)), line(6, graphics.LineCapButt, graphics.LineJoinRound))),
	transformed("dash_scaled", 64, matrix.Scale(2, 2).Translate(4, 32),
		stroke(scene.Polyline(pt(0, 0), pt(28, 0)), scene.StrokeStyle{
			Width:      2,
			Cap:        graphics.LineCapButt,
			Join:       graphics.LineJoinMiter,
			MiterLimit: scene.DefaultMiterLimit,
			Dash:       []float64{4, 2},
		})),

	{
		// Save and Restore bracket the inner transformation
		Name:   "save_restore",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Black},
			scene.Transform{M: matrix.Translate(8, 8)},
			scene.Save{},
			scene.Transform{M: matrix.Scale(2, 2)},
			scene.Fill{Path: scene.Rectangle(0, 0, 10, 10)},
			scene.Restore{},
			scene.Fill{Path: scene.Rectangle(30, 30, 46, 46)},
		},
	},
	{
		Name:   "set_transform",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Black},
			scene.Transform{M: matrix.Scale(4, 4)},
			scene.SetTransform{M: matrix.Translate(20, 20)},
			scene.Fill{Path: scene.Rectangle(0, 0, 24, 24)},
		},
	},
	{
		// the singular transformation drops the first fill only
		Name:   "degenerate",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Black},
			scene.Save{},
			scene.Transform{M: matrix.Scale(0, 1)},
			scene.Fill{Path: scene.Rectangle(0, 0, 64, 64)},
			scene.Restore{},
			scene.Fill{Path: scene.Rectangle(16, 16, 48, 48)},
		},
	},
}

func transformed(name string, size int, m matrix.Matrix, ops []scene.Op) Case {
	return Case{
		Name:   name,
		Width:  size,
		Height: size,
		Ops:    append([]scene.Op{scene.Transform{M: m}}, ops...),
	}
}
