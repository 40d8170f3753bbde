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
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pagerender/scene"
)

var glyphCases = []Case{
	{
		Name:   "text",
		Width:  256,
		Height: 48,
		Ops:    text("Hamburgefonstiv", 24, 8, 32, matrix.Identity),
	},
	{
		Name:   "text_small",
		Width:  128,
		Height: 24,
		Ops:    text("The quick brown fox", 9, 4, 16, matrix.Identity),
	},
	{
		Name:   "text_large",
		Width:  256,
		Height: 160,
		Ops:    text("Ag", 128, 16, 128, matrix.Identity),
	},
	{
		Name:   "text_slanted",
		Width:  256,
		Height: 48,
		Ops:    text("Hamburgefonstiv", 24, 8, 32, matrix.Matrix{1, 0, -0.25, 1, 0, 0}),
	},
}

var goRegular = mustParse(goregular.TTF)

func mustParse(data []byte) *sfnt.Font {
	f, err := sfnt.Parse(data)
	if err != nil {
		panic(err)
	}
	return f
}

// text returns the operations to draw s in black, with the baseline
// starting at (x, y).  The matrix m is applied to every glyph before it is
// moved into place.
func text(s string, size, x, y float64, m matrix.Matrix) []scene.Op {
	var buf sfnt.Buffer
	ops := []scene.Op{scene.SetPaint{Paint: scene.Black}}
	for _, r := range s {
		g, err := scene.LoadGlyph(goRegular, &buf, r, size)
		if err != nil {
			panic(err)
		}
		if r != ' ' {
			ops = append(ops, scene.DrawGlyph{
				Outline: g.Outline,
				M:       m.Translate(x, y),
			})
		}
		x += g.Advance
	}
	return ops
}
