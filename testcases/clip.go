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

var clipCases = []Case{
	{
		Name:   "clip_rect",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetClip{Path: scene.Rectangle(16, 16, 48, 48)},
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Circle(32, 32, 26)},
		},
	},
	{
		Name:   "clip_circle",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetClip{Path: scene.Circle(32, 32, 20)},
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Rectangle(0, 0, 40, 40)},
		},
	},
	{
		Name:   "clip_evenodd",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetClip{Path: scene.Compound(
				scene.Rectangle(8, 8, 56, 56),
				scene.Rectangle(20, 20, 44, 44),
			), Rule: scene.EvenOdd},
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Rectangle(0, 0, 64, 64)},
		},
	},
	{
		// the visible region is the intersection of both clips
		Name:   "clip_nested",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetClip{Path: scene.Rectangle(0, 0, 40, 64)},
			scene.SetClip{Path: scene.Rectangle(24, 0, 64, 64)},
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Circle(32, 32, 28)},
		},
	},
	{
		// Restore removes the clip set after Save
		Name:   "clip_restore",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Black},
			scene.Save{},
			scene.SetClip{Path: scene.Rectangle(0, 0, 32, 32)},
			scene.Fill{Path: scene.Circle(32, 32, 24)},
			scene.Restore{},
			scene.SetPaint{Paint: scene.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}},
			scene.Fill{Path: scene.Rectangle(40, 40, 60, 60)},
		},
	},
	{
		// the clip path is transformed by the CTM in effect when it is set
		Name:   "clip_rotated",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.Transform{M: matrix.Translate(-16, -16).RotateDeg(45).Translate(32, 32)},
			scene.SetClip{Path: scene.Rectangle(0, 0, 32, 32)},
			scene.SetTransform{M: matrix.Identity},
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Rectangle(0, 0, 64, 64)},
		},
	},
	{
		// a clip which is empty hides everything drawn afterwards
		Name:   "clip_empty",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetClip{Path: scene.Rectangle(0, 0, 20, 20)},
			scene.SetClip{Path: scene.Rectangle(40, 40, 60, 60)},
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Rectangle(0, 0, 64, 64)},
		},
	},
}
