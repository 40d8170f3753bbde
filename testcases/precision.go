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
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
)

var precisionCases = []Case{
	subpixel(0), subpixel(0.25), subpixel(0.5), subpixel(0.75),
	{
		Name:   "thin_line_y_integer",
		Width:  64,
		Height: 64,
		Ops:    stroke(scene.Polyline(pt(5, 10), pt(59, 10)), line(1, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		// centred on a pixel row: exactly one row is covered
		Name:   "thin_line_y_half",
		Width:  64,
		Height: 64,
		Ops:    stroke(scene.Polyline(pt(5, 10.5), pt(59, 10.5)), line(1, graphics.LineCapButt, graphics.LineJoinMiter)),
	},
	{
		// a shape far away from the origin, moved back by the CTM
		Name:   "large_coord",
		Width:  64,
		Height: 64,
		Ops: append([]scene.Op{scene.Transform{M: matrix.Translate(-1e4+32, -1e4+32)}},
			fill(scene.Rectangle(1e4-10, 1e4-10, 1e4+10, 1e4+10), scene.NonZero)...),
	},
	{
		Name:   "tiny_triangle",
		Width:  16,
		Height: 16,
		Ops:    fill(scene.Polygon(pt(7.2, 7.1), pt(8.6, 7.4), pt(7.5, 8.8)), scene.NonZero),
	},
	{
		// nearly horizontal edge spanning the whole width
		Name:   "shallow_slope",
		Width:  128,
		Height: 32,
		Ops:    fill(scene.Polygon(pt(0, 10), pt(128, 12), pt(128, 22), pt(0, 20)), scene.NonZero),
	},
	{
		Name:   "float64_precision",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Rectangle(22.123456789012345, 22.123456789012345, 42.123456789012346, 42.123456789012346), scene.NonZero),
	},
	{
		// edges exactly on tile boundaries
		Name:   "tile_aligned",
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Rectangle(16, 16, 48, 48), scene.NonZero),
	},
}

// subpixel returns a 4×4 square at (20, 20), shifted by offset pixels in
// both directions.
func subpixel(offset float64) Case {
	x := 20 + offset
	return Case{
		Name:   fmt.Sprintf("subpixel_offset_%02d", int(offset*100)),
		Width:  64,
		Height: 64,
		Ops:    fill(scene.Rectangle(x, x, x+4, x+4), scene.NonZero),
	}
}
