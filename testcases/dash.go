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
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/pdf/graphics"

	"seehuhn.de/go/pagerender/scene"
)

var (
	dashLine   = scene.Polyline(pt(5, 32), pt(59, 32))
	dashCorner = scene.Polyline(pt(8, 52), pt(32, 12), pt(56, 52))
	dashSquare = scene.Rectangle(12, 12, 52, 52)
)

var dashCases = []Case{
	dashed("single_element", dashLine, 4, graphics.LineCapButt, 0, 10),
	dashed("three_element", dashLine, 4, graphics.LineCapButt, 0, 5, 3, 8),
	dashed("long_short", dashLine, 4, graphics.LineCapButt, 0, 20, 2),
	dashed("short_long", dashLine, 4, graphics.LineCapButt, 0, 2, 20),
	dashed("equal", dashLine, 4, graphics.LineCapButt, 0, 10, 10),
	dashed("many_elements", dashLine, 4, graphics.LineCapButt, 0, 2, 2, 6, 2, 2, 10),

	dashed("phase_half", dashLine, 4, graphics.LineCapButt, 5, 10, 10),
	dashed("phase_pattern_len", dashLine, 4, graphics.LineCapButt, 20, 10, 10),
	dashed("phase_negative", dashLine, 4, graphics.LineCapButt, -5, 10, 10),
	dashed("phase_large", dashLine, 4, graphics.LineCapButt, 1005, 10, 10),

	// zero-length dashes only show with round or square caps
	dashed("zero_round", dashLine, 6, graphics.LineCapRound, 0, 0, 10),
	dashed("zero_butt", dashLine, 6, graphics.LineCapButt, 0, 0, 10),
	dashed("zero_square", dashLine, 6, graphics.LineCapSquare, 0, 0, 10),

	dashed("corner_in_dash", dashCorner, 4, graphics.LineCapButt, 0, 60, 5),
	dashed("corner_in_gap", dashCorner, 4, graphics.LineCapButt, 0, 40, 20),
	dashed("multi_corner", scene.Polyline(pt(6, 48), pt(18, 16), pt(30, 48), pt(42, 16), pt(58, 48)),
		3, graphics.LineCapRound, 0, 12, 4),
	dashed("overlap_caps", dashLine, 6, graphics.LineCapSquare, 0, 4, 2),

	dashed("closed_square", dashSquare, 4, graphics.LineCapButt, 0, 12, 6),
	// the pattern wraps around exactly, so the first and last dash join
	dashed("closed_join", dashSquare, 4, graphics.LineCapButt, 0, 20, 20),
	dashed("closed_round", scene.Circle(32, 32, 22), 4, graphics.LineCapRound, 0, 8, 6),
}

func dashed(name string, p path.Path, width float64, cp graphics.LineCapStyle, phase float64, pattern ...float64) Case {
	style := line(width, cp, graphics.LineJoinMiter)
	style.Dash = pattern
	style.DashPhase = phase
	return Case{
		Name:   "dash_" + name,
		Width:  64,
		Height: 64,
		Ops:    stroke(p, style),
	}
}
