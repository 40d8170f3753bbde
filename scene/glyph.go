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
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

// Glyph is a decoded glyph outline, ready to be drawn with [DrawGlyph].
type Glyph struct {
	Outline path.Path
	Advance float64
}

// LoadGlyph decodes the outline of the glyph for r at the given font size.
// The outline is given in pixels at size pixels per em, in a y-down
// coordinate system with the origin on the baseline.
func LoadGlyph(f *sfnt.Font, buf *sfnt.Buffer, r rune, size float64) (Glyph, error) {
	if buf == nil {
		buf = &sfnt.Buffer{}
	}
	gid, err := f.GlyphIndex(buf, r)
	if err != nil {
		return Glyph{}, fmt.Errorf("glyph for %q: %w", r, err)
	}
	ppem := fixed.Int26_6(size * 64)
	segs, err := f.LoadGlyph(buf, gid, ppem, nil)
	if err != nil {
		return Glyph{}, fmt.Errorf("glyph for %q: %w", r, err)
	}
	adv, err := f.GlyphAdvance(buf, gid, ppem, font.HintingNone)
	if err != nil {
		return Glyph{}, fmt.Errorf("advance for %q: %w", r, err)
	}
	return Glyph{
		Outline: GlyphPath(segs),
		Advance: fromFixed(adv),
	}, nil
}

// GlyphPath converts outline segments from an sfnt font into a path.
// Every contour is closed.
func GlyphPath(segs sfnt.Segments) path.Path {
	// copy, since sfnt reuses the buffer for the next glyph
	segs = append(sfnt.Segments(nil), segs...)
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var pts [3]vec.Vec2
		open := false
		for _, seg := range segs {
			for i := range pts {
				pts[i] = vec.Vec2{X: fromFixed(seg.Args[i].X), Y: fromFixed(seg.Args[i].Y)}
			}
			var ok bool
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				if open && !yield(path.CmdClose, nil) {
					return
				}
				open = true
				ok = yield(path.CmdMoveTo, pts[:1])
			case sfnt.SegmentOpLineTo:
				ok = yield(path.CmdLineTo, pts[:1])
			case sfnt.SegmentOpQuadTo:
				ok = yield(path.CmdQuadTo, pts[:2])
			case sfnt.SegmentOpCubeTo:
				ok = yield(path.CmdCubeTo, pts[:3])
			default:
				ok = true
			}
			if !ok {
				return
			}
		}
		if open {
			yield(path.CmdClose, nil)
		}
	}
}

func fromFixed(x fixed.Int26_6) float64 {
	return float64(x) / 64
}
