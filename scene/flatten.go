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
	"math"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

const (
	// DefaultFlatness is the default curve tolerance in device pixels.
	DefaultFlatness = 0.25

	// horizontalEdgeThreshold is the minimum vertical extent for an edge
	// to contribute coverage.
	horizontalEdgeThreshold = 1e-10

	// maxCurveSegments bounds the number of lines a single curve is split
	// into, so that absurd control points cannot exhaust memory.
	maxCurveSegments = 4096
)

// polyline is one flattened subpath in user space.
type polyline struct {
	pts    []vec.Vec2
	closed bool
}

// flattener converts paths into polylines.  The tolerance is measured in
// device space, using the linear part of ctm.
type flattener struct {
	ctm      matrix.Matrix
	flatness float64
}

// flatten walks the path and returns its subpaths.  Subpaths which consist
// of a single point are kept, since stroking turns them into dots.
// Subpaths without any drawing command are dropped.
func (f *flattener) flatten(p path.Path) []polyline {
	var res []polyline
	var cur *polyline
	var start vec.Vec2
	drawn := false

	finish := func() {
		if cur != nil && drawn {
			res = append(res, *cur)
		}
		cur = nil
		drawn = false
	}

	for cmd, pts := range p {
		switch cmd {
		case path.CmdMoveTo:
			finish()
			start = pts[0]
			cur = &polyline{pts: []vec.Vec2{start}}

		case path.CmdLineTo:
			if cur == nil {
				continue
			}
			drawn = true
			cur.pts = append(cur.pts, pts[0])

		case path.CmdQuadTo:
			if cur == nil {
				continue
			}
			drawn = true
			p0 := cur.pts[len(cur.pts)-1]
			cur.pts = f.flattenQuadratic(cur.pts, p0, pts[0], pts[1])

		case path.CmdCubeTo:
			if cur == nil {
				continue
			}
			drawn = true
			p0 := cur.pts[len(cur.pts)-1]
			cur.pts = f.flattenCubic(cur.pts, p0, pts[0], pts[1], pts[2])

		case path.CmdClose:
			if cur == nil {
				continue
			}
			drawn = true
			cur.closed = true
			finish()
			// a drawing command after ClosePath starts a new subpath at
			// the old start point
			cur = &polyline{pts: []vec.Vec2{start}}
		}
	}
	finish()
	return res
}

// flattenQuadratic appends the flattened quadratic Bézier p0-p1-p2 to dst,
// omitting p0.
func (f *flattener) flattenQuadratic(dst []vec.Vec2, p0, p1, p2 vec.Vec2) []vec.Vec2 {
	// error vector e = (P0 - 2*P1 + P2) / 4, measured in device space
	e := applyLinear(f.ctm, p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25))

	n := 1
	if errDev := e.Length(); errDev > f.flatness {
		n = segmentCount(math.Sqrt(errDev / f.flatness))
	}

	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		dst = append(dst, p0.Mul(omt*omt).Add(p1.Mul(2*omt*t)).Add(p2.Mul(t*t)))
	}
	return dst
}

// flattenCubic appends the flattened cubic Bézier p0-p1-p2-p3 to dst,
// omitting p0.  The segment count follows Wang's formula.
func (f *flattener) flattenCubic(dst []vec.Vec2, p0, p1, p2, p3 vec.Vec2) []vec.Vec2 {
	d1 := applyLinear(f.ctm, p0.Sub(p1.Mul(2)).Add(p2))
	d2 := applyLinear(f.ctm, p1.Sub(p2.Mul(2)).Add(p3))

	n := 1
	if m := max(d1.Length(), d2.Length()); m > 0 {
		n = segmentCount(math.Sqrt(3 * m / (4 * f.flatness)))
	}

	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		omt2 := omt * omt
		t2 := t * t
		pt := p0.Mul(omt2 * omt).
			Add(p1.Mul(3 * omt2 * t)).
			Add(p2.Mul(3 * omt * t2)).
			Add(p3.Mul(t2 * t))
		dst = append(dst, pt)
	}
	return dst
}

func segmentCount(x float64) int {
	if !(x > 1) {
		return 1
	}
	if x > maxCurveSegments {
		return maxCurveSegments
	}
	return int(math.Ceil(x))
}

// edgeList collects device-space edges.
type edgeList struct {
	edges []Edge
}

// addLine adds the device-space line from p to q.  Horizontal lines are
// dropped, since they never change the winding number.
func (l *edgeList) addLine(p, q vec.Vec2) {
	dy := q.Y - p.Y
	if dy > -horizontalEdgeThreshold && dy < horizontalEdgeThreshold {
		return
	}
	l.edges = append(l.edges, Edge{X0: p.X, Y0: p.Y, X1: q.X, Y1: q.Y})
}

// addPolygon adds the closed polygon through the given user-space points,
// mapped to device space by m.
func (l *edgeList) addPolygon(pts []vec.Vec2, m matrix.Matrix) {
	if len(pts) < 2 {
		return
	}
	first := apply(m, pts[0])
	prev := first
	for _, p := range pts[1:] {
		q := apply(m, p)
		l.addLine(prev, q)
		prev = q
	}
	l.addLine(prev, first)
}

// fillEdges flattens p under ctm and returns the device-space edges of the
// filled region.  Open subpaths are closed implicitly.
func fillEdges(p path.Path, ctm matrix.Matrix, flatness float64) []Edge {
	f := flattener{ctm: ctm, flatness: flatness}
	var l edgeList
	for _, sp := range f.flatten(p) {
		l.addPolygon(sp.pts, ctm)
	}
	return l.edges
}
