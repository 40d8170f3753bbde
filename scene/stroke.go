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
	"seehuhn.de/go/pdf/graphics"
)

const (
	// DefaultMiterLimit is the PDF default miter limit.
	DefaultMiterLimit = 10.0

	zeroLengthThreshold   = 1e-10
	collinearityThreshold = 1e-6

	// cuspCosineThreshold detects segments which double back on
	// themselves.  Such corners get two caps instead of a join.
	cuspCosineThreshold = -0.9999
)

// StrokeStyle holds the line parameters of a stroke operation.
// All lengths are in user space units.
type StrokeStyle struct {
	// Width is the line width.  Zero selects the thinnest line which can
	// be rendered, one device pixel wide.
	Width float64

	Cap        graphics.LineCapStyle
	Join       graphics.LineJoinStyle
	MiterLimit float64

	// Dash lists alternating on/off lengths.  Nil means a solid line.
	Dash      []float64
	DashPhase float64
}

// DefaultStrokeStyle returns the PDF default line parameters.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{
		Width:      1,
		Cap:        graphics.LineCapButt,
		Join:       graphics.LineJoinMiter,
		MiterLimit: DefaultMiterLimit,
	}
}

// strokeSegment is a non-degenerate line segment of a flattened path.
type strokeSegment struct {
	A, B vec.Vec2
	T    vec.Vec2 // unit tangent, A→B
	N    vec.Vec2 // unit normal, T rotated by +90°
}

func newStrokeSegment(a, b vec.Vec2) (strokeSegment, bool) {
	d := b.Sub(a)
	length := d.Length()
	if length < zeroLengthThreshold {
		return strokeSegment{}, false
	}
	t := d.Mul(1 / length)
	return strokeSegment{A: a, B: b, T: t, N: normal(t)}, true
}

func normal(t vec.Vec2) vec.Vec2 {
	return vec.Vec2{X: -t.Y, Y: t.X}
}

func cross(a, b vec.Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

// stroker expands stroked paths into fill geometry.
//
// The outline is built as a union of simple polygons: one quadrilateral
// per segment, one wedge per outer join and one polygon per cap.  Every
// polygon is emitted with positive orientation, so that filling the
// combined edge list with the nonzero rule yields the union.  Polygons are
// constructed in user space and mapped to device space one vertex at a
// time, which makes the pen elliptical under non-uniform transforms.
type stroker struct {
	style    StrokeStyle
	ctm      matrix.Matrix // maps polygon vertices to device space
	flatness float64
	d        float64 // half the line width
	out      edgeList
	buf      []vec.Vec2
}

// strokeEdges returns the device-space fill geometry of the stroked path.
func strokeEdges(p path.Path, style StrokeStyle, ctm matrix.Matrix, flatness float64) ([]Edge, error) {
	if math.IsNaN(style.Width) || math.IsInf(style.Width, 0) || style.Width < 0 {
		return nil, ErrInvalidStroke
	}
	dash, err := normalizeDash(style.Dash)
	if err != nil {
		return nil, err
	}
	style.Dash = dash
	if !(style.MiterLimit >= 1) {
		style.MiterLimit = 1
	}

	f := flattener{ctm: ctm, flatness: flatness}
	lines := f.flatten(p)

	s := &stroker{
		style:    style,
		ctm:      ctm,
		flatness: flatness,
		d:        style.Width / 2,
	}
	scale := 1.0
	if style.Width == 0 {
		// hairline: stroke one device pixel wide, in device space
		for i := range lines {
			for j, pt := range lines[i].pts {
				lines[i].pts[j] = apply(ctm, pt)
			}
		}
		s.ctm = matrix.Identity
		s.d = 0.5
		scale = deviceScale(ctm)
	}

	for _, line := range lines {
		segs := subpathSegments(line)
		if len(segs) == 0 {
			if s.style.Cap == graphics.LineCapRound {
				s.addDot(line.pts[0])
			}
			continue
		}
		if len(s.style.Dash) == 0 {
			s.strokeRun(segs, line.closed)
			continue
		}
		pattern, phase := s.style.Dash, s.style.DashPhase
		if scale != 1 {
			pattern = make([]float64, len(s.style.Dash))
			for i, x := range s.style.Dash {
				pattern[i] = x * scale
			}
			phase *= scale
		}
		for _, run := range applyDash(segs, line.closed, pattern, phase) {
			if len(run.segs) == 1 && run.segs[0].A == run.segs[0].B {
				s.addZeroLengthDash(run.segs[0])
				continue
			}
			s.strokeRun(run.segs, run.closed)
		}
	}
	return s.out.edges, nil
}

// normalizeDash returns nil for a solid line.
func normalizeDash(dash []float64) ([]float64, error) {
	if len(dash) == 0 {
		return nil, nil
	}
	total := 0.0
	for _, x := range dash {
		if x < 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, ErrInvalidStroke
		}
		total += x
	}
	if total == 0 {
		return nil, nil
	}
	return dash, nil
}

// deviceScale returns the geometric mean scale factor of m, used to
// convert user space dash lengths for hairlines.
func deviceScale(m matrix.Matrix) float64 {
	return math.Sqrt(math.Abs(m[0]*m[3] - m[1]*m[2]))
}

// subpathSegments converts a polyline into stroke segments, dropping
// zero-length pieces.  For closed subpaths the closing segment is added.
func subpathSegments(line polyline) []strokeSegment {
	var segs []strokeSegment
	for i := 1; i < len(line.pts); i++ {
		if seg, ok := newStrokeSegment(line.pts[i-1], line.pts[i]); ok {
			segs = append(segs, seg)
		}
	}
	if line.closed && len(line.pts) > 1 {
		if seg, ok := newStrokeSegment(line.pts[len(line.pts)-1], line.pts[0]); ok {
			segs = append(segs, seg)
		}
	}
	return segs
}

// strokeRun adds the outline of a connected sequence of segments.
func (s *stroker) strokeRun(segs []strokeSegment, closed bool) {
	d := s.d
	for _, seg := range segs {
		s.addPiece(
			seg.A.Add(seg.N.Mul(d)),
			seg.B.Add(seg.N.Mul(d)),
			seg.B.Sub(seg.N.Mul(d)),
			seg.A.Sub(seg.N.Mul(d)),
		)
	}
	for i := 1; i < len(segs); i++ {
		s.addJoin(segs[i].A, segs[i-1].T, segs[i].T)
	}
	if closed {
		last := segs[len(segs)-1]
		s.addJoin(segs[0].A, last.T, segs[0].T)
	} else {
		s.addCap(segs[0].A, segs[0].T.Mul(-1))
		s.addCap(segs[len(segs)-1].B, segs[len(segs)-1].T)
	}
}

// addJoin adds the join geometry on the outer side of the corner at P,
// where the tangent turns from T1 to T2.
func (s *stroker) addJoin(P, T1, T2 vec.Vec2) {
	cosTheta := T1.Dot(T2)
	sinTheta := cross(T1, T2)

	if cosTheta < cuspCosineThreshold {
		s.addCap(P, T1)
		s.addCap(P, T2.Mul(-1))
		return
	}
	if math.Abs(sinTheta) < collinearityThreshold {
		return
	}

	// the outer side is opposite to the direction of the turn
	side := 1.0
	if sinTheta > 0 {
		side = -1
	}
	d := s.d
	n1 := normal(T1).Mul(side)
	n2 := normal(T2).Mul(side)
	a := P.Add(n1.Mul(d))
	b := P.Add(n2.Mul(d))

	switch s.style.Join {
	case graphics.LineJoinRound:
		sweep := math.Acos(max(-1, min(1, cosTheta)))
		if cross(n1, n2) < 0 {
			sweep = -sweep
		}
		s.buf = append(s.buf[:0], P)
		s.buf = s.arcPoints(s.buf, P, n1, sweep)
		s.addPiece(s.buf...)
		return

	case graphics.LineJoinMiter:
		// The miter length ratio is 1/sin(φ/2) for the corner angle φ,
		// and sin(φ/2) = cos(θ/2) for the turning angle θ.
		cosHalf := math.Sqrt((1 + cosTheta) / 2)
		const miterEpsilon = 1e-10
		if cosHalf > 0 && 1/cosHalf <= s.style.MiterLimit+miterEpsilon {
			bisector := n1.Add(n2)
			if l := bisector.Length(); l > zeroLengthThreshold {
				tip := P.Add(bisector.Mul(d / (cosHalf * l)))
				s.addPiece(P, a, tip, b)
				return
			}
		}
	}
	s.addPiece(P, a, b)
}

// addCap adds a line cap at P, where T points away from the line.
func (s *stroker) addCap(P, T vec.Vec2) {
	d := s.d
	N := normal(T)
	switch s.style.Cap {
	case graphics.LineCapSquare:
		ext := P.Add(T.Mul(d))
		s.addPiece(P.Add(N.Mul(d)), ext.Add(N.Mul(d)), ext.Sub(N.Mul(d)), P.Sub(N.Mul(d)))
	case graphics.LineCapRound:
		// half disk from +N through T to -N
		s.buf = s.arcPoints(s.buf[:0], P, N, -math.Pi)
		s.addPiece(s.buf...)
	}
}

// addDot adds a full disk at P.  Used for round caps on subpaths without
// direction.
func (s *stroker) addDot(P vec.Vec2) {
	s.buf = s.arcPoints(s.buf[:0], P, vec.Vec2{X: 1}, 2*math.Pi)
	s.addPiece(s.buf...)
}

// addZeroLengthDash handles a dash of length zero, which still has a
// direction from the underlying path.
func (s *stroker) addZeroLengthDash(seg strokeSegment) {
	switch s.style.Cap {
	case graphics.LineCapRound:
		s.addDot(seg.A)
	case graphics.LineCapSquare:
		d := s.d
		T, N := seg.T.Mul(d), seg.N.Mul(d)
		c := seg.A
		s.addPiece(c.Add(T).Add(N), c.Add(T).Sub(N), c.Sub(T).Sub(N), c.Sub(T).Add(N))
	}
}

// arcPoints appends points on the circle of radius s.d around center,
// starting in direction startDir and sweeping by the given angle.  The
// number of points keeps the deviation below the flatness in device
// space.
func (s *stroker) arcPoints(dst []vec.Vec2, center, startDir vec.Vec2, sweep float64) []vec.Vec2 {
	radius := s.d
	devRadius := max(
		applyLinear(s.ctm, vec.Vec2{X: radius}).Length(),
		applyLinear(s.ctm, vec.Vec2{Y: radius}).Length(),
	)

	n := 1
	if devRadius > s.flatness {
		// a chord spanning angle θ deviates by r(1-cos(θ/2)) from the arc
		step := 2 * math.Acos(1-s.flatness/devRadius)
		if step <= 0 || math.IsNaN(step) {
			step = math.Pi / 4
		}
		n = int(math.Ceil(math.Abs(sweep) / step))
	}
	n = max(n, 2)

	for i := 0; i <= n; i++ {
		phi := sweep * float64(i) / float64(n)
		c, sn := math.Cos(phi), math.Sin(phi)
		dir := vec.Vec2{
			X: startDir.X*c - startDir.Y*sn,
			Y: startDir.X*sn + startDir.Y*c,
		}
		dst = append(dst, center.Add(dir.Mul(radius)))
	}
	return dst
}

// addPiece maps the polygon to device space and adds it with positive
// orientation.
func (s *stroker) addPiece(pts ...vec.Vec2) {
	if len(pts) < 3 {
		return
	}
	dev := make([]vec.Vec2, len(pts))
	area := 0.0
	for i, p := range pts {
		dev[i] = apply(s.ctm, p)
	}
	for i := range dev {
		j := (i + 1) % len(dev)
		area += cross(dev[i], dev[j])
	}
	if math.Abs(area) < zeroLengthThreshold {
		return
	}
	if area < 0 {
		for i, j := 0, len(dev)-1; i < j; i, j = i+1, j-1 {
			dev[i], dev[j] = dev[j], dev[i]
		}
	}
	s.out.addPolygon(dev, matrix.Identity)
}
