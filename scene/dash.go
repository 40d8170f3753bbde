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

import "math"

// maxDashPeriods bounds the number of dash periods per subpath.  Finer
// patterns are stroked as solid lines, so that a tiny period cannot
// exhaust memory.
const maxDashPeriods = 1 << 16

// dashRun is one visible piece of a dashed subpath.  A run consisting of a
// single segment with A == B is a zero-length dash.
type dashRun struct {
	segs   []strokeSegment
	closed bool
}

// applyDash splits a subpath into the "on" pieces of the dash pattern.
// Even indices of the pattern are "on", odd indices are "off"; patterns of
// odd length are repeated twice to form one period.  The pattern must
// contain at least one positive entry.
func applyDash(segs []strokeSegment, closed bool, pattern []float64, phase float64) []dashRun {
	n := len(pattern)
	period := 0.0
	for _, x := range pattern {
		period += x
	}
	if n%2 == 1 {
		period *= 2
	}

	length := 0.0
	for _, seg := range segs {
		length += seg.B.Sub(seg.A).Length()
	}
	if length/period > maxDashPeriods {
		return []dashRun{{segs: segs, closed: closed}}
	}

	phase = math.Mod(phase, period)
	if phase < 0 {
		phase += period
	}

	// find the dash which contains the start of the path
	idx := 0
	for {
		l := pattern[idx%n]
		if phase < l || (l == 0 && phase == 0) {
			break
		}
		phase -= l
		idx++
	}
	remaining := pattern[idx%n] - phase
	isOn := idx%2 == 0
	startedOn := isOn && remaining > 0

	var runs []dashRun
	var cur []strokeSegment
	flush := func() {
		if len(cur) > 0 {
			runs = append(runs, dashRun{segs: cur})
			cur = nil
		}
	}

	for _, seg := range segs {
		segLen := seg.B.Sub(seg.A).Length()
		pos := 0.0
		for {
			if remaining > segLen-pos {
				if isOn {
					cur = appendPortion(cur, seg, pos, segLen)
				}
				remaining -= segLen - pos
				break
			}

			end := pos + remaining
			if isOn {
				cur = appendPortion(cur, seg, pos, end)
				if len(cur) == 0 {
					p := seg.A.Add(seg.T.Mul(pos))
					cur = append(cur, strokeSegment{A: p, B: p, T: seg.T, N: seg.N})
				}
				flush()
			}
			pos = end
			idx++
			remaining = pattern[idx%n]
			isOn = idx%2 == 0
		}
	}

	if len(cur) == 0 {
		return runs
	}
	if closed && startedOn {
		if len(runs) == 0 {
			// the whole subpath is visible
			return []dashRun{{segs: cur, closed: true}}
		}
		runs[0].segs = append(cur, runs[0].segs...)
		return runs
	}
	return append(runs, dashRun{segs: cur})
}

// appendPortion appends the part of seg between the distances from and to,
// measured from seg.A.  Pieces shorter than zeroLengthThreshold are
// skipped.
func appendPortion(dst []strokeSegment, seg strokeSegment, from, to float64) []strokeSegment {
	if to-from < zeroLengthThreshold {
		return dst
	}
	a, b := seg.A, seg.B
	if from > 0 {
		a = seg.A.Add(seg.T.Mul(from))
	}
	if to < seg.B.Sub(seg.A).Length() {
		b = seg.A.Add(seg.T.Mul(to))
	}
	return append(dst, strokeSegment{A: a, B: b, T: seg.T, N: seg.N})
}
