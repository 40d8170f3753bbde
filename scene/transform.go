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
	"seehuhn.de/go/geom/vec"
)

// singularThreshold is the smallest determinant magnitude for which a
// transform is considered invertible.
const singularThreshold = 1e-12

// Concat returns the transform which first applies a and then b.
func Concat(a, b matrix.Matrix) matrix.Matrix {
	return matrix.Matrix{
		a[0]*b[0] + a[1]*b[2],
		a[0]*b[1] + a[1]*b[3],
		a[2]*b[0] + a[3]*b[2],
		a[2]*b[1] + a[3]*b[3],
		a[4]*b[0] + a[5]*b[2] + b[4],
		a[4]*b[1] + a[5]*b[3] + b[5],
	}
}

// apply maps a point through m.
func apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// applyLinear maps a vector through the linear part of m.
// Used for tolerance checks, where translation is irrelevant.
func applyLinear(m matrix.Matrix, v vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*v.X + m[2]*v.Y,
		Y: m[1]*v.X + m[3]*v.Y,
	}
}

// checkTransform returns ErrDegenerateTransform if m is singular or
// contains non-finite entries.
func checkTransform(m matrix.Matrix) error {
	for _, x := range m {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ErrDegenerateTransform
		}
	}
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < singularThreshold || math.IsInf(1/det, 0) {
		return ErrDegenerateTransform
	}
	return nil
}

// invert returns the inverse of m.
func invert(m matrix.Matrix) (matrix.Matrix, error) {
	if err := checkTransform(m); err != nil {
		return matrix.Matrix{}, err
	}
	det := m[0]*m[3] - m[1]*m[2]
	a := m[3] / det
	b := -m[1] / det
	c := -m[2] / det
	d := m[0] / det
	return matrix.Matrix{
		a, b,
		c, d,
		-(m[4]*a + m[5]*c),
		-(m[4]*b + m[5]*d),
	}, nil
}
