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

package fine

import (
	"image"
	"math"
	"slices"

	"seehuhn.de/go/pagerender/scene"
)

// Coverage accumulation model:
//
// For each pixel of a scanline, two values are accumulated:
//
//	cover: signed vertical extent of the edges crossing the pixel column
//	area:  cover, weighted by how much of the pixel lies right of the edge
//
// An edge piece crossing a pixel contributes
//
//	cover = sign * dy
//	area  = cover * (1 - xFrac)
//
// where sign is +1 for downward edges and xFrac is the horizontal position
// of the piece within the pixel.  The signed area inside pixel i is then
//
//	raw_i = sum(cover_j, j < i) + area_i
//
// Edge pieces left of the tile are folded into the first pixel of the
// scanline, and pieces right of the tile are dropped.
//
// All contributions are rounded to fixed point with 16 fractional bits
// before they are added up.  An edge is split at pixel column boundaries
// in the same way for every tile window, and the quantized vertical
// extents telescope, so the folded sum for columns left of the tile is
// exactly the sum of the individual columns.  This makes the result of a
// tile bit-for-bit independent of how the canvas is divided into tiles.

const (
	fracBits = 16
	one      = int64(1) << fracBits
)

func quantize(y float64) int64 {
	return int64(math.Round(y * float64(one)))
}

func abs64(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}

func clamp01(x float64) float64 {
	if !(x > 0) {
		return 0
	}
	return min(x, 1)
}

// analyticCoverage computes the exact area coverage of the region bounded
// by edges, for every pixel of tile t.  The result is written to out in
// row-major order, with stride t.Dx().
func (r *Rasterizer) analyticCoverage(edges []scene.Edge, rule scene.FillRule, t image.Rectangle, out []float32) {
	w, h := t.Dx(), t.Dy()
	n := w * h
	r.cover = slices.Grow(r.cover[:0], n)[:n]
	r.area = slices.Grow(r.area[:0], n)[:n]
	clear(r.cover)
	clear(r.area)

	tMinY, tMaxY := float64(t.Min.Y), float64(t.Max.Y)
	tMaxX := float64(t.Max.X)
	for i := range edges {
		e := &edges[i]
		eyMin, eyMax := min(e.Y0, e.Y1), max(e.Y0, e.Y1)
		if eyMax <= tMinY || eyMin >= tMaxY || min(e.X0, e.X1) >= tMaxX {
			continue
		}
		y0 := int(max(math.Floor(eyMin), tMinY))
		y1 := int(min(math.Floor(eyMax)+1, tMaxY))
		for y := y0; y < y1; y++ {
			row := (y - t.Min.Y) * w
			accumulateEdge(e, y, r.cover[row:row+w], r.area[row:row+w], t.Min.X, t.Max.X)
		}
	}

	for row := range h {
		off := row * w
		cover := r.cover[off : off+w]
		area := r.area[off : off+w]
		dst := out[off : off+w]
		var accum int64
		for i := range cover {
			raw := accum + area[i]
			accum += cover[i]

			var cov int64
			if rule == scene.EvenOdd {
				m := abs64(raw) % (2 * one)
				cov = one - abs64(one-m)
			} else {
				cov = min(abs64(raw), one)
			}
			dst[i] = float32(cov) / float32(one)
		}
	}
}

// accumulateEdge adds the contribution of edge e within scanline y to the
// cover and area buffers, which represent the pixels xMin to xMax-1.
func accumulateEdge(e *scene.Edge, y int, cover, area []int64, xMin, xMax int) {
	eyMin, eyMax := min(e.Y0, e.Y1), max(e.Y0, e.Y1)
	yTop := max(float64(y), eyMin)
	yBot := min(float64(y+1), eyMax)
	if yBot <= yTop {
		return
	}

	sign := int64(1)
	if e.Y1 < e.Y0 {
		sign = -1
	}

	dxdy := (e.X1 - e.X0) / (e.Y1 - e.Y0)
	xTop := e.X0 + dxdy*(yTop-e.Y0)
	xBot := e.X0 + dxdy*(yBot-e.Y0)

	xl, xr := xTop, xBot
	yLeft, yRight := yTop, yBot
	if xl > xr {
		xl, xr = xr, xl
		yLeft, yRight = yRight, yLeft
	}

	pl, pr := math.Floor(xl), math.Floor(xr)
	fMin, fMax := float64(xMin), float64(xMax)
	if pl >= fMax {
		return
	}

	if pl == pr {
		// the piece stays within a single pixel column
		c := sign * (quantize(yBot) - quantize(yTop))
		if pl < fMin {
			cover[0] += c
			area[0] += c
			return
		}
		idx := int(pl) - xMin
		cover[idx] += c
		area[idx] += areaContribution(c, (xl+xr)/2-pl)
		return
	}

	// y at the vertical pixel boundary bx, clamped to the piece
	dydx := 1 / dxdy
	boundary := func(bx float64) float64 {
		if bx <= pl {
			return yLeft
		}
		if bx > pr {
			return yRight
		}
		yb := e.Y0 + dydx*(bx-e.X0)
		return min(max(yb, yTop), yBot)
	}

	first := pl
	if first < fMin {
		c := sign * abs64(quantize(boundary(fMin))-quantize(yLeft))
		cover[0] += c
		area[0] += c
		first = fMin
	}
	last := min(pr, fMax-1)
	for bx := first; bx <= last; bx++ {
		ya, yb := boundary(bx), boundary(bx+1)
		c := sign * abs64(quantize(yb)-quantize(ya))
		if c == 0 {
			continue
		}
		xMid := e.X0 + dxdy*((ya+yb)/2-e.Y0)
		idx := int(bx) - xMin
		cover[idx] += c
		area[idx] += areaContribution(c, xMid-bx)
	}
}

func areaContribution(c int64, xFrac float64) int64 {
	return int64(math.Round(float64(c) * (1 - clamp01(xFrac))))
}

// crossing is an intersection of an edge with a horizontal sample line.
type crossing struct {
	x   float64
	dir int
}

// sampledCoverage computes coverage by point sampling on an n×n grid per
// pixel.  A sample is inside if its winding number is nonzero (or odd, for
// the even-odd rule).
func (r *Rasterizer) sampledCoverage(edges []scene.Edge, rule scene.FillRule, t image.Rectangle, n int, out []float32) {
	w, h := t.Dx(), t.Dy()
	hits := slices.Grow(r.hits[:0], w*h)[:w*h]
	clear(hits)
	r.hits = hits

	tMaxX := float64(t.Max.X)
	for py := range h {
		y := t.Min.Y + py
		for j := range n {
			sy := float64(y) + (float64(j)+0.5)/float64(n)

			r.crossings = r.crossings[:0]
			for i := range edges {
				e := &edges[i]
				eyMin, eyMax := min(e.Y0, e.Y1), max(e.Y0, e.Y1)
				if sy < eyMin || sy >= eyMax {
					continue
				}
				x := e.X0 + (sy-e.Y0)*(e.X1-e.X0)/(e.Y1-e.Y0)
				if x >= tMaxX {
					continue
				}
				dir := 1
				if e.Y1 < e.Y0 {
					dir = -1
				}
				r.crossings = append(r.crossings, crossing{x: x, dir: dir})
			}
			if len(r.crossings) == 0 {
				continue
			}
			slices.SortFunc(r.crossings, func(a, b crossing) int {
				switch {
				case a.x < b.x:
					return -1
				case a.x > b.x:
					return 1
				}
				return a.dir - b.dir
			})

			k := 0
			winding := 0
			row := hits[py*w : (py+1)*w]
			for px := range w {
				x := t.Min.X + px
				for i := range n {
					sx := float64(x) + (float64(i)+0.5)/float64(n)
					for k < len(r.crossings) && r.crossings[k].x < sx {
						winding += r.crossings[k].dir
						k++
					}
					if inside(winding, rule) {
						row[px]++
					}
				}
			}
		}
	}

	total := float32(n * n)
	for i, c := range hits {
		out[i] = float32(c) / total
	}
}

func inside(winding int, rule scene.FillRule) bool {
	if rule == scene.EvenOdd {
		return winding%2 != 0
	}
	return winding != 0
}
