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

// Package composite maps a rendered page raster onto the presentation
// surface.
//
// The compositor only remaps coordinates and samples the source once per
// output pixel.  It never re-evaluates coverage, which makes pan and
// fractional zoom cheap: the page is rasterized at a canonical scale and
// the remaining difference to the requested zoom is absorbed here.
package composite

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pagerender/scene"
)

// Sampling selects the resampling filter used when the raster scale does
// not match the display scale.
type Sampling uint8

const (
	Bilinear Sampling = iota
	Nearest
)

func (s Sampling) String() string {
	if s == Nearest {
		return "nearest"
	}
	return "bilinear"
}

// Viewport describes which part of the page is visible.
type Viewport struct {
	// Zoom is the number of output pixels per page unit.
	Zoom float64

	// Offset is the output pixel position of the page origin, negated:
	// page point p appears at p*Zoom - Offset.
	Offset vec.Vec2
}

// Compositor writes page rasters to a presentation surface.
type Compositor struct {
	Sampling   Sampling
	Background scene.Color
}

// Present draws src onto dst.  The source raster was rendered at
// srcScale pixels per page unit.  All of dst is written: pixels not
// covered by the page show the background.  A nil src draws only the
// background, which serves as a placeholder while the page is rendered.
func (c *Compositor) Present(dst, src *image.RGBA, srcScale float64, vp Viewport) {
	draw.Draw(dst, dst.Bounds(), image.NewUniform(c.backgroundColor()), image.Point{}, draw.Src)
	if src == nil || src.Rect.Empty() || !(srcScale > 0) || !(vp.Zoom > 0) {
		return
	}

	k := vp.Zoom / srcScale
	if k == 1 && isInt(vp.Offset.X) && isInt(vp.Offset.Y) {
		sp := src.Rect.Min.Add(image.Pt(int(vp.Offset.X), int(vp.Offset.Y)))
		draw.Draw(dst, dst.Bounds(), src, sp, draw.Over)
		return
	}

	// m maps source pixel coordinates to destination coordinates
	m := f64.Aff3{
		k, 0, float64(dst.Rect.Min.X) - vp.Offset.X - k*float64(src.Rect.Min.X),
		0, k, float64(dst.Rect.Min.Y) - vp.Offset.Y - k*float64(src.Rect.Min.Y),
	}
	c.interpolator().Transform(dst, m, src, src.Rect, draw.Over, nil)
}

func (c *Compositor) interpolator() draw.Interpolator {
	if c.Sampling == Nearest {
		return draw.NearestNeighbor
	}
	return draw.ApproxBiLinear
}

func (c *Compositor) backgroundColor() color.RGBA {
	p := c.Background.Premultiplied()
	return color.RGBA{
		R: uint8(p[0]*255 + 0.5),
		G: uint8(p[1]*255 + 0.5),
		B: uint8(p[2]*255 + 0.5),
		A: uint8(p[3]*255 + 0.5),
	}
}

func isInt(x float64) bool {
	return x == math.Trunc(x) && math.Abs(x) < 1<<30
}
