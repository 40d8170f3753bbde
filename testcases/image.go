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
	"image"
	"image/color"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pagerender/scene"
)

var imageCases = []Case{
	{
		Name:   "image_identity",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.DrawImage{Image: checkerboard(8, 8, 255), Rect: rect.Rect{LLx: 16, LLy: 16, URx: 48, URy: 48}},
		},
	},
	{
		Name:   "image_scaled",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.DrawImage{Image: checkerboard(4, 4, 255), Rect: rect.Rect{LLx: 4, LLy: 4, URx: 60, URy: 60}},
		},
	},
	{
		Name:   "image_rotated",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.Transform{M: matrix.Translate(-20, -20).RotateDeg(30).Translate(32, 32)},
			scene.DrawImage{Image: checkerboard(5, 5, 255), Rect: rect.Rect{URx: 40, URy: 40}},
		},
	},
	{
		Name:   "image_alpha",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetPaint{Paint: scene.Black},
			scene.Fill{Path: scene.Rectangle(0, 28, 64, 36)},
			scene.DrawImage{Image: checkerboard(8, 8, 128), Rect: rect.Rect{LLx: 8, LLy: 8, URx: 56, URy: 56}},
		},
	},
	{
		Name:   "image_clipped",
		Width:  64,
		Height: 64,
		Ops: []scene.Op{
			scene.SetClip{Path: scene.Circle(32, 32, 24)},
			scene.DrawImage{Image: checkerboard(8, 8, 255), Rect: rect.Rect{URx: 64, URy: 64}},
		},
	},
}

// checkerboard returns a w×h image of alternating orange and teal pixels,
// with the given alpha value.
func checkerboard(w, h int, alpha uint8) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.NRGBA{R: 255, G: 140, A: alpha}
			if (x+y)%2 == 1 {
				c = color.NRGBA{G: 128, B: 128, A: alpha}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
