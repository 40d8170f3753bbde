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


package composite

import (
	"image"
	"image/color"
	"testing"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pagerender/scene"
)

// quadrants returns a 20x20 raster with red, green, blue and black
// quadrants.
func quadrants() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 20, 20))
	cols := []color.RGBA{
		{255, 0, 0, 255}, {0, 255, 0, 255},
		{0, 0, 255, 255}, {0, 0, 0, 255},
	}
	for y := range 20 {
		for x := range 20 {
			img.SetRGBA(x, y, cols[2*(y/10)+x/10])
		}
	}
	return img
}

func TestPlaceholder(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 4, 4))
	c := Compositor{Background: scene.Color{R: 1, G: 1, B: 1, A: 1}}
	c.Present(dst, nil, 1, Viewport{Zoom: 1})
	for i, v := range dst.Pix {
		if v != 255 {
			t.Fatalf("byte %d: got %d", i, v)
		}
	}
}

func TestIdentity(t *testing.T) {
	src := quadrants()
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	c := Compositor{Background: scene.White}
	c.Present(dst, src, 1, Viewport{Zoom: 1})
	for i := range src.Pix {
		if src.Pix[i] != dst.Pix[i] {
			t.Fatalf("byte %d differs", i)
		}
	}
}

func TestPan(t *testing.T) {
	src := quadrants()
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	c := Compositor{Background: scene.White}
	c.Present(dst, src, 1, Viewport{Zoom: 1, Offset: vec.Vec2{X: 10, Y: -5}})

	cases := []struct {
		x, y int
		want color.RGBA
	}{
		{5, 2, color.RGBA{255, 255, 255, 255}}, // above the page
		{5, 7, color.RGBA{0, 255, 0, 255}},
		{5, 17, color.RGBA{0, 0, 0, 255}},
		{15, 10, color.RGBA{255, 255, 255, 255}}, // right of the page
	}
	for _, c := range cases {
		if got := dst.RGBAAt(c.x, c.y); got != c.want {
			t.Errorf("(%d, %d): got %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestScale(t *testing.T) {
	src := quadrants()
	for _, sampling := range []Sampling{Nearest, Bilinear} {
		t.Run(sampling.String(), func(t *testing.T) {
			// the raster was made at scale 2 and is shown at zoom 4
			dst := image.NewRGBA(image.Rect(0, 0, 40, 40))
			c := Compositor{Sampling: sampling, Background: scene.White}
			c.Present(dst, src, 2, Viewport{Zoom: 4})

			cases := []struct {
				x, y int
				want color.RGBA
			}{
				{5, 5, color.RGBA{255, 0, 0, 255}},
				{35, 5, color.RGBA{0, 255, 0, 255}},
				{5, 35, color.RGBA{0, 0, 255, 255}},
				{35, 35, color.RGBA{0, 0, 0, 255}},
			}
			for _, c := range cases {
				if got := dst.RGBAAt(c.x, c.y); got != c.want {
					t.Errorf("(%d, %d): got %v, want %v", c.x, c.y, got, c.want)
				}
			}
		})
	}
}

func TestShrink(t *testing.T) {
	src := quadrants()
	dst := image.NewRGBA(image.Rect(0, 0, 30, 30))
	c := Compositor{Sampling: Nearest, Background: scene.Transparent}
	c.Present(dst, src, 2, Viewport{Zoom: 1})

	// the page covers the top left 10x10 pixels
	if got := dst.RGBAAt(2, 2); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("got %v, want red", got)
	}
	if got := dst.RGBAAt(7, 7); got != (color.RGBA{0, 0, 0, 255}) {
		t.Errorf("got %v, want black", got)
	}
	if got := dst.RGBAAt(15, 15); got != (color.RGBA{}) {
		t.Errorf("got %v, want transparent", got)
	}
}
