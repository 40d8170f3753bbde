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

package binner

import (
	"image"
	"math"

	"seehuhn.de/go/geom/rect"
)

// DefaultTileSize is the default edge length of a tile in pixels.
const DefaultTileSize = 16

// Grid divides a canvas into square tiles.  Tiles in the last row and
// column are cropped to the canvas.
type Grid struct {
	Width, Height int
	TileSize      int
	Cols, Rows    int
}

// NewGrid returns the tile grid for a canvas of the given size.
// A non-positive tileSize selects DefaultTileSize.
func NewGrid(width, height, tileSize int) Grid {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	width = max(width, 0)
	height = max(height, 0)
	return Grid{
		Width:    width,
		Height:   height,
		TileSize: tileSize,
		Cols:     (width + tileSize - 1) / tileSize,
		Rows:     (height + tileSize - 1) / tileSize,
	}
}

// NumTiles returns the number of tiles in the grid.
func (g Grid) NumTiles() int {
	return g.Cols * g.Rows
}

// Index returns the tile index of the tile at (row, col).
func (g Grid) Index(row, col int) int {
	return row*g.Cols + col
}

// Tile returns the pixel rectangle of tile i.
func (g Grid) Tile(i int) image.Rectangle {
	row, col := i/g.Cols, i%g.Cols
	x0, y0 := col*g.TileSize, row*g.TileSize
	return image.Rect(x0, y0, min(x0+g.TileSize, g.Width), min(y0+g.TileSize, g.Height))
}

// span returns the range of tile rows and columns which intersect the
// open interior of r.  The result is empty (c0 > c1 or r0 > r1) if r does
// not intersect the canvas.
func (g Grid) span(r rect.Rect) (c0, c1, r0, r1 int) {
	ts := float64(g.TileSize)
	// clamp before converting, huge coordinates do not fit into an int
	c0 = int(clamp(math.Floor(r.LLx/ts), 0, float64(g.Cols)))
	c1 = int(clamp(math.Ceil(r.URx/ts)-1, -1, float64(g.Cols-1)))
	r0 = int(clamp(math.Floor(r.LLy/ts), 0, float64(g.Rows)))
	r1 = int(clamp(math.Ceil(r.URy/ts)-1, -1, float64(g.Rows-1)))
	return c0, c1, r0, r1
}

// tileRect returns the pixel rectangle of tile (row, col) as a rect.Rect.
func (g Grid) tileRect(row, col int) rect.Rect {
	t := g.Tile(g.Index(row, col))
	return rect.Rect{
		LLx: float64(t.Min.X), LLy: float64(t.Min.Y),
		URx: float64(t.Max.X), URy: float64(t.Max.Y),
	}
}

func clamp(x, lo, hi float64) float64 {
	if !(x > lo) {
		return lo
	}
	return min(x, hi)
}
