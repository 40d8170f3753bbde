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
	"context"
	"errors"
	"image"
	"math/rand/v2"
	"reflect"
	"testing"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pagerender/scene"
)

func randomScene(seed uint64, n int) *scene.Scene {
	rng := rand.New(rand.NewPCG(seed, 1))
	var ops []scene.Op
	for i := range n {
		if i%50 == 0 {
			if i > 0 {
				ops = append(ops, scene.Restore{})
			}
			ops = append(ops, scene.Save{})
			x, y := rng.Float64()*200, rng.Float64()*200
			ops = append(ops, scene.SetClip{Path: scene.Circle(x, y, 20+rng.Float64()*100)})
		}
		x, y := rng.Float64()*260-30, rng.Float64()*260-30
		w, h := rng.Float64()*60, rng.Float64()*60
		ops = append(ops,
			scene.SetPaint{Paint: scene.Color{R: rng.Float64(), A: 1}},
			scene.Fill{Path: scene.Rectangle(x, y, x+w, y+h)},
		)
	}
	return scene.NewBuilder(nil).Build(ops, matrix.Identity, 200, 200)
}

func TestGrid(t *testing.T) {
	g := NewGrid(100, 50, 16)
	if g.Cols != 7 || g.Rows != 4 || g.NumTiles() != 28 {
		t.Fatalf("unexpected grid %+v", g)
	}
	if got := g.Tile(6); got != image.Rect(96, 0, 100, 16) {
		t.Errorf("last tile of first row: %v", got)
	}
	if got := g.Tile(27); got != image.Rect(96, 48, 100, 50) {
		t.Errorf("last tile: %v", got)
	}
	if NewGrid(10, 10, 0).TileSize != DefaultTileSize {
		t.Error("default tile size not used")
	}
	if NewGrid(-5, 10, 4).NumTiles() != 0 {
		t.Error("negative width should give an empty grid")
	}

	// the tiles exactly partition the canvas
	seen := make(map[image.Point]int)
	for i := range g.NumTiles() {
		r := g.Tile(i)
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				seen[image.Pt(x, y)]++
			}
		}
	}
	if len(seen) != 100*50 {
		t.Errorf("tiles cover %d pixels", len(seen))
	}
	for p, n := range seen {
		if n != 1 {
			t.Errorf("pixel %v covered %d times", p, n)
			break
		}
	}
}

// TestOrderIndependence checks that neither the processing order nor the
// number of workers changes the command lists.
func TestOrderIndependence(t *testing.T) {
	ctx := context.Background()
	s := randomScene(1, 500)

	ref, err := bin(ctx, s, &Options{TileSize: 16, Workers: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}

	rng := rand.New(rand.NewPCG(2, 3))
	for _, workers := range []int{2, 8} {
		order := rng.Perm(len(s.Prims))
		bins, err := bin(ctx, s, &Options{TileSize: 16, Workers: workers}, order)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(ref.Lists, bins.Lists) {
			t.Errorf("%d workers: command lists differ", workers)
		}
	}
}

func TestCommandLists(t *testing.T) {
	s := randomScene(4, 300)
	bins, err := Bin(context.Background(), s, &Options{TileSize: 32})
	if err != nil {
		t.Fatal(err)
	}

	for i, cmds := range bins.Lists {
		tile := bins.Grid.Tile(i)
		lastZ := -1
		depth := 0
		for _, c := range cmds {
			switch c.Kind {
			case CmdPushClip:
				depth++
			case CmdPopClip:
				depth--
				if depth < 0 {
					t.Fatalf("tile %d: unbalanced clip scopes", i)
				}
			case CmdFill:
				p := &s.Prims[c.Prim]
				if p.Z <= lastZ {
					t.Fatalf("tile %d: primitives out of order", i)
				}
				lastZ = p.Z
				if depth != len(s.ClipChain(p.Clip)) {
					t.Fatalf("tile %d: primitive %d drawn at clip depth %d", i, c.Prim, depth)
				}
				b := p.BBox
				if b.URx <= float64(tile.Min.X) || b.LLx >= float64(tile.Max.X) ||
					b.URy <= float64(tile.Min.Y) || b.LLy >= float64(tile.Max.Y) {
					t.Fatalf("tile %d: primitive %d does not overlap", i, c.Prim)
				}
			}
		}
		if depth != 0 {
			t.Errorf("tile %d: %d clip scopes left open", i, depth)
		}
	}
}

func TestCulling(t *testing.T) {
	ops := []scene.Op{
		scene.Fill{Path: scene.Rectangle(-50, -50, -10, -10)}, // off canvas
		scene.Save{},
		scene.SetClip{Path: scene.Rectangle(0, 0, 10, 10)},
		scene.SetClip{Path: scene.Rectangle(50, 50, 60, 60)}, // empty
		scene.Fill{Path: scene.Rectangle(0, 0, 64, 64)},
		scene.Restore{},
		scene.Fill{Path: scene.Rectangle(16, 16, 32, 32)}, // exactly one tile
	}
	s := scene.NewBuilder(nil).Build(ops, matrix.Identity, 64, 64)
	if len(s.Prims) != 3 {
		t.Fatalf("got %d primitives", len(s.Prims))
	}
	bins, err := Bin(context.Background(), s, &Options{TileSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	if n := bins.NumCommands(); n != 1 {
		t.Fatalf("got %d commands, want 1", n)
	}
	cmds := bins.Lists[bins.Grid.Index(1, 1)]
	if len(cmds) != 1 || cmds[0].Prim != 2 || cmds[0].Hint != Full {
		t.Errorf("unexpected command list %v", cmds)
	}
}

func TestCoverageHint(t *testing.T) {
	ops := []scene.Op{
		scene.Fill{Path: scene.Rectangle(4, 4, 60, 60)},
		scene.Fill{Path: scene.Circle(32, 32, 30)},
	}
	s := scene.NewBuilder(nil).Build(ops, matrix.Identity, 64, 64)
	bins, err := Bin(context.Background(), s, &Options{TileSize: 16})
	if err != nil {
		t.Fatal(err)
	}
	for i, cmds := range bins.Lists {
		row, col := i/bins.Grid.Cols, i%bins.Grid.Cols
		inner := row >= 1 && row <= 2 && col >= 1 && col <= 2
		for _, c := range cmds {
			want := Partial
			if c.Prim == 0 && inner {
				want = Full
			}
			if c.Hint != want {
				t.Errorf("tile (%d, %d), primitive %d: hint %d, want %d", row, col, c.Prim, c.Hint, want)
			}
		}
	}
}

func TestCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Bin(ctx, randomScene(5, 100), nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
