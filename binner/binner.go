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

// Package binner assigns the primitives of a scene to screen tiles.
//
// For every tile the binner produces a command list which names the
// primitives whose bounding box overlaps the tile, in ascending z order,
// together with the clip scopes they are drawn in.  Exact coverage is left
// to the fine rasterizer.
package binner

import (
	"context"
	"log/slog"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"seehuhn.de/go/geom/rect"

	"seehuhn.de/go/pagerender/scene"
)

// CommandKind identifies the type of a tile command.
type CommandKind uint8

const (
	// CmdFill composites a primitive into the tile.
	CmdFill CommandKind = iota

	// CmdPushClip intersects the active clip mask with a clip path.
	CmdPushClip

	// CmdPopClip restores the clip mask in effect before the matching
	// CmdPushClip.
	CmdPopClip
)

// Coverage is a hint about the coverage of a primitive within a tile.
type Coverage uint8

const (
	// Partial means that coverage must be computed per pixel.
	Partial Coverage = iota

	// Full means that the primitive covers every pixel of the tile
	// completely.  Clipping still applies.
	Full
)

// Command is one entry of a tile command list.
type Command struct {
	Kind CommandKind
	Prim int          // CmdFill: index into Scene.Prims
	Clip scene.ClipID // CmdPushClip: clip to apply
	Hint Coverage     // CmdFill
}

// Bins holds the command lists of all tiles for one render pass.
// Bins are written once by [Bin] and are read-only afterwards.
type Bins struct {
	Grid  Grid
	Lists [][]Command // indexed by tile index
}

// NumCommands returns the total number of commands in all tiles.
func (b *Bins) NumCommands() int {
	n := 0
	for _, l := range b.Lists {
		n += len(l)
	}
	return n
}

// Options configures [Bin].
type Options struct {
	// TileSize is the tile edge length in pixels.
	// Zero selects DefaultTileSize.
	TileSize int

	// Workers limits the number of goroutines used.
	// Zero selects runtime.GOMAXPROCS(0).
	Workers int

	Logger *slog.Logger
}

// entry records that a primitive may touch a tile.
type entry struct {
	tile int
	prim int
	hint Coverage
}

// minChunk is the smallest number of primitives handled by one goroutine.
const minChunk = 64

// Bin computes the tile command lists for s.
func Bin(ctx context.Context, s *scene.Scene, opt *Options) (*Bins, error) {
	return bin(ctx, s, opt, nil)
}

// bin computes the tile command lists, visiting the primitives in the
// given order.  A nil order visits them in z order.  The result does not
// depend on the order or on the number of workers.
func bin(ctx context.Context, s *scene.Scene, opt *Options, order []int) (*Bins, error) {
	var tileSize, workers int
	log := slog.New(slog.DiscardHandler)
	if opt != nil {
		tileSize, workers = opt.TileSize, opt.Workers
		if opt.Logger != nil {
			log = opt.Logger
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	grid := NewGrid(s.Width, s.Height, tileSize)
	if order == nil {
		order = make([]int, len(s.Prims))
		for i := range order {
			order[i] = i
		}
	}

	// Phase 1: find candidate tiles for every primitive.
	chunk := max(minChunk, (len(order)+workers-1)/workers)
	numChunks := (len(order) + chunk - 1) / chunk
	found := make([][]entry, numChunks)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := range numChunks {
		g.Go(func() error {
			lo := c * chunk
			hi := min(lo+chunk, len(order))
			var res []entry
			for _, idx := range order[lo:hi] {
				if err := gctx.Err(); err != nil {
					return err
				}
				res = appendCandidates(res, grid, s, idx)
			}
			found[c] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Phase 2: distribute the entries to the tiles.
	numTiles := grid.NumTiles()
	counts := make([]int, numTiles)
	for _, res := range found {
		for _, e := range res {
			counts[e.tile]++
		}
	}
	perTile := make([][]entry, numTiles)
	for i, n := range counts {
		if n > 0 {
			perTile[i] = make([]entry, 0, n)
		}
	}
	for _, res := range found {
		for _, e := range res {
			perTile[e.tile] = append(perTile[e.tile], e)
		}
	}

	// Phase 3: sort every tile by z and insert the clip scopes.
	chains := make([][]scene.ClipID, len(s.Clips)+1)
	for id := range chains {
		chains[id] = s.ClipChain(scene.ClipID(id))
	}

	bins := &Bins{
		Grid:  grid,
		Lists: make([][]Command, numTiles),
	}
	tileChunk := max(1, (numTiles+workers-1)/workers)
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < numTiles; lo += tileChunk {
		hi := min(lo+tileChunk, numTiles)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for t := lo; t < hi; t++ {
				bins.Lists[t] = commandList(perTile[t], s, chains)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Debug("binning done",
		"primitives", len(s.Prims),
		"tiles", numTiles,
		"commands", bins.NumCommands())
	return bins, nil
}

// appendCandidates appends one entry for every tile which the bounding
// box of primitive idx overlaps.  The box is first reduced by the clip
// chain and the canvas, so that fully clipped primitives produce nothing.
func appendCandidates(dst []entry, grid Grid, s *scene.Scene, idx int) []entry {
	p := &s.Prims[idx]
	box := scene.Intersect(p.BBox, s.Bounds())
	if c := s.Clip(p.Clip); c != nil {
		box = scene.Intersect(box, c.BBox)
	}
	if scene.IsEmpty(box) {
		return dst
	}

	c0, c1, r0, r1 := grid.span(box)
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			hint := Partial
			if p.Rect && contains(p.BBox, grid.tileRect(row, col)) {
				hint = Full
			}
			dst = append(dst, entry{tile: grid.Index(row, col), prim: idx, hint: hint})
		}
	}
	return dst
}

func contains(outer, inner rect.Rect) bool {
	return outer.LLx <= inner.LLx && outer.LLy <= inner.LLy &&
		outer.URx >= inner.URx && outer.URy >= inner.URy
}

// commandList orders the entries of one tile by z and wraps them in clip
// scopes.  Consecutive primitives with a common clip prefix share the
// scope, so every clip mask is computed at most once per run.
func commandList(entries []entry, s *scene.Scene, chains [][]scene.ClipID) []Command {
	if len(entries) == 0 {
		return nil
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return s.Prims[a.prim].Z - s.Prims[b.prim].Z
	})

	var cmds []Command
	var stack []scene.ClipID
	for _, e := range entries {
		chain := chains[s.Prims[e.prim].Clip]
		k := 0
		for k < len(stack) && k < len(chain) && stack[k] == chain[k] {
			k++
		}
		for len(stack) > k {
			cmds = append(cmds, Command{Kind: CmdPopClip})
			stack = stack[:len(stack)-1]
		}
		for _, id := range chain[k:] {
			cmds = append(cmds, Command{Kind: CmdPushClip, Clip: id})
			stack = append(stack, id)
		}
		cmds = append(cmds, Command{Kind: CmdFill, Prim: e.prim, Hint: e.hint})
	}
	for range stack {
		cmds = append(cmds, Command{Kind: CmdPopClip})
	}
	return cmds
}
