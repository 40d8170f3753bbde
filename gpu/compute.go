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

package gpu

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"seehuhn.de/go/pagerender/binner"
	"seehuhn.de/go/pagerender/fine"
)

// ComputeOptions configures a [Compute] device.
type ComputeOptions struct {
	// Workers is the number of tiles rasterized in parallel.
	// Zero selects runtime.GOMAXPROCS(0).
	Workers int

	// MemoryLimit bounds the total size in bytes of the output rasters of
	// all jobs in flight.  Zero means no limit.
	MemoryLimit int64

	Logger *slog.Logger
}

// Compute is a [Device] which runs the binning and fine rasterization
// stages on a bounded pool of goroutines.  Every tile is an independent
// task, as it would be a workgroup of a compute shader.
type Compute struct {
	workers int
	limit   int64
	log     *slog.Logger

	rasterizers sync.Pool

	mu      sync.Mutex
	lost    bool
	closed  bool
	epoch   uint64 // incremented on every loss
	inUse   int64
	pending sync.WaitGroup

	jobs atomic.Uint64
}

// NewCompute returns a new compute device.
func NewCompute(opt *ComputeOptions) *Compute {
	c := &Compute{
		log: slog.New(slog.DiscardHandler),
	}
	if opt != nil {
		c.workers = opt.Workers
		c.limit = opt.MemoryLimit
		if opt.Logger != nil {
			c.log = opt.Logger
		}
	}
	if c.workers <= 0 {
		c.workers = runtime.GOMAXPROCS(0)
	}
	c.rasterizers.New = func() any {
		return fine.NewRasterizer(nil)
	}
	return c
}

// Submit implements the [Device] interface.
func (c *Compute) Submit(ctx context.Context, job *Job) (*Fence, error) {
	if job == nil || job.Scene == nil {
		return nil, ErrInvalidJob
	}
	w, h := job.Scene.Width, job.Scene.Height
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: canvas size %dx%d", ErrInvalidJob, w, h)
	}
	size := 4 * int64(w) * int64(h)

	c.mu.Lock()
	if c.closed || c.lost {
		c.mu.Unlock()
		return nil, ErrDeviceLost
	}
	if c.limit > 0 && c.inUse+size > c.limit {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: need %d bytes, %d of %d in use",
			ErrOutOfMemory, size, c.inUse, c.limit)
	}
	c.inUse += size
	epoch := c.epoch
	c.pending.Add(1)
	c.mu.Unlock()

	id := c.jobs.Add(1)
	fence := NewFence()
	go func() {
		defer c.pending.Done()
		img, err := c.run(ctx, job, epoch)

		c.mu.Lock()
		c.inUse -= size
		if err == nil && (c.lost || c.epoch != epoch) {
			img, err = nil, ErrDeviceLost
		}
		c.mu.Unlock()

		if err != nil {
			c.log.Debug("job failed", "job", id, "error", err)
		}
		fence.Signal(img, err)
	}()
	return fence, nil
}

// run executes one job.  Tiles are distributed over the workers in
// contiguous runs, and every worker takes a rasterizer from the pool.
func (c *Compute) run(ctx context.Context, job *Job, epoch uint64) (*image.RGBA, error) {
	s := job.Scene
	bins, err := binner.Bin(ctx, s, &binner.Options{
		TileSize: job.TileSize,
		Workers:  c.workers,
		Logger:   c.log,
	})
	if err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, s.Width, s.Height))
	opt := &fine.Options{
		Supersample: job.Supersample,
		Background:  job.Background,
	}

	numTiles := bins.Grid.NumTiles()
	chunk := max(1, numTiles/(4*c.workers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for lo := 0; lo < numTiles; lo += chunk {
		hi := min(lo+chunk, numTiles)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if c.isLost(epoch) {
				return ErrDeviceLost
			}
			r := c.rasterizers.Get().(*fine.Rasterizer)
			defer c.rasterizers.Put(r)
			r.Configure(opt)
			for t := lo; t < hi; t++ {
				r.RasterizeTile(img, bins.Grid.Tile(t), bins.Lists[t], s)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return img, nil
}

func (c *Compute) isLost(epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lost || c.epoch != epoch
}

// Lose simulates the loss of the device: jobs in flight fail with
// ErrDeviceLost and new jobs are rejected until Reset is called.
func (c *Compute) Lose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.lost {
		c.lost = true
		c.epoch++
		c.log.Warn("device lost")
	}
}

// Reset implements the [Device] interface.
func (c *Compute) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrDeviceLost
	}
	if c.lost {
		c.lost = false
		c.log.Info("device reset")
	}
	return nil
}

// Close implements the [Device] interface.  It waits for jobs in flight
// to finish.
func (c *Compute) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.pending.Wait()
	return nil
}
