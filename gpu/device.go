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

// Package gpu defines the job model of the rasterization device.
//
// A render job (binning followed by fine rasterization of every tile) is
// submitted to a [Device] and completes asynchronously.  The submitter
// receives a [Fence] which is signalled on completion; it never has to
// block on the device.
package gpu

import (
	"context"
	"errors"
	"image"
	"sync"

	"seehuhn.de/go/pagerender/scene"
)

var (
	// ErrDeviceLost is returned when the device stopped working.  All jobs
	// in flight fail with this error, and the device must be reset before
	// new jobs are accepted.
	ErrDeviceLost = errors.New("gpu: device lost")

	// ErrOutOfMemory is returned when a job needs more memory than the
	// device has available.
	ErrOutOfMemory = errors.New("gpu: out of memory")

	// ErrInvalidJob is returned for jobs which cannot be executed.
	ErrInvalidJob = errors.New("gpu: invalid job")
)

// Job describes one render pass.
type Job struct {
	Scene *scene.Scene

	// TileSize is the tile edge length in pixels.  Zero selects the
	// binner's default.
	TileSize int

	// Supersample selects the antialiasing method, see [fine.Options].
	Supersample int

	Background scene.Color
}

// Device executes render jobs.
type Device interface {
	// Submit starts a job.  The returned fence is signalled when the job
	// is complete.  Submit does not wait for the job to run.
	Submit(ctx context.Context, job *Job) (*Fence, error)

	// Reset re-initializes a lost device.
	Reset(ctx context.Context) error

	// Close releases the device.
	Close() error
}

// Fence signals the completion of a job.
type Fence struct {
	done chan struct{}
	once sync.Once
	img  *image.RGBA
	err  error
}

// NewFence returns a fence which has not been signalled.
func NewFence() *Fence {
	return &Fence{done: make(chan struct{})}
}

// Signal marks the job as complete.  Only the first call has an effect.
func (f *Fence) Signal(img *image.RGBA, err error) {
	f.once.Do(func() {
		f.img, f.err = img, err
		close(f.done)
	})
}

// Done returns a channel which is closed when the job is complete.
func (f *Fence) Done() <-chan struct{} {
	return f.done
}

// Poll returns the result of the job.  The ok result is false while the
// job is still running.
func (f *Fence) Poll() (img *image.RGBA, ok bool, err error) {
	select {
	case <-f.done:
		return f.img, true, f.err
	default:
		return nil, false, nil
	}
}

// Wait blocks until the job is complete or ctx is cancelled.
func (f *Fence) Wait(ctx context.Context) (*image.RGBA, error) {
	select {
	case <-f.done:
		return f.img, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
