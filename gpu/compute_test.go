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
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pagerender/scene"
)

func testScene(w, h int) *scene.Scene {
	ops := []scene.Op{
		scene.SetPaint{Paint: scene.Color{B: 1, A: 0.75}},
		scene.Fill{Path: scene.Circle(50, 50, 40), Rule: scene.NonZero},
	}
	return scene.NewBuilder(nil).Build(ops, matrix.Identity, w, h)
}

func TestComputeDeterministic(t *testing.T) {
	ctx := context.Background()
	s := testScene(100, 100)

	var ref []byte
	for _, workers := range []int{1, 3, 8} {
		dev := NewCompute(&ComputeOptions{Workers: workers})
		for _, tileSize := range []int{8, 16, 100} {
			f, err := dev.Submit(ctx, &Job{Scene: s, TileSize: tileSize})
			if err != nil {
				t.Fatal(err)
			}
			img, err := f.Wait(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if ref == nil {
				ref = img.Pix
			} else if !bytes.Equal(ref, img.Pix) {
				t.Errorf("workers=%d tileSize=%d: output differs", workers, tileSize)
			}
		}
		dev.Close()
	}
}

func TestComputeInvalidJob(t *testing.T) {
	dev := NewCompute(nil)
	defer dev.Close()
	ctx := context.Background()

	if _, err := dev.Submit(ctx, nil); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("nil job: %v", err)
	}
	if _, err := dev.Submit(ctx, &Job{Scene: &scene.Scene{}}); !errors.Is(err, ErrInvalidJob) {
		t.Errorf("empty canvas: %v", err)
	}
}

func TestComputeOutOfMemory(t *testing.T) {
	dev := NewCompute(&ComputeOptions{MemoryLimit: 4 * 50 * 50})
	defer dev.Close()
	ctx := context.Background()

	if _, err := dev.Submit(ctx, &Job{Scene: testScene(100, 100)}); !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("large job: %v", err)
	}
	f, err := dev.Submit(ctx, &Job{Scene: testScene(50, 50)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Wait(ctx); err != nil {
		t.Error(err)
	}
}

func TestComputeLoseAndReset(t *testing.T) {
	dev := NewCompute(nil)
	defer dev.Close()
	ctx := context.Background()

	dev.Lose()
	if _, err := dev.Submit(ctx, &Job{Scene: testScene(10, 10)}); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("submit on lost device: %v", err)
	}
	if err := dev.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	f, err := dev.Submit(ctx, &Job{Scene: testScene(10, 10)})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.Wait(ctx); err != nil {
		t.Error(err)
	}
}

func TestComputeClosed(t *testing.T) {
	dev := NewCompute(nil)
	dev.Close()
	ctx := context.Background()
	if _, err := dev.Submit(ctx, &Job{Scene: testScene(10, 10)}); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("submit on closed device: %v", err)
	}
	if err := dev.Reset(ctx); !errors.Is(err, ErrDeviceLost) {
		t.Errorf("reset of closed device: %v", err)
	}
}

func TestFence(t *testing.T) {
	f := NewFence()
	if _, ok, _ := f.Poll(); ok {
		t.Fatal("new fence is signalled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if _, err := f.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait on unsignalled fence: %v", err)
	}

	errBoom := errors.New("boom")
	f.Signal(nil, errBoom)
	f.Signal(nil, nil) // ignored
	_, ok, err := f.Poll()
	if !ok || !errors.Is(err, errBoom) {
		t.Errorf("Poll: %t %v", ok, err)
	}
	select {
	case <-f.Done():
	default:
		t.Error("Done channel not closed")
	}
}
