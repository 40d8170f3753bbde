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


package pagerender

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"seehuhn.de/go/pagerender/gpu"
	"seehuhn.de/go/pagerender/schedule"
	"seehuhn.de/go/pagerender/testcases"
	"seehuhn.de/go/pagerender/view"
)

// heldDevice queues every job until the test runs it.
type heldDevice struct {
	*gpu.Compute
	jobs chan heldJob
}

type heldJob struct {
	job   *gpu.Job
	fence *gpu.Fence
}

func newHeldDevice() *heldDevice {
	return &heldDevice{
		Compute: gpu.NewCompute(&gpu.ComputeOptions{Workers: 2}),
		jobs:    make(chan heldJob, 16),
	}
}

func (d *heldDevice) Submit(ctx context.Context, job *gpu.Job) (*gpu.Fence, error) {
	f := gpu.NewFence()
	d.jobs <- heldJob{job: job, fence: f}
	return f, nil
}

// runNext renders the oldest held job.
func (d *heldDevice) runNext(t *testing.T) {
	t.Helper()
	var j heldJob
	select {
	case j = <-d.jobs:
	case <-time.After(10 * time.Second):
		t.Fatal("no job submitted")
	}
	ctx := context.Background()
	f, err := d.Compute.Submit(ctx, j.job)
	if err != nil {
		t.Fatal(err)
	}
	img, err := f.Wait(ctx)
	j.fence.Signal(img, err)
}

func waitViewer(t *testing.T, v *Viewer) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := v.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}

func checkPixel(t *testing.T, img *image.RGBA, x, y int, want color.RGBA) {
	t.Helper()
	if got := img.RGBAAt(x, y); got != want {
		t.Errorf("pixel (%d, %d): got %v, want %v", x, y, got, want)
	}
}

func TestViewer(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	red := color.RGBA{255, 0, 0, 255}

	dev := newHeldDevice()
	defer dev.Close()
	src := testcases.Pages([]testcases.Case{testcases.Overlap, testcases.Overlap})
	v, err := NewViewer(src, 400, 300, WithDevice(dev), WithZoomThreshold(1.5))
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()

	// nothing rendered yet
	img, fr := v.Frame()
	if fr.Status != schedule.StatusPlaceholder {
		t.Fatalf("got %s, want placeholder", fr.Status)
	}
	checkPixel(t, img, 0, 0, white)
	checkPixel(t, img, 120, 120, white)

	dev.runNext(t)
	waitViewer(t, v)
	img, fr = v.Frame()
	if fr.Status != schedule.StatusReady || fr.Key.Bucket != 0 {
		t.Fatalf("got %s in bucket %d, want ready in bucket 0", fr.Status, fr.Key.Bucket)
	}
	checkPixel(t, img, 120, 120, red)

	// Zooming to 1.25 selects bucket 1.  Until it is rendered, the
	// bucket 0 surface is shown scaled up.
	if err := v.Handle(view.ZoomIn{}); err != nil {
		t.Fatal(err)
	}
	st := v.State()
	if st.Zoom != 1.25 || st.Offset.X != 50 || st.Offset.Y != 37.5 {
		t.Fatalf("unexpected state zoom=%g offset=%v", st.Zoom, st.Offset)
	}
	img, fr = v.Frame()
	if fr.Status != schedule.StatusPending || fr.Surface == nil || fr.Surface.Scale != 1 {
		t.Fatalf("got %s, want pending with the old surface", fr.Status)
	}
	checkPixel(t, img, 100, 112, red)

	dev.runNext(t)
	waitViewer(t, v)
	img, fr = v.Frame()
	if fr.Status != schedule.StatusReady || fr.Key.Bucket != 1 || fr.Surface.Scale != 1.5 {
		t.Fatalf("got %s in bucket %d, want ready in bucket 1", fr.Status, fr.Key.Bucket)
	}
	checkPixel(t, img, 100, 112, red)

	// the second page has not been rendered at all
	if err := v.Handle(view.PageForward{}); err != nil {
		t.Fatal(err)
	}
	img, fr = v.Frame()
	if fr.Status != schedule.StatusPlaceholder || fr.Key.Page != 1 {
		t.Fatalf("got %s for page %d, want placeholder for page 1", fr.Status, fr.Key.Page)
	}
	checkPixel(t, img, 100, 112, white)
}

func TestViewerResize(t *testing.T) {
	src := testcases.Pages([]testcases.Case{testcases.Overlap})
	v, err := NewViewer(src, 100, 100)
	if err != nil {
		t.Fatal(err)
	}
	defer v.Close()
	waitViewer(t, v)

	if err := v.Handle(view.Resize{Width: 300, Height: 200}); err != nil {
		t.Fatal(err)
	}
	img, fr := v.Frame()
	if img.Rect.Dx() != 300 || img.Rect.Dy() != 200 {
		t.Errorf("got surface %v, want 300x200", img.Rect)
	}
	if fr.Status != schedule.StatusReady {
		t.Errorf("got %s, want ready", fr.Status)
	}
}

func TestViewerErrors(t *testing.T) {
	if _, err := NewViewer(schedule.Pages{}, 100, 100); err != ErrNoPages {
		t.Errorf("empty document: %v", err)
	}
	src := testcases.Pages([]testcases.Case{testcases.Overlap})
	if _, err := NewViewer(src, 0, 100); err == nil {
		t.Error("zero width accepted")
	}
}
