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
	"errors"
	"image"
	"log/slog"

	"seehuhn.de/go/pagerender/composite"
	"seehuhn.de/go/pagerender/schedule"
	"seehuhn.de/go/pagerender/view"
)

// ErrNoPages is returned by [NewViewer] for a document without pages.
var ErrNoPages = errors.New("pagerender: document has no pages")

// Viewer shows the pages of a document on an output surface of fixed
// size, which can be changed with [view.Resize] events.
//
// Input events are handled without waiting for rendering.  While a page
// is rendered, [Viewer.Frame] shows an older rendering of the page, scaled
// to the current zoom, or the background if there is none.
//
// A Viewer must only be used from a single goroutine.  The channel
// returned by [Viewer.Notify] can be used to wait for rendering progress.
type Viewer struct {
	cfg   Config
	log   *slog.Logger
	close func() error

	sched *schedule.Scheduler
	state *view.State
	comp  composite.Compositor

	surface *image.RGBA
	last    schedule.Frame
}

// NewViewer returns a viewer showing the first page of src at zoom 1.
func NewViewer(src schedule.Source, width, height int, opts ...Option) (*Viewer, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidConfig
	}
	n := src.NumPages()
	if n == 0 {
		return nil, ErrNoPages
	}

	dev, release := cfg.device()
	v := &Viewer{
		cfg:   cfg,
		log:   cfg.logger(),
		close: release,
		sched: schedule.New(src, dev, cfg.scheduleOptions()),
		state: view.NewState(view.Config{NumPages: n, ZoomStep: cfg.ZoomStep}, width, height),
		comp:  composite.Compositor{Sampling: cfg.Sampling, Background: cfg.Background},
	}
	v.surface = image.NewRGBA(image.Rect(0, 0, width, height))
	if _, err := v.sched.Request(v.state.Request()); err != nil {
		v.Close()
		return nil, err
	}
	return v, nil
}

// Handle applies an input event.  Rendering of newly needed pages starts
// in the background; Handle does not wait for it.
func (v *Viewer) Handle(ev view.Event) error {
	if !v.state.Apply(ev) {
		return nil
	}
	if r, ok := ev.(view.Resize); ok {
		v.surface = image.NewRGBA(image.Rect(0, 0, max(r.Width, 0), max(r.Height, 0)))
	}
	req := v.state.Request()
	v.log.Debug("view changed", "page", req.Page, "zoom", req.Zoom,
		"offset_x", req.Offset.X, "offset_y", req.Offset.Y)
	_, err := v.sched.Request(req)
	return err
}

// State returns the current page, zoom and pan offset.
func (v *Viewer) State() view.State {
	return *v.state
}

// Notify returns a channel which receives a value when rendering has
// progressed and [Viewer.Frame] may show something new.
func (v *Viewer) Notify() <-chan struct{} {
	return v.sched.Notify()
}

// Frame collects finished render jobs and draws the best available
// rendering of the current view.  The returned image is reused by the
// next call to Frame.
func (v *Viewer) Frame() (*image.RGBA, schedule.Frame) {
	v.sched.Poll()
	fr := v.sched.Current()
	if fr.Status != v.last.Status || fr.Err != v.last.Err {
		switch fr.Status {
		case schedule.StatusFailed:
			v.log.Warn("page not rendered", "page", fr.Key.Page, "error", fr.Err)
		case schedule.StatusReady:
			v.log.Debug("page ready", "page", fr.Key.Page, "bucket", fr.Key.Bucket)
		}
	}
	v.last = fr

	vp := composite.Viewport{Zoom: v.state.Zoom, Offset: v.state.Offset}
	if fr.Surface != nil {
		v.comp.Present(v.surface, fr.Surface.Image, fr.Surface.Scale, vp)
	} else {
		v.comp.Present(v.surface, nil, 0, vp)
	}
	return v.surface, fr
}

// Wait blocks until all started render jobs have finished, or until ctx
// is cancelled.
func (v *Viewer) Wait(ctx context.Context) error {
	return v.sched.Wait(ctx)
}

// Invalidate discards all renderings of the given page.
func (v *Viewer) Invalidate(page int) {
	v.sched.Invalidate(page)
}

// Close stops all rendering and releases the device, if the viewer
// created it.
func (v *Viewer) Close() error {
	err := v.sched.Close()
	if v.close != nil {
		err = errors.Join(err, v.close())
		v.close = nil
	}
	return err
}
