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

// Package pagerender renders vector pages to RGBA images.
//
// Pages are described as lists of [scene.Op] drawing operations in the
// PDF/PostScript imaging model: filled and stroked paths, glyph outlines,
// images, clipping, and transformation matrices.  Rendering proceeds in
// stages:
//
//   - package scene flattens the operations into device-space edges,
//   - package binner assigns the edges to fixed-size tiles,
//   - package fine computes antialiased coverage and colors per tile,
//   - package composite maps the resulting raster onto the output.
//
// [Render] runs this pipeline once.  A [Viewer] keeps a cache of
// rendered pages and re-renders in the background as the user turns
// pages, zooms or pans, so that input handling never blocks.
package pagerender

//go:generate go run ./cmd/pagerender -o testdata/cases

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"seehuhn.de/go/pagerender/composite"
	"seehuhn.de/go/pagerender/schedule"
)

// MaxOutputPixels is the largest image size, in pixels, returned by
// [Render].
const MaxOutputPixels = 1 << 28

// ErrOutputSize is returned by [Render] for output images larger than
// [MaxOutputPixels].
var ErrOutputSize = errors.New("pagerender: output image too large")

// Render renders one page of src, as described by req, and returns the
// result.  If req.Width or req.Height is zero, the output covers the
// whole page at the requested zoom.
//
// The page is rasterized at the canonical zoom of the zoom bucket
// containing req.Zoom, exactly as a [Viewer] would show it, and then
// resampled to req.Zoom.  For example, with the default zoom threshold
// of 1.5 a request for zoom 2 is rasterized at zoom 2.25.  Use
// [WithZoomThreshold] to choose the bucket spacing.  If the raster does
// not fit into the cache budget, a lower resolution is used.
//
// Rendering the same request twice gives identical images.
func Render(ctx context.Context, src schedule.Source, req schedule.Request, opts ...Option) (*image.RGBA, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Width < 0 || req.Height < 0 {
		return nil, fmt.Errorf("%w: output size %dx%d", ErrInvalidConfig, req.Width, req.Height)
	}

	w, h := float64(req.Width), float64(req.Height)
	if req.Width == 0 || req.Height == 0 {
		page, err := src.Page(ctx, req.Page)
		if err != nil {
			return nil, err
		}
		if req.Width == 0 {
			w = outputSize(page.Width, req.Zoom)
		}
		if req.Height == 0 {
			h = outputSize(page.Height, req.Zoom)
		}
	}
	if w*h > MaxOutputPixels {
		return nil, fmt.Errorf("%w: %gx%g pixels", ErrOutputSize, w, h)
	}

	dev, release := cfg.device()
	defer release()
	s := schedule.New(src, dev, cfg.scheduleOptions())
	defer s.Close()

	if _, err := s.Request(req); err != nil {
		return nil, err
	}
	if err := s.Wait(ctx); err != nil {
		return nil, err
	}
	fr := s.Current()
	if fr.Status != schedule.StatusReady {
		if fr.Err != nil {
			return nil, fmt.Errorf("page %d: %w", req.Page, fr.Err)
		}
		return nil, fmt.Errorf("page %d: %s", req.Page, fr.Status)
	}

	req.Width, req.Height = int(w), int(h)
	dst := image.NewRGBA(image.Rect(0, 0, req.Width, req.Height))
	comp := composite.Compositor{Sampling: cfg.Sampling, Background: cfg.Background}
	comp.Present(dst, fr.Surface.Image, fr.Surface.Scale, composite.Viewport{
		Zoom:   req.Zoom,
		Offset: req.Offset,
	})
	return dst, nil
}

func outputSize(pageSize, zoom float64) float64 {
	return max(math.Ceil(pageSize*zoom-1e-6), 1)
}
