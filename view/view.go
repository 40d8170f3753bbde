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

// Package view tracks the viewport state of a page viewer.
//
// The windowing layer translates input into [Event] values, and
// [State.Apply] updates the page, zoom and pan offset accordingly.
package view

import (
	"math"

	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pagerender/schedule"
)

// Event is a viewport change.
type Event interface {
	isEvent()
}

// PageForward moves N pages forward.  N = 0 moves one page.
type PageForward struct{ N int }

// PageBack moves N pages back.  N = 0 moves one page.
type PageBack struct{ N int }

// ZoomIn enlarges the page by one zoom step, keeping the centre of the
// output surface fixed.
type ZoomIn struct{}

// ZoomOut reduces the page by one zoom step.
type ZoomOut struct{}

// Pan moves the page by (DX, DY) output pixels.
type Pan struct{ DX, DY float64 }

// Resize changes the size of the output surface.
type Resize struct{ Width, Height int }

func (PageForward) isEvent() {}
func (PageBack) isEvent()    {}
func (ZoomIn) isEvent()      {}
func (ZoomOut) isEvent()     {}
func (Pan) isEvent()         {}
func (Resize) isEvent()      {}

// Defaults for [Config].
const (
	DefaultZoomStep = 1.25
	DefaultMinZoom  = 1.0 / 16
	DefaultMaxZoom  = 64
)

// Config holds the fixed parameters of a viewer.
type Config struct {
	NumPages int

	// ZoomStep is the factor applied by ZoomIn and ZoomOut.
	ZoomStep float64

	MinZoom, MaxZoom float64
}

// State is the current viewport.
type State struct {
	Page   int
	Zoom   float64
	Offset vec.Vec2
	Width  int
	Height int

	cfg Config
}

// NewState returns the initial state: the first page at zoom 1, for an
// output surface of the given size.
func NewState(cfg Config, width, height int) *State {
	if !(cfg.ZoomStep > 1) {
		cfg.ZoomStep = DefaultZoomStep
	}
	if !(cfg.MinZoom > 0) {
		cfg.MinZoom = DefaultMinZoom
	}
	if !(cfg.MaxZoom >= cfg.MinZoom) {
		cfg.MaxZoom = max(DefaultMaxZoom, cfg.MinZoom)
	}
	return &State{
		Zoom:   clamp(1, cfg.MinZoom, cfg.MaxZoom),
		Width:  width,
		Height: height,
		cfg:    cfg,
	}
}

// Apply updates the state and reports whether anything changed.
func (s *State) Apply(ev Event) bool {
	switch ev := ev.(type) {
	case PageForward:
		return s.turn(pages(ev.N))
	case PageBack:
		return s.turn(-pages(ev.N))
	case ZoomIn:
		return s.zoomTo(s.Zoom * s.cfg.ZoomStep)
	case ZoomOut:
		return s.zoomTo(s.Zoom / s.cfg.ZoomStep)
	case Pan:
		if ev.DX == 0 && ev.DY == 0 {
			return false
		}
		s.Offset = s.Offset.Sub(vec.Vec2{X: ev.DX, Y: ev.DY})
		return true
	case Resize:
		if ev.Width == s.Width && ev.Height == s.Height {
			return false
		}
		// keep the centre in place
		s.Offset.X -= float64(ev.Width-s.Width) / 2
		s.Offset.Y -= float64(ev.Height-s.Height) / 2
		s.Width, s.Height = ev.Width, ev.Height
		return true
	}
	return false
}

// Request returns the render request for the current state.
func (s *State) Request() schedule.Request {
	return schedule.Request{
		Page:   s.Page,
		Zoom:   s.Zoom,
		Offset: s.Offset,
		Width:  s.Width,
		Height: s.Height,
	}
}

func (s *State) turn(delta int) bool {
	last := max(s.cfg.NumPages-1, 0)
	p := min(max(s.Page+delta, 0), last)
	if p == s.Page {
		return false
	}
	s.Page = p
	s.Offset = vec.Vec2{}
	return true
}

// zoomTo changes the zoom factor, keeping the page point at the centre of
// the output surface in place.
func (s *State) zoomTo(zoom float64) bool {
	zoom = clamp(zoom, s.cfg.MinZoom, s.cfg.MaxZoom)
	if zoom == s.Zoom {
		return false
	}
	c := vec.Vec2{X: float64(s.Width) / 2, Y: float64(s.Height) / 2}
	p := s.Offset.Add(c).Mul(1 / s.Zoom)
	s.Offset = p.Mul(zoom).Sub(c)
	s.Zoom = zoom
	return true
}

func pages(n int) int {
	if n <= 0 {
		return 1
	}
	return n
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
