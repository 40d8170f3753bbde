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
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"seehuhn.de/go/pagerender/binner"
	"seehuhn.de/go/pagerender/composite"
	"seehuhn.de/go/pagerender/gpu"
	"seehuhn.de/go/pagerender/scene"
	"seehuhn.de/go/pagerender/schedule"
	"seehuhn.de/go/pagerender/view"
)

// ErrInvalidConfig is returned when a configuration value is out of range.
var ErrInvalidConfig = errors.New("pagerender: invalid configuration")

// Limits for configuration values.
const (
	MaxTileSize    = 256
	MaxSupersample = 16
)

// Config holds the settings of a renderer.
type Config struct {
	// TileSize is the edge length of the square tiles in pixels.
	TileSize int

	// Supersample selects the antialiasing method: 1 computes exact area
	// coverage, n >= 2 uses n×n point samples per pixel.
	Supersample int

	// CacheBudget is the memory in bytes available for cached page
	// surfaces.  Zero means no limit.
	CacheBudget int64

	// ZoomThreshold is the zoom ratio at which pages are rasterized
	// again.  Smaller zoom changes are handled by resampling the cached
	// raster.
	ZoomThreshold float64

	// ZoomStep is the zoom factor of one ZoomIn or ZoomOut event.
	ZoomStep float64

	// Flatness is the curve flattening tolerance in device pixels.
	Flatness float64

	Background scene.Color
	Sampling   composite.Sampling

	// Workers is the number of tiles rasterized in parallel.
	Workers int

	// MaxRetries is the number of device reset attempts after the first
	// one, and RetryInterval the delay before the first retry.
	MaxRetries    int
	RetryInterval time.Duration

	// MinScale is the smallest fraction of the requested resolution used
	// when memory is short.
	MinScale float64

	// Prefetch is the number of neighbouring pages rendered in the
	// background.
	Prefetch int

	// Device executes the render jobs.  If nil, a [gpu.Compute] device
	// with Workers workers is used.
	Device gpu.Device

	// Logger receives diagnostics.  If nil, the logger set by [SetLogger]
	// is used.
	Logger *slog.Logger
}

// DefaultConfig returns the default settings.
func DefaultConfig() Config {
	return Config{
		TileSize:      binner.DefaultTileSize,
		Supersample:   1,
		CacheBudget:   256 << 20,
		ZoomThreshold: schedule.DefaultZoomThreshold,
		ZoomStep:      view.DefaultZoomStep,
		Flatness:      scene.DefaultFlatness,
		Background:    scene.White,
		Sampling:      composite.Bilinear,
		Workers:       runtime.GOMAXPROCS(0),
		MaxRetries:    schedule.DefaultMaxRetries,
		RetryInterval: schedule.DefaultRetryInterval,
		MinScale:      schedule.DefaultMinScale,
	}
}

// Option changes a configuration setting.
type Option func(*Config)

// NewConfig returns the default configuration, modified by opts.
func NewConfig(opts ...Option) (Config, error) {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// WithTileSize sets the tile edge length in pixels.
func WithTileSize(n int) Option {
	return func(c *Config) { c.TileSize = n }
}

// WithSupersample sets the antialiasing method.
func WithSupersample(n int) Option {
	return func(c *Config) { c.Supersample = n }
}

// WithCacheBudget sets the memory budget of the surface cache in bytes.
func WithCacheBudget(bytes int64) Option {
	return func(c *Config) { c.CacheBudget = bytes }
}

// WithZoomThreshold sets the zoom ratio at which pages are rasterized
// again.
func WithZoomThreshold(t float64) Option {
	return func(c *Config) { c.ZoomThreshold = t }
}

// WithZoomStep sets the zoom factor of one zoom event.
func WithZoomStep(s float64) Option {
	return func(c *Config) { c.ZoomStep = s }
}

// WithFlatness sets the curve flattening tolerance.
func WithFlatness(f float64) Option {
	return func(c *Config) { c.Flatness = f }
}

// WithBackground sets the page background color.
func WithBackground(col scene.Color) Option {
	return func(c *Config) { c.Background = col }
}

// WithSampling sets the filter used to display rasters at a zoom level
// other than the one they were rendered at.
func WithSampling(s composite.Sampling) Option {
	return func(c *Config) { c.Sampling = s }
}

// WithWorkers sets the number of tiles rasterized in parallel.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithRetry sets how often and how fast a lost device is reset.
func WithRetry(maxRetries int, interval time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = maxRetries
		c.RetryInterval = interval
	}
}

// WithMinScale sets the smallest resolution fraction used under memory
// pressure.
func WithMinScale(s float64) Option {
	return func(c *Config) { c.MinScale = s }
}

// WithPrefetch sets the number of neighbouring pages rendered in the
// background.
func WithPrefetch(n int) Option {
	return func(c *Config) { c.Prefetch = n }
}

// WithDevice sets the device which executes render jobs.
func WithDevice(d gpu.Device) Option {
	return func(c *Config) { c.Device = d }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Validate checks that all settings are in range.
func (c *Config) Validate() error {
	switch {
	case c.TileSize < 1 || c.TileSize > MaxTileSize:
		return fmt.Errorf("%w: tile size %d", ErrInvalidConfig, c.TileSize)
	case c.Supersample < 1 || c.Supersample > MaxSupersample:
		return fmt.Errorf("%w: supersample factor %d", ErrInvalidConfig, c.Supersample)
	case c.CacheBudget < 0:
		return fmt.Errorf("%w: cache budget %d", ErrInvalidConfig, c.CacheBudget)
	case !(c.ZoomThreshold > 1):
		return fmt.Errorf("%w: zoom threshold %g", ErrInvalidConfig, c.ZoomThreshold)
	case !(c.ZoomStep > 1):
		return fmt.Errorf("%w: zoom step %g", ErrInvalidConfig, c.ZoomStep)
	case !(c.Flatness > 0):
		return fmt.Errorf("%w: flatness %g", ErrInvalidConfig, c.Flatness)
	case c.Workers < 1:
		return fmt.Errorf("%w: %d workers", ErrInvalidConfig, c.Workers)
	case c.MaxRetries < 0:
		return fmt.Errorf("%w: %d retries", ErrInvalidConfig, c.MaxRetries)
	case c.RetryInterval <= 0:
		return fmt.Errorf("%w: retry interval %s", ErrInvalidConfig, c.RetryInterval)
	case !(c.MinScale > 0 && c.MinScale <= 1):
		return fmt.Errorf("%w: minimum scale %g", ErrInvalidConfig, c.MinScale)
	case c.Prefetch < 0:
		return fmt.Errorf("%w: prefetch %d", ErrInvalidConfig, c.Prefetch)
	}
	b := c.Background
	for _, v := range []float64{b.R, b.G, b.B, b.A} {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: background %v", ErrInvalidConfig, b)
		}
	}
	return nil
}

func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return Logger()
}

// device returns the configured device, or a new compute device.  The
// returned function releases a device created here.
func (c *Config) device() (gpu.Device, func() error) {
	if c.Device != nil {
		return c.Device, func() error { return nil }
	}
	// rasters in flight end up in the cache, so they share its budget
	d := gpu.NewCompute(&gpu.ComputeOptions{
		Workers:     c.Workers,
		MemoryLimit: c.CacheBudget,
		Logger:      c.logger(),
	})
	return d, d.Close
}

func (c *Config) scheduleOptions() *schedule.Options {
	retries := c.MaxRetries
	if retries == 0 {
		retries = -1 // zero selects the default in package schedule
	}
	return &schedule.Options{
		TileSize:      c.TileSize,
		Supersample:   c.Supersample,
		Background:    c.Background,
		Flatness:      c.Flatness,
		ZoomThreshold: c.ZoomThreshold,
		CacheBudget:   c.CacheBudget,
		MaxRetries:    retries,
		RetryInterval: c.RetryInterval,
		MinScale:      c.MinScale,
		Prefetch:      c.Prefetch,
		Logger:        c.logger(),
	}
}
