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

// Package schedule decides when pages are rendered.
//
// A [Scheduler] is driven by a single control goroutine, which calls
// [Scheduler.Request] whenever the viewport changes and [Scheduler.Poll]
// whenever the channel returned by [Scheduler.Notify] fires.  Neither call
// blocks on rendering.  Render jobs run on their own goroutines and hand
// their results back through a completion queue, which is only drained by
// Poll.  All cache state changes therefore happen on the control
// goroutine, in the order in which the results are polled.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"seehuhn.de/go/pagerender/cache"
	"seehuhn.de/go/pagerender/gpu"
	"seehuhn.de/go/pagerender/scene"
)

var (
	// ErrPageRange is returned for requests of pages which do not exist.
	ErrPageRange = errors.New("schedule: page out of range")

	// ErrInvalidZoom is returned for requests with a zoom factor which is
	// not positive and finite.
	ErrInvalidZoom = errors.New("schedule: invalid zoom")

	// ErrClosed is returned after the scheduler has been closed.
	ErrClosed = errors.New("schedule: scheduler closed")
)

// Page is the content of one page.
type Page struct {
	// Width and Height give the page size in page units.  At zoom 1, one
	// page unit maps to one pixel.
	Width, Height float64

	// Ops are the drawing operations, in page coordinates with the origin
	// in the top-left corner and y pointing down.
	Ops []scene.Op
}

// Source provides page content.
type Source interface {
	NumPages() int
	Page(ctx context.Context, i int) (*Page, error)
}

// Pages is a [Source] for pages held in memory.
type Pages []*Page

// NumPages implements the [Source] interface.
func (p Pages) NumPages() int {
	return len(p)
}

// Page implements the [Source] interface.
func (p Pages) Page(_ context.Context, i int) (*Page, error) {
	if i < 0 || i >= len(p) {
		return nil, fmt.Errorf("%w: %d", ErrPageRange, i)
	}
	return p[i], nil
}

// Request describes what should be shown.
type Request struct {
	Page int
	Zoom float64

	// Offset is the pan offset in output pixels, see
	// [composite.Viewport].
	Offset vec.Vec2

	// Width and Height give the size of the output surface.
	Width, Height int
}

// Status describes the surface of a [Frame].
type Status uint8

const (
	// StatusPlaceholder means that nothing has been rendered for the
	// page yet.  Surface is nil.
	StatusPlaceholder Status = iota

	// StatusPending means that the requested surface is being rendered.
	// Surface, if not nil, is an older rendering of the page.
	StatusPending

	// StatusReady means that Surface is the requested rendering.
	StatusReady

	// StatusFailed means that rendering failed.  Surface, if not nil, is
	// the last known good rendering of the page.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusPlaceholder:
		return "placeholder"
	case StatusPending:
		return "pending"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	}
	return fmt.Sprintf("Status(%d)", uint8(s))
}

// Frame is the best currently available surface for a request.
type Frame struct {
	Status  Status
	Key     cache.Key
	Surface *cache.Surface
	Err     error
}

// Default values for [Options].
const (
	DefaultZoomThreshold = 1.5
	DefaultMaxRetries    = 5
	DefaultRetryInterval = 50 * time.Millisecond
	DefaultMinScale      = 0.125

	// MaxSurfaceBytes bounds the size of a single surface, also when the
	// cache budget is unlimited.
	MaxSurfaceBytes = 1 << 30
)

// Options configures a [Scheduler].
type Options struct {
	// TileSize and Supersample are passed on to the device.
	TileSize    int
	Supersample int

	Background scene.Color

	// Flatness is the curve tolerance in device pixels.
	Flatness float64

	// ZoomThreshold is the zoom ratio between neighbouring cache
	// buckets.  Pages are re-rasterized when the zoom bucket changes.
	ZoomThreshold float64

	// CacheBudget is the maximum memory in bytes used by cached surfaces.
	// Zero means no limit.
	CacheBudget int64

	// MaxRetries is the number of device resets tried after the first
	// one failed, before giving up.  Zero selects DefaultMaxRetries,
	// negative values disable retries.
	MaxRetries int

	// RetryInterval is the delay before the first reset retry.  Later
	// delays grow exponentially.
	RetryInterval time.Duration

	// MinScale is the smallest fraction of the requested resolution used
	// when memory is short.
	MinScale float64

	// Prefetch is the number of pages before and after the visible page
	// which are rendered in the background.
	Prefetch int

	Logger *slog.Logger
}

// Scheduler tracks the wanted surfaces and runs render jobs.
//
// Request, Poll, Current, Invalidate and Wait must be called from a
// single goroutine.  Notify, Idle and Cache may be called from anywhere.
type Scheduler struct {
	src     Source
	dev     gpu.Device
	cache   *cache.Cache
	builder *scene.Builder
	log     *slog.Logger

	tileSize      int
	supersample   int
	background    scene.Color
	threshold     float64
	maxRetries    int
	retryInterval time.Duration
	minScale      float64
	prefetch      int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	queue  []result
	busy   int // jobs and resets whose result is not yet queued
	notify chan struct{}

	// owned by the control goroutine
	visible    cache.Key
	hasVisible bool
	wanted     map[int]cache.Key // latest wanted key per page
	wantedZoom map[int]float64
	factor     map[cache.Key]float64
	recovering bool
	lost       []cache.Key
	closed     bool
}

// result is a completed job or device reset.
type result struct {
	key     cache.Key
	gen     uint64
	factor  float64
	scale   float64
	retried bool
	img     *image.RGBA
	err     error

	reset bool
}

// New returns a scheduler which renders the pages of src on dev.
func New(src Source, dev gpu.Device, opt *Options) *Scheduler {
	if opt == nil {
		opt = &Options{}
	}
	s := &Scheduler{
		src:           src,
		dev:           dev,
		log:           opt.Logger,
		tileSize:      opt.TileSize,
		supersample:   opt.Supersample,
		background:    opt.Background,
		threshold:     opt.ZoomThreshold,
		maxRetries:    opt.MaxRetries,
		retryInterval: opt.RetryInterval,
		minScale:      opt.MinScale,
		prefetch:      opt.Prefetch,
		notify:        make(chan struct{}, 1),
		wanted:        make(map[int]cache.Key),
		wantedZoom:    make(map[int]float64),
		factor:        make(map[cache.Key]float64),
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if !(s.threshold > 1) {
		s.threshold = DefaultZoomThreshold
	}
	if s.maxRetries < 0 {
		s.maxRetries = 0
	} else if s.maxRetries == 0 {
		s.maxRetries = DefaultMaxRetries
	}
	if s.retryInterval <= 0 {
		s.retryInterval = DefaultRetryInterval
	}
	if !(s.minScale > 0) || s.minScale > 1 {
		s.minScale = DefaultMinScale
	}
	s.cache = cache.New(&cache.Options{
		Budget: opt.CacheBudget,
		Logger: s.log,
	})
	s.builder = scene.NewBuilder(&scene.Options{
		Flatness: opt.Flatness,
		Logger:   s.log,
	})
	s.ctx, s.cancel = context.WithCancel(context.Background())
	return s
}

// Key returns the cache key which serves r.
func (s *Scheduler) Key(r Request) cache.Key {
	return cache.Key{Page: r.Page, Bucket: scene.ZoomBucket(r.Zoom, s.threshold)}
}

// Scale returns the raster scale of the zoom bucket of key k, before any
// reduction because of memory pressure.
func (s *Scheduler) Scale(k cache.Key) float64 {
	return scene.BucketZoom(k.Bucket, s.threshold)
}

// Request makes r the visible request and returns the best surface which
// is available right now.  If the surface for r is not Ready, a render
// job is started, unless one is already running.  A pending job for a
// different zoom bucket of the same page is superseded: its result will
// be discarded.
func (s *Scheduler) Request(r Request) (Frame, error) {
	if s.closed {
		return Frame{}, ErrClosed
	}
	if n := s.src.NumPages(); r.Page < 0 || r.Page >= n {
		return Frame{}, fmt.Errorf("%w: page %d of %d", ErrPageRange, r.Page, n)
	}
	if !(r.Zoom > 0) || math.IsInf(r.Zoom, 0) {
		return Frame{}, fmt.Errorf("%w: %g", ErrInvalidZoom, r.Zoom)
	}

	k := s.Key(r)
	if sc := s.Scale(k); !(sc > 0) || math.IsInf(sc, 0) {
		return Frame{}, fmt.Errorf("%w: %g", ErrInvalidZoom, r.Zoom)
	}
	s.visible, s.hasVisible = k, true
	s.cache.MarkDisplayed(k)
	s.want(k, r.Zoom)
	s.prefetchPages()
	return s.frame(k), nil
}

// Current returns the best available surface for the visible request.
func (s *Scheduler) Current() Frame {
	if !s.hasVisible {
		return Frame{}
	}
	return s.frame(s.visible)
}

// Poll applies the results of completed jobs to the cache and returns
// the number of results processed.
func (s *Scheduler) Poll() int {
	s.mu.Lock()
	q := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, r := range q {
		s.apply(r)
	}
	if len(q) > 0 {
		s.prefetchPages()
	}
	return len(q)
}

// Notify returns a channel which receives a value when results are
// waiting to be polled.
func (s *Scheduler) Notify() <-chan struct{} {
	return s.notify
}

// Idle reports whether no jobs are running and no results are waiting.
func (s *Scheduler) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy == 0 && len(s.queue) == 0
}

// Wait polls until the scheduler is idle or ctx is cancelled.
func (s *Scheduler) Wait(ctx context.Context) error {
	for {
		s.Poll()
		if s.Idle() {
			return nil
		}
		select {
		case <-s.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Invalidate discards all renderings of the given page, for example after
// its content changed.  Outdated surfaces are still shown until the new
// rendering is Ready.
func (s *Scheduler) Invalidate(page int) {
	if s.closed {
		return
	}
	n := s.cache.Invalidate(page)
	s.log.Debug("page invalidated", "page", page, "keys", n)
	if s.hasVisible && s.visible.Page == page {
		s.ensure(s.visible)
	}
}

// Cache gives access to the surface cache.
func (s *Scheduler) Cache() *cache.Cache {
	return s.cache
}

// Close stops the scheduler.  Running jobs are cancelled, and Close waits
// for their goroutines to exit.  The device is not closed.
func (s *Scheduler) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.cancel()
	s.wg.Wait()
	return nil
}

func (s *Scheduler) frame(k cache.Key) Frame {
	e := s.cache.Lookup(k)
	f := Frame{Key: k, Surface: e.Surface, Err: e.Err}
	switch e.State {
	case cache.Ready:
		f.Status = StatusReady
		return f
	case cache.Failed:
		f.Status = StatusFailed
	default:
		f.Status = StatusPending
	}
	if f.Surface == nil {
		f.Surface = s.cache.Fallback(k.Page, k.Bucket)
	}
	if f.Surface == nil && f.Status == StatusPending {
		f.Status = StatusPlaceholder
	}
	return f
}

// want makes k, requested at the given zoom, the wanted key of its page.
// A job for the previous zoom is superseded if the geometry has to be
// flattened again.
func (s *Scheduler) want(k cache.Key, zoom float64) {
	prev, ok := s.wanted[k.Page]
	if ok && scene.NeedsReflatten(s.wantedZoom[k.Page], zoom, s.threshold) {
		if s.cache.Revert(prev) {
			s.log.Debug("job superseded",
				"page", prev.Page, "bucket", prev.Bucket, "by", k.Bucket)
		}
	}
	s.wanted[k.Page] = k
	s.wantedZoom[k.Page] = zoom
	s.ensure(k)
}

// ensure starts a job for k, if k has no surface and no job is running.
func (s *Scheduler) ensure(k cache.Key) {
	switch s.cache.Lookup(k).State {
	case cache.Absent:
	case cache.Failed:
		if s.recovering {
			return // re-issued once the device is back
		}
	default:
		return
	}
	s.start(k)
}

func (s *Scheduler) start(k cache.Key) {
	gen, started := s.cache.Begin(k)
	if !started {
		return
	}
	page, err := s.src.Page(s.ctx, k.Page)
	if err != nil {
		s.cache.Fail(k, gen, err)
		s.log.Warn("page not available", "page", k.Page, "error", err)
		return
	}
	f, err := s.fit(k, page)
	if err != nil {
		s.cache.Fail(k, gen, err)
		s.log.Warn("page does not fit into memory", "page", k.Page, "error", err)
		return
	}
	s.submit(k, gen, page, f, false)
}

// fit returns the fraction of the bucket's resolution at which the page
// is rendered.  The resolution is halved until the surface fits into the
// cache budget, but not below MinScale.  If the surface is still too
// large at MinScale, the largest resolution which fits is used.
func (s *Scheduler) fit(k cache.Key, page *Page) (float64, error) {
	zoom := s.Scale(k)
	f, ok := s.factor[k]
	if !ok {
		f = 1
	}
	limit := min(s.cache.Available(k), MaxSurfaceBytes)
	if limit < cache.SurfaceBytes(1, 1) {
		return 0, fmt.Errorf("%w: %d bytes available for page %d",
			gpu.ErrOutOfMemory, limit, k.Page)
	}

	avail := float64(limit)
	for rasterBytes(page, zoom*f) > avail && f/2 >= s.minScale {
		f /= 2
	}
	for rasterBytes(page, zoom*f) > avail {
		// the area may overflow, so the dimensions are used separately
		w, h := rasterDims(page, zoom*f)
		f *= min(0.95, math.Sqrt(avail/4/w)*math.Sqrt(1/h))
	}
	if !(f > 0) {
		return 0, fmt.Errorf("%w: page %d at zoom %g", gpu.ErrOutOfMemory, k.Page, zoom)
	}
	if f < 1 {
		s.log.Warn("resolution reduced to fit the cache budget",
			"page", k.Page, "bucket", k.Bucket, "factor", f)
	}
	return f, nil
}

// submit runs a render job on a new goroutine.
func (s *Scheduler) submit(k cache.Key, gen uint64, page *Page, factor float64, retried bool) {
	scale := s.Scale(k) * factor
	w, h := rasterSize(page, scale)

	s.mu.Lock()
	s.busy++
	s.mu.Unlock()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		r := result{key: k, gen: gen, factor: factor, scale: scale, retried: retried}

		sc := s.builder.Build(page.Ops, matrix.Matrix{scale, 0, 0, scale, 0, 0}, w, h)
		fence, err := s.dev.Submit(s.ctx, &gpu.Job{
			Scene:       sc,
			TileSize:    s.tileSize,
			Supersample: s.supersample,
			Background:  s.background,
		})
		if err == nil {
			r.img, err = fence.Wait(s.ctx)
		}
		r.err = err
		s.push(r)
	}()
}

func (s *Scheduler) push(r result) {
	s.mu.Lock()
	s.queue = append(s.queue, r)
	s.busy--
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *Scheduler) apply(r result) {
	if r.reset {
		s.deviceReset(r.err)
		return
	}

	k := r.key
	switch {
	case r.err == nil:
		surf := &cache.Surface{Image: r.img, Scale: r.scale}
		if s.cache.Complete(k, r.gen, surf) {
			s.log.Debug("surface ready", "page", k.Page, "bucket", k.Bucket, "gen", r.gen)
		}
	case !s.cache.Current(k, r.gen):
		s.log.Debug("stale failure discarded", "page", k.Page, "bucket", k.Bucket, "error", r.err)
	case errors.Is(r.err, gpu.ErrDeviceLost):
		s.deviceLost(r.err)
	case errors.Is(r.err, gpu.ErrOutOfMemory) && !r.retried && r.factor/2 >= s.minScale:
		f := r.factor / 2
		s.factor[k] = f
		s.log.Warn("device memory exhausted, reducing resolution",
			"page", k.Page, "bucket", k.Bucket, "factor", f)
		page, err := s.src.Page(s.ctx, k.Page)
		if err != nil {
			s.cache.Fail(k, r.gen, err)
			return
		}
		s.submit(k, r.gen, page, f, true)
	default:
		s.cache.Fail(k, r.gen, r.err)
		s.log.Warn("render failed", "page", k.Page, "bucket", k.Bucket, "error", r.err)
	}
}

// prefetchPages renders the neighbours of the visible page, nearest first
// and one at a time, as long as this needs no eviction.
func (s *Scheduler) prefetchPages() {
	if s.prefetch <= 0 || !s.hasVisible || s.recovering || s.closed {
		return
	}
	v := s.visible
	if s.cache.Lookup(v).State != cache.Ready {
		return
	}
	page, err := s.src.Page(s.ctx, v.Page)
	if err != nil {
		return
	}
	size := rasterBytes(page, s.Scale(v))

	n := s.src.NumPages()
	for d := 1; d <= s.prefetch; d++ {
		for _, p := range []int{v.Page + d, v.Page - d} {
			if p < 0 || p >= n {
				continue
			}
			k := cache.Key{Page: p, Bucket: v.Bucket}
			switch s.cache.Lookup(k).State {
			case cache.Pending:
				return // one prefetch at a time
			case cache.Absent:
			default:
				continue
			}
			if float64(s.cache.Free()) < size {
				return
			}
			s.log.Debug("prefetch", "page", p, "bucket", v.Bucket)
			s.want(k, s.Scale(k))
			return
		}
	}
}

// rasterSize returns the pixel size of page at the given scale.
func rasterSize(page *Page, scale float64) (w, h int) {
	w = int(math.Ceil(page.Width*scale - 1e-6))
	h = int(math.Ceil(page.Height*scale - 1e-6))
	return max(w, 1), max(h, 1)
}

// rasterBytes returns the memory size of the raster of page at the given
// scale.  Unlike rasterSize, this does not overflow.
func rasterBytes(page *Page, scale float64) float64 {
	w, h := rasterDims(page, scale)
	return 4 * w * h
}

func rasterDims(page *Page, scale float64) (w, h float64) {
	w = max(math.Ceil(page.Width*scale-1e-6), 1)
	h = max(math.Ceil(page.Height*scale-1e-6), 1)
	return w, h
}
