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

// Package cache stores rendered page surfaces.
//
// Every key (page, zoom bucket) is in one of the states Absent, Pending,
// Ready or Failed.  Each transition to Pending draws a new generation from
// a monotonic counter, and a result is only accepted if it carries the
// generation of the current Pending state.  Results of superseded jobs are
// thus discarded, whenever they arrive.
//
// The total size of all stored surfaces is limited by a byte budget.  When
// the budget is exceeded, the surface which was displayed least recently
// is evicted first, and surfaces which were never displayed go before
// all others.  The surface on screen is never evicted: this is the
// surface of the visible key or, while that key has none, the fallback
// surface shown in its place.
//
// All methods are safe for concurrent use.
package cache

import (
	"cmp"
	"image"
	"log/slog"
	"math"
	"slices"
	"sync"
)

// Key identifies a cached surface.
type Key struct {
	Page   int
	Bucket int
}

// State is the state of a cache key.
type State uint8

const (
	Absent State = iota
	Pending
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "invalid"
}

// Surface is a rendered page.
type Surface struct {
	Image *image.RGBA

	// Scale is the number of raster pixels per page unit.
	Scale float64

	// Gen is the generation of the job which produced the surface.
	Gen uint64
}

// Bytes returns the memory size of the pixel data.
func (s *Surface) Bytes() int64 {
	if s == nil || s.Image == nil {
		return 0
	}
	return SurfaceBytes(s.Image.Rect.Dx(), s.Image.Rect.Dy())
}

// SurfaceBytes returns the memory size of a w×h surface.
func SurfaceBytes(w, h int) int64 {
	return 4 * int64(w) * int64(h)
}

// Entry is a snapshot of the cache state for one key.
type Entry struct {
	State State

	// Gen is the generation of the most recent transition to Pending.
	Gen uint64

	// Surface is the rendered page for Ready keys.  For keys in other
	// states, Surface is the last surface which was Ready for the key, or
	// nil.
	Surface *Surface

	// Err is the error of a Failed key.
	Err error
}

// Stats summarizes the cache state.
type Stats struct {
	Entries   int // keys holding a surface
	Pending   int
	Bytes     int64
	Budget    int64
	Evictions int
	Discarded int // results rejected because of a generation mismatch
}

// Options configures a [Cache].
type Options struct {
	// Budget is the maximum total size in bytes of all surfaces.
	// Zero or negative values mean no limit.
	Budget int64

	Logger *slog.Logger
}

type entry struct {
	state State
	gen   uint64
	surf  *Surface
	err   error
	node  *displayNode
}

// Cache holds page surfaces.
type Cache struct {
	mu sync.Mutex

	log    *slog.Logger
	budget int64
	used   int64
	gen    uint64

	entries map[Key]*entry
	order   displayList

	visible    Key
	hasVisible bool

	evictions int
	discarded int
}

// New returns an empty cache.
func New(opt *Options) *Cache {
	c := &Cache{
		log:     slog.New(slog.DiscardHandler),
		budget:  math.MaxInt64,
		entries: make(map[Key]*entry),
	}
	if opt != nil {
		if opt.Budget > 0 {
			c.budget = opt.Budget
		}
		if opt.Logger != nil {
			c.log = opt.Logger
		}
	}
	return c
}

// Lookup returns the state of key k.
func (c *Cache) Lookup(k Key) Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[k]
	if e == nil {
		return Entry{}
	}
	return Entry{State: e.state, Gen: e.gen, Surface: e.surf, Err: e.err}
}

// Current reports whether gen is the generation of the Pending job for k.
func (c *Cache) Current(k Key, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[k]
	return e != nil && e.state == Pending && e.gen == gen
}

// Begin moves key k to the Pending state and returns the generation of the
// new job.  If k is already Pending, the generation of the running job is
// returned and started is false: the caller attaches to the existing job.
func (c *Cache) Begin(k Key) (gen uint64, started bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entry(k)
	if e.state == Pending {
		return e.gen, false
	}
	c.gen++
	e.state = Pending
	e.gen = c.gen
	e.err = nil
	return e.gen, true
}

// Complete stores the result of the job with generation gen.  If gen is
// not the generation of the Pending job for k, the result is discarded
// and false is returned.
func (c *Cache) Complete(k Key, gen uint64, s *Surface) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[k]
	if e == nil || e.state != Pending || e.gen != gen {
		c.discarded++
		c.log.Debug("stale result discarded", "page", k.Page, "bucket", k.Bucket, "gen", gen)
		return false
	}

	s.Gen = gen
	c.setSurface(k, e, s)
	e.state = Ready
	e.err = nil
	c.evict(0)
	return true
}

// Fail marks the job with generation gen as failed.  The last surface of
// the key, if any, is kept as the last known good one.
func (c *Cache) Fail(k Key, gen uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[k]
	if e == nil || e.state != Pending || e.gen != gen {
		c.discarded++
		return false
	}
	e.state = Failed
	e.err = err
	return true
}

// Revert abandons the Pending job of key k, returning the key to the
// Absent state.  The generation counter is advanced, so that a late
// result of the abandoned job is discarded.
func (c *Cache) Revert(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entries[k]
	if e == nil || e.state != Pending {
		return false
	}
	c.gen++
	e.gen = c.gen
	e.state = Absent
	c.cleanup(k, e)
	return true
}

// Invalidate marks all keys of the given page as out of date, for
// example after the page content changed.  Pending jobs are abandoned.
// Ready surfaces are kept for display until they are replaced.
func (c *Cache) Invalidate(page int) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for k, e := range c.entries {
		if k.Page != page || e.state == Absent {
			continue
		}
		if e.state == Pending {
			c.gen++
			e.gen = c.gen
		}
		e.state = Absent
		e.err = nil
		c.cleanup(k, e)
		n++
	}
	return n
}

// FailPending marks every Pending key as Failed and returns the affected
// keys, in ascending order.
func (c *Cache) FailPending(err error) []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []Key
	for k, e := range c.entries {
		if e.state == Pending {
			e.state = Failed
			e.err = err
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// MarkDisplayed records that k is the visible key.  The surface of the
// visible key, or the fallback shown for it, is never evicted.
func (c *Cache) MarkDisplayed(k Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible = k
	c.hasVisible = true
	if e := c.entries[k]; e != nil && e.node != nil {
		c.order.MoveToFront(e.node)
	}
}

// Visible returns the key last passed to MarkDisplayed.
func (c *Cache) Visible() (Key, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible, c.hasVisible
}

// Fallback returns the best available surface of the given page, for
// display while the surface for bucket is not Ready.  Ready surfaces are
// preferred over outdated ones, and among those the nearest bucket wins.
// If the page has no surface at all, nil is returned.
func (c *Cache) Fallback(page, bucket int) *Surface {
	c.mu.Lock()
	defer c.mu.Unlock()

	k, ok := c.fallbackKey(page, bucket)
	if !ok {
		return nil
	}
	return c.entries[k].surf
}

// CanFit reports whether a surface of the given size can be stored for
// key k without exceeding the budget, once every evictable surface has
// been evicted.
func (c *Cache) CanFit(k Key, size int64) bool {
	return size <= c.Available(k)
}

// Available returns the largest surface size in bytes which can be stored
// for key k, once every evictable surface has been evicted.  Storing a
// surface for the visible key releases the fallback shown in its place.
func (c *Cache) Available(k Key) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var pinned int64
	if !c.hasVisible || k != c.visible {
		for _, p := range c.shown() {
			if e := c.entries[p]; e != nil {
				pinned += e.surf.Bytes()
			}
		}
	}
	return max(c.budget-pinned, 0)
}

// Free returns the number of bytes which can be stored without evicting
// anything.
func (c *Cache) Free() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return max(c.budget-c.used, 0)
}

// SetBudget changes the byte budget, evicting surfaces as needed.
func (c *Cache) SetBudget(budget int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if budget <= 0 {
		budget = math.MaxInt64
	}
	c.budget = budget
	c.evict(0)
}

// Evict removes the surface of key k.  The surface on screen cannot be
// evicted.
func (c *Cache) Evict(k Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if slices.Contains(c.shown(), k) {
		return false
	}
	e := c.entries[k]
	if e == nil || e.surf == nil {
		return false
	}
	c.drop(k, e)
	return true
}

// Stats returns a summary of the cache state.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	st := Stats{
		Bytes:     c.used,
		Budget:    c.budget,
		Evictions: c.evictions,
		Discarded: c.discarded,
	}
	for _, e := range c.entries {
		if e.surf != nil {
			st.Entries++
		}
		if e.state == Pending {
			st.Pending++
		}
	}
	return st
}

func (c *Cache) entry(k Key) *entry {
	e := c.entries[k]
	if e == nil {
		e = &entry{}
		c.entries[k] = e
	}
	return e
}

// setSurface stores s for k.  Only the visible key counts as displayed;
// surfaces nobody has looked at yet are the first to go.
func (c *Cache) setSurface(k Key, e *entry, s *Surface) {
	c.used += s.Bytes() - e.surf.Bytes()
	e.surf = s
	if e.node != nil {
		c.order.Remove(e.node)
	}
	if c.hasVisible && k == c.visible {
		e.node = c.order.PushFront(k)
	} else {
		e.node = c.order.PushBack(k)
	}
}

// shown returns the keys whose surfaces are on screen.
func (c *Cache) shown() []Key {
	if !c.hasVisible {
		return nil
	}
	if e := c.entries[c.visible]; e != nil && e.surf != nil {
		return []Key{c.visible}
	}
	if k, ok := c.fallbackKey(c.visible.Page, c.visible.Bucket); ok {
		return []Key{c.visible, k}
	}
	return []Key{c.visible}
}

// fallbackKey selects the surface for [Cache.Fallback].
func (c *Cache) fallbackKey(page, bucket int) (Key, bool) {
	var best Key
	found := false
	bestReady := false
	bestDist := 0
	for k, e := range c.entries {
		if k.Page != page || e.surf == nil {
			continue
		}
		ready := e.state == Ready
		dist := k.Bucket - bucket
		if dist < 0 {
			dist = -dist
		}
		better := !found ||
			ready && !bestReady ||
			ready == bestReady && (dist < bestDist || dist == bestDist && k.Bucket > best.Bucket)
		if better {
			best, found, bestReady, bestDist = k, true, ready, dist
		}
	}
	return best, found
}

// evict drops the least recently displayed surfaces until extra more bytes
// fit into the budget.
func (c *Cache) evict(extra int64) {
	for c.used+extra > c.budget {
		pinned := c.shown()
		n, ok := c.order.Oldest(func(k Key) bool {
			return slices.Contains(pinned, k)
		})
		if !ok {
			return
		}
		c.drop(n.key, c.entries[n.key])
	}
}

// drop removes the surface of e.  A Ready key becomes Absent, keys in
// other states keep their state.
func (c *Cache) drop(k Key, e *entry) {
	c.used -= e.surf.Bytes()
	c.order.Remove(e.node)
	e.node = nil
	e.surf = nil
	if e.state == Ready {
		e.state = Absent
	}
	c.evictions++
	c.log.Debug("surface evicted", "page", k.Page, "bucket", k.Bucket, "used", c.used, "budget", c.budget)
	c.cleanup(k, e)
}

// cleanup forgets entries which carry no information.
func (c *Cache) cleanup(k Key, e *entry) {
	if e.state == Absent && e.surf == nil {
		delete(c.entries, k)
	}
}

func compareKeys(a, b Key) int {
	if c := cmp.Compare(a.Page, b.Page); c != 0 {
		return c
	}
	return cmp.Compare(a.Bucket, b.Bucket)
}
