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

package cache

import (
	"errors"
	"image"
	"testing"
)

func surface(w, h int) *Surface {
	return &Surface{Image: image.NewRGBA(image.Rect(0, 0, w, h)), Scale: 1}
}

func TestLifecycle(t *testing.T) {
	c := New(nil)
	k := Key{Page: 1, Bucket: 0}

	if e := c.Lookup(k); e.State != Absent || e.Surface != nil {
		t.Fatalf("new key: %v", e.State)
	}

	gen, started := c.Begin(k)
	if !started {
		t.Fatal("Begin did not start a job")
	}
	gen2, started := c.Begin(k)
	if started || gen2 != gen {
		t.Errorf("second Begin: gen %d started %t, want attach to %d", gen2, started, gen)
	}
	if !c.Current(k, gen) {
		t.Error("job not current")
	}

	s := surface(10, 10)
	if !c.Complete(k, gen, s) {
		t.Fatal("result rejected")
	}
	e := c.Lookup(k)
	if e.State != Ready || e.Surface != s || s.Gen != gen {
		t.Errorf("after Complete: %v %p gen %d", e.State, e.Surface, s.Gen)
	}
	if st := c.Stats(); st.Bytes != 400 || st.Entries != 1 {
		t.Errorf("stats: %+v", st)
	}
}

func TestStaleResultDiscarded(t *testing.T) {
	c := New(nil)
	k := Key{Page: 0, Bucket: 2}

	gen1, _ := c.Begin(k)
	if !c.Revert(k) {
		t.Fatal("Revert failed")
	}
	gen2, started := c.Begin(k)
	if !started || gen2 <= gen1 {
		t.Fatalf("Begin after Revert: gen %d started %t", gen2, started)
	}

	if c.Complete(k, gen1, surface(4, 4)) {
		t.Error("superseded result accepted")
	}
	if e := c.Lookup(k); e.State != Pending {
		t.Errorf("state %v after stale result, want pending", e.State)
	}
	if !c.Complete(k, gen2, surface(4, 4)) {
		t.Error("current result rejected")
	}
	if st := c.Stats(); st.Discarded != 1 {
		t.Errorf("discarded = %d, want 1", st.Discarded)
	}
}

func TestFailKeepsLastKnownGood(t *testing.T) {
	c := New(nil)
	k := Key{Page: 3}
	gen, _ := c.Begin(k)
	old := surface(2, 2)
	c.Complete(k, gen, old)

	c.Invalidate(3)
	if e := c.Lookup(k); e.State != Absent || e.Surface != old {
		t.Fatalf("after Invalidate: %v %p", e.State, e.Surface)
	}

	gen, _ = c.Begin(k)
	errBoom := errors.New("boom")
	if !c.Fail(k, gen, errBoom) {
		t.Fatal("Fail rejected")
	}
	e := c.Lookup(k)
	if e.State != Failed || !errors.Is(e.Err, errBoom) || e.Surface != old {
		t.Errorf("after Fail: %v %v %p", e.State, e.Err, e.Surface)
	}
}

func TestFailPending(t *testing.T) {
	c := New(nil)
	a, b, r := Key{Page: 2}, Key{Page: 1, Bucket: 1}, Key{Page: 0}
	c.Begin(a)
	c.Begin(b)
	gen, _ := c.Begin(r)
	c.Complete(r, gen, surface(1, 1))

	errLost := errors.New("lost")
	keys := c.FailPending(errLost)
	if len(keys) != 2 || keys[0] != b || keys[1] != a {
		t.Fatalf("FailPending returned %v", keys)
	}
	for _, k := range keys {
		if e := c.Lookup(k); e.State != Failed {
			t.Errorf("%v: state %v", k, e.State)
		}
	}
	if e := c.Lookup(r); e.State != Ready {
		t.Errorf("ready key changed to %v", e.State)
	}
}

func TestEvictLeastRecentlyDisplayed(t *testing.T) {
	// each surface is 100 bytes, room for three
	c := New(&Options{Budget: 300})
	keys := []Key{{Page: 0}, {Page: 1}, {Page: 2}}
	for _, k := range keys {
		c.MarkDisplayed(k)
		gen, _ := c.Begin(k)
		c.Complete(k, gen, surface(5, 5))
	}
	// page 0 was displayed most recently before page 2
	c.MarkDisplayed(keys[0])
	c.MarkDisplayed(keys[2])

	k := Key{Page: 3}
	c.MarkDisplayed(k)
	gen, _ := c.Begin(k)
	c.Complete(k, gen, surface(5, 5))

	if e := c.Lookup(keys[1]); e.State != Absent || e.Surface != nil {
		t.Errorf("least recently displayed key not evicted: %v", e.State)
	}
	for _, k := range []Key{keys[0], keys[2], k} {
		if e := c.Lookup(k); e.State != Ready {
			t.Errorf("%v: state %v, want ready", k, e.State)
		}
	}
	if st := c.Stats(); st.Bytes != 300 || st.Evictions != 1 {
		t.Errorf("stats: %+v", st)
	}
}

func TestVisibleNeverEvicted(t *testing.T) {
	c := New(&Options{Budget: 100})
	vis := Key{Page: 7}
	c.MarkDisplayed(vis)
	gen, _ := c.Begin(vis)
	c.Complete(vis, gen, surface(10, 10)) // 400 bytes, over budget

	if e := c.Lookup(vis); e.State != Ready {
		t.Fatalf("visible surface evicted")
	}
	if c.Evict(vis) {
		t.Error("explicit eviction of the visible key succeeded")
	}

	c.SetBudget(1)
	if e := c.Lookup(vis); e.State != Ready {
		t.Error("visible surface evicted after SetBudget")
	}

	other := Key{Page: 8}
	if c.CanFit(other, 1) {
		t.Error("CanFit ignores the pinned visible surface")
	}
	if !c.CanFit(vis, 1) {
		t.Error("CanFit: replacing the visible surface should fit")
	}
}

func TestUndisplayedEvictedFirst(t *testing.T) {
	c := New(&Options{Budget: 200})
	shown, other := Key{Page: 0}, Key{Page: 1}
	c.MarkDisplayed(shown)
	gen, _ := c.Begin(shown)
	c.Complete(shown, gen, surface(5, 5))
	c.MarkDisplayed(Key{Page: 2})

	// completes after the user moved on, and was never on screen
	gen, _ = c.Begin(other)
	c.Complete(other, gen, surface(5, 5))

	k := Key{Page: 2}
	gen, _ = c.Begin(k)
	c.Complete(k, gen, surface(5, 5))

	if e := c.Lookup(other); e.Surface != nil {
		t.Error("undisplayed surface kept")
	}
	if e := c.Lookup(shown); e.State != Ready {
		t.Errorf("displayed surface: state %v, want ready", e.State)
	}
}

func TestFallbackNeverEvicted(t *testing.T) {
	c := New(&Options{Budget: 250})
	put := func(k Key) *Surface {
		s := surface(5, 5)
		gen, _ := c.Begin(k)
		c.Complete(k, gen, s)
		return s
	}
	c.MarkDisplayed(Key{Page: 0})
	old := put(Key{Page: 0})

	// zoom in on page 0, while a job for page 1 is still running
	far := Key{Page: 1}
	farGen, _ := c.Begin(far)
	zoomed := Key{Page: 0, Bucket: 1}
	c.MarkDisplayed(zoomed)
	c.Begin(zoomed)

	if c.Evict(Key{Page: 0}) {
		t.Error("fallback surface evicted explicitly")
	}
	if c.CanFit(far, 200) {
		t.Error("CanFit ignores the fallback surface")
	}
	if !c.CanFit(zoomed, 200) {
		t.Error("CanFit: the zoomed surface replaces the fallback")
	}

	c.Complete(far, farGen, surface(8, 8)) // 256 bytes, over budget
	if got := c.Fallback(0, 1); got != old {
		t.Errorf("fallback %p, want %p", got, old)
	}
	if e := c.Lookup(far); e.Surface != nil {
		t.Error("undisplayed surface kept instead of the fallback")
	}
}

func TestFallback(t *testing.T) {
	c := New(nil)
	put := func(k Key) *Surface {
		s := surface(1, 1)
		gen, _ := c.Begin(k)
		c.Complete(k, gen, s)
		return s
	}
	s0 := put(Key{Page: 1, Bucket: 0})
	s3 := put(Key{Page: 1, Bucket: 3})
	put(Key{Page: 2, Bucket: 2})

	if got := c.Fallback(1, 2); got != s3 {
		t.Error("nearest bucket not chosen")
	}
	if got := c.Fallback(1, -1); got != s0 {
		t.Error("nearest bucket not chosen")
	}
	c.Invalidate(1)
	s4 := put(Key{Page: 1, Bucket: 4})
	if got := c.Fallback(1, 0); got != s4 {
		t.Error("ready surface not preferred over outdated one")
	}
	if got := c.Fallback(5, 0); got != nil {
		t.Error("fallback for unknown page")
	}
}

func TestDisplayList(t *testing.T) {
	var l displayList
	a := l.PushFront(Key{Page: 1})
	l.PushFront(Key{Page: 2})
	c := l.PushFront(Key{Page: 3})
	l.MoveToFront(a)
	l.Remove(c)
	if l.Len() != 2 {
		t.Fatalf("len %d", l.Len())
	}
	n, ok := l.Oldest(func(Key) bool { return false })
	if !ok || n.key.Page != 2 {
		t.Errorf("oldest = %v", n)
	}
	n, ok = l.Oldest(func(k Key) bool { return k.Page == 2 })
	if !ok || n.key.Page != 1 {
		t.Errorf("oldest unpinned = %v", n)
	}
	if _, ok := l.Oldest(func(Key) bool { return true }); ok {
		t.Error("all pinned but Oldest found a key")
	}
	l.PushBack(Key{Page: 4})
	if n, _ := l.Oldest(func(Key) bool { return false }); n.key.Page != 4 {
		t.Errorf("oldest after PushBack = %v", n.key)
	}
}
