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

// displayNode is an element of the display order list.
type displayNode struct {
	key        Key
	prev, next *displayNode
}

// displayList orders the keys holding a surface by the time they were last
// displayed.  The front is the most recently displayed key.
//
// The list is not safe for concurrent use.
type displayList struct {
	front, back *displayNode
	len         int
}

// Len returns the number of keys in the list.
func (l *displayList) Len() int {
	return l.len
}

// PushFront adds key as the most recently displayed entry.
func (l *displayList) PushFront(key Key) *displayNode {
	n := &displayNode{key: key}
	l.insertFront(n)
	return n
}

// PushBack adds key as the least recently displayed entry.
func (l *displayList) PushBack(key Key) *displayNode {
	n := &displayNode{key: key}
	n.prev = l.back
	if l.back != nil {
		l.back.next = n
	} else {
		l.front = n
	}
	l.back = n
	l.len++
	return n
}

// MoveToFront marks n as the most recently displayed entry.
func (l *displayList) MoveToFront(n *displayNode) {
	if n == nil || n == l.front {
		return
	}
	l.unlink(n)
	l.insertFront(n)
}

// Remove takes n out of the list.
func (l *displayList) Remove(n *displayNode) {
	if n == nil {
		return
	}
	l.unlink(n)
}

// Oldest returns the least recently displayed key for which keep returns
// false.
func (l *displayList) Oldest(keep func(Key) bool) (*displayNode, bool) {
	for n := l.back; n != nil; n = n.prev {
		if !keep(n.key) {
			return n, true
		}
	}
	return nil, false
}

func (l *displayList) insertFront(n *displayNode) {
	n.prev = nil
	n.next = l.front
	if l.front != nil {
		l.front.prev = n
	} else {
		l.back = n
	}
	l.front = n
	l.len++
}

func (l *displayList) unlink(n *displayNode) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.front = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.back = n.prev
	}
	n.prev = nil
	n.next = nil
	l.len--
}
