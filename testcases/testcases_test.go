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

package testcases

import (
	"bytes"
	"regexp"
	"testing"

	"seehuhn.de/go/geom/matrix"

	"seehuhn.de/go/pagerender/scene"
)

func TestNames(t *testing.T) {
	valid := regexp.MustCompile(`^[a-z0-9_]+$`)
	seen := make(map[string]bool)
	for category, cases := range All {
		if len(cases) == 0 {
			t.Errorf("category %q is empty", category)
		}
		for _, c := range cases {
			name := category + "_" + c.Name
			if !valid.MatchString(c.Name) {
				t.Errorf("invalid name %q", name)
			}
			if seen[name] {
				t.Errorf("duplicate name %q", name)
			}
			seen[name] = true
			if c.Width <= 0 || c.Height <= 0 {
				t.Errorf("%s: invalid size %dx%d", name, c.Width, c.Height)
			}
		}
	}
}

func TestScenes(t *testing.T) {
	b := scene.NewBuilder(nil)
	for category, cases := range All {
		for _, c := range cases {
			s := b.Build(c.Ops, matrix.Identity, c.Width, c.Height)
			// zero-length dashes with butt caps draw nothing
			if len(s.Prims) == 0 && c.Name != "dash_zero_butt" {
				t.Errorf("%s_%s: no primitives", category, c.Name)
			}
		}
	}
}

func TestDegenerateTransformDropsOneOp(t *testing.T) {
	for _, c := range ctmCases {
		if c.Name != "degenerate" {
			continue
		}
		s := scene.NewBuilder(nil).Build(c.Ops, matrix.Identity, c.Width, c.Height)
		if len(s.Diagnostics) != 1 {
			t.Fatalf("got %d diagnostics, want 1", len(s.Diagnostics))
		}
		if len(s.Prims) != 1 {
			t.Errorf("got %d primitives, want 1", len(s.Prims))
		}
		return
	}
	t.Fatal("test case not found")
}

func TestWritePDF(t *testing.T) {
	var cases []Case
	for _, cc := range All {
		cases = append(cases, cc...)
	}

	buf := &bytes.Buffer{}
	if err := WritePDF(buf, cases); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-1.7")) {
		t.Errorf("missing PDF header")
	}
	if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
		t.Errorf("missing end-of-file marker")
	}
}

func TestPages(t *testing.T) {
	doc := Pages(fillCases)
	if doc.NumPages() != len(fillCases) {
		t.Fatalf("got %d pages, want %d", doc.NumPages(), len(fillCases))
	}
	p, err := doc.Page(t.Context(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != float64(fillCases[0].Width) || len(p.Ops) != len(fillCases[0].Ops) {
		t.Errorf("page does not match test case")
	}
}
