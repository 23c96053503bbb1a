/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"math"
	"testing"
)

func TestRectContainsAndInset(t *testing.T) {
	r := R(10, 20, 100, 50)
	if !r.Contains(Pt{10, 20}) || !r.Contains(Pt{110, 70}) {
		t.Fatalf("expected edge points to be contained")
	}
	if r.Contains(Pt{9.9, 20}) {
		t.Fatalf("point left of rect must not be contained")
	}
	in := r.Inset(5, 5)
	if in.X != 15 || in.Y != 25 || in.W != 90 || in.H != 40 {
		t.Fatalf("unexpected inset: %+v", in)
	}
	if R(0, 0, 0, 10).Contains(Pt{0, 0}) {
		t.Fatalf("empty rect must not contain anything")
	}
}

func TestSnapToGrid(t *testing.T) {
	cases := []struct {
		in   Pt
		grid float64
		want Pt
	}{
		{Pt{0, 0}, 30, Pt{0, 0}},
		{Pt{44, 16}, 30, Pt{30, 30}},
		{Pt{45, 15}, 30, Pt{60, 30}},
		{Pt{-14, -16}, 30, Pt{0, -30}},
		{Pt{545, 510}, 30, Pt{540, 510}},
		{Pt{12.5, 7.5}, 5, Pt{15, 10}},
		{Pt{13, 7}, 0, Pt{13, 7}},
	}
	for _, c := range cases {
		if got := SnapToGrid(c.in, c.grid); got != c.want {
			t.Errorf("SnapToGrid(%v, %v) = %v, want %v", c.in, c.grid, got, c.want)
		}
	}
}

func TestSnapToGridIdempotent(t *testing.T) {
	grids := []float64{1, 7, 10, 30, 42.5}
	for _, g := range grids {
		for x := -200.0; x <= 200; x += 3.7 {
			p := Pt{x, x*1.3 - 11}
			once := SnapToGrid(p, g)
			twice := SnapToGrid(once, g)
			if once != twice {
				t.Fatalf("snap not idempotent for %v grid %v: %v vs %v", p, g, once, twice)
			}
			if r := math.Mod(math.Abs(once.X), g); r > 1e-9 && g-r > 1e-9 {
				t.Fatalf("snapped x %v not a multiple of %v", once.X, g)
			}
		}
	}
}

func TestContainerHeight(t *testing.T) {
	cases := map[int]float64{0: 90, 1: 120, 2: 150, 5: 240, -3: 90}
	for rows, want := range cases {
		if got := ContainerHeight(rows); got != want {
			t.Errorf("ContainerHeight(%d) = %v, want %v", rows, got, want)
		}
	}
}

func TestDropZoneIsInsetFootprint(t *testing.T) {
	anchor := Pt{180, 180}
	fp := ContainerRect(anchor, 0)
	dz := DropZoneRect(anchor, 0)
	if fp != (Rect{180, 180, 360, 90}) {
		t.Fatalf("unexpected footprint: %+v", fp)
	}
	if dz != (Rect{200, 200, 320, 50}) {
		t.Fatalf("unexpected drop zone: %+v", dz)
	}
	// inside the footprint, outside the drop zone
	edge := Pt{190, 190}
	if !fp.Contains(edge) || dz.Contains(edge) {
		t.Fatalf("expected %v inside footprint only", edge)
	}
}

func TestAffineBasic(t *testing.T) {
	m := Translate(10, 5).Mul(Scale(2, 3))
	p := m.Apply(Pt{1, 1})
	if p.X != 12 || p.Y != 8 { // (1*2+10, 1*3+5)
		t.Fatalf("unexpected transform result: %+v", p)
	}
	inv, ok := m.Inverse()
	if !ok {
		t.Fatalf("expected invertible matrix")
	}
	if back := inv.Apply(p); !back.Equal(Pt{1, 1}, 1e-12) {
		t.Fatalf("inverse round trip: %+v", back)
	}
	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Fatalf("singular matrix reported invertible")
	}
}

func TestViewTransformRoundTrip(t *testing.T) {
	vt := ViewTransform{Offset: V(-40, 25), Scale: 2}
	page := Pt{100, 50}
	screen := vt.ToScreen(page)
	if screen != (Pt{160, 125}) {
		t.Fatalf("ToScreen = %+v", screen)
	}
	if got := InvertViewTransform(screen, vt.Offset, vt.Scale); !got.Equal(page, 1e-12) {
		t.Fatalf("ToPage = %+v", got)
	}
	if got := vt.ToPageVec(V(90, -30)); got != V(45, -15) {
		t.Fatalf("ToPageVec = %+v", got)
	}
	if got := ApplyViewTransform(page, Vec{}, 0); got != page {
		t.Fatalf("zero scale should behave as identity, got %+v", got)
	}
}
