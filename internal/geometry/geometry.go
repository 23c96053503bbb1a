/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry holds the page-space primitives of the canvas: points,
// rectangles, grid snapping, container footprints and the pan/zoom transform.
// All model geometry is expressed in page-local coordinates.
package geometry

import "math"

// Pt is a 2D point.
type Pt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec is a 2D translation.
type Vec struct{ DX, DY float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func P(x, y float64) Pt         { return Pt{X: x, Y: y} }
func V(dx, dy float64) Vec      { return Vec{DX: dx, DY: dy} }
func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (p Pt) Add(v Vec) Pt           { return Pt{X: p.X + v.DX, Y: p.Y + v.DY} }
func (p Pt) Sub(o Pt) Vec           { return Vec{DX: p.X - o.X, DY: p.Y - o.Y} }
func (v Vec) Add(o Vec) Vec         { return Vec{DX: v.DX + o.DX, DY: v.DY + o.DY} }
func (v Vec) Scale(f float64) Vec   { return Vec{DX: v.DX * f, DY: v.DY * f} }
func (v Vec) IsZero() bool          { return v.DX == 0 && v.DY == 0 }
func (r Rect) Min() Pt              { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt              { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Empty() bool          { return r.W <= 0 || r.H <= 0 }
func (r Rect) Translate(v Vec) Rect { return Rect{X: r.X + v.DX, Y: r.Y + v.DY, W: r.W, H: r.H} }
func (r Rect) Center() Pt           { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Size() (w, h float64) { return r.W, r.H }

// Equal compares two points within eps on each axis.
func (p Pt) Equal(o Pt, eps float64) bool {
	return math.Abs(p.X-o.X) <= eps && math.Abs(p.Y-o.Y) <= eps
}

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Pt) bool {
	if r.Empty() {
		return false
	}
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// SnapToGrid rounds each axis independently to the nearest multiple of grid.
// Halves round away from zero. A non-positive grid leaves p untouched.
func SnapToGrid(p Pt, grid float64) Pt {
	if grid <= 0 || math.IsNaN(grid) {
		return p
	}
	return Pt{X: snap(p.X, grid), Y: snap(p.Y, grid)}
}

func snap(v, grid float64) float64 {
	s := math.Round(v/grid) * grid
	if s == 0 {
		// normalise -0
		return 0
	}
	return s
}
