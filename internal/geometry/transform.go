/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import "math"

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVec applies only the linear part of m.
func (m Affine2D) ApplyVec(v Vec) Vec {
	return Vec{DX: m.A*v.DX + m.C*v.DY, DY: m.B*v.DX + m.D*v.DY}
}

// Inverse returns the inverse transform. ok is false for singular matrices.
func (m Affine2D) Inverse() (inv Affine2D, ok bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || math.IsNaN(det) {
		return Affine2D{}, false
	}
	inv.A = m.D / det
	inv.B = -m.B / det
	inv.C = -m.C / det
	inv.D = m.A / det
	inv.E = -(inv.A*m.E + inv.C*m.F)
	inv.F = -(inv.B*m.E + inv.D*m.F)
	return inv, true
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }

// ViewTransform maps page-local coordinates to screen coordinates:
// screen = page*Scale + Offset.
type ViewTransform struct {
	Offset Vec
	Scale  float64
}

func (t ViewTransform) matrix() Affine2D {
	s := t.Scale
	if s == 0 {
		s = 1
	}
	return Translate(t.Offset.DX, t.Offset.DY).Mul(Scale(s, s))
}

// ApplyViewTransform converts a page-local point into screen space.
func ApplyViewTransform(p Pt, pan Vec, scale float64) Pt {
	return ViewTransform{Offset: pan, Scale: scale}.ToScreen(p)
}

// InvertViewTransform converts a screen point into page-local space.
func InvertViewTransform(p Pt, pan Vec, scale float64) Pt {
	return ViewTransform{Offset: pan, Scale: scale}.ToPage(p)
}

func (t ViewTransform) ToScreen(p Pt) Pt { return t.matrix().Apply(p) }

func (t ViewTransform) ToPage(p Pt) Pt {
	inv, ok := t.matrix().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// ToPageVec converts a screen-space translation (e.g. a drag delta) into page units.
func (t ViewTransform) ToPageVec(v Vec) Vec {
	inv, ok := t.matrix().Inverse()
	if !ok {
		return v
	}
	return inv.ApplyVec(v)
}
