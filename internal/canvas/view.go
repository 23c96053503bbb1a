/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"math"

	"github.com/google/uuid"

	"funcards/internal/geometry"
)

// Zoom limits.
const (
	MinScale  = 0.25
	MaxScale  = 3.0
	ScaleStep = 0.25
)

// Selection holds the ids picked in selection mode. Child rows are never
// selectable.
type Selection struct {
	Wrappers map[uuid.UUID]struct{}
	Wrapped  map[uuid.UUID]struct{}
}

func (s Selection) HasWrapper(id uuid.UUID) bool {
	_, ok := s.Wrappers[id]
	return ok
}

func (s Selection) HasWrapped(id uuid.UUID) bool {
	_, ok := s.Wrapped[id]
	return ok
}

func (s Selection) Len() int { return len(s.Wrappers) + len(s.Wrapped) }

// Clone copies both sets.
func (s Selection) Clone() Selection {
	out := Selection{Wrappers: make(map[uuid.UUID]struct{}, len(s.Wrappers)), Wrapped: make(map[uuid.UUID]struct{}, len(s.Wrapped))}
	for id := range s.Wrappers {
		out.Wrappers[id] = struct{}{}
	}
	for id := range s.Wrapped {
		out.Wrapped[id] = struct{}{}
	}
	return out
}

// Toggle flips membership of a container or free leaf and reports whether
// it is now selected.
func (s *Selection) Toggle(t Target) bool {
	var set *map[uuid.UUID]struct{}
	switch t.Kind {
	case TargetWrapper:
		set = &s.Wrappers
	case TargetWrapped:
		set = &s.Wrapped
	default:
		return false
	}
	if *set == nil {
		*set = map[uuid.UUID]struct{}{}
	}
	if _, ok := (*set)[t.ID]; ok {
		delete(*set, t.ID)
		return false
	}
	(*set)[t.ID] = struct{}{}
	return true
}

// View is the per-page view state. It lives in memory only.
//
// Pan and pinch gestures keep their in-flight amount separate from the
// committed offset and scale; Transform folds both in for rendering.
type View struct {
	Offset        geometry.Vec
	Scale         float64
	SelectionMode bool
	Selection     Selection

	panDelta geometry.Vec
	pinch    float64
	pinching bool
	panning  bool
}

// NewView returns the initial view: no offset, scale 1.
func NewView() View { return View{Scale: 1} }

func clampScale(s float64) float64 {
	if math.IsNaN(s) || s <= 0 {
		return MinScale
	}
	return math.Min(MaxScale, math.Max(MinScale, s))
}

// Transform is the effective page-to-screen mapping including any gesture
// in flight.
func (v View) Transform() geometry.ViewTransform {
	s := v.Scale
	if v.pinching {
		s = clampScale(v.Scale * v.pinch)
	}
	return geometry.ViewTransform{Offset: v.Offset.Add(v.panDelta), Scale: s}
}

// Committed is the mapping without in-flight gestures.
func (v View) Committed() geometry.ViewTransform {
	return geometry.ViewTransform{Offset: v.Offset, Scale: v.Scale}
}

func (v *View) PanChanged(delta geometry.Vec) { v.panning, v.panDelta = true, delta }

func (v *View) PanEnded(delta geometry.Vec) {
	v.Offset = v.Offset.Add(delta)
	v.panning, v.panDelta = false, geometry.Vec{}
}

func (v *View) PanCancelled() { v.panning, v.panDelta = false, geometry.Vec{} }

// ZoomChanged records the in-flight pinch factor relative to the scale at
// gesture start.
func (v *View) ZoomChanged(factor float64) { v.pinching, v.pinch = true, factor }

// ZoomEnded commits the pinch, clamped to [MinScale, MaxScale].
func (v *View) ZoomEnded(factor float64) {
	v.Scale = clampScale(v.Scale * factor)
	v.pinching, v.pinch = false, 0
}

func (v *View) ZoomCancelled() { v.pinching, v.pinch = false, 0 }

func (v *View) ZoomIn() { v.Scale = clampScale(v.Scale + ScaleStep) }
func (v *View) ZoomOut() { v.Scale = clampScale(v.Scale - ScaleStep) }
func (v *View) ResetZoom() { v.Scale = 1 }

// SetSelectionMode switches selection mode. Leaving it clears the selection.
func (v *View) SetSelectionMode(on bool) {
	v.SelectionMode = on
	if !on {
		v.Selection = Selection{}
	}
}

func (v View) gestureInFlight() bool { return v.panning || v.pinching }
