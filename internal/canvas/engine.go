/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"funcards/internal/domain"
	"funcards/internal/geometry"
	applog "funcards/internal/log"
	"funcards/internal/store"
	"funcards/internal/telemetry"
)

// Engine applies gestures to pages held by a store. Gesture input arrives
// in screen units and is converted with the page's committed view
// transform. Transient drag offsets reach the store without being saved;
// releases, flips and row moves are committed and saved.
type Engine struct {
	store *store.Store
	opts  Options
	log   *slog.Logger

	mu    sync.Mutex
	views map[uuid.UUID]*View
	drags map[uuid.UUID]Drag
}

// NewEngine binds an engine to s.
func NewEngine(s *store.Store, opts Options) *Engine {
	if opts.GridSize <= 0 {
		opts.GridSize = geometry.DefaultGridSize
	}
	return &Engine{
		store: s,
		opts:  opts,
		log:   applog.WithComponent("canvas"),
		views: map[uuid.UUID]*View{},
		drags: map[uuid.UUID]Drag{},
	}
}

func (e *Engine) viewLocked(pageID uuid.UUID) *View {
	v, ok := e.views[pageID]
	if !ok {
		nv := NewView()
		v = &nv
		e.views[pageID] = v
	}
	return v
}

// View returns a copy of the page's view state.
func (e *Engine) View(pageID uuid.UUID) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := *e.viewLocked(pageID)
	v.Selection = v.Selection.Clone()
	return v
}

// Drag returns the page's current drag state.
func (e *Engine) Drag(pageID uuid.UUID) Drag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.drags[pageID]
}

// step runs the drag machine against the stored page. Only the final
// transition of a gesture is committed.
func (e *Engine) step(ctx context.Context, pageID uuid.UUID, ev Event) (Drag, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	page, ok := e.store.Page(pageID)
	if !ok {
		delete(e.drags, pageID)
		return Drag{}, nil
	}
	prev := e.drags[pageID]
	next, d := Step(page, prev, ev, e.opts)
	e.drags[pageID] = d
	ctx = applog.WithPage(ctx, pageID)
	if d.Target.ID != uuid.Nil {
		ctx = applog.WithBlock(ctx, d.Target.ID)
	}
	if d.Phase != prev.Phase || d.Phase == Dragging {
		e.log.DebugContext(ctx, "drag", slog.String("phase", d.Phase.String()))
	}
	switch {
	case d.Phase == Dragging:
		if _, isMove := ev.(DragMove); isMove {
			e.store.SetTransient(next)
		}
		return d, nil
	case prev.Active() && d.Phase == Cancelled:
		e.store.SetTransient(next)
		return d, nil
	case prev.Active() && (d.Phase == Committed || d.Phase == Reparented):
		if d.Phase == Reparented {
			e.log.InfoContext(ctx, "block reparented", slog.String("kind", d.Target.Kind.String()), slog.String("into", d.Into.String()))
			telemetry.Event(telemetry.EventReparent, map[string]any{"kind": d.Target.Kind.String(), "top_level": d.Into == uuid.Nil})
		}
		return d, e.store.Commit(ctx, next)
	}
	return d, nil
}

// BeginDrag starts a gesture on target. In selection mode the gesture moves
// every selected container and free leaf instead.
func (e *Engine) BeginDrag(pageID uuid.UUID, t Target) Drag {
	e.mu.Lock()
	v := e.viewLocked(pageID)
	if v.gestureInFlight() {
		e.mu.Unlock()
		return e.Drag(pageID)
	}
	var sel *Selection
	if v.SelectionMode {
		s := v.Selection.Clone()
		sel = &s
	}
	e.mu.Unlock()
	d, _ := e.step(context.Background(), pageID, DragStart{Target: t, Selection: sel})
	return d
}

func (e *Engine) toPage(pageID uuid.UUID, screen geometry.Vec) geometry.Vec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked(pageID).Committed().ToPageVec(screen)
}

// MoveDrag reports the cumulative screen translation of the gesture.
func (e *Engine) MoveDrag(pageID uuid.UUID, screen geometry.Vec) Drag {
	d, _ := e.step(context.Background(), pageID, DragMove{Translation: e.toPage(pageID, screen)})
	return d
}

// EndDrag releases the gesture and saves the outcome.
func (e *Engine) EndDrag(ctx context.Context, pageID uuid.UUID, screen geometry.Vec) (Drag, error) {
	return e.step(ctx, pageID, DragEnd{Translation: e.toPage(pageID, screen)})
}

// CancelDrag aborts the gesture; the grabbed blocks return to rest.
func (e *Engine) CancelDrag(pageID uuid.UUID) Drag {
	d, _ := e.step(context.Background(), pageID, DragCancel{})
	return d
}

// Tap toggles selection in selection mode and flips the block otherwise.
// Child rows always flip.
func (e *Engine) Tap(ctx context.Context, pageID uuid.UUID, t Target) error {
	e.mu.Lock()
	v := e.viewLocked(pageID)
	if v.SelectionMode && t.Kind != TargetChild {
		page, ok := e.store.Page(pageID)
		if ok && targetExists(page, t) {
			v.Selection.Toggle(t)
		}
		e.mu.Unlock()
		return nil
	}
	e.mu.Unlock()
	return e.Flip(ctx, pageID, t)
}

// Flip toggles which face of the block is shown and saves.
func (e *Engine) Flip(ctx context.Context, pageID uuid.UUID, t Target) error {
	page, ok := e.store.Page(pageID)
	if !ok {
		return nil
	}
	c := targetCard(&page, t)
	if c == nil {
		return nil
	}
	c.Flip()
	return e.store.Commit(ctx, page)
}

// MoveRow swaps a child row with its neighbour. Moves past either end are
// ignored.
func (e *Engine) MoveRow(ctx context.Context, pageID, wrapperID uuid.UUID, index int, dir domain.Direction) error {
	page, ok := e.store.Page(pageID)
	if !ok {
		return nil
	}
	wi := page.WrapperIndex(wrapperID)
	if wi < 0 || !page.WrapperBlocks[wi].MoveChild(index, dir) {
		return nil
	}
	return e.store.Commit(ctx, page)
}

// SetSelectionMode enters or leaves selection mode for the page.
func (e *Engine) SetSelectionMode(pageID uuid.UUID, on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewLocked(pageID).SetSelectionMode(on)
}

// ClearSelection empties the selection without leaving selection mode.
func (e *Engine) ClearSelection(pageID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.viewLocked(pageID).Selection = Selection{}
}

// withView runs fn on the page's view under the engine lock.
func (e *Engine) withView(pageID uuid.UUID, fn func(v *View)) View {
	e.mu.Lock()
	defer e.mu.Unlock()
	v := e.viewLocked(pageID)
	fn(v)
	return *v
}

func (e *Engine) PanChanged(pageID uuid.UUID, d geometry.Vec) View {
	return e.withView(pageID, func(v *View) { v.PanChanged(d) })
}

func (e *Engine) PanEnded(pageID uuid.UUID, d geometry.Vec) View {
	return e.withView(pageID, func(v *View) { v.PanEnded(d) })
}

func (e *Engine) ZoomChanged(pageID uuid.UUID, f float64) View {
	return e.withView(pageID, func(v *View) { v.ZoomChanged(f) })
}

func (e *Engine) ZoomEnded(pageID uuid.UUID, f float64) View {
	return e.withView(pageID, func(v *View) { v.ZoomEnded(f) })
}

func (e *Engine) ZoomIn(pageID uuid.UUID) View {
	return e.withView(pageID, func(v *View) { v.ZoomIn() })
}

func (e *Engine) ZoomOut(pageID uuid.UUID) View {
	return e.withView(pageID, func(v *View) { v.ZoomOut() })
}

func (e *Engine) ResetZoom(pageID uuid.UUID) View {
	return e.withView(pageID, func(v *View) { v.ResetZoom() })
}

// ScreenToPage converts a screen point using the committed view.
func (e *Engine) ScreenToPage(pageID uuid.UUID, p geometry.Pt) geometry.Pt {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked(pageID).Committed().ToPage(p)
}

// Forget drops view and drag state for a deleted page.
func (e *Engine) Forget(pageID uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.views, pageID)
	delete(e.drags, pageID)
}
