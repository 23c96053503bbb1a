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
	"sync"
	"testing"

	"funcards/internal/domain"
	"funcards/internal/geometry"
	"funcards/internal/store"
)

type countingSaver struct {
	mu sync.Mutex
	n  int
}

func (c *countingSaver) Save(context.Context, []domain.Page) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func (c *countingSaver) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func newEngine(t *testing.T) (*Engine, *store.Store, *countingSaver, domain.Page) {
	t.Helper()
	saver := &countingSaver{}
	s := store.New(domain.DefaultPages(), saver)
	return NewEngine(s, Options{GridSize: 30}), s, saver, s.Pages()[0]
}

func TestEngineDragConvertsScreenUnits(t *testing.T) {
	ctx := context.Background()
	e, s, saver, p := newEngine(t)
	leaf := p.WrappedBlocks[0] // (120,120)
	e.ZoomEnded(p.ID, 2)
	e.PanEnded(p.ID, geometry.V(40, 40))

	e.BeginDrag(p.ID, WrappedTarget(leaf.ID))
	e.MoveDrag(p.ID, geometry.V(60, 0))
	mid, _ := s.Page(p.ID)
	if got := mid.WrappedBlocks[0].DragOffset; got != geometry.V(30, 0) {
		t.Fatalf("transient offset %v, want (30,0)", got)
	}
	if saver.count() != 0 {
		t.Fatalf("transient move was saved")
	}
	d, err := e.EndDrag(ctx, p.ID, geometry.V(120, 60))
	if err != nil {
		t.Fatal(err)
	}
	if d.Phase != Committed || saver.count() != 1 {
		t.Fatalf("phase %v saves %d", d.Phase, saver.count())
	}
	after, _ := s.Page(p.ID)
	if got := after.WrappedBlocks[0].Position; got != geometry.P(180, 150) {
		t.Fatalf("position %v, want (180,150)", got)
	}
}

func TestEngineCancelRestores(t *testing.T) {
	e, s, saver, p := newEngine(t)
	w := p.WrapperBlocks[0]
	e.BeginDrag(p.ID, WrapperTarget(w.ID))
	e.MoveDrag(p.ID, geometry.V(77, 77))
	e.CancelDrag(p.ID)
	after, _ := s.Page(p.ID)
	if !after.Equal(p) || saver.count() != 0 {
		t.Fatalf("cancel left traces")
	}
	if e.Drag(p.ID).Active() {
		t.Fatalf("drag still active")
	}
}

func TestEngineTapFlipsOrSelects(t *testing.T) {
	ctx := context.Background()
	e, s, saver, p := newEngine(t)
	w := p.WrapperBlocks[0]
	if err := e.Tap(ctx, p.ID, WrapperTarget(w.ID)); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Page(p.ID)
	if !after.WrapperBlocks[0].IsFlipped || saver.count() != 1 {
		t.Fatalf("tap did not flip and save")
	}

	e.SetSelectionMode(p.ID, true)
	if err := e.Tap(ctx, p.ID, WrapperTarget(w.ID)); err != nil {
		t.Fatal(err)
	}
	if !e.View(p.ID).Selection.HasWrapper(w.ID) {
		t.Fatalf("tap in selection mode must select")
	}
	child := w.Children[0]
	if err := e.Tap(ctx, p.ID, ChildTarget(w.ID, child.ID)); err != nil {
		t.Fatal(err)
	}
	after, _ = s.Page(p.ID)
	if !after.WrapperBlocks[0].Children[0].IsFlipped {
		t.Fatalf("child rows flip even in selection mode")
	}
	if !after.WrapperBlocks[0].IsFlipped {
		t.Fatalf("selecting must not flip")
	}
}

func TestEngineSelectionDrag(t *testing.T) {
	ctx := context.Background()
	e, s, _, p := newEngine(t)
	e.SetSelectionMode(p.ID, true)
	for _, l := range p.WrappedBlocks {
		if err := e.Tap(ctx, p.ID, WrappedTarget(l.ID)); err != nil {
			t.Fatal(err)
		}
	}
	e.BeginDrag(p.ID, WrappedTarget(p.WrappedBlocks[0].ID))
	if _, err := e.EndDrag(ctx, p.ID, geometry.V(45, 10)); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Page(p.ID)
	for i, old := range p.WrappedBlocks {
		want := geometry.SnapToGrid(old.Position.Add(geometry.V(45, 10)), 30)
		if after.WrappedBlocks[i].Position != want {
			t.Fatalf("block %d at %v, want %v", i, after.WrappedBlocks[i].Position, want)
		}
	}
	if len(after.WrapperBlocks[0].Children) != 2 {
		t.Fatalf("batch drags never reparent")
	}
}

func TestEngineMoveRow(t *testing.T) {
	ctx := context.Background()
	e, s, saver, p := newEngine(t)
	w := p.WrapperBlocks[0]
	if err := e.MoveRow(ctx, p.ID, w.ID, 0, domain.Up); err != nil {
		t.Fatal(err)
	}
	if saver.count() != 0 {
		t.Fatalf("boundary move must be a no-op")
	}
	if err := e.MoveRow(ctx, p.ID, w.ID, 0, domain.Down); err != nil {
		t.Fatal(err)
	}
	after, _ := s.Page(p.ID)
	if after.WrapperBlocks[0].Children[0].ID != w.Children[1].ID {
		t.Fatalf("rows not swapped")
	}
}

func TestEngineDeletedPageIsIgnored(t *testing.T) {
	ctx := context.Background()
	e, s, saver, p := newEngine(t)
	leaf := p.WrappedBlocks[0]
	e.BeginDrag(p.ID, WrappedTarget(leaf.ID))
	if err := s.DeletePage(ctx, p.ID); err != nil {
		t.Fatal(err)
	}
	n := saver.count()
	d, err := e.EndDrag(ctx, p.ID, geometry.V(30, 30))
	if err != nil || d.Phase != Idle {
		t.Fatalf("phase %v err %v", d.Phase, err)
	}
	if saver.count() != n {
		t.Fatalf("stale release saved")
	}
	e.Forget(p.ID)
}
