/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"funcards/internal/domain"
	"funcards/internal/geometry"
)

type recorder struct {
	mu    sync.Mutex
	saves [][]domain.Page
	err   error
	reset []domain.Page
}

func (r *recorder) Save(_ context.Context, pages []domain.Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := make([]domain.Page, len(pages))
	for i := range pages {
		cp[i] = pages[i].Clone()
	}
	r.saves = append(r.saves, cp)
	return r.err
}

func (r *recorder) Load(context.Context) ([]domain.Page, error) { return domain.DefaultPages(), nil }

func (r *recorder) Reset(context.Context) ([]domain.Page, error) {
	r.reset = domain.DefaultPages()
	return r.reset, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saves)
}

func newStore(t *testing.T) (*Store, *recorder, domain.Page) {
	t.Helper()
	rec := &recorder{}
	s, err := Open(context.Background(), rec)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s, rec, s.Pages()[0]
}

func TestPagesReturnsCopies(t *testing.T) {
	s, _, p := newStore(t)
	pages := s.Pages()
	pages[0].WrapperBlocks[0].Text = "mutated"
	again, _ := s.Page(p.ID)
	if again.WrapperBlocks[0].Text == "mutated" {
		t.Fatalf("caller mutation leaked into the store")
	}
}

func TestPageLifecycleSaves(t *testing.T) {
	ctx := context.Background()
	s, rec, _ := newStore(t)
	p, err := s.AddPage(ctx, "  Ideas ")
	if err != nil {
		t.Fatalf("AddPage: %v", err)
	}
	if p.Name != "Ideas" || len(s.Pages()) != 3 {
		t.Fatalf("unexpected page %+v", p)
	}
	if err := s.RenamePage(ctx, p.ID, "Notes"); err != nil {
		t.Fatalf("RenamePage: %v", err)
	}
	if got, ok := s.PageByName("notes"); !ok || got.ID != p.ID {
		t.Fatalf("PageByName failed")
	}
	var ve *domain.ValidationError
	if err := s.RenamePage(ctx, p.ID, "   "); !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := s.DeletePage(ctx, p.ID); err != nil {
		t.Fatalf("DeletePage: %v", err)
	}
	if len(s.Pages()) != 2 {
		t.Fatalf("page not deleted")
	}
	if rec.count() != 3 {
		t.Fatalf("saves = %d, want 3", rec.count())
	}
}

func TestStaleReferencesAreNoOps(t *testing.T) {
	ctx := context.Background()
	s, rec, p := newStore(t)
	before := s.Pages()
	ghost := uuid.New()
	text := "x"
	if err := s.UpdateBlock(ctx, ghost, p.WrappedBlocks[0].ID, domain.BlockUpdate{Text: &text}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateBlock(ctx, p.ID, ghost, domain.BlockUpdate{Text: &text}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteBlock(ctx, p.ID, ghost); err != nil {
		t.Fatal(err)
	}
	if err := s.RenamePage(ctx, ghost, "n"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := s.CreateWrappedBlock(ctx, ghost, geometry.Pt{}, "a", "b", domain.GroupOther); ok || err != nil {
		t.Fatalf("create on a missing page should be dropped, ok=%v err=%v", ok, err)
	}
	if rec.count() != 0 {
		t.Fatalf("no-ops must not save, got %d saves", rec.count())
	}
	after := s.Pages()
	for i := range before {
		if !before[i].Equal(after[i]) {
			t.Fatalf("page %d changed", i)
		}
	}
}

func TestUpdateAndDeleteChild(t *testing.T) {
	ctx := context.Background()
	s, _, p := newStore(t)
	child := p.WrapperBlocks[0].Children[0]
	g := domain.GroupButton
	if err := s.UpdateBlock(ctx, p.ID, child.ID, domain.BlockUpdate{Group: &g}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Page(p.ID)
	c := got.WrapperBlocks[0].Children[0]
	if c.Group != domain.GroupButton || c.Color != domain.GroupButton.Color() {
		t.Fatalf("child not updated: %+v", c)
	}
	if err := s.DeleteBlock(ctx, p.ID, child.ID); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Page(p.ID)
	if len(got.WrapperBlocks[0].Children) != 1 {
		t.Fatalf("child not deleted")
	}
	if err := s.DeleteBlock(ctx, p.ID, got.WrapperBlocks[0].ID); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Page(p.ID)
	if len(got.WrapperBlocks) != 1 || got.LeafCount() != 4 {
		t.Fatalf("container deletion should take its children: wrappers=%d leaves=%d", len(got.WrapperBlocks), got.LeafCount())
	}
}

func TestChildPositionIsNotEditable(t *testing.T) {
	ctx := context.Background()
	s, rec, p := newStore(t)
	child := p.WrapperBlocks[0].Children[0]
	before := rec.count()
	pos := geometry.P(300, 300)
	text := "moved?"
	err := s.UpdateBlock(ctx, p.ID, child.ID, domain.BlockUpdate{Text: &text, Position: &pos})
	var ve *domain.ValidationError
	if !errors.Is(err, ErrChildPosition) || !errors.As(err, &ve) {
		t.Fatalf("err = %v, want ErrChildPosition", err)
	}
	got, _ := s.Page(p.ID)
	c := got.WrapperBlocks[0].Children[0]
	if c.Position != (geometry.Pt{}) || c.Text == text {
		t.Fatalf("rejected update leaked: %+v", c.Card)
	}
	if rec.count() != before {
		t.Fatalf("rejected update was saved")
	}

	// free leaves still move
	leaf := p.WrappedBlocks[0]
	if err := s.UpdateBlock(ctx, p.ID, leaf.ID, domain.BlockUpdate{Position: &pos}); err != nil {
		t.Fatal(err)
	}
	got, _ = s.Page(p.ID)
	if got.WrappedBlocks[0].Position != pos {
		t.Fatalf("leaf not moved: %+v", got.WrappedBlocks[0].Card)
	}
}

func TestAddRejectsIDsAlreadyOnPage(t *testing.T) {
	ctx := context.Background()
	s, rec, p := newStore(t)
	b := domain.NewWrappedBlock(geometry.P(10, 10), "x", "y", domain.GroupOther)
	if err := s.AddWrappedBlock(ctx, p.ID, b); err != nil {
		t.Fatal(err)
	}
	saves := rec.count()
	if err := s.AddWrappedBlock(ctx, p.ID, b); err != nil {
		t.Fatal(err)
	}
	// a container reusing an existing child id
	w := domain.NewWrapperBlock(geometry.P(0, 600), "w", "w", domain.GroupStack, p.WrapperBlocks[0].Children[0])
	if err := s.AddWrapperBlock(ctx, p.ID, w); err != nil {
		t.Fatal(err)
	}
	// a container holding the same row twice
	row := domain.NewWrappedBlock(geometry.Pt{}, "r", "r", domain.GroupOther)
	twice := domain.NewWrapperBlock(geometry.P(0, 900), "t", "t", domain.GroupStack, row, row)
	if err := s.AddWrapperBlock(ctx, p.ID, twice); err != nil {
		t.Fatal(err)
	}
	// the existing container itself
	if err := s.AddWrapperBlock(ctx, p.ID, p.WrapperBlocks[0]); err != nil {
		t.Fatal(err)
	}
	if rec.count() != saves {
		t.Fatalf("duplicate adds were saved")
	}
	got, _ := s.Page(p.ID)
	if err := got.Validate(); err != nil {
		t.Fatalf("ownership broken: %v", err)
	}
	if len(got.WrapperBlocks) != len(p.WrapperBlocks) || len(got.WrappedBlocks) != len(p.WrappedBlocks)+1 {
		t.Fatalf("unexpected block counts: wrappers=%d leaves=%d", len(got.WrapperBlocks), len(got.WrappedBlocks))
	}
}

func TestTransientDoesNotSave(t *testing.T) {
	ctx := context.Background()
	s, rec, p := newStore(t)
	p.WrappedBlocks[0].DragOffset = geometry.V(10, 10)
	if !s.SetTransient(p) {
		t.Fatalf("SetTransient on a known page failed")
	}
	if rec.count() != 0 {
		t.Fatalf("transient update saved")
	}
	p.WrappedBlocks[0].DragOffset = geometry.Vec{}
	p.WrappedBlocks[0].Position = geometry.P(30, 30)
	if err := s.Commit(ctx, p); err != nil {
		t.Fatal(err)
	}
	if rec.count() != 1 {
		t.Fatalf("commit did not save")
	}
	saved := rec.saves[0][0]
	if saved.WrappedBlocks[0].Position != geometry.P(30, 30) {
		t.Fatalf("saved snapshot is stale")
	}
}

func TestSaveErrorIsReturned(t *testing.T) {
	s, rec, _ := newStore(t)
	rec.err = errors.New("disk full")
	if _, err := s.AddPage(context.Background(), "x"); err == nil {
		t.Fatalf("expected save error")
	}
}

func TestFilterBlocks(t *testing.T) {
	s, _, p := newStore(t)
	got := s.FilterBlocks(p.ID, domain.Filter{Search: "block a"})
	if len(got.Wrappers) != 1 || len(got.Wrapped) != 0 {
		t.Fatalf("unexpected filter result %+v", got)
	}
	if got := s.FilterBlocks(uuid.New(), domain.Filter{}); len(got.Wrappers)+len(got.Wrapped) != 0 {
		t.Fatalf("unknown page should yield nothing")
	}
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s, rec, _ := newStore(t)
	if _, err := s.AddPage(ctx, "extra"); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if len(s.Pages()) != 2 || rec.reset == nil {
		t.Fatalf("reset did not reinstall the defaults")
	}

	mem := New(nil, nil)
	if err := mem.Reset(ctx); err != nil {
		t.Fatal(err)
	}
	if len(mem.Pages()) != 2 {
		t.Fatalf("in-memory reset should seed defaults")
	}
}
