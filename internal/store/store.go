/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package store owns the in-memory block graph. A single Store instance is
// created at startup and handed to the canvas engine and the CLI; every
// committed mutation is written through to the Repository in call order.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"funcards/internal/domain"
	"funcards/internal/geometry"
	applog "funcards/internal/log"
)

// Persister durably replaces the stored page list.
type Persister interface {
	Save(ctx context.Context, pages []domain.Page) error
}

// Repository loads and saves the page list. storage.Repository implements it.
type Repository interface {
	Persister
	Load(ctx context.Context) ([]domain.Page, error)
	Reset(ctx context.Context) ([]domain.Page, error)
}

// Store holds the pages of one installation.
// Mutations referencing a page or block that no longer exists are dropped
// silently: deletions racing with an in-flight gesture are expected.
type Store struct {
	mu    sync.RWMutex
	pages []domain.Page
	repo  Persister
	log   *slog.Logger
}

// New wraps pages in a Store that saves through p. p may be nil for a purely
// in-memory store.
func New(pages []domain.Page, p Persister) *Store {
	cp := make([]domain.Page, len(pages))
	for i := range pages {
		cp[i] = pages[i].Clone()
	}
	return &Store{pages: cp, repo: p, log: applog.WithComponent("store")}
}

// Open loads the pages through repo (migrating or seeding as needed) and
// returns a Store bound to it.
func Open(ctx context.Context, repo Repository) (*Store, error) {
	pages, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}
	return New(pages, repo), nil
}

// Pages returns a deep copy of every page in order.
func (s *Store) Pages() []domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Page, len(s.pages))
	for i := range s.pages {
		out[i] = s.pages[i].Clone()
	}
	return out
}

// Page returns a copy of the page with id.
func (s *Store) Page(id uuid.UUID) (domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.pages[i].Clone(), true
	}
	return domain.Page{}, false
}

// PageByName returns the first page named name (case-insensitive).
func (s *Store) PageByName(name string) (domain.Page, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name = strings.TrimSpace(name)
	for i := range s.pages {
		if strings.EqualFold(s.pages[i].Name, name) {
			return s.pages[i].Clone(), true
		}
	}
	return domain.Page{}, false
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i := range s.pages {
		if s.pages[i].ID == id {
			return i
		}
	}
	return -1
}

// mutate runs fn on the page with id and saves when fn reports a change.
func (s *Store) mutate(ctx context.Context, op string, id uuid.UUID, fn func(p *domain.Page) bool) error {
	ctx = applog.WithPage(ctx, id)
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.log.DebugContext(ctx, "stale page reference", slog.String("op", op))
		return nil
	}
	if !fn(&s.pages[i]) {
		s.mu.Unlock()
		s.log.DebugContext(ctx, "no-op mutation", slog.String("op", op))
		return nil
	}
	return s.saveLocked(ctx, op)
}

// saveLocked persists a snapshot and releases the write lock. The snapshot
// is taken under the lock so saves are applied in mutation order.
func (s *Store) saveLocked(ctx context.Context, op string) error {
	defer s.mu.Unlock()
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, s.pages); err != nil {
		s.log.ErrorContext(ctx, "save failed", slog.String("op", op), slog.Any("err", err))
		return fmt.Errorf("%s: save: %w", op, err)
	}
	return nil
}

// Save writes the current pages unconditionally.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	return s.saveLocked(ctx, "save")
}

// AddPage appends a new empty page.
func (s *Store) AddPage(ctx context.Context, name string) (domain.Page, error) {
	p := domain.NewPage(strings.TrimSpace(name))
	s.mu.Lock()
	s.pages = append(s.pages, p)
	return p.Clone(), s.saveLocked(ctx, "add_page")
}

// DeletePage removes the page and everything on it.
func (s *Store) DeletePage(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil
	}
	s.pages = append(s.pages[:i:i], s.pages[i+1:]...)
	return s.saveLocked(ctx, "delete_page")
}

// RenamePage sets a new, non-empty name.
func (s *Store) RenamePage(ctx context.Context, id uuid.UUID, name string) error {
	n, err := domain.RequireText("page name", name)
	if err != nil {
		return err
	}
	return s.mutate(ctx, "rename_page", id, func(p *domain.Page) bool {
		if p.Name == n {
			return false
		}
		p.Name = n
		return true
	})
}

// AddWrapperBlock places a container on the page. A container whose id, or
// any of whose child ids, is already on the page is not added.
func (s *Store) AddWrapperBlock(ctx context.Context, pageID uuid.UUID, b domain.WrapperBlock) error {
	return s.mutate(ctx, "add_wrapper", pageID, func(p *domain.Page) bool {
		if id, taken := firstTaken(p, b); taken {
			s.log.WarnContext(applog.WithBlock(ctx, id), "block id already on page")
			return false
		}
		p.WrapperBlocks = append(p.WrapperBlocks, b.Clone())
		return true
	})
}

// AddWrappedBlock places a free leaf on the page unless its id is taken.
func (s *Store) AddWrappedBlock(ctx context.Context, pageID uuid.UUID, b domain.WrappedBlock) error {
	return s.mutate(ctx, "add_wrapped", pageID, func(p *domain.Page) bool {
		if _, taken := p.Card(b.ID); taken {
			s.log.WarnContext(applog.WithBlock(ctx, b.ID), "block id already on page")
			return false
		}
		p.WrappedBlocks = append(p.WrappedBlocks, b)
		return true
	})
}

// firstTaken reports the first id of w (itself, then its children) that is
// already used on p or repeated inside w.
func firstTaken(p *domain.Page, w domain.WrapperBlock) (uuid.UUID, bool) {
	if _, ok := p.Card(w.ID); ok {
		return w.ID, true
	}
	seen := map[uuid.UUID]struct{}{w.ID: {}}
	for _, c := range w.Children {
		if _, ok := p.Card(c.ID); ok {
			return c.ID, true
		}
		if _, dup := seen[c.ID]; dup {
			return c.ID, true
		}
		seen[c.ID] = struct{}{}
	}
	return uuid.Nil, false
}

// CreateWrapperBlock builds a container with the group's colour and adds it.
// ok is false when the page no longer exists.
func (s *Store) CreateWrapperBlock(ctx context.Context, pageID uuid.UUID, pos geometry.Pt, text, backText string, group domain.BlockGroup) (b domain.WrapperBlock, ok bool, err error) {
	b = domain.NewWrapperBlock(pos, text, backText, group)
	if _, ok = s.Page(pageID); !ok {
		return b, false, nil
	}
	return b, true, s.AddWrapperBlock(ctx, pageID, b)
}

// CreateWrappedBlock builds a leaf with the group's colour and adds it.
// ok is false when the page no longer exists.
func (s *Store) CreateWrappedBlock(ctx context.Context, pageID uuid.UUID, pos geometry.Pt, text, backText string, group domain.BlockGroup) (b domain.WrappedBlock, ok bool, err error) {
	b = domain.NewWrappedBlock(pos, text, backText, group)
	if _, ok = s.Page(pageID); !ok {
		return b, false, nil
	}
	return b, true, s.AddWrappedBlock(ctx, pageID, b)
}

// ErrChildPosition is returned when an update tries to move a child row.
// Rows are laid out by their container and always sit at the origin.
var ErrChildPosition = &domain.ValidationError{Field: "position", Reason: "child rows are positioned by their container"}

// UpdateBlock patches any block on the page (container, free leaf or child).
// A position patch on a child row is rejected with ErrChildPosition and
// nothing is changed.
func (s *Store) UpdateBlock(ctx context.Context, pageID, blockID uuid.UUID, u domain.BlockUpdate) error {
	var rejected bool
	err := s.mutate(applog.WithBlock(applog.WithPage(ctx, pageID), blockID), "update_block", pageID, func(p *domain.Page) bool {
		if ref, ok := p.FindLeaf(blockID); ok && ref.Wrapper >= 0 && u.Position != nil {
			rejected = true
			return false
		}
		c, ok := p.Card(blockID)
		if !ok {
			return false
		}
		c.Apply(u)
		return true
	})
	if rejected {
		return ErrChildPosition
	}
	return err
}

// DeleteBlock removes any block on the page. Deleting a container deletes
// its children with it.
func (s *Store) DeleteBlock(ctx context.Context, pageID, blockID uuid.UUID) error {
	return s.mutate(ctx, "delete_block", pageID, func(p *domain.Page) bool {
		if _, ok := p.RemoveWrapper(blockID); ok {
			return true
		}
		_, ok := p.RemoveLeaf(blockID)
		return ok
	})
}

// FilterBlocks returns the page's containers and free leaves matching f.
func (s *Store) FilterBlocks(pageID uuid.UUID, f domain.Filter) domain.FilteredBlocks {
	p, ok := s.Page(pageID)
	if !ok {
		return domain.FilteredBlocks{}
	}
	return f.Apply(p)
}

// Commit replaces a page with an edited copy and saves. Unknown pages are
// dropped.
func (s *Store) Commit(ctx context.Context, page domain.Page) error {
	return s.mutate(ctx, "commit", page.ID, func(p *domain.Page) bool {
		*p = page.Clone()
		return true
	})
}

// SetTransient replaces a page without saving. It is used for in-progress
// gestures whose state must be visible but never persisted.
func (s *Store) SetTransient(page domain.Page) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(page.ID)
	if i < 0 {
		return false
	}
	s.pages[i] = page.Clone()
	return true
}

// Reset discards every page and reinstalls the starter dataset.
func (s *Store) Reset(ctx context.Context) error {
	repo, ok := s.repo.(Repository)
	if !ok {
		s.mu.Lock()
		s.pages = domain.DefaultPages()
		return s.saveLocked(ctx, "reset")
	}
	pages, err := repo.Reset(ctx)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages = pages
	return nil
}
