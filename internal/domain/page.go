/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"fmt"

	"github.com/google/uuid"

	"funcards/internal/geometry"
)

// Page is a named canvas holding its own blocks.
type Page struct {
	ID            uuid.UUID
	Name          string
	WrapperBlocks []WrapperBlock
	WrappedBlocks []WrappedBlock
}

// NewPage creates an empty page with a fresh id.
func NewPage(name string) Page {
	return Page{ID: uuid.New(), Name: name}
}

// Clone returns a deep copy; mutating the copy never touches p.
func (p Page) Clone() Page {
	c := Page{ID: p.ID, Name: p.Name}
	if p.WrapperBlocks != nil {
		c.WrapperBlocks = make([]WrapperBlock, len(p.WrapperBlocks))
		for i, w := range p.WrapperBlocks {
			c.WrapperBlocks[i] = w.Clone()
		}
	}
	if p.WrappedBlocks != nil {
		c.WrappedBlocks = append([]WrappedBlock(nil), p.WrappedBlocks...)
	}
	return c
}

// Equal compares pages structurally.
func (p Page) Equal(o Page) bool {
	if p.ID != o.ID || p.Name != o.Name ||
		len(p.WrapperBlocks) != len(o.WrapperBlocks) || len(p.WrappedBlocks) != len(o.WrappedBlocks) {
		return false
	}
	for i := range p.WrapperBlocks {
		if !p.WrapperBlocks[i].Equal(o.WrapperBlocks[i]) {
			return false
		}
	}
	for i := range p.WrappedBlocks {
		if !p.WrappedBlocks[i].Equal(o.WrappedBlocks[i]) {
			return false
		}
	}
	return true
}

// WrapperIndex returns the index of the container with id, or -1.
func (p Page) WrapperIndex(id uuid.UUID) int {
	for i := range p.WrapperBlocks {
		if p.WrapperBlocks[i].ID == id {
			return i
		}
	}
	return -1
}

// WrappedIndex returns the index of the top-level leaf with id, or -1.
func (p Page) WrappedIndex(id uuid.UUID) int {
	for i := range p.WrappedBlocks {
		if p.WrappedBlocks[i].ID == id {
			return i
		}
	}
	return -1
}

// LeafRef locates a leaf: Wrapper is -1 for top-level leaves, otherwise the
// index of the owning container; Index is the position in the owner's list.
type LeafRef struct {
	Wrapper int
	Index   int
}

// FindLeaf locates a leaf anywhere on the page.
func (p Page) FindLeaf(id uuid.UUID) (LeafRef, bool) {
	if i := p.WrappedIndex(id); i >= 0 {
		return LeafRef{Wrapper: -1, Index: i}, true
	}
	for wi := range p.WrapperBlocks {
		if ci := p.WrapperBlocks[wi].ChildIndex(id); ci >= 0 {
			return LeafRef{Wrapper: wi, Index: ci}, true
		}
	}
	return LeafRef{}, false
}

// Leaf returns a pointer to the referenced leaf inside p.
func (p *Page) Leaf(ref LeafRef) *WrappedBlock {
	if ref.Wrapper < 0 {
		return &p.WrappedBlocks[ref.Index]
	}
	return &p.WrapperBlocks[ref.Wrapper].Children[ref.Index]
}

// RemoveLeaf detaches the leaf with id from whichever list owns it.
func (p *Page) RemoveLeaf(id uuid.UUID) (WrappedBlock, bool) {
	ref, ok := p.FindLeaf(id)
	if !ok {
		return WrappedBlock{}, false
	}
	if ref.Wrapper < 0 {
		b := p.WrappedBlocks[ref.Index]
		p.WrappedBlocks = append(p.WrappedBlocks[:ref.Index:ref.Index], p.WrappedBlocks[ref.Index+1:]...)
		return b, true
	}
	return p.WrapperBlocks[ref.Wrapper].RemoveChild(id)
}

// RemoveWrapper deletes a container together with the leaves it owns.
func (p *Page) RemoveWrapper(id uuid.UUID) (WrapperBlock, bool) {
	i := p.WrapperIndex(id)
	if i < 0 {
		return WrapperBlock{}, false
	}
	w := p.WrapperBlocks[i]
	p.WrapperBlocks = append(p.WrapperBlocks[:i:i], p.WrapperBlocks[i+1:]...)
	return w, true
}

// Card returns the shared attributes of any block on the page (container,
// top-level leaf or child) by id.
func (p *Page) Card(id uuid.UUID) (*Card, bool) {
	if i := p.WrapperIndex(id); i >= 0 {
		return &p.WrapperBlocks[i].Card, true
	}
	if ref, ok := p.FindLeaf(id); ok {
		return &p.Leaf(ref).Card, true
	}
	return nil, false
}

// ContainerAt returns the index of the first container, in page order, whose
// drop zone contains pt, or -1.
func (p Page) ContainerAt(pt geometry.Pt) int {
	for i := range p.WrapperBlocks {
		if p.WrapperBlocks[i].DropZone().Contains(pt) {
			return i
		}
	}
	return -1
}

// LeafCount counts top-level leaves plus every container's children.
func (p Page) LeafCount() int {
	n := len(p.WrappedBlocks)
	for _, w := range p.WrapperBlocks {
		n += len(w.Children)
	}
	return n
}

// LeafIDs lists every leaf id reachable from the page, duplicates included.
func (p Page) LeafIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, p.LeafCount())
	for _, b := range p.WrappedBlocks {
		ids = append(ids, b.ID)
	}
	for _, w := range p.WrapperBlocks {
		for _, c := range w.Children {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// Validate checks the ownership invariant: no block id appears twice.
func (p Page) Validate() error {
	seen := make(map[uuid.UUID]struct{}, p.LeafCount()+len(p.WrapperBlocks))
	for _, w := range p.WrapperBlocks {
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("page %q: duplicate block id %s", p.Name, w.ID)
		}
		seen[w.ID] = struct{}{}
	}
	for _, id := range p.LeafIDs() {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("page %q: duplicate block id %s", p.Name, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
