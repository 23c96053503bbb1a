/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas implements the interaction layer of the block graph: the
// drag state machine, pan and zoom, selection mode and the engine that ties
// gestures to the store.
package canvas

import (
	"github.com/google/uuid"

	"funcards/internal/domain"
	"funcards/internal/geometry"
)

// Phase of a drag gesture.
type Phase int

const (
	Idle Phase = iota
	Dragging
	Committed
	Reparented
	Cancelled
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	case Reparented:
		return "reparented"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TargetKind says which kind of block a gesture grabbed.
type TargetKind int

const (
	TargetWrapper TargetKind = iota
	TargetWrapped
	TargetChild
)

func (k TargetKind) String() string {
	switch k {
	case TargetWrapper:
		return "wrapper"
	case TargetWrapped:
		return "wrapped"
	case TargetChild:
		return "child"
	}
	return "unknown"
}

// Target identifies the grabbed block. Wrapper is set for child rows only.
type Target struct {
	Kind    TargetKind
	ID      uuid.UUID
	Wrapper uuid.UUID
}

// WrapperTarget, WrappedTarget and ChildTarget build targets.
func WrapperTarget(id uuid.UUID) Target { return Target{Kind: TargetWrapper, ID: id} }
func WrappedTarget(id uuid.UUID) Target { return Target{Kind: TargetWrapped, ID: id} }
func ChildTarget(wrapper, id uuid.UUID) Target {
	return Target{Kind: TargetChild, ID: id, Wrapper: wrapper}
}

// Drag is the state of at most one gesture per page.
type Drag struct {
	Phase  Phase
	Target Target
	// Batch is set when the gesture started in selection mode; every
	// selected block then moves by the same translation.
	Batch     bool
	Selection Selection
	// Translation in page units, as of the last event.
	Translation geometry.Vec
	// Into is the container that absorbed the leaf; uuid.Nil when a child
	// row was dragged out to the top level.
	Into uuid.UUID
}

// Active reports whether a gesture is in progress.
func (d Drag) Active() bool { return d.Phase == Dragging }

// Event drives Step.
type Event interface{ event() }

// DragStart begins a gesture. A non-nil Selection makes it a batch drag.
type DragStart struct {
	Target    Target
	Selection *Selection
}

// DragMove reports the cumulative translation since DragStart.
type DragMove struct{ Translation geometry.Vec }

// DragEnd reports the final cumulative translation.
type DragEnd struct{ Translation geometry.Vec }

// DragCancel aborts the gesture.
type DragCancel struct{}

func (DragStart) event()  {}
func (DragMove) event()   {}
func (DragEnd) event()    {}
func (DragCancel) event() {}

// Options tune Step.
type Options struct {
	GridSize float64
}

// Step is the pure transition function of the drag machine. It never
// mutates page; the returned page is a fresh copy whenever anything changed.
// Events that do not apply to the current phase leave both values untouched.
func Step(page domain.Page, d Drag, ev Event, opt Options) (domain.Page, Drag) {
	switch e := ev.(type) {
	case DragStart:
		if d.Active() {
			return page, d
		}
		if !targetExists(page, e.Target) {
			return page, Drag{}
		}
		next := Drag{Phase: Dragging, Target: e.Target}
		if e.Selection != nil && e.Target.Kind != TargetChild {
			next.Batch = true
			next.Selection = e.Selection.Clone()
		}
		return page, next
	case DragMove:
		if !d.Active() {
			return page, d
		}
		d.Translation = e.Translation
		p := page.Clone()
		setOffset(&p, d, e.Translation)
		return p, d
	case DragEnd:
		if !d.Active() {
			return page, d
		}
		d.Translation = e.Translation
		return release(page, d, opt.GridSize)
	case DragCancel:
		if !d.Active() {
			return page, d
		}
		p := page.Clone()
		setOffset(&p, d, geometry.Vec{})
		d.Phase = Cancelled
		return p, d
	}
	return page, d
}

func targetExists(p domain.Page, t Target) bool {
	switch t.Kind {
	case TargetWrapper:
		return p.WrapperIndex(t.ID) >= 0
	case TargetWrapped:
		return p.WrappedIndex(t.ID) >= 0
	case TargetChild:
		wi := p.WrapperIndex(t.Wrapper)
		return wi >= 0 && p.WrapperBlocks[wi].ChildIndex(t.ID) >= 0
	}
	return false
}

// setOffset writes the transient offset to every block the drag moves.
// Blocks that disappeared mid-gesture are skipped.
func setOffset(p *domain.Page, d Drag, v geometry.Vec) {
	if d.Batch {
		for i := range p.WrapperBlocks {
			if d.Selection.HasWrapper(p.WrapperBlocks[i].ID) {
				p.WrapperBlocks[i].DragOffset = v
			}
		}
		for i := range p.WrappedBlocks {
			if d.Selection.HasWrapped(p.WrappedBlocks[i].ID) {
				p.WrappedBlocks[i].DragOffset = v
			}
		}
		return
	}
	if c := targetCard(p, d.Target); c != nil {
		c.DragOffset = v
	}
}

func targetCard(p *domain.Page, t Target) *domain.Card {
	switch t.Kind {
	case TargetWrapper:
		if i := p.WrapperIndex(t.ID); i >= 0 {
			return &p.WrapperBlocks[i].Card
		}
	case TargetWrapped:
		if i := p.WrappedIndex(t.ID); i >= 0 {
			return &p.WrappedBlocks[i].Card
		}
	case TargetChild:
		if wi := p.WrapperIndex(t.Wrapper); wi >= 0 {
			if ci := p.WrapperBlocks[wi].ChildIndex(t.ID); ci >= 0 {
				return &p.WrapperBlocks[wi].Children[ci].Card
			}
		}
	}
	return nil
}

func settle(c *domain.Card, t geometry.Vec, grid float64) {
	c.Position = geometry.SnapToGrid(c.Position.Add(t), grid)
	c.DragOffset = geometry.Vec{}
}

func release(page domain.Page, d Drag, grid float64) (domain.Page, Drag) {
	p := page.Clone()
	t := d.Translation

	if d.Batch {
		for i := range p.WrapperBlocks {
			if d.Selection.HasWrapper(p.WrapperBlocks[i].ID) {
				settle(&p.WrapperBlocks[i].Card, t, grid)
			}
		}
		for i := range p.WrappedBlocks {
			if d.Selection.HasWrapped(p.WrappedBlocks[i].ID) {
				settle(&p.WrappedBlocks[i].Card, t, grid)
			}
		}
		d.Phase = Committed
		return p, d
	}

	switch d.Target.Kind {
	case TargetWrapper:
		i := p.WrapperIndex(d.Target.ID)
		if i < 0 {
			d.Phase = Cancelled
			return page, d
		}
		settle(&p.WrapperBlocks[i].Card, t, grid)
		d.Phase = Committed
		return p, d

	case TargetWrapped:
		i := p.WrappedIndex(d.Target.ID)
		if i < 0 {
			d.Phase = Cancelled
			return page, d
		}
		at := p.WrappedBlocks[i].Position.Add(t)
		if ci := p.ContainerAt(at); ci >= 0 {
			leaf, _ := p.RemoveLeaf(d.Target.ID)
			p.WrapperBlocks[ci].AppendChild(leaf)
			d.Phase = Reparented
			d.Into = p.WrapperBlocks[ci].ID
			return p, d
		}
		settle(&p.WrappedBlocks[i].Card, t, grid)
		d.Phase = Committed
		return p, d

	case TargetChild:
		return releaseChild(page, p, d, grid)
	}
	d.Phase = Cancelled
	return page, d
}

// RowOrigin is the page-space top-left of the child row at index.
func RowOrigin(w domain.WrapperBlock, index int) geometry.Pt {
	return w.Position.Add(geometry.V(0, geometry.ContainerHeaderHeight+float64(index)*geometry.ContainerRowHeight))
}

// releaseChild handles a child row let go at its row origin plus the
// translation. Landing in another container's drop zone moves the row
// there; landing outside the owner's footprint unwraps it to the top level.
func releaseChild(page, p domain.Page, d Drag, grid float64) (domain.Page, Drag) {
	wi := p.WrapperIndex(d.Target.Wrapper)
	if wi < 0 {
		d.Phase = Cancelled
		return page, d
	}
	owner := &p.WrapperBlocks[wi]
	ci := owner.ChildIndex(d.Target.ID)
	if ci < 0 {
		d.Phase = Cancelled
		return page, d
	}
	at := RowOrigin(*owner, ci).Add(d.Translation)
	owner.Children[ci].DragOffset = geometry.Vec{}

	if hit := p.ContainerAt(at); hit >= 0 && hit != wi {
		leaf, _ := owner.RemoveChild(d.Target.ID)
		p.WrapperBlocks[hit].AppendChild(leaf)
		d.Phase = Reparented
		d.Into = p.WrapperBlocks[hit].ID
		return p, d
	}
	if !owner.Footprint().Contains(at) {
		leaf, _ := owner.RemoveChild(d.Target.ID)
		leaf.Position = geometry.SnapToGrid(at, grid)
		p.WrappedBlocks = append(p.WrappedBlocks, leaf)
		d.Phase = Reparented
		d.Into = uuid.Nil
		return p, d
	}
	d.Phase = Committed
	return p, d
}
