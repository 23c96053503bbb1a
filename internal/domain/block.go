/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// This file defines the block graph: pages hold free-floating leaf cards
// (WrappedBlock) and container cards (WrapperBlock) that own an ordered list
// of leaves. Ownership is strict: a leaf id appears exactly once per page.

import (
	"github.com/google/uuid"
	colorful "github.com/lucasb-eyer/go-colorful"

	"funcards/internal/geometry"
)

// colorEpsilon bounds per-channel drift tolerated when comparing colours that
// went through a float round trip in storage.
const colorEpsilon = 1e-6

// Card holds the attributes shared by both block kinds.
// Position is the top-left anchor in page-local coordinates; DragOffset is the
// transient delta of an in-progress drag and is zero at rest.
type Card struct {
	ID         uuid.UUID
	Position   geometry.Pt
	DragOffset geometry.Vec
	Text       string
	BackText   string
	Color      colorful.Color
	IsFlipped  bool
	Group      BlockGroup
}

// WrappedBlock is a leaf card.
type WrappedBlock struct {
	Card
}

// WrapperBlock is a container card owning an ordered list of leaves.
type WrapperBlock struct {
	Card
	Children []WrappedBlock
}

func newCard(pos geometry.Pt, text, backText string, group BlockGroup) Card {
	return Card{
		ID:       uuid.New(),
		Position: pos,
		Text:     text,
		BackText: backText,
		Color:    group.Color(),
		Group:    group,
	}
}

// NewWrappedBlock creates a leaf card whose colour is derived from group.
func NewWrappedBlock(pos geometry.Pt, text, backText string, group BlockGroup) WrappedBlock {
	return WrappedBlock{Card: newCard(pos, text, backText, group)}
}

// NewWrapperBlock creates a container card whose colour is derived from group.
func NewWrapperBlock(pos geometry.Pt, text, backText string, group BlockGroup, children ...WrappedBlock) WrapperBlock {
	w := WrapperBlock{Card: newCard(pos, text, backText, group)}
	for _, c := range children {
		w.AppendChild(c)
	}
	return w
}

// Anchor is where the card is drawn right now: position plus drag offset.
func (c Card) Anchor() geometry.Pt { return c.Position.Add(c.DragOffset) }

// Face returns the text currently facing up.
func (c Card) Face() string {
	if c.IsFlipped {
		return c.BackText
	}
	return c.Text
}

// Flip turns the card over.
func (c *Card) Flip() { c.IsFlipped = !c.IsFlipped }

// Equal compares every attribute; colours are compared with a small tolerance.
func (c Card) Equal(o Card) bool {
	return c.ID == o.ID &&
		c.Position == o.Position &&
		c.DragOffset == o.DragOffset &&
		c.Text == o.Text &&
		c.BackText == o.BackText &&
		c.IsFlipped == o.IsFlipped &&
		c.Group == o.Group &&
		colorsEqual(c.Color, o.Color)
}

func colorsEqual(a, b colorful.Color) bool {
	d := func(x, y float64) bool {
		if x > y {
			return x-y <= colorEpsilon
		}
		return y-x <= colorEpsilon
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B)
}

// Equal compares two leaves structurally.
func (b WrappedBlock) Equal(o WrappedBlock) bool { return b.Card.Equal(o.Card) }

// Equal compares two containers structurally, children included and in order.
func (w WrapperBlock) Equal(o WrapperBlock) bool {
	if !w.Card.Equal(o.Card) || len(w.Children) != len(o.Children) {
		return false
	}
	for i := range w.Children {
		if !w.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Height is derived from the number of children; it is never stored.
func (w WrapperBlock) Height() float64 { return geometry.ContainerHeight(len(w.Children)) }

// Footprint is the full rectangle of the container at its resting position.
func (w WrapperBlock) Footprint() geometry.Rect {
	return geometry.ContainerRect(w.Position, len(w.Children))
}

// DropZone is the inset rectangle used for containment hit-testing.
func (w WrapperBlock) DropZone() geometry.Rect {
	return geometry.DropZoneRect(w.Position, len(w.Children))
}

// AppendChild takes ownership of b. Children are laid out in rows, so the
// child's own position and drag offset are reset.
func (w *WrapperBlock) AppendChild(b WrappedBlock) {
	b.Position = geometry.Pt{}
	b.DragOffset = geometry.Vec{}
	w.Children = append(w.Children, b)
}

// ChildIndex returns the row index of id, or -1.
func (w WrapperBlock) ChildIndex(id uuid.UUID) int {
	for i := range w.Children {
		if w.Children[i].ID == id {
			return i
		}
	}
	return -1
}

// RemoveChild releases ownership of the child with the given id.
func (w *WrapperBlock) RemoveChild(id uuid.UUID) (WrappedBlock, bool) {
	i := w.ChildIndex(id)
	if i < 0 {
		return WrappedBlock{}, false
	}
	b := w.Children[i]
	w.Children = append(w.Children[:i:i], w.Children[i+1:]...)
	return b, true
}

// Direction moves a row up or down inside its container.
type Direction int

const (
	Up Direction = iota
	Down
)

// MoveChild swaps the row at index with its neighbour in dir. The target index
// is clamped to the row range; moving past either end is a no-op.
// It reports whether the order changed.
func (w *WrapperBlock) MoveChild(index int, dir Direction) bool {
	n := len(w.Children)
	if index < 0 || index >= n {
		return false
	}
	target := index
	switch dir {
	case Up:
		target = max(0, index-1)
	case Down:
		target = min(n-1, index+1)
	}
	if target == index {
		return false
	}
	w.Children[index], w.Children[target] = w.Children[target], w.Children[index]
	return true
}

// Clone returns a deep copy.
func (w WrapperBlock) Clone() WrapperBlock {
	c := w
	c.Children = append([]WrappedBlock(nil), w.Children...)
	return c
}

// BlockUpdate is a partial edit of a card's user-editable fields.
// Nil fields are left untouched. Changing the group also resets the colour.
type BlockUpdate struct {
	Text     *string
	BackText *string
	Group    *BlockGroup
	Position *geometry.Pt
}

// Apply patches c with u.
func (c *Card) Apply(u BlockUpdate) {
	if u.Text != nil {
		c.Text = *u.Text
	}
	if u.BackText != nil {
		c.BackText = *u.BackText
	}
	if u.Group != nil {
		c.Group = *u.Group
		c.Color = u.Group.Color()
	}
	if u.Position != nil {
		c.Position = *u.Position
	}
}
