/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"strings"

	"golang.org/x/text/cases"
)

// Filter selects cards by free text and, optionally, by group.
// An empty Search matches everything; a zero Group matches every group.
type Filter struct {
	Search string
	Group  BlockGroup
}

// Matches reports whether c passes the filter. The search is a case-folded
// substring match against both faces of the card.
func (f Filter) Matches(c Card) bool {
	if f.Group != "" && c.Group != f.Group {
		return false
	}
	q := strings.TrimSpace(f.Search)
	if q == "" {
		return true
	}
	folder := cases.Fold()
	q = folder.String(q)
	return strings.Contains(folder.String(c.Text), q) || strings.Contains(folder.String(c.BackText), q)
}

// FilteredBlocks is the read-only result of filtering a page.
type FilteredBlocks struct {
	Wrappers []WrapperBlock
	Wrapped  []WrappedBlock
}

// Apply filters the page's containers and top-level leaves, keeping page order.
func (f Filter) Apply(p Page) FilteredBlocks {
	var out FilteredBlocks
	for _, w := range p.WrapperBlocks {
		if f.Matches(w.Card) {
			out.Wrappers = append(out.Wrappers, w.Clone())
		}
	}
	for _, b := range p.WrappedBlocks {
		if f.Matches(b.Card) {
			out.Wrapped = append(out.Wrapped, b)
		}
	}
	return out
}
