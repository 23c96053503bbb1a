/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"funcards/internal/canvas"
	"funcards/internal/domain"
)

// page resolves the --page flag against the open store.
func (a *App) page() (domain.Page, error) {
	ref := strings.TrimSpace(a.pageRef)
	if ref == "" {
		pages := a.store.Pages()
		if len(pages) == 0 {
			return domain.Page{}, fmt.Errorf("no pages; add one with 'funcards pages add'")
		}
		return pages[0], nil
	}
	return a.lookupPage(ref)
}

func (a *App) lookupPage(ref string) (domain.Page, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if p, ok := a.store.Page(id); ok {
			return p, nil
		}
	}
	if p, ok := a.store.PageByName(ref); ok {
		return p, nil
	}
	var hits []domain.Page
	for _, p := range a.store.Pages() {
		if len(ref) >= 4 && strings.HasPrefix(p.ID.String(), strings.ToLower(ref)) {
			hits = append(hits, p)
		}
	}
	if len(hits) == 1 {
		return hits[0], nil
	}
	return domain.Page{}, fmt.Errorf("page %q not found", ref)
}

type located struct {
	target canvas.Target
	card   domain.Card
}

// findBlock resolves a full block id or an unambiguous prefix of at least
// four characters, looking at containers, free leaves and child rows.
func findBlock(p domain.Page, ref string) (located, error) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	var hits []located
	match := func(id uuid.UUID) bool {
		s := id.String()
		return s == ref || (len(ref) >= 4 && strings.HasPrefix(s, ref))
	}
	for _, w := range p.WrapperBlocks {
		if match(w.ID) {
			hits = append(hits, located{canvas.WrapperTarget(w.ID), w.Card})
		}
		for _, c := range w.Children {
			if match(c.ID) {
				hits = append(hits, located{canvas.ChildTarget(w.ID, c.ID), c.Card})
			}
		}
	}
	for _, b := range p.WrappedBlocks {
		if match(b.ID) {
			hits = append(hits, located{canvas.WrappedTarget(b.ID), b.Card})
		}
	}
	switch len(hits) {
	case 0:
		return located{}, fmt.Errorf("block %q not found on page %q", ref, p.Name)
	case 1:
		return hits[0], nil
	}
	return located{}, fmt.Errorf("block id %q is ambiguous (%d matches)", ref, len(hits))
}
