/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"funcards/internal/domain"
	"funcards/internal/geometry"
	"funcards/internal/store"
)

type nopPersister struct{}

func (nopPersister) Save(context.Context, []domain.Page) error { return nil }

func newStore(t *testing.T) (*store.Store, uuid.UUID) {
	t.Helper()
	p := domain.NewPage("import")
	return store.New([]domain.Page{p}, nopPersister{}), p.ID
}

func TestParsePipe(t *testing.T) {
	input := "a|1\n\n  b | 2  \nno delimiter\n|empty front\nc|3|extra"
	rows, errs := Parse(input, FormatPipe, domain.GroupButton)
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3: %+v", len(rows), rows)
	}
	if rows[1].Text != "b" || rows[1].BackText != "2" || rows[1].Line != 3 {
		t.Fatalf("unexpected trimmed row: %+v", rows[1])
	}
	for _, r := range rows {
		if r.Group != domain.GroupButton {
			t.Fatalf("pipe rows take the options group, got %s", r.Group)
		}
	}
	if len(errs) != 2 || errs[0].Line != 4 || errs[1].Line != 5 {
		t.Fatalf("unexpected errors: %+v", errs)
	}
}

func TestParseComma(t *testing.T) {
	input := "f,b,button\ng,h,関数\ni,j,sparkle\nonly,two"
	rows, errs := Parse(input, FormatComma, domain.GroupFunction)
	if len(rows) != 3 || len(errs) != 1 {
		t.Fatalf("rows=%d errs=%d", len(rows), len(errs))
	}
	want := []domain.BlockGroup{domain.GroupButton, domain.GroupFunction, domain.GroupOther}
	for i, g := range want {
		if rows[i].Group != g {
			t.Errorf("row %d group %s, want %s", i, rows[i].Group, g)
		}
	}
}

// three pipe rows, the second without a delimiter
func TestRunSpacesCreatedBlocks(t *testing.T) {
	s, pid := newStore(t)
	opt := Options{Format: FormatPipe, Kind: KindWrapped, Group: domain.GroupStack, OriginX: "100", OriginY: "50", Stride: "200"}
	res, err := Run(context.Background(), s, pid, "one|1\ntwo\nthree|3", opt)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Created) != 2 || len(res.Errors) != 1 || res.Errors[0].Line != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	p, _ := s.Page(pid)
	if len(p.WrappedBlocks) != 2 {
		t.Fatalf("page has %d leaves", len(p.WrappedBlocks))
	}
	if p.WrappedBlocks[0].Position != geometry.P(100, 50) || p.WrappedBlocks[1].Position != geometry.P(300, 50) {
		t.Fatalf("positions %v %v", p.WrappedBlocks[0].Position, p.WrappedBlocks[1].Position)
	}
	if p.WrappedBlocks[1].Text != "three" || p.WrappedBlocks[1].Group != domain.GroupStack {
		t.Fatalf("unexpected block %+v", p.WrappedBlocks[1].Card)
	}
}

func TestRunCreatesWrappers(t *testing.T) {
	s, pid := newStore(t)
	opt := DefaultOptions()
	opt.Kind = KindWrapper
	opt.Format = FormatComma
	res, err := Run(context.Background(), s, pid, "a,b,component\nc,d,stack", opt)
	if err != nil || len(res.Created) != 2 {
		t.Fatalf("Run: %+v %v", res, err)
	}
	p, _ := s.Page(pid)
	if len(p.WrapperBlocks) != 2 || p.WrapperBlocks[1].Position != geometry.P(300, 100) {
		t.Fatalf("unexpected wrappers %+v", p.WrapperBlocks)
	}
}

func TestRunValidatesOptions(t *testing.T) {
	s, pid := newStore(t)
	cases := []struct {
		name  string
		input string
		mod   func(*Options)
		field string
	}{
		{"empty input", "  \n ", func(*Options) {}, "input"},
		{"bad origin", "a|b", func(o *Options) { o.OriginX = "left" }, "x"},
		{"bad stride", "a|b", func(o *Options) { o.Stride = "wide" }, "stride"},
		{"bad group", "a|b", func(o *Options) { o.Group = "nope" }, "group"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opt := DefaultOptions()
			tc.mod(&opt)
			_, err := Run(context.Background(), s, pid, tc.input, opt)
			var ve *domain.ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("err = %v, want validation error on %s", err, tc.field)
			}
		})
	}
	p, _ := s.Page(pid)
	if p.LeafCount() != 0 {
		t.Fatalf("invalid options must not create blocks")
	}
}

func TestRunUnknownPage(t *testing.T) {
	s, _ := newStore(t)
	_, err := Run(context.Background(), s, uuid.New(), "a|b", DefaultOptions())
	if !errors.Is(err, ErrUnknownPage) {
		t.Fatalf("err = %v, want ErrUnknownPage", err)
	}
}

func TestParseFormatAndKind(t *testing.T) {
	if f, err := ParseFormat(" COMMA "); err != nil || f != FormatComma {
		t.Fatalf("ParseFormat = %q, %v", f, err)
	}
	if _, err := ParseFormat("tsv"); err == nil {
		t.Fatalf("unknown format accepted")
	}
	if k, err := ParseKind("container"); err != nil || k != KindWrapper {
		t.Fatalf("ParseKind = %q, %v", k, err)
	}
	if _, err := ParseKind("blob"); err == nil {
		t.Fatalf("unknown kind accepted")
	}
}
