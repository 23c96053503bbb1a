/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	colorful "github.com/lucasb-eyer/go-colorful"

	"funcards/internal/domain"
	"funcards/internal/geometry"
)

// DocumentVersion is written into every saved document. Version 1 is the
// bare page array.
const DocumentVersion = 2

// Document is the persisted form of the whole page list.
type Document struct {
	Version int          `json:"version"`
	Pages   []PageRecord `json:"pages"`
}

type PageRecord struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	WrapperBlocks []WrapperRecord `json:"wrapperBlocks"`
	WrappedBlocks []BlockRecord   `json:"wrappedBlocks"`
}

type PositionRecord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BlockRecord stores colour as explicit RGB so it survives group table
// changes. Offset is accepted from older writers in either the {x,y} or the
// {width,height} shape and ignored.
type BlockRecord struct {
	ID         string          `json:"id"`
	Position   PositionRecord  `json:"position"`
	Offset     json.RawMessage `json:"offset,omitempty"`
	Text       string          `json:"text"`
	BackText   string          `json:"backText"`
	IsFlipped  bool            `json:"isFlipped"`
	Group      string          `json:"group"`
	ColorRed   *float64        `json:"colorRed,omitempty"`
	ColorGreen *float64        `json:"colorGreen,omitempty"`
	ColorBlue  *float64        `json:"colorBlue,omitempty"`
}

type WrapperRecord struct {
	BlockRecord
	WrappedBlocks []BlockRecord `json:"wrappedBlocks"`
}

func f64(v float64) *float64 { return &v }

func encodeCard(c domain.Card) BlockRecord {
	return BlockRecord{
		ID:         c.ID.String(),
		Position:   PositionRecord{X: c.Position.X, Y: c.Position.Y},
		Text:       c.Text,
		BackText:   c.BackText,
		IsFlipped:  c.IsFlipped,
		Group:      string(c.Group),
		ColorRed:   f64(c.Color.R),
		ColorGreen: f64(c.Color.G),
		ColorBlue:  f64(c.Color.B),
	}
}

func encodePage(p domain.Page) PageRecord {
	r := PageRecord{
		ID:            p.ID.String(),
		Name:          p.Name,
		WrapperBlocks: make([]WrapperRecord, 0, len(p.WrapperBlocks)),
		WrappedBlocks: make([]BlockRecord, 0, len(p.WrappedBlocks)),
	}
	for _, w := range p.WrapperBlocks {
		wr := WrapperRecord{BlockRecord: encodeCard(w.Card), WrappedBlocks: make([]BlockRecord, 0, len(w.Children))}
		for _, c := range w.Children {
			wr.WrappedBlocks = append(wr.WrappedBlocks, encodeCard(c.Card))
		}
		r.WrapperBlocks = append(r.WrapperBlocks, wr)
	}
	for _, b := range p.WrappedBlocks {
		r.WrappedBlocks = append(r.WrappedBlocks, encodeCard(b.Card))
	}
	return r
}

// EncodeDocument renders pages as an indented version-2 document.
func EncodeDocument(pages []domain.Page) ([]byte, error) {
	doc := Document{Version: DocumentVersion, Pages: make([]PageRecord, 0, len(pages))}
	for _, p := range pages {
		doc.Pages = append(doc.Pages, encodePage(p))
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(b, '\n'), nil
}

// decoder turns records into domain values. It assigns fresh ids to blocks
// whose id is missing or already taken so a decoded page never holds the
// same block twice.
type decoder struct {
	seen map[uuid.UUID]struct{}
	log  *slog.Logger
}

func newDecoder(l *slog.Logger) *decoder {
	return &decoder{seen: map[uuid.UUID]struct{}{}, log: l}
}

func (d *decoder) id(s string) (uuid.UUID, error) {
	if s == "" {
		return d.claim(uuid.New()), nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	if _, dup := d.seen[id]; dup {
		fresh := uuid.New()
		d.log.Warn("duplicate block id replaced", slog.String("id", s), slog.String("new", fresh.String()))
		return d.claim(fresh), nil
	}
	return d.claim(id), nil
}

func (d *decoder) claim(id uuid.UUID) uuid.UUID {
	d.seen[id] = struct{}{}
	return id
}

func (d *decoder) card(r BlockRecord) (domain.Card, error) {
	id, err := d.id(r.ID)
	if err != nil {
		return domain.Card{}, err
	}
	g, ok := domain.ParseGroup(r.Group)
	if !ok {
		d.log.Warn("unknown group, using other", slog.String("group", r.Group), slog.String("id", r.ID))
		g = domain.GroupOther
	}
	c := domain.Card{
		ID:        id,
		Position:  geometry.P(r.Position.X, r.Position.Y),
		Text:      r.Text,
		BackText:  r.BackText,
		IsFlipped: r.IsFlipped,
		Group:     g,
		Color:     g.Color(),
	}
	if r.ColorRed != nil && r.ColorGreen != nil && r.ColorBlue != nil {
		c.Color = colorful.Color{R: *r.ColorRed, G: *r.ColorGreen, B: *r.ColorBlue}
	}
	return c, nil
}

func (d *decoder) leaves(rs []BlockRecord) ([]domain.WrappedBlock, error) {
	out := make([]domain.WrappedBlock, 0, len(rs))
	for _, r := range rs {
		c, err := d.card(r)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.WrappedBlock{Card: c})
	}
	return out, nil
}

func (d *decoder) wrappers(rs []WrapperRecord) ([]domain.WrapperBlock, error) {
	out := make([]domain.WrapperBlock, 0, len(rs))
	for _, r := range rs {
		c, err := d.card(r.BlockRecord)
		if err != nil {
			return nil, err
		}
		w := domain.WrapperBlock{Card: c}
		children, err := d.leaves(r.WrappedBlocks)
		if err != nil {
			return nil, err
		}
		for _, ch := range children {
			w.AppendChild(ch)
		}
		out = append(out, w)
	}
	return out, nil
}

func (d *decoder) page(r PageRecord) (domain.Page, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		if r.ID != "" {
			return domain.Page{}, fmt.Errorf("invalid page id %q: %w", r.ID, err)
		}
		id = uuid.New()
	}
	p := domain.Page{ID: id, Name: r.Name}
	if p.WrapperBlocks, err = d.wrappers(r.WrapperBlocks); err != nil {
		return domain.Page{}, fmt.Errorf("page %q: %w", r.Name, err)
	}
	if p.WrappedBlocks, err = d.leaves(r.WrappedBlocks); err != nil {
		return domain.Page{}, fmt.Errorf("page %q: %w", r.Name, err)
	}
	return p, nil
}

// DecodeDocument parses a stored document. It accepts the versioned object
// and the bare page array written by version 1. The raw bytes are checked
// against the embedded JSON schema first.
func DecodeDocument(raw []byte, l *slog.Logger) ([]domain.Page, int, error) {
	if err := ValidateDocument(raw); err != nil {
		return nil, 0, err
	}
	var records []PageRecord
	ver := 1
	trimmed := firstByte(raw)
	switch trimmed {
	case '[':
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, 0, fmt.Errorf("decode page array: %w", err)
		}
	case '{':
		var doc Document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, 0, fmt.Errorf("decode document: %w", err)
		}
		records, ver = doc.Pages, doc.Version
	default:
		return nil, 0, fmt.Errorf("decode document: unexpected leading byte %q", trimmed)
	}
	if ver > DocumentVersion {
		l.Warn("document written by a newer version", slog.Int("version", ver))
	}
	d := newDecoder(l)
	pages := make([]domain.Page, 0, len(records))
	for _, r := range records {
		p, err := d.page(r)
		if err != nil {
			return nil, 0, err
		}
		pages = append(pages, p)
	}
	return pages, ver, nil
}

func firstByte(b []byte) byte {
	for _, c := range b {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}

// decodeLegacyWrappers reads one of the old wrapper arrays.
func decodeLegacyWrappers(d *decoder, raw []byte) ([]domain.WrapperBlock, error) {
	var rs []WrapperRecord
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, err
	}
	return d.wrappers(rs)
}

// decodeLegacyLeaves reads one of the old leaf arrays.
func decodeLegacyLeaves(d *decoder, raw []byte) ([]domain.WrappedBlock, error) {
	var rs []BlockRecord
	if err := json.Unmarshal(raw, &rs); err != nil {
		return nil, err
	}
	return d.leaves(rs)
}
