/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"funcards/internal/domain"
	applog "funcards/internal/log"
	"funcards/internal/telemetry"
)

// DocumentKey holds the unified page document.
const DocumentKey = "pages"

// Keys of the legacy layout: two fixed pages, each split into a container
// array and a free leaf array.
const (
	LegacyMechanismBlocks    = "mechanismBlocks"
	LegacyAppearanceBlocks   = "appearanceBlocks"
	LegacyMechanismContents  = "mechanismContents"
	LegacyAppearanceContents = "appearanceContents"
)

// LegacyKeys lists every key of the legacy layout.
var LegacyKeys = []string{LegacyMechanismBlocks, LegacyAppearanceBlocks, LegacyMechanismContents, LegacyAppearanceContents}

// LoadOutcome says where Load found its pages.
type LoadOutcome int

const (
	LoadedDocument LoadOutcome = iota
	LoadedLegacy
	LoadedDefaults
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadedDocument:
		return "document"
	case LoadedLegacy:
		return "legacy"
	default:
		return "defaults"
	}
}

// Repository reads and writes the page list through a KV backend.
type Repository struct {
	kv   KV
	log  *slog.Logger
	last LoadOutcome
}

func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv, log: applog.WithComponent("storage")}
}

// KV exposes the backend, e.g. for closing it.
func (r *Repository) KV() KV { return r.kv }

// LastOutcome reports how the most recent Load obtained its pages.
func (r *Repository) LastOutcome() LoadOutcome { return r.last }

// Save replaces the stored document with pages.
func (r *Repository) Save(ctx context.Context, pages []domain.Page) error {
	raw, err := EncodeDocument(pages)
	if err != nil {
		return err
	}
	if err := r.kv.Set(ctx, DocumentKey, raw); err != nil {
		return fmt.Errorf("write %s: %w", DocumentKey, err)
	}
	r.log.Debug("document saved", slog.Int("pages", len(pages)), slog.Int("bytes", len(raw)))
	return nil
}

// Load returns the stored pages. It tries the unified document, then the
// legacy layout (which it converts and removes), then installs the starter
// dataset. Undecodable data never fails the load; backend errors do.
func (r *Repository) Load(ctx context.Context) ([]domain.Page, error) {
	l := applog.WithOperation(r.log, "load")
	raw, err := r.kv.Get(ctx, DocumentKey)
	switch {
	case err == nil:
		pages, ver, derr := DecodeDocument(raw, l)
		if derr != nil {
			l.Warn("stored document unreadable, trying legacy layout", slog.Any("err", derr))
			break
		}
		if len(pages) == 0 {
			l.Info("stored document has no pages")
			break
		}
		if err := r.dropLegacy(ctx); err != nil {
			l.Warn("legacy cleanup failed", slog.Any("err", err))
		}
		if ver < DocumentVersion {
			if err := r.Save(ctx, pages); err != nil {
				return nil, err
			}
			l.Info("document upgraded", slog.Int("from", ver), slog.Int("to", DocumentVersion))
			telemetry.Event(telemetry.EventMigration, map[string]any{"from": ver, "to": DocumentVersion})
		}
		r.last = LoadedDocument
		return pages, nil
	case errors.Is(err, ErrNotFound):
	default:
		return nil, fmt.Errorf("read %s: %w", DocumentKey, err)
	}

	pages, err := r.migrateLegacy(ctx)
	if err != nil {
		return nil, err
	}
	if len(pages) > 0 {
		r.last = LoadedLegacy
		return pages, nil
	}
	return r.installDefaults(ctx)
}

// Reset deletes everything stored and installs the starter dataset.
func (r *Repository) Reset(ctx context.Context) ([]domain.Page, error) {
	if err := r.kv.Delete(ctx, DocumentKey); err != nil {
		return nil, fmt.Errorf("delete %s: %w", DocumentKey, err)
	}
	if err := r.dropLegacy(ctx); err != nil {
		return nil, err
	}
	r.log.Info("all pages reset")
	return r.installDefaults(ctx)
}

func (r *Repository) installDefaults(ctx context.Context) ([]domain.Page, error) {
	pages := domain.DefaultPages()
	if err := r.Save(ctx, pages); err != nil {
		return nil, err
	}
	r.last = LoadedDefaults
	r.log.Info("default pages installed", slog.Int("pages", len(pages)))
	return pages, nil
}

func (r *Repository) dropLegacy(ctx context.Context) error {
	for _, k := range LegacyKeys {
		if err := r.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("delete %s: %w", k, err)
		}
	}
	return nil
}

// legacyRaw returns the stored bytes of key or nil when absent.
func (r *Repository) legacyRaw(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return raw, true, nil
}

// migrateLegacy converts the four legacy collections into pages, saves them
// as the unified document and deletes the legacy keys. A page is only
// synthesized when its collections hold at least one block.
func (r *Repository) migrateLegacy(ctx context.Context) ([]domain.Page, error) {
	l := applog.WithOperation(r.log, "migrate_legacy")
	d := newDecoder(l)
	found := false

	wrappers := func(key string) ([]domain.WrapperBlock, error) {
		raw, ok, err := r.legacyRaw(ctx, key)
		if err != nil || !ok {
			return nil, err
		}
		found = true
		ws, derr := decodeLegacyWrappers(d, raw)
		if derr != nil {
			l.Warn("legacy collection unreadable", slog.String("key", key), slog.Any("err", derr))
			return nil, nil
		}
		return ws, nil
	}
	leaves := func(key string) ([]domain.WrappedBlock, error) {
		raw, ok, err := r.legacyRaw(ctx, key)
		if err != nil || !ok {
			return nil, err
		}
		found = true
		bs, derr := decodeLegacyLeaves(d, raw)
		if derr != nil {
			l.Warn("legacy collection unreadable", slog.String("key", key), slog.Any("err", derr))
			return nil, nil
		}
		return bs, nil
	}

	pairs := []struct {
		name       string
		wrapperKey string
		leafKey    string
	}{
		{domain.MechanismPageName, LegacyMechanismBlocks, LegacyMechanismContents},
		{domain.AppearancePageName, LegacyAppearanceBlocks, LegacyAppearanceContents},
	}
	var pages []domain.Page
	for _, pr := range pairs {
		ws, err := wrappers(pr.wrapperKey)
		if err != nil {
			return nil, err
		}
		bs, err := leaves(pr.leafKey)
		if err != nil {
			return nil, err
		}
		if len(ws) == 0 && len(bs) == 0 {
			continue
		}
		p := domain.NewPage(pr.name)
		p.WrapperBlocks, p.WrappedBlocks = ws, bs
		pages = append(pages, p)
	}
	if !found {
		return nil, nil
	}
	if len(pages) > 0 {
		if err := r.Save(ctx, pages); err != nil {
			return nil, err
		}
	}
	if err := r.dropLegacy(ctx); err != nil {
		return nil, err
	}
	l.Info("legacy layout migrated", slog.Int("pages", len(pages)))
	telemetry.Event(telemetry.EventMigration, map[string]any{"from": "legacy", "pages": len(pages)})
	return pages, nil
}
