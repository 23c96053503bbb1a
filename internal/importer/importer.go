/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package importer creates many blocks at once from delimited text, one
// block per line, laid out in a horizontal row.
package importer

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"funcards/internal/domain"
	"funcards/internal/geometry"
	applog "funcards/internal/log"
	"funcards/internal/telemetry"
)

// ErrUnknownPage is returned when the target page no longer exists.
var ErrUnknownPage = errors.New("importer: page not found")

// Creator is the part of the store the importer needs.
type Creator interface {
	CreateWrapperBlock(ctx context.Context, pageID uuid.UUID, pos geometry.Pt, text, backText string, group domain.BlockGroup) (domain.WrapperBlock, bool, error)
	CreateWrappedBlock(ctx context.Context, pageID uuid.UUID, pos geometry.Pt, text, backText string, group domain.BlockGroup) (domain.WrappedBlock, bool, error)
}

// Options are the raw form values of a batch. Coordinates stay strings so
// a bad value is reported like any other user input.
type Options struct {
	Format  Format
	Kind    Kind
	Group   domain.BlockGroup // pipe format only; empty means function
	OriginX string
	OriginY string
	Stride  string
}

// DefaultOptions mirrors the empty add form.
func DefaultOptions() Options {
	return Options{Format: FormatPipe, Kind: KindWrapped, Group: domain.GroupFunction, OriginX: "100", OriginY: "100", Stride: "200"}
}

type Result struct {
	Created []uuid.UUID
	Errors  []RowError
}

// Run parses input and creates one block per valid row on pageID. The k-th
// created block sits at origin + (k*stride, 0). Invalid options or input
// without any content fail with *domain.ValidationError before anything is
// created; bad rows are collected in Result.Errors.
func Run(ctx context.Context, c Creator, pageID uuid.UUID, input string, opt Options) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("importer"), "run")
	var res Result

	if strings.TrimSpace(input) == "" {
		return res, &domain.ValidationError{Field: "input", Reason: "no block data given"}
	}
	origin, err := domain.ParsePoint(opt.OriginX, opt.OriginY)
	if err != nil {
		return res, err
	}
	stride, err := domain.ParseCoordinate("stride", opt.Stride)
	if err != nil {
		return res, err
	}
	group := opt.Group
	if group == "" {
		group = domain.GroupFunction
	}
	if !group.Valid() {
		return res, &domain.ValidationError{Field: "group", Reason: "unknown group " + string(group)}
	}
	kind := opt.Kind
	if kind == "" {
		kind = KindWrapped
	}
	if opt.Format == "" {
		opt.Format = FormatPipe
	}

	rows, rowErrs := Parse(input, opt.Format, group)
	res.Errors = rowErrs
	for k, r := range rows {
		pos := origin.Add(geometry.V(float64(k)*stride, 0))
		var (
			id uuid.UUID
			ok bool
		)
		if kind == KindWrapper {
			var b domain.WrapperBlock
			b, ok, err = c.CreateWrapperBlock(ctx, pageID, pos, r.Text, r.BackText, r.Group)
			id = b.ID
		} else {
			var b domain.WrappedBlock
			b, ok, err = c.CreateWrappedBlock(ctx, pageID, pos, r.Text, r.BackText, r.Group)
			id = b.ID
		}
		if err != nil {
			return res, err
		}
		if !ok {
			return res, ErrUnknownPage
		}
		res.Created = append(res.Created, id)
	}

	l.Info("batch imported",
		slog.String("page", pageID.String()),
		slog.String("kind", string(kind)),
		slog.Int("created", len(res.Created)),
		slog.Int("errors", len(res.Errors)))
	for _, e := range res.Errors {
		l.Debug("row skipped", slog.Int("line", e.Line), slog.String("reason", e.Reason))
	}
	telemetry.Event(telemetry.EventImport, map[string]any{
		"format":  string(opt.Format),
		"kind":    string(kind),
		"created": len(res.Created),
		"errors":  len(res.Errors),
	})
	return res, nil
}
