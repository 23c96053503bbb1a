/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package importer

import (
	"fmt"
	"strings"

	"funcards/internal/domain"
)

// Format selects how a batch line is split.
// Pipe:  front|back            (group comes from Options)
// Comma: front,back,group      (unknown group becomes other)
type Format string

const (
	FormatPipe  Format = "pipe"
	FormatComma Format = "comma"
)

// ParseFormat accepts the format names case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPipe, "":
		return FormatPipe, nil
	case FormatComma:
		return FormatComma, nil
	}
	return "", &domain.ValidationError{Field: "format", Reason: fmt.Sprintf("unknown format %q (want pipe or comma)", s)}
}

// Kind is the block type a batch creates.
type Kind string

const (
	KindWrapper Kind = "wrapper"
	KindWrapped Kind = "wrapped"
)

// ParseKind accepts "wrapper" and "wrapped" (or "leaf").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "wrapper", "container":
		return KindWrapper, nil
	case "wrapped", "leaf", "":
		return KindWrapped, nil
	}
	return "", &domain.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown block kind %q", s)}
}

// Row is one parsed line.
type Row struct {
	Line     int // 1-based line number in the input
	Text     string
	BackText string
	Group    domain.BlockGroup
}

// RowError reports a line that produced no block.
type RowError struct {
	Line   int
	Reason string
}

func (e RowError) Error() string { return fmt.Sprintf("line %d: %s", e.Line, e.Reason) }
