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
	"math"
	"strconv"
	"strings"

	"funcards/internal/geometry"
)

// ValidationError reports invalid user input with a human-readable reason.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RequireText trims s and fails when nothing is left.
func RequireText(field, s string) (string, error) {
	t := strings.TrimSpace(s)
	if t == "" {
		return "", invalid(field, "text is required")
	}
	return t, nil
}

// ParseCoordinate parses a single numeric coordinate typed by the user.
func ParseCoordinate(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, invalid(field, "%q is not a number", s)
	}
	return v, nil
}

// ParsePoint parses an x/y pair typed by the user.
func ParsePoint(xs, ys string) (geometry.Pt, error) {
	x, err := ParseCoordinate("x", xs)
	if err != nil {
		return geometry.Pt{}, err
	}
	y, err := ParseCoordinate("y", ys)
	if err != nil {
		return geometry.Pt{}, err
	}
	return geometry.Pt{X: x, Y: y}, nil
}

// BlockInput is what the add form collects for a new card.
type BlockInput struct {
	Text     string
	BackText string
	Group    BlockGroup
	X, Y     string
}

// Validate trims and checks the input, returning the parsed position.
func (in BlockInput) Validate() (BlockInput, geometry.Pt, error) {
	front, err := RequireText("front text", in.Text)
	if err != nil {
		return in, geometry.Pt{}, err
	}
	back, err := RequireText("back text", in.BackText)
	if err != nil {
		return in, geometry.Pt{}, err
	}
	if !in.Group.Valid() {
		return in, geometry.Pt{}, invalid("group", "unknown group %q", string(in.Group))
	}
	pos, err := ParsePoint(in.X, in.Y)
	if err != nil {
		return in, geometry.Pt{}, err
	}
	in.Text, in.BackText = front, back
	return in, pos, nil
}
