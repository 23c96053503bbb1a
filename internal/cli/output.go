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
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/gosuri/uitable"

	"funcards/internal/domain"
	"funcards/internal/geometry"
)

var (
	bold       = color.New(color.Bold)
	dim        = color.New(color.Faint)
	errorColor = color.New(color.FgRed, color.Bold)
	okColor    = color.New(color.FgGreen)
)

func errorLabel(s string) string { return errorColor.Sprint(s) }

// groupColors maps the group colour names onto terminal colours.
var groupColors = map[string]color.Attribute{
	"Blue":   color.FgBlue,
	"Green":  color.FgGreen,
	"Red":    color.FgRed,
	"Purple": color.FgMagenta,
	"Orange": color.FgYellow,
}

func groupLabel(g domain.BlockGroup) string {
	attr, ok := groupColors[g.ColorName()]
	if !ok {
		attr = color.FgWhite
	}
	return color.New(attr).Sprint(string(g))
}

func shortID(id uuid.UUID) string { return id.String()[:8] }

func formatPt(p geometry.Pt) string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

func newTable(headers ...string) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 40
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = bold.Sprint(h)
	}
	tbl.AddRow(row...)
	return tbl
}

func printTable(w io.Writer, tbl *uitable.Table) {
	_, _ = fmt.Fprintln(w, tbl)
}

// cardRow renders the columns shared by every block listing.
func cardRow(kind string, c domain.Card, indent int) []interface{} {
	side := "front"
	if c.IsFlipped {
		side = dim.Sprint("back")
	}
	return []interface{}{
		strings.Repeat("  ", indent) + kind,
		shortID(c.ID),
		groupLabel(c.Group),
		c.Color.Hex(),
		formatPt(c.Position),
		side,
		c.Face(),
	}
}
