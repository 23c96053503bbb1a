/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package importer

import (
	"bufio"
	"strings"

	"funcards/internal/domain"
)

// Parse splits input into rows. Blank lines are skipped. Lines with too few
// fields or an empty front or back text become RowErrors and parsing goes
// on with the next line. group applies to every pipe row.
func Parse(input string, format Format, group domain.BlockGroup) ([]Row, []RowError) {
	var (
		rows []Row
		errs []RowError
	)
	sep, want := "|", 2
	if format == FormatComma {
		sep, want = ",", 3
	}

	scanner := bufio.NewScanner(strings.NewReader(input))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, sep)
		if len(fields) < want {
			if format == FormatComma {
				errs = append(errs, RowError{Line: lineNo, Reason: "expected front,back,group"})
			} else {
				errs = append(errs, RowError{Line: lineNo, Reason: "expected front|back"})
			}
			continue
		}
		r := Row{
			Line:     lineNo,
			Text:     strings.TrimSpace(fields[0]),
			BackText: strings.TrimSpace(fields[1]),
			Group:    group,
		}
		if r.Text == "" || r.BackText == "" {
			errs = append(errs, RowError{Line: lineNo, Reason: "front and back text are required"})
			continue
		}
		if format == FormatComma {
			g, ok := domain.ParseGroup(fields[2])
			if !ok {
				g = domain.GroupOther
			}
			r.Group = g
		}
		rows = append(rows, r)
	}
	if err := scanner.Err(); err != nil {
		errs = append(errs, RowError{Line: lineNo + 1, Reason: err.Error()})
	}
	return rows, errs
}
