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
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"funcards/internal/domain"
	"funcards/internal/importer"
)

func (a *App) importCmd() *cobra.Command {
	var file, format, kind, group, xs, ys, stride string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Create many blocks from delimited lines",
		Long: `Create one block per line of input.

  pipe format:   front|back          (all blocks get --group)
  comma format:  front,back,group    (unknown groups become other)

Blocks are placed in a row starting at --x/--y, --stride apart. Lines that
cannot be used are reported and skipped.`,
		Example: `
printf 'login|checks the password\nlogout|clears the session\n' | funcards import --group function
funcards import --file cards.csv --format comma --kind wrapper
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opt := importer.Options{OriginX: xs, OriginY: ys, Stride: stride}
			var err error
			if opt.Format, err = importer.ParseFormat(format); err != nil {
				return err
			}
			if opt.Kind, err = importer.ParseKind(kind); err != nil {
				return err
			}
			g, ok := domain.ParseGroup(group)
			if !ok {
				return &domain.ValidationError{Field: "group", Reason: fmt.Sprintf("unknown group %q", group)}
			}
			opt.Group = g
			if !cmd.Flags().Changed("x") {
				opt.OriginX = formatFloat(a.cfg.Import.OriginX)
			}
			if !cmd.Flags().Changed("y") {
				opt.OriginY = formatFloat(a.cfg.Import.OriginY)
			}
			if !cmd.Flags().Changed("stride") {
				opt.Stride = formatFloat(a.cfg.Import.Stride)
			}

			input, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			res, err := importer.Run(cmd.Context(), a.store, p.ID, input, opt)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d %s block(s) on %q\n", okColor.Sprint("Created"), len(res.Created), opt.Kind, p.Name)
			if len(res.Errors) > 0 {
				fmt.Fprintf(out, "%s %d line(s) skipped\n", errorLabel("Skipped"), len(res.Errors))
				tbl := newTable("LINE", "REASON")
				for _, e := range res.Errors {
					tbl.AddRow(e.Line, e.Reason)
				}
				printTable(out, tbl)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&file, "file", "f", "-", "input file, - for stdin")
	f.StringVar(&format, "format", string(importer.FormatPipe), "pipe or comma")
	f.StringVar(&kind, "kind", string(importer.KindWrapped), "wrapper (container) or wrapped (leaf)")
	f.StringVarP(&group, "group", "g", string(domain.GroupFunction), "group for pipe rows")
	f.StringVar(&xs, "x", "", "x of the first block (default from config)")
	f.StringVar(&ys, "y", "", "y of the blocks (default from config)")
	f.StringVar(&stride, "stride", "", "horizontal distance between blocks (default from config)")
	return cmd
}

func readInput(cmd *cobra.Command, file string) (string, error) {
	var (
		b   []byte
		err error
	)
	if file == "" || file == "-" {
		b, err = io.ReadAll(cmd.InOrStdin())
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(b), nil
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
