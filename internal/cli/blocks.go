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

	"github.com/spf13/cobra"

	"funcards/internal/canvas"
	"funcards/internal/domain"
	"funcards/internal/importer"
)

func (a *App) blocksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "blocks",
		Aliases: []string{"block"},
		Short:   "List and edit the blocks of a page",
	}
	cmd.AddCommand(a.blocksListCmd(), a.blocksAddCmd(), a.blocksEditCmd(), a.blocksDeleteCmd())
	return cmd
}

func (a *App) blocksListCmd() *cobra.Command {
	var search, group string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List containers (with their rows) and free leaves",
		Example: `
funcards blocks list --page Mechanism
funcards blocks list --search login --group button
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			f := domain.Filter{Search: search}
			if group != "" {
				g, ok := domain.ParseGroup(group)
				if !ok {
					return &domain.ValidationError{Field: "group", Reason: fmt.Sprintf("unknown group %q", group)}
				}
				f.Group = g
			}
			res := a.store.FilterBlocks(p.ID, f)

			tbl := newTable("KIND", "ID", "GROUP", "COLOR", "POSITION", "SIDE", "TEXT")
			for _, w := range res.Wrappers {
				tbl.AddRow(cardRow("container", w.Card, 0)...)
				for i, c := range w.Children {
					row := cardRow(fmt.Sprintf("row %d", i), c.Card, 1)
					row[4] = formatPt(canvas.RowOrigin(w, i))
					tbl.AddRow(row...)
				}
			}
			for _, b := range res.Wrapped {
				tbl.AddRow(cardRow("leaf", b.Card, 0)...)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", bold.Sprint(p.Name), dim.Sprint(shortID(p.ID)))
			printTable(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive text filter (front or back)")
	cmd.Flags().StringVarP(&group, "group", "g", "", "only blocks of this group")
	return cmd
}

func (a *App) blocksAddCmd() *cobra.Command {
	var (
		in   domain.BlockInput
		kind string
		grp  string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a container or a free leaf",
		Example: `
funcards blocks add --kind wrapper --text Login --back "handles auth" --group function --x 120 --y 90
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := importer.ParseKind(kind)
			if err != nil {
				return err
			}
			g, ok := domain.ParseGroup(grp)
			if !ok {
				return &domain.ValidationError{Field: "group", Reason: fmt.Sprintf("unknown group %q", grp)}
			}
			in.Group = g
			valid, pos, err := in.Validate()
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
			var card domain.Card
			if k == importer.KindWrapper {
				b, _, err := a.store.CreateWrapperBlock(cmd.Context(), p.ID, pos, valid.Text, valid.BackText, valid.Group)
				if err != nil {
					return err
				}
				card = b.Card
			} else {
				b, _, err := a.store.CreateWrappedBlock(cmd.Context(), p.ID, pos, valid.Text, valid.BackText, valid.Group)
				if err != nil {
					return err
				}
				card = b.Card
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s at %s\n", okColor.Sprint("Added"), k, shortID(card.ID), formatPt(card.Position))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&kind, "kind", "wrapped", "wrapper (container) or wrapped (leaf)")
	f.StringVar(&in.Text, "text", "", "front text")
	f.StringVar(&in.BackText, "back", "", "back text")
	f.StringVarP(&grp, "group", "g", string(domain.GroupFunction), "group: function, component, button, stack or other")
	f.StringVar(&in.X, "x", "100", "x position")
	f.StringVar(&in.Y, "y", "100", "y position")
	return cmd
}

func (a *App) blocksEditCmd() *cobra.Command {
	var text, back, grp, xs, ys string
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the text, group or position of a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var u domain.BlockUpdate
			fl := cmd.Flags()
			if fl.Changed("text") {
				v, err := domain.RequireText("front text", text)
				if err != nil {
					return err
				}
				u.Text = &v
			}
			if fl.Changed("back") {
				v, err := domain.RequireText("back text", back)
				if err != nil {
					return err
				}
				u.BackText = &v
			}
			if fl.Changed("group") {
				g, ok := domain.ParseGroup(grp)
				if !ok {
					return &domain.ValidationError{Field: "group", Reason: fmt.Sprintf("unknown group %q", grp)}
				}
				u.Group = &g
			}
			if fl.Changed("x") || fl.Changed("y") {
				if !fl.Changed("x") || !fl.Changed("y") {
					return &domain.ValidationError{Field: "position", Reason: "give both --x and --y"}
				}
				pos, err := domain.ParsePoint(xs, ys)
				if err != nil {
					return err
				}
				u.Position = &pos
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			loc, err := findBlock(p, args[0])
			if err != nil {
				return err
			}
			if loc.target.Kind == canvas.TargetChild && u.Position != nil {
				return &domain.ValidationError{Field: "position", Reason: "child rows are placed by their container; drag the row out to move it"}
			}
			if err := a.store.UpdateBlock(cmd.Context(), p.ID, loc.card.ID, u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", shortID(loc.card.ID))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&text, "text", "", "new front text")
	f.StringVar(&back, "back", "", "new back text")
	f.StringVarP(&grp, "group", "g", "", "new group (resets the colour)")
	f.StringVar(&xs, "x", "", "new x position")
	f.StringVar(&ys, "y", "", "new y position")
	return cmd
}

func (a *App) blocksDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a block; deleting a container deletes its rows",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.page()
			if err != nil {
				return err
			}
			loc, err := findBlock(p, args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeleteBlock(cmd.Context(), p.ID, loc.card.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", shortID(loc.card.ID))
			return nil
		},
	}
}
