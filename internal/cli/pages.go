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
)

func (a *App) pagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "pages",
		Aliases: []string{"page"},
		Short:   "List and manage pages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pages",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			tbl := newTable("ID", "NAME", "CONTAINERS", "LEAVES")
			for _, p := range a.store.Pages() {
				tbl.AddRow(shortID(p.ID), p.Name, len(p.WrapperBlocks), p.LeafCount())
			}
			printTable(cmd.OutOrStdout(), tbl)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add NAME",
		Short: "Add an empty page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.store.AddPage(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s page %q (%s)\n", okColor.Sprint("Added"), p.Name, shortID(p.ID))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename PAGE NAME",
		Short: "Rename a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.lookupPage(args[0])
			if err != nil {
				return err
			}
			if err := a.store.RenamePage(cmd.Context(), p.ID, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q\n", p.Name, args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "delete PAGE",
		Aliases: []string{"rm"},
		Short:   "Delete a page and all its blocks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			p, err := a.lookupPage(args[0])
			if err != nil {
				return err
			}
			if err := a.store.DeletePage(cmd.Context(), p.ID); err != nil {
				return err
			}
			a.engine.Forget(p.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted page %q\n", p.Name)
			return nil
		},
	})
	return cmd
}
