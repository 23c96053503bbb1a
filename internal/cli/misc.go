/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"funcards/internal/config"
	"funcards/internal/storage"
	"funcards/internal/telemetry"
	"funcards/internal/version"
)

func (a *App) resetCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every page and install the starter pages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("reset deletes all pages; pass --yes to confirm")
			}
			if err := a.open(cmd.Context()); err != nil {
				return err
			}
			for _, p := range a.store.Pages() {
				a.engine.Forget(p.ID)
			}
			if err := a.store.Reset(cmd.Context()); err != nil {
				return err
			}
			telemetry.Event(telemetry.EventResetPages, nil)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d starter page(s) installed\n", okColor.Sprint("Reset:"), len(a.store.Pages()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all pages")
	return cmd
}

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or write the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.ConfigPath()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s\n# data dir: %s\n", path, a.dataDir)
			_, err = out.Write(data)
			return err
		},
	})

	var secretStdin bool
	write := &cobra.Command{
		Use:   "write",
		Short: "Save the effective configuration (flags and environment included)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			secret := ""
			if secretStdin {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read secret: %w", err)
				}
				secret = strings.TrimSpace(line)
			}
			if err := config.Save(a.cfg, secret); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			path, _ := config.ConfigPath()
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	write.Flags().BoolVar(&secretStdin, "secret-stdin", false, "read the redis/postgres password from stdin into the OS keyring")
	cmd.AddCommand(write)
	return cmd
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "funcards %s\ndocument format: v%d\n", version.String(), storage.DocumentVersion)
		},
	}
}
