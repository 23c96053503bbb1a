/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli is the funcards command line. Every command runs against the
// configured storage backend; a panic inside a command is turned into a
// crash report by the caller (see cmd/funcards).
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"funcards/internal/canvas"
	"funcards/internal/config"
	"funcards/internal/domain"
	applog "funcards/internal/log"
	"funcards/internal/storage"
	"funcards/internal/store"
	"funcards/internal/telemetry"
	"funcards/internal/version"
)

// App carries the state shared by all commands of one invocation.
type App struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfg     config.AppConfig
	secret  string
	dataDir string

	kv     storage.KV
	repo   *storage.Repository
	store  *store.Store
	engine *canvas.Engine
	tel    *telemetry.Client

	driver   string
	dataFlag string
	pageRef  string
	verbose  bool
}

// NewApp returns an App reading from in and writing to out and errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{in: in, out: out, errOut: errOut}
}

// DataDir is the resolved storage directory, empty before setup.
func (a *App) DataDir() string { return a.dataDir }

// Pages returns the live pages, nil when no store is open.
func (a *App) Pages() []domain.Page {
	if a.store == nil {
		return nil
	}
	return a.store.Pages()
}

// Execute runs the command line given by args (without the program name).
func (a *App) Execute(ctx context.Context, args []string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)
	err := root.ExecuteContext(ctx)
	if err != nil {
		// cobra skips the post-run hook when a command fails
		_ = a.close(ctx)
	}
	return err
}

func (a *App) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "funcards",
		Short:         "Arrange two-sided cards into nested groups on named pages",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}
	root.SetVersionTemplate("funcards {{.Version}}\n")

	pf := root.PersistentFlags()
	pf.StringVar(&a.driver, "driver", "", "storage driver ("+strings.Join(config.Drivers, ", ")+")")
	pf.StringVar(&a.dataFlag, "data-dir", "", "storage directory")
	pf.StringVarP(&a.pageRef, "page", "p", "", "page name or id (default: first page)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.pagesCmd(),
		a.blocksCmd(),
		a.importCmd(),
		a.dragCmd(),
		a.flipCmd(),
		a.rowCmd(),
		a.resetCmd(),
		a.configCmd(),
		a.versionCmd(),
	)
	return root
}

// setup loads the configuration and initializes logging and telemetry.
// The store is opened lazily by the commands that need it.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, secret, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if a.driver != "" {
		cfg.Storage.Driver = strings.ToLower(strings.TrimSpace(a.driver))
	}
	if a.dataFlag != "" {
		cfg.Storage.DataDir = a.dataFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if secret == "" && cfg.Storage.NeedsSecret() {
		secret = config.Secret()
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	applog.Init(applog.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		AddSource:  cfg.Logging.Source,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Console:    a.errOut,
	})

	tc := telemetry.FromEnv()
	tc.OptIn, tc.EventsURL = cfg.General.TelemetryOptIn, cfg.General.TelemetryURL
	a.tel = telemetry.New(tc)
	telemetry.SetDefault(a.tel)

	dir, err := cfg.Storage.ResolvedDataDir()
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}
	a.cfg, a.secret, a.dataDir = cfg, secret, dir
	applog.WithComponent("cli").Debug("start",
		slog.String("command", cmd.CommandPath()),
		slog.String("driver", cfg.Storage.Driver),
		slog.String("data_dir", dir))
	telemetry.Event(telemetry.EventCommand, map[string]any{"command": cmd.Name()})
	return nil
}

// open connects the backend and loads the pages.
func (a *App) open(ctx context.Context) error {
	if a.store != nil {
		return nil
	}
	kv, err := storage.OpenKV(ctx, a.cfg.Storage, a.secret)
	if err != nil {
		return fmt.Errorf("open %s storage: %w", a.cfg.Storage.Driver, err)
	}
	repo := storage.NewRepository(kv)
	st, err := store.Open(ctx, repo)
	if err != nil {
		_ = kv.Close()
		return err
	}
	if o := repo.LastOutcome(); o != storage.LoadedDocument {
		applog.WithComponent("cli").Info("pages loaded", slog.String("from", o.String()))
	}
	a.kv, a.repo, a.store = kv, repo, st
	a.engine = canvas.NewEngine(st, canvas.Options{GridSize: a.cfg.Canvas.GridSize})
	return nil
}

func (a *App) close(ctx context.Context) error {
	var errs []error
	if a.kv != nil {
		if err := a.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
		a.kv, a.repo, a.store, a.engine = nil, nil, nil, nil
	}
	if a.tel != nil {
		fctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		a.tel.Flush(fctx)
		cancel()
	}
	if err := applog.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Main runs the command line of the current process and returns its exit
// code. Errors are printed to errOut.
func (a *App) Main(ctx context.Context) int {
	if err := a.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(a.errOut, errorLabel("Error:"), err)
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return 2
		}
		return 1
	}
	return 0
}
