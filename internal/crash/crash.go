/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a report file and an emergency copy of
// the in-memory pages.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"funcards/internal/domain"
	applog "funcards/internal/log"
	"funcards/internal/storage"
	"funcards/internal/telemetry"
	"funcards/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Source describes the running application to Recover. It is read only
// after a panic, so a value filled in after the defer statement works.
type Source interface {
	// DataDir is where reports go (below backups/); empty means the OS
	// temp directory.
	DataDir() string
	// Pages returns the live pages or nil when nothing is loaded yet.
	Pages() []domain.Page
}

// Recover captures a panic, logs it with its stack, writes a report and
// autosaves the pages held by src (if any).
//
// Usage: defer crash.Recover(app)
func Recover(src Source) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		var (
			dir   string
			pages []domain.Page
		)
		if src != nil {
			dir, pages = src.DataDir(), src.Pages()
		}
		reportPath, err := writeReport(dir, pages, r, stack)
		if err != nil {
			l.Error("crash report incomplete", slog.Any("err", err), slog.String("path", reportPath))
		}
		if pages != nil {
			if path, err := storage.AutosaveCrashSnapshot(reportDir(dir), pages); err != nil {
				l.Error("autosave crash snapshot failed", slog.Any("err", err))
			} else {
				l.Info("autosave crash snapshot written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

func reportDir(dir string) string {
	if dir == "" {
		return os.TempDir()
	}
	return filepath.Join(dir, storage.BackupsDirName)
}

func writeReport(dir string, pages []domain.Page, panicVal any, stack []byte) (string, error) {
	out := reportDir(dir)
	_ = os.MkdirAll(out, 0o755)
	path := filepath.Join(out, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "funcards crash report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if dir != "" {
		_, _ = fmt.Fprintf(&buf, "DataDir: %s\n", dir)
	}
	if pages != nil {
		leaves := 0
		for _, p := range pages {
			leaves += p.LeafCount()
		}
		// counts only; block text stays out of reports that may be uploaded
		_, _ = fmt.Fprintf(&buf, "Pages: %d\nLeafBlocks: %d\n", len(pages), leaves)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()

	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
