/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFromEnvAndGetenv(t *testing.T) {
	t.Setenv("FCA_LOG_LEVEL", "warn")
	t.Setenv("FCA_LOG_FORMAT", "json")
	t.Setenv("FCA_LOG_SOURCE", "true")
	// FCA_LOG_FILE intentionally unset

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}

	// Also verify getenv default fallback when var missing
	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatalf("Unsetenv error: %v", err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestPrettyTextHandler_Behavior(t *testing.T) {
	// Capture output into a buffer
	var buf bytes.Buffer
	h := &prettyTextHandler{opts: prettyOpts{Level: slog.LevelWarn, AddSource: true}, w: &buf}

	// Enabled should filter below WARN
	if h.Enabled(nil, slog.LevelInfo) {
		t.Fatalf("info should not be enabled at warn level")
	}
	if !h.Enabled(nil, slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}

	// WithAttrs and WithGroup should accumulate
	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")})
	h2 = h2.WithGroup("grp")

	// Build a record and handle it
	r := slog.Record{Time: time.Now(), Level: slog.LevelError, Message: "boom"}
	r.AddAttrs(slog.Int("n", 42), slog.Float64("pi", 3.14), slog.Bool("ok", true))
	if err := h2.Handle(nil, r); err != nil {
		t.Fatalf("handle error: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "boom") || !strings.Contains(out, "k=v") {
		t.Fatalf("output missing expected content: %q", out)
	}
	// Grouped key should appear as prefix
	if !strings.Contains(out, "grp.n=42") {
		t.Fatalf("grouped attr missing or malformed: %q", out)
	}

	// Spot check level and value stringers
	if !strings.Contains(out, "ERR") { // levelString
		t.Fatalf("expected ERR level tag in output: %q", out)
	}
	if !strings.Contains(out, "pi=3.14") { // attrValueString float trim
		t.Fatalf("expected trimmed float: %q", out)
	}
}

func TestInitWritesToConsoleOverride(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Console: &buf})
	t.Cleanup(func() { Init(Options{Level: "error", Console: &bytes.Buffer{}}) })
	WithComponent("store").Debug("saved", slog.Int("pages", 2), slog.String("name", "Two words"))
	out := buf.String()
	if !strings.Contains(out, "DBG [store] saved") || !strings.Contains(out, "app=funcards") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if !strings.Contains(out, `name="Two words"`) {
		t.Fatalf("values with spaces must be quoted: %q", out)
	}
}

func TestScopeTagsConsoleRecords(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "debug", Console: &buf})
	t.Cleanup(func() { Init(Options{Level: "error", Console: &bytes.Buffer{}}) })
	page, block := uuid.New(), uuid.New()
	ctx := WithBlock(WithPage(context.Background(), page), block)
	WithComponent("canvas").InfoContext(ctx, "dropped")
	out := buf.String()
	if !strings.Contains(out, "page="+page.String()) || !strings.Contains(out, "block="+block.String()) {
		t.Fatalf("scope missing: %q", out)
	}

	buf.Reset()
	WithComponent("store").InfoContext(WithPage(ctx, page), "saved")
	if !strings.Contains(buf.String(), "block="+block.String()) {
		t.Fatalf("same page scope must keep the block: %q", buf.String())
	}
	buf.Reset()
	other := uuid.New()
	WithComponent("store").InfoContext(WithPage(ctx, other), "saved")
	if strings.Contains(buf.String(), "block=") || !strings.Contains(buf.String(), "page="+other.String()) {
		t.Fatalf("block leaked into another page scope: %q", buf.String())
	}
	buf.Reset()
	WithComponent("canvas").Info("plain")
	if strings.Contains(buf.String(), "page=") {
		t.Fatalf("unscoped record tagged: %q", buf.String())
	}
}
