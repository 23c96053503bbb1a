/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"funcards/internal/domain"
)

func TestFileKVRoundTrip(t *testing.T) {
	kv, err := NewFileKV(t.TempDir(), 3)
	if err != nil {
		t.Fatal(err)
	}
	roundTrip(t, kv)
}

func TestFileKVRejectsBadKeys(t *testing.T) {
	kv, _ := NewFileKV(t.TempDir(), 3)
	if err := kv.Set(context.Background(), "../escape", []byte(`{}`)); err == nil {
		t.Fatalf("path traversal key accepted")
	}
	if _, err := NewFileKV("  ", 1); err == nil {
		t.Fatalf("blank dir accepted")
	}
}

func TestFileKVFallsBackToBackup(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, _ := NewFileKV(dir, 5)
	if err := kv.Set(ctx, "pages", []byte(`{"v":1}`)); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "pages", []byte(`{"v":2}`)); err != nil {
		t.Fatal(err)
	}
	// simulate a torn write
	if err := os.WriteFile(filepath.Join(dir, "pages.json"), []byte(`{"v":`), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := kv.Get(ctx, "pages")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"v":1}` {
		t.Fatalf("expected newest backup, got %s", got)
	}
}

func TestFileKVPrunesAndDeletesBackups(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, _ := NewFileKV(dir, 2)
	for i := 0; i < 6; i++ {
		if err := kv.Set(ctx, "pages", []byte(`[]`)); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(kv.backupFiles("pages")); n != 2 {
		t.Fatalf("backups = %d, want 2", n)
	}
	_ = kv.Set(ctx, "other", []byte(`[]`))
	_ = kv.Set(ctx, "other", []byte(`[]`))
	if err := kv.Delete(ctx, "pages"); err != nil {
		t.Fatal(err)
	}
	if n := len(kv.backupFiles("pages")); n != 0 {
		t.Fatalf("delete left %d backups", n)
	}
	if n := len(kv.backupFiles("other")); n != 1 {
		t.Fatalf("delete touched another key's backups: %d", n)
	}
}

func TestRepositoryOnFileKVSurvivesCorruptDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, _ := NewFileKV(dir, 5)
	r := NewRepository(kv)
	first, err := r.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	first[0].Name = "renamed"
	if err := r.Save(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, DocumentKey+".json"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	pages, err := r.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if r.LastOutcome() != LoadedDocument || pages[0].Name != domain.MechanismPageName {
		t.Fatalf("expected the pre-rename backup, got %v %q", r.LastOutcome(), pages[0].Name)
	}
}

func TestAutosaveCrashSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "crash")
	path, err := AutosaveCrashSnapshot(dir, domain.DefaultPages())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(filepath.Base(path), "pages-crash-") {
		t.Fatalf("unexpected name %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := ValidateDocument(raw); err != nil {
		t.Fatalf("snapshot is not a valid document: %v", err)
	}
}
