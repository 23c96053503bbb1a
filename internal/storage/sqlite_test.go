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
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestSQLiteRoundTrip(t *testing.T) {
	kv, err := OpenSQLite(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer kv.Close()
	roundTrip(t, kv)
	v, err := kv.SchemaVersion(context.Background())
	if err != nil || v != sqliteSchemaVersion {
		t.Fatalf("schema = %d, %v", v, err)
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	kv, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewRepository(kv).Save(ctx, nil); err != nil {
		t.Fatal(err)
	}
	_ = kv.Set(ctx, "x", []byte("1"))
	_ = kv.Close()

	kv, err = OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	if got, err := kv.Get(ctx, "x"); err != nil || string(got) != "1" {
		t.Fatalf("Get after reopen = %q, %v", got, err)
	}
}

func TestSQLiteMigratesVersionOne(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	db, err := sql.Open("sqlite", "file:"+filepath.ToSlash(SQLitePath(dir)))
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL)`,
		`INSERT INTO version VALUES (1, 1, 'old', '', '')`,
		`CREATE TABLE kv (key TEXT PRIMARY KEY, value BLOB NOT NULL)`,
		`INSERT INTO kv VALUES ('pages', '[]')`,
	} {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("%s: %v", q, err)
		}
	}
	_ = db.Close()

	kv, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer kv.Close()
	if v, _ := kv.SchemaVersion(ctx); v != 2 {
		t.Fatalf("schema = %d, want 2", v)
	}
	if got, err := kv.Get(ctx, "pages"); err != nil || string(got) != "[]" {
		t.Fatalf("old row lost: %q %v", got, err)
	}
	if err := kv.Set(ctx, "pages", []byte("{}")); err != nil {
		t.Fatalf("Set after migration: %v", err)
	}
}

func TestSQLiteRebuildsCorruptFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	if err := os.WriteFile(SQLitePath(dir), []byte("this is not a database, just some bytes that are long enough"), 0o644); err != nil {
		t.Fatal(err)
	}
	kv, err := OpenSQLite(ctx, dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer kv.Close()
	roundTrip(t, kv)
	matches, _ := filepath.Glob(filepath.Join(dir, BackupsDirName, SQLiteFileName+".*.corrupt"))
	if len(matches) != 1 {
		t.Fatalf("corrupt file not kept aside: %v", matches)
	}
}

func TestSQLiteKeepsFileOnTransientErrors(t *testing.T) {
	dir := t.TempDir()
	kv, err := OpenSQLite(context.Background(), dir)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := kv.Set(context.Background(), "pages", []byte(`[1]`)); err != nil {
		t.Fatal(err)
	}
	_ = kv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := OpenSQLite(ctx, dir); err == nil {
		t.Fatalf("expected an error from a cancelled open")
	}
	matches, _ := filepath.Glob(filepath.Join(dir, BackupsDirName, "*.corrupt"))
	if len(matches) != 0 {
		t.Fatalf("healthy database moved aside: %v", matches)
	}
	kv, err = OpenSQLite(context.Background(), dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer kv.Close()
	if got, err := kv.Get(context.Background(), "pages"); err != nil || string(got) != `[1]` {
		t.Fatalf("data lost: %q %v", got, err)
	}
}

func TestIsCorruptSQLite(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{fmt.Errorf("enable WAL: %w", errors.New("file is not a database (26)")), true},
		{errors.New("database disk image is malformed"), true},
		{fmt.Errorf("enable WAL: %w", errors.New("database is locked (5) (SQLITE_BUSY)")), false},
		{fmt.Errorf("enable WAL: %w", context.DeadlineExceeded), false},
	}
	for _, c := range cases {
		if got := isCorruptSQLite(c.err); got != c.want {
			t.Errorf("isCorruptSQLite(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}
