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
	"testing"

	"funcards/internal/config"
)

func TestDiskvRoundTrip(t *testing.T) {
	roundTrip(t, NewDiskvKV(t.TempDir()))
}

func TestOpenKVDrivers(t *testing.T) {
	ctx := context.Background()
	for _, d := range []string{config.DriverMemory, config.DriverFile, config.DriverSQLite, config.DriverDiskv} {
		cfg := config.StorageConfig{Driver: d, DataDir: t.TempDir(), Backups: 2}
		kv, err := OpenKV(ctx, cfg, "")
		if err != nil {
			t.Fatalf("%s: %v", d, err)
		}
		pages, err := NewRepository(kv).Load(ctx)
		if err != nil || len(pages) != 2 {
			t.Fatalf("%s: load %d pages, %v", d, len(pages), err)
		}
		_ = kv.Close()
	}
	if _, err := OpenKV(ctx, config.StorageConfig{Driver: "tape"}, ""); err == nil {
		t.Fatalf("unknown driver accepted")
	}
}

func TestRedisKV(t *testing.T) {
	addr := os.Getenv("FCA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FCA_TEST_REDIS_ADDR not set")
	}
	kv, err := OpenRedis(context.Background(), RedisConfig{Addr: addr, Prefix: "funcards-test:"})
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	roundTrip(t, kv)
}

func TestPostgresKV(t *testing.T) {
	dsn := os.Getenv("FCA_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FCA_TEST_POSTGRES_DSN not set")
	}
	ctx := context.Background()
	kv, err := OpenPostgres(ctx, dsn, "")
	if err != nil {
		t.Fatal(err)
	}
	defer kv.Close()
	roundTrip(t, kv)
	// migrations are idempotent
	again, err := OpenPostgres(ctx, dsn, "")
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = again.Close()
}

func TestParseVersion(t *testing.T) {
	if v, err := parseVersion("0002_kv_documents_updated_idx.sql"); err != nil || v != 2 {
		t.Fatalf("parseVersion = %d, %v", v, err)
	}
	if _, err := parseVersion("readme.sql"); err == nil {
		t.Fatalf("expected error for unnumbered file")
	}
}
