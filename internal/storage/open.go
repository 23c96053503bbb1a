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
	"fmt"
	"log/slog"

	"funcards/internal/config"
	applog "funcards/internal/log"
)

// OpenKV opens the backend selected by cfg. secret is the redis or
// postgres password kept in the OS keyring.
func OpenKV(ctx context.Context, cfg config.StorageConfig, secret string) (KV, error) {
	dir, err := cfg.ResolvedDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	applog.WithComponent("storage").Debug("opening backend", slog.String("driver", cfg.Driver), slog.String("dir", dir))
	switch cfg.Driver {
	case config.DriverFile, "":
		return NewFileKV(dir, cfg.Backups)
	case config.DriverSQLite:
		return OpenSQLite(ctx, dir)
	case config.DriverDiskv:
		return NewDiskvKV(dir), nil
	case config.DriverRedis:
		return OpenRedis(ctx, RedisConfig{Addr: cfg.RedisAddr, Password: secret, DB: cfg.RedisDB, Prefix: cfg.KeyPrefix})
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.PostgresDSN, secret)
	case config.DriverMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
