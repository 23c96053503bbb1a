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
	"path/filepath"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvKV stores each key as a flat file under a diskv base path with a
// small read cache.
type DiskvKV struct {
	d *diskv.Diskv
}

func NewDiskvKV(dir string) *DiskvKV {
	return &DiskvKV{d: diskv.New(diskv.Options{
		BasePath:     filepath.Join(dir, "diskv"),
		TempDir:      filepath.Join(dir, "diskv-tmp"),
		Transform:    func(string) []string { return []string{} },
		CacheSizeMax: 1024 * 1024, // 1MB
	})}
}

func (k *DiskvKV) Get(_ context.Context, key string) ([]byte, error) {
	if !k.d.Has(key) {
		return nil, ErrNotFound
	}
	v, err := k.d.Read(key)
	if err != nil {
		return nil, fmt.Errorf("diskv read %s: %w", key, err)
	}
	return v, nil
}

func (k *DiskvKV) Set(_ context.Context, key string, value []byte) error {
	if err := k.d.Write(key, value); err != nil {
		return fmt.Errorf("diskv write %s: %w", key, err)
	}
	return nil
}

func (k *DiskvKV) Delete(_ context.Context, key string) error {
	if !k.d.Has(key) {
		return nil
	}
	if err := k.d.Erase(key); err != nil {
		return fmt.Errorf("diskv erase %s: %w", key, err)
	}
	return nil
}

func (k *DiskvKV) Close() error { return nil }
