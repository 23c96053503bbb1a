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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"funcards/internal/domain"
	applog "funcards/internal/log"
)

const (
	BackupsDirName = "backups"
	backupStamp    = "20060102-150405.000000000"
)

var validKey = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// FileKV stores each key as <dir>/<key>.json. Writes go to a temp file that
// is renamed over the target; the previous value is first copied to a
// timestamped backup. A value that cannot be read or is not valid JSON is
// served from its newest backup.
type FileKV struct {
	dir     string
	backups int
	log     *slog.Logger
}

// NewFileKV creates dir if needed. keep bounds the number of backups per
// key; zero or less keeps them all.
func NewFileKV(dir string, keep int) (*FileKV, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("data dir is required")
	}
	if err := os.MkdirAll(filepath.Join(dir, BackupsDirName), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileKV{dir: dir, backups: keep, log: applog.WithComponent("storage.file")}, nil
}

// Dir is the directory the values live in.
func (f *FileKV) Dir() string { return f.dir }

func (f *FileKV) path(key string) (string, error) {
	if !validKey.MatchString(key) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileKV) backupPrefix(key string) string { return key + ".json." }

func (f *FileKV) Get(_ context.Context, key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err == nil && json.Valid(b) {
		return b, nil
	}
	if errors.Is(err, os.ErrNotExist) && len(f.backupFiles(key)) == 0 {
		return nil, ErrNotFound
	}
	bb, berr := f.latestBackup(key)
	if berr != nil {
		if err != nil {
			return nil, fmt.Errorf("read %s: %w; backup attempt: %v", p, err, berr)
		}
		// Corrupt and no usable backup: hand the bytes to the decoder,
		// which falls back further.
		return b, nil
	}
	f.log.Warn("value unreadable, served from backup", slog.String("key", key))
	return bb, nil
}

func (f *FileKV) Set(_ context.Context, key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	bdir := filepath.Join(f.dir, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}
	if _, statErr := os.Stat(p); statErr == nil {
		bpath := filepath.Join(bdir, f.backupPrefix(key)+time.Now().Format(backupStamp)+".bak")
		if cerr := copyFile(p, bpath); cerr != nil {
			return fmt.Errorf("backup %s: %w", key, cerr)
		}
		f.prune(key)
	}

	temp := filepath.Join(f.dir, fmt.Sprintf(".%s.tmp-%d-%d", key, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, value); werr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp %s: %w", key, werr)
	}
	if rerr := os.Rename(temp, p); rerr != nil {
		// On Windows, replace by removing destination first
		_ = os.Remove(p)
		if rerr = os.Rename(temp, p); rerr != nil {
			_ = os.Remove(temp)
			return fmt.Errorf("replace %s: %w", key, rerr)
		}
	}
	return nil
}

// Delete removes the value and its backups so it cannot be resurrected by
// the backup fallback.
func (f *FileKV) Delete(_ context.Context, key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	for _, b := range f.backupFiles(key) {
		if err := os.Remove(b); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete backup %s: %w", b, err)
		}
	}
	return nil
}

func (f *FileKV) Close() error { return nil }

// backupFiles lists the key's backups, oldest first.
func (f *FileKV) backupFiles(key string) []string {
	bdir := filepath.Join(f.dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil
	}
	prefix := f.backupPrefix(key)
	var out []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".bak") {
			out = append(out, filepath.Join(bdir, name))
		}
	}
	sort.Strings(out) // timestamp in name yields lexicographic order
	return out
}

func (f *FileKV) prune(key string) {
	if f.backups <= 0 {
		return
	}
	files := f.backupFiles(key)
	for len(files) > f.backups {
		if err := os.Remove(files[0]); err != nil {
			f.log.Warn("prune backup failed", slog.String("path", files[0]), slog.Any("err", err))
		}
		files = files[1:]
	}
}

// latestBackup returns the newest backup that holds valid JSON.
func (f *FileKV) latestBackup(key string) ([]byte, error) {
	files := f.backupFiles(key)
	if len(files) == 0 {
		return nil, errors.New("no backups found")
	}
	for i := len(files) - 1; i >= 0; i-- {
		b, err := os.ReadFile(files[i])
		if err == nil && json.Valid(b) {
			return b, nil
		}
	}
	return nil, errors.New("no readable backup")
}

// AutosaveCrashSnapshot writes pages to a timestamped file in dir, outside
// any KV, so an emergency copy exists even if the backend is broken.
func AutosaveCrashSnapshot(dir string, pages []domain.Page) (string, error) {
	data, err := EncodeDocument(pages)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create crash dir: %w", err)
	}
	path := filepath.Join(dir, "pages-crash-"+time.Now().Format(backupStamp)+".json")
	if err := writeFileSync(path, data); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
