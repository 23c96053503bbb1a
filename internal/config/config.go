/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Storage       StorageConfig `yaml:"storage"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Import        ImportConfig  `yaml:"import"`
	Logging       LoggingConfig `yaml:"logging"`
}

type GeneralConfig struct {
	TelemetryOptIn bool   `yaml:"telemetry_opt_in"`
	TelemetryURL   string `yaml:"telemetry_url"`
}

// StorageConfig selects the persistence backend. The redis/postgres password
// is not stored on disk; it lives in the OS keychain.
type StorageConfig struct {
	Driver      string `yaml:"driver"` // file | sqlite | diskv | redis | postgres | memory
	DataDir     string `yaml:"data_dir"`
	Backups     int    `yaml:"backups"`
	RedisAddr   string `yaml:"redis_addr"`
	RedisDB     int    `yaml:"redis_db"`
	KeyPrefix   string `yaml:"key_prefix"`
	PostgresDSN string `yaml:"postgres_dsn"`
}

type CanvasConfig struct {
	GridSize float64 `yaml:"grid_size"`
}

// ImportConfig holds the default placement of batch-imported blocks.
type ImportConfig struct {
	OriginX float64 `yaml:"origin_x"`
	OriginY float64 `yaml:"origin_y"`
	Stride  float64 `yaml:"stride"`
}

type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Source     bool   `yaml:"source"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverDiskv    = "diskv"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Drivers lists every accepted storage driver.
var Drivers = []string{DriverFile, DriverSQLite, DriverDiskv, DriverRedis, DriverPostgres, DriverMemory}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Storage:       StorageConfig{Driver: DriverFile, DataDir: "~/.funcards", Backups: 5, RedisAddr: "localhost:6379", KeyPrefix: "funcards:"},
		Canvas:        CanvasConfig{GridSize: 30},
		Import:        ImportConfig{OriginX: 100, OriginY: 100, Stride: 200},
		Logging:       LoggingConfig{Level: "info", Format: "console", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath     = "FCA_CONFIG"
	EnvStorageDriver  = "FCA_STORAGE_DRIVER"
	EnvDataDir        = "FCA_DATA_DIR"
	EnvRedisAddr      = "FCA_REDIS_ADDR"
	EnvPostgresDSN    = "FCA_POSTGRES_DSN"
	EnvGridSize       = "FCA_GRID_SIZE"
	EnvImportStride   = "FCA_IMPORT_STRIDE"
	EnvTelemetryOptIn = "FCA_TELEMETRY_OPT_IN"
	EnvTelemetryURL   = "FCA_TELEMETRY_URL"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "FCA_LOG_LEVEL"
	EnvLogFormat = "FCA_LOG_FORMAT"
	EnvLogSource = "FCA_LOG_SOURCE"
	EnvLogFile   = "FCA_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "funcards"
	keyringSecret  = "storage_secret"
)

// secretStore abstracts the keyring, so we can stub it in tests.
var secretStore SecretStore = osKeyring{}

type SecretStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// osKeyring implements SecretStore using the OS keyring via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) {
	v, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (osKeyring) Set(service, key, value string) error { return keyring.Set(service, key, value) }

func (osKeyring) Delete(service, key string) error {
	if err := keyring.Delete(service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// ConfigPath returns the per-user config file path. FCA_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return homedir.Expand(p)
	}
	home, err := homedir.Dir()
	if err != nil || home == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(home, ".config", "funcards", "config.yaml"), nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// For server backends it also loads the storage secret from the keyring (not
// kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, "", err
	}
	if !cfg.Storage.NeedsSecret() {
		return cfg, "", nil
	}
	return cfg, Secret(), nil
}

// Secret returns the backend secret from the keyring, "" when none is stored
// or the keyring is unavailable.
func Secret() string {
	s, _ := secretStore.Get(keyringService, keyringSecret)
	return s
}

// NeedsSecret reports whether the driver authenticates against a server.
func (s StorageConfig) NeedsSecret() bool {
	return s.Driver == DriverRedis || s.Driver == DriverPostgres
}

// Save writes the user config YAML and persists the secret into OS keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if secret != "" {
		if err := secretStore.Set(keyringService, keyringSecret, secret); err != nil {
			return err
		}
	}
	return nil
}

// ForgetSecret removes the stored secret.
func ForgetSecret() error { return secretStore.Delete(keyringService, keyringSecret) }

// Validate rejects configurations no backend could run with.
func (c AppConfig) Validate() error {
	known := false
	for _, d := range Drivers {
		if c.Storage.Driver == d {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown storage driver %q (want one of %s)", c.Storage.Driver, strings.Join(Drivers, ", "))
	}
	if c.Canvas.GridSize <= 0 {
		return fmt.Errorf("canvas.grid_size must be positive, got %v", c.Canvas.GridSize)
	}
	if c.Storage.Driver == DriverPostgres && strings.TrimSpace(c.Storage.PostgresDSN) == "" {
		return errors.New("storage.postgres_dsn is required for the postgres driver")
	}
	return nil
}

// ResolvedDataDir returns the storage directory with ~ expanded.
func (s StorageConfig) ResolvedDataDir() (string, error) {
	dir := strings.TrimSpace(s.DataDir)
	if dir == "" {
		dir = Defaults().Storage.DataDir
	}
	return homedir.Expand(dir)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if v := strings.TrimSpace(src.General.TelemetryURL); v != "" {
		dst.General.TelemetryURL = v
	}
	// storage
	if v := strings.ToLower(strings.TrimSpace(src.Storage.Driver)); v != "" {
		dst.Storage.Driver = v
	}
	if v := strings.TrimSpace(src.Storage.DataDir); v != "" {
		dst.Storage.DataDir = v
	}
	if src.Storage.Backups != 0 {
		dst.Storage.Backups = src.Storage.Backups
	}
	if v := strings.TrimSpace(src.Storage.RedisAddr); v != "" {
		dst.Storage.RedisAddr = v
	}
	dst.Storage.RedisDB = src.Storage.RedisDB
	if src.Storage.KeyPrefix != "" {
		dst.Storage.KeyPrefix = src.Storage.KeyPrefix
	}
	if v := strings.TrimSpace(src.Storage.PostgresDSN); v != "" {
		dst.Storage.PostgresDSN = v
	}
	// canvas and import
	if src.Canvas.GridSize != 0 {
		dst.Canvas.GridSize = src.Canvas.GridSize
	}
	if src.Import.OriginX != 0 {
		dst.Import.OriginX = src.Import.OriginX
	}
	if src.Import.OriginY != 0 {
		dst.Import.OriginY = src.Import.OriginY
	}
	if src.Import.Stride != 0 {
		dst.Import.Stride = src.Import.Stride
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	if src.Logging.MaxSizeMB != 0 {
		dst.Logging.MaxSizeMB = src.Logging.MaxSizeMB
	}
	if src.Logging.MaxBackups != 0 {
		dst.Logging.MaxBackups = src.Logging.MaxBackups
	}
}

func truthy(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvStorageDriver)); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRedisAddr)); v != "" {
		cfg.Storage.RedisAddr = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPostgresDSN)); v != "" {
		cfg.Storage.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGridSize)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Canvas.GridSize = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvImportStride)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Import.Stride = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryURL)); v != "" {
		cfg.General.TelemetryURL = v
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var overrideKeys = map[string]string{
	"storage.driver":           EnvStorageDriver,
	"storage.data_dir":         EnvDataDir,
	"storage.redis_addr":       EnvRedisAddr,
	"storage.postgres_dsn":     EnvPostgresDSN,
	"canvas.grid_size":         EnvGridSize,
	"import.stride":            EnvImportStride,
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"general.telemetry_url":    EnvTelemetryURL,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := overrideKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
