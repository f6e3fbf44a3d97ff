// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

// Package config loads the application configuration with layered sources:
// built-in defaults, an optional YAML config file, then environment
// variables with the CINEMATCH_ prefix. Later layers override earlier ones.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/cinematch/cinematch/internal/logging"
	"github.com/cinematch/cinematch/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/cinematch/config.yaml",
	"/etc/cinematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path when set.
const ConfigPathEnvVar = "CINEMATCH_CONFIG_PATH"

// envPrefix is stripped from environment variables before mapping them to
// config paths: CINEMATCH_RECOMMEND_K -> recommend.k.
const envPrefix = "CINEMATCH_"

// Config is the full application configuration.
type Config struct {
	Log       logging.Config   `koanf:"log" json:"log"`
	Store     StoreConfig      `koanf:"store" json:"store"`
	Encoder   EncoderConfig    `koanf:"encoder" json:"encoder"`
	Recommend recommend.Config `koanf:"recommend" json:"recommend"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	// Driver is "sqlite" or "memory".
	Driver string `koanf:"driver" json:"driver"`

	// Path is the SQLite database file. Ignored by the memory driver.
	Path string `koanf:"path" json:"path"`
}

// EncoderConfig configures the embedding backend.
type EncoderConfig struct {
	// Endpoint is the Ollama server base URL.
	Endpoint string `koanf:"endpoint" json:"endpoint"`

	// Model is the embedding model name.
	Model string `koanf:"model" json:"model"`

	// Timeout bounds each embedding request.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Log: logging.DefaultConfig(),
		Store: StoreConfig{
			Driver: "sqlite",
			Path:   "/data/cinematch.db",
		},
		Encoder: EncoderConfig{
			Endpoint: "http://localhost:11434",
			Model:    "all-minilm",
			Timeout:  30 * time.Second,
		},
		Recommend: recommend.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// CINEMATCH_-prefixed environment variables, in that precedence order.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency beyond what unmarshal enforces.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("store.driver must be sqlite or memory, got %q", c.Store.Driver)
	}

	if c.Encoder.Endpoint == "" {
		return fmt.Errorf("encoder.endpoint is required")
	}
	if c.Encoder.Model == "" {
		return fmt.Errorf("encoder.model is required")
	}

	return c.Recommend.Validate()
}

// findConfigFile returns the first existing config file path, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sections are the top-level config keys; the first underscore-delimited
// token of an env var that matches a section becomes the path prefix, the
// remainder the key: CINEMATCH_RECOMMEND_MIN_SIMILARITY ->
// recommend.min_similarity.
var sections = []string{"log", "store", "encoder", "recommend"}

func envTransform(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(s, sec+"_"); ok {
			return sec + "." + rest
		}
	}
	// Unknown shape; leave as-is so it simply doesn't match anything.
	return s
}
