// CineMatch - Hybrid Movie Recommendation Engine
// Copyright 2026 CineMatch Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinematch/cinematch

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Run from an empty directory so no stray config.yaml is picked up.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Store.Driver = %q, want sqlite", cfg.Store.Driver)
	}
	if cfg.Encoder.Endpoint != "http://localhost:11434" {
		t.Errorf("Encoder.Endpoint = %q, want default Ollama endpoint", cfg.Encoder.Endpoint)
	}
	if cfg.Encoder.Timeout != 30*time.Second {
		t.Errorf("Encoder.Timeout = %v, want 30s", cfg.Encoder.Timeout)
	}
	if cfg.Recommend.K != 10 {
		t.Errorf("Recommend.K = %d, want 10", cfg.Recommend.K)
	}
	if cfg.Recommend.MinRatingsForRecommendations != 5 {
		t.Errorf("Recommend.MinRatingsForRecommendations = %d, want 5",
			cfg.Recommend.MinRatingsForRecommendations)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CINEMATCH_STORE_DRIVER", "memory")
	t.Setenv("CINEMATCH_RECOMMEND_K", "25")
	t.Setenv("CINEMATCH_RECOMMEND_MIN_SIMILARITY", "0.5")
	t.Setenv("CINEMATCH_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory", cfg.Store.Driver)
	}
	if cfg.Recommend.K != 25 {
		t.Errorf("Recommend.K = %d, want 25", cfg.Recommend.K)
	}
	if cfg.Recommend.MinSimilarity != 0.5 {
		t.Errorf("Recommend.MinSimilarity = %v, want 0.5", cfg.Recommend.MinSimilarity)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := []byte(`
store:
  driver: memory
encoder:
  model: from-file
recommend:
  k: 7
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	// Env wins over the file for the same key.
	t.Setenv("CINEMATCH_RECOMMEND_K", "13")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Store.Driver != "memory" {
		t.Errorf("Store.Driver = %q, want memory from file", cfg.Store.Driver)
	}
	if cfg.Encoder.Model != "from-file" {
		t.Errorf("Encoder.Model = %q, want from-file", cfg.Encoder.Model)
	}
	if cfg.Recommend.K != 13 {
		t.Errorf("Recommend.K = %d, want env override 13", cfg.Recommend.K)
	}
}

func TestLoad_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "unknown driver", env: map[string]string{"CINEMATCH_STORE_DRIVER": "duckdb"}},
		{name: "empty sqlite path", env: map[string]string{"CINEMATCH_STORE_PATH": ""}},
		{name: "zero k", env: map[string]string{"CINEMATCH_RECOMMEND_K": "0"}},
		{name: "negative weight", env: map[string]string{"CINEMATCH_RECOMMEND_COLLABORATIVE_WEIGHT": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Fatal("Load accepted an invalid configuration")
			}
		})
	}
}

func TestEnvTransform(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "CINEMATCH_STORE_DRIVER", want: "store.driver"},
		{in: "CINEMATCH_RECOMMEND_MIN_SIMILARITY", want: "recommend.min_similarity"},
		{in: "CINEMATCH_LOG_LEVEL", want: "log.level"},
		{in: "CINEMATCH_ENCODER_ENDPOINT", want: "encoder.endpoint"},
		{in: "CINEMATCH_UNRELATED", want: "unrelated"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := envTransform(tt.in); got != tt.want {
				t.Errorf("envTransform(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
