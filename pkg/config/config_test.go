// Copyright 2026 fanjia1024
// Tests for config loading

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  port: 8080
  host: 0.0.0.0
  middleware:
    rate_limit: true
    rate_limit_rps: 20
upstream:
  base_url: http://fastgpt:3000
  api_key: sk-test
  timeout: 30s
stream_state:
  type: memory
  ttl: 10m
log:
  level: debug
  format: json
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.API.Port != 8080 {
		t.Errorf("port: %d", cfg.API.Port)
	}
	if cfg.Upstream.BaseURL != "http://fastgpt:3000" {
		t.Errorf("base_url: %s", cfg.Upstream.BaseURL)
	}
	if !cfg.API.Middleware.RateLimit || cfg.API.Middleware.RateLimitRPS != 20 {
		t.Errorf("middleware: %+v", cfg.API.Middleware)
	}
	if cfg.StreamState.TTL != "10m" {
		t.Errorf("ttl: %s", cfg.StreamState.TTL)
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_FASTGPT_KEY", "sk-from-env")
	path := writeConfig(t, `
upstream:
  api_key: ${TEST_FASTGPT_KEY}
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Upstream.APIKey != "sk-from-env" {
		t.Errorf("api_key: %s", cfg.Upstream.APIKey)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig("/nonexistent/gateway.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
