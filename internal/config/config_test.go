package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.APIURL != "http://localhost:8000" {
		t.Errorf("expected default api_url, got %q", cfg.APIURL)
	}
	if cfg.RetryCount != 0 {
		t.Errorf("expected no retries by default, got %d", cfg.RetryCount)
	}
	if cfg.Theme != "light" {
		t.Errorf("expected default theme light, got %q", cfg.Theme)
	}
	if cfg.Server.Port != 4200 {
		t.Errorf("expected default port 4200, got %d", cfg.Server.Port)
	}
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("expected 120s timeout, got %v", cfg.Timeout())
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "test.dynbook.yml")

	original := DefaultConfig()
	original.APIURL = "https://books.example.com/api"
	original.Theme = "dark"
	original.RetryCount = 2
	original.OutputDir = "exports"
	original.Server.Port = 9000
	original.Server.AllowAllOrigins = true

	// Save.
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Load back.
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Verify round-trip.
	if loaded.APIURL != original.APIURL {
		t.Errorf("api_url: got %q, want %q", loaded.APIURL, original.APIURL)
	}
	if loaded.Theme != original.Theme {
		t.Errorf("theme: got %q, want %q", loaded.Theme, original.Theme)
	}
	if loaded.RetryCount != 2 {
		t.Errorf("retry_count: got %d, want 2", loaded.RetryCount)
	}
	if loaded.OutputDir != "exports" {
		t.Errorf("output_dir: got %q", loaded.OutputDir)
	}
	if loaded.Server != original.Server {
		t.Errorf("server: got %+v, want %+v", loaded.Server, original.Server)
	}
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nonexistent.yml")

	// Loading a missing file should return defaults, not an error.
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load should not fail for missing file: %v", err)
	}
	if cfg.APIURL != DefaultConfig().APIURL {
		t.Errorf("expected default api_url, got %q", cfg.APIURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.yml")

	cfg := DefaultConfig()
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	t.Setenv("DYNBOOK_API_URL", "http://backend:9000")
	t.Setenv("DYNBOOK_RETRY_COUNT", "3")
	t.Setenv("DYNBOOK_SERVER_PORT", "8081")

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.APIURL != "http://backend:9000" {
		t.Errorf("env override failed: got %q", loaded.APIURL)
	}
	if loaded.RetryCount != 3 {
		t.Errorf("retry_count override failed: got %d", loaded.RetryCount)
	}
	if loaded.Server.Port != 8081 {
		t.Errorf("server.port override failed: got %d", loaded.Server.Port)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("DYNBOOK_THEME=dark\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DYNBOOK_THEME", "")
	os.Unsetenv("DYNBOOK_THEME")

	if err := LoadEnvFile(envPath); err != nil {
		t.Fatalf("LoadEnvFile: %v", err)
	}
	cfg, err := Load(filepath.Join(dir, "missing.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Theme != "dark" {
		t.Errorf("theme from .env: got %q, want dark", cfg.Theme)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"DYNBOOK_API_URL":                  "api_url",
		"DYNBOOK_TIMEOUT_SECONDS":          "timeout_seconds",
		"DYNBOOK_SERVER_PORT":              "server.port",
		"DYNBOOK_SERVER_ALLOW_ALL_ORIGINS": "server.allow_all_origins",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestValidateValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig should be valid, got: %v", err)
	}
}

func TestValidateInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty api_url", func(c *Config) { c.APIURL = "" }},
		{"relative api_url", func(c *Config) { c.APIURL = "/api" }},
		{"ftp api_url", func(c *Config) { c.APIURL = "ftp://host" }},
		{"empty data_dir", func(c *Config) { c.DataDir = "" }},
		{"negative timeout", func(c *Config) { c.TimeoutSeconds = -1 }},
		{"negative retries", func(c *Config) { c.RetryCount = -1 }},
		{"unknown theme", func(c *Config) { c.Theme = "sepia" }},
		{"port zero", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestDatabasePath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/tmp/dyn"
	if got := cfg.DatabasePath(); got != filepath.Join("/tmp/dyn", "dynbook.db") {
		t.Errorf("DatabasePath = %q", got)
	}
}
