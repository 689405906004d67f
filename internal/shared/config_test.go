package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Catalog.BaseURL != "http://127.0.0.1:8080" {
			t.Errorf("expected base URL http://127.0.0.1:8080, got %s", config.Catalog.BaseURL)
		}
		if config.Catalog.Timeout != 15*time.Second {
			t.Errorf("expected timeout 15s, got %v", config.Catalog.Timeout)
		}
		if config.Database.Path != "./mvx.db" {
			t.Errorf("expected database path ./mvx.db, got %s", config.Database.Path)
		}
		if config.Server.TokenTTL != time.Hour {
			t.Errorf("expected token ttl 1h, got %v", config.Server.TokenTTL)
		}
		if config.UI.PageSize != 20 {
			t.Errorf("expected page size 20, got %d", config.UI.PageSize)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[catalog]
base_url = "https://movies.example.com"
timeout = "3s"
requests_per_second = 2.5

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Catalog.BaseURL != "https://movies.example.com" {
			t.Errorf("expected base URL https://movies.example.com, got %s", config.Catalog.BaseURL)
		}
		if config.Catalog.Timeout != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", config.Catalog.Timeout)
		}
		if config.Catalog.RequestsPerSecond != 2.5 {
			t.Errorf("expected 2.5 requests per second, got %v", config.Catalog.RequestsPerSecond)
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.UI.PageSize != 20 {
			t.Errorf("missing values should keep defaults, got page size %d", config.UI.PageSize)
		}
	})

	t.Run("LoadConfig YAML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")

		testConfig := `catalog:
  base_url: http://10.0.0.2:9000
  timeout: 30s
server:
  port: 9999
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Catalog.BaseURL != "http://10.0.0.2:9000" {
			t.Errorf("expected base URL http://10.0.0.2:9000, got %s", config.Catalog.BaseURL)
		}
		if config.Catalog.Timeout != 30*time.Second {
			t.Errorf("expected timeout 30s, got %v", config.Catalog.Timeout)
		}
		if config.Server.Addr() != "127.0.0.1:9999" {
			t.Errorf("expected addr 127.0.0.1:9999, got %s", config.Server.Addr())
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("LoadConfig Malformed", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[catalog\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv(EnvAPIURL, "http://env.example.com")

		config := DefaultConfig()
		config.ApplyEnv()

		if config.Catalog.BaseURL != "http://env.example.com" {
			t.Errorf("expected env override, got %s", config.Catalog.BaseURL)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(*Config)
		}{
			{name: "empty base url", mutate: func(c *Config) { c.Catalog.BaseURL = "  " }},
			{name: "zero timeout", mutate: func(c *Config) { c.Catalog.Timeout = 0 }},
			{name: "negative rate", mutate: func(c *Config) { c.Catalog.RequestsPerSecond = -1 }},
			{name: "zero page size", mutate: func(c *Config) { c.UI.PageSize = 0 }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)

				err := config.Validate()
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
