package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvAPIURL overrides [CatalogConfig.BaseURL] when set.
const EnvAPIURL = "MVX_API_URL"

// Config represents the application configuration loaded from a TOML (or YAML) file.
type Config struct {
	Catalog  CatalogConfig  `toml:"catalog" yaml:"catalog"`
	Database DatabaseConfig `toml:"database" yaml:"database"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
	UI       UIConfig       `toml:"ui" yaml:"ui"`
}

// CatalogConfig contains settings for the remote movie catalog API.
type CatalogConfig struct {
	BaseURL           string        `toml:"base_url" yaml:"base_url"`
	Timeout           time.Duration `toml:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `toml:"requests_per_second" yaml:"requests_per_second"`
	UserAgent         string        `toml:"user_agent" yaml:"user_agent"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path" yaml:"path"`
	MaxOpenConns int    `toml:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns" yaml:"max_idle_conns"`
}

// ServerConfig contains settings for the development catalog server.
type ServerConfig struct {
	Host       string        `toml:"host" yaml:"host"`
	Port       int           `toml:"port" yaml:"port"`
	TokenTTL   time.Duration `toml:"token_ttl" yaml:"token_ttl"`
	SigningKey string        `toml:"signing_key" yaml:"signing_key"`
}

// UIConfig contains settings for list rendering in the CLI and TUI.
type UIConfig struct {
	PageSize int `toml:"page_size" yaml:"page_size"`
}

// Addr returns the host:port listen address of the development server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate checks the settings the client cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog.BaseURL) == "" {
		return fmt.Errorf("%w: catalog.base_url is empty", ErrInvalidConfig)
	}
	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("%w: catalog.timeout must be positive", ErrInvalidConfig)
	}
	if c.Catalog.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: catalog.requests_per_second must not be negative", ErrInvalidConfig)
	}
	if c.UI.PageSize < 1 {
		return fmt.Errorf("%w: ui.page_size must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// ApplyEnv overrides values from the process environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.Catalog.BaseURL = v
	}
}

// LoadConfig reads and parses a configuration file from the specified path.
//
// Files ending in .yaml or .yml are decoded as YAML, everything else as TOML.
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
