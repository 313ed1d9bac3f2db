package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Service     ServiceConfig     `toml:"service"`
	Library     LibraryConfig     `toml:"library"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains the account the albums belong to and its API token.
type CredentialsConfig struct {
	UserID      string `toml:"user_id"`
	AccessToken string `toml:"access_token"`
}

// ServiceConfig contains remote photo service connection settings.
type ServiceConfig struct {
	BaseURL           string   `toml:"base_url"`
	ConnectTimeout    Duration `toml:"connect_timeout"`
	RequestTimeout    Duration `toml:"request_timeout"`
	RequestsPerSecond float64  `toml:"requests_per_second"`
}

// LibraryConfig describes the local photo tree.
//
// Root is the directory album names are derived from; it is never itself an album.
type LibraryConfig struct {
	Root       string   `toml:"root"`
	Extensions []string `toml:"extensions"`
	Ignore     []string `toml:"ignore"`
	Public     bool     `toml:"public"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Duration is a [time.Duration] that decodes from TOML strings like "300s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, text, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks everything a run needs before any traversal starts.
func (c *Config) Validate() error {
	if c.Credentials.AccessToken == "" {
		return fmt.Errorf("%w: %w: access_token", ErrConfiguration, ErrMissingCredentials)
	}
	if c.Credentials.UserID == "" {
		return fmt.Errorf("%w: %w: user_id", ErrConfiguration, ErrMissingCredentials)
	}
	if c.Service.BaseURL == "" {
		return fmt.Errorf("%w: service.base_url is empty", ErrConfiguration)
	}
	if c.Library.Root == "" {
		return fmt.Errorf("%w: library.root is empty", ErrConfiguration)
	}

	info, err := os.Stat(c.Library.Root)
	if err != nil {
		return fmt.Errorf("%w: library.root: %v", ErrConfiguration, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: library.root %s: %w", ErrConfiguration, c.Library.Root, ErrNotDirectory)
	}

	return nil
}
