package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Remote     RemoteConfig     `toml:"remote"`
	Auth       AuthConfig       `toml:"auth"`
	Sync       SyncConfig       `toml:"sync"`
	Thumbnails ThumbnailsConfig `toml:"thumbnails"`
}

// DatabaseConfig contains local store settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// RemoteConfig contains remote photo-library API settings.
type RemoteConfig struct {
	BaseURL        string  `toml:"base_url"`
	PageSize       int     `toml:"page_size"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	RateLimit      float64 `toml:"rate_limit"`
}

// AuthConfig contains OAuth credentials and the token store location.
//
// TokenStore selects where refresh tokens persist: "file" keeps a JSON token
// file under the cache directory, "none" keeps tokens in memory only.
type AuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	TokenURL     string `toml:"token_url"`
	TokenStore   string `toml:"token_store"`
}

// SyncConfig contains scheduler settings. The failure budget and backoff
// bounds default to the documented behavior (5 consecutive failures, 1s base
// doubled up to 300s) but are deliberately configurable.
type SyncConfig struct {
	IntervalMinutes        int `toml:"interval_minutes"`
	TokenRefreshMinutes    int `toml:"token_refresh_minutes"`
	MaxConsecutiveFailures int `toml:"max_consecutive_failures"`
	BackoffBaseSeconds     int `toml:"backoff_base_seconds"`
	BackoffCapSeconds      int `toml:"backoff_cap_seconds"`
}

// ThumbnailsConfig contains prefetcher settings.
type ThumbnailsConfig struct {
	CacheDir string `toml:"cache_dir"`
	Workers  int    `toml:"workers"`
}

// Interval returns the periodic sync interval as a [time.Duration].
func (s SyncConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// TokenRefreshInterval returns the token refresh interval as a [time.Duration].
func (s SyncConfig) TokenRefreshInterval() time.Duration {
	return time.Duration(s.TokenRefreshMinutes) * time.Minute
}

// BackoffBase returns the initial retry delay.
func (s SyncConfig) BackoffBase() time.Duration {
	return time.Duration(s.BackoffBaseSeconds) * time.Second
}

// BackoffCap returns the maximum retry delay.
func (s SyncConfig) BackoffCap() time.Duration {
	return time.Duration(s.BackoffCapSeconds) * time.Second
}

// Timeout returns the per-call remote timeout.
func (r RemoteConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// TokenFile returns the path of the persisted OAuth token when the file token
// store is selected, or an empty string otherwise.
func (c *Config) TokenFile() string {
	if c.Auth.TokenStore != "file" {
		return ""
	}
	return filepath.Join(c.Thumbnails.CacheDir, "token.json")
}

// Validate checks cross-field constraints that TOML parsing cannot express.
func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required", ErrInvalidConfig)
	}
	if c.Sync.MaxConsecutiveFailures <= 0 {
		return fmt.Errorf("%w: sync.max_consecutive_failures must be positive", ErrInvalidConfig)
	}
	if c.Thumbnails.Workers <= 0 {
		return fmt.Errorf("%w: thumbnails.workers must be positive", ErrInvalidConfig)
	}
	switch c.Auth.TokenStore {
	case "", "file", "none":
	default:
		return fmt.Errorf("%w: auth.token_store must be \"file\" or \"none\"", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
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

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
