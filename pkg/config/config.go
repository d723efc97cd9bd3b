// Package config loads the chatbot server configuration from defaults, an
// optional TOML file, and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultListenAddr         = ":8080"
	DefaultAPIURL             = "https://generativelanguage.googleapis.com/v1beta/models/gemini-1.5-flash:generateContent"
	DefaultTimeout            = 5 * time.Minute
	DefaultMaxMessageLength   = 1000
	DefaultMaxSessionIDLength = 100
	DefaultRecentLimit        = 50
	DefaultAllowOrigins       = "*"
)

// Environment variables that override file values.
const (
	EnvAPIKey     = "GEMINI_API_KEY"
	EnvAPIURL     = "GEMINI_API_URL"
	EnvListenAddr = "CHATBOT_LISTEN"
	EnvSQLitePath = "CHATBOT_SQLITE_PATH"
)

// Duration is a time.Duration that decodes from a TOML string like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the chatbot server configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen"`

	// Debug enables debug logging.
	Debug bool `toml:"debug"`

	// LogFormat is "console" (default) or "json".
	LogFormat string `toml:"log_format"`

	Gemini  GeminiConfig  `toml:"gemini"`
	Storage StorageConfig `toml:"storage"`
	Limits  LimitsConfig  `toml:"limits"`
	CORS    CORSConfig    `toml:"cors"`
}

// GeminiConfig configures the completion provider.
type GeminiConfig struct {
	APIKey  string   `toml:"api_key"`
	APIURL  string   `toml:"api_url"`
	Timeout Duration `toml:"timeout"`
}

// StorageConfig selects the storage driver.
type StorageConfig struct {
	// SQLitePath is the path to the SQLite database file.
	// Empty selects the in-memory driver.
	SQLitePath string `toml:"sqlite_path"`
}

// LimitsConfig bounds request input.
type LimitsConfig struct {
	MaxMessageLength   int `toml:"max_message_length"`
	MaxSessionIDLength int `toml:"max_session_id_length"`
	DefaultRecentLimit int `toml:"default_recent_limit"`
}

// CORSConfig configures cross-origin access.
type CORSConfig struct {
	AllowOrigins string `toml:"allow_origins"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr: DefaultListenAddr,
		LogFormat:  "console",
		Gemini: GeminiConfig{
			APIURL:  DefaultAPIURL,
			Timeout: Duration{DefaultTimeout},
		},
		Limits: LimitsConfig{
			MaxMessageLength:   DefaultMaxMessageLength,
			MaxSessionIDLength: DefaultMaxSessionIDLength,
			DefaultRecentLimit: DefaultRecentLimit,
		},
		CORS: CORSConfig{
			AllowOrigins: DefaultAllowOrigins,
		},
	}
}

// Load builds a Config from defaults, the TOML file at path (skipped when
// path is empty), and environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		c.Gemini.APIURL = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv(EnvSQLitePath); v != "" {
		c.Storage.SQLitePath = v
	}
}

// Validate checks the configuration for values the server cannot run with.
// A missing API key is allowed.
func (c *Config) Validate() error {
	var errs []error

	if c.ListenAddr == "" {
		errs = append(errs, errors.New("listen address is required"))
	}
	if c.Gemini.APIURL == "" {
		errs = append(errs, errors.New("gemini.api_url is required"))
	}
	if c.Gemini.Timeout.Duration < 0 {
		errs = append(errs, errors.New("gemini.timeout must not be negative"))
	}
	if c.Limits.MaxMessageLength <= 0 {
		errs = append(errs, errors.New("limits.max_message_length must be positive"))
	}
	if c.Limits.MaxSessionIDLength <= 0 {
		errs = append(errs, errors.New("limits.max_session_id_length must be positive"))
	}
	if c.Limits.DefaultRecentLimit <= 0 {
		errs = append(errs, errors.New("limits.default_recent_limit must be positive"))
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be console or json, got %q", c.LogFormat))
	}

	return errors.Join(errs...)
}
