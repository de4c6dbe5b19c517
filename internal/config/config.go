// Package config loads server settings from defaults, an optional YAML file,
// an optional .env file and BOOKLY_* environment variables, in that order of
// increasing precedence.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the environment variable prefix for overrides.
const EnvPrefix = "BOOKLY"

// PathEnv names the variable holding the YAML file path.
const PathEnv = "BOOKLY_CONFIG"

// DefaultPath is used when PathEnv is unset.
const DefaultPath = "bookly.yaml"

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Store backends.
const (
	StoreJSON     = "json"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// csrfKeyBytes is the key length gorilla/csrf expects.
const csrfKeyBytes = 32

// Config holds every server setting.
type Config struct {
	Env                string   `yaml:"env" envconfig:"ENV"`
	Addr               string   `yaml:"addr" envconfig:"ADDR"`
	Store              string   `yaml:"store" envconfig:"STORE"`
	SQLitePath         string   `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	JSONPath           string   `yaml:"json_path" envconfig:"JSON_PATH"`
	PostgresDSN        string   `yaml:"postgres_dsn" envconfig:"POSTGRES_DSN"`
	LogLevel           string   `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat          string   `yaml:"log_format" envconfig:"LOG_FORMAT"`
	CSRFKey            string   `yaml:"csrf_key" envconfig:"CSRF_KEY"`
	HostUserID         int64    `yaml:"host_user_id" envconfig:"HOST_USER_ID"`
	SlowQueryMS        int      `yaml:"slow_query_ms" envconfig:"SLOW_QUERY_MS"`
	SlowRequestMS      int      `yaml:"slow_request_ms" envconfig:"SLOW_REQUEST_MS"`
	RateLimitPerSecond float64  `yaml:"rate_limit_per_second" envconfig:"RATE_LIMIT_PER_SECOND"`
	StaticDir          string   `yaml:"static_dir" envconfig:"STATIC_DIR"`
	TrustedOrigins     []string `yaml:"trusted_origins" envconfig:"TRUSTED_ORIGINS"`
}

// DefaultConfig returns development defaults.
func DefaultConfig() Config {
	return Config{
		Env:                EnvDevelopment,
		Addr:               ":8080",
		Store:              StoreSQLite,
		SQLitePath:         "bookly.db",
		JSONPath:           "data/db.json",
		LogLevel:           "info",
		HostUserID:         1,
		SlowQueryMS:        50,
		SlowRequestMS:      500,
		RateLimitPerSecond: 20,
		StaticDir:          "static",
	}
}

// Load builds the configuration.
// PRE: path may be empty, meaning $BOOKLY_CONFIG or bookly.yaml
// POST: Returns a normalized, validated Config
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	if err := cfg.mergeFile(path); err != nil {
		return Config{}, err
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.Normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeFile overlays YAML values onto c. A missing file is not an error.
// ${VAR} references in the file are expanded first.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Normalize lowercases enumerations, derives the log format and generates a
// throwaway CSRF key outside production.
func (c *Config) Normalize() error {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	if c.LogFormat == "" {
		c.LogFormat = "text"
		if c.IsProduction() {
			c.LogFormat = "json"
		}
	}
	if c.CSRFKey == "" && !c.IsProduction() {
		key := make([]byte, csrfKeyBytes)
		if _, err := rand.Read(key); err != nil {
			return fmt.Errorf("failed to generate csrf key: %w", err)
		}
		c.CSRFKey = hex.EncodeToString(key)
	}
	origins := c.TrustedOrigins[:0]
	for _, o := range c.TrustedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.TrustedOrigins = origins
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env)
	}
	switch c.Store {
	case StoreJSON:
		if c.JSONPath == "" {
			return errors.New("json_path is required for the json store")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("sqlite_path is required for the sqlite store")
		}
	case StorePostgres:
		if c.PostgresDSN == "" {
			return errors.New("postgres_dsn is required for the postgres store")
		}
	default:
		return fmt.Errorf("store must be json, sqlite or postgres, got %q", c.Store)
	}
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if _, err := c.CSRFKeyBytes(); err != nil {
		return err
	}
	if c.HostUserID <= 0 {
		return errors.New("host_user_id must be positive")
	}
	if c.SlowQueryMS < 0 || c.SlowRequestMS < 0 {
		return errors.New("slow thresholds cannot be negative")
	}
	if c.RateLimitPerSecond < 0 {
		return errors.New("rate_limit_per_second cannot be negative")
	}
	return nil
}

// IsProduction reports whether the server runs with production hardening.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// CSRFKeyBytes decodes the hex CSRF key.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey == "" {
		return nil, errors.New("csrf_key is required in production")
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil {
		return nil, fmt.Errorf("csrf_key must be hex: %w", err)
	}
	if len(key) != csrfKeyBytes {
		return nil, fmt.Errorf("csrf_key must decode to %d bytes, got %d", csrfKeyBytes, len(key))
	}
	return key, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// SlogHandler returns the text or JSON handler selected by LogFormat.
func (c *Config) SlogHandler(w io.Writer) slog.Handler {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// SlowQuery is the slow statement threshold.
func (c *Config) SlowQuery() time.Duration {
	return time.Duration(c.SlowQueryMS) * time.Millisecond
}

// SlowRequest is the slow request threshold.
func (c *Config) SlowRequest() time.Duration {
	return time.Duration(c.SlowRequestMS) * time.Millisecond
}
