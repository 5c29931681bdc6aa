package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all degreetrack configuration.
type Config struct {
	Tracker    TrackerConfig    `yaml:"tracker"`
	Store      StoreConfig      `yaml:"store"`
	Server     ServerConfig     `yaml:"server"`
	Transcript TranscriptConfig `yaml:"transcript"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// TrackerConfig configures the session and its static tables.
type TrackerConfig struct {
	Major string `yaml:"major"`

	// Optional table overrides; the embedded tables are used when empty.
	CatalogPath     string `yaml:"catalog_path"`
	RegistryPath    string `yaml:"registry_path"`
	EquivalencyPath string `yaml:"equivalency_path"`

	HistoryLimit int    `yaml:"history_limit"`
	SessionKey   string `yaml:"session_key"`
}

// StoreConfig selects the persistence backend.
type StoreConfig struct {
	Backend     string `yaml:"backend"` // sqlite, redis, badger, memory
	Path        string `yaml:"path"`    // sqlite file or badger directory
	RedisAddr   string `yaml:"redis_addr"`
	RedisPrefix string `yaml:"redis_prefix"`
	Timeout     string `yaml:"timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Listen         string   `yaml:"listen"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RequestTimeout string   `yaml:"request_timeout"`
}

// TranscriptConfig configures the remote transcript feed.
type TranscriptConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

// Backends lists the supported store backends.
var Backends = []string{"sqlite", "redis", "badger", "memory"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tracker: TrackerConfig{
			Major:        "CS",
			HistoryLimit: 15,
			SessionKey:   "session",
		},
		Store: StoreConfig{
			Backend:     "sqlite",
			Path:        ".degree/degree.db",
			RedisAddr:   "localhost:6379",
			RedisPrefix: "degreetrack:",
			Timeout:     "5s",
		},
		Server: ServerConfig{
			Listen:         "127.0.0.1:8787",
			AllowedOrigins: []string{"http://localhost:5173"},
			RequestTimeout: "15s",
		},
		Transcript: TranscriptConfig{
			Timeout: "20s",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Path returns the config file location for a workspace.
func Path(workspace string) string {
	return filepath.Join(workspace, ".degree", "config.yaml")
}

// LoadEnv loads <workspace>/.env into the process environment. Variables
// already set are not overwritten. A missing file is not an error.
func LoadEnv(workspace string) error {
	path := filepath.Join(workspace, ".env")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from a YAML file. Defaults are returned when
// the file does not exist. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("DEGREE_STORE"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("DEGREE_DB"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("DEGREE_REDIS_ADDR"); v != "" {
		c.Store.RedisAddr = v
	}
	if v := os.Getenv("DEGREE_MAJOR"); v != "" {
		c.Tracker.Major = v
	}
	if v := os.Getenv("DEGREE_CATALOG"); v != "" {
		c.Tracker.CatalogPath = v
	}
	if v := os.Getenv("DEGREE_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("DEGREE_TRANSCRIPT_URL"); v != "" {
		c.Transcript.URL = v
	}
	if v := os.Getenv("DEGREE_HISTORY_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tracker.HistoryLimit = n
		}
	}
}

// ResolvePath anchors a relative path at the workspace.
func ResolvePath(workspace, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workspace, path)
}

// GetStoreTimeout returns the store operation timeout.
func (c *Config) GetStoreTimeout() time.Duration {
	return parseDuration(c.Store.Timeout, 5*time.Second)
}

// GetRequestTimeout returns the HTTP request timeout.
func (c *Config) GetRequestTimeout() time.Duration {
	return parseDuration(c.Server.RequestTimeout, 15*time.Second)
}

// GetTranscriptTimeout returns the remote transcript fetch timeout.
func (c *Config) GetTranscriptTimeout() time.Duration {
	return parseDuration(c.Transcript.Timeout, 20*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	valid := false
	for _, b := range Backends {
		if c.Store.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid store backend: %s (valid: %v)", c.Store.Backend, Backends)
	}
	if (c.Store.Backend == "sqlite" || c.Store.Backend == "badger") && c.Store.Path == "" {
		return fmt.Errorf("store path required for %s backend", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Store.RedisAddr == "" {
		return fmt.Errorf("redis address required for redis backend")
	}
	if c.Tracker.Major == "" {
		return fmt.Errorf("tracker major not configured (set tracker.major or DEGREE_MAJOR)")
	}
	if c.Tracker.HistoryLimit < 1 {
		return fmt.Errorf("tracker history_limit must be positive, got %d", c.Tracker.HistoryLimit)
	}
	return nil
}
