package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DEGREE_STORE", "DEGREE_DB", "DEGREE_REDIS_ADDR", "DEGREE_MAJOR",
		"DEGREE_CATALOG", "DEGREE_LISTEN", "DEGREE_TRANSCRIPT_URL", "DEGREE_HISTORY_LIMIT",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Tracker.Major != "CS" {
		t.Errorf("expected Major=CS, got %s", cfg.Tracker.Major)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected Backend=sqlite, got %s", cfg.Store.Backend)
	}
	if cfg.Tracker.HistoryLimit != 15 {
		t.Errorf("expected HistoryLimit=15, got %d", cfg.Tracker.HistoryLimit)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".degree", "config.yaml")

	cfg := DefaultConfig()
	cfg.Tracker.Major = "EE"
	cfg.Store.Backend = "badger"
	cfg.Store.Path = "data/badger"
	cfg.Logging.DebugMode = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Tracker.Major != "EE" {
		t.Errorf("expected Major=EE, got %s", loaded.Tracker.Major)
	}
	if loaded.Store.Backend != "badger" || loaded.Store.Path != "data/badger" {
		t.Errorf("store = %+v", loaded.Store)
	}
	if !loaded.Logging.DebugMode {
		t.Error("expected debug mode to round-trip")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" {
		t.Errorf("expected defaults, got backend %s", cfg.Store.Backend)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("tracker: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEGREE_STORE", "redis")
	t.Setenv("DEGREE_REDIS_ADDR", "redis:6380")
	t.Setenv("DEGREE_MAJOR", "MechE")
	t.Setenv("DEGREE_LISTEN", ":9000")
	t.Setenv("DEGREE_HISTORY_LIMIT", "4")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6380", cfg.Store.RedisAddr)
	assert.Equal(t, "MechE", cfg.Tracker.Major)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, 4, cfg.Tracker.HistoryLimit)
}

func TestEnvOverridesIgnoreBadHistoryLimit(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEGREE_HISTORY_LIMIT", "lots")
	cfg := DefaultConfig()
	cfg.applyEnvOverrides()
	assert.Equal(t, 15, cfg.Tracker.HistoryLimit)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("DEGREE_CATALOG")
	ws := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(ws, ".env"), []byte("DEGREE_CATALOG=/tmp/catalog.json\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("DEGREE_CATALOG") })

	require.NoError(t, LoadEnv(ws))
	cfg, err := Load(Path(ws))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/catalog.json", cfg.Tracker.CatalogPath)

	assert.NoError(t, LoadEnv(t.TempDir()), "missing .env is not an error")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"memory", func(c *Config) { c.Store.Backend = "memory"; c.Store.Path = "" }, false},
		{"unknown backend", func(c *Config) { c.Store.Backend = "postgres" }, true},
		{"sqlite without path", func(c *Config) { c.Store.Path = "" }, true},
		{"redis without addr", func(c *Config) { c.Store.Backend = "redis"; c.Store.RedisAddr = "" }, true},
		{"no major", func(c *Config) { c.Tracker.Major = "" }, true},
		{"zero history", func(c *Config) { c.Tracker.HistoryLimit = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTimeouts(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 5*time.Second, cfg.GetStoreTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetRequestTimeout())

	cfg.Transcript.Timeout = "garbage"
	assert.Equal(t, 20*time.Second, cfg.GetTranscriptTimeout())
	cfg.Transcript.Timeout = "3s"
	assert.Equal(t, 3*time.Second, cfg.GetTranscriptTimeout())
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("/ws", ".degree/degree.db"), ResolvePath("/ws", ".degree/degree.db"))
	assert.Equal(t, "/abs/db", ResolvePath("/ws", "/abs/db"))
	assert.Equal(t, "", ResolvePath("/ws", ""))
}

func TestLoggingConfigCategories(t *testing.T) {
	lc := LoggingConfig{DebugMode: false}
	if lc.IsCategoryEnabled("engine") {
		t.Error("debug off disables every category")
	}
	lc = LoggingConfig{DebugMode: true, Categories: map[string]bool{"store": false}}
	if lc.IsCategoryEnabled("store") {
		t.Error("store should be disabled")
	}
	if !lc.IsCategoryEnabled("engine") {
		t.Error("unlisted categories default to enabled")
	}
	s := lc.Settings()
	if !s.DebugMode || s.Categories["store"] {
		t.Errorf("settings = %+v", s)
	}
}
