package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config (-want +got):\n%s", diff)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults invalid: %v", err)
	}
}

func TestLoadUnparseableReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0600)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != DefaultConfig().Server.BaseURL {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Server.BaseURL = "https://pets.example"
	cfg.UI.Theme = "light"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("perm = %v, want 0600", perm)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Server.BaseURL != "https://pets.example" || got.UI.Theme != "light" {
		t.Errorf("loaded = %+v", got)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte(`{"server": {"base_url": "http://file"}, "gestures": {"double_tap_ms": 250, "hold_ms": 400}}`), 0600)

	t.Setenv("SHORTFEED_BASE_URL", "http://env:9000")
	t.Setenv("SHORTFEED_HOLD_MS", "500")
	t.Setenv("SHORTFEED_MOUSE", "false")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.BaseURL != "http://env:9000" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.Gestures.DoubleTapMs != 250 || cfg.Gestures.HoldMs != 500 {
		t.Errorf("gestures = %+v", cfg.Gestures)
	}
	if cfg.UI.Mouse {
		t.Error("SHORTFEED_MOUSE=false should disable mouse")
	}
	// Keys missing from the file keep their defaults.
	if cfg.Feed.BatchSize != feed.DefaultBatchSize {
		t.Errorf("batch size = %d", cfg.Feed.BatchSize)
	}
}

func TestEnvParseError(t *testing.T) {
	t.Setenv("SHORTFEED_BATCH_SIZE", "many")
	if _, err := Load(filepath.Join(t.TempDir(), "x.json")); err == nil {
		t.Error("bad env value should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no base url", func(c *Config) { c.Server.BaseURL = "" }},
		{"hold not longer than double tap", func(c *Config) { c.Gestures.HoldMs = 300 }},
		{"threshold out of range", func(c *Config) { c.Feed.ActiveThreshold = 1.5 }},
		{"unknown theme", func(c *Config) { c.UI.Theme = "neon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if cfg.Validate() == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestControllerConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Feed.NearBottomRows = 5
	cfg.Gestures.HeartBurstMs = 600

	got := cfg.ControllerConfig()
	want := feed.Config{
		BatchSize:         16,
		PrefetchThreshold: 3,
		ActiveThreshold:   0.6,
		NearBottom:        5,
		HeartBurst:        600 * time.Millisecond,
		Timings:           feed.Timings{DoubleTap: 300 * time.Millisecond, Hold: 350 * time.Millisecond},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("controller config (-want +got):\n%s", diff)
	}
	if cfg.Timeout() != 15*time.Second || cfg.RateLimit() != 50*time.Millisecond {
		t.Errorf("timeout = %v rate = %v", cfg.Timeout(), cfg.RateLimit())
	}
}

func TestDirHonorsEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SHORTFEED_HOME", dir)
	if Path() != filepath.Join(dir, "config.json") {
		t.Errorf("Path = %q", Path())
	}
}
