package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abelbrown/shortfeed/internal/feed"
	"github.com/caarlos0/env/v11"
)

// Config is the persistent client configuration
type Config struct {
	Server   ServerConfig  `json:"server"`
	Feed     FeedConfig    `json:"feed"`
	Gestures GestureConfig `json:"gestures"`
	UI       UIConfig      `json:"ui"`
	Log      LogConfig     `json:"log"`
}

// ServerConfig locates the feed server
type ServerConfig struct {
	BaseURL     string `json:"base_url"      env:"SHORTFEED_BASE_URL"`
	TimeoutMs   int    `json:"timeout_ms"    env:"SHORTFEED_TIMEOUT_MS"`
	RateLimitMs int    `json:"rate_limit_ms" env:"SHORTFEED_RATE_LIMIT_MS"` // min gap between requests, 0 = unlimited
}

// FeedConfig holds pagination and observation tunables
type FeedConfig struct {
	BatchSize         int     `json:"batch_size"         env:"SHORTFEED_BATCH_SIZE"`
	PrefetchThreshold int     `json:"prefetch_threshold" env:"SHORTFEED_PREFETCH_THRESHOLD"`
	ActiveThreshold   float64 `json:"active_threshold"   env:"SHORTFEED_ACTIVE_THRESHOLD"`
	NearBottomRows    int     `json:"near_bottom_rows"   env:"SHORTFEED_NEAR_BOTTOM_ROWS"`
}

// GestureConfig holds the tap/hold disambiguation windows
type GestureConfig struct {
	DoubleTapMs  int `json:"double_tap_ms"  env:"SHORTFEED_DOUBLE_TAP_MS"`
	HoldMs       int `json:"hold_ms"        env:"SHORTFEED_HOLD_MS"`
	HeartBurstMs int `json:"heart_burst_ms" env:"SHORTFEED_HEART_BURST_MS"`
}

// UIConfig holds terminal preferences
type UIConfig struct {
	Theme       string `json:"theme"        env:"SHORTFEED_THEME"` // "dark" or "light"
	Mouse       bool   `json:"mouse"        env:"SHORTFEED_MOUSE"`
	CardRows    int    `json:"card_rows"    env:"SHORTFEED_CARD_ROWS"`
	MobileWidth int    `json:"mobile_width" env:"SHORTFEED_MOBILE_WIDTH"`
}

// LogConfig controls the human-readable log file
type LogConfig struct {
	Level string `json:"level" env:"SHORTFEED_LOG_LEVEL"`
	Dir   string `json:"dir"   env:"SHORTFEED_LOG_DIR"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:     "http://localhost:5000",
			TimeoutMs:   15000,
			RateLimitMs: 50,
		},
		Feed: FeedConfig{
			BatchSize:         feed.DefaultBatchSize,
			PrefetchThreshold: feed.DefaultPrefetchThreshold,
			ActiveThreshold:   feed.DefaultActiveThreshold,
			NearBottomRows:    8,
		},
		Gestures: GestureConfig{
			DoubleTapMs:  300,
			HoldMs:       350,
			HeartBurstMs: 800,
		},
		UI: UIConfig{
			Theme:       "dark",
			Mouse:       true,
			CardRows:    12,
			MobileWidth: 120,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   filepath.Join(Dir(), "logs"),
		},
	}
}

// Dir returns the data directory, $SHORTFEED_HOME or ~/.shortfeed.
func Dir() string {
	if d := os.Getenv("SHORTFEED_HOME"); d != "" {
		return d
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".shortfeed")
}

// Path returns the path to the config file
func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads config from path, or returns defaults when the file is missing
// or unreadable. Environment variables override the file either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			cfg = DefaultConfig()
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overlays SHORTFEED_* environment variables onto target. Unset
// variables leave fields untouched.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Save writes config to path
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks values that would make the feed misbehave.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("server.base_url is required")
	}
	if err := c.Timings().Validate(); err != nil {
		return fmt.Errorf("gestures: %w", err)
	}
	if c.Feed.ActiveThreshold < 0 || c.Feed.ActiveThreshold > 1 {
		return fmt.Errorf("feed.active_threshold %v out of range [0,1]", c.Feed.ActiveThreshold)
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("ui.theme must be dark or light, got %q", c.UI.Theme)
	}
	return nil
}

// Timings returns the gesture windows.
func (c *Config) Timings() feed.Timings {
	return feed.Timings{
		DoubleTap: ms(c.Gestures.DoubleTapMs),
		Hold:      ms(c.Gestures.HoldMs),
	}
}

// ControllerConfig converts the file settings into controller tunables. Zero
// values fall back to the controller defaults.
func (c *Config) ControllerConfig() feed.Config {
	return feed.Config{
		BatchSize:         c.Feed.BatchSize,
		PrefetchThreshold: c.Feed.PrefetchThreshold,
		ActiveThreshold:   c.Feed.ActiveThreshold,
		NearBottom:        c.Feed.NearBottomRows,
		HeartBurst:        ms(c.Gestures.HeartBurstMs),
		Timings:           c.Timings(),
	}
}

// Timeout returns the per-request HTTP timeout.
func (c *Config) Timeout() time.Duration { return ms(c.Server.TimeoutMs) }

// RateLimit returns the minimum gap between API requests.
func (c *Config) RateLimit() time.Duration { return ms(c.Server.RateLimitMs) }

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }
