// Package config - config.go
//
// Runtime configuration for the navigator, loaded from a YAML file.
// Missing keys keep their defaults, so a config file only has to list what it
// overrides. Durations use Go syntax ("1.5s", "250ms").
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backend selects the capture/input pair.
const (
	BackendDesktop = "desktop"
	BackendBrowser = "browser"
)

// Cache modes accepted by Vision.CacheMode.
const (
	CacheSpeed    = "speed"
	CacheMemory   = "memory"
	CacheBalanced = "balanced"
)

// AssetsSubdir is the directory searched for when AssetsDir is empty.
var AssetsSubdir = filepath.Join("Assets", "Navigation")

// Config is the root configuration.
type Config struct {
	Backend    string     `yaml:"backend"`
	AssetsDir  string     `yaml:"assets_dir"`
	Log        Log        `yaml:"log"`
	Vision     Vision     `yaml:"vision"`
	Navigation Navigation `yaml:"navigation"`
	Input      Input      `yaml:"input"`
	Browser    Browser    `yaml:"browser"`
	OCR        OCR        `yaml:"ocr"`
}

// Log configures the logging sinks.
type Log struct {
	File    string `yaml:"file"`
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"`
}

// Vision configures template matching.
type Vision struct {
	CacheMode       string  `yaml:"cache_mode"`
	CacheSize       int     `yaml:"cache_size"`
	ClickThreshold  float64 `yaml:"click_threshold"`
	AnchorThreshold float64 `yaml:"anchor_threshold"`
	// Scale overrides the template scale factor. Zero derives it from the
	// screen height against a 1080p reference.
	Scale float64 `yaml:"scale"`
}

// Navigation configures engine timing and budgets.
type Navigation struct {
	SettleDelay     time.Duration `yaml:"settle_delay"`
	VerifyAttempts  int           `yaml:"verify_attempts"`
	RecoveryRetries int           `yaml:"recovery_retries"`
	RecoveryDelay   time.Duration `yaml:"recovery_delay"`
	ReconnectDelay  time.Duration `yaml:"reconnect_delay"`
	MaxHops         int           `yaml:"max_hops"`
	BattleTimeout   time.Duration `yaml:"battle_timeout"`
	HumanLike       bool          `yaml:"human_like"`
	ClearCursor     bool          `yaml:"clear_cursor"`
	StrictOverlay   bool          `yaml:"strict_overlay"`
}

// Input configures synthetic input.
type Input struct {
	ClickHold time.Duration `yaml:"click_hold"`
	KeyHold   time.Duration `yaml:"key_hold"`
}

// Browser configures the browser-hosted backend.
type Browser struct {
	URL        string `yaml:"url"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Headless   bool   `yaml:"headless"`
	CookieFile string `yaml:"cookie_file"`
}

// OCR configures the text reader.
type OCR struct {
	Language string `yaml:"language"`
	TessData string `yaml:"tessdata"`
	// MaxDistance is the edit budget when comparing read text to an expectation.
	MaxDistance int `yaml:"max_distance"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend: BackendDesktop,
		Log: Log{
			File:    "Debug.log",
			Level:   "info",
			Console: true,
		},
		Vision: Vision{
			CacheMode:       CacheBalanced,
			CacheSize:       20,
			ClickThreshold:  0.9,
			AnchorThreshold: 0.85,
		},
		Navigation: Navigation{
			SettleDelay:     1500 * time.Millisecond,
			VerifyAttempts:  3,
			RecoveryRetries: 5,
			RecoveryDelay:   time.Second,
			ReconnectDelay:  3 * time.Second,
			MaxHops:         12,
			BattleTimeout:   10 * time.Minute,
			HumanLike:       true,
		},
		Input: Input{
			ClickHold: 20 * time.Millisecond,
			KeyHold:   20 * time.Millisecond,
		},
		Browser: Browser{
			Width:      1920,
			Height:     1080,
			CookieFile: "cookies.yaml",
		},
		OCR: OCR{
			Language:    "eng",
			MaxDistance: 2,
		},
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and normalizes enum strings.
func (c *Config) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case BackendDesktop, BackendBrowser:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	c.Vision.CacheMode = strings.ToLower(strings.TrimSpace(c.Vision.CacheMode))
	switch c.Vision.CacheMode {
	case CacheSpeed, CacheMemory, CacheBalanced:
	default:
		return fmt.Errorf("unknown cache mode %q", c.Vision.CacheMode)
	}
	if c.Vision.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive, got %d", c.Vision.CacheSize)
	}
	for name, v := range map[string]float64{
		"click_threshold":  c.Vision.ClickThreshold,
		"anchor_threshold": c.Vision.AnchorThreshold,
	} {
		if v <= 0 || v > 1 {
			return fmt.Errorf("%s must be in (0, 1], got %v", name, v)
		}
	}
	if c.Vision.Scale < 0 {
		return fmt.Errorf("scale must not be negative, got %v", c.Vision.Scale)
	}

	n := c.Navigation
	if n.VerifyAttempts < 1 || n.RecoveryRetries < 1 || n.MaxHops < 1 {
		return errors.New("verify_attempts, recovery_retries and max_hops must be positive")
	}
	if n.SettleDelay < 0 || n.RecoveryDelay < 0 || n.ReconnectDelay < 0 || n.BattleTimeout < 0 {
		return errors.New("navigation delays must not be negative")
	}

	if c.OCR.MaxDistance < 0 {
		return fmt.Errorf("ocr max_distance must not be negative, got %d", c.OCR.MaxDistance)
	}

	if c.Backend == BackendBrowser && c.Browser.URL == "" {
		return errors.New("browser backend needs browser.url")
	}
	return nil
}

// ResolveAssetsDir returns AssetsDir when set, otherwise searches upward from
// each start directory for Assets/Navigation.
func (c Config) ResolveAssetsDir(starts ...string) (string, error) {
	if c.AssetsDir != "" {
		return c.AssetsDir, nil
	}
	for _, start := range starts {
		if dir, ok := FindUpward(start, AssetsSubdir); ok {
			return dir, nil
		}
	}
	return "", fmt.Errorf("config: %s not found above %s", AssetsSubdir, strings.Join(starts, ", "))
}

// FindUpward walks from start toward the filesystem root looking for rel.
func FindUpward(start, rel string) (string, bool) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, rel)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
