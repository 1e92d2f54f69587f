package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "tilawa"

// Defaults for the playback section.
const (
	DefaultMaxRetries   = 3
	DefaultRetryDelay   = time.Second
	DefaultReadyTimeout = 5 * time.Second
	DefaultSettleDelay  = 50 * time.Millisecond
	DefaultVolume       = 80
	DefaultMode         = "single"
)

// Defaults for the top level and the catalog.
const (
	DefaultAudioBaseURL     = "https://everyayah.com/data"
	DefaultVoice            = "Alafasy_128kbps"
	DefaultPreviewThreshold = 5
	DefaultCatalogURL       = "https://api.alquran.cloud/v1"
	DefaultEdition          = "quran-uthmani"
)

type Config struct {
	AudioBaseURL     string   `koanf:"audio_base_url"`
	Voices           []string `koanf:"voices"` // reciters cycled with v
	DefaultVoice     string   `koanf:"default_voice"`
	PreviewThreshold *int     `koanf:"preview_threshold"` // last verse reachable anonymously, 0 disables the gate
	Icons            string   `koanf:"icons"`             // "nerd", "unicode" or "none"
	Notifications    *bool    `koanf:"notifications"`     // desktop notifications, on by default

	Playback PlaybackConfig `koanf:"playback"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Identity IdentityConfig `koanf:"identity"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`

	paths []string
}

// PlaybackConfig holds switch coordinator tuning.
type PlaybackConfig struct {
	MaxRetries     int     `koanf:"max_retries"`
	RetryBaseDelay int     `koanf:"retry_base_delay_ms"`
	ReadyTimeout   int     `koanf:"ready_timeout_ms"`
	SettleDelay    *int    `koanf:"settle_delay_ms"`
	DefaultMode    string  `koanf:"default_mode"` // "single", "continuous" or "repeat"
	Speed          float64 `koanf:"speed"`
	Volume         *int    `koanf:"volume"`
}

// Playback is PlaybackConfig with defaults applied and units resolved.
type Playback struct {
	MaxRetries     int
	RetryBaseDelay time.Duration
	ReadyTimeout   time.Duration
	SettleDelay    time.Duration
	DefaultMode    string
	Speed          float64
	Volume         int
}

// CatalogConfig points at the verse text API.
type CatalogConfig struct {
	BaseURL     string `koanf:"base_url"`
	Edition     string `koanf:"edition"`
	Translation string `koanf:"translation"` // e.g. "en.sahih", empty for none
}

// IdentityConfig configures the sign-in handoff.
type IdentityConfig struct {
	TokenFile string `koanf:"token_file"`
	LoginURL  string `koanf:"login_url"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `koanf:"level"`
	File  string `koanf:"file"`
}

// MetricsConfig enables the prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

func Load() (*Config, error) {
	return LoadFrom(getConfigPaths()...)
}

// LoadFrom reads the given files in order; later files win. Missing files
// are skipped.
func LoadFrom(paths ...string) (*Config, error) {
	k := koanf.New(".")

	var loaded []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
			loaded = append(loaded, path)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	cfg.paths = loaded

	cfg.AudioBaseURL = strings.TrimSuffix(cfg.AudioBaseURL, "/")
	cfg.Catalog.BaseURL = strings.TrimSuffix(cfg.Catalog.BaseURL, "/")
	if cfg.Identity.TokenFile != "" {
		cfg.Identity.TokenFile = expandPath(cfg.Identity.TokenFile)
	}
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}

	return cfg, nil
}

// Watch calls fn with a freshly loaded config whenever one of the files
// that were read changes. The returned function stops watching.
func (c *Config) Watch(fn func(*Config, error)) (stop func(), err error) {
	var providers []*file.File
	stop = func() {
		for _, p := range providers {
			_ = p.Unwatch()
		}
	}
	for _, path := range c.paths {
		p := file.Provider(path)
		err := p.Watch(func(_ any, err error) {
			if err != nil {
				fn(nil, err)
				return
			}
			fn(LoadFrom(c.paths...))
		})
		if err != nil {
			stop()
			return nil, err
		}
		providers = append(providers, p)
	}
	return stop, nil
}

// Paths returns the files the config was read from.
func (c *Config) Paths() []string { return append([]string(nil), c.paths...) }

func getConfigPaths() []string {
	paths := []string{}

	// 1. $XDG_CONFIG_HOME/tilawa/config.toml
	paths = append(paths, filepath.Join(xdg.ConfigHome, appName, "config.toml"))

	// 2. ./config.toml (pwd, highest priority)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetAudioBaseURL returns the clip host.
func (c *Config) GetAudioBaseURL() string {
	if c.AudioBaseURL == "" {
		return DefaultAudioBaseURL
	}
	return c.AudioBaseURL
}

// GetVoices returns the configured reciters, falling back to the default
// voice alone.
func (c *Config) GetVoices() []string {
	if len(c.Voices) == 0 {
		return []string{c.GetDefaultVoice()}
	}
	return append([]string(nil), c.Voices...)
}

// GetDefaultVoice returns the reciter used when none was remembered.
func (c *Config) GetDefaultVoice() string {
	switch {
	case c.DefaultVoice != "":
		return c.DefaultVoice
	case len(c.Voices) > 0:
		return c.Voices[0]
	default:
		return DefaultVoice
	}
}

// GetPreviewThreshold returns the gate threshold.
func (c *Config) GetPreviewThreshold() int {
	if c.PreviewThreshold == nil || *c.PreviewThreshold < 0 {
		return DefaultPreviewThreshold
	}
	return *c.PreviewThreshold
}

// GetIcons returns the icon style, defaulting to none.
func (c *Config) GetIcons() string {
	switch c.Icons {
	case "nerd", "unicode":
		return c.Icons
	default:
		return "none"
	}
}

// NotificationsEnabled reports whether desktop notifications are wanted.
func (c *Config) NotificationsEnabled() bool {
	return c.Notifications == nil || *c.Notifications
}

// HasMetrics returns true if the metrics endpoint is configured.
func (c *Config) HasMetrics() bool {
	return c.Metrics.Addr != ""
}

// GetCatalogConfig returns the catalog configuration with defaults applied.
func (c *Config) GetCatalogConfig() CatalogConfig {
	cfg := c.Catalog
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCatalogURL
	}
	if cfg.Edition == "" {
		cfg.Edition = DefaultEdition
	}
	return cfg
}

// GetPlaybackConfig returns the playback configuration with defaults applied.
func (c *Config) GetPlaybackConfig() Playback {
	raw := c.Playback
	cfg := Playback{
		MaxRetries:     raw.MaxRetries,
		RetryBaseDelay: time.Duration(raw.RetryBaseDelay) * time.Millisecond,
		ReadyTimeout:   time.Duration(raw.ReadyTimeout) * time.Millisecond,
		SettleDelay:    DefaultSettleDelay,
		DefaultMode:    strings.ToLower(strings.TrimSpace(raw.DefaultMode)),
		Speed:          raw.Speed,
		Volume:         DefaultVolume,
	}

	// Apply defaults
	if cfg.MaxRetries <= 0 || cfg.MaxRetries > 10 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = DefaultRetryDelay
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = DefaultReadyTimeout
	}
	if raw.SettleDelay != nil && *raw.SettleDelay >= 0 {
		cfg.SettleDelay = time.Duration(*raw.SettleDelay) * time.Millisecond
	}
	switch cfg.DefaultMode {
	case "single", "continuous", "repeat":
	default:
		cfg.DefaultMode = DefaultMode
	}
	if cfg.Speed < 0.25 || cfg.Speed > 3 {
		cfg.Speed = 1
	}
	if raw.Volume != nil && *raw.Volume >= 0 && *raw.Volume <= 100 {
		cfg.Volume = *raw.Volume
	}

	return cfg
}
