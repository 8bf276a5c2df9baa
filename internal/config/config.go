// Package config provides configuration types and defaults for gridhist.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rivo/uniseg"

	"github.com/zjrosen/gridhist/internal/log"
)

// Config holds all configuration options for gridhist.
type Config struct {
	DBPath  string        `mapstructure:"db_path"`
	History HistoryConfig `mapstructure:"history"`
	Render  RenderConfig  `mapstructure:"render"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Watch   WatchConfig   `mapstructure:"watch"`
	Tracing TracingConfig `mapstructure:"tracing"`
	Log     LogConfig     `mapstructure:"log"`
}

// HistoryConfig holds defaults for newly created histories.
type HistoryConfig struct {
	AutoCompress  bool `mapstructure:"auto_compress"`
	DefaultWidth  int  `mapstructure:"default_width"`
	DefaultHeight int  `mapstructure:"default_height"`
}

// RenderConfig controls how grids are printed.
type RenderConfig struct {
	EmptyGlyph      string `mapstructure:"empty_glyph"`      // shown for cells holding ""
	ShowCoordinates bool   `mapstructure:"show_coordinates"` // print column/row rulers
	Color           bool   `mapstructure:"color"`            // highlight changed cells
}

// CacheConfig controls the in-memory cache of loaded histories.
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// WatchConfig controls the history file watcher.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	Enabled      bool    `mapstructure:"enabled"`
	Exporter     string  `mapstructure:"exporter"`      // "none", "file", "stdout", "otlp"
	FilePath     string  `mapstructure:"file_path"`     // output for the file exporter
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"` // collector for the otlp exporter
	SampleRate   float64 `mapstructure:"sample_rate"`   // 0.0-1.0
}

// LogConfig controls the debug log file.
type LogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Level   string `mapstructure:"level"` // debug, info, warn, error
}

// DefaultDataDir returns ~/.gridhist, or .gridhist if the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gridhist"
	}
	return filepath.Join(home, ".gridhist")
}

// DefaultDBPath returns the default history store location.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "histories.db")
}

// DefaultTracesFilePath returns the default trace output for the file exporter.
func DefaultTracesFilePath() string {
	return filepath.Join(DefaultDataDir(), "traces", "traces.jsonl")
}

// Validate checks the whole configuration.
func Validate(c Config) error {
	if err := ValidateHistory(c.History); err != nil {
		return err
	}
	if err := ValidateRender(c.Render); err != nil {
		return err
	}
	if err := ValidateCache(c.Cache); err != nil {
		return err
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative, got %v", c.Watch.Debounce)
	}
	if err := ValidateTracing(c.Tracing); err != nil {
		return err
	}
	if c.Log.Enabled {
		if c.Log.Path == "" {
			return fmt.Errorf("log.path is required when logging is enabled")
		}
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

// ValidateHistory checks default grid dimensions.
func ValidateHistory(h HistoryConfig) error {
	if h.DefaultWidth <= 0 || h.DefaultHeight <= 0 {
		return fmt.Errorf("history.default_width and history.default_height must be positive, got %dx%d",
			h.DefaultWidth, h.DefaultHeight)
	}
	return nil
}

// ValidateRender checks render options.
func ValidateRender(r RenderConfig) error {
	if n := uniseg.GraphemeClusterCount(r.EmptyGlyph); n != 1 {
		return fmt.Errorf("render.empty_glyph must be a single character, got %q", r.EmptyGlyph)
	}
	return nil
}

// ValidateCache checks cache durations when the cache is enabled.
func ValidateCache(c CacheConfig) error {
	if !c.Enabled {
		return nil
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %v", c.TTL)
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("cache.cleanup_interval must be positive, got %v", c.CleanupInterval)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "file", "stdout", "otlp":
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if tracing.Enabled {
		if tracing.Exporter == "file" && tracing.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DBPath: DefaultDBPath(),
		History: HistoryConfig{
			AutoCompress:  true,
			DefaultWidth:  40,
			DefaultHeight: 12,
		},
		Render: RenderConfig{
			EmptyGlyph:      ".",
			ShowCoordinates: false,
			Color:           true,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     "file",
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Log: LogConfig{
			Enabled: false,
			Path:    filepath.Join(DefaultDataDir(), "debug.log"),
			Level:   "debug",
		},
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# gridhist configuration

# SQLite database holding recorded histories (default: ~/.gridhist/histories.db)
# db_path: /path/to/histories.db

# Defaults for new histories
history:
  auto_compress: true   # Compress each diff when it is finalized
  default_width: 40     # Used by 'gridhist init' when --width is omitted
  default_height: 12    # Used by 'gridhist init' when --height is omitted

# Grid rendering
render:
  empty_glyph: "."        # Shown for empty cells
  show_coordinates: false # Print column and row rulers
  color: true             # Highlight cells changed by the current diff

# Cache of loaded histories (used by long-running commands such as 'watch' and 'view')
cache:
  enabled: true
  ttl: 10m
  cleanup_interval: 30m

# History file watcher ('gridhist watch')
watch:
  debounce: 500ms

# Tracing of store and codec operations
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.gridhist/traces/traces.jsonl
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)

# Debug log
# log:
#   enabled: false
#   path: ~/.gridhist/debug.log
#   level: debug                   # debug, info, warn, error
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
