package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/gridhist/internal/config"
	"github.com/zjrosen/gridhist/internal/log"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so the
	// OSC 11 reply cannot race the viewer's input loop.
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "gridhist",
	Short: "Record, undo and replay edits to a grid",
	Long: `gridhist keeps an undoable history of edits made to a grid of cells.

Each edit batch becomes a diff. Diffs can be reverted and re-applied, exported
as YAML documents, re-imported (the history is validated on the way in) and
stepped through interactively.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/gridhist/config.yaml)")
	rootCmd.PersistentFlags().String("db", "",
		"history database (default: ~/.gridhist/histories.db)")

	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db"))
}

func initConfig() {
	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("GRIDHIST")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .gridhist/config.yaml (current directory)
		// 2. ~/.config/gridhist/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			viper.AddConfigPath(userConfigDir())
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// First run: write a commented default so users can discover the keys.
			defaultPath := filepath.Join(userConfigDir(), "config.yaml")
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
		} else {
			log.Warn(log.CatConfig, "Failed to read config", "error", err)
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setDefaults registers every config key with its default value.
func setDefaults(v *viper.Viper) {
	defaults := config.Defaults()
	v.SetDefault("db_path", defaults.DBPath)
	v.SetDefault("history.auto_compress", defaults.History.AutoCompress)
	v.SetDefault("history.default_width", defaults.History.DefaultWidth)
	v.SetDefault("history.default_height", defaults.History.DefaultHeight)
	v.SetDefault("render.empty_glyph", defaults.Render.EmptyGlyph)
	v.SetDefault("render.show_coordinates", defaults.Render.ShowCoordinates)
	v.SetDefault("render.color", defaults.Render.Color)
	v.SetDefault("cache.enabled", defaults.Cache.Enabled)
	v.SetDefault("cache.ttl", defaults.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", defaults.Cache.CleanupInterval)
	v.SetDefault("watch.debounce", defaults.Watch.Debounce)
	v.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	v.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	v.SetDefault("tracing.file_path", defaults.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)
	v.SetDefault("log.enabled", defaults.Log.Enabled)
	v.SetDefault("log.path", defaults.Log.Path)
	v.SetDefault("log.level", defaults.Log.Level)
}

const localConfigPath = ".gridhist/config.yaml"

func userConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gridhist"
	}
	return filepath.Join(home, ".config", "gridhist")
}

// configFileUsed returns the file viper loaded, or where a new one would go.
func configFileUsed() string {
	if path := viper.ConfigFileUsed(); path != "" {
		return path
	}
	return filepath.Join(userConfigDir(), "config.yaml")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
