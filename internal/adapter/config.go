package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	YouTube YouTubeConfig `mapstructure:"youtube"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Player  PlayerConfig  `mapstructure:"player"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// YouTubeConfig holds Data API configuration
type YouTubeConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	Channels          []string      `mapstructure:"channels"` // monitored channel IDs
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	BaseURL           string        `mapstructure:"base_url"`
	OEmbedURL         string        `mapstructure:"oembed_url"`
}

// StorageConfig holds file locations
type StorageConfig struct {
	StreamsFile string `mapstructure:"streams_file"`
	CacheDir    string `mapstructure:"cache_dir"` // empty for memory-only cache
}

// ServerConfig holds web server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// RefreshConfig holds playlist refresh configuration
type RefreshConfig struct {
	StaleAfter time.Duration `mapstructure:"stale_after"`
}

// PlayerConfig holds media player configuration
type PlayerConfig struct {
	Command string   `mapstructure:"command"`
	Args    []string `mapstructure:"args"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	GridSize int `mapstructure:"grid_size"` // 1, 4 or 9 tiles
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		YouTube: YouTubeConfig{
			Channels:          []string{},
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
			BaseURL:           "https://www.googleapis.com/youtube/v3",
			OEmbedURL:         "https://www.youtube.com/oembed",
		},
		Storage: StorageConfig{
			StreamsFile: filepath.Join(defaultDataPath(), "streams.json"),
			CacheDir:    defaultCachePath(),
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Refresh: RefreshConfig{
			StaleAfter: 5 * time.Minute,
		},
		Player: PlayerConfig{
			Command: "",
			Args:    []string{},
		},
		UI: UIConfig{
			GridSize: 4,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "multiview.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "multiview")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "multiview")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "multiview")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "multiview")
	}
}

// defaultCachePath returns the default cache directory for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "multiview", "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "multiview", "cache")
	}
}

// DefaultConfigFile returns the path SaveConfig writes to when none is given
func DefaultConfigFile() string {
	return filepath.Join(defaultConfigPath(), "config.yaml")
}

func newViper(cfg *Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("youtube.api_key", cfg.YouTube.APIKey)
	v.SetDefault("youtube.channels", cfg.YouTube.Channels)
	v.SetDefault("youtube.timeout", cfg.YouTube.Timeout)
	v.SetDefault("youtube.requests_per_second", cfg.YouTube.RequestsPerSecond)
	v.SetDefault("youtube.base_url", cfg.YouTube.BaseURL)
	v.SetDefault("youtube.oembed_url", cfg.YouTube.OEmbedURL)
	v.SetDefault("storage.streams_file", cfg.Storage.StreamsFile)
	v.SetDefault("storage.cache_dir", cfg.Storage.CacheDir)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("refresh.stale_after", cfg.Refresh.StaleAfter)
	v.SetDefault("player.command", cfg.Player.Command)
	v.SetDefault("player.args", cfg.Player.Args)
	v.SetDefault("ui.grid_size", cfg.UI.GridSize)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)

	// Environment variable overrides: MULTIVIEW_YOUTUBE_API_KEY etc.
	v.SetEnvPrefix("MULTIVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Deployments predating the prefix export these names directly
	v.BindEnv("youtube.api_key", "MULTIVIEW_YOUTUBE_API_KEY", "YOUTUBE_API_KEY")
	v.BindEnv("youtube.channels", "MULTIVIEW_YOUTUBE_CHANNELS", "YOUTUBE_CHANNEL_IDS")

	return v
}

// LoadConfig loads configuration from file and environment.
// An empty configFile searches the user config dir and the working directory.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	v := newViper(cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.YouTube.Channels = cleanList(cfg.YouTube.Channels)
	if cfg.UI.GridSize != 1 && cfg.UI.GridSize != 4 && cfg.UI.GridSize != 9 {
		cfg.UI.GridSize = 4
	}
	cfg.Storage.StreamsFile = expandHome(cfg.Storage.StreamsFile)
	cfg.Storage.CacheDir = expandHome(cfg.Storage.CacheDir)

	return cfg, nil
}

// cleanList splits comma-joined entries and drops blanks
func cleanList(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// SaveConfig writes cfg as YAML. An empty configFile uses DefaultConfigFile.
func SaveConfig(cfg *Config, configFile string) error {
	if configFile == "" {
		configFile = DefaultConfigFile()
	}

	if err := os.MkdirAll(filepath.Dir(configFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("youtube.api_key", cfg.YouTube.APIKey)
	v.Set("youtube.channels", cfg.YouTube.Channels)
	v.Set("youtube.timeout", cfg.YouTube.Timeout.String())
	v.Set("youtube.requests_per_second", cfg.YouTube.RequestsPerSecond)
	v.Set("youtube.base_url", cfg.YouTube.BaseURL)
	v.Set("youtube.oembed_url", cfg.YouTube.OEmbedURL)

	v.Set("storage.streams_file", cfg.Storage.StreamsFile)
	v.Set("storage.cache_dir", cfg.Storage.CacheDir)

	v.Set("server.addr", cfg.Server.Addr)
	v.Set("refresh.stale_after", cfg.Refresh.StaleAfter.String())

	v.Set("player.command", cfg.Player.Command)
	v.Set("player.args", cfg.Player.Args)

	v.Set("ui.grid_size", cfg.UI.GridSize)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// HasAPIKey returns true if a YouTube API key is configured
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.YouTube.APIKey) != ""
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
