package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete Kartta configuration.
type Config struct {
	TraceStore TraceStoreConfig `mapstructure:"trace_store"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Output     OutputConfig     `mapstructure:"output"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// TraceStoreConfig points at the external log collector that serves traces
// by correlation ID.
type TraceStoreConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// DiscoveryConfig controls a discovery run.
type DiscoveryConfig struct {
	JourneysFile string `mapstructure:"journeys_file"`
	Workers      int    `mapstructure:"workers"`
}

// StorageConfig contains history storage configuration.
type StorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// OutputConfig contains output formatting configuration.
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	Pretty  bool   `mapstructure:"pretty"`
	NoColor bool   `mapstructure:"no_color"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		TraceStore: TraceStoreConfig{
			URL:     "http://localhost:8088",
			Timeout: 10 * time.Second,
		},
		Discovery: DiscoveryConfig{
			JourneysFile: "correlation_ids.json",
			Workers:      4,
		},
		Storage: StorageConfig{
			BaseDir: "~/.kartta",
		},
		Output: OutputConfig{
			Format:  "text",
			Pretty:  true,
			NoColor: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from file, environment and defaults.
func Load() (*Config, error) {
	config := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".kartta"))
	}
	viper.AddConfigPath(".")

	viper.SetEnvPrefix("KARTTA")
	viper.AutomaticEnv()

	viper.BindEnv("trace_store.url", "KARTTA_TRACE_STORE_URL")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Missing config file is fine, defaults apply.
	}

	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.TraceStore.URL == "" {
		return fmt.Errorf("trace store URL is required")
	}
	if c.TraceStore.Timeout <= 0 {
		return fmt.Errorf("trace store timeout must be positive")
	}
	if c.Storage.BaseDir == "" {
		return fmt.Errorf("storage base dir is required")
	}
	if c.Discovery.Workers < 1 {
		return fmt.Errorf("discovery workers must be at least 1")
	}
	return nil
}

// ExpandPaths expands home directory paths in place.
func (c *Config) ExpandPaths() error {
	var err error
	c.Storage.BaseDir, err = expandPath(c.Storage.BaseDir)
	if err != nil {
		return fmt.Errorf("failed to expand storage base dir: %w", err)
	}
	c.Discovery.JourneysFile, err = expandPath(c.Discovery.JourneysFile)
	if err != nil {
		return fmt.Errorf("failed to expand journeys file path: %w", err)
	}
	return nil
}

// expandPath expands ~ to the home directory.
func expandPath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path, err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}
