package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. REELSHELF_OMDB_API_KEY
const EnvPrefix = "REELSHELF"

// Load loads the configuration from file and environment. A missing config
// file is fine when searching the default locations, since every setting can
// come from the environment; an explicit path must exist.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".reelshelf"))
		}

		// Check /etc
		v.AddConfigPath("/etc/reelshelf/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// OMDb defaults
	v.SetDefault("omdb.url", "https://www.omdbapi.com/")
	v.SetDefault("omdb.api_key", "")
	v.SetDefault("omdb.timeout", 30*time.Second)
	v.SetDefault("omdb.requests_per_second", 10.0)
	v.SetDefault("omdb.burst", 10)

	// Catalog defaults
	v.SetDefault("catalog.batch_size", 10)
	v.SetDefault("catalog.search_limit", 20)
	v.SetDefault("catalog.page_limit", 10)
	v.SetDefault("catalog.fallback_query", "movie")
	v.SetDefault("catalog.titles_file", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", false)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.OMDb.URL == "" {
		return fmt.Errorf("omdb.url is required")
	}

	if cfg.OMDb.APIKey == "" || cfg.OMDb.APIKey == "your-api-key-here" {
		return fmt.Errorf("omdb.api_key must be set to a valid API key")
	}

	if cfg.OMDb.Timeout <= 0 {
		return fmt.Errorf("omdb.timeout must be positive")
	}

	if cfg.OMDb.RequestsPerSecond < 0 {
		return fmt.Errorf("omdb.requests_per_second cannot be negative")
	}

	if cfg.OMDb.Burst < 1 {
		return fmt.Errorf("omdb.burst must be at least 1")
	}

	if cfg.Catalog.BatchSize < 1 {
		return fmt.Errorf("catalog.batch_size must be at least 1")
	}

	if cfg.Catalog.SearchLimit < 1 {
		return fmt.Errorf("catalog.search_limit must be at least 1")
	}

	if cfg.Catalog.PageLimit < 1 {
		return fmt.Errorf("catalog.page_limit must be at least 1")
	}

	if strings.TrimSpace(cfg.Catalog.FallbackQuery) == "" {
		return fmt.Errorf("catalog.fallback_query is required")
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	if cfg.Logging.File != "" && cfg.Logging.MaxSize < 1 {
		return fmt.Errorf("logging.max_size must be at least 1 when logging.file is set")
	}

	return nil
}
