package config

import "time"

// Config represents the complete configuration structure
type Config struct {
	OMDb    OMDbConfig    `mapstructure:"omdb"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// OMDbConfig holds OMDb API connection details
type OMDbConfig struct {
	URL               string        `mapstructure:"url"`
	APIKey            string        `mapstructure:"api_key"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
}

// CatalogConfig contains catalog loading settings
type CatalogConfig struct {
	BatchSize     int    `mapstructure:"batch_size"`
	SearchLimit   int    `mapstructure:"search_limit"`
	PageLimit     int    `mapstructure:"page_limit"`
	FallbackQuery string `mapstructure:"fallback_query"`
	// TitlesFile overrides the curated browse list when set
	TitlesFile string `mapstructure:"titles_file"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`

	// File enables a rotated log file next to console output
	File       string `mapstructure:"file"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}
