// Package config provides configuration management for the clearing application.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"minex-clearing/internal/models"
)

// Config holds all application configuration.
type Config struct {
	Storage  StorageConfig            `mapstructure:"storage"`
	Logging  LoggingConfig            `mapstructure:"logging"`
	Clearing ClearingConfig           `mapstructure:"clearing"`
	Bands    map[string]BandConfig    `mapstructure:"bands"`
}

// StorageConfig holds entity store configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`    // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
}

// ClearingConfig holds clearing parameters.
type ClearingConfig struct {
	InitialMarginPct float64 `mapstructure:"initial_margin_pct"`
	AuditEnabled     bool    `mapstructure:"audit_enabled"`
	Operator         string  `mapstructure:"operator"`
}

// BandConfig is a per-metal market reference price band override.
type BandConfig struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/minex-clearing"
	}
	return filepath.Join(home, ".config", "minex-clearing")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("storage.db_path", filepath.Join(configDir, "clearing.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.console", true)
	v.SetDefault("logging.file", true)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "clearing.log"))
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 7)
	v.SetDefault("logging.max_age", 30)
	v.SetDefault("clearing.initial_margin_pct", 0.10)
	v.SetDefault("clearing.audit_enabled", true)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		// No file is fine; defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MINEX_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("MINEX_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MINEX_OPERATOR"); v != "" {
		cfg.Clearing.Operator = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Clearing.InitialMarginPct <= 0 || c.Clearing.InitialMarginPct > 0.5 {
		return fmt.Errorf("initial_margin_pct must be in (0, 0.5]")
	}

	for metal, band := range c.Bands {
		if _, err := models.ParseMetalType(metal); err != nil {
			return fmt.Errorf("bands: %w", err)
		}
		if band.Min <= 0 || band.Max <= band.Min {
			return fmt.Errorf("bands.%s: min must be positive and max greater than min", metal)
		}
	}

	return nil
}

// PriceBands merges configured band overrides over the built-in
// defaults and returns the lookup table injected into the listing
// validator.
func (c *Config) PriceBands() map[models.MetalType]models.PriceBand {
	bands := models.DefaultPriceBands()
	for metal, band := range c.Bands {
		mt, err := models.ParseMetalType(metal)
		if err != nil {
			continue // rejected by Validate already
		}
		bands[mt] = models.PriceBand{Min: band.Min, Max: band.Max}
	}
	return bands
}
