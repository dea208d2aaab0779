// Package config provides Viper-based configuration for deckcheck.
//
// Values come from, in increasing precedence: built-in defaults, a
// .deckcheck.yaml file (searched in the working directory and
// $HOME/.config/deckcheck, or given explicitly), and DECKCHECK_*
// environment variables (DECKCHECK_STORE_PATH sets store.path).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the complete deckcheck configuration.
type Config struct {
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Store     StoreConfig     `mapstructure:"store"`
	Normalize NormalizeConfig `mapstructure:"normalize"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Output    OutputConfig    `mapstructure:"output"`
}

// CatalogConfig selects the template catalog. An empty path means the
// embedded default catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// StoreConfig locates the SQLite attempt log.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// NormalizeConfig controls the normalizer.
type NormalizeConfig struct {
	// ReclassifyFinance turns buyer tables that carry company financials
	// into sea_conglomerates slides.
	ReclassifyFinance bool `mapstructure:"reclassify_finance"`
}

// PipelineConfig controls validation runs.
type PipelineConfig struct {
	GapFill     bool `mapstructure:"gap_fill"`
	Concurrency int  `mapstructure:"concurrency"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Colors bool `mapstructure:"colors"`
}

// Load reads configuration from file and environment variables. A missing
// config file is not an error when cfgFile is empty.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".deckcheck")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/deckcheck")
	}

	v.SetEnvPrefix("DECKCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config: defaults do not unmarshal: %v", err))
	}
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.path", "")
	v.SetDefault("store.path", "deckcheck.db")

	v.SetDefault("normalize.reclassify_finance", true)

	v.SetDefault("pipeline.gap_fill", false)
	v.SetDefault("pipeline.concurrency", 4)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("output.colors", true)
}

func validate(cfg *Config) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be debug, info, warn, or error)", cfg.Logging.Level)
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", cfg.Logging.Format)
	}

	if cfg.Pipeline.Concurrency < 1 {
		return fmt.Errorf("invalid pipeline concurrency: %d (must be at least 1)", cfg.Pipeline.Concurrency)
	}

	if cfg.Store.Path == "" {
		return fmt.Errorf("store path must not be empty")
	}

	return nil
}
