/*
 * config.go, part of confsieve.
 *
 * Copyright 2024 The confsieve authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package config loads the settings of confsieve from an optional YAML file and
// CONFSIEVE_* environment variables, fills in defaults and validates them.
package config

import (
	"fmt"
	"strings"

	"github.com/confsieve/confsieve/dedup"
	"github.com/confsieve/confsieve/ensemble"
	"github.com/confsieve/confsieve/superpose"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of all settings.
const envPrefix = "CONFSIEVE"

// Config holds every setting.
type Config struct {
	Thresholds dedup.Thresholds `mapstructure:"thresholds"`
	Workers    int              `mapstructure:"workers"`
	MaxMatches int              `mapstructure:"max_matches"`
	EnergyTag  string           `mapstructure:"energy_tag"`
	Prefix     string           `mapstructure:"prefix"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Log        LogConfig        `mapstructure:"log"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Align      AlignConfig      `mapstructure:"align"`
}

// CacheConfig sets the persistent RMSD cache. No cache is used if Path is empty.
type CacheConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig sets the logger built by NewLogger.
type LogConfig struct {
	Level  string `mapstructure:"level"`  //debug, info, warn, error
	Format string `mapstructure:"format"` //json or console
}

// MetricsConfig sets whether prometheus metrics are collected and dumped at the end of a run.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// AlignConfig holds the settings of the align command.
type AlignConfig struct {
	Core         []int   `mapstructure:"core"`
	NoHydrogens  bool    `mapstructure:"no_hydrogens"`
	LessThanRMSD float64 `mapstructure:"less_than_rmsd"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Thresholds: dedup.DefaultThresholds(),
		Workers:    1,
		MaxMatches: superpose.DefaultMaxMatches,
		EnergyTag:  ensemble.DefaultEnergyTag,
		Prefix:     "conf",
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

// newViper builds a Viper instance reading YAML, with the CONFSIEVE_ env prefix and
// "." mapped to "_", so thresholds.energy is read from CONFSIEVE_THRESHOLDS_ENERGY.
// Every key gets its default, so that environment variables are seen when unmarshalling.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	d := Default()
	v.SetDefault("thresholds.similarity", d.Thresholds.Similarity)
	v.SetDefault("thresholds.energy", d.Thresholds.Energy)
	v.SetDefault("thresholds.distance", d.Thresholds.Distance)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("max_matches", d.MaxMatches)
	v.SetDefault("energy_tag", d.EnergyTag)
	v.SetDefault("prefix", d.Prefix)
	v.SetDefault("cache.path", "")
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("align.no_hydrogens", false)
	v.SetDefault("align.less_than_rmsd", 0.0)
	return v
}

// Load reads the YAML file at path, if path is not empty, merges the CONFSIEVE_*
// environment variables, applies defaults for unset fields and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}

// ApplyDefaults fills the zero-valued fields of cfg with their defaults.
func ApplyDefaults(cfg *Config) {
	d := Default()
	if cfg.Thresholds.Similarity == 0 {
		cfg.Thresholds.Similarity = d.Thresholds.Similarity
	}
	if cfg.Thresholds.Energy == 0 {
		cfg.Thresholds.Energy = d.Thresholds.Energy
	}
	if cfg.Thresholds.Distance == 0 {
		cfg.Thresholds.Distance = d.Thresholds.Distance
	}
	if cfg.Workers == 0 {
		cfg.Workers = d.Workers
	}
	if cfg.MaxMatches == 0 {
		cfg.MaxMatches = d.MaxMatches
	}
	if cfg.EnergyTag == "" {
		cfg.EnergyTag = d.EnergyTag
	}
	if cfg.Prefix == "" {
		cfg.Prefix = d.Prefix
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = d.Log.Format
	}
}

// Validate returns an error describing the first invalid setting, if any.
func (c *Config) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.MaxMatches < 1 {
		return fmt.Errorf("max_matches must be at least 1, got %d", c.MaxMatches)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	if c.Align.LessThanRMSD < 0 {
		return fmt.Errorf("align.less_than_rmsd can't be negative")
	}
	for _, i := range c.Align.Core {
		if i < 0 {
			return fmt.Errorf("negative atom index %d in align.core", i)
		}
	}
	return nil
}
