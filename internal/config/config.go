// Package config loads diskarbd's configuration.
//
// Configuration is read from a YAML file with environment-variable override:
// every key can be set as DISKARB_<SECTION>_<KEY>, e.g. DISKARB_LOGGING_LEVEL.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/ehrlich-b/go-diskarb/internal/constants"
)

// Config is the daemon configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Mount   MountConfig   `mapstructure:"mount"`
	Disks   []DiskConfig  `mapstructure:"disks"`
}

// LoggingConfig controls the daemon logger.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
}

// MountConfig controls mount-point allocation.
type MountConfig struct {
	Root string `mapstructure:"root"`
}

// DiskConfig describes a disk registered at startup. Discovery normally
// populates the registry at runtime; the static table exists for bring-up
// and integration testing.
type DiskConfig struct {
	ID         string `mapstructure:"id"`
	Device     string `mapstructure:"device"`
	Unit       string `mapstructure:"unit"`
	Filesystem string `mapstructure:"filesystem"`
	Name       string `mapstructure:"name"`
	MediaPath  string `mapstructure:"media_path"`
	Whole      bool   `mapstructure:"whole"`
	Mountable  bool   `mapstructure:"mountable"`
}

// Load reads configuration from path. An empty path loads defaults and
// environment overrides only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", constants.DefaultLogLevel)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.listen", constants.DefaultMetricsListen)
	v.SetDefault("mount.root", constants.DefaultMountRoot)

	v.SetEnvPrefix("DISKARB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	seen := make(map[string]bool, len(c.Disks))
	for i, d := range c.Disks {
		if d.ID == "" {
			return fmt.Errorf("disks[%d]: id is required", i)
		}
		if seen[d.ID] {
			return fmt.Errorf("disks[%d]: duplicate id %q", i, d.ID)
		}
		seen[d.ID] = true
		if d.Unit == "" {
			return fmt.Errorf("disks[%d]: unit is required", i)
		}
	}
	return nil
}
