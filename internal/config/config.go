// Package config holds the sdfs-syncd daemon configuration: device
// geometry, staging directory, and poll interval. Loading follows the
// teacher's Default/Load/Validate shape, adapted from encoding/json onto
// github.com/spf13/viper so values can also come from the environment
// (spec.md's ambient config stack).
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"sdfs/internal/blockdevice"
	"sdfs/internal/sdfs"
)

// Config controls sdfs-syncd (sdfsctl takes its settings from its own
// flags and does not read it).
type Config struct {
	DevicePath   string        `mapstructure:"device_path"`
	SectorCount  uint32        `mapstructure:"sector_count"`
	SectorSize   int           `mapstructure:"sector_size"`
	NameLength   int           `mapstructure:"name_length"`
	StagingDir   string        `mapstructure:"staging_dir"`
	LogPath      string        `mapstructure:"log_path"`
	SyncedLog    string        `mapstructure:"synced_log_path"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	LogLevel     string        `mapstructure:"log_level"`
	UseCache     bool          `mapstructure:"use_cache"`
}

// Default returns the built-in configuration, overridden by whatever
// file/env Load is given.
func Default() Config {
	return Config{
		DevicePath:   "sdfs.img",
		SectorCount:  2048,
		SectorSize:   512,
		NameLength:   sdfs.DefaultNameLength,
		StagingDir:   "./staging",
		LogPath:      "sd.log",
		SyncedLog:    "sd2.log",
		PollInterval: 2 * time.Second,
		LogLevel:     "info",
		UseCache:     true,
	}
}

// Load builds a Config from, in ascending priority: Default(), an
// optional YAML file at path, and SDFS_-prefixed environment variables.
// path may be empty to skip the file.
func Load(path string) (Config, error) {
	v := viper.New()
	seedDefaults(v, Default())

	v.SetEnvPrefix("SDFS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func seedDefaults(v *viper.Viper, def Config) {
	v.SetDefault("device_path", def.DevicePath)
	v.SetDefault("sector_count", def.SectorCount)
	v.SetDefault("sector_size", def.SectorSize)
	v.SetDefault("name_length", def.NameLength)
	v.SetDefault("staging_dir", def.StagingDir)
	v.SetDefault("log_path", def.LogPath)
	v.SetDefault("synced_log_path", def.SyncedLog)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("use_cache", def.UseCache)
}

// Validate fills in any zero-valued field with its default and rejects
// combinations that can never work.
func (c *Config) Validate() error {
	def := Default()
	if c.DevicePath == "" {
		c.DevicePath = def.DevicePath
	}
	if c.SectorSize == 0 {
		c.SectorSize = def.SectorSize
	}
	if c.SectorSize < blockdevice.MinSectorSize {
		return errors.Errorf("sector_size %d below minimum %d", c.SectorSize, blockdevice.MinSectorSize)
	}
	if c.SectorCount == 0 {
		c.SectorCount = def.SectorCount
	}
	if c.NameLength <= 0 {
		c.NameLength = def.NameLength
	}
	if c.StagingDir == "" {
		c.StagingDir = def.StagingDir
	}
	if c.LogPath == "" {
		c.LogPath = def.LogPath
	}
	if c.SyncedLog == "" {
		c.SyncedLog = def.SyncedLog
	}
	if c.PollInterval <= 0 {
		c.PollInterval = def.PollInterval
	}
	switch strings.ToLower(c.LogLevel) {
	case "":
		c.LogLevel = def.LogLevel
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return errors.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
