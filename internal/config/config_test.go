package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsWithNoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadFromYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "device_path: /dev/sdfs0\nsector_size: 1024\nstaging_dir: /var/lib/sdfs/staging\npoll_interval: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/sdfs0", cfg.DevicePath)
	require.Equal(t, 1024, cfg.SectorSize)
	require.Equal(t, "/var/lib/sdfs/staging", cfg.StagingDir)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
	// Untouched fields keep their defaults.
	require.Equal(t, Default().NameLength, cfg.NameLength)
}

func TestValidateRejectsTinySectorSize(t *testing.T) {
	cfg := Default()
	cfg.SectorSize = 8
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	err := cfg.Validate()
	require.Error(t, err)
}

func TestValidateFillsZeroValues(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())
	def := Default()
	require.Equal(t, def.DevicePath, cfg.DevicePath)
	require.Equal(t, def.SectorSize, cfg.SectorSize)
	require.Equal(t, def.SectorCount, cfg.SectorCount)
	require.Equal(t, def.NameLength, cfg.NameLength)
	require.Equal(t, def.StagingDir, cfg.StagingDir)
	require.Equal(t, def.LogPath, cfg.LogPath)
	require.Equal(t, def.SyncedLog, cfg.SyncedLog)
	require.Equal(t, def.PollInterval, cfg.PollInterval)
	require.Equal(t, def.LogLevel, cfg.LogLevel)
}
