// Command sdfs-syncd is C11: a daemon that polls a staging directory's
// sync log and replays it onto an SDFS device, grounded on the
// flag-parse -> config.Load -> validate -> run shape of the teacher's
// cmd/wicos64-server/main.go, adapted from the standard flag package to
// cobra.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sdfs/internal/blockdevice"
	"sdfs/internal/config"
	"sdfs/internal/journal"
	"sdfs/internal/sdfs"
	"sdfs/internal/sdfslog"
)

var (
	configPath string
	once       bool
)

var rootCmd = &cobra.Command{
	Use:   "sdfs-syncd",
	Short: "Replay a staging directory's sync log onto an SDFS device",
	Long: `sdfs-syncd watches a staging directory for a sync log (sd.log by
default) listing pending "add NAME" / "remove NAME" lines, applies each
entry to an SDFS device, and rewrites the log (sd2.log) with every add
resolved to a synced timestamp.`,
	RunE: run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.Flags().BoolVar(&once, "once", false, "Process the sync log once and exit instead of polling")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	base := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	base.SetLevel(level)
	log := sdfslog.NewLogrus(base)

	dev, err := openOrCreateDevice(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	fs, err := buildFileSystem(dev, log, cfg)
	if err != nil {
		return err
	}

	base.WithFields(logrus.Fields{
		"device":      cfg.DevicePath,
		"sectors":     cfg.SectorCount,
		"sector_size": cfg.SectorSize,
		"staging_dir": cfg.StagingDir,
		"cached":      cfg.UseCache,
	}).Info("sdfs-syncd starting")

	process := func() {
		if err := processOnce(fs, cfg, log); err != nil {
			base.Errorf("sync pass failed: %v", err)
		}
	}

	if once {
		process()
		return nil
	}

	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	process()
	for range ticker.C {
		process()
	}
	return nil
}

func openOrCreateDevice(cfg config.Config) (*blockdevice.FileDevice, error) {
	if _, err := os.Stat(cfg.DevicePath); os.IsNotExist(err) {
		return blockdevice.CreateFileDevice(cfg.DevicePath, cfg.SectorSize, cfg.SectorCount)
	}
	return blockdevice.OpenFileDevice(cfg.DevicePath, cfg.SectorSize)
}

func buildFileSystem(dev blockdevice.Device, log sdfslog.Logger, cfg config.Config) (*sdfs.FileSystem, error) {
	if cfg.UseCache {
		return sdfs.NewCachedFileSystem(dev, log, cfg.NameLength)
	}
	return sdfs.NewRawFileSystem(dev, log, cfg.NameLength), nil
}

func processOnce(fs *sdfs.FileSystem, cfg config.Config, log sdfslog.Logger) error {
	logPath := filepath.Join(cfg.StagingDir, cfg.LogPath)
	f, err := os.Open(logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	records, err := journal.ParseLog(f)
	f.Close()
	if err != nil {
		return err
	}

	syncedPath := filepath.Join(cfg.StagingDir, cfg.SyncedLog)
	out, err := os.Create(syncedPath)
	if err != nil {
		return err
	}
	defer out.Close()

	rw := journal.NewRewriter(fs, cfg.StagingDir, time.Now, log)
	return rw.Process(records, out)
}
