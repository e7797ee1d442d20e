// Command sdfsctl is C12: a CLI for inspecting and manipulating an SDFS
// device directly, grounded on the teacher's cmd/w64tool subcommand
// shape and on aiSzzPL-retroio/cmd's
// "var xCmd = &cobra.Command{...}; func init() { parent.AddCommand(xCmd) }"
// registration idiom.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdfs/internal/blockdevice"
	"sdfs/internal/sdfs"
)

var (
	devicePath string
	sectorSize int
	nameLength int
	useCache   bool
)

var rootCmd = &cobra.Command{
	Use:   "sdfsctl",
	Short: "Inspect and manipulate an SDFS device",
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&devicePath, "device", "d", "sdfs.img", "Path to the SDFS device image")
	rootCmd.PersistentFlags().IntVar(&sectorSize, "sector-size", 512, "Device sector size in bytes")
	rootCmd.PersistentFlags().IntVar(&nameLength, "name-length", sdfs.DefaultNameLength, "Maximum directory entry name length")
	rootCmd.PersistentFlags().BoolVar(&useCache, "cache", true, "Use the caching directory iterator instead of rescanning for every operation")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sdfsctl:", err)
		os.Exit(1)
	}
}

// openFileSystem opens the configured device read/write and builds a
// facade over it. The caller must close the returned device when done.
func openFileSystem() (*sdfs.FileSystem, *blockdevice.FileDevice, error) {
	dev, err := blockdevice.OpenFileDevice(devicePath, sectorSize)
	if err != nil {
		return nil, nil, fmt.Errorf("open device %s: %w", devicePath, err)
	}
	if useCache {
		fs, err := sdfs.NewCachedFileSystem(dev, nil, nameLength)
		if err != nil {
			dev.Close()
			return nil, nil, err
		}
		return fs, dev, nil
	}
	return sdfs.NewRawFileSystem(dev, nil, nameLength), dev, nil
}
