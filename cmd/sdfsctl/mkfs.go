package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sdfs/internal/blockdevice"
)

var mkfsSectorCount uint32

var mkfsCmd = &cobra.Command{
	Use:                   "mkfs",
	Short:                 "Create a new, empty SDFS device image",
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := blockdevice.CreateFileDevice(devicePath, sectorSize, mkfsSectorCount)
		if err != nil {
			return fmt.Errorf("create %s: %w", devicePath, err)
		}
		defer dev.Close()
		fmt.Printf("created %s: %d sectors x %d bytes\n", devicePath, mkfsSectorCount, sectorSize)
		return nil
	},
}

func init() {
	mkfsCmd.Flags().Uint32Var(&mkfsSectorCount, "sectors", 2048, "Number of sectors to allocate")
	rootCmd.AddCommand(mkfsCmd)
}
