package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:                   "ls",
	Short:                 "List the directory entries on the device",
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, dev, err := openFileSystem()
		if err != nil {
			return err
		}
		defer dev.Close()

		entries, err := fs.List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-40s %10d bytes  (allocated %d, sector %d)\n", e.Name, e.Length, e.Allocated, e.Sector)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
