package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:                   "rm NAME",
	Short:                 "Remove a directory entry (no error if it does not exist)",
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, dev, err := openFileSystem()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fs.RemoveFile(args[0]); err != nil {
			return fmt.Errorf("remove %s: %w", args[0], err)
		}
		fmt.Printf("removed %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
