package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:                   "put LOCALFILE [NAME]",
	Short:                 "Write a local file into the device under NAME (default: local file's base name)",
	DisableFlagsInUseLine: true,
	Args:                  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local := args[0]
		name := filepath.Base(local)
		if len(args) == 2 {
			name = args[1]
		}

		data, err := os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("read %s: %w", local, err)
		}

		fs, dev, err := openFileSystem()
		if err != nil {
			return err
		}
		defer dev.Close()

		if err := fs.WriteFile(name, data); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("wrote %s (%d bytes) as %q\n", local, len(data), name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(putCmd)
}
