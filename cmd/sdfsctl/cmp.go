package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdfs/internal/sdfs"
)

var cmpCmd = &cobra.Command{
	Use:                   "cmp NAME LOCALFILE",
	Short:                 "Compare a stored file against a local file",
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, local := args[0], args[1]

		fs, dev, err := openFileSystem()
		if err != nil {
			return err
		}
		defer dev.Close()

		reader, found, err := fs.OpenReadStream(name)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: not stored on device", name)
		}
		stored, err := sdfs.ReadAll(reader)
		if err != nil {
			return err
		}

		localData, err := os.ReadFile(local)
		if err != nil {
			return fmt.Errorf("read %s: %w", local, err)
		}

		if len(stored) != len(localData) {
			return fmt.Errorf("length mismatch: stored %d bytes, local %d bytes", len(stored), len(localData))
		}
		if !bytes.Equal(stored, localData) {
			return fmt.Errorf("content mismatch")
		}
		fmt.Println("identical")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cmpCmd)
}
