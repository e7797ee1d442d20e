package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sdfs/internal/sdfs"
)

var catCmd = &cobra.Command{
	Use:                   "cat NAME",
	Short:                 "Print a stored file's contents to stdout",
	DisableFlagsInUseLine: true,
	Args:                  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, dev, err := openFileSystem()
		if err != nil {
			return err
		}
		defer dev.Close()

		reader, found, err := fs.OpenReadStream(args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%s: not found", args[0])
		}
		data, err := sdfs.ReadAll(reader)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
