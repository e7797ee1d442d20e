package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var fsckCmd = &cobra.Command{
	Use:                   "fsck",
	Short:                 "Walk the chain and report integrity issues (read-only)",
	DisableFlagsInUseLine: true,
	Args:                  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs, dev, err := openFileSystem()
		if err != nil {
			return err
		}
		defer dev.Close()

		report, err := fs.Fsck()
		if err != nil {
			return err
		}
		fmt.Printf("%d entries scanned\n", report.Entries)
		for _, issue := range report.Issues {
			fmt.Printf("sector %d: %s\n", issue.Sector, issue.Message)
		}
		if len(report.Issues) == 0 {
			fmt.Println("no issues found")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fsckCmd)
}
