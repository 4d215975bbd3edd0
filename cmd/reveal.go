package cmd

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"dirhop/internal/reveal"
)

var revealCmd = &cobra.Command{
	Use:   "reveal <path>",
	Short: "Open a folder in the system file browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		abs, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		return reveal.Open(abs)
	},
}

func init() {
	rootCmd.AddCommand(revealCmd)
}
