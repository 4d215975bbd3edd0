package cmd

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root...]",
	Short: "Rebuild the folder cache now",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(args)
		if err != nil {
			return err
		}
		defer s.close()

		fmt.Printf("Scanning %d root(s)...\n", len(s.roots))
		start := time.Now()

		folders, err := s.cache.Rescan(cmd.Context(), s.roots)
		if err != nil {
			return err
		}

		color.Green("✓ %d folders cached in %s", len(folders), time.Since(start).Round(time.Millisecond))
		for _, root := range s.roots {
			color.New(color.Faint).Printf("  %s\n", root)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
