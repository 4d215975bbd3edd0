package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dirhop/internal/match"
)

var flagLimit int

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "Print matching folders, one absolute path per line",
	Long: `Non-interactive filtering for scripts. With no query every cached
folder is printed. Matching rules are the same as the picker's:
substring on the leaf name or relative path, plus ordered segment
matching for queries like "back/api".`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}

		s, err := openSession(nil)
		if err != nil {
			return err
		}
		defer s.close()

		folders, err := s.cache.Folders(cmd.Context(), s.roots)
		if err != nil {
			return err
		}

		results := match.Filter(folders, query)
		if flagLimit > 0 && len(results) > flagLimit {
			results = results[:flagLimit]
		}
		for _, r := range results {
			fmt.Println(r.Detail)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().IntVar(&flagLimit, "limit", 0, "stop after this many matches (0 = all)")
	rootCmd.AddCommand(listCmd)
}
