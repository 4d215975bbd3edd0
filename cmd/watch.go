package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root...]",
	Short: "Keep the folder cache fresh as directories come and go",
	Long: `Runs the change tracker in the foreground: a full scan if the cache
is stale, then incremental updates from filesystem events. Other dirhop
invocations read the same cache database, so a watch session makes the
picker start instantly.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// The daemon always logs; there is no TUI to disturb.
		log, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer log.Sync()

		s, err := openSessionWith(args, log)
		if err != nil {
			return err
		}
		defer s.close()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		folders, err := s.cache.Folders(ctx, s.roots)
		if err != nil {
			return err
		}
		// A fresh cache skips the rebuild, so make sure the watches
		// are armed either way.
		s.cache.EnsureTracking()
		log.Info("watching",
			zap.Int("folders", len(folders)),
			zap.Strings("roots", s.roots))

		<-ctx.Done()
		log.Info("shutting down")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
