package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dirhop/internal/cache"
	"dirhop/internal/config"
	"dirhop/internal/store"
)

var (
	flagConfig  string
	flagDB      string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "dirhop [root...]",
	Short: "Jump to a folder by typing a fragment of its name or path",
	Long: `dirhop scans your workspace roots once, caches the folder tree, and
lets you filter it live. The selected path is printed to stdout so a
shell wrapper can cd into it:

    d() { cd "$(dirhop "$@")"; }`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPicker(args)
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config path (default ~/.dirhop/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "cache database path (default ~/.dirhop/cache.db)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging to stderr")
}

// newLogger builds the CLI logger. Quiet by default: TUI output and
// stdout piping both break under chatty logs.
func newLogger() *zap.Logger {
	if !flagVerbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// session bundles what every command needs: resolved config and roots,
// the open store, and a loaded cache.
type session struct {
	cfg   *config.Config
	roots []string
	store *store.SQLiteStore
	cache *cache.Cache
	log   *zap.Logger
}

// openSession wires config, store, and cache together. args are optional
// root overrides from the command line.
func openSession(args []string) (*session, error) {
	return openSessionWith(args, newLogger())
}

func openSessionWith(args []string, log *zap.Logger) (*session, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		cfgPath = filepath.Join(config.DefaultDir(), "config.yaml")
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	roots, err := cfg.ResolveRoots(args)
	if err != nil {
		return nil, err
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("no roots to scan: pass one as an argument or set roots in %s", cfgPath)
	}

	dbPath := flagDB
	if dbPath == "" {
		dbPath = filepath.Join(config.DefaultDir(), "cache.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	c := cache.New(st, cfg.ScanOptions(),
		cache.WithLogger(log),
		cache.WithLockFile(dbPath+".lock"),
	)
	if err := c.Load(); err != nil {
		st.Close()
		return nil, fmt.Errorf("load cache: %w", err)
	}

	return &session{cfg: cfg, roots: roots, store: st, cache: c, log: log}, nil
}

func (s *session) close() {
	s.cache.Close()
	s.store.Close()
}
