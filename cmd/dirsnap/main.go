package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dirsnap/dirsnap/internal/config"
	"github.com/dirsnap/dirsnap/internal/sync"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	cfgFile   string
	logLevel  string
	logFormat string

	// Sync flags
	stateFile      string
	targetDir      string
	excludes       []string
	algo           string
	noWrite        bool
	followSymlinks bool
	dryRun         bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dirsnap",
	Short: "Index a directory tree by content hash and track changes between runs",
	Long: `dirsnap indexes a directory tree by content hash, keeps the index in a
snapshot file, and on each run prints the files that were added, updated or
deleted since the previous snapshot.

With a target directory configured, the classified changes are mirrored
there: added and updated files are copied with their permissions and
timestamps, deleted files are removed.`,
	SilenceUsage: true,
}

var syncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: "Index a directory, report changes, optionally mirror them",
	Long: `Sync indexes the directory, compares the result with the previous snapshot,
and prints one line per change (A: added, U: updated, D: deleted).

The new snapshot replaces the old one unless --no-write is given. With
--target the changes are also applied to a mirror directory before the
snapshot is written.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSync,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("dirsnap %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (optional, flags override its values)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")

	// Sync command flags
	syncCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path of the snapshot file")
	syncCmd.Flags().StringVar(&targetDir, "target", "", "mirror changes into this directory")
	syncCmd.Flags().StringArrayVarP(&excludes, "exclude", "x", nil, "glob pattern to exclude (repeatable; a bare directory name prunes that directory)")
	syncCmd.Flags().StringVar(&algo, "algo", "", "hash algorithm (blake3, sha256, xxh64)")
	syncCmd.Flags().BoolVar(&noWrite, "no-write", false, "do not write the new snapshot")
	syncCmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "follow symbolic links during traversal")
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report changes without mirroring or writing the snapshot")

	// Add commands
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(versionCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx, cancel := setupSignalHandler()
	defer cancel()

	logger := setupLogger()

	cfg, err := loadConfig(logger, cmd, args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	engine := sync.NewEngine(cfg, logger, os.Stdout, dryRun)
	if err := engine.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		return err
	}

	return nil
}

func setupLogger() *slog.Logger {
	// Parse log level
	var level slog.Level
	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	// Diagnostics go to stderr; stdout carries the change report.
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if logFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}

// loadConfig builds the run configuration: the optional config file first,
// then flag and positional-argument overrides, then defaults + validation.
func loadConfig(logger *slog.Logger, cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := &config.Config{}

	if cfgFile != "" {
		logger.Info("loading configuration", "path", cfgFile)
		loaded, err := config.Load(cfgFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if len(args) == 1 {
		cfg.Root = args[0]
	}

	fl := cmd.Flags()
	if fl.Changed("state-file") {
		cfg.StateFile = stateFile
	}
	if fl.Changed("target") {
		cfg.Target = targetDir
	}
	if fl.Changed("exclude") {
		cfg.Excludes = excludes
	}
	if fl.Changed("algo") {
		cfg.Algorithm = algo
	}
	if fl.Changed("no-write") {
		cfg.NoWrite = noWrite
	}
	if fl.Changed("follow-symlinks") {
		cfg.FollowSymlinks = followSymlinks
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"root", cfg.Root,
		"state_file", cfg.StateFile,
		"target", cfg.Target,
		"algorithm", cfg.Algorithm)

	return cfg, nil
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
