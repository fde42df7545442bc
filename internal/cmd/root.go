package cmd

import (
	"fmt"
	"os"
	"strings"

	"log/slog"

	"github.com/scopebuild/scopebuild/internal/config"
	"github.com/scopebuild/scopebuild/internal/engine"
	"github.com/scopebuild/scopebuild/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	settings      *config.Settings
	workspaceRoot string
	eng           *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "wemi",
	Short: "A scoped, lazily evaluated key graph for JVM-style builds",
	Long: `wemi resolves Maven-2 style dependency coordinates, builds classpaths, and
assembles fat archives through a small set of lazily evaluated keys, queried
one-shot ("wemi run") or interactively ("wemi repl").`,
	Version:           "0.1.0",
	PersistentPreRunE: setupEngine,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "workspace", "", "workspace root (default: discovered by walking up for a .wemi directory)")
	rootCmd.PersistentFlags().Bool("interactive", false, "force interactive prompting for missing inputs")
	rootCmd.PersistentFlags().String("machine-readable-output", "", "machine-readable output format: shell or json")
	rootCmd.PersistentFlags().Bool("offline", false, "disable remote fetches, rely on the local cache only")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "show progress with simple output")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "show progress with tree structure (cannot be used with --verbose)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("log-format", "", "log format: text or json")
	rootCmd.PersistentFlags().String("log-file", "", "log file path (default: stderr)")
}

// parseLogLevel converts a string log level to slog.Level, mirroring
// config.Settings' own parser for the same CLI-facing vocabulary.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToUpper(level) {
	case "TRACE":
		return slog.LevelDebug - 4, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	case "FATAL":
		return slog.LevelError + 4, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
	}
}

func setupEngine(cmd *cobra.Command, args []string) error {
	startDir := workspaceRoot
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("determine working directory: %w", err)
		}
		startDir = wd
	}

	layout, err := workspace.Discover(startDir)
	if err != nil {
		return fmt.Errorf("discover workspace: %w", err)
	}
	if err := layout.Ensure(); err != nil {
		return fmt.Errorf("prepare workspace layout: %w", err)
	}

	wsConfig, err := config.LoadWorkspaceConfig(layout.Root)
	if err != nil {
		return fmt.Errorf("load workspace config: %w", err)
	}

	settings = config.LoadSettingsFromEnvironment()
	applyFlagOverrides(cmd, settings)
	wsConfig.MergeWithSettings(settings)

	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	settings.ConfigureLogger()

	eng, err = engine.New(layout, wsConfig, settings)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}
	return nil
}

// applyFlagOverrides copies explicitly-set CLI flags onto settings,
// leaving the environment-derived defaults alone otherwise — flags take
// precedence, exactly as WorkspaceConfig.MergeWithSettings later enforces
// for the workspace config layer beneath them.
func applyFlagOverrides(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("interactive") {
		s.Interactive, _ = flags.GetBool("interactive")
	}
	if flags.Changed("machine-readable-output") {
		s.MachineReadableOutput, _ = flags.GetString("machine-readable-output")
	}
	if flags.Changed("offline") {
		s.Offline, _ = flags.GetBool("offline")
	}
	if flags.Changed("verbose") {
		s.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("debug") {
		s.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("log-level") {
		raw, _ := flags.GetString("log-level")
		if lvl, err := parseLogLevel(raw); err == nil {
			s.LogLevel = lvl
		}
	}
	if flags.Changed("log-format") {
		s.LogFormat, _ = flags.GetString("log-format")
	}
	if flags.Changed("log-file") {
		s.LogFile, _ = flags.GetString("log-file")
	}
}
