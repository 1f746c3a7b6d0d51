// Package cli defines Cobra command definitions for the batchmaker CLI.
// This file contains the root command, version flag, and shared helpers.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/berth-dev/batchmaker/internal/config"
	"github.com/berth-dev/batchmaker/internal/log"
	"github.com/berth-dev/batchmaker/internal/ui"
)

var (
	verbose     bool
	noColor     bool
	projectFlag string
	version     = "dev" // set via ldflags at build time
)

var rootCmd = &cobra.Command{
	Use:   "batchmaker",
	Short: "Build SPM first-level model batches from design files",
	Long: `Batchmaker turns an experiment design file (YAML or HCL) into the
matlabbatch MAT-file SPM loads to specify a first-level fMRI model:
timing, sessions, conditions, parametric modulators and model options.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level: level,
		})))
	},
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log debug details to stderr")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")
	rootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "C", ".", "Project root holding .batchmaker/")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(historyCmd)
}

// projectRoot returns the absolute project root selected by --project.
func projectRoot() (string, error) {
	root, err := filepath.Abs(projectFlag)
	if err != nil {
		return "", fmt.Errorf("resolving project root: %w", err)
	}
	return root, nil
}

// styled reports whether output should carry terminal styling.
func styled() bool {
	return !noColor && ui.IsTTY()
}

// openLogger returns the project event log, or log.Discard when disabled.
func openLogger(root string, cfg *config.Config) *log.Logger {
	if !cfg.Log.Enabled {
		return log.Discard
	}
	logger, err := log.NewLogger(root)
	if err != nil {
		slog.Warn("event log unavailable", "error", err)
		return log.Discard
	}
	return logger
}

// record appends an event; log failures never fail a command.
func record(logger *log.Logger, event log.LogEvent) {
	if err := logger.Record(event); err != nil {
		slog.Warn("writing event log", "event", event.Event, "error", err)
	}
}
