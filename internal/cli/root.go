// Package cli provides the Cobra command structure for gopatch.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gopatch/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root gopatch command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var configPath string
	var color string

	rootCmd := &cobra.Command{
		Use:   "gopatch",
		Short: "A safe, fast applier for unified diffs",
		Long: `gopatch applies unified diffs to files with safety guarantees.

It supports strict line-anchored application as well as a fuzzy
content-anchored mode that tolerates drifted line numbers. Every write
goes through binary detection, concurrent-modification checks, optional
backups, and atomic replacement, with a dry-run mode for previewing
changes before they touch disk.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(newApplyCommand())
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
