package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gopatch/internal/configloader"
	"github.com/yaklabco/gopatch/internal/logging"
	"github.com/yaklabco/gopatch/pkg/config"
	"github.com/yaklabco/gopatch/pkg/patch"
	"github.com/yaklabco/gopatch/pkg/reporter"
	"github.com/yaklabco/gopatch/pkg/runner"
)

// ErrPatchFailures is returned when one or more patches fail to apply.
var ErrPatchFailures = errors.New("patch failures")

type applyFlags struct {
	strategy      string
	format        string
	ignore        []string
	dir           string
	reverse       bool
	strictRace    bool
	compact       bool
	showUnchanged bool
}

func newApplyCommand() *cobra.Command {
	var cfg config.Config
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply [patch-files...]",
		Short: "Apply unified diffs to files",
		Long:  applyLongDescription,
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(cmd, args, &cfg, flags)
		},
	}

	addApplyFlags(cmd, &cfg, flags)

	return cmd
}

const applyLongDescription = `Apply one or more unified diff files to their targets.

Each patch file may contain diffs for multiple files. With no arguments
(or a single "-"), the patch is read from standard input.

Examples:
  gopatch apply fix.patch              # Apply a patch file
  gopatch apply a.patch b.patch        # Apply several patch files
  git diff | gopatch apply             # Apply a patch from stdin
  gopatch apply --dry-run fix.patch    # Preview without writing
  gopatch apply --strategy fuzzy f.patch  # Content-anchored matching
  gopatch apply --format json fix.patch   # Machine-readable output`

func runApply(cmd *cobra.Command, args []string, cfg *config.Config, flags *applyFlags) error {
	logger := logging.Default()

	// Map string flags to typed config values.
	// Only set values that were explicitly provided via CLI flags.
	if cmd.Flags().Changed("strategy") {
		cfg.Strategy = config.Strategy(flags.strategy)
	}
	if cmd.Flags().Changed("format") {
		cfg.Format = config.OutputFormat(flags.format)
	}
	cfg.Ignore = flags.ignore
	cfg.Dir = flags.dir
	cfg.QuickRace = !flags.strictRace

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Get the explicit config path from the root command's persistent flag.
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return fmt.Errorf("get config flag: %w", err)
	}

	// Get working directory for config discovery.
	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	loadOpts := configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cfg,
	}

	loadResult, err := configloader.Load(ctx, loadOpts)
	if err != nil {
		return errors.Join(errors.New("failed to load configuration"), err)
	}

	finalCfg := loadResult.Config

	// Log warnings from config loading.
	for _, warning := range loadResult.Warnings {
		logger.Warn(warning)
	}

	if len(loadResult.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", loadResult.LoadedFrom)
	}

	logger.Debug("configuration loaded",
		logging.FieldStrategy, finalCfg.Strategy,
		logging.FieldDryRun, finalCfg.DryRun,
		logging.FieldJobs, finalCfg.Jobs,
	)

	// Targets resolve against --dir when given, else the current directory.
	targetDir := finalCfg.Dir
	if targetDir == "" {
		targetDir = workDir
	}

	patches, err := readPatches(cmd, args)
	if err != nil {
		return err
	}

	if flags.reverse {
		for i, pt := range patches {
			patches[i] = pt.Invert()
		}
	}

	applyRunner := runner.New(runner.NewPipeline())

	runOpts := runner.Options{
		WorkingDir: targetDir,
		Jobs:       finalCfg.Jobs,
		Config:     finalCfg,
	}

	logger.Debug("starting apply run",
		logging.FieldFilesTotal, len(patches),
		logging.FieldWorkingDir, runOpts.WorkingDir,
		logging.FieldJobs, runOpts.Jobs,
	)

	result, err := applyRunner.Run(ctx, patches, runOpts)
	if err != nil {
		return errors.Join(errors.New("apply run failed"), err)
	}

	// Get color mode from persistent flag.
	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		colorMode = "auto" // Default to auto if flag retrieval fails
	}

	format, err := reporter.ParseFormat(string(finalCfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:        cmd.OutOrStdout(),
		ErrorWriter:   cmd.ErrOrStderr(),
		Format:        format,
		Color:         colorMode,
		ShowSummary:   true,
		ShowUnchanged: flags.showUnchanged,
		Compact:       flags.compact,
		DryRun:        finalCfg.DryRun,
		WorkingDir:    targetDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	if _, err := rep.Report(ctx, result); err != nil {
		logger.Error("report failed", logging.FieldError, err)
		return fmt.Errorf("report results: %w", err)
	}

	if ExitCodeFromResult(result) != ExitSuccess {
		return ErrPatchFailures
	}

	return nil
}

// readPatches reads and parses all patch input. With no arguments, or a
// single "-", the patch text comes from standard input.
func readPatches(cmd *cobra.Command, args []string) ([]*patch.Patch, error) {
	fromStdin := len(args) == 0 || (len(args) == 1 && args[0] == "-")

	var patches []*patch.Patch

	if fromStdin {
		text, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read patch from stdin: %w", err)
		}
		parsed, err := patch.ParseMultiple(string(text))
		if err != nil {
			return nil, fmt.Errorf("parse patch from stdin: %w", err)
		}
		for i := range parsed {
			patches = append(patches, &parsed[i])
		}
		return patches, nil
	}

	for _, path := range args {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read patch file %s: %w", path, err)
		}
		parsed, err := patch.ParseMultiple(string(text))
		if err != nil {
			return nil, fmt.Errorf("parse patch file %s: %w", path, err)
		}
		for i := range parsed {
			patches = append(patches, &parsed[i])
		}
	}

	return patches, nil
}

func addApplyFlags(cmd *cobra.Command, cfg *config.Config, flags *applyFlags) {
	cmd.Flags().StringVar(&flags.strategy, "strategy", "auto",
		"application strategy: strict, fuzzy, auto")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "show changes without applying them")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text, json, diff")
	cmd.Flags().IntVar(&cfg.Jobs, "jobs", 0, "number of parallel workers (0 = auto)")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "directory to resolve target paths against")
	cmd.Flags().StringSliceVar(&flags.ignore, "ignore", nil, "glob patterns for targets to skip")
	cmd.Flags().BoolVarP(&flags.reverse, "reverse", "R", false, "invert the patch before applying (undo)")
	cmd.Flags().BoolVar(&cfg.NoBackups, "no-backups", false, "disable backup creation before writing")
	cmd.Flags().BoolVar(&flags.strictRace, "strict-race", true,
		"detect concurrent modification by content hash, not just mtime and size")
	cmd.Flags().BoolVar(&flags.compact, "compact", false, "use compact output format")
	cmd.Flags().BoolVar(&flags.showUnchanged, "show-unchanged", false,
		"include unchanged targets in output")
}
