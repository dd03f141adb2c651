package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/gopatch/internal/logging"
	"github.com/yaklabco/gopatch/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new gopatch configuration file",
		Long: `Create a new .gopatch.yml configuration file in the current directory
with sensible defaults. The file can be customized to change the default
application strategy, backup behavior, and ignore patterns.

Examples:
  gopatch init                     Create .gopatch.yml
  gopatch init --force             Overwrite an existing file
  gopatch init --output custom.yml Write to a custom file path`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .gopatch.yml)")

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.Default()

	outputPath := flags.output
	if outputPath == "" {
		outputPath = ".gopatch.yml"
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !flags.force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", outputPath)
		}
		logger.Warn("overwriting existing file", logging.FieldPath, outputPath)
	}

	content := config.GenerateTemplate()

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	logger.Info("created configuration file", logging.FieldPath, outputPath)
	logger.Info("customize your configuration by editing the file")

	return nil
}
