package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/targets2config/internal/converter"
	"github.com/dbsmedya/targets2config/internal/logger"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and run preflight checks",
	Long: `Validate checks the configuration file and runs preflight checks
against the repository to ensure safe execution.

Checks performed:
  - Configuration syntax and required fields
  - Required commands on PATH (build, type checker, version control, linter)
  - Subdirectory existence
  - Version control work tree

Example:
  targets2config validate --config targets2config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(outputWriter, "%s %v\n", styleError.Sprint("✗"), err)
		return fmt.Errorf("configuration is invalid")
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Sync()

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(outputWriter, "\n=== Configuration Validation ===\n")
	fmt.Fprintf(outputWriter, "Config file: %s\n", GetConfigFile())
	fmt.Fprintf(outputWriter, "Tool: %s (%s)\n", cfg.Tool, cfg.ConfigurationFilename())
	fmt.Fprintf(outputWriter, "Root: %s\n\n", cfg.Root)

	preflight, err := converter.NewPreflightChecker(cfg, a.fs, a.repo, log)
	if err != nil {
		return fmt.Errorf("failed to create preflight checker: %w", err)
	}
	if err := preflight.RunAllChecks(context.Background()); err != nil {
		fmt.Fprintf(outputWriter, "%s Preflight checks failed: %v\n", styleError.Sprint("✗"), err)
		return fmt.Errorf("validation failed")
	}

	fmt.Fprintln(outputWriter, "=== Validation Complete ===")
	fmt.Fprintf(outputWriter, "%s All checks passed\n", styleOK.Sprint("✓"))
	return nil
}
