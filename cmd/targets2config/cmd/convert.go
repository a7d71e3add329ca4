package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/targets2config/internal/converter"
	"github.com/dbsmedya/targets2config/internal/lock"
)

var convertForce bool

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert build targets into local configurations",
	Long: `Convert moves type checking from build targets to per-directory local
configurations.

The conversion follows these steps for every directory:
  1. Discover the targets under the directory with a build graph query
  2. Create a strict configuration, or merge into the existing one
  3. Deduplicate targets covered by a wildcard
  4. Remove typing fields from build files
  5. Suppress the remaining type errors
  6. Lint the directory when --lint is set

Newly created configurations are staged once at the end of the run, then
committed unless --no-commit is set.

Example:
  targets2config convert --subdirectory project --fixme-threshold 20`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVar(&convertForce, "force", false,
		"Run even if the run lock cannot be acquired (use with caution)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	a.log.Infow("Starting conversion",
		"config", GetConfigFile(),
		"subdirectory", a.cfg.Run.Subdirectory,
	)

	ctx := converter.SetupSignalHandlerWithCallback(func(sig os.Signal) {
		a.log.Warnw("Received shutdown signal - finishing current directory...", "signal", sig.String())
	})

	if convertForce {
		a.log.Warn("Skipping run lock acquisition (--force flag used)")
		return convertAll(ctx, a)
	}

	runLock := lock.NewRunLock(a.cfg.Root, a.cfg.Run.LockFile)
	err = runLock.WithLock(ctx, lock.TimeoutShort, func() error {
		a.log.Debugw("Acquired run lock", "path", runLock.Path())
		return convertAll(ctx, a)
	})
	if errors.Is(err, lock.ErrLocked) {
		return fmt.Errorf("another conversion is running in %s (use --force to override)", a.cfg.Root)
	}
	return err
}

// convertAll runs the conversion and prints its report.
func convertAll(ctx context.Context, a *app) error {
	result, err := a.converter.Run(ctx)
	if result != nil {
		printRunResult(result)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			a.log.Warn("Conversion cancelled by user")
			return nil
		}
		return fmt.Errorf("conversion failed: %w", err)
	}
	return nil
}

func printRunResult(result *converter.RunResult) {
	fmt.Fprintln(outputWriter)
	printHeader("Conversion Complete")
	fmt.Fprintf(outputWriter, "Run ID: %s\n", result.RunID)
	fmt.Fprintf(outputWriter, "Duration: %s\n\n", result.Duration)

	rows := make([][]string, 0, len(result.Directories))
	for _, d := range result.Directories {
		rows = append(rows, []string{
			d.Dir,
			status(directoryStatus(d)),
			strconv.Itoa(len(d.Targets)),
			strconv.Itoa(d.TypeErrors),
			strconv.Itoa(len(d.IgnoredFiles)),
		})
	}
	printTable([]string{"DIRECTORY", "STATUS", "TARGETS", "ERRORS", "IGNORED"}, rows)

	fmt.Fprintln(outputWriter)
	fmt.Fprintf(outputWriter, "Staged: %d\n", len(result.Staged))
	fmt.Fprintf(outputWriter, "Committed: %v\n", result.Committed)
	if result.Reverted {
		fmt.Fprintln(outputWriter, styleError.Sprint("Uncommitted changes were reverted"))
	}

	for _, d := range result.Directories {
		for _, w := range d.Warnings {
			fmt.Fprintf(outputWriter, "%s %s: %s\n", styleWarn.Sprint("warning:"), d.Dir, w)
		}
		if d.Err != nil {
			fmt.Fprintf(outputWriter, "%s %s: %v\n", styleError.Sprint("error:"), d.Dir, d.Err)
		}
	}
}

func directoryStatus(d *converter.DirectoryResult) string {
	switch {
	case d.Err != nil:
		return "failed"
	case d.Skipped:
		return "skipped"
	case d.Created:
		return "created"
	default:
		return "merged"
	}
}
