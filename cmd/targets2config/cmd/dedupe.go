package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/targets2config/internal/converter"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe [files...]",
	Short: "Remove targets already covered by another target",
	Long: `Dedupe minimizes the target list of existing local configurations.

A target is dropped when everything it covers is also covered by a target
listed before it. Wildcards are expanded with one build graph query each.
Without arguments every configuration under --subdirectory is processed.

Example:
  targets2config dedupe project/.pyre_configuration.local`,
	RunE: runDedupe,
}

func init() {
	rootCmd.AddCommand(dedupeCmd)
}

func runDedupe(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	ctx := converter.SetupSignalHandler()

	return dedupeFiles(ctx, a, args)
}

// dedupeFiles deduplicates files, or every configuration under the
// subdirectory when files is empty, and prints one row per file.
func dedupeFiles(ctx context.Context, a *app, files []string) error {
	if len(files) == 0 {
		var err error
		files, err = a.converter.ConfigurationFiles()
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		fmt.Fprintln(outputWriter, "No configurations found")
		return nil
	}

	rows := make([][]string, 0, len(files))
	var failed int
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		result, err := a.converter.DeduplicateFile(ctx, file)
		if err != nil {
			a.log.Errorw("Failed to deduplicate configuration", "path", file, "error", err)
			rows = append(rows, []string{file, status("failed"), "-", "-"})
			failed++
			continue
		}
		word := "minimal"
		if result.Removed() > 0 {
			word = "deduped"
		}
		rows = append(rows, []string{file, status(word), strconv.Itoa(len(result.Before)), strconv.Itoa(len(result.After))})
	}

	printTable([]string{"CONFIGURATION", "STATUS", "BEFORE", "AFTER"}, rows)

	if failed > 0 {
		return fmt.Errorf("%d of %d configurations could not be deduplicated", failed, len(files))
	}
	return nil
}
