package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/targets2config/internal/converter"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show which directories a conversion would touch",
	Long: `Plan lists the directories convert would process and the targets it
would write, without changing any file.

The plan shows:
  - Directories in conversion order (outermost configurations first)
  - Whether each configuration already exists
  - The targets discovered for each directory

Example:
  targets2config plan --subdirectory project`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.log.Sync()

	planned, err := a.converter.Plan(context.Background())
	if err != nil {
		return fmt.Errorf("failed to build plan: %w", err)
	}

	printPlan(a.cfg.Run.Subdirectory, planned)
	return nil
}

func printPlan(subdirectory string, planned []converter.PlannedDirectory) {
	if subdirectory == "" {
		subdirectory = "."
	}
	printHeader("Conversion Plan: %s", subdirectory)
	fmt.Fprintln(outputWriter)

	rows := make([][]string, 0, len(planned))
	for _, p := range planned {
		word := "new"
		if p.Exists {
			word = "exists"
		}
		rows = append(rows, []string{p.ConfigPath, status(word), strconv.Itoa(p.Directories), strconv.Itoa(len(p.Targets))})
	}
	printTable([]string{"CONFIGURATION", "STATE", "PACKAGES", "TARGETS"}, rows)

	for _, p := range planned {
		fmt.Fprintln(outputWriter)
		printSection(p.Dir)
		if len(p.Targets) == 0 {
			fmt.Fprintln(outputWriter, "  (no targets discovered, directory will be skipped)")
			continue
		}
		for _, t := range p.Targets {
			fmt.Fprintf(outputWriter, "  • %s\n", t)
		}
	}
}
