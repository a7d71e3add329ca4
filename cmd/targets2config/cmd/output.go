package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/mattn/go-runewidth"
)

// outputWriter is used for printing output, can be overridden in tests
var outputWriter io.Writer = os.Stdout

// setOutputWriter sets the output writer (used for testing)
func setOutputWriter(w io.Writer) {
	outputWriter = w
}

// resetOutputWriter resets output to stdout (used for testing)
func resetOutputWriter() {
	outputWriter = os.Stdout
}

var (
	styleOK      = color.New(color.FgGreen)
	styleWarn    = color.New(color.FgYellow)
	styleError   = color.New(color.FgRed, color.OpBold)
	styleHeading = color.New(color.OpBold)
)

// printHeader prints a formatted header
func printHeader(format string, args ...interface{}) {
	title := fmt.Sprintf(format, args...)
	width := runewidth.StringWidth(title) + 4
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
	fmt.Fprintf(outputWriter, "  %s\n", styleHeading.Sprint(title))
	fmt.Fprintln(outputWriter, strings.Repeat("=", width))
}

// printSection prints a section header
func printSection(title string) {
	fmt.Fprintf(outputWriter, "[%s]\n", title)
	fmt.Fprintln(outputWriter, strings.Repeat("-", runewidth.StringWidth(title)+2))
}

// status renders a colored status word.
func status(word string) string {
	switch word {
	case "created", "merged", "ok", "new", "minimal":
		return styleOK.Sprint(word)
	case "skipped", "exists", "deduped":
		return styleWarn.Sprint(word)
	default:
		return styleError.Sprint(word)
	}
}

// printTable prints rows with columns padded to their widest display cell.
// Color codes are ignored when measuring.
func printTable(header []string, rows [][]string) {
	widths := make([]int, len(header))
	measure := func(row []string) {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], visualWidth(cell))
			}
		}
	}
	measure(header)
	for _, row := range rows {
		measure(row)
	}

	printRow := func(row []string) {
		var sb strings.Builder
		sb.WriteString("  ")
		for i, cell := range row {
			sb.WriteString(cell)
			if i < len(row)-1 {
				sb.WriteString(strings.Repeat(" ", widths[i]-visualWidth(cell)+2))
			}
		}
		fmt.Fprintln(outputWriter, strings.TrimRight(sb.String(), " "))
	}

	printRow(header)
	separators := make([]string, len(header))
	for i, w := range widths {
		separators[i] = strings.Repeat("-", w)
	}
	printRow(separators)
	for _, row := range rows {
		printRow(row)
	}
}

// visualWidth returns the display width of s without color escape codes.
func visualWidth(s string) int {
	return runewidth.StringWidth(color.ClearCode(s))
}
