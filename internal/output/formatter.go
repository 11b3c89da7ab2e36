// Package output renders command results for humans and for --json callers.
//
// Results go to the standard writer. Warnings and errors go to the error
// writer so that JSON on stdout stays machine readable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)

	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Faint(true)
)

// columnGap separates table columns
const columnGap = "  "

// SetOutput redirects results to out and diagnostics to errOut. The returned
// function restores the previous writers.
func SetOutput(out, errOut io.Writer) (restore func()) {
	oldOut, oldErr := stdout, stderr
	stdout, stderr = out, errOut
	return func() {
		stdout, stderr = oldOut, oldErr
	}
}

// JSON writes data as indented JSON
func JSON(data interface{}) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table writes rows under headers with columns padded to the widest cell.
// Cells beyond the header count are dropped and missing cells are blank.
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := columnWidths(headers, rows)

	fmt.Fprintln(stdout, headerStyle.Render(joinRow(headers, widths)))

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	fmt.Fprintln(stdout, strings.Join(sep, columnGap))

	for _, row := range rows {
		fmt.Fprintln(stdout, joinRow(row, widths))
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	return widths
}

func joinRow(cells []string, widths []int) string {
	padded := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		padded[i] = cell + strings.Repeat(" ", w-lipgloss.Width(cell))
	}
	return strings.TrimRight(strings.Join(padded, columnGap), " ")
}

// Field prints an aligned "label: value" line.
func Field(label string, value interface{}) {
	fmt.Fprintf(stdout, "%s %v\n", labelStyle.Render(fmt.Sprintf("%-12s", label+":")), value)
}

// Block prints raw configuration text indented by two spaces.
func Block(text string) {
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		fmt.Fprintln(stdout, "  "+line)
	}
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(stdout, "✓ "+format+"\n", args...)
}

// Error prints an error message to the error writer
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(stderr, "✗ "+format+"\n", args...)
}

// Warn prints a warning to the error writer
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(stderr, "! "+format+"\n", args...)
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	_, _ = infoColor.Fprintf(stdout, "→ "+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	fmt.Fprintf(stdout, format+"\n", args...)
}
