package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/ormasoftchile/a2ui-conform/pkg/batch"
)

const (
	glyphPassed  = "✓"
	glyphFailed  = "✗"
	glyphSkipped = "-"
)

var (
	colorGreen  = lipgloss.Color("42")
	colorRed    = lipgloss.Color("196")
	colorYellow = lipgloss.Color("214")
	colorDim    = lipgloss.Color("240")

	titleStyle   = lipgloss.NewStyle().Bold(true)
	passedStyle  = lipgloss.NewStyle().Foreground(colorGreen)
	failedStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	skippedStyle = lipgloss.NewStyle().Foreground(colorYellow)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const defaultWidth = 120

// terminalWidth honours $COLUMNS and falls back to a fixed width.
func terminalWidth() int {
	if n, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && n > 20 {
		return n
	}
	return defaultWidth
}

// truncate shortens s to width display cells.
func truncate(s string, width int) string {
	if runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

func itemLabel(r batch.ValidatedResult) string {
	return fmt.Sprintf("%s / %s #%d", r.ModelName, r.Prompt.Name, r.RunNumber)
}

func printSummary(w io.Writer, results []batch.ValidatedResult, summary batch.Summary, elapsed time.Duration) {
	width := terminalWidth()

	for _, r := range results {
		switch r.Status {
		case batch.StatusFailed:
			fmt.Fprintf(w, "%s %s\n", failedStyle.Render(glyphFailed), itemLabel(r))
			for _, e := range r.ValidationErrors {
				fmt.Fprintf(w, "    %s\n", truncate(e, width-4))
			}
		case batch.StatusSkipped:
			reason := "no components"
			if r.Error != "" {
				reason = r.Error
			}
			label := itemLabel(r)
			reason = truncate("("+reason+")", width-runewidth.StringWidth(label)-3)
			fmt.Fprintf(w, "%s %s %s\n", skippedStyle.Render(glyphSkipped), label, dimStyle.Render(reason))
		default:
			fmt.Fprintf(w, "%s %s\n", passedStyle.Render(glyphPassed), itemLabel(r))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s passed, %s failed, %s skipped of %d %s\n",
		titleStyle.Render("Summary:"),
		passedStyle.Render(strconv.Itoa(summary.Passed)),
		failedStyle.Render(strconv.Itoa(summary.Failed)),
		skippedStyle.Render(strconv.Itoa(summary.Skipped)),
		summary.Total,
		dimStyle.Render(fmt.Sprintf("(%s, run %s)", elapsed.Round(time.Millisecond), summary.RunID)),
	)
}
