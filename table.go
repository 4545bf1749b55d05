package repeat

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// renderAttemptTable writes the per-attempt results table: one row per
// completed attempt and a TOTAL footer with the aggregate counts.
func renderAttemptTable(w io.Writer, summary Summary, results []*types.RunResult, took time.Duration) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Repeat Run Results (%s)", formatDuration(took)))

	t.AppendHeader(table.Row{
		"Attempt", "Specs", "Duration", "Tests", "Passed", "Failed", "Skipped", "Status", "Message",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Attempt", Align: text.AlignRight},
		{Name: "Specs", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Message", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for i, result := range results {
		t.AppendRow(table.Row{
			i + 1,
			specsLabel(result),
			formatDuration(result.Stats.Duration),
			result.Stats.Total,
			result.Stats.Passed,
			result.Stats.Failed,
			result.Stats.Skipped,
			attemptStatus(result),
			truncateMessage(result.Message),
		})
	}

	if summary.AnyFailureObserved {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}

	overall := "✓ pass"
	if summary.AnyFailureObserved {
		overall = "✗ fail"
	}
	t.AppendFooter(table.Row{
		"TOTAL",
		fmt.Sprintf("%d of %d attempts", summary.Completed, summary.Attempts),
		formatDuration(took),
		summary.Totals.Total,
		summary.Totals.Passed,
		summary.Totals.Failed,
		summary.Totals.Skipped,
		overall,
		"",
	})

	t.Render()
}

// specsLabel names the spec files one attempt ran.
func specsLabel(result *types.RunResult) string {
	if len(result.Runs) == 0 {
		return "-"
	}
	specs := make([]string, 0, len(result.Runs))
	for _, run := range result.Runs {
		specs = append(specs, run.Spec)
	}
	return strings.Join(specs, ", ")
}

// attemptStatus returns a colored string representing one attempt's outcome.
func attemptStatus(result *types.RunResult) string {
	if result.HasTestFailures() {
		return "✗ fail"
	}
	return "✓ pass"
}

// truncateMessage limits an engine message to its first line, capped at 80
// characters.
func truncateMessage(msg string) string {
	if idx := strings.Index(msg, "\n"); idx != -1 {
		msg = msg[:idx]
	}
	if len(msg) > 80 {
		return msg[:70] + "..."
	}
	return msg
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
