package engine

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/acarl005/stripansi"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// moduleReport mirrors the run report the engine prints on stdout. A run
// that executed to completion carries status "finished" with totals and
// per-spec runs; a run the engine could not execute carries status "failed"
// with a failure count and message.
type moduleReport struct {
	Status        string      `json:"status"`
	TotalTests    int         `json:"totalTests"`
	TotalPassed   int         `json:"totalPassed"`
	TotalFailed   int         `json:"totalFailed"`
	TotalPending  int         `json:"totalPending"`
	TotalSkipped  int         `json:"totalSkipped"`
	TotalDuration float64     `json:"totalDuration"` // milliseconds
	Runs          []moduleRun `json:"runs"`
	Failures      int         `json:"failures"`
	Message       string      `json:"message"`
}

type moduleRun struct {
	Stats moduleRunStats `json:"stats"`
	Spec  moduleSpec     `json:"spec"`
}

type moduleRunStats struct {
	Tests    int     `json:"tests"`
	Passes   int     `json:"passes"`
	Failures int     `json:"failures"`
	Pending  int     `json:"pending"`
	Skipped  int     `json:"skipped"`
	Duration float64 `json:"duration"` // milliseconds
}

type moduleSpec struct {
	Relative string `json:"relative"`
}

const (
	reportStatusFinished = "finished"
	reportStatusFailed   = "failed"
)

// ParseRunReport extracts the run report from raw engine stdout. The engine
// interleaves arbitrary progress output with the report, so the parser strips
// ANSI sequences and decodes the last JSON document that carries a known
// status, tolerating noise before and after it.
func ParseRunReport(output []byte) (*types.RunResult, error) {
	cleaned := stripansi.Strip(string(output))

	starts := documentStarts(cleaned)
	for i := len(starts) - 1; i >= 0; i-- {
		var report moduleReport
		dec := json.NewDecoder(strings.NewReader(cleaned[starts[i]:]))
		if err := dec.Decode(&report); err != nil {
			continue
		}
		if report.Status != reportStatusFinished && report.Status != reportStatusFailed {
			continue
		}
		return fromModuleReport(report), nil
	}
	return nil, fmt.Errorf("no run report found in engine output")
}

// documentStarts returns the offsets of every line that opens a JSON object,
// the only places a report document can begin.
func documentStarts(s string) []int {
	var starts []int
	offset := 0
	for _, line := range strings.SplitAfter(s, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "{") {
			starts = append(starts, offset+(len(line)-len(trimmed)))
		}
		offset += len(line)
	}
	return starts
}

func fromModuleReport(report moduleReport) *types.RunResult {
	status := types.RunStatusOK
	if report.Status == reportStatusFailed {
		status = types.RunStatusFailed
	}

	result := &types.RunResult{
		Status: status,
		Stats: types.RunStats{
			Total:  report.TotalTests,
			Passed: report.TotalPassed,
			Failed: report.TotalFailed,
			// The engine reports pending (never scheduled) and skipped
			// (bailed out) separately; the orchestration folds both into
			// skipped.
			Skipped:  report.TotalSkipped + report.TotalPending,
			Duration: time.Duration(report.TotalDuration * float64(time.Millisecond)),
		},
		Failures: report.Failures,
		Message:  report.Message,
	}
	for _, run := range report.Runs {
		result.Runs = append(result.Runs, types.SpecResult{
			Spec:     run.Spec.Relative,
			Tests:    run.Stats.Tests,
			Passes:   run.Stats.Passes,
			Failures: run.Stats.Failures,
			Pending:  run.Stats.Pending,
			Skipped:  run.Stats.Skipped,
			Duration: time.Duration(run.Stats.Duration * float64(time.Millisecond)),
		})
	}
	return result
}
