package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

const finishedReport = `{
  "status": "finished",
  "totalTests": 10,
  "totalPassed": 8,
  "totalFailed": 1,
  "totalPending": 1,
  "totalSkipped": 0,
  "totalDuration": 4250.5,
  "runs": [
    {"stats": {"tests": 5, "passes": 5, "failures": 0}, "spec": {"relative": "cypress/e2e/a.cy.js"}},
    {"stats": {"tests": 5, "passes": 3, "failures": 1, "pending": 1}, "spec": {"relative": "cypress/e2e/b.cy.js"}}
  ]
}`

func TestParseRunReport(t *testing.T) {
	result, err := ParseRunReport([]byte(finishedReport))
	require.NoError(t, err)

	assert.Equal(t, types.RunStatusOK, result.Status)
	assert.Equal(t, types.RunStats{
		Total:    10,
		Passed:   8,
		Failed:   1,
		Skipped:  1, // pending folds into skipped
		Duration: 4250500 * time.Microsecond,
	}, result.Stats)
	require.Len(t, result.Runs, 2)
	assert.Equal(t, "cypress/e2e/a.cy.js", result.Runs[0].Spec)
	assert.Equal(t, 1, result.Runs[1].Failures)
	assert.Equal(t, []string{"cypress/e2e/b.cy.js"}, result.FailedSpecs())
}

func TestParseRunReportTolerant(t *testing.T) {
	noisy := "\x1b[32m✓\x1b[0m all specs passed\n" +
		`{"level":"info","message":"uploading artifacts"}` + "\n" +
		finishedReport + "\n" +
		"Done. Cleaning up.\n"

	result, err := ParseRunReport([]byte(noisy))
	require.NoError(t, err)
	assert.Equal(t, 10, result.Stats.Total)
}

func TestParseRunReportLastDocumentWins(t *testing.T) {
	input := `{"status":"finished","totalTests":1,"totalPassed":1}` + "\n" +
		"retrying...\n" +
		`{"status":"finished","totalTests":2,"totalPassed":2}` + "\n"

	result, err := ParseRunReport([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Stats.Total)
}

func TestParseRunReportEngineFailure(t *testing.T) {
	input := `{"status":"failed","failures":1,"message":"Could not find a browser named chrome"}`

	result, err := ParseRunReport([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, types.RunStatusFailed, result.Status)
	assert.Equal(t, 1, result.Failures)
	assert.Equal(t, "Could not find a browser named chrome", result.Message)
	assert.True(t, result.HasTestFailures())
}

func TestParseRunReportNoReport(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty output", input: ""},
		{name: "plain noise", input: "starting up\nrunning specs\n"},
		{name: "json without a run status", input: `{"level":"error","message":"crash"}` + "\n"},
		{name: "truncated report", input: `{"status":"finished","totalTests":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRunReport([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "no run report")
		})
	}
}
