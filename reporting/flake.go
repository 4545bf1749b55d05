package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sagar-qa007/cypress-repeat-pro/templates"
	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// FlakeSpecResult aggregates one spec file's outcomes across attempts.
type FlakeSpecResult struct {
	Spec           string        `json:"spec"`
	TotalRuns      int           `json:"total_runs"`
	Passes         int           `json:"passes"`
	Failures       int           `json:"failures"`
	PassRate       float64       `json:"pass_rate"`
	AvgDuration    time.Duration `json:"avg_duration"`
	MinDuration    time.Duration `json:"min_duration"`
	MaxDuration    time.Duration `json:"max_duration"`
	Recommendation string        `json:"recommendation"`
}

// FlakeReport contains the complete cross-attempt stability analysis.
type FlakeReport struct {
	Date        string            `json:"date"`
	Attempts    int               `json:"attempts"`
	Specs       []FlakeSpecResult `json:"specs"`
	GeneratedAt time.Time         `json:"generated_at"`
	RunID       string            `json:"run_id"`
}

// BuildFlakeReport aggregates per-spec outcomes across every completed
// attempt. A spec counts as passing an attempt when it recorded no failures
// there. Specs are sorted by identifier so the report is stable.
func BuildFlakeReport(results []*types.RunResult, runID string) *FlakeReport {
	report := &FlakeReport{
		Date:        time.Now().Format("2006-01-02"),
		Attempts:    len(results),
		GeneratedAt: time.Now(),
		RunID:       runID,
	}

	bySpec := make(map[string]*FlakeSpecResult)
	totals := make(map[string]time.Duration)
	for _, result := range results {
		for _, run := range result.Runs {
			entry, ok := bySpec[run.Spec]
			if !ok {
				entry = &FlakeSpecResult{Spec: run.Spec}
				bySpec[run.Spec] = entry
			}
			entry.TotalRuns++
			if run.Failures > 0 {
				entry.Failures++
			} else {
				entry.Passes++
			}

			totals[run.Spec] += run.Duration
			if entry.TotalRuns == 1 || run.Duration < entry.MinDuration {
				entry.MinDuration = run.Duration
			}
			if run.Duration > entry.MaxDuration {
				entry.MaxDuration = run.Duration
			}
		}
	}

	specs := make([]string, 0, len(bySpec))
	for spec := range bySpec {
		specs = append(specs, spec)
	}
	sort.Strings(specs)

	for _, spec := range specs {
		entry := bySpec[spec]
		if entry.TotalRuns > 0 {
			entry.AvgDuration = totals[spec] / time.Duration(entry.TotalRuns)
			entry.PassRate = float64(entry.Passes) / float64(entry.TotalRuns) * 100
		}
		if entry.PassRate == 100 {
			entry.Recommendation = "STABLE"
		} else {
			entry.Recommendation = "UNSTABLE"
		}
		report.Specs = append(report.Specs, *entry)
	}
	return report
}

// SaveFlakeReport saves the report in both JSON and HTML formats and returns
// the files it wrote. One format failing does not stop the other.
func SaveFlakeReport(report *FlakeReport, outputDir string) ([]string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory %s: %w", outputDir, err)
	}

	var savedFiles []string
	var errorsList []error

	jsonFilename := filepath.Join(outputDir, "flake-report.json")
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		errorsList = append(errorsList, fmt.Errorf("failed to marshal JSON: %w", err))
	} else {
		if err := os.WriteFile(jsonFilename, data, 0644); err != nil {
			errorsList = append(errorsList, fmt.Errorf("failed to write JSON file: %w", err))
		} else {
			savedFiles = append(savedFiles, jsonFilename)
		}
	}

	htmlFilename := filepath.Join(outputDir, "flake-report.html")
	if err := saveHTMLReport(report, htmlFilename); err != nil {
		errorsList = append(errorsList, fmt.Errorf("failed to save HTML report: %w", err))
	} else {
		savedFiles = append(savedFiles, htmlFilename)
	}

	if len(errorsList) > 0 {
		errMsg := "failed to save some report formats:"
		for _, e := range errorsList {
			errMsg += "\n  - " + e.Error()
		}
		return savedFiles, errors.New(errMsg)
	}

	return savedFiles, nil
}

// saveHTMLReport saves the report as HTML
func saveHTMLReport(report *FlakeReport, filename string) error {
	htmlTemplate := `<!DOCTYPE html>
<html>
<head>
    <title>Flake Report - {{.Date}}</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 20px; }
        h1 { color: #333; }
        .summary { background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 20px 0; }
        table { border-collapse: collapse; width: 100%; }
        th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
        th { background: #4CAF50; color: white; }
        .pass-rate-100 { color: #4CAF50; font-weight: bold; }
        .pass-rate-low { color: #f44336; }
        .recommendation-STABLE { color: #4CAF50; font-weight: bold; }
        .recommendation-UNSTABLE { color: #f44336; font-weight: bold; }
    </style>
</head>
<body>
    <h1>Flake Report</h1>
    <div class="summary">
        <p><strong>Date:</strong> {{.Date}}</p>
        <p><strong>Attempts:</strong> {{.Attempts}}</p>
        <p><strong>Run ID:</strong> {{.RunID}}</p>
    </div>

    <h2>Spec Stability</h2>
    <table>
        <tr>
            <th>Spec</th>
            <th>Runs</th>
            <th>Passes</th>
            <th>Failures</th>
            <th>Pass Rate</th>
            <th>Avg Duration</th>
            <th>Recommendation</th>
        </tr>
        {{range .Specs}}
        <tr>
            <td>{{.Spec}}</td>
            <td>{{.TotalRuns}}</td>
            <td>{{.Passes}}</td>
            <td>{{.Failures}}</td>
            <td class="pass-rate-{{passRateClass .PassRate}}">
                {{printf "%.1f" .PassRate}}%
            </td>
            <td>{{formatDuration .AvgDuration}}</td>
            <td class="recommendation-{{.Recommendation}}">{{.Recommendation}}</td>
        </tr>
        {{end}}
    </table>
</body>
</html>`

	tmpl, err := template.New("report").Funcs(templates.GetTemplateFunc()).Parse(htmlTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return tmpl.Execute(file, report)
}
