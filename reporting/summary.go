// Package reporting writes the orchestration's file artifacts: the text
// summary and the optional per-spec flake report.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// SummarySink owns the summary file. The file is removed when the
// orchestration starts, so an aborted process can never leave a stale
// summary to be mistaken for a current one, and it is written exactly once
// when the orchestration finalizes.
type SummarySink struct {
	path string
}

// NewSummarySink builds a sink for the given summary path.
func NewSummarySink(path string) *SummarySink {
	return &SummarySink{path: path}
}

// Path returns the summary file location.
func (s *SummarySink) Path() string {
	return s.path
}

// Clear deletes a pre-existing summary file. A missing file is not an error.
func (s *SummarySink) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stale summary %s: %w", s.path, err)
	}
	return nil
}

// Write overwrites the summary file with the rendered content, creating
// parent directories as needed.
func (s *SummarySink) Write(content string) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create summary directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(s.path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}
	return nil
}
