package types

import "time"

// RunStatus is the normalized outcome of one engine invocation.
type RunStatus string

const (
	// RunStatusOK means the engine completed the run and every test passed.
	RunStatusOK RunStatus = "ok"
	// RunStatusFailed means the engine completed the run with at least one
	// failing test. Infrastructure problems are not a RunStatus; they are
	// surfaced as errors instead.
	RunStatusFailed RunStatus = "failed"
)

// RunStats holds the aggregate counters reported by the engine for one run.
type RunStats struct {
	Total    int
	Passed   int
	Failed   int
	Skipped  int
	Duration time.Duration
}

// Add accumulates another run's counters into s. Duration is summed as well
// so the cross-attempt total reflects wall time spent inside the engine.
func (s *RunStats) Add(o RunStats) {
	s.Total += o.Total
	s.Passed += o.Passed
	s.Failed += o.Failed
	s.Skipped += o.Skipped
	s.Duration += o.Duration
}

// SpecResult is the per-spec-file slice of one run.
type SpecResult struct {
	Spec     string
	Tests    int
	Passes   int
	Failures int
	Pending  int
	Skipped  int
	Duration time.Duration
}

// RunResult is the parsed report of one completed engine invocation. It
// exists only when the engine actually produced a report; anything earlier
// (spawn failure, missing report) is an infrastructure error, not a result.
type RunResult struct {
	Status   RunStatus
	Stats    RunStats
	Runs     []SpecResult
	Failures int    // engine-level failure count accompanying a failed status
	Message  string // engine-level failure message, empty on ok
}

// FailedSpecs returns the spec identifiers that recorded at least one test
// failure, in report order.
func (r *RunResult) FailedSpecs() []string {
	var specs []string
	for _, run := range r.Runs {
		if run.Failures > 0 {
			specs = append(specs, run.Spec)
		}
	}
	return specs
}

// HasTestFailures reports whether the run saw any failing test or a failed
// engine status.
func (r *RunResult) HasTestFailures() bool {
	return r.Status == RunStatusFailed || r.Stats.Failed > 0
}
