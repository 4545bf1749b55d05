package repeat

import (
	"fmt"
	"strings"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// Aggregator accumulates run statistics across attempts. Accumulation is
// unconditional: every completed attempt counts toward the totals, whatever
// the policy decides afterwards, and nothing is ever rolled back.
type Aggregator struct {
	attempts           int
	completed          int
	totals             types.RunStats
	anyFailureObserved bool
}

// NewAggregator builds an aggregator for an orchestration of n attempts.
func NewAggregator(n int) *Aggregator {
	return &Aggregator{attempts: n}
}

// Accumulate folds one completed attempt into the running totals.
func (a *Aggregator) Accumulate(result *types.RunResult) {
	a.completed++
	a.totals.Add(result.Stats)
	if result.HasTestFailures() {
		a.anyFailureObserved = true
	}
}

// Finalize produces the summary of everything accumulated so far. The
// orchestrator calls it exactly once, on every exit path.
func (a *Aggregator) Finalize() Summary {
	return Summary{
		Attempts:           a.attempts,
		Completed:          a.completed,
		Totals:             a.totals,
		AnyFailureObserved: a.anyFailureObserved,
	}
}

// Summary is the final aggregate of one orchestration.
type Summary struct {
	Attempts           int // configured attempt count N
	Completed          int // attempts that produced a result
	Totals             types.RunStats
	AnyFailureObserved bool
}

// Render produces the fixed six-line text summary: a header, four count
// lines and the failure footer. The layout is stable regardless of how many
// attempts ran or why the orchestration stopped.
func (s Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "cypress-repeat-pro summary (%d of %d attempts)\n", s.Completed, s.Attempts)
	fmt.Fprintf(&b, "total tests:   %d\n", s.Totals.Total)
	fmt.Fprintf(&b, "total passed:  %d\n", s.Totals.Passed)
	fmt.Fprintf(&b, "total failed:  %d\n", s.Totals.Failed)
	fmt.Fprintf(&b, "total skipped: %d\n", s.Totals.Skipped)
	fmt.Fprintf(&b, "any failures observed: %t\n", s.AnyFailureObserved)
	return b.String()
}
