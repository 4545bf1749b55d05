package repeat

import (
	"fmt"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// Mode fixes the orchestration's policy switches before any attempt runs.
// It is immutable for the lifetime of one orchestration.
type Mode struct {
	Attempts        int
	UntilPasses     bool
	RerunFailedOnly bool
	ForceContinue   bool
}

// Validate rejects modes that cannot drive a run.
func (m Mode) Validate() error {
	if m.Attempts < 1 {
		return fmt.Errorf("attempt count must be at least 1, got %d", m.Attempts)
	}
	return nil
}

// Decision is a policy outcome for one attempt.
type Decision int

const (
	// DecisionContinue advances to the next attempt.
	DecisionContinue Decision = iota
	// DecisionStopSuccess ends the orchestration early as a success.
	DecisionStopSuccess
	// DecisionStopFailure ends the orchestration early as a failure.
	DecisionStopFailure
)

func (d Decision) String() string {
	switch d {
	case DecisionContinue:
		return "continue"
	case DecisionStopSuccess:
		return "stop-success"
	case DecisionStopFailure:
		return "stop-failure"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Verdict is the policy's answer for one completed attempt: what to do next,
// why, an optional configuration patch for the following attempt, and whether
// this attempt's failure counts against the final outcome.
type Verdict struct {
	Decision        Decision
	Reason          string
	Patch           *types.ConfigPatch
	FailureObserved bool
}

// Decide evaluates the policy for one completed attempt. It is a pure
// function of its inputs: same attempt, same result, same verdict.
//
// Evaluation order:
//
//  1. rerun-failed-only on a non-final attempt. Failing specs restrict the
//     next attempt via the patch; whether that failure also ends the run is
//     decided by the later steps. No failing specs ends the orchestration as
//     a success, unless force keeps it sweeping with the unrestricted
//     configuration, or the run crashed outright (a crashed run has no spec
//     outcomes and must not conclude success; step 2 owns it).
//  2. The engine itself could not execute the run. The failure sticks, and
//     the orchestration stops unless force is set.
//  3. until-passes stops on the first clean run. A still-failing final
//     attempt marks the failure even under force, so a never-passing
//     orchestration cannot exit clean.
//  4. Default: failing tests stop the orchestration unless force is set, or
//     unless the restricted rerun from step 1 owns the failure.
func Decide(mode Mode, attempt int, isLast bool, result *types.RunResult) Verdict {
	engineFailed := result.Status == types.RunStatusFailed && result.Failures > 0

	var patch *types.ConfigPatch
	if mode.RerunFailedOnly && !isLast {
		failed := result.FailedSpecs()
		switch {
		case len(failed) > 0:
			patch = &types.ConfigPatch{Specs: failed}
		case engineFailed:
			// Nothing to rerun and nothing passed either.
		case mode.ForceContinue:
			return Verdict{
				Decision: DecisionContinue,
				Reason:   "no failed specs, force keeps running the full suite",
			}
		default:
			return Verdict{
				Decision: DecisionStopSuccess,
				Reason:   "no failed specs left to rerun",
			}
		}
	}

	if engineFailed {
		if mode.ForceContinue {
			return Verdict{
				Decision:        DecisionContinue,
				Reason:          "engine failure, force continues",
				Patch:           patch,
				FailureObserved: true,
			}
		}
		return Verdict{
			Decision:        DecisionStopFailure,
			Reason:          fmt.Sprintf("engine could not run: %s", result.Message),
			FailureObserved: true,
		}
	}

	if mode.UntilPasses {
		if result.Stats.Failed == 0 {
			return Verdict{
				Decision: DecisionStopSuccess,
				Reason:   fmt.Sprintf("attempt %d passed", attempt),
			}
		}
		if isLast {
			if mode.ForceContinue {
				return Verdict{
					Decision:        DecisionContinue,
					Reason:          "no attempts left, force suppresses the stop",
					FailureObserved: true,
				}
			}
			return Verdict{
				Decision:        DecisionStopFailure,
				Reason:          "no attempts left",
				FailureObserved: true,
			}
		}
		return Verdict{
			Decision: DecisionContinue,
			Reason:   fmt.Sprintf("attempt %d had %d failing tests, retrying", attempt, result.Stats.Failed),
			Patch:    patch,
		}
	}

	if result.Stats.Failed > 0 {
		if mode.RerunFailedOnly && !isLast {
			return Verdict{
				Decision: DecisionContinue,
				Reason:   "failure deferred to the restricted rerun",
				Patch:    patch,
			}
		}
		if mode.ForceContinue {
			return Verdict{
				Decision:        DecisionContinue,
				Reason:          "failing tests, force continues",
				Patch:           patch,
				FailureObserved: true,
			}
		}
		return Verdict{
			Decision:        DecisionStopFailure,
			Reason:          fmt.Sprintf("%d failing tests", result.Stats.Failed),
			FailureObserved: true,
		}
	}

	return Verdict{
		Decision: DecisionContinue,
		Reason:   "attempt passed",
		Patch:    patch,
	}
}
