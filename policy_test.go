package repeat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

func passingResult(total int) *types.RunResult {
	return &types.RunResult{
		Status: types.RunStatusOK,
		Stats:  types.RunStats{Total: total, Passed: total},
	}
}

func failingResult(failedSpecs ...string) *types.RunResult {
	result := &types.RunResult{
		Status: types.RunStatusOK,
		Stats:  types.RunStats{Total: 10, Passed: 10 - len(failedSpecs), Failed: len(failedSpecs)},
	}
	for _, spec := range failedSpecs {
		result.Runs = append(result.Runs, types.SpecResult{Spec: spec, Tests: 1, Failures: 1})
	}
	return result
}

func crashedResult(msg string) *types.RunResult {
	return &types.RunResult{
		Status:   types.RunStatusFailed,
		Failures: 1,
		Message:  msg,
	}
}

func TestDecideDefaultMode(t *testing.T) {
	tests := []struct {
		name     string
		mode     Mode
		isLast   bool
		result   *types.RunResult
		decision Decision
		observed bool
	}{
		{
			name:     "pass continues to next attempt",
			mode:     Mode{Attempts: 3},
			result:   passingResult(5),
			decision: DecisionContinue,
		},
		{
			name:     "pass on final attempt continues into natural loop end",
			mode:     Mode{Attempts: 3},
			isLast:   true,
			result:   passingResult(5),
			decision: DecisionContinue,
		},
		{
			name:     "failure stops the run",
			mode:     Mode{Attempts: 3},
			result:   failingResult("a.cy.js"),
			decision: DecisionStopFailure,
			observed: true,
		},
		{
			name:     "failure under force keeps going but sticks",
			mode:     Mode{Attempts: 3, ForceContinue: true},
			result:   failingResult("a.cy.js"),
			decision: DecisionContinue,
			observed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Decide(tt.mode, 1, tt.isLast, tt.result)
			assert.Equal(t, tt.decision, verdict.Decision)
			assert.Equal(t, tt.observed, verdict.FailureObserved)
			assert.Nil(t, verdict.Patch)
		})
	}
}

func TestDecideUntilPasses(t *testing.T) {
	mode := Mode{Attempts: 3, UntilPasses: true}

	t.Run("clean attempt stops with success mid run", func(t *testing.T) {
		verdict := Decide(mode, 2, false, passingResult(5))
		assert.Equal(t, DecisionStopSuccess, verdict.Decision)
		assert.False(t, verdict.FailureObserved)
	})

	t.Run("failing attempt retries without sticking", func(t *testing.T) {
		verdict := Decide(mode, 1, false, failingResult("a.cy.js"))
		assert.Equal(t, DecisionContinue, verdict.Decision)
		assert.False(t, verdict.FailureObserved, "an intermediate failure must not poison a later clean exit")
	})

	t.Run("exhausted attempts stop with failure", func(t *testing.T) {
		verdict := Decide(mode, 3, true, failingResult("a.cy.js"))
		assert.Equal(t, DecisionStopFailure, verdict.Decision)
		assert.True(t, verdict.FailureObserved)
		assert.Equal(t, "no attempts left", verdict.Reason)
	})

	t.Run("exhausted attempts under force still stick the failure", func(t *testing.T) {
		forced := Mode{Attempts: 3, UntilPasses: true, ForceContinue: true}
		verdict := Decide(forced, 3, true, failingResult("a.cy.js"))
		assert.Equal(t, DecisionContinue, verdict.Decision)
		assert.True(t, verdict.FailureObserved, "a never-passing orchestration cannot exit clean")
	})
}

func TestDecideRerunFailedOnly(t *testing.T) {
	mode := Mode{Attempts: 3, RerunFailedOnly: true}

	t.Run("failing specs restrict the next attempt", func(t *testing.T) {
		verdict := Decide(mode, 1, false, failingResult("a.cy.js", "b.cy.js"))
		assert.Equal(t, DecisionContinue, verdict.Decision)
		require.NotNil(t, verdict.Patch)
		assert.Equal(t, []string{"a.cy.js", "b.cy.js"}, verdict.Patch.Specs)
		assert.False(t, verdict.FailureObserved, "the restricted rerun owns the failure decision")
	})

	t.Run("no failing specs stops with success", func(t *testing.T) {
		verdict := Decide(mode, 2, false, passingResult(2))
		assert.Equal(t, DecisionStopSuccess, verdict.Decision)
		assert.Nil(t, verdict.Patch)
	})

	t.Run("no failing specs under force sweeps the full suite", func(t *testing.T) {
		forced := Mode{Attempts: 3, RerunFailedOnly: true, ForceContinue: true}
		verdict := Decide(forced, 2, false, passingResult(2))
		assert.Equal(t, DecisionContinue, verdict.Decision)
		assert.Nil(t, verdict.Patch, "force reruns the unrestricted original set")
	})

	t.Run("failure on the final attempt stops", func(t *testing.T) {
		verdict := Decide(mode, 3, true, failingResult("a.cy.js"))
		assert.Equal(t, DecisionStopFailure, verdict.Decision)
		assert.True(t, verdict.FailureObserved)
		assert.Nil(t, verdict.Patch)
	})

	t.Run("crash does not resolve as rerun success", func(t *testing.T) {
		verdict := Decide(mode, 1, false, crashedResult("browser gone"))
		assert.Equal(t, DecisionStopFailure, verdict.Decision)
		assert.True(t, verdict.FailureObserved)
		assert.Contains(t, verdict.Reason, "browser gone")
	})
}

func TestDecideEngineFailure(t *testing.T) {
	t.Run("crash stops the run", func(t *testing.T) {
		verdict := Decide(Mode{Attempts: 3}, 1, false, crashedResult("could not find chrome"))
		assert.Equal(t, DecisionStopFailure, verdict.Decision)
		assert.True(t, verdict.FailureObserved)
		assert.Contains(t, verdict.Reason, "could not find chrome")
	})

	t.Run("crash under force continues but sticks", func(t *testing.T) {
		verdict := Decide(Mode{Attempts: 3, ForceContinue: true}, 1, false, crashedResult("boom"))
		assert.Equal(t, DecisionContinue, verdict.Decision)
		assert.True(t, verdict.FailureObserved)
	})

	t.Run("crash takes precedence over until-passes", func(t *testing.T) {
		mode := Mode{Attempts: 3, UntilPasses: true}
		verdict := Decide(mode, 1, false, crashedResult("boom"))
		assert.Equal(t, DecisionStopFailure, verdict.Decision)
	})
}

func TestDecideCombinedModes(t *testing.T) {
	t.Run("rerun with until-passes carries the patch through a retry", func(t *testing.T) {
		mode := Mode{Attempts: 3, UntilPasses: true, RerunFailedOnly: true}
		verdict := Decide(mode, 1, false, failingResult("a.cy.js"))
		assert.Equal(t, DecisionContinue, verdict.Decision)
		require.NotNil(t, verdict.Patch)
		assert.Equal(t, []string{"a.cy.js"}, verdict.Patch.Specs)
	})

	t.Run("rerun with until-passes stops on a clean attempt", func(t *testing.T) {
		mode := Mode{Attempts: 3, UntilPasses: true, RerunFailedOnly: true}
		verdict := Decide(mode, 2, false, passingResult(3))
		assert.Equal(t, DecisionStopSuccess, verdict.Decision)
	})
}

func TestDecideIsPure(t *testing.T) {
	mode := Mode{Attempts: 3, RerunFailedOnly: true}
	result := failingResult("a.cy.js")

	first := Decide(mode, 1, false, result)
	second := Decide(mode, 1, false, result)
	assert.Equal(t, first, second)
}

func TestModeValidate(t *testing.T) {
	assert.NoError(t, Mode{Attempts: 1}.Validate())
	assert.NoError(t, Mode{Attempts: 10, UntilPasses: true}.Validate())
	assert.Error(t, Mode{Attempts: 0}.Validate())
	assert.Error(t, Mode{Attempts: -2}.Validate())
}

func TestDecisionString(t *testing.T) {
	assert.Equal(t, "continue", DecisionContinue.String())
	assert.Equal(t, "stop-success", DecisionStopSuccess.String())
	assert.Equal(t, "stop-failure", DecisionStopFailure.String())
}
