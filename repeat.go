// Package repeat orchestrates repeated invocations of a Cypress-compatible
// test engine. One orchestration runs the engine's run command up to N times,
// folds every attempt's statistics into a single summary, and maps the whole
// sequence onto one process exit code.
package repeat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sagar-qa007/cypress-repeat-pro/engine"
	"github.com/sagar-qa007/cypress-repeat-pro/metrics"
	"github.com/sagar-qa007/cypress-repeat-pro/reporting"
	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// Orchestrator drives the attempt sequence: build N run configurations, run
// them one at a time, consult the policy after each, and finalize exactly
// once whatever way the sequence ends.
type Orchestrator struct {
	ctx     context.Context
	config  *Config
	version string
	runID   string
	runner  engine.Runner
	sink    *reporting.SummarySink
	tracer  trace.Tracer
}

func New(ctx context.Context, config *Config, version string) (*Orchestrator, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if err := config.Mode.Validate(); err != nil {
		return nil, err
	}

	config.Log.Debug().
		Int("attempts", config.Mode.Attempts).
		Bool("untilPasses", config.Mode.UntilPasses).
		Bool("rerunFailedOnly", config.Mode.RerunFailedOnly).
		Bool("force", config.Mode.ForceContinue).
		Str("binary", config.EngineBinary).
		Msg("Creating orchestrator")

	return &Orchestrator{
		ctx:     ctx,
		config:  config,
		version: version,
		runner:  engine.NewCLIRunner(config.EngineBinary, !config.Quiet, config.Log),
		sink:    reporting.NewSummarySink(config.SummaryFile),
		tracer:  otel.Tracer("cypress-repeat-pro"),
	}, nil
}

// Run executes the whole orchestration and returns its summary. The returned
// error is nil on success, a TestFailureError when any attempt's failure
// counts against the outcome, and an InfraError when the engine could not be
// run at all. Finalization (summary file, attempt table, flake report, final
// metrics) happens on every path, including infrastructure errors, so the
// attempts that did complete are never lost.
func (o *Orchestrator) Run(ctx context.Context) (summary *Summary, err error) {
	ctx, span := o.tracer.Start(ctx, "orchestration")
	defer span.End()

	o.runID = uuid.New().String()
	log := o.config.Log.With().Str("run_id", o.runID).Logger()

	mode := o.config.Mode
	n := mode.Attempts

	log.Info().
		Int("attempts", n).
		Bool("untilPasses", mode.UntilPasses).
		Bool("rerunFailedOnly", mode.RerunFailedOnly).
		Bool("force", mode.ForceContinue).
		Str("version", o.version).
		Msg("Starting orchestration")

	if err := o.sink.Clear(); err != nil {
		return nil, NewInfraError(fmt.Errorf("removing stale summary %s: %w", o.sink.Path(), err))
	}

	agg := NewAggregator(n)
	results := make([]*types.RunResult, 0, n)
	start := time.Now()

	var (
		failureObserved bool
		failureReason   string
		infraErr        error
	)

	defer func() {
		s := agg.Finalize()
		summary = &s
		o.finalize(s, results, time.Since(start), infraErr, failureObserved, log)
		switch {
		case infraErr != nil:
			err = NewInfraError(infraErr)
		case failureObserved:
			err = NewTestFailureError(failureReason)
		default:
			err = nil
		}
	}()

	if !o.config.SkipVersionCheck {
		if gateErr := o.gateEngineVersion(ctx, log); gateErr != nil {
			infraErr = gateErr
			return
		}
	}

	configs := BuildRunConfigs(o.config.BaseRun, n)

	for k := 1; k <= n; k++ {
		isLast := k == n

		result, runErr := o.runAttempt(ctx, k, n, configs[k-1], log)
		if runErr != nil {
			infraErr = runErr
			return
		}

		agg.Accumulate(result)
		results = append(results, result)
		metrics.RecordAttempt(o.runID, k, result.Status, result.Stats)

		verdict := Decide(mode, k, isLast, result)
		log.Info().
			Int("attempt", k).
			Str("decision", verdict.Decision.String()).
			Str("reason", verdict.Reason).
			Msg("Attempt evaluated")

		if verdict.FailureObserved && !failureObserved {
			failureObserved = true
			failureReason = fmt.Sprintf("attempt %d: %s", k, verdict.Reason)
		}
		if verdict.Patch != nil && !isLast {
			verdict.Patch.Apply(&configs[k])
		}

		switch verdict.Decision {
		case DecisionStopSuccess, DecisionStopFailure:
			return
		case DecisionContinue:
		}
	}
	return
}

// runAttempt runs one engine invocation under its own span.
func (o *Orchestrator) runAttempt(ctx context.Context, k, n int, cfg types.RunConfig, log zerolog.Logger) (*types.RunResult, error) {
	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("attempt %d", k))
	defer span.End()

	log.Info().Msgf("***** attempt %d of %d *****", k, n)

	start := time.Now()
	result, err := o.runner.Run(ctx, cfg)
	if err != nil {
		metrics.RecordErrorDetails("engine_run", err)
		return nil, fmt.Errorf("attempt %d: %w", k, err)
	}

	log.Info().
		Int("attempt", k).
		Str("status", string(result.Status)).
		Int("tests", result.Stats.Total).
		Int("passed", result.Stats.Passed).
		Int("failed", result.Stats.Failed).
		Dur("took", time.Since(start)).
		Msg("Attempt completed")
	return result, nil
}

// gateEngineVersion rejects engines older than the minimum supported release.
// Failing to even probe the version is only a warning: CI images regularly
// wrap the binary in scripts that mangle --version output.
func (o *Orchestrator) gateEngineVersion(ctx context.Context, log zerolog.Logger) error {
	version, err := engine.Version(ctx, o.config.EngineBinary)
	if err != nil {
		log.Warn().Err(err).Msg("Could not determine engine version, continuing")
		return nil
	}
	if err := engine.CheckVersion(version); err != nil {
		return err
	}
	log.Debug().Str("engineVersion", version).Msg("Engine version accepted")
	return nil
}

// finalize runs on every exit path, exactly once per orchestration.
func (o *Orchestrator) finalize(summary Summary, results []*types.RunResult, took time.Duration, infraErr error, failureObserved bool, log zerolog.Logger) {
	o.printAttemptTable(summary, results, took)
	fmt.Print(summary.Render())

	if err := o.sink.Write(summary.Render()); err != nil {
		log.Error().Err(err).Str("path", o.sink.Path()).Msg("Failed to write summary file")
		metrics.RecordErrorDetails("summary_write", err)
	} else {
		log.Info().Str("path", o.sink.Path()).Msg("Summary written")
	}

	if o.config.FlakeReportDir != "" {
		report := reporting.BuildFlakeReport(results, o.runID)
		files, err := reporting.SaveFlakeReport(report, o.config.FlakeReportDir)
		if err != nil {
			log.Error().Err(err).Msg("Failed to write flake report")
			metrics.RecordErrorDetails("flake_report", err)
		} else {
			log.Info().Strs("files", files).Msg("Flake report written")
		}
	}

	outcome := "pass"
	switch {
	case infraErr != nil:
		outcome = "error"
	case failureObserved:
		outcome = "fail"
	}
	metrics.RecordOrchestration(o.runID, outcome, summary.Completed, took)

	log.Info().
		Str("outcome", outcome).
		Int("completed", summary.Completed).
		Dur("took", took).
		Msg("Orchestration finished")
}

// printAttemptTable renders the per-attempt results table to stdout.
func (o *Orchestrator) printAttemptTable(summary Summary, results []*types.RunResult, took time.Duration) {
	renderAttemptTable(os.Stdout, summary, results, took)
}
