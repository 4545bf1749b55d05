// Package engine invokes the external Cypress-compatible binary and decodes
// the run report it prints on stdout. The report is the boundary: the engine
// is a black box, and everything the orchestration learns about a run comes
// from the parsed report.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// Runner runs one engine invocation and reports its parsed result. A non-nil
// error means the invocation itself could not complete (infrastructure); a
// run that completed with failing tests is a result, not an error.
type Runner interface {
	Run(ctx context.Context, cfg types.RunConfig) (*types.RunResult, error)
}

// CLIRunner shells out to the engine binary.
type CLIRunner struct {
	binary string
	echo   bool
	stdout io.Writer
	stderr io.Writer
	log    zerolog.Logger
	tracer trace.Tracer
}

// NewCLIRunner builds a runner for the given engine binary. When echo is set
// the engine's output is streamed to the console while still being captured
// for report parsing.
func NewCLIRunner(binary string, echo bool, logger zerolog.Logger) *CLIRunner {
	return &CLIRunner{
		binary: binary,
		echo:   echo,
		stdout: os.Stdout,
		stderr: os.Stderr,
		log:    logger,
		tracer: otel.Tracer("cypress-repeat-pro/engine"),
	}
}

// SetEchoWriters overrides the echo destinations. Intended for tests.
func (r *CLIRunner) SetEchoWriters(stdout, stderr io.Writer) {
	r.stdout = stdout
	r.stderr = stderr
}

// Run executes `<binary> run` with the arguments derived from cfg and parses
// the run report from stdout. A nonzero engine exit with a decodable report
// is a test failure and comes back as a result; spawn failures, cancellation
// and a missing report come back as errors.
func (r *CLIRunner) Run(ctx context.Context, cfg types.RunConfig) (*types.RunResult, error) {
	ctx, span := r.tracer.Start(ctx, "engine run")
	defer span.End()

	args := BuildArgs(cfg)
	cmd := exec.CommandContext(ctx, r.binary, args...)

	var stdout, stderr bytes.Buffer
	if r.echo {
		cmd.Stdout = io.MultiWriter(&stdout, r.stdout)
		cmd.Stderr = io.MultiWriter(&stderr, r.stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	r.log.Debug().Str("command", cmd.String()).Msg("Invoking engine")
	runErr := cmd.Run()

	if ctx.Err() != nil {
		return nil, fmt.Errorf("engine run interrupted: %w", ctx.Err())
	}

	result, parseErr := ParseRunReport(stdout.Bytes())
	if parseErr == nil {
		if runErr != nil {
			// The engine exits nonzero when tests fail; the report already
			// carries that outcome.
			r.log.Debug().Err(runErr).Msg("Engine exited nonzero with a run report")
		}
		return result, nil
	}

	if runErr != nil {
		if stderr.Len() > 0 {
			return nil, fmt.Errorf("engine run failed: %w\nstderr: %s", runErr, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("engine run failed: %w", runErr)
	}
	return nil, fmt.Errorf("engine exited cleanly but %w", parseErr)
}

// BuildArgs computes the engine run command line for one attempt. Extra
// arguments are forwarded verbatim after the computed ones.
func BuildArgs(cfg types.RunConfig) []string {
	args := []string{"run"}
	if len(cfg.Specs) > 0 {
		args = append(args, "--spec", strings.Join(cfg.Specs, ","))
	}
	if cfg.Env != "" {
		args = append(args, "--env", cfg.Env)
	}
	if cfg.Group != "" {
		args = append(args, "--group", cfg.Group)
	}
	if cfg.Record {
		args = append(args, "--record")
	}
	if cfg.Browser != "" {
		args = append(args, "--browser", cfg.Browser)
	}
	if cfg.ConfigFile != "" {
		args = append(args, "--config-file", cfg.ConfigFile)
	}
	if cfg.Project != "" {
		args = append(args, "--project", cfg.Project)
	}
	if len(cfg.Tags) > 0 {
		args = append(args, "--tag", strings.Join(cfg.Tags, ","))
	}
	return append(args, cfg.ExtraArgs...)
}
