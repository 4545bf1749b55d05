package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	repeat "github.com/sagar-qa007/cypress-repeat-pro"
	"github.com/sagar-qa007/cypress-repeat-pro/exitcodes"
	"github.com/sagar-qa007/cypress-repeat-pro/flags"
	"github.com/sagar-qa007/cypress-repeat-pro/logging"
	"github.com/sagar-qa007/cypress-repeat-pro/service"
)

var (
	Version   = "v1.0.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := newApp()

	// Telemetry is opt-in: without an OTLP endpoint the tracer provider stays
	// a no-op and spans cost nothing.
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") != "" {
		otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
			otelconfig.WithServiceName(app.Name),
			otelconfig.WithServiceVersion(app.Version),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to set up OpenTelemetry")
		}
		defer otelShutdown()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal().Err(err).Msg("Application failed")
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "cypress-repeat-pro"
	app.Usage = "Repeat a Cypress-compatible test suite several times in a row"
	app.Description = "cypress-repeat-pro re-invokes the engine's run command up to N times, " +
		"with optional until-passes, rerun-failed-only and force policies, and folds " +
		"every attempt into one summary file and process exit code."
	app.Commands = []*cli.Command{
		{
			Name:      "run",
			Usage:     "Run the engine repeatedly and aggregate the results",
			ArgsUsage: "[-- engine run arguments]",
			Flags:     flags.Flags,
			Action:    run,
		},
	}
	app.ExitErrHandler = func(c *cli.Context, err error) {
		var exitErr cli.ExitCoder
		if errors.As(err, &exitErr) {
			// Use the exit code from the ExitCoder
			cli.HandleExitCoder(exitErr)
		} else if err != nil {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitCodeForError(err)))
		}
	}
	return app
}

// exitCodeForError maps orchestration errors onto process exit codes.
func exitCodeForError(err error) int {
	if repeat.IsInfraError(err) {
		// Runtime errors (config, spawn, missing report) exit with code 2
		return exitcodes.RuntimeErr
	}
	if repeat.IsTestFailureError(err) {
		// Test failures exit with code 1
		return exitcodes.TestFailure
	}
	// Unspecified errors default to the test-failure code
	return exitcodes.TestFailure
}

func run(cliCtx *cli.Context) error {
	cfg, err := repeat.NewConfig(cliCtx)
	if err != nil {
		return repeat.NewInfraError(fmt.Errorf("failed to create config: %w", err))
	}

	logger := logging.Init(logging.Config{Level: cfg.LogLevel, LogFile: cfg.LogFile})
	defer logging.Close()
	cfg.Log = logger

	if cfg.MonitorAddr != "" {
		svc := service.New(logger)
		svc.Start(cliCtx.Context, cfg.MonitorAddr)
		defer func() {
			if err := svc.Shutdown(); err != nil {
				logger.Warn().Err(err).Msg("Monitor server shutdown")
			}
		}()
	}

	orchestrator, err := repeat.New(cliCtx.Context, cfg, Version)
	if err != nil {
		return repeat.NewInfraError(fmt.Errorf("failed to create orchestrator: %w", err))
	}

	_, err = orchestrator.Run(cliCtx.Context)
	return err
}
