package repeat

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/sagar-qa007/cypress-repeat-pro/flags"
	"github.com/sagar-qa007/cypress-repeat-pro/logging"
	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given. Its absence is not an error.
const DefaultConfigFile = ".cypress-repeat.yaml"

// Config holds the application configuration
type Config struct {
	Mode             Mode            // attempt count and policy switches
	BaseRun          types.RunConfig // engine run template parsed from the trailing args
	EngineBinary     string
	SummaryFile      string
	FlakeReportDir   string // empty disables the flake report
	MonitorAddr      string // empty disables the monitor server
	Quiet            bool   // do not echo engine output to the console
	SkipVersionCheck bool
	LogLevel         string
	LogFile          string
	Log              zerolog.Logger
}

// fileConfig mirrors the YAML defaults file. Pointer fields keep "absent"
// distinguishable from a zero value, so the file never clobbers a flag the
// user set explicitly.
type fileConfig struct {
	Attempts         *int    `yaml:"attempts"`
	UntilPasses      *bool   `yaml:"until-passes"`
	RerunFailedOnly  *bool   `yaml:"rerun-failed-only"`
	Force            *bool   `yaml:"force"`
	CypressBinary    *string `yaml:"cypress-binary"`
	SummaryFile      *string `yaml:"summary-file"`
	FlakeReport      *string `yaml:"flake-report"`
	MonitorAddr      *string `yaml:"monitor-addr"`
	Quiet            *bool   `yaml:"quiet"`
	SkipVersionCheck *bool   `yaml:"skip-version-check"`
	LogLevel         *string `yaml:"log-level"`
	LogFile          *string `yaml:"log-file"`
}

// NewConfig creates a new Config from cli context. Precedence per setting:
// explicit flag or env var, then the YAML defaults file, then the flag
// default. The logger field is injected by the caller once logging is up,
// because the log settings themselves resolve here.
func NewConfig(ctx *cli.Context) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}

	file, err := loadFileConfig(ctx.String(flags.ConfigFile.Name), ctx.IsSet(flags.ConfigFile.Name))
	if err != nil {
		return nil, err
	}

	mode := Mode{
		Attempts:        resolveInt(ctx, flags.Attempts.Name, file.Attempts),
		UntilPasses:     resolveBool(ctx, flags.UntilPasses.Name, file.UntilPasses),
		RerunFailedOnly: resolveBool(ctx, flags.RerunFailedOnly.Name, file.RerunFailedOnly),
		ForceContinue:   resolveBool(ctx, flags.Force.Name, file.Force),
	}
	if err := mode.Validate(); err != nil {
		return nil, err
	}

	engineArgs := ctx.Args().Slice()
	if len(engineArgs) > 0 && engineArgs[0] == "--" {
		engineArgs = engineArgs[1:]
	}
	baseRun, err := flags.ParseEngineArgs(engineArgs)
	if err != nil {
		return nil, fmt.Errorf("parsing engine arguments: %w", err)
	}

	binary := resolveString(ctx, flags.CypressBinary.Name, file.CypressBinary)
	if binary == "" {
		return nil, errors.New("engine binary is required")
	}
	summaryFile := resolveString(ctx, flags.SummaryFile.Name, file.SummaryFile)
	if summaryFile == "" {
		return nil, errors.New("summary file path is required")
	}

	logLevel := resolveString(ctx, flags.LogLevel.Name, file.LogLevel)
	if _, err := logging.ParseLevel(logLevel); err != nil {
		return nil, err
	}

	return &Config{
		Mode:             mode,
		BaseRun:          baseRun,
		EngineBinary:     binary,
		SummaryFile:      summaryFile,
		FlakeReportDir:   resolveString(ctx, flags.FlakeReport.Name, file.FlakeReport),
		MonitorAddr:      resolveString(ctx, flags.MonitorAddr.Name, file.MonitorAddr),
		Quiet:            resolveBool(ctx, flags.Quiet.Name, file.Quiet),
		SkipVersionCheck: resolveBool(ctx, flags.SkipVersionCheck.Name, file.SkipVersionCheck),
		LogLevel:         logLevel,
		LogFile:          resolveString(ctx, flags.LogFile.Name, file.LogFile),
	}, nil
}

// loadFileConfig reads the YAML defaults file. When the path was not given
// explicitly, a missing default file yields an empty config.
func loadFileConfig(path string, explicit bool) (fileConfig, error) {
	var cfg fileConfig
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

func resolveString(ctx *cli.Context, name string, fileValue *string) string {
	if !ctx.IsSet(name) && fileValue != nil {
		return *fileValue
	}
	return ctx.String(name)
}

func resolveBool(ctx *cli.Context, name string, fileValue *bool) bool {
	if !ctx.IsSet(name) && fileValue != nil {
		return *fileValue
	}
	return ctx.Bool(name)
}

func resolveInt(ctx *cli.Context, name string, fileValue *int) int {
	if !ctx.IsSet(name) && fileValue != nil {
		return *fileValue
	}
	return ctx.Int(name)
}
