package flags

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

const EnvVarPrefix = "CYPRESS_REPEAT"

// PrefixEnvVar prefixes the environment variable suffix with the application
// prefix, yielding the single canonical env var for a flag.
func PrefixEnvVar(prefix, suffix string) []string {
	return []string{prefix + "_" + suffix}
}

// FlagNameToEnvVarName converts a flag name to its canonical environment
// variable name, e.g. "summary-file" becomes "CYPRESS_REPEAT_SUMMARY_FILE".
func FlagNameToEnvVarName(f string, prefix string) string {
	f = strings.ReplaceAll(strings.ReplaceAll(strings.ToUpper(f), "-", "_"), ".", "_")
	return fmt.Sprintf("%s_%s", prefix, f)
}

var (
	Attempts = &cli.IntFlag{
		Name:    "attempts",
		Aliases: []string{"n"},
		Value:   1,
		EnvVars: PrefixEnvVar(EnvVarPrefix, "ATTEMPTS"),
		Usage:   "Total number of times to invoke the engine's run command",
	}
	UntilPasses = &cli.BoolFlag{
		Name:    "until-passes",
		Value:   false,
		EnvVars: PrefixEnvVar(EnvVarPrefix, "UNTIL_PASSES"),
		Usage:   "Stop as soon as one attempt finishes with zero failing tests",
	}
	RerunFailedOnly = &cli.BoolFlag{
		Name:    "rerun-failed-only",
		Value:   false,
		EnvVars: PrefixEnvVar(EnvVarPrefix, "RERUN_FAILED_ONLY"),
		Usage:   "Restrict each next attempt to the spec files that failed in the previous one",
	}
	Force = &cli.BoolFlag{
		Name:    "force",
		Value:   false,
		EnvVars: PrefixEnvVar(EnvVarPrefix, "FORCE"),
		Usage:   "Keep running remaining attempts even after failures",
	}
	CypressBinary = &cli.StringFlag{
		Name:    "cypress-binary",
		Value:   "cypress",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "CYPRESS_BINARY"),
		Usage:   "Path to the Cypress-compatible engine binary",
	}
	SummaryFile = &cli.StringFlag{
		Name:    "summary-file",
		Value:   "cypress-repeat-summary.txt",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "SUMMARY_FILE"),
		Usage:   "Path of the text summary written when the orchestration finishes",
	}
	FlakeReport = &cli.StringFlag{
		Name:    "flake-report",
		Value:   "",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "FLAKE_REPORT"),
		Usage:   "Directory to write per-spec stability reports into (empty disables)",
	}
	MonitorAddr = &cli.StringFlag{
		Name:    "monitor-addr",
		Value:   "",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "MONITOR_ADDR"),
		Usage:   "host:port to serve /healthz and /metrics on while attempts run (empty disables)",
	}
	ConfigFile = &cli.StringFlag{
		Name:    "config",
		Value:   "",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "CONFIG"),
		Usage:   "YAML file with flag defaults (eg. '.cypress-repeat.yaml')",
	}
	Quiet = &cli.BoolFlag{
		Name:    "quiet",
		Value:   false,
		EnvVars: PrefixEnvVar(EnvVarPrefix, "QUIET"),
		Usage:   "Do not echo the engine's output to the console",
	}
	SkipVersionCheck = &cli.BoolFlag{
		Name:    "skip-version-check",
		Value:   false,
		EnvVars: PrefixEnvVar(EnvVarPrefix, "SKIP_VERSION_CHECK"),
		Usage:   "Skip the minimum engine version gate before the first attempt",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "LOG_LEVEL"),
		Usage:   "Log level (debug|info|warn|error)",
	}
	LogFile = &cli.StringFlag{
		Name:    "log-file",
		Value:   "",
		EnvVars: PrefixEnvVar(EnvVarPrefix, "LOG_FILE"),
		Usage:   "Also write logs to this rotating file",
	}
)

// Every flag has a usable default, so none are required. The split is kept so
// a future required flag lands in the right place.
var requiredFlags = []cli.Flag{}

var optionalFlags = []cli.Flag{
	Attempts,
	UntilPasses,
	RerunFailedOnly,
	Force,
	CypressBinary,
	SummaryFile,
	FlakeReport,
	MonitorAddr,
	ConfigFile,
	Quiet,
	SkipVersionCheck,
	LogLevel,
	LogFile,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}

// ParseEngineArgs splits the raw engine arguments (everything after "--" on
// the command line) into the fields the orchestration must own and a verbatim
// remainder. Spec selection, env, group, record, browser, config file,
// project and tags are lifted into the RunConfig because the repeat policies
// rewrite them between attempts; every other token is forwarded to the engine
// untouched, in order.
func ParseEngineArgs(args []string) (types.RunConfig, error) {
	var cfg types.RunConfig
	i := 0
	for i < len(args) {
		name, inline, hasInline := splitFlag(args[i])
		switch name {
		case "--spec", "-s":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			cfg.Specs = append(cfg.Specs, splitList(v)...)
			i = next
		case "--env", "-e":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			if cfg.Env == "" {
				cfg.Env = v
			} else {
				cfg.Env += "," + v
			}
			i = next
		case "--group":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			cfg.Group = v
			i = next
		case "--record":
			// Boolean in the engine CLI, but an explicit true/false value is
			// also accepted there.
			switch {
			case hasInline:
				cfg.Record = inline != "false"
				i++
			case i+1 < len(args) && (args[i+1] == "true" || args[i+1] == "false"):
				cfg.Record = args[i+1] == "true"
				i += 2
			default:
				cfg.Record = true
				i++
			}
		case "--browser", "-b":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			cfg.Browser = v
			i = next
		case "--config-file", "-C":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			cfg.ConfigFile = v
			i = next
		case "--project", "-P":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			cfg.Project = v
			i = next
		case "--tag", "-t":
			v, next, err := flagValue(args, i, inline, hasInline)
			if err != nil {
				return cfg, err
			}
			cfg.Tags = append(cfg.Tags, splitList(v)...)
			i = next
		default:
			cfg.ExtraArgs = append(cfg.ExtraArgs, args[i])
			i++
		}
	}
	return cfg, nil
}

// splitFlag splits "--name=value" into its name and inline value.
func splitFlag(arg string) (name, value string, ok bool) {
	if idx := strings.IndexByte(arg, '='); idx >= 0 {
		return arg[:idx], arg[idx+1:], true
	}
	return arg, "", false
}

// flagValue resolves a flag's value, either inline (--flag=v) or from the
// following token (--flag v), and returns the index of the next unread token.
func flagValue(args []string, i int, inline string, hasInline bool) (string, int, error) {
	if hasInline {
		return inline, i + 1, nil
	}
	if i+1 >= len(args) {
		return "", 0, fmt.Errorf("flag %s requires a value", args[i])
	}
	return args[i+1], i + 2, nil
}

// splitList splits a comma-separated engine list value, dropping empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
