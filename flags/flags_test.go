package flags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// TestOptionalFlagsDontSetRequired asserts that all flags deemed optional set
// the Required field to false.
func TestOptionalFlagsDontSetRequired(t *testing.T) {
	for _, flag := range optionalFlags {
		reqFlag, ok := flag.(cli.RequiredFlag)
		require.True(t, ok)
		require.False(t, reqFlag.IsRequired())
	}
}

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
		})
	}
}

func TestEnvVarFormat(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")

			expectedEnvVar := FlagNameToEnvVarName(flagName, EnvVarPrefix)
			require.Equal(t, expectedEnvVar, envFlags[0])
		})
	}
}

func TestDefaults(t *testing.T) {
	assert.Equal(t, 1, Attempts.Value)
	assert.Equal(t, "cypress", CypressBinary.Value)
	assert.Equal(t, "cypress-repeat-summary.txt", SummaryFile.Value)
	assert.Equal(t, "info", LogLevel.Value)
}

func TestParseEngineArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected types.RunConfig
	}{
		{
			name:     "no args",
			args:     nil,
			expected: types.RunConfig{},
		},
		{
			name: "spec list is split on commas",
			args: []string{"--spec", "cypress/e2e/a.cy.js,cypress/e2e/b.cy.js"},
			expected: types.RunConfig{
				Specs: []string{"cypress/e2e/a.cy.js", "cypress/e2e/b.cy.js"},
			},
		},
		{
			name: "short and inline forms",
			args: []string{"-s", "a.cy.js", "--browser=firefox", "-e", "api=staging"},
			expected: types.RunConfig{
				Specs:   []string{"a.cy.js"},
				Browser: "firefox",
				Env:     "api=staging",
			},
		},
		{
			name: "repeated env values are comma joined",
			args: []string{"--env", "a=1", "--env", "b=2"},
			expected: types.RunConfig{
				Env: "a=1,b=2",
			},
		},
		{
			name: "record as bare boolean",
			args: []string{"--group", "nightly", "--record"},
			expected: types.RunConfig{
				Group:  "nightly",
				Record: true,
			},
		},
		{
			name: "record with explicit false",
			args: []string{"--record", "false"},
			expected: types.RunConfig{
				Record: false,
			},
		},
		{
			name: "record inline true keeps following token as extra",
			args: []string{"--record=true", "--headed"},
			expected: types.RunConfig{
				Record:    true,
				ExtraArgs: []string{"--headed"},
			},
		},
		{
			name: "tags accumulate across flags",
			args: []string{"--tag", "smoke,slow", "-t", "extra"},
			expected: types.RunConfig{
				Tags: []string{"smoke", "slow", "extra"},
			},
		},
		{
			name: "unknown flags pass through in order",
			args: []string{"--headed", "--spec", "a.cy.js", "--reporter", "junit", "--no-exit"},
			expected: types.RunConfig{
				Specs:     []string{"a.cy.js"},
				ExtraArgs: []string{"--headed", "--reporter", "junit", "--no-exit"},
			},
		},
		{
			name: "project and config file are lifted",
			args: []string{"-P", "./web", "-C", "cypress.ci.config.js"},
			expected: types.RunConfig{
				Project:    "./web",
				ConfigFile: "cypress.ci.config.js",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseEngineArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg)
		})
	}
}

func TestParseEngineArgsMissingValue(t *testing.T) {
	for _, args := range [][]string{
		{"--spec"},
		{"--headed", "-e"},
		{"--group"},
	} {
		_, err := ParseEngineArgs(args)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requires a value")
	}
}
