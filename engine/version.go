package engine

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/acarl005/stripansi"
	"golang.org/x/mod/semver"
)

// MinVersion is the oldest engine release whose run command and report shape
// the orchestration supports.
const MinVersion = "v5.0.0"

var versionPattern = regexp.MustCompile(`\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?`)

// Version probes `<binary> --version` and returns the first semantic version
// found in its output, in canonical "vX.Y.Z" form.
func Version(ctx context.Context, binary string) (string, error) {
	out, err := exec.CommandContext(ctx, binary, "--version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("failed to probe %s --version: %w", binary, err)
	}
	return extractVersion(string(out))
}

// extractVersion pulls the first semver out of version-probe output. The
// engine prints several lines (package version, binary version); the first
// match wins.
func extractVersion(out string) (string, error) {
	m := versionPattern.FindString(stripansi.Strip(out))
	if m == "" {
		return "", fmt.Errorf("no version found in engine output %q", strings.TrimSpace(out))
	}
	return "v" + m, nil
}

// CheckVersion enforces the minimum supported engine version.
func CheckVersion(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("unparseable engine version %q", version)
	}
	if semver.Compare(version, MinVersion) < 0 {
		return fmt.Errorf("engine version %s is older than the minimum supported %s", version, MinVersion)
	}
	return nil
}
