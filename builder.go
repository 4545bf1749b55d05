package repeat

import (
	"fmt"

	"github.com/sagar-qa007/cypress-repeat-pro/types"
)

// BuildRunConfigs produces one configuration per attempt from the base
// template. Each one is an independent deep copy: the rerun policy patches
// later attempts in place, and that must never reach the base or an earlier
// attempt.
//
// Attempt k (1-indexed) gets two env identifiers appended, so the suite under
// test can tell which attempt it is running in, and a `-k-of-N` group suffix
// when a group label is set and more than one attempt is configured.
func BuildRunConfigs(base types.RunConfig, n int) []types.RunConfig {
	configs := make([]types.RunConfig, 0, n)
	for k := 1; k <= n; k++ {
		cfg := base.Clone()

		id := fmt.Sprintf("cypress_repeat_n=%d,cypress_repeat_k=%d", n, k)
		if cfg.Env == "" {
			cfg.Env = id
		} else {
			cfg.Env += "," + id
		}

		if cfg.Group != "" && n > 1 {
			cfg.Group = fmt.Sprintf("%s-%d-of-%d", cfg.Group, k, n)
		}

		configs = append(configs, cfg)
	}
	return configs
}
