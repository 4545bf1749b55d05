package types

// RunConfig describes a single invocation of the engine's run command.
// The orchestrator builds one RunConfig per attempt; each one is an
// independent deep copy so patching a later attempt can never leak into an
// earlier one or into the base template.
type RunConfig struct {
	Specs      []string // spec file selection; empty means the engine's default set
	Env        string   // comma-joined key=value pairs, passed through --env
	Group      string   // dashboard group label
	Record     bool     // record the run to the dashboard
	Browser    string   // browser to launch
	ConfigFile string   // engine config file override
	Project    string   // project directory
	Tags       []string // dashboard tags
	ExtraArgs  []string // remaining run arguments, forwarded verbatim
}

// Clone returns a deep copy of the configuration with freshly allocated
// slices. Mutating the copy must never show through to the receiver.
func (c RunConfig) Clone() RunConfig {
	out := c
	out.Specs = append([]string(nil), c.Specs...)
	out.Tags = append([]string(nil), c.Tags...)
	out.ExtraArgs = append([]string(nil), c.ExtraArgs...)
	return out
}

// ConfigPatch narrows the scope of a subsequent attempt. Today the only
// supported narrowing is spec selection, used by rerun-failed-only.
type ConfigPatch struct {
	Specs []string
}

// Apply rewrites the target configuration's spec selection. A nil patch is a
// no-op so callers can apply verdicts unconditionally.
func (p *ConfigPatch) Apply(cfg *RunConfig) {
	if p == nil || cfg == nil {
		return
	}
	cfg.Specs = append([]string(nil), p.Specs...)
}
