package config

import (
	"fmt"

	"dario.cat/mergo"
)

// mergeAgents merges built-in per-role defaults with user-defined overrides.
// A role present in userAgents entirely replaces the built-in entry for that
// role (agent roles are fixed by AgentRole, unlike tarsy's open-ended named
// agent registry, so there is no per-field reconciliation to do here).
func mergeAgents(builtin, user map[AgentRole]*AgentConfig) map[AgentRole]*AgentConfig {
	result := make(map[AgentRole]*AgentConfig, len(builtin))
	for role, cfg := range builtin {
		cfgCopy := *cfg
		result[role] = &cfgCopy
	}
	for role, cfg := range user {
		cfgCopy := *cfg
		result[role] = &cfgCopy
	}
	return result
}

// mergeDefaults overlays a user-provided struct onto system defaults using
// mergo, so a YAML file that only sets `novelty_rate_threshold` doesn't have
// to repeat every other threshold. Zero-value fields in `user` are left as
// the default; non-zero fields in `user` win.
func mergeDefaults[T any](base T, user T) (T, error) {
	if err := mergo.Merge(&base, user, mergo.WithOverride); err != nil {
		return base, fmt.Errorf("merge defaults: %w", err)
	}
	return base, nil
}
