// Package config provides configuration management for Eidetic: thresholds,
// per-agent LLM backend selection, store/adapter/event-bus settings.
package config

import (
	"fmt"
	"sync"
)

// AgentConfig configures one LLM-backed role's calls to pkg/llmoracle.
type AgentConfig struct {
	Backend     LLMBackend `yaml:"backend" validate:"required"`
	Model       string     `yaml:"model" validate:"required"`
	APIKeyEnv   string     `yaml:"api_key_env,omitempty"`
	Temperature float32    `yaml:"temperature,omitempty"`
	MaxTokens   int        `yaml:"max_tokens,omitempty" validate:"omitempty,min=1"`
}

// AgentRegistry stores per-role agent configurations with thread-safe access.
type AgentRegistry struct {
	agents map[AgentRole]*AgentConfig
	mu     sync.RWMutex
}

// NewAgentRegistry creates a registry from a defensive copy of the given map.
func NewAgentRegistry(agents map[AgentRole]*AgentConfig) *AgentRegistry {
	copied := make(map[AgentRole]*AgentConfig, len(agents))
	for k, v := range agents {
		copied[k] = v
	}
	return &AgentRegistry{agents: copied}
}

// Get retrieves an agent configuration by role.
func (r *AgentRegistry) Get(role AgentRole) (*AgentConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, exists := r.agents[role]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrAgentNotFound, role)
	}
	return agent, nil
}

// GetAll returns a copy of all agent configurations.
func (r *AgentRegistry) GetAll() map[AgentRole]*AgentConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[AgentRole]*AgentConfig, len(r.agents))
	for k, v := range r.agents {
		result[k] = v
	}
	return result
}

// Len returns the number of configured roles.
func (r *AgentRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.agents)
}
