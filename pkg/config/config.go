package config

// Config is the umbrella configuration object returned by Initialize and
// threaded through cmd/eidetic and pkg/api.
type Config struct {
	configDir string

	Thresholds ThresholdConfig
	Store      StoreConfig
	Events     EventsConfig
	Adapter    AdapterConfig
	HTTP       HTTPConfig

	Agents *AgentRegistry
}

// ConfigDir returns the directory Initialize loaded configuration from.
func (c *Config) ConfigDir() string { return c.configDir }

// ConfigStats summarizes loaded configuration for startup logging.
type ConfigStats struct {
	Agents int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{Agents: c.Agents.Len()}
}

// GetAgent retrieves an agent configuration by role.
// Convenience wrapper over AgentRegistry.Get.
func (c *Config) GetAgent(role AgentRole) (*AgentConfig, error) {
	return c.Agents.Get(role)
}
