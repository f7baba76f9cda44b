package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EideticYAMLConfig represents the complete eidetic.yaml file structure.
type EideticYAMLConfig struct {
	Thresholds ThresholdConfig            `yaml:"thresholds"`
	Store      StoreConfig                `yaml:"store"`
	Events     EventsConfig               `yaml:"events"`
	Adapter    AdapterConfig              `yaml:"adapter"`
	HTTP       HTTPConfig                 `yaml:"http"`
	Agents     map[AgentRole]*AgentConfig `yaml:"agents"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load eidetic.yaml from configDir
//  2. Expand environment variables
//  3. Merge user values over built-in defaults
//  4. Build the agent registry
//  5. Validate
func Initialize(_ context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully", "agents", stats.Agents)

	return cfg, nil
}

func load(configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	yamlCfg, err := loader.loadEideticYAML()
	if err != nil {
		return nil, NewLoadError("eidetic.yaml", err)
	}

	thresholds, err := mergeDefaults(DefaultThresholds(), yamlCfg.Thresholds)
	if err != nil {
		return nil, fmt.Errorf("merge thresholds: %w", err)
	}
	store, err := mergeDefaults(DefaultStore(), yamlCfg.Store)
	if err != nil {
		return nil, fmt.Errorf("merge store config: %w", err)
	}
	events, err := mergeDefaults(DefaultEvents(), yamlCfg.Events)
	if err != nil {
		return nil, fmt.Errorf("merge events config: %w", err)
	}
	adapter, err := mergeDefaults(DefaultAdapter(), yamlCfg.Adapter)
	if err != nil {
		return nil, fmt.Errorf("merge adapter config: %w", err)
	}
	httpCfg, err := mergeDefaults(DefaultHTTP(), yamlCfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("merge http config: %w", err)
	}

	agents := mergeAgents(map[AgentRole]*AgentConfig{}, yamlCfg.Agents)

	return &Config{
		configDir:  configDir,
		Thresholds: thresholds,
		Store:      store,
		Events:     events,
		Adapter:    adapter,
		HTTP:       httpCfg,
		Agents:     NewAgentRegistry(agents),
	}, nil
}

func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadEideticYAML() (*EideticYAMLConfig, error) {
	cfg := &EideticYAMLConfig{Agents: make(map[AgentRole]*AgentConfig)}
	if err := l.loadYAML("eidetic.yaml", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
