package config

import "fmt"

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast — stops at first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateThresholds(); err != nil {
		return fmt.Errorf("threshold validation failed: %w", err)
	}
	if err := v.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	if err := v.validateAdapter(); err != nil {
		return fmt.Errorf("adapter validation failed: %w", err)
	}
	if err := v.validateAgents(); err != nil {
		return fmt.Errorf("agent validation failed: %w", err)
	}
	return nil
}

func (v *Validator) validateThresholds() error {
	t := v.cfg.Thresholds
	if t.ConvergenceScore < 0 || t.ConvergenceScore > 1 {
		return NewValidationError("thresholds", "convergence_score_threshold", "", fmt.Errorf("must be in [0,1], got %v", t.ConvergenceScore))
	}
	if t.NoveltyRate < 0 || t.NoveltyRate > 1 {
		return NewValidationError("thresholds", "novelty_rate_threshold", "", fmt.Errorf("must be in [0,1], got %v", t.NoveltyRate))
	}
	if t.MergeOverlap < 0 || t.MergeOverlap > 1 {
		return NewValidationError("thresholds", "merge_overlap_threshold", "", fmt.Errorf("must be in [0,1], got %v", t.MergeOverlap))
	}
	if t.PruneConfidence < 0 || t.PruneConfidence > 1 {
		return NewValidationError("thresholds", "prune_confidence_threshold", "", fmt.Errorf("must be in [0,1], got %v", t.PruneConfidence))
	}
	if t.PruneMinInterviews < 0 {
		return NewValidationError("thresholds", "prune_min_interviews", "", fmt.Errorf("must be >= 0, got %d", t.PruneMinInterviews))
	}
	if t.MaxPropositionsInScript < 1 {
		return NewValidationError("thresholds", "max_propositions_in_script", "", fmt.Errorf("must be >= 1, got %d", t.MaxPropositionsInScript))
	}
	if t.MaxInterviewMinutes < 1 {
		return NewValidationError("thresholds", "max_interview_duration_minutes", "", fmt.Errorf("must be >= 1, got %d", t.MaxInterviewMinutes))
	}
	return nil
}

func (v *Validator) validateStore() error {
	s := v.cfg.Store
	if s.DSN == "" {
		return NewValidationError("store", "dsn", "", ErrMissingRequiredField)
	}
	if s.MaxOpenConns < 1 {
		return NewValidationError("store", "max_open_conns", "", fmt.Errorf("must be >= 1, got %d", s.MaxOpenConns))
	}
	if s.MaxIdleConns < 0 || s.MaxIdleConns > s.MaxOpenConns {
		return NewValidationError("store", "max_idle_conns", "", fmt.Errorf("must be between 0 and max_open_conns, got %d", s.MaxIdleConns))
	}
	return nil
}

func (v *Validator) validateAdapter() error {
	a := v.cfg.Adapter
	if a.VoiceRuntimeBaseURL == "" {
		return NewValidationError("adapter", "voice_runtime_base_url", "", ErrMissingRequiredField)
	}
	if a.PublishMaxRetries < 1 {
		return NewValidationError("adapter", "publish_max_retries", "", fmt.Errorf("must be >= 1, got %d", a.PublishMaxRetries))
	}
	return nil
}

func (v *Validator) validateAgents() error {
	for _, role := range []AgentRole{RoleDesigner, RoleAnalyst, RoleSynthesizer} {
		cfg, err := v.cfg.Agents.Get(role)
		if err != nil {
			return NewValidationError("agent", string(role), "", fmt.Errorf("%w: role must be configured", ErrAgentNotFound))
		}
		if !cfg.Backend.IsValid() {
			return NewValidationError("agent", string(role), "backend", fmt.Errorf("%w: %q", ErrInvalidValue, cfg.Backend))
		}
		if cfg.Model == "" {
			return NewValidationError("agent", string(role), "model", ErrMissingRequiredField)
		}
	}
	return nil
}
