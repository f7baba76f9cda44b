package config

import "time"

// ThresholdConfig holds the numeric gates the Analyst and Reconciler apply.
// See spec.md §6 for the meaning of each field; defaults live in defaults.go.
// PruneConfidence and PruneMinInterviews are validated but not read by the
// Analyst: its prune rule (nextStatus in pkg/analyst) uses fixed values of
// 0.15 and 3.
type ThresholdConfig struct {
	ConvergenceScore      float64 `yaml:"convergence_score_threshold" validate:"gte=0,lte=1"`
	NoveltyRate           float64 `yaml:"novelty_rate_threshold" validate:"gte=0,lte=1"`
	MergeOverlap          float64 `yaml:"merge_overlap_threshold" validate:"gte=0,lte=1"`
	PruneConfidence       float64 `yaml:"prune_confidence_threshold" validate:"gte=0,lte=1"`
	PruneMinInterviews    int     `yaml:"prune_min_interviews" validate:"gte=0"`
	MaxPropositionsInScript int   `yaml:"max_propositions_in_script" validate:"gte=1"`
	MaxInterviewMinutes   int     `yaml:"max_interview_duration_minutes" validate:"gte=1"`
}

// StoreConfig configures the pgx connection pool backing pkg/store.
type StoreConfig struct {
	DSN             string        `yaml:"dsn" validate:"required"`
	MaxOpenConns    int           `yaml:"max_open_conns,omitempty"`
	MaxIdleConns    int           `yaml:"max_idle_conns,omitempty"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty"`
}

// EventsConfig configures the per-project Event Bus.
type EventsConfig struct {
	SubscriberBacklog int `yaml:"subscriber_backlog,omitempty"`
}

// AdapterConfig configures the External Adapter's HTTP client to the voice runtime.
type AdapterConfig struct {
	VoiceRuntimeBaseURL string        `yaml:"voice_runtime_base_url" validate:"required"`
	PublishTimeout      time.Duration `yaml:"publish_timeout,omitempty"`
	PublishMaxRetries   int           `yaml:"publish_max_retries,omitempty"`
}

// HTTPConfig configures the gin HTTP server in pkg/api.
type HTTPConfig struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
}
