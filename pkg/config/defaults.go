package config

import "time"

// DefaultThresholds returns the threshold values named in spec.md §6.
func DefaultThresholds() ThresholdConfig {
	return ThresholdConfig{
		ConvergenceScore:        0.6,
		NoveltyRate:             0.15,
		MergeOverlap:            0.6,
		PruneConfidence:         0.15,
		PruneMinInterviews:      3,
		MaxPropositionsInScript: 8,
		MaxInterviewMinutes:     10,
	}
}

// DefaultEvents returns the default Event Bus configuration.
func DefaultEvents() EventsConfig {
	return EventsConfig{SubscriberBacklog: 256}
}

// DefaultAdapter returns the default External Adapter configuration
// (base URL is always required and has no sensible default).
func DefaultAdapter() AdapterConfig {
	return AdapterConfig{
		PublishTimeout:    15 * time.Second,
		PublishMaxRetries: 3,
	}
}

// DefaultHTTP returns the default HTTP server configuration.
func DefaultHTTP() HTTPConfig {
	return HTTPConfig{ListenAddr: ":8080"}
}

// DefaultStore returns the default pgx pool configuration
// (DSN is always required and has no sensible default).
func DefaultStore() StoreConfig {
	return StoreConfig{
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
	}
}
