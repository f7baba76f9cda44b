package llmoracle

import (
	"errors"
	"fmt"
)

// ErrRetryBudgetExhausted is the sentinel wrapped by LLMFormatError once the
// fixed minAttempts budget of strict-JSON attempts has been spent.
var ErrRetryBudgetExhausted = errors.New("llmoracle: retry budget exhausted")

// LLMFormatError means the oracle never produced parseable JSON within the
// retry budget (spec.md §4.2).
type LLMFormatError struct {
	Attempts int
	LastRaw  string
	Err      error
}

func (e *LLMFormatError) Error() string {
	return fmt.Sprintf("llmoracle: invalid JSON after %d attempts: %v", e.Attempts, e.Err)
}

func (e *LLMFormatError) Unwrap() error { return e.Err }

// LLMUnavailableError means the transport or rate limiter failed; the
// pipeline treats this as retryable at the ingestion level (spec.md §7).
type LLMUnavailableError struct {
	Backend string
	Err     error
}

func (e *LLMUnavailableError) Error() string {
	return fmt.Sprintf("llmoracle: %s unavailable: %v", e.Backend, e.Err)
}

func (e *LLMUnavailableError) Unwrap() error { return e.Err }
