package llmoracle

import (
	"context"
	"encoding/json"
	"fmt"
)

// minAttempts is the retry floor spec.md §4.2 requires: "at least 3 attempts".
const minAttempts = 3

// temperatureStep is how much each retry nudges the sampling temperature up,
// away from whatever produced malformed JSON.
const temperatureStep = 0.1

// strictJSONSuffix is appended once to the original system instruction on
// every retry (attempts after the first), per spec.md §4.2 ("strengthen the
// 'return strict JSON' instruction"); the same text is used on each retry.
const strictJSONSuffix = "\n\nReturn ONLY a single valid JSON object. No prose, no markdown fences, no commentary before or after the JSON."

// completionFunc performs one raw completion call against a backend; it is
// the only backend-specific seam retryChatJSON needs.
type completionFunc func(ctx context.Context, req ChatRequest) (string, error)

// retryChatJSON drives the shared retry policy (spec.md §4.2) around a
// backend-specific completionFunc: at least minAttempts tries, temperature
// stepped up and the strict-JSON instruction appended on each retry,
// *LLMFormatError once the budget is exhausted. Transport errors from
// complete are not retried: the first one is returned at once, wrapped as
// *LLMUnavailableError.
func retryChatJSON(ctx context.Context, backend string, req ChatRequest, complete completionFunc) (map[string]any, error) {
	var lastRaw string
	var lastErr error

	for attempt := 1; attempt <= minAttempts; attempt++ {
		attemptReq := req
		attemptReq.Temperature = req.Temperature + float64(attempt-1)*temperatureStep
		if attempt > 1 {
			attemptReq.Messages = strengthenJSONInstruction(req.Messages)
		}

		raw, err := complete(ctx, attemptReq)
		if err != nil {
			return nil, &LLMUnavailableError{Backend: backend, Err: err}
		}
		lastRaw = raw

		var obj map[string]any
		if err := json.Unmarshal([]byte(extractJSONObject(raw)), &obj); err != nil {
			lastErr = err
			continue
		}
		return obj, nil
	}

	return nil, &LLMFormatError{Attempts: minAttempts, LastRaw: lastRaw, Err: fmt.Errorf("%w: %v", ErrRetryBudgetExhausted, lastErr)}
}

func strengthenJSONInstruction(msgs []Message) []Message {
	out := make([]Message, len(msgs))
	copy(out, msgs)
	for i, m := range out {
		if m.Role == RoleSystem {
			out[i].Content = m.Content + strictJSONSuffix
			return out
		}
	}
	return append([]Message{{Role: RoleSystem, Content: strictJSONSuffix}}, out...)
}

// extractJSONObject trims anything before the first '{' and after the last
// '}', tolerating models that wrap JSON in markdown fences or a short
// preamble despite instructions not to.
func extractJSONObject(raw string) string {
	start := -1
	end := -1
	for i, r := range raw {
		if r == '{' && start == -1 {
			start = i
		}
		if r == '}' {
			end = i
		}
	}
	if start == -1 || end == -1 || end < start {
		return raw
	}
	return raw[start : end+1]
}
