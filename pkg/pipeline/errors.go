package pipeline

import "errors"

// ErrUnknownProject means the webhook's agent_id matches no project
// (spec.md §7: "404-equivalent to webhook source; no state change").
var ErrUnknownProject = errors.New("pipeline: unknown project for agent_id")

// ErrAnalysisFailed wraps an Analyst failure (LLMUnavailableError after
// retry exhaustion, or LLMFormatError after its own retry budget) that
// aborted one ingestion before any commit beyond the failed interview
// record itself (spec.md §7: "mark AnalysisFailed and abort ingestion;
// transcript kept").
var ErrAnalysisFailed = errors.New("pipeline: analysis failed")

// ErrPublishFailed wraps an Adapter publish failure during project creation,
// where the caller needs to know the project was created but its opening
// script has not yet reached the voice agent.
var ErrPublishFailed = errors.New("pipeline: publish_script failed")
