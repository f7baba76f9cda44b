package models

import "time"

// InterviewStatus tracks where a single interview sits in the pipeline; it
// supplements spec.md §3's Interview fields so the API and Event Bus can
// report in-flight analysis without a side table.
type InterviewStatus string

const (
	InterviewReceived  InterviewStatus = "received"
	InterviewAnalyzing InterviewStatus = "analyzing"
	InterviewAnalyzed  InterviewStatus = "analyzed"
	InterviewFailed    InterviewStatus = "failed"
)

// Interview is one voice-interview session ingested by the pipeline.
// ConversationID is the idempotency key the voice runtime supplies: pkg/pipeline
// uses it to detect a retried webhook delivery, both before and after
// acquiring the project lock. ScriptVersionUsed is nil when the conversation started before any
// script had been published (cold start).
type Interview struct {
	ID                string          `json:"id"` // monotonic, e.g. "INT_003"
	ProjectID         string          `json:"project_id"`
	ConversationID    string          `json:"conversation_id"`
	Transcript        string          `json:"transcript"`
	Language          string          `json:"language"`
	ScriptVersionUsed *int            `json:"script_version_used,omitempty"`
	Status            InterviewStatus `json:"status"`
	ReceivedAt        time.Time       `json:"received_at"`
	AnalyzedAt        *time.Time      `json:"analyzed_at,omitempty"`
	FailureReason     string          `json:"failure_reason,omitempty"`
}
