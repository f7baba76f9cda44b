// Package events implements the per-project Event Bus (spec.md §4.7):
// best-effort, per-subscriber-ordered delivery with a bounded backlog and
// oldest-event-dropped overflow. Subscribers join mid-stream and only ever
// see events committed after they subscribed.
package events

import "github.com/shipaleks/eidetic/pkg/models"

// Type identifies the kind of payload an Event carries.
type Type string

const (
	TypeNewEvidence        Type = "new_evidence"
	TypeNewProposition     Type = "new_proposition"
	TypePropositionUpdated Type = "proposition_updated"
	TypePropositionMerged  Type = "proposition_merged"
	TypePropositionPruned  Type = "proposition_pruned"
	TypeScriptUpdated      Type = "script_updated"
	TypeAnalysisFailed     Type = "analysis_failed"
	TypePublishFailed      Type = "publish_failed"
)

// Event is one typed message on a project's stream. Payload's concrete type
// is determined by Type; pkg/api marshals the whole Event to JSON verbatim.
type Event struct {
	Type      Type   `json:"type"`
	ProjectID string `json:"project_id"`
	Payload   any    `json:"payload"`
}

// NewEvidencePayload accompanies TypeNewEvidence, one per committed item.
type NewEvidencePayload struct {
	Evidence models.Evidence `json:"evidence"`
}

// NewPropositionPayload accompanies TypeNewProposition.
type NewPropositionPayload struct {
	Proposition models.Proposition `json:"proposition"`
}

// PropositionUpdatedPayload accompanies TypePropositionUpdated — emitted for
// every confidence/status change the Reconciler applies to a live proposition.
type PropositionUpdatedPayload struct {
	PropositionID string                    `json:"proposition_id"`
	Confidence    float64                   `json:"confidence"`
	Status        models.PropositionStatus  `json:"status"`
}

// PropositionMergedPayload accompanies TypePropositionMerged.
type PropositionMergedPayload struct {
	FromID string `json:"from_id"`
	IntoID string `json:"into_id"`
}

// PropositionPrunedPayload accompanies TypePropositionPruned.
type PropositionPrunedPayload struct {
	PropositionID string `json:"proposition_id"`
}

// ScriptUpdatedPayload accompanies TypeScriptUpdated.
type ScriptUpdatedPayload struct {
	Version int               `json:"version"`
	Mode    models.ScriptMode `json:"mode"`
}

// AnalysisFailedPayload accompanies TypeAnalysisFailed.
type AnalysisFailedPayload struct {
	InterviewID string `json:"interview_id"`
	Reason      string `json:"reason"`
}

// PublishFailedPayload accompanies TypePublishFailed.
type PublishFailedPayload struct {
	ScriptVersion int    `json:"script_version"`
	Reason        string `json:"reason"`
}
