package models

import "time"

// Project is a single research engagement: one research question, one
// owning reference to an external voice-runtime agent, and the four
// sub-stores (evidence, propositions, interviews, scripts) addressed through
// it. Created explicitly; deletion removes all owned data.
type Project struct {
	ID                   string    `json:"id"`
	ResearchQuestion     string    `json:"research_question"`
	CreatedAt            time.Time `json:"created_at"`
	VoiceAgentID         string    `json:"voice_agent_id"`
	CurrentScriptVersion int       `json:"current_script_version"`

	// Monotonic identifier counters, bumped in the same Store.Commit
	// transaction as the objects they number (spec.md §5: counters are
	// maintained inside the Store under the same lock as commits).
	NextEvidenceSeq    int `json:"next_evidence_seq"`
	NextPropositionSeq int `json:"next_proposition_seq"`
	NextInterviewSeq   int `json:"next_interview_seq"`
}

// ProjectSummary is a lightweight read model for listing projects (API
// index views); pkg/report.Summary builds it from a full Snapshot.
type ProjectSummary struct {
	ID                   string    `json:"id"`
	ResearchQuestion     string    `json:"research_question"`
	CreatedAt            time.Time `json:"created_at"`
	CurrentScriptVersion int       `json:"current_script_version"`
	InterviewCount       int       `json:"interview_count"`
	ConvergenceScore     float64   `json:"convergence_score"`
	Mode                 ScriptMode `json:"mode"`
	Propositions         int       `json:"propositions"`
}

// ReportView is the read-only aggregation pkg/synth consumes to write the
// final report: confirmed/saturated propositions with their supporting
// quotes, plus a pruned appendix (spec.md scenario D: weak propositions
// stay visible in the report's appendix).
type ReportView struct {
	Project             ProjectSummary         `json:"project"`
	ConfirmedFindings   []ReportFinding        `json:"confirmed_findings"`
	ChallengedFindings  []ReportFinding        `json:"challenged_findings"`
	PrunedAppendix      []ReportFinding        `json:"pruned_appendix"`
	TotalEvidence       int                    `json:"total_evidence"`
	TotalInterviews     int                    `json:"total_interviews"`
}

// ReportFinding pairs a proposition with the evidence quotes that back it,
// keyed by proposition id so the Synthesizer can cite sources.
type ReportFinding struct {
	Proposition Proposition `json:"proposition"`
	Quotes      []string    `json:"quotes"`
}
