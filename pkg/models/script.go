package models

import "time"

// SectionPriority ranks how strongly the Designer wants an interviewer to
// pursue a given section's proposition within an interview.
type SectionPriority string

const (
	PriorityHigh   SectionPriority = "high"
	PriorityMedium SectionPriority = "medium"
	PriorityLow    SectionPriority = "low"
)

// SectionInstruction tells the interviewer how to treat a proposition this
// round, assigned per the rules in spec.md §4.3.
type SectionInstruction string

const (
	InstructionExplore   SectionInstruction = "EXPLORE"
	InstructionVerify    SectionInstruction = "VERIFY"
	InstructionChallenge SectionInstruction = "CHALLENGE"
	InstructionSaturated SectionInstruction = "SATURATED"
)

// ScriptMode gates new-proposition-generation aggressiveness and the
// instruction bias toward EXPLORE (divergent) or CHALLENGE (convergent).
type ScriptMode string

const (
	ModeDivergent  ScriptMode = "divergent"
	ModeConvergent ScriptMode = "convergent"
)

// ScriptSection is one proposition-focused block of the interview guide. A
// script version holds at most max_propositions_in_script sections, one per
// proposition, per spec.md §3.
type ScriptSection struct {
	PropositionID string              `json:"proposition_id"`
	Priority      SectionPriority     `json:"priority"`
	Instruction   SectionInstruction  `json:"instruction"`
	MainQuestion  string              `json:"main_question"`
	Probes        []string            `json:"probes"` // 2-3 items
	Context       string              `json:"context"`
}

// InterviewScript is the immutable-once-published interview guide for a
// project. A project accumulates one InterviewScript per Designer run;
// GenerateInitial produces v1 and UpdateScript produces v(n+1) — once
// published via pkg/adapter a version is never mutated.
type InterviewScript struct {
	ProjectID               string          `json:"project_id"`
	Version                 int             `json:"version"` // monotonic, starts at 1
	GeneratedAfterInterview string          `json:"generated_after_interview,omitempty"`
	ResearchQuestion        string          `json:"research_question"`
	OpeningQuestion         string          `json:"opening_question"`
	Sections                []ScriptSection `json:"sections"` // len <= max_propositions_in_script
	ClosingQuestion         string          `json:"closing_question"`
	Wildcard                string          `json:"wildcard"`
	Mode                    ScriptMode      `json:"mode"`
	ConvergenceScore        float64         `json:"convergence_score"`
	NoveltyRate             float64         `json:"novelty_rate"`
	ChangesSummary          string          `json:"changes_summary,omitempty"`
	PublishedAt             *time.Time      `json:"published_at,omitempty"` // stored as given; the pipeline does not set it when PublishScript succeeds
}
