package models

// Snapshot is a consistent, point-in-time read of one project's four
// sub-stores, returned by Store.Load. Analyst operates purely on a Snapshot
// and never sees anything else.
type Snapshot struct {
	Project      Project
	Evidence     []Evidence
	Propositions []Proposition
	Interviews   []Interview
	Scripts      []InterviewScript
}

// LivePropositions returns the subset of the snapshot's propositions that
// participate in active computation (status.IsLive()).
func (s Snapshot) LivePropositions() []Proposition {
	out := make([]Proposition, 0, len(s.Propositions))
	for _, p := range s.Propositions {
		if p.Status.IsLive() {
			out = append(out, p)
		}
	}
	return out
}

// EvidenceByID returns the evidence item with the given id, if present.
func (s Snapshot) EvidenceByID(id string) (Evidence, bool) {
	for _, e := range s.Evidence {
		if e.ID == id {
			return e, true
		}
	}
	return Evidence{}, false
}

// MappingRelation classifies one evidence item against one proposition.
type MappingRelation string

const (
	RelationSupports   MappingRelation = "supports"
	RelationContradicts MappingRelation = "contradicts"
	RelationIrrelevant  MappingRelation = "irrelevant"
)

// EvidenceProposal is an Analyst-extracted evidence item before Reconciler
// assigns it a real, monotonic id. SymbolicID is the Analyst's own
// placeholder (e.g. "e#3"), referenced by MappingProposal and
// PropositionProposal within the same AnalysisDiff.
type EvidenceProposal struct {
	SymbolicID     string   `json:"symbolic_id"`
	Quote          string   `json:"quote"`
	Interpretation string   `json:"interpretation"`
	Factor         string   `json:"factor"`
	Mechanism      string   `json:"mechanism"`
	Outcome        string   `json:"outcome"`
	Tags           []string `json:"tags"`
	Language       string   `json:"language"`
}

// MappingProposal classifies one evidence item (symbolic or real id) against
// one proposition (symbolic or real id). Produced by both the initial
// mapping pass (step 2) and the retroactive scan (step 4).
type MappingProposal struct {
	EvidenceID    string          `json:"evidence_id"`
	PropositionID string          `json:"proposition_id"`
	Relation      MappingRelation `json:"relation"`
}

// PropositionProposal is an Analyst-authored new proposition before
// Reconciler assigns it a real id. SupportingEvidence/ContradictingEvidence
// reference EvidenceProposal.SymbolicID values or, for retroactively-matched
// pre-existing evidence, real evidence ids.
type PropositionProposal struct {
	SymbolicID             string            `json:"symbolic_id"`
	Factor                 string            `json:"factor"`
	Mechanism              string            `json:"mechanism"`
	Outcome                string            `json:"outcome"`
	ProvisionalStatus      PropositionStatus `json:"provisional_status"` // untested or exploring
	Confidence             float64           `json:"confidence"`
	SupportingEvidence     []string          `json:"supporting_evidence"`
	ContradictingEvidence  []string          `json:"contradicting_evidence"`
}

// ConfidenceUpdate carries a proposition's recomputed evidence sets,
// confidence, and interviews_without_new_evidence counter for an existing
// (non-new, non-merged, non-subsumed) live proposition. The Analyst emits
// one of these for every live proposition every interview — even when
// nothing changed — because the counter advances every round a proposition
// goes untouched, and that advance must reach the Store or a proposition
// that's merely idle (never actively contradicted or re-supported) would
// never cross the prune threshold (spec.md scenario D).
type ConfidenceUpdate struct {
	PropositionID                string   `json:"proposition_id"`
	SupportingEvidence           []string `json:"supporting_evidence"`
	ContradictingEvidence        []string `json:"contradicting_evidence"`
	Confidence                   float64  `json:"confidence"`
	InterviewsWithoutNewEvidence int      `json:"interviews_without_new_evidence"`
}

// MergeProposal unifies two live propositions whose supporting-evidence
// Jaccard overlap crosses merge_overlap_threshold. NewSymbolicID is a
// placeholder resolved by Reconciler into a real proposition id.
type MergeProposal struct {
	NewSymbolicID string   `json:"new_symbolic_id"`
	FromIDs       []string `json:"from_ids"` // the merged-away proposition ids, e.g. [A, B]
	Factor        string   `json:"factor"`
	Mechanism     string   `json:"mechanism"`
	Outcome       string   `json:"outcome"`
}

// SubsumeProposal turns a strict specialization (From) into supporting
// evidence for its generalization (Into); From becomes merged into Into.
type SubsumeProposal struct {
	FromID string `json:"from_id"`
	IntoID string `json:"into_id"`
}

// PruneProposal flips a proposition to weak status.
type PruneProposal struct {
	PropositionID string `json:"proposition_id"`
}

// StatusTransition records the new status the Reconciler should apply to a
// proposition, derived from its recomputed confidence and evidence sets.
type StatusTransition struct {
	PropositionID string            `json:"proposition_id"`
	NewStatus     PropositionStatus `json:"new_status"`
}

// AnalysisMetrics are the Analyst's computed convergence indicators for this
// interview (spec.md §4.4 step 8).
type AnalysisMetrics struct {
	ConvergenceScore float64    `json:"convergence_score"`
	NoveltyRate      float64    `json:"novelty_rate"`
	Mode             ScriptMode `json:"mode"`
}

// AnalysisDiff is the Analyst's pure-function output: a proposed set of
// changes against a Snapshot, using symbolic ids for anything not yet
// persisted. The Reconciler is the only consumer.
type AnalysisDiff struct {
	ExtractedEvidence    []EvidenceProposal     `json:"extracted_evidence"`
	Mappings             []MappingProposal      `json:"mappings"`
	NewPropositions      []PropositionProposal  `json:"new_propositions"`
	RetroactiveMappings  []MappingProposal      `json:"retroactive_mappings"`
	ConfidenceUpdates    []ConfidenceUpdate     `json:"confidence_updates"`
	MergeProposals       []MergeProposal        `json:"merge_proposals"`
	SubsumeProposals     []SubsumeProposal      `json:"subsume_proposals"`
	PruneProposals       []PruneProposal        `json:"prune_proposals"`
	StatusTransitions    []StatusTransition     `json:"status_transitions"`
	Metrics              AnalysisMetrics        `json:"metrics"`
}

// PropositionUpdate is a fully-resolved, real-id mutation the Reconciler
// applies in place to an existing proposition.
type PropositionUpdate struct {
	PropositionID                string
	SupportingEvidence            EvidenceSet
	ContradictingEvidence         EvidenceSet
	Confidence                    float64
	Status                        PropositionStatus
	LastUpdatedInterview          string
	InterviewsWithoutNewEvidence  int
	MergedInto                    string // set when Status becomes StatusMerged
}

// StoreDiff is the Reconciler's fully id-resolved, invariant-checked output,
// the only input Store.Commit ever accepts. A single StoreDiff may carry any
// combination of these fields: the Reconciler commits evidence/propositions/
// the interview in one transaction, and the Pipeline commits a script
// separately once the Designer has produced it.
type StoreDiff struct {
	NewEvidence         []Evidence
	NewPropositions     []Proposition
	PropositionUpdates  []PropositionUpdate
	NewInterview        *Interview
	NewScript           *InterviewScript
	RejectedDiff        string // non-empty records why an AnalysisDiff's non-evidence parts were dropped (InvalidDiff)
}
