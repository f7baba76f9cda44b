package models

// PropositionStatus is the lifecycle state of a Proposition.
type PropositionStatus string

const (
	StatusUntested  PropositionStatus = "untested"
	StatusExploring PropositionStatus = "exploring"
	StatusConfirmed PropositionStatus = "confirmed"
	StatusChallenged PropositionStatus = "challenged"
	StatusSaturated PropositionStatus = "saturated"
	StatusWeak      PropositionStatus = "weak"
	StatusMerged    PropositionStatus = "merged"
)

// IsLive reports whether a proposition participates in active computation
// (script generation, mapping, merge/prune candidacy). Merged and weak
// propositions are excluded per spec.md §3.
func (s PropositionStatus) IsLive() bool {
	return s != StatusMerged && s != StatusWeak
}

// EvidenceSet is a set of evidence ids, represented as a map for O(1)
// membership tests and Jaccard-overlap computation; it marshals to/from a
// JSON array so the Store can keep it as a single jsonb column rather than a
// join table (spec.md §9: "id-addressed sets... not a pointer graph").
type EvidenceSet map[string]struct{}

// NewEvidenceSet builds a set from a slice of evidence ids.
func NewEvidenceSet(ids ...string) EvidenceSet {
	s := make(EvidenceSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Slice returns the set's members as a sorted-free slice (order is not
// meaningful; callers that need determinism sort it themselves).
func (s EvidenceSet) Slice() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Has reports whether id is a member.
func (s EvidenceSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id into the set, returning the same set for chaining.
func (s EvidenceSet) Add(id string) EvidenceSet {
	s[id] = struct{}{}
	return s
}

// Union returns a new set containing the members of both sets.
func (s EvidenceSet) Union(other EvidenceSet) EvidenceSet {
	out := make(EvidenceSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set containing members present in both sets.
func (s EvidenceSet) Intersect(other EvidenceSet) EvidenceSet {
	out := EvidenceSet{}
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// MarshalJSON encodes the set as a JSON array of ids.
func (s EvidenceSet) MarshalJSON() ([]byte, error) {
	return marshalStringSet(s)
}

// UnmarshalJSON decodes a JSON array of ids into the set.
func (s *EvidenceSet) UnmarshalJSON(data []byte) error {
	ids, err := unmarshalStringSet(data)
	if err != nil {
		return err
	}
	*s = NewEvidenceSet(ids...)
	return nil
}

// Proposition is a causal claim of the form factor→mechanism→outcome,
// mutable and versioned in place (unlike Evidence, which is append-only).
type Proposition struct {
	ID                           string            `json:"id"` // monotonic per project, e.g. "P001"
	Factor                       string            `json:"factor"`
	Mechanism                    string            `json:"mechanism"`
	Outcome                      string            `json:"outcome"`
	Confidence                   float64           `json:"confidence"` // in [0,1]
	Status                       PropositionStatus `json:"status"`
	SupportingEvidence           EvidenceSet       `json:"supporting_evidence"`
	ContradictingEvidence        EvidenceSet       `json:"contradicting_evidence"`
	FirstSeenInterview           string            `json:"first_seen_interview"`
	LastUpdatedInterview         string            `json:"last_updated_interview"`
	InterviewsWithoutNewEvidence int               `json:"interviews_without_new_evidence"`
	MergedInto                   string            `json:"merged_into,omitempty"`
}

// ComputeConfidence implements spec.md §4.4 step 5: the ratio of supporting
// to total referenced evidence, floored by a single-interview penalty when
// every reference comes from one interview.
func ComputeConfidence(support, contradict EvidenceSet, singleInterview bool) float64 {
	s, c := len(support), len(contradict)
	if s+c == 0 {
		return 0
	}
	confidence := float64(s) / float64(s+c)
	if singleInterview {
		confidence -= 0.2
		if confidence < 0 {
			confidence = 0
		}
	}
	return confidence
}
