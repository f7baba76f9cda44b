package analyst

import (
	"encoding/json"
	"fmt"

	"github.com/shipaleks/eidetic/pkg/models"
)

// rawResponse is the strict shape the Analyst's single LLM call must
// return. Every record kind is validated into one of these tagged variants
// on ingestion (spec.md §9); anything else is rejected, not silently
// dropped.
type rawResponse struct {
	Evidence            []evidenceItemJSON      `json:"evidence"`
	Mappings            []mappingJSON           `json:"mappings"`
	NewPropositions     []propositionDraftJSON  `json:"new_propositions"`
	RetroactiveMappings []mappingJSON           `json:"retroactive_mappings"`
	SubsumeProposals    []subsumeDraftJSON      `json:"subsume_proposals"`
}

type evidenceItemJSON struct {
	SymbolicID     string   `json:"symbolic_id"`
	Quote          string   `json:"quote"`
	Interpretation string   `json:"interpretation"`
	Factor         string   `json:"factor"`
	Mechanism      string   `json:"mechanism"`
	Outcome        string   `json:"outcome"`
	Tags           []string `json:"tags"`
	Language       string   `json:"language"`
}

type mappingJSON struct {
	EvidenceID    string `json:"evidence_id"`
	PropositionID string `json:"proposition_id"`
	Relation      string `json:"relation"`
}

type propositionDraftJSON struct {
	SymbolicID            string   `json:"symbolic_id"`
	Factor                string   `json:"factor"`
	Mechanism             string   `json:"mechanism"`
	Outcome               string   `json:"outcome"`
	SupportingEvidence    []string `json:"supporting_evidence"`
	ContradictingEvidence []string `json:"contradicting_evidence"`
}

type subsumeDraftJSON struct {
	FromID string `json:"from_id"`
	IntoID string `json:"into_id"`
}

// decodeResponse validates the oracle's raw JSON into rawResponse and
// rejects records with an unrecognized relation or an empty id, per the
// "anything else is rejected, not silently dropped" design note.
func decodeResponse(raw map[string]any) (rawResponse, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return rawResponse{}, fmt.Errorf("analyst: re-encode oracle response: %w", err)
	}
	var resp rawResponse
	if err := json.Unmarshal(buf, &resp); err != nil {
		return rawResponse{}, fmt.Errorf("analyst: decode oracle response: %w", err)
	}

	for _, e := range resp.Evidence {
		if e.SymbolicID == "" || e.Factor == "" || e.Mechanism == "" || e.Outcome == "" {
			return rawResponse{}, fmt.Errorf("analyst: rejected evidence record with missing required field")
		}
	}
	for _, m := range append(append([]mappingJSON{}, resp.Mappings...), resp.RetroactiveMappings...) {
		switch models.MappingRelation(m.Relation) {
		case models.RelationSupports, models.RelationContradicts, models.RelationIrrelevant:
		default:
			return rawResponse{}, fmt.Errorf("analyst: rejected mapping with unknown relation %q", m.Relation)
		}
	}
	for _, p := range resp.NewPropositions {
		if p.SymbolicID == "" || p.Factor == "" || p.Mechanism == "" || p.Outcome == "" {
			return rawResponse{}, fmt.Errorf("analyst: rejected proposition proposal with missing required field")
		}
	}

	return resp, nil
}

// mergeTextJSON is the unified factor/mechanism/outcome text the Analyst
// authors for a merge candidate via its own dedicated oracle call.
type mergeTextJSON struct {
	Factor    string `json:"factor"`
	Mechanism string `json:"mechanism"`
	Outcome   string `json:"outcome"`
}

func decodeMergeText(raw map[string]any) (mergeTextJSON, error) {
	buf, err := json.Marshal(raw)
	if err != nil {
		return mergeTextJSON{}, fmt.Errorf("analyst: re-encode merge text response: %w", err)
	}
	var out mergeTextJSON
	if err := json.Unmarshal(buf, &out); err != nil {
		return mergeTextJSON{}, fmt.Errorf("analyst: decode merge text response: %w", err)
	}
	if out.Factor == "" || out.Mechanism == "" || out.Outcome == "" {
		return mergeTextJSON{}, fmt.Errorf("analyst: rejected merge text response with missing required field")
	}
	return out, nil
}
