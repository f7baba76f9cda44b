package reconciler

import (
	"fmt"

	"github.com/shipaleks/eidetic/pkg/models"
)

// refSets is the set of ids an AnalysisDiff is allowed to reference,
// computed once per Reconcile call.
type refSets struct {
	liveProposition map[string]struct{} // real ids of live propositions already in the Snapshot
	priorEvidence   map[string]struct{} // real ids of evidence already committed
	symbolicEvidence map[string]struct{} // "e#N" ids this round's ExtractedEvidence mints
	symbolicProp     map[string]struct{} // "p#N" ids this round's NewPropositions mint
}

func buildRefSets(snap models.Snapshot, diff models.AnalysisDiff) refSets {
	r := refSets{
		liveProposition:  map[string]struct{}{},
		priorEvidence:    map[string]struct{}{},
		symbolicEvidence: map[string]struct{}{},
		symbolicProp:     map[string]struct{}{},
	}
	for _, p := range snap.LivePropositions() {
		r.liveProposition[p.ID] = struct{}{}
	}
	for _, e := range snap.Evidence {
		r.priorEvidence[e.ID] = struct{}{}
	}
	for _, e := range diff.ExtractedEvidence {
		r.symbolicEvidence[e.SymbolicID] = struct{}{}
	}
	for _, p := range diff.NewPropositions {
		r.symbolicProp[p.SymbolicID] = struct{}{}
	}
	return r
}

// validate enforces spec.md §4.5's invariants: no dangling references, and
// supporting/contradicting evidence sets never overlap. It returns a
// non-empty reason on the first violation found; the Reconciler treats any
// violation as grounds to reject the diff's non-evidence parts wholesale.
func validate(snap models.Snapshot, diff models.AnalysisDiff, r refSets) string {
	for _, m := range diff.Mappings {
		if _, ok := r.symbolicEvidence[m.EvidenceID]; !ok {
			return fmt.Sprintf("mapping references unknown evidence id %q", m.EvidenceID)
		}
		if _, ok := r.liveProposition[m.PropositionID]; !ok {
			return fmt.Sprintf("mapping references unknown live proposition id %q", m.PropositionID)
		}
	}

	for _, m := range diff.RetroactiveMappings {
		if _, ok := r.priorEvidence[m.EvidenceID]; !ok {
			return fmt.Sprintf("retroactive mapping references unknown prior evidence id %q", m.EvidenceID)
		}
		if _, ok := r.symbolicProp[m.PropositionID]; !ok {
			return fmt.Sprintf("retroactive mapping references unknown new proposition id %q", m.PropositionID)
		}
	}

	for _, p := range diff.NewPropositions {
		if err := checkNoOverlap(p.SupportingEvidence, p.ContradictingEvidence); err != "" {
			return fmt.Sprintf("new proposition %q: %s", p.SymbolicID, err)
		}
		for _, id := range append(append([]string{}, p.SupportingEvidence...), p.ContradictingEvidence...) {
			if _, ok := r.symbolicEvidence[id]; !ok {
				return fmt.Sprintf("new proposition %q references unknown evidence id %q", p.SymbolicID, id)
			}
		}
	}

	for _, u := range diff.ConfidenceUpdates {
		if _, ok := r.liveProposition[u.PropositionID]; !ok {
			return fmt.Sprintf("confidence update references unknown live proposition id %q", u.PropositionID)
		}
		if err := checkNoOverlap(u.SupportingEvidence, u.ContradictingEvidence); err != "" {
			return fmt.Sprintf("confidence update %q: %s", u.PropositionID, err)
		}
		for _, id := range append(append([]string{}, u.SupportingEvidence...), u.ContradictingEvidence...) {
			if _, ok := r.priorEvidence[id]; ok {
				continue
			}
			if _, ok := r.symbolicEvidence[id]; ok {
				continue
			}
			return fmt.Sprintf("confidence update %q references unknown evidence id %q", u.PropositionID, id)
		}
	}

	for _, mp := range diff.MergeProposals {
		if len(mp.FromIDs) < 2 {
			return fmt.Sprintf("merge proposal %q has fewer than two from_ids", mp.NewSymbolicID)
		}
		for _, id := range mp.FromIDs {
			if _, ok := r.liveProposition[id]; !ok {
				return fmt.Sprintf("merge proposal references unknown live proposition id %q", id)
			}
		}
	}

	for _, s := range diff.SubsumeProposals {
		if s.FromID == s.IntoID {
			return fmt.Sprintf("subsume proposal from %q into itself", s.FromID)
		}
		if _, ok := r.liveProposition[s.FromID]; !ok {
			return fmt.Sprintf("subsume proposal references unknown live proposition id %q", s.FromID)
		}
		if _, ok := r.liveProposition[s.IntoID]; !ok {
			return fmt.Sprintf("subsume proposal references unknown live proposition id %q", s.IntoID)
		}
	}

	for _, p := range diff.PruneProposals {
		if _, ok := r.liveProposition[p.PropositionID]; !ok {
			return fmt.Sprintf("prune proposal references unknown live proposition id %q", p.PropositionID)
		}
	}

	for _, t := range diff.StatusTransitions {
		if _, ok := r.liveProposition[t.PropositionID]; !ok {
			return fmt.Sprintf("status transition references unknown live proposition id %q", t.PropositionID)
		}
	}

	return ""
}

func checkNoOverlap(support, contradict []string) string {
	supportSet := models.NewEvidenceSet(support...)
	for _, id := range contradict {
		if supportSet.Has(id) {
			return fmt.Sprintf("evidence id %q appears in both supporting and contradicting sets", id)
		}
	}
	return ""
}
