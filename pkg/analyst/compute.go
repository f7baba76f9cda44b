package analyst

import (
	"fmt"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/models"
)

// propState is the working set Analyze accumulates for one proposition
// (existing or newly-authored this round) while it applies mappings and
// recomputes confidence/status, before the result is split back out into
// the typed AnalysisDiff fields.
type propState struct {
	id                            string
	isNew                         bool
	factor, mechanism, outcome    string
	support, contradict           models.EvidenceSet
	priorSupport, priorContradict models.EvidenceSet // nil for new propositions
	priorStatus                   models.PropositionStatus
	resolvedStatus                 models.PropositionStatus
	confidence                     float64
}

func (p *propState) changed() bool {
	if p.isNew {
		return true
	}
	return !setEqual(p.support, p.priorSupport) || !setEqual(p.contradict, p.priorContradict)
}

func setEqual(a, b models.EvidenceSet) bool {
	if len(a) != len(b) {
		return false
	}
	for id := range a {
		if !b.Has(id) {
			return false
		}
	}
	return true
}

// interviewOf resolves the interview id that produced an evidence id,
// whether it's a real id already in the snapshot or a symbolic id minted
// during this call (always this interview).
func interviewOf(id string, snap models.Snapshot, thisInterviewID string, symbolic map[string]struct{}) string {
	if _, ok := symbolic[id]; ok {
		return thisInterviewID
	}
	if e, ok := snap.EvidenceByID(id); ok {
		return e.InterviewID
	}
	return thisInterviewID
}

func isSingleInterview(ids models.EvidenceSet, snap models.Snapshot, thisInterviewID string, symbolic map[string]struct{}) bool {
	seen := map[string]struct{}{}
	for id := range ids {
		seen[interviewOf(id, snap, thisInterviewID, symbolic)] = struct{}{}
	}
	return len(seen) == 1
}

func distinctSupportingInterviews(ids models.EvidenceSet, snap models.Snapshot, thisInterviewID string, symbolic map[string]struct{}) int {
	seen := map[string]struct{}{}
	for id := range ids {
		seen[interviewOf(id, snap, thisInterviewID, symbolic)] = struct{}{}
	}
	return len(seen)
}

// nextStatus implements spec.md §4.4 step 7's transition rules. counter is
// the projected interviews_without_new_evidence value after this commit
// (0 if the evidence sets changed this round, otherwise the prior value + 1).
func nextStatus(cur models.PropositionStatus, confidence float64, supportCount, contradictCount, distinctSupportInterviews, counter int) models.PropositionStatus {
	if cur == models.StatusMerged || cur == models.StatusWeak {
		return cur
	}
	if confidence < 0.15 && counter >= 3 {
		return models.StatusWeak
	}
	if (cur == models.StatusConfirmed || cur == models.StatusSaturated) && confidence >= 0.8 && counter >= 2 {
		return models.StatusSaturated
	}
	if contradictCount > 0 && confidence < 0.7 &&
		(cur == models.StatusExploring || cur == models.StatusConfirmed || cur == models.StatusChallenged) {
		return models.StatusChallenged
	}
	if confidence >= 0.7 && supportCount >= 2 && distinctSupportInterviews >= 2 &&
		(cur == models.StatusExploring || cur == models.StatusUntested) {
		return models.StatusConfirmed
	}
	if cur == models.StatusUntested && supportCount+contradictCount > 0 {
		return models.StatusExploring
	}
	return cur
}

// jaccard returns the overlap ratio of two supporting-evidence sets, 0 when
// their union is empty.
func jaccard(a, b models.EvidenceSet) float64 {
	union := a.Union(b)
	if len(union) == 0 {
		return 0
	}
	inter := a.Intersect(b)
	return float64(len(inter)) / float64(len(union))
}

// mergeCandidate is a pair of states whose supporting-evidence overlap
// crossed the merge threshold, before the unified proposition's text has
// been authored. Detection is deterministic (Jaccard over evidence sets);
// the resulting text is not — that's the Analyst's own call, authored by a
// dedicated oracle round-trip (spec.md §4.4 step 6: "propose a unified
// proposition whose text the Analyst authors").
type mergeCandidate struct {
	symbolicID string
	a, b       *propState
}

// detectMergeCandidates finds every pair of states whose supporting-evidence
// Jaccard overlap meets threshold, skipping any proposition already claimed
// by a subsume proposal this round.
func detectMergeCandidates(states []*propState, threshold float64, subsumed map[string]struct{}) []mergeCandidate {
	var out []mergeCandidate
	seq := 0
	for i := 0; i < len(states); i++ {
		a := states[i]
		if _, ok := subsumed[a.id]; ok {
			continue
		}
		if len(a.support) == 0 {
			continue
		}
		for j := i + 1; j < len(states); j++ {
			b := states[j]
			if _, ok := subsumed[b.id]; ok {
				continue
			}
			if len(b.support) == 0 {
				continue
			}
			if jaccard(a.support, b.support) >= threshold {
				seq++
				out = append(out, mergeCandidate{symbolicID: fmt.Sprintf("merge#%d", seq), a: a, b: b})
			}
		}
	}
	return out
}

func computeMetrics(states []*propState, thresholds config.ThresholdConfig, extractedCount, noveltyCount int) models.AnalysisMetrics {
	var converged, active int
	for _, p := range states {
		switch p.resolvedStatus {
		case models.StatusConfirmed, models.StatusSaturated:
			converged++
			active++
		case models.StatusExploring, models.StatusChallenged:
			active++
		}
	}
	var convergenceScore float64
	if active > 0 {
		convergenceScore = float64(converged) / float64(active)
	}
	var noveltyRate float64
	if extractedCount > 0 {
		noveltyRate = float64(noveltyCount) / float64(extractedCount)
	}
	mode := models.ModeDivergent
	if convergenceScore >= thresholds.ConvergenceScore && noveltyRate <= thresholds.NoveltyRate {
		mode = models.ModeConvergent
	}
	return models.AnalysisMetrics{ConvergenceScore: convergenceScore, NoveltyRate: noveltyRate, Mode: mode}
}
