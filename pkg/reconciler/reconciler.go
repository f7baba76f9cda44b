// Package reconciler applies the Analyst's AnalysisDiff to a Snapshot:
// assigning real ids to everything the Analyst left symbolic, resolving
// merge/subsume/prune proposals against the live proposition set, and
// enforcing spec.md §4.5's invariants before the Pipeline hands the result
// to Store.Commit. Reconcile is a pure function of its Input — it never
// touches the Store itself, which is what keeps it testable without a
// database.
package reconciler

import (
	"fmt"
	"time"

	"github.com/shipaleks/eidetic/pkg/models"
)

// Input bundles the Snapshot and AnalysisDiff with the interview-level
// context the Analyst never sees (conversation id, raw transcript, the
// script version the respondent was interviewed against, timestamps) so
// Reconcile can assemble the full Interview row itself.
type Input struct {
	Snapshot          models.Snapshot
	Diff              models.AnalysisDiff
	InterviewID       string // minted by the Pipeline from Snapshot.Project.NextInterviewSeq
	ConversationID    string
	Transcript        string
	Language          string
	ScriptVersionUsed *int
	ReceivedAt        time.Time
	AnalyzedAt        time.Time
}

// Reconcile resolves in.Diff into a fully id-assigned StoreDiff. On an
// invariant violation it returns both a non-nil error (wrapping
// ErrInvalidDiff) and a StoreDiff — the latter still carries the extracted
// evidence and the interview row, since raw observations are worth
// preserving even when the rest of the diff is untrustworthy.
func Reconcile(in Input) (models.StoreDiff, error) {
	snap, diff := in.Snapshot, in.Diff
	refs := buildRefSets(snap, diff)

	evidenceID := assignEvidenceIDs(snap, diff)
	newEvidence := resolveEvidence(diff.ExtractedEvidence, evidenceID, in.InterviewID, in.ReceivedAt)

	interview := &models.Interview{
		ID: in.InterviewID, ProjectID: snap.Project.ID, ConversationID: in.ConversationID,
		Transcript: in.Transcript, Language: in.Language, ScriptVersionUsed: in.ScriptVersionUsed,
		Status: models.InterviewAnalyzed, ReceivedAt: in.ReceivedAt, AnalyzedAt: &in.AnalyzedAt,
	}

	if reason := validate(snap, diff, refs); reason != "" {
		interview.Status = models.InterviewFailed
		interview.FailureReason = reason
		return models.StoreDiff{
			NewEvidence:  newEvidence,
			NewInterview: interview,
			RejectedDiff: reason,
		}, fmt.Errorf("%w: %s", ErrInvalidDiff, reason)
	}

	propID := assignPropositionIDs(snap, diff)
	resolveID := func(id string) string {
		if real, ok := evidenceID[id]; ok {
			return real
		}
		return id // already a real id (prior evidence, referenced by the retroactive scan)
	}

	updates := map[string]*models.PropositionUpdate{}
	get := func(id string) *models.PropositionUpdate {
		if u, ok := updates[id]; ok {
			return u
		}
		u := &models.PropositionUpdate{PropositionID: id, LastUpdatedInterview: in.InterviewID}
		updates[id] = u
		return u
	}

	for _, cu := range diff.ConfidenceUpdates {
		u := get(cu.PropositionID)
		support := models.NewEvidenceSet()
		for _, id := range cu.SupportingEvidence {
			support.Add(resolveID(id))
		}
		contradict := models.NewEvidenceSet()
		for _, id := range cu.ContradictingEvidence {
			contradict.Add(resolveID(id))
		}
		u.SupportingEvidence = support
		u.ContradictingEvidence = contradict
		u.Confidence = cu.Confidence
		u.InterviewsWithoutNewEvidence = cu.InterviewsWithoutNewEvidence
		u.Status = currentStatus(snap, cu.PropositionID)
	}
	for _, t := range diff.StatusTransitions {
		get(t.PropositionID).Status = t.NewStatus
	}

	newPropositions := make([]models.Proposition, 0, len(diff.NewPropositions))
	for _, p := range diff.NewPropositions {
		support := models.NewEvidenceSet()
		for _, id := range p.SupportingEvidence {
			support.Add(resolveID(id))
		}
		contradict := models.NewEvidenceSet()
		for _, id := range p.ContradictingEvidence {
			contradict.Add(resolveID(id))
		}
		newPropositions = append(newPropositions, models.Proposition{
			ID: propID[p.SymbolicID], Factor: p.Factor, Mechanism: p.Mechanism, Outcome: p.Outcome,
			Confidence: p.Confidence, Status: p.ProvisionalStatus,
			SupportingEvidence: support, ContradictingEvidence: contradict,
			FirstSeenInterview: in.InterviewID, LastUpdatedInterview: in.InterviewID,
		})
	}

	// Subsume: fold From's latest evidence into Into, then flip From to merged.
	for _, s := range diff.SubsumeProposals {
		into := get(s.IntoID)
		ensurePropositionBaseline(into, snap, s.IntoID)
		from := evidenceOf(snap, updates, s.FromID)
		into.SupportingEvidence = into.SupportingEvidence.Union(from.support)
		into.ContradictingEvidence = into.ContradictingEvidence.Union(from.contradict)
		single := isSingleInterview(into.SupportingEvidence.Union(into.ContradictingEvidence), snap, in.InterviewID)
		into.Confidence = models.ComputeConfidence(into.SupportingEvidence, into.ContradictingEvidence, single)
		if into.Status == "" {
			into.Status = currentStatus(snap, s.IntoID)
		}

		fromUpdate := get(s.FromID)
		fromUpdate.Status = models.StatusMerged
		fromUpdate.MergedInto = s.IntoID
		fromUpdate.SupportingEvidence = from.support
		fromUpdate.ContradictingEvidence = from.contradict
		fromUpdate.Confidence = from.confidence
	}

	// Merge: mint one new proposition from each pair/group, flip every
	// FromID to merged pointing at it.
	for _, mp := range diff.MergeProposals {
		newID := propID[mp.NewSymbolicID]
		support := models.NewEvidenceSet()
		contradict := models.NewEvidenceSet()
		for _, fromID := range mp.FromIDs {
			st := evidenceOf(snap, updates, fromID)
			support = support.Union(st.support)
			contradict = contradict.Union(st.contradict)

			u := get(fromID)
			u.Status = models.StatusMerged
			u.MergedInto = newID
			u.SupportingEvidence = st.support
			u.ContradictingEvidence = st.contradict
			u.Confidence = st.confidence
		}
		single := isSingleInterview(support.Union(contradict), snap, in.InterviewID)
		confidence := models.ComputeConfidence(support, contradict, single)
		newPropositions = append(newPropositions, models.Proposition{
			ID: newID, Factor: mp.Factor, Mechanism: mp.Mechanism, Outcome: mp.Outcome,
			Confidence: confidence,
			Status:     initialMergedStatus(confidence, contradict),
			SupportingEvidence: support, ContradictingEvidence: contradict,
			FirstSeenInterview: in.InterviewID, LastUpdatedInterview: in.InterviewID,
		})
	}

	// Merges apply transitively within this single pass: if A merges into B
	// and B into C in the same diff, A must end pointing at C, not at B — a
	// proposition itself now merged (spec.md §4.5).
	resolveTransitiveMerges(updates)

	propositionUpdates := make([]models.PropositionUpdate, 0, len(updates))
	for _, u := range updates {
		propositionUpdates = append(propositionUpdates, *u)
	}

	return models.StoreDiff{
		NewEvidence:        newEvidence,
		NewPropositions:    newPropositions,
		PropositionUpdates: propositionUpdates,
		NewInterview:       interview,
	}, nil
}

// assignEvidenceIDs mints a real, monotonic id for every symbolic evidence
// proposal, starting from the Snapshot's own counter.
func assignEvidenceIDs(snap models.Snapshot, diff models.AnalysisDiff) map[string]string {
	out := make(map[string]string, len(diff.ExtractedEvidence))
	seq := snap.Project.NextEvidenceSeq
	for _, e := range diff.ExtractedEvidence {
		out[e.SymbolicID] = fmt.Sprintf("E%03d", seq)
		seq++
	}
	return out
}

// assignPropositionIDs mints real ids for both newly-authored propositions
// and the unified propositions merge proposals create, continuing the same
// counter so no id collides.
func assignPropositionIDs(snap models.Snapshot, diff models.AnalysisDiff) map[string]string {
	out := make(map[string]string, len(diff.NewPropositions)+len(diff.MergeProposals))
	seq := snap.Project.NextPropositionSeq
	for _, p := range diff.NewPropositions {
		out[p.SymbolicID] = fmt.Sprintf("P%03d", seq)
		seq++
	}
	for _, m := range diff.MergeProposals {
		out[m.NewSymbolicID] = fmt.Sprintf("P%03d", seq)
		seq++
	}
	return out
}

func resolveEvidence(proposals []models.EvidenceProposal, id map[string]string, interviewID string, ts time.Time) []models.Evidence {
	out := make([]models.Evidence, 0, len(proposals))
	for _, e := range proposals {
		out = append(out, models.Evidence{
			ID: id[e.SymbolicID], InterviewID: interviewID, Quote: e.Quote, Interpretation: e.Interpretation,
			Factor: e.Factor, Mechanism: e.Mechanism, Outcome: e.Outcome, Tags: e.Tags, Language: e.Language,
			Timestamp: ts,
		})
	}
	return out
}

func currentStatus(snap models.Snapshot, id string) models.PropositionStatus {
	for _, p := range snap.Propositions {
		if p.ID == id {
			return p.Status
		}
	}
	return models.StatusUntested
}

// evidenceSnapshot is the latest known (support, contradict, confidence)
// triple for a proposition this reconciliation round — either what a
// pending update already computed, or its committed Snapshot state.
type evidenceSnapshot struct {
	support, contradict models.EvidenceSet
	confidence          float64
}

func evidenceOf(snap models.Snapshot, updates map[string]*models.PropositionUpdate, id string) evidenceSnapshot {
	if u, ok := updates[id]; ok && u.SupportingEvidence != nil {
		return evidenceSnapshot{support: u.SupportingEvidence, contradict: u.ContradictingEvidence, confidence: u.Confidence}
	}
	for _, p := range snap.Propositions {
		if p.ID == id {
			return evidenceSnapshot{support: p.SupportingEvidence, contradict: p.ContradictingEvidence, confidence: p.Confidence}
		}
	}
	return evidenceSnapshot{support: models.NewEvidenceSet(), contradict: models.NewEvidenceSet()}
}

// terminalMergeTarget follows id's merge chain through this round's updates
// until it reaches a proposition that isn't itself merged away this round,
// guarding against a malformed diff proposing a cycle.
func terminalMergeTarget(id string, updates map[string]*models.PropositionUpdate, visited map[string]bool) string {
	if visited[id] {
		return id
	}
	u, ok := updates[id]
	if !ok || u.Status != models.StatusMerged || u.MergedInto == "" {
		return id
	}
	visited[id] = true
	return terminalMergeTarget(u.MergedInto, updates, visited)
}

// resolveTransitiveMerges rewrites every merged update's MergedInto to the
// terminal target of its chain, so "A into B, B into C" in one diff leaves
// A pointing at C rather than at B (spec.md §4.5).
func resolveTransitiveMerges(updates map[string]*models.PropositionUpdate) {
	for id, u := range updates {
		if u.Status != models.StatusMerged || u.MergedInto == "" {
			continue
		}
		u.MergedInto = terminalMergeTarget(u.MergedInto, updates, map[string]bool{id: true})
	}
}

func ensurePropositionBaseline(u *models.PropositionUpdate, snap models.Snapshot, id string) {
	if u.SupportingEvidence != nil {
		return
	}
	base := evidenceOf(snap, nil, id)
	u.SupportingEvidence = base.support
	u.ContradictingEvidence = base.contradict
	u.Confidence = base.confidence
}

// initialMergedStatus gives a freshly-unified proposition a sensible
// starting status from its combined evidence's already-computed confidence,
// using the same thresholds as the ordinary status-transition rules
// (spec.md §4.4 step 7) without the distinct-interview/counter requirements
// a truly new proposition hasn't had time to accrue.
func initialMergedStatus(confidence float64, contradict models.EvidenceSet) models.PropositionStatus {
	switch {
	case len(contradict) > 0 && confidence < 0.7:
		return models.StatusChallenged
	case confidence >= 0.7:
		return models.StatusConfirmed
	default:
		return models.StatusExploring
	}
}

// interviewOf resolves the interview id that produced an already-resolved
// (real-id) evidence id: the Snapshot's own record if it was committed
// before this round, otherwise this interview — any real evidence id not
// yet in the Snapshot was necessarily extracted from the current transcript
// (mirrors pkg/analyst's identical helper, which instead works over
// not-yet-resolved symbolic ids).
func interviewOf(id string, snap models.Snapshot, thisInterviewID string) string {
	if e, ok := snap.EvidenceByID(id); ok {
		return e.InterviewID
	}
	return thisInterviewID
}

// isSingleInterview reports whether every evidence id in ids traces back to
// the same interview, for the universal confidence invariant's
// single-interview penalty (spec.md §8 item 5).
func isSingleInterview(ids models.EvidenceSet, snap models.Snapshot, thisInterviewID string) bool {
	seen := map[string]struct{}{}
	for id := range ids {
		seen[interviewOf(id, snap, thisInterviewID)] = struct{}{}
	}
	return len(seen) == 1
}
