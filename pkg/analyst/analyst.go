// Package analyst implements the single-LLM-call evidence-extraction and
// proposition-maintenance algorithm (spec.md §4.4). Analyze is a pure
// function: given a transcript and a consistent Snapshot it returns an
// AnalysisDiff using symbolic ids for anything not yet persisted. It never
// touches the store itself — pkg/reconciler resolves and commits its output.
package analyst

import (
	"context"
	"fmt"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
)

// Analyst wraps an Oracle to run the evidence-extraction/mapping/merge
// algorithm against one interview transcript at a time.
type Analyst struct {
	oracle     llmoracle.Oracle
	agentCfg   *config.AgentConfig
	thresholds config.ThresholdConfig
}

// New builds an Analyst backed by oracle, configured per cfg.
func New(oracle llmoracle.Oracle, agentCfg *config.AgentConfig, thresholds config.ThresholdConfig) *Analyst {
	return &Analyst{oracle: oracle, agentCfg: agentCfg, thresholds: thresholds}
}

// Analyze runs the full 8-step algorithm against one transcript and the
// project's current snapshot, returning a pure AnalysisDiff. interviewID is
// the id the Reconciler will assign to this interview (used only to
// attribute new evidence to "this interview" for single-interview-penalty
// and distinct-interview-count purposes; Analyze never writes it anywhere).
func (a *Analyst) Analyze(ctx context.Context, transcript, interviewID string, snap models.Snapshot) (models.AnalysisDiff, error) {
	raw, err := a.oracle.ChatJSON(ctx, llmoracle.ChatRequest{
		Messages:       buildMessages(transcript, snap),
		Temperature:    float64(a.agentCfg.Temperature),
		MaxTokens:      a.agentCfg.MaxTokens,
		ResponseFormat: llmoracle.FormatJSON,
	})
	if err != nil {
		return models.AnalysisDiff{}, err
	}

	resp, err := decodeResponse(raw)
	if err != nil {
		return models.AnalysisDiff{}, err
	}

	symbolicEvidence := make(map[string]struct{}, len(resp.Evidence))
	for _, e := range resp.Evidence {
		symbolicEvidence[e.SymbolicID] = struct{}{}
	}

	live := snap.LivePropositions()
	states := make(map[string]*propState, len(live)+len(resp.NewPropositions))
	order := make([]string, 0, len(live)+len(resp.NewPropositions))

	for _, p := range live {
		st := &propState{
			id: p.ID, factor: p.Factor, mechanism: p.Mechanism, outcome: p.Outcome,
			support:        p.SupportingEvidence.Union(models.NewEvidenceSet()),
			contradict:     p.ContradictingEvidence.Union(models.NewEvidenceSet()),
			priorSupport:   p.SupportingEvidence,
			priorContradict: p.ContradictingEvidence,
			priorStatus:    p.Status,
		}
		states[st.id] = st
		order = append(order, st.id)
	}

	// Step 2: apply the initial mapping pass against existing propositions.
	for _, m := range resp.Mappings {
		st, ok := states[m.PropositionID]
		if !ok {
			continue // referenced a proposition id the Analyst invented; drop silently, it's not load-bearing
		}
		switch models.MappingRelation(m.Relation) {
		case models.RelationSupports:
			st.support.Add(m.EvidenceID)
		case models.RelationContradicts:
			st.contradict.Add(m.EvidenceID)
		}
	}

	// Step 3: new propositions from orphan clusters / strong singles / cross patterns.
	newPropProposals := make([]models.PropositionProposal, 0, len(resp.NewPropositions))
	noveltyEvidence := map[string]struct{}{}
	for i, draft := range resp.NewPropositions {
		id := fmt.Sprintf("p#%d", i+1)
		st := &propState{
			id: id, isNew: true, factor: draft.Factor, mechanism: draft.Mechanism, outcome: draft.Outcome,
			support:    models.NewEvidenceSet(draft.SupportingEvidence...),
			contradict: models.NewEvidenceSet(draft.ContradictingEvidence...),
		}
		states[id] = st
		order = append(order, id)
		for _, eid := range draft.SupportingEvidence {
			if _, ok := symbolicEvidence[eid]; ok {
				noveltyEvidence[eid] = struct{}{}
			}
		}
		for _, eid := range draft.ContradictingEvidence {
			if _, ok := symbolicEvidence[eid]; ok {
				noveltyEvidence[eid] = struct{}{}
			}
		}
	}

	// Step 4: retroactive scan — new propositions only, against prior evidence.
	for _, m := range resp.RetroactiveMappings {
		st, ok := states[m.PropositionID]
		if !ok || !st.isNew {
			continue
		}
		switch models.MappingRelation(m.Relation) {
		case models.RelationSupports:
			st.support.Add(m.EvidenceID)
		case models.RelationContradicts:
			st.contradict.Add(m.EvidenceID)
		}
	}

	// Step 5: subsume proposals, taken from the Analyst's own judgment.
	subsumed := map[string]struct{}{}
	var subsumeProposals []models.SubsumeProposal
	for _, s := range resp.SubsumeProposals {
		fromSt, fromOK := states[s.FromID]
		_, intoOK := states[s.IntoID]
		if !fromOK || !intoOK || fromSt.isNew {
			continue // subsume only ever applies to existing live propositions
		}
		subsumed[s.FromID] = struct{}{}
		subsumeProposals = append(subsumeProposals, models.SubsumeProposal{FromID: s.FromID, IntoID: s.IntoID})
	}

	// Step 6a: merge — candidate pairs are found deterministically (Jaccard
	// overlap over final supporting sets), but the unified proposition's
	// text is authored by the Analyst itself via a dedicated oracle call
	// per candidate, never copied from either input.
	all := make([]*propState, 0, len(order))
	for _, id := range order {
		all = append(all, states[id])
	}
	candidates := detectMergeCandidates(all, a.thresholds.MergeOverlap, subsumed)
	mergeProposals := make([]models.MergeProposal, 0, len(candidates))
	for _, c := range candidates {
		raw, err := a.oracle.ChatJSON(ctx, llmoracle.ChatRequest{
			Messages:       buildMergeMessages(c.a.factor, c.a.mechanism, c.a.outcome, c.b.factor, c.b.mechanism, c.b.outcome),
			Temperature:    float64(a.agentCfg.Temperature),
			MaxTokens:      a.agentCfg.MaxTokens,
			ResponseFormat: llmoracle.FormatJSON,
		})
		if err != nil {
			return models.AnalysisDiff{}, fmt.Errorf("analyst: author merged proposition text: %w", err)
		}
		text, err := decodeMergeText(raw)
		if err != nil {
			return models.AnalysisDiff{}, err
		}
		mergeProposals = append(mergeProposals, models.MergeProposal{
			NewSymbolicID: c.symbolicID, FromIDs: []string{c.a.id, c.b.id},
			Factor: text.Factor, Mechanism: text.Mechanism, Outcome: text.Outcome,
		})
	}
	mergedAway := map[string]struct{}{}
	for _, mp := range mergeProposals {
		for _, id := range mp.FromIDs {
			mergedAway[id] = struct{}{}
		}
	}

	// Step 5/7: confidence recalculation and status transitions.
	var confidenceUpdates []models.ConfidenceUpdate
	var statusTransitions []models.StatusTransition
	for _, st := range all {
		if st.isNew {
			continue // new propositions get their initial confidence/status below, not a ConfidenceUpdate
		}
		if _, ok := mergedAway[st.id]; ok {
			continue // superseded by its MergeProposal; Reconciler flips it to merged directly
		}
		if _, ok := subsumed[st.id]; ok {
			continue // superseded by its SubsumeProposal
		}

		single := isSingleInterview(st.support.Union(st.contradict), snap, interviewID, symbolicEvidence)
		st.confidence = models.ComputeConfidence(st.support, st.contradict, single)

		counter := 0
		if !st.changed() {
			counter = priorCounter(snap, st.id) + 1
		}
		distinct := distinctSupportingInterviews(st.support, snap, interviewID, symbolicEvidence)
		st.resolvedStatus = nextStatus(st.priorStatus, st.confidence, len(st.support), len(st.contradict), distinct, counter)

		// Emitted unconditionally: the counter advances every round a
		// proposition is untouched, and that advance must reach the Store or
		// it would never cross the prune threshold.
		confidenceUpdates = append(confidenceUpdates, models.ConfidenceUpdate{
			PropositionID:                st.id,
			SupportingEvidence:           st.support.Slice(),
			ContradictingEvidence:        st.contradict.Slice(),
			Confidence:                   st.confidence,
			InterviewsWithoutNewEvidence: counter,
		})
		if st.resolvedStatus != st.priorStatus {
			statusTransitions = append(statusTransitions, models.StatusTransition{PropositionID: st.id, NewStatus: st.resolvedStatus})
		}
	}

	// Step 6b: prune — confidence below floor with evidence stale long enough.
	var pruneProposals []models.PruneProposal
	for _, st := range all {
		if st.isNew {
			continue
		}
		if st.resolvedStatus == models.StatusWeak && st.priorStatus != models.StatusWeak {
			pruneProposals = append(pruneProposals, models.PruneProposal{PropositionID: st.id})
		}
	}

	// New propositions: initial confidence/status per spec.md §4.4 step 3's
	// worked example (scenario B) — exploring as soon as it carries any
	// evidence, untested only in the degenerate empty case.
	for i, draft := range resp.NewPropositions {
		id := fmt.Sprintf("p#%d", i+1)
		st := states[id]
		single := isSingleInterview(st.support.Union(st.contradict), snap, interviewID, symbolicEvidence)
		st.confidence = models.ComputeConfidence(st.support, st.contradict, single)
		st.resolvedStatus = models.StatusUntested
		if len(st.support)+len(st.contradict) > 0 {
			st.resolvedStatus = models.StatusExploring
		}
		newPropProposals = append(newPropProposals, models.PropositionProposal{
			SymbolicID: id, Factor: draft.Factor, Mechanism: draft.Mechanism, Outcome: draft.Outcome,
			ProvisionalStatus:     st.resolvedStatus,
			Confidence:            st.confidence,
			SupportingEvidence:    st.support.Slice(),
			ContradictingEvidence: st.contradict.Slice(),
		})
	}

	metrics := computeMetrics(all, a.thresholds, len(resp.Evidence), len(noveltyEvidence))

	diff := models.AnalysisDiff{
		ExtractedEvidence:   toEvidenceProposals(resp.Evidence),
		Mappings:            toMappingProposals(resp.Mappings),
		NewPropositions:     newPropProposals,
		RetroactiveMappings: toMappingProposals(resp.RetroactiveMappings),
		ConfidenceUpdates:   confidenceUpdates,
		MergeProposals:      mergeProposals,
		SubsumeProposals:    subsumeProposals,
		PruneProposals:      pruneProposals,
		StatusTransitions:   statusTransitions,
		Metrics:             metrics,
	}
	return diff, nil
}

// priorCounter reads a proposition's persisted interviews_without_new_evidence
// from the snapshot (0 if not found, which only happens for newly-created ids).
func priorCounter(snap models.Snapshot, id string) int {
	for _, p := range snap.Propositions {
		if p.ID == id {
			return p.InterviewsWithoutNewEvidence
		}
	}
	return 0
}

func toEvidenceProposals(items []evidenceItemJSON) []models.EvidenceProposal {
	out := make([]models.EvidenceProposal, 0, len(items))
	for _, e := range items {
		out = append(out, models.EvidenceProposal{
			SymbolicID: e.SymbolicID, Quote: e.Quote, Interpretation: e.Interpretation,
			Factor: e.Factor, Mechanism: e.Mechanism, Outcome: e.Outcome,
			Tags: e.Tags, Language: e.Language,
		})
	}
	return out
}

func toMappingProposals(items []mappingJSON) []models.MappingProposal {
	out := make([]models.MappingProposal, 0, len(items))
	for _, m := range items {
		out = append(out, models.MappingProposal{
			EvidenceID: m.EvidenceID, PropositionID: m.PropositionID, Relation: models.MappingRelation(m.Relation),
		})
	}
	return out
}
