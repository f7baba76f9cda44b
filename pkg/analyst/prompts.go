package analyst

import (
	"encoding/json"
	"fmt"

	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
)

const analystSystemPrompt = `You are the Analyst in a qualitative-research engine. Given one interview transcript and the project's current causal propositions (factor -> mechanism -> outcome), you extract evidence, classify it against the propositions, and propose new propositions for patterns the existing set doesn't cover. You respond with a single JSON object and nothing else.`

type livePropositionView struct {
	ID        string `json:"id"`
	Factor    string `json:"factor"`
	Mechanism string `json:"mechanism"`
	Outcome   string `json:"outcome"`
	Status    string `json:"status"`
}

type priorEvidenceView struct {
	ID             string `json:"id"`
	Interpretation string `json:"interpretation"`
	Factor         string `json:"factor"`
	Mechanism      string `json:"mechanism"`
	Outcome        string `json:"outcome"`
}

func buildMessages(transcript string, snap models.Snapshot) []llmoracle.Message {
	live := snap.LivePropositions()
	propViews := make([]livePropositionView, 0, len(live))
	for _, p := range live {
		propViews = append(propViews, livePropositionView{
			ID: p.ID, Factor: p.Factor, Mechanism: p.Mechanism, Outcome: p.Outcome, Status: string(p.Status),
		})
	}
	propsJSON, _ := json.MarshalIndent(propViews, "", "  ")

	priorViews := make([]priorEvidenceView, 0, len(snap.Evidence))
	for _, e := range snap.Evidence {
		priorViews = append(priorViews, priorEvidenceView{
			ID: e.ID, Interpretation: e.Interpretation, Factor: e.Factor, Mechanism: e.Mechanism, Outcome: e.Outcome,
		})
	}
	priorJSON, _ := json.MarshalIndent(priorViews, "", "  ")

	user := fmt.Sprintf(`Interview transcript:
%s

Current live propositions:
%s

All prior evidence (for the retroactive scan — check whether any of it now also supports or contradicts a NEW proposition you create below):
%s

Do the following, in order:
1. Extract every discrete observation from the transcript as an evidence item. Each gets a symbolic_id like "e#1", a verbatim quote, an English interpretation, a factor/mechanism/outcome triple, 2-5 English tags, and the transcript's language.
2. Classify each extracted evidence item against every current live proposition above: supports, contradicts, or irrelevant. Only emit a mapping when the evidence item is relevant to that proposition at all — omit irrelevant-to-everything pairs rather than emitting irrelevant for every proposition.
3. Any evidence items left with no supports/contradicts mapping to any live proposition are orphans. When two or more orphans share a causal pattern, or a single orphan is a strong enough signal on its own, or a cross-evidence pattern emerges, author a new proposition (symbolic_id like "p#1") referencing the orphan evidence ids (and any other extracted evidence ids) that support or contradict it.
4. For each new proposition you authored, scan the prior evidence listed above and emit a retroactive_mappings entry for any prior evidence id that also supports or contradicts it.
5. If any live proposition is now a strict specialization of another (all its support also supports the other, with no independent signal), or vice versa, propose subsuming the narrower into the broader one via subsume_proposals.

Return JSON:
{
  "evidence": [{"symbolic_id": "e#1", "quote": "...", "interpretation": "...", "factor": "...", "mechanism": "...", "outcome": "...", "tags": ["..."], "language": "..."}],
  "mappings": [{"evidence_id": "e#1", "proposition_id": "P003", "relation": "supports"}],
  "new_propositions": [{"symbolic_id": "p#1", "factor": "...", "mechanism": "...", "outcome": "...", "supporting_evidence": ["e#2"], "contradicting_evidence": []}],
  "retroactive_mappings": [{"evidence_id": "E011", "proposition_id": "p#1", "relation": "supports"}],
  "subsume_proposals": [{"from_id": "P007", "into_id": "P003"}]
}`, transcript, string(propsJSON), string(priorJSON))

	return []llmoracle.Message{
		{Role: llmoracle.RoleSystem, Content: analystSystemPrompt},
		{Role: llmoracle.RoleUser, Content: user},
	}
}

const mergeSystemPrompt = `You are the Analyst authoring a single unified causal proposition from two propositions whose supporting evidence overlaps enough to merge. You respond with a single JSON object and nothing else.`

// buildMergeMessages asks the Analyst to author the unified factor/mechanism/
// outcome text for a merge candidate, rather than mechanically reusing
// either input's text verbatim.
func buildMergeMessages(aFactor, aMechanism, aOutcome, bFactor, bMechanism, bOutcome string) []llmoracle.Message {
	user := fmt.Sprintf(`Two propositions have overlapping supporting evidence and should be merged into one:

Proposition A: factor=%q mechanism=%q outcome=%q
Proposition B: factor=%q mechanism=%q outcome=%q

Author a single unified proposition that captures the shared causal claim both describe, in your own words. Do not just repeat one of the two inputs.

Return JSON:
{"factor": "...", "mechanism": "...", "outcome": "..."}`, aFactor, aMechanism, aOutcome, bFactor, bMechanism, bOutcome)

	return []llmoracle.Message{
		{Role: llmoracle.RoleSystem, Content: mergeSystemPrompt},
		{Role: llmoracle.RoleUser, Content: user},
	}
}
