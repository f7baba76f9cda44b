package designer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
)

const designerSystemPrompt = `You are the Designer in a qualitative-research engine. You author interview guides that help researchers discover and test causal propositions of the form factor -> mechanism -> outcome. You respond with a single JSON object and nothing else.`

func (d *Designer) initialMessages(researchQuestion string, seedAngles []string) []llmoracle.Message {
	user := fmt.Sprintf(`Research question: %s
Seed angles to cover: %s

Produce between %d and %d diverse causal propositions (factor -> mechanism -> outcome) covering the seed angles, each as an untested hypothesis. For each, also write one main interview question and 2-3 follow-up probes plus a short context note explaining why this angle matters.

Also produce an opening question, a closing question, and a wildcard question (something unexpected to ask if the conversation allows room for it).

Return JSON:
{
  "propositions": [{"factor": "...", "mechanism": "...", "outcome": "...", "main_question": "...", "probes": ["...", "..."], "context": "..."}],
  "opening_question": "...",
  "closing_question": "...",
  "wildcard": "..."
}`, researchQuestion, strings.Join(seedAngles, ", "), minInitialPropositions, maxInitialPropositions)

	return []llmoracle.Message{
		{Role: llmoracle.RoleSystem, Content: designerSystemPrompt},
		{Role: llmoracle.RoleUser, Content: user},
	}
}

func (d *Designer) updateMessages(snap models.Snapshot, selected []models.Proposition, previous models.InterviewScript, metrics models.AnalysisMetrics) []llmoracle.Message {
	type livePropView struct {
		ID          string  `json:"id"`
		Factor      string  `json:"factor"`
		Mechanism   string  `json:"mechanism"`
		Outcome     string  `json:"outcome"`
		Confidence  float64 `json:"confidence"`
		Status      string  `json:"status"`
		Instruction string  `json:"instruction"`
	}
	views := make([]livePropView, 0, len(selected))
	for _, p := range selected {
		views = append(views, livePropView{
			ID: p.ID, Factor: p.Factor, Mechanism: p.Mechanism, Outcome: p.Outcome,
			Confidence: p.Confidence, Status: string(p.Status), Instruction: string(assignInstruction(p)),
		})
	}
	propsJSON, _ := json.MarshalIndent(views, "", "  ")

	mode := "divergent: prioritize exploring new ground"
	if metrics.Mode == models.ModeConvergent {
		mode = "convergent: prioritize challenging strong claims over exploring new ones"
	}

	user := fmt.Sprintf(`Research question: %s
Current mode: %s (convergence_score=%.2f, novelty_rate=%.2f)

Live propositions to cover this round, with their id and assigned approach (EXPLORE/VERIFY/CHALLENGE/SATURATED — do not change the approach, just write good content for it):
%s

Previous opening/closing/wildcard questions (revise only if needed):
Opening: %s
Closing: %s
Wildcard: %s

For each proposition id above, write one main interview question and 2-3 probes matching its approach (EXPLORE = open-ended discovery, VERIFY = confirm the claim with specifics, CHALLENGE = actively seek disconfirming detail, SATURATED = a brief check only, don't dig) plus a short context note. Also write a one-sentence changes_summary describing what's new in this script version versus the previous one.

Return JSON:
{
  "sections": [{"proposition_id": "...", "main_question": "...", "probes": ["...", "..."], "context": "..."}],
  "opening_question": "...",
  "closing_question": "...",
  "wildcard": "...",
  "changes_summary": "..."
}`, snap.Project.ResearchQuestion, mode, metrics.ConvergenceScore, metrics.NoveltyRate, string(propsJSON),
		previous.OpeningQuestion, previous.ClosingQuestion, previous.Wildcard)

	return []llmoracle.Message{
		{Role: llmoracle.RoleSystem, Content: designerSystemPrompt},
		{Role: llmoracle.RoleUser, Content: user},
	}
}
