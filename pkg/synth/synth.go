// Package synth implements the Synthesizer: a single LLM call that turns a
// project's confirmed findings into a human-readable Markdown report.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
)

// Synthesizer wraps an Oracle to author the project report.
type Synthesizer struct {
	oracle   llmoracle.Oracle
	agentCfg *config.AgentConfig
}

// New builds a Synthesizer backed by oracle, configured per cfg.
func New(oracle llmoracle.Oracle, agentCfg *config.AgentConfig) *Synthesizer {
	return &Synthesizer{oracle: oracle, agentCfg: agentCfg}
}

// GenerateReport produces a Markdown research report from view: confirmed
// and saturated findings as the main narrative, challenged findings flagged
// as open questions, and a pruned appendix (spec.md scenario D: weak
// propositions stay visible as an appendix rather than disappearing).
func (s *Synthesizer) GenerateReport(ctx context.Context, view models.ReportView) (string, error) {
	text, err := s.oracle.ChatText(ctx, llmoracle.ChatRequest{
		Messages:       buildMessages(view),
		Temperature:    float64(s.agentCfg.Temperature),
		MaxTokens:      s.agentCfg.MaxTokens,
		ResponseFormat: llmoracle.FormatText,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

const systemPrompt = `You are a qualitative research analyst writing the final report for an
interview-based causal research project. You are given the research
question and three buckets of findings: confirmed (well-supported causal
claims), challenged (claims with live contradicting evidence), and pruned
(claims abandoned for lack of support, kept for transparency).

Write a Markdown report with these sections, in order:
1. A one-paragraph executive summary.
2. "## Confirmed Findings" — one subsection per finding, citing its
   supporting quotes, stating the factor -> mechanism -> outcome claim in
   plain language and its confidence.
3. "## Open Questions" — the challenged findings, explaining what evidence
   conflicts and why the claim remains unresolved.
4. "## Appendix: Pruned Claims" — a short list of abandoned hypotheses, for
   transparency only; do not present them as findings.

Ground every claim in the quotes provided. Never invent a quote or a finding
not present in the input. Write in English regardless of the quotes' source
language.`

func buildMessages(view models.ReportView) []llmoracle.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Research question: %s\n", view.Project.ResearchQuestion)
	fmt.Fprintf(&b, "Interviews completed: %d. Total evidence items: %d.\n\n", view.TotalInterviews, view.TotalEvidence)

	writeFindings(&b, "Confirmed findings", view.ConfirmedFindings)
	writeFindings(&b, "Challenged findings", view.ChallengedFindings)
	writeFindings(&b, "Pruned findings", view.PrunedAppendix)

	return []llmoracle.Message{
		{Role: llmoracle.RoleSystem, Content: systemPrompt},
		{Role: llmoracle.RoleUser, Content: b.String()},
	}
}

func writeFindings(b *strings.Builder, label string, findings []models.ReportFinding) {
	fmt.Fprintf(b, "%s (%d):\n", label, len(findings))
	for _, f := range findings {
		p := f.Proposition
		fmt.Fprintf(b, "- [%s] %s -> %s -> %s (confidence %.2f, status %s)\n",
			p.ID, p.Factor, p.Mechanism, p.Outcome, p.Confidence, p.Status)
		for _, q := range f.Quotes {
			fmt.Fprintf(b, "    quote: %q\n", q)
		}
	}
	b.WriteString("\n")
}
