// Package designer produces the initial proposition set and script for a
// new project, and regenerates the script after every interview.
package designer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
)

const (
	minInitialPropositions = 5
	maxInitialPropositions = 8
)

// Designer wraps an Oracle to author the initial proposition set plus
// script, and to regenerate the script as the project's live propositions
// evolve.
type Designer struct {
	oracle     llmoracle.Oracle
	agentCfg   *config.AgentConfig
	thresholds config.ThresholdConfig
}

// New builds a Designer backed by oracle, configured per cfg.
func New(oracle llmoracle.Oracle, agentCfg *config.AgentConfig, thresholds config.ThresholdConfig) *Designer {
	return &Designer{oracle: oracle, agentCfg: agentCfg, thresholds: thresholds}
}

// GenerateInitial asks the oracle for 5-8 propositions covering diverse seed
// angles and builds a v1 script whose sections are all EXPLORE (spec.md
// §4.3). It keeps the first 8 when more come back; a reply with fewer than
// 5 (but at least one) is accepted as it is, not rejected.
func (d *Designer) GenerateInitial(ctx context.Context, projectID, researchQuestion string, seedAngles []string) ([]models.Proposition, models.InterviewScript, error) {
	raw, err := d.oracle.ChatJSON(ctx, llmoracle.ChatRequest{
		Messages:       d.initialMessages(researchQuestion, seedAngles),
		Temperature:    float64(d.agentCfg.Temperature),
		MaxTokens:      d.agentCfg.MaxTokens,
		ResponseFormat: llmoracle.FormatJSON,
	})
	if err != nil {
		return nil, models.InterviewScript{}, err
	}

	resp, err := decodeInitialResponse(raw)
	if err != nil {
		return nil, models.InterviewScript{}, err
	}
	if len(resp.Propositions) > maxInitialPropositions {
		resp.Propositions = resp.Propositions[:maxInitialPropositions]
	}

	propositions := make([]models.Proposition, 0, len(resp.Propositions))
	sections := make([]models.ScriptSection, 0, len(resp.Propositions))
	for i, draft := range resp.Propositions {
		id := fmt.Sprintf("p#%d", i+1) // symbolic; Reconciler assigns the real id
		propositions = append(propositions, models.Proposition{
			ID: id, Factor: draft.Factor, Mechanism: draft.Mechanism, Outcome: draft.Outcome,
			Status: models.StatusUntested, Confidence: 0,
			SupportingEvidence: models.NewEvidenceSet(), ContradictingEvidence: models.NewEvidenceSet(),
		})
		sections = append(sections, models.ScriptSection{
			PropositionID: id, Priority: priorityForInitial(i, len(resp.Propositions)),
			Instruction: models.InstructionExplore, MainQuestion: draft.MainQuestion,
			Probes: draft.Probes, Context: draft.Context,
		})
	}

	script := models.InterviewScript{
		ProjectID: projectID, Version: 1, ResearchQuestion: researchQuestion,
		OpeningQuestion: resp.OpeningQuestion, Sections: sections,
		ClosingQuestion: resp.ClosingQuestion, Wildcard: resp.Wildcard,
		Mode: models.ModeDivergent,
	}
	return propositions, script, nil
}

// UpdateScript produces script v(n+1) from the current live propositions,
// recent evidence, and the previous script. metrics carries the Analyst's
// most recently computed convergence_score/novelty_rate/mode, which this
// script version records and which biases instruction assignment toward
// CHALLENGE in convergent mode (spec.md scenario E).
func (d *Designer) UpdateScript(ctx context.Context, snap models.Snapshot, previous models.InterviewScript, metrics models.AnalysisMetrics, afterInterviewID string) (models.InterviewScript, error) {
	live := snap.LivePropositions()
	selected := selectPropositions(live, d.thresholds.MaxPropositionsInScript)

	raw, err := d.oracle.ChatJSON(ctx, llmoracle.ChatRequest{
		Messages:       d.updateMessages(snap, selected, previous, metrics),
		Temperature:    float64(d.agentCfg.Temperature),
		MaxTokens:      d.agentCfg.MaxTokens,
		ResponseFormat: llmoracle.FormatJSON,
	})
	if err != nil {
		return models.InterviewScript{}, err
	}

	resp, err := decodeUpdateResponse(raw)
	if err != nil {
		return models.InterviewScript{}, err
	}

	contentByID := make(map[string]sectionDraft, len(resp.Sections))
	for _, sd := range resp.Sections {
		contentByID[sd.PropositionID] = sd
	}

	sections := make([]models.ScriptSection, 0, len(selected))
	for _, p := range selected {
		instr := assignInstruction(p)
		content := contentByID[p.ID]
		sections = append(sections, models.ScriptSection{
			PropositionID: p.ID, Priority: sectionPriority(p, instr), Instruction: instr,
			MainQuestion: content.MainQuestion, Probes: content.Probes, Context: content.Context,
		})
	}

	script := models.InterviewScript{
		ProjectID: snap.Project.ID, Version: previous.Version + 1,
		GeneratedAfterInterview: afterInterviewID, ResearchQuestion: snap.Project.ResearchQuestion,
		OpeningQuestion: firstNonEmpty(resp.OpeningQuestion, previous.OpeningQuestion),
		Sections:        sections,
		ClosingQuestion: firstNonEmpty(resp.ClosingQuestion, previous.ClosingQuestion),
		Wildcard:        firstNonEmpty(resp.Wildcard, previous.Wildcard),
		Mode:            metrics.Mode,
		ConvergenceScore: metrics.ConvergenceScore,
		NoveltyRate:      metrics.NoveltyRate,
		ChangesSummary:   resp.ChangesSummary,
	}
	return script, nil
}

func priorityForInitial(index, total int) models.SectionPriority {
	switch {
	case index < total/3:
		return models.PriorityHigh
	case index < 2*total/3:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
