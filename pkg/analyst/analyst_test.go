package analyst

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
)

type stubOracle struct {
	response map[string]any
	err      error
}

func (s stubOracle) ChatJSON(_ context.Context, _ llmoracle.ChatRequest) (map[string]any, error) {
	return s.response, s.err
}

func (s stubOracle) ChatText(_ context.Context, _ llmoracle.ChatRequest) (string, error) {
	return "", s.err
}

func testThresholds() config.ThresholdConfig {
	return config.ThresholdConfig{
		ConvergenceScore: 0.6, NoveltyRate: 0.15, MergeOverlap: 0.6,
		PruneConfidence: 0.15, PruneMinInterviews: 3, MaxPropositionsInScript: 8,
	}
}

func testAgentCfg() *config.AgentConfig {
	return &config.AgentConfig{Backend: config.LLMBackendAnthropic, Model: "test-model", Temperature: 0.2, MaxTokens: 4096}
}

// TestAnalyze_ScenarioA mirrors spec.md's scenario A: a first interview
// whose single piece of evidence supports an existing untested proposition,
// pushing it to exploring with the single-interview confidence penalty.
func TestAnalyze_ScenarioA(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1", ResearchQuestion: "What is your experience with this hackathon?"},
		Propositions: []models.Proposition{
			{
				ID: "P001", Factor: "time pressure", Mechanism: "forces prioritization", Outcome: "focus",
				Status: models.StatusUntested, SupportingEvidence: models.NewEvidenceSet(), ContradictingEvidence: models.NewEvidenceSet(),
			},
		},
	}

	oracle := stubOracle{response: map[string]any{
		"evidence": []any{
			map[string]any{
				"symbolic_id": "e#1", "quote": "Time pressure helped us focus", "interpretation": "Time pressure helped the team focus",
				"factor": "time pressure", "mechanism": "forces prioritization", "outcome": "focus",
				"tags": []any{"time-pressure", "focus"}, "language": "en",
			},
		},
		"mappings": []any{
			map[string]any{"evidence_id": "e#1", "proposition_id": "P001", "relation": "supports"},
		},
		"new_propositions":     []any{},
		"retroactive_mappings": []any{},
		"subsume_proposals":    []any{},
	}}

	a := New(oracle, testAgentCfg(), testThresholds())
	diff, err := a.Analyze(context.Background(), "User: Time pressure helped us focus", "INT_001", snap)
	require.NoError(t, err)

	require.Len(t, diff.ExtractedEvidence, 1)
	require.Len(t, diff.ConfidenceUpdates, 1)
	update := diff.ConfidenceUpdates[0]
	assert.Equal(t, "P001", update.PropositionID)
	assert.InDelta(t, 0.8, update.Confidence, 1e-9) // 1.0 support ratio minus 0.2 single-interview penalty

	require.Len(t, diff.StatusTransitions, 1)
	assert.Equal(t, models.StatusExploring, diff.StatusTransitions[0].NewStatus)
}

// TestAnalyze_OrphanBecomesNewProposition mirrors scenario B: evidence that
// matches no live proposition spawns a new one.
func TestAnalyze_OrphanBecomesNewProposition(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1"},
		Propositions: []models.Proposition{
			{ID: "P001", Factor: "time pressure", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet()},
		},
		Evidence: []models.Evidence{
			{ID: "E001", InterviewID: "INT_001", Factor: "time pressure", Outcome: "focus", Timestamp: time.Now()},
		},
	}

	oracle := stubOracle{response: map[string]any{
		"evidence": []any{
			map[string]any{
				"symbolic_id": "e#1", "quote": "The venue was freezing and I couldn't think", "interpretation": "Cold venue impaired cognition",
				"factor": "venue temperature", "mechanism": "physical discomfort", "outcome": "impaired cognition",
				"tags": []any{"environment"}, "language": "en",
			},
		},
		"mappings": []any{},
		"new_propositions": []any{
			map[string]any{
				"symbolic_id": "p#1", "factor": "venue temperature", "mechanism": "physical discomfort", "outcome": "impaired cognition",
				"supporting_evidence": []any{"e#1"}, "contradicting_evidence": []any{},
			},
		},
		"retroactive_mappings": []any{},
		"subsume_proposals":    []any{},
	}}

	a := New(oracle, testAgentCfg(), testThresholds())
	diff, err := a.Analyze(context.Background(), "User: The venue was freezing and I couldn't think", "INT_002", snap)
	require.NoError(t, err)

	require.Len(t, diff.NewPropositions, 1)
	np := diff.NewPropositions[0]
	assert.Equal(t, "venue temperature", np.Factor)
	assert.InDelta(t, 0.8, np.Confidence, 1e-9)
	assert.Equal(t, models.StatusExploring, np.ProvisionalStatus)
}

// TestAnalyze_PruneAfterStaleInterviews mirrors scenario D.
func TestAnalyze_PruneAfterStaleInterviews(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1"},
		Propositions: []models.Proposition{
			{
				ID: "P009", Status: models.StatusExploring, Confidence: 0.1,
				SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet("E002", "E003", "E004", "E005", "E006", "E007", "E008", "E009", "E010"),
				InterviewsWithoutNewEvidence: 3,
			},
		},
	}

	oracle := stubOracle{response: map[string]any{
		"evidence":              []any{},
		"mappings":              []any{},
		"new_propositions":      []any{},
		"retroactive_mappings":  []any{},
		"subsume_proposals":     []any{},
	}}

	a := New(oracle, testAgentCfg(), testThresholds())
	diff, err := a.Analyze(context.Background(), "irrelevant transcript", "INT_005", snap)
	require.NoError(t, err)

	require.Len(t, diff.PruneProposals, 1)
	assert.Equal(t, "P009", diff.PruneProposals[0].PropositionID)
	require.Len(t, diff.StatusTransitions, 1)
	assert.Equal(t, models.StatusWeak, diff.StatusTransitions[0].NewStatus)
}

// sequenceStubOracle replays responses in call order, so a test can give
// the Analyst's main analysis call and its separate merge-text-authoring
// call distinct shapes.
type sequenceStubOracle struct {
	responses []map[string]any
	calls     int
}

func (s *sequenceStubOracle) ChatJSON(_ context.Context, _ llmoracle.ChatRequest) (map[string]any, error) {
	i := s.calls
	s.calls++
	return s.responses[i], nil
}

func (s *sequenceStubOracle) ChatText(context.Context, llmoracle.ChatRequest) (string, error) {
	return "", nil
}

// TestAnalyze_MergeAuthorsUnifiedTextViaSeparateOracleCall mirrors spec.md's
// merge rule (§4.4 step 6): once two live propositions' supporting evidence
// overlap crosses merge_overlap_threshold, the unified proposition's text
// must come from the Analyst's own authoring, not a copy of either input.
func TestAnalyze_MergeAuthorsUnifiedTextViaSeparateOracleCall(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1"},
		Propositions: []models.Proposition{
			{ID: "P001", Factor: "ambient discomfort", Mechanism: "distraction", Outcome: "reduced focus", Status: models.StatusExploring,
				SupportingEvidence: models.NewEvidenceSet("E001", "E002", "E003"), ContradictingEvidence: models.NewEvidenceSet()},
			{ID: "P002", Factor: "cold venue", Mechanism: "physical discomfort", Outcome: "reduced focus", Status: models.StatusExploring,
				SupportingEvidence: models.NewEvidenceSet("E001", "E002", "E003", "E004"), ContradictingEvidence: models.NewEvidenceSet()},
		},
	}

	oracle := &sequenceStubOracle{responses: []map[string]any{
		{ // main analysis call: no new evidence, just trigger recomputation
			"evidence": []any{}, "mappings": []any{}, "new_propositions": []any{},
			"retroactive_mappings": []any{}, "subsume_proposals": []any{},
		},
		{ // merge-text authoring call
			"factor": "environmental discomfort", "mechanism": "distraction and physical discomfort", "outcome": "reduced focus",
		},
	}}

	a := New(oracle, testAgentCfg(), testThresholds())
	diff, err := a.Analyze(context.Background(), "irrelevant transcript", "INT_010", snap)
	require.NoError(t, err)

	require.Len(t, diff.MergeProposals, 1)
	mp := diff.MergeProposals[0]
	assert.ElementsMatch(t, []string{"P001", "P002"}, mp.FromIDs)
	assert.Equal(t, "environmental discomfort", mp.Factor)
	assert.Equal(t, "distraction and physical discomfort", mp.Mechanism)
	assert.Equal(t, "reduced focus", mp.Outcome)
	assert.Equal(t, 2, oracle.calls)
}

func TestAnalyze_RejectsUnknownMappingRelation(t *testing.T) {
	snap := models.Snapshot{Project: models.Project{ID: "proj1"}}
	oracle := stubOracle{response: map[string]any{
		"evidence": []any{},
		"mappings": []any{
			map[string]any{"evidence_id": "e#1", "proposition_id": "P001", "relation": "maybe"},
		},
		"new_propositions":     []any{},
		"retroactive_mappings": []any{},
		"subsume_proposals":    []any{},
	}}

	a := New(oracle, testAgentCfg(), testThresholds())
	_, err := a.Analyze(context.Background(), "x", "INT_001", snap)
	assert.Error(t, err)
}
