package reconciler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipaleks/eidetic/pkg/models"
)

func baseSnapshot() models.Snapshot {
	return models.Snapshot{
		Project: models.Project{ID: "proj1", NextEvidenceSeq: 1, NextPropositionSeq: 1, NextInterviewSeq: 1},
	}
}

func TestReconcile_AssignsMonotonicEvidenceAndPropositionIDs(t *testing.T) {
	snap := baseSnapshot()
	diff := models.AnalysisDiff{
		ExtractedEvidence: []models.EvidenceProposal{
			{SymbolicID: "e#1", Quote: "q1", Factor: "f", Outcome: "o"},
			{SymbolicID: "e#2", Quote: "q2", Factor: "f", Outcome: "o"},
		},
		NewPropositions: []models.PropositionProposal{
			{
				SymbolicID: "p#1", Factor: "f", Mechanism: "m", Outcome: "o",
				ProvisionalStatus: models.StatusExploring, Confidence: 0.5,
				SupportingEvidence: []string{"e#1", "e#2"},
			},
		},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_001", ConversationID: "conv-1",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, out.NewEvidence, 2)
	assert.Equal(t, "E001", out.NewEvidence[0].ID)
	assert.Equal(t, "E002", out.NewEvidence[1].ID)

	require.Len(t, out.NewPropositions, 1)
	assert.Equal(t, "P001", out.NewPropositions[0].ID)
	assert.True(t, out.NewPropositions[0].SupportingEvidence.Has("E001"))
	assert.True(t, out.NewPropositions[0].SupportingEvidence.Has("E002"))

	require.NotNil(t, out.NewInterview)
	assert.Equal(t, models.InterviewAnalyzed, out.NewInterview.Status)
}

func TestReconcile_RejectsInvalidDiffButKeepsEvidence(t *testing.T) {
	snap := baseSnapshot()
	diff := models.AnalysisDiff{
		ExtractedEvidence: []models.EvidenceProposal{
			{SymbolicID: "e#1", Quote: "q1", Factor: "f", Outcome: "o"},
		},
		ConfidenceUpdates: []models.ConfidenceUpdate{
			{PropositionID: "P999", Confidence: 0.5}, // references a proposition that doesn't exist
		},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_001", ConversationID: "conv-1",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDiff))

	require.Len(t, out.NewEvidence, 1)
	assert.Equal(t, "E001", out.NewEvidence[0].ID)
	assert.Empty(t, out.NewPropositions)
	assert.NotEmpty(t, out.RejectedDiff)
	require.NotNil(t, out.NewInterview)
	assert.Equal(t, models.InterviewFailed, out.NewInterview.Status)
	assert.NotEmpty(t, out.NewInterview.FailureReason)
}

func TestReconcile_MergeUnifiesEvidenceAndFlipsBothFromPropositions(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1", NextEvidenceSeq: 1, NextPropositionSeq: 10},
		Propositions: []models.Proposition{
			{ID: "P001", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet()},
			{ID: "P002", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E002"), ContradictingEvidence: models.NewEvidenceSet()},
		},
	}
	diff := models.AnalysisDiff{
		MergeProposals: []models.MergeProposal{
			{NewSymbolicID: "merge#1", FromIDs: []string{"P001", "P002"}, Factor: "f", Mechanism: "m", Outcome: "o"},
		},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_003", ConversationID: "conv-3",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, out.NewPropositions, 1)
	merged := out.NewPropositions[0]
	assert.Equal(t, "P010", merged.ID)
	assert.True(t, merged.SupportingEvidence.Has("E001"))
	assert.True(t, merged.SupportingEvidence.Has("E002"))

	byID := map[string]models.PropositionUpdate{}
	for _, u := range out.PropositionUpdates {
		byID[u.PropositionID] = u
	}
	require.Contains(t, byID, "P001")
	require.Contains(t, byID, "P002")
	assert.Equal(t, models.StatusMerged, byID["P001"].Status)
	assert.Equal(t, "P010", byID["P001"].MergedInto)
	assert.Equal(t, models.StatusMerged, byID["P002"].Status)
	assert.Equal(t, "P010", byID["P002"].MergedInto)
}

func TestReconcile_SubsumeFoldsFromIntoIntoAndMarksFromMerged(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1", NextEvidenceSeq: 1, NextPropositionSeq: 1},
		Propositions: []models.Proposition{
			{ID: "P001", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet()},
			{ID: "P002", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E002"), ContradictingEvidence: models.NewEvidenceSet()},
		},
	}
	diff := models.AnalysisDiff{
		SubsumeProposals: []models.SubsumeProposal{{FromID: "P002", IntoID: "P001"}},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_002", ConversationID: "conv-2",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.NoError(t, err)

	byID := map[string]models.PropositionUpdate{}
	for _, u := range out.PropositionUpdates {
		byID[u.PropositionID] = u
	}
	require.Contains(t, byID, "P001")
	assert.True(t, byID["P001"].SupportingEvidence.Has("E001"))
	assert.True(t, byID["P001"].SupportingEvidence.Has("E002"))

	require.Contains(t, byID, "P002")
	assert.Equal(t, models.StatusMerged, byID["P002"].Status)
	assert.Equal(t, "P001", byID["P002"].MergedInto)
}

func TestReconcile_SubsumeChainResolvesTransitively(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1", NextEvidenceSeq: 1, NextPropositionSeq: 1},
		Propositions: []models.Proposition{
			{ID: "P001", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet()},
			{ID: "P002", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E002"), ContradictingEvidence: models.NewEvidenceSet()},
			{ID: "P003", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E003"), ContradictingEvidence: models.NewEvidenceSet()},
		},
	}
	diff := models.AnalysisDiff{
		SubsumeProposals: []models.SubsumeProposal{
			{FromID: "P001", IntoID: "P002"},
			{FromID: "P002", IntoID: "P003"},
		},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_005", ConversationID: "conv-5",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.NoError(t, err)

	byID := map[string]models.PropositionUpdate{}
	for _, u := range out.PropositionUpdates {
		byID[u.PropositionID] = u
	}

	require.Contains(t, byID, "P001")
	assert.Equal(t, models.StatusMerged, byID["P001"].Status)
	assert.Equal(t, "P003", byID["P001"].MergedInto, "P001 must resolve past the intermediate P002 to the live terminal P003")

	require.Contains(t, byID, "P002")
	assert.Equal(t, models.StatusMerged, byID["P002"].Status)
	assert.Equal(t, "P003", byID["P002"].MergedInto)
}

func TestReconcile_SubsumeAppliesSingleInterviewPenaltyWhenEvidenceSharesOneInterview(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1", NextEvidenceSeq: 1, NextPropositionSeq: 1},
		Evidence: []models.Evidence{
			{ID: "E001", InterviewID: "INT_001"},
			{ID: "E002", InterviewID: "INT_001"},
		},
		Propositions: []models.Proposition{
			{ID: "P001", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet()},
			{ID: "P002", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E002"), ContradictingEvidence: models.NewEvidenceSet()},
		},
	}
	diff := models.AnalysisDiff{
		SubsumeProposals: []models.SubsumeProposal{{FromID: "P002", IntoID: "P001"}},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_009", ConversationID: "conv-9",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.NoError(t, err)

	byID := map[string]models.PropositionUpdate{}
	for _, u := range out.PropositionUpdates {
		byID[u.PropositionID] = u
	}
	require.Contains(t, byID, "P001")
	assert.InDelta(t, 0.8, byID["P001"].Confidence, 1e-9, "all unioned evidence traces to INT_001, so the single-interview penalty must apply")
}

func TestReconcile_ConfidenceUpdatePersistsStaleCounter(t *testing.T) {
	snap := models.Snapshot{
		Project: models.Project{ID: "proj1", NextEvidenceSeq: 1, NextPropositionSeq: 1},
		Evidence: []models.Evidence{
			{ID: "E001", InterviewID: "INT_001"},
		},
		Propositions: []models.Proposition{
			{ID: "P001", Status: models.StatusExploring, SupportingEvidence: models.NewEvidenceSet("E001"), ContradictingEvidence: models.NewEvidenceSet()},
		},
	}
	diff := models.AnalysisDiff{
		ConfidenceUpdates: []models.ConfidenceUpdate{
			{PropositionID: "P001", SupportingEvidence: []string{"E001"}, Confidence: 0.5, InterviewsWithoutNewEvidence: 2},
		},
	}

	out, err := Reconcile(Input{
		Snapshot: snap, Diff: diff, InterviewID: "INT_004", ConversationID: "conv-4",
		Transcript: "t", ReceivedAt: time.Now(), AnalyzedAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, out.PropositionUpdates, 1)
	u := out.PropositionUpdates[0]
	assert.Equal(t, "P001", u.PropositionID)
	assert.Equal(t, 2, u.InterviewsWithoutNewEvidence)
	assert.Equal(t, "INT_004", u.LastUpdatedInterview)
}
