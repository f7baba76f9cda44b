package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipaleks/eidetic/pkg/models"
	"github.com/shipaleks/eidetic/pkg/store"
	"github.com/shipaleks/eidetic/test/storetest"
)

func seedProject(t *testing.T, ctx context.Context, st *store.Store, id string) {
	t.Helper()
	err := st.CreateProject(ctx, models.Project{
		ID:               id,
		ResearchQuestion: "What is your experience with this hackathon?",
		CreatedAt:        time.Now(),
		VoiceAgentID:     "agent-1",
	})
	require.NoError(t, err)
}

func TestLoad_EmptyProject(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-1")

	snap, err := st.Load(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, "proj-1", snap.Project.ID)
	assert.Empty(t, snap.Evidence)
	assert.Empty(t, snap.Propositions)
	assert.Equal(t, 0, snap.Project.CurrentScriptVersion)
}

func TestLoad_UnknownProject(t *testing.T) {
	st := storetest.NewTestStore(t)
	_, err := st.Load(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestCommit_AppendsEvidenceAndProposition(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-2")

	ev := models.Evidence{
		ID: "E001", InterviewID: "INT_001", Quote: "Time pressure helped us focus",
		Interpretation: "Time pressure improved focus", Factor: "time pressure",
		Mechanism: "urgency", Outcome: "focus", Tags: []string{"time", "focus"},
		Language: "en", Timestamp: time.Now(),
	}
	prop := models.Proposition{
		ID: "P001", Factor: "time pressure", Mechanism: "urgency", Outcome: "focus",
		Confidence: 0.8, Status: models.StatusExploring,
		SupportingEvidence:    models.NewEvidenceSet("E001"),
		ContradictingEvidence: models.NewEvidenceSet(),
		FirstSeenInterview:    "INT_001", LastUpdatedInterview: "INT_001",
	}
	iv := models.Interview{
		ID: "INT_001", ProjectID: "proj-2", ConversationID: "conv-abc",
		Transcript: "User: Time pressure helped us focus", Language: "en",
		Status: models.InterviewAnalyzed, ReceivedAt: time.Now(),
	}

	err := st.Commit(ctx, "proj-2", models.StoreDiff{
		NewEvidence:     []models.Evidence{ev},
		NewPropositions: []models.Proposition{prop},
		NewInterview:    &iv,
	})
	require.NoError(t, err)

	snap, err := st.Load(ctx, "proj-2")
	require.NoError(t, err)
	require.Len(t, snap.Evidence, 1)
	require.Len(t, snap.Propositions, 1)
	require.Len(t, snap.Interviews, 1)
	assert.Equal(t, "E001", snap.Evidence[0].ID)
	assert.True(t, snap.Propositions[0].SupportingEvidence.Has("E001"))
	assert.Equal(t, 0.8, snap.Propositions[0].Confidence)
}

func TestCommit_DuplicateConversationIsRejected(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-3")

	iv := models.Interview{
		ID: "INT_001", ProjectID: "proj-3", ConversationID: "conv-dup",
		Transcript: "hello", Language: "en", Status: models.InterviewAnalyzed, ReceivedAt: time.Now(),
	}
	require.NoError(t, st.Commit(ctx, "proj-3", models.StoreDiff{NewInterview: &iv}))

	iv2 := iv
	iv2.ID = "INT_002"
	err := st.Commit(ctx, "proj-3", models.StoreDiff{NewInterview: &iv2})
	assert.ErrorIs(t, err, store.ErrDuplicateConversation)
}

func TestCommit_ScriptVersionMustBeSequential(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-4")

	badScript := models.InterviewScript{ProjectID: "proj-4", Version: 2, ResearchQuestion: "q"}
	err := st.Commit(ctx, "proj-4", models.StoreDiff{NewScript: &badScript})
	assert.ErrorIs(t, err, store.ErrScriptVersionConflict)

	goodScript := models.InterviewScript{ProjectID: "proj-4", Version: 1, ResearchQuestion: "q"}
	require.NoError(t, st.Commit(ctx, "proj-4", models.StoreDiff{NewScript: &goodScript}))

	snap, err := st.Load(ctx, "proj-4")
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Project.CurrentScriptVersion)
	require.Len(t, snap.Scripts, 1)
}

func TestPropositionUpdate_AppliesInPlace(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-5")

	prop := models.Proposition{
		ID: "P001", Factor: "f", Mechanism: "m", Outcome: "o", Confidence: 0,
		Status: models.StatusUntested, SupportingEvidence: models.NewEvidenceSet(),
		ContradictingEvidence: models.NewEvidenceSet(), FirstSeenInterview: "INT_001",
		LastUpdatedInterview: "INT_001",
	}
	require.NoError(t, st.Commit(ctx, "proj-5", models.StoreDiff{NewPropositions: []models.Proposition{prop}}))

	update := models.PropositionUpdate{
		PropositionID: "P001", SupportingEvidence: models.NewEvidenceSet("E001"),
		ContradictingEvidence: models.NewEvidenceSet(), Confidence: 0.8,
		Status: models.StatusExploring, InterviewsWithoutNewEvidence: 0,
	}
	require.NoError(t, st.Commit(ctx, "proj-5", models.StoreDiff{PropositionUpdates: []models.PropositionUpdate{update}}))

	snap, err := st.Load(ctx, "proj-5")
	require.NoError(t, err)
	require.Len(t, snap.Propositions, 1)
	assert.Equal(t, models.StatusExploring, snap.Propositions[0].Status)
	assert.Equal(t, 0.8, snap.Propositions[0].Confidence)
}

func TestCommit_AdvancesIDCountersByCommittedCount(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-6")

	ev1 := models.Evidence{ID: "E001", InterviewID: "INT_001", Quote: "q1", Interpretation: "i1",
		Factor: "f", Mechanism: "m", Outcome: "o", Tags: []string{"a"}, Language: "en", Timestamp: time.Now()}
	ev2 := models.Evidence{ID: "E002", InterviewID: "INT_001", Quote: "q2", Interpretation: "i2",
		Factor: "f", Mechanism: "m", Outcome: "o", Tags: []string{"a"}, Language: "en", Timestamp: time.Now()}
	prop := models.Proposition{ID: "P001", Factor: "f", Mechanism: "m", Outcome: "o",
		Status: models.StatusUntested, SupportingEvidence: models.NewEvidenceSet(), ContradictingEvidence: models.NewEvidenceSet()}

	require.NoError(t, st.Commit(ctx, "proj-6", models.StoreDiff{
		NewEvidence:     []models.Evidence{ev1, ev2},
		NewPropositions: []models.Proposition{prop},
	}))

	snap, err := st.Load(ctx, "proj-6")
	require.NoError(t, err)
	assert.Equal(t, 3, snap.Project.NextEvidenceSeq) // started at 1, 2 committed
	assert.Equal(t, 2, snap.Project.NextPropositionSeq)
}

func TestDeleteProject_RemovesOwnedData(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-7")

	ev := models.Evidence{ID: "E001", InterviewID: "INT_001", Quote: "q", Interpretation: "i",
		Factor: "f", Mechanism: "m", Outcome: "o", Tags: []string{"a", "b"}, Language: "en", Timestamp: time.Now()}
	require.NoError(t, st.Commit(ctx, "proj-7", models.StoreDiff{NewEvidence: []models.Evidence{ev}}))

	require.NoError(t, st.DeleteProject(ctx, "proj-7"))

	_, err := st.Load(ctx, "proj-7")
	assert.ErrorIs(t, err, store.ErrProjectNotFound)
}

func TestListProjects_ReturnsAllCreatedIDs(t *testing.T) {
	st := storetest.NewTestStore(t)
	ctx := context.Background()
	seedProject(t, ctx, st, "proj-8")
	seedProject(t, ctx, st, "proj-9")

	ids, err := st.ListProjects(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"proj-8", "proj-9"}, ids)
}
