package designer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shipaleks/eidetic/pkg/models"
)

func TestAssignInstruction(t *testing.T) {
	cases := []struct {
		name string
		p    models.Proposition
		want models.SectionInstruction
	}{
		{
			name: "untested with little support explores",
			p:    models.Proposition{Status: models.StatusUntested, SupportingEvidence: models.NewEvidenceSet("E1")},
			want: models.InstructionExplore,
		},
		{
			name: "saturated stays saturated",
			p:    models.Proposition{Status: models.StatusSaturated, Confidence: 0.9},
			want: models.InstructionSaturated,
		},
		{
			name: "mid confidence verifies",
			p:    models.Proposition{Status: models.StatusExploring, Confidence: 0.5, SupportingEvidence: models.NewEvidenceSet("E1", "E2")},
			want: models.InstructionVerify,
		},
		{
			name: "high confidence with contradiction challenges",
			p: models.Proposition{
				Status: models.StatusConfirmed, Confidence: 0.85,
				SupportingEvidence: models.NewEvidenceSet("E1", "E2", "E3"),
				ContradictingEvidence: models.NewEvidenceSet("E4"),
			},
			want: models.InstructionChallenge,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, assignInstruction(tc.p))
		})
	}
}

func TestSelectPropositions_CapsAndProtectsChallengeExplore(t *testing.T) {
	live := []models.Proposition{
		{ID: "P1", Status: models.StatusSaturated, Confidence: 0.9},
		{ID: "P2", Status: models.StatusSaturated, Confidence: 0.85},
		{ID: "P3", Status: models.StatusExploring, Confidence: 0.5, SupportingEvidence: models.NewEvidenceSet("E1", "E2")},
		{ID: "P4", Status: models.StatusConfirmed, Confidence: 0.9, SupportingEvidence: models.NewEvidenceSet("E1", "E2", "E3"), ContradictingEvidence: models.NewEvidenceSet("E4")},
		{ID: "P5", Status: models.StatusUntested, SupportingEvidence: models.NewEvidenceSet()},
	}

	selected := selectPropositions(live, 3)
	require := assert.New(t)
	require.Len(selected, 3)

	ids := make(map[string]bool)
	for _, p := range selected {
		ids[p.ID] = true
	}
	// The two SATURATED propositions must be dropped before any CHALLENGE/EXPLORE one.
	require.True(ids["P4"], "CHALLENGE proposition must survive the cap")
	require.True(ids["P5"], "EXPLORE proposition must survive the cap")
}
