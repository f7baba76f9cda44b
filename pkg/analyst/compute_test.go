package analyst

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shipaleks/eidetic/pkg/models"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		name                                           string
		cur                                            models.PropositionStatus
		confidence                                     float64
		support, contradict, distinctInterviews, counter int
		want                                            models.PropositionStatus
	}{
		{"untested gains evidence becomes exploring", models.StatusUntested, 0.8, 1, 0, 1, 0, models.StatusExploring},
		{"exploring confirms with two interviews", models.StatusExploring, 0.75, 2, 0, 2, 0, models.StatusConfirmed},
		{"exploring stays exploring with only one interview", models.StatusExploring, 0.9, 3, 0, 1, 0, models.StatusExploring},
		{"confirmed challenged by contradiction", models.StatusConfirmed, 0.6, 2, 1, 2, 0, models.StatusChallenged},
		{"confirmed saturates after two idle interviews", models.StatusConfirmed, 0.85, 3, 0, 2, 2, models.StatusSaturated},
		{"low confidence long idle prunes to weak", models.StatusExploring, 0.1, 1, 0, 1, 3, models.StatusWeak},
		{"merged is terminal", models.StatusMerged, 0.9, 5, 0, 3, 5, models.StatusMerged},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := nextStatus(tc.cur, tc.confidence, tc.support, tc.contradict, tc.distinctInterviews, tc.counter)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestJaccard(t *testing.T) {
	a := models.NewEvidenceSet("E1", "E2", "E3")
	b := models.NewEvidenceSet("E2", "E3", "E4")
	assert.InDelta(t, 0.5, jaccard(a, b), 1e-9)
	assert.Equal(t, float64(0), jaccard(models.NewEvidenceSet(), models.NewEvidenceSet()))
}

func TestDetectMergeCandidates_RespectsThresholdAndSubsumed(t *testing.T) {
	states := []*propState{
		{id: "P1", support: models.NewEvidenceSet("E1", "E2", "E3")},
		{id: "P2", support: models.NewEvidenceSet("E1", "E2", "E3", "E4")}, // jaccard 3/4 = 0.75
		{id: "P3", support: models.NewEvidenceSet("E9")},
	}
	candidates := detectMergeCandidates(states, 0.6, map[string]struct{}{})
	assert := assert.New(t)
	assert.Len(candidates, 1)
	assert.ElementsMatch([]string{"P1", "P2"}, []string{candidates[0].a.id, candidates[0].b.id})

	none := detectMergeCandidates(states, 0.6, map[string]struct{}{"P1": {}})
	assert.Empty(none)
}
