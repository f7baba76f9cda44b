package designer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/models"
)

// TestBuildInterviewerPrompt_SurfacesMaxDurationAdvisory mirrors spec.md §6:
// max_interview_duration_minutes is advisory and must be surfaced in the
// rendered script prompt, never used to gate or cut off the interview.
func TestBuildInterviewerPrompt_SurfacesMaxDurationAdvisory(t *testing.T) {
	thresholds := config.ThresholdConfig{MaxInterviewMinutes: 25}
	d := New(nil, &config.AgentConfig{}, thresholds)

	script := models.InterviewScript{
		ResearchQuestion: "What drives retention?",
		OpeningQuestion:  "Tell me about your first week.",
		ClosingQuestion:  "Anything we didn't cover?",
		Wildcard:         "What surprised you?",
		Sections: []models.ScriptSection{
			{PropositionID: "P001", Priority: models.PriorityHigh, Instruction: models.InstructionExplore, MainQuestion: "Why did you stay?", Probes: []string{"Go deeper"}},
		},
	}

	prompt, err := d.BuildInterviewerPrompt(script)
	require.NoError(t, err)
	assert.Contains(t, prompt, "around 25 minutes")
	assert.True(t, strings.Contains(prompt, "advisory"))
}
