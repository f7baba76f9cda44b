package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shipaleks/eidetic/pkg/models"
)

// ProjectCreator is the subset of ProjectStore needed to materialize a new
// project; split out so CreateProject can be tested without a full Load/Commit fake.
type ProjectCreator interface {
	CreateProject(ctx context.Context, p models.Project) error
	Commit(ctx context.Context, projectID string, diff models.StoreDiff) error
}

// CreateProject mints a project id, asks the Designer for the v1 script and
// its seed propositions (spec.md §4.3 GenerateInitial), persists both, and
// publishes the opening script to the voice agent before returning.
func (p *Pipeline) CreateProject(ctx context.Context, researchQuestion, voiceAgentID string, seedAngles []string) (models.Project, error) {
	creator, ok := p.store.(ProjectCreator)
	if !ok {
		return models.Project{}, fmt.Errorf("pipeline: store does not support project creation")
	}

	project := models.Project{
		ID:               "proj_" + uuid.New().String(),
		ResearchQuestion: researchQuestion,
		VoiceAgentID:     voiceAgentID,
		CreatedAt:        p.now(),
	}

	propositions, script, err := p.designer.GenerateInitial(ctx, project.ID, researchQuestion, seedAngles)
	if err != nil {
		return models.Project{}, fmt.Errorf("pipeline: generate initial script: %w", err)
	}
	resolveInitialIDs(propositions, &script)

	if err := creator.CreateProject(ctx, project); err != nil {
		return models.Project{}, fmt.Errorf("pipeline: create project: %w", err)
	}

	script.Version = 1
	if err := creator.Commit(ctx, project.ID, models.StoreDiff{NewPropositions: propositions, NewScript: &script}); err != nil {
		return models.Project{}, fmt.Errorf("pipeline: commit initial propositions and script: %w", err)
	}

	prompt, err := p.designer.BuildInterviewerPrompt(script)
	if err != nil {
		return project, fmt.Errorf("pipeline: build interviewer prompt: %w", err)
	}
	if err := p.publisher.PublishScript(ctx, voiceAgentID, prompt); err != nil {
		return project, fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}

	return project, nil
}

// resolveInitialIDs replaces the Designer's symbolic "p#N" ids with real
// P%03d ids, starting from 1 since this is a brand-new project — the same
// id format the Reconciler assigns for every later proposition.
func resolveInitialIDs(propositions []models.Proposition, script *models.InterviewScript) {
	symbolicToReal := make(map[string]string, len(propositions))
	for i := range propositions {
		real := fmt.Sprintf("P%03d", i+1)
		symbolicToReal[propositions[i].ID] = real
		propositions[i].ID = real
	}
	for i := range script.Sections {
		if real, ok := symbolicToReal[script.Sections[i].PropositionID]; ok {
			script.Sections[i].PropositionID = real
		}
	}
}
