// Package pipeline is the Pipeline (spec.md §4.6): it owns the per-project
// lock, the Analyst → Reconciler → Designer → Publish sequence, and the
// error-kind policy table in spec.md §7. Nothing here ever blocks another
// project's ingestion (spec.md §5: "serializes ingestions within a
// project... may run many ingestions concurrently across projects").
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/shipaleks/eidetic/pkg/adapter"
	"github.com/shipaleks/eidetic/pkg/analyst"
	"github.com/shipaleks/eidetic/pkg/config"
	"github.com/shipaleks/eidetic/pkg/designer"
	"github.com/shipaleks/eidetic/pkg/events"
	"github.com/shipaleks/eidetic/pkg/llmoracle"
	"github.com/shipaleks/eidetic/pkg/models"
	"github.com/shipaleks/eidetic/pkg/reconciler"
	"github.com/shipaleks/eidetic/pkg/store"
)

// ProjectStore is the subset of pkg/store.Store the Pipeline depends on, so
// tests can substitute an in-memory fake instead of a live database.
type ProjectStore interface {
	Load(ctx context.Context, projectID string) (models.Snapshot, error)
	Commit(ctx context.Context, projectID string, diff models.StoreDiff) error
	ProjectByAgentID(ctx context.Context, agentID string) (models.Project, error)
}

// Publisher is the subset of pkg/adapter.Adapter the Pipeline depends on.
type Publisher interface {
	PublishScript(ctx context.Context, agentID, promptText string) error
}

// Pipeline wires the Analyst, Reconciler, Designer, and External Adapter
// around one Store, serializing ingestions per project.
type Pipeline struct {
	store      ProjectStore
	analyst    *analyst.Analyst
	designer   *designer.Designer
	publisher  Publisher
	bus        *events.Bus
	thresholds config.ThresholdConfig

	locks sync.Map // project id -> *sync.Mutex
	wg    sync.WaitGroup
	now   func() time.Time
}

// New builds a Pipeline. now defaults to time.Now; tests may override it.
func New(st ProjectStore, an *analyst.Analyst, des *designer.Designer, pub Publisher, bus *events.Bus, thresholds config.ThresholdConfig) *Pipeline {
	return &Pipeline{store: st, analyst: an, designer: des, publisher: pub, bus: bus, thresholds: thresholds, now: time.Now}
}

func (p *Pipeline) lockFor(projectID string) *sync.Mutex {
	l, _ := p.locks.LoadOrStore(projectID, &sync.Mutex{})
	return l.(*sync.Mutex)
}

// Dispatch enqueues a transcript for asynchronous processing and returns
// immediately: "the adapter accepts, validates, enqueues, and returns
// immediately; the Pipeline processes asynchronously" (spec.md §6). It runs
// Ingest on a detached goroutine rather than the request's context, since
// the multi-stage Analyst/Reconciler/Designer/Publish sequence must keep
// running after the HTTP response has been sent. Serialization within a
// project is unaffected — a Dispatch for a project already being ingested
// simply waits its turn on that project's lockFor mutex.
func (p *Pipeline) Dispatch(agentID, conversationID, transcript, language string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if err := p.Ingest(context.Background(), agentID, conversationID, transcript, language); err != nil {
			slog.Error("pipeline: async ingest failed", "agent_id", agentID, "conversation_id", conversationID, "error", err)
		}
	}()
}

// Wait blocks until every dispatched ingestion has completed. Called during
// graceful shutdown so the process doesn't exit mid-ingestion.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

// Ingest runs one transcript through the full pipeline (spec.md §4.6).
// Errors returned wrap ErrUnknownProject or ErrAnalysisFailed from errors.go,
// or a store error from loading or committing the snapshot; callers
// (pkg/api) map them to the HTTP response spec.md §7 implies, but the
// pipeline itself never aborts the process — every failure mode here
// records state and returns, leaving the service ready for the next webhook.
func (p *Pipeline) Ingest(ctx context.Context, agentID, conversationID, transcript, language string) error {
	project, err := p.store.ProjectByAgentID(ctx, agentID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownProject, err)
	}

	// Idempotency: a duplicate conversation_id is accepted silently rather
	// than re-analyzed (spec.md §4.6 step 1, §7 DuplicateWebhook). It is
	// checked before the lock is taken, and again under the lock, since a
	// delivery of the same conversation may commit while this one waits.
	pre, err := p.store.Load(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("pipeline: load snapshot: %w", err)
	}
	for _, iv := range pre.Interviews {
		if iv.ConversationID == conversationID {
			slog.Info("pipeline: duplicate conversation_id, skipping", "project_id", project.ID, "conversation_id", conversationID)
			return nil
		}
	}

	mu := p.lockFor(project.ID)
	mu.Lock()
	defer mu.Unlock()

	snap, err := p.store.Load(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("pipeline: load snapshot: %w", err)
	}

	for _, iv := range snap.Interviews {
		if iv.ConversationID == conversationID {
			slog.Info("pipeline: duplicate conversation_id, skipping", "project_id", project.ID, "conversation_id", conversationID)
			return nil
		}
	}

	interviewID := fmt.Sprintf("INT_%03d", snap.Project.NextInterviewSeq)
	receivedAt := p.now()

	diff, analyzeErr := p.analyst.Analyze(ctx, transcript, interviewID, snap)
	if analyzeErr != nil {
		return p.recordAnalysisFailure(ctx, project.ID, interviewID, conversationID, transcript, language, receivedAt, analyzeErr)
	}

	storeDiff, reconcileErr := reconciler.Reconcile(reconciler.Input{
		Snapshot: snap, Diff: diff, InterviewID: interviewID, ConversationID: conversationID,
		Transcript: transcript, Language: language, ReceivedAt: receivedAt, AnalyzedAt: p.now(),
	})

	if err := p.store.Commit(ctx, project.ID, storeDiff); err != nil {
		return fmt.Errorf("pipeline: commit analysis: %w", err)
	}
	p.publishAnalysisEvents(project.ID, storeDiff)

	if reconcileErr != nil {
		p.bus.Publish(events.Event{Type: events.TypeAnalysisFailed, ProjectID: project.ID,
			Payload: events.AnalysisFailedPayload{InterviewID: interviewID, Reason: storeDiff.RejectedDiff}})
		// InvalidDiff still committed valid evidence; per spec.md §4.6 the
		// pipeline continues to script regeneration rather than aborting.
	}

	p.regenerateAndPublish(ctx, project.ID, interviewID, diff.Metrics)
	return nil
}

func (p *Pipeline) recordAnalysisFailure(ctx context.Context, projectID, interviewID, conversationID, transcript, language string, receivedAt time.Time, cause error) error {
	reason := cause.Error()
	failed := &models.Interview{
		ID: interviewID, ProjectID: projectID, ConversationID: conversationID, Transcript: transcript,
		Language: language, Status: models.InterviewFailed, ReceivedAt: receivedAt, FailureReason: reason,
	}
	if err := p.store.Commit(ctx, projectID, models.StoreDiff{NewInterview: failed}); err != nil {
		slog.Error("pipeline: failed to record analysis failure", "project_id", projectID, "error", err)
	}
	p.bus.Publish(events.Event{Type: events.TypeAnalysisFailed, ProjectID: projectID,
		Payload: events.AnalysisFailedPayload{InterviewID: interviewID, Reason: reason}})

	var unavailable *llmoracle.LLMUnavailableError
	if errors.As(cause, &unavailable) {
		return fmt.Errorf("%w: %v", ErrAnalysisFailed, cause)
	}
	var formatErr *llmoracle.LLMFormatError
	if errors.As(cause, &formatErr) {
		return fmt.Errorf("%w: %v", ErrAnalysisFailed, cause)
	}
	return fmt.Errorf("%w: %v", ErrAnalysisFailed, cause)
}

// publishAnalysisEvents emits one event per new evidence item, new
// proposition, proposition update, and merge (spec.md §4.6 step 5), in the
// order the Reconciler applied them.
func (p *Pipeline) publishAnalysisEvents(projectID string, diff models.StoreDiff) {
	for _, e := range diff.NewEvidence {
		p.bus.Publish(events.Event{Type: events.TypeNewEvidence, ProjectID: projectID, Payload: events.NewEvidencePayload{Evidence: e}})
	}
	for _, np := range diff.NewPropositions {
		p.bus.Publish(events.Event{Type: events.TypeNewProposition, ProjectID: projectID, Payload: events.NewPropositionPayload{Proposition: np}})
	}
	for _, u := range diff.PropositionUpdates {
		if u.Status == models.StatusMerged {
			p.bus.Publish(events.Event{Type: events.TypePropositionMerged, ProjectID: projectID,
				Payload: events.PropositionMergedPayload{FromID: u.PropositionID, IntoID: u.MergedInto}})
			continue
		}
		if u.Status == models.StatusWeak {
			p.bus.Publish(events.Event{Type: events.TypePropositionPruned, ProjectID: projectID,
				Payload: events.PropositionPrunedPayload{PropositionID: u.PropositionID}})
		}
		p.bus.Publish(events.Event{Type: events.TypePropositionUpdated, ProjectID: projectID,
			Payload: events.PropositionUpdatedPayload{PropositionID: u.PropositionID, Confidence: u.Confidence, Status: u.Status}})
	}
}

// regenerateAndPublish builds script v(n+1) and publishes it. Failures at
// either stage are logged and surfaced as events; the previous script stays
// active and a future successful ingestion will try again (spec.md §4.6
// steps 6-7, §7 policies for ScriptGenerationFailed/PublishError).
func (p *Pipeline) regenerateAndPublish(ctx context.Context, projectID, interviewID string, metrics models.AnalysisMetrics) {
	snap, err := p.store.Load(ctx, projectID)
	if err != nil {
		slog.Error("pipeline: reload snapshot before script regeneration", "project_id", projectID, "error", err)
		return
	}
	var previous models.InterviewScript
	for _, sc := range snap.Scripts {
		if sc.Version == snap.Project.CurrentScriptVersion {
			previous = sc
		}
	}

	script, err := p.designer.UpdateScript(ctx, snap, previous, metrics, interviewID)
	if err != nil {
		slog.Error("pipeline: script generation failed, keeping previous version active", "project_id", projectID, "error", err)
		return
	}

	if err := p.store.Commit(ctx, projectID, models.StoreDiff{NewScript: &script}); err != nil {
		slog.Error("pipeline: commit new script", "project_id", projectID, "error", err)
		return
	}
	p.bus.Publish(events.Event{Type: events.TypeScriptUpdated, ProjectID: projectID,
		Payload: events.ScriptUpdatedPayload{Version: script.Version, Mode: script.Mode}})

	prompt, err := p.designer.BuildInterviewerPrompt(script)
	if err != nil {
		slog.Error("pipeline: build interviewer prompt", "project_id", projectID, "error", err)
		return
	}
	if err := p.publisher.PublishScript(ctx, snap.Project.VoiceAgentID, prompt); err != nil {
		slog.Error("pipeline: publish_script failed, previous script remains active", "project_id", projectID, "error", err)
		p.bus.Publish(events.Event{Type: events.TypePublishFailed, ProjectID: projectID,
			Payload: events.PublishFailedPayload{ScriptVersion: script.Version, Reason: err.Error()}})
	}
}
