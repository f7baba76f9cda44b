package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/shipaleks/eidetic/pkg/models"
)

// Load returns a consistent, point-in-time snapshot of all four of a
// project's sub-stores. spec.md §4.1 requires no tearing between
// collections; a single SERIALIZABLE read-only transaction is how this
// implementation guarantees it.
func (s *Store) Load(ctx context.Context, projectID string) (models.Snapshot, error) {
	var snap models.Snapshot

	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadOnly,
	}, func(tx pgx.Tx) error {
		project, err := loadProject(ctx, tx, projectID)
		if err != nil {
			return err
		}
		snap.Project = project

		if snap.Evidence, err = loadEvidence(ctx, tx, projectID); err != nil {
			return err
		}
		if snap.Propositions, err = loadPropositions(ctx, tx, projectID); err != nil {
			return err
		}
		if snap.Interviews, err = loadInterviews(ctx, tx, projectID); err != nil {
			return err
		}
		if snap.Scripts, err = loadScripts(ctx, tx, projectID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return models.Snapshot{}, err
	}
	return snap, nil
}

// Commit applies a StoreDiff atomically: new evidence and propositions are
// inserted, existing propositions are updated in place, the interview and
// script rows are appended if present, and id/version counters are bumped —
// all inside one read-write transaction. Concurrent Load calls observe
// either the pre- or post-commit snapshot, never a mix.
func (s *Store) Commit(ctx context.Context, projectID string, diff models.StoreDiff) error {
	return pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		project, err := loadProject(ctx, tx, projectID)
		if err != nil {
			return err
		}

		if diff.NewInterview != nil {
			var existing string
			err := tx.QueryRow(ctx,
				`SELECT id FROM interviews WHERE project_id = $1 AND conversation_id = $2`,
				projectID, diff.NewInterview.ConversationID,
			).Scan(&existing)
			if err == nil {
				return ErrDuplicateConversation
			} else if err != pgx.ErrNoRows {
				return fmt.Errorf("store: check duplicate conversation: %w", err)
			}
		}

		for _, e := range diff.NewEvidence {
			if err := insertEvidence(ctx, tx, projectID, e); err != nil {
				return err
			}
		}
		for _, p := range diff.NewPropositions {
			if err := insertProposition(ctx, tx, projectID, p); err != nil {
				return err
			}
		}
		for _, u := range diff.PropositionUpdates {
			if err := applyPropositionUpdate(ctx, tx, projectID, u); err != nil {
				return err
			}
		}
		if diff.NewInterview != nil {
			if err := insertInterview(ctx, tx, projectID, *diff.NewInterview); err != nil {
				return err
			}
		}

		// The Reconciler assigns ids from the Project.Next*Seq counters it read
		// off this same Snapshot (it never calls the Store itself — spec.md §9,
		// "Reconciler is a pure function... testable without a database"), so
		// the Store's job here is only to advance those counters to match what
		// was just assigned, under the same lock that guarded the assignment.
		if len(diff.NewEvidence) > 0 || len(diff.NewPropositions) > 0 || diff.NewInterview != nil {
			if _, err := tx.Exec(ctx, `
				UPDATE projects SET
					next_evidence_seq = next_evidence_seq + $2,
					next_proposition_seq = next_proposition_seq + $3,
					next_interview_seq = next_interview_seq + $4
				WHERE id = $1
			`, projectID, len(diff.NewEvidence), len(diff.NewPropositions), boolToInt(diff.NewInterview != nil)); err != nil {
				return fmt.Errorf("store: advance id counters: %w", err)
			}
		}
		if diff.NewScript != nil {
			if diff.NewScript.Version != project.CurrentScriptVersion+1 {
				return ErrScriptVersionConflict
			}
			if err := insertScript(ctx, tx, projectID, *diff.NewScript); err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`UPDATE projects SET current_script_version = $2 WHERE id = $1`,
				projectID, diff.NewScript.Version,
			); err != nil {
				return fmt.Errorf("store: bump script version: %w", err)
			}
		}

		return nil
	})
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ProjectByAgentID resolves the project owning a voice agent, so the
// Pipeline can locate the project a webhook belongs to from its agent_id
// alone (spec.md §4.8: receive_transcript yields agent_id, not project_id).
func (s *Store) ProjectByAgentID(ctx context.Context, agentID string) (models.Project, error) {
	var p models.Project
	err := s.pool.QueryRow(ctx, `
		SELECT id, research_question, created_at, voice_agent_id, current_script_version,
			next_evidence_seq, next_proposition_seq, next_interview_seq
		FROM projects WHERE voice_agent_id = $1
	`, agentID).Scan(
		&p.ID, &p.ResearchQuestion, &p.CreatedAt, &p.VoiceAgentID, &p.CurrentScriptVersion,
		&p.NextEvidenceSeq, &p.NextPropositionSeq, &p.NextInterviewSeq,
	)
	if err == pgx.ErrNoRows {
		return models.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("store: load project by agent id: %w", err)
	}
	return p, nil
}

// CreateProject inserts a new project row with counters initialized to 1.
func (s *Store) CreateProject(ctx context.Context, p models.Project) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (id, research_question, created_at, voice_agent_id, current_script_version,
			next_evidence_seq, next_proposition_seq, next_interview_seq)
		VALUES ($1, $2, $3, $4, 0, 1, 1, 1)
	`, p.ID, p.ResearchQuestion, p.CreatedAt, p.VoiceAgentID)
	if err != nil {
		return fmt.Errorf("store: create project: %w", err)
	}
	return nil
}

// ListProjects returns every project's id, most recently created first. The
// API's list endpoint then loads each project's full Snapshot to build its
// ProjectSummary.
func (s *Store) ListProjects(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan project id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list projects: %w", err)
	}
	return ids, nil
}

// DeleteProject removes a project and all owned rows (cascading foreign
// keys handle evidence/propositions/interviews/scripts).
func (s *Store) DeleteProject(ctx context.Context, projectID string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("store: delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func loadProject(ctx context.Context, tx pgx.Tx, projectID string) (models.Project, error) {
	var p models.Project
	err := tx.QueryRow(ctx, `
		SELECT id, research_question, created_at, voice_agent_id, current_script_version,
			next_evidence_seq, next_proposition_seq, next_interview_seq
		FROM projects WHERE id = $1
	`, projectID).Scan(
		&p.ID, &p.ResearchQuestion, &p.CreatedAt, &p.VoiceAgentID, &p.CurrentScriptVersion,
		&p.NextEvidenceSeq, &p.NextPropositionSeq, &p.NextInterviewSeq,
	)
	if err == pgx.ErrNoRows {
		return models.Project{}, ErrProjectNotFound
	}
	if err != nil {
		return models.Project{}, fmt.Errorf("store: load project: %w", err)
	}
	return p, nil
}

func loadEvidence(ctx context.Context, tx pgx.Tx, projectID string) ([]models.Evidence, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, interview_id, quote, interpretation, factor, mechanism, outcome, tags, language, ts
		FROM evidence WHERE project_id = $1 ORDER BY id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load evidence: %w", err)
	}
	defer rows.Close()

	var out []models.Evidence
	for rows.Next() {
		var e models.Evidence
		var tags []byte
		if err := rows.Scan(&e.ID, &e.InterviewID, &e.Quote, &e.Interpretation, &e.Factor,
			&e.Mechanism, &e.Outcome, &tags, &e.Language, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("store: scan evidence: %w", err)
		}
		if err := json.Unmarshal(tags, &e.Tags); err != nil {
			return nil, fmt.Errorf("store: decode evidence tags: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func loadPropositions(ctx context.Context, tx pgx.Tx, projectID string) ([]models.Proposition, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, factor, mechanism, outcome, confidence, status, supporting_evidence,
			contradicting_evidence, first_seen_interview, last_updated_interview,
			interviews_without_new_evidence, COALESCE(merged_into, '')
		FROM propositions WHERE project_id = $1 ORDER BY id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load propositions: %w", err)
	}
	defer rows.Close()

	var out []models.Proposition
	for rows.Next() {
		var p models.Proposition
		var status string
		var supp, contra []byte
		if err := rows.Scan(&p.ID, &p.Factor, &p.Mechanism, &p.Outcome, &p.Confidence, &status,
			&supp, &contra, &p.FirstSeenInterview, &p.LastUpdatedInterview,
			&p.InterviewsWithoutNewEvidence, &p.MergedInto); err != nil {
			return nil, fmt.Errorf("store: scan proposition: %w", err)
		}
		p.Status = models.PropositionStatus(status)
		if err := p.SupportingEvidence.UnmarshalJSON(supp); err != nil {
			return nil, fmt.Errorf("store: decode supporting evidence: %w", err)
		}
		if err := p.ContradictingEvidence.UnmarshalJSON(contra); err != nil {
			return nil, fmt.Errorf("store: decode contradicting evidence: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func loadInterviews(ctx context.Context, tx pgx.Tx, projectID string) ([]models.Interview, error) {
	rows, err := tx.Query(ctx, `
		SELECT id, conversation_id, transcript, language, script_version_used, status,
			received_at, analyzed_at, failure_reason
		FROM interviews WHERE project_id = $1 ORDER BY id
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load interviews: %w", err)
	}
	defer rows.Close()

	var out []models.Interview
	for rows.Next() {
		var iv models.Interview
		var status string
		if err := rows.Scan(&iv.ID, &iv.ConversationID, &iv.Transcript, &iv.Language,
			&iv.ScriptVersionUsed, &status, &iv.ReceivedAt, &iv.AnalyzedAt, &iv.FailureReason); err != nil {
			return nil, fmt.Errorf("store: scan interview: %w", err)
		}
		iv.Status = models.InterviewStatus(status)
		out = append(out, iv)
	}
	return out, rows.Err()
}

func loadScripts(ctx context.Context, tx pgx.Tx, projectID string) ([]models.InterviewScript, error) {
	rows, err := tx.Query(ctx, `
		SELECT version, generated_after_interview, research_question, opening_question, sections,
			closing_question, wildcard, mode, convergence_score, novelty_rate, changes_summary, published_at
		FROM interview_scripts WHERE project_id = $1 ORDER BY version
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("store: load scripts: %w", err)
	}
	defer rows.Close()

	var out []models.InterviewScript
	for rows.Next() {
		var sc models.InterviewScript
		var mode string
		var sections []byte
		if err := rows.Scan(&sc.Version, &sc.GeneratedAfterInterview, &sc.ResearchQuestion,
			&sc.OpeningQuestion, &sections, &sc.ClosingQuestion, &sc.Wildcard, &mode,
			&sc.ConvergenceScore, &sc.NoveltyRate, &sc.ChangesSummary, &sc.PublishedAt); err != nil {
			return nil, fmt.Errorf("store: scan script: %w", err)
		}
		sc.ProjectID = projectID
		sc.Mode = models.ScriptMode(mode)
		if err := json.Unmarshal(sections, &sc.Sections); err != nil {
			return nil, fmt.Errorf("store: decode script sections: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func insertEvidence(ctx context.Context, tx pgx.Tx, projectID string, e models.Evidence) error {
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("store: encode evidence tags: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO evidence (project_id, id, interview_id, quote, interpretation, factor, mechanism, outcome, tags, language, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, projectID, e.ID, e.InterviewID, e.Quote, e.Interpretation, e.Factor, e.Mechanism, e.Outcome, tags, e.Language, e.Timestamp)
	if err != nil {
		return fmt.Errorf("store: insert evidence %s: %w", e.ID, err)
	}
	return nil
}

func insertProposition(ctx context.Context, tx pgx.Tx, projectID string, p models.Proposition) error {
	supp, err := p.SupportingEvidence.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode supporting evidence: %w", err)
	}
	contra, err := p.ContradictingEvidence.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode contradicting evidence: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO propositions (project_id, id, factor, mechanism, outcome, confidence, status,
			supporting_evidence, contradicting_evidence, first_seen_interview, last_updated_interview,
			interviews_without_new_evidence, merged_into)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NULLIF($13, ''))
	`, projectID, p.ID, p.Factor, p.Mechanism, p.Outcome, p.Confidence, string(p.Status),
		supp, contra, p.FirstSeenInterview, p.LastUpdatedInterview, p.InterviewsWithoutNewEvidence, p.MergedInto)
	if err != nil {
		return fmt.Errorf("store: insert proposition %s: %w", p.ID, err)
	}
	return nil
}

func applyPropositionUpdate(ctx context.Context, tx pgx.Tx, projectID string, u models.PropositionUpdate) error {
	supp, err := u.SupportingEvidence.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode supporting evidence: %w", err)
	}
	contra, err := u.ContradictingEvidence.MarshalJSON()
	if err != nil {
		return fmt.Errorf("store: encode contradicting evidence: %w", err)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE propositions SET
			supporting_evidence = $3,
			contradicting_evidence = $4,
			confidence = $5,
			status = $6,
			last_updated_interview = $7,
			interviews_without_new_evidence = $8,
			merged_into = NULLIF($9, '')
		WHERE project_id = $1 AND id = $2
	`, projectID, u.PropositionID, supp, contra, u.Confidence, string(u.Status),
		u.LastUpdatedInterview, u.InterviewsWithoutNewEvidence, u.MergedInto)
	if err != nil {
		return fmt.Errorf("store: update proposition %s: %w", u.PropositionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("store: update proposition %s: %w", u.PropositionID, ErrProjectNotFound)
	}
	return nil
}

func insertInterview(ctx context.Context, tx pgx.Tx, projectID string, iv models.Interview) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO interviews (project_id, id, conversation_id, transcript, language,
			script_version_used, status, received_at, analyzed_at, failure_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, projectID, iv.ID, iv.ConversationID, iv.Transcript, iv.Language, iv.ScriptVersionUsed,
		string(iv.Status), iv.ReceivedAt, iv.AnalyzedAt, iv.FailureReason)
	if err != nil {
		return fmt.Errorf("store: insert interview %s: %w", iv.ID, err)
	}
	return nil
}

func insertScript(ctx context.Context, tx pgx.Tx, projectID string, sc models.InterviewScript) error {
	sections, err := json.Marshal(sc.Sections)
	if err != nil {
		return fmt.Errorf("store: encode script sections: %w", err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO interview_scripts (project_id, version, generated_after_interview, research_question,
			opening_question, sections, closing_question, wildcard, mode, convergence_score, novelty_rate,
			changes_summary, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, projectID, sc.Version, sc.GeneratedAfterInterview, sc.ResearchQuestion, sc.OpeningQuestion,
		sections, sc.ClosingQuestion, sc.Wildcard, string(sc.Mode), sc.ConvergenceScore, sc.NoveltyRate,
		sc.ChangesSummary, sc.PublishedAt)
	if err != nil {
		return fmt.Errorf("store: insert script v%d: %w", sc.Version, err)
	}
	return nil
}
