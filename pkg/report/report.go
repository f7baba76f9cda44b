// Package report builds the read models pkg/synth and the project API
// surface need from a raw Snapshot: a lightweight ProjectSummary for listing
// and a ReportView bucketing propositions (weak ones included) into
// confirmed, challenged, and pruned groups with their backing quotes attached.
package report

import "github.com/shipaleks/eidetic/pkg/models"

// Summary reduces a Snapshot to its list-view projection.
func Summary(snap models.Snapshot) models.ProjectSummary {
	live := snap.LivePropositions()
	return models.ProjectSummary{
		ID:                   snap.Project.ID,
		ResearchQuestion:     snap.Project.ResearchQuestion,
		CreatedAt:            snap.Project.CreatedAt,
		CurrentScriptVersion: snap.Project.CurrentScriptVersion,
		InterviewCount:       len(snap.Interviews),
		ConvergenceScore:     latestConvergence(snap),
		Mode:                 latestMode(snap),
		Propositions:         len(live),
	}
}

// View builds the full ReportView pkg/synth consumes.
func View(snap models.Snapshot) models.ReportView {
	view := models.ReportView{
		Project:         Summary(snap),
		TotalEvidence:   len(snap.Evidence),
		TotalInterviews: len(snap.Interviews),
	}

	for _, p := range snap.Propositions {
		finding := models.ReportFinding{Proposition: p, Quotes: quotesFor(snap, p)}
		switch p.Status {
		case models.StatusConfirmed, models.StatusSaturated:
			view.ConfirmedFindings = append(view.ConfirmedFindings, finding)
		case models.StatusChallenged:
			view.ChallengedFindings = append(view.ChallengedFindings, finding)
		case models.StatusWeak:
			view.PrunedAppendix = append(view.PrunedAppendix, finding)
		}
	}
	return view
}

func quotesFor(snap models.Snapshot, p models.Proposition) []string {
	quotes := make([]string, 0, len(p.SupportingEvidence))
	for _, id := range p.SupportingEvidence.Slice() {
		if e, ok := snap.EvidenceByID(id); ok {
			quotes = append(quotes, e.Quote)
		}
	}
	return quotes
}

func latestConvergence(snap models.Snapshot) float64 {
	if len(snap.Scripts) == 0 {
		return 0
	}
	return snap.Scripts[len(snap.Scripts)-1].ConvergenceScore
}

func latestMode(snap models.Snapshot) models.ScriptMode {
	if len(snap.Scripts) == 0 {
		return ""
	}
	return snap.Scripts[len(snap.Scripts)-1].Mode
}
