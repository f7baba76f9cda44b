// Package models defines Eidetic's persisted data shapes: Evidence,
// Proposition, Interview, InterviewScript, and the per-project Snapshot and
// StoreDiff types that move between pkg/store, pkg/reconciler, and
// pkg/pipeline.
package models

import "time"

// Evidence is a single respondent observation extracted from one interview.
// It is atomic and append-only once committed: Reconciler never mutates an
// Evidence row after Store.Commit writes it.
type Evidence struct {
	ID             string    `json:"id"` // monotonic per project, e.g. "E001"
	InterviewID    string    `json:"interview_id"`
	Quote          string    `json:"quote"`          // verbatim, source language
	Interpretation string    `json:"interpretation"` // English
	Factor         string    `json:"factor"`
	Mechanism      string    `json:"mechanism"`
	Outcome        string    `json:"outcome"`
	Tags           []string  `json:"tags"` // 2-5, English
	Language       string    `json:"language"`
	Timestamp      time.Time `json:"timestamp"`
}
