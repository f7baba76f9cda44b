package reconciler

import "errors"

// ErrInvalidDiff is returned when an AnalysisDiff violates an invariant
// (dangling reference, supporting/contradicting overlap). The Pipeline
// still commits the StoreDiff Reconcile returns alongside this error — it
// carries the extracted evidence and the failed interview row only (no
// proposition changes), per spec.md §4.5: "drop offending
// parts; commit still-valid evidence; emit analysis_failed with details."
var ErrInvalidDiff = errors.New("reconciler: analysis diff violates an invariant")
