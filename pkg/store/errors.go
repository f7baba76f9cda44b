package store

import "errors"

var (
	// ErrProjectNotFound is returned by Load/Commit when the project id is unknown.
	ErrProjectNotFound = errors.New("store: project not found")
	// ErrDuplicateConversation is returned by Commit when a new interview's
	// conversation_id already exists for the project (a backstop behind the
	// duplicate check pkg/pipeline makes before and after taking the project
	// lock).
	ErrDuplicateConversation = errors.New("store: conversation already recorded")
	// ErrScriptVersionConflict is returned by Commit when NewScript.Version is
	// not exactly current_script_version+1, which would break the strictly
	// monotonic sequence spec.md §8 invariant 4 requires.
	ErrScriptVersionConflict = errors.New("store: script version is not the next version")
)

// MigrationError wraps a failure applying embedded SQL migrations at startup.
type MigrationError struct {
	Step string
	Err  error
}

func (e *MigrationError) Error() string {
	return "store: migration failed at " + e.Step + ": " + e.Err.Error()
}

func (e *MigrationError) Unwrap() error { return e.Err }
