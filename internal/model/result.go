package model

import "time"

// Result is the outcome of a refactoring operation call: on success,
// FilesModified/Created/Deleted plus symbol/reference metadata; on preview,
// PendingChanges instead of any filesystem effect; on failure, an
// errtax.RefactoringError is returned instead of a Result (see
// internal/operation).
type Result struct {
	OperationID      string
	FilesModified    []string
	FilesCreated     []string
	FilesDeleted     []string
	Symbol           *Symbol
	ReferencesUpdated int
	ExecutionTime    time.Duration

	// PendingChanges is populated instead of the Files* fields when the
	// operation ran in preview mode.
	PendingChanges []PendingChange
}

// PendingChange describes one not-yet-applied document change for preview
// mode: a human-readable description plus before/after snippets (spec §3
// "Result": "an ordered list of pending changes with human-readable
// description and before/after snippets").
type PendingChange struct {
	Kind        ChangeKind
	Path        string
	Description string
	Before      string
	After       string
}
