// Package localstore persists client-side state between runs: editing
// drafts awaiting reconciliation with the server, and presentation
// preferences. The backing store is SQLite; a memory variant exists for
// tests and one-off sessions.
package localstore

import "edulite-cli/internal/edu"

// Preferences are the user's presentation settings.
type Preferences struct {
	AutoHideToolbar bool
	AutoHideNotes   bool
}

// Store is the persistence layer the application wires in. It embeds the
// draft store the reconciler consumes.
type Store interface {
	edu.DraftStore

	GetPreferences() (Preferences, error)
	PutPreferences(prefs Preferences) error

	Close() error
}
