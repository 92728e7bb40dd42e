// Package export renders slideshows into self-contained HTML decks and
// stores them on configurable targets (filesystem, S3, or in-memory for
// tests). Decks can be age-encrypted before leaving the machine.
package export

import "io"

// Target is a storage backend for exported decks.
type Target interface {
	// PutDeck stores a deck under name. size is the exact byte count r will
	// yield; a mismatch is an error.
	PutDeck(name string, r io.Reader, size int64) error

	// GetDeck retrieves the deck stored under name and writes it to w.
	GetDeck(name string, w io.Writer) error

	// ListDecks returns the names of all stored decks.
	ListDecks() ([]string, error)

	// ValidateSetup verifies that the target is reachable and writable.
	ValidateSetup() error
}
