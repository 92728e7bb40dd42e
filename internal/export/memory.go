package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
)

// MemoryTarget is an in-memory implementation of the Target interface,
// useful for testing. It is safe for concurrent use.
type MemoryTarget struct {
	name  string
	decks map[string][]byte
	mu    sync.RWMutex
}

// NewMemoryTarget creates a new in-memory target with the given name.
func NewMemoryTarget(name string) *MemoryTarget {
	return &MemoryTarget{
		name:  name,
		decks: make(map[string][]byte),
	}
}

// PutDeck stores a deck under name. Storing the same name twice overwrites.
func (m *MemoryTarget) PutDeck(name string, r io.Reader, size int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read deck: %w", err)
	}

	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.decks[name] = data
	return nil
}

// GetDeck retrieves a deck by name.
func (m *MemoryTarget) GetDeck(name string, w io.Writer) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.decks[name]
	if !ok {
		return fmt.Errorf("deck not found: %s", name)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write deck: %w", err)
	}

	return nil
}

// ListDecks returns the stored deck names sorted alphabetically.
func (m *MemoryTarget) ListDecks() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.decks))
	for name := range m.decks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup always succeeds for the in-memory target.
func (m *MemoryTarget) ValidateSetup() error {
	return nil
}

// Compile-time check that MemoryTarget implements the Target interface
var _ Target = (*MemoryTarget)(nil)
