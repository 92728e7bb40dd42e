package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// FileSystemTarget stores decks as files under a directory:
//
//	<root>/
//	  decks/
//	    <name>    (exported deck files)
type FileSystemTarget struct {
	name     string
	root     string
	decksDir string
}

// NewFileSystemTarget creates a filesystem target rooted at the given path.
func NewFileSystemTarget(name, root string) (*FileSystemTarget, error) {
	decksDir := filepath.Join(root, "decks")

	if err := os.MkdirAll(decksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create decks directory: %w", err)
	}

	return &FileSystemTarget{
		name:     name,
		root:     root,
		decksDir: decksDir,
	}, nil
}

// PutDeck stores a deck under name, overwriting any previous export.
func (t *FileSystemTarget) PutDeck(name string, r io.Reader, size int64) error {
	if err := validDeckName(name); err != nil {
		return err
	}
	return t.writeFile(filepath.Join(t.decksDir, name), r, size)
}

// GetDeck retrieves the deck stored under name and writes it to w.
func (t *FileSystemTarget) GetDeck(name string, w io.Writer) error {
	if err := validDeckName(name); err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(t.decksDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("deck not found: %s", name)
		}
		return fmt.Errorf("opening deck: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("reading deck: %w", err)
	}
	return nil
}

// ListDecks returns the stored deck names sorted alphabetically.
func (t *FileSystemTarget) ListDecks() ([]string, error) {
	entries, err := os.ReadDir(t.decksDir)
	if err != nil {
		return nil, fmt.Errorf("listing decks: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// ValidateSetup verifies that the target directories are accessible.
func (t *FileSystemTarget) ValidateSetup() error {
	info, err := os.Stat(t.root)
	if err != nil {
		return fmt.Errorf("target root not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("target root is not a directory: %s", t.root)
	}

	info, err = os.Stat(t.decksDir)
	if err != nil {
		return fmt.Errorf("decks directory not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("decks path is not a directory: %s", t.decksDir)
	}

	return nil
}

// writeFile writes data from r to the specified path using atomic write
// (temp file + rename).
func (t *FileSystemTarget) writeFile(destPath string, r io.Reader, expectedSize int64) error {
	// Create temp file in the same directory to ensure atomic rename works
	dir := filepath.Dir(destPath)
	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write deck: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if written != expectedSize {
		os.Remove(tmpPath)
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize deck: %w", err)
	}

	return nil
}

// validDeckName rejects names that would escape the decks directory.
func validDeckName(name string) error {
	if name == "" {
		return fmt.Errorf("deck name is empty")
	}
	if name != filepath.Base(name) {
		return fmt.Errorf("deck name must not contain path separators: %s", name)
	}
	return nil
}

// Compile-time check that FileSystemTarget implements the Target interface
var _ Target = (*FileSystemTarget)(nil)
