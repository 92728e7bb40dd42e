package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestFSTarget(t *testing.T) *FileSystemTarget {
	t.Helper()
	target, err := NewFileSystemTarget("test", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemTarget() error = %v", err)
	}
	return target
}

func TestFileSystemTarget_PutGetRoundTrip(t *testing.T) {
	t.Parallel()

	target := newTestFSTarget(t)
	deck := []byte("<!DOCTYPE html><html>deck</html>")

	if err := target.PutDeck("intro-1.html", bytes.NewReader(deck), int64(len(deck))); err != nil {
		t.Fatalf("PutDeck() error = %v", err)
	}

	var got bytes.Buffer
	if err := target.GetDeck("intro-1.html", &got); err != nil {
		t.Fatalf("GetDeck() error = %v", err)
	}
	if !bytes.Equal(got.Bytes(), deck) {
		t.Errorf("GetDeck() = %q, want %q", got.Bytes(), deck)
	}
}

func TestFileSystemTarget_SizeMismatch(t *testing.T) {
	t.Parallel()

	target := newTestFSTarget(t)
	err := target.PutDeck("intro-1.html", strings.NewReader("abc"), 99)
	if err == nil {
		t.Error("PutDeck() with wrong size should return error")
	}

	// Failed writes must not leave a partial deck behind.
	var out bytes.Buffer
	if err := target.GetDeck("intro-1.html", &out); err == nil {
		t.Error("partial deck should not be readable after failed put")
	}
}

func TestFileSystemTarget_GetMissing(t *testing.T) {
	t.Parallel()

	target := newTestFSTarget(t)
	var out bytes.Buffer
	if err := target.GetDeck("absent.html", &out); err == nil {
		t.Error("GetDeck() for missing deck should return error")
	}
}

func TestFileSystemTarget_RejectsPathTraversal(t *testing.T) {
	t.Parallel()

	target := newTestFSTarget(t)
	for _, name := range []string{"", "../escape.html", "a/b.html"} {
		if err := target.PutDeck(name, strings.NewReader("x"), 1); err == nil {
			t.Errorf("PutDeck(%q) should reject unsafe name", name)
		}
	}
}

func TestFileSystemTarget_ListDecks(t *testing.T) {
	t.Parallel()

	target := newTestFSTarget(t)
	for _, name := range []string{"zebra.html", "apple.html"} {
		if err := target.PutDeck(name, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("PutDeck(%s) error = %v", name, err)
		}
	}

	names, err := target.ListDecks()
	if err != nil {
		t.Fatalf("ListDecks() error = %v", err)
	}
	if len(names) != 2 || names[0] != "apple.html" || names[1] != "zebra.html" {
		t.Errorf("ListDecks() = %v, want sorted names", names)
	}
}

func TestFileSystemTarget_ValidateSetup(t *testing.T) {
	t.Parallel()

	t.Run("valid target", func(t *testing.T) {
		t.Parallel()
		target := newTestFSTarget(t)
		if err := target.ValidateSetup(); err != nil {
			t.Errorf("ValidateSetup() error = %v", err)
		}
	})

	t.Run("removed decks directory", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		target, err := NewFileSystemTarget("test", root)
		if err != nil {
			t.Fatalf("NewFileSystemTarget() error = %v", err)
		}
		if err := os.RemoveAll(filepath.Join(root, "decks")); err != nil {
			t.Fatalf("RemoveAll() error = %v", err)
		}
		if err := target.ValidateSetup(); err == nil {
			t.Error("ValidateSetup() should fail when decks directory is gone")
		}
	})
}
