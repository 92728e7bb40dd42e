package export

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryTarget_PutGetRoundTrip(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
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

func TestMemoryTarget_SizeMismatch(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
	err := target.PutDeck("intro-1.html", strings.NewReader("abc"), 99)
	if err == nil {
		t.Error("PutDeck() with wrong size should return error")
	}
}

func TestMemoryTarget_GetMissing(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
	var out bytes.Buffer
	err := target.GetDeck("absent.html", &out)
	if err == nil {
		t.Error("GetDeck() for missing deck should return error")
	}
}

func TestMemoryTarget_Overwrite(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
	if err := target.PutDeck("deck.html", strings.NewReader("v1"), 2); err != nil {
		t.Fatalf("PutDeck() error = %v", err)
	}
	if err := target.PutDeck("deck.html", strings.NewReader("v2"), 2); err != nil {
		t.Fatalf("second PutDeck() error = %v", err)
	}

	var got bytes.Buffer
	if err := target.GetDeck("deck.html", &got); err != nil {
		t.Fatalf("GetDeck() error = %v", err)
	}
	if got.String() != "v2" {
		t.Errorf("GetDeck() = %q, want %q", got.String(), "v2")
	}
}

func TestMemoryTarget_ListDecks(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
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

func TestMemoryTarget_ValidateSetup(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
	if err := target.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}
}
