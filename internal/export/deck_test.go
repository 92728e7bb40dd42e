package export

import (
	"bytes"
	"strings"
	"testing"

	"edulite-cli/internal/edu"
	"edulite-cli/internal/encryption"
)

func sampleDetail() *edu.SlideshowDetail {
	return &edu.SlideshowDetail{
		Slideshow: edu.Slideshow{
			ID:       42,
			Title:    "Cell Biology: An Introduction",
			Language: "en",
		},
		Slides: []edu.Slide{
			{ID: 1, Order: 0, Title: "Welcome", Rendered: "<p>Hello <em>class</em></p>"},
			{ID: 2, Order: 1, Title: "The Cell", Content: "# Raw markdown\n<script>alert(1)</script>"},
		},
	}
}

func TestWriteDeck(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteDeck(&buf, sampleDetail()); err != nil {
		t.Fatalf("WriteDeck() error = %v", err)
	}
	html := buf.String()

	if !strings.Contains(html, "<title>Cell Biology: An Introduction</title>") {
		t.Error("deck is missing the title")
	}
	if !strings.Contains(html, "<p>Hello <em>class</em></p>") {
		t.Error("server-rendered slide HTML was escaped or dropped")
	}
	// Slides without rendered HTML fall back to escaped source.
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("raw markdown fallback was not escaped")
	}
	if strings.Count(html, "<section") != 2 {
		t.Errorf("deck has %d sections, want 2", strings.Count(html, "<section"))
	}
}

func TestDeckName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		title     string
		encrypted bool
		want      string
	}{
		{name: "title becomes a slug", title: "Cell Biology: An Introduction", want: "cell-biology-an-introduction-42.html"},
		{name: "empty title falls back", title: "", want: "slideshow-42.html"},
		{name: "encrypted deck gets age suffix", title: "Notes", encrypted: true, want: "notes-42.html.age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			detail := sampleDetail()
			detail.Title = tt.title
			if got := DeckName(detail, tt.encrypted); got != tt.want {
				t.Errorf("DeckName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExporter_PlaintextRoundTrip(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
	exporter, err := NewExporter(target, nil, false, nil)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	name, err := exporter.Export(sampleDetail())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if name != "cell-biology-an-introduction-42.html" {
		t.Errorf("Export() name = %q", name)
	}

	var deck bytes.Buffer
	if err := exporter.Fetch(name, &deck, nil); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(deck.String(), "<!DOCTYPE html>") {
		t.Error("fetched deck is not HTML")
	}
}

func TestExporter_EncryptedRoundTrip(t *testing.T) {
	t.Parallel()

	target := NewMemoryTarget("test")
	enc := encryption.NewTestEncryptor()
	exporter, err := NewExporter(target, enc, true, nil)
	if err != nil {
		t.Fatalf("NewExporter() error = %v", err)
	}

	name, err := exporter.Export(sampleDetail())
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasSuffix(name, ".age") {
		t.Errorf("encrypted deck name = %q, want .age suffix", name)
	}

	// Stored bytes must not be the plaintext deck.
	var stored bytes.Buffer
	if err := target.GetDeck(name, &stored); err != nil {
		t.Fatalf("GetDeck() error = %v", err)
	}
	if strings.HasPrefix(stored.String(), "<!DOCTYPE html>") {
		t.Error("stored deck is plaintext, want ciphertext")
	}

	// Fetching without an unlocked key is refused.
	var out bytes.Buffer
	if err := exporter.Fetch(name, &out, nil); err == nil {
		t.Error("Fetch() without decryption context should fail")
	}

	ctx, err := enc.Unlock("passphrase")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}
	out.Reset()
	if err := exporter.Fetch(name, &out, ctx); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(out.String(), "<!DOCTYPE html>") {
		t.Error("decrypted deck is not HTML")
	}
}

func TestNewExporter_EncryptRequiresKeys(t *testing.T) {
	t.Parallel()

	if _, err := NewExporter(NewMemoryTarget("test"), nil, true, nil); err == nil {
		t.Error("NewExporter() with encrypt and no encryptor should fail")
	}
}
