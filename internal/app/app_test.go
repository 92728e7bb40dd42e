package app

import (
	"os"
	"path/filepath"
	"testing"

	"edulite-cli/internal/config"
	"edulite-cli/internal/localstore"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		BaseURL:    "https://edulite.example.org/api",
		BaseDir:    dir,
		LogDir:     filepath.Join(dir, "log"),
		Tokens:     config.TokensConfig{Type: "memory"},
		LocalStore: config.LocalStoreConfig{Type: "memory"},
		Encryption: config.EncryptionConfig{Type: "test"},
	}
}

func TestNewApp(t *testing.T) {
	t.Run("wires all components from config", func(t *testing.T) {
		a, err := NewApp(newTestConfig(t), "Test")
		if err != nil {
			t.Fatalf("NewApp() error = %v", err)
		}
		defer a.Close()

		if a.client == nil || a.store == nil || a.cache == nil {
			t.Error("NewApp() left components unwired")
		}
	})

	t.Run("requires a base URL", func(t *testing.T) {
		cfg := newTestConfig(t)
		cfg.BaseURL = ""
		if _, err := NewApp(cfg, "Test"); err == nil {
			t.Error("NewApp() without base_url should fail")
		}
	})

	t.Run("close is clean", func(t *testing.T) {
		a, err := NewApp(newTestConfig(t), "Test")
		if err != nil {
			t.Fatalf("NewApp() error = %v", err)
		}
		if err := a.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
}

func TestNewCredentialSource(t *testing.T) {
	t.Run("file store needs a path", func(t *testing.T) {
		if _, err := newCredentialSource(config.TokensConfig{Type: "file"}); err == nil {
			t.Error("expected error for file store without path")
		}
	})

	t.Run("unknown type is rejected", func(t *testing.T) {
		if _, err := newCredentialSource(config.TokensConfig{Type: "keyring"}); err == nil {
			t.Error("expected error for unknown token store type")
		}
	})

	t.Run("empty type defaults to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tokens.json")
		creds, err := newCredentialSource(config.TokensConfig{Path: path})
		if err != nil {
			t.Fatalf("newCredentialSource() error = %v", err)
		}
		if creds == nil {
			t.Fatal("newCredentialSource() returned nil")
		}
	})
}

func TestApp_LoggedIn(t *testing.T) {
	a, err := NewApp(newTestConfig(t), "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	if a.LoggedIn() {
		t.Error("LoggedIn() = true with no stored tokens")
	}
}

func TestApp_NewSlideshowSession(t *testing.T) {
	a, err := NewApp(newTestConfig(t), "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	session, _, err := a.NewSlideshow()
	if err != nil {
		t.Fatalf("NewSlideshow() error = %v", err)
	}

	draft := session.Draft()
	if len(draft.Slides) != 1 {
		t.Errorf("new session has %d slides, want 1", len(draft.Slides))
	}

	// Edits persist in the local store across sessions.
	if err := session.SetTitle("Draft deck"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	resumed, _, err := a.NewSlideshow()
	if err != nil {
		t.Fatalf("second NewSlideshow() error = %v", err)
	}
	if resumed.Draft().Title != "Draft deck" {
		t.Errorf("resumed draft title = %q, want %q", resumed.Draft().Title, "Draft deck")
	}
}

func TestApp_Preferences(t *testing.T) {
	a, err := NewApp(newTestConfig(t), "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	want := localstore.Preferences{AutoHideToolbar: true}
	if err := a.SetPreferences(want); err != nil {
		t.Fatalf("SetPreferences() error = %v", err)
	}
	got, err := a.Preferences()
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if got != want {
		t.Errorf("Preferences() = %+v, want %+v", got, want)
	}
}

func TestApp_ImportDocument(t *testing.T) {
	a, err := NewApp(newTestConfig(t), "Test")
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer a.Close()

	path := filepath.Join(t.TempDir(), "lecture.html")
	document := "<h1>Mitosis</h1><p>Cell division.</p><h1>Meiosis</h1><p>Gamete formation.</p>"
	if err := os.WriteFile(path, []byte(document), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	session, err := a.ImportDocument(path, "Cell Division")
	if err != nil {
		t.Fatalf("ImportDocument() error = %v", err)
	}

	draft := session.Draft()
	if draft.Title != "Cell Division" {
		t.Errorf("title = %q", draft.Title)
	}
	if len(draft.Slides) != 2 {
		t.Fatalf("len(slides) = %d, want 2", len(draft.Slides))
	}
	if draft.Slides[0].Title != "Mitosis" || draft.Slides[1].Title != "Meiosis" {
		t.Errorf("slide titles = %q, %q", draft.Slides[0].Title, draft.Slides[1].Title)
	}
}
