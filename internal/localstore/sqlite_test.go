package localstore

import (
	"testing"
	"time"

	"edulite-cli/internal/edu"
	"edulite-cli/internal/localstore/migrations"
	"edulite-cli/internal/testutil"
)

func newTestStore(t *testing.T, clock edu.Clock) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:", clock)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := migrations.MigrateUp(store.DB()); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}
	return store
}

func sampleDraft(key string, showID int) *edu.Draft {
	return &edu.Draft{
		Key:     key,
		ShowID:  showID,
		Title:   "Photosynthesis",
		Version: 3,
		Slides: []edu.Slide{
			{TempID: "id-1", Order: 0, Title: "Intro", Content: "# Intro"},
			{TempID: "id-2", Order: 1, Title: "Light reactions", Content: "..."},
		},
	}
}

func TestSQLiteStore_Drafts(t *testing.T) {
	t.Run("missing draft reads as nil", func(t *testing.T) {
		store := newTestStore(t, nil)
		draft, err := store.GetDraft("slideshow-draft-42")
		if err != nil {
			t.Fatalf("GetDraft() error = %v", err)
		}
		if draft != nil {
			t.Errorf("GetDraft() = %+v, want nil", draft)
		}
	})

	t.Run("draft round-trips with its slides", func(t *testing.T) {
		store := newTestStore(t, nil)
		want := sampleDraft("slideshow-draft-42", 42)
		if err := store.PutDraft(want); err != nil {
			t.Fatalf("PutDraft() error = %v", err)
		}

		got, err := store.GetDraft("slideshow-draft-42")
		if err != nil {
			t.Fatalf("GetDraft() error = %v", err)
		}
		if got == nil {
			t.Fatal("GetDraft() = nil, want draft")
		}
		if got.Title != "Photosynthesis" || got.Version != 3 || got.ShowID != 42 {
			t.Errorf("draft = %+v", got)
		}
		if len(got.Slides) != 2 {
			t.Fatalf("len(Slides) = %d, want 2", len(got.Slides))
		}
		if got.Slides[1].Title != "Light reactions" {
			t.Errorf("slide 1 = %+v", got.Slides[1])
		}
	})

	t.Run("put overwrites an existing draft", func(t *testing.T) {
		store := newTestStore(t, nil)
		draft := sampleDraft("slideshow-draft-42", 42)
		if err := store.PutDraft(draft); err != nil {
			t.Fatalf("PutDraft() error = %v", err)
		}
		draft.Title = "Respiration"
		draft.Version = 4
		if err := store.PutDraft(draft); err != nil {
			t.Fatalf("second PutDraft() error = %v", err)
		}

		got, err := store.GetDraft("slideshow-draft-42")
		if err != nil {
			t.Fatalf("GetDraft() error = %v", err)
		}
		if got.Title != "Respiration" || got.Version != 4 {
			t.Errorf("draft = %+v, want overwritten values", got)
		}
	})

	t.Run("delete removes the draft", func(t *testing.T) {
		store := newTestStore(t, nil)
		if err := store.PutDraft(sampleDraft("slideshow-draft-42", 42)); err != nil {
			t.Fatalf("PutDraft() error = %v", err)
		}
		if err := store.DeleteDraft("slideshow-draft-42"); err != nil {
			t.Fatalf("DeleteDraft() error = %v", err)
		}
		got, err := store.GetDraft("slideshow-draft-42")
		if err != nil {
			t.Fatalf("GetDraft() error = %v", err)
		}
		if got != nil {
			t.Errorf("draft still present after delete")
		}
		// Deleting a missing draft is a no-op.
		if err := store.DeleteDraft("slideshow-draft-42"); err != nil {
			t.Errorf("second DeleteDraft() error = %v", err)
		}
	})

	t.Run("keys list newest first", func(t *testing.T) {
		clock := testutil.FixedClock()
		store := newTestStore(t, clock)

		if err := store.PutDraft(sampleDraft("slideshow-draft-1", 1)); err != nil {
			t.Fatalf("PutDraft() error = %v", err)
		}
		clock.Advance(time.Minute)
		if err := store.PutDraft(sampleDraft("slideshow-draft-2", 2)); err != nil {
			t.Fatalf("PutDraft() error = %v", err)
		}

		keys, err := store.DraftKeys()
		if err != nil {
			t.Fatalf("DraftKeys() error = %v", err)
		}
		if len(keys) != 2 || keys[0] != "slideshow-draft-2" || keys[1] != "slideshow-draft-1" {
			t.Errorf("keys = %v, want newest first", keys)
		}
	})
}

func TestSQLiteStore_Preferences(t *testing.T) {
	t.Run("defaults are all off", func(t *testing.T) {
		store := newTestStore(t, nil)
		prefs, err := store.GetPreferences()
		if err != nil {
			t.Fatalf("GetPreferences() error = %v", err)
		}
		if prefs.AutoHideToolbar || prefs.AutoHideNotes {
			t.Errorf("prefs = %+v, want zero value", prefs)
		}
	})

	t.Run("preferences round-trip", func(t *testing.T) {
		store := newTestStore(t, nil)
		want := Preferences{AutoHideToolbar: true, AutoHideNotes: false}
		if err := store.PutPreferences(want); err != nil {
			t.Fatalf("PutPreferences() error = %v", err)
		}
		got, err := store.GetPreferences()
		if err != nil {
			t.Fatalf("GetPreferences() error = %v", err)
		}
		if got != want {
			t.Errorf("prefs = %+v, want %+v", got, want)
		}

		// Flipping a setting persists the change.
		want.AutoHideNotes = true
		if err := store.PutPreferences(want); err != nil {
			t.Fatalf("PutPreferences() error = %v", err)
		}
		got, err = store.GetPreferences()
		if err != nil {
			t.Fatalf("GetPreferences() error = %v", err)
		}
		if got != want {
			t.Errorf("prefs = %+v, want %+v", got, want)
		}
	})
}
