package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"edulite-cli/internal/edu"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements Store on a SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	clock edu.Clock
	path  string
}

// NewSQLiteStore opens (or creates) the store at path. path can be a file
// path or ":memory:" for an in-memory store.
func NewSQLiteStore(path string, clock edu.Clock) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if clock == nil {
		clock = edu.RealClock{}
	}

	return &SQLiteStore{
		db:    db,
		clock: clock,
		path:  path,
	}, nil
}

// OpenConnection opens and configures a SQLite connection with appropriate
// PRAGMAs. Exported for tools and tests that need a raw connection.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign key constraints (SQLite default is OFF for backward compatibility)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// Draft operations. Drafts are stored as a JSON payload keyed by the draft
// key, so the draft shape can evolve without schema migrations.

func (s *SQLiteStore) GetDraft(key string) (*edu.Draft, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM drafts WHERE key = ?", key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading draft %s: %w", key, err)
	}

	var draft edu.Draft
	if err := json.Unmarshal([]byte(payload), &draft); err != nil {
		return nil, fmt.Errorf("parsing draft %s: %w", key, err)
	}
	return &draft, nil
}

func (s *SQLiteStore) PutDraft(d *edu.Draft) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft %s: %w", d.Key, err)
	}

	_, err = s.db.Exec(`
		INSERT INTO drafts (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		d.Key, string(payload), s.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing draft %s: %w", d.Key, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteDraft(key string) error {
	if _, err := s.db.Exec("DELETE FROM drafts WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting draft %s: %w", key, err)
	}
	return nil
}

// DraftKeys lists the keys of all stored drafts, newest first.
func (s *SQLiteStore) DraftKeys() ([]string, error) {
	rows, err := s.db.Query("SELECT key FROM drafts ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning draft key: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// Preference operations

const (
	prefAutoHideToolbar = "auto_hide_toolbar"
	prefAutoHideNotes   = "auto_hide_notes"
)

func (s *SQLiteStore) GetPreferences() (Preferences, error) {
	rows, err := s.db.Query("SELECT key, value FROM preferences")
	if err != nil {
		return Preferences{}, fmt.Errorf("reading preferences: %w", err)
	}
	defer rows.Close()

	var prefs Preferences
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Preferences{}, fmt.Errorf("scanning preference: %w", err)
		}
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return Preferences{}, fmt.Errorf("preference %s has bad value %q: %w", key, value, err)
		}
		switch key {
		case prefAutoHideToolbar:
			prefs.AutoHideToolbar = enabled
		case prefAutoHideNotes:
			prefs.AutoHideNotes = enabled
		}
	}
	return prefs, rows.Err()
}

func (s *SQLiteStore) PutPreferences(prefs Preferences) error {
	values := map[string]bool{
		prefAutoHideToolbar: prefs.AutoHideToolbar,
		prefAutoHideNotes:   prefs.AutoHideNotes,
	}
	for key, enabled := range values {
		_, err := s.db.Exec(`
			INSERT INTO preferences (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, strconv.FormatBool(enabled))
		if err != nil {
			return fmt.Errorf("storing preference %s: %w", key, err)
		}
	}
	return nil
}

// DB exposes the underlying connection for migration tooling.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Compile-time check that SQLiteStore implements the Store interface
var _ Store = (*SQLiteStore)(nil)
