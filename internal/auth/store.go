// Package auth stores the JWT pair issued by the backend. The file store
// keeps tokens in a 0600 JSON file next to the config; the memory store
// backs tests and throwaway sessions.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
)

// Pair is the persisted token pair.
type Pair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// FileStore reads and writes the token pair at a fixed path. It implements
// api.CredentialSource.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	pair   Pair
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", err
	}
	return s.pair.Access, nil
}

func (s *FileStore) RefreshToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return "", err
	}
	return s.pair.Refresh, nil
}

func (s *FileStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{Access: access, Refresh: refresh}
	s.loaded = true
	return s.save()
}

// Clear deletes the token file. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

// load reads the token file once; a missing file yields an empty pair.
func (s *FileStore) load() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading token file: %w", err)
	}
	if err := json.Unmarshal(data, &s.pair); err != nil {
		return fmt.Errorf("parsing token file %s: %w", s.path, err)
	}
	s.loaded = true
	return nil
}

func (s *FileStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("creating token dir: %w", err)
	}
	data, err := json.MarshalIndent(s.pair, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding tokens: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// MemoryStore holds the token pair in memory only.
type MemoryStore struct {
	mu   sync.Mutex
	pair Pair
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.Access, nil
}

func (s *MemoryStore) RefreshToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair.Refresh, nil
}

func (s *MemoryStore) SetTokens(access, refresh string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{Access: access, Refresh: refresh}
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = Pair{}
	return nil
}

// TokenExpiry reads the exp claim from a JWT without verifying the signature.
// The client only uses this to decide whether a login prompt is needed before
// issuing requests; the server remains the authority on token validity.
func TokenExpiry(token string) (time.Time, error) {
	claims := jwt.StandardClaims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("parsing token: %w", err)
	}
	if claims.ExpiresAt == 0 {
		return time.Time{}, errors.New("token carries no expiry")
	}
	return time.Unix(claims.ExpiresAt, 0), nil
}

// Expired reports whether the token's exp claim is in the past. Malformed
// tokens count as expired.
func Expired(token string, now time.Time) bool {
	exp, err := TokenExpiry(token)
	if err != nil {
		return true
	}
	return exp.Before(now)
}
