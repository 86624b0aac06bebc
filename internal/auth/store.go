package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

// Store keeps a token as JSON on disk. Writers hold an exclusive file lock
// so the agent and the admin CLI can share one cache.
type Store struct {
	path string
	lock *flock.Flock
}

func NewStore(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

func (s *Store) Path() string { return s.path }

func (s *Store) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, fmt.Errorf("read token cache: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token cache %s: %w", s.path, err)
	}
	if tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, ErrNotLoggedIn
	}
	return &tok, nil
}

func (s *Store) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock token cache: %w", err)
	}
	defer s.lock.Unlock()

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write token cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token cache: %w", err)
	}
	return nil
}

// Clear removes the cached token.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token cache: %w", err)
	}
	return nil
}
