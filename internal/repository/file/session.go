// Package file stores session slots as JSON files in a directory, one file
// per key.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sync"

	"github.com/Kerhoff/eventboard/internal/models"
	"github.com/Kerhoff/eventboard/internal/repository"
)

var keyRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// SessionStore implements repository.SessionStore on the local filesystem.
type SessionStore struct {
	dir string
	mu  sync.Mutex
}

var _ repository.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates the directory if needed and returns a store rooted there.
func NewSessionStore(dir string) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session dir: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

func (s *SessionStore) Load(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("session slot %q: %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to read session slot: %w", err)
	}
	return data, nil
}

// Save writes the value to a temporary file and renames it into place.
func (s *SessionStore) Save(ctx context.Context, key string, value []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write session slot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close session slot: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace session slot: %w", err)
	}
	return nil
}

// Remove deletes the slot. Removing an empty slot is not an error.
func (s *SessionStore) Remove(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove session slot: %w", err)
	}
	return nil
}

func (s *SessionStore) path(key string) (string, error) {
	if !keyRegex.MatchString(key) {
		return "", models.NewValidationError("key", "must match [A-Za-z0-9_.-]+")
	}
	return filepath.Join(s.dir, key+".json"), nil
}
