package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"proedualt/internal/errors"
)

// FileStore persists the session as JSON readable only by its owner
type FileStore struct {
	path string
}

// NewFileStore creates a store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the session file location
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the stored session. A missing file means signed out.
func (fs *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewIOError(errors.ErrCodeSessionStore, "failed to read session file", err).
			WithContext("path", fs.path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.NewDecodeError(errors.ErrCodeSessionStore, "session file is corrupt", err).
			WithContext("path", fs.path)
	}
	if s.AccessToken == "" {
		return nil, nil
	}
	return &s, nil
}

// Save writes s atomically through a temp file in the same directory
func (fs *FileStore) Save(s *Session) error {
	if s == nil {
		return fs.Clear()
	}

	dir := filepath.Dir(fs.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return errors.NewIOError(errors.ErrCodeSessionStore, "failed to create session directory", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.NewInternalError(errors.ErrCodeSessionStore, "failed to encode session", err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return errors.NewIOError(errors.ErrCodeSessionStore, "failed to create temp session file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return errors.NewIOError(errors.ErrCodeSessionStore, "failed to restrict session file", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.NewIOError(errors.ErrCodeSessionStore, "failed to write session file", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.NewIOError(errors.ErrCodeSessionStore, "failed to write session file", err)
	}
	if err := os.Rename(tmpName, fs.path); err != nil {
		return errors.NewIOError(errors.ErrCodeSessionStore, fmt.Sprintf("failed to replace %s", fs.path), err)
	}
	return nil
}

// Clear removes the stored session
func (fs *FileStore) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.NewIOError(errors.ErrCodeSessionStore, "failed to remove session file", err)
	}
	return nil
}
