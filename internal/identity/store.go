// Package identity persists the chosen username between runs.
package identity

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// UsernameKey is the fixed key the username is stored under.
	UsernameKey = "reaction-game-username"

	fileName   = "identity.json"
	appDirName = "reaction-game"
)

// Store is a small JSON key-value file. It is read once by the caller at
// startup and rewritten on every change.
type Store struct {
	dir string
}

// NewStore creates a Store in dir. Pass an empty string to use the default
// XDG state path.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the identity file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

// Username returns the stored username, or "" when none was saved.
func (s *Store) Username() (string, error) {
	kv, err := s.load()
	if err != nil {
		return "", err
	}
	return kv[UsernameKey], nil
}

// SetUsername stores name.
func (s *Store) SetUsername(name string) error {
	kv, err := s.load()
	if err != nil {
		// A corrupt file is replaced rather than blocking play.
		kv = map[string]string{}
	}
	kv[UsernameKey] = name
	return s.save(kv)
}

func (s *Store) load() (map[string]string, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading identity: %w", err)
	}
	kv := map[string]string{}
	if err := json.Unmarshal(data, &kv); err != nil {
		return nil, fmt.Errorf("parsing identity: %w", err)
	}
	return kv, nil
}

// save writes kv using a temp-file-then-rename.
func (s *Store) save(kv map[string]string) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	data, err := json.MarshalIndent(kv, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling identity: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".identity-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming identity file: %w", err)
	}
	committed = true
	return nil
}

// DefaultDir returns ~/.local/state/reaction-game, respecting
// XDG_STATE_HOME if set.
func DefaultDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
