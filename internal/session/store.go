// Package session owns the bearer credential lifecycle: durable storage
// of the token and the authentication state machine built on top of it.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// CredentialStore persists a single bearer credential across process
// restarts. An empty token from Load means no credential is stored.
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// FileStore keeps the credential in a small JSON file, one credential
// per file. Absence of the file means unauthenticated.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a FileStore backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

type storedCredential struct {
	AccessToken string `json:"access_token"`
}

// Load reads the stored credential. A missing file is not an error.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("read credential file: %w", err)
	}

	var sc storedCredential
	if err := json.Unmarshal(data, &sc); err != nil {
		return "", fmt.Errorf("parse credential file: %w", err)
	}
	return sc.AccessToken, nil
}

// Save writes the credential, replacing any previous one.
func (s *FileStore) Save(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(storedCredential{AccessToken: token})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write credential file: %w", err)
	}
	return nil
}

// Clear removes the stored credential. Clearing an empty store is a no-op.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credential file: %w", err)
	}
	return nil
}
