// Package stub is an in-memory stand-in for the rent-estimate backend,
// used for offline development and for exercising the client end to end.
// It reproduces the wire contracts of the real service but none of its
// modelling; predictions come from a fixed formula.
package stub

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/conorls/dublinrent/internal/models"
)

// ErrEmailTaken is returned when signing up with an email that already
// has an account.
var ErrEmailTaken = errors.New("email already registered")

type user struct {
	id       int
	email    string
	password string
}

// Store holds users, issued tokens and recorded searches in memory.
type Store struct {
	mu         sync.Mutex
	users      map[string]user   // keyed by email
	tokens     map[string]string // token → email
	history    map[int][]models.SearchHistoryItem
	nextUserID int
	nextItemID int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:      make(map[string]user),
		tokens:     make(map[string]string),
		history:    make(map[int][]models.SearchHistoryItem),
		nextUserID: 1,
		nextItemID: 1,
	}
}

// CreateUser registers a new account.
func (s *Store) CreateUser(email, password string) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[email]; exists {
		return models.Identity{}, ErrEmailTaken
	}
	u := user{id: s.nextUserID, email: email, password: password}
	s.nextUserID++
	s.users[email] = u
	return models.Identity{ID: u.id, Email: u.email}, nil
}

// Authenticate checks the credentials and mints a bearer token.
func (s *Store) Authenticate(email, password string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.users[email]
	if !exists || u.password != password {
		return "", false
	}
	token := uuid.NewString()
	s.tokens[token] = email
	return token, true
}

// Lookup resolves a bearer token to the identity it was issued for. It
// satisfies middleware.TokenResolver.
func (s *Store) Lookup(token string) (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email, ok := s.tokens[token]
	if !ok {
		return models.Identity{}, false
	}
	u := s.users[email]
	return models.Identity{ID: u.id, Email: u.email}, true
}

// RecordSearch stores a history row for an authenticated prediction.
func (s *Store) RecordSearch(userID int, params map[string]any, result models.PredictionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := models.SearchHistoryItem{
		ID:               s.nextItemID,
		UserID:           userID,
		SearchParameters: params,
		PredictionResult: &result,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
	}
	s.nextItemID++
	s.history[userID] = append(s.history[userID], item)
}

// History returns the user's recorded searches, newest first.
func (s *Store) History(userID int) []models.SearchHistoryItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.history[userID]
	out := make([]models.SearchHistoryItem, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}
