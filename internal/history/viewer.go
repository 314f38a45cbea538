// Package history reads the authenticated user's past estimate requests.
package history

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/api"
	"github.com/conorls/dublinrent/internal/models"
)

// Fetcher is the slice of the backend API the viewer needs.
type Fetcher interface {
	SearchHistory(ctx context.Context) ([]models.SearchHistoryItem, error)
}

// CredentialSource reports the live credential, re-read at each fetch.
type CredentialSource func() string

// Viewer fetches search history for display. History is written
// server-side at prediction time; the viewer is strictly read-only.
type Viewer struct {
	client Fetcher
	creds  CredentialSource
	log    *zap.Logger
}

// NewViewer constructs a Viewer. creds is typically the session
// manager's Token method.
func NewViewer(client Fetcher, creds CredentialSource, log *zap.Logger) *Viewer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Viewer{client: client, creds: creds, log: log}
}

// Fetch returns the user's history, newest first. Without a credential,
// or when the service rejects it, the error is api.ErrNotAuthenticated
// so the caller can prompt for login instead of offering a retry.
func (v *Viewer) Fetch(ctx context.Context) ([]models.SearchHistoryItem, error) {
	if v.creds() == "" {
		return nil, api.ErrNotAuthenticated
	}

	items, err := v.client.SearchHistory(ctx)
	if err != nil {
		v.log.Warn("history fetch failed", zap.Error(err))
		return nil, err
	}

	// Timestamps are ISO-8601, so lexicographic order matches time order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return items, nil
}
