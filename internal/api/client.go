// Package api implements the HTTP client for the rent-estimate backend:
// the identity, prediction, model-info, health and history endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/conorls/dublinrent/internal/models"
)

const httpTimeout = 15 * time.Second

// CredentialSource supplies the current bearer token, or "" when the
// session is unauthenticated. It is re-read at the moment of each
// outbound call; the client never caches the token.
type CredentialSource func() string

// Client is a typed HTTP client for the backend services. All methods
// are safe for concurrent use.
type Client struct {
	baseURL string
	creds   CredentialSource
	client  *http.Client
}

// New constructs a Client for the service at baseURL. creds may be nil
// for a client that never authenticates.
func New(baseURL string, creds CredentialSource) *Client {
	if creds == nil {
		creds = func() string { return "" }
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

// newRequest builds a request with a fresh request ID and, when a
// credential is available, the Authorization header.
func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.creds(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// decodeError turns a non-2xx response into an *Error, extracting the
// service's structured "detail" field when the body carries one.
func decodeError(resp *http.Response) error {
	apiErr := &Error{StatusCode: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}

// Login submits credentials to POST /login. The identity service expects
// a form-encoded body, not JSON. Returns the issued bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{}
	form.Set("username", email)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	var result struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if result.AccessToken == "" {
		return "", fmt.Errorf("login response carried no access token")
	}
	return result.AccessToken, nil
}

// Signup registers a new account via POST /signup with a JSON body.
// It does not authenticate the new user.
func (c *Client) Signup(ctx context.Context, email, password string) (models.Identity, error) {
	b, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return models.Identity{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/signup", bytes.NewReader(b))
	if err != nil {
		return models.Identity{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Identity{}, fmt.Errorf("signup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return models.Identity{}, decodeError(resp)
	}

	var identity models.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return models.Identity{}, fmt.Errorf("decode signup response: %w", err)
	}
	return identity, nil
}

// Me resolves the current credential into an identity via GET /users/me.
func (c *Client) Me(ctx context.Context) (models.Identity, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/users/me", nil)
	if err != nil {
		return models.Identity{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.Identity{}, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.Identity{}, decodeError(resp)
	}

	var identity models.Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return models.Identity{}, fmt.Errorf("decode identity response: %w", err)
	}
	return identity, nil
}

// PredictRequest is the wire shape of POST /predict. Exactly one variant
// is populated: entire-property submissions carry Bedrooms and Bathrooms,
// shared-room submissions carry RoomType and set IsShared.
type PredictRequest struct {
	Bedrooms     string `json:"bedrooms,omitempty"`
	Bathrooms    string `json:"bathrooms,omitempty"`
	PropertyType string `json:"propertyType"`
	DublinArea   string `json:"dublinArea"`
	IsShared     bool   `json:"isShared"`
	RoomType     string `json:"roomType,omitempty"`
}

// Predict posts a prediction request, attaching the credential when one
// is present so the service can record the search. Errors are generic:
// this endpoint's detail field is not reliable enough to surface.
func (c *Client) Predict(ctx context.Context, pr PredictRequest) (models.PredictionResult, error) {
	b, err := json.Marshal(pr)
	if err != nil {
		return models.PredictionResult{}, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/predict", bytes.NewReader(b))
	if err != nil {
		return models.PredictionResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return models.PredictionResult{}, fmt.Errorf("prediction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.PredictionResult{}, fmt.Errorf("prediction service returned status %d", resp.StatusCode)
	}

	var result models.PredictionResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.PredictionResult{}, fmt.Errorf("decode prediction response: %w", err)
	}
	return result, nil
}

// ModelInfo fetches the statistics snapshot for the given model variant.
func (c *Client) ModelInfo(ctx context.Context, variant models.Variant) (models.ModelInfo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/model-info?model_type="+url.QueryEscape(string(variant)), nil)
	if err != nil {
		return models.ModelInfo{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.ModelInfo{}, fmt.Errorf("model info request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.ModelInfo{}, decodeError(resp)
	}

	var info models.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return models.ModelInfo{}, fmt.Errorf("decode model info response: %w", err)
	}
	return info, nil
}

// Healthcheck fetches the backend readiness report.
func (c *Client) Healthcheck(ctx context.Context) (models.HealthStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/healthcheck", nil)
	if err != nil {
		return models.HealthStatus{}, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return models.HealthStatus{}, fmt.Errorf("health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.HealthStatus{}, fmt.Errorf("health service returned status %d", resp.StatusCode)
	}

	var status models.HealthStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return models.HealthStatus{}, fmt.Errorf("decode health response: %w", err)
	}
	return status, nil
}

// SearchHistory fetches the authenticated user's past estimate requests,
// newest first. A missing or rejected credential surfaces as
// ErrNotAuthenticated so callers can prompt for login instead of
// offering a retry.
func (c *Client) SearchHistory(ctx context.Context) ([]models.SearchHistoryItem, error) {
	if c.creds() == "" {
		return nil, ErrNotAuthenticated
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/users/me/search-history", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrNotAuthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var items []models.SearchHistoryItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode history response: %w", err)
	}
	return items, nil
}
