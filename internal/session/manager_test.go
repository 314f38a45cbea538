package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conorls/dublinrent/internal/models"
)

// memStore is an in-memory CredentialStore.
type memStore struct {
	token   string
	loadErr error
}

func (m *memStore) Load() (string, error) { return m.token, m.loadErr }
func (m *memStore) Save(token string) error {
	m.token = token
	return nil
}
func (m *memStore) Clear() error {
	m.token = ""
	return nil
}

// fakeIdentityClient scripts the identity service responses.
type fakeIdentityClient struct {
	loginToken string
	loginErr   error
	signupErr  error
	meIdentity models.Identity
	meErr      error
	meCalls    int
}

func (f *fakeIdentityClient) Login(ctx context.Context, email, password string) (string, error) {
	return f.loginToken, f.loginErr
}

func (f *fakeIdentityClient) Signup(ctx context.Context, email, password string) (models.Identity, error) {
	return models.Identity{ID: 1, Email: email}, f.signupErr
}

func (f *fakeIdentityClient) Me(ctx context.Context) (models.Identity, error) {
	f.meCalls++
	return f.meIdentity, f.meErr
}

// recordingNav captures navigation side effects in order.
type recordingNav struct {
	routes []Route
}

func (n *recordingNav) Navigate(route Route) { n.routes = append(n.routes, route) }

func newTestManager(store CredentialStore, client IdentityClient) (*Manager, *recordingNav) {
	nav := &recordingNav{}
	m := NewManager(store, nav, nil)
	m.SetClient(client)
	return m, nav
}

func TestBootstrap_NoStoredCredential(t *testing.T) {
	client := &fakeIdentityClient{}
	m, _ := newTestManager(&memStore{}, client)

	require.NoError(t, m.Bootstrap(context.Background()))
	require.Equal(t, StateUnauthenticated, m.State())
	require.Empty(t, m.Token())
	require.Zero(t, client.meCalls, "no identity call expected without a credential")
}

func TestBootstrap_ValidCredential(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeIdentityClient{meIdentity: models.Identity{ID: 7, Email: "a@b.ie"}}
	m, _ := newTestManager(store, client)

	require.NoError(t, m.Bootstrap(context.Background()))
	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, "tok", m.Token())
	require.NotNil(t, m.Identity())
	require.Equal(t, "a@b.ie", m.Identity().Email)
}

func TestBootstrap_RejectedCredential(t *testing.T) {
	store := &memStore{token: "expired"}
	client := &fakeIdentityClient{meErr: errors.New("401")}
	m, _ := newTestManager(store, client)

	require.NoError(t, m.Bootstrap(context.Background()))
	require.Equal(t, StateUnauthenticated, m.State())
	require.Empty(t, m.Token(), "rejected credential must be dropped from memory")
	require.Empty(t, store.token, "rejected credential must be dropped from storage")
	require.Nil(t, m.Identity())

	// A second bootstrap with the now-empty store stays unauthenticated
	// and never retries the rejected credential.
	meCallsBefore := client.meCalls
	require.NoError(t, m.Bootstrap(context.Background()))
	require.Equal(t, StateUnauthenticated, m.State())
	require.Equal(t, meCallsBefore, client.meCalls)
}

func TestBootstrap_ResolvingBeforeOutcome(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeIdentityClient{meIdentity: models.Identity{ID: 1, Email: "a@b.ie"}}
	m, _ := newTestManager(store, client)

	var seen []State
	m.OnStateChange(func(s State) { seen = append(seen, s) })

	require.NoError(t, m.Bootstrap(context.Background()))
	require.Equal(t, []State{StateResolving, StateAuthenticated}, seen)
}

func TestLogin_Success(t *testing.T) {
	store := &memStore{}
	client := &fakeIdentityClient{
		loginToken: "issued-tok",
		meIdentity: models.Identity{ID: 3, Email: "a@b.ie"},
	}
	m, nav := newTestManager(store, client)

	require.NoError(t, m.Login(context.Background(), "a@b.ie", "pw"))
	require.Equal(t, StateAuthenticated, m.State())
	require.Equal(t, "issued-tok", m.Token())
	require.Equal(t, "issued-tok", store.token, "credential must be persisted")
	require.Equal(t, []Route{RouteHome}, nav.routes, "login navigates to the landing surface")
}

func TestLogin_Failure(t *testing.T) {
	client := &fakeIdentityClient{loginErr: errors.New("Incorrect email or password")}
	m, nav := newTestManager(&memStore{}, client)

	err := m.Login(context.Background(), "a@b.ie", "wrong")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Incorrect email or password",
		"service detail must be preserved for inline display")
	require.Equal(t, StateUnauthenticated, m.State())
	require.Empty(t, nav.routes, "failed login must not navigate")
}

func TestLogin_CredentialNotAccepted(t *testing.T) {
	store := &memStore{}
	client := &fakeIdentityClient{loginToken: "tok", meErr: errors.New("401")}
	m, nav := newTestManager(store, client)

	err := m.Login(context.Background(), "a@b.ie", "pw")
	require.Error(t, err)
	require.Equal(t, StateUnauthenticated, m.State())
	require.Empty(t, m.Token())
	require.Empty(t, store.token)
	require.Empty(t, nav.routes)
}

func TestSignup_Success(t *testing.T) {
	client := &fakeIdentityClient{}
	m, nav := newTestManager(&memStore{}, client)

	require.NoError(t, m.Signup(context.Background(), "new@b.ie", "pw"))
	require.Equal(t, StateUnauthenticated, m.State(), "signup must not authenticate")
	require.Empty(t, m.Token())
	require.Equal(t, []Route{RouteLoginRegistered}, nav.routes)
}

func TestSignup_Failure(t *testing.T) {
	client := &fakeIdentityClient{signupErr: errors.New("Email already registered")}
	m, nav := newTestManager(&memStore{}, client)

	err := m.Signup(context.Background(), "dup@b.ie", "pw")
	require.Error(t, err)
	require.Contains(t, err.Error(), "Email already registered")
	require.Empty(t, nav.routes)
}

func TestLogout(t *testing.T) {
	store := &memStore{token: "tok"}
	client := &fakeIdentityClient{meIdentity: models.Identity{ID: 1, Email: "a@b.ie"}}
	m, nav := newTestManager(store, client)
	require.NoError(t, m.Bootstrap(context.Background()))
	require.Equal(t, StateAuthenticated, m.State())

	m.Logout()

	require.Equal(t, StateUnauthenticated, m.State())
	require.Empty(t, m.Token(), "subsequent outbound calls must carry no credential")
	require.Empty(t, store.token)
	require.Nil(t, m.Identity())
	require.Equal(t, RouteLogin, nav.routes[len(nav.routes)-1])

	// Logout is idempotent.
	m.Logout()
	require.Equal(t, StateUnauthenticated, m.State())
}
