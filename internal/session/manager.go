package session

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/conorls/dublinrent/internal/models"
)

// State is the authentication state of the session.
type State int

const (
	// StateUnauthenticated means no live credential exists.
	StateUnauthenticated State = iota
	// StateResolving means a credential exists and the identity behind it
	// is being fetched. Callers must treat this as a blocking gate, not
	// as unauthenticated.
	StateResolving
	// StateAuthenticated means the credential resolved to an identity.
	StateAuthenticated
	// StateError is a transient failure state; it always collapses back
	// to StateUnauthenticated.
	StateError
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateResolving:
		return "resolving"
	case StateAuthenticated:
		return "authenticated"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Route identifies a UI surface the manager navigates to after an auth
// transition.
type Route string

const (
	// RouteHome is the landing surface shown after login.
	RouteHome Route = "/"
	// RouteLogin is the login surface.
	RouteLogin Route = "/login"
	// RouteLoginRegistered is the login surface with a signup-success
	// indicator.
	RouteLoginRegistered Route = "/login?registered=1"
)

// Navigator receives navigation side effects. Navigation always happens
// after the state and storage updates it follows from.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route Route)

// Navigate calls f(route).
func (f NavigatorFunc) Navigate(route Route) { f(route) }

// IdentityClient is the slice of the backend API the manager needs.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, email, password string) (models.Identity, error)
	Me(ctx context.Context) (models.Identity, error)
}

// Manager owns the single live credential and the identity derived from
// it. All other components read the credential through Token at the
// moment of each outbound call and never mutate it.
type Manager struct {
	store CredentialStore
	nav   Navigator
	log   *zap.Logger

	mu       sync.Mutex
	client   IdentityClient
	state    State
	token    string
	identity *models.Identity
	onChange func(State)
}

// NewManager constructs a Manager in the unauthenticated state. The
// identity client is attached separately with SetClient because the API
// client itself reads the credential from the manager.
func NewManager(store CredentialStore, nav Navigator, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store: store,
		nav:   nav,
		log:   log,
		state: StateUnauthenticated,
	}
}

// SetClient attaches the identity client used for login, signup and
// identity resolution.
func (m *Manager) SetClient(client IdentityClient) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.client = client
}

// OnStateChange registers a listener invoked after every state
// transition. At most one listener is supported.
func (m *Manager) OnStateChange(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns the resolved identity, or nil when not authenticated.
func (m *Manager) Identity() *models.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	id := *m.identity
	return &id
}

// Token returns the live credential, or "" when there is none. It
// satisfies api.CredentialSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}

// Bootstrap rehydrates the session on process start. With no stored
// credential the session is unauthenticated; with one, the state is
// Resolving until the identity service confirms or rejects it. A
// rejected credential is removed from storage and never retried.
func (m *Manager) Bootstrap(ctx context.Context) error {
	token, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if token == "" {
		m.setState(StateUnauthenticated)
		return nil
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	m.setState(StateResolving)

	m.resolveIdentity(ctx)
	return nil
}

// resolveIdentity exchanges the current credential for an identity. Any
// rejection is terminal for this session: the credential is dropped from
// memory and storage and the state collapses to unauthenticated.
func (m *Manager) resolveIdentity(ctx context.Context) {
	identity, err := m.client.Me(ctx)
	if err != nil {
		m.log.Warn("identity resolution failed, clearing credential", zap.Error(err))
		m.invalidate()
		return
	}

	m.mu.Lock()
	m.identity = &identity
	m.mu.Unlock()
	m.setState(StateAuthenticated)
	m.log.Info("session authenticated", zap.String("email", identity.Email))
}

// invalidate drops the credential from memory and storage together so no
// caller observes one without the other.
func (m *Manager) invalidate() {
	m.mu.Lock()
	m.token = ""
	m.identity = nil
	if err := m.store.Clear(); err != nil {
		m.log.Error("failed to clear credential store", zap.Error(err))
	}
	m.mu.Unlock()
	m.setState(StateUnauthenticated)
}

// Login authenticates with the identity service and, on success, stores
// the issued credential, resolves the identity and navigates to the
// landing surface. The error is returned to the caller for inline
// display; the service-provided detail is preserved when present.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setState(StateResolving)

	token, err := m.client.Login(ctx, email, password)
	if err != nil {
		m.setState(StateError)
		m.setState(StateUnauthenticated)
		return fmt.Errorf("login failed: %w", err)
	}

	m.mu.Lock()
	m.token = token
	if serr := m.store.Save(token); serr != nil {
		m.log.Error("failed to persist credential", zap.Error(serr))
	}
	m.mu.Unlock()

	m.resolveIdentity(ctx)
	if m.State() != StateAuthenticated {
		return fmt.Errorf("login failed: credential was not accepted")
	}

	m.nav.Navigate(RouteHome)
	return nil
}

// Signup registers a new account. It never authenticates: on success it
// navigates to the login surface with a success indicator and the user
// logs in separately.
func (m *Manager) Signup(ctx context.Context, email, password string) error {
	if _, err := m.client.Signup(ctx, email, password); err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}
	m.nav.Navigate(RouteLoginRegistered)
	return nil
}

// Logout clears the identity, the credential and its stored copy, then
// navigates to the login surface. Safe to call when already logged out.
func (m *Manager) Logout() {
	m.invalidate()
	m.nav.Navigate(RouteLogin)
	m.log.Info("session cleared")
}
