// Package session is the single source of truth for who is logged in. A
// Manager owns the session state, persists the token pair through a
// storage.TokenStore, and drives the external auth API through a backend
// client. State transitions happen only through the named operations here;
// observers receive immutable snapshots.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/spotdesk/spotdesk-go/backend"
	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
	"github.com/spotdesk/spotdesk-go/session/storage"
	"github.com/spotdesk/spotdesk-go/users"
)

// AuthAPI is the slice of the backend client the session manager needs.
type AuthAPI interface {
	Login(ctx context.Context, creds backend.Credentials) (*backend.AuthResponse, error)
	Register(ctx context.Context, reg backend.Registration) (*backend.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*backend.RefreshResponse, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Profile(ctx context.Context, accessToken string) (*users.User, error)
	UpdateProfile(ctx context.Context, accessToken string, update backend.ProfileUpdate) (*users.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

var _ AuthAPI = (*backend.Client)(nil)

// Navigator receives the route changes the session issues as side effects of
// successful login (role dashboard) and logout (home).
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

// Manager holds the session state and exposes the named transition
// operations. Login, Register, RefreshToken and UpdateProfile contend for a
// single in-flight slot: an overlapping call fails fast with
// ErrOperationInFlight instead of racing last-write-wins over shared state.
// Logout deliberately bypasses the slot - local cleanup must never be
// blockable.
type Manager struct {
	api     AuthAPI
	store   storage.TokenStore
	nav     Navigator
	logger  zerolog.Logger
	nowTime func() time.Time

	mu      sync.Mutex
	state   State
	started bool
	subs    []func(State)

	ready    chan struct{}
	readyOne sync.Once
	inflight chan struct{}
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithNavigator sets the navigation sink for post-login/logout redirects.
func WithNavigator(nav Navigator) ManagerOption {
	return func(m *Manager) {
		m.nav = nav
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// NewManager initializes a session manager. The session starts unresolved:
// callers must run Initialize before any user-triggered operation.
func NewManager(api AuthAPI, store storage.TokenStore, options ...ManagerOption) (*Manager, error) {
	if api == nil {
		return nil, errors.New("[NewManager] auth API is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] token store is required")
	}
	m := &Manager{
		api:      api,
		store:    store,
		logger:   log.Logger,
		nowTime:  time.Now,
		state:    State{Loading: true},
		ready:    make(chan struct{}),
		inflight: make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

// TokenStore exposes the underlying credential store for collaborators that
// need the current access token, such as the booking wizard.
func (m *Manager) TokenStore() storage.TokenStore {
	return m.store
}

// State returns a snapshot of the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Ready returns a channel that closes once the initial check has settled.
func (m *Manager) Ready() <-chan struct{} {
	return m.ready
}

// Subscribe registers an observer that receives a snapshot after every state
// transition, starting with the current state.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	st := m.snapshotLocked()
	m.mu.Unlock()
	fn(st)
}

// Initialize performs the initial session check: read the persisted access
// token and, when present, validate it against the profile endpoint with at
// most one refresh attempt on 401. Failures never surface to the caller; the
// session simply resolves to logged-out. Until it settles the state stays
// Loading and Ready() remains open.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.inflight <- struct{}{}
	defer func() { <-m.inflight }()
	defer m.settle()

	pair, err := m.store.Tokens()
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNoStoredTokens) {
			m.logger.Warn().Err(err).Msg("credential storage unreadable, starting logged out")
		}
		m.setUser(nil)
		return
	}

	user, err := m.api.Profile(ctx, pair.AccessToken)
	if err == nil {
		m.setUser(user)
		return
	}

	if backend.IsUnauthorized(err) {
		if rerr := m.refresh(ctx); rerr == nil {
			if pair, err = m.store.Tokens(); err == nil {
				if user, err := m.api.Profile(ctx, pair.AccessToken); err == nil {
					m.setUser(user)
					return
				}
			}
		}
		// Single refresh attempt exhausted.
		m.clearStoredTokens()
		m.setUser(nil)
		return
	}

	// Network or server failure: assume logged out, clear defensively, log only.
	m.logger.Warn().Err(err).Msg("initial session check failed, starting logged out")
	m.clearStoredTokens()
	m.setUser(nil)
}

// Login exchanges credentials for a session. On success both tokens are
// persisted, the returned user becomes the session user, and the navigator is
// sent to the role's dashboard. On failure the error is mirrored into the
// display state and returned; tokens are never written.
func (m *Manager) Login(ctx context.Context, email, password string, role *users.RoleType) (*users.User, error) {
	if err := m.ensureStarted(); err != nil {
		return nil, err
	}
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	m.beginOperation()
	resp, err := m.api.Login(ctx, backend.Credentials{Email: email, Password: password, Role: role})
	if err != nil {
		m.failOperation(err)
		return nil, errors.Wrap(err, "[Manager.Login]")
	}
	if err := m.store.Save(storage.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		m.failOperation(err)
		return nil, errors.Wrap(err, "[Manager.Login] persist tokens")
	}
	user := resp.User
	m.completeOperation(&user)
	m.navigate(users.DashboardRoute(user.Role))
	return &user, nil
}

// Register creates an account and logs it in. Identical to Login except that
// no navigation happens - the caller decides what to show next.
func (m *Manager) Register(ctx context.Context, reg backend.Registration) (*users.User, error) {
	if err := m.ensureStarted(); err != nil {
		return nil, err
	}
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	m.beginOperation()
	resp, err := m.api.Register(ctx, reg)
	if err != nil {
		m.failOperation(err)
		return nil, errors.Wrap(err, "[Manager.Register]")
	}
	if err := m.store.Save(storage.TokenPair{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken}); err != nil {
		m.failOperation(err)
		return nil, errors.Wrap(err, "[Manager.Register] persist tokens")
	}
	user := resp.User
	m.completeOperation(&user)
	return &user, nil
}

// Logout tells the backend to drop the refresh token, then unconditionally
// cleans up locally and navigates home. The server call is best-effort: the
// user is always logged out client-side even when the backend is unreachable,
// and no error ever escapes.
func (m *Manager) Logout(ctx context.Context) {
	if pair, err := m.store.Tokens(); err == nil {
		if err := m.api.Logout(ctx, pair.AccessToken, pair.RefreshToken); err != nil {
			m.logger.Warn().Err(err).Msg("server logout failed, cleaning up locally anyway")
		}
	}
	m.clearStoredTokens()
	m.transition(func(st *State) {
		st.User = nil
		st.Err = "" // a stale auth error must not survive into the anonymous session
	})
	m.settle()
	m.navigate(users.RouteHome)
}

// RefreshToken mints a new access token from the stored refresh token. With
// no refresh token stored it fails fast with ErrNoRefreshToken and touches
// nothing. A rejected refresh token is the one path that forcibly logs the
// user out: both tokens are cleared, the user is cleared, and the error is
// returned.
func (m *Manager) RefreshToken(ctx context.Context) error {
	if err := m.ensureStarted(); err != nil {
		return err
	}
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()
	return m.refresh(ctx)
}

// UpdateProfile sends a partial update and adopts the server's representation
// wholesale. When the stored access token is already expired locally it
// refreshes first instead of burning a guaranteed 401 round-trip; an
// unexpected 401 still gets the single refresh-and-retry.
func (m *Manager) UpdateProfile(ctx context.Context, update backend.ProfileUpdate) (*users.User, error) {
	if err := m.ensureStarted(); err != nil {
		return nil, err
	}
	if err := m.acquire(); err != nil {
		return nil, err
	}
	defer m.release()

	pair, err := m.store.Tokens()
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrUnauthorized, "[Manager.UpdateProfile] no stored credentials")
	}
	if accessTokenExpired(pair.AccessToken, m.nowTime()) {
		if err := m.refresh(ctx); err != nil {
			return nil, errors.Wrap(err, "[Manager.UpdateProfile] pre-emptive refresh")
		}
		if pair, err = m.store.Tokens(); err != nil {
			return nil, errors.Wrap(apperrors.ErrUnauthorized, "[Manager.UpdateProfile] no stored credentials")
		}
	}

	user, err := m.api.UpdateProfile(ctx, pair.AccessToken, update)
	if backend.IsUnauthorized(err) {
		if rerr := m.refresh(ctx); rerr != nil {
			return nil, errors.Wrap(rerr, "[Manager.UpdateProfile] refresh after 401")
		}
		if pair, err = m.store.Tokens(); err != nil {
			return nil, errors.Wrap(apperrors.ErrUnauthorized, "[Manager.UpdateProfile] no stored credentials")
		}
		user, err = m.api.UpdateProfile(ctx, pair.AccessToken, update)
	}
	if err != nil {
		m.mirrorError(err)
		return nil, errors.Wrap(err, "[Manager.UpdateProfile]")
	}
	m.setUser(user)
	return user, nil
}

// ForgotPassword is a stateless one-shot; no session state is touched.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (string, error) {
	msg, err := m.api.ForgotPassword(ctx, email)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.ForgotPassword]")
	}
	return msg, nil
}

// ResetPassword is a stateless one-shot; no session state is touched.
func (m *Manager) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	msg, err := m.api.ResetPassword(ctx, token, newPassword)
	if err != nil {
		return "", errors.Wrap(err, "[Manager.ResetPassword]")
	}
	return msg, nil
}

// ClearError resets the display error, typically when the user starts
// correcting their input.
func (m *Manager) ClearError() {
	m.transition(func(st *State) {
		st.Err = ""
	})
}

// HandleExternalTokenChange resyncs after another process mutated the
// credential store (a second "tab" logging in or out). Tokens gone means the
// other process logged out: transition to anonymous locally. Tokens changed
// means it logged in or refreshed: re-validate against the profile endpoint.
// Wire this to a storage.Watcher.
func (m *Manager) HandleExternalTokenChange(ctx context.Context) {
	pair, err := m.store.Tokens()
	if err != nil {
		m.logger.Info().Msg("credentials removed externally, logging out locally")
		m.setUser(nil)
		return
	}
	user, err := m.api.Profile(ctx, pair.AccessToken)
	if err != nil {
		// Leave the session as-is; the next authenticated call will sort it
		// out. Refreshing here could race the other process's rotation.
		m.logger.Warn().Err(err).Msg("profile fetch after external token change failed")
		return
	}
	m.setUser(user)
}

// refresh performs the refresh exchange. Callers hold the in-flight slot.
func (m *Manager) refresh(ctx context.Context) error {
	pair, err := m.store.Tokens()
	if err != nil || pair.RefreshToken == "" {
		return ErrNoRefreshToken
	}

	resp, err := m.api.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		// Forced logout: the refresh token is spent.
		m.clearStoredTokens()
		m.setUser(nil)
		m.mirrorError(err)
		return errors.Wrap(err, "[Manager.refresh]")
	}

	// Rotation contract: persist a rotated refresh token when the backend
	// returns one; a missing one must not erase the stored refresh token.
	if resp.RefreshToken != nil && *resp.RefreshToken != "" {
		err = m.store.Save(storage.TokenPair{AccessToken: resp.AccessToken, RefreshToken: *resp.RefreshToken})
	} else {
		err = m.store.SaveAccess(resp.AccessToken)
	}
	if err != nil {
		return errors.Wrap(err, "[Manager.refresh] persist tokens")
	}
	return nil
}

func (m *Manager) ensureStarted() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return ErrNotReady
	}
	return nil
}

func (m *Manager) acquire() error {
	select {
	case m.inflight <- struct{}{}:
		return nil
	default:
		return ErrOperationInFlight
	}
}

func (m *Manager) release() {
	<-m.inflight
}

func (m *Manager) settle() {
	m.transition(func(st *State) {
		st.Loading = false
	})
	m.readyOne.Do(func() { close(m.ready) })
}

func (m *Manager) beginOperation() {
	m.transition(func(st *State) {
		st.Loading = true
		st.Err = ""
	})
}

func (m *Manager) failOperation(err error) {
	m.transition(func(st *State) {
		st.Loading = false
		st.Err = displayMessage(err)
	})
}

func (m *Manager) completeOperation(user *users.User) {
	m.transition(func(st *State) {
		st.User = user
		st.Loading = false
		st.Err = ""
	})
}

func (m *Manager) setUser(user *users.User) {
	m.transition(func(st *State) {
		st.User = user
	})
}

func (m *Manager) mirrorError(err error) {
	m.transition(func(st *State) {
		st.Err = displayMessage(err)
	})
}

// transition applies a mutation to a copy of the state, swaps it in, and
// notifies observers outside the lock.
func (m *Manager) transition(mutate func(*State)) {
	m.mu.Lock()
	st := m.state
	mutate(&st)
	m.state = st
	subs := make([]func(State), len(m.subs))
	copy(subs, m.subs)
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// snapshotLocked copies the state, cloning the user so observers cannot
// mutate shared session state. Callers hold m.mu.
func (m *Manager) snapshotLocked() State {
	st := m.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
}

func (m *Manager) clearStoredTokens() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("failed to clear stored tokens")
	}
}

func (m *Manager) navigate(route string) {
	if m.nav == nil {
		return
	}
	m.nav.Navigate(route)
}

// displayMessage turns an operation error into the string mirrored into the
// display state, preferring the server-provided message.
func displayMessage(err error) string {
	var apiErr *backend.APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.Message
	}
	if apperrors.Is(err, apperrors.ErrTimeout) || apperrors.Is(err, apperrors.ErrNetwork) {
		return "network error, please try again"
	}
	return "something went wrong, please try again"
}
