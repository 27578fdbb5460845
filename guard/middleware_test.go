package guard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spotdesk/spotdesk-go/guard"
	"github.com/spotdesk/spotdesk-go/session"
	"github.com/spotdesk/spotdesk-go/users"
)

// fakeSession is a SessionSource with fully controllable state.
type fakeSession struct {
	state session.State
	ready chan struct{}
}

func newFakeSession(st session.State) *fakeSession {
	f := &fakeSession{state: st, ready: make(chan struct{})}
	close(f.ready)
	return f
}

func (f *fakeSession) State() session.State   { return f.state }
func (f *fakeSession) Ready() <-chan struct{} { return f.ready }

func serveGuarded(t *testing.T, sess guard.SessionSource, allowed ...users.RoleType) (*httptest.ResponseRecorder, bool) {
	t.Helper()

	called := false
	handler := guard.Middleware(sess, allowed...)(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/dashboard/consumer", nil))
	return rec, called
}

func TestMiddlewareAllowsMatchingRole(t *testing.T) {
	sess := newFakeSession(session.State{User: consumer()})

	rec, called := serveGuarded(t, sess, users.RoleConsumer)
	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMiddlewareInjectsUserIntoContext(t *testing.T) {
	user := consumer()
	sess := newFakeSession(session.State{User: user})

	var got *users.User
	handler := guard.Middleware(sess)(func(w http.ResponseWriter, r *http.Request) {
		got = guard.UserFrom(r.Context())
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/dashboard/consumer", nil))

	require.NotNil(t, got)
	require.Equal(t, user.ID, got.ID)
}

func TestMiddlewareRedirectsAnonymousToLogin(t *testing.T) {
	sess := newFakeSession(session.State{})

	rec, called := serveGuarded(t, sess, users.RoleConsumer)
	require.False(t, called)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, users.RouteLogin, rec.Header().Get("Location"))
}

func TestMiddlewareRedirectsMismatchedRole(t *testing.T) {
	sess := newFakeSession(session.State{User: consumer()})

	rec, called := serveGuarded(t, sess, users.RoleStaff)
	require.False(t, called)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, users.RouteConsumerDashboard, rec.Header().Get("Location"))
}

func TestMiddlewareRendersLoadingNotRedirect(t *testing.T) {
	sess := newFakeSession(session.State{Loading: true})

	rec, called := serveGuarded(t, sess, users.RoleConsumer)
	require.False(t, called)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Empty(t, rec.Header().Get("Location"), "loading must never redirect")
	require.JSONEq(t, `{"status":"loading"}`, rec.Body.String())
}

func TestMiddlewareStopsOnCancelledRequest(t *testing.T) {
	sess := &fakeSession{state: session.State{Loading: true}, ready: make(chan struct{})}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/consumer", nil).WithContext(ctx)

	rec := httptest.NewRecorder()
	called := false
	handler := guard.Middleware(sess, users.RoleConsumer)(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	handler(rec, req)

	require.False(t, called)
}
