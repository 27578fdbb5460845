package guard

import (
	"context"
	"net/http"
	"time"

	"github.com/spotdesk/spotdesk-go/session"
	"github.com/spotdesk/spotdesk-go/users"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated user injected by the middleware.
const ContextKeyUser ContextKey = "user"

// SessionSource is the slice of the session manager the middleware needs.
type SessionSource interface {
	State() session.State
	Ready() <-chan struct{}
}

const defaultReadyTimeout = 5 * time.Second

// Middleware wraps a handler so it only runs for an authenticated user whose
// role is in the allowed set. It waits for the initial session check to
// settle before deciding; if the check has still not settled after the ready
// timeout the response is a neutral 503, never a redirect.
func Middleware(sess SessionSource, allowed ...users.RoleType) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-sess.Ready():
			case <-r.Context().Done():
				return
			case <-time.After(defaultReadyTimeout):
				loadingResponse(w)
				return
			}

			st := sess.State()
			switch d := Decide(st, allowed...); d.Action {
			case ActionWait:
				loadingResponse(w)
			case ActionRedirect:
				http.Redirect(w, r, d.Route, http.StatusSeeOther)
			default:
				ctx := context.WithValue(r.Context(), ContextKeyUser, st.User)
				next(w, r.WithContext(ctx))
			}
		}
	}
}

// UserFrom extracts the user the middleware injected, or nil.
func UserFrom(ctx context.Context) *users.User {
	user, _ := ctx.Value(ContextKeyUser).(*users.User)
	return user
}

func loadingResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", "1")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte(`{"status":"loading"}`))
}
