// Package guard gates access to protected views based on session state and
// role. The decision core is pure; the HTTP middleware adapts it to the local
// gateway's routes.
package guard

import (
	"github.com/spotdesk/spotdesk-go/session"
	"github.com/spotdesk/spotdesk-go/users"
)

// Action is the outcome of a guard decision.
type Action string

const (
	// ActionWait: session unresolved - render a neutral loading state,
	// never redirect (redirecting before the initial check settles causes
	// flicker and bogus login bounces).
	ActionWait Action = "wait"
	// ActionAllow: render the protected view.
	ActionAllow Action = "allow"
	// ActionRedirect: send the visitor to Decision.Route.
	ActionRedirect Action = "redirect"
)

// Decision is the guard's verdict for one view request.
type Decision struct {
	Action Action
	Route  string // destination when Action is ActionRedirect
}

// Decide evaluates session state against an allowed role set. An empty
// allowed set means any authenticated user may pass. Unauthenticated visitors
// are sent to the login route; authenticated but role-mismatched visitors are
// sent to their own dashboard.
func Decide(st session.State, allowed ...users.RoleType) Decision {
	if !st.Resolved() {
		return Decision{Action: ActionWait}
	}
	if !st.Authenticated() {
		return Decision{Action: ActionRedirect, Route: users.RouteLogin}
	}
	if users.HasRole(st.User.Role, allowed) {
		return Decision{Action: ActionAllow}
	}
	return Decision{Action: ActionRedirect, Route: users.DashboardRoute(st.User.Role)}
}
