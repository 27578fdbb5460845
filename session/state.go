package session

import "github.com/spotdesk/spotdesk-go/users"

// State is a snapshot of the session. Authentication status is always derived
// from user presence; it is never stored, so it cannot drift.
type State struct {
	User    *users.User // nil when anonymous
	Loading bool        // true until the initial check settles or while an operation is in flight
	Err     string      // human-readable message for passive display, empty when clear
}

// Authenticated reports whether a user is present.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Resolved reports whether the session has settled - consumers of protected
// views must not redirect while the session is still unresolved.
func (s State) Resolved() bool {
	return !s.Loading
}
