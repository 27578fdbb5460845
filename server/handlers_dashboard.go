package server

import (
	"net/http"

	"github.com/spotdesk/spotdesk-go/guard"
)

// DashboardHandler is the protected view behind the role guard. The gateway
// renders no UI; it answers with the dashboard identity and the user the
// guard admitted, which is all a local front needs.
func (s *Server) DashboardHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"dashboard": name,
			"user":      guard.UserFrom(r.Context()),
		})
	}
}
