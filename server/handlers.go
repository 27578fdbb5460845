package server

import (
	"encoding/json"
	"net/http"

	"github.com/spotdesk/spotdesk-go/backend"
	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
	"github.com/spotdesk/spotdesk-go/session"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFromError(err), map[string]string{"error": errorMessage(err)})
}

func readJSON(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return false
	}
	return true
}

// statusFromError maps operation errors onto gateway response codes. Backend
// rejections keep their original status.
func statusFromError(err error) int {
	var apiErr *backend.APIError
	switch {
	case apperrors.As(err, &apiErr):
		return apiErr.Status
	case apperrors.Is(err, session.ErrOperationInFlight):
		return http.StatusConflict
	case apperrors.Is(err, session.ErrNotReady):
		return http.StatusServiceUnavailable
	case apperrors.Is(err, session.ErrNoRefreshToken):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrTimeout):
		return http.StatusGatewayTimeout
	case apperrors.Is(err, apperrors.ErrNetwork):
		return http.StatusBadGateway
	case apperrors.Is(err, apperrors.ErrWizardState), apperrors.Is(err, apperrors.ErrSlotUnavailable):
		return http.StatusConflict
	case apperrors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	var apiErr *backend.APIError
	if apperrors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func (s *Server) HealthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
