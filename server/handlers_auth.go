package server

import (
	"net/http"

	"github.com/spotdesk/spotdesk-go/backend"
	"github.com/spotdesk/spotdesk-go/users"
)

type loginRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Role     *users.RoleType `json:"role,omitempty"`
}

// LoginHandler drives session login. The response carries the role-based
// redirect target alongside the user so a thin UI can follow it.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if !readJSON(w, r, &req) {
			return
		}
		user, err := s.session.Login(r.Context(), req.Email, req.Password, req.Role)
		s.metrics.authOp("login", err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"user":     user,
			"redirect": users.DashboardRoute(user.Role),
		})
	}
}

// RegisterHandler creates an account. Unlike login there is no redirect in
// the response; the caller owns what happens next.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.Registration
		if !readJSON(w, r, &req) {
			return
		}
		user, err := s.session.Register(r.Context(), req)
		s.metrics.authOp("register", err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"user": user})
	}
}

// LogoutHandler always succeeds: local cleanup happens regardless of the
// backend, then the client is sent home.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.session.Logout(r.Context())
		s.metrics.authOp("logout", nil)
		http.Redirect(w, r, users.RouteHome, http.StatusSeeOther)
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := s.session.RefreshToken(r.Context())
		s.metrics.authOp("refresh", err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "refreshed"})
	}
}

// SessionHandler exposes the session snapshot for UI hydration.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st := s.session.State()
		writeJSON(w, http.StatusOK, map[string]any{
			"user":            st.User,
			"isAuthenticated": st.Authenticated(),
			"isLoading":       st.Loading,
			"error":           st.Err,
		})
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.ProfileUpdate
		if !readJSON(w, r, &req) {
			return
		}
		user, err := s.session.UpdateProfile(r.Context(), req)
		s.metrics.authOp("update_profile", err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	}
}

func (s *Server) ForgotPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if !readJSON(w, r, &req) {
			return
		}
		msg, err := s.session.ForgotPassword(r.Context(), req.Email)
		s.metrics.authOp("forgot_password", err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}

func (s *Server) ResetPasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token       string `json:"token"`
			NewPassword string `json:"newPassword"`
		}
		if !readJSON(w, r, &req) {
			return
		}
		msg, err := s.session.ResetPassword(r.Context(), req.Token, req.NewPassword)
		s.metrics.authOp("reset_password", err)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
	}
}
