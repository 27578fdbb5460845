package server

import (
	"net/http"

	"github.com/spotdesk/spotdesk-go/booking"
	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
)

// CreateWizardHandler starts a booking wizard for a space and returns its ID.
func (s *Server) CreateWizardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			SpaceID string `json:"spaceId"`
		}
		if !readJSON(w, r, &req) {
			return
		}
		wizard, err := booking.NewWizard(s.booking, s.session.TokenStore(), req.SpaceID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.wizardLock.Lock()
		s.wizards[wizard.ID()] = wizard
		s.wizardLock.Unlock()
		s.metrics.wizardStep(string(booking.StepCalendar))
		writeJSON(w, http.StatusCreated, map[string]string{
			"id":   wizard.ID(),
			"step": string(wizard.Step()),
		})
	}
}

func (s *Server) WizardStateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, ok := s.wizard(r)
		if !ok {
			writeError(w, apperrors.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"id":      wizard.ID(),
			"spaceId": wizard.SpaceID(),
			"step":    wizard.Step(),
			"slot":    wizard.Slot(),
			"price":   wizard.Price(),
			"booking": wizard.Booking(),
		})
	}
}

func (s *Server) SelectSlotHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, ok := s.wizard(r)
		if !ok {
			writeError(w, apperrors.ErrNotFound)
			return
		}
		var req struct {
			Date  string `json:"date"`
			Start string `json:"start"`
			End   string `json:"end"`
		}
		if !readJSON(w, r, &req) {
			return
		}
		if err := wizard.SelectSlot(r.Context(), req.Date, req.Start, req.End); err != nil {
			writeError(w, err)
			return
		}
		s.metrics.wizardStep(string(booking.StepDetails))
		writeJSON(w, http.StatusOK, map[string]string{"step": string(wizard.Step())})
	}
}

func (s *Server) EnterDetailsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, ok := s.wizard(r)
		if !ok {
			writeError(w, apperrors.ErrNotFound)
			return
		}
		var req booking.Details
		if !readJSON(w, r, &req) {
			return
		}
		if err := wizard.EnterDetails(req); err != nil {
			writeError(w, err)
			return
		}
		s.metrics.wizardStep(string(booking.StepPayment))
		writeJSON(w, http.StatusOK, map[string]string{"step": string(wizard.Step())})
	}
}

func (s *Server) PayHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, ok := s.wizard(r)
		if !ok {
			writeError(w, apperrors.ErrNotFound)
			return
		}
		var req struct {
			PromoCode string `json:"promoCode"`
		}
		if !readJSON(w, r, &req) {
			return
		}
		booked, price, err := wizard.Pay(r.Context(), req.PromoCode)
		if err != nil {
			writeError(w, err)
			return
		}
		s.metrics.wizardStep(string(booking.StepConfirmed))
		writeJSON(w, http.StatusOK, map[string]any{
			"step":    string(wizard.Step()),
			"booking": booked,
			"price":   price,
		})
	}
}

func (s *Server) AbandonHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		wizard, ok := s.wizard(r)
		if !ok {
			writeError(w, apperrors.ErrNotFound)
			return
		}
		if err := wizard.Abandon(); err != nil {
			writeError(w, err)
			return
		}
		s.wizardLock.Lock()
		delete(s.wizards, wizard.ID())
		s.wizardLock.Unlock()
		s.metrics.wizardStep(string(booking.StepAbandoned))
		writeJSON(w, http.StatusOK, map[string]string{"step": string(booking.StepAbandoned)})
	}
}

func (s *Server) wizard(r *http.Request) (*booking.Wizard, bool) {
	id := r.PathValue("id")
	s.wizardLock.RLock()
	defer s.wizardLock.RUnlock()
	wizard, ok := s.wizards[id]
	return wizard, ok
}
