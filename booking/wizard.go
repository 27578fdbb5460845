// Package booking drives the client-side booking wizard: calendar selection,
// details, payment, confirmation. The sequencing lives entirely in the
// client; the backend only sees individual REST calls.
package booking

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/spotdesk/spotdesk-go/backend"
	apperrors "github.com/spotdesk/spotdesk-go/internal/errors"
	"github.com/spotdesk/spotdesk-go/session/storage"
)

// Step is a stage of the booking wizard.
type Step string

const (
	StepCalendar  Step = "calendar"
	StepDetails   Step = "details"
	StepPayment   Step = "payment"
	StepConfirmed Step = "confirmed"
	StepAbandoned Step = "abandoned"
)

// BookingAPI is the slice of the backend client the wizard needs.
type BookingAPI interface {
	Availability(ctx context.Context, accessToken, spaceID, date string) ([]backend.Slot, error)
	Quote(ctx context.Context, accessToken string, req backend.QuoteRequest) (*backend.RateCard, error)
	CreateBooking(ctx context.Context, accessToken string, req backend.BookingRequest) (*backend.Booking, error)
}

var _ BookingAPI = (*backend.Client)(nil)

// Details are the user-entered booking details.
type Details struct {
	Guests int    `json:"guests"`
	Notes  string `json:"notes,omitempty"`
}

// Wizard sequences one booking. Transitions are forward-only and one
// operation runs at a time; out-of-order or overlapping calls fail with
// ErrWizardState. A wizard is not a server resource - abandoning it costs
// nothing.
type Wizard struct {
	id      string
	api     BookingAPI
	store   storage.TokenStore
	spaceID string

	mu      sync.Mutex
	step    Step
	busy    bool
	slot    *backend.Slot
	details Details
	price   *Price
	booking *backend.Booking
}

// NewWizard starts a wizard for one space at the calendar step.
func NewWizard(api BookingAPI, store storage.TokenStore, spaceID string) (*Wizard, error) {
	if api == nil {
		return nil, errors.New("[NewWizard] booking API is required")
	}
	if store == nil {
		return nil, errors.New("[NewWizard] token store is required")
	}
	if spaceID == "" {
		return nil, errors.New("[NewWizard] space ID is required")
	}
	return &Wizard{
		id:      uuid.New().String(),
		api:     api,
		store:   store,
		spaceID: spaceID,
		step:    StepCalendar,
	}, nil
}

func (w *Wizard) ID() string {
	return w.id
}

func (w *Wizard) SpaceID() string {
	return w.spaceID
}

func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Slot returns the selected slot, or nil before calendar selection.
func (w *Wizard) Slot() *backend.Slot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.slot == nil {
		return nil
	}
	s := *w.slot
	return &s
}

// Price returns the computed breakdown, or nil before payment.
func (w *Wizard) Price() *Price {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.price == nil {
		return nil
	}
	p := *w.price
	return &p
}

// Booking returns the confirmed booking, or nil before confirmation.
func (w *Wizard) Booking() *backend.Booking {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.booking == nil {
		return nil
	}
	b := *w.booking
	return &b
}

// SelectSlot checks the requested window against live availability and, when
// it is free, advances to the details step.
func (w *Wizard) SelectSlot(ctx context.Context, date, start, end string) error {
	if err := w.begin(StepCalendar); err != nil {
		return err
	}
	defer w.end()
	access, err := w.accessToken()
	if err != nil {
		return err
	}
	slots, err := w.api.Availability(ctx, access, w.spaceID, date)
	if err != nil {
		return errors.Wrap(err, "[Wizard.SelectSlot] availability")
	}
	for _, slot := range slots {
		if slot.Start == start && slot.End == end {
			if !slot.Available {
				break
			}
			w.mu.Lock()
			chosen := slot
			w.slot = &chosen
			w.step = StepDetails
			w.mu.Unlock()
			return nil
		}
	}
	return apperrors.Wrapf(apperrors.ErrSlotUnavailable, "[Wizard.SelectSlot] %s %s-%s", date, start, end)
}

// EnterDetails validates and records the booking details, advancing to the
// payment step.
func (w *Wizard) EnterDetails(details Details) error {
	if err := w.begin(StepDetails); err != nil {
		return err
	}
	defer w.end()
	if details.Guests < 1 {
		return errors.New("[Wizard.EnterDetails] at least one guest is required")
	}
	w.mu.Lock()
	w.details = details
	w.step = StepPayment
	w.mu.Unlock()
	return nil
}

// Pay fetches the rate card (validating the promo code server-side), computes
// the price client-side, and submits the booking. On success the wizard is
// confirmed and terminal.
func (w *Wizard) Pay(ctx context.Context, promoCode string) (*backend.Booking, Price, error) {
	if err := w.begin(StepPayment); err != nil {
		return nil, Price{}, err
	}
	defer w.end()
	access, err := w.accessToken()
	if err != nil {
		return nil, Price{}, err
	}

	w.mu.Lock()
	slot := *w.slot
	details := w.details
	w.mu.Unlock()

	card, err := w.api.Quote(ctx, access, backend.QuoteRequest{
		SpaceID:   w.spaceID,
		Date:      slot.Date,
		Start:     slot.Start,
		End:       slot.End,
		PromoCode: promoCode,
	})
	if err != nil {
		return nil, Price{}, errors.Wrap(err, "[Wizard.Pay] quote")
	}
	hours, err := SlotHours(slot.Start, slot.End)
	if err != nil {
		return nil, Price{}, errors.Wrap(err, "[Wizard.Pay]")
	}
	price := Compute(*card, hours)

	booked, err := w.api.CreateBooking(ctx, access, backend.BookingRequest{
		SpaceID:    w.spaceID,
		Date:       slot.Date,
		Start:      slot.Start,
		End:        slot.End,
		Guests:     details.Guests,
		Notes:      details.Notes,
		PromoCode:  promoCode,
		TotalCents: price.TotalCents,
	})
	if err != nil {
		return nil, Price{}, errors.Wrap(err, "[Wizard.Pay] create booking")
	}

	w.mu.Lock()
	w.price = &price
	w.booking = booked
	w.step = StepConfirmed
	w.mu.Unlock()
	return booked, price, nil
}

// Abandon terminates an unfinished wizard. Abandoning a confirmed wizard is
// an error - the booking already exists server-side.
func (w *Wizard) Abandon() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return apperrors.Wrapf(apperrors.ErrWizardState, "[Wizard.Abandon] operation in flight")
	}
	if w.step == StepConfirmed {
		return apperrors.Wrapf(apperrors.ErrWizardState, "[Wizard.Abandon] already confirmed")
	}
	w.step = StepAbandoned
	return nil
}

// begin reserves the wizard for a single operation at the given step. The
// reservation is held across the operation's network calls, so a concurrent
// call (a client retry) cannot pass the same step check and submit twice.
func (w *Wizard) begin(step Step) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return apperrors.Wrapf(apperrors.ErrWizardState, "[Wizard] operation in flight")
	}
	if w.step != step {
		return apperrors.Wrapf(apperrors.ErrWizardState, "[Wizard] in step %q, expected %q", w.step, step)
	}
	w.busy = true
	return nil
}

func (w *Wizard) end() {
	w.mu.Lock()
	w.busy = false
	w.mu.Unlock()
}

func (w *Wizard) accessToken() (string, error) {
	pair, err := w.store.Tokens()
	if err != nil {
		return "", errors.Wrap(apperrors.ErrUnauthorized, "[Wizard] no stored credentials")
	}
	return pair.AccessToken, nil
}
