package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Slot is one bookable window of a space on a given date.
type Slot struct {
	SpaceID   string `json:"spaceId"`
	Date      string `json:"date"`  // YYYY-MM-DD
	Start     string `json:"start"` // HH:MM
	End       string `json:"end"`   // HH:MM
	Available bool   `json:"available"`
}

// PromoKind discriminates how a promo amount is applied.
type PromoKind string

const (
	PromoPercent PromoKind = "percent" // Amount is percent points off the subtotal
	PromoFixed   PromoKind = "fixed"   // Amount is cents off the subtotal
)

// Promo is a validated promo code as returned by the quote endpoint.
type Promo struct {
	Code   string    `json:"code"`
	Kind   PromoKind `json:"kind"`
	Amount int64     `json:"amount"`
}

// RateCard holds the pricing inputs for one prospective booking. The total is
// computed client-side from these.
type RateCard struct {
	HourlyRateCents int64   `json:"hourlyRateCents"`
	ServiceFeePct   float64 `json:"serviceFeePct"`
	Promo           *Promo  `json:"promo,omitempty"`
}

// QuoteRequest asks the backend for the rate card of a prospective booking.
type QuoteRequest struct {
	SpaceID   string `json:"spaceId"`
	Date      string `json:"date"`
	Start     string `json:"start"`
	End       string `json:"end"`
	PromoCode string `json:"promoCode,omitempty"`
}

// BookingRequest creates a booking. TotalCents is the client-computed price;
// the backend recomputes and rejects on mismatch.
type BookingRequest struct {
	SpaceID    string `json:"spaceId"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Guests     int    `json:"guests"`
	Notes      string `json:"notes,omitempty"`
	PromoCode  string `json:"promoCode,omitempty"`
	TotalCents int64  `json:"totalCents"`
}

// Booking is the backend's record of a confirmed booking.
type Booking struct {
	ID         string `json:"id"`
	SpaceID    string `json:"spaceId"`
	Status     string `json:"status"`
	TotalCents int64  `json:"totalCents"`
}

// Availability lists the slots of a space on a date.
func (c *Client) Availability(ctx context.Context, accessToken, spaceID, date string) ([]Slot, error) {
	path := fmt.Sprintf("/spaces/%s/availability?date=%s", url.PathEscape(spaceID), url.QueryEscape(date))
	var slots []Slot
	if err := c.do(ctx, http.MethodGet, path, accessToken, nil, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Quote fetches the rate card for a prospective booking, validating the promo
// code server-side when one is supplied.
func (c *Client) Quote(ctx context.Context, accessToken string, req QuoteRequest) (*RateCard, error) {
	var card RateCard
	if err := c.do(ctx, http.MethodPost, "/bookings/quote", accessToken, req, &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// CreateBooking submits the booking and charges the stored payment method.
func (c *Client) CreateBooking(ctx context.Context, accessToken string, req BookingRequest) (*Booking, error) {
	var booking Booking
	if err := c.do(ctx, http.MethodPost, "/bookings", accessToken, req, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}
