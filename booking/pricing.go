package booking

import (
	"fmt"
	"math"
	"time"

	"github.com/spotdesk/spotdesk-go/backend"
)

// Price is the client-side breakdown of a booking's cost. All amounts are in
// cents; the backend recomputes the same arithmetic and rejects mismatches.
type Price struct {
	SubtotalCents   int64 `json:"subtotalCents"`
	DiscountCents   int64 `json:"discountCents"`
	ServiceFeeCents int64 `json:"serviceFeeCents"`
	TotalCents      int64 `json:"totalCents"`
}

// Compute prices a booking from its rate card: hourly rate times duration,
// promo applied to the subtotal (clamped so the discount never exceeds it),
// service fee applied to the discounted subtotal.
func Compute(card backend.RateCard, hours float64) Price {
	subtotal := int64(math.Round(float64(card.HourlyRateCents) * hours))
	if subtotal < 0 {
		subtotal = 0
	}

	var discount int64
	if card.Promo != nil {
		switch card.Promo.Kind {
		case backend.PromoPercent:
			discount = int64(math.Round(float64(subtotal) * float64(card.Promo.Amount) / 100))
		case backend.PromoFixed:
			discount = card.Promo.Amount
		}
		if discount < 0 {
			discount = 0
		}
		if discount > subtotal {
			discount = subtotal
		}
	}

	discounted := subtotal - discount
	fee := int64(math.Round(float64(discounted) * card.ServiceFeePct / 100))

	return Price{
		SubtotalCents:   subtotal,
		DiscountCents:   discount,
		ServiceFeeCents: fee,
		TotalCents:      discounted + fee,
	}
}

// SlotHours returns the duration of an HH:MM slot in hours.
func SlotHours(start, end string) (float64, error) {
	s, err := time.Parse("15:04", start)
	if err != nil {
		return 0, fmt.Errorf("invalid start time %q: %w", start, err)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		return 0, fmt.Errorf("invalid end time %q: %w", end, err)
	}
	d := e.Sub(s)
	if d <= 0 {
		return 0, fmt.Errorf("end %q is not after start %q", end, start)
	}
	return d.Hours(), nil
}
