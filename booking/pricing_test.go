package booking_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spotdesk/spotdesk-go/backend"
	"github.com/spotdesk/spotdesk-go/booking"
)

func TestComputeWithoutPromo(t *testing.T) {
	price := booking.Compute(backend.RateCard{HourlyRateCents: 5000, ServiceFeePct: 10}, 3)

	require.Equal(t, int64(15000), price.SubtotalCents)
	require.Equal(t, int64(0), price.DiscountCents)
	require.Equal(t, int64(1500), price.ServiceFeeCents)
	require.Equal(t, int64(16500), price.TotalCents)
}

func TestComputePercentPromo(t *testing.T) {
	card := backend.RateCard{
		HourlyRateCents: 5000,
		ServiceFeePct:   10,
		Promo:           &backend.Promo{Code: "SAVE20", Kind: backend.PromoPercent, Amount: 20},
	}

	price := booking.Compute(card, 2)
	require.Equal(t, int64(10000), price.SubtotalCents)
	require.Equal(t, int64(2000), price.DiscountCents)
	// Fee applies to the discounted subtotal, not the raw one.
	require.Equal(t, int64(800), price.ServiceFeeCents)
	require.Equal(t, int64(8800), price.TotalCents)
}

func TestComputeFixedPromo(t *testing.T) {
	card := backend.RateCard{
		HourlyRateCents: 5000,
		ServiceFeePct:   10,
		Promo:           &backend.Promo{Code: "TENOFF", Kind: backend.PromoFixed, Amount: 1000},
	}

	price := booking.Compute(card, 2)
	require.Equal(t, int64(1000), price.DiscountCents)
	require.Equal(t, int64(900), price.ServiceFeeCents)
	require.Equal(t, int64(9900), price.TotalCents)
}

func TestComputeClampsDiscountToSubtotal(t *testing.T) {
	card := backend.RateCard{
		HourlyRateCents: 1000,
		ServiceFeePct:   10,
		Promo:           &backend.Promo{Code: "HUGE", Kind: backend.PromoFixed, Amount: 99999},
	}

	price := booking.Compute(card, 1)
	require.Equal(t, int64(1000), price.SubtotalCents)
	require.Equal(t, int64(1000), price.DiscountCents, "discount clamps at the subtotal")
	require.Equal(t, int64(0), price.ServiceFeeCents)
	require.Equal(t, int64(0), price.TotalCents, "a total is never negative")
}

func TestComputeFractionalHours(t *testing.T) {
	price := booking.Compute(backend.RateCard{HourlyRateCents: 5000, ServiceFeePct: 0}, 1.5)

	require.Equal(t, int64(7500), price.SubtotalCents)
	require.Equal(t, int64(7500), price.TotalCents)
}

func TestSlotHours(t *testing.T) {
	hours, err := booking.SlotHours("09:00", "12:30")
	require.NoError(t, err)
	require.InDelta(t, 3.5, hours, 1e-9)
}

func TestSlotHoursRejectsInvertedWindow(t *testing.T) {
	_, err := booking.SlotHours("12:00", "09:00")
	require.Error(t, err)

	_, err = booking.SlotHours("12:00", "12:00")
	require.Error(t, err)
}

func TestSlotHoursRejectsMalformedTime(t *testing.T) {
	_, err := booking.SlotHours("9am", "12:00")
	require.Error(t, err)
}
