package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/spotdesk/spotdesk-go/booking"
)

func bookCmd() *cobra.Command {
	var (
		spaceID string
		date    string
		start   string
		end     string
		guests  int
		notes   string
		promo   string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a space: pick a slot, confirm details, pay",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			a.session.Initialize(cmd.Context())
			if !a.session.State().Authenticated() {
				return fmt.Errorf("not logged in, run 'spotdesk login' first")
			}

			wizard, err := booking.NewWizard(a.client, a.store, spaceID)
			if err != nil {
				return err
			}
			if err := wizard.SelectSlot(cmd.Context(), date, start, end); err != nil {
				return err
			}
			if err := wizard.EnterDetails(booking.Details{Guests: guests, Notes: notes}); err != nil {
				return err
			}
			booked, price, err := wizard.Pay(cmd.Context(), promo)
			if err != nil {
				return err
			}

			fmt.Printf("Booked %s on %s %s-%s\n", spaceID, date, start, end)
			fmt.Printf("  subtotal %s  discount %s  fee %s  total %s\n",
				cents(price.SubtotalCents), cents(price.DiscountCents), cents(price.ServiceFeeCents), cents(price.TotalCents))
			fmt.Printf("  confirmation %s (%s)\n", booked.ID, booked.Status)
			return nil
		},
	}
	cmd.Flags().StringVar(&spaceID, "space", "", "space ID")
	cmd.Flags().StringVar(&date, "date", "", "booking date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&start, "start", "", "slot start (HH:MM)")
	cmd.Flags().StringVar(&end, "end", "", "slot end (HH:MM)")
	cmd.Flags().IntVar(&guests, "guests", 1, "number of guests")
	cmd.Flags().StringVar(&notes, "notes", "", "notes for the host")
	cmd.Flags().StringVar(&promo, "promo", "", "promo code")
	_ = cmd.MarkFlagRequired("space")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func cents(v int64) string {
	return fmt.Sprintf("%d.%02d", v/100, v%100)
}
