package cli

import (
	"fmt"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/service"
	"github.com/spf13/cobra"
)

func newBookCmd(app *App) *cobra.Command {
	var req service.BookingRequest
	start := newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "book",
		Short: "Book a meeting with a tenant's host",
		Long: "Book a meeting with a tenant's host.\n\n" +
			"Re-running with the same --key resumes a booking that failed part-way\n" +
			"instead of creating a second one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Start = start.t
			id, err := app.Bookings.CreateBooking(cmd.Context(), req)
			if err != nil {
				return err
			}
			b, err := app.Bookings.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBooking(b, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.TenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&req.MeetingTypeID, "meeting-type", "", "Meeting type ID")
	cmd.Flags().Var(start, "start", "Slot start time")
	cmd.Flags().StringVar(&req.Client.Name, "name", "", "Client name")
	cmd.Flags().StringVar(&req.Client.Email, "email", "", "Client email")
	cmd.Flags().StringVar(&req.Client.Phone, "phone", "", "Client phone")
	cmd.Flags().StringVar(&req.Client.Notes, "notes", "", "Notes for the host")
	cmd.Flags().StringVar(&req.IdempotencyKey, "key", "", "Idempotency key")
	for _, f := range []string{"tenant", "meeting-type", "start", "name"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newBookingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "booking",
		Short: "Inspect and clean up bookings",
	}

	cmd.AddCommand(
		newBookingListCmd(app),
		newBookingShowCmd(app),
		newBookingCompensateCmd(app),
	)

	return cmd
}

func newBookingListCmd(app *App) *cobra.Command {
	var tenant, state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a tenant's bookings",
		RunE: func(cmd *cobra.Command, args []string) error {
			all, err := app.Bookings.List(cmd.Context(), tenant)
			if err != nil {
				return err
			}
			bookings := all[:0]
			for _, b := range all {
				if state == "" || b.State == domain.BookingState(state) {
					bookings = append(bookings, b)
				}
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatBookingList(bookings, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&state, "state", "", "Only bookings in this state")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func newBookingShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := app.Bookings.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBooking(b, app.loc()))
			return nil
		},
	}
}

func newBookingCompensateCmd(app *App) *cobra.Command {
	var allFailed bool

	cmd := &cobra.Command{
		Use:   "compensate [ID]",
		Short: "Release the room, event and task of a failed booking",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if allFailed {
				n, err := app.Bookings.CompensateFailed(cmd.Context())
				fmt.Fprintf(out, "Compensated %d failed booking(s)\n", n)
				return err
			}
			if len(args) != 1 {
				return fmt.Errorf("a booking ID or --all-failed is required")
			}
			if err := app.Bookings.Compensate(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(out, "Compensated booking %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&allFailed, "all-failed", false, "Compensate every failed booking")
	return cmd
}
