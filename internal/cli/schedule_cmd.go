package cli

import (
	"fmt"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/scheduler"
	"github.com/alexanderramin/horizon/internal/service"
	"github.com/spf13/cobra"
)

func newSlotsCmd(app *App) *cobra.Command {
	var tenant, meetingType string
	var duration int
	var all bool
	date := newDateFlag(app)

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "List bookable slots of a tenant's host on one day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := date.orToday()
			var opts []service.SlotOption
			if all {
				opts = append(opts, service.WithBlocked())
			}
			var res scheduler.SlotResult
			var err error
			if meetingType != "" {
				res, err = app.Slots.SlotsForMeetingType(cmd.Context(), tenant, meetingType, day, opts...)
			} else {
				res, err = app.Slots.GetAvailableSlots(cmd.Context(), tenant, day, duration, opts...)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatSlots(res, day, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&meetingType, "meeting-type", "", "Meeting type ID; sets the duration")
	cmd.Flags().IntVar(&duration, "duration", 30, "Meeting length in minutes")
	cmd.Flags().Var(date, "date", "Day to list (YYYY-MM-DD, today, tomorrow)")
	cmd.Flags().BoolVar(&all, "all", false, "Include blocked slots")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func newAvailabilityCmd(app *App) *cobra.Command {
	var participant string
	var rng *rangeFlags

	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show a participant's free time per working day",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.resolve()
			if err != nil {
				return err
			}
			days, err := app.Availability.Availability(cmd.Context(), participant, from, to)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAvailability(days, app.loc()))
			return nil
		},
	}

	rng = addRangeFlags(app, cmd.Flags(), 5)
	cmd.Flags().StringVar(&participant, "participant", "", "Participant ID")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}

func newMeetCmd(app *App) *cobra.Command {
	var participants []string
	var duration int
	date := newDateFlag(app)

	cmd := &cobra.Command{
		Use:   "meet",
		Short: "Find times when all participants are free",
		RunE: func(cmd *cobra.Command, args []string) error {
			times, err := app.Meetings.FindOptimalMeetingTime(cmd.Context(), participants, duration, date.ptr())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMeetingTimes(times, duration, app.loc()))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&participants, "participant", nil, "Participant ID (repeatable)")
	cmd.Flags().IntVar(&duration, "duration", 30, "Meeting length in minutes")
	cmd.Flags().Var(date, "date", "Preferred day; default searches the coming days")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}
