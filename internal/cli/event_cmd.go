package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/ics"
	"github.com/alexanderramin/horizon/internal/service"
	"github.com/spf13/cobra"
)

func newEventCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage calendar events",
	}

	cmd.AddCommand(
		newEventListCmd(app),
		newEventCreateCmd(app),
		newEventUpdateCmd(app),
		newEventDeleteCmd(app),
		newEventCheckCmd(app),
		newEventImportCmd(app),
	)

	return cmd
}

func conflictView(det *service.ConflictDetection) *formatter.ConflictView {
	if det == nil {
		return nil
	}
	return &formatter.ConflictView{
		HasConflict: det.HasConflict,
		Conflicts:   det.ConflictingEvents,
		Suggestions: det.SuggestedTimes,
	}
}

func newEventListCmd(app *App) *cobra.Command {
	var participant string
	var rng *rangeFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List events a participant owns or attends",
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := rng.resolve()
			if err != nil {
				return err
			}
			events, err := app.Events.GetEvents(cmd.Context(), participant, &from, &to)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventList(events, app.loc()))
			return nil
		},
	}

	rng = addRangeFlags(app, cmd.Flags(), 7)
	cmd.Flags().StringVar(&participant, "participant", "", "Participant ID")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}

func newEventCreateCmd(app *App) *cobra.Command {
	var owner, tenant, title, description, kind, room, rrule, tz string
	var attendees []string
	var reminder int
	var allDay, force bool
	start, end := newTimeFlag(app), newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event, refusing overlaps unless --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := &domain.CalendarEvent{
				TenantID:    tenant,
				OwnerID:     owner,
				Title:       title,
				Description: description,
				Start:       start.t,
				End:         end.t,
				Kind:        domain.EventKind(kind),
				Attendees:   attendees,
				RoomRef:     room,
				AllDay:      allDay,
				ReminderMin: reminder,
				Recurrence:  rrule,
				Timezone:    tz,
			}
			saved, det, err := app.Events.CreateEvent(cmd.Context(), ev, force)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventSaved(saved, conflictView(det), app.loc()))
			if saved == nil {
				return errNotSaved
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Owning participant ID")
	cmd.Flags().StringVar(&tenant, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&title, "title", "", "Event title")
	cmd.Flags().StringVar(&description, "description", "", "Event description")
	cmd.Flags().Var(start, "start", "Start time")
	cmd.Flags().Var(end, "end", "End time")
	cmd.Flags().StringVar(&kind, "kind", string(domain.EventMeeting), "meeting, call, reminder, deadline")
	cmd.Flags().StringSliceVar(&attendees, "attendee", nil, "Attending participant ID (repeatable)")
	cmd.Flags().StringVar(&room, "room", "", "Room or call link")
	cmd.Flags().StringVar(&rrule, "rrule", "", "Recurrence rule, e.g. FREQ=WEEKLY;BYDAY=MO")
	cmd.Flags().StringVar(&tz, "timezone", "", "IANA zone the series repeats in (default: owner's zone)")
	cmd.Flags().IntVar(&reminder, "reminder", 0, "Reminder minutes before start")
	cmd.Flags().BoolVar(&allDay, "all-day", false, "All-day event")
	cmd.Flags().BoolVar(&force, "force", false, "Save even when it overlaps other commitments")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newEventUpdateCmd(app *App) *cobra.Command {
	var title, description, room, rrule, tz string
	var attendees []string
	var force bool
	start, end := newTimeFlag(app), newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an event; moves are conflict-checked",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd domain.EventUpdate
			flags := cmd.Flags()
			if flags.Changed("title") {
				upd.Title = &title
			}
			if flags.Changed("description") {
				upd.Description = &description
			}
			if flags.Changed("room") {
				upd.RoomRef = &room
			}
			if flags.Changed("rrule") {
				upd.Recurrence = &rrule
			}
			if flags.Changed("timezone") {
				upd.Timezone = &tz
			}
			if flags.Changed("attendee") {
				upd.Attendees = &attendees
			}
			upd.Start, upd.End = start.ptr(), end.ptr()

			saved, det, err := app.Events.UpdateEvent(cmd.Context(), args[0], upd, force)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatEventSaved(saved, conflictView(det), app.loc()))
			if saved == nil {
				return errNotSaved
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.Flags().Var(start, "start", "New start time")
	cmd.Flags().Var(end, "end", "New end time")
	cmd.Flags().StringVar(&room, "room", "", "New room or call link")
	cmd.Flags().StringVar(&rrule, "rrule", "", "New recurrence rule; empty clears it")
	cmd.Flags().StringVar(&tz, "timezone", "", "New zone the series repeats in")
	cmd.Flags().StringSliceVar(&attendees, "attendee", nil, "Replace attendees (repeatable)")
	cmd.Flags().BoolVar(&force, "force", false, "Save even when it overlaps other commitments")
	return cmd
}

func newEventDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Events.DeleteEvent(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted event %s\n", args[0])
			return nil
		},
	}
}

func newEventCheckCmd(app *App) *cobra.Command {
	var participant, exclude string
	start, end := newTimeFlag(app), newTimeFlag(app)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a time range for conflicts and suggest alternatives",
		RunE: func(cmd *cobra.Command, args []string) error {
			det := app.Conflicts.DetectConflicts(cmd.Context(), participant, start.t, end.t, exclude)
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatConflict(*conflictView(&det), app.loc()))
			return nil
		},
	}

	cmd.Flags().StringVar(&participant, "participant", "", "Participant ID")
	cmd.Flags().Var(start, "start", "Start time")
	cmd.Flags().Var(end, "end", "End time")
	cmd.Flags().StringVar(&exclude, "exclude", "", "Event ID to ignore, e.g. the one being moved")
	_ = cmd.MarkFlagRequired("participant")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func newEventImportCmd(app *App) *cobra.Command {
	var participant string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import busy blocks from an iCalendar file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			decoded, err := ics.Decode(f, app.loc())
			if err != nil {
				return err
			}
			for _, s := range decoded.Skipped {
				app.logger().Info("skipped calendar entry", "uid", s.UID, "title", s.Title, "reason", string(s.Reason))
			}
			res, err := app.Events.ImportEvents(cmd.Context(), participant, decoded.Events)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d created, %d updated, %d skipped\n",
				args[0], res.Created, res.Updated, len(decoded.Skipped))
			return nil
		},
	}

	cmd.Flags().StringVar(&participant, "participant", "", "Participant the calendar belongs to")
	_ = cmd.MarkFlagRequired("participant")
	return cmd
}
