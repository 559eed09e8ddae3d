package cli

import (
	"fmt"

	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/spf13/cobra"
)

func newTenantCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants, participants, policies and meeting types",
	}

	cmd.AddCommand(
		newTenantCreateCmd(app),
		newTenantListCmd(app),
		newTenantAddParticipantCmd(app),
		newTenantParticipantsCmd(app),
		newTenantSetHostCmd(app),
		newPolicyCmd(app),
		newMeetingTypeCmd(app),
	)

	return cmd
}

func newTenantCreateCmd(app *App) *cobra.Command {
	var t domain.Tenant

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t.Name = args[0]
			if err := app.Tenants.CreateTenant(cmd.Context(), &t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created tenant %s %s\n", formatter.Bold(t.Name), formatter.Dim(t.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&t.Timezone, "timezone", "UTC", "IANA timezone")
	return cmd
}

func newTenantListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			tenants, err := app.Tenants.ListTenants(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTenantList(tenants))
			return nil
		},
	}
}

func newTenantAddParticipantCmd(app *App) *cobra.Command {
	var p domain.Participant
	var role string

	cmd := &cobra.Command{
		Use:   "add-participant TENANT_ID NAME",
		Short: "Add a participant to a tenant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.TenantID, p.Name = args[0], args[1]
			p.Role = domain.ParticipantRole(role)
			if err := app.Tenants.AddParticipant(cmd.Context(), &p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s) %s\n", formatter.Bold(p.Name), p.Role, formatter.Dim(p.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&p.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleMember), "owner, admin or member")
	return cmd
}

func newTenantParticipantsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "participants TENANT_ID",
		Short: "List a tenant's participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := app.Tenants.ListParticipants(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatParticipants(ps))
			return nil
		},
	}
}

func newTenantSetHostCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set-host TENANT_ID PARTICIPANT_ID",
		Short: "Choose which owner or admin receives bookings",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Tenants.SetHost(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Host of %s is now %s\n", formatter.TruncID(args[0]), formatter.TruncID(args[1]))
			return nil
		},
	}
}

func newPolicyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Show or change a tenant's availability policy",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show TENANT_ID",
		Short: "Show the effective policy, defaults included",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Tenants.Policy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPolicy(p))
			return nil
		},
	}, newPolicySetCmd(app))

	return cmd
}

func newPolicySetCmd(app *App) *cobra.Command {
	var weekdays, dayStart, dayEnd, timezone string
	var granularity, buffer, lead int

	cmd := &cobra.Command{
		Use:   "set TENANT_ID",
		Short: "Change policy fields; unset flags keep their current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Tenants.Policy(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			p.TenantID = args[0]

			flags := cmd.Flags()
			if flags.Changed("weekdays") {
				if p.Weekdays, err = domain.ParseWeekdays(weekdays); err != nil {
					return err
				}
			}
			if flags.Changed("day-start") {
				if p.DayStartMin, err = domain.ParseClock(dayStart); err != nil {
					return err
				}
			}
			if flags.Changed("day-end") {
				if p.DayEndMin, err = domain.ParseClock(dayEnd); err != nil {
					return err
				}
			}
			if flags.Changed("granularity") {
				p.GranularityMin = granularity
			}
			if flags.Changed("buffer") {
				p.BufferMin = buffer
			}
			if flags.Changed("lead-time") {
				p.LeadTimeMin = lead
			}
			if flags.Changed("timezone") {
				p.Timezone = timezone
			}

			if err := app.Tenants.SetPolicy(cmd.Context(), &p); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPolicy(p))
			return nil
		},
	}

	cmd.Flags().StringVar(&weekdays, "weekdays", "", "Bookable weekdays as 0-6, comma separated (0 = Sunday)")
	cmd.Flags().StringVar(&dayStart, "day-start", "", "Start of the working day (HH:MM)")
	cmd.Flags().StringVar(&dayEnd, "day-end", "", "End of the working day (HH:MM)")
	cmd.Flags().IntVar(&granularity, "granularity", domain.DefaultSlotGranularityMin, "Slot step in minutes")
	cmd.Flags().IntVar(&buffer, "buffer", domain.DefaultBufferMin, "Gap kept around busy time in minutes")
	cmd.Flags().IntVar(&lead, "lead-time", domain.DefaultLeadTimeMin, "Minimum notice before a booking in minutes")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA timezone of the working hours")
	return cmd
}

func newMeetingTypeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "meeting-type",
		Short: "Manage bookable meeting types",
	}

	var duration int
	add := &cobra.Command{
		Use:   "add TENANT_ID NAME",
		Short: "Add a meeting type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := &domain.MeetingType{TenantID: args[0], Name: args[1], DurationMin: duration, Active: true}
			if err := app.Tenants.CreateMeetingType(cmd.Context(), m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added meeting type %s (%s) %s\n",
				formatter.Bold(m.Name), formatter.FormatMinutes(m.DurationMin), formatter.Dim(m.ID))
			return nil
		},
	}
	add.Flags().IntVar(&duration, "duration", 30, "Length in minutes")

	list := &cobra.Command{
		Use:   "list TENANT_ID",
		Short: "List a tenant's meeting types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mts, err := app.Tenants.ListMeetingTypes(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMeetingTypes(mts))
			return nil
		},
	}

	toggle := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " ID",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := app.Tenants.SetMeetingTypeActive(cmd.Context(), args[0], active); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Meeting type %s %sd\n", formatter.TruncID(args[0]), use)
				return nil
			},
		}
	}

	cmd.AddCommand(add, list,
		toggle("disable", "Stop offering a meeting type", false),
		toggle("enable", "Offer a meeting type again", true),
	)
	return cmd
}
