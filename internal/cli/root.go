package cli

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/horizon/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Events       service.EventService
	Conflicts    service.ConflictService
	Availability service.AvailabilityService
	Slots        service.SlotService
	Meetings     service.MeetingService
	Bookings     service.BookingService
	Tasks        service.TaskService
	Timeline     service.TimelineService
	Tenants      service.TenantService
	Billing      service.BillingService

	// Location is used to read flag times without an offset and to display
	// times. Defaults to time.Local.
	Location *time.Location
	Now      func() time.Time
	Logger   *slog.Logger
}

func (a *App) loc() *time.Location {
	if a.Location == nil {
		return time.Local
	}
	return a.Location
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *App) logger() *slog.Logger {
	if a.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return a.Logger
}

// NewRootCmd creates the top-level "horizon" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "horizon",
		Short:         "Scheduling, availability and booking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newEventCmd(app),
		newSlotsCmd(app),
		newAvailabilityCmd(app),
		newMeetCmd(app),
		newBookCmd(app),
		newBookingCmd(app),
		newTaskCmd(app),
		newTimelineCmd(app),
		newTenantCmd(app),
		newBillingCmd(app),
	)

	return root
}
