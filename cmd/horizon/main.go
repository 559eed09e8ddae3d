package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/alexanderramin/horizon/internal/cli"
	"github.com/alexanderramin/horizon/internal/cli/formatter"
	"github.com/alexanderramin/horizon/internal/config"
	"github.com/alexanderramin/horizon/internal/db"
	"github.com/alexanderramin/horizon/internal/room"
	"github.com/alexanderramin/horizon/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	repos := service.NewSQLiteRepos(database)
	uow := db.NewSQLiteUnitOfWork(database)

	opts := service.Options{
		Logger:              logger,
		SuggestionLimit:     cfg.SuggestionLimit,
		SearchDays:          cfg.SearchDays,
		PropagationMaxDepth: cfg.PropagationMaxDepth,
		BookingTimeout:      cfg.BookingTimeout(),
	}
	if cfg.LogUseCases {
		opts.Observer = service.NewLogUseCaseObserver(os.Stderr, cfg.LogLevel)
	}

	var rooms room.Provisioner = room.NewLinkProvisioner(cfg.RoomBaseURL)
	if cfg.RoomAPIEndpoint != "" {
		var observer room.Observer = room.NoopObserver{}
		if cfg.LogRoomCalls {
			observer = room.NewLogObserver(logger)
		}
		rooms = room.NewHTTPProvisioner(room.HTTPConfig{
			Endpoint:   cfg.RoomAPIEndpoint,
			Token:      cfg.RoomAPIToken,
			TimeoutMs:  cfg.RoomTimeoutMs,
			MaxRetries: cfg.RoomMaxRetries,
		}, observer)
	}

	availability := service.NewAvailabilityService(repos)
	app := &cli.App{
		Events:       service.NewEventService(repos, uow, opts),
		Conflicts:    service.NewConflictService(repos, opts),
		Availability: availability,
		Slots:        service.NewSlotService(repos, opts),
		Meetings:     service.NewMeetingService(availability, opts),
		Bookings:     service.NewBookingService(repos, rooms, uow, opts),
		Tasks:        service.NewTaskService(repos, uow, opts),
		Timeline:     service.NewTimelineService(repos),
		Tenants:      service.NewTenantService(repos, uow, opts),
		Billing:      service.NewBillingService(repos, opts),
		Location:     time.Local,
		Logger:       logger,
	}

	_, noColor := os.LookupEnv("NO_COLOR")
	formatter.SetColor(!noColor && (isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
