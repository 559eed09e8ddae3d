package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/horizon/internal/scheduler"
)

// Options carries the knobs shared by all services. Zero values fall back to
// the defaults below.
type Options struct {
	// Now is the reference clock. Tests inject a fixed instant.
	Now func() time.Time

	// Logger receives fail-open degradations at WARN.
	Logger *slog.Logger

	Observer UseCaseObserver

	SuggestionLimit     int
	SearchDays          int
	PropagationMaxDepth int
	BookingTimeout      time.Duration
}

const (
	defaultSearchDays          = 7
	defaultPropagationMaxDepth = 64
	defaultBookingTimeout      = 15 * time.Second
)

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = func() time.Time { return time.Now().UTC() }
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Observer == nil {
		o.Observer = NoopUseCaseObserver{}
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = scheduler.DefaultSuggestionLimit
	}
	if o.SearchDays <= 0 {
		o.SearchDays = defaultSearchDays
	}
	if o.PropagationMaxDepth <= 0 {
		o.PropagationMaxDepth = defaultPropagationMaxDepth
	}
	if o.BookingTimeout <= 0 {
		o.BookingTimeout = defaultBookingTimeout
	}
	return o
}
