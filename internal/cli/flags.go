package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// timeFlag parses a point in time. Values without an offset are read in loc.
type timeFlag struct {
	loc *time.Location
	t   time.Time
	set bool
}

var _ pflag.Value = (*timeFlag)(nil)

func newTimeFlag(app *App) *timeFlag {
	return &timeFlag{loc: app.loc()}
}

func (f *timeFlag) Set(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, f.loc); err == nil {
			f.t, f.set = t, true
			return nil
		}
	}
	return fmt.Errorf("expected YYYY-MM-DDTHH:MM or RFC3339, got %q", s)
}

func (f *timeFlag) String() string {
	if !f.set {
		return ""
	}
	return f.t.Format("2006-01-02T15:04")
}

func (f *timeFlag) Type() string { return "time" }

// ptr returns nil when the flag was not given.
func (f *timeFlag) ptr() *time.Time {
	if !f.set {
		return nil
	}
	t := f.t
	return &t
}

// dateFlag parses a calendar date, or "today" and "tomorrow" relative to
// now, as local midnight in loc.
type dateFlag struct {
	loc *time.Location
	now func() time.Time
	t   time.Time
	set bool
}

var _ pflag.Value = (*dateFlag)(nil)

func newDateFlag(app *App) *dateFlag {
	return &dateFlag{loc: app.loc(), now: app.now}
}

func (f *dateFlag) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "today", "tomorrow":
		y, m, d := f.now().In(f.loc).Date()
		if s == "tomorrow" {
			d++
		}
		f.t, f.set = time.Date(y, m, d, 0, 0, 0, 0, f.loc), true
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, f.loc)
	if err != nil {
		return fmt.Errorf("expected YYYY-MM-DD, today or tomorrow, got %q", s)
	}
	f.t, f.set = t, true
	return nil
}

func (f *dateFlag) String() string {
	if !f.set {
		return ""
	}
	return f.t.Format("2006-01-02")
}

func (f *dateFlag) Type() string { return "date" }

func (f *dateFlag) ptr() *time.Time {
	if !f.set {
		return nil
	}
	t := f.t
	return &t
}

// orToday returns the date, or today when unset.
func (f *dateFlag) orToday() time.Time {
	if f.set {
		return f.t
	}
	y, m, d := f.now().In(f.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, f.loc)
}

// rangeFlags is the --from/--to pair shared by listing commands. An unset
// --from means today; an unset --to means days after --from.
type rangeFlags struct {
	from *dateFlag
	to   *dateFlag
	days int
}

func addRangeFlags(app *App, flags *pflag.FlagSet, days int) *rangeFlags {
	r := &rangeFlags{from: newDateFlag(app), to: newDateFlag(app)}
	flags.Var(r.from, "from", "First day (YYYY-MM-DD, today, tomorrow)")
	flags.Var(r.to, "to", "Day after the last day")
	flags.IntVar(&r.days, "days", days, "Number of days when --to is not given")
	return r
}

func (r *rangeFlags) resolve() (time.Time, time.Time, error) {
	from := r.from.orToday()
	to := from.AddDate(0, 0, r.days)
	if r.to.set {
		to = r.to.t
	}
	if !from.Before(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("--to must be after --from")
	}
	return from, to, nil
}
