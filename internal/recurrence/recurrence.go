// Package recurrence expands recurring calendar events (RFC 5545 RRULE) into
// concrete occurrences inside a query window.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/teambition/rrule-go"
)

// MaxOccurrences bounds the expansion of a single series within one window.
const MaxOccurrences = 1000

// Validate checks that rule parses as an RRULE.
func Validate(rule string) error {
	if rule == "" {
		return nil
	}
	if _, err := rrule.StrToROption(normalize(rule)); err != nil {
		return fmt.Errorf("invalid recurrence rule %q: %w", rule, err)
	}
	return nil
}

// Expand replaces each recurring event with its occurrences that overlap
// [from, to). Non-recurring events are passed through unchanged when they
// overlap the window. Events with an unparseable rule are treated as single
// events.
func Expand(events []domain.CalendarEvent, from, to time.Time) []domain.CalendarEvent {
	window := interval.New(from, to)
	out := make([]domain.CalendarEvent, 0, len(events))
	for _, ev := range events {
		if !ev.IsRecurring() {
			if overlapsWindow(ev, window) {
				out = append(out, ev)
			}
			continue
		}
		occ, err := Occurrences(ev, from, to)
		if err != nil {
			if overlapsWindow(ev, window) {
				out = append(out, ev)
			}
			continue
		}
		out = append(out, occ...)
	}
	return out
}

// Occurrences returns the instances of a recurring event overlapping [from, to).
// The rule is evaluated on the wall clock of the event's timezone and the
// results are returned in UTC. Excluded dates are dropped.
func Occurrences(ev domain.CalendarEvent, from, to time.Time) ([]domain.CalendarEvent, error) {
	set, err := ruleSet(ev)
	if err != nil {
		return nil, err
	}

	dur := ev.Duration()
	window := interval.New(from, to)
	// An occurrence starting up to dur before the window can still overlap it.
	starts := set.Between(from.Add(-dur), to, true)
	if len(starts) > MaxOccurrences {
		starts = starts[:MaxOccurrences]
	}

	var out []domain.CalendarEvent
	for _, s := range starts {
		inst := ev
		inst.Start = s.UTC()
		inst.End = inst.Start.Add(dur)
		inst.ExDates = nil
		if !overlapsWindow(inst, window) {
			continue
		}
		inst.ID = OccurrenceID(ev.ID, s)
		inst.OccurrenceOf = ev.ID
		inst.Attendees = append([]string(nil), ev.Attendees...)
		out = append(out, inst)
	}
	return out, nil
}

func ruleSet(ev domain.CalendarEvent) (*rrule.Set, error) {
	opt, err := rrule.StrToROption(normalize(ev.Recurrence))
	if err != nil {
		return nil, fmt.Errorf("parsing recurrence of event %s: %w", ev.ID, err)
	}
	opt.Dtstart = ev.Start.In(ev.Location())
	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("building recurrence of event %s: %w", ev.ID, err)
	}

	set := &rrule.Set{}
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex)
	}
	return set, nil
}

// OccurrenceID derives a stable identifier for one instance of a series.
func OccurrenceID(seriesID string, start time.Time) string {
	return seriesID + "@" + start.UTC().Format("20060102T150405Z")
}

// overlapsWindow treats zero-length events as points that belong to the
// window when they fall inside it.
func overlapsWindow(ev domain.CalendarEvent, window interval.Interval) bool {
	if ev.Start.Equal(ev.End) {
		return !ev.Start.Before(window.Start) && ev.Start.Before(window.End)
	}
	return interval.Overlaps(ev.Start, ev.End, window.Start, window.End)
}

func normalize(rule string) string {
	return strings.TrimPrefix(strings.TrimSpace(rule), "RRULE:")
}
