package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/emersion/go-ical"
)

const productID = "-//horizon//timeline//EN"

// ErrEmpty is returned for an empty timeline; a VCALENDAR needs at least one
// component.
var ErrEmpty = errors.New("nothing to export")

// EncodeTimeline writes items as one VCALENDAR. UIDs are derived from the
// item kind and source id so re-exports update the same entries in the
// receiving calendar.
func EncodeTimeline(w io.Writer, items []domain.TimelineItem, stamp time.Time) error {
	if len(items) == 0 {
		return ErrEmpty
	}
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	for _, it := range items {
		ev := ical.NewEvent()
		ev.Props.SetText(ical.PropUID, fmt.Sprintf("%s-%s@horizon", it.Kind, it.SourceID))
		ev.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
		ev.Props.SetText(ical.PropSummary, it.Title)
		ev.Props.SetText(ical.PropCategories, string(it.Kind))
		if it.Status != "" {
			ev.Props.SetText(ical.PropDescription, "status: "+it.Status)
		}
		if it.AllDay {
			ev.Props.SetDate(ical.PropDateTimeStart, it.Start)
			ev.Props.SetDate(ical.PropDateTimeEnd, allDayEnd(it))
		} else {
			ev.Props.SetDateTime(ical.PropDateTimeStart, it.Start.UTC())
			ev.Props.SetDateTime(ical.PropDateTimeEnd, it.End.UTC())
		}
		cal.Children = append(cal.Children, ev.Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encoding timeline: %w", err)
	}
	return nil
}

// allDayEnd keeps DTEND exclusive and after DTSTART.
func allDayEnd(it domain.TimelineItem) time.Time {
	if it.End.After(it.Start) {
		return it.End
	}
	return it.Start.AddDate(0, 0, 1)
}
