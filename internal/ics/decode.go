// Package ics converts between iCalendar data and horizon calendar types.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/emersion/go-ical"
)

// SkipReason explains why a VEVENT was not imported.
type SkipReason string

const (
	SkipCancelled SkipReason = "cancelled"
	SkipNoUID     SkipReason = "missing uid"
	SkipNoTime    SkipReason = "missing or invalid time"
	SkipDuplicate SkipReason = "duplicate uid"
)

type Skipped struct {
	UID    string
	Title  string
	Reason SkipReason
}

type DecodeResult struct {
	Events  []domain.CalendarEvent
	Skipped []Skipped
}

// Decode reads every VCALENDAR in r and converts its VEVENTs to busy
// events. Floating times are read in loc. Recurring events keep their RRULE
// and are expanded at query time in the zone of their DTSTART.
//
// An override of a single occurrence (RECURRENCE-ID) is imported as a
// standalone event and the instance it replaces is excluded from the series.
func Decode(r io.Reader, loc *time.Location) (*DecodeResult, error) {
	if loc == nil {
		loc = time.UTC
	}
	res := &DecodeResult{}
	seen := make(map[string]bool)
	excluded := make(map[string][]time.Time)

	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding calendar: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name != ical.CompEvent {
				continue
			}
			d := decodeEvent(comp, loc)
			if !d.recurrenceID.IsZero() {
				excluded[d.seriesUID] = append(excluded[d.seriesUID], d.recurrenceID)
			}
			ev, reason := d.event, d.reason
			if reason == "" && seen[ev.ExternalUID] {
				reason = SkipDuplicate
			}
			if reason != "" {
				res.Skipped = append(res.Skipped, Skipped{UID: ev.ExternalUID, Title: ev.Title, Reason: reason})
				continue
			}
			seen[ev.ExternalUID] = true
			res.Events = append(res.Events, ev)
		}
	}

	for i := range res.Events {
		ev := &res.Events[i]
		if ev.IsRecurring() {
			ev.ExDates = append(ev.ExDates, excluded[ev.ExternalUID]...)
		}
	}
	return res, nil
}

type decoded struct {
	event  domain.CalendarEvent
	reason SkipReason
	// Set for overrides: the series they belong to and the original start
	// of the instance they replace.
	seriesUID    string
	recurrenceID time.Time
}

func decodeEvent(comp *ical.Component, loc *time.Location) decoded {
	normalizeTimezones(comp)

	ev := domain.CalendarEvent{
		Kind:   domain.EventMeeting,
		Source: domain.SourceICS,
	}
	ev.ExternalUID = propText(comp, ical.PropUID)
	ev.Title = propText(comp, ical.PropSummary)
	ev.Description = propText(comp, ical.PropDescription)
	if location := propText(comp, ical.PropLocation); location != "" {
		ev.RoomRef = location
	}

	if ev.ExternalUID == "" {
		return decoded{event: ev, reason: SkipNoUID}
	}

	d := decoded{}
	if p := comp.Props.Get(ical.PropRecurrenceID); p != nil {
		rid, err := p.DateTime(loc)
		if err != nil {
			return decoded{event: ev, reason: SkipNoTime}
		}
		d.seriesUID = ev.ExternalUID
		d.recurrenceID = rid.UTC()
		ev.ExternalUID = OverrideUID(ev.ExternalUID, rid)
	}
	// A cancelled override still removes its instance from the series.
	if strings.EqualFold(propText(comp, ical.PropStatus), "CANCELLED") {
		d.event, d.reason = ev, SkipCancelled
		return d
	}

	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		d.event, d.reason = ev, SkipNoTime
		return d
	}
	start, err := startProp.DateTime(loc)
	if err != nil {
		d.event, d.reason = ev, SkipNoTime
		return d
	}
	ev.AllDay = startProp.ValueType() == ical.ValueDate

	end, err := eventEnd(comp, start, ev.AllDay, loc)
	if err != nil || end.Before(start) {
		d.event, d.reason = ev, SkipNoTime
		return d
	}
	ev.Start, ev.End = start.UTC(), end.UTC()

	if d.recurrenceID.IsZero() {
		if rule := comp.Props.Get(ical.PropRecurrenceRule); rule != nil {
			ev.Recurrence = rule.Value
			ev.Timezone = zoneName(startProp, loc)
			exdates, err := exceptionDates(comp, loc)
			if err != nil {
				d.event, d.reason = ev, SkipNoTime
				return d
			}
			ev.ExDates = exdates
		}
	}
	d.event = ev
	return d
}

// OverrideUID identifies the standalone event imported for one overridden
// occurrence of a series.
func OverrideUID(seriesUID string, recurrenceID time.Time) string {
	return seriesUID + "@" + recurrenceID.UTC().Format("20060102T150405Z")
}

// zoneName reports the IANA zone a recurring DTSTART repeats in. UTC values
// repeat in UTC and floating values in the import location.
func zoneName(p *ical.Prop, loc *time.Location) string {
	if tzid := p.Params.Get(ical.ParamTimezoneID); tzid != "" {
		if _, err := time.LoadLocation(tzid); err == nil {
			return tzid
		}
	}
	if strings.HasSuffix(p.Value, "Z") {
		return ""
	}
	switch name := loc.String(); name {
	case "UTC", "Local":
		return ""
	default:
		return name
	}
}

// exceptionDates collects every EXDATE value. A property may carry a comma
// separated list.
func exceptionDates(comp *ical.Component, loc *time.Location) ([]time.Time, error) {
	var out []time.Time
	for _, p := range comp.Props[ical.PropExceptionDates] {
		for _, v := range strings.Split(p.Value, ",") {
			single := p
			single.Value = strings.TrimSpace(v)
			if single.Value == "" {
				continue
			}
			t, err := single.DateTime(loc)
			if err != nil {
				return nil, fmt.Errorf("parsing exdate %q: %w", single.Value, err)
			}
			out = append(out, t.UTC())
		}
	}
	return out, nil
}

// eventEnd resolves DTEND, then DURATION. Without either an all-day event
// lasts one day and a timed event is instantaneous.
func eventEnd(comp *ical.Component, start time.Time, allDay bool, loc *time.Location) (time.Time, error) {
	if p := comp.Props.Get(ical.PropDateTimeEnd); p != nil {
		return p.DateTime(loc)
	}
	if p := comp.Props.Get(ical.PropDuration); p != nil {
		d, err := p.Duration()
		if err != nil {
			return time.Time{}, err
		}
		return start.Add(d), nil
	}
	if allDay {
		return start.AddDate(0, 0, 1), nil
	}
	return start, nil
}

func propText(comp *ical.Component, name string) string {
	if p := comp.Props.Get(name); p != nil {
		return strings.TrimSpace(p.Value)
	}
	return ""
}

// Windows clients emit their own zone names in TZID.
var windowsToIANA = map[string]string{
	"Pacific Standard Time":          "America/Los_Angeles",
	"Mountain Standard Time":         "America/Denver",
	"Central Standard Time":          "America/Chicago",
	"Eastern Standard Time":          "America/New_York",
	"GMT Standard Time":              "Europe/London",
	"W. Europe Standard Time":        "Europe/Berlin",
	"Central Europe Standard Time":   "Europe/Budapest",
	"Romance Standard Time":          "Europe/Paris",
	"India Standard Time":            "Asia/Kolkata",
	"China Standard Time":            "Asia/Shanghai",
	"Tokyo Standard Time":            "Asia/Tokyo",
	"AUS Eastern Standard Time":      "Australia/Sydney",
	"E. South America Standard Time": "America/Sao_Paulo",
}

func normalizeTimezones(comp *ical.Component) {
	for _, name := range []string{ical.PropDateTimeStart, ical.PropDateTimeEnd, ical.PropRecurrenceID, ical.PropExceptionDates} {
		for i := range comp.Props[name] {
			p := &comp.Props[name][i]
			if iana, ok := windowsToIANA[p.Params.Get(ical.ParamTimezoneID)]; ok {
				p.Params.Set(ical.ParamTimezoneID, iana)
			}
		}
	}
}
