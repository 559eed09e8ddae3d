package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/scheduler"
)

func FormatEventList(events []domain.CalendarEvent, loc *time.Location) string {
	if len(events) == 0 {
		return Dim("No events.") + "\n"
	}
	headers := []string{"ID", "WHEN", "TIME", "TITLE", "KIND", "SOURCE"}
	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		when := ev.Start.In(loc).Format("Mon Jan 2")
		span := ClockRange(ev.Start, ev.End, loc)
		if ev.AllDay {
			span = "all day"
		}
		title := Truncate(ev.Title, 40)
		if ev.IsRecurring() || ev.OccurrenceOf != "" {
			title += StyleDim.Render(" ↻")
		}
		rows = append(rows, []string{
			TruncID(ev.SeriesID()),
			when,
			span,
			title,
			string(ev.Kind),
			Dim(string(ev.Source)),
		})
	}
	return RenderTable(headers, rows)
}

// FormatEventSaved confirms a write, or explains the conflict that blocked
// it and offers the suggested alternatives.
func FormatEventSaved(ev *domain.CalendarEvent, det *ConflictView, loc *time.Location) string {
	var b strings.Builder
	if det != nil && det.HasConflict && ev == nil {
		b.WriteString(StyleRed.Render("✖ Not saved: conflicts with existing commitments") + "\n")
		b.WriteString(FormatConflict(*det, loc))
		b.WriteString(Dim("Use --force to save anyway.") + "\n")
		return b.String()
	}
	fmt.Fprintf(&b, "%s %s %s (%s)\n",
		StyleGreen.Render("✔ Saved"),
		Bold(ev.Title),
		ClockRange(ev.Start, ev.End, loc),
		TruncID(ev.ID))
	if det != nil && det.HasConflict {
		b.WriteString(StyleYellow.Render("! Overlaps existing commitments (forced)") + "\n")
		b.WriteString(FormatConflict(*det, loc))
	}
	return b.String()
}

// ConflictView is the renderable part of a conflict check.
type ConflictView struct {
	HasConflict bool
	Conflicts   []domain.CalendarEvent
	Suggestions []time.Time
}

func FormatConflict(det ConflictView, loc *time.Location) string {
	var b strings.Builder
	if !det.HasConflict {
		b.WriteString(StyleGreen.Render("✔ No conflicts") + "\n")
		return b.String()
	}
	for _, ev := range det.Conflicts {
		fmt.Fprintf(&b, "  %s %s %s\n", StyleRed.Render("●"), ClockRange(ev.Start, ev.End, loc), ev.Title)
	}
	if len(det.Suggestions) > 0 {
		b.WriteString(Header("Suggested times") + "\n")
		for _, s := range det.Suggestions {
			fmt.Fprintf(&b, "  %s %s\n", StyleGreen.Render("○"), DateTime(s, loc))
		}
	} else {
		b.WriteString(Dim("No free time left that day.") + "\n")
	}
	return b.String()
}

func FormatSlots(res scheduler.SlotResult, date time.Time, loc *time.Location) string {
	title := "Slots " + date.In(loc).Format("Mon Jan 2")
	switch res.Status {
	case scheduler.SlotsNonWorkingDay:
		return RenderBox(title, StyleYellow.Render("Not a working day."))
	case scheduler.SlotsNoAvailability:
		return RenderBox(title, StyleYellow.Render("Fully booked."))
	}
	var lines []string
	for _, s := range res.Slots {
		if s.Available {
			lines = append(lines, StyleGreen.Render("○ ")+ClockRange(s.Start, s.End, loc))
		} else {
			lines = append(lines, StyleDim.Render("● "+ClockRange(s.Start, s.End, loc)+" blocked"))
		}
	}
	return RenderBox(title, strings.Join(lines, "\n"))
}

func FormatAvailability(days []scheduler.DayAvailability, loc *time.Location) string {
	if len(days) == 0 {
		return Dim("No working days in range.") + "\n"
	}
	var b strings.Builder
	for _, d := range days {
		b.WriteString(Bold(d.Date.Format("Mon Jan 2")))
		if len(d.Free) == 0 {
			b.WriteString("  " + StyleRed.Render("busy") + "\n")
			continue
		}
		b.WriteString("\n")
		for _, iv := range d.Free {
			fmt.Fprintf(&b, "  %s %s %s\n", StyleGreen.Render("○"), ClockRange(iv.Start, iv.End, loc),
				Dim(FormatMinutes(int(iv.Duration()/time.Minute))))
		}
	}
	return b.String()
}

// FormatMeetingTimes lists common free start times.
func FormatMeetingTimes(times []time.Time, durationMin int, loc *time.Location) string {
	if len(times) == 0 {
		return StyleYellow.Render("No common free time found.") + "\n"
	}
	var b strings.Builder
	for i, t := range times {
		fmt.Fprintf(&b, "%s %s\n", StyleBold.Render(fmt.Sprintf("%d.", i+1)),
			ClockRange(t, t.Add(time.Duration(durationMin)*time.Minute), loc)+"  "+Dim(t.In(loc).Format("Mon Jan 2")))
	}
	return b.String()
}

func FormatTimeline(items []domain.TimelineItem, loc *time.Location, now time.Time) string {
	if len(items) == 0 {
		return Dim("Nothing scheduled.") + "\n"
	}
	var b strings.Builder
	day := ""
	for _, it := range items {
		if d := it.Start.In(loc).Format("Mon Jan 2"); d != day {
			if day != "" {
				b.WriteString("\n")
			}
			b.WriteString(Header(d) + "\n")
			day = d
		}
		when := ClockRange(it.Start, it.End, loc)
		switch {
		case it.AllDay:
			when = "all day"
		case it.Start.Equal(it.End):
			when = it.Start.In(loc).Format("15:04") + " due"
		}
		line := "  " + PadRight(when, 18) + " " + PadRight(KindBadge(it.Kind), 9) + " " + it.Title
		if it.Kind != domain.TimelineEvent {
			line += "  " + DueStyled(it.Start, now)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
