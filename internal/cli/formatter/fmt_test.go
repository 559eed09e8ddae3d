package formatter

import (
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
	"github.com/alexanderramin/horizon/internal/scheduler"
	"github.com/stretchr/testify/assert"
)

var mon = time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return mon.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func TestFormatConflict(t *testing.T) {
	out := FormatConflict(ConflictView{
		HasConflict: true,
		Conflicts:   []domain.CalendarEvent{{Title: "Standup", Start: at(9, 0), End: at(9, 30)}},
		Suggestions: []time.Time{at(9, 30), at(13, 0)},
	}, time.UTC)

	assert.Contains(t, out, "09:00–09:30 Standup")
	assert.Contains(t, out, "SUGGESTED TIMES")
	assert.Contains(t, out, "Mon Mar 17 13:00")

	assert.Contains(t, FormatConflict(ConflictView{}, time.UTC), "No conflicts")
}

func TestFormatEventSaved_Blocked(t *testing.T) {
	det := &ConflictView{HasConflict: true}
	out := FormatEventSaved(nil, det, time.UTC)
	assert.Contains(t, out, "Not saved")
	assert.Contains(t, out, "--force")
}

func TestFormatSlots(t *testing.T) {
	res := scheduler.SlotResult{Status: scheduler.SlotsAvailable, Slots: []scheduler.BookingSlot{
		{Start: at(9, 0), End: at(9, 30), Available: true},
		{Start: at(9, 15), End: at(9, 45)},
	}}
	out := FormatSlots(res, mon, time.UTC)
	assert.Contains(t, out, "○ 09:00–09:30")
	assert.Contains(t, out, "09:15–09:45 blocked")

	out = FormatSlots(scheduler.SlotResult{Status: scheduler.SlotsNonWorkingDay}, mon, time.UTC)
	assert.Contains(t, out, "Not a working day")
}

func TestFormatAvailability(t *testing.T) {
	days := []scheduler.DayAvailability{
		{Date: mon, Free: []interval.Interval{interval.New(at(9, 0), at(10, 30))}},
		{Date: mon.AddDate(0, 0, 1)},
	}
	out := FormatAvailability(days, time.UTC)
	assert.Contains(t, out, "09:00–10:30 1h 30m")
	assert.Contains(t, out, "Tue Mar 18  busy")
}

func TestFormatTimeline_GroupsByDay(t *testing.T) {
	items := []domain.TimelineItem{
		{Kind: domain.TimelineEvent, Title: "Standup", Start: at(9, 0), End: at(9, 15)},
		{Kind: domain.TimelineInvoice, Title: "Invoice INV-7", Start: at(12, 0), End: at(12, 0)},
		{Kind: domain.TimelineTask, Title: "Ship", Start: at(33, 0), End: at(33, 0)},
	}
	out := FormatTimeline(items, time.UTC, mon)
	assert.Contains(t, out, "MON MAR 17")
	assert.Contains(t, out, "TUE MAR 18")
	assert.Contains(t, out, "12:00 due")
	assert.Contains(t, out, "invoice   Invoice INV-7")
}

func TestFormatPropagation(t *testing.T) {
	out := FormatPropagation(48*time.Hour,
		[]ShiftView{{TaskID: "bbbbbbbb-1", NewDue: at(48, 0), Depth: 1}},
		[]string{"cccccccc-1"}, []string{"aaaaaaaa-1"}, time.UTC)
	assert.Contains(t, out, "by +2d")
	assert.Contains(t, out, "bbbbbbbb → Wed Mar 19 00:00")
	assert.Contains(t, out, "skipped")
	assert.Contains(t, out, "cycle")

	assert.Equal(t, "-1d 2h0m0s", formatDelta(-26*time.Hour))
}

func TestFormatBooking_Failed(t *testing.T) {
	b := &domain.Booking{
		ID: "b1", State: domain.BookingFailed, FailedStep: domain.BookingSlotValidated,
		LastError: errors.New("room service unavailable").Error(),
		Start:     at(10, 0), End: at(10, 30),
		Client:    domain.ClientDetails{Name: "Carla"},
	}
	out := FormatBooking(b, time.UTC)
	assert.Contains(t, out, "slot_validated")
	assert.Contains(t, out, "room service unavailable")
}

func TestFormatPolicy(t *testing.T) {
	out := FormatPolicy(domain.DefaultAvailabilityPolicy())
	assert.Contains(t, out, "09:00–17:00")
	assert.Contains(t, out, "15m")
	assert.Contains(t, out, "Mon Tue Wed Thu Fri")
}
