package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DefaultSlotGranularityMin = 15
	DefaultBufferMin          = 15
	DefaultLeadTimeMin        = 60
	DefaultDayStartMin        = 9 * 60
	DefaultDayEndMin          = 17 * 60
)

// AvailabilityPolicy describes when a host can be booked. Times of day are
// minutes after local midnight in Timezone.
type AvailabilityPolicy struct {
	TenantID       string
	Weekdays       []time.Weekday
	DayStartMin    int
	DayEndMin      int
	GranularityMin int
	BufferMin      int
	LeadTimeMin    int
	Timezone       string
}

// DefaultAvailabilityPolicy returns Mon–Fri 09:00–17:00 with 15-minute
// granularity, 15-minute buffer and 60-minute lead time.
func DefaultAvailabilityPolicy() AvailabilityPolicy {
	return AvailabilityPolicy{
		Weekdays: []time.Weekday{
			time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
		},
		DayStartMin:    DefaultDayStartMin,
		DayEndMin:      DefaultDayEndMin,
		GranularityMin: DefaultSlotGranularityMin,
		BufferMin:      DefaultBufferMin,
		LeadTimeMin:    DefaultLeadTimeMin,
		Timezone:       "UTC",
	}
}

// ResolvePolicy returns a fully-populated policy: unset fields of p fall back
// to the defaults, and an empty timezone falls back to tenantTZ, then UTC.
// A nil p yields the defaults.
func ResolvePolicy(p *AvailabilityPolicy, tenantTZ string) AvailabilityPolicy {
	out := DefaultAvailabilityPolicy()
	out.Timezone = CoalesceStr(tenantTZ, out.Timezone)
	if p == nil {
		return out
	}
	out.TenantID = p.TenantID
	if len(p.Weekdays) > 0 {
		out.Weekdays = append([]time.Weekday(nil), p.Weekdays...)
	}
	if p.DayEndMin > p.DayStartMin && p.DayStartMin >= 0 && p.DayEndMin <= 24*60 {
		out.DayStartMin = p.DayStartMin
		out.DayEndMin = p.DayEndMin
	}
	out.GranularityMin = PositiveOr(p.GranularityMin, out.GranularityMin)
	if p.BufferMin >= 0 {
		out.BufferMin = p.BufferMin
	}
	if p.LeadTimeMin >= 0 {
		out.LeadTimeMin = p.LeadTimeMin
	}
	out.Timezone = CoalesceStr(p.Timezone, out.Timezone)
	return out
}

// Location loads the policy timezone, falling back to UTC for unknown names.
func (p AvailabilityPolicy) Location() *time.Location {
	if p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AllowsWeekday reports whether bookings are accepted on d.
func (p AvailabilityPolicy) AllowsWeekday(d time.Weekday) bool {
	for _, w := range p.Weekdays {
		if w == d {
			return true
		}
	}
	return false
}

// Day returns local midnight of the calendar day containing t, in the policy
// timezone.
func (p AvailabilityPolicy) Day(t time.Time) time.Time {
	loc := p.Location()
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// WorkingWindow returns the working hours of the calendar day containing
// date. ok is false when the weekday is not a working day. Wall-clock
// construction keeps the window correct across DST transitions.
func (p AvailabilityPolicy) WorkingWindow(date time.Time) (start, end time.Time, ok bool) {
	day := p.Day(date)
	if !p.AllowsWeekday(day.Weekday()) {
		return time.Time{}, time.Time{}, false
	}
	start, end = p.clockWindow(day)
	return start, end, true
}

// DayWindow is WorkingWindow without the weekday check.
func (p AvailabilityPolicy) DayWindow(date time.Time) (start, end time.Time) {
	return p.clockWindow(p.Day(date))
}

func (p AvailabilityPolicy) clockWindow(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	loc := day.Location()
	start := time.Date(y, m, d, p.DayStartMin/60, p.DayStartMin%60, 0, 0, loc)
	end := time.Date(y, m, d, p.DayEndMin/60, p.DayEndMin%60, 0, 0, loc)
	return start, end
}

// Granularity returns the slot tick as a duration.
func (p AvailabilityPolicy) Granularity() time.Duration {
	return time.Duration(PositiveOr(p.GranularityMin, DefaultSlotGranularityMin)) * time.Minute
}

// Buffer returns the idle time enforced around commitments.
func (p AvailabilityPolicy) Buffer() time.Duration {
	return time.Duration(p.BufferMin) * time.Minute
}

// LeadTime returns the minimum notice before a bookable start.
func (p AvailabilityPolicy) LeadTime() time.Duration {
	return time.Duration(p.LeadTimeMin) * time.Minute
}

// FormatClock renders minutes after midnight as HH:MM.
func FormatClock(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// ParseClock parses HH:MM into minutes after midnight. "24:00" is accepted
// as end of day.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("time of day %q must be HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("time of day %q: invalid hour", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("time of day %q: invalid minute", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time of day %q is out of range", s)
	}
	return h*60 + m, nil
}

// FormatWeekdays renders weekdays as a comma-separated list of 0–6 numbers.
func FormatWeekdays(days []time.Weekday) string {
	sorted := append([]time.Weekday(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, d := range sorted {
		parts[i] = strconv.Itoa(int(d))
	}
	return strings.Join(parts, ",")
}

// ParseWeekdays parses a comma-separated list of 0–6 numbers (0 = Sunday).
func ParseWeekdays(s string) ([]time.Weekday, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	seen := make(map[time.Weekday]bool)
	var out []time.Weekday
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("weekday %q must be a number 0-6", part)
		}
		d := time.Weekday(n)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out, nil
}
