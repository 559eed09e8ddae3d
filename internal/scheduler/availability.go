package scheduler

import (
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
)

// DayAvailability is the free time of one working day.
type DayAvailability struct {
	Date time.Time // local midnight in the policy timezone
	Free []interval.Interval
}

// FreeDays derives, for every working day touching [from, to), the gaps of
// the working window not covered by busy. busy must cover the whole range;
// it is fetched once by the caller rather than per day.
func FreeDays(p domain.AvailabilityPolicy, from, to time.Time, busy []interval.Interval) []DayAvailability {
	if !from.Before(to) {
		return nil
	}
	merged := interval.Merge(busy)
	rangeIv := interval.New(from, to)

	var days []DayAvailability
	for day := p.Day(from); day.Before(to); day = nextDay(day) {
		start, end, ok := p.WorkingWindow(day)
		if !ok {
			continue
		}
		window := interval.Clip(interval.New(start, end), rangeIv)
		if window.Empty() {
			continue
		}
		days = append(days, DayAvailability{
			Date: day,
			Free: interval.Gaps(window.Start, window.End, merged),
		})
	}
	return days
}

// FlattenFree concatenates the free intervals of all days in order.
func FlattenFree(days []DayAvailability) []interval.Interval {
	var out []interval.Interval
	for _, d := range days {
		out = append(out, d.Free...)
	}
	return out
}

// nextDay advances local midnight by one calendar day, staying on midnight
// across DST changes.
func nextDay(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, day.Location())
}
