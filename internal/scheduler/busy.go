package scheduler

import (
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
)

// BusyIntervals converts events into a sorted, merged busy set. Zero-length
// events occupy no time under half-open semantics and are dropped.
func BusyIntervals(events []domain.CalendarEvent) []interval.Interval {
	ivs := make([]interval.Interval, 0, len(events))
	for _, ev := range events {
		if !ev.Start.Before(ev.End) {
			continue
		}
		ivs = append(ivs, interval.New(ev.Start, ev.End))
	}
	return interval.Merge(ivs)
}

// padBusy widens every busy interval by buffer and re-merges.
func padBusy(busy []interval.Interval, buffer time.Duration) []interval.Interval {
	if buffer <= 0 {
		return interval.Merge(busy)
	}
	padded := make([]interval.Interval, len(busy))
	for i, b := range busy {
		padded[i] = b.Pad(buffer)
	}
	return interval.Merge(padded)
}

// overlapsAny reports whether cand overlaps any interval of a sorted set.
func overlapsAny(set []interval.Interval, cand interval.Interval) bool {
	for _, b := range set {
		if !b.Start.Before(cand.End) {
			return false
		}
		if b.Overlaps(cand) {
			return true
		}
	}
	return false
}

// alignUp rounds t up to the next multiple of tick counted from origin.
func alignUp(t, origin time.Time, tick time.Duration) time.Time {
	if tick <= 0 {
		return t
	}
	off := t.Sub(origin)
	rem := off % tick
	if rem == 0 {
		return t
	}
	if rem < 0 {
		return t.Add(-rem)
	}
	return t.Add(tick - rem)
}
