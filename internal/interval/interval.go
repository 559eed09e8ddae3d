// Package interval implements half-open time interval algebra used by the
// scheduling engine. All intervals are [Start, End): back-to-back intervals
// never overlap.
package interval

import (
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// New returns the interval [start, end).
func New(start, end time.Time) Interval {
	return Interval{Start: start, End: end}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) share any instant.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// Overlaps reports whether iv and other share any instant.
func (iv Interval) Overlaps(other Interval) bool {
	return Overlaps(iv.Start, iv.End, other.Start, other.End)
}

// Duration returns End - Start.
func (iv Interval) Duration() time.Duration {
	return iv.End.Sub(iv.Start)
}

// Empty reports whether the interval contains no instant.
func (iv Interval) Empty() bool {
	return !iv.Start.Before(iv.End)
}

// Covers reports whether iv fully contains other.
func (iv Interval) Covers(other Interval) bool {
	return !other.Start.Before(iv.Start) && !other.End.After(iv.End)
}

// Pad widens the interval by d on both sides.
func (iv Interval) Pad(d time.Duration) Interval {
	return Interval{Start: iv.Start.Add(-d), End: iv.End.Add(d)}
}

// Clip restricts iv to window. The result may be empty.
func Clip(iv, window Interval) Interval {
	out := iv
	if out.Start.Before(window.Start) {
		out.Start = window.Start
	}
	if out.End.After(window.End) {
		out.End = window.End
	}
	if out.End.Before(out.Start) {
		out.End = out.Start
	}
	return out
}

// Sort orders intervals by start, then end, in place.
func Sort(ivs []Interval) {
	sort.SliceStable(ivs, func(i, j int) bool {
		if ivs[i].Start.Equal(ivs[j].Start) {
			return ivs[i].End.Before(ivs[j].End)
		}
		return ivs[i].Start.Before(ivs[j].Start)
	})
}

// MergeSorted coalesces overlapping or touching intervals. The input must be
// sorted by start; empty intervals are dropped.
func MergeSorted(ivs []Interval) []Interval {
	merged := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		if iv.Empty() {
			continue
		}
		n := len(merged)
		if n > 0 && !iv.Start.After(merged[n-1].End) {
			if iv.End.After(merged[n-1].End) {
				merged[n-1].End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}

// Merge sorts a copy of ivs and coalesces it.
func Merge(ivs []Interval) []Interval {
	cp := make([]Interval, len(ivs))
	copy(cp, ivs)
	Sort(cp)
	return MergeSorted(cp)
}

// Gaps returns the complement of busy within [windowStart, windowEnd).
// busy must be sorted by start; it need not be merged.
func Gaps(windowStart, windowEnd time.Time, busy []Interval) []Interval {
	if !windowStart.Before(windowEnd) {
		return nil
	}
	window := Interval{Start: windowStart, End: windowEnd}
	var gaps []Interval
	cursor := windowStart
	for _, b := range MergeSorted(busy) {
		if !b.Overlaps(window) {
			continue
		}
		if b.Start.After(cursor) {
			gaps = append(gaps, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(windowEnd) {
		gaps = append(gaps, Interval{Start: cursor, End: windowEnd})
	}
	return gaps
}

// Intersect returns the pairwise intersection of two sorted, merged sets.
func Intersect(a, b []Interval) []Interval {
	var out []Interval
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		start := a[i].Start
		if b[j].Start.After(start) {
			start = b[j].Start
		}
		end := a[i].End
		if b[j].End.Before(end) {
			end = b[j].End
		}
		if start.Before(end) {
			out = append(out, Interval{Start: start, End: end})
		}
		if a[i].End.Before(b[j].End) {
			i++
		} else {
			j++
		}
	}
	return out
}

// AtLeast filters intervals whose duration is at least d.
func AtLeast(ivs []Interval, d time.Duration) []Interval {
	var out []Interval
	for _, iv := range ivs {
		if iv.Duration() >= d {
			out = append(out, iv)
		}
	}
	return out
}
