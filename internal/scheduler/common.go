package scheduler

import (
	"time"

	"github.com/alexanderramin/horizon/internal/interval"
)

// FindCommonSlots anchors on the first participant's free gaps and narrows
// each gap by intersecting it with every other participant's free time. The
// start of every remaining piece that still holds duration is a meeting time
// that fits everyone. Results are ordered and capped at limit.
func FindCommonSlots(order []string, free map[string][]interval.Interval, duration time.Duration, limit int) []time.Time {
	if len(order) == 0 || duration <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	others := make([][]interval.Interval, 0, len(order)-1)
	for _, id := range order[1:] {
		others = append(others, interval.Merge(free[id]))
	}

	var out []time.Time
	for _, gap := range interval.Merge(free[order[0]]) {
		if gap.Duration() < duration {
			continue
		}
		pieces := []interval.Interval{gap}
		for _, o := range others {
			pieces = interval.AtLeast(interval.Intersect(pieces, o), duration)
			if len(pieces) == 0 {
				break
			}
		}
		for _, p := range pieces {
			out = append(out, p.Start)
			if len(out) == limit {
				return out
			}
		}
	}
	return out
}
