package scheduler

import (
	"time"

	"github.com/alexanderramin/horizon/internal/interval"
)

// DefaultSuggestionLimit caps alternative start times offered on a conflict.
const DefaultSuggestionLimit = 5

// SuggestAlternatives scans the gaps of window left by busy and returns the
// start of each gap long enough to hold duration, earliest first, including
// the tail of the day. Suggestions never start before notBefore.
func SuggestAlternatives(window interval.Interval, busy []interval.Interval, duration time.Duration, notBefore time.Time, limit int) []time.Time {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	if window.Start.Before(notBefore) {
		window.Start = notBefore
	}
	if duration <= 0 || window.Empty() {
		return nil
	}

	var out []time.Time
	for _, gap := range interval.Gaps(window.Start, window.End, interval.Merge(busy)) {
		if gap.Duration() < duration {
			continue
		}
		out = append(out, gap.Start)
		if len(out) == limit {
			break
		}
	}
	return out
}
