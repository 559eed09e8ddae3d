package domain

import "time"

// TimelineItem is one entry of the unified, read-only timeline. Dated
// records without a duration (task, invoice and contract due dates) have
// End equal to Start.
type TimelineItem struct {
	Kind     TimelineKind
	SourceID string
	Title    string
	Start    time.Time
	End      time.Time
	AllDay   bool
	Status   string
}
