package scheduler

import (
	"time"

	"github.com/alexanderramin/horizon/internal/domain"
	"github.com/alexanderramin/horizon/internal/interval"
)

// BookingSlot is a candidate meeting interval offered to an external client.
type BookingSlot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

type SlotStatus string

const (
	SlotsAvailable      SlotStatus = "available"
	SlotsNoAvailability SlotStatus = "no_availability"
	SlotsNonWorkingDay  SlotStatus = "non_working_day"
)

// SlotRequest is the full input of GenerateSlots. Policy must already be
// resolved; Busy holds the host's commitments around Date.
type SlotRequest struct {
	Policy         domain.AvailabilityPolicy
	Date           time.Time
	DurationMin    int
	Busy           []interval.Interval
	Now            time.Time
	IncludeBlocked bool
}

type SlotResult struct {
	Status SlotStatus
	Slots  []BookingSlot
}

// Bookable returns only the available slots.
func (r SlotResult) Bookable() []BookingSlot {
	var out []BookingSlot
	for _, s := range r.Slots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

// GenerateSlots walks the working window of req.Date on the policy's
// granularity grid. Busy intervals are widened by the buffer. A free
// candidate is emitted and the cursor jumps past it plus the buffer, then
// realigns to the next tick; a blocked candidate advances one tick. Slots
// starting before Now plus the lead time are blocked.
func GenerateSlots(req SlotRequest) SlotResult {
	p := req.Policy
	windowStart, windowEnd, ok := p.WorkingWindow(req.Date)
	if !ok {
		return SlotResult{Status: SlotsNonWorkingDay}
	}
	if req.DurationMin <= 0 {
		return SlotResult{Status: SlotsNoAvailability}
	}

	dur := time.Duration(req.DurationMin) * time.Minute
	tick := p.Granularity()
	midnight := p.Day(req.Date)
	blocked := padBusy(req.Busy, p.Buffer())
	earliest := req.Now.Add(p.LeadTime())

	var res SlotResult
	bookable := 0
	cursor := alignUp(windowStart, midnight, tick)
	for !cursor.Add(dur).After(windowEnd) {
		cand := interval.New(cursor, cursor.Add(dur))
		free := !cursor.Before(earliest) && !overlapsAny(blocked, cand)
		if free {
			res.Slots = append(res.Slots, BookingSlot{Start: cand.Start, End: cand.End, Available: true})
			bookable++
			cursor = alignUp(cand.End.Add(p.Buffer()), midnight, tick)
			continue
		}
		if req.IncludeBlocked {
			res.Slots = append(res.Slots, BookingSlot{Start: cand.Start, End: cand.End})
		}
		cursor = cursor.Add(tick)
	}

	if bookable == 0 {
		res.Status = SlotsNoAvailability
	} else {
		res.Status = SlotsAvailable
	}
	return res
}

type SlotCheck string

const (
	SlotOK            SlotCheck = "ok"
	SlotNonWorkingDay SlotCheck = "non_working_day"
	SlotOutsideHours  SlotCheck = "outside_working_hours"
	SlotTooSoon       SlotCheck = "inside_lead_time"
	SlotConflict      SlotCheck = "conflict"
)

// ValidateSlot re-applies the GenerateSlots rules to one requested interval
// without requiring it to sit on the grid.
func ValidateSlot(p domain.AvailabilityPolicy, start time.Time, durationMin int, busy []interval.Interval, now time.Time) SlotCheck {
	windowStart, windowEnd, ok := p.WorkingWindow(start)
	if !ok {
		return SlotNonWorkingDay
	}
	end := start.Add(time.Duration(durationMin) * time.Minute)
	if durationMin <= 0 || start.Before(windowStart) || end.After(windowEnd) {
		return SlotOutsideHours
	}
	if start.Before(now.Add(p.LeadTime())) {
		return SlotTooSoon
	}
	if overlapsAny(padBusy(busy, p.Buffer()), interval.New(start, end)) {
		return SlotConflict
	}
	return SlotOK
}
