package scheduling

import (
	"iter"
	"time"
)

const (
	SlotLength     = time.Hour
	SlotsPerDay    = 24
	MaxSuggestions = 5
)

// DayGrid yields the hour-aligned one-hour windows of the local day that
// contains now. A window is yielded only when it starts at or after now and
// ends no later than 23:59:59.999 local time, which excludes the 23:00 slot.
// The sequence is finite and can be ranged over more than once.
func DayGrid(now time.Time, loc *time.Location) iter.Seq[Interval] {
	if loc == nil {
		loc = time.Local
	}
	return func(yield func(Interval) bool) {
		local := now.In(loc)
		y, m, d := local.Date()
		startOfDay := time.Date(y, m, d, 0, 0, 0, 0, loc)
		endOfDay := time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), loc)

		for i := 0; i < SlotsPerDay; i++ {
			start := startOfDay.Add(time.Duration(i) * SlotLength)
			end := start.Add(SlotLength)
			if start.Before(now) || end.After(endOfDay) {
				continue
			}
			if !yield(Interval{Start: start, End: end}) {
				return
			}
		}
	}
}

// FreeSlots filters slots that overlap any booked interval.
func FreeSlots(slots iter.Seq[Interval], booked []Interval) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		for slot := range slots {
			if overlapsAny(slot, booked) {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

func Take(seq iter.Seq[Interval], n int) []Interval {
	if n <= 0 {
		return []Interval{}
	}
	out := make([]Interval, 0, n)
	for v := range seq {
		out = append(out, v)
		if len(out) == n {
			break
		}
	}
	return out
}

// SuggestSlots returns up to limit free one-hour windows for today in
// chronological order. Suggestions are advisory and reserve nothing.
func SuggestSlots(now time.Time, loc *time.Location, booked []Interval, limit int) []Interval {
	return Take(FreeSlots(DayGrid(now, loc), booked), limit)
}

func overlapsAny(slot Interval, booked []Interval) bool {
	for _, b := range booked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
