package scheduling

import "parkspot/pkg/model"

// FindConflict returns the first booking that still holds its slot and
// overlaps candidate, or nil. Cancelled and completed bookings never conflict.
func FindConflict(candidate Interval, existing []*model.Booking) *model.Booking {
	for _, b := range existing {
		if b == nil || !b.Status.HoldsSlot() {
			continue
		}
		if candidate.Overlaps(Interval{Start: b.StartTime, End: b.EndTime}) {
			return b
		}
	}
	return nil
}

func BookingInterval(b *model.Booking) Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}
