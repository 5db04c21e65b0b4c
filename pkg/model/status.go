package model

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusActive    BookingStatus = "active"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// SlotHoldingStatuses are the statuses that occupy a spot's calendar.
var SlotHoldingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusActive}

// TerminalStatuses have no outgoing transitions.
var TerminalStatuses = []BookingStatus{StatusCancelled, StatusCompleted}

// transitions lists every allowed status change. The completed edges exist so a
// future completion job has a legal path; no operation drives them yet.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusActive, StatusCancelled, StatusCompleted},
	StatusActive:    {StatusCancelled, StatusCompleted},
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusActive, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

func (s BookingStatus) HoldsSlot() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusActive
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s BookingStatus) String() string {
	return string(s)
}
