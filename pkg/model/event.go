package model

import "time"

const (
	EventBookingCreated   = "booking.created"
	EventBookingCancelled = "booking.cancelled"
)

type BookingEvent struct {
	Type       string        `json:"type"`
	BookingID  string        `json:"bookingId"`
	SpotID     string        `json:"spotId"`
	DriverID   string        `json:"driverId"`
	HostID     string        `json:"hostId"`
	StartTime  time.Time     `json:"startTime"`
	EndTime    time.Time     `json:"endTime"`
	TotalCost  float64       `json:"totalCost"`
	Status     BookingStatus `json:"status"`
	OccurredAt time.Time     `json:"occurredAt"`
}

func NewBookingEvent(eventType string, b *Booking, at time.Time) BookingEvent {
	return BookingEvent{
		Type:       eventType,
		BookingID:  b.ID,
		SpotID:     b.SpotID,
		DriverID:   b.DriverID,
		HostID:     b.HostID,
		StartTime:  b.StartTime,
		EndTime:    b.EndTime,
		TotalCost:  b.TotalCost,
		Status:     b.Status,
		OccurredAt: at,
	}
}
