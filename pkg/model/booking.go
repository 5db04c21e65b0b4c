package model

import (
	"time"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Booking is a driver's reservation of one spot for [StartTime, EndTime).
// Only Status and UpdatedAt change after creation.
type Booking struct {
	ID            string        `json:"id,omitempty" bson:"_id,omitempty"`
	DriverID      string        `json:"driverId" bson:"driver_id"`
	SpotID        string        `json:"spotId" bson:"spot_id"`
	HostID        string        `json:"hostId" bson:"host_id"`
	StartTime     time.Time     `json:"startTime" bson:"start_time"`
	EndTime       time.Time     `json:"endTime" bson:"end_time"`
	TotalCost     float64       `json:"totalCost" bson:"total_cost"`
	Status        BookingStatus `json:"status" bson:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" bson:"payment_status"`
	Notes         string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" bson:"updated_at"`
}

type CreateBookingRequest struct {
	SpotID    string `json:"spotId" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	Notes     string `json:"notes,omitempty"`
}

// BookingDetails is a booking joined with display fields of the records it references.
type BookingDetails struct {
	*Booking
	Spot   *SpotSummary `json:"spot,omitempty"`
	Driver *UserSummary `json:"driver,omitempty"`
	Host   *UserSummary `json:"host,omitempty"`
}

type BookedSlot struct {
	StartTime time.Time `json:"startTime" bson:"start_time"`
	EndTime   time.Time `json:"endTime" bson:"end_time"`
}

type SuggestedSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SpotSlots struct {
	BookedSlots    []BookedSlot    `json:"bookedSlots"`
	SuggestedSlots []SuggestedSlot `json:"suggestedSlots"`
}
