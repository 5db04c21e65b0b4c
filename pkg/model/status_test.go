package model

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBookingStatus_Classification(t *testing.T) {
	tests := []struct {
		status   BookingStatus
		terminal bool
		holds    bool
	}{
		{StatusPending, false, true},
		{StatusConfirmed, false, true},
		{StatusActive, false, true},
		{StatusCancelled, true, false},
		{StatusCompleted, true, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if !tt.status.IsValid() {
				t.Errorf("%s should be valid", tt.status)
			}
			if got := tt.status.IsTerminal(); got != tt.terminal {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.terminal)
			}
			if got := tt.status.HoldsSlot(); got != tt.holds {
				t.Errorf("HoldsSlot() = %v, want %v", got, tt.holds)
			}
		})
	}

	if BookingStatus("archived").IsValid() {
		t.Errorf("unknown status should be invalid")
	}
}

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		allowed  bool
	}{
		{StatusConfirmed, StatusCancelled, true},
		{StatusPending, StatusCancelled, true},
		{StatusActive, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusPending, StatusCompleted, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.allowed)
			}
		})
	}

	for _, terminal := range TerminalStatuses {
		for _, next := range append(SlotHoldingStatuses, TerminalStatuses...) {
			if terminal.CanTransitionTo(next) {
				t.Errorf("terminal status %s must not move to %s", terminal, next)
			}
		}
	}
}

func TestBookingDetails_JSONFlattensBooking(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	details := BookingDetails{
		Booking: &Booking{
			ID:        "b1",
			SpotID:    "s1",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Status:    StatusConfirmed,
		},
		Spot: (&Spot{ID: "s1", Address: "1 Main St", PricePerHour: 10}).Summary(),
		Host: (&User{ID: "h1", Username: "host"}).Summary(),
	}

	data, err := json.Marshal(details)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["id"] != "b1" || decoded["spotId"] != "s1" || decoded["status"] != "confirmed" {
		t.Errorf("booking fields should be promoted, got %v", decoded)
	}
	spot, ok := decoded["spot"].(map[string]any)
	if !ok || spot["address"] != "1 Main St" {
		t.Errorf("spot summary missing, got %v", decoded["spot"])
	}
	if _, ok := decoded["driver"]; ok {
		t.Errorf("nil driver should be omitted")
	}
}
