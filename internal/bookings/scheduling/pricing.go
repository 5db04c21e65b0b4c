package scheduling

import (
	"fmt"
	"math"
)

// TotalCost returns round(hours × rate × 100) / 100. Rounding is half away
// from zero on the cent value, so 0.125 becomes 0.13.
func TotalCost(durationHours, pricePerHour float64) (float64, error) {
	if math.IsNaN(pricePerHour) || math.IsInf(pricePerHour, 0) || pricePerHour < 0 {
		return 0, fmt.Errorf("%w: price per hour %v", ErrInvalidPrice, pricePerHour)
	}
	if math.IsNaN(durationHours) || math.IsInf(durationHours, 0) || durationHours <= 0 {
		return 0, fmt.Errorf("%w: duration %v hours", ErrInvalidInterval, durationHours)
	}
	return math.Round(durationHours*pricePerHour*100) / 100, nil
}

// Price is TotalCost for an already validated interval.
func Price(interval Interval, pricePerHour float64) (float64, error) {
	return TotalCost(interval.DurationHours(), pricePerHour)
}
