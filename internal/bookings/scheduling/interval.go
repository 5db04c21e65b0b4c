// Package scheduling holds the time arithmetic behind bookings: interval
// parsing, half-open overlap, pricing and same-day slot suggestions.
// Nothing here performs I/O.
package scheduling

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidInterval = errors.New("invalid interval")
	ErrInvalidPrice    = errors.New("invalid price")
)

const millisPerHour = 3_600_000

// zoned layouts carry their own offset; time.Parse also accepts fractional
// seconds after the seconds field.
var zonedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// local layouts have no offset and are read in the caller's location.
var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Interval is the half-open window [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// NewInterval truncates both instants to whole milliseconds, the precision
// bookings are stored and priced at, before checking that end is after start.
func NewInterval(start, end time.Time) (Interval, error) {
	start, end = start.Truncate(time.Millisecond), end.Truncate(time.Millisecond)
	if start.IsZero() || end.IsZero() {
		return Interval{}, fmt.Errorf("%w: start and end are required", ErrInvalidInterval)
	}
	if !end.After(start) {
		return Interval{}, fmt.Errorf("%w: end time must be after start time", ErrInvalidInterval)
	}
	return Interval{Start: start, End: end}, nil
}

// ParseInterval parses two ISO-8601 timestamps. Timestamps without an offset
// are interpreted in loc (UTC when loc is nil).
func ParseInterval(start, end string, loc *time.Location) (Interval, error) {
	s, err := ParseTimestamp(start, loc)
	if err != nil {
		return Interval{}, err
	}
	e, err := ParseTimestamp(end, loc)
	if err != nil {
		return Interval{}, err
	}
	return NewInterval(s, e)
}

// ParseTimestamp reads one ISO-8601 timestamp at millisecond precision.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrInvalidInterval)
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Truncate(time.Millisecond), nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.Truncate(time.Millisecond), nil
		}
	}
	// a bare date is midnight UTC
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("%w: cannot parse %q as a timestamp", ErrInvalidInterval, value)
}

// DurationHours is the fractional number of hours, computed from milliseconds.
func (i Interval) DurationHours() float64 {
	return float64(i.End.Sub(i.Start).Milliseconds()) / millisPerHour
}

// Overlaps applies the half-open rule: back-to-back windows do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && i.End.After(other.Start)
}

func (i Interval) String() string {
	return fmt.Sprintf("[%s, %s)", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}
