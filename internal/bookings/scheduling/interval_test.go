package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	tests := []struct {
		name      string
		start     string
		end       string
		loc       *time.Location
		wantErr   bool
		wantStart time.Time
		wantHours float64
	}{
		{
			name:      "RFC3339 UTC",
			start:     "2025-01-01T10:00:00Z",
			end:       "2025-01-01T11:30:00Z",
			wantStart: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			wantHours: 1.5,
		},
		{
			name:      "minutes precision with Z",
			start:     "2025-01-01T09:00Z",
			end:       "2025-01-01T10:00Z",
			wantStart: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC),
			wantHours: 1,
		},
		{
			name:      "fractional seconds and offset",
			start:     "2025-01-01T10:00:00.000+02:00",
			end:       "2025-01-01T10:45:00.000+02:00",
			wantStart: time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC),
			wantHours: 0.75,
		},
		{
			name:      "zone-less timestamp uses location",
			start:     "2025-06-01T10:00",
			end:       "2025-06-01T12:00",
			loc:       berlin,
			wantStart: time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC),
			wantHours: 2,
		},
		{
			name:    "end before start",
			start:   "2025-01-01T10:00Z",
			end:     "2025-01-01T09:00Z",
			wantErr: true,
		},
		{
			name:    "end equals start",
			start:   "2025-01-01T10:00Z",
			end:     "2025-01-01T10:00Z",
			wantErr: true,
		},
		{
			name:    "end within the same millisecond",
			start:   "2025-01-01T10:00:00Z",
			end:     "2025-01-01T10:00:00.0005Z",
			wantErr: true,
		},
		{
			name:      "sub-millisecond digits are dropped",
			start:     "2025-01-01T10:00:00.0004Z",
			end:       "2025-01-01T10:00:00.0019Z",
			wantStart: time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
			wantHours: 1.0 / millisPerHour,
		},
		{
			name:    "garbage start",
			start:   "tomorrow-ish",
			end:     "2025-01-01T10:00Z",
			wantErr: true,
		},
		{
			name:    "empty end",
			start:   "2025-01-01T10:00Z",
			end:     "  ",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInterval(tt.start, tt.end, tt.loc)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInterval)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Start.Equal(tt.wantStart), "start = %s, want %s", got.Start, tt.wantStart)
			assert.InDelta(t, tt.wantHours, got.DurationHours(), 1e-9)
		})
	}
}

func TestNewInterval_RejectsZeroTimes(t *testing.T) {
	_, err := NewInterval(time.Time{}, time.Now())
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestNewInterval_TruncatesToMilliseconds(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	_, err := NewInterval(start, start.Add(999*time.Microsecond))
	assert.ErrorIs(t, err, ErrInvalidInterval)

	iv, err := NewInterval(start.Add(300*time.Microsecond), start.Add(2*time.Millisecond+700*time.Microsecond))
	require.NoError(t, err)
	assert.Equal(t, start, iv.Start)
	assert.Equal(t, start.Add(2*time.Millisecond), iv.End)

	price, err := Price(iv, 3_600_000)
	require.NoError(t, err)
	assert.Equal(t, 2.0, price)
}

func TestDurationHours_UsesMilliseconds(t *testing.T) {
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	// sub-millisecond remainder is dropped
	iv := Interval{Start: start, End: start.Add(90*time.Minute + 999*time.Microsecond)}
	assert.Equal(t, 1.5, iv.DurationHours())
}

func TestInterval_Overlaps(t *testing.T) {
	at := func(h, m int) time.Time { return time.Date(2025, 1, 1, h, m, 0, 0, time.UTC) }
	existing := Interval{Start: at(11, 0), End: at(12, 0)}

	tests := []struct {
		name      string
		candidate Interval
		want      bool
	}{
		{"back to back before", Interval{at(10, 0), at(11, 0)}, false},
		{"back to back after", Interval{at(12, 0), at(13, 0)}, false},
		{"partial overlap start", Interval{at(10, 30), at(11, 30)}, true},
		{"partial overlap end", Interval{at(11, 30), at(12, 30)}, true},
		{"contained", Interval{at(11, 15), at(11, 45)}, true},
		{"containing", Interval{at(10, 0), at(13, 0)}, true},
		{"identical", existing, true},
		{"disjoint", Interval{at(8, 0), at(9, 0)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.candidate.Overlaps(existing))
			assert.Equal(t, tt.want, existing.Overlaps(tt.candidate), "overlap must be symmetric")
		})
	}
}
