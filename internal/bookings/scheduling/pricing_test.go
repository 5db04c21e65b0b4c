package scheduling

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalCost(t *testing.T) {
	tests := []struct {
		name    string
		hours   float64
		rate    float64
		want    float64
		wantErr error
	}{
		{name: "one and a half hours at 10", hours: 1.5, rate: 10, want: 15.00},
		{name: "two hours at 10", hours: 2, rate: 10, want: 20.00},
		{name: "zero rate is free", hours: 1, rate: 0, want: 0.00},
		{name: "half cent rounds away from zero", hours: 0.125, rate: 1, want: 0.13},
		{name: "fraction of an hour", hours: 20.0 / 60.0, rate: 4.5, want: 1.5},
		{name: "negative rate", hours: 1, rate: -1, wantErr: ErrInvalidPrice},
		{name: "NaN rate", hours: 1, rate: math.NaN(), wantErr: ErrInvalidPrice},
		{name: "zero duration", hours: 0, rate: 10, wantErr: ErrInvalidInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TotalCost(tt.hours, tt.rate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTotalCost_AtMostTwoDecimals(t *testing.T) {
	start := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	rates := []float64{0, 1, 2.5, 3.33, 7.77, 10, 12.49}

	for minutes := 1; minutes <= 300; minutes += 7 {
		for _, rate := range rates {
			iv := Interval{Start: start, End: start.Add(time.Duration(minutes) * time.Minute)}
			got, err := Price(iv, rate)
			require.NoError(t, err)

			cents := got * 100
			assert.InDelta(t, math.Round(cents), cents, 1e-6, "minutes=%d rate=%v cost=%v", minutes, rate, got)
			assert.GreaterOrEqual(t, got, 0.0)
		}
	}
}
