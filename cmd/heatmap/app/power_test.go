package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 {
	return &v
}

func descending(n int, step float64) []float64 {
	powers := make([]float64, n)
	for i := range powers {
		powers[i] = -float64(i) * step
	}
	return powers
}

func TestDynamicRangeBounds(t *testing.T) {
	tests := []struct {
		name         string
		powers       []float64
		dynamicRange float64
		want         PowerBounds
	}{
		{
			name: "empty",
			want: defaultPowerBounds(),
		},
		{
			// The 99th percentile of 0 .. -99 is -1.
			name:         "range below peak",
			powers:       descending(100, 1),
			dynamicRange: 60,
			want:         PowerBounds{Min: -61, Max: -1, Mean: -49.5},
		},
		{
			name:         "shallow data",
			powers:       descending(30, 1),
			dynamicRange: 60,
			want:         PowerBounds{Min: -29, Max: 0, Mean: -14.5},
		},
		{
			name:         "default range",
			powers:       descending(100, 2),
			dynamicRange: 0,
			want:         PowerBounds{Min: -2 - defaultDynamicRange, Max: -2, Mean: -99},
		},
		{
			name:         "minimum range",
			powers:       []float64{-20, -20, -20, -20},
			dynamicRange: 60,
			want:         PowerBounds{Min: -20 - minimumRange, Max: -20, Mean: -20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dynamicRangeBounds(tt.powers, tt.dynamicRange)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
		})
	}
}

func TestDynamicRangeBoundsKeepsInput(t *testing.T) {
	powers := []float64{-3, -1, -2}
	dynamicRangeBounds(powers, 60)
	assert.Equal(t, []float64{-3, -1, -2}, powers)
}

func TestPowerBoundsOverride(t *testing.T) {
	spec := testSpectrum()

	tests := []struct {
		name   string
		config Config
		want   PowerBounds
	}{
		{
			name:   "from data",
			config: Config{DynamicRange: 60},
			want:   PowerBounds{Min: -40, Max: 0, Mean: -20},
		},
		{
			name:   "narrow range",
			config: Config{DynamicRange: 15},
			want:   PowerBounds{Min: -15, Max: 0, Mean: -20},
		},
		{
			name:   "manual",
			config: Config{DynamicRange: 60, MinPower: ptr(-100), MaxPower: ptr(10)},
			want:   PowerBounds{Min: -100, Max: 10, Mean: -20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := powerBounds(spec, &tt.config)
			assert.InDelta(t, tt.want.Min, got.Min, 1e-9)
			assert.InDelta(t, tt.want.Max, got.Max, 1e-9)
			assert.InDelta(t, tt.want.Mean, got.Mean, 1e-9)
		})
	}
}
