package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWavelength(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		want float64
	}{
		{"1 MHz", 1, 299.792458},
		{"400 MHz", 400, 0.749481145},
		{"800 MHz", 800, 0.3747405725},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Wavelength(tt.freq), 1e-12)
		})
	}
}

func TestWavelengths(t *testing.T) {
	got := Wavelengths([]float64{400, 800})
	assert.Len(t, got, 2)
	assert.Greater(t, got[0], got[1])
}

func TestLinspace(t *testing.T) {
	tests := []struct {
		name        string
		start, stop float64
		num         int
		want        []float64
	}{
		{"single", 400, 800, 1, []float64{400}},
		{"two", 400, 800, 2, []float64{400, 800}},
		{"five", 0, 1, 5, []float64{0, 0.25, 0.5, 0.75, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDeltaSlice(t, tt.want, Linspace(tt.start, tt.stop, tt.num), 1e-12)
		})
	}

	assert.Empty(t, Linspace(0, 1, 0))
}

func TestRadians(t *testing.T) {
	assert.InDelta(t, math.Pi/2, Radians(90), 1e-15)
	assert.InDelta(t, math.Pi/4, Radians(45), 1e-15)
}
