// Package units provides physical constants and frequency conversions
package units

import "math"

const (
	// SpeedOfLight in metres per second
	SpeedOfLight = 299792458.0

	// MHz is one megahertz in hertz
	MHz = 1e6
)

// Wavelength converts a frequency in MHz to a wavelength in metres.
func Wavelength(freqMHz float64) float64 {
	return SpeedOfLight / (MHz * freqMHz)
}

// Wavelengths converts a slice of frequencies in MHz to wavelengths in metres.
func Wavelengths(freqsMHz []float64) []float64 {
	out := make([]float64, len(freqsMHz))
	for i, f := range freqsMHz {
		out[i] = Wavelength(f)
	}
	return out
}

// Linspace returns num evenly spaced samples over the closed interval [start, stop].
// A single sample is start.
func Linspace(start, stop float64, num int) []float64 {
	if num <= 0 {
		return nil
	}
	out := make([]float64, num)
	if num == 1 {
		out[0] = start
		return out
	}
	step := (stop - start) / float64(num-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[num-1] = stop
	return out
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}
