package app

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

const (
	defaultMinPower = -80.0 // dB
	defaultMaxPower = 0.0   // dB

	// Transfer power falls by many decades towards the bandlimit, so the
	// colour scale spans a fixed range below the peak rather than the
	// full spread of the data.
	defaultDynamicRange = 60.0 // dB
	minimumRange        = 10.0 // dB

	// Quantile taken as the peak, so that a handful of bright low
	// multipoles do not wash out the rest of the map.
	peakQuantile = 0.99
)

// PowerBounds is the power interval mapped onto the colour scale.
type PowerBounds struct {
	Min  float64 // dB, drawn with the lowest colour
	Max  float64 // dB, drawn with the highest colour
	Mean float64 // dB
}

func defaultPowerBounds() PowerBounds {
	return PowerBounds{
		Min:  defaultMinPower,
		Max:  defaultMaxPower,
		Mean: (defaultMinPower + defaultMaxPower) / 2,
	}
}

// dynamicRangeBounds places Max at the peak quantile of powers and Min
// dynamicRange below it, raised to the weakest power when the data does
// not reach that far down. The interval is never narrower than
// minimumRange.
func dynamicRangeBounds(powers []float64, dynamicRange float64) PowerBounds {
	if len(powers) == 0 {
		return defaultPowerBounds()
	}
	if dynamicRange <= 0 {
		dynamicRange = defaultDynamicRange
	}

	sorted := slices.Clone(powers)
	slices.Sort(sorted)

	b := PowerBounds{
		Max:  stat.Quantile(peakQuantile, stat.Empirical, sorted, nil),
		Mean: stat.Mean(sorted, nil),
	}
	b.Min = max(b.Max-dynamicRange, sorted[0])
	if b.Max-b.Min < minimumRange {
		b.Min = b.Max - minimumRange
	}
	return b
}
