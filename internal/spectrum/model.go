package spectrum

import (
	"math"
	"math/cmplx"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Run represents a single transfer matrix computation over a telescope.
// Each run captures metadata about when and how the computation was performed.
type Run struct {
	ID           int64     `json:"ID"`               // Unique identifier for the run
	StartTime    time.Time `json:"startTime"`        // When the computation began
	Telescope    string    `json:"telescope"`        // Geometry of the telescope (e.g., "cylinder", "planar")
	Polarisation string    `json:"polarisation"`     // Polarisation variant (e.g., "unpolarised", "polarised")
	LSide        int       `json:"lside"`            // Side length of the stored blocks
	NumBaselines int       `json:"numBaselines"`     // Number of unique baselines
	NumFreqs     int       `json:"numFreqs"`         // Number of frequency channels
	Config       *string   `json:"config,omitempty"` // Optional telescope configuration in JSON format
}

// Baseline is a unique baseline of a run.
type Baseline struct {
	Index      int     `json:"index"`
	U          float64 `json:"u"`          // East component in metres
	V          float64 `json:"v"`          // North component in metres
	Redundancy int     `json:"redundancy"` // Number of feed pairs sharing the baseline
	FeedI      int     `json:"feedI"`
	FeedJ      int     `json:"feedJ"`
}

// Channel is a frequency channel of a run.
type Channel struct {
	Index      int     `json:"index"`
	Frequency  float64 `json:"frequency"`  // Centre frequency in MHz
	Wavelength float64 `json:"wavelength"` // Wavelength in metres
}

// TransferBlock is one [l, m] block of a transfer matrix.
type TransferBlock struct {
	BaselineIndex  int
	FrequencyIndex int
	PolI, PolJ     int // Polarisation slot, zero for unpolarised runs
	Lmax           int // Bandlimit the block was computed at
	Matrix         *mat.CDense
}

// AngularPoint is the power of a transfer block at one multipole.
type AngularPoint struct {
	L     int      `json:"l"`
	Power *float64 `json:"power,omitempty"` // Power in dB (nil if the multipole carries no power)
}

// AngularSpectrum is the angular power of one baseline at one frequency.
type AngularSpectrum struct {
	BaselineIndex  int            `json:"baselineIndex"`
	FrequencyIndex int            `json:"frequencyIndex"`
	Frequency      float64        `json:"frequency"` // Centre frequency in MHz
	Lmax           int            `json:"lmax"`
	Points         []AngularPoint `json:"points,omitempty"` // Ordered by multipole
}

// PowerSpectrum sums |B_lm|² over m for each l of a block and returns it in dB.
func PowerSpectrum(block *mat.CDense) []AngularPoint {
	rows, cols := block.Dims()
	points := make([]AngularPoint, rows)
	for l := 0; l < rows; l++ {
		var sum float64
		for m := 0; m < cols; m++ {
			a := cmplx.Abs(block.At(l, m))
			sum += a * a
		}

		points[l].L = l
		if sum > 0 {
			db := 10 * math.Log10(sum)
			points[l].Power = &db
		}
	}
	return points
}
