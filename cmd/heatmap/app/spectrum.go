package app

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/roman-kulish/beam-transfer/internal/spectrum"
)

// SpectrumData accumulates the angular power of one baseline over frequency:
// one row per channel, one column per multipole.
type SpectrumData struct {
	Width, Height              int // Multipoles and channels
	FrequencyMin, FrequencyMax float64
	Rows                       [][]*float64

	powers []float64
}

func NewSpectrumData() *SpectrumData {
	return &SpectrumData{
		FrequencyMin: math.MaxFloat64,
		Rows:         make([][]*float64, 0),
	}
}

func (s *SpectrumData) Update(sp *spectrum.AngularSpectrum) {
	s.Width = max(s.Width, len(sp.Points))
	s.Height++

	s.FrequencyMin = min(s.FrequencyMin, sp.Frequency)
	s.FrequencyMax = max(s.FrequencyMax, sp.Frequency)

	row := make([]*float64, len(sp.Points))
	for _, p := range sp.Points {
		if p.L < 0 || p.L >= len(row) {
			continue
		}
		row[p.L] = p.Power
		if p.Power != nil && !math.IsInf(*p.Power, 0) && !math.IsNaN(*p.Power) {
			s.powers = append(s.powers, *p.Power)
		}
	}
	s.Rows = append(s.Rows, row)
}

// PowerRange returns the smallest and largest power seen, or false when no
// multipole carried power.
func (s *SpectrumData) PowerRange() (lo, hi float64, ok bool) {
	if len(s.powers) == 0 {
		return 0, 0, false
	}
	return floats.Min(s.powers), floats.Max(s.powers), true
}

// Bounds returns the colour scale bounds spanning dynamicRange dB below the
// peak power.
func (s *SpectrumData) Bounds(dynamicRange float64) PowerBounds {
	return dynamicRangeBounds(s.powers, dynamicRange)
}
