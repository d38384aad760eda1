package cylinder

import (
	"github.com/roman-kulish/beam-transfer/internal/telescope"
	"github.com/roman-kulish/beam-transfer/internal/visibility"
)

// Beam is the field pattern of a feed at the focus of a cylinder. Every
// feed shares the same pattern, so only the map for the most recently
// requested frequency and resolution is kept.
type Beam struct {
	width float64 // Metres

	freq  int
	nside int
	cache []complex128
}

// NewBeam creates the beam of a cylinder width metres across.
func NewBeam(width float64) *Beam {
	return &Beam{width: width, freq: -1}
}

// Beam implements telescope.Beam.
func (b *Beam) Beam(sky *telescope.Sky, _ int, freq telescope.Frequency) []complex128 {
	if b.cache != nil && b.freq == freq.Index && b.nside == sky.Nside {
		return b.cache
	}

	pattern := visibility.CylinderBeam(sky.Positions, sky.Zenith, b.width/freq.Wavelength)
	out := make([]complex128, len(pattern))
	for i, v := range pattern {
		out[i] = complex(v, 0)
	}

	b.freq, b.nside, b.cache = freq.Index, sky.Nside, out
	return out
}

// Clone returns a beam with an empty cache.
func (b *Beam) Clone() telescope.Beam {
	return NewBeam(b.width)
}
