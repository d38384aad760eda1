package telescope

import (
	"fmt"

	"github.com/roman-kulish/beam-transfer/internal/healpix"
	"github.com/roman-kulish/beam-transfer/internal/sphtrans"
	"github.com/roman-kulish/beam-transfer/internal/visibility"
)

// Frequency identifies one channel of the telescope.
type Frequency struct {
	Index      int
	MHz        float64
	Wavelength float64 // Metres
}

// Beam supplies the complex field pattern of a feed over the sky.
type Beam interface {
	Beam(sky *Sky, feed int, freq Frequency) []complex128
}

// BeamCloner is implemented by beams that keep mutable caches and must be
// copied for use by another telescope clone.
type BeamCloner interface {
	Clone() Beam
}

// Sky is the pixelisation, together with everything derived from it that
// depends only on the resolution and the telescope's pointing.
type Sky struct {
	Nside     int
	Positions []healpix.Pointing
	Zenith    healpix.Pointing
	Horizon   []float64

	// Horizon-masked I, Q, U projections of the xx, xy and yy feed
	// products. Only populated for polarised telescopes.
	projections [3][3][]float64

	transformer *sphtrans.Transformer
}

// skyCache keeps the sky of the most recently used resolution.
type skyCache struct {
	sky    *Sky
	builds int

	// extend attaches variant-specific maps to a freshly built sky.
	extend func(*Sky)
}

func (c *skyCache) resolve(t *Telescope, lmax int) (*Sky, error) {
	nside := healpix.NsideForLmax(lmax, t.accuracyBoost)
	if c.sky != nil && c.sky.Nside == nside && c.sky.Zenith == t.zenith {
		return c.sky, nil
	}

	grid, err := healpix.NewGrid(nside)
	if err != nil {
		return nil, fmt.Errorf("building grid: %w", err)
	}

	sky := &Sky{
		Nside:       nside,
		Positions:   grid.Positions,
		Zenith:      t.zenith,
		Horizon:     visibility.Horizon(grid.Positions, t.zenith),
		transformer: sphtrans.NewTransformer(grid, sphtrans.WithIterations(t.iterations)),
	}
	if c.extend != nil {
		c.extend(sky)
	}

	t.logger.Debug("sky resolution changed",
		"nside", nside,
		"pixels", grid.Npix(),
		"lmax", lmax,
	)

	c.sky = sky
	c.builds++
	return sky, nil
}

func cloneBeam(b Beam) Beam {
	if c, ok := b.(BeamCloner); ok {
		return c.Clone()
	}
	return b
}
