package telescope

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/sphtrans"
	"github.com/roman-kulish/beam-transfer/internal/visibility"
)

// Feed products computed by the polarised kernel. The yx product is not
// computed.
const (
	FeedXX = iota
	FeedXY
	FeedYY
)

// Harmonic components of each polarised block.
const (
	ComponentT = iota
	ComponentE
	ComponentB
)

// Polarised computes the T, E and B response of the xx, xy and yy feed
// products of each feed pair. Beams are assumed real.
type Polarised struct {
	beamX, beamY Beam
	feedX, feedY r2.Vec
	cache        skyCache
}

// PolarisedOption configures a Polarised variant.
type PolarisedOption func(*Polarised)

// WithFeedDirections sets the (east, north) directions of the x and y feeds.
func WithFeedDirections(x, y r2.Vec) PolarisedOption {
	return func(p *Polarised) {
		p.feedX, p.feedY = x, y
	}
}

// NewPolarised creates the polarised variant for the x and y feed beams.
func NewPolarised(beamX, beamY Beam, opts ...PolarisedOption) (*Polarised, error) {
	if beamX == nil || beamY == nil {
		return nil, fmt.Errorf("%w: polarised telescope requires x and y beams", ErrUnimplementedCapability)
	}

	p := &Polarised{
		beamX: beamX,
		beamY: beamY,
		feedX: r2.Vec{X: 1, Y: 0},
		feedY: r2.Vec{X: 0, Y: 1},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.cache.extend = p.project
	return p, nil
}

func (p *Polarised) Name() string {
	return "polarised"
}

func (p *Polarised) products() [3][2]r2.Vec {
	return [3][2]r2.Vec{
		FeedXX: {p.feedX, p.feedX},
		FeedXY: {p.feedX, p.feedY},
		FeedYY: {p.feedY, p.feedY},
	}
}

func (p *Polarised) project(sky *Sky) {
	for k, feeds := range p.products() {
		iqu := visibility.PolIQU(sky.Positions, sky.Zenith, feeds[0], feeds[1])
		for c := range iqu {
			for px, h := range sky.Horizon {
				iqu[c][px] *= h
			}
		}
		sky.projections[k] = iqu
	}
}

func (p *Polarised) transferSingle(t *Telescope, bl, f, lmax, lside int) (single, error) {
	var s single

	sky, err := p.cache.resolve(t, lmax)
	if err != nil {
		return s, err
	}

	pair := t.feedPairs[bl]
	freq := t.frequency(f)
	uv := r2.Scale(1/freq.Wavelength, t.baselines[bl])
	fringe := visibility.Fringe(sky.Positions, sky.Zenith, uv)

	bix := p.beamX.Beam(sky, pair.I, freq)
	biy := p.beamY.Beam(sky, pair.I, freq)
	bjx := p.beamX.Beam(sky, pair.J, freq)
	bjy := p.beamY.Beam(sky, pair.J, freq)
	beams := [3][2][]complex128{
		FeedXX: {bix, bjx},
		FeedXY: {bix, bjy},
		FeedYY: {biy, bjy},
	}

	npix := len(sky.Positions)
	for k, b := range beams {
		var cvis [3][]complex128
		for c := range cvis {
			proj := sky.projections[k][c]
			cvis[c] = make([]complex128, npix)
			for px := range cvis[c] {
				cvis[c][px] = complex(proj[px], 0) * fringe[px] * b[0][px] * b[1][px]
			}
		}

		blocks, err := sky.transformer.MapToAlmPolComplex(cvis, lmax, lside, sphtrans.FFTLayout)
		if err != nil {
			return s, fmt.Errorf("transforming baseline %d at frequency %d: %w", bl, f, err)
		}
		s.blocks[k] = blocks
	}
	return s, nil
}

func (p *Polarised) newArray(n, lside int) *MatrixArray {
	return newMatrixArray(n, lside, 3, 3)
}

func (p *Polarised) insert(a *MatrixArray, s single, i int) {
	for k := range s.blocks {
		for c, blk := range s.blocks[k] {
			a.setBlock(blk, i, k, c)
		}
	}
}

func (p *Polarised) clone() Polarisation {
	c := &Polarised{
		beamX: cloneBeam(p.beamX),
		beamY: cloneBeam(p.beamY),
		feedX: p.feedX,
		feedY: p.feedY,
	}
	c.cache.extend = c.project
	return c
}
