package telescope

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/roman-kulish/beam-transfer/internal/sphtrans"
	"github.com/roman-kulish/beam-transfer/internal/visibility"
)

// Polarisation is the family of sky-response kernels a Telescope can use.
// The set is closed: use NewUnpolarised or NewPolarised.
type Polarisation interface {
	// Name identifies the variant in logs and stored runs.
	Name() string

	// transferSingle computes the blocks of one (baseline, frequency) pair
	// at bandlimit lmax on an lside output grid.
	transferSingle(t *Telescope, bl, f, lmax, lside int) (single, error)

	// newArray allocates the output buffer for n pairs.
	newArray(n, lside int) *MatrixArray

	// insert copies a single result into entry i of the buffer.
	insert(a *MatrixArray, s single, i int)

	clone() Polarisation
}

// single is the result of one kernel evaluation: blocks[p][c] for feed
// product p and harmonic component c. The unpolarised kernel fills [0][0].
type single struct {
	blocks [3][3]*mat.CDense
}

// Unpolarised computes the scalar response of each feed pair.
type Unpolarised struct {
	beam  Beam
	cache skyCache
}

// NewUnpolarised creates the unpolarised variant for beam.
func NewUnpolarised(beam Beam) (*Unpolarised, error) {
	if beam == nil {
		return nil, fmt.Errorf("%w: unpolarised telescope requires a beam", ErrUnimplementedCapability)
	}
	return &Unpolarised{beam: beam}, nil
}

func (u *Unpolarised) Name() string {
	return "unpolarised"
}

func (u *Unpolarised) transferSingle(t *Telescope, bl, f, lmax, lside int) (single, error) {
	var s single

	sky, err := u.cache.resolve(t, lmax)
	if err != nil {
		return s, err
	}

	pair := t.feedPairs[bl]
	freq := t.frequency(f)
	uv := r2.Scale(1/freq.Wavelength, t.baselines[bl])

	bi := u.beam.Beam(sky, pair.I, freq)
	bj := u.beam.Beam(sky, pair.J, freq)
	fringe := visibility.Fringe(sky.Positions, sky.Zenith, uv)

	cvis := make([]complex128, len(sky.Positions))
	for p := range cvis {
		cvis[p] = complex(sky.Horizon[p], 0) * fringe[p] * bi[p] * bj[p]
	}

	blk, err := sky.transformer.MapToAlmComplex(cvis, lmax, lside, sphtrans.FFTLayout)
	if err != nil {
		return s, fmt.Errorf("transforming baseline %d at frequency %d: %w", bl, f, err)
	}
	s.blocks[0][0] = blk
	return s, nil
}

func (u *Unpolarised) newArray(n, lside int) *MatrixArray {
	return newMatrixArray(n, lside)
}

func (u *Unpolarised) insert(a *MatrixArray, s single, i int) {
	a.setBlock(s.blocks[0][0], i)
}

func (u *Unpolarised) clone() Polarisation {
	return &Unpolarised{beam: cloneBeam(u.beam)}
}
