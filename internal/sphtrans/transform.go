// Package sphtrans computes spherical harmonic transforms of HEALPix maps and
// converts between packed and two-dimensional coefficient layouts.
package sphtrans

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/roman-kulish/beam-transfer/internal/healpix"
)

// DefaultIterations is the number of Jacobi iterations applied by the
// forward transform unless WithIterations says otherwise.
const DefaultIterations = 3

// ErrMapSize is returned when a map does not match the transformer grid.
var ErrMapSize = errors.New("map size does not match grid")

// Transformer performs harmonic analysis and synthesis on a fixed grid.
// It keeps FFT work space between calls and is not safe for concurrent use.
type Transformer struct {
	grid       *healpix.Grid
	iterations int
	plans      map[int]*ringPlan
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithIterations sets the number of Jacobi iterations used to refine the
// forward transform. Zero gives plain quadrature.
func WithIterations(n int) Option {
	return func(t *Transformer) {
		if n >= 0 {
			t.iterations = n
		}
	}
}

// NewTransformer creates a Transformer for grid.
func NewTransformer(grid *healpix.Grid, opts ...Option) *Transformer {
	t := &Transformer{
		grid:       grid,
		iterations: DefaultIterations,
		plans:      make(map[int]*ringPlan),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Grid returns the pixelisation the transformer works on.
func (t *Transformer) Grid() *healpix.Grid {
	return t.grid
}

func (t *Transformer) plan(n int) *ringPlan {
	p, ok := t.plans[n]
	if !ok {
		p = newRingPlan(n)
		t.plans[n] = p
	}
	return p
}

func (t *Transformer) checkSize(n int) error {
	if n != t.grid.Npix() {
		return fmt.Errorf("%w: %d pixels, grid has %d", ErrMapSize, n, t.grid.Npix())
	}
	return nil
}

// MapToAlmReal transforms a real map into an (lside+1)×(lside+1) [l, m]
// array holding m >= 0. Coefficients beyond lmax are zero; lside is raised
// to lmax if smaller.
func (t *Transformer) MapToAlmReal(m []float64, lmax, lside int) (*mat.CDense, error) {
	if err := t.checkSize(len(m)); err != nil {
		return nil, err
	}
	lside = max(lside, lmax)
	alm := t.analyseScalar([][]float64{m}, lmax)
	return embed(alm[0], lmax, lside), nil
}

// MapToAlmComplex transforms a complex map into an (lside+1)×(2·lside+1)
// array holding both signs of m, as the transform of the real part plus i
// times the transform of the imaginary part.
func (t *Transformer) MapToAlmComplex(m []complex128, lmax, lside int, layout Layout) (*mat.CDense, error) {
	if err := t.checkSize(len(m)); err != nil {
		return nil, err
	}
	lside = max(lside, lmax)

	re, im := split(m)
	alm := t.analyseScalar([][]float64{re, im}, lmax)

	rlm := Full(embed(alm[0], lmax, lside), layout)
	ilm := Full(embed(alm[1], lmax, lside), layout)
	return combine(rlm, ilm), nil
}

// MapToAlmPolReal transforms real T, Q and U maps into T, E and B arrays of
// shape (lside+1)×(lside+1) holding m >= 0.
func (t *Transformer) MapToAlmPolReal(maps [3][]float64, lmax, lside int) ([3]*mat.CDense, error) {
	var out [3]*mat.CDense
	for _, m := range maps {
		if err := t.checkSize(len(m)); err != nil {
			return out, err
		}
	}
	lside = max(lside, lmax)

	alm := t.analysePol(maps, lmax)
	for i := range out {
		out[i] = embed(alm[i], lmax, lside)
	}
	return out, nil
}

// MapToAlmPolComplex transforms complex T, Q and U maps into T, E and B
// arrays of shape (lside+1)×(2·lside+1) holding both signs of m.
func (t *Transformer) MapToAlmPolComplex(maps [3][]complex128, lmax, lside int, layout Layout) ([3]*mat.CDense, error) {
	var out [3]*mat.CDense
	var re, im [3][]float64
	for i, m := range maps {
		if err := t.checkSize(len(m)); err != nil {
			return out, err
		}
		re[i], im[i] = split(m)
	}
	lside = max(lside, lmax)

	ralm := t.analysePol(re, lmax)
	ialm := t.analysePol(im, lmax)
	for i := range out {
		out[i] = combine(
			Full(embed(ralm[i], lmax, lside), layout),
			Full(embed(ialm[i], lmax, lside), layout),
		)
	}
	return out, nil
}

// AlmToMapReal synthesises the real map of packed coefficients up to lmax.
func (t *Transformer) AlmToMapReal(alm []complex128, lmax int) []float64 {
	return t.synthesiseScalar([][]complex128{alm}, lmax)[0]
}

// AlmToMapPolReal synthesises real T, Q and U maps from packed T, E and B
// coefficients up to lmax.
func (t *Transformer) AlmToMapPolReal(alm [3][]complex128, lmax int) [3][]float64 {
	return t.synthesisePol(alm, lmax)
}

func (t *Transformer) analyseScalar(maps [][]float64, lmax int) [][]complex128 {
	alm := t.quadratureScalar(maps, lmax)
	for it := 0; it < t.iterations; it++ {
		model := t.synthesiseScalar(alm, lmax)
		for i := range maps {
			for p := range model[i] {
				model[i][p] = maps[i][p] - model[i][p]
			}
		}
		corr := t.quadratureScalar(model, lmax)
		for i := range alm {
			for k := range alm[i] {
				alm[i][k] += corr[i][k]
			}
		}
	}
	return alm
}

func (t *Transformer) analysePol(maps [3][]float64, lmax int) [3][]complex128 {
	alm := t.quadraturePol(maps, lmax)
	for it := 0; it < t.iterations; it++ {
		model := t.synthesisePol(alm, lmax)
		for i := range maps {
			for p := range model[i] {
				model[i][p] = maps[i][p] - model[i][p]
			}
		}
		corr := t.quadraturePol(model, lmax)
		for i := range alm {
			for k := range alm[i] {
				alm[i][k] += corr[i][k]
			}
		}
	}
	return alm
}

func (t *Transformer) quadratureScalar(maps [][]float64, lmax int) [][]complex128 {
	weight := complex(healpix.PixelArea(t.grid.Nside), 0)
	lg := newLegendre(lmax)
	lam := make([]float64, Size(lmax))

	alm := make([][]complex128, len(maps))
	phase := make([][]complex128, len(maps))
	for i := range maps {
		alm[i] = make([]complex128, Size(lmax))
		phase[i] = make([]complex128, lmax+1)
	}

	for _, r := range t.grid.Rings {
		lg.compute(r.CosTheta, r.SinTheta, lam)
		p := t.plan(r.NPhi)
		for i, m := range maps {
			p.analyse(m[r.FirstPixel:r.FirstPixel+r.NPhi], r.Phi0, phase[i])
		}

		for m := 0; m <= lmax; m++ {
			for i := range maps {
				pm := phase[i][m] * weight
				for l := m; l <= lmax; l++ {
					idx := Index(l, m, lmax)
					alm[i][idx] += complex(lam[idx], 0) * pm
				}
			}
		}
	}
	return alm
}

func (t *Transformer) quadraturePol(maps [3][]float64, lmax int) [3][]complex128 {
	weight := complex(healpix.PixelArea(t.grid.Nside), 0)
	lg := newLegendre(lmax)
	lam := make([]float64, Size(lmax))

	var alm, phase [3][]complex128
	for i := range alm {
		alm[i] = make([]complex128, Size(lmax))
		phase[i] = make([]complex128, lmax+1)
	}

	for _, r := range t.grid.Rings {
		lg.compute(r.CosTheta, r.SinTheta, lam)
		p := t.plan(r.NPhi)
		for i, m := range maps {
			p.analyse(m[r.FirstPixel:r.FirstPixel+r.NPhi], r.Phi0, phase[i])
		}

		for m := 0; m <= lmax; m++ {
			pt := phase[0][m] * weight
			pq := phase[1][m] * weight
			pu := phase[2][m] * weight
			for l := m; l <= lmax; l++ {
				idx := Index(l, m, lmax)
				alm[0][idx] += complex(lam[idx], 0) * pt

				var prev float64
				if l > m {
					prev = lam[idx-1]
				}
				w, x := spin2(l, m, r.CosTheta, r.SinTheta, lam[idx], prev)
				cw, cx := complex(w, 0), complex(0, x)
				alm[1][idx] -= cw*pq + cx*pu
				alm[2][idx] -= cw*pu - cx*pq
			}
		}
	}
	return alm
}

func (t *Transformer) synthesiseScalar(alm [][]complex128, lmax int) [][]float64 {
	lg := newLegendre(lmax)
	lam := make([]float64, Size(lmax))
	coef := make([]complex128, lmax+1)

	maps := make([][]float64, len(alm))
	for i := range maps {
		maps[i] = make([]float64, t.grid.Npix())
	}

	for _, r := range t.grid.Rings {
		lg.compute(r.CosTheta, r.SinTheta, lam)
		p := t.plan(r.NPhi)
		for i, a := range alm {
			for m := 0; m <= lmax; m++ {
				var sum complex128
				for l := m; l <= lmax; l++ {
					idx := Index(l, m, lmax)
					sum += a[idx] * complex(lam[idx], 0)
				}
				coef[m] = sum
			}
			p.synthesise(coef, r.Phi0, maps[i][r.FirstPixel:r.FirstPixel+r.NPhi])
		}
	}
	return maps
}

func (t *Transformer) synthesisePol(alm [3][]complex128, lmax int) [3][]float64 {
	lg := newLegendre(lmax)
	lam := make([]float64, Size(lmax))

	var maps [3][]float64
	var coef [3][]complex128
	for i := range maps {
		maps[i] = make([]float64, t.grid.Npix())
		coef[i] = make([]complex128, lmax+1)
	}

	for _, r := range t.grid.Rings {
		lg.compute(r.CosTheta, r.SinTheta, lam)
		p := t.plan(r.NPhi)
		for m := 0; m <= lmax; m++ {
			var st, sq, su complex128
			for l := m; l <= lmax; l++ {
				idx := Index(l, m, lmax)
				st += alm[0][idx] * complex(lam[idx], 0)

				var prev float64
				if l > m {
					prev = lam[idx-1]
				}
				w, x := spin2(l, m, r.CosTheta, r.SinTheta, lam[idx], prev)
				cw, cx := complex(w, 0), complex(0, x)
				sq -= alm[1][idx]*cw + alm[2][idx]*cx
				su -= alm[2][idx]*cw - alm[1][idx]*cx
			}
			coef[0][m], coef[1][m], coef[2][m] = st, sq, su
		}
		for i := range maps {
			p.synthesise(coef[i], r.Phi0, maps[i][r.FirstPixel:r.FirstPixel+r.NPhi])
		}
	}
	return maps
}

func split(m []complex128) (re, im []float64) {
	re = make([]float64, len(m))
	im = make([]float64, len(m))
	for i, v := range m {
		re[i], im[i] = real(v), imag(v)
	}
	return re, im
}
