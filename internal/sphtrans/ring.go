package sphtrans

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// ringPlan holds the FFT work space for rings of one length.
type ringPlan struct {
	n    int
	fft  *fourier.CmplxFFT
	seq  []complex128
	coef []complex128
}

func newRingPlan(n int) *ringPlan {
	return &ringPlan{
		n:    n,
		fft:  fourier.NewCmplxFFT(n),
		seq:  make([]complex128, n),
		coef: make([]complex128, n),
	}
}

// analyse computes Σ_j f_j exp(-i m φ_j) for m = 0..len(dst)-1 where
// φ_j = phi0 + 2πj/n.
func (p *ringPlan) analyse(values []float64, phi0 float64, dst []complex128) {
	for j, v := range values {
		p.seq[j] = complex(v, 0)
	}
	p.coef = p.fft.Coefficients(p.coef, p.seq)
	for m := range dst {
		dst[m] = p.coef[m%p.n] * cmplx.Rect(1, -float64(m)*phi0)
	}
}

// synthesise evaluates the real field c_0 + 2 Re Σ_{m>0} c_m exp(i m φ_j)
// into dst.
func (p *ringPlan) synthesise(c []complex128, phi0 float64, dst []float64) {
	for k := range p.coef {
		p.coef[k] = 0
	}
	for m, v := range c {
		if m > 0 {
			v *= 2
		}
		p.coef[m%p.n] += v * cmplx.Rect(1, float64(m)*phi0)
	}
	p.seq = p.fft.Sequence(p.seq, p.coef)
	for j := range dst {
		dst[j] = real(p.seq[j])
	}
}
