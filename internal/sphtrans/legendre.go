package sphtrans

import "math"

// legendre evaluates the normalised associated Legendre functions
// λ_lm(θ) = sqrt((2l+1)/4π · (l-m)!/(l+m)!) P_lm(cos θ), including the
// Condon-Shortley phase, for every 0 <= m <= l <= lmax.
type legendre struct {
	lmax    int
	logNorm []float64 // log of λ_mm / sin^m θ, by m
	recur   []float64 // sqrt((4l²-1)/(l²-m²)), packed
}

func newLegendre(lmax int) *legendre {
	lg := &legendre{
		lmax:    lmax,
		logNorm: make([]float64, lmax+1),
		recur:   make([]float64, Size(lmax)),
	}

	acc := 0.0
	for m := 0; m <= lmax; m++ {
		if m > 0 {
			acc += math.Log(float64(2*m-1) / float64(2*m))
		}
		lg.logNorm[m] = 0.5 * (math.Log(float64(2*m+1)/(4*math.Pi)) + acc)

		for l := m + 1; l <= lmax; l++ {
			fl, fm := float64(l), float64(m)
			lg.recur[Index(l, m, lmax)] = math.Sqrt((4*fl*fl - 1) / (fl*fl - fm*fm))
		}
	}
	return lg
}

// compute fills dst (packed, length Size(lmax)) with λ_lm at the given ring.
func (lg *legendre) compute(cosTheta, sinTheta float64, dst []float64) {
	logSin := math.Log(sinTheta)
	for m := 0; m <= lg.lmax; m++ {
		mm := Index(m, m, lg.lmax)
		v := math.Exp(lg.logNorm[m] + float64(m)*logSin)
		if m%2 == 1 {
			v = -v
		}
		dst[mm] = v

		prev2, prev1 := 0.0, v
		for l := m + 1; l <= lg.lmax; l++ {
			idx := Index(l, m, lg.lmax)
			a := lg.recur[idx]
			cur := cosTheta * prev1
			if l > m+1 {
				cur -= prev2 / lg.recur[idx-1]
			}
			cur *= a
			dst[idx] = cur
			prev2, prev1 = prev1, cur
		}
	}
}

// spin2 returns the HEALPix polarisation functions W_lm and X_lm from λ_lm
// and λ_(l-1)m. Both vanish for l < 2.
func spin2(l, m int, cosTheta, sinTheta, lam, lamPrev float64) (w, x float64) {
	if l < 2 {
		return 0, 0
	}
	fl, fm := float64(l), float64(m)
	norm := 2 * math.Sqrt(1/((fl+2)*(fl+1)*fl*(fl-1)))
	fact := math.Sqrt((2*fl + 1) / (2*fl - 1) * (fl*fl - fm*fm))
	oneOnS2 := 1 / (sinTheta * sinTheta)

	w = norm * (-((fl-fm*fm)*oneOnS2+fl*(fl-1)/2)*lam + fact*cosTheta*oneOnS2*lamPrev)
	x = norm * fm * oneOnS2 * (-(fl-1)*cosTheta*lam + fact*lamPrev)
	return w, x
}
