// Package visibility evaluates the geometric factors of an interferometer's
// sky response on a set of pixel positions: horizon mask, fringe pattern,
// feed polarisation projections and the cylinder beam.
package visibility

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/roman-kulish/beam-transfer/internal/healpix"
)

// Cartesian returns the unit vector for a direction on the sphere.
func Cartesian(p healpix.Pointing) r3.Vec {
	st, ct := math.Sincos(p.Theta)
	sp, cp := math.Sincos(p.Phi)
	return r3.Vec{X: st * cp, Y: st * sp, Z: ct}
}

// ThetaHat returns the unit vector of increasing colatitude at p.
func ThetaHat(p healpix.Pointing) r3.Vec {
	st, ct := math.Sincos(p.Theta)
	sp, cp := math.Sincos(p.Phi)
	return r3.Vec{X: ct * cp, Y: ct * sp, Z: -st}
}

// PhiHat returns the unit vector of increasing longitude at p.
func PhiHat(p healpix.Pointing) r3.Vec {
	sp, cp := math.Sincos(p.Phi)
	return r3.Vec{X: -sp, Y: cp}
}

// UVPlane returns the east (u) and north (v) unit vectors at the zenith.
func UVPlane(zenith healpix.Pointing) (u, v r3.Vec) {
	return PhiHat(zenith), r3.Scale(-1, ThetaHat(zenith))
}

// Horizon is 1 above the horizon, 0 below and 1/2 exactly on it.
func Horizon(pos []healpix.Pointing, zenith healpix.Pointing) []float64 {
	z := Cartesian(zenith)
	out := make([]float64, len(pos))
	for i, p := range pos {
		d := r3.Dot(Cartesian(p), z)
		switch {
		case d > 0:
			out[i] = 1
		case d == 0:
			out[i] = 0.5
		}
	}
	return out
}

// Fringe returns exp(2πi x̂·(u û + v v̂)) for a baseline of uv wavelengths.
func Fringe(pos []healpix.Pointing, zenith healpix.Pointing, uv r2.Vec) []complex128 {
	uhat, vhat := UVPlane(zenith)
	b := r3.Add(r3.Scale(uv.X, uhat), r3.Scale(uv.Y, vhat))

	out := make([]complex128, len(pos))
	for i, p := range pos {
		out[i] = cmplx.Rect(1, 2*math.Pi*r3.Dot(Cartesian(p), b))
	}
	return out
}

// Stokes components of a polarisation projection.
const (
	StokesI = iota
	StokesQ
	StokesU
)

// PolIQU projects two feed directions, given as (east, north) components in
// the uv plane, onto the local polarisation basis at each position and
// returns the I, Q and U response of their product.
func PolIQU(pos []healpix.Pointing, zenith healpix.Pointing, feedA, feedB r2.Vec) [3][]float64 {
	uhat, vhat := UVPlane(zenith)
	a := r3.Add(r3.Scale(feedA.X, uhat), r3.Scale(feedA.Y, vhat))
	b := r3.Add(r3.Scale(feedB.X, uhat), r3.Scale(feedB.Y, vhat))

	var out [3][]float64
	for i := range out {
		out[i] = make([]float64, len(pos))
	}
	for i, p := range pos {
		th, ph := ThetaHat(p), PhiHat(p)
		at, ap := r3.Dot(a, th), r3.Dot(a, ph)
		bt, bp := r3.Dot(b, th), r3.Dot(b, ph)

		out[StokesI][i] = at*bt + ap*bp
		out[StokesQ][i] = at*bt - ap*bp
		out[StokesU][i] = at*bp + ap*bt
	}
	return out
}

// CylinderBeam returns the field pattern of a cylinder width wavelengths
// across, sinc(width · x̂·û), zeroed below the horizon.
func CylinderBeam(pos []healpix.Pointing, zenith healpix.Pointing, width float64) []float64 {
	uhat, _ := UVPlane(zenith)
	horizon := Horizon(pos, zenith)

	out := make([]float64, len(pos))
	for i, p := range pos {
		out[i] = horizon[i] * sinc(width*r3.Dot(Cartesian(p), uhat))
	}
	return out
}

// sinc is the normalised sinc function sin(πx)/(πx).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}
