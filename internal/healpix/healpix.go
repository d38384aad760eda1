// Package healpix implements the RING-ordered HEALPix pixelisation of the sphere.
package healpix

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidNside is returned for a resolution parameter below one.
var ErrInvalidNside = errors.New("invalid nside")

// Pointing is a direction on the sphere in spherical polars.
type Pointing struct {
	Theta float64 // Colatitude in radians, 0 at the north pole
	Phi   float64 // Longitude in radians, in [0, 2π)
}

// Ring is one iso-latitude ring of pixels.
type Ring struct {
	Index      int     // 1-based ring number counted from the north pole
	FirstPixel int     // RING index of the first pixel in the ring
	NPhi       int     // Number of pixels in the ring
	CosTheta   float64 // z coordinate of the ring
	SinTheta   float64
	Phi0       float64 // Longitude of the first pixel
}

// Theta returns the colatitude of the ring.
func (r Ring) Theta() float64 {
	return math.Atan2(r.SinTheta, r.CosTheta)
}

// Grid is the full pixelisation at a given nside.
type Grid struct {
	Nside     int
	Rings     []Ring
	Positions []Pointing
}

// Npix returns the number of pixels for nside.
func Npix(nside int) int {
	return 12 * nside * nside
}

// PixelArea returns the solid angle of a single pixel in steradians.
func PixelArea(nside int) float64 {
	return 4 * math.Pi / float64(Npix(nside))
}

// NsideForLmax returns a power-of-two nside sufficient for a harmonic
// decomposition up to lmax. The result never decreases as lmax grows.
func NsideForLmax(lmax, accuracyBoost int) int {
	exp := accuracyBoost + int(math.Ceil(math.Log2(float64(lmax+1)/3.0)))
	if exp < 0 {
		return 1
	}
	return 1 << exp
}

// NewGrid builds the rings and pixel centres of a RING-ordered map.
func NewGrid(nside int) (*Grid, error) {
	if nside < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNside, nside)
	}

	n := float64(nside)
	nrings := 4*nside - 1
	rings := make([]Ring, 0, nrings)

	first := 0
	for i := 1; i <= nrings; i++ {
		var r Ring
		r.Index = i
		r.FirstPixel = first

		switch {
		case i < nside:
			fi := float64(i)
			oneMinusZ := fi * fi / (3 * n * n)
			r.NPhi = 4 * i
			r.CosTheta = 1 - oneMinusZ
			r.SinTheta = math.Sqrt(oneMinusZ * (2 - oneMinusZ))
			r.Phi0 = math.Pi / (4 * fi)

		case i <= 3*nside:
			r.NPhi = 4 * nside
			r.CosTheta = 4.0/3.0 - 2*float64(i)/(3*n)
			r.SinTheta = math.Sqrt((1 - r.CosTheta) * (1 + r.CosTheta))
			if (i+nside)%2 == 0 {
				r.Phi0 = math.Pi / (4 * n)
			}

		default:
			k := float64(4*nside - i)
			oneMinusZ := k * k / (3 * n * n)
			r.NPhi = 4 * (4*nside - i)
			r.CosTheta = -(1 - oneMinusZ)
			r.SinTheta = math.Sqrt(oneMinusZ * (2 - oneMinusZ))
			r.Phi0 = math.Pi / (4 * k)
		}

		rings = append(rings, r)
		first += r.NPhi
	}

	positions := make([]Pointing, 0, Npix(nside))
	for _, r := range rings {
		theta := r.Theta()
		dphi := 2 * math.Pi / float64(r.NPhi)
		for j := 0; j < r.NPhi; j++ {
			positions = append(positions, Pointing{Theta: theta, Phi: r.Phi0 + float64(j)*dphi})
		}
	}

	return &Grid{Nside: nside, Rings: rings, Positions: positions}, nil
}

// Npix returns the number of pixels in the grid.
func (g *Grid) Npix() int {
	return len(g.Positions)
}
